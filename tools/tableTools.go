package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"bitbucket.org/mmdatafocus/teahouse_backend/models"
)

func init() {
	register(&Tool{
		Name:        "create_table",
		Description: "Add a dining table to a store.",
		Handler:     createTable,
	})
	register(&Tool{
		Name:        "get_tables",
		Description: "List a store's tables with their status.",
		Handler:     getTables,
	})
	register(&Tool{
		Name:        "set_table_status",
		Description: "Mark a table reserved, cleaning or free.",
		Handler:     setTableStatus,
	})
}

type createTableArgs struct {
	StoreId  int    `json:"store_id" validate:"required"`
	TableNo  string `json:"table_no" validate:"required"`
	Capacity int    `json:"capacity" validate:"required,gt=0"`
}

func createTable(ctx context.Context, args json.RawMessage) (string, error) {
	var a createTableArgs
	if err := decodeArgs(args, &a); err != nil {
		return "", err
	}

	table, err := models.CreateTable(ctx, &models.NewTable{
		StoreId:  a.StoreId,
		TableNo:  a.TableNo,
		Capacity: a.Capacity,
	})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Table %s (seats %d) added to store %d (id %d).",
		table.TableNo, table.Capacity, table.StoreId, table.ID), nil
}

type getTablesArgs struct {
	StoreId int    `json:"store_id" validate:"required"`
	Status  string `json:"status"`
}

func getTables(ctx context.Context, args json.RawMessage) (string, error) {
	var a getTablesArgs
	if err := decodeArgs(args, &a); err != nil {
		return "", err
	}

	var status *models.TableStatus
	if len(a.Status) > 0 {
		s, err := models.ParseTableStatus(a.Status)
		if err != nil {
			return "", err
		}
		status = &s
	}

	tables, err := models.GetTables(ctx, a.StoreId, status)
	if err != nil {
		return "", err
	}
	if len(tables) == 0 {
		return "No tables found.", nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d table(s):\n", len(tables))
	for _, t := range tables {
		fmt.Fprintf(&b, "- [%d] %s, seats %d, %s\n", t.ID, t.TableNo, t.Capacity, t.Status)
	}
	return b.String(), nil
}

type setTableStatusArgs struct {
	Id     int    `json:"id" validate:"required"`
	Status string `json:"status" validate:"required"`
}

func setTableStatus(ctx context.Context, args json.RawMessage) (string, error) {
	var a setTableStatusArgs
	if err := decodeArgs(args, &a); err != nil {
		return "", err
	}

	status, err := models.ParseTableStatus(a.Status)
	if err != nil {
		return "", err
	}
	table, err := models.SetTableStatus(ctx, a.Id, status)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Table %s is now %s.", table.TableNo, table.Status), nil
}
