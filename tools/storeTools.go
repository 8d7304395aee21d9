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
		Name:        "create_store",
		Description: "Register a new store with a unique code.",
		Handler:     createStore,
	})
	register(&Tool{
		Name:        "get_stores",
		Description: "List stores, optionally filtered by status.",
		Handler:     getStores,
	})
	register(&Tool{
		Name:        "update_store",
		Description: "Update a store's details by id.",
		Handler:     updateStore,
	})
	register(&Tool{
		Name:        "set_store_status",
		Description: "Activate or deactivate a store.",
		Handler:     setStoreStatus,
	})
}

type createStoreArgs struct {
	Name        string `json:"name" validate:"required"`
	Code        string `json:"code" validate:"required"`
	Address     string `json:"address"`
	Phone       string `json:"phone" validate:"required"`
	ManagerName string `json:"manager_name"`
	OpenTime    string `json:"open_time"`
	CloseTime   string `json:"close_time"`
}

func createStore(ctx context.Context, args json.RawMessage) (string, error) {
	var a createStoreArgs
	if err := decodeArgs(args, &a); err != nil {
		return "", err
	}

	store, err := models.CreateStore(ctx, &models.NewStore{
		Name:        a.Name,
		Code:        a.Code,
		Address:     a.Address,
		Phone:       a.Phone,
		ManagerName: a.ManagerName,
		OpenTime:    a.OpenTime,
		CloseTime:   a.CloseTime,
	})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Store %q created with code %s (id %d).", store.Name, store.Code, store.ID), nil
}

type getStoresArgs struct {
	Status string `json:"status"`
}

func getStores(ctx context.Context, args json.RawMessage) (string, error) {
	var a getStoresArgs
	if err := decodeArgs(args, &a); err != nil {
		return "", err
	}

	var status *models.StoreStatus
	if len(a.Status) > 0 {
		s, err := models.ParseStoreStatus(a.Status)
		if err != nil {
			return "", err
		}
		status = &s
	}

	stores, err := models.GetStores(ctx, status)
	if err != nil {
		return "", err
	}
	if len(stores) == 0 {
		return "No stores found.", nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d store(s):\n", len(stores))
	for _, s := range stores {
		fmt.Fprintf(&b, "- [%d] %s (%s) %s, phone %s, status %s\n",
			s.ID, s.Name, s.Code, s.Address, s.Phone, s.Status)
	}
	return b.String(), nil
}

type updateStoreArgs struct {
	Id int `json:"id" validate:"required"`
	createStoreArgs
}

func updateStore(ctx context.Context, args json.RawMessage) (string, error) {
	var a updateStoreArgs
	if err := decodeArgs(args, &a); err != nil {
		return "", err
	}

	store, err := models.UpdateStore(ctx, a.Id, &models.NewStore{
		Name:        a.Name,
		Code:        a.Code,
		Address:     a.Address,
		Phone:       a.Phone,
		ManagerName: a.ManagerName,
		OpenTime:    a.OpenTime,
		CloseTime:   a.CloseTime,
	})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Store %d updated: %s (%s).", store.ID, store.Name, store.Code), nil
}

type setStoreStatusArgs struct {
	Id     int    `json:"id" validate:"required"`
	Status string `json:"status" validate:"required"`
}

func setStoreStatus(ctx context.Context, args json.RawMessage) (string, error) {
	var a setStoreStatusArgs
	if err := decodeArgs(args, &a); err != nil {
		return "", err
	}

	status, err := models.ParseStoreStatus(a.Status)
	if err != nil {
		return "", err
	}
	store, err := models.SetStoreStatus(ctx, a.Id, status)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Store %s is now %s.", store.Name, store.Status), nil
}
