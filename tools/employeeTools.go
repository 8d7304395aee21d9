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
		Name:        "create_employee",
		Description: "Hire an employee into a store.",
		Handler:     createEmployee,
	})
	register(&Tool{
		Name:        "get_employees",
		Description: "List active employees, optionally by store and position.",
		Handler:     getEmployees,
	})
	register(&Tool{
		Name:        "deactivate_employee",
		Description: "Soft-delete an employee by id.",
		Handler:     deactivateEmployee,
	})
}

type createEmployeeArgs struct {
	Name     string `json:"name" validate:"required"`
	Phone    string `json:"phone" validate:"required"`
	Email    string `json:"email"`
	Position string `json:"position" validate:"required"`
	StoreId  int    `json:"store_id" validate:"required"`
}

func createEmployee(ctx context.Context, args json.RawMessage) (string, error) {
	var a createEmployeeArgs
	if err := decodeArgs(args, &a); err != nil {
		return "", err
	}

	position, err := models.ParseEmployeePosition(a.Position)
	if err != nil {
		return "", err
	}

	employee, err := models.CreateEmployee(ctx, &models.NewEmployee{
		Name:     a.Name,
		Phone:    a.Phone,
		Email:    a.Email,
		Position: position,
		StoreId:  a.StoreId,
	})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Employee %s hired as %s (id %d).", employee.Name, employee.Position, employee.ID), nil
}

type getEmployeesArgs struct {
	StoreId  *int   `json:"store_id"`
	Position string `json:"position"`
}

func getEmployees(ctx context.Context, args json.RawMessage) (string, error) {
	var a getEmployeesArgs
	if err := decodeArgs(args, &a); err != nil {
		return "", err
	}

	var position *models.EmployeePosition
	if len(a.Position) > 0 {
		p, err := models.ParseEmployeePosition(a.Position)
		if err != nil {
			return "", err
		}
		position = &p
	}

	employees, err := models.GetEmployees(ctx, a.StoreId, position)
	if err != nil {
		return "", err
	}
	if len(employees) == 0 {
		return "No employees found.", nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d employee(s):\n", len(employees))
	for _, e := range employees {
		fmt.Fprintf(&b, "- [%d] %s, %s, store %d, phone %s\n",
			e.ID, e.Name, e.Position, e.StoreId, e.Phone)
	}
	return b.String(), nil
}

type deactivateEmployeeArgs struct {
	Id int `json:"id" validate:"required"`
}

func deactivateEmployee(ctx context.Context, args json.RawMessage) (string, error) {
	var a deactivateEmployeeArgs
	if err := decodeArgs(args, &a); err != nil {
		return "", err
	}
	if err := models.DeactivateEmployee(ctx, a.Id); err != nil {
		return "", err
	}
	return fmt.Sprintf("Employee %d deactivated.", a.Id), nil
}
