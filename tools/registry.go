// Package tools exposes the model operations as individually callable,
// stateless actions. Each tool decodes its JSON arguments, runs exactly
// one operation and renders a human-readable result. Tools never share
// state across calls.
package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"bitbucket.org/mmdatafocus/teahouse_backend/config"
	"bitbucket.org/mmdatafocus/teahouse_backend/models"
	"bitbucket.org/mmdatafocus/teahouse_backend/utils"
	"github.com/go-playground/validator/v10"
)

type Handler func(ctx context.Context, args json.RawMessage) (string, error)

type Tool struct {
	Name        string
	Description string
	Handler     Handler
}

var registry = map[string]*Tool{}

var validate = validator.New()

func register(t *Tool) {
	if _, dup := registry[t.Name]; dup {
		panic("duplicate tool name: " + t.Name)
	}
	registry[t.Name] = t
}

func Get(name string) (*Tool, bool) {
	t, ok := registry[name]
	return t, ok
}

// List returns every registered tool sorted by name.
func List() []*Tool {
	out := make([]*Tool, 0, len(registry))
	for _, t := range registry {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Invoke runs one tool. Domain errors come back as readable messages in
// the error; the string result is only set on success.
func Invoke(ctx context.Context, name string, args json.RawMessage) (string, error) {
	tool, ok := registry[name]
	if !ok {
		return "", fmt.Errorf("unknown tool %q", name)
	}

	result, err := tool.Handler(ctx, args)
	if err != nil {
		config.LogError(config.GetLogger(), "tools", name, "invoke", string(args), err)
		return "", errors.New(ErrorMessage(err))
	}
	return result, nil
}

// decodeArgs unmarshals and validates one tool's argument struct.
func decodeArgs(args json.RawMessage, out interface{}) error {
	if len(args) > 0 {
		if err := json.Unmarshal(args, out); err != nil {
			return fmt.Errorf("invalid arguments: %w", err)
		}
	}
	if err := validate.Struct(out); err != nil {
		fields := utils.ProcessValidationErrors(err)
		if len(fields) > 0 {
			parts := make([]string, 0, len(fields))
			for field, msg := range fields {
				parts = append(parts, field+" "+msg)
			}
			sort.Strings(parts)
			return errors.New("invalid arguments: " + strings.Join(parts, "; "))
		}
		return err
	}
	return nil
}

// ErrorMessage maps each domain error kind to its own user-facing
// message so a caller can tell what to fix and retry.
func ErrorMessage(err error) string {
	switch {
	case errors.Is(err, models.ErrNotFound):
		return "The record you referenced does not exist. Check the id or number and try again."
	case errors.Is(err, models.ErrDuplicateKey):
		return "A record with the same unique value already exists (code, phone or number). Use a different value."
	case errors.Is(err, models.ErrInsufficientStock):
		return "Not enough stock to complete this movement. Nothing was changed; restock first or reduce the quantity."
	case errors.Is(err, models.ErrTableNotFree):
		return "That table is not free right now. Pick a free table or settle the current session first."
	case errors.Is(err, models.ErrSessionNotActive):
		return "That session is no longer in progress, so it cannot be modified."
	case errors.Is(err, models.ErrAmountMismatch):
		return "The paid amount does not match the bill total. Re-check the amount and try again."
	case errors.Is(err, models.ErrInvalidState):
		return "This action is not allowed in the record's current state."
	case errors.Is(err, models.ErrInsufficientBalance):
		return "The member's balance cannot cover this payment. Recharge first or choose another payment method."
	default:
		return err.Error()
	}
}
