package models

import (
	"errors"

	"bitbucket.org/mmdatafocus/teahouse_backend/utils"
)

// Domain error kinds. Callers discriminate with errors.Is; the tool layer maps
// each kind to its own user-facing message.
var (
	// ErrNotFound and ErrDuplicateKey alias the persistence-level sentinels so
	// one errors.Is check works across layers.
	ErrNotFound     = utils.ErrorRecordNotFound
	ErrDuplicateKey = utils.ErrorDuplicateKey

	// ErrInsufficientStock: a ledger adjustment would drive quantity negative.
	// The adjustment is refused entirely; no quantity change, no log row.
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrTableNotFree: opening a session on a table that is not free.
	ErrTableNotFree = errors.New("table not free")

	// ErrSessionNotActive: mutating a session that is not in progress.
	ErrSessionNotActive = errors.New("session not active")

	// ErrAmountMismatch: checkout received amount does not match the session
	// total within the currency tolerance.
	ErrAmountMismatch = errors.New("amount mismatch")

	// ErrInvalidState: a state transition the entity's lifecycle does not
	// allow (paying a completed order, checking out an empty session, ...).
	ErrInvalidState = errors.New("invalid state")

	// ErrInsufficientBalance: member balance cannot cover a payment or
	// deduction.
	ErrInsufficientBalance = errors.New("insufficient balance")
)
