package config

import (
	"os"
	"strings"
)

// StrictStockPolicy controls how the session order flow treats a stock
// shortage. The default (lenient) records the line item anyway and surfaces a
// shortage warning; strict mode refuses the item with an insufficient-stock
// error.
//
// Set via env:
// - STRICT_STOCK_POLICY=true
func StrictStockPolicy() bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv("STRICT_STOCK_POLICY")))
	return v == "1" || v == "true" || v == "yes" || v == "y"
}

// AuthDisabled turns off the JWT check on the tool endpoints. Intended for
// local development and the seeded demo environment only.
//
// Set via env:
// - AUTH_DISABLED=true
func AuthDisabled() bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv("AUTH_DISABLED")))
	return v == "1" || v == "true" || v == "yes" || v == "y"
}
