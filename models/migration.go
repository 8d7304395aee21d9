package models

import "bitbucket.org/mmdatafocus/teahouse_backend/config"

// MigrateTable creates or updates every table the service owns.
func MigrateTable() error {
	db := config.GetDB()
	return db.AutoMigrate(
		&Store{},
		&Employee{},
		&User{},
		&Member{},
		&MemberTransaction{},
		&Product{},
		&Inventory{},
		&InventoryLog{},
		&Table{},
		&TableSession{},
		&SessionItem{},
		&Order{},
		&OrderItem{},
		&FinancialRecord{},
	)
}
