// seed-demo loads a small demo dataset: stores, employees, a product
// catalog, tables, opening stock and a few members. Safe to re-run;
// existing records are left alone.
//
// Usage:
//
//	DB_USER=... DB_PASSWORD=... DB_HOST=... DB_PORT=... DB_NAME=... go run ./cmd/seed-demo
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"bitbucket.org/mmdatafocus/teahouse_backend/config"
	"bitbucket.org/mmdatafocus/teahouse_backend/models"
	"bitbucket.org/mmdatafocus/teahouse_backend/utils"
	"github.com/shopspring/decimal"
)

type storeSeed struct {
	name    string
	code    string
	address string
	phone   string
}

type productSeed struct {
	name     string
	code     string
	category string
	price    string
	unit     string
}

type memberSeed struct {
	name  string
	phone string
}

var storeSeeds = []storeSeed{
	{"Tea House Central", "ST001", "1 Central Plaza", "010-88888888"},
	{"Tea House East", "ST002", "88 Chaoyang Road", "010-66666666"},
	{"Tea House West", "ST003", "123 Fuxing Road", "010-77777777"},
	{"Tea House Nanshan", "ST004", "66 Keji Avenue", "0755-99999999"},
	{"Tea House Beihu", "ST005", "88 Huanhu Road", "027-55555555"},
	{"Tea House Newtown", "ST006", "66 Jinqiao Road", "020-44444444"},
}

var productSeeds = []productSeed{
	{"Longjing Green Tea", "P001", "tea", "68.00", "pot"},
	{"Ripe Pu-erh", "P002", "tea", "88.00", "pot"},
	{"Tieguanyin", "P003", "tea", "78.00", "pot"},
	{"Da Hong Pao", "P004", "tea", "128.00", "pot"},
	{"Jasmine Tea", "P005", "tea", "58.00", "pot"},
	{"Chrysanthemum Tea", "P006", "floral", "48.00", "cup"},
	{"Rose Tea", "P007", "floral", "58.00", "cup"},
	{"Lemon Tea", "P008", "floral", "38.00", "cup"},
	{"Sunflower Seeds", "S001", "snack", "18.00", "plate"},
	{"Peanuts", "S002", "snack", "18.00", "plate"},
	{"Pistachios", "S003", "snack", "38.00", "plate"},
	{"Cashews", "S004", "snack", "32.00", "plate"},
	{"Preserved Plums", "S005", "snack", "15.00", "plate"},
	{"Potato Chips", "S006", "snack", "12.00", "plate"},
	{"Boiled Fish", "D001", "dish", "88.00", "plate"},
	{"Kung Pao Chicken", "D002", "dish", "58.00", "plate"},
	{"Mapo Tofu", "D003", "dish", "38.00", "plate"},
	{"Shredded Pork", "D004", "dish", "48.00", "plate"},
}

var memberSeeds = []memberSeed{
	{"Mr. Wang", "13900139001"},
	{"Ms. Li", "13900139002"},
	{"Mr. Zhang", "13900139003"},
	{"Ms. Zhao", "13900139004"},
	{"Mr. Chen", "13900139005"},
	{"Ms. Liu", "13900139006"},
	{"Mr. Huang", "13900139007"},
	{"Ms. Zhou", "13900139008"},
}

func fail(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

func main() {
	ctx := context.Background()
	ctx = utils.SetOperatorNameInContext(ctx, "seed-demo")

	config.ConnectDatabaseWithRetry()
	config.ConnectRedisWithRetry()
	if config.GetDB() == nil {
		fail("database not initialized (config.GetDB returned nil). Set DB_* env vars.")
	}
	if err := models.MigrateTable(); err != nil {
		fail("migration failed: %v", err)
	}

	// stores
	stores := make([]*models.Store, 0, len(storeSeeds))
	for _, s := range storeSeeds {
		store, err := models.GetStoreByCode(ctx, s.code)
		if errors.Is(err, models.ErrNotFound) {
			store, err = models.CreateStore(ctx, &models.NewStore{
				Name:    s.name,
				Code:    s.code,
				Address: s.address,
				Phone:   s.phone,
			})
		}
		if err != nil {
			fail("store %s: %v", s.code, err)
		}
		stores = append(stores, store)
	}
	fmt.Printf("%d stores ready\n", len(stores))

	// employees
	employeePhones := []struct {
		name     string
		phone    string
		position models.EmployeePosition
		store    int
	}{
		{"Manager Zhang", "13800138001", models.EmployeePositionManager, 0},
		{"Manager Li", "13800138002", models.EmployeePositionManager, 1},
		{"Waiter Wang", "13800138003", models.EmployeePositionWaiter, 0},
		{"Waiter Zhao", "13800138004", models.EmployeePositionWaiter, 1},
		{"Waiter Sun", "13800138005", models.EmployeePositionWaiter, 2},
		{"Cashier Zhou", "13800138006", models.EmployeePositionCashier, 0},
		{"Manager Wu", "13800138007", models.EmployeePositionManager, 3},
		{"Waiter Zheng", "13800138008", models.EmployeePositionWaiter, 4},
	}
	for _, e := range employeePhones {
		count, err := utils.ResourceCountWhere[models.Employee](ctx, "phone = ?", e.phone)
		if err != nil {
			fail("employee lookup: %v", err)
		}
		if count > 0 {
			continue
		}
		if _, err := models.CreateEmployee(ctx, &models.NewEmployee{
			Name:     e.name,
			Phone:    e.phone,
			Position: e.position,
			StoreId:  stores[e.store].ID,
		}); err != nil {
			fail("employee %s: %v", e.name, err)
		}
	}
	fmt.Println("employees ready")

	// products
	products := make([]*models.Product, 0, len(productSeeds))
	for _, p := range productSeeds {
		product, err := models.GetProductByCode(ctx, p.code)
		if errors.Is(err, models.ErrNotFound) {
			product, err = models.CreateProduct(ctx, &models.NewProduct{
				Name:     p.name,
				Code:     p.code,
				Category: p.category,
				Price:    decimal.RequireFromString(p.price),
				Unit:     p.unit,
			})
		}
		if err != nil {
			fail("product %s: %v", p.code, err)
		}
		products = append(products, product)
	}
	fmt.Printf("%d products ready\n", len(products))

	// tables: eight per store, capacities cycling 2/4/6/8
	capacities := []int{2, 4, 6, 8}
	for _, store := range stores {
		existing, err := models.GetTables(ctx, store.ID, nil)
		if err != nil {
			fail("tables for store %s: %v", store.Code, err)
		}
		if len(existing) > 0 {
			continue
		}
		for j := 0; j < 8; j++ {
			if _, err := models.CreateTable(ctx, &models.NewTable{
				StoreId:  store.ID,
				TableNo:  fmt.Sprintf("T%02d", j+1),
				Capacity: capacities[j%4],
			}); err != nil {
				fail("table %d for store %s: %v", j+1, store.Code, err)
			}
		}
	}
	fmt.Println("tables ready")

	// opening stock: 20-95 units depending on product position
	for _, store := range stores {
		for i, product := range products {
			if _, err := models.GetInventory(ctx, store.ID, product.ID); err == nil {
				continue
			}
			quantity := 20 + (i*5)%80
			if _, err := models.AdjustInventory(ctx, &models.InventoryAdjustment{
				StoreId:   store.ID,
				ProductId: product.ID,
				Delta:     quantity,
				Reason:    models.AdjustReasonPurchase,
				Remark:    "opening stock",
			}); err != nil {
				fail("stock %s/%s: %v", store.Code, product.Code, err)
			}
		}
	}
	fmt.Println("opening stock ready")

	// members
	for _, m := range memberSeeds {
		if _, err := models.GetMemberByPhone(ctx, m.phone); err == nil {
			continue
		}
		if _, err := models.CreateMember(ctx, &models.NewMember{
			Name:  m.name,
			Phone: m.phone,
		}); err != nil {
			fail("member %s: %v", m.name, err)
		}
	}
	fmt.Println("members ready")

	fmt.Println("demo data seeded")
}
