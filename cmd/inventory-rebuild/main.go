// inventory-rebuild audits the stock ledger and optionally repairs the
// on-hand quantities. For every (store, product) pair it walks the log
// chain in order, verifying that each row satisfies
// after == before + signed delta and that consecutive rows join up, then
// compares the last row against the inventory table. With --fix the
// inventory quantity is rewritten from the ledger.
//
// Usage:
//
//	go run ./cmd/inventory-rebuild [--store-id N] [--product-id N] [--fix]
package main

import (
	"flag"
	"fmt"
	"os"

	"bitbucket.org/mmdatafocus/teahouse_backend/config"
	"bitbucket.org/mmdatafocus/teahouse_backend/models"
	"github.com/sirupsen/logrus"
)

type ledgerKey struct {
	StoreId   int
	ProductId int
}

func main() {
	storeID := flag.Int("store-id", 0, "Optional: limit to one store")
	productID := flag.Int("product-id", 0, "Optional: limit to one product")
	fix := flag.Bool("fix", false, "Rewrite inventory quantities from the ledger")
	flag.Parse()

	config.ConnectDatabaseWithRetry()
	db := config.GetDB()
	if db == nil {
		fmt.Fprintln(os.Stderr, "database not initialized")
		os.Exit(1)
	}
	logger := logrus.New()

	// Discover keys.
	var keys []ledgerKey
	keyQuery := db.Model(&models.InventoryLog{}).
		Select("store_id, product_id").
		Group("store_id, product_id").
		Order("store_id, product_id")
	if *storeID > 0 {
		keyQuery = keyQuery.Where("store_id = ?", *storeID)
	}
	if *productID > 0 {
		keyQuery = keyQuery.Where("product_id = ?", *productID)
	}
	if err := keyQuery.Scan(&keys).Error; err != nil {
		fmt.Fprintf(os.Stderr, "failed to discover ledger keys: %v\n", err)
		os.Exit(1)
	}

	broken := 0
	diverged := 0
	for _, key := range keys {
		var logs []models.InventoryLog
		err := db.Where("store_id = ? AND product_id = ?", key.StoreId, key.ProductId).
			Order("id").Find(&logs).Error
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to load ledger for %v: %v\n", key, err)
			os.Exit(1)
		}

		chainOK := true
		prevAfter := 0
		for i, l := range logs {
			delta := l.Quantity
			if l.ChangeType == models.InventoryChangeTypeOut {
				delta = -delta
			}
			if l.AfterQuantity != l.BeforeQuantity+delta {
				logger.WithFields(logrus.Fields{
					"store_id":   key.StoreId,
					"product_id": key.ProductId,
					"log_id":     l.ID,
				}).Errorf("row arithmetic broken: %d != %d%+d", l.AfterQuantity, l.BeforeQuantity, delta)
				chainOK = false
			}
			if i > 0 && l.BeforeQuantity != prevAfter {
				logger.WithFields(logrus.Fields{
					"store_id":   key.StoreId,
					"product_id": key.ProductId,
					"log_id":     l.ID,
				}).Errorf("chain discontinuity: before %d, previous after %d", l.BeforeQuantity, prevAfter)
				chainOK = false
			}
			prevAfter = l.AfterQuantity
		}
		if !chainOK {
			broken++
			continue
		}

		var inv models.Inventory
		err = db.Where("store_id = ? AND product_id = ?", key.StoreId, key.ProductId).
			First(&inv).Error
		if err != nil {
			logger.WithFields(logrus.Fields{
				"store_id":   key.StoreId,
				"product_id": key.ProductId,
			}).Error("ledger has rows but inventory row is missing")
			diverged++
			continue
		}

		if inv.Quantity != prevAfter {
			diverged++
			logger.WithFields(logrus.Fields{
				"store_id":   key.StoreId,
				"product_id": key.ProductId,
				"inventory":  inv.Quantity,
				"ledger":     prevAfter,
			}).Warn("inventory diverges from ledger")

			if *fix {
				if err := db.Model(&inv).Update("Quantity", prevAfter).Error; err != nil {
					fmt.Fprintf(os.Stderr, "failed to repair %v: %v\n", key, err)
					os.Exit(1)
				}
				logger.WithFields(logrus.Fields{
					"store_id":   key.StoreId,
					"product_id": key.ProductId,
				}).Infof("quantity rewritten to %d", prevAfter)
			}
		}
	}

	fmt.Printf("audited %d ledger key(s): %d broken chain(s), %d divergence(s)\n",
		len(keys), broken, diverged)
	if broken > 0 {
		os.Exit(2)
	}
}
