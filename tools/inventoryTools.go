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
		Name:        "inventory_in",
		Description: "Receive stock into a store (purchase or manual intake).",
		Handler:     inventoryIn,
	})
	register(&Tool{
		Name:        "adjust_inventory",
		Description: "Apply a signed stock adjustment with a reason.",
		Handler:     adjustInventory,
	})
	register(&Tool{
		Name:        "get_inventory",
		Description: "Show a store's stock levels.",
		Handler:     getInventory,
	})
	register(&Tool{
		Name:        "low_stock",
		Description: "List items at or below their warning threshold.",
		Handler:     lowStock,
	})
	register(&Tool{
		Name:        "inventory_logs",
		Description: "Show the stock movement ledger for a store or product.",
		Handler:     inventoryLogs,
	})
	register(&Tool{
		Name:        "batch_adjust_inventory",
		Description: "Apply several stock adjustments atomically; one failure rolls back all.",
		Handler:     batchAdjustInventory,
	})
	register(&Tool{
		Name:        "set_warning_threshold",
		Description: "Change the low-stock warning threshold for a product at a store.",
		Handler:     setWarningThreshold,
	})
	register(&Tool{
		Name:        "inventory_summary",
		Description: "Per-store stock posture: product count, totals, low and empty rows.",
		Handler:     inventorySummary,
	})
}

type inventoryInArgs struct {
	StoreId   int    `json:"store_id" validate:"required"`
	ProductId int    `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,gt=0"`
	Remark    string `json:"remark"`
}

func inventoryIn(ctx context.Context, args json.RawMessage) (string, error) {
	var a inventoryInArgs
	if err := decodeArgs(args, &a); err != nil {
		return "", err
	}

	log, err := models.AdjustInventory(ctx, &models.InventoryAdjustment{
		StoreId:   a.StoreId,
		ProductId: a.ProductId,
		Delta:     a.Quantity,
		Reason:    models.AdjustReasonPurchase,
		Remark:    a.Remark,
	})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Received %d units; stock went from %d to %d.",
		a.Quantity, log.BeforeQuantity, log.AfterQuantity), nil
}

type adjustInventoryArgs struct {
	StoreId   int    `json:"store_id" validate:"required"`
	ProductId int    `json:"product_id" validate:"required"`
	Delta     int    `json:"delta" validate:"required"`
	Reason    string `json:"reason" validate:"required"`
	Remark    string `json:"remark"`
}

func adjustInventory(ctx context.Context, args json.RawMessage) (string, error) {
	var a adjustInventoryArgs
	if err := decodeArgs(args, &a); err != nil {
		return "", err
	}

	log, err := models.AdjustInventory(ctx, &models.InventoryAdjustment{
		StoreId:   a.StoreId,
		ProductId: a.ProductId,
		Delta:     a.Delta,
		Reason:    a.Reason,
		Remark:    a.Remark,
	})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Adjusted by %+d (%s); stock went from %d to %d.",
		a.Delta, a.Reason, log.BeforeQuantity, log.AfterQuantity), nil
}

type getInventoryArgs struct {
	StoreId int `json:"store_id" validate:"required"`
	Limit   int `json:"limit"`
}

func getInventory(ctx context.Context, args json.RawMessage) (string, error) {
	var a getInventoryArgs
	if err := decodeArgs(args, &a); err != nil {
		return "", err
	}

	rows, err := models.GetStoreInventory(ctx, a.StoreId, a.Limit)
	if err != nil {
		return "", err
	}
	if len(rows) == 0 {
		return "No inventory records for this store.", nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Inventory for store %d:\n", a.StoreId)
	for _, inv := range rows {
		marker := ""
		if inv.Quantity <= inv.WarningThreshold {
			marker = " (LOW)"
		}
		fmt.Fprintf(&b, "- %s %s: %d %s%s\n",
			inv.Product.Code, inv.Product.Name, inv.Quantity, inv.Product.Unit, marker)
	}
	return b.String(), nil
}

type lowStockArgs struct {
	StoreId *int `json:"store_id"`
}

func lowStock(ctx context.Context, args json.RawMessage) (string, error) {
	var a lowStockArgs
	if err := decodeArgs(args, &a); err != nil {
		return "", err
	}

	rows, err := models.GetLowStockItems(ctx, a.StoreId)
	if err != nil {
		return "", err
	}
	if len(rows) == 0 {
		return "No items below their warning threshold.", nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d item(s) need restocking:\n", len(rows))
	for _, inv := range rows {
		fmt.Fprintf(&b, "- store %d, %s %s: %d left (threshold %d)\n",
			inv.StoreId, inv.Product.Code, inv.Product.Name, inv.Quantity, inv.WarningThreshold)
	}
	return b.String(), nil
}

type batchAdjustItemArgs struct {
	ProductId int    `json:"product_id" validate:"required"`
	Delta     int    `json:"delta" validate:"required"`
	Remark    string `json:"remark"`
}

type batchAdjustInventoryArgs struct {
	StoreId int                   `json:"store_id" validate:"required"`
	Reason  string                `json:"reason" validate:"required"`
	Items   []batchAdjustItemArgs `json:"items" validate:"required,min=1,dive"`
}

func batchAdjustInventory(ctx context.Context, args json.RawMessage) (string, error) {
	var a batchAdjustInventoryArgs
	if err := decodeArgs(args, &a); err != nil {
		return "", err
	}

	inputs := make([]*models.InventoryAdjustment, 0, len(a.Items))
	for _, item := range a.Items {
		inputs = append(inputs, &models.InventoryAdjustment{
			StoreId:   a.StoreId,
			ProductId: item.ProductId,
			Delta:     item.Delta,
			Reason:    a.Reason,
			Remark:    item.Remark,
		})
	}

	logs, err := models.BatchAdjustInventory(ctx, inputs)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d adjustment(s) applied:\n", len(logs))
	for _, l := range logs {
		fmt.Fprintf(&b, "- product %d: %d -> %d\n", l.ProductId, l.BeforeQuantity, l.AfterQuantity)
	}
	return b.String(), nil
}

type setWarningThresholdArgs struct {
	StoreId   int `json:"store_id" validate:"required"`
	ProductId int `json:"product_id" validate:"required"`
	Threshold int `json:"threshold" validate:"gte=0"`
}

func setWarningThreshold(ctx context.Context, args json.RawMessage) (string, error) {
	var a setWarningThresholdArgs
	if err := decodeArgs(args, &a); err != nil {
		return "", err
	}

	inv, err := models.SetWarningThreshold(ctx, a.StoreId, a.ProductId, a.Threshold)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Warning threshold for product %d at store %d set to %d (current stock %d).",
		a.ProductId, a.StoreId, inv.WarningThreshold, inv.Quantity), nil
}

type inventorySummaryArgs struct {
	StoreId *int `json:"store_id"`
}

func inventorySummary(ctx context.Context, args json.RawMessage) (string, error) {
	var a inventorySummaryArgs
	if err := decodeArgs(args, &a); err != nil {
		return "", err
	}

	rows, err := models.GetInventorySummary(ctx, a.StoreId)
	if err != nil {
		return "", err
	}
	if len(rows) == 0 {
		return "No inventory records.", nil
	}

	var b strings.Builder
	b.WriteString("Stock summary by store:\n")
	for _, r := range rows {
		fmt.Fprintf(&b, "- %s: %d product(s), %d units, %d low, %d empty\n",
			r.StoreName, r.ProductCount, r.TotalQuantity, r.LowStockCount, r.ZeroStockCount)
	}
	return b.String(), nil
}

type inventoryLogsArgs struct {
	StoreId   *int   `json:"store_id"`
	ProductId *int   `json:"product_id"`
	Reason    string `json:"reason"`
	Limit     int    `json:"limit"`
}

func inventoryLogs(ctx context.Context, args json.RawMessage) (string, error) {
	var a inventoryLogsArgs
	if err := decodeArgs(args, &a); err != nil {
		return "", err
	}

	filter := models.InventoryLogFilter{
		StoreId:   a.StoreId,
		ProductId: a.ProductId,
		Limit:     a.Limit,
	}
	if len(a.Reason) > 0 {
		filter.Reason = &a.Reason
	}

	logs, err := models.GetInventoryLogs(ctx, &filter)
	if err != nil {
		return "", err
	}
	if len(logs) == 0 {
		return "No stock movements matched.", nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d movement(s), newest first:\n", len(logs))
	for _, l := range logs {
		sign := "+"
		if l.ChangeType == models.InventoryChangeTypeOut {
			sign = "-"
		}
		fmt.Fprintf(&b, "- %s %s%d %s (%s), %d -> %d\n",
			l.CreatedAt.Format("2006-01-02 15:04"), sign, l.Quantity,
			l.Product.Name, l.Reason, l.BeforeQuantity, l.AfterQuantity)
	}
	return b.String(), nil
}
