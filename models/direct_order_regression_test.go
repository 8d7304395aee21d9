package models_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"

	"bitbucket.org/mmdatafocus/teahouse_backend/config"
	"bitbucket.org/mmdatafocus/teahouse_backend/models"
	"bitbucket.org/mmdatafocus/teahouse_backend/utils"
	"github.com/shopspring/decimal"
)

// Covers the takeaway path: a pending order moves no stock, payment with
// member balance deducts stock and debits the wallet, and a refund puts
// every side effect back.
func TestDirectOrderPaymentAndRefundRegression(t *testing.T) {
	if strings.TrimSpace(os.Getenv("INTEGRATION_TESTS")) == "" {
		t.Skip("set INTEGRATION_TESTS=1 to run integration tests (requires docker)")
	}

	ctx := context.Background()

	redisName, redisPort := startRedisContainer(t)
	t.Cleanup(func() { _ = dockerRmForce(redisName) })

	mysqlName, mysqlPort := startMySQLContainer(t)
	t.Cleanup(func() { _ = dockerRmForce(mysqlName) })

	t.Setenv("REDIS_ADDRESS", fmt.Sprintf("127.0.0.1:%s", redisPort))
	t.Setenv("DB_USER", "root")
	t.Setenv("DB_PASSWORD", "testpw")
	t.Setenv("DB_HOST", "127.0.0.1")
	t.Setenv("DB_PORT", mysqlPort)
	t.Setenv("DB_NAME", "teahouse_test")
	t.Setenv("STRICT_STOCK_POLICY", "")

	config.ConnectDatabaseWithRetry()
	config.ConnectRedisWithRetry()

	if err := models.MigrateTable(); err != nil {
		t.Fatalf("MigrateTable: %v", err)
	}

	ctx = utils.SetOperatorIdInContext(ctx, 1)
	ctx = utils.SetOperatorNameInContext(ctx, "Counter Staff")

	store, err := models.CreateStore(ctx, &models.NewStore{
		Name: "Lakeside Tea House",
		Code: "ST002",
	})
	if err != nil {
		t.Fatalf("CreateStore: %v", err)
	}
	latte, err := models.CreateProduct(ctx, &models.NewProduct{
		Name:     "Matcha Latte",
		Code:     "P010",
		Category: "tea",
		Price:    decimal.NewFromInt(10),
		Unit:     "cup",
	})
	if err != nil {
		t.Fatalf("CreateProduct: %v", err)
	}
	if _, err := models.AdjustInventory(ctx, &models.InventoryAdjustment{
		StoreId:   store.ID,
		ProductId: latte.ID,
		Delta:     5,
		Reason:    models.AdjustReasonPurchase,
	}); err != nil {
		t.Fatalf("AdjustInventory: %v", err)
	}

	member, err := models.CreateMember(ctx, &models.NewMember{
		Name:  "Zhang Min",
		Phone: "13900139000",
	})
	if err != nil {
		t.Fatalf("CreateMember: %v", err)
	}
	if _, err := models.RechargeBalance(ctx, member.ID, decimal.NewFromInt(100), store.ID, "opening recharge"); err != nil {
		t.Fatalf("RechargeBalance: %v", err)
	}

	order, err := models.CreateOrder(ctx, &models.NewOrder{
		StoreId:  store.ID,
		MemberId: &member.ID,
		Items: []models.NewOrderItem{
			{ProductId: latte.ID, Quantity: 3},
		},
	})
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	if order.Status != models.OrderStatusPending {
		t.Fatalf("expected pending order; got %s", order.Status)
	}
	wantTotal := decimal.NewFromInt(30)
	if order.TotalAmount.Cmp(wantTotal) != 0 {
		t.Fatalf("expected total 30; got %s", order.TotalAmount.String())
	}

	// Pending orders reserve nothing.
	if inv := mustInventory(t, ctx, store.ID, latte.ID); inv.Quantity != 5 {
		t.Fatalf("pending order must not move stock; got %d", inv.Quantity)
	}

	// A wrong tender leaves the order pending.
	if _, err := models.PayOrder(ctx, &models.PayOrderInput{
		OrderId:       order.ID,
		PaidAmount:    decimal.NewFromInt(25),
		PaymentMethod: models.PaymentMethodMemberBalance,
	}); !errors.Is(err, models.ErrAmountMismatch) {
		t.Fatalf("expected ErrAmountMismatch; got %v", err)
	}
	pending, err := models.GetOrder(ctx, order.ID)
	if err != nil {
		t.Fatalf("GetOrder after mismatch: %v", err)
	}
	if pending.Status != models.OrderStatusPending {
		t.Fatalf("mismatch must leave order pending; got %s", pending.Status)
	}

	paid, err := models.PayOrder(ctx, &models.PayOrderInput{
		OrderId:       order.ID,
		PaidAmount:    wantTotal,
		PaymentMethod: models.PaymentMethodMemberBalance,
	})
	if err != nil {
		t.Fatalf("PayOrder: %v", err)
	}
	if paid.Status != models.OrderStatusCompleted {
		t.Fatalf("expected completed order; got %s", paid.Status)
	}
	if inv := mustInventory(t, ctx, store.ID, latte.ID); inv.Quantity != 2 {
		t.Fatalf("expected stock 2 after payment; got %d", inv.Quantity)
	}

	funded, err := models.GetMember(ctx, member.ID)
	if err != nil {
		t.Fatalf("GetMember after payment: %v", err)
	}
	if funded.Balance.Cmp(decimal.NewFromInt(70)) != 0 {
		t.Fatalf("expected balance 70; got %s", funded.Balance.String())
	}
	if funded.Points != 30 {
		t.Fatalf("expected 30 points; got %d", funded.Points)
	}

	// Paying twice is not allowed.
	if _, err := models.PayOrder(ctx, &models.PayOrderInput{
		OrderId:       order.ID,
		PaidAmount:    wantTotal,
		PaymentMethod: models.PaymentMethodMemberBalance,
	}); !errors.Is(err, models.ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState on double pay; got %v", err)
	}

	refunded, err := models.CancelOrder(ctx, order.ID, "customer changed mind")
	if err != nil {
		t.Fatalf("CancelOrder: %v", err)
	}
	if refunded.Status != models.OrderStatusRefunded {
		t.Fatalf("expected refunded order; got %s", refunded.Status)
	}
	if inv := mustInventory(t, ctx, store.ID, latte.ID); inv.Quantity != 5 {
		t.Fatalf("expected stock restored to 5; got %d", inv.Quantity)
	}

	restored, err := models.GetMember(ctx, member.ID)
	if err != nil {
		t.Fatalf("GetMember after refund: %v", err)
	}
	if restored.Balance.Cmp(decimal.NewFromInt(100)) != 0 {
		t.Fatalf("expected balance restored to 100; got %s", restored.Balance.String())
	}
	if restored.Points != 0 {
		t.Fatalf("expected points clawed back to 0; got %d", restored.Points)
	}

	refundType := models.FinancialRecordTypeRefund
	refunds, err := models.GetFinancialRecords(ctx, &models.FinancialRecordFilter{
		StoreId: &store.ID,
		Type:    &refundType,
	})
	if err != nil {
		t.Fatalf("GetFinancialRecords: %v", err)
	}
	if len(refunds) != 1 || refunds[0].OrderNo != order.OrderNo {
		t.Fatalf("expected one refund record for %s; got %d", order.OrderNo, len(refunds))
	}

	// A never-paid order cancels outright with no side effects.
	second, err := models.CreateOrder(ctx, &models.NewOrder{
		StoreId: store.ID,
		Items: []models.NewOrderItem{
			{ProductId: latte.ID, Quantity: 1},
		},
	})
	if err != nil {
		t.Fatalf("CreateOrder(second): %v", err)
	}
	cancelled, err := models.CancelOrder(ctx, second.ID, "walked away")
	if err != nil {
		t.Fatalf("CancelOrder(second): %v", err)
	}
	if cancelled.Status != models.OrderStatusCancelled {
		t.Fatalf("expected cancelled order; got %s", cancelled.Status)
	}
	if inv := mustInventory(t, ctx, store.ID, latte.ID); inv.Quantity != 5 {
		t.Fatalf("cancelling a pending order must not touch stock; got %d", inv.Quantity)
	}

	// An order stuck at paid (imported rows can carry the status) refunds
	// money without restocking, since stock moves only at completion.
	third, err := models.CreateOrder(ctx, &models.NewOrder{
		StoreId: store.ID,
		Items: []models.NewOrderItem{
			{ProductId: latte.ID, Quantity: 2},
		},
	})
	if err != nil {
		t.Fatalf("CreateOrder(third): %v", err)
	}
	db := config.GetDB()
	if err := db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", third.ID).
		Updates(map[string]interface{}{
			"status":      models.OrderStatusPaid,
			"paid_amount": third.TotalAmount,
		}).Error; err != nil {
		t.Fatalf("mark order paid: %v", err)
	}
	voided, err := models.CancelOrder(ctx, third.ID, "imported order voided")
	if err != nil {
		t.Fatalf("CancelOrder(paid): %v", err)
	}
	if voided.Status != models.OrderStatusRefunded {
		t.Fatalf("expected refunded order; got %s", voided.Status)
	}
	if inv := mustInventory(t, ctx, store.ID, latte.ID); inv.Quantity != 5 {
		t.Fatalf("refunding a paid order must not restock; got %d", inv.Quantity)
	}

	assertLedgerChain(t, ctx, store.ID, latte.ID)
}
