package models_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strings"
	"testing"
	"time"

	"bitbucket.org/mmdatafocus/teahouse_backend/config"
	"bitbucket.org/mmdatafocus/teahouse_backend/models"
	"bitbucket.org/mmdatafocus/teahouse_backend/utils"
	"github.com/shopspring/decimal"
)

// Covers the full dine-in lifecycle against real MySQL and Redis: open a
// table, add items under both stock policies, reject a mismatched tender,
// settle, and verify the order, financial entry, member effects and the
// stock ledger chain that fall out of it.
func TestDineInCheckoutRegression(t *testing.T) {
	if strings.TrimSpace(os.Getenv("INTEGRATION_TESTS")) == "" {
		t.Skip("set INTEGRATION_TESTS=1 to run integration tests (requires docker)")
	}

	ctx := context.Background()

	redisName, redisPort := startRedisContainer(t)
	t.Cleanup(func() { _ = dockerRmForce(redisName) })

	mysqlName, mysqlPort := startMySQLContainer(t)
	t.Cleanup(func() { _ = dockerRmForce(mysqlName) })

	// Wire env for config.Connect* helpers.
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

	// Stock and money movements stamp the operator from context.
	ctx = utils.SetOperatorIdInContext(ctx, 1)
	ctx = utils.SetOperatorNameInContext(ctx, "Test Cashier")

	store, err := models.CreateStore(ctx, &models.NewStore{
		Name: "Downtown Tea House",
		Code: "ST001",
	})
	if err != nil {
		t.Fatalf("CreateStore: %v", err)
	}

	// Duplicate store codes are rejected up front.
	if _, err := models.CreateStore(ctx, &models.NewStore{
		Name: "Clone",
		Code: "ST001",
	}); !errors.Is(err, models.ErrDuplicateKey) {
		t.Fatalf("expected ErrDuplicateKey for duplicate store code; got %v", err)
	}

	tea, err := models.CreateProduct(ctx, &models.NewProduct{
		Name:     "Jasmine Tea",
		Code:     "P001",
		Category: "tea",
		Price:    decimal.NewFromInt(18),
		Unit:     "cup",
	})
	if err != nil {
		t.Fatalf("CreateProduct(tea): %v", err)
	}
	cake, err := models.CreateProduct(ctx, &models.NewProduct{
		Name:     "Osmanthus Cake",
		Code:     "S001",
		Category: "snack",
		Price:    decimal.NewFromInt(32),
		Unit:     "piece",
	})
	if err != nil {
		t.Fatalf("CreateProduct(cake): %v", err)
	}

	table, err := models.CreateTable(ctx, &models.NewTable{
		StoreId:  store.ID,
		TableNo:  "T01",
		Capacity: 4,
	})
	if err != nil {
		t.Fatalf("CreateTable: %v", err)
	}

	member, err := models.CreateMember(ctx, &models.NewMember{
		Name:  "Li Wei",
		Phone: "13800138000",
	})
	if err != nil {
		t.Fatalf("CreateMember: %v", err)
	}
	if !strings.HasPrefix(member.MemberNo, "M") {
		t.Fatalf("unexpected member number format: %q", member.MemberNo)
	}

	// Opening stock: plenty of tea, one cake.
	if _, err := models.AdjustInventory(ctx, &models.InventoryAdjustment{
		StoreId:   store.ID,
		ProductId: tea.ID,
		Delta:     10,
		Reason:    models.AdjustReasonPurchase,
	}); err != nil {
		t.Fatalf("AdjustInventory(tea): %v", err)
	}
	if _, err := models.AdjustInventory(ctx, &models.InventoryAdjustment{
		StoreId:   store.ID,
		ProductId: cake.ID,
		Delta:     1,
		Reason:    models.AdjustReasonPurchase,
	}); err != nil {
		t.Fatalf("AdjustInventory(cake): %v", err)
	}

	session, err := models.OpenTable(ctx, &models.OpenTableInput{
		TableId:    table.ID,
		GuestCount: 2,
		MemberId:   &member.ID,
	})
	if err != nil {
		t.Fatalf("OpenTable: %v", err)
	}
	if session.Status != models.SessionStatusInProgress {
		t.Fatalf("expected session in_progress; got %s", session.Status)
	}

	occupied, err := models.GetTable(ctx, table.ID)
	if err != nil {
		t.Fatalf("GetTable: %v", err)
	}
	if occupied.Status != models.TableStatusOccupied {
		t.Fatalf("expected table occupied after open; got %s", occupied.Status)
	}

	// Opening an occupied table fails.
	if _, err := models.OpenTable(ctx, &models.OpenTableInput{
		TableId: table.ID,
	}); !errors.Is(err, models.ErrTableNotFree) {
		t.Fatalf("expected ErrTableNotFree; got %v", err)
	}

	// Two teas, fully covered by stock.
	teaLine, err := models.AddSessionItem(ctx, &models.NewSessionItem{
		SessionId: session.ID,
		ProductId: tea.ID,
		Quantity:  2,
	})
	if err != nil {
		t.Fatalf("AddSessionItem(tea): %v", err)
	}
	if !teaLine.StockDeducted || teaLine.Warning != "" {
		t.Fatalf("expected clean deducted tea line; deducted=%v warning=%q", teaLine.StockDeducted, teaLine.Warning)
	}
	if inv := mustInventory(t, ctx, store.ID, tea.ID); inv.Quantity != 8 {
		t.Fatalf("expected tea stock 8 after sale; got %d", inv.Quantity)
	}

	// Strict policy: a shortage fails closed with no ledger row and no
	// quantity change.
	t.Setenv("STRICT_STOCK_POLICY", "true")
	cakeLogsBefore := mustLogCount(t, ctx, store.ID, cake.ID)
	if _, err := models.AddSessionItem(ctx, &models.NewSessionItem{
		SessionId: session.ID,
		ProductId: cake.ID,
		Quantity:  2,
	}); !errors.Is(err, models.ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock under strict policy; got %v", err)
	}
	if got := mustLogCount(t, ctx, store.ID, cake.ID); got != cakeLogsBefore {
		t.Fatalf("failed movement must not write ledger rows: before=%d after=%d", cakeLogsBefore, got)
	}
	if inv := mustInventory(t, ctx, store.ID, cake.ID); inv.Quantity != 1 {
		t.Fatalf("expected cake stock unchanged at 1; got %d", inv.Quantity)
	}

	// Lenient policy: the same shortage records the line with a warning
	// and leaves stock alone.
	t.Setenv("STRICT_STOCK_POLICY", "")
	shortLine, err := models.AddSessionItem(ctx, &models.NewSessionItem{
		SessionId: session.ID,
		ProductId: cake.ID,
		Quantity:  2,
	})
	if err != nil {
		t.Fatalf("AddSessionItem(cake, lenient): %v", err)
	}
	if shortLine.StockDeducted {
		t.Fatalf("shortage line must not deduct stock")
	}
	if shortLine.Warning == "" {
		t.Fatalf("expected shortage warning on lenient add")
	}
	if inv := mustInventory(t, ctx, store.ID, cake.ID); inv.Quantity != 1 {
		t.Fatalf("lenient shortage must leave stock at 1; got %d", inv.Quantity)
	}

	// Removing the undeducted line must not over-credit stock.
	if _, err := models.RemoveSessionItem(ctx, session.ID, shortLine.Item.ID); err != nil {
		t.Fatalf("RemoveSessionItem: %v", err)
	}
	if inv := mustInventory(t, ctx, store.ID, cake.ID); inv.Quantity != 1 {
		t.Fatalf("removing an undeducted line must not restock; got %d", inv.Quantity)
	}

	// One cake, covered this time.
	if _, err := models.AddSessionItem(ctx, &models.NewSessionItem{
		SessionId: session.ID,
		ProductId: cake.ID,
		Quantity:  1,
	}); err != nil {
		t.Fatalf("AddSessionItem(cake, covered): %v", err)
	}
	if inv := mustInventory(t, ctx, store.ID, cake.ID); inv.Quantity != 0 {
		t.Fatalf("expected cake stock 0; got %d", inv.Quantity)
	}

	view, err := models.InitiateCheckout(ctx, session.ID)
	if err != nil {
		t.Fatalf("InitiateCheckout: %v", err)
	}
	wantTotal := decimal.NewFromInt(68) // 2x18 + 32
	if view.TotalAmount.Cmp(wantTotal) != 0 {
		t.Fatalf("expected bill total 68; got %s", view.TotalAmount.String())
	}

	// A mismatched tender rolls the whole settlement back.
	if _, err := models.ConfirmCheckout(ctx, &models.ConfirmCheckoutInput{
		SessionId:     session.ID,
		PaidAmount:    decimal.NewFromInt(60),
		PaymentMethod: models.PaymentMethodCash,
	}); !errors.Is(err, models.ErrAmountMismatch) {
		t.Fatalf("expected ErrAmountMismatch; got %v", err)
	}
	stillOpen, err := models.GetSession(ctx, session.ID)
	if err != nil {
		t.Fatalf("GetSession after mismatch: %v", err)
	}
	if stillOpen.Status != models.SessionStatusInProgress {
		t.Fatalf("mismatch must leave session in_progress; got %s", stillOpen.Status)
	}

	order, err := models.ConfirmCheckout(ctx, &models.ConfirmCheckoutInput{
		SessionId:     session.ID,
		PaidAmount:    wantTotal,
		PaymentMethod: models.PaymentMethodCash,
	})
	if err != nil {
		t.Fatalf("ConfirmCheckout: %v", err)
	}
	if order.Status != models.OrderStatusCompleted {
		t.Fatalf("expected completed order; got %s", order.Status)
	}
	if !strings.HasPrefix(order.OrderNo, "ORD") {
		t.Fatalf("unexpected order number format: %q", order.OrderNo)
	}

	settled, err := models.GetSession(ctx, session.ID)
	if err != nil {
		t.Fatalf("GetSession after checkout: %v", err)
	}
	if settled.Status != models.SessionStatusCompleted || settled.OrderNo != order.OrderNo {
		t.Fatalf("expected completed session linked to %s; got status=%s order_no=%s",
			order.OrderNo, settled.Status, settled.OrderNo)
	}
	freed, err := models.GetTable(ctx, table.ID)
	if err != nil {
		t.Fatalf("GetTable after checkout: %v", err)
	}
	if freed.Status != models.TableStatusFree {
		t.Fatalf("expected table free after checkout; got %s", freed.Status)
	}

	// Settlement must not be repeatable.
	if _, err := models.ConfirmCheckout(ctx, &models.ConfirmCheckoutInput{
		SessionId:     session.ID,
		PaidAmount:    wantTotal,
		PaymentMethod: models.PaymentMethodCash,
	}); !errors.Is(err, models.ErrSessionNotActive) {
		t.Fatalf("expected ErrSessionNotActive on double checkout; got %v", err)
	}

	incomeType := models.FinancialRecordTypeIncome
	records, err := models.GetFinancialRecords(ctx, &models.FinancialRecordFilter{
		StoreId: &store.ID,
		Type:    &incomeType,
	})
	if err != nil {
		t.Fatalf("GetFinancialRecords: %v", err)
	}
	var dineIn *models.FinancialRecord
	for _, r := range records {
		if r.OrderNo == order.OrderNo {
			dineIn = r
		}
	}
	if dineIn == nil {
		t.Fatalf("no income record posted for %s", order.OrderNo)
	}
	if dineIn.Amount.Cmp(wantTotal) != 0 {
		t.Fatalf("expected income 68; got %s", dineIn.Amount.String())
	}

	paidFor, err := models.GetMember(ctx, member.ID)
	if err != nil {
		t.Fatalf("GetMember after checkout: %v", err)
	}
	if paidFor.Points != 68 {
		t.Fatalf("expected 68 points after a 68 yuan checkout; got %d", paidFor.Points)
	}
	if paidFor.TotalConsumption.Cmp(wantTotal) != 0 {
		t.Fatalf("expected total consumption 68; got %s", paidFor.TotalConsumption.String())
	}

	assertLedgerChain(t, ctx, store.ID, tea.ID)
	assertLedgerChain(t, ctx, store.ID, cake.ID)

	// Second seating: the empty-bill guard and the cancellation path.
	table2, err := models.CreateTable(ctx, &models.NewTable{
		StoreId:  store.ID,
		TableNo:  "T02",
		Capacity: 4,
	})
	if err != nil {
		t.Fatalf("CreateTable(T02): %v", err)
	}
	session2, err := models.OpenTable(ctx, &models.OpenTableInput{TableId: table2.ID})
	if err != nil {
		t.Fatalf("OpenTable(T02): %v", err)
	}

	// A session with no items cannot settle.
	if _, err := models.ConfirmCheckout(ctx, &models.ConfirmCheckoutInput{
		SessionId:     session2.ID,
		PaidAmount:    decimal.Zero,
		PaymentMethod: models.PaymentMethodCash,
	}); !errors.Is(err, models.ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState for empty bill; got %v", err)
	}

	// One covered tea line plus one lenient line on a product that has
	// never been stocked.
	if _, err := models.AddSessionItem(ctx, &models.NewSessionItem{
		SessionId: session2.ID,
		ProductId: tea.ID,
		Quantity:  1,
	}); err != nil {
		t.Fatalf("AddSessionItem(tea, second seating): %v", err)
	}
	if inv := mustInventory(t, ctx, store.ID, tea.ID); inv.Quantity != 7 {
		t.Fatalf("expected tea stock 7; got %d", inv.Quantity)
	}
	mist, err := models.CreateProduct(ctx, &models.NewProduct{
		Name:     "Longjing Tea",
		Code:     "P002",
		Category: "tea",
		Price:    decimal.NewFromInt(25),
		Unit:     "cup",
	})
	if err != nil {
		t.Fatalf("CreateProduct(mist): %v", err)
	}
	mistLine, err := models.AddSessionItem(ctx, &models.NewSessionItem{
		SessionId: session2.ID,
		ProductId: mist.ID,
		Quantity:  1,
	})
	if err != nil {
		t.Fatalf("AddSessionItem(mist): %v", err)
	}
	if mistLine.StockDeducted || mistLine.Warning == "" {
		t.Fatalf("expected lenient shortage line; deducted=%v warning=%q",
			mistLine.StockDeducted, mistLine.Warning)
	}
	// A failed movement must not manufacture an inventory row either.
	if _, err := models.GetInventory(ctx, store.ID, mist.ID); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("expected no inventory row for never-stocked product; got %v", err)
	}

	cancelled, err := models.CancelSession(ctx, session2.ID, "guests left")
	if err != nil {
		t.Fatalf("CancelSession: %v", err)
	}
	if cancelled.Status != models.SessionStatusCancelled {
		t.Fatalf("expected cancelled session; got %s", cancelled.Status)
	}
	// Only the deducted line is re-credited.
	if inv := mustInventory(t, ctx, store.ID, tea.ID); inv.Quantity != 8 {
		t.Fatalf("expected tea restocked to 8 after cancel; got %d", inv.Quantity)
	}
	if _, err := models.GetInventory(ctx, store.ID, mist.ID); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("cancel must not restock an undeducted line; got %v", err)
	}
	freed2, err := models.GetTable(ctx, table2.ID)
	if err != nil {
		t.Fatalf("GetTable(T02): %v", err)
	}
	if freed2.Status != models.TableStatusFree {
		t.Fatalf("expected table free after cancel; got %s", freed2.Status)
	}
	if cancelled.OrderNo != "" {
		t.Fatalf("cancelled session must not carry an order number; got %q", cancelled.OrderNo)
	}
	assertLedgerChain(t, ctx, store.ID, tea.ID)

	// Back-office paths over the day's data.
	if _, err := models.CreateFinancialRecord(ctx, &models.NewFinancialRecord{
		StoreId:  store.ID,
		Type:     models.FinancialRecordTypeExpense,
		Category: "rent",
		Amount:   decimal.NewFromInt(20),
		Remark:   "monthly rent share",
	}); err != nil {
		t.Fatalf("CreateFinancialRecord: %v", err)
	}
	summary, err := models.GetDailySummary(ctx, &store.ID, time.Now())
	if err != nil {
		t.Fatalf("GetDailySummary: %v", err)
	}
	if summary.Revenue.Cmp(wantTotal) != 0 {
		t.Fatalf("expected daily revenue 68; got %s", summary.Revenue.String())
	}
	if summary.ExpenseAmount.Cmp(decimal.NewFromInt(20)) != 0 {
		t.Fatalf("expected expenses 20; got %s", summary.ExpenseAmount.String())
	}
	if summary.NetIncome.Cmp(decimal.NewFromInt(48)) != 0 {
		t.Fatalf("expected net income 48; got %s", summary.NetIncome.String())
	}

	transactions, err := models.GetMemberTransactions(ctx, member.ID, 0)
	if err != nil {
		t.Fatalf("GetMemberTransactions: %v", err)
	}
	if len(transactions) == 0 {
		t.Fatalf("expected transaction trail after checkout")
	}
	if transactions[0].Type != models.MemberTransactionTypeConsume ||
		transactions[0].OrderNo != order.OrderNo {
		t.Fatalf("expected newest transaction to be the consume row for %s; got %s %s",
			order.OrderNo, transactions[0].Type, transactions[0].OrderNo)
	}

	// Raising the threshold above the cake's stock surfaces it.
	if _, err := models.SetWarningThreshold(ctx, store.ID, cake.ID, 5); err != nil {
		t.Fatalf("SetWarningThreshold: %v", err)
	}
	low, err := models.GetLowStockItems(ctx, &store.ID)
	if err != nil {
		t.Fatalf("GetLowStockItems: %v", err)
	}
	foundCake := false
	for _, inv := range low {
		if inv.ProductId == cake.ID {
			foundCake = true
		}
	}
	if !foundCake {
		t.Fatalf("expected cake below its raised threshold")
	}

	// One bad movement rolls the whole batch back.
	teaBefore := mustInventory(t, ctx, store.ID, tea.ID).Quantity
	if _, err := models.BatchAdjustInventory(ctx, []*models.InventoryAdjustment{
		{StoreId: store.ID, ProductId: tea.ID, Delta: 5, Reason: models.AdjustReasonPurchase},
		{StoreId: store.ID, ProductId: cake.ID, Delta: -10, Reason: models.AdjustReasonLoss},
	}); !errors.Is(err, models.ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock from batch; got %v", err)
	}
	if inv := mustInventory(t, ctx, store.ID, tea.ID); inv.Quantity != teaBefore {
		t.Fatalf("failed batch must roll back every movement; tea %d -> %d", teaBefore, inv.Quantity)
	}

	rows, err := models.GetInventorySummary(ctx, &store.ID)
	if err != nil {
		t.Fatalf("GetInventorySummary: %v", err)
	}
	if len(rows) != 1 || rows[0].ProductCount < 2 {
		t.Fatalf("expected one summary row covering both products; got %+v", rows)
	}

	// Workbook exports produce real xlsx payloads (zip container).
	book, err := models.ExportInventoryXlsx(ctx, store.ID)
	if err != nil {
		t.Fatalf("ExportInventoryXlsx: %v", err)
	}
	if len(book) < 4 || book[0] != 'P' || book[1] != 'K' {
		t.Fatalf("inventory export is not an xlsx payload (%d bytes)", len(book))
	}
	now := time.Now()
	book, err = models.ExportMonthlySummaryXlsx(ctx, &store.ID, now.Year(), now.Month())
	if err != nil {
		t.Fatalf("ExportMonthlySummaryXlsx: %v", err)
	}
	if len(book) < 4 || book[0] != 'P' || book[1] != 'K' {
		t.Fatalf("monthly export is not an xlsx payload (%d bytes)", len(book))
	}
}

func mustInventory(t *testing.T, ctx context.Context, storeId, productId int) *models.Inventory {
	t.Helper()
	inv, err := models.GetInventory(ctx, storeId, productId)
	if err != nil {
		t.Fatalf("GetInventory(store=%d product=%d): %v", storeId, productId, err)
	}
	return inv
}

func mustLogCount(t *testing.T, ctx context.Context, storeId, productId int) int {
	t.Helper()
	logs, err := models.GetInventoryLogs(ctx, &models.InventoryLogFilter{
		StoreId:   &storeId,
		ProductId: &productId,
	})
	if err != nil {
		t.Fatalf("GetInventoryLogs: %v", err)
	}
	return len(logs)
}

// assertLedgerChain replays the product's ledger oldest-first and checks
// that every row balances and the chain ends at the live quantity.
func assertLedgerChain(t *testing.T, ctx context.Context, storeId, productId int) {
	t.Helper()
	logs, err := models.GetInventoryLogs(ctx, &models.InventoryLogFilter{
		StoreId:   &storeId,
		ProductId: &productId,
	})
	if err != nil {
		t.Fatalf("GetInventoryLogs: %v", err)
	}
	if len(logs) == 0 {
		t.Fatalf("expected ledger rows for product %d", productId)
	}

	// Logs come back newest-first.
	prevAfter := 0
	for i := len(logs) - 1; i >= 0; i-- {
		row := logs[i]
		if row.Quantity <= 0 {
			t.Fatalf("ledger row %d has non-positive quantity %d", row.ID, row.Quantity)
		}
		signed := row.Quantity
		if row.ChangeType == models.InventoryChangeTypeOut {
			signed = -signed
		}
		if row.BeforeQuantity != prevAfter {
			t.Fatalf("ledger row %d: before=%d does not continue previous after=%d", row.ID, row.BeforeQuantity, prevAfter)
		}
		if row.AfterQuantity != row.BeforeQuantity+signed {
			t.Fatalf("ledger row %d: after=%d, want before %d %+d", row.ID, row.AfterQuantity, row.BeforeQuantity, signed)
		}
		prevAfter = row.AfterQuantity
	}

	inv, err := models.GetInventory(ctx, storeId, productId)
	if err != nil {
		t.Fatalf("GetInventory: %v", err)
	}
	if inv.Quantity != prevAfter {
		t.Fatalf("ledger ends at %d but live quantity is %d", prevAfter, inv.Quantity)
	}
}

func startRedisContainer(t *testing.T) (containerName, hostPort string) {
	t.Helper()
	name := fmt.Sprintf("teahouse-test-redis-%d", time.Now().UnixNano())
	out, err := dockerRun(
		"run", "-d", "--name", name,
		"-p", "127.0.0.1:0:6379",
		"redis:7-alpine",
	)
	if err != nil {
		t.Fatalf("start redis container: %v\n%s", err, out)
	}
	port, err := dockerHostPort(name, "6379/tcp")
	if err != nil {
		t.Fatalf("redis docker port: %v", err)
	}
	// wait until ready
	deadline := time.Now().Add(60 * time.Second)
	for time.Now().Before(deadline) {
		_, err := dockerRun("exec", name, "redis-cli", "ping")
		if err == nil {
			return name, port
		}
		time.Sleep(250 * time.Millisecond)
	}
	t.Fatalf("redis did not become ready")
	return "", ""
}

func startMySQLContainer(t *testing.T) (containerName, hostPort string) {
	t.Helper()
	name := fmt.Sprintf("teahouse-test-mysql-%d", time.Now().UnixNano())
	out, err := dockerRun(
		"run", "-d", "--name", name,
		"-e", "MYSQL_ROOT_PASSWORD=testpw",
		"-e", "MYSQL_DATABASE=teahouse_test",
		"-p", "127.0.0.1:0:3306",
		"mysql:8.0",
		"--default-authentication-plugin=mysql_native_password",
	)
	if err != nil {
		t.Fatalf("start mysql container: %v\n%s", err, out)
	}
	port, err := dockerHostPort(name, "3306/tcp")
	if err != nil {
		t.Fatalf("mysql docker port: %v", err)
	}
	// wait until ready
	deadline := time.Now().Add(120 * time.Second)
	for time.Now().Before(deadline) {
		_, err := dockerRun("exec", name, "mysqladmin", "ping", "-h", "127.0.0.1", "-ptestpw", "--silent")
		if err == nil {
			return name, port
		}
		time.Sleep(500 * time.Millisecond)
	}
	t.Fatalf("mysql did not become ready")
	return "", ""
}

func dockerHostPort(container, portProto string) (string, error) {
	out, err := dockerRun("port", container, portProto)
	if err != nil {
		return "", fmt.Errorf("docker port: %w: %s", err, out)
	}
	// Example: "127.0.0.1:49154\n"
	re := regexp.MustCompile(`:(\d+)`)
	m := re.FindStringSubmatch(out)
	if len(m) != 2 {
		return "", fmt.Errorf("unexpected docker port output: %q", out)
	}
	return m[1], nil
}

func dockerRmForce(container string) error {
	if strings.TrimSpace(container) == "" {
		return nil
	}
	_, err := dockerRun("rm", "-f", container)
	return err
}

func dockerRun(args ...string) (string, error) {
	cmd := exec.Command("docker", args...)
	b, err := cmd.CombinedOutput()
	return string(b), err
}
