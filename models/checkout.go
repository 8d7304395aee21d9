package models

import (
	"context"
	"fmt"
	"time"

	"bitbucket.org/mmdatafocus/teahouse_backend/config"
	"bitbucket.org/mmdatafocus/teahouse_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm/clause"
)

// CheckoutView is the read-only bill presented before settlement.
type CheckoutView struct {
	SessionId       int             `json:"session_id"`
	TableNo         string          `json:"table_no"`
	GuestCount      int             `json:"guest_count"`
	DurationMinutes int             `json:"duration_minutes"`
	Items           []SessionItem   `json:"items"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	MemberNo        string          `json:"member_no,omitempty"`
	MemberBalance   decimal.Decimal `json:"member_balance"`
}

// InitiateCheckout builds the bill for an open session without touching
// any state.
func InitiateCheckout(ctx context.Context, sessionId int) (*CheckoutView, error) {

	session, err := GetSession(ctx, sessionId)
	if err != nil {
		return nil, err
	}
	if session.Status != SessionStatusInProgress {
		return nil, ErrSessionNotActive
	}

	view := CheckoutView{
		SessionId:       session.ID,
		TableNo:         session.Table.TableNo,
		GuestCount:      session.GuestCount,
		DurationMinutes: SessionDurationMinutes(session, time.Now()),
		Items:           session.Items,
		TotalAmount:     session.TotalAmount,
		MemberBalance:   decimal.Zero,
	}

	if session.MemberId != nil {
		member, err := GetMember(ctx, *session.MemberId)
		if err != nil {
			return nil, err
		}
		view.MemberNo = member.MemberNo
		view.MemberBalance = member.Balance
	}
	return &view, nil
}

type ConfirmCheckoutInput struct {
	SessionId     int             `json:"session_id" binding:"required"`
	PaidAmount    decimal.Decimal `json:"paid_amount" binding:"required"`
	PaymentMethod PaymentMethod   `json:"payment_method" binding:"required"`
	Remark        string          `json:"remark"`
}

// ConfirmCheckout settles an open session in one transaction: verifies
// the tendered amount against the running total, closes the session,
// frees the table, writes a completed order with its line items, posts
// the income entry and applies member effects. Stock already moved when
// the items were added, so settlement touches money only.
func ConfirmCheckout(ctx context.Context, input *ConfirmCheckoutInput) (*Order, error) {

	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	var session TableSession
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Preload("Items").First(&session, input.SessionId).Error; err != nil {
		tx.Rollback()
		return nil, ErrNotFound
	}
	if session.Status != SessionStatusInProgress {
		tx.Rollback()
		return nil, ErrSessionNotActive
	}
	if len(session.Items) == 0 {
		tx.Rollback()
		return nil, ErrInvalidState
	}
	if !utils.AmountsMatch(input.PaidAmount, session.TotalAmount) {
		tx.Rollback()
		return nil, ErrAmountMismatch
	}

	var member *Member
	if session.MemberId != nil {
		var m Member
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&m, *session.MemberId).Error; err != nil {
			tx.Rollback()
			return nil, ErrNotFound
		}
		member = &m
	}
	if input.PaymentMethod == PaymentMethodMemberBalance && member == nil {
		tx.Rollback()
		return nil, ErrInvalidState
	}

	orderNo, err := generateOrderNo(ctx, time.Now())
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	now := time.Now()
	order := Order{
		OrderNo:       orderNo,
		StoreId:       session.StoreId,
		TableId:       &session.TableId,
		SessionId:     &session.ID,
		MemberId:      session.MemberId,
		Status:        OrderStatusCompleted,
		TotalAmount:   session.TotalAmount,
		PaidAmount:    input.PaidAmount,
		PaymentMethod: input.PaymentMethod,
		PaidAt:        &now,
		CompletedAt:   &now,
		Remark:        input.Remark,
		OperatorName:  utils.GetOperatorName(ctx),
	}
	if err := tx.Create(&order).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	for _, si := range session.Items {
		oi := OrderItem{
			OrderId:     order.ID,
			ProductId:   si.ProductId,
			ProductName: si.ProductName,
			Quantity:    si.Quantity,
			UnitPrice:   si.UnitPrice,
			LineTotal:   si.LineTotal,
			Remark:      si.Remark,
		}
		if err := tx.Create(&oi).Error; err != nil {
			tx.Rollback()
			return nil, err
		}
		order.Items = append(order.Items, oi)
	}

	if err := tx.Model(&session).Updates(map[string]interface{}{
		"Status":   SessionStatusCompleted,
		"OrderNo":  orderNo,
		"ClosedAt": now,
	}).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Model(&Table{}).Where("id = ?", session.TableId).
		Update("status", TableStatusFree).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := createFinancialRecordTx(ctx, tx, &FinancialRecord{
		StoreId:  session.StoreId,
		Type:     FinancialRecordTypeIncome,
		Category: "dine_in",
		Amount:   input.PaidAmount,
		OrderNo:  orderNo,
		Remark:   fmt.Sprintf("table %d settle", session.TableId),
	}); err != nil {
		tx.Rollback()
		return nil, err
	}

	if member != nil {
		debitBalance := input.PaymentMethod == PaymentMethodMemberBalance
		if err := applyMemberConsumptionTx(ctx, tx, member, input.PaidAmount, debitBalance, orderNo); err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// CancelSession abandons an open session: credits back every line that
// deducted stock, marks the session cancelled and frees the table. No
// order and no financial entry are written.
func CancelSession(ctx context.Context, sessionId int, reason string) (*TableSession, error) {

	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	var session TableSession
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Preload("Items").First(&session, sessionId).Error; err != nil {
		tx.Rollback()
		return nil, ErrNotFound
	}
	if session.Status != SessionStatusInProgress {
		tx.Rollback()
		return nil, ErrSessionNotActive
	}

	remark := fmt.Sprintf("session %d cancelled", session.ID)
	if len(reason) > 0 {
		remark += ": " + reason
	}
	for _, si := range session.Items {
		if si.StockDeducted == nil || !*si.StockDeducted {
			continue
		}
		_, err := adjustInventoryTx(ctx, tx, session.StoreId, si.ProductId,
			si.Quantity, AdjustReasonSaleReversal, remark)
		if err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	now := time.Now()
	if err := tx.Model(&session).Updates(map[string]interface{}{
		"Status":   SessionStatusCancelled,
		"ClosedAt": now,
	}).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	session.Status = SessionStatusCancelled
	session.ClosedAt = &now

	if err := tx.Model(&Table{}).Where("id = ?", session.TableId).
		Update("status", TableStatusFree).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return &session, nil
}
