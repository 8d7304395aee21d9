package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"bitbucket.org/mmdatafocus/teahouse_backend/models"
	"github.com/shopspring/decimal"
)

func init() {
	register(&Tool{
		Name:        "open_table",
		Description: "Open a dine-in session on a free table.",
		Handler:     openTable,
	})
	register(&Tool{
		Name:        "add_item",
		Description: "Add a product to an open session; deducts stock.",
		Handler:     addItem,
	})
	register(&Tool{
		Name:        "remove_item",
		Description: "Remove a line from an open session; restores stock it took.",
		Handler:     removeItem,
	})
	register(&Tool{
		Name:        "checkout",
		Description: "Show the bill for an open session.",
		Handler:     checkout,
	})
	register(&Tool{
		Name:        "confirm_checkout",
		Description: "Settle an open session with a payment.",
		Handler:     confirmCheckout,
	})
	register(&Tool{
		Name:        "cancel_session",
		Description: "Abandon an open session; restores stock and frees the table.",
		Handler:     cancelSession,
	})
	register(&Tool{
		Name:        "active_sessions",
		Description: "List sessions currently in progress.",
		Handler:     activeSessions,
	})
}

type openTableArgs struct {
	TableId    int  `json:"table_id" validate:"required"`
	GuestCount int  `json:"guest_count"`
	MemberId   *int `json:"member_id"`
}

func openTable(ctx context.Context, args json.RawMessage) (string, error) {
	var a openTableArgs
	if err := decodeArgs(args, &a); err != nil {
		return "", err
	}

	session, err := models.OpenTable(ctx, &models.OpenTableInput{
		TableId:    a.TableId,
		GuestCount: a.GuestCount,
		MemberId:   a.MemberId,
	})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Table %s opened for %d guest(s); session %d started.",
		session.Table.TableNo, session.GuestCount, session.ID), nil
}

type addItemArgs struct {
	SessionId int    `json:"session_id" validate:"required"`
	ProductId int    `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,gt=0"`
	Remark    string `json:"remark"`
}

func addItem(ctx context.Context, args json.RawMessage) (string, error) {
	var a addItemArgs
	if err := decodeArgs(args, &a); err != nil {
		return "", err
	}

	result, err := models.AddSessionItem(ctx, &models.NewSessionItem{
		SessionId: a.SessionId,
		ProductId: a.ProductId,
		Quantity:  a.Quantity,
		Remark:    a.Remark,
	})
	if err != nil {
		return "", err
	}

	msg := fmt.Sprintf("Added %d x %s (%s each); session total is %s.",
		result.Item.Quantity, result.Item.ProductName,
		result.Item.UnitPrice.StringFixed(2), result.SessionTotal.StringFixed(2))
	if len(result.Warning) > 0 {
		msg += " Warning: " + result.Warning + "."
	}
	return msg, nil
}

type removeItemArgs struct {
	SessionId int `json:"session_id" validate:"required"`
	ItemId    int `json:"item_id" validate:"required"`
}

func removeItem(ctx context.Context, args json.RawMessage) (string, error) {
	var a removeItemArgs
	if err := decodeArgs(args, &a); err != nil {
		return "", err
	}

	session, err := models.RemoveSessionItem(ctx, a.SessionId, a.ItemId)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Item removed; session total is now %s.", session.TotalAmount.StringFixed(2)), nil
}

type checkoutArgs struct {
	SessionId int `json:"session_id" validate:"required"`
}

func checkout(ctx context.Context, args json.RawMessage) (string, error) {
	var a checkoutArgs
	if err := decodeArgs(args, &a); err != nil {
		return "", err
	}

	view, err := models.InitiateCheckout(ctx, a.SessionId)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Bill for table %s (%d guests, %d min):\n",
		view.TableNo, view.GuestCount, view.DurationMinutes)
	for _, item := range view.Items {
		fmt.Fprintf(&b, "- %d x %s @ %s = %s\n",
			item.Quantity, item.ProductName, item.UnitPrice.StringFixed(2), item.LineTotal.StringFixed(2))
	}
	fmt.Fprintf(&b, "Total: %s\n", view.TotalAmount.StringFixed(2))
	if len(view.MemberNo) > 0 {
		fmt.Fprintf(&b, "Member %s, balance %s\n", view.MemberNo, view.MemberBalance.StringFixed(2))
	}
	return b.String(), nil
}

type confirmCheckoutArgs struct {
	SessionId     int             `json:"session_id" validate:"required"`
	PaidAmount    decimal.Decimal `json:"paid_amount" validate:"required"`
	PaymentMethod string          `json:"payment_method" validate:"required"`
	Remark        string          `json:"remark"`
}

func confirmCheckout(ctx context.Context, args json.RawMessage) (string, error) {
	var a confirmCheckoutArgs
	if err := decodeArgs(args, &a); err != nil {
		return "", err
	}

	method, err := models.ParsePaymentMethod(a.PaymentMethod)
	if err != nil {
		return "", err
	}

	order, err := models.ConfirmCheckout(ctx, &models.ConfirmCheckoutInput{
		SessionId:     a.SessionId,
		PaidAmount:    a.PaidAmount,
		PaymentMethod: method,
		Remark:        a.Remark,
	})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Session settled: order %s, %s paid by %s.",
		order.OrderNo, order.PaidAmount.StringFixed(2), order.PaymentMethod), nil
}

type cancelSessionArgs struct {
	SessionId int    `json:"session_id" validate:"required"`
	Reason    string `json:"reason"`
}

func cancelSession(ctx context.Context, args json.RawMessage) (string, error) {
	var a cancelSessionArgs
	if err := decodeArgs(args, &a); err != nil {
		return "", err
	}

	session, err := models.CancelSession(ctx, a.SessionId, a.Reason)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Session %d cancelled; table freed and stock restored.", session.ID), nil
}

type activeSessionsArgs struct {
	StoreId *int `json:"store_id"`
}

func activeSessions(ctx context.Context, args json.RawMessage) (string, error) {
	var a activeSessionsArgs
	if err := decodeArgs(args, &a); err != nil {
		return "", err
	}

	sessions, err := models.GetActiveSessions(ctx, a.StoreId)
	if err != nil {
		return "", err
	}
	if len(sessions) == 0 {
		return "No sessions in progress.", nil
	}

	now := time.Now()
	var b strings.Builder
	fmt.Fprintf(&b, "%d session(s) in progress:\n", len(sessions))
	for _, s := range sessions {
		fmt.Fprintf(&b, "- session %d, table %s, %d guest(s), %d min, total %s\n",
			s.ID, s.Table.TableNo, s.GuestCount,
			models.SessionDurationMinutes(s, now), s.TotalAmount.StringFixed(2))
	}
	return b.String(), nil
}
