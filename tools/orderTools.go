package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"bitbucket.org/mmdatafocus/teahouse_backend/models"
	"github.com/shopspring/decimal"
)

func init() {
	register(&Tool{
		Name:        "create_order",
		Description: "Open a pending takeaway order.",
		Handler:     createOrder,
	})
	register(&Tool{
		Name:        "pay_order",
		Description: "Pay a pending order; deducts stock and completes it.",
		Handler:     payOrder,
	})
	register(&Tool{
		Name:        "cancel_order",
		Description: "Void a pending order or refund a completed one.",
		Handler:     cancelOrder,
	})
	register(&Tool{
		Name:        "get_orders",
		Description: "List orders, optionally by store, member or status.",
		Handler:     getOrders,
	})
}

type createOrderArgs struct {
	StoreId  int    `json:"store_id" validate:"required"`
	MemberId *int   `json:"member_id"`
	Remark   string `json:"remark"`
	Items    []struct {
		ProductId int    `json:"product_id" validate:"required"`
		Quantity  int    `json:"quantity" validate:"required,gt=0"`
		Remark    string `json:"remark"`
	} `json:"items" validate:"required,min=1,dive"`
}

func createOrder(ctx context.Context, args json.RawMessage) (string, error) {
	var a createOrderArgs
	if err := decodeArgs(args, &a); err != nil {
		return "", err
	}

	input := models.NewOrder{
		StoreId:  a.StoreId,
		MemberId: a.MemberId,
		Remark:   a.Remark,
	}
	for _, item := range a.Items {
		input.Items = append(input.Items, models.NewOrderItem{
			ProductId: item.ProductId,
			Quantity:  item.Quantity,
			Remark:    item.Remark,
		})
	}

	order, err := models.CreateOrder(ctx, &input)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Order %s created with %d item(s), total %s. It is pending payment.",
		order.OrderNo, len(order.Items), order.TotalAmount.StringFixed(2)), nil
}

type payOrderArgs struct {
	OrderId       int             `json:"order_id" validate:"required"`
	PaidAmount    decimal.Decimal `json:"paid_amount" validate:"required"`
	PaymentMethod string          `json:"payment_method" validate:"required"`
}

func payOrder(ctx context.Context, args json.RawMessage) (string, error) {
	var a payOrderArgs
	if err := decodeArgs(args, &a); err != nil {
		return "", err
	}

	method, err := models.ParsePaymentMethod(a.PaymentMethod)
	if err != nil {
		return "", err
	}

	order, err := models.PayOrder(ctx, &models.PayOrderInput{
		OrderId:       a.OrderId,
		PaidAmount:    a.PaidAmount,
		PaymentMethod: method,
	})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Order %s paid %s by %s and completed.",
		order.OrderNo, order.PaidAmount.StringFixed(2), order.PaymentMethod), nil
}

type cancelOrderArgs struct {
	OrderId int    `json:"order_id" validate:"required"`
	Reason  string `json:"reason"`
}

func cancelOrder(ctx context.Context, args json.RawMessage) (string, error) {
	var a cancelOrderArgs
	if err := decodeArgs(args, &a); err != nil {
		return "", err
	}

	order, err := models.CancelOrder(ctx, a.OrderId, a.Reason)
	if err != nil {
		return "", err
	}
	if order.Status == models.OrderStatusRefunded {
		return fmt.Sprintf("Order %s refunded %s; stock restored.",
			order.OrderNo, order.PaidAmount.StringFixed(2)), nil
	}
	return fmt.Sprintf("Order %s cancelled.", order.OrderNo), nil
}

type getOrdersArgs struct {
	StoreId  *int   `json:"store_id"`
	MemberId *int   `json:"member_id"`
	Status   string `json:"status"`
	Limit    int    `json:"limit"`
}

func getOrders(ctx context.Context, args json.RawMessage) (string, error) {
	var a getOrdersArgs
	if err := decodeArgs(args, &a); err != nil {
		return "", err
	}

	filter := models.OrderFilter{
		StoreId:  a.StoreId,
		MemberId: a.MemberId,
		Limit:    a.Limit,
	}
	if len(a.Status) > 0 {
		status, err := models.ParseOrderStatus(a.Status)
		if err != nil {
			return "", err
		}
		filter.Status = &status
	}

	orders, err := models.GetOrders(ctx, &filter)
	if err != nil {
		return "", err
	}
	if len(orders) == 0 {
		return "No orders matched.", nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d order(s), newest first:\n", len(orders))
	for _, o := range orders {
		fmt.Fprintf(&b, "- %s (%s) store %d, %d item(s), total %s\n",
			o.OrderNo, o.Status, o.StoreId, len(o.Items), o.TotalAmount.StringFixed(2))
	}
	return b.String(), nil
}
