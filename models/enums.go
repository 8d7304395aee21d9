package models

import "fmt"

type StoreStatus string

const (
	StoreStatusActive   StoreStatus = "active"
	StoreStatusInactive StoreStatus = "inactive"
)

func ParseStoreStatus(s string) (StoreStatus, error) {
	switch StoreStatus(s) {
	case StoreStatusActive, StoreStatusInactive:
		return StoreStatus(s), nil
	}
	return "", fmt.Errorf("invalid store status: %q", s)
}

type EmployeePosition string

const (
	EmployeePositionManager EmployeePosition = "manager"
	EmployeePositionCashier EmployeePosition = "cashier"
	EmployeePositionWaiter  EmployeePosition = "waiter"
	EmployeePositionChef    EmployeePosition = "chef"
)

func ParseEmployeePosition(s string) (EmployeePosition, error) {
	switch EmployeePosition(s) {
	case EmployeePositionManager, EmployeePositionCashier, EmployeePositionWaiter, EmployeePositionChef:
		return EmployeePosition(s), nil
	}
	return "", fmt.Errorf("invalid employee position: %q", s)
}

type MemberLevel string

const (
	MemberLevelNormal   MemberLevel = "normal"
	MemberLevelBronze   MemberLevel = "bronze"
	MemberLevelSilver   MemberLevel = "silver"
	MemberLevelGold     MemberLevel = "gold"
	MemberLevelPlatinum MemberLevel = "platinum"
)

func ParseMemberLevel(s string) (MemberLevel, error) {
	switch MemberLevel(s) {
	case MemberLevelNormal, MemberLevelBronze, MemberLevelSilver, MemberLevelGold, MemberLevelPlatinum:
		return MemberLevel(s), nil
	}
	return "", fmt.Errorf("invalid member level: %q", s)
}

type InventoryChangeType string

const (
	InventoryChangeTypeIn  InventoryChangeType = "in"
	InventoryChangeTypeOut InventoryChangeType = "out"
)

type TableStatus string

const (
	TableStatusFree     TableStatus = "free"
	TableStatusOccupied TableStatus = "occupied"
	TableStatusReserved TableStatus = "reserved"
	TableStatusCleaning TableStatus = "cleaning"
)

func ParseTableStatus(s string) (TableStatus, error) {
	switch TableStatus(s) {
	case TableStatusFree, TableStatusOccupied, TableStatusReserved, TableStatusCleaning:
		return TableStatus(s), nil
	}
	return "", fmt.Errorf("invalid table status: %q", s)
}

type SessionStatus string

const (
	SessionStatusInProgress SessionStatus = "in_progress"
	SessionStatusPaid       SessionStatus = "paid"
	SessionStatusCompleted  SessionStatus = "completed"
	SessionStatusCancelled  SessionStatus = "cancelled"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCancelled OrderStatus = "cancelled"
	OrderStatusRefunded  OrderStatus = "refunded"
)

func ParseOrderStatus(s string) (OrderStatus, error) {
	switch OrderStatus(s) {
	case OrderStatusPending, OrderStatusPaid, OrderStatusCompleted, OrderStatusCancelled, OrderStatusRefunded:
		return OrderStatus(s), nil
	}
	return "", fmt.Errorf("invalid order status: %q", s)
}

type PaymentMethod string

const (
	PaymentMethodCash          PaymentMethod = "cash"
	PaymentMethodWechat        PaymentMethod = "wechat"
	PaymentMethodAlipay        PaymentMethod = "alipay"
	PaymentMethodCard          PaymentMethod = "card"
	PaymentMethodMemberBalance PaymentMethod = "member_balance"
)

func ParsePaymentMethod(s string) (PaymentMethod, error) {
	switch PaymentMethod(s) {
	case PaymentMethodCash, PaymentMethodWechat, PaymentMethodAlipay, PaymentMethodCard, PaymentMethodMemberBalance:
		return PaymentMethod(s), nil
	}
	return "", fmt.Errorf("invalid payment method: %q", s)
}

type FinancialRecordType string

const (
	FinancialRecordTypeIncome  FinancialRecordType = "income"
	FinancialRecordTypeExpense FinancialRecordType = "expense"
	FinancialRecordTypeRefund  FinancialRecordType = "refund"
)

func ParseFinancialRecordType(s string) (FinancialRecordType, error) {
	switch FinancialRecordType(s) {
	case FinancialRecordTypeIncome, FinancialRecordTypeExpense, FinancialRecordTypeRefund:
		return FinancialRecordType(s), nil
	}
	return "", fmt.Errorf("invalid financial record type: %q", s)
}

type MemberTransactionType string

const (
	MemberTransactionTypeRecharge     MemberTransactionType = "recharge"
	MemberTransactionTypeConsume      MemberTransactionType = "consume"
	MemberTransactionTypeRefund       MemberTransactionType = "refund"
	MemberTransactionTypePointsAdd    MemberTransactionType = "points_add"
	MemberTransactionTypePointsDeduct MemberTransactionType = "points_deduct"
)

// Inventory adjustment reason tags. Free-text remains allowed in the remark;
// the reason column is the machine-readable audit tag.
const (
	AdjustReasonPurchase     = "purchase"
	AdjustReasonSale         = "sale"
	AdjustReasonSaleReversal = "sale-reversal"
	AdjustReasonLoss         = "loss"
	AdjustReasonManualIn     = "manual-in"
	AdjustReasonManualOut    = "manual-out"
)
