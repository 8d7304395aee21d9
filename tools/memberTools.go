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
		Name:        "create_member",
		Description: "Register a member; the member number is generated.",
		Handler:     createMember,
	})
	register(&Tool{
		Name:        "get_members",
		Description: "Search members by level or keyword (name, phone, member number).",
		Handler:     getMembers,
	})
	register(&Tool{
		Name:        "member_recharge",
		Description: "Top up a member's stored balance.",
		Handler:     memberRecharge,
	})
	register(&Tool{
		Name:        "member_points_adjust",
		Description: "Grant or revoke member points without touching the balance.",
		Handler:     memberPointsAdjust,
	})
	register(&Tool{
		Name:        "member_transactions",
		Description: "Show a member's balance and points history, newest first.",
		Handler:     memberTransactions,
	})
	register(&Tool{
		Name:        "top_members",
		Description: "Rank members by lifetime consumption.",
		Handler:     topMembers,
	})
}

type createMemberArgs struct {
	Name  string `json:"name" validate:"required"`
	Phone string `json:"phone" validate:"required"`
}

func createMember(ctx context.Context, args json.RawMessage) (string, error) {
	var a createMemberArgs
	if err := decodeArgs(args, &a); err != nil {
		return "", err
	}

	member, err := models.CreateMember(ctx, &models.NewMember{
		Name:  a.Name,
		Phone: a.Phone,
	})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Member %s registered with number %s.", member.Name, member.MemberNo), nil
}

type getMembersArgs struct {
	Level   string `json:"level"`
	Keyword string `json:"keyword"`
	Limit   int    `json:"limit"`
}

func getMembers(ctx context.Context, args json.RawMessage) (string, error) {
	var a getMembersArgs
	if err := decodeArgs(args, &a); err != nil {
		return "", err
	}

	var level *models.MemberLevel
	if len(a.Level) > 0 {
		l, err := models.ParseMemberLevel(a.Level)
		if err != nil {
			return "", err
		}
		level = &l
	}
	var keyword *string
	if len(a.Keyword) > 0 {
		keyword = &a.Keyword
	}

	members, err := models.GetMembers(ctx, level, keyword, a.Limit)
	if err != nil {
		return "", err
	}
	if len(members) == 0 {
		return "No members found.", nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d member(s):\n", len(members))
	for _, m := range members {
		fmt.Fprintf(&b, "- %s %s (%s), balance %s, points %d, spent %s\n",
			m.MemberNo, m.Name, m.Level, m.Balance.StringFixed(2), m.Points,
			m.TotalConsumption.StringFixed(2))
	}
	return b.String(), nil
}

type memberRechargeArgs struct {
	MemberId int             `json:"member_id" validate:"required"`
	StoreId  int             `json:"store_id" validate:"required"`
	Amount   decimal.Decimal `json:"amount" validate:"required"`
	Remark   string          `json:"remark"`
}

func memberRecharge(ctx context.Context, args json.RawMessage) (string, error) {
	var a memberRechargeArgs
	if err := decodeArgs(args, &a); err != nil {
		return "", err
	}

	member, err := models.RechargeBalance(ctx, a.MemberId, a.Amount, a.StoreId, a.Remark)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Recharged %s for member %s; balance is now %s.",
		a.Amount.StringFixed(2), member.MemberNo, member.Balance.StringFixed(2)), nil
}

type memberPointsAdjustArgs struct {
	MemberId int    `json:"member_id" validate:"required"`
	Delta    int    `json:"delta" validate:"required"`
	Remark   string `json:"remark"`
}

func memberPointsAdjust(ctx context.Context, args json.RawMessage) (string, error) {
	var a memberPointsAdjustArgs
	if err := decodeArgs(args, &a); err != nil {
		return "", err
	}

	member, err := models.AdjustMemberPoints(ctx, a.MemberId, a.Delta, a.Remark)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Points adjusted by %d for member %s; now %d points at level %s.",
		a.Delta, member.MemberNo, member.Points, member.Level), nil
}

type memberTransactionsArgs struct {
	MemberId int `json:"member_id" validate:"required"`
	Limit    int `json:"limit"`
}

func memberTransactions(ctx context.Context, args json.RawMessage) (string, error) {
	var a memberTransactionsArgs
	if err := decodeArgs(args, &a); err != nil {
		return "", err
	}

	records, err := models.GetMemberTransactions(ctx, a.MemberId, a.Limit)
	if err != nil {
		return "", err
	}
	if len(records) == 0 {
		return "No transactions for this member.", nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d transaction(s), newest first:\n", len(records))
	for _, r := range records {
		fmt.Fprintf(&b, "- %s %s: amount %s, points %+d, balance %s, points total %d",
			r.CreatedAt.Format("2006-01-02 15:04"), r.Type, r.Amount.StringFixed(2),
			r.Points, r.BalanceAfter.StringFixed(2), r.PointsAfter)
		if len(r.OrderNo) > 0 {
			fmt.Fprintf(&b, " (%s)", r.OrderNo)
		}
		b.WriteString("\n")
	}
	return b.String(), nil
}

type topMembersArgs struct {
	Limit int `json:"limit"`
}

func topMembers(ctx context.Context, args json.RawMessage) (string, error) {
	var a topMembersArgs
	if err := decodeArgs(args, &a); err != nil {
		return "", err
	}

	members, err := models.GetTopMembers(ctx, a.Limit)
	if err != nil {
		return "", err
	}
	if len(members) == 0 {
		return "No members found.", nil
	}

	var b strings.Builder
	b.WriteString("Top members by consumption:\n")
	for i, m := range members {
		fmt.Fprintf(&b, "%d. %s %s (%s), spent %s\n",
			i+1, m.MemberNo, m.Name, m.Level, m.TotalConsumption.StringFixed(2))
	}
	return b.String(), nil
}
