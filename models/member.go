package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bitbucket.org/mmdatafocus/teahouse_backend/config"
	"bitbucket.org/mmdatafocus/teahouse_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Member struct {
	ID               int             `gorm:"primary_key" json:"id"`
	MemberNo         string          `gorm:"size:20;uniqueIndex;not null" json:"member_no"`
	Name             string          `gorm:"size:50;not null" json:"name" binding:"required"`
	Phone            string          `gorm:"size:20;uniqueIndex;not null" json:"phone" binding:"required"`
	Level            MemberLevel     `gorm:"type:varchar(20);not null;default:'normal'" json:"level"`
	Balance          decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"balance"`
	Points           int             `gorm:"not null;default:0" json:"points"`
	TotalConsumption decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"total_consumption"`
	Birthday         *time.Time      `json:"birthday"`
	IsActive         *bool           `gorm:"not null;default:true" json:"is_active"`
	CreatedAt        time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

// MemberTransaction is the append-only audit trail of every balance or
// points movement. Rows are never edited after creation.
type MemberTransaction struct {
	ID            int                   `gorm:"primary_key" json:"id"`
	MemberId      int                   `gorm:"index;not null" json:"member_id"`
	Member        Member                `json:"member"`
	Type          MemberTransactionType `gorm:"type:varchar(20);not null" json:"type"`
	Amount        decimal.Decimal       `gorm:"type:decimal(20,4);default:0" json:"amount"`
	Points        int                   `gorm:"not null;default:0" json:"points"`
	BalanceAfter  decimal.Decimal       `gorm:"type:decimal(20,4);default:0" json:"balance_after"`
	PointsAfter   int                   `gorm:"not null;default:0" json:"points_after"`
	OrderNo       string                `gorm:"size:30;index" json:"order_no"`
	Remark        string                `gorm:"size:255" json:"remark"`
	OperatorName  string                `gorm:"size:50" json:"operator_name"`
	CreatedAt     time.Time             `gorm:"autoCreateTime" json:"created_at"`
}

type NewMember struct {
	Name     string     `json:"name" binding:"required"`
	Phone    string     `json:"phone" binding:"required"`
	Birthday *time.Time `json:"birthday"`
}

func (input *NewMember) validate(ctx context.Context, id int) error {
	if err := utils.ValidatePhoneNumber(input.Phone, utils.CountryCode); err != nil {
		return err
	}
	if err := utils.ValidateUnique[Member](ctx, "phone", input.Phone, id); err != nil {
		return err
	}
	return nil
}

// memberLevelFor derives the level from lifetime spend and points. The
// qualifying figure is whichever of the two is larger.
func memberLevelFor(totalConsumption decimal.Decimal, points int) MemberLevel {
	qualifier := totalConsumption
	pts := decimal.NewFromInt(int64(points))
	if pts.GreaterThan(qualifier) {
		qualifier = pts
	}

	switch {
	case qualifier.GreaterThanOrEqual(decimal.NewFromInt(50000)):
		return MemberLevelPlatinum
	case qualifier.GreaterThanOrEqual(decimal.NewFromInt(20000)):
		return MemberLevelGold
	case qualifier.GreaterThanOrEqual(decimal.NewFromInt(10000)):
		return MemberLevelSilver
	case qualifier.GreaterThanOrEqual(decimal.NewFromInt(5000)):
		return MemberLevelBronze
	default:
		return MemberLevelNormal
	}
}

// generateMemberNo issues M + yyyymmdd + a 4 digit daily sequence.
func generateMemberNo(ctx context.Context, now time.Time) (string, error) {
	seq, err := utils.GetDailySequence(ctx, "member", now, func(ctx context.Context) (int64, error) {
		db := config.GetDB()
		var count int64
		prefix := "M" + now.Format("20060102") + "%"
		err := db.WithContext(ctx).Model(&Member{}).
			Where("member_no LIKE ?", prefix).Count(&count).Error
		return count, err
	})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("M%s%04d", now.Format("20060102"), seq), nil
}

func CreateMember(ctx context.Context, input *NewMember) (*Member, error) {

	if err := input.validate(ctx, 0); err != nil {
		return nil, err
	}

	memberNo, err := generateMemberNo(ctx, time.Now())
	if err != nil {
		return nil, err
	}

	member := Member{
		MemberNo: memberNo,
		Name:     input.Name,
		Phone:    input.Phone,
		Level:    MemberLevelNormal,
		Balance:  decimal.Zero,
		Birthday: input.Birthday,
		IsActive: utils.NewTrue(),
	}

	// db action
	db := config.GetDB()
	err = db.WithContext(ctx).Create(&member).Error
	if err != nil {
		if utils.IsMySQLDuplicateEntry(err) {
			return nil, ErrDuplicateKey
		}
		return nil, err
	}
	return &member, nil
}

func UpdateMember(ctx context.Context, id int, input *NewMember) (*Member, error) {

	if err := input.validate(ctx, id); err != nil {
		return nil, err
	}

	member, err := utils.FetchModel[Member](ctx, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Model(member).Updates(map[string]interface{}{
		"Name":     input.Name,
		"Phone":    input.Phone,
		"Birthday": input.Birthday,
	}).Error
	if err != nil {
		return nil, err
	}
	return member, nil
}

func DeactivateMember(ctx context.Context, id int) error {
	member, err := utils.FetchModel[Member](ctx, id)
	if err != nil {
		return err
	}
	db := config.GetDB()
	return db.WithContext(ctx).Model(member).Update("IsActive", false).Error
}

func GetMember(ctx context.Context, id int) (*Member, error) {
	return utils.FetchModel[Member](ctx, id)
}

func GetMemberByNo(ctx context.Context, memberNo string) (*Member, error) {
	db := config.GetDB()
	var member Member
	if err := db.WithContext(ctx).Where("member_no = ?", memberNo).First(&member).Error; err != nil {
		return nil, ErrNotFound
	}
	return &member, nil
}

func GetMemberByPhone(ctx context.Context, phone string) (*Member, error) {
	db := config.GetDB()
	var member Member
	if err := db.WithContext(ctx).Where("phone = ?", phone).First(&member).Error; err != nil {
		return nil, ErrNotFound
	}
	return &member, nil
}

func GetMembers(ctx context.Context, level *MemberLevel, keyword *string, limit int) ([]*Member, error) {
	db := config.GetDB()
	var results []*Member

	if limit <= 0 || limit > config.SearchLimit {
		limit = config.SearchLimit
	}

	dbCtx := db.WithContext(ctx).Where("is_active = ?", true)
	if level != nil {
		dbCtx = dbCtx.Where("level = ?", *level)
	}
	if keyword != nil && len(*keyword) > 0 {
		kw := "%" + *keyword + "%"
		dbCtx = dbCtx.Where("name LIKE ? OR phone LIKE ? OR member_no LIKE ?", kw, kw, kw)
	}
	err := dbCtx.Order("member_no").Limit(limit).Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

// GetTopMembers ranks active members by lifetime consumption.
func GetTopMembers(ctx context.Context, limit int) ([]*Member, error) {
	db := config.GetDB()
	var results []*Member

	if limit <= 0 || limit > config.SearchLimit {
		limit = 10
	}
	err := db.WithContext(ctx).Where("is_active = ?", true).
		Order("total_consumption DESC").Limit(limit).Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

func CountMembers(ctx context.Context) (int64, error) {
	return utils.ResourceCountWhere[Member](ctx, "is_active = ?", true)
}

// RechargeBalance tops up a member account. The top-up is recorded as a
// member transaction and as an income entry in the financial ledger.
func RechargeBalance(ctx context.Context, memberId int, amount decimal.Decimal, storeId int, remark string) (*Member, error) {

	if !amount.IsPositive() {
		return nil, errors.New("recharge amount must be positive")
	}
	if err := utils.ValidateResourceId[Store](ctx, storeId); err != nil {
		return nil, err
	}

	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	var member Member
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&member, memberId).Error; err != nil {
		tx.Rollback()
		return nil, ErrNotFound
	}

	newBalance := member.Balance.Add(amount)
	if err := tx.Model(&member).Update("Balance", newBalance).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	member.Balance = newBalance

	record := MemberTransaction{
		MemberId:     member.ID,
		Type:         MemberTransactionTypeRecharge,
		Amount:       amount,
		BalanceAfter: newBalance,
		PointsAfter:  member.Points,
		Remark:       remark,
		OperatorName: utils.GetOperatorName(ctx),
	}
	if err := tx.Create(&record).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := createFinancialRecordTx(ctx, tx, &FinancialRecord{
		StoreId:  storeId,
		Type:     FinancialRecordTypeIncome,
		Category: "recharge",
		Amount:   amount,
		Remark:   fmt.Sprintf("member %s recharge", member.MemberNo),
	}); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return &member, nil
}

// AdjustMemberPoints grants or revokes points outside the sale flow, for
// promotions and manual corrections. The wallet balance is untouched.
func AdjustMemberPoints(ctx context.Context, memberId int, delta int, remark string) (*Member, error) {

	if delta == 0 {
		return nil, errors.New("points delta must be non-zero")
	}

	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	var member Member
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&member, memberId).Error; err != nil {
		tx.Rollback()
		return nil, ErrNotFound
	}

	newPoints := member.Points + delta
	if newPoints < 0 {
		tx.Rollback()
		return nil, ErrInvalidState
	}
	newLevel := memberLevelFor(member.TotalConsumption, newPoints)

	if err := tx.Model(&member).Updates(map[string]interface{}{
		"Points": newPoints,
		"Level":  newLevel,
	}).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	member.Points = newPoints
	member.Level = newLevel

	txType := MemberTransactionTypePointsAdd
	if delta < 0 {
		txType = MemberTransactionTypePointsDeduct
	}
	record := MemberTransaction{
		MemberId:     member.ID,
		Type:         txType,
		Points:       delta,
		BalanceAfter: member.Balance,
		PointsAfter:  newPoints,
		Remark:       remark,
		OperatorName: utils.GetOperatorName(ctx),
	}
	if err := tx.Create(&record).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return &member, nil
}

// applyMemberConsumptionTx settles a member's share of a sale inside the
// caller's transaction: optionally debits the stored balance, accrues
// points one per currency unit paid, bumps lifetime consumption and
// recomputes the level. The member row must already be locked.
func applyMemberConsumptionTx(ctx context.Context, tx *gorm.DB, member *Member, paidAmount decimal.Decimal, debitBalance bool, orderNo string) error {

	newBalance := member.Balance
	if debitBalance {
		newBalance = member.Balance.Sub(paidAmount)
		if newBalance.IsNegative() {
			return ErrInsufficientBalance
		}
	}

	earnedPoints := int(paidAmount.IntPart())
	newPoints := member.Points + earnedPoints
	newTotal := member.TotalConsumption.Add(paidAmount)
	newLevel := memberLevelFor(newTotal, newPoints)

	err := tx.Model(member).Updates(map[string]interface{}{
		"Balance":          newBalance,
		"Points":           newPoints,
		"TotalConsumption": newTotal,
		"Level":            newLevel,
	}).Error
	if err != nil {
		return err
	}
	member.Balance = newBalance
	member.Points = newPoints
	member.TotalConsumption = newTotal
	member.Level = newLevel

	record := MemberTransaction{
		MemberId:     member.ID,
		Type:         MemberTransactionTypeConsume,
		Amount:       paidAmount,
		Points:       earnedPoints,
		BalanceAfter: newBalance,
		PointsAfter:  newPoints,
		OrderNo:      orderNo,
		OperatorName: utils.GetOperatorName(ctx),
	}
	return tx.Create(&record).Error
}

// reverseMemberConsumptionTx undoes the effects of applyMemberConsumptionTx
// when a paid order is refunded. Points and lifetime consumption are clawed
// back; the balance is re-credited only when it funded the sale.
func reverseMemberConsumptionTx(ctx context.Context, tx *gorm.DB, member *Member, paidAmount decimal.Decimal, creditBalance bool, orderNo string) error {

	newBalance := member.Balance
	if creditBalance {
		newBalance = member.Balance.Add(paidAmount)
	}

	reversedPoints := int(paidAmount.IntPart())
	newPoints := member.Points - reversedPoints
	if newPoints < 0 {
		newPoints = 0
	}
	newTotal := member.TotalConsumption.Sub(paidAmount)
	if newTotal.IsNegative() {
		newTotal = decimal.Zero
	}
	newLevel := memberLevelFor(newTotal, newPoints)

	err := tx.Model(member).Updates(map[string]interface{}{
		"Balance":          newBalance,
		"Points":           newPoints,
		"TotalConsumption": newTotal,
		"Level":            newLevel,
	}).Error
	if err != nil {
		return err
	}
	member.Balance = newBalance
	member.Points = newPoints
	member.TotalConsumption = newTotal
	member.Level = newLevel

	record := MemberTransaction{
		MemberId:     member.ID,
		Type:         MemberTransactionTypeRefund,
		Amount:       paidAmount,
		Points:       -reversedPoints,
		BalanceAfter: newBalance,
		PointsAfter:  newPoints,
		OrderNo:      orderNo,
		OperatorName: utils.GetOperatorName(ctx),
	}
	return tx.Create(&record).Error
}

func GetMemberTransactions(ctx context.Context, memberId int, limit int) ([]*MemberTransaction, error) {
	db := config.GetDB()
	var results []*MemberTransaction

	if limit <= 0 || limit > config.SearchLimit {
		limit = config.SearchLimit
	}
	err := db.WithContext(ctx).Where("member_id = ?", memberId).
		Order("id DESC").Limit(limit).Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}
