package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// PriceMatrix is a named container of prioritized rule sets.
type PriceMatrix struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	Name      string       `gorm:"type:varchar(255);not null;uniqueIndex:idx_price_matrices_name" json:"name"`
	CreatedAt time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time    `gorm:"not null" json:"updated_at"`
}

func (PriceMatrix) TableName() string {
	return "price_matrices"
}

// RuleSet belongs to exactly one matrix. Priority is unique within the matrix and the
// highest priority is evaluated first.
type RuleSet struct {
	ID                   snowflake.ID        `gorm:"primaryKey"`
	PriceMatrixID        snowflake.ID        `gorm:"not null;uniqueIndex:idx_rule_sets_matrix_priority,priority:1"`
	Priority             int                 `gorm:"not null;uniqueIndex:idx_rule_sets_matrix_priority,priority:2"`
	LogicalOperatorID    int                 `gorm:"not null"`
	PriceSelling         decimal.NullDecimal `gorm:"type:numeric(18,4)"`
	BookingFeePercent    decimal.NullDecimal `gorm:"type:numeric(18,4)"`
	BookingFeeAbsolute   decimal.NullDecimal `gorm:"type:numeric(18,4)"`
	InsideCommissionRate decimal.NullDecimal `gorm:"type:numeric(18,4)"`
	Note                 *string             `gorm:"type:text"`
	OfferCode            *string             `gorm:"type:varchar(64)"`
	CreatedAt            time.Time           `gorm:"not null"`
	UpdatedAt            time.Time           `gorm:"not null"`
}

func (RuleSet) TableName() string {
	return "price_matrix_rule_sets"
}

// HasMonetaryEffect reports whether at least one of the money overrides is set.
func (rs *RuleSet) HasMonetaryEffect() bool {
	return rs.PriceSelling.Valid || rs.BookingFeePercent.Valid || rs.BookingFeeAbsolute.Valid
}

// Rule is a single typed comparison owned by a rule set. At most one of the value
// columns is populated.
type Rule struct {
	ID                snowflake.ID        `gorm:"primaryKey"`
	RuleSetID         snowflake.ID        `gorm:"not null;index"`
	FieldID           int                 `gorm:"not null"`
	CompareOperatorID int                 `gorm:"not null"`
	IntegerValue      *int64              `gorm:"column:integer_value"`
	StringValue       *string             `gorm:"column:string_value;type:text"`
	DateTimeValue     *time.Time          `gorm:"column:date_time_value"`
	DecimalValue      decimal.NullDecimal `gorm:"column:decimal_value;type:numeric(18,4)"`
	Priority          *int
}

func (Rule) TableName() string {
	return "price_matrix_rules"
}

// ValueCount returns how many typed value slots are populated.
func (r *Rule) ValueCount() int {
	n := 0
	if r.IntegerValue != nil {
		n++
	}
	if r.StringValue != nil {
		n++
	}
	if r.DateTimeValue != nil {
		n++
	}
	if r.DecimalValue.Valid {
		n++
	}
	return n
}
