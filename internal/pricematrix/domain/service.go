package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type Service interface {
	Get(ctx context.Context, matrixID string) (*MatrixResponse, error)
	List(ctx context.Context) ([]MatrixSummaryResponse, error)
	ChangePriority(ctx context.Context, req ChangePriorityRequest) error
	CreateRuleSet(ctx context.Context, req RuleSetRequest) (*RuleSetResponse, error)
	UpdateRuleSet(ctx context.Context, req RuleSetRequest) (*RuleSetResponse, error)
	DeleteRuleSet(ctx context.Context, matrixID, ruleSetID string) error
}

type ChangePriorityRequest struct {
	MatrixID  string
	RuleSetID string
	Direction int
}

// RuleSetRequest is the full description of a rule set. RuleSetID is ignored on create.
type RuleSetRequest struct {
	MatrixID             string              `json:"-"`
	RuleSetID            string              `json:"-"`
	LogicalOperatorID    int                 `json:"logicalOperatorId"`
	PriceSelling         decimal.NullDecimal `json:"priceSelling"`
	BookingFeePercent    decimal.NullDecimal `json:"bookingFeePercent"`
	BookingFeeAbsolute   decimal.NullDecimal `json:"bookingFeeAbsolute"`
	InsideCommissionRate decimal.NullDecimal `json:"insideCommissionRate"`
	Note                 *string             `json:"note"`
	OfferCode            *string             `json:"offerCode"`
	Rules                []RuleRequest       `json:"rules"`
}

type RuleRequest struct {
	FieldID           int                 `json:"fieldId"`
	CompareOperatorID int                 `json:"compareOperatorId"`
	ValueInt          *int64              `json:"valueInt"`
	ValueString       *string             `json:"valueString"`
	ValueDateTime     *time.Time          `json:"valueDateTime"`
	ValueDecimal      decimal.NullDecimal `json:"valueDecimal"`
	Priority          *int                `json:"priority"`
}

type MatrixResponse struct {
	ID       snowflake.ID      `json:"id"`
	Name     string            `json:"name"`
	RuleSets []RuleSetResponse `json:"ruleSets"`
}

type MatrixSummaryResponse struct {
	ID           snowflake.ID `json:"id"`
	Name         string       `json:"name"`
	RuleSetCount int64        `json:"ruleSetCount"`
}

type RuleSetResponse struct {
	RuleSetID            snowflake.ID        `json:"ruleSetId"`
	LogicalOperatorID    int                 `json:"logicalOperatorId"`
	Priority             int                 `json:"priority"`
	Rules                []RuleResponse      `json:"rules"`
	PriceSelling         decimal.NullDecimal `json:"priceSelling"`
	BookingFeePercent    decimal.NullDecimal `json:"bookingFeePercent"`
	BookingFeeAbsolute   decimal.NullDecimal `json:"bookingFeeAbsolute"`
	InsideCommissionRate decimal.NullDecimal `json:"insideCommissionRate"`
	Note                 *string             `json:"note"`
	OfferCode            *string             `json:"offerCode"`
}

type RuleResponse struct {
	RuleSetID         snowflake.ID        `json:"ruleSetId"`
	RuleID            snowflake.ID        `json:"ruleId"`
	FieldID           int                 `json:"fieldId"`
	CompareOperatorID int                 `json:"compareOperatorId"`
	ValueInt          *int64              `json:"valueInt"`
	ValueString       *string             `json:"valueString"`
	ValueDateTime     *time.Time          `json:"valueDateTime"`
	ValueDecimal      decimal.NullDecimal `json:"valueDecimal"`
	Priority          *int                `json:"priority"`
}

func init() {
	// money travels as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true
}

var (
	ErrNotFound         = errors.New("not_found")
	ErrMatrixNotFound   = errors.New("price_matrix_not_found")
	ErrNoNeighbour      = errors.New("no_neighbour_in_direction")
	ErrInvalidID        = errors.New("invalid_id")
	ErrInvalidDirection = errors.New("invalid_direction")
	ErrInvalidRule      = errors.New("invalid_rule")
)
