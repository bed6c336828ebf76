package service

import (
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/railzwaylabs/pricematrix/internal/pricematrix/domain"
	"github.com/shopspring/decimal"
)

// fillRuleSet copies the client supplied fields. Zero money overrides are stored as null.
func fillRuleSet(rs *domain.RuleSet, req domain.RuleSetRequest) {
	rs.LogicalOperatorID = req.LogicalOperatorID
	rs.Note = req.Note
	rs.OfferCode = req.OfferCode
	rs.PriceSelling = nullIfZero(req.PriceSelling)
	rs.BookingFeePercent = nullIfZero(req.BookingFeePercent)
	rs.BookingFeeAbsolute = nullIfZero(req.BookingFeeAbsolute)
	rs.InsideCommissionRate = req.InsideCommissionRate
}

// ensureMonetaryEffect keeps at least one money override on the rule set.
func ensureMonetaryEffect(rs *domain.RuleSet) {
	if !rs.HasMonetaryEffect() {
		rs.BookingFeeAbsolute = decimal.NewNullDecimal(decimal.Zero)
	}
}

func nullIfZero(value decimal.NullDecimal) decimal.NullDecimal {
	if !value.Valid || value.Decimal.IsZero() {
		return decimal.NullDecimal{}
	}
	return value
}

func buildRules(genID *snowflake.Node, ruleSetID snowflake.ID, reqs []domain.RuleRequest) ([]domain.Rule, error) {
	rules := make([]domain.Rule, 0, len(reqs))
	for _, item := range reqs {
		rule := domain.Rule{
			ID:                genID.Generate(),
			RuleSetID:         ruleSetID,
			FieldID:           item.FieldID,
			CompareOperatorID: item.CompareOperatorID,
			IntegerValue:      item.ValueInt,
			StringValue:       trimToNil(item.ValueString),
			DateTimeValue:     item.ValueDateTime,
			DecimalValue:      item.ValueDecimal,
			Priority:          item.Priority,
		}
		if rule.DateTimeValue != nil {
			utc := rule.DateTimeValue.UTC()
			rule.DateTimeValue = &utc
		}
		if rule.ValueCount() > 1 {
			return nil, domain.ErrInvalidRule
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

func trimToNil(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func toMatrixResponse(m *domain.PriceMatrix, ruleSets []domain.RuleSet, rules []domain.Rule) *domain.MatrixResponse {
	byRuleSet := make(map[snowflake.ID][]domain.Rule, len(ruleSets))
	for _, rule := range rules {
		byRuleSet[rule.RuleSetID] = append(byRuleSet[rule.RuleSetID], rule)
	}

	resp := &domain.MatrixResponse{
		ID:       m.ID,
		Name:     m.Name,
		RuleSets: make([]domain.RuleSetResponse, 0, len(ruleSets)),
	}
	for i := range ruleSets {
		resp.RuleSets = append(resp.RuleSets, toRuleSetResponse(&ruleSets[i], byRuleSet[ruleSets[i].ID]))
	}
	return resp
}

func toRuleSetResponse(rs *domain.RuleSet, rules []domain.Rule) domain.RuleSetResponse {
	resp := domain.RuleSetResponse{
		RuleSetID:            rs.ID,
		LogicalOperatorID:    rs.LogicalOperatorID,
		Priority:             rs.Priority,
		Rules:                make([]domain.RuleResponse, 0, len(rules)),
		PriceSelling:         rs.PriceSelling,
		BookingFeePercent:    rs.BookingFeePercent,
		BookingFeeAbsolute:   rs.BookingFeeAbsolute,
		InsideCommissionRate: rs.InsideCommissionRate,
		Note:                 rs.Note,
		OfferCode:            rs.OfferCode,
	}
	for i := range rules {
		resp.Rules = append(resp.Rules, toRuleResponse(&rules[i]))
	}
	return resp
}

func toRuleResponse(r *domain.Rule) domain.RuleResponse {
	return domain.RuleResponse{
		RuleSetID:         r.RuleSetID,
		RuleID:            r.ID,
		FieldID:           r.FieldID,
		CompareOperatorID: r.CompareOperatorID,
		ValueInt:          r.IntegerValue,
		ValueString:       r.StringValue,
		ValueDateTime:     r.DateTimeValue,
		ValueDecimal:      r.DecimalValue,
		Priority:          r.Priority,
	}
}
