package seed

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	logicalAnd = 1
	logicalOr  = 2

	fieldCarrier       = 1
	fieldCabinClass    = 2
	fieldDepartureDate = 3
	fieldPassengers    = 4
	fieldBasePrice     = 5

	compareEquals      = 1
	compareGreaterThan = 3
	compareLessThan    = 4
)

func fixtures() []fixtureMatrix {
	summerStart := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)

	return []fixtureMatrix{
		{
			name: "Default",
			ruleSets: []fixtureRuleSet{
				{
					logicalOp:         logicalAnd,
					bookingFeePercent: amount("2.5"),
					note:              str("Business cabin surcharge"),
					rules: []fixtureRule{
						{fieldID: fieldCabinClass, compareOp: compareEquals, valueStr: str("business")},
						{fieldID: fieldBasePrice, compareOp: compareGreaterThan, valueDec: amount("500")},
					},
				},
				{
					logicalOp:          logicalAnd,
					bookingFeeAbsolute: amount("15"),
					offerCode:          str("GROUP5"),
					rules: []fixtureRule{
						{fieldID: fieldPassengers, compareOp: compareGreaterThan, valueInt: i64(4)},
					},
				},
				{
					logicalOp:          logicalOr,
					bookingFeeAbsolute: amount("0"),
					note:               str("Fallback"),
				},
			},
		},
		{
			name: "Summer Campaign",
			ruleSets: []fixtureRuleSet{
				{
					logicalOp:      logicalAnd,
					priceSelling:   amount("199.99"),
					commissionRate: amount("0.05"),
					offerCode:      str("SUMMER"),
					rules: []fixtureRule{
						{fieldID: fieldDepartureDate, compareOp: compareGreaterThan, valueTime: &summerStart},
						{fieldID: fieldCarrier, compareOp: compareEquals, valueStr: str("LX")},
					},
				},
				{
					logicalOp:         logicalAnd,
					bookingFeePercent: amount("1.75"),
					rules: []fixtureRule{
						{fieldID: fieldBasePrice, compareOp: compareLessThan, valueDec: amount("100")},
					},
				},
			},
		},
	}
}

func amount(v string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(v))
}

func str(v string) *string { return &v }

func i64(v int64) *int64 { return &v }
