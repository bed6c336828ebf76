package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/railzwaylabs/pricematrix/internal/clock"
	"github.com/railzwaylabs/pricematrix/internal/pricematrix/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  domain.Repository
}

// Seeder writes the fixture matrices. Running it twice leaves the data unchanged.
type Seeder struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  domain.Repository
}

func New(p Params) *Seeder {
	return &Seeder{
		db:    p.DB,
		log:   p.Log.Named("seed"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

type fixtureRule struct {
	fieldID   int
	compareOp int
	valueInt  *int64
	valueStr  *string
	valueTime *time.Time
	valueDec  decimal.NullDecimal
}

type fixtureRuleSet struct {
	logicalOp          int
	priceSelling       decimal.NullDecimal
	bookingFeePercent  decimal.NullDecimal
	bookingFeeAbsolute decimal.NullDecimal
	commissionRate     decimal.NullDecimal
	note               *string
	offerCode          *string
	rules              []fixtureRule
}

type fixtureMatrix struct {
	name     string
	ruleSets []fixtureRuleSet
}

// Seed ensures every fixture matrix exists and returns their ids in fixture order.
// Rule sets are only written for matrices created by this call.
func (s *Seeder) Seed(ctx context.Context) ([]snowflake.ID, error) {
	if s.db == nil {
		return nil, errors.New("seed database handle is required")
	}

	var ids []snowflake.ID
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, fixture := range fixtures() {
			matrix, created, err := s.ensureMatrixTx(ctx, tx, fixture.name)
			if err != nil {
				return err
			}
			ids = append(ids, matrix.ID)
			if !created {
				continue
			}
			if err := s.insertRuleSetsTx(ctx, tx, matrix.ID, fixture.ruleSets); err != nil {
				return err
			}
			s.log.Info("seeded price matrix",
				zap.String("name", matrix.Name),
				zap.String("id", matrix.ID.String()),
				zap.Int("rule_sets", len(fixture.ruleSets)),
			)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (s *Seeder) ensureMatrixTx(ctx context.Context, tx *gorm.DB, name string) (*domain.PriceMatrix, bool, error) {
	existing, err := s.repo.FindMatrixByName(ctx, tx, name)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, false, nil
	}

	now := s.clock.Now(ctx)
	matrix := &domain.PriceMatrix{
		ID:        s.genID.Generate(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.InsertMatrix(ctx, tx, matrix); err != nil {
		return nil, false, err
	}
	return matrix, true, nil
}

// insertRuleSetsTx stores fixture rule sets with priorities counting down from len(sets),
// so the first fixture is evaluated first.
func (s *Seeder) insertRuleSetsTx(ctx context.Context, tx *gorm.DB, matrixID snowflake.ID, sets []fixtureRuleSet) error {
	now := s.clock.Now(ctx)
	for i, fixture := range sets {
		ruleSet := &domain.RuleSet{
			ID:                   s.genID.Generate(),
			PriceMatrixID:        matrixID,
			Priority:             len(sets) - i,
			LogicalOperatorID:    fixture.logicalOp,
			PriceSelling:         fixture.priceSelling,
			BookingFeePercent:    fixture.bookingFeePercent,
			BookingFeeAbsolute:   fixture.bookingFeeAbsolute,
			InsideCommissionRate: fixture.commissionRate,
			Note:                 fixture.note,
			OfferCode:            fixture.offerCode,
			CreatedAt:            now,
			UpdatedAt:            now,
		}
		if err := s.repo.InsertRuleSet(ctx, tx, ruleSet); err != nil {
			return err
		}

		rules := make([]domain.Rule, 0, len(fixture.rules))
		for _, r := range fixture.rules {
			rules = append(rules, domain.Rule{
				ID:                s.genID.Generate(),
				RuleSetID:         ruleSet.ID,
				FieldID:           r.fieldID,
				CompareOperatorID: r.compareOp,
				IntegerValue:      r.valueInt,
				StringValue:       r.valueStr,
				DateTimeValue:     r.valueTime,
				DecimalValue:      r.valueDec,
			})
		}
		if err := s.repo.InsertRules(ctx, tx, rules); err != nil {
			return err
		}
	}
	return nil
}
