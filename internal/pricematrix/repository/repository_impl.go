package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/railzwaylabs/pricematrix/internal/pricematrix/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) FindMatrixByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.PriceMatrix, error) {
	var item domain.PriceMatrix
	err := db.WithContext(ctx).Where("id = ?", id).First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

func (r *repo) FindMatrixByName(ctx context.Context, db *gorm.DB, name string) (*domain.PriceMatrix, error) {
	var item domain.PriceMatrix
	err := db.WithContext(ctx).Where("name = ?", name).First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

func (r *repo) LockMatrix(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.PriceMatrix, error) {
	stmt := db.WithContext(ctx)
	// sqlite serializes writers on its own and has no row locks.
	if db.Dialector.Name() != "sqlite" {
		stmt = stmt.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var item domain.PriceMatrix
	err := stmt.Where("id = ?", id).First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

func (r *repo) ListMatrices(ctx context.Context, db *gorm.DB) ([]domain.MatrixSummary, error) {
	var items []domain.MatrixSummary
	err := db.WithContext(ctx).Raw(
		`SELECT m.id, m.name, COUNT(rs.id) AS rule_set_count
		 FROM price_matrices m
		 LEFT JOIN price_matrix_rule_sets rs ON rs.price_matrix_id = m.id
		 GROUP BY m.id, m.name
		 ORDER BY m.name ASC`,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) InsertMatrix(ctx context.Context, db *gorm.DB, matrix *domain.PriceMatrix) error {
	return db.WithContext(ctx).Create(matrix).Error
}

func (r *repo) FindRuleSet(ctx context.Context, db *gorm.DB, matrixID, id snowflake.ID) (*domain.RuleSet, error) {
	var item domain.RuleSet
	err := db.WithContext(ctx).
		Where("price_matrix_id = ? AND id = ?", matrixID, id).
		First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

func (r *repo) ListRuleSets(ctx context.Context, db *gorm.DB, matrixID snowflake.ID) ([]domain.RuleSet, error) {
	var items []domain.RuleSet
	err := db.WithContext(ctx).
		Where("price_matrix_id = ?", matrixID).
		Order("priority DESC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) FindNeighbour(ctx context.Context, db *gorm.DB, matrixID snowflake.ID, priority int, up bool) (*domain.RuleSet, error) {
	stmt := db.WithContext(ctx).Where("price_matrix_id = ?", matrixID)
	if up {
		stmt = stmt.Where("priority > ?", priority).Order("priority ASC")
	} else {
		stmt = stmt.Where("priority < ?", priority).Order("priority DESC")
	}

	var items []domain.RuleSet
	if err := stmt.Limit(1).Find(&items).Error; err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}
	return &items[0], nil
}

func (r *repo) MaxPriority(ctx context.Context, db *gorm.DB, matrixID snowflake.ID) (int, error) {
	var value int
	err := db.WithContext(ctx).
		Model(&domain.RuleSet{}).
		Where("price_matrix_id = ?", matrixID).
		Select("COALESCE(MAX(priority), 0)").
		Scan(&value).Error
	return value, err
}

func (r *repo) MinPriority(ctx context.Context, db *gorm.DB, matrixID snowflake.ID) (int, error) {
	var value int
	err := db.WithContext(ctx).
		Model(&domain.RuleSet{}).
		Where("price_matrix_id = ?", matrixID).
		Select("COALESCE(MIN(priority), 0)").
		Scan(&value).Error
	return value, err
}

func (r *repo) InsertRuleSet(ctx context.Context, db *gorm.DB, ruleSet *domain.RuleSet) error {
	return db.WithContext(ctx).Create(ruleSet).Error
}

func (r *repo) UpdateRuleSet(ctx context.Context, db *gorm.DB, ruleSet *domain.RuleSet) error {
	if ruleSet == nil {
		return gorm.ErrInvalidData
	}
	return db.WithContext(ctx).
		Model(&domain.RuleSet{}).
		Where("id = ?", ruleSet.ID).
		Updates(map[string]any{
			"logical_operator_id":    ruleSet.LogicalOperatorID,
			"price_selling":          ruleSet.PriceSelling,
			"booking_fee_percent":    ruleSet.BookingFeePercent,
			"booking_fee_absolute":   ruleSet.BookingFeeAbsolute,
			"inside_commission_rate": ruleSet.InsideCommissionRate,
			"note":                   ruleSet.Note,
			"offer_code":             ruleSet.OfferCode,
			"updated_at":             ruleSet.UpdatedAt,
		}).Error
}

func (r *repo) SetPriority(ctx context.Context, db *gorm.DB, id snowflake.ID, priority int) error {
	return db.WithContext(ctx).
		Model(&domain.RuleSet{}).
		Where("id = ?", id).
		Update("priority", priority).Error
}

func (r *repo) DeleteRuleSet(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	if err := r.DeleteRules(ctx, db, id); err != nil {
		return err
	}
	return db.WithContext(ctx).Where("id = ?", id).Delete(&domain.RuleSet{}).Error
}

func (r *repo) ListRules(ctx context.Context, db *gorm.DB, ruleSetIDs []snowflake.ID) ([]domain.Rule, error) {
	if len(ruleSetIDs) == 0 {
		return nil, nil
	}
	var items []domain.Rule
	err := db.WithContext(ctx).
		Where("rule_set_id IN ?", ruleSetIDs).
		Order("id ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) InsertRules(ctx context.Context, db *gorm.DB, rules []domain.Rule) error {
	if len(rules) == 0 {
		return nil
	}
	return db.WithContext(ctx).Create(&rules).Error
}

func (r *repo) DeleteRules(ctx context.Context, db *gorm.DB, ruleSetID snowflake.ID) error {
	return db.WithContext(ctx).Where("rule_set_id = ?", ruleSetID).Delete(&domain.Rule{}).Error
}
