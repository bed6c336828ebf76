package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	FindMatrixByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*PriceMatrix, error)
	FindMatrixByName(ctx context.Context, db *gorm.DB, name string) (*PriceMatrix, error)
	// LockMatrix re-reads the matrix row holding a write lock until the transaction ends.
	LockMatrix(ctx context.Context, db *gorm.DB, id snowflake.ID) (*PriceMatrix, error)
	ListMatrices(ctx context.Context, db *gorm.DB) ([]MatrixSummary, error)
	InsertMatrix(ctx context.Context, db *gorm.DB, matrix *PriceMatrix) error

	FindRuleSet(ctx context.Context, db *gorm.DB, matrixID, id snowflake.ID) (*RuleSet, error)
	// ListRuleSets returns the matrix's rule sets by descending priority.
	ListRuleSets(ctx context.Context, db *gorm.DB, matrixID snowflake.ID) ([]RuleSet, error)
	FindNeighbour(ctx context.Context, db *gorm.DB, matrixID snowflake.ID, priority int, up bool) (*RuleSet, error)
	MaxPriority(ctx context.Context, db *gorm.DB, matrixID snowflake.ID) (int, error)
	MinPriority(ctx context.Context, db *gorm.DB, matrixID snowflake.ID) (int, error)
	InsertRuleSet(ctx context.Context, db *gorm.DB, ruleSet *RuleSet) error
	UpdateRuleSet(ctx context.Context, db *gorm.DB, ruleSet *RuleSet) error
	SetPriority(ctx context.Context, db *gorm.DB, id snowflake.ID, priority int) error
	DeleteRuleSet(ctx context.Context, db *gorm.DB, id snowflake.ID) error

	// ListRules returns rules of the given rule sets in insertion order.
	ListRules(ctx context.Context, db *gorm.DB, ruleSetIDs []snowflake.ID) ([]Rule, error)
	InsertRules(ctx context.Context, db *gorm.DB, rules []Rule) error
	DeleteRules(ctx context.Context, db *gorm.DB, ruleSetID snowflake.ID) error
}

// MatrixSummary is a lightweight listing row.
type MatrixSummary struct {
	ID           snowflake.ID
	Name         string
	RuleSetCount int64
}
