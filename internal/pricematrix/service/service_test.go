package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/railzwaylabs/pricematrix/internal/clock"
	"github.com/railzwaylabs/pricematrix/internal/lock"
	"github.com/railzwaylabs/pricematrix/internal/pricematrix/domain"
	"github.com/railzwaylabs/pricematrix/internal/pricematrix/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type testEnv struct {
	svc  *Service
	db   *gorm.DB
	node *snowflake.Node
}

func setupTestService(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&domain.PriceMatrix{}, &domain.RuleSet{}, &domain.Rule{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := New(Params{
		DB:     db,
		Log:    zap.NewNop(),
		GenID:  node,
		Clock:  clock.Fixed(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)),
		Repo:   repository.Provide(),
		Locker: lock.NewLocalLocker(time.Second),
	}).(*Service)

	return &testEnv{svc: svc, db: db, node: node}
}

func (e *testEnv) createMatrix(t *testing.T, name string) snowflake.ID {
	t.Helper()
	now := time.Now().UTC()
	m := &domain.PriceMatrix{ID: e.node.Generate(), Name: name, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, e.db.Create(m).Error)
	return m.ID
}

func (e *testEnv) insertRuleSet(t *testing.T, matrixID snowflake.ID, priority int) snowflake.ID {
	t.Helper()
	now := time.Now().UTC()
	rs := &domain.RuleSet{
		ID:                 e.node.Generate(),
		PriceMatrixID:      matrixID,
		Priority:           priority,
		LogicalOperatorID:  1,
		BookingFeeAbsolute: decimal.NewNullDecimal(decimal.NewFromInt(5)),
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	require.NoError(t, e.db.Create(rs).Error)
	return rs.ID
}

func (e *testEnv) priorities(t *testing.T, matrixID snowflake.ID) map[snowflake.ID]int {
	t.Helper()
	var items []domain.RuleSet
	require.NoError(t, e.db.Where("price_matrix_id = ?", matrixID).Find(&items).Error)
	out := make(map[snowflake.ID]int, len(items))
	for _, item := range items {
		out[item.ID] = item.Priority
	}
	return out
}

func (e *testEnv) ruleCount(t *testing.T, ruleSetID snowflake.ID) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Model(&domain.Rule{}).Where("rule_set_id = ?", ruleSetID).Count(&n).Error)
	return n
}

func dec(v string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(v))
}

func strPtr(v string) *string { return &v }

func int64Ptr(v int64) *int64 { return &v }

func TestGetReturnsRuleSetsByDescendingPriority(t *testing.T) {
	env := setupTestService(t)
	ctx := context.Background()
	matrixID := env.createMatrix(t, "Summer")

	low := env.insertRuleSet(t, matrixID, 10)
	high := env.insertRuleSet(t, matrixID, 30)
	mid := env.insertRuleSet(t, matrixID, 20)

	rule := domain.Rule{ID: env.node.Generate(), RuleSetID: mid, FieldID: 3, CompareOperatorID: 1, IntegerValue: int64Ptr(7)}
	require.NoError(t, env.db.Create(&rule).Error)

	resp, err := env.svc.Get(ctx, matrixID.String())
	require.NoError(t, err)

	assert.Equal(t, matrixID, resp.ID)
	assert.Equal(t, "Summer", resp.Name)
	require.Len(t, resp.RuleSets, 3)
	assert.Equal(t, []snowflake.ID{high, mid, low}, []snowflake.ID{
		resp.RuleSets[0].RuleSetID, resp.RuleSets[1].RuleSetID, resp.RuleSets[2].RuleSetID,
	})
	assert.Empty(t, resp.RuleSets[0].Rules)
	require.Len(t, resp.RuleSets[1].Rules, 1)
	assert.Equal(t, rule.ID, resp.RuleSets[1].Rules[0].RuleID)
	assert.Equal(t, mid, resp.RuleSets[1].Rules[0].RuleSetID)
	assert.Equal(t, int64(7), *resp.RuleSets[1].Rules[0].ValueInt)
}

func TestGetMissingMatrix(t *testing.T) {
	env := setupTestService(t)

	_, err := env.svc.Get(context.Background(), env.node.Generate().String())
	assert.ErrorIs(t, err, domain.ErrMatrixNotFound)

	_, err = env.svc.Get(context.Background(), "not-an-id")
	assert.ErrorIs(t, err, domain.ErrInvalidID)
}

func TestCreateRuleSetAppendsPriority(t *testing.T) {
	env := setupTestService(t)
	ctx := context.Background()
	matrixID := env.createMatrix(t, "Empty")

	first, err := env.svc.CreateRuleSet(ctx, domain.RuleSetRequest{
		MatrixID:           matrixID.String(),
		LogicalOperatorID:  1,
		BookingFeeAbsolute: dec("2.50"),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, first.Priority)

	other := env.createMatrix(t, "Busy")
	env.insertRuleSet(t, other, 41)
	env.insertRuleSet(t, other, 7)

	created, err := env.svc.CreateRuleSet(ctx, domain.RuleSetRequest{
		MatrixID:          other.String(),
		LogicalOperatorID: 2,
		Note:              strPtr("late bookings"),
		OfferCode:         strPtr("LATE"),
		PriceSelling:      dec("99.90"),
		Rules: []domain.RuleRequest{
			{FieldID: 1, CompareOperatorID: 2, ValueString: strPtr("  LHR  ")},
			{FieldID: 2, CompareOperatorID: 3, ValueDecimal: dec("1.5")},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 42, created.Priority)
	assert.NotZero(t, created.RuleSetID)
	require.Len(t, created.Rules, 2)
	for _, rule := range created.Rules {
		assert.Equal(t, created.RuleSetID, rule.RuleSetID)
		assert.NotZero(t, rule.RuleID)
	}
	assert.Equal(t, "LHR", *created.Rules[0].ValueString)

	resp, err := env.svc.Get(ctx, other.String())
	require.NoError(t, err)
	require.Len(t, resp.RuleSets, 3)
	stored := resp.RuleSets[0]
	assert.Equal(t, created.RuleSetID, stored.RuleSetID)
	assert.Equal(t, 2, stored.LogicalOperatorID)
	assert.Equal(t, "late bookings", *stored.Note)
	assert.Equal(t, "LATE", *stored.OfferCode)
	assert.True(t, stored.PriceSelling.Decimal.Equal(decimal.RequireFromString("99.90")))
	require.Len(t, stored.Rules, 2)
	assert.True(t, stored.Rules[1].ValueDecimal.Decimal.Equal(decimal.RequireFromString("1.5")))
}

func TestCreateRuleSetMissingMatrix(t *testing.T) {
	env := setupTestService(t)

	_, err := env.svc.CreateRuleSet(context.Background(), domain.RuleSetRequest{
		MatrixID: env.node.Generate().String(),
	})
	assert.ErrorIs(t, err, domain.ErrMatrixNotFound)
}

func TestCreateRuleSetStoresZeroAsNull(t *testing.T) {
	env := setupTestService(t)
	ctx := context.Background()
	matrixID := env.createMatrix(t, "Zero")

	created, err := env.svc.CreateRuleSet(ctx, domain.RuleSetRequest{
		MatrixID:             matrixID.String(),
		PriceSelling:         dec("0"),
		BookingFeePercent:    dec("0.00"),
		BookingFeeAbsolute:   dec("3"),
		InsideCommissionRate: dec("0"),
	})
	require.NoError(t, err)
	assert.False(t, created.PriceSelling.Valid)

	resp, err := env.svc.Get(ctx, matrixID.String())
	require.NoError(t, err)
	require.Len(t, resp.RuleSets, 1)
	rs := resp.RuleSets[0]
	assert.False(t, rs.PriceSelling.Valid)
	assert.False(t, rs.BookingFeePercent.Valid)
	assert.True(t, rs.BookingFeeAbsolute.Decimal.Equal(decimal.NewFromInt(3)))
	// commission rate is not a money override and keeps its zero
	assert.True(t, rs.InsideCommissionRate.Valid)
	assert.True(t, rs.InsideCommissionRate.Decimal.IsZero())
}

func TestCreateRuleSetRejectsRuleWithSeveralValues(t *testing.T) {
	env := setupTestService(t)
	matrixID := env.createMatrix(t, "Invalid")

	_, err := env.svc.CreateRuleSet(context.Background(), domain.RuleSetRequest{
		MatrixID: matrixID.String(),
		Rules: []domain.RuleRequest{
			{FieldID: 1, ValueInt: int64Ptr(1), ValueString: strPtr("x")},
		},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidRule)
	assert.Empty(t, env.priorities(t, matrixID))
}

func TestUpdateRuleSetEnforcesMonetaryEffect(t *testing.T) {
	env := setupTestService(t)
	ctx := context.Background()
	matrixID := env.createMatrix(t, "Fees")
	id := env.insertRuleSet(t, matrixID, 1)

	updated, err := env.svc.UpdateRuleSet(ctx, domain.RuleSetRequest{
		MatrixID:          matrixID.String(),
		RuleSetID:         id.String(),
		LogicalOperatorID: 2,
		PriceSelling:      dec("0"),
	})
	require.NoError(t, err)
	assert.False(t, updated.PriceSelling.Valid)
	assert.False(t, updated.BookingFeePercent.Valid)
	require.True(t, updated.BookingFeeAbsolute.Valid)
	assert.True(t, updated.BookingFeeAbsolute.Decimal.IsZero())

	var stored domain.RuleSet
	require.NoError(t, env.db.First(&stored, "id = ?", id).Error)
	assert.Equal(t, 2, stored.LogicalOperatorID)
	assert.Equal(t, 1, stored.Priority)
	require.True(t, stored.BookingFeeAbsolute.Valid)
	assert.True(t, stored.BookingFeeAbsolute.Decimal.IsZero())
}

func TestUpdateRuleSetKeepsSuppliedFee(t *testing.T) {
	env := setupTestService(t)
	matrixID := env.createMatrix(t, "Percent")
	id := env.insertRuleSet(t, matrixID, 1)

	updated, err := env.svc.UpdateRuleSet(context.Background(), domain.RuleSetRequest{
		MatrixID:          matrixID.String(),
		RuleSetID:         id.String(),
		BookingFeePercent: dec("12.5"),
	})
	require.NoError(t, err)
	assert.False(t, updated.BookingFeeAbsolute.Valid)
	assert.True(t, updated.BookingFeePercent.Decimal.Equal(decimal.RequireFromString("12.5")))
}

func TestUpdateRuleSetReplacesRules(t *testing.T) {
	env := setupTestService(t)
	ctx := context.Background()
	matrixID := env.createMatrix(t, "Rules")

	created, err := env.svc.CreateRuleSet(ctx, domain.RuleSetRequest{
		MatrixID:           matrixID.String(),
		BookingFeeAbsolute: dec("1"),
		Rules: []domain.RuleRequest{
			{FieldID: 1, CompareOperatorID: 1, ValueInt: int64Ptr(1)},
			{FieldID: 2, CompareOperatorID: 1, ValueInt: int64Ptr(2)},
		},
	})
	require.NoError(t, err)
	old := []snowflake.ID{created.Rules[0].RuleID, created.Rules[1].RuleID}

	when := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	updated, err := env.svc.UpdateRuleSet(ctx, domain.RuleSetRequest{
		MatrixID:           matrixID.String(),
		RuleSetID:          created.RuleSetID.String(),
		BookingFeeAbsolute: dec("1"),
		Rules: []domain.RuleRequest{
			{FieldID: 9, CompareOperatorID: 4, ValueDateTime: &when},
		},
	})
	require.NoError(t, err)
	require.Len(t, updated.Rules, 1)
	assert.Equal(t, int64(1), env.ruleCount(t, created.RuleSetID))

	var remaining int64
	require.NoError(t, env.db.Model(&domain.Rule{}).Where("id IN ?", old).Count(&remaining).Error)
	assert.Zero(t, remaining)

	resp, err := env.svc.Get(ctx, matrixID.String())
	require.NoError(t, err)
	require.Len(t, resp.RuleSets[0].Rules, 1)
	got := resp.RuleSets[0].Rules[0]
	assert.Equal(t, 9, got.FieldID)
	assert.Equal(t, updated.Rules[0].RuleID, got.RuleID)
	require.NotNil(t, got.ValueDateTime)
	assert.True(t, when.Equal(*got.ValueDateTime))
}

var errRulesUnavailable = errors.New("rules table unavailable")

// failingRulesRepo delegates to the real repository but rejects every rule insert.
type failingRulesRepo struct {
	domain.Repository
}

func (failingRulesRepo) InsertRules(context.Context, *gorm.DB, []domain.Rule) error {
	return errRulesUnavailable
}

func TestUpdateRuleSetRollsBackWhenRulesFail(t *testing.T) {
	env := setupTestService(t)
	ctx := context.Background()
	matrixID := env.createMatrix(t, "Rollback")

	created, err := env.svc.CreateRuleSet(ctx, domain.RuleSetRequest{
		MatrixID:          matrixID.String(),
		LogicalOperatorID: 1,
		BookingFeePercent: dec("4.25"),
		Note:              strPtr("before"),
		Rules: []domain.RuleRequest{
			{FieldID: 1, CompareOperatorID: 1, ValueInt: int64Ptr(1)},
			{FieldID: 2, CompareOperatorID: 1, ValueString: strPtr("ZRH")},
		},
	})
	require.NoError(t, err)

	env.svc.repo = failingRulesRepo{Repository: env.svc.repo}

	_, err = env.svc.UpdateRuleSet(ctx, domain.RuleSetRequest{
		MatrixID:          matrixID.String(),
		RuleSetID:         created.RuleSetID.String(),
		LogicalOperatorID: 2,
		PriceSelling:      dec("10"),
		Note:              strPtr("after"),
		Rules: []domain.RuleRequest{
			{FieldID: 3, CompareOperatorID: 1, ValueInt: int64Ptr(3)},
		},
	})
	require.ErrorIs(t, err, errRulesUnavailable)

	assert.Equal(t, int64(2), env.ruleCount(t, created.RuleSetID))

	var stored domain.RuleSet
	require.NoError(t, env.db.First(&stored, "id = ?", created.RuleSetID).Error)
	assert.Equal(t, 1, stored.LogicalOperatorID)
	assert.False(t, stored.PriceSelling.Valid)
	require.True(t, stored.BookingFeePercent.Valid)
	assert.True(t, stored.BookingFeePercent.Decimal.Equal(decimal.RequireFromString("4.25")))
	require.NotNil(t, stored.Note)
	assert.Equal(t, "before", *stored.Note)
}

func TestBlankRuleStringIsStoredAsNull(t *testing.T) {
	env := setupTestService(t)
	ctx := context.Background()
	matrixID := env.createMatrix(t, "Blank")

	created, err := env.svc.CreateRuleSet(ctx, domain.RuleSetRequest{
		MatrixID:           matrixID.String(),
		BookingFeeAbsolute: dec("1"),
		Rules: []domain.RuleRequest{
			{FieldID: 1, CompareOperatorID: 1, ValueString: strPtr("   ")},
			{FieldID: 2, CompareOperatorID: 1, ValueString: strPtr("")},
		},
	})
	require.NoError(t, err)
	require.Len(t, created.Rules, 2)
	for _, rule := range created.Rules {
		assert.Nil(t, rule.ValueString)
	}

	resp, err := env.svc.Get(ctx, matrixID.String())
	require.NoError(t, err)
	require.Len(t, resp.RuleSets, 1)
	require.Len(t, resp.RuleSets[0].Rules, 2)
	for _, rule := range resp.RuleSets[0].Rules {
		assert.Nil(t, rule.ValueString)
	}
}

func TestUpdateRuleSetNotFound(t *testing.T) {
	env := setupTestService(t)
	matrixID := env.createMatrix(t, "Missing")
	otherMatrix := env.createMatrix(t, "Other")
	foreign := env.insertRuleSet(t, otherMatrix, 1)

	_, err := env.svc.UpdateRuleSet(context.Background(), domain.RuleSetRequest{
		MatrixID:  matrixID.String(),
		RuleSetID: env.node.Generate().String(),
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = env.svc.UpdateRuleSet(context.Background(), domain.RuleSetRequest{
		MatrixID:  matrixID.String(),
		RuleSetID: foreign.String(),
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeleteRuleSetRemovesRulesAndIsNotIdempotent(t *testing.T) {
	env := setupTestService(t)
	ctx := context.Background()
	matrixID := env.createMatrix(t, "Delete")

	created, err := env.svc.CreateRuleSet(ctx, domain.RuleSetRequest{
		MatrixID:           matrixID.String(),
		BookingFeeAbsolute: dec("1"),
		Rules:              []domain.RuleRequest{{FieldID: 1, ValueString: strPtr("a")}},
	})
	require.NoError(t, err)

	require.NoError(t, env.svc.DeleteRuleSet(ctx, matrixID.String(), created.RuleSetID.String()))
	assert.Zero(t, env.ruleCount(t, created.RuleSetID))
	assert.Empty(t, env.priorities(t, matrixID))

	err = env.svc.DeleteRuleSet(ctx, matrixID.String(), created.RuleSetID.String())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestChangePriorityEndToEnd(t *testing.T) {
	env := setupTestService(t)
	ctx := context.Background()
	matrixID := env.createMatrix(t, "M1")

	p10 := env.insertRuleSet(t, matrixID, 10)
	p20 := env.insertRuleSet(t, matrixID, 20)
	p30 := env.insertRuleSet(t, matrixID, 30)

	require.NoError(t, env.svc.ChangePriority(ctx, domain.ChangePriorityRequest{
		MatrixID:  matrixID.String(),
		RuleSetID: p20.String(),
		Direction: -1,
	}))

	assert.Equal(t, map[snowflake.ID]int{p10: 20, p20: 10, p30: 30}, env.priorities(t, matrixID))

	resp, err := env.svc.Get(ctx, matrixID.String())
	require.NoError(t, err)
	require.Len(t, resp.RuleSets, 3)
	assert.Equal(t, p30, resp.RuleSets[0].RuleSetID)
	assert.Equal(t, p10, resp.RuleSets[1].RuleSetID)
	assert.Equal(t, 20, resp.RuleSets[1].Priority)
	assert.Equal(t, p20, resp.RuleSets[2].RuleSetID)
	assert.Equal(t, 10, resp.RuleSets[2].Priority)
}

func TestChangePriorityUpSwapsWithNearestHigher(t *testing.T) {
	env := setupTestService(t)
	matrixID := env.createMatrix(t, "Up")

	a := env.insertRuleSet(t, matrixID, 1)
	b := env.insertRuleSet(t, matrixID, 5)
	c := env.insertRuleSet(t, matrixID, 9)

	require.NoError(t, env.svc.ChangePriority(context.Background(), domain.ChangePriorityRequest{
		MatrixID:  matrixID.String(),
		RuleSetID: a.String(),
		Direction: 3,
	}))
	assert.Equal(t, map[snowflake.ID]int{a: 5, b: 1, c: 9}, env.priorities(t, matrixID))
}

func TestChangePriorityAtBoundary(t *testing.T) {
	env := setupTestService(t)
	ctx := context.Background()
	matrixID := env.createMatrix(t, "Edges")

	lowest := env.insertRuleSet(t, matrixID, 1)
	highest := env.insertRuleSet(t, matrixID, 2)
	before := env.priorities(t, matrixID)

	err := env.svc.ChangePriority(ctx, domain.ChangePriorityRequest{
		MatrixID: matrixID.String(), RuleSetID: highest.String(), Direction: 1,
	})
	assert.ErrorIs(t, err, domain.ErrNoNeighbour)

	err = env.svc.ChangePriority(ctx, domain.ChangePriorityRequest{
		MatrixID: matrixID.String(), RuleSetID: lowest.String(), Direction: -1,
	})
	assert.ErrorIs(t, err, domain.ErrNoNeighbour)

	assert.Equal(t, before, env.priorities(t, matrixID))
}

func TestChangePriorityIgnoresOtherMatrices(t *testing.T) {
	env := setupTestService(t)
	ctx := context.Background()
	matrixID := env.createMatrix(t, "Mine")
	otherID := env.createMatrix(t, "Theirs")

	mine := env.insertRuleSet(t, matrixID, 1)
	env.insertRuleSet(t, otherID, 2)

	err := env.svc.ChangePriority(ctx, domain.ChangePriorityRequest{
		MatrixID: matrixID.String(), RuleSetID: mine.String(), Direction: 1,
	})
	assert.ErrorIs(t, err, domain.ErrNoNeighbour)

	err = env.svc.ChangePriority(ctx, domain.ChangePriorityRequest{
		MatrixID: otherID.String(), RuleSetID: mine.String(), Direction: 1,
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestChangePriorityZeroDirectionIsNoop(t *testing.T) {
	env := setupTestService(t)

	err := env.svc.ChangePriority(context.Background(), domain.ChangePriorityRequest{
		MatrixID: "garbage", RuleSetID: "garbage", Direction: 0,
	})
	assert.NoError(t, err)
}

func TestConcurrentSwapsKeepPrioritiesUnique(t *testing.T) {
	env := setupTestService(t)
	ctx := context.Background()
	matrixID := env.createMatrix(t, "Busy")

	ids := make([]snowflake.ID, 0, 5)
	for p := 1; p <= 5; p++ {
		ids = append(ids, env.insertRuleSet(t, matrixID, p*10))
	}

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			direction := 1
			if i%2 == 0 {
				direction = -1
			}
			err := env.svc.ChangePriority(ctx, domain.ChangePriorityRequest{
				MatrixID:  matrixID.String(),
				RuleSetID: ids[i%len(ids)].String(),
				Direction: direction,
			})
			if err != nil {
				assert.ErrorIs(t, err, domain.ErrNoNeighbour)
			}
		}(i)
	}
	wg.Wait()

	got := make([]int, 0, len(ids))
	for _, p := range env.priorities(t, matrixID) {
		got = append(got, p)
	}
	sort.Ints(got)
	assert.Equal(t, []int{10, 20, 30, 40, 50}, got)
}
