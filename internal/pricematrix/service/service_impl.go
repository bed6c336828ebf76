package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/railzwaylabs/pricematrix/internal/clock"
	"github.com/railzwaylabs/pricematrix/internal/lock"
	"github.com/railzwaylabs/pricematrix/internal/pricematrix/domain"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB     *gorm.DB
	Log    *zap.Logger
	GenID  *snowflake.Node
	Clock  clock.Clock
	Repo   domain.Repository
	Locker lock.Locker
}

type Service struct {
	db     *gorm.DB
	log    *zap.Logger
	genID  *snowflake.Node
	clock  clock.Clock
	repo   domain.Repository
	locker lock.Locker
	tracer trace.Tracer
}

func New(p Params) domain.Service {
	return &Service{
		db:     p.DB,
		log:    p.Log.Named("pricematrix.service"),
		genID:  p.GenID,
		clock:  p.Clock,
		repo:   p.Repo,
		locker: p.Locker,
		tracer: otel.Tracer("pricematrix.service"),
	}
}

func (s *Service) Get(ctx context.Context, id string) (resp *domain.MatrixResponse, err error) {
	ctx, span := s.tracer.Start(ctx, "pricematrix.Get")
	defer func() { endSpan(span, err) }()

	matrixID, err := parseID(id)
	if err != nil {
		return nil, domain.ErrInvalidID
	}
	span.SetAttributes(attribute.String("price_matrix.id", matrixID.String()))

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		matrix, err := s.repo.FindMatrixByID(ctx, tx, matrixID)
		if err != nil {
			return err
		}
		if matrix == nil {
			return domain.ErrMatrixNotFound
		}

		ruleSets, err := s.repo.ListRuleSets(ctx, tx, matrixID)
		if err != nil {
			return err
		}

		ids := make([]snowflake.ID, 0, len(ruleSets))
		for _, rs := range ruleSets {
			ids = append(ids, rs.ID)
		}
		rules, err := s.repo.ListRules(ctx, tx, ids)
		if err != nil {
			return err
		}

		resp = toMatrixResponse(matrix, ruleSets, rules)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (s *Service) List(ctx context.Context) ([]domain.MatrixSummaryResponse, error) {
	items, err := s.repo.ListMatrices(ctx, s.db)
	if err != nil {
		return nil, err
	}

	resp := make([]domain.MatrixSummaryResponse, 0, len(items))
	for _, item := range items {
		resp = append(resp, domain.MatrixSummaryResponse{
			ID:           item.ID,
			Name:         item.Name,
			RuleSetCount: item.RuleSetCount,
		})
	}
	return resp, nil
}

// ChangePriority exchanges the priority of a rule set with its nearest neighbour in the
// given direction. A zero direction is accepted and changes nothing.
func (s *Service) ChangePriority(ctx context.Context, req domain.ChangePriorityRequest) (err error) {
	if req.Direction == 0 {
		return nil
	}

	ctx, span := s.tracer.Start(ctx, "pricematrix.ChangePriority")
	defer func() { endSpan(span, err) }()

	matrixID, ruleSetID, err := parseIDs(req.MatrixID, req.RuleSetID)
	if err != nil {
		return err
	}
	up := req.Direction > 0
	span.SetAttributes(
		attribute.String("price_matrix.id", matrixID.String()),
		attribute.String("rule_set.id", ruleSetID.String()),
		attribute.Bool("direction.up", up),
	)

	return s.withMatrixLock(ctx, matrixID, func(tx *gorm.DB) error {
		current, err := s.repo.FindRuleSet(ctx, tx, matrixID, ruleSetID)
		if err != nil {
			return err
		}
		if current == nil {
			return domain.ErrNotFound
		}

		neighbour, err := s.repo.FindNeighbour(ctx, tx, matrixID, current.Priority, up)
		if err != nil {
			return err
		}
		if neighbour == nil {
			return domain.ErrNoNeighbour
		}

		// park the first row on a free value so the unique index never sees a duplicate
		lowest, err := s.repo.MinPriority(ctx, tx, matrixID)
		if err != nil {
			return err
		}
		if err := s.repo.SetPriority(ctx, tx, current.ID, lowest-1); err != nil {
			return err
		}
		if err := s.repo.SetPriority(ctx, tx, neighbour.ID, current.Priority); err != nil {
			return err
		}
		if err := s.repo.SetPriority(ctx, tx, current.ID, neighbour.Priority); err != nil {
			return err
		}

		s.log.Info("rule set priority swapped",
			zap.String("price_matrix_id", matrixID.String()),
			zap.String("rule_set_id", current.ID.String()),
			zap.Int("from", current.Priority),
			zap.Int("to", neighbour.Priority),
			zap.String("neighbour_id", neighbour.ID.String()),
		)
		return nil
	})
}

func (s *Service) CreateRuleSet(ctx context.Context, req domain.RuleSetRequest) (resp *domain.RuleSetResponse, err error) {
	ctx, span := s.tracer.Start(ctx, "pricematrix.CreateRuleSet")
	defer func() { endSpan(span, err) }()

	matrixID, err := parseID(req.MatrixID)
	if err != nil {
		return nil, domain.ErrInvalidID
	}
	span.SetAttributes(attribute.String("price_matrix.id", matrixID.String()))

	ruleSetID := s.genID.Generate()
	rules, err := buildRules(s.genID, ruleSetID, req.Rules)
	if err != nil {
		return nil, err
	}

	err = s.withMatrixLock(ctx, matrixID, func(tx *gorm.DB) error {
		highest, err := s.repo.MaxPriority(ctx, tx, matrixID)
		if err != nil {
			return err
		}

		now := s.clock.Now(ctx)
		ruleSet := &domain.RuleSet{
			ID:            ruleSetID,
			PriceMatrixID: matrixID,
			Priority:      highest + 1,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		fillRuleSet(ruleSet, req)

		if err := s.repo.InsertRuleSet(ctx, tx, ruleSet); err != nil {
			return err
		}
		if err := s.repo.InsertRules(ctx, tx, rules); err != nil {
			return err
		}

		out := toRuleSetResponse(ruleSet, rules)
		resp = &out
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("rule set created",
		zap.String("price_matrix_id", matrixID.String()),
		zap.String("rule_set_id", resp.RuleSetID.String()),
		zap.Int("priority", resp.Priority),
		zap.Int("rules", len(resp.Rules)),
	)
	return resp, nil
}

// UpdateRuleSet replaces every field and every rule of an existing rule set.
func (s *Service) UpdateRuleSet(ctx context.Context, req domain.RuleSetRequest) (resp *domain.RuleSetResponse, err error) {
	ctx, span := s.tracer.Start(ctx, "pricematrix.UpdateRuleSet")
	defer func() { endSpan(span, err) }()

	matrixID, ruleSetID, err := parseIDs(req.MatrixID, req.RuleSetID)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(
		attribute.String("price_matrix.id", matrixID.String()),
		attribute.String("rule_set.id", ruleSetID.String()),
	)

	rules, err := buildRules(s.genID, ruleSetID, req.Rules)
	if err != nil {
		return nil, err
	}

	err = s.withMatrixLock(ctx, matrixID, func(tx *gorm.DB) error {
		ruleSet, err := s.repo.FindRuleSet(ctx, tx, matrixID, ruleSetID)
		if err != nil {
			return err
		}
		if ruleSet == nil {
			return domain.ErrNotFound
		}

		if err := s.repo.DeleteRules(ctx, tx, ruleSetID); err != nil {
			return err
		}

		fillRuleSet(ruleSet, req)
		ensureMonetaryEffect(ruleSet)
		ruleSet.UpdatedAt = s.clock.Now(ctx)

		if err := s.repo.UpdateRuleSet(ctx, tx, ruleSet); err != nil {
			return err
		}
		if err := s.repo.InsertRules(ctx, tx, rules); err != nil {
			return err
		}

		out := toRuleSetResponse(ruleSet, rules)
		resp = &out
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (s *Service) DeleteRuleSet(ctx context.Context, matrix, id string) (err error) {
	ctx, span := s.tracer.Start(ctx, "pricematrix.DeleteRuleSet")
	defer func() { endSpan(span, err) }()

	matrixID, ruleSetID, err := parseIDs(matrix, id)
	if err != nil {
		return err
	}

	return s.withMatrixLock(ctx, matrixID, func(tx *gorm.DB) error {
		ruleSet, err := s.repo.FindRuleSet(ctx, tx, matrixID, ruleSetID)
		if err != nil {
			return err
		}
		if ruleSet == nil {
			return domain.ErrNotFound
		}
		if err := s.repo.DeleteRuleSet(ctx, tx, ruleSetID); err != nil {
			return err
		}

		s.log.Info("rule set deleted",
			zap.String("price_matrix_id", matrixID.String()),
			zap.String("rule_set_id", ruleSetID.String()),
		)
		return nil
	})
}

// withMatrixLock runs fn in one transaction while holding the matrix write lock and the
// matrix row lock. fn is not called when the matrix does not exist.
func (s *Service) withMatrixLock(ctx context.Context, matrixID snowflake.ID, fn func(tx *gorm.DB) error) error {
	release, err := s.locker.Acquire(ctx, lock.MatrixKey(matrixID))
	if err != nil {
		return err
	}
	defer func() {
		if err := release(context.Background()); err != nil {
			s.log.Warn("release matrix lock", zap.String("price_matrix_id", matrixID.String()), zap.Error(err))
		}
	}()

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		matrix, err := s.repo.LockMatrix(ctx, tx, matrixID)
		if err != nil {
			return err
		}
		if matrix == nil {
			return domain.ErrMatrixNotFound
		}
		return fn(tx)
	})
}

func parseID(value string) (snowflake.ID, error) {
	return snowflake.ParseString(strings.TrimSpace(value))
}

func parseIDs(matrix, ruleSet string) (snowflake.ID, snowflake.ID, error) {
	matrixID, err := parseID(matrix)
	if err != nil {
		return 0, 0, domain.ErrInvalidID
	}
	ruleSetID, err := parseID(ruleSet)
	if err != nil {
		return 0, 0, domain.ErrInvalidID
	}
	return matrixID, ruleSetID, nil
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
