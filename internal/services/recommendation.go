package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/lunchmate/lunchmate-backend/internal/engine"
	"github.com/lunchmate/lunchmate-backend/internal/logger"
)

// generateDeadline bounds one batch run; the pair space is O(N²) and grows
// with the population.
const generateDeadline = 2 * time.Minute

type RecommendationService interface {
	Lookup(ctx context.Context, userID uuid.UUID, date string) ([]engine.RecommendationEntry, error)
	TriggerGeneration(ctx context.Context) error
	GeneratedFor() string
	StartDailyWorker(ctx context.Context)
}

type recommendationService struct {
	log    *logger.Logger
	engine *engine.Engine
	loc    *time.Location
}

func NewRecommendationService(baseLog *logger.Logger, eng *engine.Engine, timezone string) (RecommendationService, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", timezone, err)
	}
	return &recommendationService{
		log:    baseLog.With("service", "RecommendationService"),
		engine: eng,
		loc:    loc,
	}, nil
}

func (rs *recommendationService) Lookup(_ context.Context, userID uuid.UUID, date string) ([]engine.RecommendationEntry, error) {
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", date, err)
	}
	return rs.engine.Lookup(userID, date), nil
}

func (rs *recommendationService) TriggerGeneration(ctx context.Context) error {
	return rs.engine.Generate(ctx)
}

func (rs *recommendationService) GeneratedFor() string {
	return rs.engine.GeneratedFor()
}

// StartDailyWorker generates once at startup, then again after every local
// midnight. Failed runs retry on the next tick; the previous cache stays
// live in between.
func (rs *recommendationService) StartDailyWorker(ctx context.Context) {
	go func() {
		rs.runOnce(ctx)
		for {
			wait := rs.untilNextMidnight()
			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
				rs.runOnce(ctx)
			}
		}
	}()
}

func (rs *recommendationService) runOnce(ctx context.Context) {
	runCtx, cancel := context.WithTimeout(ctx, generateDeadline)
	defer cancel()
	if err := rs.engine.Generate(runCtx); err != nil {
		rs.log.Warn("Scheduled generation failed", "error", err)
		return
	}
	rs.log.Info("Scheduled generation completed", "generated_for", rs.engine.GeneratedFor())
}

func (rs *recommendationService) untilNextMidnight() time.Duration {
	now := time.Now().In(rs.loc)
	next := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, rs.loc).AddDate(0, 0, 1)
	return time.Until(next)
}
