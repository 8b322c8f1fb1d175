// Package generation orchestrates one submission: policy checks, the
// cache-hit-or-external-call decision, and the single atomic ledger commit.
package generation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/postmint-ai/postmint/internal/generator"
	"github.com/postmint-ai/postmint/internal/metrics"
	"github.com/postmint-ai/postmint/internal/quota"
)

// ErrConflict is returned when a concurrent submission consumed the cached
// pool between the snapshot read and the row lock. Nothing was committed;
// resubmitting is safe.
var ErrConflict = errors.New("quota changed during submission, please retry")

// Store is the slice of the quota store the orchestrator needs.
type Store interface {
	GetOrCreate(ctx context.Context, userID uuid.UUID) (*quota.UserQuota, error)
	Update(ctx context.Context, userID uuid.UUID, fn quota.UpdateFn) (*quota.UserQuota, error)
}

// Service runs submissions end to end.
type Service struct {
	store   Store
	gen     generator.Client
	parser  generator.Parser
	timeout time.Duration
	now     func() time.Time
}

// NewService creates a generation Service. timeout bounds the external
// generator call; zero means 60s.
func NewService(store Store, gen generator.Client, parser generator.Parser, timeout time.Duration) *Service {
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	return &Service{
		store:   store,
		gen:     gen,
		parser:  parser,
		timeout: timeout,
		now:     time.Now,
	}
}

// Submit validates the request, serves it from the cached pool when
// possible, otherwise calls the external generator, and commits all ledger
// mutations as one atomic write. Any failure before the commit leaves the
// ledger untouched.
func (s *Service) Submit(ctx context.Context, userID uuid.UUID, req SubmitRequest) (*SubmitResult, error) {
	if err := quota.ValidateDescription(req.Description); err != nil {
		return nil, err
	}

	snapshot, err := s.store.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("loading quota: %w", err)
	}

	if err := quota.CanReveal(snapshot, req.Count); err != nil {
		return nil, err
	}

	fromCache := len(snapshot.CachedPosts) >= req.Count

	var batch []string
	if !fromCache {
		if err := quota.CanSubmit(snapshot); err != nil {
			return nil, err
		}
		if err := quota.CanGenerate(snapshot, s.now()); err != nil {
			return nil, err
		}

		batch, err = s.generate(ctx, req)
		if err != nil {
			return nil, err
		}
	} else {
		metrics.CacheHitsTotal.Inc()
	}

	var revealed []string
	updated, err := s.store.Update(ctx, userID, func(q *quota.UserQuota) (*quota.Update, error) {
		upd, posts, err := s.commit(q, req.Count, batch)
		if err != nil {
			return nil, err
		}
		revealed = posts
		return upd, nil
	})
	if err != nil {
		return nil, err
	}

	metrics.PostsRevealedTotal.Add(float64(len(revealed)))
	slog.Info("submission committed",
		"user_id", userID,
		"revealed", len(revealed),
		"from_cache", fromCache,
		"cached_pool", len(updated.CachedPosts),
	)

	return &SubmitResult{
		Posts:     revealed,
		FromCache: fromCache,
		Quota:     quota.StatusFor(updated, s.now()),
	}, nil
}

func (s *Service) generate(ctx context.Context, req SubmitRequest) ([]string, error) {
	cctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	raw, err := s.gen.Generate(cctx, generator.Request{
		Description: req.Description,
		Tone:        req.Tone,
		Audience:    req.Audience,
	})
	if err != nil {
		metrics.GeneratorCallsTotal.WithLabelValues("error").Inc()
		if errors.Is(err, generator.ErrGeneratorFailure) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", generator.ErrGeneratorFailure, err)
	}

	batch := s.parser.Parse(raw)
	if len(batch) == 0 {
		metrics.GeneratorCallsTotal.WithLabelValues("unparseable").Inc()
		return nil, fmt.Errorf("%w: completion contained no posts", generator.ErrGeneratorFailure)
	}

	metrics.GeneratorCallsTotal.WithLabelValues("ok").Inc()
	return batch, nil
}

// commit recomputes every policy decision against the row-locked ledger and
// builds the single typed update for this submission. batch is nil on the
// cache-hit path.
func (s *Service) commit(q *quota.UserQuota, count int, batch []string) (*quota.Update, []string, error) {
	if err := quota.CanReveal(q, count); err != nil {
		return nil, nil, err
	}

	upd := &quota.Update{}
	pool := q.CachedPosts

	if len(pool) < count {
		if batch == nil {
			// The snapshot promised a cache hit but a concurrent request
			// drained the pool first.
			return nil, nil, ErrConflict
		}
		today := s.now()
		if err := quota.CanSubmit(q); err != nil {
			return nil, nil, err
		}
		if err := quota.CanGenerate(q, today); err != nil {
			return nil, nil, err
		}

		pool = append(append(make([]string, 0, len(pool)+len(batch)), pool...), batch...)

		purchasedSubmits, freeSubmits := quota.DeductSubmit(q)
		calls := quota.EffectiveAPICalls(q, today) + 1
		upd.PurchasedSubmits = &purchasedSubmits
		upd.RemainingSubmits = &freeSubmits
		upd.APICallsToday = &calls
		upd.LastAPICallDate = &today
	}

	// The generator may return fewer posts than requested; reveal what the
	// pool actually holds.
	reveal := min(count, len(pool))
	revealed := pool[:reveal]
	rest := pool[reveal:]

	purchasedPosts, freePosts := quota.DeductPosts(q, reveal)
	upd.PurchasedPosts = &purchasedPosts
	upd.RemainingPosts = &freePosts
	upd.CachedPosts = &rest

	return upd, revealed, nil
}
