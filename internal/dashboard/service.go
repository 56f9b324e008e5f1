package dashboard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"placement-backend/internal/automation"
	"placement-backend/internal/jdanalysis"
	"placement-backend/internal/notifications"
	"placement-backend/internal/placement"
	"placement-backend/internal/queue"
	"placement-backend/internal/readiness"
	"placement-backend/internal/shared/storage/object"
	"placement-backend/internal/state"
)

// Options configures a Service. Store is required; everything else has a default.
type Options struct {
	Store         state.Store
	Objects       object.ObjectStore
	Queue         queue.Client
	Analyzer      *jdanalysis.Analyzer
	Now           func() time.Time
	StalledDays   int
	RetentionDays int
}

// Service coordinates the placement engines over the per-user state store.
type Service struct {
	store         state.Store
	objects       object.ObjectStore
	queue         queue.Client
	analyzer      *jdanalysis.Analyzer
	flow          *automation.Flow
	now           func() time.Time
	stalledDays   int
	retentionDays int
	locks         userLocks
}

func NewService(opts Options) *Service {
	analyzer := opts.Analyzer
	if analyzer == nil {
		analyzer = jdanalysis.NewAnalyzer()
	}
	now := opts.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	retention := opts.RetentionDays
	if retention <= 0 {
		retention = notifications.DefaultRetentionDays
	}
	return &Service{
		store:         opts.Store,
		objects:       opts.Objects,
		queue:         opts.Queue,
		analyzer:      analyzer,
		flow:          automation.NewFlow(analyzer),
		now:           now,
		stalledDays:   opts.StalledDays,
		retentionDays: retention,
	}
}

// user loads the stored state or an empty profile for first-time visitors.
// The empty profile is not persisted.
func (s *Service) user(ctx context.Context, userID string) (placement.User, error) {
	u, err := s.store.Get(ctx, userID)
	if errors.Is(err, state.ErrNotFound) {
		return placement.NewUser(userID, "", "", s.now()), nil
	}
	if err != nil {
		return placement.User{}, fmt.Errorf("load user: %w", err)
	}
	return u, nil
}

// update applies fn under the user's lock, creating the profile when missing.
// The lock covers this process only; writers in other processes are caught by
// the store's version check and fn is re-run on the fresh state.
// touch records the call as user activity.
func (s *Service) update(ctx context.Context, userID string, touch bool, fn func(u placement.User, now time.Time) (placement.User, error)) (placement.User, error) {
	unlock := s.locks.lock(userID)
	defer unlock()

	now := s.now()
	if err := s.ensure(ctx, userID, "", "", now); err != nil {
		return placement.User{}, err
	}
	return state.Update(ctx, s.store, userID, func(u placement.User) (placement.User, error) {
		next, err := fn(u, now)
		if err != nil {
			return placement.User{}, err
		}
		if touch {
			next = next.TouchActivity(now)
		}
		return next, nil
	})
}

func (s *Service) ensure(ctx context.Context, userID, name, email string, now time.Time) error {
	_, err := s.store.Get(ctx, userID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, state.ErrNotFound) {
		return fmt.Errorf("load user: %w", err)
	}
	err = s.store.Put(ctx, placement.NewUser(userID, name, email, now))
	if err != nil && !errors.Is(err, state.ErrConflict) {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// EnsureUser creates the profile on first sign-in. Existing profiles are untouched.
func (s *Service) EnsureUser(ctx context.Context, userID, name, email string) (placement.User, error) {
	unlock := s.locks.lock(userID)
	defer unlock()

	if err := s.ensure(ctx, userID, name, email, s.now()); err != nil {
		return placement.User{}, err
	}
	return s.store.Get(ctx, userID)
}

func (s *Service) Profile(ctx context.Context, userID string) (placement.User, error) {
	return s.user(ctx, userID)
}

func (s *Service) UpdateProfile(ctx context.Context, userID string, p placement.Profile) (placement.User, error) {
	return s.update(ctx, userID, true, func(u placement.User, now time.Time) (placement.User, error) {
		return u.UpdateProfile(p, now), nil
	})
}

// Dashboard returns the aggregated landing-page summary.
func (s *Service) Dashboard(ctx context.Context, userID string) (readiness.DashboardSummary, error) {
	u, err := s.user(ctx, userID)
	if err != nil {
		return readiness.DashboardSummary{}, err
	}
	return readiness.Summarize(u, s.now()), nil
}

// ListUserIDs returns every stored user id, used by the nudge scheduler.
func (s *Service) ListUserIDs(ctx context.Context) ([]string, error) {
	return s.store.ListIDs(ctx)
}

// Readiness recomputes the breakdown from current state and persists it.
func (s *Service) Readiness(ctx context.Context, userID string) (placement.ReadinessScoreBreakdown, error) {
	u, err := s.update(ctx, userID, false, func(u placement.User, now time.Time) (placement.User, error) {
		return u.SetReadinessScore(readiness.Calculate(u), now), nil
	})
	if err != nil {
		return placement.ReadinessScoreBreakdown{}, err
	}
	return u.ReadinessScore, nil
}

func (s *Service) ReadinessReport(ctx context.Context, userID string) (readiness.Report, error) {
	u, err := s.user(ctx, userID)
	if err != nil {
		return readiness.Report{}, err
	}
	return readiness.GenerateReport(u), nil
}
