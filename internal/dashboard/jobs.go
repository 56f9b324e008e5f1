package dashboard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lithammer/shortuuid/v4"

	"placement-backend/internal/automation"
	"placement-backend/internal/jobs"
	"placement-backend/internal/placement"
	"placement-backend/internal/queue"
	"placement-backend/internal/readiness"
	"placement-backend/internal/shared/metrics"
	"placement-backend/internal/shared/telemetry"
)

// JobInput is a listing submitted by the user or an import feed.
type JobInput struct {
	Title        string            `json:"title"`
	Company      string            `json:"company"`
	Location     string            `json:"location"`
	Description  string            `json:"description"`
	Requirements []string          `json:"requirements"`
	Salary       *placement.Salary `json:"salary,omitempty"`
	JobURL       string            `json:"jobUrl"`
	Source       string            `json:"source"`
	PostedDate   *time.Time        `json:"postedDate,omitempty"`
}

// SaveResult reports how the automation flow was dispatched for a saved job.
type SaveResult struct {
	Job     placement.Job          `json:"job"`
	Queued  bool                   `json:"queued"`
	Skipped bool                   `json:"skipped,omitempty"`
	Flow    *automation.FlowResult `json:"flow,omitempty"`
}

// AddJob stores a listing scored against the user's current resume and profile.
func (s *Service) AddJob(ctx context.Context, userID string, in JobInput) (placement.Job, error) {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return placement.Job{}, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}

	var job placement.Job
	_, err := s.update(ctx, userID, true, func(u placement.User, now time.Time) (placement.User, error) {
		job = placement.Job{
			ID:           uuid.NewString(),
			Title:        in.Title,
			Company:      strings.TrimSpace(in.Company),
			Location:     strings.TrimSpace(in.Location),
			Description:  in.Description,
			Requirements: append([]string(nil), in.Requirements...),
			Salary:       in.Salary,
			JobURL:       in.JobURL,
			Source:       in.Source,
			PostedDate:   now,
		}
		if in.PostedDate != nil {
			job.PostedDate = *in.PostedDate
		}
		job.MatchScore = jobs.CalculateMatchScore(job, u.ResumeSkills(), jobs.PreferencesFor(u))
		return u.AddJob(job, now), nil
	})
	if err != nil {
		return placement.Job{}, err
	}
	return job, nil
}

func (s *Service) ListJobs(ctx context.Context, userID string, f jobs.Filter) ([]placement.Job, error) {
	u, err := s.user(ctx, userID)
	if err != nil {
		return nil, err
	}
	return jobs.FilterJobs(u.JobMatches, f), nil
}

func (s *Service) TopJobs(ctx context.Context, userID string, n int) ([]placement.Job, error) {
	u, err := s.user(ctx, userID)
	if err != nil {
		return nil, err
	}
	return jobs.TopJobs(u.JobMatches, n), nil
}

func (s *Service) JobTrends(ctx context.Context, userID string) (jobs.Trends, error) {
	u, err := s.user(ctx, userID)
	if err != nil {
		return jobs.Trends{}, err
	}
	return jobs.AnalyzeTrends(u.JobMatches), nil
}

// SaveJob marks the job saved, then either enqueues the automation flow or runs
// it inline when no queue is configured. Users without a current resume only
// get the save.
func (s *Service) SaveJob(ctx context.Context, userID, jobID string) (SaveResult, error) {
	u, err := s.update(ctx, userID, true, func(u placement.User, now time.Time) (placement.User, error) {
		if _, ok := u.JobByID(jobID); !ok {
			return placement.User{}, fmt.Errorf("%w: job %s", ErrNotFound, jobID)
		}
		return u.SaveJob(jobID, now), nil
	})
	if err != nil {
		return SaveResult{}, err
	}
	job, _ := u.JobByID(jobID)
	res := SaveResult{Job: job}

	if s.queue != nil {
		msg := queue.NewJobSaved(userID, jobID, requestIDFromContext(ctx), s.now())
		if err := s.queue.Send(ctx, msg); err != nil {
			return SaveResult{}, fmt.Errorf("enqueue job saved: %w", err)
		}
		res.Queued = true
		return res, nil
	}

	flow, err := s.ProcessJobSaved(ctx, userID, jobID)
	switch {
	case errors.Is(err, ErrNoCurrentResume):
		res.Skipped = true
	case err != nil:
		return SaveResult{}, err
	default:
		res.Flow = &flow
	}
	return res, nil
}

func (s *Service) UnsaveJob(ctx context.Context, userID, jobID string) (placement.Job, error) {
	u, err := s.update(ctx, userID, true, func(u placement.User, now time.Time) (placement.User, error) {
		if _, ok := u.JobByID(jobID); !ok {
			return placement.User{}, fmt.Errorf("%w: job %s", ErrNotFound, jobID)
		}
		return u.UnsaveJob(jobID, now), nil
	})
	if err != nil {
		return placement.Job{}, err
	}
	job, _ := u.JobByID(jobID)
	return job, nil
}

// ProcessJobSaved runs the automation flow for a saved job against the current
// resume. The analysis is stored under the job id, the current resume is
// replaced by its optimized version, and readiness is recomputed.
func (s *Service) ProcessJobSaved(ctx context.Context, userID, jobID string) (automation.FlowResult, error) {
	start := time.Now()
	var res automation.FlowResult
	_, err := s.update(ctx, userID, false, func(u placement.User, now time.Time) (placement.User, error) {
		job, ok := u.JobByID(jobID)
		if !ok {
			return placement.User{}, fmt.Errorf("%w: job %s", ErrNotFound, jobID)
		}
		current, ok := u.CurrentResume()
		if !ok {
			return placement.User{}, ErrNoCurrentResume
		}

		out, err := s.flow.RunFullJobApplicationFlow(job, current)
		if err != nil {
			if errors.Is(err, automation.ErrInvalidInput) {
				return placement.User{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
			}
			return placement.User{}, err
		}
		out.Analysis.ID = shortuuid.New()
		out.Analysis.AnalysisDate = now
		out.OptimizedResume.LastUpdated = now
		res = out

		u = u.AddJDAnalysis(out.Analysis, now)
		u = u.UpdateResume(out.OptimizedResume, now)
		return u.SetReadinessScore(readiness.Calculate(u), now), nil
	})

	fields := map[string]any{
		"user_id":     userID,
		"job_id":      jobID,
		"request_id":  requestIDFromContext(ctx),
		"duration_ms": time.Since(start).Milliseconds(),
	}
	switch {
	case errors.Is(err, ErrNoCurrentResume):
		metrics.ObserveFlow("skipped", time.Since(start))
		telemetry.Info("flow.skipped", fields)
		return automation.FlowResult{}, err
	case err != nil:
		metrics.ObserveFlow("error", time.Since(start))
		fields["error"] = err
		telemetry.Error("flow.failed", fields)
		return automation.FlowResult{}, err
	}

	metrics.ObserveFlow("ok", time.Since(start))
	fields["analysis_id"] = res.Analysis.ID
	fields["alignment"] = res.AlignmentScore
	fields["ats_score"] = res.OptimizedResume.ATSScore
	telemetry.Info("flow.completed", fields)
	return res, nil
}
