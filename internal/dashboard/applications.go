package dashboard

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"placement-backend/internal/automation"
	"placement-backend/internal/placement"
)

// ApplicationInput starts tracking a job in the pipeline. ResumeID defaults to
// the current resume and Stage to applied.
type ApplicationInput struct {
	JobID         string                  `json:"jobId"`
	ResumeID      string                  `json:"resumeId"`
	Stage         string                  `json:"stage"`
	Notes         string                  `json:"notes"`
	CoverLetter   string                  `json:"coverLetter"`
	InterviewDate *time.Time              `json:"interviewDate,omitempty"`
	InterviewType placement.InterviewType `json:"interviewType,omitempty"`
}

// StageInput moves an application and optionally schedules its interview.
type StageInput struct {
	Stage         string                  `json:"stage"`
	InterviewDate *time.Time              `json:"interviewDate,omitempty"`
	InterviewType placement.InterviewType `json:"interviewType,omitempty"`
}

func (s *Service) CreateApplication(ctx context.Context, userID string, in ApplicationInput) (placement.Application, error) {
	stage := placement.StageApplied
	if strings.TrimSpace(in.Stage) != "" {
		parsed, err := placement.ParseStage(in.Stage)
		if err != nil {
			return placement.Application{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		stage = parsed
	}

	var app placement.Application
	_, err := s.update(ctx, userID, true, func(u placement.User, now time.Time) (placement.User, error) {
		if _, ok := u.JobByID(in.JobID); !ok {
			return placement.User{}, fmt.Errorf("%w: job %s", ErrNotFound, in.JobID)
		}
		resumeID := strings.TrimSpace(in.ResumeID)
		if resumeID == "" {
			resumeID = u.CurrentResumeID
		} else if _, ok := u.ResumeByID(resumeID); !ok {
			return placement.User{}, fmt.Errorf("%w: resume %s", ErrNotFound, resumeID)
		}

		app = placement.Application{
			ID:            uuid.NewString(),
			JobID:         in.JobID,
			ResumeID:      resumeID,
			Stage:         stage,
			AppliedDate:   now,
			InterviewDate: in.InterviewDate,
			InterviewType: in.InterviewType,
			Notes:         in.Notes,
			Documents:     placement.Documents{Resume: resumeID, CoverLetter: in.CoverLetter},
		}
		return u.AddApplication(app, now), nil
	})
	if err != nil {
		return placement.Application{}, err
	}
	return app, nil
}

// UpdateApplicationStage allows any transition between stages.
func (s *Service) UpdateApplicationStage(ctx context.Context, userID, appID string, in StageInput) (placement.Application, error) {
	stage, err := placement.ParseStage(in.Stage)
	if err != nil {
		return placement.Application{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	u, err := s.update(ctx, userID, true, func(u placement.User, now time.Time) (placement.User, error) {
		if _, ok := u.ApplicationByID(appID); !ok {
			return placement.User{}, fmt.Errorf("%w: application %s", ErrNotFound, appID)
		}
		u = u.UpdateApplicationStage(appID, stage, now)
		if in.InterviewDate != nil {
			u = u.ScheduleInterview(appID, *in.InterviewDate, in.InterviewType, now)
		}
		return u, nil
	})
	if err != nil {
		return placement.Application{}, err
	}
	app, _ := u.ApplicationByID(appID)
	return app, nil
}

func (s *Service) Momentum(ctx context.Context, userID string) (automation.Momentum, error) {
	u, err := s.user(ctx, userID)
	if err != nil {
		return automation.Momentum{}, err
	}
	return automation.AnalyzeMomentum(u.Applications, s.now()), nil
}

// Stalled lists open applications idle longer than days. Non-positive days
// falls back to the configured threshold.
func (s *Service) Stalled(ctx context.Context, userID string, days int) ([]placement.Application, error) {
	u, err := s.user(ctx, userID)
	if err != nil {
		return nil, err
	}
	if days <= 0 {
		days = s.stalledDays
	}
	return automation.Stalled(u.Applications, days, s.now()), nil
}

func (s *Service) PipelineHealth(ctx context.Context, userID string) (automation.PipelineHealth, error) {
	u, err := s.user(ctx, userID)
	if err != nil {
		return automation.PipelineHealth{}, err
	}
	return automation.CalculatePipelineHealth(u.Applications, s.now()), nil
}

func (s *Service) NextSteps(ctx context.Context, userID string) (automation.NextSteps, error) {
	u, err := s.user(ctx, userID)
	if err != nil {
		return automation.NextSteps{}, err
	}
	current, _ := u.CurrentResume()
	return automation.PlanNextSteps(u.Applications, current, u.Analyses()), nil
}
