package dashboard

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"placement-backend/internal/placement"
	"placement-backend/internal/shared/storage/object"
	"placement-backend/internal/shared/telemetry"
	"placement-backend/resume/ats"
	"placement-backend/resume/model"
	"placement-backend/resume/render"
)

// ATSReport is a score breakdown with the matching improvement suggestions.
type ATSReport struct {
	ats.Result
	Suggestions []string `json:"suggestions"`
}

// Export describes a resume rendered into the object store.
type Export struct {
	ResumeID  string `json:"resumeId"`
	Key       string `json:"key"`
	SizeBytes int64  `json:"sizeBytes"`
	MimeType  string `json:"mimeType"`
}

// CreateResume validates, scores and stores a resume. The first resume becomes current.
func (s *Service) CreateResume(ctx context.Context, userID string, r model.Resume) (model.Resume, error) {
	if err := r.Validate(); err != nil {
		return model.Resume{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	r.ID = strings.TrimSpace(r.ID)
	if r.ID == "" {
		r.ID = uuid.NewString()
	}

	_, err := s.update(ctx, userID, true, func(u placement.User, now time.Time) (placement.User, error) {
		if _, exists := u.ResumeByID(r.ID); exists {
			return placement.User{}, fmt.Errorf("%w: resume %s already exists", ErrInvalidInput, r.ID)
		}
		r.LastUpdated = now
		r.ATSScore = ats.Score(r).Score
		u = u.AddResume(r, now)
		if u.CurrentResumeID == "" {
			u = u.SetCurrentResume(r.ID, now)
		}
		return u, nil
	})
	if err != nil {
		return model.Resume{}, err
	}
	return r, nil
}

// CreateSampleResume stores the starter resume shown to new users.
func (s *Service) CreateSampleResume(ctx context.Context, userID string) (model.Resume, error) {
	return s.CreateResume(ctx, userID, ats.SampleResume(uuid.NewString(), s.now()))
}

func (s *Service) Resume(ctx context.Context, userID, resumeID string) (model.Resume, error) {
	u, err := s.user(ctx, userID)
	if err != nil {
		return model.Resume{}, err
	}
	r, ok := u.ResumeByID(resumeID)
	if !ok {
		return model.Resume{}, fmt.Errorf("%w: resume %s", ErrNotFound, resumeID)
	}
	return r, nil
}

func (s *Service) SetCurrentResume(ctx context.Context, userID, resumeID string) (model.Resume, error) {
	var r model.Resume
	_, err := s.update(ctx, userID, true, func(u placement.User, now time.Time) (placement.User, error) {
		var ok bool
		if r, ok = u.ResumeByID(resumeID); !ok {
			return placement.User{}, fmt.Errorf("%w: resume %s", ErrNotFound, resumeID)
		}
		return u.SetCurrentResume(resumeID, now), nil
	})
	if err != nil {
		return model.Resume{}, err
	}
	return r, nil
}

// ScoreResume rescores a stored resume and persists the new score.
func (s *Service) ScoreResume(ctx context.Context, userID, resumeID string) (ATSReport, error) {
	var report ATSReport
	_, err := s.update(ctx, userID, false, func(u placement.User, now time.Time) (placement.User, error) {
		r, ok := u.ResumeByID(resumeID)
		if !ok {
			return placement.User{}, fmt.Errorf("%w: resume %s", ErrNotFound, resumeID)
		}
		res := ats.Score(r)
		report = ATSReport{Result: res, Suggestions: ats.ImprovementSuggestions(res)}
		return u.UpdateATSScore(resumeID, res.Score, now), nil
	})
	if err != nil {
		return ATSReport{}, err
	}
	return report, nil
}

// OptimizeResume tunes a stored resume toward the given keywords and saves it.
func (s *Service) OptimizeResume(ctx context.Context, userID, resumeID string, keywords []string) (model.Resume, error) {
	cleaned := make([]string, 0, len(keywords))
	for _, k := range keywords {
		if k = strings.TrimSpace(k); k != "" {
			cleaned = append(cleaned, k)
		}
	}
	if len(cleaned) == 0 {
		return model.Resume{}, fmt.Errorf("%w: keywords are required", ErrInvalidInput)
	}

	var optimized model.Resume
	_, err := s.update(ctx, userID, true, func(u placement.User, now time.Time) (placement.User, error) {
		r, ok := u.ResumeByID(resumeID)
		if !ok {
			return placement.User{}, fmt.Errorf("%w: resume %s", ErrNotFound, resumeID)
		}
		optimized = ats.Optimize(r, cleaned)
		optimized.ATSScore = ats.Score(optimized).Score
		optimized.LastUpdated = now
		return u.UpdateResume(optimized, now), nil
	})
	if err != nil {
		return model.Resume{}, err
	}
	return optimized, nil
}

func (s *Service) ResumeText(ctx context.Context, userID, resumeID string) (string, error) {
	r, err := s.Resume(ctx, userID, resumeID)
	if err != nil {
		return "", err
	}
	return render.PlainText(r), nil
}

// Export formats.
const (
	FormatText = "txt"
	FormatDOCX = "docx"
)

// ExportResume renders a resume as plain text or DOCX into the object store.
func (s *Service) ExportResume(ctx context.Context, userID, resumeID, format string) (Export, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = FormatText
	}
	if format != FormatText && format != FormatDOCX {
		return Export{}, fmt.Errorf("%w: unsupported export format %q", ErrInvalidInput, format)
	}
	if s.objects == nil {
		return Export{}, ErrStoreUnavailable
	}
	r, err := s.Resume(ctx, userID, resumeID)
	if err != nil {
		return Export{}, err
	}

	body := []byte(render.PlainText(r))
	if format == FormatDOCX {
		if body, err = render.DOCX(r); err != nil {
			return Export{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
	}
	up := object.Upload{
		UserID:      userID,
		Kind:        object.KindResumeExport,
		FileName:    "resume-" + r.ID + "." + format,
		ContentType: "text/plain; charset=utf-8",
	}
	if format == FormatDOCX {
		up.ContentType = render.MimeDOCX
	}
	stored, err := s.objects.Save(ctx, up, bytes.NewReader(body))
	if err != nil {
		return Export{}, fmt.Errorf("store export: %w", err)
	}
	telemetry.Info("resume.export.stored", map[string]any{
		"user_id":    userID,
		"resume_id":  r.ID,
		"format":     format,
		"size_bytes": stored.SizeBytes,
	})
	return Export{ResumeID: r.ID, Key: stored.Key, SizeBytes: stored.SizeBytes, MimeType: stored.MimeType}, nil
}
