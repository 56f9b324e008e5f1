package dashboard

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/lithammer/shortuuid/v4"

	"placement-backend/internal/extract"
	"placement-backend/internal/jdanalysis"
	"placement-backend/internal/placement"
	"placement-backend/internal/shared/storage/object"
	"placement-backend/internal/shared/telemetry"
)

// AnalyzeInput is a job description to analyze. When JobID names a stored job
// the analysis is kept under that id and Title defaults to the job title.
type AnalyzeInput struct {
	Text  string `json:"text"`
	Title string `json:"title"`
	JobID string `json:"jobId"`
}

func (s *Service) AnalyzeJD(ctx context.Context, userID string, in AnalyzeInput) (placement.JDAnalysis, error) {
	if strings.TrimSpace(in.Text) == "" {
		return placement.JDAnalysis{}, fmt.Errorf("%w: text is required", ErrInvalidInput)
	}
	in.JobID = strings.TrimSpace(in.JobID)

	var analysis placement.JDAnalysis
	_, err := s.update(ctx, userID, true, func(u placement.User, now time.Time) (placement.User, error) {
		title := strings.TrimSpace(in.Title)
		if in.JobID != "" {
			job, ok := u.JobByID(in.JobID)
			if !ok {
				return placement.User{}, fmt.Errorf("%w: job %s", ErrNotFound, in.JobID)
			}
			if title == "" {
				title = job.Title
			}
		}

		analysis = s.analyzer.Analyze(in.Text, title)
		analysis.ID = shortuuid.New()
		analysis.JobID = in.JobID
		analysis.AnalysisDate = now
		if _, ok := u.CurrentResume(); ok {
			analysis.MissingSkills = jdanalysis.CompareWithResume(analysis, u.ResumeSkills()).MissingSkills
		}

		if in.JobID == "" {
			return u, nil
		}
		return u.AddJDAnalysis(analysis, now), nil
	})
	if err != nil {
		return placement.JDAnalysis{}, err
	}
	return analysis, nil
}

// AnalyzeJDFile extracts text from an uploaded PDF, DOCX or plain-text job
// description and analyzes it. The upload is kept in the object store when one
// is configured.
func (s *Service) AnalyzeJDFile(ctx context.Context, userID, fileName string, r io.Reader, title, jobID string) (placement.JDAnalysis, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return placement.JDAnalysis{}, fmt.Errorf("read upload: %w", err)
	}
	if len(data) == 0 {
		return placement.JDAnalysis{}, fmt.Errorf("%w: file is empty", ErrInvalidInput)
	}

	var text string
	if s.objects != nil {
		stored, err := s.objects.Save(ctx, object.Upload{
			UserID:   userID,
			Kind:     object.KindJobDescription,
			FileName: fileName,
		}, bytes.NewReader(data))
		if err != nil {
			return placement.JDAnalysis{}, fmt.Errorf("store upload: %w", err)
		}
		telemetry.Info("jd.upload.stored", map[string]any{
			"user_id":    userID,
			"key":        stored.Key,
			"size_bytes": stored.SizeBytes,
			"mime_type":  stored.MimeType,
		})
		text, err = extract.FromStore(ctx, s.objects, stored.Key, stored.MimeType, fileName)
		if err != nil {
			return placement.JDAnalysis{}, extractError(err)
		}
	} else {
		text, err = extract.Text(ctx, data, http.DetectContentType(data), fileName)
		if err != nil {
			return placement.JDAnalysis{}, extractError(err)
		}
	}

	return s.AnalyzeJD(ctx, userID, AnalyzeInput{Text: text, Title: title, JobID: jobID})
}

func extractError(err error) error {
	if errors.Is(err, extract.ErrUnsupported) {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return fmt.Errorf("extract text: %w", err)
}

func (s *Service) JDAnalysis(ctx context.Context, userID, jobID string) (placement.JDAnalysis, error) {
	u, err := s.user(ctx, userID)
	if err != nil {
		return placement.JDAnalysis{}, err
	}
	a, ok := u.JDAnalyses[jobID]
	if !ok {
		return placement.JDAnalysis{}, fmt.Errorf("%w: analysis for job %s", ErrNotFound, jobID)
	}
	return a, nil
}

// CompareJD compares a stored analysis with the current resume skills.
func (s *Service) CompareJD(ctx context.Context, userID, jobID string) (jdanalysis.Comparison, error) {
	u, err := s.user(ctx, userID)
	if err != nil {
		return jdanalysis.Comparison{}, err
	}
	a, ok := u.JDAnalyses[jobID]
	if !ok {
		return jdanalysis.Comparison{}, fmt.Errorf("%w: analysis for job %s", ErrNotFound, jobID)
	}
	return jdanalysis.CompareWithResume(a, u.ResumeSkills()), nil
}

func (s *Service) JDInsights(ctx context.Context, userID, jobID string) ([]string, error) {
	a, err := s.JDAnalysis(ctx, userID, jobID)
	if err != nil {
		return nil, err
	}
	return jdanalysis.GenerateInsights(a), nil
}
