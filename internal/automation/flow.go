package automation

import (
	"errors"
	"fmt"
	"strings"

	"placement-backend/internal/jdanalysis"
	"placement-backend/internal/placement"
	"placement-backend/resume/ats"
	"placement-backend/resume/model"
)

const maxRecommendations = 5

var ErrInvalidInput = errors.New("invalid input")

// FlowResult is everything produced when a saved job is run through the pipeline.
type FlowResult struct {
	Analysis              placement.JDAnalysis `json:"analysis"`
	ResumeRecommendations []string             `json:"resumeRecommendations"`
	OptimizedResume       model.Resume         `json:"optimizedResume"`
	MissingSkills         []string             `json:"missingSkills"`
	AlignmentScore        int                  `json:"alignmentScore"`
}

// Flow chains JD analysis, resume comparison and ATS optimization for one job.
type Flow struct {
	analyzer *jdanalysis.Analyzer
}

func NewFlow(analyzer *jdanalysis.Analyzer) *Flow {
	if analyzer == nil {
		analyzer = jdanalysis.NewAnalyzer()
	}
	return &Flow{analyzer: analyzer}
}

// RunFullJobApplicationFlow analyzes the job, compares it with the resume skills,
// builds recommendations and returns the resume optimized for the job keywords
// with its ATS score recomputed. The input resume is not modified.
func (f *Flow) RunFullJobApplicationFlow(job placement.Job, resume model.Resume) (FlowResult, error) {
	if err := resume.Validate(); err != nil {
		return FlowResult{}, fmt.Errorf("%w: resume: %v", ErrInvalidInput, err)
	}

	analysis := f.analyzer.Analyze(job.Description, job.Title)
	analysis.JobID = job.ID

	cmp := jdanalysis.CompareWithResume(analysis, resume.Skills())
	analysis.MissingSkills = cmp.MissingSkills

	optimized := ats.Optimize(resume, analysis.KeywordsForResume)
	optimized.ATSScore = ats.Score(optimized).Score

	return FlowResult{
		Analysis:              analysis,
		ResumeRecommendations: recommendations(analysis, cmp.MissingSkills),
		OptimizedResume:       optimized,
		MissingSkills:         cmp.MissingSkills,
		AlignmentScore:        cmp.AlignmentScore,
	}, nil
}

func recommendations(a placement.JDAnalysis, missing []string) []string {
	out := make([]string, 0, maxRecommendations)
	if len(missing) > 0 {
		out = append(out, "Learn these missing skills: "+strings.Join(firstN(missing, 3), ", "))
	}
	if len(a.KeywordsForResume) > 0 {
		out = append(out, "Add these keywords to your skills: "+strings.Join(firstN(a.KeywordsForResume, 3), ", "))
	}
	if len(a.Responsibilities) > 0 {
		out = append(out, "Highlight achievements related to: "+a.Responsibilities[0])
	}
	if a.EstimatedPreparationTime > 0 {
		out = append(out, fmt.Sprintf("Allocate %d hours for interview preparation", a.EstimatedPreparationTime))
	}
	return firstN(out, maxRecommendations)
}

func firstN[T any](items []T, n int) []T {
	if len(items) > n {
		return items[:n]
	}
	return items
}
