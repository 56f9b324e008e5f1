package automation

import (
	"fmt"
	"math"
	"strings"
	"time"

	"placement-backend/internal/placement"
	"placement-backend/resume/model"
)

const (
	DefaultStalledDays = 14
	day                = 24 * time.Hour
	recentWindow       = 7 * day
)

type Momentum struct {
	AverageTimeToInterview int    `json:"averageTimeToInterview"`
	AverageTimeToOffer     int    `json:"averageTimeToOffer"`
	ConversionRate         int    `json:"conversionRate"`
	TypicalPipeline        string `json:"typicalPipeline"`
}

// AnalyzeMomentum measures how quickly applications move. Every non-saved application
// counts toward time-to-interview, using now when no interview date is set.
func AnalyzeMomentum(apps []placement.Application, now time.Time) Momentum {
	var toInterview float64
	active, converted := 0, 0
	for _, a := range apps {
		if a.Stage == placement.StageSaved {
			continue
		}
		active++
		end := now
		if a.InterviewDate != nil {
			end = *a.InterviewDate
		}
		toInterview += days(end.Sub(a.AppliedDate))
		if a.Stage != placement.StageRejected {
			converted++
		}
	}

	var toOffer float64
	offers := 0
	for _, a := range apps {
		if a.Stage == placement.StageOffer {
			offers++
			toOffer += days(now.Sub(a.AppliedDate))
		}
	}

	m := Momentum{}
	if active > 0 {
		m.AverageTimeToInterview = round(toInterview / float64(active))
		m.ConversionRate = round(float64(converted) / float64(active) * 100)
	}
	if offers > 0 {
		m.AverageTimeToOffer = round(toOffer / float64(offers))
	}

	m.TypicalPipeline = "Applied → Initial Review"
	if m.AverageTimeToInterview > 0 {
		m.TypicalPipeline += fmt.Sprintf(" → Interview (%d days)", m.AverageTimeToInterview)
	}
	if m.AverageTimeToOffer > 0 {
		m.TypicalPipeline += fmt.Sprintf(" → Offer (%d days)", m.AverageTimeToOffer)
	}
	return m
}

// Stalled returns non-terminal applications applied more than thresholdDays ago.
// A non-positive threshold means DefaultStalledDays.
func Stalled(apps []placement.Application, thresholdDays int, now time.Time) []placement.Application {
	if thresholdDays <= 0 {
		thresholdDays = DefaultStalledDays
	}
	out := []placement.Application{}
	for _, a := range apps {
		if a.Stage.IsTerminal() {
			continue
		}
		if days(now.Sub(a.AppliedDate)) > float64(thresholdDays) {
			out = append(out, a)
		}
	}
	return out
}

type NextSteps struct {
	Immediate   []string `json:"immediate"`
	FollowUp    []string `json:"followUp"`
	Preparation []string `json:"preparation"`
}

// PlanNextSteps groups actions by urgency from stage counts, the resume and analyzed keywords.
func PlanNextSteps(apps []placement.Application, resume model.Resume, analyses []placement.JDAnalysis) NextSteps {
	steps := NextSteps{Immediate: []string{}, FollowUp: []string{}, Preparation: []string{}}

	count := func(s placement.Stage) int {
		n := 0
		for _, a := range apps {
			if a.Stage == s {
				n++
			}
		}
		return n
	}
	if saved := count(placement.StageSaved); saved > 0 {
		steps.Immediate = append(steps.Immediate, fmt.Sprintf("Apply to %d saved jobs", min(3, saved)))
	}
	if scheduled := count(placement.StageInterviewScheduled); scheduled > 0 {
		steps.Immediate = append(steps.Immediate, fmt.Sprintf("Prepare for %d upcoming interview(s)", scheduled))
	}
	if done := count(placement.StageInterviewCompleted); done > 0 {
		steps.FollowUp = append(steps.FollowUp, fmt.Sprintf("Follow up on %d completed interview(s)", done))
	}

	if resume.ATSScore < 70 {
		steps.Preparation = append(steps.Preparation, "Improve resume ATS score")
	}
	var keywords []string
	for _, a := range analyses {
		keywords = append(keywords, a.KeywordsForResume...)
	}
	if keywords = firstN(keywords, 5); len(keywords) > 0 {
		steps.Preparation = append(steps.Preparation, "Focus on these keywords: "+strings.Join(keywords, ", "))
	}
	return steps
}

type HealthStatus string

const (
	HealthCritical  HealthStatus = "Critical"
	HealthWarning   HealthStatus = "Warning"
	HealthGood      HealthStatus = "Good"
	HealthExcellent HealthStatus = "Excellent"
)

type PipelineHealth struct {
	Health   int          `json:"health"`
	Status   HealthStatus `json:"status"`
	Analysis string       `json:"analysis"`
}

var healthAnalysis = map[HealthStatus]string{
	HealthCritical:  "You need to apply to more jobs and improve your resume",
	HealthWarning:   "Your pipeline needs more momentum - keep applying",
	HealthGood:      "Good progress - maintain consistency",
	HealthExcellent: "Excellent! Your pipeline is very healthy",
}

// CalculatePipelineHealth scores the pipeline from a base of 50.
func CalculatePipelineHealth(apps []placement.Application, now time.Time) PipelineHealth {
	health := 50

	inProgress, offers, rejections, recent := 0, 0, 0, 0
	cutoff := now.Add(-recentWindow)
	for _, a := range apps {
		switch a.Stage {
		case placement.StageSaved:
		case placement.StageRejected:
			rejections++
		default:
			inProgress++
		}
		if a.Stage == placement.StageOffer {
			offers++
		}
		if a.AppliedDate.After(cutoff) {
			recent++
		}
	}
	health += min(20, inProgress*5)
	health += offers * 10

	if len(apps) > 0 {
		rate := float64(rejections) / float64(len(apps)) * 100
		switch {
		case rate > 50:
			health -= 20
		case rate > 30:
			health -= 10
		}
	}
	if recent == 0 {
		health -= 15
	}
	health = max(0, min(100, health))

	status := HealthExcellent
	switch {
	case health < 30:
		status = HealthCritical
	case health < 60:
		status = HealthWarning
	case health < 80:
		status = HealthGood
	}
	return PipelineHealth{Health: health, Status: status, Analysis: healthAnalysis[status]}
}

func days(d time.Duration) float64 {
	return d.Hours() / 24
}

func round(v float64) int {
	return int(math.Round(v))
}
