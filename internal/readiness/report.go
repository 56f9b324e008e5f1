package readiness

import (
	"fmt"
	"sort"
	"time"

	"placement-backend/internal/jobs"
	"placement-backend/internal/placement"
)

const (
	maxWeakSkills      = 5
	recentApplyWindow  = 7 * 24 * time.Hour
	summaryTopJobCount = 5
)

// Next-action messages, most urgent first.
const (
	ActionFixResume      = "Improve your resume ATS score - fix critical issues first"
	ActionLearnSkills    = "Learn missing skills identified in job descriptions"
	ActionStartApplying  = "Start applying to matched jobs"
	ActionMockInterviews = "Great! You're actively applying. Practice mock interviews to prepare"
	ActionPrepInterviews = "You have upcoming interviews! Focus on preparation"
	ActionKeepGoing      = "Maintain consistent practice and applications"
)

// WeakSkillAlerts lists required skills missing from the current resume that recur
// across more than one analyzed job description, most frequent first.
func WeakSkillAlerts(u placement.User) []string {
	alerts := []string{}
	if _, ok := u.CurrentResume(); !ok {
		return alerts
	}
	skills := lowerAll(u.ResumeSkills())

	var order []string
	gaps := map[string]int{}
	for _, a := range u.Analyses() {
		for _, req := range a.RequiredSkills {
			if hasSkill(skills, req) {
				continue
			}
			if _, seen := gaps[req]; !seen {
				order = append(order, req)
			}
			gaps[req]++
		}
	}
	sort.SliceStable(order, func(i, j int) bool { return gaps[order[i]] > gaps[order[j]] })
	if len(order) > maxWeakSkills {
		order = order[:maxWeakSkills]
	}
	for _, skill := range order {
		if n := gaps[skill]; n > 1 {
			alerts = append(alerts, fmt.Sprintf("%s is required in %d job descriptions - consider learning this", skill, n))
		}
	}
	return alerts
}

// NextAction picks one recommendation from the user's stored readiness score and pipeline.
func NextAction(u placement.User, now time.Time) string {
	score := u.ReadinessScore
	if score.ResumeATSScore < 60 {
		return ActionFixResume
	}
	if score.JDSkillAlignment < 50 {
		return ActionLearnSkills
	}

	cutoff := now.Add(-recentApplyWindow)
	recent := 0
	for _, a := range u.Applications {
		if a.AppliedDate.After(cutoff) {
			recent++
		}
	}
	if recent == 0 {
		return ActionStartApplying
	}

	upcoming := len(u.ApplicationsByStage(placement.StageInterviewScheduled))
	if upcoming == 0 && len(u.Applications) > 2 {
		return ActionMockInterviews
	}
	if upcoming > 0 {
		return ActionPrepInterviews
	}
	return ActionKeepGoing
}

// Level buckets an overall readiness score.
type Level string

const (
	LevelBeginning  Level = "Beginning"
	LevelDeveloping Level = "Developing"
	LevelProficient Level = "Proficient"
	LevelAdvanced   Level = "Advanced"
	LevelExpert     Level = "Expert"
)

func LevelFor(score int) Level {
	switch {
	case score < 30:
		return LevelBeginning
	case score < 50:
		return LevelDeveloping
	case score < 70:
		return LevelProficient
	case score < 85:
		return LevelAdvanced
	default:
		return LevelExpert
	}
}

type Report struct {
	Score           int      `json:"score"`
	Level           Level    `json:"level"`
	Summary         string   `json:"summary"`
	Recommendations []string `json:"recommendations"`
}

// GenerateReport describes the user's stored readiness score.
func GenerateReport(u placement.User) Report {
	score := u.ReadinessScore.OverallScore
	level := LevelFor(score)

	recs := []string{}
	if u.ReadinessScore.ResumeATSScore < 70 {
		recs = append(recs, "Optimize resume for ATS - add missing action verbs and skills")
	}
	if u.ReadinessScore.JDSkillAlignment < 60 {
		recs = append(recs, "Focus on learning high-demand skills from analyzed jobs")
	}
	if len(u.Applications) < 5 {
		recs = append(recs, "Apply to at least 5-10 matching jobs")
	}
	solved, completed := 0, 0
	for _, p := range u.PracticeProblems {
		if p.Solved {
			solved++
		}
	}
	for _, m := range u.MockInterviews {
		if m.Completed {
			completed++
		}
	}
	if solved < 10 {
		recs = append(recs, "Complete more practice problems to improve coding skills")
	}
	if completed == 0 {
		recs = append(recs, "Schedule your first mock interview")
	}

	lead := "Keep up the good work!"
	if len(recs) > 0 {
		lead = recs[0]
	}
	return Report{
		Score:           score,
		Level:           level,
		Summary:         fmt.Sprintf("You're %s in your placement journey with a score of %d/100. %s", level, score, lead),
		Recommendations: recs,
	}
}

type Pipeline struct {
	Saved              int `json:"saved"`
	Applied            int `json:"applied"`
	InterviewScheduled int `json:"interviewScheduled"`
	Offers             int `json:"offers"`
}

// DashboardSummary is the home-screen view of a user's placement state.
type DashboardSummary struct {
	TopJobMatches    []placement.Job                   `json:"topJobMatches"`
	ResumeATSScore   int                               `json:"resumeAtsScore"`
	JDReadinessScore int                               `json:"jdReadinessScore"`
	Pipeline         Pipeline                          `json:"applicationPipeline"`
	WeakSkillAlerts  []string                          `json:"weakSkillAlerts"`
	NextAction       string                            `json:"nextActionRecommendation"`
	ReadinessScore   placement.ReadinessScoreBreakdown `json:"readinessScore"`
}

// Summarize recomputes readiness and builds the dashboard view from it.
func Summarize(u placement.User, now time.Time) DashboardSummary {
	score := Calculate(u)
	u.ReadinessScore = score
	return DashboardSummary{
		TopJobMatches:    jobs.TopJobs(u.JobMatches, summaryTopJobCount),
		ResumeATSScore:   score.ResumeATSScore,
		JDReadinessScore: score.JDSkillAlignment,
		Pipeline: Pipeline{
			Saved:              len(u.ApplicationsByStage(placement.StageSaved)),
			Applied:            len(u.ApplicationsByStage(placement.StageApplied)),
			InterviewScheduled: len(u.ApplicationsByStage(placement.StageInterviewScheduled)),
			Offers:             len(u.ApplicationsByStage(placement.StageOffer)),
		},
		WeakSkillAlerts: WeakSkillAlerts(u),
		NextAction:      NextAction(u, now),
		ReadinessScore:  score,
	}
}
