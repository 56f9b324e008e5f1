package readiness

import (
	"math"
	"strings"

	"placement-backend/internal/placement"
)

// Weights of each sub-score in the overall readiness score.
const (
	WeightJobMatch    = 0.30
	WeightAlignment   = 0.25
	WeightATS         = 0.25
	WeightProgress    = 0.10
	WeightPractice    = 0.10
	maxMomentumBoost  = 20
	boostPerApplied   = 5
	emptyRequirements = 50.0
)

var stageWeights = map[placement.Stage]float64{
	placement.StageSaved:              10,
	placement.StageApplied:            30,
	placement.StageInterviewScheduled: 50,
	placement.StageInterviewCompleted: 70,
	placement.StageOffer:              100,
	placement.StageRejected:           5,
}

// Calculate computes all five sub-scores for a user and their weighted total.
func Calculate(u placement.User) placement.ReadinessScoreBreakdown {
	b := placement.ReadinessScoreBreakdown{
		JobMatchQuality:     jobMatchQuality(u),
		JDSkillAlignment:    jdSkillAlignment(u),
		ResumeATSScore:      resumeATSScore(u),
		ApplicationProgress: applicationProgress(u),
		PracticeCompletion:  practiceCompletion(u),
	}
	b.OverallScore = Overall(b)
	return b
}

// Overall returns the rounded weighted sum of the sub-scores, clamped to [0,100].
func Overall(b placement.ReadinessScoreBreakdown) int {
	sum := float64(b.JobMatchQuality)*WeightJobMatch +
		float64(b.JDSkillAlignment)*WeightAlignment +
		float64(b.ResumeATSScore)*WeightATS +
		float64(b.ApplicationProgress)*WeightProgress +
		float64(b.PracticeCompletion)*WeightPractice
	return clamp(int(math.Round(sum)))
}

func jobMatchQuality(u placement.User) int {
	if len(u.SavedJobs) == 0 {
		return 0
	}
	total := 0
	for _, j := range u.SavedJobs {
		total += j.MatchScore
	}
	avg := float64(total) / float64(len(u.SavedJobs))
	boost := min(maxMomentumBoost, boostPerApplied*len(u.ApplicationsByStage(placement.StageApplied)))
	return min(100, int(math.Round(avg+float64(boost))))
}

func jdSkillAlignment(u placement.User) int {
	if len(u.JDAnalyses) == 0 {
		return 0
	}
	if _, ok := u.CurrentResume(); !ok {
		return 0
	}
	skills := lowerAll(u.ResumeSkills())
	total := 0.0
	for _, a := range u.Analyses() {
		total += requiredCoverage(a.RequiredSkills, skills)
	}
	return int(math.Round(total / float64(len(u.JDAnalyses))))
}

// requiredCoverage is the percentage of required skills contained in some resume skill.
func requiredCoverage(required, loweredSkills []string) float64 {
	if len(required) == 0 {
		return emptyRequirements
	}
	matched := 0
	for _, r := range required {
		if hasSkill(loweredSkills, r) {
			matched++
		}
	}
	return float64(matched) / float64(len(required)) * 100
}

func hasSkill(loweredSkills []string, skill string) bool {
	skill = strings.ToLower(skill)
	for _, s := range loweredSkills {
		if strings.Contains(s, skill) {
			return true
		}
	}
	return false
}

func resumeATSScore(u placement.User) int {
	r, ok := u.CurrentResume()
	if !ok {
		return 0
	}
	return r.ATSScore
}

func applicationProgress(u placement.User) int {
	if len(u.Applications) == 0 {
		return 0
	}
	total := 0.0
	for _, a := range u.Applications {
		total += stageWeights[a.Stage]
	}
	return int(math.Round(total / float64(len(u.Applications))))
}

func practiceCompletion(u placement.User) int {
	problems := 0.0
	if n := len(u.PracticeProblems); n > 0 {
		solved := 0
		for _, p := range u.PracticeProblems {
			if p.Solved {
				solved++
			}
		}
		problems = float64(solved) / float64(n) * 50
	}
	interviews := 0.0
	if n := len(u.MockInterviews); n > 0 {
		done := 0
		for _, m := range u.MockInterviews {
			if m.Completed {
				done++
			}
		}
		interviews = float64(done) / float64(n) * 50
	}
	return int(math.Round(problems + interviews))
}

func lowerAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(s)
	}
	return out
}

func clamp(v int) int {
	return max(0, min(100, v))
}
