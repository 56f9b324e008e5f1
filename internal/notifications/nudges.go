package notifications

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"placement-backend/internal/placement"
)

const (
	criticalATSThreshold = 50
	idleSavedJobs        = 3
	maxSkillGaps         = 8
	alertInactivityDays  = 7
)

// Nudges suggests next steps from the stored overall readiness score and activity.
func Nudges(u placement.User) []string {
	var nudges []string
	switch score := u.ReadinessScore.OverallScore; {
	case score < 30:
		nudges = append(nudges, "Start by uploading or creating your first resume", "Save 5-10 job postings that match your target role")
	case score < 50:
		nudges = append(nudges, "Analyze your saved jobs to identify missing skills", "Update your resume based on job requirements")
	case score < 70:
		nudges = append(nudges, "Start applying to 3-5 strong job matches", "Practice mock interviews to prepare")
	case score < 85:
		nudges = append(nudges, "Close gaps in specialized skills", "Maintain consistent applications and interviews")
	default:
		nudges = append(nudges, "You're ready! Keep applying and practicing", "Help others in your network")
	}

	if len(u.Applications) == 0 {
		nudges = append(nudges, "Apply to your first job today")
	}
	solved := 0
	for _, p := range u.PracticeProblems {
		if p.Solved {
			solved++
		}
	}
	if solved == 0 {
		nudges = append(nudges, "Solve your first practice problem")
	}
	return nudges
}

// InterventionAlerts flags states that need the user's attention now.
func InterventionAlerts(u placement.User, now time.Time) []string {
	alerts := []string{}

	if r, ok := u.CurrentResume(); !ok || r.ATSScore < criticalATSThreshold {
		alerts = append(alerts, "CRITICAL: Resume needs urgent improvements")
	}
	if len(u.Applications) == 0 && len(u.SavedJobs) > idleSavedJobs {
		alerts = append(alerts, "You've saved jobs but haven't applied - start applying now")
	}
	if gaps := recurringSkillGaps(u); len(gaps) > maxSkillGaps {
		alerts = append(alerts, fmt.Sprintf("WARNING: %d critical skills gaps identified", len(gaps)))
	}
	if days, ok := daysSinceActivity(u, now); ok && days > alertInactivityDays {
		alerts = append(alerts, fmt.Sprintf("No activity for %d days - stay active", int(math.Round(days))))
	}
	return alerts
}

// recurringSkillGaps returns required skills missing from the current resume that
// appear in more than one analysis, most frequent first.
func recurringSkillGaps(u placement.User) []string {
	skills := lowerAll(u.ResumeSkills())
	var order []string
	counts := map[string]int{}
	for _, a := range u.Analyses() {
		for _, req := range a.RequiredSkills {
			lower := strings.ToLower(req)
			covered := false
			for _, s := range skills {
				if strings.Contains(s, lower) {
					covered = true
					break
				}
			}
			if covered {
				continue
			}
			if _, ok := counts[req]; !ok {
				order = append(order, req)
			}
			counts[req]++
		}
	}
	sort.SliceStable(order, func(i, j int) bool { return counts[order[i]] > counts[order[j]] })
	out := []string{}
	for _, s := range order {
		if counts[s] > 1 {
			out = append(out, s)
		}
	}
	return out
}
