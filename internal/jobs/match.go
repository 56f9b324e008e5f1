package jobs

import (
	"math"
	"strings"

	"placement-backend/internal/placement"
)

const (
	titleWeight    = 0.30
	skillsWeight   = 0.40
	locationWeight = 0.15
	companyWeight  = 0.15

	neutralScore = 50.0
	maxScore     = 100
)

// Preferences are the user inputs that steer match scoring.
type Preferences struct {
	TargetRole         string   `json:"targetRole"`
	TargetCompanies    []string `json:"targetCompanies"`
	PreferredLocations []string `json:"preferredLocations"`
}

// PreferencesFor derives matching preferences from a user profile.
func PreferencesFor(u placement.User) Preferences {
	return Preferences{
		TargetRole:         u.TargetRole,
		TargetCompanies:    u.TargetCompanies,
		PreferredLocations: u.Preferences.Locations,
	}
}

// CalculateMatchScore weighs title, skills, location and company fit into a 0-100 score.
func CalculateMatchScore(job placement.Job, resumeSkills []string, prefs Preferences) int {
	score := titleMatch(job.Title, prefs.TargetRole)*titleWeight +
		skillsMatch(job.Requirements, resumeSkills)*skillsWeight +
		locationMatch(job.Location, prefs.PreferredLocations)*locationWeight +
		companyMatch(job.Company, prefs.TargetCompanies)*companyWeight

	rounded := int(math.Round(math.Min(score, maxScore)))
	if rounded < 0 {
		return 0
	}
	return rounded
}

func titleMatch(jobTitle, targetRole string) float64 {
	if targetRole == "" {
		return neutralScore
	}
	title := strings.ToLower(jobTitle)
	target := strings.ToLower(targetRole)
	if strings.Contains(title, target) || strings.Contains(target, title) {
		return 100
	}

	jobWords := strings.Split(title, " ")
	targetWords := strings.Split(target, " ")
	targetSet := make(map[string]struct{}, len(targetWords))
	for _, w := range targetWords {
		targetSet[w] = struct{}{}
	}
	common := 0
	for _, w := range jobWords {
		if _, ok := targetSet[w]; ok {
			common++
		}
	}
	return float64(common) / float64(max(len(jobWords), len(targetWords))) * 100
}

func skillsMatch(requirements, resumeSkills []string) float64 {
	if len(requirements) == 0 {
		return neutralScore
	}
	lowered := make([]string, 0, len(resumeSkills))
	for _, s := range resumeSkills {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			lowered = append(lowered, s)
		}
	}
	matched := 0
	for _, req := range requirements {
		r := strings.ToLower(req)
		for _, s := range lowered {
			if strings.Contains(s, r) || strings.Contains(r, s) {
				matched++
				break
			}
		}
	}
	return float64(matched) / float64(len(requirements)) * 100
}

func locationMatch(jobLocation string, preferred []string) float64 {
	if len(preferred) == 0 {
		return neutralScore
	}
	if containsAny(jobLocation, preferred) {
		return 100
	}
	return 30
}

func companyMatch(company string, targets []string) float64 {
	if len(targets) == 0 {
		return neutralScore
	}
	if containsAny(company, targets) {
		return 100
	}
	return 40
}

func containsAny(haystack string, needles []string) bool {
	h := strings.ToLower(haystack)
	for _, n := range needles {
		if strings.Contains(h, strings.ToLower(n)) {
			return true
		}
	}
	return false
}
