package jdanalysis

import (
	"fmt"
	"strings"

	"placement-backend/internal/placement"
)

// GenerateInsights formats advice from an analysis that already carries MissingSkills.
func GenerateInsights(a placement.JDAnalysis) []string {
	insights := make([]string, 0, 4)
	if len(a.MissingSkills) > 0 {
		insights = append(insights, "Focus on learning: "+strings.Join(firstN(a.MissingSkills, 3), ", "))
	}
	if a.DifficultyRating == placement.DifficultyHard {
		insights = append(insights, "This is a senior role - ensure your experience section is strong")
	}
	if a.EstimatedPreparationTime > 20 {
		insights = append(insights, fmt.Sprintf("Allocate at least %d hours for thorough preparation", a.EstimatedPreparationTime))
	}
	insights = append(insights, "Customize your resume with keywords: "+strings.Join(firstN(a.KeywordsForResume, 5), ", "))
	return insights
}

func firstN(items []string, n int) []string {
	if len(items) > n {
		return items[:n]
	}
	return items
}
