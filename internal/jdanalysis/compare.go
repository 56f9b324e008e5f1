package jdanalysis

import (
	"math"
	"strings"

	"placement-backend/internal/placement"
)

// Comparison partitions an analysis' required skills against a resume.
type Comparison struct {
	MatchedSkills  []string `json:"matchedSkills"`
	MissingSkills  []string `json:"missingSkills"`
	AlignmentScore int      `json:"alignmentScore"`
}

// CompareWithResume counts a required skill as matched when it and a resume skill
// contain one another, ignoring case. Blank resume skills never match.
// With no required skills the alignment is 50.
func CompareWithResume(a placement.JDAnalysis, resumeSkills []string) Comparison {
	lowered := make([]string, 0, len(resumeSkills))
	for _, s := range resumeSkills {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" {
			lowered = append(lowered, s)
		}
	}

	out := Comparison{MatchedSkills: []string{}, MissingSkills: []string{}}
	for _, req := range a.RequiredSkills {
		if SkillMatches(req, lowered) {
			out.MatchedSkills = append(out.MatchedSkills, req)
		} else {
			out.MissingSkills = append(out.MissingSkills, req)
		}
	}

	out.AlignmentScore = 50
	if n := len(a.RequiredSkills); n > 0 {
		out.AlignmentScore = int(math.Round(float64(len(out.MatchedSkills)) / float64(n) * 100))
	}
	return out
}

// SkillMatches reports whether skill and any of the lowercased candidates contain one another.
func SkillMatches(skill string, loweredCandidates []string) bool {
	skill = strings.ToLower(skill)
	for _, c := range loweredCandidates {
		if strings.Contains(c, skill) || strings.Contains(skill, c) {
			return true
		}
	}
	return false
}
