package ats

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strings"
	"unicode/utf8"

	"placement-backend/resume/model"
)

const (
	penaltyMissingPersonal   = 15
	penaltyMissingExperience = 15
	penaltyMissingEducation  = 10
	penaltyMissingSkills     = 15
	penaltyShortContent      = 10
	penaltyFewActionVerbs    = 10
	penaltyNoMetrics         = 8
	penaltyResponsibilities  = 5
	penaltyTheme             = 3

	minContentChars   = 300
	maxMissingVerbs   = 5
	responsibilityTag = "responsibilities:"
)

// ActionVerbs is the fixed vocabulary reported in Result.Keywords.
var ActionVerbs = []string{
	"achieved", "managed", "improved", "increased", "implemented",
	"designed", "led", "coordinated", "developed", "created",
}

var metricPattern = regexp.MustCompile(`(?i)\d+(?:%|x|times?|people|projects|years?)`)

var safeThemes = map[model.Theme]struct{}{
	model.ThemeBlue:   {},
	model.ThemePurple: {},
}

type Issues struct {
	Critical    []string `json:"critical"`
	Warnings    []string `json:"warnings"`
	Suggestions []string `json:"suggestions"`
}

type Keywords struct {
	Found   []string `json:"found"`
	Missing []string `json:"missing"`
}

// Result is a full ATS audit of one resume.
type Result struct {
	Score    int      `json:"score"`
	Issues   Issues   `json:"issues"`
	Keywords Keywords `json:"keywords"`
}

// Score audits a resume starting from 100 and subtracting a fixed penalty per failed check.
// Sections without content are ignored.
func Score(r model.Resume) Result {
	r.Sections = withContent(r.Sections)
	res := Result{
		Issues:   Issues{Critical: []string{}, Warnings: []string{}, Suggestions: []string{}},
		Keywords: Keywords{Found: []string{}, Missing: []string{}},
	}
	score := 100

	if !r.HasSection(model.KindPersonal) {
		res.Issues.Critical = append(res.Issues.Critical, "Missing personal information section")
		score -= penaltyMissingPersonal
	}
	if !r.HasSection(model.KindExperience) && !r.HasSection(model.KindProjects) {
		res.Issues.Critical = append(res.Issues.Critical, "Missing work experience or projects - at least one is required")
		score -= penaltyMissingExperience
	}
	if !r.HasSection(model.KindEducation) {
		res.Issues.Warnings = append(res.Issues.Warnings, "Missing education section - highly recommended")
		score -= penaltyMissingEducation
	}
	if !r.HasSection(model.KindSkills) {
		res.Issues.Critical = append(res.Issues.Critical, "Missing skills section - essential for ATS")
		score -= penaltyMissingSkills
	}

	if ContentLength(r.Sections) < minContentChars {
		res.Issues.Warnings = append(res.Issues.Warnings, "Resume content is too short")
		score -= penaltyShortContent
	}

	text := strings.ToLower(encode(r.Sections))
	for _, verb := range ActionVerbs {
		if strings.Contains(text, verb) {
			res.Keywords.Found = append(res.Keywords.Found, verb)
		} else {
			res.Keywords.Missing = append(res.Keywords.Missing, verb)
		}
	}
	if len(res.Keywords.Missing) > maxMissingVerbs {
		res.Issues.Suggestions = append(res.Issues.Suggestions, "Add action verbs like: "+strings.Join(firstN(res.Keywords.Missing, 3), ", "))
		score -= penaltyFewActionVerbs
	}

	if !metricPattern.MatchString(text) {
		res.Issues.Suggestions = append(res.Issues.Suggestions, "Add quantifiable metrics and numbers to make achievements more impactful")
		score -= penaltyNoMetrics
	}

	if strings.Contains(text, responsibilityTag) {
		res.Issues.Warnings = append(res.Issues.Warnings, `Avoid listing "Responsibilities:" - use achievements instead`)
		score -= penaltyResponsibilities
	}

	if r.Theme != "" {
		if _, ok := safeThemes[r.Theme]; !ok {
			res.Issues.Suggestions = append(res.Issues.Suggestions, "Consider using simpler color theme for better ATS compatibility")
			score -= penaltyTheme
		}
	}

	res.Score = clamp(score)
	return res
}

// ContentLength is the summed character count of each section's serialized content.
func ContentLength(sections []model.Section) int {
	total := 0
	for _, s := range sections {
		if s.Content == nil {
			continue
		}
		total += utf8.RuneCountInString(encode(s.Content))
	}
	return total
}

// encode serializes v as compact JSON without HTML escaping.
func encode(v any) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return ""
	}
	return strings.TrimSuffix(buf.String(), "\n")
}

func withContent(sections []model.Section) []model.Section {
	out := make([]model.Section, 0, len(sections))
	for _, s := range sections {
		if s.Content != nil {
			out = append(out, s)
		}
	}
	return out
}

func clamp(v int) int {
	return max(0, min(100, v))
}

func firstN(items []string, n int) []string {
	if len(items) > n {
		return items[:n]
	}
	return items
}
