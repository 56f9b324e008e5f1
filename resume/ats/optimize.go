package ats

import (
	"fmt"
	"strings"
	"time"

	"placement-backend/resume/model"
)

const maxOptimizedSkills = 15

// Optimize returns a copy of r tuned toward the given job keywords. The skills section
// gains missing keywords (capped at 15, existing order first) and the summary gets a
// keyword sentence when it mentions none of them. Other sections are shared unchanged.
func Optimize(r model.Resume, keywords []string) model.Resume {
	sections := make([]model.Section, len(r.Sections))
	for i, s := range r.Sections {
		switch c := s.Content.(type) {
		case model.Skills:
			s.Content = model.Skills{Skills: mergeSkills(c.Skills, keywords)}
		case model.Summary:
			if len(keywords) > 0 && !mentionsAny(c.Summary, keywords) {
				s.Content = model.Summary{Summary: c.Summary + fmt.Sprintf(" Experienced with %s.", strings.Join(firstN(keywords, 2), ", "))}
			}
		}
		sections[i] = s
	}
	return r.WithSections(sections)
}

func mergeSkills(existing, keywords []string) []string {
	out := make([]string, 0, maxOptimizedSkills)
	seen := make(map[string]struct{}, len(existing)+len(keywords))
	for _, list := range [][]string{existing, keywords} {
		for _, s := range list {
			if _, ok := seen[s]; ok {
				continue
			}
			seen[s] = struct{}{}
			if len(out) < maxOptimizedSkills {
				out = append(out, s)
			}
		}
	}
	return out
}

func mentionsAny(text string, keywords []string) bool {
	lower := strings.ToLower(text)
	for _, k := range keywords {
		if strings.Contains(lower, strings.ToLower(k)) {
			return true
		}
	}
	return false
}

// ImprovementSuggestions condenses an audit into at most five prioritized lines.
func ImprovementSuggestions(res Result) []string {
	out := make([]string, 0, 5)
	if len(res.Issues.Critical) > 0 {
		out = append(out, fmt.Sprintf("CRITICAL: %s - Fix immediately", res.Issues.Critical[0]))
	}
	if len(res.Issues.Warnings) > 0 {
		out = append(out, fmt.Sprintf("WARNING: %s - Highly recommended to fix", res.Issues.Warnings[0]))
	}
	if res.Score < 70 {
		out = append(out, "Your resume needs significant improvements for ATS")
	}
	if len(res.Keywords.Missing) > 0 {
		out = append(out, "Add action verbs: "+strings.Join(firstN(res.Keywords.Missing, 3), ", "))
	}
	out = append(out, res.Issues.Suggestions...)
	return firstN(out, 5)
}

// SampleResume returns a starter resume that users edit in place.
func SampleResume(id string, now time.Time) model.Resume {
	return model.Resume{
		ID:          id,
		Title:       "My Resume",
		Template:    model.TemplateProfessional,
		Theme:       model.ThemeBlue,
		LastUpdated: now,
		Sections: []model.Section{
			{ID: "1", Content: model.Personal{
				Name:     "Your Name",
				Email:    "your.email@example.com",
				Phone:    "+1 (555) 123-4567",
				Location: "City, State",
			}},
			{ID: "2", Content: model.Summary{
				Summary: "Results-driven professional with strong technical skills and proven track record of delivering projects on time.",
			}},
			{ID: "3", Content: model.Experience{Experiences: []model.ExperienceEntry{{
				Position: "Senior Developer",
				Company:  "Tech Company",
				Duration: "2023 - Present",
				Achievements: []string{
					"Led development of high-impact features",
					"Improved system performance by 40%",
					"Managed team of 3 engineers",
				},
			}}}},
			{ID: "4", Content: model.Education{Education: []model.EducationEntry{{
				Degree:      "Bachelor of Science in Computer Science",
				Institution: "University Name",
				Year:        "2020",
			}}}},
			{ID: "5", Content: model.Skills{Skills: []string{
				"JavaScript", "React", "TypeScript", "Node.js", "SQL", "AWS", "Docker", "Problem Solving", "Leadership",
			}}},
		},
	}
}
