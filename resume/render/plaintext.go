package render

import (
	"fmt"
	"strings"

	"placement-backend/resume/model"
)

// PlainText renders a resume section by section in stored order. Projects and
// certifications are not part of the text layout and are skipped.
func PlainText(r model.Resume) string {
	var b strings.Builder
	for _, s := range r.Sections {
		switch c := s.Content.(type) {
		case model.Personal:
			fmt.Fprintf(&b, "%s\n%s | %s\n%s\n\n", c.Name, c.Email, c.Phone, c.Location)
		case model.Summary:
			fmt.Fprintf(&b, "%s\n%s\n\n", headings[model.KindSummary], c.Summary)
		case model.Experience:
			b.WriteString(headings[model.KindExperience] + "\n")
			for _, exp := range c.Experiences {
				fmt.Fprintf(&b, "%s at %s\n%s\n", exp.Position, exp.Company, exp.Duration)
				for _, a := range exp.Achievements {
					fmt.Fprintf(&b, "• %s\n", a)
				}
				b.WriteString("\n")
			}
		case model.Education:
			b.WriteString(headings[model.KindEducation] + "\n")
			for _, edu := range c.Education {
				fmt.Fprintf(&b, "%s from %s (%s)\n", edu.Degree, edu.Institution, edu.Year)
			}
			b.WriteString("\n")
		case model.Skills:
			fmt.Fprintf(&b, "%s\n%s\n\n", headings[model.KindSkills], strings.Join(c.Skills, ", "))
		}
	}
	return b.String()
}
