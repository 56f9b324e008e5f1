package render

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"placement-backend/resume/model"
)

func TestPlainText(t *testing.T) {
	r := model.Resume{Sections: []model.Section{
		{ID: "1", Content: model.Personal{Name: "Ada", Email: "ada@example.com", Phone: "555", Location: "London"}},
		{ID: "2", Content: model.Summary{Summary: "Engineer."}},
		{ID: "3", Content: model.Projects{Projects: []model.ProjectEntry{{Name: "hidden"}}}},
		{ID: "4", Content: model.Experience{Experiences: []model.ExperienceEntry{{
			Position:     "Dev",
			Company:      "Acme",
			Duration:     "2020 - 2022",
			Achievements: []string{"Shipped X", "Cut costs 10%"},
		}}}},
		{ID: "5", Content: model.Education{Education: []model.EducationEntry{{Degree: "BSc", Institution: "UCL", Year: "2019"}}}},
		{ID: "6", Content: model.Skills{Skills: []string{"Go", "SQL"}}},
		{ID: "7", Content: model.Certifications{Certifications: []model.CertificationEntry{{Name: "hidden"}}}},
	}}

	want := "Ada\nada@example.com | 555\nLondon\n\n" +
		"PROFESSIONAL SUMMARY\nEngineer.\n\n" +
		"EXPERIENCE\nDev at Acme\n2020 - 2022\n• Shipped X\n• Cut costs 10%\n\n" +
		"EDUCATION\nBSc from UCL (2019)\n\n" +
		"SKILLS\nGo, SQL\n\n"
	assert.Equal(t, want, PlainText(r))
}

func TestPlainTextFollowsSectionOrder(t *testing.T) {
	r := model.Resume{Sections: []model.Section{
		{ID: "1", Content: model.Skills{Skills: []string{"Go"}}},
		{ID: "2", Content: model.Summary{Summary: "Hi"}},
	}}
	assert.Equal(t, "SKILLS\nGo\n\nPROFESSIONAL SUMMARY\nHi\n\n", PlainText(r))
	assert.Empty(t, PlainText(model.Resume{}))
}
