package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSectionDecodeDispatchesOnType(t *testing.T) {
	raw := `[
		{"id":"1","type":"personal","content":{"name":"Ada","email":"ada@example.com","phone":"1","location":"London"}},
		{"id":"2","type":"skills","content":{"skills":["Go","SQL"]}},
		{"id":"3","type":"experience","content":{"experiences":[{"position":"Engineer","company":"Acme","duration":"2020","achievements":["Led team"]}]}}
	]`

	var sections []Section
	require.NoError(t, json.Unmarshal([]byte(raw), &sections))
	require.Len(t, sections, 3)

	personal, ok := sections[0].Content.(Personal)
	require.True(t, ok)
	assert.Equal(t, "Ada", personal.Name)
	assert.Equal(t, KindSkills, sections[1].Kind())
	assert.Equal(t, []string{"Go", "SQL"}, sections[1].Content.(Skills).Skills)
	exp := sections[2].Content.(Experience)
	assert.Equal(t, "Acme", exp.Experiences[0].Company)
}

func TestSectionDecodeRejectsUnknownType(t *testing.T) {
	var s Section
	err := json.Unmarshal([]byte(`{"id":"x","type":"hobbies","content":{}}`), &s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown section type")
}

func TestSectionEncodeCarriesDiscriminator(t *testing.T) {
	data, err := json.Marshal(Section{ID: "s", Content: Summary{Summary: "hello"}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"s","type":"summary","content":{"summary":"hello"}}`, string(data))
}

func TestResumeValidate(t *testing.T) {
	tests := []struct {
		name    string
		resume  Resume
		wantErr bool
	}{
		{name: "empty resume", resume: Resume{}},
		{name: "score out of range", resume: Resume{ATSScore: 101}, wantErr: true},
		{name: "unknown theme", resume: Resume{Theme: "neon"}, wantErr: true},
		{name: "nil content", resume: Resume{Sections: []Section{{ID: "1"}}}, wantErr: true},
		{name: "duplicate ids", resume: Resume{Sections: []Section{
			{ID: "1", Content: Summary{}},
			{ID: "1", Content: Skills{}},
		}}, wantErr: true},
		{name: "nameless personal", resume: Resume{Sections: []Section{{ID: "1", Content: Personal{}}}}, wantErr: true},
		{name: "valid", resume: Resume{Theme: ThemeBlue, Template: TemplateModern, Sections: []Section{
			{ID: "1", Content: Personal{Name: "Ada"}},
			{ID: "2", Content: Skills{Skills: []string{"Go"}}},
		}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.resume.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestResumeSkillsReadsFirstSkillsSection(t *testing.T) {
	r := Resume{Sections: []Section{
		{ID: "1", Content: Summary{Summary: "x"}},
		{ID: "2", Content: Skills{Skills: []string{"Go"}}},
		{ID: "3", Content: Skills{Skills: []string{"Rust"}}},
	}}
	assert.Equal(t, []string{"Go"}, r.Skills())
	assert.Nil(t, Resume{}.Skills())
	assert.True(t, r.HasSection(KindSummary))
	assert.False(t, r.HasSection(KindEducation))
}
