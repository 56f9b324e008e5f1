package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Template is the cosmetic layout a resume is rendered with.
type Template string

const (
	TemplateClassic      Template = "classic"
	TemplateModern       Template = "modern"
	TemplateMinimal      Template = "minimal"
	TemplateCreative     Template = "creative"
	TemplateProfessional Template = "professional"
)

// Theme is the resume colour theme.
type Theme string

const (
	ThemeBlue   Theme = "blue"
	ThemeGreen  Theme = "green"
	ThemeRed    Theme = "red"
	ThemePurple Theme = "purple"
	ThemeOrange Theme = "orange"
)

// Resume is one stored resume version with its ordered sections.
type Resume struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Sections    []Section `json:"sections"`
	Template    Template  `json:"template,omitempty"`
	Theme       Theme     `json:"theme,omitempty"`
	ATSScore    int       `json:"atsScore"`
	LastUpdated time.Time `json:"lastUpdated"`
}

// Validate enforces the structural rules a resume must satisfy before scoring.
func (r Resume) Validate() error {
	if r.ATSScore < 0 || r.ATSScore > 100 {
		return fmt.Errorf("atsScore must be between 0 and 100, got %d", r.ATSScore)
	}
	switch r.Template {
	case "", TemplateClassic, TemplateModern, TemplateMinimal, TemplateCreative, TemplateProfessional:
	default:
		return fmt.Errorf("unknown template %q", r.Template)
	}
	switch r.Theme {
	case "", ThemeBlue, ThemeGreen, ThemeRed, ThemePurple, ThemeOrange:
	default:
		return fmt.Errorf("unknown theme %q", r.Theme)
	}
	seen := make(map[string]struct{}, len(r.Sections))
	for i, section := range r.Sections {
		if section.Content == nil {
			return fmt.Errorf("sections[%d] has no content", i)
		}
		if id := strings.TrimSpace(section.ID); id != "" {
			if _, dup := seen[id]; dup {
				return fmt.Errorf("sections[%d] duplicates id %q", i, id)
			}
			seen[id] = struct{}{}
		}
		if personal, ok := section.Content.(Personal); ok && strings.TrimSpace(personal.Name) == "" {
			return errors.New("personal section requires a name")
		}
	}
	return nil
}

// Section returns the first section of the given kind.
func (r Resume) Section(kind SectionKind) (Section, bool) {
	for _, s := range r.Sections {
		if s.Kind() == kind {
			return s, true
		}
	}
	return Section{}, false
}

// HasSection reports whether any section of the given kind exists.
func (r Resume) HasSection(kind SectionKind) bool {
	_, ok := r.Section(kind)
	return ok
}

// Skills returns the skill list of the first skills section, or nil.
func (r Resume) Skills() []string {
	s, ok := r.Section(KindSkills)
	if !ok {
		return nil
	}
	skills, _ := s.Content.(Skills)
	return skills.Skills
}

// WithSections returns a copy of r carrying the given sections.
func (r Resume) WithSections(sections []Section) Resume {
	r.Sections = sections
	return r
}
