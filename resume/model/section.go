package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

// SectionKind discriminates the resume section union.
type SectionKind string

const (
	KindPersonal       SectionKind = "personal"
	KindSummary        SectionKind = "summary"
	KindExperience     SectionKind = "experience"
	KindEducation      SectionKind = "education"
	KindSkills         SectionKind = "skills"
	KindProjects       SectionKind = "projects"
	KindCertifications SectionKind = "certifications"
)

// ParseSectionKind maps a wire value to a SectionKind.
func ParseSectionKind(raw string) (SectionKind, error) {
	switch kind := SectionKind(strings.ToLower(strings.TrimSpace(raw))); kind {
	case KindPersonal, KindSummary, KindExperience, KindEducation, KindSkills, KindProjects, KindCertifications:
		return kind, nil
	default:
		return "", fmt.Errorf("unknown section type %q", raw)
	}
}

// Content is the typed payload of a section. Each kind has exactly one implementation.
type Content interface {
	Kind() SectionKind
}

// Personal holds contact details.
type Personal struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Location string `json:"location"`
}

// Summary is the free-text professional summary.
type Summary struct {
	Summary string `json:"summary"`
}

// Experience lists work history entries.
type Experience struct {
	Experiences []ExperienceEntry `json:"experiences"`
}

type ExperienceEntry struct {
	Position     string   `json:"position"`
	Company      string   `json:"company"`
	Duration     string   `json:"duration"`
	Achievements []string `json:"achievements"`
}

// Education lists degrees.
type Education struct {
	Education []EducationEntry `json:"education"`
}

type EducationEntry struct {
	Degree      string `json:"degree"`
	Institution string `json:"institution"`
	Year        string `json:"year"`
}

// Skills is a flat, ordered skill list.
type Skills struct {
	Skills []string `json:"skills"`
}

// Projects lists notable projects.
type Projects struct {
	Projects []ProjectEntry `json:"projects"`
}

type ProjectEntry struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Technologies []string `json:"technologies,omitempty"`
	Link         string   `json:"link,omitempty"`
}

// Certifications lists earned certifications.
type Certifications struct {
	Certifications []CertificationEntry `json:"certifications"`
}

type CertificationEntry struct {
	Name   string `json:"name"`
	Issuer string `json:"issuer"`
	Date   string `json:"date,omitempty"`
}

func (Personal) Kind() SectionKind       { return KindPersonal }
func (Summary) Kind() SectionKind        { return KindSummary }
func (Experience) Kind() SectionKind     { return KindExperience }
func (Education) Kind() SectionKind      { return KindEducation }
func (Skills) Kind() SectionKind         { return KindSkills }
func (Projects) Kind() SectionKind       { return KindProjects }
func (Certifications) Kind() SectionKind { return KindCertifications }

// Section is one entry of a resume. Its kind is derived from the content type.
type Section struct {
	ID      string
	Content Content
}

// Kind returns the section discriminator, or "" for an empty section.
func (s Section) Kind() SectionKind {
	if s.Content == nil {
		return ""
	}
	return s.Content.Kind()
}

type sectionWire struct {
	ID      string          `json:"id"`
	Type    string          `json:"type"`
	Content json.RawMessage `json:"content"`
}

// MarshalJSON encodes the section as {"id","type","content"}.
func (s Section) MarshalJSON() ([]byte, error) {
	if s.Content == nil {
		return nil, fmt.Errorf("section %q has no content", s.ID)
	}
	content, err := json.Marshal(s.Content)
	if err != nil {
		return nil, err
	}
	return json.Marshal(sectionWire{ID: s.ID, Type: string(s.Content.Kind()), Content: content})
}

// UnmarshalJSON decodes the content according to the "type" discriminator.
func (s *Section) UnmarshalJSON(data []byte) error {
	var wire sectionWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	kind, err := ParseSectionKind(wire.Type)
	if err != nil {
		return err
	}
	content, err := decodeContent(kind, wire.Content)
	if err != nil {
		return fmt.Errorf("decode %s section: %w", kind, err)
	}
	s.ID = wire.ID
	s.Content = content
	return nil
}

func decodeContent(kind SectionKind, raw json.RawMessage) (Content, error) {
	if len(raw) == 0 || string(raw) == "null" {
		raw = json.RawMessage("{}")
	}
	switch kind {
	case KindPersonal:
		return decodeAs[Personal](raw)
	case KindSummary:
		return decodeAs[Summary](raw)
	case KindExperience:
		return decodeAs[Experience](raw)
	case KindEducation:
		return decodeAs[Education](raw)
	case KindSkills:
		return decodeAs[Skills](raw)
	case KindProjects:
		return decodeAs[Projects](raw)
	case KindCertifications:
		return decodeAs[Certifications](raw)
	}
	return nil, fmt.Errorf("unknown section type %q", kind)
}

func decodeAs[T Content](raw json.RawMessage) (Content, error) {
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return v, nil
}
