package render

import (
	"fmt"
	"strings"

	"placement-backend/resume/model"
)

// headings title each section in both layouts. Personal has none.
var headings = map[model.SectionKind]string{
	model.KindSummary:        "PROFESSIONAL SUMMARY",
	model.KindExperience:     "EXPERIENCE",
	model.KindEducation:      "EDUCATION",
	model.KindSkills:         "SKILLS",
	model.KindProjects:       "PROJECTS",
	model.KindCertifications: "CERTIFICATIONS",
}

// style selects the formatting of a DOCX run.
type style uint8

const (
	styleBody style = iota
	styleName
	styleHeading
	styleRole
	styleMeta
)

type runStyle struct {
	bold   bool
	italic bool
	size   int // half-points
	color  string
}

var runStyles = [...]runStyle{
	styleBody:    {},
	styleName:    {bold: true, size: 32, color: "111111"},
	styleHeading: {bold: true, size: 24, color: "1F2937"},
	styleRole:    {bold: true},
	styleMeta:    {italic: true},
}

// properties renders the <w:rPr> element for s, or nothing for body text.
func (s style) properties() string {
	if int(s) >= len(runStyles) {
		return ""
	}
	rs := runStyles[s]
	if rs == (runStyle{}) {
		return ""
	}
	var b strings.Builder
	b.WriteString("<w:rPr>")
	if rs.bold {
		b.WriteString("<w:b/>")
	}
	if rs.italic {
		b.WriteString("<w:i/>")
	}
	if rs.color != "" {
		fmt.Fprintf(&b, `<w:color w:val="%s"/>`, rs.color)
	}
	if rs.size > 0 {
		fmt.Fprintf(&b, `<w:sz w:val="%d"/>`, rs.size)
	}
	b.WriteString("</w:rPr>")
	return b.String()
}
