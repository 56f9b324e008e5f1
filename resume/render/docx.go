package render

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"strings"

	"placement-backend/resume/model"
)

// MimeDOCX is the content type of rendered documents.
const MimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

const (
	contentTypesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"><Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/><Default Extension="xml" ContentType="application/xml"/><Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/></Types>`

	packageRelsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"><Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/></Relationships>`

	documentRelsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"></Relationships>`

	documentOpen  = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n" + `<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`
	documentClose = `<w:sectPr><w:pgSz w:w="12240" w:h="15840"/><w:pgMar w:top="1080" w:right="1080" w:bottom="1080" w:left="1080"/></w:sectPr></w:body></w:document>`
)

// DOCX renders a resume into a single-column Word document. Section order
// follows the resume; projects and certifications are included.
func DOCX(r model.Resume) ([]byte, error) {
	personal, ok := personalOf(r)
	if !ok || strings.TrimSpace(personal.Name) == "" {
		return nil, errors.New("full name is required")
	}

	var doc docxBuilder
	for _, s := range r.Sections {
		switch c := s.Content.(type) {
		case model.Personal:
			doc.paragraph(run{text: c.Name, style: styleName})
			doc.paragraph(run{text: joinNonEmpty(" | ", c.Email, c.Phone, c.Location), style: styleMeta})
		case model.Summary:
			doc.heading(model.KindSummary)
			doc.paragraph(run{text: c.Summary})
		case model.Experience:
			doc.heading(model.KindExperience)
			for _, exp := range c.Experiences {
				doc.paragraph(run{text: exp.Position + " at " + exp.Company, style: styleRole})
				doc.paragraph(run{text: exp.Duration, style: styleMeta})
				for _, a := range exp.Achievements {
					doc.paragraph(run{text: "• " + a})
				}
			}
		case model.Education:
			doc.heading(model.KindEducation)
			for _, edu := range c.Education {
				doc.paragraph(run{text: fmt.Sprintf("%s from %s (%s)", edu.Degree, edu.Institution, edu.Year)})
			}
		case model.Skills:
			doc.heading(model.KindSkills)
			doc.paragraph(run{text: strings.Join(c.Skills, ", ")})
		case model.Projects:
			doc.heading(model.KindProjects)
			for _, p := range c.Projects {
				doc.paragraph(run{text: p.Name, style: styleRole})
				if p.Description != "" {
					doc.paragraph(run{text: p.Description})
				}
				if len(p.Technologies) > 0 {
					doc.paragraph(run{text: strings.Join(p.Technologies, ", "), style: styleMeta})
				}
			}
		case model.Certifications:
			doc.heading(model.KindCertifications)
			for _, cert := range c.Certifications {
				doc.paragraph(run{text: joinNonEmpty(", ", cert.Name, cert.Issuer, cert.Date)})
			}
		}
	}

	var output bytes.Buffer
	writer := zip.NewWriter(&output)
	parts := []struct {
		name string
		body string
	}{
		{"[Content_Types].xml", contentTypesXML},
		{"_rels/.rels", packageRelsXML},
		{"word/_rels/document.xml.rels", documentRelsXML},
		{"word/document.xml", documentOpen + doc.String() + documentClose},
	}
	for _, p := range parts {
		w, err := writer.Create(p.name)
		if err != nil {
			return nil, err
		}
		if _, err := w.Write([]byte(p.body)); err != nil {
			return nil, err
		}
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}
	return output.Bytes(), nil
}

type run struct {
	text  string
	style style
}

type docxBuilder struct {
	strings.Builder
}

func (d *docxBuilder) heading(kind model.SectionKind) {
	d.paragraph(run{text: headings[kind], style: styleHeading})
}

func (d *docxBuilder) paragraph(runs ...run) {
	d.WriteString("<w:p>")
	for _, r := range runs {
		d.WriteString("<w:r>")
		d.WriteString(r.style.properties())
		d.WriteString(`<w:t xml:space="preserve">`)
		_ = xml.EscapeText(d, []byte(r.text))
		d.WriteString("</w:t></w:r>")
	}
	d.WriteString("</w:p>")
}

func personalOf(r model.Resume) (model.Personal, bool) {
	s, ok := r.Section(model.KindPersonal)
	if !ok {
		return model.Personal{}, false
	}
	p, ok := s.Content.(model.Personal)
	return p, ok
}

func joinNonEmpty(sep string, parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, sep)
}
