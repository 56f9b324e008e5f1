// Package extract turns uploaded job description files into plain text.
package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"

	"placement-backend/internal/shared/storage/object"
)

const (
	MimeText = "text/plain"
	MimePDF  = "application/pdf"
	MimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// ErrUnsupported is returned for payloads that are not text, PDF or DOCX.
var ErrUnsupported = errors.New("unsupported file type")

// FromStore reads a stored object and extracts its text.
func FromStore(ctx context.Context, store object.ObjectStore, key, mimeType, fileName string) (string, error) {
	body, err := store.Open(ctx, key)
	if err != nil {
		return "", fmt.Errorf("open key=%s: %w", key, err)
	}
	defer body.Close()

	raw, err := io.ReadAll(body)
	if err != nil {
		return "", fmt.Errorf("read key=%s: %w", key, err)
	}
	return Text(ctx, raw, mimeType, fileName)
}

// Text extracts text from an in-memory payload.
func Text(ctx context.Context, data []byte, mimeType, fileName string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	switch kind := normalizeMimeType(mimeType, fileName, data); kind {
	case MimeText:
		if !utf8.Valid(data) {
			return "", fmt.Errorf("%w: text is not valid utf-8", ErrUnsupported)
		}
		return strings.TrimSpace(string(data)), nil
	case MimePDF:
		return extractPDF(data)
	case MimeDOCX:
		return extractDOCX(data)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupported, kind)
	}
}

func extractPDF(data []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("read pdf: %w", err)
	}
	var sb strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("read pdf page %d: %w", i, err)
		}
		sb.WriteString(text)
		sb.WriteString("\n")
	}
	return strings.TrimSpace(sb.String()), nil
}

func extractDOCX(data []byte) (string, error) {
	if len(data) == 0 {
		return "", errors.New("empty docx data")
	}
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("parse docx: %w", err)
	}
	defer doc.Close()
	return stripDocxXML(doc.Editable().GetContent()), nil
}

// stripDocxXML keeps run text and breaks lines at paragraph ends.
func stripDocxXML(raw string) string {
	decoder := xml.NewDecoder(strings.NewReader(raw))
	var sb strings.Builder
	inText := false
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return raw
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "t" {
				inText = true
			}
		case xml.CharData:
			if inText {
				sb.Write(t)
			}
		case xml.EndElement:
			if t.Name.Local == "t" {
				inText = false
			}
			if (t.Name.Local == "p" || t.Name.Local == "br") && sb.Len() > 0 {
				sb.WriteString("\n")
			}
		}
	}
	return strings.TrimSpace(sb.String())
}

func normalizeMimeType(mimeType, fileName string, data []byte) string {
	clean := strings.ToLower(strings.TrimSpace(strings.Split(mimeType, ";")[0]))
	switch clean {
	case "application/zip", "application/octet-stream", "":
	default:
		return clean
	}
	if isDocxZip(data) {
		return MimeDOCX
	}
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".pdf":
		return MimePDF
	case ".txt", ".md":
		return MimeText
	}
	if clean == "" {
		return "application/octet-stream"
	}
	return clean
}

func isDocxZip(data []byte) bool {
	if len(data) == 0 {
		return false
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return false
	}
	for _, f := range zr.File {
		if strings.ReplaceAll(f.Name, "\\", "/") == "word/document.xml" {
			return true
		}
	}
	return false
}
