package object

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const sniffLen = 512

// Kind groups stored objects by what the dashboard keeps.
type Kind string

const (
	KindJobDescription Kind = "job-descriptions"
	KindResumeExport   Kind = "resume-exports"
)

func (k Kind) valid() bool {
	return k == KindJobDescription || k == KindResumeExport
}

// Upload describes an object to store. ContentType skips sniffing when set.
type Upload struct {
	UserID      string
	Kind        Kind
	FileName    string
	ContentType string
}

// Stored is what a store reports after a successful Save.
type Stored struct {
	Key       string
	SizeBytes int64
	MimeType  string
}

// ObjectStore saves and retrieves uploaded job descriptions and resume exports.
type ObjectStore interface {
	Save(ctx context.Context, up Upload, r io.Reader) (Stored, error)
	Open(ctx context.Context, storageKey string) (io.ReadCloser, error)
}

// Prepare validates up, builds its key and resolves the content type.
// The returned reader replays any bytes consumed while sniffing.
func Prepare(ctx context.Context, up Upload, r io.Reader) (key, mimeType string, body io.Reader, err error) {
	if err := ctx.Err(); err != nil {
		return "", "", nil, err
	}
	key, err = Key(up.UserID, up.Kind, up.FileName)
	if err != nil {
		return "", "", nil, err
	}
	if mimeType = strings.TrimSpace(up.ContentType); mimeType != "" {
		return key, mimeType, r, nil
	}
	mimeType, body, err = Sniff(r)
	if err != nil {
		return "", "", nil, err
	}
	return key, mimeType, body, nil
}

// Sniff detects the content type from the first bytes of r and returns a
// reader that replays them.
func Sniff(r io.Reader) (string, io.Reader, error) {
	var head [sniffLen]byte
	n, err := io.ReadFull(r, head[:])
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return "", nil, fmt.Errorf("read sniff: %w", err)
	}
	return http.DetectContentType(head[:n]), io.MultiReader(bytes.NewReader(head[:n]), r), nil
}
