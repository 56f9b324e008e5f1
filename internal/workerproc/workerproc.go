package workerproc

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"placement-backend/internal/automation"
	"placement-backend/internal/dashboard"
	"placement-backend/internal/queue"
)

// Processor runs the automation flow for a saved job.
type Processor interface {
	ProcessJobSaved(ctx context.Context, userID, jobID string) (automation.FlowResult, error)
}

// MessageMeta captures details useful for logging and diagnostics.
type MessageMeta struct {
	BodyLen int
	BodySHA string
}

// ComputeMeta returns the body length and SHA-256 hash.
func ComputeMeta(body string) MessageMeta {
	if body == "" {
		return MessageMeta{BodyLen: 0, BodySHA: ""}
	}
	sum := sha256.Sum256([]byte(body))
	return MessageMeta{BodyLen: len(body), BodySHA: hex.EncodeToString(sum[:])}
}

// ErrEmptyBody indicates an empty queue payload.
type ErrEmptyBody struct {
	Meta MessageMeta
}

func (e ErrEmptyBody) Error() string { return "empty message body" }

// ErrDecode indicates a JSON decode failure or an unknown payload version.
type ErrDecode struct {
	Meta MessageMeta
	Err  error
}

func (e ErrDecode) Error() string {
	if e.Err == nil {
		return "decode message"
	}
	return "decode message: " + e.Err.Error()
}

func (e ErrDecode) Unwrap() error { return e.Err }

// ErrMissingUserID indicates a message without a user id.
type ErrMissingUserID struct {
	Meta      MessageMeta
	RequestID string
}

func (e ErrMissingUserID) Error() string { return "missing user id" }

// ErrMissingJobID indicates a message without a job id.
type ErrMissingJobID struct {
	Meta      MessageMeta
	RequestID string
}

func (e ErrMissingJobID) Error() string { return "missing job id" }

// ErrProcess indicates the flow failed after the message parsed. Permanent
// failures will never succeed on redelivery.
type ErrProcess struct {
	UserID    string
	JobID     string
	RequestID string
	Err       error
	Permanent bool
}

func (e ErrProcess) Error() string {
	if e.Err == nil {
		return "process job saved"
	}
	return "process job saved: " + e.Err.Error()
}

func (e ErrProcess) Unwrap() error { return e.Err }

// ParseMessage validates and decodes the queue payload.
func ParseMessage(body string) (queue.Message, MessageMeta, error) {
	meta := ComputeMeta(body)
	if strings.TrimSpace(body) == "" {
		return queue.Message{}, meta, ErrEmptyBody{Meta: meta}
	}

	msg, err := queue.DecodeMessage([]byte(body))
	if err != nil {
		return queue.Message{}, meta, ErrDecode{Meta: meta, Err: err}
	}
	if msg.Version > queue.CurrentVersion {
		return msg, meta, ErrDecode{Meta: meta, Err: fmt.Errorf("unsupported version %d", msg.Version)}
	}
	if strings.TrimSpace(msg.UserID) == "" {
		return msg, meta, ErrMissingUserID{Meta: meta, RequestID: msg.RequestID}
	}
	if strings.TrimSpace(msg.JobID) == "" {
		return msg, meta, ErrMissingJobID{Meta: meta, RequestID: msg.RequestID}
	}
	return msg, meta, nil
}

// IsPermanent reports whether redelivering the message cannot help.
func IsPermanent(err error) bool {
	if err == nil {
		return false
	}
	var (
		empty     ErrEmptyBody
		decode    ErrDecode
		noUser    ErrMissingUserID
		noJob     ErrMissingJobID
		processed ErrProcess
	)
	switch {
	case errors.As(err, &empty), errors.As(err, &decode), errors.As(err, &noUser), errors.As(err, &noJob):
		return true
	case errors.As(err, &processed):
		return processed.Permanent
	}
	return false
}

type parsedMessageKey struct{}

// WithParsedMessage stores a decoded message in the context for reuse.
func WithParsedMessage(ctx context.Context, msg queue.Message) context.Context {
	return context.WithValue(ctx, parsedMessageKey{}, msg)
}

func parsedMessageFromContext(ctx context.Context) (queue.Message, bool) {
	if ctx == nil {
		return queue.Message{}, false
	}
	msg, ok := ctx.Value(parsedMessageKey{}).(queue.Message)
	return msg, ok
}

// HandleMessage parses, validates, and runs the flow for a job-saved payload.
// A user without a current resume is not an error; the save stands on its own.
func HandleMessage(ctx context.Context, proc Processor, body string) error {
	if proc == nil {
		return errors.New("dashboard service not configured")
	}

	msg, ok := parsedMessageFromContext(ctx)
	if !ok {
		var err error
		msg, _, err = ParseMessage(body)
		if err != nil {
			return err
		}
	}
	if strings.TrimSpace(msg.UserID) == "" {
		return ErrMissingUserID{Meta: ComputeMeta(body), RequestID: msg.RequestID}
	}
	if strings.TrimSpace(msg.JobID) == "" {
		return ErrMissingJobID{Meta: ComputeMeta(body), RequestID: msg.RequestID}
	}

	ctxWithRequest := dashboard.WithRequestID(ctx, msg.RequestID)
	_, err := proc.ProcessJobSaved(ctxWithRequest, msg.UserID, msg.JobID)
	switch {
	case err == nil, errors.Is(err, dashboard.ErrNoCurrentResume):
		return nil
	default:
		return ErrProcess{
			UserID:    msg.UserID,
			JobID:     msg.JobID,
			RequestID: msg.RequestID,
			Err:       err,
			Permanent: errors.Is(err, dashboard.ErrNotFound) || errors.Is(err, dashboard.ErrInvalidInput),
		}
	}
}
