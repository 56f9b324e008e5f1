package queue

import (
	"encoding/json"
	"time"
)

// CurrentVersion is the payload version written by this build.
const CurrentVersion = 1

// Message announces that a user saved a job and the automation flow should run.
type Message struct {
	UserID     string `json:"userId"`
	JobID      string `json:"jobId"`
	RequestID  string `json:"requestId"`
	EnqueuedAt string `json:"enqueuedAt"`
	Version    int    `json:"version"`
}

// NewJobSaved builds a current-version message stamped at now.
func NewJobSaved(userID, jobID, requestID string, now time.Time) Message {
	return Message{
		UserID:     userID,
		JobID:      jobID,
		RequestID:  requestID,
		EnqueuedAt: now.UTC().Format(time.RFC3339),
		Version:    CurrentVersion,
	}
}

// EncodeMessage returns the JSON representation of a message.
func EncodeMessage(msg Message) ([]byte, error) {
	return json.Marshal(msg)
}

// DecodeMessage parses a JSON payload into a Message.
func DecodeMessage(payload []byte) (Message, error) {
	var msg Message
	if err := json.Unmarshal(payload, &msg); err != nil {
		return Message{}, err
	}
	return msg, nil
}
