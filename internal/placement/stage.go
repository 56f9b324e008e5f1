package placement

import (
	"fmt"
	"strings"
)

// Stage is a position in the application pipeline.
type Stage string

const (
	StageSaved              Stage = "saved"
	StageApplied            Stage = "applied"
	StageInterviewScheduled Stage = "interview_scheduled"
	StageInterviewCompleted Stage = "interview_completed"
	StageOffer              Stage = "offer"
	StageRejected           Stage = "rejected"
)

// Stages lists the pipeline in its intended order.
var Stages = []Stage{
	StageSaved,
	StageApplied,
	StageInterviewScheduled,
	StageInterviewCompleted,
	StageOffer,
	StageRejected,
}

// ParseStage accepts stage names case-insensitively, with '-' or ' ' in place of '_'.
func ParseStage(raw string) (Stage, error) {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	normalized = strings.NewReplacer("-", "_", " ", "_").Replace(normalized)
	for _, s := range Stages {
		if string(s) == normalized {
			return s, nil
		}
	}
	return "", fmt.Errorf("invalid stage %q", raw)
}

// IsTerminal reports whether no further progression is expected.
func (s Stage) IsTerminal() bool {
	return s == StageOffer || s == StageRejected
}
