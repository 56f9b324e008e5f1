package jdanalysis

import "regexp"

// Segmenter locates the requirement and responsibility blocks of a job description.
type Segmenter interface {
	// Requirements returns the text following a requirements heading.
	Requirements(description string) (string, bool)
	// Responsibilities returns the text following a responsibilities heading.
	Responsibilities(description string) (string, bool)
}

var (
	requirementsBlock     = regexp.MustCompile(`(?i)requirements?:?([\s\S]*?)(?:responsibilities|qualifications|about|$)`)
	responsibilitiesBlock = regexp.MustCompile(`(?i)responsibilities?:?([\s\S]*?)(?:requirements|qualifications|benefits|$)`)
)

// RegexSegmenter splits on heading keywords. The first heading occurrence wins and
// the block runs until the next known heading or the end of the text.
type RegexSegmenter struct{}

func (RegexSegmenter) Requirements(description string) (string, bool) {
	return firstGroup(requirementsBlock, description)
}

func (RegexSegmenter) Responsibilities(description string) (string, bool) {
	return firstGroup(responsibilitiesBlock, description)
}

func firstGroup(re *regexp.Regexp, text string) (string, bool) {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return m[1], true
}
