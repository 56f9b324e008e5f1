package jdanalysis

import (
	"regexp"
	"sort"
	"strings"

	"placement-backend/internal/placement"
)

const (
	maxResponsibilities = 8
	minResponsibility   = 10
	maxResumeKeywords   = 20
	notSpecified        = "Not specified"
)

var technicalSkills = []string{
	"javascript", "typescript", "react", "nodejs", "python", "java", "sql", "mongodb",
	"aws", "docker", "kubernetes", "git", "rest api", "graphql", "html", "css", "tailwind",
}

var softSkills = []string{
	"communication", "leadership", "teamwork", "problem-solving", "ux", "design", "agile", "scrum",
}

var (
	easyMarkers   = []string{"junior", "entry-level", "fresher", "internship", "no experience required"}
	mediumMarkers = []string{"intermediate", "2-3 years", "mid-level"}
	hardMarkers   = []string{"senior", "5+ years", "lead", "architect", "principal"}
)

var (
	keywordVerbs = []string{"develop", "design", "implement", "manage", "lead", "improve", "create", "optimize", "build", "deliver"}
	keywordNouns = []string{"system", "application", "platform", "service", "infrastructure", "architecture"}
)

// Phrases following these cues inside a requirements block are treated as skills.
// Matching is case-insensitive, so the capitalised-phrase group accepts any word.
var skillPhrasePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:know|require|must|experience with)[\s\S]{0,50}?\b([A-Z][A-Za-z]+(?:\s+[A-Z][A-Za-z]+)*)\b`),
	regexp.MustCompile(`(?i)(?:fluent|proficient)\s+(?:in|with)[\s\S]{0,50}?\b([A-Z][A-Za-z]+(?:\s+[A-Z][A-Za-z]+)*)\b`),
}

var experiencePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(\d+)\s*(?:\+)?\s*years?\s+(?:of\s+)?(?:professional\s+)?experience`),
	regexp.MustCompile(`(?i)(?:experience|background)?:?\s*(\d+)\s*(?:\+)?\s*years?`),
	regexp.MustCompile(`(?i)(?:fresher|entry.level|junior|senior|lead)`),
}

var bulletSplit = regexp.MustCompile(`[\n•\-*]`)

var (
	prepBase     = map[placement.Difficulty]int{placement.DifficultyEasy: 5, placement.DifficultyMedium: 15, placement.DifficultyHard: 30}
	prepPerSkill = map[placement.Difficulty]int{placement.DifficultyEasy: 1, placement.DifficultyMedium: 3, placement.DifficultyHard: 5}
)

// Analyzer extracts structured data from free-text job descriptions.
type Analyzer struct {
	segmenter Segmenter
}

type Option func(*Analyzer)

// WithSegmenter replaces the default heading-based segmentation.
func WithSegmenter(s Segmenter) Option {
	return func(a *Analyzer) {
		if s != nil {
			a.segmenter = s
		}
	}
}

func NewAnalyzer(opts ...Option) *Analyzer {
	a := &Analyzer{segmenter: RegexSegmenter{}}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze returns the analysis of one description. The title does not affect the result.
// ID, JobID, MissingSkills and AnalysisDate are left for the caller.
func (a *Analyzer) Analyze(description, title string) placement.JDAnalysis {
	required := a.extractSkills(description, true)
	difficulty := DetermineDifficulty(description)
	return placement.JDAnalysis{
		RequiredSkills:           required,
		PreferredSkills:          a.extractSkills(description, false),
		ExperienceRequired:       ExtractExperience(description),
		Responsibilities:         a.extractResponsibilities(description),
		KeywordsForResume:        resumeKeywords(description, required),
		DifficultyRating:         difficulty,
		EstimatedPreparationTime: EstimatePreparationTime(len(required), difficulty),
	}
}

func (a *Analyzer) extractSkills(text string, required bool) []string {
	lower := strings.ToLower(text)
	seen := map[string]struct{}{}
	add := func(skill string) {
		seen[skill] = struct{}{}
	}

	for _, skill := range technicalSkills {
		if strings.Contains(lower, skill) {
			add(skill)
		}
	}
	if !required {
		for _, skill := range softSkills {
			if strings.Contains(lower, skill) {
				add(skill)
			}
		}
	}

	if block, ok := a.segmenter.Requirements(text); ok {
		for _, re := range skillPhrasePatterns {
			for _, m := range re.FindAllStringSubmatch(block, -1) {
				skill := strings.ToLower(m[1])
				if len(skill) > 2 && len(skill) < 50 {
					add(skill)
				}
			}
		}
	}

	out := make([]string, 0, len(seen))
	for skill := range seen {
		out = append(out, skill)
	}
	sort.Strings(out)
	return out
}

// ExtractExperience returns the first experience phrase found, or "Not specified".
func ExtractExperience(text string) string {
	for _, re := range experiencePatterns {
		if m := re.FindString(text); m != "" {
			return m
		}
	}
	return notSpecified
}

func (a *Analyzer) extractResponsibilities(text string) []string {
	block, ok := a.segmenter.Responsibilities(text)
	if !ok {
		return []string{}
	}
	out := make([]string, 0, maxResponsibilities)
	for _, item := range bulletSplit.Split(block, -1) {
		item = strings.TrimSpace(item)
		if len(item) <= minResponsibility {
			continue
		}
		out = append(out, item)
		if len(out) == maxResponsibilities {
			break
		}
	}
	return out
}

func resumeKeywords(text string, skills []string) []string {
	lower := strings.ToLower(text)
	out := make([]string, 0, maxResumeKeywords)
	seen := map[string]struct{}{}
	add := func(k string) {
		if _, ok := seen[k]; ok {
			return
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	for _, s := range skills {
		add(s)
	}
	for _, words := range [][]string{keywordVerbs, keywordNouns} {
		for _, w := range words {
			if strings.Contains(lower, w) {
				add(w)
			}
		}
	}
	if len(out) > maxResumeKeywords {
		out = out[:maxResumeKeywords]
	}
	return out
}

// DetermineDifficulty counts marker phrases per level. Hard must strictly beat both
// other counts and Medium must strictly beat Easy; anything else is Easy.
func DetermineDifficulty(text string) placement.Difficulty {
	lower := strings.ToLower(text)
	easy := countMarkers(lower, easyMarkers)
	medium := countMarkers(lower, mediumMarkers)
	hard := countMarkers(lower, hardMarkers)

	switch {
	case hard > medium && hard > easy:
		return placement.DifficultyHard
	case medium > easy:
		return placement.DifficultyMedium
	default:
		return placement.DifficultyEasy
	}
}

func countMarkers(lower string, markers []string) int {
	n := 0
	for _, m := range markers {
		if strings.Contains(lower, m) {
			n++
		}
	}
	return n
}

// EstimatePreparationTime returns hours: a per-difficulty base plus a per-skill increment.
func EstimatePreparationTime(skillCount int, d placement.Difficulty) int {
	base, ok := prepBase[d]
	if !ok {
		d = placement.DifficultyEasy
		base = prepBase[d]
	}
	return base + skillCount*prepPerSkill[d]
}
