package placement

import (
	"time"

	"placement-backend/resume/model"
)

// Salary is an advertised pay range.
type Salary struct {
	Min      int    `json:"min"`
	Max      int    `json:"max"`
	Currency string `json:"currency"`
}

// Job is a listing sourced from an external feed or entered by the user.
type Job struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Company      string     `json:"company"`
	Location     string     `json:"location"`
	Description  string     `json:"description"`
	Requirements []string   `json:"requirements"`
	Salary       *Salary    `json:"salary,omitempty"`
	JobURL       string     `json:"jobUrl,omitempty"`
	PostedDate   time.Time  `json:"postedDate"`
	AppliedDate  *time.Time `json:"appliedDate,omitempty"`
	Saved        bool       `json:"saved"`
	MatchScore   int        `json:"matchScore"`
	Source       string     `json:"source,omitempty"`
}

// Difficulty rates how demanding a job description reads.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"
)

// JDAnalysis is the structured result of analysing one job description.
type JDAnalysis struct {
	ID                       string     `json:"id,omitempty"`
	JobID                    string     `json:"jobId,omitempty"`
	RequiredSkills           []string   `json:"requiredSkills"`
	PreferredSkills          []string   `json:"preferredSkills"`
	ExperienceRequired       string     `json:"experienceRequired"`
	Responsibilities         []string   `json:"responsibilities"`
	KeywordsForResume        []string   `json:"keywordsForResume"`
	DifficultyRating         Difficulty `json:"difficultyRating"`
	EstimatedPreparationTime int        `json:"estimatedPreparationTime"`
	MissingSkills            []string   `json:"missingSkills,omitempty"`
	AnalysisDate             time.Time  `json:"analysisDate"`
}

// InterviewType classifies a scheduled interview.
type InterviewType string

const (
	InterviewPhone     InterviewType = "phone"
	InterviewTechnical InterviewType = "technical"
	InterviewHR        InterviewType = "hr"
	InterviewFinal     InterviewType = "final"
)

// Documents records which files were sent with an application.
type Documents struct {
	Resume      string `json:"resume"`
	CoverLetter string `json:"coverLetter,omitempty"`
}

// Application tracks one job through the hiring pipeline.
type Application struct {
	ID              string        `json:"id"`
	JobID           string        `json:"jobId"`
	ResumeID        string        `json:"resumeId"`
	Stage           Stage         `json:"stage"`
	AppliedDate     time.Time     `json:"appliedDate"`
	InterviewDate   *time.Time    `json:"interviewDate,omitempty"`
	InterviewType   InterviewType `json:"interviewType,omitempty"`
	InterviewRating *int          `json:"interviewRating,omitempty"`
	Notes           string        `json:"notes"`
	Documents       Documents     `json:"documents"`
}

// ReadinessScoreBreakdown holds the five weighted sub-scores and their total.
type ReadinessScoreBreakdown struct {
	JobMatchQuality     int `json:"jobMatchQuality"`
	JDSkillAlignment    int `json:"jdSkillAlignment"`
	ResumeATSScore      int `json:"resumeAtsScore"`
	ApplicationProgress int `json:"applicationProgress"`
	PracticeCompletion  int `json:"practiceCompletion"`
	OverallScore        int `json:"overallScore"`
}

// NotificationType is the closed set of contextual notification kinds.
type NotificationType string

const (
	NotificationNewJobMatch     NotificationType = "new_job_match"
	NotificationLowResumeScore  NotificationType = "low_resume_score"
	NotificationLowJDAlignment  NotificationType = "jd_analyzed_no_alignment"
	NotificationInterview       NotificationType = "interview_reminder"
	NotificationInactivityAlert NotificationType = "inactivity_alert"
)

type Notification struct {
	ID        string           `json:"id"`
	Type      NotificationType `json:"type"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	ActionURL string           `json:"actionUrl,omitempty"`
	Read      bool             `json:"read"`
	CreatedAt time.Time        `json:"createdAt"`
}

type PracticeProblem struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Difficulty  Difficulty `json:"difficulty"`
	Category    string     `json:"category"`
	Solved      bool       `json:"solved"`
	Attempts    int        `json:"attempts"`
	LastAttempt *time.Time `json:"lastAttempt,omitempty"`
}

type MockInterview struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Type      string    `json:"type"`
	Duration  int       `json:"duration"`
	Completed bool      `json:"completed"`
	Rating    *int      `json:"rating,omitempty"`
	Feedback  string    `json:"feedback,omitempty"`
	Date      time.Time `json:"date"`
}

type SalaryRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// Preferences drive job matching and notification delivery.
type Preferences struct {
	JobCategories        []string    `json:"jobCategories"`
	ExperienceLevel      string      `json:"experienceLevel"`
	SalaryRange          SalaryRange `json:"salaryRange"`
	Locations            []string    `json:"locations"`
	NotificationsEnabled bool        `json:"notificationsEnabled"`
	NotificationTime     string      `json:"notificationTime"`
}

// User is the full placement state of one candidate.
type User struct {
	ID               string                  `json:"id"`
	Name             string                  `json:"name"`
	Email            string                  `json:"email"`
	Phone            string                  `json:"phone,omitempty"`
	TargetRole       string                  `json:"targetRole"`
	TargetCompanies  []string                `json:"targetCompanies"`
	CurrentLevel     string                  `json:"currentLevel"`
	Preferences      Preferences             `json:"preferences"`
	Resumes          []model.Resume          `json:"resumeData"`
	CurrentResumeID  string                  `json:"currentResumeId,omitempty"`
	JobMatches       []Job                   `json:"jobMatches"`
	SavedJobs        []Job                   `json:"savedJobs"`
	Applications     []Application           `json:"applications"`
	JDAnalyses       map[string]JDAnalysis   `json:"jdAnalyses"`
	ReadinessScore   ReadinessScoreBreakdown `json:"readinessScore"`
	PracticeProblems []PracticeProblem       `json:"practiceProblems"`
	MockInterviews   []MockInterview         `json:"mockInterviews"`
	Notifications    []Notification          `json:"notifications"`
	LastActivity     time.Time               `json:"lastActivity"`
	CreatedAt        time.Time               `json:"createdAt"`
	UpdatedAt        time.Time               `json:"updatedAt"`
	// Version counts stored writes. Zero means the user was never stored.
	Version int64 `json:"version"`
}

// NewUser returns an empty profile with notifications enabled at 09:00.
func NewUser(id, name, email string, now time.Time) User {
	return User{
		ID:    id,
		Name:  name,
		Email: email,
		Preferences: Preferences{
			NotificationsEnabled: true,
			NotificationTime:     "09:00",
		},
		JDAnalyses:   map[string]JDAnalysis{},
		LastActivity: now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
