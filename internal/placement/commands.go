package placement

import (
	"sort"
	"time"

	"github.com/ecodeclub/ekit/slice"

	"placement-backend/resume/model"
)

// Commands never mutate the receiver's slices or maps in place; each returns a
// new User value with UpdatedAt set to now.

func (u User) touched(now time.Time) User {
	u.UpdatedAt = now
	return u
}

// Profile is the user-editable part of a User.
type Profile struct {
	Name            string      `json:"name"`
	Phone           string      `json:"phone,omitempty"`
	TargetRole      string      `json:"targetRole"`
	TargetCompanies []string    `json:"targetCompanies"`
	CurrentLevel    string      `json:"currentLevel"`
	Preferences     Preferences `json:"preferences"`
}

// UpdateProfile replaces the editable profile fields. An empty name keeps the current one.
func (u User) UpdateProfile(p Profile, now time.Time) User {
	if p.Name != "" {
		u.Name = p.Name
	}
	u.Phone = p.Phone
	u.TargetRole = p.TargetRole
	u.TargetCompanies = append([]string(nil), p.TargetCompanies...)
	u.CurrentLevel = p.CurrentLevel
	u.Preferences = p.Preferences
	u.Preferences.JobCategories = append([]string(nil), p.Preferences.JobCategories...)
	u.Preferences.Locations = append([]string(nil), p.Preferences.Locations...)
	return u.touched(now)
}

// AddJob appends a job to the match list.
func (u User) AddJob(job Job, now time.Time) User {
	u.JobMatches = appendCopy(u.JobMatches, job)
	return u.touched(now)
}

// SaveJob marks a matched job as saved and copies it into SavedJobs.
// Unknown ids leave the user unchanged.
func (u User) SaveJob(jobID string, now time.Time) User {
	job, ok := u.JobByID(jobID)
	if !ok {
		return u
	}
	job.Saved = true
	u.JobMatches = replaceJob(u.JobMatches, job)
	saved := slice.FindAll(u.SavedJobs, func(j Job) bool { return j.ID != jobID })
	u.SavedJobs = append(saved, job)
	return u.touched(now)
}

// UnsaveJob removes a job from SavedJobs and clears its saved flag.
func (u User) UnsaveJob(jobID string, now time.Time) User {
	u.SavedJobs = slice.FindAll(u.SavedJobs, func(j Job) bool { return j.ID != jobID })
	u.JobMatches = slice.Map(u.JobMatches, func(_ int, j Job) Job {
		if j.ID == jobID {
			j.Saved = false
		}
		return j
	})
	return u.touched(now)
}

// UpdateJobMatchScore sets the score on the matched job and on its saved copy.
func (u User) UpdateJobMatchScore(jobID string, score int, now time.Time) User {
	set := func(_ int, j Job) Job {
		if j.ID == jobID {
			j.MatchScore = score
		}
		return j
	}
	u.JobMatches = slice.Map(u.JobMatches, set)
	u.SavedJobs = slice.Map(u.SavedJobs, set)
	return u.touched(now)
}

func (u User) AddResume(r model.Resume, now time.Time) User {
	u.Resumes = appendCopy(u.Resumes, r)
	return u.touched(now)
}

// UpdateResume replaces the stored resume with the same id.
func (u User) UpdateResume(r model.Resume, now time.Time) User {
	u.Resumes = slice.Map(u.Resumes, func(_ int, existing model.Resume) model.Resume {
		if existing.ID == r.ID {
			return r
		}
		return existing
	})
	return u.touched(now)
}

// SetCurrentResume selects the resume used for scoring. Unknown ids are ignored.
func (u User) SetCurrentResume(resumeID string, now time.Time) User {
	if _, ok := u.ResumeByID(resumeID); !ok {
		return u
	}
	u.CurrentResumeID = resumeID
	return u.touched(now)
}

func (u User) UpdateATSScore(resumeID string, score int, now time.Time) User {
	u.Resumes = slice.Map(u.Resumes, func(_ int, r model.Resume) model.Resume {
		if r.ID == resumeID {
			r.ATSScore = score
		}
		return r
	})
	return u.touched(now)
}

// AddJDAnalysis stores an analysis keyed by its job id, replacing any previous one.
func (u User) AddJDAnalysis(a JDAnalysis, now time.Time) User {
	analyses := make(map[string]JDAnalysis, len(u.JDAnalyses)+1)
	for k, v := range u.JDAnalyses {
		analyses[k] = v
	}
	analyses[a.JobID] = a
	u.JDAnalyses = analyses
	return u.touched(now)
}

// UpdateJDAnalysis applies fn to the stored analysis for jobID, if any.
func (u User) UpdateJDAnalysis(jobID string, fn func(JDAnalysis) JDAnalysis, now time.Time) User {
	existing, ok := u.JDAnalyses[jobID]
	if !ok {
		return u
	}
	updated := fn(existing)
	updated.JobID = jobID
	return u.AddJDAnalysis(updated, now)
}

func (u User) AddApplication(app Application, now time.Time) User {
	u.Applications = appendCopy(u.Applications, app)
	return u.touched(now)
}

// UpdateApplicationStage sets any stage directly; progression is not enforced.
func (u User) UpdateApplicationStage(appID string, stage Stage, now time.Time) User {
	u.Applications = slice.Map(u.Applications, func(_ int, a Application) Application {
		if a.ID == appID {
			a.Stage = stage
		}
		return a
	})
	return u.touched(now)
}

// ScheduleInterview records the interview date and type on an application.
func (u User) ScheduleInterview(appID string, at time.Time, kind InterviewType, now time.Time) User {
	u.Applications = slice.Map(u.Applications, func(_ int, a Application) Application {
		if a.ID == appID {
			when := at
			a.InterviewDate = &when
			if kind != "" {
				a.InterviewType = kind
			}
		}
		return a
	})
	return u.touched(now)
}

func (u User) SetReadinessScore(b ReadinessScoreBreakdown, now time.Time) User {
	u.ReadinessScore = b
	return u.touched(now)
}

func (u User) AddNotification(n Notification, now time.Time) User {
	u.Notifications = appendCopy(u.Notifications, n)
	return u.touched(now)
}

// ReplaceNotifications swaps the whole notification list.
func (u User) ReplaceNotifications(ns []Notification, now time.Time) User {
	u.Notifications = append([]Notification(nil), ns...)
	return u.touched(now)
}

func (u User) MarkNotificationRead(id string, now time.Time) User {
	u.Notifications = slice.Map(u.Notifications, func(_ int, n Notification) Notification {
		if n.ID == id {
			n.Read = true
		}
		return n
	})
	return u.touched(now)
}

// TouchActivity records user activity at now.
func (u User) TouchActivity(now time.Time) User {
	u.LastActivity = now
	return u.touched(now)
}

// CurrentResume returns the selected resume, if it exists.
func (u User) CurrentResume() (model.Resume, bool) {
	if u.CurrentResumeID == "" {
		return model.Resume{}, false
	}
	return u.ResumeByID(u.CurrentResumeID)
}

func (u User) ResumeByID(id string) (model.Resume, bool) {
	return slice.Find(u.Resumes, func(r model.Resume) bool { return r.ID == id })
}

// ResumeSkills returns the skills of the current resume, or nil.
func (u User) ResumeSkills() []string {
	r, ok := u.CurrentResume()
	if !ok {
		return nil
	}
	return r.Skills()
}

func (u User) JobByID(id string) (Job, bool) {
	return slice.Find(u.JobMatches, func(j Job) bool { return j.ID == id })
}

func (u User) ApplicationByID(id string) (Application, bool) {
	return slice.Find(u.Applications, func(a Application) bool { return a.ID == id })
}

func (u User) ApplicationsByStage(stage Stage) []Application {
	return slice.FindAll(u.Applications, func(a Application) bool { return a.Stage == stage })
}

func (u User) UnreadNotifications() []Notification {
	return slice.FindAll(u.Notifications, func(n Notification) bool { return !n.Read })
}

// Analyses returns stored analyses ordered by analysis date, then job id.
func (u User) Analyses() []JDAnalysis {
	out := make([]JDAnalysis, 0, len(u.JDAnalyses))
	for _, a := range u.JDAnalyses {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].AnalysisDate.Equal(out[j].AnalysisDate) {
			return out[i].AnalysisDate.Before(out[j].AnalysisDate)
		}
		return out[i].JobID < out[j].JobID
	})
	return out
}

func appendCopy[T any](src []T, v T) []T {
	out := make([]T, len(src), len(src)+1)
	copy(out, src)
	return append(out, v)
}

func replaceJob(jobs []Job, job Job) []Job {
	return slice.Map(jobs, func(_ int, j Job) Job {
		if j.ID == job.ID {
			return job
		}
		return j
	})
}
