package notifications

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"placement-backend/internal/placement"
)

const (
	highMatchThreshold   = 80
	lowATSThreshold      = 70
	interviewWindow      = 24 * time.Hour
	inactivityAfterDays  = 3
	DefaultRetentionDays = 7
	deliveryWindow       = 2 * time.Hour
	day                  = 24 * time.Hour
)

// Titles maps each notification type to its display title.
var Titles = map[placement.NotificationType]string{
	placement.NotificationNewJobMatch:     "New Job Matches",
	placement.NotificationLowResumeScore:  "Resume Score Alert",
	placement.NotificationLowJDAlignment:  "Skill Alignment Issue",
	placement.NotificationInterview:       "Upcoming Interview",
	placement.NotificationInactivityAlert: "Stay Active",
}

// Lower rank is more urgent.
var priority = map[placement.NotificationType]int{
	placement.NotificationInterview:       1,
	placement.NotificationLowResumeScore:  2,
	placement.NotificationLowJDAlignment:  3,
	placement.NotificationInactivityAlert: 4,
	placement.NotificationNewJobMatch:     5,
}

func titleFor(t placement.NotificationType) string {
	if title, ok := Titles[t]; ok {
		return title
	}
	return "Notification"
}

// Generate evaluates every trigger independently against the user's state at now.
// Ids are "notif-<unix millis>-<index>" so repeated runs at the same instant agree.
func Generate(u placement.User, now time.Time) []placement.Notification {
	type draft struct {
		kind    placement.NotificationType
		message string
	}
	var drafts []draft

	highMatches := 0
	for _, j := range u.JobMatches {
		if j.MatchScore >= highMatchThreshold {
			highMatches++
		}
	}
	if highMatches > len(u.Applications) {
		drafts = append(drafts, draft{placement.NotificationNewJobMatch,
			fmt.Sprintf("%d high-match jobs (80%%+) found. Start applying!", highMatches)})
	}

	current, hasResume := u.CurrentResume()
	if hasResume && current.ATSScore < lowATSThreshold {
		drafts = append(drafts, draft{placement.NotificationLowResumeScore,
			fmt.Sprintf("Your resume ATS score is %d%%. Improve it to increase interview chances", current.ATSScore)})
	}

	if n := lowAlignmentCount(u); n > 0 {
		drafts = append(drafts, draft{placement.NotificationLowJDAlignment,
			fmt.Sprintf("%d analyzed jobs have low resume alignment. Consider learning key skills", n)})
	}

	if n := upcomingInterviews(u.Applications, now); n > 0 {
		drafts = append(drafts, draft{placement.NotificationInterview,
			fmt.Sprintf("You have %d interview(s) in the next 24 hours. Time to prepare!", n)})
	}

	if days, ok := daysSinceActivity(u, now); ok && days >= inactivityAfterDays {
		drafts = append(drafts, draft{placement.NotificationInactivityAlert,
			fmt.Sprintf("No activity for %d days. Apply to new jobs or practice to stay on track", int(math.Round(days)))})
	}

	out := make([]placement.Notification, 0, len(drafts))
	for i, d := range drafts {
		out = append(out, placement.Notification{
			ID:        fmt.Sprintf("notif-%d-%d", now.UnixMilli(), i),
			Type:      d.kind,
			Title:     titleFor(d.kind),
			Message:   d.message,
			CreatedAt: now,
		})
	}
	return out
}

// lowAlignmentCount counts analyses of matched jobs where fewer than half as many
// resume skills cover a required skill as there are required skills.
func lowAlignmentCount(u placement.User) int {
	skills := lowerAll(u.ResumeSkills())
	count := 0
	for _, a := range u.Analyses() {
		if _, ok := u.JobByID(a.JobID); !ok {
			continue
		}
		aligned := 0
		for _, s := range skills {
			for _, req := range a.RequiredSkills {
				if strings.Contains(s, strings.ToLower(req)) {
					aligned++
					break
				}
			}
		}
		if float64(aligned) < float64(len(a.RequiredSkills))*0.5 {
			count++
		}
	}
	return count
}

func upcomingInterviews(apps []placement.Application, now time.Time) int {
	n := 0
	for _, a := range apps {
		if a.InterviewDate == nil {
			continue
		}
		until := a.InterviewDate.Sub(now)
		if until > 0 && until <= interviewWindow {
			n++
		}
	}
	return n
}

// daysSinceActivity is false when the user has no recorded activity.
func daysSinceActivity(u placement.User, now time.Time) (float64, bool) {
	if u.LastActivity.IsZero() {
		return 0, false
	}
	return now.Sub(u.LastActivity).Hours() / 24, true
}

// ShouldNotify reports whether now falls within two hours of the user's preferred
// notification time on the same calendar day. Malformed times never notify.
func ShouldNotify(u placement.User, now time.Time) bool {
	if !u.Preferences.NotificationsEnabled {
		return false
	}
	at, err := time.Parse("15:04", strings.TrimSpace(u.Preferences.NotificationTime))
	if err != nil {
		return false
	}
	target := time.Date(now.Year(), now.Month(), now.Day(), at.Hour(), at.Minute(), 0, 0, now.Location())
	diff := now.Sub(target)
	if diff < 0 {
		diff = -diff
	}
	return diff <= deliveryWindow
}

// Prioritize returns a copy ordered from most to least urgent. Unknown types sort last.
func Prioritize(ns []placement.Notification) []placement.Notification {
	out := append([]placement.Notification(nil), ns...)
	rank := func(t placement.NotificationType) int {
		if r, ok := priority[t]; ok {
			return r
		}
		return 999
	}
	sort.SliceStable(out, func(i, j int) bool { return rank(out[i].Type) < rank(out[j].Type) })
	return out
}

// ClearOld drops notifications created at or before now minus days.
// A non-positive days uses DefaultRetentionDays.
func ClearOld(ns []placement.Notification, days int, now time.Time) []placement.Notification {
	if days <= 0 {
		days = DefaultRetentionDays
	}
	cutoff := now.Add(-time.Duration(days) * day)
	out := make([]placement.Notification, 0, len(ns))
	for _, n := range ns {
		if n.CreatedAt.After(cutoff) {
			out = append(out, n)
		}
	}
	return out
}

func lowerAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(s)
	}
	return out
}
