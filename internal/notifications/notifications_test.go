package notifications

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"placement-backend/internal/placement"
	"placement-backend/resume/model"
)

var now = time.Date(2026, time.June, 1, 10, 30, 0, 0, time.UTC)

func withResume(u placement.User, ats int, skills ...string) placement.User {
	r := model.Resume{ID: "r1", ATSScore: ats, Sections: []model.Section{{ID: "sk", Content: model.Skills{Skills: skills}}}}
	return u.AddResume(r, now).SetCurrentResume("r1", now)
}

func types(ns []placement.Notification) []placement.NotificationType {
	out := []placement.NotificationType{}
	for _, n := range ns {
		out = append(out, n.Type)
	}
	return out
}

func TestLowResumeScoreNotification(t *testing.T) {
	low := Generate(withResume(placement.NewUser("u1", "", "", now), 50), now)
	assert.Contains(t, types(low), placement.NotificationLowResumeScore)

	high := Generate(withResume(placement.NewUser("u1", "", "", now), 90), now)
	assert.NotContains(t, types(high), placement.NotificationLowResumeScore)
}

func TestGenerateAllTriggers(t *testing.T) {
	interview := now.Add(3 * time.Hour)
	u := placement.NewUser("u1", "", "", now.Add(-4*day))
	u = withResume(u, 60, "Go", "Python")
	u = u.AddJob(placement.Job{ID: "j1", MatchScore: 85}, now).
		AddJob(placement.Job{ID: "j2", MatchScore: 90}, now).
		AddJob(placement.Job{ID: "j3", MatchScore: 20}, now).
		AddApplication(placement.Application{ID: "a1", JobID: "j3", InterviewDate: &interview}, now).
		AddJDAnalysis(placement.JDAnalysis{JobID: "j1", RequiredSkills: []string{"docker", "k8s", "aws", "go"}}, now).
		AddJDAnalysis(placement.JDAnalysis{JobID: "elsewhere", RequiredSkills: []string{"rust"}}, now)
	u.LastActivity = now.Add(-4 * day)

	got := Generate(u, now)
	require.Len(t, got, 5)
	assert.Equal(t, []placement.NotificationType{
		placement.NotificationNewJobMatch,
		placement.NotificationLowResumeScore,
		placement.NotificationLowJDAlignment,
		placement.NotificationInterview,
		placement.NotificationInactivityAlert,
	}, types(got))

	assert.Equal(t, "2 high-match jobs (80%+) found. Start applying!", got[0].Message)
	assert.Equal(t, "Your resume ATS score is 60%. Improve it to increase interview chances", got[1].Message)
	assert.Equal(t, "1 analyzed jobs have low resume alignment. Consider learning key skills", got[2].Message)
	assert.Equal(t, "You have 1 interview(s) in the next 24 hours. Time to prepare!", got[3].Message)
	assert.Equal(t, "No activity for 4 days. Apply to new jobs or practice to stay on track", got[4].Message)

	for i, n := range got {
		assert.Equal(t, fmt.Sprintf("notif-%d-%d", now.UnixMilli(), i), n.ID)
		assert.Equal(t, Titles[n.Type], n.Title)
		assert.False(t, n.Read)
		assert.Equal(t, now, n.CreatedAt)
	}
}

func TestGenerateQuietUser(t *testing.T) {
	u := withResume(placement.NewUser("u1", "", "", now), 85, "Go")
	past := now.Add(-time.Hour)
	later := now.Add(25 * time.Hour)
	u = u.AddApplication(placement.Application{ID: "a", InterviewDate: &past}, now).
		AddApplication(placement.Application{ID: "b", InterviewDate: &later}, now)
	assert.Empty(t, Generate(u, now))
}

func TestGenerateSkipsInactivityWithoutHistory(t *testing.T) {
	u := withResume(placement.NewUser("u1", "", "", now), 85)
	u.LastActivity = time.Time{}
	assert.Empty(t, Generate(u, now))
}

func TestShouldNotify(t *testing.T) {
	base := placement.NewUser("u1", "", "", now)
	at := func(h, m int) time.Time { return time.Date(2026, time.June, 1, h, m, 0, 0, time.UTC) }

	tests := []struct {
		name    string
		pref    string
		enabled bool
		now     time.Time
		want    bool
	}{
		{name: "inside window", pref: "09:00", enabled: true, now: at(10, 30), want: true},
		{name: "window edge", pref: "09:00", enabled: true, now: at(7, 0), want: true},
		{name: "outside window", pref: "09:00", enabled: true, now: at(11, 1), want: false},
		{name: "disabled", pref: "09:00", enabled: false, now: at(9, 0), want: false},
		{name: "malformed", pref: "nine", enabled: true, now: at(9, 0), want: false},
		{name: "same day only", pref: "23:30", enabled: true, now: at(0, 30), want: false},
		{name: "late evening", pref: "23:30", enabled: true, now: at(22, 0), want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := base
			u.Preferences.NotificationTime = tt.pref
			u.Preferences.NotificationsEnabled = tt.enabled
			assert.Equal(t, tt.want, ShouldNotify(u, tt.now))
		})
	}
}

func TestPrioritize(t *testing.T) {
	in := []placement.Notification{
		{ID: "1", Type: placement.NotificationNewJobMatch},
		{ID: "2", Type: "custom"},
		{ID: "3", Type: placement.NotificationInactivityAlert},
		{ID: "4", Type: placement.NotificationInterview},
		{ID: "5", Type: placement.NotificationLowJDAlignment},
		{ID: "6", Type: placement.NotificationLowResumeScore},
	}
	got := Prioritize(in)

	var ids []string
	for _, n := range got {
		ids = append(ids, n.ID)
	}
	assert.Equal(t, []string{"4", "6", "5", "3", "1", "2"}, ids)
	assert.Equal(t, "1", in[0].ID)
}

func TestClearOld(t *testing.T) {
	ns := []placement.Notification{
		{ID: "old", CreatedAt: now.Add(-8 * day)},
		{ID: "edge", CreatedAt: now.Add(-7 * day)},
		{ID: "fresh", CreatedAt: now.Add(-6 * day)},
	}
	got := ClearOld(ns, DefaultRetentionDays, now)
	require.Len(t, got, 1)
	assert.Equal(t, "fresh", got[0].ID)
	assert.Len(t, ClearOld(ns, 30, now), 3)
}

func TestClearOldDefaultsRetention(t *testing.T) {
	ns := []placement.Notification{
		{ID: "old", CreatedAt: now.Add(-8 * day)},
		{ID: "fresh", CreatedAt: now.Add(-6 * day)},
	}
	for _, days := range []int{0, -3} {
		got := ClearOld(ns, days, now)
		require.Len(t, got, 1, "days=%d", days)
		assert.Equal(t, "fresh", got[0].ID)
	}
}

func TestNudges(t *testing.T) {
	u := placement.NewUser("u1", "", "", now)
	u.ReadinessScore.OverallScore = 10
	assert.Equal(t, []string{
		"Start by uploading or creating your first resume",
		"Save 5-10 job postings that match your target role",
		"Apply to your first job today",
		"Solve your first practice problem",
	}, Nudges(u))

	u.ReadinessScore.OverallScore = 90
	u.Applications = []placement.Application{{ID: "a"}}
	u.PracticeProblems = []placement.PracticeProblem{{Solved: true}}
	assert.Equal(t, []string{"You're ready! Keep applying and practicing", "Help others in your network"}, Nudges(u))

	u.ReadinessScore.OverallScore = 60
	assert.Equal(t, []string{"Start applying to 3-5 strong job matches", "Practice mock interviews to prepare"}, Nudges(u))
}

func TestInterventionAlerts(t *testing.T) {
	u := placement.NewUser("u1", "", "", now)
	for i := 0; i < 4; i++ {
		id := fmt.Sprintf("j%d", i)
		u = u.AddJob(placement.Job{ID: id}, now).SaveJob(id, now)
	}
	u.LastActivity = now.Add(-8 * day)

	assert.Equal(t, []string{
		"CRITICAL: Resume needs urgent improvements",
		"You've saved jobs but haven't applied - start applying now",
		"No activity for 8 days - stay active",
	}, InterventionAlerts(u, now))
}

func TestInterventionAlertsSkillGaps(t *testing.T) {
	u := withResume(placement.NewUser("u1", "", "", now), 80, "Go")
	var skills []string
	for i := 0; i < 9; i++ {
		skills = append(skills, fmt.Sprintf("skill%d", i))
	}
	u = u.AddJDAnalysis(placement.JDAnalysis{JobID: "a", RequiredSkills: skills}, now).
		AddJDAnalysis(placement.JDAnalysis{JobID: "b", RequiredSkills: skills}, now)

	assert.Equal(t, []string{"WARNING: 9 critical skills gaps identified"}, InterventionAlerts(u, now))
}
