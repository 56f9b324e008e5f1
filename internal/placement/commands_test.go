package placement

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"placement-backend/resume/model"
)

var t0 = time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC)

func TestSaveJobCopiesIntoSavedJobs(t *testing.T) {
	u := NewUser("u1", "Ada", "ada@example.com", t0)
	u = u.AddJob(Job{ID: "j1", Title: "Engineer", MatchScore: 70}, t0)

	later := t0.Add(time.Hour)
	saved := u.SaveJob("j1", later)

	require.Len(t, saved.SavedJobs, 1)
	assert.True(t, saved.SavedJobs[0].Saved)
	assert.True(t, saved.JobMatches[0].Saved)
	assert.Equal(t, later, saved.UpdatedAt)

	// original value untouched
	assert.Empty(t, u.SavedJobs)
	assert.False(t, u.JobMatches[0].Saved)

	again := saved.SaveJob("j1", later)
	assert.Len(t, again.SavedJobs, 1)
}

func TestSaveUnknownJobIsNoop(t *testing.T) {
	u := NewUser("u1", "Ada", "", t0)
	got := u.SaveJob("missing", t0.Add(time.Hour))
	assert.Equal(t, u, got)
}

func TestUnsaveJob(t *testing.T) {
	u := NewUser("u1", "Ada", "", t0).
		AddJob(Job{ID: "j1"}, t0).
		AddJob(Job{ID: "j2"}, t0).
		SaveJob("j1", t0).
		SaveJob("j2", t0)

	got := u.UnsaveJob("j1", t0)
	require.Len(t, got.SavedJobs, 1)
	assert.Equal(t, "j2", got.SavedJobs[0].ID)
	assert.False(t, got.JobMatches[0].Saved)
	assert.True(t, got.JobMatches[1].Saved)
}

func TestUpdateJobMatchScoreUpdatesSavedCopy(t *testing.T) {
	u := NewUser("u1", "", "", t0).AddJob(Job{ID: "j1"}, t0).SaveJob("j1", t0)
	got := u.UpdateJobMatchScore("j1", 88, t0)
	assert.Equal(t, 88, got.JobMatches[0].MatchScore)
	assert.Equal(t, 88, got.SavedJobs[0].MatchScore)
	assert.Equal(t, 0, u.SavedJobs[0].MatchScore)
}

func TestResumeCommands(t *testing.T) {
	r := model.Resume{ID: "r1", Sections: []model.Section{{ID: "s", Content: model.Skills{Skills: []string{"Go"}}}}}
	u := NewUser("u1", "", "", t0).AddResume(r, t0)

	assert.Nil(t, u.ResumeSkills())
	u = u.SetCurrentResume("nope", t0)
	assert.Empty(t, u.CurrentResumeID)

	u = u.SetCurrentResume("r1", t0).UpdateATSScore("r1", 64, t0)
	cur, ok := u.CurrentResume()
	require.True(t, ok)
	assert.Equal(t, 64, cur.ATSScore)
	assert.Equal(t, []string{"Go"}, u.ResumeSkills())

	r.Title = "renamed"
	u = u.UpdateResume(r, t0)
	cur, _ = u.CurrentResume()
	assert.Equal(t, "renamed", cur.Title)
}

func TestJDAnalysesKeyedByJob(t *testing.T) {
	u := NewUser("u1", "", "", t0)
	u = u.AddJDAnalysis(JDAnalysis{JobID: "b", AnalysisDate: t0}, t0)
	u = u.AddJDAnalysis(JDAnalysis{JobID: "a", AnalysisDate: t0}, t0)
	u = u.AddJDAnalysis(JDAnalysis{JobID: "c", AnalysisDate: t0.Add(-time.Hour)}, t0)

	before := u
	u = u.UpdateJDAnalysis("a", func(a JDAnalysis) JDAnalysis {
		a.ExperienceRequired = "3 years"
		return a
	}, t0)

	assert.Equal(t, "3 years", u.JDAnalyses["a"].ExperienceRequired)
	assert.Empty(t, before.JDAnalyses["a"].ExperienceRequired)

	var order []string
	for _, a := range u.Analyses() {
		order = append(order, a.JobID)
	}
	assert.Equal(t, []string{"c", "a", "b"}, order)
}

func TestApplicationStageAnyTransition(t *testing.T) {
	u := NewUser("u1", "", "", t0).AddApplication(Application{ID: "a1", Stage: StageOffer}, t0)
	u = u.UpdateApplicationStage("a1", StageSaved, t0)
	app, ok := u.ApplicationByID("a1")
	require.True(t, ok)
	assert.Equal(t, StageSaved, app.Stage)
	assert.Len(t, u.ApplicationsByStage(StageSaved), 1)
}

func TestNotificationsReadState(t *testing.T) {
	u := NewUser("u1", "", "", t0).
		AddNotification(Notification{ID: "n1"}, t0).
		AddNotification(Notification{ID: "n2"}, t0)
	u = u.MarkNotificationRead("n1", t0)
	unread := u.UnreadNotifications()
	require.Len(t, unread, 1)
	assert.Equal(t, "n2", unread[0].ID)
}

func TestParseStage(t *testing.T) {
	tests := []struct {
		in      string
		want    Stage
		wantErr bool
	}{
		{in: "applied", want: StageApplied},
		{in: " Interview-Scheduled ", want: StageInterviewScheduled},
		{in: "interview completed", want: StageInterviewCompleted},
		{in: "hired", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseStage(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
	assert.True(t, StageOffer.IsTerminal())
	assert.False(t, StageApplied.IsTerminal())
}

func TestUpdateProfile(t *testing.T) {
	u := NewUser("u1", "Ada", "ada@example.com", t0)
	companies := []string{"Acme"}
	p := Profile{
		TargetRole:      "Backend Engineer",
		TargetCompanies: companies,
		Preferences:     Preferences{Locations: []string{"Remote"}, NotificationTime: "18:00"},
	}
	later := t0.Add(time.Hour)
	got := u.UpdateProfile(p, later)

	assert.Equal(t, "Ada", got.Name, "empty name keeps existing")
	assert.Equal(t, "Backend Engineer", got.TargetRole)
	assert.Equal(t, []string{"Remote"}, got.Preferences.Locations)
	assert.Equal(t, later, got.UpdatedAt)

	companies[0] = "Changed"
	assert.Equal(t, []string{"Acme"}, got.TargetCompanies)
}

func TestScheduleInterview(t *testing.T) {
	u := NewUser("u1", "Ada", "", t0)
	u = u.AddApplication(Application{ID: "a1", Stage: StageApplied, AppliedDate: t0}, t0)
	at := t0.Add(48 * time.Hour)

	got := u.ScheduleInterview("a1", at, InterviewTechnical, t0)
	app, ok := got.ApplicationByID("a1")
	require.True(t, ok)
	require.NotNil(t, app.InterviewDate)
	assert.Equal(t, at, *app.InterviewDate)
	assert.Equal(t, InterviewTechnical, app.InterviewType)

	orig, _ := u.ApplicationByID("a1")
	assert.Nil(t, orig.InterviewDate)
}
