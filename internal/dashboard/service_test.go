package dashboard

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"placement-backend/internal/jobs"
	"placement-backend/internal/placement"
	"placement-backend/internal/queue"
	"placement-backend/internal/readiness"
	"placement-backend/internal/shared/storage/object/local"
	"placement-backend/internal/state"
	"placement-backend/resume/model"
	"placement-backend/resume/render"
)

var now = time.Date(2026, time.April, 20, 9, 30, 0, 0, time.UTC)

const reactJD = "We need a Senior React Developer with 5+ years experience in React, AWS, Docker. Requirements: must know React, AWS."

type fakeQueue struct {
	mu   sync.Mutex
	sent []queue.Message
	err  error
}

func (f *fakeQueue) Send(_ context.Context, msg queue.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

func newTestService(t *testing.T, opts Options) (*Service, *state.MemoryStore) {
	t.Helper()
	store := state.NewMemoryStore()
	opts.Store = store
	if opts.Now == nil {
		opts.Now = func() time.Time { return now }
	}
	return NewService(opts), store
}

func TestProfileForNewUserIsNotPersisted(t *testing.T) {
	svc, store := newTestService(t, Options{})
	ctx := context.Background()

	u, err := svc.Profile(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)
	assert.True(t, u.Preferences.NotificationsEnabled)

	_, err = store.Get(ctx, "u1")
	assert.True(t, errors.Is(err, state.ErrNotFound))
}

func TestEnsureUserKeepsExistingProfile(t *testing.T) {
	svc, _ := newTestService(t, Options{})
	ctx := context.Background()

	first, err := svc.EnsureUser(ctx, "u1", "Ada", "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Ada", first.Name)

	again, err := svc.EnsureUser(ctx, "u1", "Someone Else", "other@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Ada", again.Name)
	assert.Equal(t, "ada@example.com", again.Email)
}

func TestUpdateProfileTouchesActivity(t *testing.T) {
	later := now.Add(time.Hour)
	clock := now
	svc, _ := newTestService(t, Options{Now: func() time.Time { return clock }})
	ctx := context.Background()

	_, err := svc.EnsureUser(ctx, "u1", "Ada", "")
	require.NoError(t, err)
	clock = later

	u, err := svc.UpdateProfile(ctx, "u1", placement.Profile{TargetRole: "Backend Engineer", TargetCompanies: []string{"Acme"}})
	require.NoError(t, err)
	assert.Equal(t, "Ada", u.Name)
	assert.Equal(t, "Backend Engineer", u.TargetRole)
	assert.Equal(t, later, u.LastActivity)
}

func TestAddJobScoresAgainstResume(t *testing.T) {
	svc, _ := newTestService(t, Options{})
	ctx := context.Background()

	_, err := svc.AddJob(ctx, "u1", JobInput{Title: "  "})
	assert.True(t, errors.Is(err, ErrInvalidInput))

	_, err = svc.CreateSampleResume(ctx, "u1")
	require.NoError(t, err)
	job, err := svc.AddJob(ctx, "u1", JobInput{Title: "React Developer", Requirements: []string{"React"}})
	require.NoError(t, err)
	assert.NotEmpty(t, job.ID)
	assert.Equal(t, now, job.PostedDate)
	assert.Greater(t, job.MatchScore, 0)

	list, err := svc.ListJobs(ctx, "u1", jobs.Filter{Keywords: []string{"react"}})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, job.ID, list[0].ID)
}

func TestSaveJobRunsFlowInline(t *testing.T) {
	svc, store := newTestService(t, Options{})
	ctx := context.Background()

	resume, err := svc.CreateSampleResume(ctx, "u1")
	require.NoError(t, err)
	job, err := svc.AddJob(ctx, "u1", JobInput{Title: "Senior React Developer", Description: reactJD})
	require.NoError(t, err)

	res, err := svc.SaveJob(ctx, "u1", job.ID)
	require.NoError(t, err)
	assert.False(t, res.Queued)
	assert.True(t, res.Job.Saved)
	require.NotNil(t, res.Flow)
	assert.Equal(t, 100, res.Flow.AlignmentScore)

	u, err := store.Get(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, u.SavedJobs, 1)

	analysis, ok := u.JDAnalyses[job.ID]
	require.True(t, ok)
	assert.NotEmpty(t, analysis.ID)
	assert.Equal(t, job.ID, analysis.JobID)
	assert.Equal(t, now, analysis.AnalysisDate)

	current, ok := u.CurrentResume()
	require.True(t, ok)
	assert.Equal(t, resume.ID, current.ID)
	assert.Contains(t, current.Skills(), "know react")
	assert.Equal(t, res.Flow.OptimizedResume.ATSScore, current.ATSScore)
	assert.Equal(t, readiness.Calculate(u), u.ReadinessScore)
}

func TestSaveJobWithoutResumeSkipsFlow(t *testing.T) {
	svc, store := newTestService(t, Options{})
	ctx := context.Background()

	job, err := svc.AddJob(ctx, "u1", JobInput{Title: "Go Developer", Description: "Requirements: Go"})
	require.NoError(t, err)

	res, err := svc.SaveJob(ctx, "u1", job.ID)
	require.NoError(t, err)
	assert.True(t, res.Skipped)
	assert.Nil(t, res.Flow)

	u, err := store.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, u.SavedJobs, 1)
	assert.Empty(t, u.JDAnalyses)
}

func TestSaveJobEnqueuesWhenQueueConfigured(t *testing.T) {
	q := &fakeQueue{}
	svc, store := newTestService(t, Options{Queue: q})
	ctx := WithRequestID(context.Background(), "req-1")

	_, err := svc.CreateSampleResume(ctx, "u1")
	require.NoError(t, err)
	job, err := svc.AddJob(ctx, "u1", JobInput{Title: "Senior React Developer", Description: reactJD})
	require.NoError(t, err)

	res, err := svc.SaveJob(ctx, "u1", job.ID)
	require.NoError(t, err)
	assert.True(t, res.Queued)
	assert.Nil(t, res.Flow)

	require.Len(t, q.sent, 1)
	assert.Equal(t, queue.NewJobSaved("u1", job.ID, "req-1", now), q.sent[0])

	u, err := store.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, u.JDAnalyses, "flow runs in the worker")

	_, err = svc.ProcessJobSaved(ctx, "u1", job.ID)
	require.NoError(t, err)
	u, err = store.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Contains(t, u.JDAnalyses, job.ID)
}

func TestSaveJobErrors(t *testing.T) {
	q := &fakeQueue{err: errors.New("broker down")}
	svc, _ := newTestService(t, Options{Queue: q})
	ctx := context.Background()

	_, err := svc.SaveJob(ctx, "u1", "missing")
	assert.True(t, errors.Is(err, ErrNotFound))

	job, err := svc.AddJob(ctx, "u1", JobInput{Title: "Go Developer"})
	require.NoError(t, err)
	_, err = svc.SaveJob(ctx, "u1", job.ID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker down")
}

func TestProcessJobSavedErrors(t *testing.T) {
	svc, _ := newTestService(t, Options{})
	ctx := context.Background()

	job, err := svc.AddJob(ctx, "u1", JobInput{Title: "Go Developer"})
	require.NoError(t, err)

	_, err = svc.ProcessJobSaved(ctx, "u1", job.ID)
	assert.True(t, errors.Is(err, ErrNoCurrentResume))

	_, err = svc.ProcessJobSaved(ctx, "u1", "missing")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestUnsaveJob(t *testing.T) {
	svc, _ := newTestService(t, Options{})
	ctx := context.Background()

	job, err := svc.AddJob(ctx, "u1", JobInput{Title: "Go Developer"})
	require.NoError(t, err)
	_, err = svc.SaveJob(ctx, "u1", job.ID)
	require.NoError(t, err)

	got, err := svc.UnsaveJob(ctx, "u1", job.ID)
	require.NoError(t, err)
	assert.False(t, got.Saved)

	_, err = svc.UnsaveJob(ctx, "u1", "missing")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestAnalyzeJD(t *testing.T) {
	svc, store := newTestService(t, Options{})
	ctx := context.Background()

	_, err := svc.AnalyzeJD(ctx, "u1", AnalyzeInput{Text: " "})
	assert.True(t, errors.Is(err, ErrInvalidInput))
	_, err = svc.AnalyzeJD(ctx, "u1", AnalyzeInput{Text: reactJD, JobID: "missing"})
	assert.True(t, errors.Is(err, ErrNotFound))

	adhoc, err := svc.AnalyzeJD(ctx, "u1", AnalyzeInput{Text: reactJD, Title: "Senior React Developer"})
	require.NoError(t, err)
	assert.NotEmpty(t, adhoc.ID)
	assert.Equal(t, placement.DifficultyHard, adhoc.DifficultyRating)
	assert.Empty(t, adhoc.MissingSkills)
	u, err := store.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, u.JDAnalyses, "analyses without a job are not kept")

	job, err := svc.AddJob(ctx, "u1", JobInput{Title: "Senior React Developer"})
	require.NoError(t, err)
	stored, err := svc.AnalyzeJD(ctx, "u1", AnalyzeInput{Text: reactJD, JobID: job.ID})
	require.NoError(t, err)

	got, err := svc.JDAnalysis(ctx, "u1", job.ID)
	require.NoError(t, err)
	assert.Equal(t, stored.ID, got.ID)
	assert.Equal(t, now, got.AnalysisDate)

	cmp, err := svc.CompareJD(ctx, "u1", job.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, cmp.AlignmentScore)
	assert.NotEmpty(t, cmp.MissingSkills)

	insights, err := svc.JDInsights(ctx, "u1", job.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, insights)

	_, err = svc.JDInsights(ctx, "u1", "missing")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestAnalyzeJDFile(t *testing.T) {
	ctx := context.Background()

	t.Run("in memory", func(t *testing.T) {
		svc, _ := newTestService(t, Options{})
		a, err := svc.AnalyzeJDFile(ctx, "u1", "jd.txt", strings.NewReader(reactJD), "Senior React Developer", "")
		require.NoError(t, err)
		assert.Equal(t, placement.DifficultyHard, a.DifficultyRating)
	})

	t.Run("object store", func(t *testing.T) {
		svc, _ := newTestService(t, Options{Objects: local.New(t.TempDir())})
		a, err := svc.AnalyzeJDFile(ctx, "u1", "jd.txt", strings.NewReader(reactJD), "Senior React Developer", "")
		require.NoError(t, err)
		assert.NotEmpty(t, a.RequiredSkills)
	})

	t.Run("empty", func(t *testing.T) {
		svc, _ := newTestService(t, Options{})
		_, err := svc.AnalyzeJDFile(ctx, "u1", "jd.txt", strings.NewReader(""), "", "")
		assert.True(t, errors.Is(err, ErrInvalidInput))
	})

	t.Run("unsupported", func(t *testing.T) {
		svc, _ := newTestService(t, Options{})
		_, err := svc.AnalyzeJDFile(ctx, "u1", "jd.png", strings.NewReader("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), "", "")
		assert.True(t, errors.Is(err, ErrInvalidInput))
	})
}

func TestCreateResume(t *testing.T) {
	svc, store := newTestService(t, Options{})
	ctx := context.Background()

	_, err := svc.CreateResume(ctx, "u1", model.Resume{Template: "unknown"})
	assert.True(t, errors.Is(err, ErrInvalidInput))

	first, err := svc.CreateSampleResume(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 90, first.ATSScore)
	assert.Equal(t, now, first.LastUpdated)

	second, err := svc.CreateResume(ctx, "u1", model.Resume{ID: "r2", Title: "Short"})
	require.NoError(t, err)
	assert.Equal(t, "r2", second.ID)

	_, err = svc.CreateResume(ctx, "u1", model.Resume{ID: "r2"})
	assert.True(t, errors.Is(err, ErrInvalidInput))

	u, err := store.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, first.ID, u.CurrentResumeID)
	assert.Len(t, u.Resumes, 2)

	_, err = svc.SetCurrentResume(ctx, "u1", "missing")
	assert.True(t, errors.Is(err, ErrNotFound))
	_, err = svc.SetCurrentResume(ctx, "u1", "r2")
	require.NoError(t, err)
	u, err = store.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "r2", u.CurrentResumeID)
}

func TestScoreAndOptimizeResume(t *testing.T) {
	svc, store := newTestService(t, Options{})
	ctx := context.Background()

	r, err := svc.CreateSampleResume(ctx, "u1")
	require.NoError(t, err)

	report, err := svc.ScoreResume(ctx, "u1", r.ID)
	require.NoError(t, err)
	assert.Equal(t, 90, report.Score)
	assert.NotEmpty(t, report.Suggestions)

	_, err = svc.ScoreResume(ctx, "u1", "missing")
	assert.True(t, errors.Is(err, ErrNotFound))

	_, err = svc.OptimizeResume(ctx, "u1", r.ID, []string{" ", ""})
	assert.True(t, errors.Is(err, ErrInvalidInput))

	optimized, err := svc.OptimizeResume(ctx, "u1", r.ID, []string{"kubernetes"})
	require.NoError(t, err)
	assert.Contains(t, optimized.Skills(), "kubernetes")

	stored, err := svc.Resume(ctx, "u1", r.ID)
	require.NoError(t, err)
	assert.Contains(t, stored.Skills(), "kubernetes")

	u, err := store.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, u.Resumes, 1)
}

func TestResumeTextAndExport(t *testing.T) {
	ctx := context.Background()

	svc, _ := newTestService(t, Options{})
	r, err := svc.CreateSampleResume(ctx, "u1")
	require.NoError(t, err)

	text, err := svc.ResumeText(ctx, "u1", r.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, text)

	_, err = svc.ExportResume(ctx, "u1", r.ID, "")
	assert.True(t, errors.Is(err, ErrStoreUnavailable))
	_, err = svc.ExportResume(ctx, "u1", r.ID, "pdf")
	assert.True(t, errors.Is(err, ErrInvalidInput))

	withStore, _ := newTestService(t, Options{Objects: local.New(t.TempDir())})
	r, err = withStore.CreateSampleResume(ctx, "u1")
	require.NoError(t, err)
	export, err := withStore.ExportResume(ctx, "u1", r.ID, "")
	require.NoError(t, err)
	assert.Equal(t, r.ID, export.ResumeID)
	assert.Equal(t, int64(len(text)), export.SizeBytes)
	assert.True(t, strings.HasSuffix(export.Key, ".txt"))
	assert.Contains(t, export.Key, "/resume-exports/")
	assert.Equal(t, "text/plain; charset=utf-8", export.MimeType)

	doc, err := withStore.ExportResume(ctx, "u1", r.ID, "DOCX")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(doc.Key, ".docx"))
	assert.Equal(t, render.MimeDOCX, doc.MimeType)
	assert.Positive(t, doc.SizeBytes)
}

func TestApplications(t *testing.T) {
	svc, _ := newTestService(t, Options{StalledDays: 14})
	ctx := context.Background()

	_, err := svc.CreateApplication(ctx, "u1", ApplicationInput{JobID: "missing"})
	assert.True(t, errors.Is(err, ErrNotFound))

	job, err := svc.AddJob(ctx, "u1", JobInput{Title: "Go Developer"})
	require.NoError(t, err)
	_, err = svc.CreateApplication(ctx, "u1", ApplicationInput{JobID: job.ID, Stage: "ghosted"})
	assert.True(t, errors.Is(err, ErrInvalidInput))
	_, err = svc.CreateApplication(ctx, "u1", ApplicationInput{JobID: job.ID, ResumeID: "missing"})
	assert.True(t, errors.Is(err, ErrNotFound))

	app, err := svc.CreateApplication(ctx, "u1", ApplicationInput{JobID: job.ID, Notes: "referral"})
	require.NoError(t, err)
	assert.Equal(t, placement.StageApplied, app.Stage)
	assert.Equal(t, now, app.AppliedDate)

	at := now.Add(48 * time.Hour)
	moved, err := svc.UpdateApplicationStage(ctx, "u1", app.ID, StageInput{
		Stage:         string(placement.StageInterviewScheduled),
		InterviewDate: &at,
		InterviewType: placement.InterviewTechnical,
	})
	require.NoError(t, err)
	assert.Equal(t, placement.StageInterviewScheduled, moved.Stage)
	require.NotNil(t, moved.InterviewDate)
	assert.Equal(t, at, *moved.InterviewDate)

	_, err = svc.UpdateApplicationStage(ctx, "u1", "missing", StageInput{Stage: string(placement.StageOffer)})
	assert.True(t, errors.Is(err, ErrNotFound))
	_, err = svc.UpdateApplicationStage(ctx, "u1", app.ID, StageInput{Stage: "nope"})
	assert.True(t, errors.Is(err, ErrInvalidInput))

	stalled, err := svc.Stalled(ctx, "u1", 0)
	require.NoError(t, err)
	assert.Empty(t, stalled)

	health, err := svc.PipelineHealth(ctx, "u1")
	require.NoError(t, err)
	assert.NotEmpty(t, health.Status)

	steps, err := svc.NextSteps(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"Prepare for 1 upcoming interview(s)"}, steps.Immediate)
}

func TestReadinessPersists(t *testing.T) {
	svc, store := newTestService(t, Options{})
	ctx := context.Background()

	_, err := svc.CreateSampleResume(ctx, "u1")
	require.NoError(t, err)

	score, err := svc.Readiness(ctx, "u1")
	require.NoError(t, err)
	u, err := store.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, score, u.ReadinessScore)
	assert.Equal(t, 90, score.ResumeATSScore)

	report, err := svc.ReadinessReport(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, score.OverallScore, report.Score)
}

func TestGenerateAndReadNotifications(t *testing.T) {
	svc, store := newTestService(t, Options{})
	ctx := context.Background()

	u := placement.NewUser("u1", "Ada", "", now.Add(-5*24*time.Hour))
	require.NoError(t, store.Put(ctx, u))

	generated, err := svc.GenerateNotifications(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, generated, 1)
	assert.Equal(t, placement.NotificationInactivityAlert, generated[0].Type)

	unread, err := svc.Notifications(ctx, "u1", true)
	require.NoError(t, err)
	require.Len(t, unread, 1)

	require.NoError(t, svc.MarkNotificationRead(ctx, "u1", generated[0].ID))
	unread, err = svc.Notifications(ctx, "u1", true)
	require.NoError(t, err)
	assert.Empty(t, unread)

	all, err := svc.Notifications(ctx, "u1", false)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	err = svc.MarkNotificationRead(ctx, "u1", "missing")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestSweepNotifications(t *testing.T) {
	clock := now
	svc, store := newTestService(t, Options{Now: func() time.Time { return clock }, RetentionDays: 7})
	ctx := context.Background()

	u := placement.NewUser("u1", "Ada", "", now.Add(-5*24*time.Hour))
	u = u.AddNotification(placement.Notification{ID: "old", Type: placement.NotificationNewJobMatch, CreatedAt: now.Add(-10 * 24 * time.Hour)}, u.UpdatedAt)
	require.NoError(t, store.Put(ctx, u))

	added, err := svc.SweepNotifications(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, added)

	got, err := store.Get(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, got.Notifications, 1)
	assert.Equal(t, placement.NotificationInactivityAlert, got.Notifications[0].Type)
	assert.Equal(t, now.Add(-5*24*time.Hour), got.LastActivity, "sweeps are not user activity")

	clock = now.Add(time.Hour)
	added, err = svc.SweepNotifications(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 0, added, "same type within a day is not repeated")

	clock = now.Add(6 * time.Hour)
	added, err = svc.SweepNotifications(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 0, added, "outside the delivery window")
}

func TestDashboardAndNudges(t *testing.T) {
	svc, _ := newTestService(t, Options{})
	ctx := context.Background()

	_, err := svc.CreateSampleResume(ctx, "u1")
	require.NoError(t, err)
	summary, err := svc.Dashboard(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 90, summary.ResumeATSScore)

	nudges, err := svc.Nudges(ctx, "u1")
	require.NoError(t, err)
	assert.NotNil(t, nudges)

	_, err = svc.Alerts(ctx, "u1")
	require.NoError(t, err)

	ids, err := svc.ListUserIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"u1"}, ids)
}

func TestConcurrentUpdatesAreSerialized(t *testing.T) {
	svc, store := newTestService(t, Options{})
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.AddJob(ctx, "u1", JobInput{Title: "Go Developer"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	u, err := store.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, u.JobMatches, 20)
}

// interleavedStore runs another writer right before the wrapped service's next Put.
type interleavedStore struct {
	state.Store
	beforePut func()
}

func (s *interleavedStore) Put(ctx context.Context, u placement.User) error {
	if f := s.beforePut; f != nil {
		s.beforePut = nil
		f()
	}
	return s.Store.Put(ctx, u)
}

func TestWorkerAndAPIWritesAreBothKept(t *testing.T) {
	ctx := context.Background()
	shared := state.NewMemoryStore()
	clock := func() time.Time { return now }
	api := NewService(Options{Store: shared, Now: clock})

	_, err := api.CreateSampleResume(ctx, "u1")
	require.NoError(t, err)
	job, err := api.AddJob(ctx, "u1", JobInput{Title: "Senior React Developer", Description: reactJD})
	require.NoError(t, err)

	racing := &interleavedStore{Store: shared}
	worker := NewService(Options{Store: racing, Now: clock})
	racing.beforePut = func() {
		_, err := api.CreateApplication(ctx, "u1", ApplicationInput{JobID: job.ID})
		require.NoError(t, err)
	}

	_, err = worker.ProcessJobSaved(ctx, "u1", job.ID)
	require.NoError(t, err)

	u, err := shared.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, u.Applications, 1, "application written by the API survives")
	assert.Contains(t, u.JDAnalyses, job.ID, "analysis written by the worker survives")
	assert.Equal(t, readiness.Calculate(u), u.ReadinessScore)
}

func TestSweepCountsOnlyStoredNotifications(t *testing.T) {
	ctx := context.Background()
	shared := state.NewMemoryStore()
	u := placement.NewUser("u1", "Ada", "", now.Add(-5*24*time.Hour))
	require.NoError(t, shared.Put(ctx, u))

	racing := &interleavedStore{Store: shared}
	racing.beforePut = func() {
		_, err := state.Update(ctx, shared, "u1", func(u placement.User) (placement.User, error) {
			return u.AddApplication(placement.Application{ID: "a1", JobID: "j1", Stage: placement.StageApplied}, now), nil
		})
		require.NoError(t, err)
	}
	svc := NewService(Options{Store: racing, Now: func() time.Time { return now }})

	added, err := svc.SweepNotifications(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, added)

	got, err := shared.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, got.Notifications, 1)
	assert.Len(t, got.Applications, 1)
}
