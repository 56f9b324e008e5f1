package dashboard

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"placement-backend/internal/jobs"
	"placement-backend/internal/placement"
	"placement-backend/internal/shared/server/middleware"
	"placement-backend/internal/shared/server/respond"
	"placement-backend/resume/model"
)

const maxUploadSize = 10 << 20 // 10MB

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches the dashboard routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/me", h.me)
	rg.GET("/profile", h.profile)
	rg.PUT("/profile", h.updateProfile)
	rg.GET("/dashboard", h.dashboard)

	rg.POST("/jobs", h.addJob)
	rg.GET("/jobs", h.listJobs)
	rg.GET("/jobs/top", h.topJobs)
	rg.GET("/jobs/trends", h.jobTrends)
	rg.POST("/jobs/:id/save", h.saveJob)
	rg.DELETE("/jobs/:id/save", h.unsaveJob)

	rg.POST("/jd/analyze", h.analyzeJD)
	rg.GET("/jd/:jobId", h.jdAnalysis)
	rg.GET("/jd/:jobId/compare", h.compareJD)
	rg.GET("/jd/:jobId/insights", h.jdInsights)

	rg.POST("/resumes", h.createResume)
	rg.POST("/resumes/sample", h.createSampleResume)
	rg.GET("/resumes/:id", h.resume)
	rg.POST("/resumes/:id/current", h.setCurrentResume)
	rg.GET("/resumes/:id/ats", h.scoreResume)
	rg.POST("/resumes/:id/optimize", h.optimizeResume)
	rg.GET("/resumes/:id/text", h.resumeText)
	rg.POST("/resumes/:id/export", h.exportResume)

	rg.POST("/applications", h.createApplication)
	rg.PATCH("/applications/:id/stage", h.updateStage)
	rg.GET("/applications/momentum", h.momentum)
	rg.GET("/applications/stalled", h.stalled)
	rg.GET("/applications/health", h.pipelineHealth)
	rg.GET("/applications/next-steps", h.nextSteps)

	rg.GET("/readiness", h.readiness)
	rg.GET("/readiness/report", h.readinessReport)

	rg.GET("/notifications", h.notifications)
	rg.POST("/notifications/generate", h.generateNotifications)
	rg.POST("/notifications/:id/read", h.markRead)
	rg.GET("/nudges", h.nudges)
	rg.GET("/alerts", h.alerts)
}

func requestContext(c *gin.Context) context.Context {
	return WithRequestID(c.Request.Context(), middleware.RequestIDFromContext(c))
}

func writeError(c *gin.Context, err error, message string) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, err.Error(), nil)
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, respond.CodeNotFound, err.Error(), nil)
	case errors.Is(err, ErrNoCurrentResume):
		respond.Error(c, http.StatusConflict, respond.CodeConflict, err.Error(), nil)
	case errors.Is(err, ErrStoreUnavailable):
		respond.Error(c, http.StatusServiceUnavailable, respond.CodeUnavailable, err.Error(), nil)
	default:
		respond.Error(c, http.StatusInternalServerError, respond.CodeInternal, message, nil)
	}
}

// me reports the caller's identity with a short profile summary. Token claims
// win over stored fields.
func (h *Handler) me(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	if userID == "" {
		respond.Error(c, http.StatusUnauthorized, respond.CodeUnauthorized, "missing or invalid token", nil)
		return
	}
	u, err := h.Svc.Profile(requestContext(c), userID)
	if err != nil {
		writeError(c, err, "failed to load profile")
		return
	}

	response := gin.H{
		"userId":              userID,
		"isGuest":             middleware.IsGuestFromContext(c),
		"targetRole":          u.TargetRole,
		"unreadNotifications": len(u.UnreadNotifications()),
	}
	name, email := u.Name, u.Email
	if v := middleware.UserNameFromContext(c); v != "" {
		name = v
	}
	if v := middleware.UserEmailFromContext(c); v != "" {
		email = v
	}
	if name != "" {
		response["name"] = name
	}
	if email != "" {
		response["email"] = email
	}
	if picture := middleware.UserPictureFromContext(c); picture != "" {
		response["picture"] = picture
	}
	if u.CurrentResumeID != "" {
		response["currentResumeId"] = u.CurrentResumeID
	}
	respond.OK(c, response)
}

func (h *Handler) profile(c *gin.Context) {
	u, err := h.Svc.Profile(requestContext(c), middleware.UserIDFromContext(c))
	if err != nil {
		writeError(c, err, "failed to load profile")
		return
	}
	respond.OK(c, u)
}

func (h *Handler) updateProfile(c *gin.Context) {
	var req placement.Profile
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "invalid request body", nil)
		return
	}
	u, err := h.Svc.UpdateProfile(requestContext(c), middleware.UserIDFromContext(c), req)
	if err != nil {
		writeError(c, err, "failed to update profile")
		return
	}
	respond.OK(c, u)
}

func (h *Handler) dashboard(c *gin.Context) {
	summary, err := h.Svc.Dashboard(requestContext(c), middleware.UserIDFromContext(c))
	if err != nil {
		writeError(c, err, "failed to load dashboard")
		return
	}
	respond.OK(c, summary)
}

func (h *Handler) addJob(c *gin.Context) {
	var req JobInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "invalid request body", nil)
		return
	}
	job, err := h.Svc.AddJob(requestContext(c), middleware.UserIDFromContext(c), req)
	if err != nil {
		writeError(c, err, "failed to add job")
		return
	}
	respond.Created(c, job)
}

func (h *Handler) listJobs(c *gin.Context) {
	f := jobs.Filter{
		Title:    strings.TrimSpace(c.Query("title")),
		Location: strings.TrimSpace(c.Query("location")),
	}
	for _, raw := range c.QueryArray("keywords") {
		for _, k := range strings.Split(raw, ",") {
			if k = strings.TrimSpace(k); k != "" {
				f.Keywords = append(f.Keywords, k)
			}
		}
	}
	list, err := h.Svc.ListJobs(requestContext(c), middleware.UserIDFromContext(c), f)
	if err != nil {
		writeError(c, err, "failed to list jobs")
		return
	}
	respond.Items(c, list)
}

func (h *Handler) topJobs(c *gin.Context) {
	n, ok := intQuery(c, "n")
	if !ok {
		return
	}
	list, err := h.Svc.TopJobs(requestContext(c), middleware.UserIDFromContext(c), n)
	if err != nil {
		writeError(c, err, "failed to rank jobs")
		return
	}
	respond.Items(c, list)
}

func (h *Handler) jobTrends(c *gin.Context) {
	trends, err := h.Svc.JobTrends(requestContext(c), middleware.UserIDFromContext(c))
	if err != nil {
		writeError(c, err, "failed to analyze trends")
		return
	}
	respond.OK(c, trends)
}

func (h *Handler) saveJob(c *gin.Context) {
	res, err := h.Svc.SaveJob(requestContext(c), middleware.UserIDFromContext(c), c.Param("id"))
	if err != nil {
		writeError(c, err, "failed to save job")
		return
	}
	if res.Queued {
		respond.Accepted(c, res)
		return
	}
	respond.OK(c, res)
}

func (h *Handler) unsaveJob(c *gin.Context) {
	job, err := h.Svc.UnsaveJob(requestContext(c), middleware.UserIDFromContext(c), c.Param("id"))
	if err != nil {
		writeError(c, err, "failed to unsave job")
		return
	}
	respond.OK(c, job)
}

func (h *Handler) analyzeJD(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		h.analyzeJDFile(c, userID)
		return
	}

	var req AnalyzeInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "invalid request body", nil)
		return
	}
	analysis, err := h.Svc.AnalyzeJD(requestContext(c), userID, req)
	if err != nil {
		writeError(c, err, "failed to analyze job description")
		return
	}
	respond.OK(c, analysis)
}

func (h *Handler) analyzeJDFile(c *gin.Context, userID string) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadSize)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "file is required", nil)
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "unable to read file", nil)
		return
	}
	defer file.Close()

	analysis, err := h.Svc.AnalyzeJDFile(requestContext(c), userID, fileHeader.Filename, file, c.PostForm("title"), c.PostForm("jobId"))
	if err != nil {
		writeError(c, err, "failed to analyze job description")
		return
	}
	respond.OK(c, analysis)
}

func (h *Handler) jdAnalysis(c *gin.Context) {
	a, err := h.Svc.JDAnalysis(requestContext(c), middleware.UserIDFromContext(c), c.Param("jobId"))
	if err != nil {
		writeError(c, err, "failed to load analysis")
		return
	}
	respond.OK(c, a)
}

func (h *Handler) compareJD(c *gin.Context) {
	cmp, err := h.Svc.CompareJD(requestContext(c), middleware.UserIDFromContext(c), c.Param("jobId"))
	if err != nil {
		writeError(c, err, "failed to compare analysis")
		return
	}
	respond.OK(c, cmp)
}

func (h *Handler) jdInsights(c *gin.Context) {
	insights, err := h.Svc.JDInsights(requestContext(c), middleware.UserIDFromContext(c), c.Param("jobId"))
	if err != nil {
		writeError(c, err, "failed to build insights")
		return
	}
	respond.OK(c, gin.H{"insights": insights})
}

func (h *Handler) createResume(c *gin.Context) {
	var req model.Resume
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "invalid request body", err.Error())
		return
	}
	r, err := h.Svc.CreateResume(requestContext(c), middleware.UserIDFromContext(c), req)
	if err != nil {
		writeError(c, err, "failed to create resume")
		return
	}
	respond.Created(c, r)
}

func (h *Handler) createSampleResume(c *gin.Context) {
	r, err := h.Svc.CreateSampleResume(requestContext(c), middleware.UserIDFromContext(c))
	if err != nil {
		writeError(c, err, "failed to create resume")
		return
	}
	respond.Created(c, r)
}

func (h *Handler) resume(c *gin.Context) {
	r, err := h.Svc.Resume(requestContext(c), middleware.UserIDFromContext(c), c.Param("id"))
	if err != nil {
		writeError(c, err, "failed to load resume")
		return
	}
	respond.OK(c, r)
}

func (h *Handler) setCurrentResume(c *gin.Context) {
	r, err := h.Svc.SetCurrentResume(requestContext(c), middleware.UserIDFromContext(c), c.Param("id"))
	if err != nil {
		writeError(c, err, "failed to set current resume")
		return
	}
	respond.OK(c, r)
}

func (h *Handler) scoreResume(c *gin.Context) {
	report, err := h.Svc.ScoreResume(requestContext(c), middleware.UserIDFromContext(c), c.Param("id"))
	if err != nil {
		writeError(c, err, "failed to score resume")
		return
	}
	respond.OK(c, report)
}

type optimizeRequest struct {
	Keywords []string `json:"keywords"`
}

func (h *Handler) optimizeResume(c *gin.Context) {
	var req optimizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "invalid request body", nil)
		return
	}
	r, err := h.Svc.OptimizeResume(requestContext(c), middleware.UserIDFromContext(c), c.Param("id"), req.Keywords)
	if err != nil {
		writeError(c, err, "failed to optimize resume")
		return
	}
	respond.OK(c, r)
}

func (h *Handler) resumeText(c *gin.Context) {
	text, err := h.Svc.ResumeText(requestContext(c), middleware.UserIDFromContext(c), c.Param("id"))
	if err != nil {
		writeError(c, err, "failed to render resume")
		return
	}
	c.String(http.StatusOK, text)
}

func (h *Handler) exportResume(c *gin.Context) {
	export, err := h.Svc.ExportResume(requestContext(c), middleware.UserIDFromContext(c), c.Param("id"), c.Query("format"))
	if err != nil {
		writeError(c, err, "failed to export resume")
		return
	}
	respond.Created(c, export)
}

func (h *Handler) createApplication(c *gin.Context) {
	var req ApplicationInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "invalid request body", nil)
		return
	}
	if strings.TrimSpace(req.JobID) == "" {
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "jobId is required", nil)
		return
	}
	app, err := h.Svc.CreateApplication(requestContext(c), middleware.UserIDFromContext(c), req)
	if err != nil {
		writeError(c, err, "failed to create application")
		return
	}
	respond.Created(c, app)
}

func (h *Handler) updateStage(c *gin.Context) {
	var req StageInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "invalid request body", nil)
		return
	}
	app, err := h.Svc.UpdateApplicationStage(requestContext(c), middleware.UserIDFromContext(c), c.Param("id"), req)
	if err != nil {
		writeError(c, err, "failed to update application")
		return
	}
	respond.OK(c, app)
}

func (h *Handler) momentum(c *gin.Context) {
	m, err := h.Svc.Momentum(requestContext(c), middleware.UserIDFromContext(c))
	if err != nil {
		writeError(c, err, "failed to analyze momentum")
		return
	}
	respond.OK(c, m)
}

func (h *Handler) stalled(c *gin.Context) {
	days, ok := intQuery(c, "days")
	if !ok {
		return
	}
	list, err := h.Svc.Stalled(requestContext(c), middleware.UserIDFromContext(c), days)
	if err != nil {
		writeError(c, err, "failed to list stalled applications")
		return
	}
	respond.Items(c, list)
}

func (h *Handler) pipelineHealth(c *gin.Context) {
	health, err := h.Svc.PipelineHealth(requestContext(c), middleware.UserIDFromContext(c))
	if err != nil {
		writeError(c, err, "failed to compute pipeline health")
		return
	}
	respond.OK(c, health)
}

func (h *Handler) nextSteps(c *gin.Context) {
	steps, err := h.Svc.NextSteps(requestContext(c), middleware.UserIDFromContext(c))
	if err != nil {
		writeError(c, err, "failed to plan next steps")
		return
	}
	respond.OK(c, steps)
}

func (h *Handler) readiness(c *gin.Context) {
	score, err := h.Svc.Readiness(requestContext(c), middleware.UserIDFromContext(c))
	if err != nil {
		writeError(c, err, "failed to compute readiness")
		return
	}
	respond.OK(c, score)
}

func (h *Handler) readinessReport(c *gin.Context) {
	report, err := h.Svc.ReadinessReport(requestContext(c), middleware.UserIDFromContext(c))
	if err != nil {
		writeError(c, err, "failed to build report")
		return
	}
	respond.OK(c, report)
}

func (h *Handler) notifications(c *gin.Context) {
	unread := c.Query("unread") == "true"
	list, err := h.Svc.Notifications(requestContext(c), middleware.UserIDFromContext(c), unread)
	if err != nil {
		writeError(c, err, "failed to list notifications")
		return
	}
	respond.Items(c, list)
}

func (h *Handler) generateNotifications(c *gin.Context) {
	list, err := h.Svc.GenerateNotifications(requestContext(c), middleware.UserIDFromContext(c))
	if err != nil {
		writeError(c, err, "failed to generate notifications")
		return
	}
	respond.Items(c, list)
}

func (h *Handler) markRead(c *gin.Context) {
	if err := h.Svc.MarkNotificationRead(requestContext(c), middleware.UserIDFromContext(c), c.Param("id")); err != nil {
		writeError(c, err, "failed to update notification")
		return
	}
	respond.NoContent(c)
}

func (h *Handler) nudges(c *gin.Context) {
	list, err := h.Svc.Nudges(requestContext(c), middleware.UserIDFromContext(c))
	if err != nil {
		writeError(c, err, "failed to build nudges")
		return
	}
	respond.Items(c, list)
}

func (h *Handler) alerts(c *gin.Context) {
	list, err := h.Svc.Alerts(requestContext(c), middleware.UserIDFromContext(c))
	if err != nil {
		writeError(c, err, "failed to build alerts")
		return
	}
	respond.Items(c, list)
}

// intQuery parses an optional integer query parameter. It writes the error
// response and returns false when the value is malformed.
func intQuery(c *gin.Context, key string) (int, bool) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return 0, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, key+" must be an integer", nil)
		return 0, false
	}
	return v, true
}
