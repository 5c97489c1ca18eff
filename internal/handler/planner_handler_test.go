package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/study-planner-api/internal/middleware"
	"github.com/noah-isme/study-planner-api/internal/models"
	"github.com/noah-isme/study-planner-api/internal/repository"
	"github.com/noah-isme/study-planner-api/internal/service"
	"github.com/noah-isme/study-planner-api/internal/store"
	"github.com/noah-isme/study-planner-api/pkg/storage"
)

var fixedNow = time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)

type planner struct {
	repo      *repository.PlannerRepository
	tasks     *service.TaskService
	exams     *service.ExamService
	days      *service.ImportantDayService
	auth      *service.AuthService
	dashboard *service.DashboardService
	timetable *service.TimetableService
	data      *service.DataService
	settings  *service.SettingsService
	notify    *service.NotificationService
	kv        *store.Store
}

func newPlanner(t *testing.T) *planner {
	t.Helper()
	kv := store.New(store.NewMemoryBackend(), store.NewMemoryFeed(16, nil), nil)
	repo := repository.NewPlannerRepository(kv, nil, nil)
	clock := service.Clock{Now: func() time.Time { return fixedNow }, Location: time.UTC}
	validate := service.NewValidator()
	ids := models.NewIDGenerator(clock.Now)

	files, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	signer := storage.NewSignedURLSigner("secret", time.Hour).WithClock(clock.Now)

	return &planner{
		repo:      repo,
		kv:        kv,
		tasks:     service.NewTaskService(repo.Tasks, ids, validate, clock, nil),
		exams:     service.NewExamService(repo.Exams, ids, validate, clock, nil),
		days:      service.NewImportantDayService(repo.ImportantDays, repo.Tasks, repo.Exams, nil),
		auth:      service.NewAuthService(repo.Users, repo.CurrentUser, nil, validate, clock, service.AuthConfig{UniqueEmail: true}, nil),
		dashboard: service.NewDashboardService(repo.Tasks, repo.Exams, clock),
		timetable: service.NewTimetableService(repo.Tasks, repo.Exams, clock),
		data: service.NewDataService(repo.Tasks, repo.Exams, repo.Settings, nil, files, signer, clock,
			service.DataConfig{APIPrefix: "/api/v1", ResultTTL: time.Hour}, nil),
		settings: service.NewSettingsService(repo.Settings),
		notify:   service.NewNotificationService(repo.Tasks, repo.Settings, repo.Notifications, nil, nil, clock, service.NotificationConfig{}, nil),
	}
}

type responseEnvelope struct {
	Data  json.RawMessage        `json:"data"`
	Meta  map[string]interface{} `json:"meta"`
	Error *struct {
		Code   string `json:"code"`
		Status int    `json:"status"`
	} `json:"error"`
}

func perform(t *testing.T, h gin.HandlerFunc, method, target string, body interface{}, params ...gin.Param) (*httptest.ResponseRecorder, responseEnvelope) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)

	var reader *bytes.Reader
	switch v := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(v))
	default:
		raw, err := json.Marshal(v)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	c.Request = httptest.NewRequest(method, target, reader)
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = params

	h(c)
	c.Writer.WriteHeaderNow()

	var envelope responseEnvelope
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") && rec.Body.Len() > 0 {
		_ = json.Unmarshal(rec.Body.Bytes(), &envelope)
	}
	return rec, envelope
}

func decode(t *testing.T, raw json.RawMessage, dst interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(raw, dst))
}

func TestTaskHandlerLifecycle(t *testing.T) {
	p := newPlanner(t)
	h := NewTaskHandler(p.tasks)

	rec, env := perform(t, h.Create, http.MethodPost, "/tasks", map[string]interface{}{
		"title": "Essay", "subject": "english", "date": "2024-03-15", "priority": "high",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var created models.Task
	decode(t, env.Data, &created)
	assert.Equal(t, "Essay", created.Title)
	assert.False(t, created.Completed)

	id := gin.Param{Key: "id", Value: strconv.FormatInt(created.ID, 10)}
	rec, env = perform(t, h.Toggle, http.MethodPost, "/tasks/x/toggle", nil, id)
	require.Equal(t, http.StatusOK, rec.Code)
	var toggled models.Task
	decode(t, env.Data, &toggled)
	assert.True(t, toggled.Completed)

	rec, env = perform(t, h.List, http.MethodGet, "/tasks?status=completed", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, env.Meta["count"])

	rec, _ = perform(t, h.Delete, http.MethodDelete, "/tasks/x", nil, id)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec, env = perform(t, h.Get, http.MethodGet, "/tasks/x", nil, id)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)
}

func TestTaskHandlerRejectsBadInput(t *testing.T) {
	p := newPlanner(t)
	h := NewTaskHandler(p.tasks)

	rec, env := perform(t, h.Create, http.MethodPost, "/tasks", map[string]interface{}{"title": " ", "subject": "art", "date": "15/03/2024"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)

	rec, _ = perform(t, h.Create, http.MethodPost, "/tasks", "{")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = perform(t, h.Get, http.MethodGet, "/tasks/abc", nil, gin.Param{Key: "id", Value: "abc"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	assert.Empty(t, p.repo.Tasks.Read(context.Background()))
}

func TestCalendarHandler(t *testing.T) {
	p := newPlanner(t)
	h := NewCalendarHandler(p.days)
	require.NoError(t, p.repo.Exams.Write(context.Background(), []models.Exam{{ID: 1, Title: "Quiz", Subject: models.SubjectMath, Date: "2024-03-20"}}))

	rec, env := perform(t, h.ToggleImportant, http.MethodPost, "/", nil, gin.Param{Key: "date", Value: "2024-03-20"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "AUTO_IMPORTANT", env.Error.Code)

	rec, env = perform(t, h.ToggleImportant, http.MethodPost, "/", nil, gin.Param{Key: "date", Value: "2024-03-21"})
	require.Equal(t, http.StatusOK, rec.Code)
	var toggled struct {
		Manual    bool `json:"manual"`
		Important bool `json:"important"`
	}
	decode(t, env.Data, &toggled)
	assert.True(t, toggled.Manual)
	assert.True(t, toggled.Important)

	rec, env = perform(t, h.Important, http.MethodGet, "/calendar/important?year=2024&month=3", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var month struct {
		Dates []string `json:"dates"`
	}
	decode(t, env.Data, &month)
	assert.Equal(t, []string{"2024-03-20", "2024-03-21"}, month.Dates)

	rec, _ = perform(t, h.Important, http.MethodGet, "/calendar/important?year=2024", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = perform(t, h.Day, http.MethodGet, "/", nil, gin.Param{Key: "date", Value: "tomorrow"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDashboardHandler(t *testing.T) {
	p := newPlanner(t)
	h := NewDashboardHandler(p.dashboard, p.timetable)

	rec, _ := perform(t, h.Summary, http.MethodGet, "/dashboard?date=99-99-9999", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = perform(t, h.Summary, http.MethodGet, "/dashboard", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, env := perform(t, h.Timetable, http.MethodGet, "/timetable?date=2024-03-13", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var week struct {
		Start string `json:"start"`
		Empty bool   `json:"empty"`
	}
	decode(t, env.Data, &week)
	assert.True(t, week.Empty)
}

func TestAuthHandlerFlow(t *testing.T) {
	p := newPlanner(t)
	h := NewAuthHandler(p.auth)

	rec, _ := perform(t, h.Me, http.MethodGet, "/auth/me", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	signup := map[string]string{"name": "Ana", "email": "Ana@Example.com ", "password": "pw", "class": "10A"}
	rec, env := perform(t, h.Signup, http.MethodPost, "/auth/signup", signup)
	require.Equal(t, http.StatusCreated, rec.Code)
	var info models.UserInfo
	decode(t, env.Data, &info)
	assert.Equal(t, "ana@example.com", info.Email)
	assert.NotContains(t, string(env.Data), "password")

	rec, env = perform(t, h.Signup, http.MethodPost, "/auth/signup", signup)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "EMAIL_TAKEN", env.Error.Code)

	rec, _ = perform(t, h.Logout, http.MethodPost, "/auth/logout", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec, env = perform(t, h.Login, http.MethodPost, "/auth/login", map[string]string{"email": "ana@example.com", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "INVALID_CREDENTIALS", env.Error.Code)

	rec, _ = perform(t, h.Login, http.MethodPost, "/auth/login", map[string]string{"email": "ANA@example.com", "password": "pw"})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, env = perform(t, h.ChangePassword, http.MethodPost, "/account/password", map[string]string{
		"currentPassword": "pw", "newPassword": "a", "confirmPassword": "b",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "PASSWORD_MISMATCH", env.Error.Code)

	rec, _ = perform(t, h.DeleteAccount, http.MethodDelete, "/account", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, p.repo.Users.Read(context.Background()))
}

func TestDataHandlerExports(t *testing.T) {
	p := newPlanner(t)
	h := NewDataHandler(p.data)
	_, err := p.tasks.Create(context.Background(), service.CreateTaskRequest{Title: "Essay", Subject: models.SubjectEnglish, Date: "2024-03-15"})
	require.NoError(t, err)

	rec, _ := perform(t, h.Export, http.MethodGet, "/data/export", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `attachment; filename="studyplanner-data-2024-03-15.json"`, rec.Header().Get("Content-Disposition"))
	assert.Contains(t, rec.Body.String(), `"title": "Essay"`)

	rec, env := perform(t, h.SaveExport, http.MethodPost, "/data/export/csv", nil, gin.Param{Key: "format", Value: "CSV"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var saved service.SavedExport
	decode(t, env.Data, &saved)
	assert.True(t, strings.HasPrefix(saved.URL, "/api/v1/data/download/"))

	rec, _ = perform(t, h.Download, http.MethodGet, saved.URL, nil, gin.Param{Key: "token", Value: saved.Token})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "csv")
	assert.Contains(t, rec.Body.String(), "Essay")

	rec, env = perform(t, h.Download, http.MethodGet, "/data/download/bogus", nil, gin.Param{Key: "token", Value: "bogus"})
	assert.Equal(t, http.StatusGone, rec.Code)
	assert.Equal(t, "LINK_EXPIRED", env.Error.Code)

	rec, _ = perform(t, h.SaveExport, http.MethodPost, "/data/export/xml", nil, gin.Param{Key: "format", Value: "xml"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSettingsAndNotificationHandlers(t *testing.T) {
	p := newPlanner(t)
	settings := NewSettingsHandler(p.settings)
	notifications := NewNotificationHandler(p.notify)
	_, err := p.tasks.Create(context.Background(), service.CreateTaskRequest{Title: "Essay", Subject: models.SubjectEnglish, Date: "2024-03-15"})
	require.NoError(t, err)

	rec, env := perform(t, settings.Get, http.MethodGet, "/settings", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"notifications":true}`, string(env.Data))

	rec, env = perform(t, notifications.Scan, http.MethodPost, "/notifications/scan", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"added":1}`, string(env.Data))

	rec, env = perform(t, notifications.List, http.MethodGet, "/notifications", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, env.Meta["count"])

	rec, _ = perform(t, notifications.Clear, http.MethodDelete, "/notifications", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec, _ = perform(t, settings.Update, http.MethodPut, "/settings", map[string]bool{"notifications": false})
	require.Equal(t, http.StatusOK, rec.Code)
	rec, env = perform(t, notifications.Scan, http.MethodPost, "/notifications/scan", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"added":0}`, string(env.Data))
}

func TestMetricsHandlerReady(t *testing.T) {
	h := NewMetricsHandler(service.NewMetricsService(), map[string]ReadinessCheck{
		"store": func(context.Context) error { return nil },
		"redis": func(context.Context) error { return errors.New("connection refused") },
	})

	rec, _ := perform(t, h.Ready, http.MethodGet, "/ready", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "connection refused")

	rec, _ = perform(t, h.Health, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSessionMiddlewareUsesAuthService(t *testing.T) {
	p := newPlanner(t)
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/tasks", middleware.RequireSession(p.auth), NewTaskHandler(p.tasks).List)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/tasks", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
