package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/fastygo/droptracker/api/handler"
	"github.com/fastygo/droptracker/api/transport"
	"github.com/fastygo/droptracker/domain"
	"github.com/fastygo/droptracker/internal/infrastructure/monitor"
	"github.com/fastygo/droptracker/internal/middleware"
	"github.com/fastygo/droptracker/internal/router"
	"github.com/fastygo/droptracker/internal/testutil"
	"github.com/fastygo/droptracker/pkg/httpcontext"
	adminUC "github.com/fastygo/droptracker/usecase/admin"
	authUC "github.com/fastygo/droptracker/usecase/auth"
	contactUC "github.com/fastygo/droptracker/usecase/contact"
	notificationUC "github.com/fastygo/droptracker/usecase/notification"
	profileUC "github.com/fastygo/droptracker/usecase/profile"
	progressUC "github.com/fastygo/droptracker/usecase/progress"
	projectUC "github.com/fastygo/droptracker/usecase/project"
	taskUC "github.com/fastygo/droptracker/usecase/task"
)

const secret = "handler-secret"

type statusStub struct{ status monitor.Status }

func (s statusStub) GetStatus() monitor.Status { return s.status }

type envelope struct {
	Status string          `json:"status"`
	Code   string          `json:"code"`
	Data   json.RawMessage `json:"data"`
	Error  *struct {
		Message string                 `json:"message"`
		Fields  []transport.FieldError `json:"fields"`
	} `json:"error"`
	Meta json.RawMessage `json:"meta"`
}

type app struct {
	handler  fasthttp.RequestHandler
	users    *testutil.UserRepo
	tasks    *testutil.TaskRepo
	contacts *testutil.ContactRepo
}

func newApp(t *testing.T, health monitor.Status) *app {
	t.Helper()
	users := testutil.NewUserRepo(domain.User{ID: "fan", Status: "active", Role: domain.RoleUser})
	contacts := &testutil.ContactRepo{}

	notifications := notificationUC.New(testutil.NewNotificationStore(), users, 0, nil)
	progress := progressUC.New(testutil.NewProgressRepo(), notifications, time.UTC, nil)
	taskRepo := testutil.NewTaskRepo()
	tasks := taskUC.New(taskRepo, testutil.NewPublisher(), nil, progress, nil)

	adapter := httpcontext.NewAdapter(time.Second)
	handlers := router.Handlers{
		Auth:         apiHandler.NewAuthHandler(authUC.New(users, testutil.NewSessionRepo(), progress, nil), adapter, nil, time.Hour),
		Profile:      apiHandler.NewProfileHandler(profileUC.New(users, progress, nil, nil), progress, adapter, nil),
		Task:         apiHandler.NewTaskHandler(tasks, adapter, nil),
		Notification: apiHandler.NewNotificationHandler(notifications, adapter, nil),
		Project:      apiHandler.NewProjectHandler(projectUC.New(testutil.NewProjectRepo(), notifications, nil), adapter, nil),
		Admin:        apiHandler.NewAdminHandler(adminUC.New(&testutil.StatsRepo{Stats: domain.Stats{Users: 1}}), adapter, nil),
		Contact:      apiHandler.NewContactHandler(contactUC.New(contacts, nil, nil), adapter, nil),
		Health:       apiHandler.NewHealthHandler(statusStub{status: health}, adapter, nil),
	}
	r := router.New(handlers, middleware.JWTAuth(secret, "", nil))
	return &app{handler: r.Handler, users: users, tasks: taskRepo, contacts: contacts}
}

func token(t *testing.T, userID, role string) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, middleware.Claims{UserID: userID, Role: role}).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return signed
}

func (a *app) do(t *testing.T, method, path, bearer string, body interface{}) (int, envelope) {
	t.Helper()
	var ctx fasthttp.RequestCtx
	ctx.Request.Header.SetMethod(method)
	ctx.Request.SetRequestURI(path)
	if bearer != "" {
		ctx.Request.Header.Set("Authorization", "Bearer "+bearer)
	}
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		ctx.Request.SetBody(payload)
	}
	a.handler(&ctx)

	var env envelope
	if raw := ctx.Response.Body(); len(raw) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil {
			t.Fatalf("decode response %q: %v", raw, err)
		}
	}
	return ctx.Response.StatusCode(), env
}

func TestTaskLifecycleOverHTTP(t *testing.T) {
	a := newApp(t, monitor.Status{})
	fan := token(t, "fan", "")

	status, env := a.do(t, "POST", "/api/v1/tasks", fan, map[string]interface{}{
		"title":      "Galxe check-in",
		"url":        "galxe.com",
		"timer_type": "12h",
	})
	if status != fasthttp.StatusCreated {
		t.Fatalf("create: expected 201, got %d (%+v)", status, env)
	}
	var created domain.Task
	_ = json.Unmarshal(env.Data, &created)
	if created.URL != "https://galxe.com" {
		t.Fatalf("expected normalized url, got %q", created.URL)
	}

	status, env = a.do(t, "POST", "/api/v1/tasks/"+created.ID+"/toggle", fan, nil)
	if status != fasthttp.StatusOK {
		t.Fatalf("toggle: expected 200, got %d (%+v)", status, env)
	}
	var view domain.TaskView
	_ = json.Unmarshal(env.Data, &view)
	if view.State.Due || view.RefreshSeconds <= 0 {
		t.Fatalf("expected active countdown, got %+v", view)
	}

	status, env = a.do(t, "GET", "/api/v1/progress", fan, nil)
	if status != fasthttp.StatusOK {
		t.Fatalf("progress: expected 200, got %d", status)
	}
	var progress domain.ProgressView
	_ = json.Unmarshal(env.Data, &progress)
	if progress.Level.Count != 1 {
		t.Fatalf("expected one completion, got %+v", progress.Level)
	}

	status, env = a.do(t, "GET", "/api/v1/tasks", token(t, "stranger", ""), nil)
	if status != fasthttp.StatusOK || string(env.Data) != "[]" {
		t.Fatalf("expected empty list for another user, got %d %s", status, env.Data)
	}
	var meta transport.ListMeta
	_ = json.Unmarshal(env.Meta, &meta)
	if meta.Count != 0 || meta.Limit != 100 {
		t.Fatalf("unexpected list meta %s", env.Meta)
	}

	status, env = a.do(t, "GET", "/api/v1/tasks?limit=500&offset=-3", fan, nil)
	if status != fasthttp.StatusOK {
		t.Fatalf("list: expected 200, got %d", status)
	}
	meta = transport.ListMeta{}
	_ = json.Unmarshal(env.Meta, &meta)
	if meta.Count != 1 || meta.Limit != 100 || meta.Offset != 0 {
		t.Fatalf("expected applied paging in meta, got %s", env.Meta)
	}

	if status, _ = a.do(t, "DELETE", "/api/v1/tasks/"+created.ID, token(t, "stranger", ""), nil); status != fasthttp.StatusNotFound {
		t.Fatalf("expected 404 deleting a foreign task, got %d", status)
	}
	if status, _ = a.do(t, "DELETE", "/api/v1/tasks/"+created.ID, fan, nil); status != fasthttp.StatusNoContent {
		t.Fatalf("expected 204 on delete, got %d", status)
	}
}

func TestServerErrorsHideTheirCause(t *testing.T) {
	a := newApp(t, monitor.Status{})
	fan := token(t, "fan", "")

	status, env := a.do(t, "POST", "/api/v1/tasks", fan, map[string]interface{}{
		"title":      "Zealy quest",
		"url":        "zealy.io",
		"timer_type": "24h",
	})
	if status != fasthttp.StatusCreated {
		t.Fatalf("create: expected 201, got %d (%+v)", status, env)
	}
	var created domain.Task
	_ = json.Unmarshal(env.Data, &created)

	a.tasks.Err = errors.New("dial tcp 10.0.0.7:5432: connection refused")
	status, env = a.do(t, "POST", "/api/v1/tasks/"+created.ID+"/toggle", fan, nil)
	if status != fasthttp.StatusInternalServerError {
		t.Fatalf("expected 500, got %d (%+v)", status, env)
	}
	if env.Code != string(domain.ErrCodeInternal) || env.Error == nil || env.Error.Message != "internal error" {
		t.Fatalf("expected generic internal error, got %+v", env.Error)
	}
}

func TestValidationErrors(t *testing.T) {
	a := newApp(t, monitor.Status{})
	status, env := a.do(t, "POST", "/api/v1/tasks", token(t, "fan", ""), map[string]interface{}{
		"title":        "x",
		"url":          "a.io",
		"timer_type":   "custom",
		"custom_hours": 100,
	})
	if status != fasthttp.StatusBadRequest || env.Code != string(domain.ErrCodeInvalid) {
		t.Fatalf("expected 400 INVALID, got %d %+v", status, env)
	}
	if env.Error == nil || len(env.Error.Fields) != 1 || env.Error.Fields[0].Field != "custom_hours" {
		t.Fatalf("expected custom_hours field error, got %+v", env.Error)
	}

	status, env = a.do(t, "POST", "/api/v1/tasks", token(t, "fan", ""), "not an object")
	if status != fasthttp.StatusBadRequest || env.Error == nil || len(env.Error.Fields) != 0 {
		t.Fatalf("expected plain 400 for malformed body, got %d %+v", status, env)
	}
}

func TestAuthRequired(t *testing.T) {
	a := newApp(t, monitor.Status{})
	if status, env := a.do(t, "GET", "/api/v1/tasks", "", nil); status != fasthttp.StatusUnauthorized || env.Code != "UNAUTHORIZED" {
		t.Fatalf("expected 401, got %d %+v", status, env)
	}
}

func TestLoginOpensSessionAndStreak(t *testing.T) {
	a := newApp(t, monitor.Status{})
	status, env := a.do(t, "POST", "/api/v1/auth/login", token(t, "newcomer", ""), map[string]interface{}{"email": "new@example.com"})
	if status != fasthttp.StatusCreated {
		t.Fatalf("expected 201, got %d %+v", status, env)
	}
	var result struct {
		Session domain.Session `json:"session"`
		Streak  domain.Streak  `json:"streak"`
	}
	_ = json.Unmarshal(env.Data, &result)
	if result.Session.ID == "" || result.Streak.Current != 1 {
		t.Fatalf("unexpected login result %+v", result)
	}
	if _, err := a.users.GetByID(context.Background(), "newcomer"); err != nil {
		t.Fatalf("expected user registration: %v", err)
	}

	status, _ = a.do(t, "POST", "/api/v1/auth/logout", token(t, "newcomer", ""), map[string]string{"session_id": result.Session.ID})
	if status != fasthttp.StatusNoContent {
		t.Fatalf("expected 204 on logout, got %d", status)
	}

	for i := 0; i < 2; i++ {
		if status, _ := a.do(t, "POST", "/api/v1/auth/login", token(t, "newcomer", ""), nil); status != fasthttp.StatusCreated {
			t.Fatalf("relogin: expected 201, got %d", status)
		}
	}
	status, env = a.do(t, "POST", "/api/v1/auth/logout-all", token(t, "newcomer", ""), nil)
	var revoked map[string]int
	_ = json.Unmarshal(env.Data, &revoked)
	if status != fasthttp.StatusOK || revoked["revoked"] != 2 {
		t.Fatalf("expected 2 revoked sessions, got %d %s", status, env.Data)
	}
}

func TestExplorerAdminFlow(t *testing.T) {
	a := newApp(t, monitor.Status{})
	project := map[string]interface{}{"name": "Scroll", "url": "scroll.io", "category": "L2"}

	if status, _ := a.do(t, "POST", "/api/v1/admin/projects", token(t, "fan", domain.RoleUser), project); status != fasthttp.StatusForbidden {
		t.Fatalf("expected 403 for non-admin, got %d", status)
	}
	status, env := a.do(t, "POST", "/api/v1/admin/projects", token(t, "root", domain.RoleAdmin), project)
	if status != fasthttp.StatusCreated {
		t.Fatalf("expected 201, got %d %+v", status, env)
	}
	project["name"] = "scroll"
	if status, env := a.do(t, "POST", "/api/v1/admin/projects", token(t, "root", domain.RoleAdmin), project); status != fasthttp.StatusConflict || env.Code != "CONFLICT" {
		t.Fatalf("expected 409 for duplicate name, got %d %+v", status, env)
	}

	status, env = a.do(t, "GET", "/api/v1/projects?category=L2", "", nil)
	if status != fasthttp.StatusOK {
		t.Fatalf("public list: expected 200, got %d", status)
	}
	var listed []domain.Project
	_ = json.Unmarshal(env.Data, &listed)
	if len(listed) != 1 || listed[0].Name != "Scroll" {
		t.Fatalf("unexpected listing %+v", listed)
	}

	status, env = a.do(t, "GET", "/api/v1/notifications", token(t, "fan", ""), nil)
	if status != fasthttp.StatusOK {
		t.Fatalf("notifications: expected 200, got %d", status)
	}
	var notes struct {
		Items  []domain.Notification `json:"items"`
		Unread int                   `json:"unread"`
	}
	_ = json.Unmarshal(env.Data, &notes)
	if len(notes.Items) != 1 || notes.Items[0].Type != domain.NotificationNewListing || notes.Unread != 1 {
		t.Fatalf("expected new listing notification, got %+v", notes)
	}

	if status, _ = a.do(t, "POST", "/api/v1/notifications/"+notes.Items[0].ID+"/read", token(t, "fan", ""), nil); status != fasthttp.StatusNoContent {
		t.Fatalf("mark read: expected 204, got %d", status)
	}
	if status, _ = a.do(t, "POST", "/api/v1/notifications/missing/read", token(t, "fan", ""), nil); status != fasthttp.StatusNotFound {
		t.Fatalf("mark read missing: expected 404, got %d", status)
	}

	if status, _ = a.do(t, "GET", "/api/v1/admin/stats", token(t, "fan", ""), nil); status != fasthttp.StatusForbidden {
		t.Fatalf("stats: expected 403, got %d", status)
	}
	if status, _ = a.do(t, "GET", "/api/v1/admin/stats", token(t, "root", domain.RoleAdmin), nil); status != fasthttp.StatusOK {
		t.Fatalf("stats: expected 200, got %d", status)
	}
}

func TestContactForm(t *testing.T) {
	a := newApp(t, monitor.Status{})
	status, env := a.do(t, "POST", "/api/v1/contact", "", map[string]string{
		"name":    "Ana",
		"email":   "ana@example.com",
		"message": "Please list my project.",
	})
	if status != fasthttp.StatusCreated {
		t.Fatalf("expected 201, got %d %+v", status, env)
	}
	if len(a.contacts.Messages) != 1 {
		t.Fatalf("expected stored message")
	}

	if status, _ = a.do(t, "POST", "/api/v1/contact", "", map[string]string{"name": "Ana"}); status != fasthttp.StatusBadRequest {
		t.Fatalf("expected 400 for incomplete form, got %d", status)
	}
}

func TestHealth(t *testing.T) {
	healthy := newApp(t, monitor.Status{PostgreSQL: true, Redis: true, Buffer: true})
	if status, _ := healthy.do(t, "GET", "/health", "", nil); status != fasthttp.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	degraded := newApp(t, monitor.Status{PostgreSQL: true})
	if status, env := degraded.do(t, "GET", "/health", "", nil); status != fasthttp.StatusServiceUnavailable || env.Code != "DEGRADED" {
		t.Fatalf("expected 503 DEGRADED, got %d %+v", status, env)
	}
}
