package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/eventhub/eventhub/internal/activity"
	"github.com/eventhub/eventhub/internal/auth"
	"github.com/eventhub/eventhub/internal/cache"
	"github.com/eventhub/eventhub/internal/handler/dto"
	"github.com/eventhub/eventhub/internal/metrics"
	"github.com/eventhub/eventhub/internal/middleware"
	"github.com/eventhub/eventhub/internal/model"
	"github.com/eventhub/eventhub/internal/service"
	"github.com/eventhub/eventhub/internal/store"
)

// envelope mirrors dto.Response with the payload left raw.
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *dto.ErrorBody  `json:"error"`
}

type apiFixture struct {
	t      *testing.T
	router *chi.Mux
	store  *store.Store
}

type routerOption func(*RouterConfig)

func newAPIFixture(t *testing.T, opts ...routerOption) *apiFixture {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	st := store.New()

	hasher, err := auth.NewPasswordHasher(auth.PasswordParams{
		Time: 1, Memory: 1024, Threads: 1, KeyLen: 32, SaltLen: 16,
	})
	if err != nil {
		t.Fatalf("NewPasswordHasher: %v", err)
	}
	tokens := auth.NewTokenManager("handler-test-secret", time.Hour, "eventhub")
	recorder := metrics.NewInMemory()
	publisher := activity.NewNoop()

	authSvc := service.NewAuthService(st, hasher, tokens, recorder, publisher, logger)
	eventSvc := service.NewEventService(st, recorder, publisher, logger)

	cfg := RouterConfig{
		Logger:   logger,
		Metrics:  recorder,
		Index:    New(),
		Health:   NewHealthHandler(nil, st),
		Auth:     NewAuthHandler(authSvc, logger),
		Events:   NewEventHandler(eventSvc, logger),
		Tokens:   tokens,
		Security: middleware.SecurityConfig{IsDevelopment: true, MaxRequestBodySize: 1 << 20},
		CORS:     middleware.DefaultCORSConfig(),
		RateLimit: middleware.RateLimitConfig{
			Logger:  logger,
			Enabled: false,
			Scope:   "auth",
		},
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &apiFixture{t: t, router: NewRouter(cfg), store: st}
}

// with returns a copy of the fixture bound to a subtest.
func (f *apiFixture) with(t *testing.T) *apiFixture {
	c := *f
	c.t = t
	return &c
}

// do sends a request and returns the status and raw body.
func (f *apiFixture) do(method, path, token string, body any) (int, []byte) {
	f.t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			f.t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	if strings.Contains(rec.Body.String(), `"password":`) {
		f.t.Errorf("%s %s leaked a password field: %s", method, path, rec.Body.String())
	}
	return rec.Code, rec.Body.Bytes()
}

// call is do plus envelope decoding and a status check.
func (f *apiFixture) call(method, path, token string, body any, wantStatus int) envelope {
	f.t.Helper()

	status, raw := f.do(method, path, token, body)
	if status != wantStatus {
		f.t.Fatalf("%s %s: status = %d, want %d; body: %s", method, path, status, wantStatus, raw)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		f.t.Fatalf("%s %s: decode envelope: %v; body: %s", method, path, err, raw)
	}
	return env
}

func (f *apiFixture) signup(name, email string, role model.Role) (model.PublicUser, string) {
	f.t.Helper()

	env := f.call(http.MethodPost, "/register", "", map[string]any{
		"name":     name,
		"email":    email,
		"password": "correct horse battery",
		"role":     role,
	}, http.StatusCreated)

	var res service.AuthResult
	decodeData(f.t, env, &res)
	return res.User, res.Token
}

func (f *apiFixture) createEvent(token, title string, capacity int) model.Event {
	f.t.Helper()

	env := f.call(http.MethodPost, "/events", token, map[string]any{
		"title":    title,
		"date":     "2030-06-01T18:00:00Z",
		"location": "Hall A",
		"capacity": capacity,
	}, http.StatusCreated)

	var ev model.Event
	decodeData(f.t, env, &ev)
	return ev
}

func decodeData(t *testing.T, env envelope, v any) {
	t.Helper()
	if err := json.Unmarshal(env.Data, v); err != nil {
		t.Fatalf("decode data: %v; data: %s", err, env.Data)
	}
}

func wantErrorCode(t *testing.T, env envelope, code string) {
	t.Helper()
	if env.Success {
		t.Errorf("success = true, want false")
	}
	if env.Error == nil || env.Error.Code != code {
		t.Errorf("error = %+v, want code %s", env.Error, code)
	}
}

func TestIndex(t *testing.T) {
	t.Parallel()

	f := newAPIFixture(t)
	env := f.call(http.MethodGet, "/", "", nil, http.StatusOK)

	if !env.Success {
		t.Error("expected success")
	}

	var data struct {
		Version   string            `json:"version"`
		Endpoints map[string]string `json:"endpoints"`
	}
	decodeData(t, env, &data)
	if data.Version != Version {
		t.Errorf("version = %q, want %q", data.Version, Version)
	}
	if data.Endpoints["register_event"] != "POST /events/{id}/register" {
		t.Errorf("unexpected endpoints: %v", data.Endpoints)
	}
}

func TestNotFoundAndMethodNotAllowed(t *testing.T) {
	t.Parallel()

	f := newAPIFixture(t)

	env := f.call(http.MethodGet, "/nope", "", nil, http.StatusNotFound)
	wantErrorCode(t, env, "NOT_FOUND")

	env = f.call(http.MethodDelete, "/login", "", nil, http.StatusMethodNotAllowed)
	wantErrorCode(t, env, "METHOD_NOT_ALLOWED")
}

func TestAPI_RegisterLoginProfile(t *testing.T) {
	t.Parallel()

	f := newAPIFixture(t)
	user, token := f.signup("Ada", "Ada@Example.com", model.RoleOrganizer)

	if user.ID != 1 || user.Email != "ada@example.com" || user.Role != model.RoleOrganizer {
		t.Errorf("unexpected user: %+v", user)
	}
	if token == "" {
		t.Fatal("expected a token on register")
	}

	env := f.call(http.MethodPost, "/login", "", map[string]string{
		"email":    "ada@example.com",
		"password": "correct horse battery",
	}, http.StatusOK)

	var login service.AuthResult
	decodeData(t, env, &login)
	if login.Token == "" || login.User.ID != user.ID {
		t.Fatalf("unexpected login result: %+v", login)
	}

	env = f.call(http.MethodGet, "/profile", login.Token, nil, http.StatusOK)
	var profile model.PublicUser
	decodeData(t, env, &profile)
	if profile.ID != user.ID || profile.Name != "Ada" {
		t.Errorf("unexpected profile: %+v", profile)
	}
}

func TestAPI_LoginFailuresLookAlike(t *testing.T) {
	t.Parallel()

	f := newAPIFixture(t)
	f.signup("Ada", "ada@example.com", model.RoleAttendee)

	wrongStatus, wrongBody := f.do(http.MethodPost, "/login", "", map[string]string{
		"email":    "ada@example.com",
		"password": "not the password",
	})
	unknownStatus, unknownBody := f.do(http.MethodPost, "/login", "", map[string]string{
		"email":    "nobody@example.com",
		"password": "not the password",
	})

	if wrongStatus != http.StatusUnauthorized || unknownStatus != http.StatusUnauthorized {
		t.Fatalf("statuses = %d, %d, want 401", wrongStatus, unknownStatus)
	}
	if !bytes.Equal(wrongBody, unknownBody) {
		t.Errorf("bodies differ:\n%s\n%s", wrongBody, unknownBody)
	}
}

func TestAPI_RegisterErrors(t *testing.T) {
	t.Parallel()

	f := newAPIFixture(t)
	f.signup("Ada", "ada@example.com", model.RoleAttendee)

	testCases := []struct {
		name       string
		body       any
		wantStatus int
		wantCode   string
	}{
		{
			name:       "duplicate email in another case",
			body:       map[string]string{"name": "Eve", "email": "ADA@example.com", "password": "long enough pw"},
			wantStatus: http.StatusConflict,
			wantCode:   "EMAIL_EXISTS",
		},
		{
			name:       "missing email",
			body:       map[string]string{"name": "Eve", "password": "long enough pw"},
			wantStatus: http.StatusBadRequest,
			wantCode:   "VALIDATION_ERROR",
		},
		{
			name:       "short password",
			body:       map[string]string{"name": "Eve", "email": "eve@example.com", "password": "short"},
			wantStatus: http.StatusBadRequest,
			wantCode:   "VALIDATION_ERROR",
		},
		{
			name:       "unknown role",
			body:       map[string]string{"name": "Eve", "email": "eve@example.com", "password": "long enough pw", "role": "admin"},
			wantStatus: http.StatusBadRequest,
			wantCode:   "VALIDATION_ERROR",
		},
		{
			name:       "malformed json",
			body:       `{"name":`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_JSON",
		},
		{
			name:       "empty body",
			body:       nil,
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_JSON",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			env := f.with(t).call(http.MethodPost, "/register", "", tc.body, tc.wantStatus)
			wantErrorCode(t, env, tc.wantCode)
		})
	}

	if got := f.store.Stats().Users; got != 1 {
		t.Errorf("users = %d, want 1", got)
	}
}

func TestAPI_ValidationFieldsUseJSONNames(t *testing.T) {
	t.Parallel()

	f := newAPIFixture(t)
	env := f.call(http.MethodPost, "/register", "", map[string]string{"name": "Eve"}, http.StatusBadRequest)

	if env.Error == nil {
		t.Fatal("expected error body")
	}
	fields := map[string]bool{}
	for _, fe := range env.Error.Fields {
		fields[fe.Field] = true
	}
	if !fields["email"] || !fields["password"] {
		t.Errorf("unexpected fields: %+v", env.Error.Fields)
	}
}

func TestAPI_AuthRequired(t *testing.T) {
	t.Parallel()

	f := newAPIFixture(t)

	routes := []struct{ method, path string }{
		{http.MethodGet, "/profile"},
		{http.MethodGet, "/users"},
		{http.MethodPost, "/events"},
		{http.MethodPut, "/events/1"},
		{http.MethodDelete, "/events/1"},
		{http.MethodPost, "/events/1/register"},
		{http.MethodGet, "/events/1/registrations"},
		{http.MethodGet, "/events/my-registrations"},
		{http.MethodGet, "/events/my-events"},
	}

	for _, rt := range routes {
		t.Run(rt.method+" "+rt.path, func(t *testing.T) {
			env := f.with(t).call(rt.method, rt.path, "", nil, http.StatusUnauthorized)
			wantErrorCode(t, env, "UNAUTHORIZED")
		})
	}
}

func TestAPI_OrganizerOnlyRoutes(t *testing.T) {
	t.Parallel()

	f := newAPIFixture(t)
	_, attendee := f.signup("Bob", "bob@example.com", model.RoleAttendee)
	_, organizer := f.signup("Ada", "ada@example.com", model.RoleOrganizer)

	env := f.call(http.MethodPost, "/events", attendee, map[string]any{
		"title": "Nope",
		"date":  "2030-01-01T00:00:00Z",
	}, http.StatusForbidden)
	wantErrorCode(t, env, "FORBIDDEN")

	f.call(http.MethodGet, "/users", attendee, nil, http.StatusForbidden)
	f.call(http.MethodGet, "/events/my-events", attendee, nil, http.StatusForbidden)

	env = f.call(http.MethodGet, "/users", organizer, nil, http.StatusOK)
	var users []model.PublicUser
	decodeData(t, env, &users)
	if len(users) != 2 {
		t.Errorf("users = %d, want 2", len(users))
	}
}

func TestAPI_EventLifecycle(t *testing.T) {
	t.Parallel()

	f := newAPIFixture(t)
	owner, ownerToken := f.signup("Ada", "ada@example.com", model.RoleOrganizer)
	_, rivalToken := f.signup("Grace", "grace@example.com", model.RoleOrganizer)
	attendee, attendeeToken := f.signup("Bob", "bob@example.com", model.RoleAttendee)
	_, lateToken := f.signup("Carol", "carol@example.com", model.RoleAttendee)

	ev := f.createEvent(ownerToken, "GopherCon", 1)
	if ev.ID != 1 || ev.OrganizerID != owner.ID || len(ev.Participants) != 0 {
		t.Fatalf("unexpected event: %+v", ev)
	}
	eventPath := fmt.Sprintf("/events/%d", ev.ID)

	// Public reads
	env := f.call(http.MethodGet, "/events", "", nil, http.StatusOK)
	var list []model.Event
	decodeData(t, env, &list)
	if len(list) != 1 {
		t.Fatalf("events = %d, want 1", len(list))
	}

	// Only the owner may change the event.
	env = f.call(http.MethodPut, eventPath, rivalToken, map[string]any{"title": "Hijacked"}, http.StatusForbidden)
	wantErrorCode(t, env, "NOT_EVENT_OWNER")
	env = f.call(http.MethodDelete, eventPath, rivalToken, nil, http.StatusForbidden)
	wantErrorCode(t, env, "NOT_EVENT_OWNER")

	// Registration
	env = f.call(http.MethodPost, eventPath+"/register", attendeeToken, nil, http.StatusCreated)
	var reg model.Registration
	decodeData(t, env, &reg)
	if reg.EventID != ev.ID || reg.UserID != attendee.ID {
		t.Errorf("unexpected registration: %+v", reg)
	}

	env = f.call(http.MethodPost, eventPath+"/register", attendeeToken, nil, http.StatusConflict)
	wantErrorCode(t, env, "ALREADY_REGISTERED")

	env = f.call(http.MethodPost, eventPath+"/register", lateToken, nil, http.StatusConflict)
	wantErrorCode(t, env, "EVENT_FULL")

	// Owner-only registration list
	env = f.call(http.MethodGet, eventPath+"/registrations", ownerToken, nil, http.StatusOK)
	var regs []model.Registration
	decodeData(t, env, &regs)
	if len(regs) != 1 || regs[0].UserID != attendee.ID {
		t.Errorf("unexpected registrations: %+v", regs)
	}
	f.call(http.MethodGet, eventPath+"/registrations", attendeeToken, nil, http.StatusForbidden)

	// Event detail carries participant records.
	env = f.call(http.MethodGet, eventPath, "", nil, http.StatusOK)
	var detail model.EventWithParticipants
	decodeData(t, env, &detail)
	if len(detail.ParticipantDetails) != 1 || detail.ParticipantDetails[0].Email != "bob@example.com" {
		t.Errorf("unexpected participants: %+v", detail.ParticipantDetails)
	}

	env = f.call(http.MethodGet, "/events/my-registrations", attendeeToken, nil, http.StatusOK)
	var mine []model.RegistrationWithEvent
	decodeData(t, env, &mine)
	if len(mine) != 1 || mine[0].Event.Title != "GopherCon" {
		t.Errorf("unexpected my-registrations: %+v", mine)
	}

	env = f.call(http.MethodGet, "/events/my-events", ownerToken, nil, http.StatusOK)
	var owned []model.Event
	decodeData(t, env, &owned)
	if len(owned) != 1 || owned[0].ID != ev.ID {
		t.Errorf("unexpected my-events: %+v", owned)
	}

	// Delete cascades to registrations.
	env = f.call(http.MethodDelete, eventPath, ownerToken, nil, http.StatusOK)
	if env.Message != "Event deleted successfully" {
		t.Errorf("message = %q", env.Message)
	}
	env = f.call(http.MethodGet, eventPath, "", nil, http.StatusNotFound)
	wantErrorCode(t, env, "EVENT_NOT_FOUND")

	env = f.call(http.MethodGet, "/events/my-registrations", attendeeToken, nil, http.StatusOK)
	decodeData(t, env, &mine)
	if len(mine) != 0 {
		t.Errorf("registrations survived delete: %+v", mine)
	}
}

func TestAPI_UpdateIgnoresImmutableFields(t *testing.T) {
	t.Parallel()

	f := newAPIFixture(t)
	owner, ownerToken := f.signup("Ada", "ada@example.com", model.RoleOrganizer)
	_, attendeeToken := f.signup("Bob", "bob@example.com", model.RoleAttendee)

	ev := f.createEvent(ownerToken, "Meetup", 0)
	eventPath := fmt.Sprintf("/events/%d", ev.ID)
	f.call(http.MethodPost, eventPath+"/register", attendeeToken, nil, http.StatusCreated)

	env := f.call(http.MethodPut, eventPath, ownerToken, map[string]any{
		"id":           99,
		"organizer_id": 42,
		"participants": []int64{7, 8, 9},
		"created_at":   "2001-01-01T00:00:00Z",
		"title":        "Meetup v2",
		"capacity":     10,
	}, http.StatusOK)

	var updated model.Event
	decodeData(t, env, &updated)

	if updated.ID != ev.ID || updated.OrganizerID != owner.ID {
		t.Errorf("identity changed: %+v", updated)
	}
	if !updated.CreatedAt.Equal(ev.CreatedAt) {
		t.Errorf("created_at changed: %v -> %v", ev.CreatedAt, updated.CreatedAt)
	}
	if len(updated.Participants) != 1 {
		t.Errorf("participants changed: %v", updated.Participants)
	}
	if updated.Title != "Meetup v2" || updated.Capacity != 10 {
		t.Errorf("patch not applied: %+v", updated)
	}
}

func TestAPI_UpdateRejectsEmptyPatch(t *testing.T) {
	t.Parallel()

	f := newAPIFixture(t)
	_, ownerToken := f.signup("Ada", "ada@example.com", model.RoleOrganizer)
	ev := f.createEvent(ownerToken, "Meetup", 0)

	env := f.call(http.MethodPut, fmt.Sprintf("/events/%d", ev.ID), ownerToken, map[string]any{}, http.StatusBadRequest)
	wantErrorCode(t, env, "VALIDATION_ERROR")
}

func TestAPI_InvalidAndMissingIDs(t *testing.T) {
	t.Parallel()

	f := newAPIFixture(t)
	_, token := f.signup("Ada", "ada@example.com", model.RoleOrganizer)

	testCases := []struct {
		method     string
		path       string
		wantStatus int
		wantCode   string
	}{
		{http.MethodGet, "/events/abc", http.StatusBadRequest, "INVALID_ID"},
		{http.MethodGet, "/events/0", http.StatusBadRequest, "INVALID_ID"},
		{http.MethodGet, "/events/-3", http.StatusBadRequest, "INVALID_ID"},
		{http.MethodPost, "/events/1.5/register", http.StatusBadRequest, "INVALID_ID"},
		{http.MethodGet, "/events/404", http.StatusNotFound, "EVENT_NOT_FOUND"},
		{http.MethodPost, "/events/404/register", http.StatusNotFound, "EVENT_NOT_FOUND"},
		{http.MethodDelete, "/events/404", http.StatusNotFound, "EVENT_NOT_FOUND"},
	}

	for _, tc := range testCases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			env := f.with(t).call(tc.method, tc.path, token, nil, tc.wantStatus)
			wantErrorCode(t, env, tc.wantCode)
		})
	}

	if got := f.store.Stats().Registrations; got != 0 {
		t.Errorf("registrations = %d, want 0", got)
	}
}

func TestAPI_CreateEventValidation(t *testing.T) {
	t.Parallel()

	f := newAPIFixture(t)
	_, token := f.signup("Ada", "ada@example.com", model.RoleOrganizer)

	testCases := []struct {
		name string
		body any
	}{
		{"missing title", map[string]any{"date": "2030-01-01T00:00:00Z"}},
		{"missing date", map[string]any{"title": "Conf"}},
		{"negative capacity", map[string]any{"title": "Conf", "date": "2030-01-01T00:00:00Z", "capacity": -1}},
		{"bad date", map[string]any{"title": "Conf", "date": "tomorrow"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			status, _ := f.with(t).do(http.MethodPost, "/events", token, tc.body)
			if status != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", status)
			}
		})
	}

	if got := f.store.Stats().Events; got != 0 {
		t.Errorf("events = %d, want 0", got)
	}
}

func TestAPI_RateLimitedAccountRoutes(t *testing.T) {
	t.Parallel()

	limiter := cache.NewLocalLimiter(1, 2, time.Minute)
	t.Cleanup(limiter.Stop)

	f := newAPIFixture(t, func(cfg *RouterConfig) {
		cfg.RateLimit.Limiter = limiter
		cfg.RateLimit.Enabled = true
	})

	body := map[string]string{"email": "x@example.com", "password": "whatever"}
	f.call(http.MethodPost, "/login", "", body, http.StatusUnauthorized)
	f.call(http.MethodPost, "/login", "", body, http.StatusUnauthorized)
	env := f.call(http.MethodPost, "/login", "", body, http.StatusTooManyRequests)
	wantErrorCode(t, env, "RATE_LIMITED")

	// Public reads are not limited.
	f.call(http.MethodGet, "/events", "", nil, http.StatusOK)
}

// loginFrom posts a failed login from one socket with the given
// X-Forwarded-For value and returns the status.
func loginFrom(router http.Handler, remoteAddr, xff string) int {
	req := httptest.NewRequest(http.MethodPost, "/login",
		strings.NewReader(`{"email":"x@example.com","password":"whatever"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Forwarded-For", xff)
	req.RemoteAddr = remoteAddr
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec.Code
}

func TestAPI_RateLimitIgnoresForwardedForByDefault(t *testing.T) {
	t.Parallel()

	limiter := cache.NewLocalLimiter(1, 2, time.Minute)
	t.Cleanup(limiter.Stop)

	f := newAPIFixture(t, func(cfg *RouterConfig) {
		cfg.RateLimit.Limiter = limiter
		cfg.RateLimit.Enabled = true
	})

	limited := 0
	for i := 0; i < 20; i++ {
		if loginFrom(f.router, "203.0.113.7:5555", fmt.Sprintf("10.0.0.%d", i)) == http.StatusTooManyRequests {
			limited++
		}
	}
	// Burst 2 at 1 rps: at most one token can refill during the loop.
	if limited < 17 {
		t.Errorf("rate limited %d of 20 logins from one socket, want at least 17", limited)
	}
}

func TestAPI_RateLimitUsesForwardedForBehindTrustedProxy(t *testing.T) {
	t.Parallel()

	limiter := cache.NewLocalLimiter(1, 2, time.Minute)
	t.Cleanup(limiter.Stop)

	f := newAPIFixture(t, func(cfg *RouterConfig) {
		cfg.RateLimit.Limiter = limiter
		cfg.RateLimit.Enabled = true
		cfg.TrustProxyHeaders = true
	})

	// Two clients behind the same proxy get separate buckets.
	for i := 0; i < 2; i++ {
		if got := loginFrom(f.router, "10.1.1.1:443", "198.51.100.10"); got != http.StatusUnauthorized {
			t.Fatalf("client A request %d: status = %d, want 401", i, got)
		}
	}
	if got := loginFrom(f.router, "10.1.1.1:443", "198.51.100.10"); got != http.StatusTooManyRequests {
		t.Errorf("client A over burst: status = %d, want 429", got)
	}
	if got := loginFrom(f.router, "10.1.1.1:443", "198.51.100.11"); got != http.StatusUnauthorized {
		t.Errorf("client B: status = %d, want 401", got)
	}
}

func TestAPI_MetricsEndpoint(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	collector := metrics.NewCollector(reg)

	f := newAPIFixture(t, func(cfg *RouterConfig) {
		cfg.Metrics = collector
		cfg.MetricsHandler = metrics.Handler(reg)
	})

	f.call(http.MethodGet, "/events", "", nil, http.StatusOK)

	status, body := f.do(http.MethodGet, "/metrics", "", nil)
	if status != http.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}
	if !strings.Contains(string(body), `eventhub_http_request_duration_seconds_count{method="GET",route="/events`) {
		t.Errorf("request metric missing from output:\n%s", body)
	}
}

func TestAPI_MetricsRouteAbsentWithoutHandler(t *testing.T) {
	t.Parallel()

	f := newAPIFixture(t)
	f.call(http.MethodGet, "/metrics", "", nil, http.StatusNotFound)
}

func TestAPI_SecurityHeaders(t *testing.T) {
	t.Parallel()

	f := newAPIFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("security headers not applied")
	}
	if rec.Header().Get(middleware.RequestIDHeader) == "" {
		t.Error("request id header not set")
	}
}
