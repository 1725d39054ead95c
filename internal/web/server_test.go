package web

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/voicecast/voicecast/internal/auth"
	"github.com/voicecast/voicecast/internal/config"
	"github.com/voicecast/voicecast/internal/db"
)

// ---------------------------------------------------------------------------
// Fake adapters
// ---------------------------------------------------------------------------

type fakeIdentity struct {
	claims auth.Claims
	err    error
}

func (f *fakeIdentity) AuthCodeURL(state string) string {
	return "https://accounts.example.com/auth?state=" + state
}

func (f *fakeIdentity) Exchange(ctx context.Context, code string) (auth.Claims, error) {
	if f.err != nil {
		return auth.Claims{}, f.err
	}
	return f.claims, nil
}

type fakeCaptcha struct {
	mu     sync.Mutex
	ok     bool
	err    error
	tokens []string
}

func (f *fakeCaptcha) Verify(ctx context.Context, token string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens = append(f.tokens, token)
	return f.ok, f.err
}

type fakeSpeech struct {
	mu    sync.Mutex
	audio []byte
	err   error
	texts []string
}

func (f *fakeSpeech) Synthesize(ctx context.Context, text string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.texts = append(f.texts, text)
	return f.audio, nil
}

type placedCall struct {
	To          string
	CallbackURL string
}

type fakeCaller struct {
	mu    sync.Mutex
	sid   string
	err   error
	calls []placedCall
}

func (f *fakeCaller) PlaceCall(ctx context.Context, to, callbackURL string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	f.calls = append(f.calls, placedCall{To: to, CallbackURL: callbackURL})
	return f.sid, nil
}

func (f *fakeCaller) placed() []placedCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]placedCall, len(f.calls))
	copy(out, f.calls)
	return out
}

// ---------------------------------------------------------------------------
// Test app harness
// ---------------------------------------------------------------------------

type testApp struct {
	router   *gin.Engine
	db       *gorm.DB
	cfg      *config.Config
	sessions *auth.Sessions
	identity *fakeIdentity
	captcha  *fakeCaptcha
	speech   *fakeSpeech
	caller   *fakeCaller
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	// A fresh pool connection would see an empty in-memory database, so
	// keep everything on one connection.
	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	cfg := &config.Config{
		Port:      5000,
		BaseURL:   "http://app.test",
		StaticDir: t.TempDir(),
	}

	app := &testApp{
		db:       conn,
		cfg:      cfg,
		sessions: auth.NewSessions("test-key"),
		identity: &fakeIdentity{claims: auth.Claims{Email: "alice@example.com", Name: "Alice"}},
		captcha:  &fakeCaptcha{ok: true},
		speech:   &fakeSpeech{audio: []byte("mp3-bytes")},
		caller:   &fakeCaller{sid: "CA123"},
	}

	router, err := newRouter(StartOpts{
		DB:       conn,
		Config:   cfg,
		Sessions: app.sessions,
		Identity: app.identity,
		Captcha:  app.captcha,
		Speech:   app.speech,
		Calls:    app.caller,
	})
	if err != nil {
		t.Fatalf("newRouter: %v", err)
	}
	app.router = router
	return app
}

// signIn writes identity claims into a session cookie without driving the
// OAuth flow, and returns the cookies to attach to later requests.
func (a *testApp) signIn(t *testing.T, claims auth.Claims) []*http.Cookie {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/login/callback", nil)
	if err := a.sessions.SaveUser(rec, req, claims); err != nil {
		t.Fatalf("SaveUser: %v", err)
	}
	return rec.Result().Cookies()
}

func (a *testApp) do(req *http.Request, cookies []*http.Cookie) *httptest.ResponseRecorder {
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func formRequest(path string, form map[string]string) *http.Request {
	values := url.Values{}
	for k, v := range form {
		values.Set(k, v)
	}
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}
