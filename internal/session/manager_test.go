package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"buyer-lead-console/internal/api"
	"buyer-lead-console/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// fakeProfileAPI scripts the /auth/me outcome and counts calls
type fakeProfileAPI struct {
	identity *models.Identity
	err      error
	calls    int
}

func (f *fakeProfileAPI) Me(cred api.Credential) (*models.Identity, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.identity, nil
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	claims := jwt.MapClaims{"sub": "u1", "exp": exp.Unix()}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatal(err)
	}
	return tok
}

func testIdentity() *models.Identity {
	return &models.Identity{ID: "u1", Email: "agent@example.com", Role: models.RoleAgent}
}

func TestResolve_AcceptedTokenAuthenticates(t *testing.T) {
	store := NewMemoryStore()
	profile := &fakeProfileAPI{identity: testIdentity()}
	m := NewManager(store, profile, "bl_session", time.Hour, 5*time.Minute)

	store.Put("sid", "opaque-token", time.Hour)

	identity, handle := m.Resolve("sid")
	if identity == nil || identity.ID != "u1" {
		t.Fatalf("identity = %+v, want u1", identity)
	}
	if handle.Token() != "opaque-token" {
		t.Errorf("handle token = %q", handle.Token())
	}
}

func TestResolve_RejectedTokenIsRemoved(t *testing.T) {
	store := NewMemoryStore()
	profile := &fakeProfileAPI{err: &api.Error{StatusCode: http.StatusUnauthorized, Message: "expired"}}
	m := NewManager(store, profile, "bl_session", time.Hour, 5*time.Minute)

	store.Put("sid", "stale-token", time.Hour)

	identity, handle := m.Resolve("sid")
	if identity != nil {
		t.Errorf("identity = %+v, want nil", identity)
	}
	if handle.Token() != "" {
		t.Errorf("handle should carry no token after rejection, got %q", handle.Token())
	}
	if tok, _ := store.Get("sid"); tok != "" {
		t.Errorf("rejected token still in store: %q", tok)
	}
}

func TestResolve_TransientFailureKeepsToken(t *testing.T) {
	store := NewMemoryStore()
	profile := &fakeProfileAPI{err: &api.Error{StatusCode: 0, Message: api.GenericErrorMessage}}
	m := NewManager(store, profile, "bl_session", time.Hour, 5*time.Minute)

	store.Put("sid", "good-token", time.Hour)

	identity, handle := m.Resolve("sid")
	if identity != nil {
		t.Errorf("identity = %+v, want nil during outage", identity)
	}
	if handle.Token() != "good-token" {
		t.Errorf("token must survive a transient failure, got %q", handle.Token())
	}
	if tok, _ := store.Get("sid"); tok != "good-token" {
		t.Errorf("store token = %q, want good-token", tok)
	}
}

func TestResolve_LocallyExpiredJWTSkipsNetwork(t *testing.T) {
	store := NewMemoryStore()
	profile := &fakeProfileAPI{identity: testIdentity()}
	m := NewManager(store, profile, "bl_session", time.Hour, 5*time.Minute)

	store.Put("sid", signedToken(t, time.Now().Add(-time.Hour)), time.Hour)

	identity, _ := m.Resolve("sid")
	if identity != nil {
		t.Errorf("identity = %+v, want nil for expired token", identity)
	}
	if profile.calls != 0 {
		t.Errorf("profile endpoint called %d times, expired tokens drop locally", profile.calls)
	}
	if tok, _ := store.Get("sid"); tok != "" {
		t.Errorf("expired token still in store: %q", tok)
	}
}

func TestResolve_IdentityCacheAvoidsRepeatCalls(t *testing.T) {
	store := NewMemoryStore()
	profile := &fakeProfileAPI{identity: testIdentity()}
	m := NewManager(store, profile, "bl_session", time.Hour, 5*time.Minute)

	store.Put("sid", "opaque-token", time.Hour)

	m.Resolve("sid")
	m.Resolve("sid")
	m.Resolve("sid")

	if profile.calls != 1 {
		t.Errorf("profile endpoint called %d times, want 1 within the cache TTL", profile.calls)
	}
}

func TestResolve_MissingSession(t *testing.T) {
	store := NewMemoryStore()
	profile := &fakeProfileAPI{identity: testIdentity()}
	m := NewManager(store, profile, "bl_session", time.Hour, 5*time.Minute)

	identity, handle := m.Resolve("never-established")
	if identity != nil || handle.Token() != "" {
		t.Errorf("unknown session resolved to %+v / %q", identity, handle.Token())
	}
	if profile.calls != 0 {
		t.Errorf("profile endpoint called %d times for an unknown session", profile.calls)
	}
}

func TestHandle_ClearDropsSession(t *testing.T) {
	store := NewMemoryStore()
	profile := &fakeProfileAPI{identity: testIdentity()}
	m := NewManager(store, profile, "bl_session", time.Hour, 5*time.Minute)

	store.Put("sid", "opaque-token", time.Hour)
	_, handle := m.Resolve("sid")

	handle.Clear()
	if tok, _ := store.Get("sid"); tok != "" {
		t.Errorf("Clear left token in store: %q", tok)
	}
}

func TestEstablishAndLogout(t *testing.T) {
	gin.SetMode(gin.TestMode)

	store := NewMemoryStore()
	profile := &fakeProfileAPI{identity: testIdentity()}
	m := NewManager(store, profile, "bl_session", time.Hour, 5*time.Minute)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/login", nil)

	if err := m.Establish(c, "fresh-token", *testIdentity()); err != nil {
		t.Fatal(err)
	}

	cookies := w.Result().Cookies()
	var sessionID string
	for _, ck := range cookies {
		if ck.Name == "bl_session" {
			sessionID = ck.Value
		}
	}
	if sessionID == "" {
		t.Fatal("no session cookie set")
	}
	if tok, _ := store.Get(sessionID); tok != "fresh-token" {
		t.Errorf("store token = %q, want fresh-token", tok)
	}

	// Logout drops the token and expires the cookie without a network call
	w2 := httptest.NewRecorder()
	c2, _ := gin.CreateTestContext(w2)
	c2.Request = httptest.NewRequest(http.MethodPost, "/logout", nil)
	c2.Request.AddCookie(&http.Cookie{Name: "bl_session", Value: sessionID})

	m.Logout(c2)

	if tok, _ := store.Get(sessionID); tok != "" {
		t.Errorf("token survived logout: %q", tok)
	}
	var cleared bool
	for _, ck := range w2.Result().Cookies() {
		if ck.Name == "bl_session" && ck.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Error("logout did not expire the session cookie")
	}
}

func TestEstablish_TTLCappedByTokenExpiry(t *testing.T) {
	gin.SetMode(gin.TestMode)

	store := NewMemoryStore()
	profile := &fakeProfileAPI{identity: testIdentity()}
	m := NewManager(store, profile, "bl_session", 24*time.Hour, 5*time.Minute)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/login", nil)

	// Token expires in 10 minutes; the cookie must not outlive it
	tok := signedToken(t, time.Now().Add(10*time.Minute))
	if err := m.Establish(c, tok, *testIdentity()); err != nil {
		t.Fatal(err)
	}

	for _, ck := range w.Result().Cookies() {
		if ck.Name == "bl_session" {
			if ck.MaxAge > int((10 * time.Minute).Seconds()) {
				t.Errorf("cookie MaxAge = %d, want at most 600", ck.MaxAge)
			}
			return
		}
	}
	t.Fatal("no session cookie set")
}

func TestSweep(t *testing.T) {
	store := NewMemoryStore()
	profile := &fakeProfileAPI{identity: testIdentity()}
	m := NewManager(store, profile, "bl_session", time.Hour, 5*time.Minute)

	store.Put("live", "tok1", time.Hour)
	store.Put("dead", "tok2", -time.Second)

	m.Sweep()

	if tok, _ := store.Get("live"); tok != "tok1" {
		t.Errorf("live session lost in sweep: %q", tok)
	}
	if tok, _ := store.Get("dead"); tok != "" {
		t.Errorf("expired session survived sweep: %q", tok)
	}
}
