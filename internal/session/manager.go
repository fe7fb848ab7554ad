package session

import (
	"log"
	"sync"
	"time"

	"buyer-lead-console/internal/api"
	"buyer-lead-console/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// ProfileAPI is the slice of the gateway the session manager needs
type ProfileAPI interface {
	Me(cred api.Credential) (*models.Identity, error)
}

const (
	ctxIdentityKey = "session.identity"
	ctxHandleKey   = "session.handle"
)

type cachedIdentity struct {
	identity  models.Identity
	expiresAt time.Time
}

// Manager resolves browser sessions to identities. Tokens live in the Store;
// verified identities are cached briefly to keep page loads from hitting the
// profile endpoint every time.
type Manager struct {
	store      Store
	api        ProfileAPI
	cookieName string
	ttl        time.Duration
	cacheTTL   time.Duration

	mu         sync.Mutex
	identities map[string]cachedIdentity
}

func NewManager(store Store, profileAPI ProfileAPI, cookieName string, ttl, cacheTTL time.Duration) *Manager {
	return &Manager{
		store:      store,
		api:        profileAPI,
		cookieName: cookieName,
		ttl:        ttl,
		cacheTTL:   cacheTTL,
		identities: make(map[string]cachedIdentity),
	}
}

// Handle is one session's credential, handed to the API gateway. Clear is the
// gateway's 401 side effect: it drops the persisted token and cached identity.
type Handle struct {
	m         *Manager
	sessionID string
	token     string
}

func (h Handle) Token() string { return h.token }

func (h Handle) Clear() {
	if h.m != nil && h.sessionID != "" {
		h.m.drop(h.sessionID)
	}
}

// Middleware resolves the session cookie on every request and exposes the
// identity and credential to handlers
func (m *Manager) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID, err := c.Cookie(m.cookieName)
		if err != nil || sessionID == "" {
			c.Set(ctxHandleKey, Handle{})
			c.Next()
			return
		}

		identity, handle := m.Resolve(sessionID)
		c.Set(ctxHandleKey, handle)
		if identity != nil {
			c.Set(ctxIdentityKey, identity)
		}
		c.Next()
	}
}

// Resolve loads the session's token and verified identity. Locally expired
// tokens are dropped without a network call; otherwise the identity comes
// from the cache or from the profile endpoint. A definitive rejection of the
// token clears it.
func (m *Manager) Resolve(sessionID string) (*models.Identity, Handle) {
	token, err := m.store.Get(sessionID)
	if err != nil {
		log.Printf("[session] store get failed: %v", err)
		return nil, Handle{}
	}
	if token == "" {
		return nil, Handle{}
	}

	if expired(token) {
		m.drop(sessionID)
		return nil, Handle{}
	}

	handle := Handle{m: m, sessionID: sessionID, token: token}

	if identity := m.cached(sessionID); identity != nil {
		return identity, handle
	}

	identity, err := m.api.Me(handle)
	if err != nil {
		if apiErr, ok := api.AsError(err); ok && apiErr.IsUnauthorized() {
			// Rejected during verification: /auth/me is gateway-exempt, so
			// the clearing happens here
			m.drop(sessionID)
			return nil, Handle{}
		}
		// Transient failure: identity not known for this request, token kept
		log.Printf("[session] profile check failed: %v", err)
		return nil, handle
	}

	m.cacheIdentity(sessionID, *identity)
	return identity, handle
}

// Establish stores a fresh token for a new session and sets the cookie
func (m *Manager) Establish(c *gin.Context, token string, identity models.Identity) error {
	sessionID := NewSessionID()

	ttl := m.ttl
	if exp := expiry(token); exp != nil {
		if until := time.Until(*exp); until > 0 && until < ttl {
			ttl = until
		}
	}

	if err := m.store.Put(sessionID, token, ttl); err != nil {
		return err
	}
	m.cacheIdentity(sessionID, identity)

	c.SetCookie(m.cookieName, sessionID, int(ttl.Seconds()), "/", "", false, true)
	return nil
}

// Logout clears the token, cached identity, and cookie. It requires no
// network call to succeed.
func (m *Manager) Logout(c *gin.Context) {
	if sessionID, err := c.Cookie(m.cookieName); err == nil && sessionID != "" {
		m.drop(sessionID)
	}
	c.SetCookie(m.cookieName, "", -1, "/", "", false, true)
}

// Sweep purges expired sessions; wired to a cron schedule at startup
func (m *Manager) Sweep() {
	removed, err := m.store.DeleteExpired()
	if err != nil {
		log.Printf("[session] sweep failed: %v", err)
		return
	}

	m.mu.Lock()
	now := time.Now()
	for id, entry := range m.identities {
		if now.After(entry.expiresAt) {
			delete(m.identities, id)
		}
	}
	m.mu.Unlock()

	if removed > 0 {
		log.Printf("[session] sweep removed %d expired sessions", removed)
	}
}

func (m *Manager) drop(sessionID string) {
	if err := m.store.Delete(sessionID); err != nil {
		log.Printf("[session] store delete failed: %v", err)
	}
	m.mu.Lock()
	delete(m.identities, sessionID)
	m.mu.Unlock()
}

func (m *Manager) cached(sessionID string) *models.Identity {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.identities[sessionID]
	if !ok || time.Now().After(entry.expiresAt) {
		return nil
	}
	identity := entry.identity
	return &identity
}

func (m *Manager) cacheIdentity(sessionID string, identity models.Identity) {
	m.mu.Lock()
	m.identities[sessionID] = cachedIdentity{
		identity:  identity,
		expiresAt: time.Now().Add(m.cacheTTL),
	}
	m.mu.Unlock()
}

// Identity returns the request's authenticated identity, or nil
func Identity(c *gin.Context) *models.Identity {
	if v, ok := c.Get(ctxIdentityKey); ok {
		if identity, ok := v.(*models.Identity); ok {
			return identity
		}
	}
	return nil
}

// Credential returns the request's API credential. Anonymous requests get a
// credential with no token.
func Credential(c *gin.Context) api.Credential {
	if v, ok := c.Get(ctxHandleKey); ok {
		if handle, ok := v.(Handle); ok && handle.token != "" {
			return handle
		}
	}
	return api.Anonymous()
}

// expiry extracts the exp claim without verifying the signature. The remote
// API is the verifier; this only lets the console drop a token that cannot
// possibly be accepted anymore.
func expiry(token string) *time.Time {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil
	}
	return &exp.Time
}

func expired(token string) bool {
	exp := expiry(token)
	return exp != nil && time.Now().After(*exp)
}
