package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"fintrack/internal/core"
	"fintrack/internal/storage/memory"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func newAuthenticator() *PasswordAuthenticator {
	return NewPasswordAuthenticator(memory.New(), nil).WithCost(bcrypt.MinCost)
}

func TestRegisterAndAuthenticate(t *testing.T) {
	ctx := context.Background()
	a := newAuthenticator()

	user, err := a.Register(ctx, " alice ", "correct horse")
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.Equal(t, "alice", user.Username)
	assert.NotEqual(t, "correct horse", user.PasswordHash)

	_, err = a.Register(ctx, "alice", "another password")
	assert.ErrorIs(t, err, core.ErrDuplicateUsername)

	got, err := a.Authenticate(ctx, "alice", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = a.Authenticate(ctx, "alice", "wrong password")
	assert.ErrorIs(t, err, core.ErrInvalidCredentials)

	_, err = a.Authenticate(ctx, "nobody", "correct horse")
	assert.ErrorIs(t, err, core.ErrInvalidCredentials)

	_, err = a.Authenticate(ctx, "", "")
	assert.ErrorIs(t, err, core.ErrInvalidCredentials)
}

func TestRegisterValidation(t *testing.T) {
	a := newAuthenticator()

	tests := []struct {
		name     string
		username string
		password string
		field    string
	}{
		{"missing username", "", "password123", "username"},
		{"short username", "ab", "password123", "username"},
		{"long username", strings.Repeat("u", 51), "password123", "username"},
		{"short password", "alice", "short", "password"},
		{"long password", "alice", strings.Repeat("p", 73), "password"},
		{"multibyte password over 72 bytes", "alice", strings.Repeat("é", 40), "password"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := a.Register(context.Background(), tt.username, tt.password)
			var verr *core.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
			assert.ErrorIs(t, err, core.ErrValidation)
		})
	}
}

func TestRegisterMultibytePasswordAtLimit(t *testing.T) {
	a := newAuthenticator()
	password := strings.Repeat("é", 36)

	_, err := a.Register(context.Background(), "alice", password)
	require.NoError(t, err)

	_, err = a.Authenticate(context.Background(), "alice", password)
	assert.NoError(t, err)
}

func TestJWTManager(t *testing.T) {
	m := NewJWTManager(testSecret, time.Hour)
	s := Session{ID: "sess-1", UserID: 42, Username: "alice"}

	token, err := m.Generate(s)
	require.NoError(t, err)

	claims, err := m.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "sess-1", claims.SessionID())
	assert.Equal(t, "42", claims.Subject)

	t.Run("wrong secret", func(t *testing.T) {
		other := NewJWTManager([]byte("another-secret-another-secret-xx"), time.Hour)
		_, err := other.Validate(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		later := NewJWTManager(testSecret, time.Hour)
		later.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		_, err := later.Validate(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("none algorithm rejected", func(t *testing.T) {
		unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{
			UserID:           42,
			RegisteredClaims: jwt.RegisteredClaims{ID: "sess-1", Issuer: issuer},
		}).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = m.Validate(unsigned)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := m.Validate("not-a-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestMemorySessions(t *testing.T) {
	ctx := context.Background()
	store := NewMemorySessions(10, time.Hour)

	s := Session{ID: "a", UserID: 1, ExpiresAt: time.Now().Add(time.Hour)}
	require.NoError(t, store.Create(ctx, s))

	got, err := store.Lookup(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.UserID)

	require.NoError(t, store.Delete(ctx, "a"))
	_, err = store.Lookup(ctx, "a")
	assert.ErrorIs(t, err, core.ErrNotAuthenticated)

	err = store.Create(ctx, Session{ID: "old", ExpiresAt: time.Now().Add(-time.Minute)})
	assert.Error(t, err)
}

func TestRedisSessionsUnavailable(t *testing.T) {
	client := NewRedisClient("127.0.0.1:1", "", 0)
	defer client.Close()
	store := NewRedisSessions(client)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	err := store.Create(ctx, Session{ID: "a", UserID: 1, ExpiresAt: time.Now().Add(time.Hour)})
	assert.Error(t, err, "create must surface the outage")

	_, err = store.Lookup(ctx, "a")
	assert.ErrorIs(t, err, core.ErrNotAuthenticated, "lookup fails safe")
}

func newManager() *Manager {
	return NewManager(ManagerConfig{Secret: testSecret, TTL: time.Hour}, NewMemorySessions(100, time.Hour))
}

func cookieFrom(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == DefaultCookieName {
			return c
		}
	}
	t.Fatalf("session cookie not set")
	return nil
}

func TestManagerLifecycle(t *testing.T) {
	m := newManager()
	user := &core.User{ID: 7, Username: "alice"}

	rec := httptest.NewRecorder()
	s, err := m.Start(context.Background(), rec, user)
	require.NoError(t, err)
	cookie := cookieFrom(t, rec)
	assert.True(t, cookie.HttpOnly)

	req := httptest.NewRequest(http.MethodGet, "/home", nil)
	req.AddCookie(cookie)
	got, err := m.Current(req)
	require.NoError(t, err)
	assert.Equal(t, s.ID, got.ID)
	assert.Equal(t, int64(7), got.UserID)

	out := httptest.NewRecorder()
	m.End(out, req)
	cleared := cookieFrom(t, out)
	assert.Equal(t, "", cleared.Value)
	assert.Less(t, cleared.MaxAge, 0)

	// The old cookie no longer resolves once the session is revoked.
	_, err = m.Current(req)
	assert.ErrorIs(t, err, core.ErrNotAuthenticated)
}

func TestManagerRejectsTamperedCookie(t *testing.T) {
	m := newManager()
	rec := httptest.NewRecorder()
	_, err := m.Start(context.Background(), rec, &core.User{ID: 1, Username: "alice"})
	require.NoError(t, err)
	cookie := cookieFrom(t, rec)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: DefaultCookieName, Value: cookie.Value + "x"})
	_, err = m.Current(req)
	assert.ErrorIs(t, err, core.ErrNotAuthenticated)

	_, err = m.Current(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.ErrorIs(t, err, core.ErrNotAuthenticated)
}

func TestRequireAuth(t *testing.T) {
	m := newManager()
	denied := func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/login", http.StatusFound)
	}
	protected := m.LoadSession(RequireAuth(denied)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := UserID(r.Context())
		require.NoError(t, err)
		assert.Equal(t, int64(3), id)
		w.WriteHeader(http.StatusNoContent)
	})))

	rec := httptest.NewRecorder()
	protected.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dashboard", nil))
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))

	login := httptest.NewRecorder()
	_, err := m.Start(context.Background(), login, &core.User{ID: 3, Username: "carol"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(cookieFrom(t, login))
	rec = httptest.NewRecorder()
	protected.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
