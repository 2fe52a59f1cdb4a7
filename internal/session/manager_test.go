package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gopherauth/internal/pkg/jwtutil"
)

func newManager() *Manager {
	return NewManager(Options{Secret: "test-secret", TTL: time.Hour, CookieName: "sid"})
}

// carry copies the cookies set on rec onto a fresh request, like a browser.
func carry(t *testing.T, rec *httptest.ResponseRecorder) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		if c.MaxAge < 0 {
			continue
		}
		req.AddCookie(c)
	}
	return req
}

func TestManager_StartThenCurrent(t *testing.T) {
	m := newManager()
	rec := httptest.NewRecorder()
	require.NoError(t, m.Start(rec, 7, "alice"))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "sid", cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, cookies[0].SameSite)
	assert.Equal(t, 3600, cookies[0].MaxAge)

	id, ok := m.Current(carry(t, rec))
	require.True(t, ok)
	assert.Equal(t, &Identity{UserID: 7, Username: "alice"}, id)
}

func TestManager_CurrentWithoutCookie(t *testing.T) {
	id, ok := newManager().Current(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.False(t, ok)
	assert.Nil(t, id)
}

func TestManager_EndClearsCookie(t *testing.T) {
	m := newManager()
	rec := httptest.NewRecorder()
	m.End(rec)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "sid", cookies[0].Name)
	assert.Equal(t, "", cookies[0].Value)
	assert.Less(t, cookies[0].MaxAge, 0)

	_, ok := m.Current(carry(t, rec))
	assert.False(t, ok)
}

func TestManager_RejectsForeignAndTamperedTokens(t *testing.T) {
	m := newManager()

	foreign, err := jwtutil.GenerateToken("other-secret", time.Hour, 1, "admin")
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "sid", Value: foreign})
	_, ok := m.Current(req)
	assert.False(t, ok)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "sid", Value: "not.a.token"})
	_, ok = m.Current(req)
	assert.False(t, ok)
}

func TestManager_RejectsExpiredToken(t *testing.T) {
	m := newManager()
	expired, err := jwtutil.GenerateToken("test-secret", -time.Second, 1, "alice")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "sid", Value: expired})
	_, ok := m.Current(req)
	assert.False(t, ok)
}
