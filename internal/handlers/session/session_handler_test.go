package session

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeRevoker struct {
	jti string
	ttl time.Duration
	err error
}

func (f *fakeRevoker) Revoke(_ context.Context, jti string, ttl time.Duration) error {
	f.jti, f.ttl = jti, ttl
	return f.err
}

func serve(h *SessionHandler, jti string, exp time.Time) *httptest.ResponseRecorder {
	r := gin.New()
	r.POST("/logout", func(c *gin.Context) {
		if jti != "" {
			c.Set("jti", jti)
		}
		if !exp.IsZero() {
			c.Set("token_expiry", exp)
		}
	}, h.Logout)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/logout", nil))
	return w
}

func TestLogout(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	rev := &fakeRevoker{}
	h := NewSessionHandler(rev)
	h.now = func() time.Time { return now }

	w := serve(h, "jti-1", now.Add(30*time.Minute))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "jti-1", rev.jti)
	assert.Equal(t, 30*time.Minute, rev.ttl)
}

func TestLogout_MissingJTI(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, serve(NewSessionHandler(&fakeRevoker{}), "", time.Time{}).Code)
}

func TestLogout_StoreFailure(t *testing.T) {
	w := serve(NewSessionHandler(&fakeRevoker{err: errors.New("redis down")}), "jti-1", time.Now().Add(time.Hour))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
