package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	xerrors "storefront-crm/internal/pkg/errors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func render(t *testing.T, err error) (int, Response) {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	FromError(c, "failed to create store", err)

	var body Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, c.IsAborted())
	return w.Code, body
}

func TestFromError_StatusMapping(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{fmt.Errorf("lookup: %w", xerrors.ErrNotFound), http.StatusNotFound},
		{xerrors.Invalid("score out of range"), http.StatusBadRequest},
		{xerrors.ErrInvalidReference, http.StatusBadRequest},
		{fmt.Errorf("move: %w", xerrors.ErrInvalidTransition), http.StatusUnprocessableEntity},
		{xerrors.ErrForbidden, http.StatusForbidden},
		{xerrors.ErrUnauthorized, http.StatusUnauthorized},
		{xerrors.ErrConflict, http.StatusConflict},
		{errors.New("connection reset"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		code, body := render(t, tc.err)
		assert.Equal(t, tc.code, code, "%v", tc.err)
		assert.False(t, body.Success)
	}
}

func TestFromError_ConflictMessageIsUserFacing(t *testing.T) {
	err := fmt.Errorf("insert store: %w", &xerrors.ConflictError{
		Resource: "store", Field: "subdomain", Message: "subdomain is already taken",
	})

	code, body := render(t, err)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "subdomain is already taken", body.Message)
}

func TestFromError_HidesInternalDetail(t *testing.T) {
	_, body := render(t, errors.New("pq: password authentication failed"))
	assert.Empty(t, body.Error)
	assert.Equal(t, "failed to create store", body.Message)
}
