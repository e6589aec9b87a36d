package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/virtual-client-backend/internal/apierr"
	"github.com/yungbote/virtual-client-backend/internal/services"
)

func newTestContext(t *testing.T) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	return c, rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) ErrorEnvelope {
	t.Helper()
	var envelope ErrorEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	return envelope
}

func TestRespondServiceErrorWithAPIError(t *testing.T) {
	c, rec := newTestContext(t)

	RespondServiceError(c, apierr.Newf(http.StatusNotFound, "session_not_found", "session not found"))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	envelope := decodeEnvelope(t, rec)
	assert.Equal(t, "session_not_found", envelope.Error.Code)
	assert.Equal(t, "session not found", envelope.Error.Message)
}

func TestRespondServiceErrorWrapsUnknownAsInternal(t *testing.T) {
	c, rec := newTestContext(t)

	RespondServiceError(c, errors.New("database exploded"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	envelope := decodeEnvelope(t, rec)
	assert.Equal(t, "internal_error", envelope.Error.Code)
}

func TestRespondServiceErrorSetsRetryAfter(t *testing.T) {
	c, rec := newTestContext(t)

	err := apierr.New(http.StatusTooManyRequests, "rate_limited",
		&services.RateLimitedError{RetryAfter: 2500 * time.Millisecond})
	RespondServiceError(c, err)

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	// 2.5s rounds up to the next whole second.
	assert.Equal(t, "3", rec.Header().Get("Retry-After"))
	envelope := decodeEnvelope(t, rec)
	assert.Equal(t, "rate_limited", envelope.Error.Code)
}

func TestRespondServiceErrorRetryAfterFloor(t *testing.T) {
	c, rec := newTestContext(t)

	err := apierr.New(http.StatusTooManyRequests, "rate_limited",
		&services.RateLimitedError{RetryAfter: 10 * time.Millisecond})
	RespondServiceError(c, err)

	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
}
