package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMeta(t *testing.T) {
	assert.Equal(t, Meta{Total: 23, Page: 2, Limit: 10, Pages: 3, HasNext: true, HasPrev: true}, NewMeta(2, 10, 23))
	assert.Equal(t, Meta{Total: 0, Page: 1, Limit: 10}, NewMeta(1, 10, 0))
	assert.False(t, NewMeta(3, 10, 23).HasNext)
}

func TestErrorsCarryStatusCode(t *testing.T) {
	rr := httptest.NewRecorder()
	ValidationError(rr, map[string]string{"name": "This field is required"})

	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var body Response
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.False(t, body.Success)
	require.NotNil(t, body.Error)
	assert.Equal(t, "VALIDATION_ERROR", body.Error.Code)
	assert.Equal(t, "This field is required", body.Error.Details["name"])
}

func TestAcceptedIsSuccess(t *testing.T) {
	rr := httptest.NewRecorder()
	Accepted(rr, map[string]int{"tokens": 25})

	var body Response
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, http.StatusAccepted, rr.Code)
	assert.True(t, body.Success)
	assert.Nil(t, body.Error)
}
