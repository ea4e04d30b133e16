package mpa

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProcessBatchRejectsBadRequests(t *testing.T) {
	h := ProcessBatch(nil, nil)

	r := httptest.NewRequest(http.MethodGet, "/mpa/process", nil)
	w := httptest.NewRecorder()
	h(w, r)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)

	r = httptest.NewRequest(http.MethodPost, "/mpa/process", strings.NewReader(`{}`))
	w = httptest.NewRecorder()
	h(w, r)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "batch_id required")

	r = httptest.NewRequest(http.MethodPost, "/mpa/process", strings.NewReader(`{"batch_id":"not-a-uuid"}`))
	w = httptest.NewRecorder()
	h(w, r)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "UUID")
}
