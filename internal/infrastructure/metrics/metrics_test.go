package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordSubmission(t *testing.T) {
	m := New("attendance_hub")

	m.RecordSubmission("submitted")
	m.RecordSubmission("submitted")
	m.RecordSubmission("already_submitted")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.submissions.WithLabelValues("submitted")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.submissions.WithLabelValues("already_submitted")))
}

func TestObserveRequest(t *testing.T) {
	m := New("attendance_hub")

	m.ObserveRequest(http.MethodPost, "/api/v1/attendance", http.StatusCreated, 20*time.Millisecond)
	m.ObserveRequest(http.MethodPost, "/api/v1/attendance", http.StatusConflict, 5*time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("POST", "/api/v1/attendance", "201")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("POST", "/api/v1/attendance", "409")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.requestDuration))
}

func TestHandler_ExposesCollectors(t *testing.T) {
	m := New("attendance_hub")
	m.RecordSubmission("submitted")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `attendance_hub_attendance_submissions_total{outcome="submitted"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}
