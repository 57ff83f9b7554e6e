package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCollectorCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordRegistration(ResultSuccess)
	c.RecordRegistration(ResultSuccess)
	c.RecordRegistration(ResultInvalid)
	c.RecordVerification(ResultExpired)
	c.RecordLogin(ResultUnauthorized)
	c.RecordLogout(ResultSuccess)
	c.RecordNotificationFailure("email")

	if got := testutil.ToFloat64(c.registrations.WithLabelValues(ResultSuccess)); got != 2 {
		t.Errorf("registrations{success} = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.registrations.WithLabelValues(ResultInvalid)); got != 1 {
		t.Errorf("registrations{invalid} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.verifications.WithLabelValues(ResultExpired)); got != 1 {
		t.Errorf("verifications{expired} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.logins.WithLabelValues(ResultUnauthorized)); got != 1 {
		t.Errorf("logins{unauthorized} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.notifyFailures.WithLabelValues("email")); got != 1 {
		t.Errorf("notification failures = %v, want 1", got)
	}
}

func TestHandlerExposesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.RecordLogin(ResultSuccess)
	c.RecordHTTPRequest(http.MethodPost, "/login", http.StatusOK, 20*time.Millisecond)

	srv := httptest.NewServer(c.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("get metrics: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	for _, want := range []string{
		`regauth_logins_total{result="success"} 1`,
		`regauth_http_requests_total{method="POST",route="/login",status_code="200"} 1`,
	} {
		if !strings.Contains(string(body), want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}

func TestNopSatisfiesRecorder(t *testing.T) {
	var _ Recorder = Nop{}
	var _ Recorder = (*Collector)(nil)
}
