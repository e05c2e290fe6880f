package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/includeshubhamgenius/skill-share/internal/flow"
)

func TestIncrementCountsEvents(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector := NewCollector(reg)

	collector.Increment(flow.EventLoginMain)
	collector.Increment(flow.EventLoginMain)
	collector.Increment(flow.EventSignupDenylist)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	found := false
	for _, family := range families {
		if family.GetName() != "skillstream_auth_events_total" {
			continue
		}
		found = true
		if len(family.GetMetric()) != 2 {
			t.Fatalf("expected 2 labeled series, got %d", len(family.GetMetric()))
		}
		for _, metric := range family.GetMetric() {
			value := metric.GetCounter().GetValue()
			label := metric.GetLabel()[0].GetValue()
			switch label {
			case flow.EventLoginMain:
				if value != 2 {
					t.Errorf("login.main = %v, want 2", value)
				}
			case flow.EventSignupDenylist:
				if value != 1 {
					t.Errorf("signup.denylist = %v, want 1", value)
				}
			default:
				t.Errorf("unexpected event label %q", label)
			}
		}
	}
	if !found {
		t.Error("skillstream_auth_events_total metric not found")
	}
}

func TestObserveLoginLatency(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector := NewCollector(reg)

	collector.ObserveLoginLatency(120 * time.Millisecond)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}
	for _, family := range families {
		if family.GetName() != "skillstream_login_latency_seconds" {
			continue
		}
		if count := family.GetMetric()[0].GetHistogram().GetSampleCount(); count != 1 {
			t.Errorf("sample count = %d, want 1", count)
		}
		return
	}
	t.Error("skillstream_login_latency_seconds metric not found")
}

func TestHandlerServesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector := NewCollector(reg)
	collector.Increment(flow.EventLoginFailed)

	handler := Handler(reg)

	request := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)

	response := recorder.Result()
	if response.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", response.StatusCode, http.StatusOK)
	}
	body, _ := io.ReadAll(response.Body)
	if !strings.Contains(string(body), "skillstream_auth_events_total") {
		t.Error("response should contain skillstream_auth_events_total metric")
	}
}
