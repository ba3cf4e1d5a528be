package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/danmuck/pdegbridge/internal/testutil/testlog"
)

func TestRegisterMetricsAndRecordersAreSafe(t *testing.T) {
	testlog.Start(t)

	RegisterMetrics()
	RegisterMetrics()

	RecordConnection()
	RecordConnectionResult("clean", "closing")
	RecordFrame("parse_error")
	RecordCommand("on")
	RecordHubCall("light", "turn_on", "success", 12*time.Millisecond)
	RecordHTTPRequest("GET", "/health", 200, 3*time.Millisecond)
}

func TestHubCallCounterIncrements(t *testing.T) {
	testlog.Start(t)

	before := testutil.ToFloat64(hubCalls.WithLabelValues("switch", "turn_off", "rejected"))
	RecordHubCall("switch", "turn_off", "rejected", time.Millisecond)
	after := testutil.ToFloat64(hubCalls.WithLabelValues("switch", "turn_off", "rejected"))
	if after-before != 1 {
		t.Fatalf("expected one recorded call, before=%v after=%v", before, after)
	}
}
