package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveReply_IncrementsBySource(t *testing.T) {
	before := testutil.ToFloat64(repliesTotal.WithLabelValues("faq"))
	ObserveReply("faq")
	ObserveReply("faq")
	if got := testutil.ToFloat64(repliesTotal.WithLabelValues("faq")) - before; got != 2 {
		t.Fatalf("faq replies delta = %v, want 2", got)
	}
}

func TestObserveRejection_IncrementsByReason(t *testing.T) {
	before := testutil.ToFloat64(rejectionsTotal.WithLabelValues(RejectQuota))
	ObserveRejection(RejectQuota)
	if got := testutil.ToFloat64(rejectionsTotal.WithLabelValues(RejectQuota)) - before; got != 1 {
		t.Fatalf("quota rejections delta = %v, want 1", got)
	}
}

func TestObserveEvent_IncrementsByType(t *testing.T) {
	before := testutil.ToFloat64(eventsTotal.WithLabelValues("booking_click"))
	ObserveEvent("booking_click")
	if got := testutil.ToFloat64(eventsTotal.WithLabelValues("booking_click")) - before; got != 1 {
		t.Fatalf("events delta = %v, want 1", got)
	}
}

func TestObserveModelCall_Records(t *testing.T) {
	ObserveModelCall(OutcomeOK, 120*time.Millisecond)
	if n := testutil.CollectAndCount(modelCalls); n == 0 {
		t.Fatalf("expected model call series to be collected")
	}
}
