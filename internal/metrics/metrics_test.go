package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordHTTPRequest(t *testing.T) {
	HTTPRequestsTotal.Reset()
	HTTPRequestDuration.Reset()

	RecordHTTPRequest("POST", "/checkins", "200", 0.5)
	RecordHTTPRequest("POST", "/checkins", "200", 0.1)
	RecordHTTPRequest("POST", "/checkins", "409", 0.05)

	assert.Equal(t, float64(2), testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("POST", "/checkins", "200")))
	assert.Equal(t, float64(1), testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("POST", "/checkins", "409")))
	assert.Equal(t, 1, testutil.CollectAndCount(HTTPRequestDuration))
}

func TestRecordCheckIn(t *testing.T) {
	CheckInsTotal.Reset()

	RecordCheckIn("gym", "allowed")
	RecordCheckIn("gym", "allowed")
	RecordCheckIn("crossfit", "expired")

	assert.Equal(t, float64(2), testutil.ToFloat64(CheckInsTotal.WithLabelValues("gym", "allowed")))
	assert.Equal(t, float64(1), testutil.ToFloat64(CheckInsTotal.WithLabelValues("crossfit", "expired")))
}

func TestRecordVisitConflict(t *testing.T) {
	before := testutil.ToFloat64(VisitConflictsTotal)
	RecordVisitConflict()
	assert.Equal(t, before+1, testutil.ToFloat64(VisitConflictsTotal))
}

func TestRecordPause(t *testing.T) {
	PausesTotal.Reset()

	RecordPause("pause")
	RecordPause("unpause")
	RecordPause("pause")

	assert.Equal(t, float64(2), testutil.ToFloat64(PausesTotal.WithLabelValues("pause")))
	assert.Equal(t, float64(1), testutil.ToFloat64(PausesTotal.WithLabelValues("unpause")))
}

func TestRecordPayment(t *testing.T) {
	PaymentsTotal.Reset()
	RevenueShareTotal.Reset()

	RecordPayment("card", 200, 800)
	RecordPayment("cash", 50, 0)

	assert.Equal(t, float64(1), testutil.ToFloat64(PaymentsTotal.WithLabelValues("card")))
	assert.Equal(t, float64(250), testutil.ToFloat64(RevenueShareTotal.WithLabelValues("gym")))
	assert.Equal(t, float64(800), testutil.ToFloat64(RevenueShareTotal.WithLabelValues("crossfit")))
}

func TestRecordEmail(t *testing.T) {
	EmailsSentTotal.Reset()

	RecordEmail("pause_confirmation", "queued")
	RecordEmail("pause_confirmation", "failed")

	assert.Equal(t, float64(1), testutil.ToFloat64(EmailsSentTotal.WithLabelValues("pause_confirmation", "queued")))
	assert.Equal(t, float64(1), testutil.ToFloat64(EmailsSentTotal.WithLabelValues("pause_confirmation", "failed")))
}

func TestEmailQueueLength(t *testing.T) {
	EmailQueueLength.Set(4)
	assert.Equal(t, float64(4), testutil.ToFloat64(EmailQueueLength))
}
