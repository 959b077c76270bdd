package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/stretchia/pkg/types"
)

func TestRecordTickSetsGauges(t *testing.T) {
	before := testutil.ToFloat64(ticksTotal)

	RecordTick(types.StageOrange, true, 3000)

	require.InDelta(t, before+1, testutil.ToFloat64(ticksTotal), 0.0001)
	require.Equal(t, float64(types.StageOrange), testutil.ToFloat64(stageGauge))
	require.Equal(t, 1.0, testutil.ToFloat64(afkGauge))
	require.Equal(t, 3000.0, testutil.ToFloat64(elapsedGauge))

	RecordTick(types.StageGreen, false, 0)
	require.Equal(t, 0.0, testutil.ToFloat64(afkGauge))
}

func TestRecordRenderCountsFailures(t *testing.T) {
	beforeRenders := testutil.ToFloat64(rendersTotal)
	beforeFailures := testutil.ToFloat64(renderFailuresTotal)

	RecordRender(nil)
	RecordRender(errors.New("tray gone"))

	require.InDelta(t, beforeRenders+2, testutil.ToFloat64(rendersTotal), 0.0001)
	require.InDelta(t, beforeFailures+1, testutil.ToFloat64(renderFailuresTotal), 0.0001)
}

func TestRecordPersistenceFailureByOp(t *testing.T) {
	before := testutil.ToFloat64(persistenceFailuresTotal.WithLabelValues("usage"))
	RecordPersistenceFailure("usage")
	require.InDelta(t, before+1, testutil.ToFloat64(persistenceFailuresTotal.WithLabelValues("usage")), 0.0001)
}

func TestRecordSessionByKind(t *testing.T) {
	before := testutil.ToFloat64(sessionsRecordedTotal.WithLabelValues("treadmill"))
	RecordSession(types.SessionTreadmill)
	require.InDelta(t, before+1, testutil.ToFloat64(sessionsRecordedTotal.WithLabelValues("treadmill")), 0.0001)
}

func TestRecordReminderByOutcome(t *testing.T) {
	before := testutil.ToFloat64(remindersTotal.WithLabelValues(ReminderFailed))
	RecordReminder(ReminderFailed)
	require.InDelta(t, before+1, testutil.ToFloat64(remindersTotal.WithLabelValues(ReminderFailed)), 0.0001)
}
