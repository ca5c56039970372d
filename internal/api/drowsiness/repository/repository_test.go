package drowsinessRepository

import (
	"WakeGuard/internal/api/drowsiness"
	"WakeGuard/internal/entity"
	"fmt"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/context"
)

func newTestLogger() *logrus.Logger {
	logger, _ := test.NewNullLogger()
	return logger
}

func TestLatestStatus_BeforeFirstFrame(t *testing.T) {
	repo := New(newTestLogger(), 4)

	_, err := repo.LatestStatus(context.Background())
	assert.ErrorIs(t, err, drowsiness.ErrStatusNotReady)
}

func TestLatestStatus_ReturnsLastSaved(t *testing.T) {
	repo := New(newTestLogger(), 4)
	ctx := context.Background()

	require.NoError(t, repo.SaveStatus(ctx, entity.FrameStatus{Sequence: 1}))
	require.NoError(t, repo.SaveStatus(ctx, entity.FrameStatus{Sequence: 2, Alarm: entity.AlarmActive}))

	status, err := repo.LatestStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), status.Sequence)
	assert.True(t, status.AlarmActive())
}

func TestRecentAlerts_NewestFirstAndBounded(t *testing.T) {
	repo := New(newTestLogger(), 3)
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		require.NoError(t, repo.AppendAlert(ctx, entity.AlertEvent{ID: fmt.Sprintf("evt-%d", i)}))
	}

	events, err := repo.RecentAlerts(ctx, 0)
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, "evt-5", events[0].ID)
	assert.Equal(t, "evt-3", events[2].ID)

	events, err = repo.RecentAlerts(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"evt-5", "evt-4"}, []string{events[0].ID, events[1].ID})
}

func TestRecentAlerts_Empty(t *testing.T) {
	repo := New(newTestLogger(), 3)

	events, err := repo.RecentAlerts(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestAttachSnapshot(t *testing.T) {
	repo := New(newTestLogger(), 3)
	ctx := context.Background()
	require.NoError(t, repo.AppendAlert(ctx, entity.AlertEvent{ID: "evt-1"}))

	require.NoError(t, repo.AttachSnapshot(ctx, "evt-1", "https://bucket/snap.jpg"))
	events, _ := repo.RecentAlerts(ctx, 1)
	assert.Equal(t, "https://bucket/snap.jpg", events[0].SnapshotURL)

	assert.ErrorIs(t, repo.AttachSnapshot(ctx, "missing", "x"), drowsiness.ErrAlertNotFound)
}
