package utils

import (
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewULIDFromTimestamp(t *testing.T) {
	at := time.Date(2024, 3, 1, 8, 30, 0, 0, time.UTC)

	id, err := New().NewULIDFromTimestamp(at)
	require.NoError(t, err)

	parsed, err := ulid.Parse(id)
	require.NoError(t, err)
	assert.Equal(t, ulid.Timestamp(at), parsed.Time())
}

func TestSnapshotKey(t *testing.T) {
	at := time.Date(2024, 3, 1, 23, 30, 0, 0, time.FixedZone("WIB", 7*3600))
	assert.Equal(t, "snapshots/2024-03-01/01HQ.jpg", New().SnapshotKey("01HQ", at))
}
