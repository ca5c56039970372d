package utils

import (
	"crypto/rand"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
)

type IUtils interface {
	NewULIDFromTimestamp(t time.Time) (string, error)
	SnapshotKey(id string, at time.Time) string
}

type utils struct {
	snapshotPrefix string
}

func New() IUtils {
	return &utils{
		snapshotPrefix: "snapshots",
	}
}

func (u *utils) NewULIDFromTimestamp(t time.Time) (string, error) {
	ms := ulid.Timestamp(t)
	entropy := ulid.Monotonic(rand.Reader, 0)

	id, err := ulid.New(ms, entropy)
	if err != nil {
		return "", err
	}

	return id.String(), nil
}

// SnapshotKey is the object key of an alert snapshot, grouped by UTC day.
func (u *utils) SnapshotKey(id string, at time.Time) string {
	return fmt.Sprintf("%s/%s/%s.jpg", u.snapshotPrefix, at.UTC().Format("2006-01-02"), id)
}
