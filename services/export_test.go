package services

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sample-app/config"
)

func TestSnapshotObjectName(t *testing.T) {
	now := time.Date(2026, 10, 19, 8, 30, 5, 123_000_000, time.FixedZone("CEST", 2*3600))

	assert.Equal(t, "items/20261019T063005.123Z.json", SnapshotObjectName(now))
}

func TestEncodeSnapshot(t *testing.T) {
	now := time.Date(2026, 10, 19, 6, 0, 0, 0, time.UTC)

	body, err := EncodeSnapshot(nil, now)
	require.NoError(t, err)

	var snap map[string]any
	require.NoError(t, json.Unmarshal(body, &snap))
	assert.Equal(t, "2026-10-19T06:00:00Z", snap["exported_at"])
	assert.Equal(t, float64(0), snap["count"])
	assert.Equal(t, []any{}, snap["items"])
}

func TestNewExporterDoesNotDial(t *testing.T) {
	e, err := NewExporter(config.ObjectStoreConfig{
		Endpoint:  "127.0.0.1:1",
		AccessKey: "key",
		SecretKey: "secret",
		Bucket:    "items-export",
	})
	require.NoError(t, err)
	assert.Equal(t, "items-export", e.bucket)
}
