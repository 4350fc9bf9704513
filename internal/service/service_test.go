package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeReading(t *testing.T) {
	payload := []byte(`{"device_id":"d1","timestamp":"2024-01-01T10:15:00Z","power":5.0}`)

	rd, err := decodeReading(payload)
	require.NoError(t, err)

	assert.Equal(t, "d1", rd.DeviceID)
	assert.Equal(t, 5.0, rd.Power)
	assert.True(t, rd.Timestamp.Equal(time.Date(2024, 1, 1, 10, 15, 0, 0, time.UTC)))
}

func TestDecodeReadingBadPayload(t *testing.T) {
	_, err := decodeReading([]byte(`not json`))
	assert.Error(t, err)
}
