package ingestion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBatchMessage(t *testing.T) {
	payload := []byte(`{
		"token": "abc",
		"control_unit_id": "6f1c2c9e-8d7a-4b1e-9c55-2a0c1a0f9d11",
		"timestamp_groups": [
			{"timestamp": 1714557600, "sensor_units": [
				{"sensor_unit_id": "0b7e5c2d-1111-4c3b-8a2f-5d9e0f1a2b3c", "temperature": 4.5, "humidity": 60}
			]}
		]
	}`)

	msg, err := ParseBatchMessage(payload)
	require.NoError(t, err)
	assert.Equal(t, "abc", msg.Token)
	assert.Equal(t, "6f1c2c9e-8d7a-4b1e-9c55-2a0c1a0f9d11", msg.ControlUnitID)
	require.Len(t, msg.TimestampGroups, 1)
	assert.Equal(t, int64(1714557600), *msg.TimestampGroups[0].Timestamp)
	assert.Equal(t, 1, msg.Size())
}

func TestParseBatchMessage_Errors(t *testing.T) {
	_, err := ParseBatchMessage([]byte(`{"control_unit_id": "x"}`))
	assert.ErrorIs(t, err, ErrMissingToken)

	_, err = ParseBatchMessage([]byte(`not json`))
	assert.Error(t, err)
}
