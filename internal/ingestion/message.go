package ingestion

import (
	"encoding/json"
	"errors"
	"fmt"

	"shipment-tracker/internal/usecase/controlunit"
)

var ErrMissingToken = errors.New("message carries no token")

// BatchMessage is a grouped reading batch published by a control unit.
// It has the same shape as the HTTP batch body plus the unit's JWT.
type BatchMessage struct {
	Token string `json:"token"`
	controlunit.BatchRequest
}

func ParseBatchMessage(payload []byte) (*BatchMessage, error) {
	var msg BatchMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return nil, fmt.Errorf("failed to decode batch message: %w", err)
	}
	if msg.Token == "" {
		return nil, ErrMissingToken
	}
	return &msg, nil
}
