package alert

import (
	"time"

	"github.com/google/uuid"
)

// Envelope is the published form of an alert.
type Envelope struct {
	ID         uuid.UUID `json:"id"`
	PageID     string    `json:"page_id"`
	ReceivedAt time.Time `json:"received_at"`
	Alert      Alert     `json:"alert"`
}
