package models

// RecordingEvent stream entry carrying one captured recording
type RecordingEvent struct {
	UserID    string    `json:"user_id"`
	Recording Recording `json:"recording"`
}
