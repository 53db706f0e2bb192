package models

import "time"

// VideoStatus represents a video job's position in the processing lifecycle.
type VideoStatus string

const (
	// VideoStatusUploaded is set by the gateway once the bytes are stored
	// and the job row created. Later states are written by the worker.
	VideoStatusUploaded   VideoStatus = "UPLOADED"
	VideoStatusQueued     VideoStatus = "QUEUED"
	VideoStatusProcessing VideoStatus = "PROCESSING"
	VideoStatusDone       VideoStatus = "DONE"
	VideoStatusFailed     VideoStatus = "FAILED"
)

// Video is the job record tracking one upload through processing.
// Filename is the generated storage key; OriginalName is the user-supplied
// name and is used only for display. ZipPath is empty until the worker
// produces output; it holds either a filesystem path or an s3:// locator
// depending on the storage backend.
type Video struct {
	ID           int64       `json:"id"`
	UserID       int64       `json:"user_id"`
	Filename     string      `json:"filename"`
	OriginalName string      `json:"original_name"`
	Status       VideoStatus `json:"status"`
	ZipPath      string      `json:"zip_path,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
}
