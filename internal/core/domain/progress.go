package domain

// ProgressStatus identifies the stage reported by a ProgressEvent.
type ProgressStatus string

// Progress statuses in the order they are emitted.
const (
	// StatusStarting is emitted once when ingestion begins.
	StatusStarting ProgressStatus = "starting"

	// StatusProcessing is emitted once per embedding batch with a percentage.
	StatusProcessing ProgressStatus = "processing"

	// StatusIngestionComplete is internal to the pipeline. It carries the
	// output directory and is never forwarded to end users.
	StatusIngestionComplete ProgressStatus = "ingestion_complete"

	// StatusUploading is emitted before artifacts are copied to durable storage.
	StatusUploading ProgressStatus = "uploading"

	// StatusComplete is the successful terminal event.
	StatusComplete ProgressStatus = "complete"

	// StatusError is the failed terminal event.
	StatusError ProgressStatus = "error"
)

// IsTerminal returns true for statuses that end a stream.
func (s ProgressStatus) IsTerminal() bool {
	return s == StatusComplete || s == StatusError
}

// IsValid returns true if the status is recognised.
func (s ProgressStatus) IsValid() bool {
	switch s {
	case StatusStarting, StatusProcessing, StatusIngestionComplete,
		StatusUploading, StatusComplete, StatusError:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (s ProgressStatus) String() string {
	return string(s)
}

// ProgressEvent is one message of the ingestion progress stream.
// It serialises as a single NDJSON line.
type ProgressEvent struct {
	Status      ProgressStatus `json:"status"`
	Message     string         `json:"message,omitempty"`
	Progress    *int           `json:"progress,omitempty"`
	OutputDir   string         `json:"output_dir,omitempty"`
	AssistantID int64          `json:"assistant_id,omitempty"`
}

// Progress messages shown to end users.
const (
	MessageStarting  = "Analyzing PDF structure..."
	MessageEmbedding = "Embedding chunks..."
	MessageUploading = "Uploading to durable storage..."
	MessageComplete  = "Assistant ready!"
)

// StartingEvent returns the first event of an ingestion run.
func StartingEvent() ProgressEvent {
	return ProgressEvent{Status: StatusStarting, Message: MessageStarting}
}

// ProcessingEvent returns a batch progress event.
func ProcessingEvent(percent int) ProgressEvent {
	return ProgressEvent{Status: StatusProcessing, Message: MessageEmbedding, Progress: &percent}
}

// ErrorEvent returns the failed terminal event for err.
func ErrorEvent(err error) ProgressEvent {
	return ProgressEvent{Status: StatusError, Message: err.Error()}
}

// ProgressPercent returns floor(min(processed, total) / total * 100).
// A zero total reports 100.
func ProgressPercent(processed, total int) int {
	if total <= 0 {
		return 100
	}
	if processed > total {
		processed = total
	}
	if processed < 0 {
		processed = 0
	}
	return processed * 100 / total
}
