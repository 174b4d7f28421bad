package models

// MediaKind distinguishes audio-only from video artifacts in user-facing messages
type MediaKind string

const (
	MediaKindVideo MediaKind = "video"
	MediaKindAudio MediaKind = "audio"
)

// JobStatus represents the current processing status of a download job
type JobStatus string

const (
	JobStatusRunning   JobStatus = "running"   // Handed to the extraction engine
	JobStatusCompleted JobStatus = "completed" // Artifact produced and delivered
	JobStatusFailed    JobStatus = "failed"    // Extraction failed, reported to the user
	JobStatusReclaimed JobStatus = "reclaimed" // Artifact deleted after the retention window
)
