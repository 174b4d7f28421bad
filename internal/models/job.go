package models

import "time"

// TimeRange bounds a download to a sub-range of the source, in seconds.
// A nil bound is open. Bounds are passed through to the extraction engine
// unvalidated; an end before the start is the engine's problem.
type TimeRange struct {
	StartSeconds *int
	EndSeconds   *int
}

// PendingRequest is the in-memory, per-chat state awaiting the next user
// message to complete a multi-step choice. It never outlives the process.
type PendingRequest struct {
	SourceURL          string
	AudioTrackSelector string // Merged in as the audio track; empty for audio-only picks
	TimeRange          *TimeRange
	Catalog            []string // Presented choice strings, each carrying its id
}

// DownloadJob is a fully resolved, dispatchable unit of work
type DownloadJob struct {
	SourceURL          string
	PrimarySelector    string
	AudioTrackSelector string
	TimeRange          *TimeRange
	AudioOnly          bool
}

// Selector returns the extraction-engine selector string, merging the audio
// track when one is set.
func (j *DownloadJob) Selector() string {
	if j.AudioTrackSelector == "" {
		return j.PrimarySelector
	}
	return j.PrimarySelector + "+" + j.AudioTrackSelector
}

// MediaKind returns the media kind this job produces
func (j *DownloadJob) MediaKind() MediaKind {
	if j.AudioOnly {
		return MediaKindAudio
	}
	return MediaKindVideo
}

// ArtifactRecord is the output of a completed job
type ArtifactRecord struct {
	FilePath    string
	Folder      string // Storage folder name, also the public /files/ path segment
	Title       string
	SizeBytes   int64
	IsAudioOnly bool
}

// Job is the persisted history record of a dispatched download job. It feeds
// the status endpoint and the orphan sweep; it is never used to resume a flow.
type Job struct {
	ID        uint64 `boltholdKey:"ID"`
	ChatID    int64
	SourceURL string
	Selector  string
	Folder    string `boltholdIndex:"Folder"`
	Title     string
	FilePath  string
	SizeBytes int64

	Status        JobStatus `boltholdIndex:"Status"`
	FailureReason string

	CreatedAt   time.Time
	UpdatedAt   time.Time
	CompletedAt *time.Time
}
