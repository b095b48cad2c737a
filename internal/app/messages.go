package app

import (
	"time"

	"github.com/jwulff/scrub/internal/daemon"
)

// FrameTickMsg drives the spectrum and playhead refresh.
type FrameTickMsg time.Time

// TranscribeStartedMsg is sent when the daemon accepted a transcribe job.
type TranscribeStartedMsg struct {
	Client *daemon.Client
	JobID  string
	Path   string
}

// TranscribeEventMsg wraps a streamed event for the running job.
type TranscribeEventMsg struct {
	Event daemon.Event
}

// TranscribeErrorMsg is sent when connecting, submitting or streaming fails.
type TranscribeErrorMsg struct {
	Err error
}

// ExportedMsg carries the path and size of a finished export.
type ExportedMsg struct {
	Path string
	Size int64
}

// ExportErrorMsg is sent when writing an export fails.
type ExportErrorMsg struct {
	Err error
}

// ClearTransientErrorMsg clears a transient error after a timeout.
type ClearTransientErrorMsg struct{}
