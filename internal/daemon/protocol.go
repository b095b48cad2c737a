// Package daemon provides the client and protocol types for talking to a
// transcription daemon over a Unix socket using NDJSON.
package daemon

import "github.com/jwulff/scrub/internal/transcript"

// Commands understood by the daemon.
const (
	CmdStatus     = "status"
	CmdTranscribe = "transcribe"
)

// Events streamed after a transcribe command.
const (
	EventProgress   = "progress"
	EventTranscript = "transcript"
	EventError      = "error"
)

// Command is sent from a client to the daemon.
type Command struct {
	Cmd   string `json:"cmd"`
	Path  string `json:"path,omitempty"`
	JobID string `json:"jobId,omitempty"`
}

// Response is returned by the daemon after processing a command.
type Response struct {
	OK     bool   `json:"ok"`
	JobID  string `json:"jobId,omitempty"`
	Busy   *bool  `json:"busy,omitempty"`
	Error  string `json:"error,omitempty"`
	Status string `json:"status,omitempty"`
}

// Event is streamed from the daemon while a job runs. A job ends with either a
// transcript or an error event.
type Event struct {
	Event    string            `json:"event"`
	JobID    string            `json:"jobId,omitempty"`
	Progress *float32          `json:"progress,omitempty"`
	Lines    []transcript.Line `json:"lines,omitempty"`
	Message  string            `json:"message,omitempty"`
}

// Final reports whether ev ends its job.
func (ev Event) Final() bool {
	return ev.Event == EventTranscript || ev.Event == EventError
}
