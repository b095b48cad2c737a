package transcript

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// envelope is the response shape of the HTTP transcription service.
type envelope struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    []Line `json:"data"`
}

// DecodeLines reads a JSON transcript payload. Both a bare array of lines and
// a {"status", "data"} envelope are accepted.
func DecodeLines(r io.Reader) ([]Line, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read payload: %w", err)
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, fmt.Errorf("empty payload")
	}

	if raw[0] == '[' {
		var lines []Line
		if err := json.Unmarshal(raw, &lines); err != nil {
			return nil, fmt.Errorf("unmarshal lines: %w", err)
		}
		return lines, nil
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("unmarshal envelope: %w", err)
	}
	if env.Status != "" && env.Status != "success" {
		return nil, fmt.Errorf("payload status %q: %s", env.Status, env.Message)
	}
	return env.Data, nil
}

// ReadLinesFile decodes the payload stored at path.
func ReadLinesFile(path string) ([]Line, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open payload: %w", err)
	}
	defer f.Close()
	return DecodeLines(f)
}
