package daemon

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"sync"
)

// ErrClosed is returned when the daemon hangs up mid-conversation.
var ErrClosed = errors.New("daemon closed the connection")

// SocketPath returns the default daemon socket path.
func SocketPath() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "scrub", "transcriber.sock")
	}
	return filepath.Join(os.TempDir(), "scrub-transcriber.sock")
}

// Client talks NDJSON to the transcription daemon. One client runs one job.
type Client struct {
	conn  net.Conn
	lines *bufio.Scanner
	mu    sync.Mutex
}

// Connect dials the daemon Unix socket.
func Connect(socketPath string) (*Client, error) {
	conn, err := net.Dial("unix", socketPath)
	if err != nil {
		return nil, fmt.Errorf("connect to daemon: %w", err)
	}

	// Transcript events carry a whole file's lines.
	lines := bufio.NewScanner(conn)
	lines.Buffer(make([]byte, 64*1024), 16*1024*1024)

	return &Client{conn: conn, lines: lines}, nil
}

// Close shuts down the connection.
func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

// SendCommand writes cmd and decodes the single response line.
func (c *Client) SendCommand(cmd Command) (Response, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := json.Marshal(cmd)
	if err != nil {
		return Response{}, fmt.Errorf("encode %s command: %w", cmd.Cmd, err)
	}
	if _, err := c.conn.Write(append(data, '\n')); err != nil {
		return Response{}, fmt.Errorf("send %s command: %w", cmd.Cmd, err)
	}

	var resp Response
	if err := c.next(&resp, "response"); err != nil {
		return Response{}, err
	}
	return resp, nil
}

// Status asks the daemon whether it is idle.
func (c *Client) Status() (Response, error) {
	return c.SendCommand(Command{Cmd: CmdStatus})
}

// Transcribe asks the daemon to transcribe the audio file at path and returns
// the job ID. Follow with ReadEvent until an event is Final.
func (c *Client) Transcribe(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve path: %w", err)
	}
	resp, err := c.SendCommand(Command{Cmd: CmdTranscribe, Path: abs})
	if err != nil {
		return "", err
	}
	if !resp.OK {
		if resp.Error == "" {
			resp.Error = "transcribe rejected"
		}
		return "", errors.New(resp.Error)
	}
	return resp.JobID, nil
}

// ReadEvent blocks until the next job event arrives.
func (c *Client) ReadEvent() (Event, error) {
	var ev Event
	if err := c.next(&ev, "event"); err != nil {
		return Event{}, err
	}
	return ev, nil
}

func (c *Client) next(v any, what string) error {
	if !c.lines.Scan() {
		if err := c.lines.Err(); err != nil {
			return fmt.Errorf("read %s: %w", what, err)
		}
		return ErrClosed
	}
	if err := json.Unmarshal(c.lines.Bytes(), v); err != nil {
		return fmt.Errorf("decode %s: %w", what, err)
	}
	return nil
}
