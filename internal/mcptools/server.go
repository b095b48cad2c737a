// Package mcptools exposes a transcript session to MCP clients over stdio.
package mcptools

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/jwulff/scrub/internal/export"
	"github.com/jwulff/scrub/internal/transcript"
)

// Server owns one session. Tool calls are serialized so the session only
// ever sees one writer.
type Server struct {
	mu        sync.Mutex
	sess      *transcript.Session
	exportDir string
	log       *slog.Logger

	mcp *server.MCPServer
}

// New builds an MCP server over sess. Files written by export_transcript go
// to exportDir.
func New(sess *transcript.Session, exportDir, version string, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	s := &Server{
		sess:      sess,
		exportDir: exportDir,
		log:       log,
		mcp:       server.NewMCPServer("scrub", version, server.WithToolCapabilities(false)),
	}
	s.register()
	return s
}

// MCP returns the underlying server.
func (s *Server) MCP() *server.MCPServer { return s.mcp }

// Serve speaks MCP over the given streams until ctx is done or in closes.
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	return server.NewStdioServer(s.mcp).Listen(ctx, in, out)
}

func (s *Server) register() {
	s.mcp.AddTool(mcp.NewTool("get_transcript",
		mcp.WithDescription("Return the displayed transcript view, or the full edited transcript."),
		mcp.WithBoolean("full", mcp.Description("Return every segment instead of the filtered view")),
	), s.getTranscript)

	s.mcp.AddTool(mcp.NewTool("search_transcript",
		mcp.WithDescription("Filter the displayed view by word (case-sensitive substring) and/or time (HH:MM:SS). "+
			"Both criteria must match. With neither, the full transcript is shown. One reset_filter undoes one search."),
		mcp.WithString("word", mcp.Description("Substring that must appear in the segment text")),
		mcp.WithString("time", mcp.Description("Clock time HH:MM:SS the segment must span")),
	), s.searchTranscript)

	s.mcp.AddTool(mcp.NewTool("reset_filter",
		mcp.WithDescription("Restore the view that was displayed before the last search."),
	), s.resetFilter)

	s.mcp.AddTool(mcp.NewTool("edit_segment",
		mcp.WithDescription("Replace the text of a segment, addressed by its index in the full transcript."),
		mcp.WithNumber("index", mcp.Required(), mcp.Description("Segment index as shown by get_transcript")),
		mcp.WithString("text", mcp.Required(), mcp.Description("New segment text")),
	), s.editSegment)

	s.mcp.AddTool(mcp.NewTool("export_transcript",
		mcp.WithDescription("Export the full edited transcript. Returns the file path, or the content when inline is set."),
		mcp.WithString("format", mcp.Required(), mcp.Enum("csv", "txt", "srt", "vtt")),
		mcp.WithBoolean("inline", mcp.Description("Return the exported text instead of writing a file")),
	), s.exportTranscript)
}

// segmentView is the JSON shape returned to clients.
type segmentView struct {
	Index int    `json:"index"`
	Start string `json:"start_time_hms"`
	End   string `json:"end_time_hms"`
	Text  string `json:"text"`
}

type transcriptView struct {
	Word     string        `json:"word,omitempty"`
	Time     string        `json:"time,omitempty"`
	Total    int           `json:"total"`
	Shown    int           `json:"shown"`
	Restored *bool         `json:"restored,omitempty"`
	Segments []segmentView `json:"segments"`
}

func (s *Server) view(segs []*transcript.Segment) transcriptView {
	v := transcriptView{
		Word:     s.sess.Engine.Query.Word,
		Time:     s.sess.Engine.Query.Time,
		Total:    s.sess.Store.Len(),
		Shown:    len(segs),
		Segments: make([]segmentView, len(segs)),
	}
	for i, seg := range segs {
		v.Segments[i] = segmentView{
			Index: seg.OriginalIndex,
			Start: seg.StartLabel,
			End:   seg.EndLabel,
			Text:  seg.Text,
		}
	}
	return v
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) getTranscript(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	segs := s.sess.Current()
	if req.GetBool("full", false) {
		segs = s.sess.Export()
	}
	return jsonResult(s.view(segs))
}

func (s *Server) searchTranscript(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	q := transcript.Query{
		Word: req.GetString("word", ""),
		Time: strings.TrimSpace(req.GetString("time", "")),
	}
	return jsonResult(s.view(s.sess.Search(q)))
}

func (s *Server) resetFilter(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	restored := s.sess.Reset()
	v := s.view(s.sess.Current())
	v.Restored = &restored
	return jsonResult(v)
}

func (s *Server) editSegment(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	idx, err := req.RequireInt("index")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	text, err := req.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.sess.BeginEdit(idx); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("segment %d: %v", idx, err)), nil
	}
	s.sess.UpdateDraft(text)
	s.sess.Commit()

	seg, _ := s.sess.Store.Segment(idx)
	return jsonResult(s.view([]*transcript.Segment{seg}).Segments[0])
}

func (s *Server) exportTranscript(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	format, err := export.ParseFormat(req.GetString("format", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	segs := s.sess.Export()
	if req.GetBool("inline", false) {
		var b strings.Builder
		if err := export.Write(&b, format, segs); err != nil {
			return nil, err
		}
		return mcp.NewToolResultText(b.String()), nil
	}

	path, err := export.WriteFile(s.exportDir, "transcript-"+s.sess.ID[:8], format, segs)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	s.log.Info("transcript exported", "path", path, "format", format, "segments", len(segs))
	return mcp.NewToolResultText(path), nil
}
