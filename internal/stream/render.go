// SPDX-License-Identifier: MPL-2.0

package stream

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

// maxLineSize bounds a single stream-json line. Tool results can carry
// whole files, so this is generous.
const maxLineSize = 10 * 1024 * 1024

const maxInputPreview = 120

var (
	toolStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true)
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	systemStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("5"))
)

// event is one newline-delimited stream-json record.
type event struct {
	Type         string   `json:"type"`
	Subtype      string   `json:"subtype"`
	Message      *message `json:"message"`
	Model        string   `json:"model"`
	Result       string   `json:"result"`
	IsError      bool     `json:"is_error"`
	DurationMS   float64  `json:"duration_ms"`
	TotalCostUSD float64  `json:"total_cost_usd"`
	NumTurns     int      `json:"num_turns"`
}

type message struct {
	Content []content `json:"content"`
}

type content struct {
	Type    string          `json:"type"`
	Text    string          `json:"text"`
	Name    string          `json:"name"`
	Input   json.RawMessage `json:"input"`
	Content json.RawMessage `json:"content"`
	IsError bool            `json:"is_error"`
}

// Renderer is the built-in replacement for the format-stream filter. It
// renders assistant text as markdown and compresses tool traffic into
// one-line summaries.
type Renderer struct {
	out      io.Writer
	verbose  bool
	markdown *glamour.TermRenderer
}

// NewRenderer creates a renderer writing to out. Markdown rendering
// degrades to plain text when the terminal renderer cannot be built.
func NewRenderer(out io.Writer, verbose bool) *Renderer {
	md, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		md = nil
	}
	return &Renderer{out: out, verbose: verbose, markdown: md}
}

// Run consumes newline-delimited events until EOF.
func (r *Renderer) Run(in io.Reader) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)
	for scanner.Scan() {
		r.RenderLine(scanner.Bytes())
	}
	return scanner.Err()
}

// RenderLine renders a single event line. Anything that is not valid
// stream-json passes through untouched so interleaved plain output
// survives.
func (r *Renderer) RenderLine(line []byte) {
	trimmed := strings.TrimSpace(string(line))
	if trimmed == "" {
		return
	}

	var ev event
	if err := json.Unmarshal([]byte(trimmed), &ev); err != nil || ev.Type == "" {
		fmt.Fprintln(r.out, trimmed)
		return
	}

	switch ev.Type {
	case "system":
		r.renderSystem(&ev)
	case "assistant":
		r.renderAssistant(&ev)
	case "user":
		r.renderUser(&ev)
	case "result":
		r.renderResult(&ev)
	default:
		if r.verbose {
			fmt.Fprintln(r.out, trimmed)
		}
	}
}

func (r *Renderer) renderSystem(ev *event) {
	if ev.Subtype != "init" {
		if r.verbose {
			fmt.Fprintln(r.out, systemStyle.Render("system: "+ev.Subtype))
		}
		return
	}
	label := "session started"
	if ev.Model != "" {
		label += " (" + ev.Model + ")"
	}
	fmt.Fprintln(r.out, systemStyle.Render(label))
}

func (r *Renderer) renderAssistant(ev *event) {
	if ev.Message == nil {
		return
	}
	for _, c := range ev.Message.Content {
		switch c.Type {
		case "text":
			r.renderMarkdown(c.Text)
		case "tool_use":
			fmt.Fprintln(r.out, toolStyle.Render("⏺ "+c.Name)+" "+dimStyle.Render(compactJSON(c.Input)))
		}
	}
}

func (r *Renderer) renderUser(ev *event) {
	if ev.Message == nil {
		return
	}
	for _, c := range ev.Message.Content {
		if c.Type != "tool_result" {
			continue
		}
		summary := firstLine(resultText(c.Content))
		if summary == "" {
			continue
		}
		if c.IsError {
			fmt.Fprintln(r.out, errStyle.Render("  ⎿ "+summary))
		} else {
			fmt.Fprintln(r.out, dimStyle.Render("  ⎿ "+summary))
		}
	}
}

func (r *Renderer) renderResult(ev *event) {
	if ev.IsError || ev.Subtype == "error" {
		msg := ev.Result
		if msg == "" {
			msg = ev.Subtype
		}
		fmt.Fprintln(r.out, errStyle.Render("✗ "+msg))
		return
	}
	summary := fmt.Sprintf("done in %.1fs", ev.DurationMS/1000)
	if ev.NumTurns > 0 {
		summary += fmt.Sprintf(" · %d turns", ev.NumTurns)
	}
	if ev.TotalCostUSD > 0 {
		summary += fmt.Sprintf(" · $%.4f", ev.TotalCostUSD)
	}
	fmt.Fprintln(r.out, dimStyle.Render(summary))
}

func (r *Renderer) renderMarkdown(text string) {
	if text == "" {
		return
	}
	if r.markdown != nil {
		if rendered, err := r.markdown.Render(text); err == nil {
			fmt.Fprint(r.out, rendered)
			return
		}
	}
	fmt.Fprintln(r.out, text)
}

// compactJSON renders a tool input as a truncated single line.
func compactJSON(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return ""
	}
	s := buf.String()
	if len(s) > maxInputPreview {
		s = s[:maxInputPreview] + "…"
	}
	return s
}

// resultText extracts displayable text from a tool_result content field,
// which is either a plain string or a list of content blocks.
func resultText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var blocks []content
	if err := json.Unmarshal(raw, &blocks); err == nil {
		var parts []string
		for _, b := range blocks {
			if b.Type == "text" && b.Text != "" {
				parts = append(parts, b.Text)
			}
		}
		return strings.Join(parts, " ")
	}
	return ""
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	if len(s) > maxInputPreview {
		s = s[:maxInputPreview] + "…"
	}
	return s
}
