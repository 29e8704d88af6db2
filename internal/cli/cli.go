package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/mattn/go-runewidth"
	"gopkg.in/yaml.v3"

	"github.com/mozhi-it/LAN-Transfer/internal/errors"
	"github.com/mozhi-it/LAN-Transfer/internal/filter"
	"github.com/mozhi-it/LAN-Transfer/internal/history"
	"github.com/mozhi-it/LAN-Transfer/internal/session"
	"github.com/mozhi-it/LAN-Transfer/internal/types"
)

// Output formats
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// ANSI color codes
const (
	colorReset  = "\x1b[0m"
	colorRed    = "\x1b[31m"
	colorGreen  = "\x1b[32m"
	colorYellow = "\x1b[33m"
	colorGray   = "\x1b[90m"
)

const nameColumn = 36

// RunOptions contains the flags shared by every command
type RunOptions struct {
	OutputFormat string // json, yaml, text
	Filter       string // JMESPath filter expression
	Query        string // JMESPath query or $(shell command)
	Match        string // glob on file names, files only
	Out          io.Writer
	// Err receives progress and notices; nil discards them
	Err io.Writer
	// Color enables ANSI colors in text output and JSON highlighting
	Color bool
	// In answers confirmations; nil means assume no
	In io.Reader
	// Yes skips confirmations
	Yes bool
}

// Runner executes the non-interactive commands against one session
type Runner struct {
	sess     *session.Session
	history  *history.Manager
	opts     RunOptions
	pipeline *filter.Pipeline
	// pipelineErr is reported by the first command that prints
	pipelineErr error
}

// New creates a Runner. hist may be nil when history is disabled.
func New(sess *session.Session, hist *history.Manager, opts RunOptions) *Runner {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Err == nil {
		opts.Err = io.Discard
	}
	if opts.OutputFormat == "" {
		opts.OutputFormat = FormatText
	}
	r := &Runner{sess: sess, history: hist, opts: opts}
	r.pipeline, r.pipelineErr = filter.Compile(opts.Filter, opts.Query)
	return r
}

// IsInteractive checks if stdin is a terminal (not piped)
func IsInteractive() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) != 0
}

// IsTerminalOutput reports whether stdout is a terminal
func IsTerminalOutput() bool {
	stat, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) != 0
}

// ValidateFormat checks an output format name
func ValidateFormat(format string) error {
	switch format {
	case "", FormatText, FormatJSON, FormatYAML:
		return nil
	}
	return errors.Validation("output", "unknown output format %q (use text, json or yaml)", format)
}

// Files lists one category, or every category when category is empty
func (r *Runner) Files(ctx context.Context, category string) error {
	cats := types.Categories
	if category != "" {
		c, err := parseCategory(category)
		if err != nil {
			return err
		}
		cats = []types.Category{c}
	}

	var all []types.FileRecord
	for _, c := range cats {
		files, err := r.sess.Files(ctx, c)
		if err != nil {
			return err
		}
		all = append(all, files...)
	}
	all, err := filter.MatchNames(all, r.opts.Match)
	if err != nil {
		return err
	}
	if all == nil {
		all = []types.FileRecord{}
	}

	return r.emit(ctx, all, func(w *strings.Builder) {
		if len(all) == 0 {
			w.WriteString("No files\n")
			return
		}
		var current types.Category
		for _, f := range all {
			if f.Category != current {
				if current != "" {
					w.WriteString("\n")
				}
				current = f.Category
				w.WriteString(r.paint(colorYellow, f.Category.Label()) + "\n")
			}
			name := runewidth.FillRight(runewidth.Truncate(f.Name, nameColumn, "…"), nameColumn)
			fmt.Fprintf(w, "  %s  %10s  %s\n", name, f.Size, r.paint(colorGray, f.Timestamp))
		}
	})
}

// Upload sends each local file in turn and stops at the first failure
func (r *Runner) Upload(ctx context.Context, paths []string) error {
	var uploaded []types.FileRecord
	for _, path := range paths {
		rec, err := r.sess.Upload(ctx, path, r.progress("Uploading "+baseName(path)))
		r.endProgress()
		if err != nil {
			return fmt.Errorf("upload %s: %w", path, err)
		}
		uploaded = append(uploaded, *rec)
	}

	return r.emit(ctx, uploaded, func(w *strings.Builder) {
		for _, rec := range uploaded {
			fmt.Fprintf(w, "%s %s to %s (%s)\n", r.paint(colorGreen, "Uploaded"), rec.Name, rec.Category.Label(), rec.Size)
		}
	})
}

// DownloadResult is what the download command reports
type DownloadResult struct {
	Category types.Category `json:"category" yaml:"category"`
	Name     string         `json:"name" yaml:"name"`
	Path     string         `json:"path" yaml:"path"`
}

// Download fetches one remote file into the download directory
func (r *Runner) Download(ctx context.Context, category, name string) error {
	c, err := parseCategory(category)
	if err != nil {
		return err
	}

	path, err := r.sess.Download(ctx, c, name, r.progress("Downloading "+name))
	r.endProgress()
	if err != nil {
		return err
	}

	res := DownloadResult{Category: c, Name: name, Path: path}
	return r.emit(ctx, res, func(w *strings.Builder) {
		fmt.Fprintf(w, "%s %s\n", r.paint(colorGreen, "Saved to"), path)
	})
}

// DeleteResult is what the rm command reports
type DeleteResult struct {
	Category types.Category `json:"category" yaml:"category"`
	Deleted  []string       `json:"deleted" yaml:"deleted"`
}

// Remove deletes remote files after a confirmation
func (r *Runner) Remove(ctx context.Context, category string, names []string) error {
	c, err := parseCategory(category)
	if err != nil {
		return err
	}
	if len(names) == 0 {
		return errors.Validation("rm", "no file names given")
	}

	if !r.opts.Yes {
		question := fmt.Sprintf("Delete %s from %s?", names[0], c.Label())
		if len(names) > 1 {
			question = fmt.Sprintf("Delete %d files from %s?", len(names), c.Label())
		}
		if !r.confirm(question) {
			fmt.Fprintln(r.opts.Err, "Cancelled")
			return nil
		}
	}

	n, err := r.sess.Delete(ctx, c, names...)
	if err != nil {
		if n > 0 {
			fmt.Fprintf(r.opts.Err, "Deleted %d of %d before the failure\n", n, len(names))
		}
		return err
	}

	res := DeleteResult{Category: c, Deleted: names}
	return r.emit(ctx, res, func(w *strings.Builder) {
		for _, name := range names {
			fmt.Fprintf(w, "%s %s\n", r.paint(colorGreen, "Deleted"), name)
		}
	})
}

// Send posts one chat message under the session user name
func (r *Runner) Send(ctx context.Context, content string) error {
	msg, err := r.sess.Send(ctx, content)
	if err != nil {
		return err
	}
	return r.emit(ctx, msg, func(w *strings.Builder) {
		fmt.Fprintf(w, "%s as %s\n", r.paint(colorGreen, "Sent"), msg.Sender)
	})
}

// Messages prints the server's recent messages, the last limit of them
// when limit > 0
func (r *Runner) Messages(ctx context.Context, limit int) error {
	msgs, err := r.sess.Service.Messages(ctx)
	if err != nil {
		return err
	}
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	if msgs == nil {
		msgs = []types.Message{}
	}

	return r.emit(ctx, msgs, func(w *strings.Builder) {
		if len(msgs) == 0 {
			w.WriteString("No messages yet\n")
			return
		}
		for _, m := range msgs {
			sender := m.Sender
			if r.sess.IsMine(m) {
				sender += " (me)"
			}
			fmt.Fprintf(w, "%s %s: %s\n", r.paint(colorGray, "["+m.Clock()+"]"), r.paint(colorYellow, sender), m.Content)
		}
	})
}

// Stats prints the per-category file counts
func (r *Runner) Stats(ctx context.Context) error {
	stats, err := r.sess.Service.Stats(ctx)
	if err != nil {
		return err
	}

	return r.emit(ctx, stats, func(w *strings.Builder) {
		for _, c := range types.Categories {
			fmt.Fprintf(w, "%-12s %5d\n", c.Label(), stats.Stats[c])
		}
		fmt.Fprintf(w, "\nTotal files: %d  Total size: %s\n", stats.TotalFiles, stats.TotalSize)
	})
}

// History prints the local transfer history, newest first. server
// narrows it to one server address.
func (r *Runner) History(limit int, server string) error {
	if r.history == nil {
		return errors.Validation("history", "transfer history is disabled")
	}

	entries, err := r.history.List(history.Query{Server: server, Limit: limit})
	if err != nil {
		return err
	}
	if entries == nil {
		entries = []types.Transfer{}
	}

	return r.emit(context.Background(), entries, func(w *strings.Builder) {
		if len(entries) == 0 {
			w.WriteString("No transfers recorded\n")
			return
		}
		for _, e := range entries {
			outcome := r.paint(colorGreen, "ok")
			if !e.Succeeded() {
				outcome = r.paint(colorRed, "failed: "+e.Error)
			}
			name := runewidth.FillRight(runewidth.Truncate(string(e.Category)+"/"+e.Name, nameColumn, "…"), nameColumn)
			fmt.Fprintf(w, "%s  %-8s  %s  %10s  %8s  %s\n",
				e.Timestamp.Format("2006-01-02 15:04:05"),
				e.Direction,
				name,
				types.FormatSize(e.Bytes),
				types.FormatDuration(e.DurationMs),
				outcome)
		}
	})
}

// ClearHistory empties the local transfer history after confirmation
func (r *Runner) ClearHistory() error {
	if r.history == nil {
		return errors.Validation("history", "transfer history is disabled")
	}
	if !r.opts.Yes && !r.confirm("Clear the transfer history?") {
		fmt.Fprintln(r.opts.Out, "Cancelled")
		return nil
	}
	n, err := r.history.Clear()
	if err != nil {
		return err
	}
	fmt.Fprintf(r.opts.Out, "Cleared %d transfers\n", n)
	return nil
}

// emit writes v in the selected format. text renders through textFn
// unless a filter or query is set, in which case the filtered JSON is
// printed as is.
func (r *Runner) emit(ctx context.Context, v any, textFn func(w *strings.Builder)) error {
	output, err := r.formatOutput(ctx, v, textFn)
	if err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}
	if !strings.HasSuffix(output, "\n") {
		output += "\n"
	}
	_, err = io.WriteString(r.opts.Out, output)
	return err
}

func (r *Runner) formatOutput(ctx context.Context, v any, textFn func(w *strings.Builder)) (string, error) {
	if r.pipelineErr != nil {
		return "", r.pipelineErr
	}
	if !r.pipeline.Empty() {
		out, err := r.pipeline.Run(ctx, v)
		if err != nil {
			return "", err
		}
		if r.opts.OutputFormat != FormatYAML {
			return r.highlight(out), nil
		}
		var decoded any
		if err := json.Unmarshal([]byte(out), &decoded); err != nil {
			// shell queries may return plain text
			return out, nil
		}
		v = decoded
	}

	switch r.opts.OutputFormat {
	case FormatJSON:
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return "", err
		}
		return r.highlight(string(data)), nil

	case FormatYAML:
		data, err := yaml.Marshal(v)
		if err != nil {
			return "", err
		}
		return string(data), nil

	case FormatText:
		fallthrough
	default:
		var sb strings.Builder
		textFn(&sb)
		return sb.String(), nil
	}
}

// highlight colors JSON for a terminal; anything else passes through
func (r *Runner) highlight(src string) string {
	if !r.opts.Color {
		return src
	}
	var sb strings.Builder
	if err := quick.Highlight(&sb, src, "json", "terminal256", "monokai"); err != nil {
		return src
	}
	return sb.String()
}

func (r *Runner) paint(color, s string) string {
	if !r.opts.Color {
		return s
	}
	return color + s + colorReset
}

// progress returns a callback drawing a one-line progress meter on Err
func (r *Runner) progress(label string) func(done, total int64) {
	return func(done, total int64) {
		if total > 0 {
			fmt.Fprintf(r.opts.Err, "\r%s  %3d%%  %s / %s", label, done*100/total, types.FormatSize(done), types.FormatSize(total))
			return
		}
		fmt.Fprintf(r.opts.Err, "\r%s  %s", label, types.FormatSize(done))
	}
}

func (r *Runner) endProgress() {
	fmt.Fprint(r.opts.Err, "\r\x1b[2K")
}

// confirm asks a yes/no question on Err and reads the answer from In
func (r *Runner) confirm(question string) bool {
	if r.opts.In == nil {
		return false
	}
	fmt.Fprintf(r.opts.Err, "%s [y/N]: ", question)
	answer, err := bufio.NewReader(r.opts.In).ReadString('\n')
	if err != nil && answer == "" {
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}

func parseCategory(s string) (types.Category, error) {
	c, ok := types.ParseCategory(s)
	if !ok {
		names := make([]string, len(types.Categories))
		for i, known := range types.Categories {
			names[i] = string(known)
		}
		return "", errors.Validation("category", "unknown category %q (one of %s)", s, strings.Join(names, ", "))
	}
	return c, nil
}

func baseName(path string) string {
	path = strings.ReplaceAll(path, "\\", "/")
	if i := strings.LastIndexByte(path, '/'); i >= 0 {
		return path[i+1:]
	}
	return path
}
