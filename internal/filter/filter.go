// Package filter narrows and reshapes command output with JMESPath
// expressions, shell pipes and file name globs.
package filter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/jmespath/go-jmespath"

	"github.com/mozhi-it/LAN-Transfer/internal/errors"
	"github.com/mozhi-it/LAN-Transfer/internal/types"
)

// ShellTimeout bounds a $(command) query
const ShellTimeout = 30 * time.Second

// Pipeline is a compiled filter followed by an optional query. The query
// is either a JMESPath expression or a shell command written as
// $(command), which receives the JSON on stdin.
type Pipeline struct {
	filter *jmespath.JMESPath
	query  *jmespath.JMESPath
	shell  string
}

// Compile checks both expressions up front so a typo fails before any
// request is made. Empty expressions are skipped.
func Compile(filter, query string) (*Pipeline, error) {
	p := &Pipeline{}
	var err error
	if filter != "" {
		if p.filter, err = jmespath.Compile(filter); err != nil {
			return nil, errors.Validation("filter", "invalid expression %q: %v", filter, err)
		}
	}

	if cmd, ok := shellCommand(query); ok {
		p.shell = cmd
	} else if query != "" {
		if p.query, err = jmespath.Compile(query); err != nil {
			return nil, errors.Validation("query", "invalid expression %q: %v", query, err)
		}
	}
	return p, nil
}

// Empty reports whether the pipeline leaves values untouched
func (p *Pipeline) Empty() bool {
	return p.filter == nil && p.query == nil && p.shell == ""
}

// Run applies the pipeline to v and returns indented JSON, or the trimmed
// output of the shell command
func (p *Pipeline) Run(ctx context.Context, v any) (string, error) {
	data, err := toJSONValue(v)
	if err != nil {
		return "", err
	}

	for _, expr := range []*jmespath.JMESPath{p.filter, p.query} {
		if expr == nil {
			continue
		}
		if data, err = expr.Search(data); err != nil {
			return "", fmt.Errorf("search failed: %w", err)
		}
	}

	out, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal result: %w", err)
	}
	if p.shell == "" {
		return string(out), nil
	}
	return pipe(ctx, p.shell, out)
}

// toJSONValue turns v into the generic maps and slices JMESPath walks,
// keyed by the json tags
func toJSONValue(v any) (any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal value: %w", err)
	}
	var data any
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, err
	}
	return data, nil
}

func shellCommand(query string) (string, bool) {
	if !strings.HasPrefix(query, "$(") || !strings.HasSuffix(query, ")") || len(query) < 4 {
		return "", false
	}
	return query[2 : len(query)-1], true
}

func pipe(ctx context.Context, command string, input []byte) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, ShellTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	cmd.Stdin = bytes.NewReader(input)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return "", fmt.Errorf("query command %q failed: %s", command, msg)
	}
	return strings.TrimSpace(stdout.String()), nil
}

// MatchNames keeps the files whose name matches a glob, ignoring case.
// An empty pattern keeps everything.
func MatchNames(files []types.FileRecord, pattern string) ([]types.FileRecord, error) {
	if pattern == "" {
		return files, nil
	}
	pattern = strings.ToLower(pattern)
	if _, err := filepath.Match(pattern, ""); err != nil {
		return nil, errors.Validation("match", "invalid pattern %q", pattern)
	}

	kept := make([]types.FileRecord, 0, len(files))
	for _, f := range files {
		if ok, _ := filepath.Match(pattern, strings.ToLower(f.Name)); ok {
			kept = append(kept, f)
		}
	}
	return kept, nil
}
