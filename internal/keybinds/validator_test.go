package keybinds

import (
	"strings"
	"testing"
)

func hasIssue(issues []Issue, ctx Context, key string) bool {
	for _, i := range issues {
		if i.Context == ctx && i.Key == key {
			return true
		}
	}
	return false
}

func TestIssueString(t *testing.T) {
	tests := []struct {
		issue Issue
		want  string
	}{
		{Issue{SeverityError, ContextMenu, "x", "unknown action"}, "error: menu/x: unknown action"},
		{Issue{SeverityWarning, ContextChat, "up", "hides global navigate_up"}, "warning: chat/up: hides global navigate_up"},
		{Issue{Severity: SeverityError, Message: "bad config"}, "error: bad config"},
	}
	for _, tt := range tests {
		if got := tt.issue.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestReportSplitsSeverities(t *testing.T) {
	var empty Report
	if got := empty.String(); got != "ok" {
		t.Errorf("empty report = %q", got)
	}

	r := Report{
		{Severity: SeverityError, Key: "x", Message: "bad"},
		{Severity: SeverityWarning, Key: "y", Message: "meh"},
		{Severity: SeverityWarning, Key: "z", Message: "meh"},
	}
	if len(r.Errors()) != 1 || len(r.Warnings()) != 2 {
		t.Errorf("errors=%d warnings=%d", len(r.Errors()), len(r.Warnings()))
	}
	if got := strings.Count(r.String(), "\n"); got != 2 {
		t.Errorf("String() has %d line breaks, want 2", got)
	}
}

func TestDefaultRegistryIsClean(t *testing.T) {
	if report := Check(NewDefaultRegistry()); len(report) > 0 {
		t.Errorf("default registry has issues:\n%s", report)
	}
}

func TestCheckWarnings(t *testing.T) {
	tests := []struct {
		name    string
		context Context
		key     string
		action  Action
	}{
		{"esc rebound globally", ContextGlobal, "esc", ActionRefresh},
		{"letter in file picker", ContextFiles, "d", ActionRefresh},
		{"global shadowed", ContextMenu, "enter", ActionRefresh},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewDefaultRegistry()
			r.Bind(tt.context, tt.action, tt.key)

			report := Check(r)
			if !hasIssue(report.Warnings(), tt.context, tt.key) {
				t.Errorf("no warning for %s/%s in:\n%s", tt.context, tt.key, report)
			}
			if len(report.Errors()) > 0 {
				t.Errorf("unexpected errors:\n%s", report)
			}
		})
	}
}

func TestCheckUnknownActions(t *testing.T) {
	r := NewRegistry()
	r.Bind(ContextMenu, Action("explode"), "x")

	if !hasIssue(Check(r).Errors(), ContextMenu, "x") {
		t.Error("expected an error for an unknown action")
	}
}

func TestCheckConfig(t *testing.T) {
	tests := []struct {
		name      string
		config    Config
		wantError bool
	}{
		{"empty", Config{}, false},
		{"valid override", Config{"chat": {"compose": "enter,c"}}, false},
		{"unknown context", Config{"editor": {"back": "esc"}}, true},
		{"unknown action", Config{"menu": {"explode": "x"}}, true},
		{"modifier key", Config{"menu": {"back": "ctrl+q"}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := CheckConfig(tt.config)
			if got := len(report.Errors()) > 0; got != tt.wantError {
				t.Errorf("has errors = %v, want %v\n%s", got, tt.wantError, report)
			}
		})
	}
}

func TestValidateKey(t *testing.T) {
	tests := []struct {
		key     string
		wantErr bool
	}{
		{"up", false},
		{"space", false},
		{"q", false},
		{"é", false},
		{"", true},
		{" ", true},
		{"ctrl+c", true},
		{"pgdown", true},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			err := ValidateKey(tt.key)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateKey(%q) error = %v, wantErr %v", tt.key, err, tt.wantErr)
			}
		})
	}
}

func TestValidateAction(t *testing.T) {
	for name, wantErr := range map[string]bool{"compose": false, "": true, "open_help": true} {
		if err := ValidateAction(name); (err != nil) != wantErr {
			t.Errorf("ValidateAction(%q) = %v, wantErr %v", name, err, wantErr)
		}
	}
}
