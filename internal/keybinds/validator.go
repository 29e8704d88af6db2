package keybinds

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Severity grades an Issue
type Severity int

const (
	SeverityWarning Severity = iota
	SeverityError
)

func (s Severity) String() string {
	if s == SeverityError {
		return "error"
	}
	return "warning"
}

// Issue is one problem found in a set of bindings
type Issue struct {
	Severity Severity
	Context  Context
	Key      string
	Message  string
}

func (i Issue) String() string {
	if i.Key == "" {
		return fmt.Sprintf("%s: %s", i.Severity, i.Message)
	}
	return fmt.Sprintf("%s: %s/%s: %s", i.Severity, i.Context, i.Key, i.Message)
}

// Report collects the issues of one check run
type Report []Issue

// Errors returns the issues that make the bindings unusable
func (r Report) Errors() []Issue { return r.filter(SeverityError) }

// Warnings returns legal but risky bindings
func (r Report) Warnings() []Issue { return r.filter(SeverityWarning) }

func (r Report) filter(s Severity) []Issue {
	var out []Issue
	for _, issue := range r {
		if issue.Severity == s {
			out = append(out, issue)
		}
	}
	return out
}

func (r Report) String() string {
	if len(r) == 0 {
		return "ok"
	}
	lines := make([]string, len(r))
	for i, issue := range r {
		lines[i] = issue.String()
	}
	return strings.Join(lines, "\n")
}

// namedKeys are the non-character keys the terminal reader produces
var namedKeys = map[string]bool{
	"up":        true,
	"down":      true,
	"left":      true,
	"right":     true,
	"enter":     true,
	"esc":       true,
	"backspace": true,
	"space":     true,
}

// escapeKeys must keep their global action or a screen can trap the user
var escapeKeys = map[string]Action{
	"esc":   ActionBack,
	"enter": ActionSelect,
}

type check func(r *Registry) Report

var checks = []check{
	unknownActions,
	escapeKeysKept,
	filterKeysFree,
	shadowedGlobals,
}

// Check runs every check over r
func Check(r *Registry) Report {
	var report Report
	for _, c := range checks {
		report = append(report, c(r)...)
	}
	return report
}

// CheckConfig applies c over the defaults and checks the result. A config
// that cannot be applied is a single error.
func CheckConfig(c Config) Report {
	r := NewDefaultRegistry()
	if err := ApplyConfig(r, c); err != nil {
		return Report{{Severity: SeverityError, Message: err.Error()}}
	}
	return Check(r)
}

func unknownActions(r *Registry) Report {
	var report Report
	for _, ctx := range AllContexts {
		for _, b := range r.Bindings(ctx) {
			if !KnownActions[b.Action] {
				report = append(report, Issue{SeverityError, ctx, b.Key, fmt.Sprintf("unknown action %q", b.Action)})
			}
		}
	}
	return report
}

func escapeKeysKept(r *Registry) Report {
	var report Report
	for _, key := range []string{"enter", "esc"} {
		want := escapeKeys[key]
		if got, ok := r.Match(ContextGlobal, key); !ok || got != want {
			report = append(report, Issue{SeverityWarning, ContextGlobal, key, "should stay bound to " + string(want)})
		}
	}
	return report
}

// filterKeysFree flags characters bound in the file picker, where typed
// characters go to the filter
func filterKeysFree(r *Registry) Report {
	var report Report
	for _, b := range r.Bindings(ContextFiles) {
		if !namedKeys[b.Key] {
			report = append(report, Issue{SeverityWarning, ContextFiles, b.Key, "can no longer be typed into the filter"})
		}
	}
	return report
}

// shadowedGlobals flags context keys that hide a global action, except
// the ones the defaults already hide
func shadowedGlobals(r *Registry) Report {
	var report Report
	defaults := NewDefaultRegistry()
	for _, ctx := range AllContexts[1:] {
		for _, b := range r.Bindings(ctx) {
			if stock, _ := defaults.Match(ctx, b.Key); stock == b.Action {
				continue
			}
			global, ok := r.contexts[ContextGlobal][b.Key]
			if ok && global != b.Action {
				report = append(report, Issue{SeverityWarning, ctx, b.Key, fmt.Sprintf("hides global %s", global)})
			}
		}
	}
	return report
}

// ValidateKey checks that key is a name the terminal reader can produce
func ValidateKey(key string) error {
	switch {
	case key == "":
		return fmt.Errorf("empty key")
	case key == " ":
		return fmt.Errorf("write \"space\" instead of a literal space")
	case namedKeys[key], utf8.RuneCountInString(key) == 1:
		return nil
	case strings.Contains(key, "+"):
		return fmt.Errorf("modifier combinations are not supported: %s", key)
	}
	return fmt.Errorf("unknown key name: %s", key)
}

// ValidateAction checks that name is an action the runtime handles
func ValidateAction(name string) error {
	if name == "" {
		return fmt.Errorf("empty action")
	}
	if !KnownActions[Action(name)] {
		return fmt.Errorf("unknown action: %s", name)
	}
	return nil
}
