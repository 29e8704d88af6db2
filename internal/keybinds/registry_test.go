package keybinds

import (
	"testing"
)

func TestMatchPrefersContext(t *testing.T) {
	r := NewDefaultRegistry()

	tests := []struct {
		context Context
		key     string
		want    Action
		found   bool
	}{
		{ContextMenu, "up", ActionNavigateUp, true},
		{ContextMenu, "k", ActionNavigateUp, true},
		{ContextChat, "up", ActionScrollUp, true},
		{ContextChat, "enter", ActionCompose, true},
		{ContextFiles, "enter", ActionSelect, true},
		{ContextFiles, "k", "", false},
		{ContextFiles, "space", ActionToggleMark, true},
		{ContextConfirm, "y", ActionConfirmYes, true},
		{ContextConfirm, "esc", ActionBack, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.context)+"/"+tt.key, func(t *testing.T) {
			got, ok := r.Match(tt.context, tt.key)
			if ok != tt.found || got != tt.want {
				t.Errorf("Match(%s, %s) = %q, %v; want %q, %v", tt.context, tt.key, got, ok, tt.want, tt.found)
			}
		})
	}
}

func TestApplyConfigReplacesKeys(t *testing.T) {
	r, err := LoadOrDefault(Config{"chat": {"compose": "c"}})
	if err != nil {
		t.Fatalf("LoadOrDefault() error = %v", err)
	}

	if action, _ := r.Match(ContextChat, "c"); action != ActionCompose {
		t.Errorf("c = %q, want compose", action)
	}
	// enter falls back to the global select once compose no longer owns it
	if action, _ := r.Match(ContextChat, "enter"); action != ActionSelect {
		t.Errorf("enter = %q, want select", action)
	}
	if action, _ := r.Match(ContextChat, "i"); action != "" {
		t.Errorf("i = %q, want unbound", action)
	}
}

func TestHelp(t *testing.T) {
	r := NewDefaultRegistry()

	tests := []struct {
		context Context
		action  Action
		want    string
	}{
		{ContextChat, ActionScrollUp, "k/up"},
		{ContextMenu, ActionBack, "left/q"},
		{ContextFiles, ActionNavigateUp, "up"},
		{ContextMenu, ActionCompose, "unbound"},
	}
	for _, tt := range tests {
		if got := r.Help(tt.context, tt.action); got != tt.want {
			t.Errorf("Help(%s, %s) = %q, want %q", tt.context, tt.action, got, tt.want)
		}
	}
}

func TestRebindLeavesOtherActions(t *testing.T) {
	r := NewDefaultRegistry()
	r.Rebind(ContextConfirm, ActionConfirmNo, "x")

	if action, _ := r.Match(ContextConfirm, "x"); action != ActionConfirmNo {
		t.Errorf("x = %q, want confirm_no", action)
	}
	if _, ok := r.Match(ContextConfirm, "n"); ok {
		t.Error("n should be unbound after the rebind")
	}
	if action, _ := r.Match(ContextConfirm, "y"); action != ActionConfirmYes {
		t.Errorf("y = %q, want confirm_yes", action)
	}
}

func TestExportRoundTrip(t *testing.T) {
	original := NewDefaultRegistry()
	exported := Export(original)

	rebuilt := NewRegistry()
	if err := ApplyConfig(rebuilt, exported); err != nil {
		t.Fatalf("ApplyConfig() error = %v", err)
	}

	for _, ctx := range AllContexts {
		want := original.Bindings(ctx)
		got := rebuilt.Bindings(ctx)
		if len(got) != len(want) {
			t.Fatalf("%s: %d bindings, want %d", ctx, len(got), len(want))
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("%s[%d] = %+v, want %+v", ctx, i, got[i], want[i])
			}
		}
	}
}

func TestCloneIsIndependent(t *testing.T) {
	r := NewDefaultRegistry()
	c := r.Clone()
	c.Unbind(ContextGlobal, "esc")

	if action, _ := r.Match(ContextMenu, "esc"); action != ActionBack {
		t.Error("unbinding on the clone changed the original")
	}
	if _, ok := c.Match(ContextConfirm, "esc"); ok {
		t.Error("expected esc to be gone from the clone")
	}
}
