package keybinds

// NewDefaultRegistry returns the bindings used when the configuration
// file has no "keys" section
func NewDefaultRegistry() *Registry {
	r := NewRegistry()

	// Every screen
	r.Bind(ContextGlobal, ActionNavigateUp, "up")
	r.Bind(ContextGlobal, ActionNavigateDown, "down")
	r.Bind(ContextGlobal, ActionSelect, "enter")
	r.Bind(ContextGlobal, ActionBack, "esc")

	// Menus take vim-style movement since letters are not input there
	r.Bind(ContextMenu, ActionNavigateUp, "k")
	r.Bind(ContextMenu, ActionNavigateDown, "j")
	r.Bind(ContextMenu, ActionGoToTop, "g")
	r.Bind(ContextMenu, ActionGoToBottom, "G")
	r.Bind(ContextMenu, ActionSelect, "right")
	r.Bind(ContextMenu, ActionRefresh, "r")
	r.Bind(ContextMenu, ActionBack, "q", "left")

	// Letters stay free for the filter
	r.Bind(ContextFiles, ActionToggleMark, "space")
	r.Bind(ContextFiles, ActionFilterBackspace, "backspace")
	r.Bind(ContextFiles, ActionSelect, "right")
	r.Bind(ContextFiles, ActionBack, "left")

	r.Bind(ContextConfirm, ActionConfirmYes, "y", "Y")
	r.Bind(ContextConfirm, ActionConfirmNo, "n", "N", "q")
	r.Bind(ContextConfirm, ActionToggleChoice, "left", "right", "up", "down")

	r.Bind(ContextChat, ActionScrollUp, "up", "k")
	r.Bind(ContextChat, ActionScrollDown, "down", "j")
	r.Bind(ContextChat, ActionCompose, "enter", "i")
	r.Bind(ContextChat, ActionRefresh, "r")
	r.Bind(ContextChat, ActionBack, "q")

	return r
}
