package keybinds

// Action represents a user action that can be triggered by a keybinding
type Action string

// Context represents the screen in which keybindings are active
type Context string

const (
	ContextGlobal  Context = "global"  // Available everywhere
	ContextMenu    Context = "menu"    // Main menu, category picker, file detail
	ContextFiles   Context = "files"   // File picker (typing filters)
	ContextConfirm Context = "confirm" // Yes/no dialogs
	ContextChat    Context = "chat"    // Chat view
)

const (
	// Navigation
	ActionNavigateUp   Action = "navigate_up"
	ActionNavigateDown Action = "navigate_down"
	ActionGoToTop      Action = "go_to_top"
	ActionGoToBottom   Action = "go_to_bottom"
	ActionSelect       Action = "select" // Commit the highlighted entry
	ActionBack         Action = "back"   // Pop one level, leave at the root

	// File picker
	ActionToggleMark      Action = "toggle_mark" // Mark for multi-delete
	ActionFilterBackspace Action = "filter_backspace"
	ActionRefresh         Action = "refresh"

	// Confirm dialogs
	ActionConfirmYes   Action = "confirm_yes"
	ActionConfirmNo    Action = "confirm_no"
	ActionToggleChoice Action = "toggle_choice"

	// Chat
	ActionScrollUp   Action = "scroll_up"   // Older messages
	ActionScrollDown Action = "scroll_down" // Newer messages
	ActionCompose    Action = "compose"
)

// AllContexts lists every context in display order
var AllContexts = []Context{ContextGlobal, ContextMenu, ContextFiles, ContextConfirm, ContextChat}

// KnownActions is the set of actions the runtime understands
var KnownActions = map[Action]bool{
	ActionNavigateUp:      true,
	ActionNavigateDown:    true,
	ActionGoToTop:         true,
	ActionGoToBottom:      true,
	ActionSelect:          true,
	ActionBack:            true,
	ActionToggleMark:      true,
	ActionFilterBackspace: true,
	ActionRefresh:         true,
	ActionConfirmYes:      true,
	ActionConfirmNo:       true,
	ActionToggleChoice:    true,
	ActionScrollUp:        true,
	ActionScrollDown:      true,
	ActionCompose:         true,
}

// Description returns a short help label for an action
func (a Action) Description() string {
	switch a {
	case ActionNavigateUp:
		return "up"
	case ActionNavigateDown:
		return "down"
	case ActionGoToTop:
		return "top"
	case ActionGoToBottom:
		return "bottom"
	case ActionSelect:
		return "select"
	case ActionBack:
		return "back"
	case ActionToggleMark:
		return "mark"
	case ActionFilterBackspace:
		return "erase filter"
	case ActionRefresh:
		return "refresh"
	case ActionConfirmYes:
		return "yes"
	case ActionConfirmNo:
		return "no"
	case ActionToggleChoice:
		return "switch"
	case ActionScrollUp:
		return "older"
	case ActionScrollDown:
		return "newer"
	case ActionCompose:
		return "write"
	default:
		return string(a)
	}
}
