package tui

// UI Layout Constants
// These constants define the dimensions of the full-screen frames

const (
	// Frame
	DefaultWidth = 80 // Used when the output is not a terminal
	MinWidth     = 40

	// Lists
	ListHeight      = 15 // Rows of a menu or picker shown at once
	NameColumnWidth = 32 // File name column in pickers

	// Main menu
	PreviewContentWidth = 40 // Message preview is cut to this many cells

	// Notifications
	BannerLimit = 3 // Newest messages shown in the banner, the rest are counted

	// Transfers
	ProgressBarWidth = 30
)
