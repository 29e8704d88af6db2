/*
Package tui implements the interactive terminal client for LAN Transfer.

# Architecture

The runtime is a single-goroutine cooperative loop. Each iteration either
consumes the session's new-message notification or polls one key with a
short timeout:

	for !done {
		if notify.Take() { drain pending, show banner, repaint; continue }
		key := reader.PollKey(timeout)
		dispatch key to the top screen; repaint
	}

The message poller runs on its own goroutine and only touches the shared
chat.Store and the notification flag. Everything else, including the
screen stack, belongs to the loop goroutine and needs no locking.

# Screens

  - main menu: message preview and the action list
  - category picker and file picker (fuzzy filter, marks for delete)
  - file detail: download or copy the link
  - confirm: yes/no before deleting
  - chat: scrollable window and a compose prompt

Every redraw is a full repaint. Line input (upload path, user name, chat
message) goes through keys.Reader.ReadLine, which holds raw mode only while
the line is being typed.

# Keybind System

Keys are routed through keybinds.Registry using the top screen's context
(menu, files, confirm, chat) with the global context as fallback, so user
overrides from the configuration file apply to every screen.
*/
package tui
