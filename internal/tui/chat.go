package tui

import (
	"fmt"

	"github.com/mozhi-it/LAN-Transfer/internal/keybinds"
	"github.com/mozhi-it/LAN-Transfer/internal/keys"
)

// chatScreen shows the message window with a scroll offset and composes
// messages through a line prompt.
type chatScreen struct {
	scroll chatScroll
}

func (c *chatScreen) context() keybinds.Context { return keybinds.ContextChat }

func (c *chatScreen) messagesArrived(total int) {
	c.scroll.clampTo(total)
}

func (c *chatScreen) view(rt *Runtime, f *frame) {
	msgs := rt.sess.Store.Full()
	total := len(msgs)
	c.scroll.clampTo(total)

	f.line(styleTitle.Render("Chat") + styleSubtle.Render("  as "+rt.sess.UserName()))
	f.blank()

	if total == 0 {
		f.line(styleWarning.Render("  No messages yet, say hello!"))
	}
	start, end := c.scroll.window(total)
	if total > c.scroll.visible || c.scroll.offset > 0 {
		f.line(styleSubtle.Render(fmt.Sprintf("  showing %d-%d of %d", start+1, end, total)))
	}
	for _, m := range msgs[start:end] {
		f.line(" " + renderMessage(m, rt.sess.IsMine(m)))
	}
	f.blank()
	f.line(helpLine(
		rt.keyFor(keybinds.ContextChat, keybinds.ActionCompose), "write",
		rt.keyFor(keybinds.ContextChat, keybinds.ActionScrollUp), "older",
		rt.keyFor(keybinds.ContextChat, keybinds.ActionScrollDown), "newer",
		rt.keyFor(keybinds.ContextChat, keybinds.ActionBack), "back",
	))
}

func (c *chatScreen) update(rt *Runtime, ev keys.Event, action keybinds.Action) {
	switch action {
	case keybinds.ActionScrollUp:
		c.scroll.up(len(rt.sess.Store.Full()))
	case keybinds.ActionScrollDown:
		c.scroll.down()
	case keybinds.ActionRefresh:
		rt.refreshMessages()
	case keybinds.ActionBack:
		rt.pop()
	case keybinds.ActionCompose:
		text, ok := rt.readLine("message")
		if !ok || text == "" {
			return
		}
		rt.send(text)
	}
}
