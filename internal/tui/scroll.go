package tui

// chatScroll is the chat view's position. offset counts messages hidden
// below the window: 0 shows the newest message at the bottom.
type chatScroll struct {
	offset  int
	page    int
	visible int
}

func newChatScroll(page, visible int) chatScroll {
	return chatScroll{page: max(1, page), visible: max(1, visible)}
}

// up moves towards older messages, capped at max(0, total-1)
func (c *chatScroll) up(total int) {
	c.offset = min(c.offset+c.page, maxOffset(total))
}

// down moves towards newer messages, floored at 0
func (c *chatScroll) down() {
	c.offset = max(0, c.offset-c.page)
}

// clampTo pulls the offset back into range after the list shrank. Growth
// never moves it, so a reader scrolled back keeps their place and a reader
// at 0 keeps seeing the newest message.
func (c *chatScroll) clampTo(total int) {
	c.offset = min(c.offset, maxOffset(total))
}

// window returns the [start, end) slice of messages to draw
func (c *chatScroll) window(total int) (start, end int) {
	end = total - min(c.offset, maxOffset(total))
	start = max(0, end-c.visible)
	return start, end
}

func maxOffset(total int) int {
	return max(0, total-1)
}
