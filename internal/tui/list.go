package tui

// Item is one selectable entry: Value is what the screen acts on, Label is
// what gets drawn.
type Item struct {
	Value string
	Label string
}

// SelectableList is the cursor model shared by every menu and picker.
// The cursor is clamped to the item range and never wraps. A multi-select
// list also keeps a set of marked indices.
type SelectableList struct {
	items    []Item
	cursor   int
	multi    bool
	selected map[int]bool
}

// NewSelectableList creates a list with the cursor on the first item
func NewSelectableList(items []Item, multi bool) *SelectableList {
	l := &SelectableList{multi: multi}
	if multi {
		l.selected = make(map[int]bool)
	}
	l.items = items
	return l
}

// Len returns the number of items
func (l *SelectableList) Len() int {
	return len(l.items)
}

// Items returns the items in display order
func (l *SelectableList) Items() []Item {
	return l.items
}

// Cursor returns the highlighted index, 0 for an empty list
func (l *SelectableList) Cursor() int {
	return l.cursor
}

// Current returns the highlighted item
func (l *SelectableList) Current() (Item, bool) {
	if len(l.items) == 0 {
		return Item{}, false
	}
	return l.items[l.cursor], true
}

// Move shifts the cursor by delta and clamps it to [0, len-1]
func (l *SelectableList) Move(delta int) {
	l.cursor = clamp(l.cursor+delta, 0, len(l.items)-1)
}

// Top moves the cursor to the first item
func (l *SelectableList) Top() {
	l.cursor = 0
}

// Bottom moves the cursor to the last item
func (l *SelectableList) Bottom() {
	l.cursor = max(0, len(l.items)-1)
}

// Toggle flips the mark on the highlighted item. It does nothing on a
// single-select list.
func (l *SelectableList) Toggle() {
	if !l.multi || len(l.items) == 0 {
		return
	}
	if l.selected[l.cursor] {
		delete(l.selected, l.cursor)
	} else {
		l.selected[l.cursor] = true
	}
}

// IsSelected reports whether index i is marked
func (l *SelectableList) IsSelected(i int) bool {
	return l.selected[i]
}

// Selected returns the marked items in display order
func (l *SelectableList) Selected() []Item {
	var out []Item
	for i, it := range l.items {
		if l.selected[i] {
			out = append(out, it)
		}
	}
	return out
}

// MultiSelect reports whether the list keeps marks
func (l *SelectableList) MultiSelect() bool {
	return l.multi
}

// SetItems swaps the items. The cursor stays on the same value when it is
// still present, and marks follow their values.
func (l *SelectableList) SetItems(items []Item) {
	var current string
	if it, ok := l.Current(); ok {
		current = it.Value
	}
	marked := make(map[string]bool, len(l.selected))
	for i := range l.selected {
		if i < len(l.items) {
			marked[l.items[i].Value] = true
		}
	}

	l.items = items
	l.cursor = 0
	if l.multi {
		l.selected = make(map[int]bool)
	}
	for i, it := range items {
		if it.Value == current {
			l.cursor = i
		}
		if marked[it.Value] {
			l.selected[i] = true
		}
	}
}

// Window returns the [start, end) range of at most height items that keeps
// the cursor visible.
func (l *SelectableList) Window(height int) (start, end int) {
	n := len(l.items)
	if height <= 0 || n <= height {
		return 0, n
	}
	start = clamp(l.cursor-height/2, 0, n-height)
	return start, start + height
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	return min(max(v, lo), hi)
}
