package tui

import (
	"math/rand"
	"testing"
)

func items(values ...string) []Item {
	out := make([]Item, 0, len(values))
	for _, v := range values {
		out = append(out, Item{Value: v, Label: v})
	}
	return out
}

func TestSelectableList_MoveClamps(t *testing.T) {
	l := NewSelectableList(items("a", "b", "c"), false)

	l.Move(-1)
	AssertModelField(t, "cursor after leading up", l.Cursor(), 0)

	for i := 0; i < 5; i++ {
		l.Move(1)
	}
	AssertModelField(t, "cursor after trailing downs", l.Cursor(), 2)

	l.Top()
	AssertModelField(t, "top", l.Cursor(), 0)
	l.Bottom()
	AssertModelField(t, "bottom", l.Cursor(), 2)
}

func TestSelectableList_RandomWalkStaysInRange(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for k := 1; k <= 6; k++ {
		l := NewSelectableList(make([]Item, k), false)
		for i := 0; i < 500; i++ {
			if rng.Intn(2) == 0 {
				l.Move(-1)
			} else {
				l.Move(1)
			}
			if c := l.Cursor(); c < 0 || c > k-1 {
				t.Fatalf("k=%d step %d: cursor %d out of range", k, i, c)
			}
		}
	}
}

func TestSelectableList_Empty(t *testing.T) {
	l := NewSelectableList(nil, true)
	l.Move(1)
	l.Move(-1)
	l.Bottom()
	l.Toggle()
	AssertModelField(t, "cursor", l.Cursor(), 0)
	_, ok := l.Current()
	AssertModelField(t, "current ok", ok, false)
	AssertModelField(t, "selected", len(l.Selected()), 0)
}

func TestSelectableList_ToggleOnlyWhenMulti(t *testing.T) {
	single := NewSelectableList(items("a", "b"), false)
	single.Toggle()
	AssertModelField(t, "single selected", len(single.Selected()), 0)

	multi := NewSelectableList(items("a", "b", "c"), true)
	multi.Toggle()
	multi.Move(2)
	multi.Toggle()
	got := multi.Selected()
	AssertModelField(t, "count", len(got), 2)
	AssertModelField(t, "first", got[0].Value, "a")
	AssertModelField(t, "second", got[1].Value, "c")

	multi.Toggle()
	AssertModelField(t, "after untoggle", len(multi.Selected()), 1)
}

func TestSelectableList_SetItemsKeepsCursorAndMarks(t *testing.T) {
	l := NewSelectableList(items("a", "b", "c", "d"), true)
	l.Move(1)
	l.Toggle() // b
	l.Move(2)
	l.Toggle() // d

	l.SetItems(items("d", "b"))
	AssertModelField(t, "cursor follows d", l.Cursor(), 0)
	AssertModelField(t, "d marked", l.IsSelected(0), true)
	AssertModelField(t, "b marked", l.IsSelected(1), true)

	l.SetItems(items("x"))
	AssertModelField(t, "cursor reset", l.Cursor(), 0)
	AssertModelField(t, "marks dropped", len(l.Selected()), 0)
}

func TestSelectableList_Window(t *testing.T) {
	l := NewSelectableList(make([]Item, 20), false)
	start, end := l.Window(5)
	AssertModelField(t, "start", start, 0)
	AssertModelField(t, "end", end, 5)

	l.Bottom()
	start, end = l.Window(5)
	AssertModelField(t, "start at bottom", start, 15)
	AssertModelField(t, "end at bottom", end, 20)

	l.Top()
	l.Move(10)
	start, end = l.Window(5)
	if l.Cursor() < start || l.Cursor() >= end {
		t.Errorf("cursor %d outside window [%d,%d)", l.Cursor(), start, end)
	}
}

func TestChatScroll(t *testing.T) {
	tests := []struct {
		name   string
		total  int
		ups    int
		downs  int
		offset int
	}{
		{"empty list never scrolls", 0, 3, 0, 0},
		{"single message", 1, 2, 0, 0},
		{"one page", 30, 1, 0, 10},
		{"capped at total-1", 25, 5, 0, 24},
		{"down floors at zero", 30, 1, 4, 0},
		{"up then down", 50, 3, 1, 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newChatScroll(10, 17)
			for i := 0; i < tt.ups; i++ {
				s.up(tt.total)
			}
			for i := 0; i < tt.downs; i++ {
				s.down()
			}
			AssertModelField(t, "offset", s.offset, tt.offset)
			if s.offset < 0 || s.offset > maxOffset(tt.total) {
				t.Errorf("offset %d out of [0,%d]", s.offset, maxOffset(tt.total))
			}
		})
	}
}

func TestChatScrollWindow(t *testing.T) {
	s := newChatScroll(10, 17)

	start, end := s.window(40)
	AssertModelField(t, "latest start", start, 23)
	AssertModelField(t, "latest end", end, 40)

	s.up(40)
	start, end = s.window(40)
	AssertModelField(t, "scrolled start", start, 13)
	AssertModelField(t, "scrolled end", end, 30)

	// growth leaves the offset alone
	s.clampTo(45)
	AssertModelField(t, "offset after growth", s.offset, 10)

	// shrink pulls it back into range
	s.clampTo(4)
	AssertModelField(t, "offset after shrink", s.offset, 3)
	start, end = s.window(4)
	AssertModelField(t, "shrunk start", start, 0)
	AssertModelField(t, "shrunk end", end, 1)

	start, end = s.window(0)
	AssertModelField(t, "empty", end-start, 0)
}
