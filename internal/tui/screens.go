package tui

import (
	"fmt"

	"github.com/charmbracelet/x/ansi"
	"github.com/sahilm/fuzzy"

	"github.com/mozhi-it/LAN-Transfer/internal/keybinds"
	"github.com/mozhi-it/LAN-Transfer/internal/keys"
	"github.com/mozhi-it/LAN-Transfer/internal/types"
)

// Main menu entries
const (
	menuFiles    = "files"
	menuUpload   = "upload"
	menuDownload = "download"
	menuDelete   = "delete"
	menuChat     = "chat"
	menuUserName = "username"
	menuExit     = "exit"
)

// moveList applies the navigation actions shared by every list screen.
// It reports whether the action was one of them.
func moveList(l *SelectableList, action keybinds.Action) bool {
	switch action {
	case keybinds.ActionNavigateUp:
		l.Move(-1)
	case keybinds.ActionNavigateDown:
		l.Move(1)
	case keybinds.ActionGoToTop:
		l.Top()
	case keybinds.ActionGoToBottom:
		l.Bottom()
	default:
		return false
	}
	return true
}

type mainMenu struct {
	list *SelectableList
}

func newMainMenu() *mainMenu {
	return &mainMenu{list: NewSelectableList([]Item{
		{menuFiles, "Browse files"},
		{menuUpload, "Upload a file"},
		{menuDownload, "Download a file"},
		{menuDelete, "Delete files"},
		{menuChat, "Chat"},
		{menuUserName, "Change user name"},
		{menuExit, "Exit"},
	}, false)}
}

func (m *mainMenu) context() keybinds.Context { return keybinds.ContextMenu }

func (m *mainMenu) view(rt *Runtime, f *frame) {
	f.line(styleTitle.Render("Recent messages"))
	full := rt.sess.Store.Full()
	if len(full) == 0 {
		f.line(styleWarning.Render("  No messages yet"))
	}
	preview := rt.sess.Config().TUI.PreviewCount
	for _, msg := range full[max(0, len(full)-preview):] {
		msg.Content = ansi.Truncate(msg.Content, PreviewContentWidth, "…")
		f.line(" " + renderMessage(msg, rt.sess.IsMine(msg)))
	}
	f.blank()

	f.line(styleTitle.Render("Menu"))
	renderList(f, m.list, ListHeight)
	f.blank()
	f.line(helpLine(
		"↑↓", "select",
		rt.keyFor(keybinds.ContextMenu, keybinds.ActionSelect), "confirm",
		rt.keyFor(keybinds.ContextMenu, keybinds.ActionBack), "quit",
	))
}

func (m *mainMenu) update(rt *Runtime, ev keys.Event, action keybinds.Action) {
	if moveList(m.list, action) {
		return
	}
	switch action {
	case keybinds.ActionBack:
		rt.quit()
	case keybinds.ActionRefresh:
		rt.refreshMessages()
	case keybinds.ActionSelect:
		item, _ := m.list.Current()
		switch item.Value {
		case menuFiles:
			rt.push(newCategoryPicker(pickBrowse))
		case menuDownload:
			rt.push(newCategoryPicker(pickDownload))
		case menuDelete:
			rt.push(newCategoryPicker(pickDelete))
		case menuUpload:
			path, ok := rt.prompt("Upload a file",
				"Enter the path of a local file. The server picks its category from the extension.",
				"path")
			if !ok || path == "" {
				rt.succeed("Upload cancelled")
				return
			}
			rt.upload(path)
		case menuChat:
			cfg := rt.sess.Config().TUI
			rt.push(&chatScreen{scroll: newChatScroll(cfg.ChatPageSize, cfg.ChatVisible)})
		case menuUserName:
			name, ok := rt.prompt("Change user name",
				fmt.Sprintf("Current name: %s. Messages you send carry this name.", rt.sess.UserName()),
				"name")
			if !ok || name == "" {
				return
			}
			rt.setUserName(name)
		case menuExit:
			rt.quit()
		}
	}
}

// pickMode is what choosing a file does
type pickMode int

const (
	pickBrowse pickMode = iota
	pickDownload
	pickDelete
)

func (p pickMode) title() string {
	switch p {
	case pickDownload:
		return "Download a file"
	case pickDelete:
		return "Delete files"
	default:
		return "Browse files"
	}
}

const itemBack = "back"

type categoryPicker struct {
	mode pickMode
	list *SelectableList
}

func newCategoryPicker(mode pickMode) *categoryPicker {
	items := make([]Item, 0, len(types.Categories)+1)
	for _, c := range types.Categories {
		items = append(items, Item{Value: string(c), Label: c.Label()})
	}
	items = append(items, Item{Value: itemBack, Label: "Back"})
	return &categoryPicker{mode: mode, list: NewSelectableList(items, false)}
}

func (c *categoryPicker) context() keybinds.Context { return keybinds.ContextMenu }

func (c *categoryPicker) view(rt *Runtime, f *frame) {
	f.line(styleTitle.Render(c.mode.title() + ": choose a category"))
	f.blank()
	renderList(f, c.list, ListHeight)
	f.blank()
	f.line(helpLine("↑↓", "select", "enter", "open", rt.keyFor(keybinds.ContextMenu, keybinds.ActionBack), "back"))
}

func (c *categoryPicker) update(rt *Runtime, ev keys.Event, action keybinds.Action) {
	if moveList(c.list, action) {
		return
	}
	switch action {
	case keybinds.ActionBack:
		rt.pop()
	case keybinds.ActionSelect:
		item, _ := c.list.Current()
		if item.Value == itemBack {
			rt.pop()
			return
		}
		category := types.Category(item.Value)
		files, ok := rt.loadFiles(category)
		if !ok {
			return
		}
		if len(files) == 0 {
			rt.succeed("No files in %s", category.Label())
			return
		}
		rt.push(newFilePicker(c.mode, category, files))
	}
}

// filePicker lists one category. Typing narrows the list with a fuzzy
// match; in delete mode space marks files.
type filePicker struct {
	mode     pickMode
	category types.Category
	files    []types.FileRecord
	filter   []rune
	list     *SelectableList
}

func newFilePicker(mode pickMode, category types.Category, files []types.FileRecord) *filePicker {
	p := &filePicker{
		mode:     mode,
		category: category,
		list:     NewSelectableList(nil, mode == pickDelete),
	}
	p.setFiles(files)
	return p
}

// recordSource adapts file records to fuzzy.Source
type recordSource []types.FileRecord

func (s recordSource) String(i int) string { return s[i].Name }
func (s recordSource) Len() int            { return len(s) }

func (p *filePicker) setFiles(files []types.FileRecord) {
	p.files = files
	p.applyFilter()
}

func (p *filePicker) applyFilter() {
	var items []Item
	if len(p.filter) == 0 {
		for _, rec := range p.files {
			items = append(items, Item{Value: rec.Name, Label: fileLabel(rec, NameColumnWidth)})
		}
	} else {
		for _, match := range fuzzy.FindFrom(string(p.filter), recordSource(p.files)) {
			rec := p.files[match.Index]
			items = append(items, Item{Value: rec.Name, Label: fileLabel(rec, NameColumnWidth)})
		}
	}
	p.list.SetItems(items)
}

func (p *filePicker) record(name string) (types.FileRecord, bool) {
	for _, rec := range p.files {
		if rec.Name == name {
			return rec, true
		}
	}
	return types.FileRecord{}, false
}

func (p *filePicker) context() keybinds.Context { return keybinds.ContextFiles }

func (p *filePicker) view(rt *Runtime, f *frame) {
	f.line(styleTitle.Render(fmt.Sprintf("%s: %s", p.mode.title(), p.category.Label())) +
		styleSubtle.Render(fmt.Sprintf("  %d of %d files", p.list.Len(), len(p.files))))
	if len(p.filter) > 0 {
		f.line("  filter: " + string(p.filter) + "_")
	} else {
		f.line(styleSubtle.Render("  type to filter"))
	}
	f.blank()
	renderList(f, p.list, ListHeight)
	f.blank()

	pairs := []string{"↑↓", "select", "enter", "open", "esc", "back"}
	switch p.mode {
	case pickDelete:
		pairs = []string{"↑↓", "select", rt.keyFor(keybinds.ContextFiles, keybinds.ActionToggleMark), "mark", "enter", "delete", "esc", "back"}
		if n := len(p.list.Selected()); n > 0 {
			f.line(styleWarning.Render(fmt.Sprintf("%d marked", n)))
		}
	case pickDownload:
		pairs[3] = "download"
	}
	f.line(helpLine(pairs...))
}

func (p *filePicker) update(rt *Runtime, ev keys.Event, action keybinds.Action) {
	if action == keybinds.ActionToggleMark && p.mode != pickDelete {
		// space is plain filter input outside delete mode
		action = ""
	}
	if moveList(p.list, action) {
		return
	}

	switch action {
	case keybinds.ActionBack:
		rt.pop()
	case keybinds.ActionToggleMark:
		p.list.Toggle()
		p.list.Move(1)
	case keybinds.ActionFilterBackspace:
		if len(p.filter) > 0 {
			p.filter = p.filter[:len(p.filter)-1]
			p.applyFilter()
		}
	case keybinds.ActionSelect:
		p.choose(rt)
	case "":
		if ev.Key == keys.KeyChar {
			p.filter = append(p.filter, ev.Rune)
			p.applyFilter()
		}
	}
}

func (p *filePicker) choose(rt *Runtime) {
	item, ok := p.list.Current()
	if !ok {
		return
	}

	switch p.mode {
	case pickBrowse:
		if rec, ok := p.record(item.Value); ok {
			rt.push(newFileDetail(rec, p.category))
		}
	case pickDownload:
		rt.download(p.category, item.Value)
	case pickDelete:
		var names []string
		for _, it := range p.list.Selected() {
			names = append(names, it.Value)
		}
		if len(names) == 0 {
			names = []string{item.Value}
		}
		question := fmt.Sprintf("Delete %s from %s?", names[0], p.category.Label())
		if len(names) > 1 {
			question = fmt.Sprintf("Delete %d files from %s?", len(names), p.category.Label())
		}
		rt.push(&confirmScreen{
			question: question,
			details:  names,
			onYes: func(rt *Runtime) {
				rt.deleteFiles(p.category, names)
				p.reload(rt)
			},
		})
	}
}

// reload refetches the category after a change. An emptied category
// closes the picker.
func (p *filePicker) reload(rt *Runtime) {
	files, err := rt.sess.Files(rt.ctx, p.category)
	if err != nil {
		rt.log.Warn().Err(err).Str("category", string(p.category)).Msg("reload failed")
		return
	}
	if len(files) == 0 {
		rt.pop()
		return
	}
	p.setFiles(files)
}

type fileDetail struct {
	rec      types.FileRecord
	category types.Category
	list     *SelectableList
}

const (
	detailDownload = "download"
	detailCopyLink = "copy"
)

func newFileDetail(rec types.FileRecord, category types.Category) *fileDetail {
	return &fileDetail{
		rec:      rec,
		category: category,
		list: NewSelectableList([]Item{
			{detailDownload, "Download"},
			{detailCopyLink, "Copy download link"},
			{itemBack, "Back"},
		}, false),
	}
}

func (d *fileDetail) context() keybinds.Context { return keybinds.ContextMenu }

func (d *fileDetail) view(rt *Runtime, f *frame) {
	f.line(styleTitle.Render("File details"))
	f.blank()
	f.line("  Name:     " + d.rec.Name)
	f.line("  Category: " + d.category.Label())
	f.line("  Size:     " + d.rec.Size)
	f.line("  Uploaded: " + d.rec.Timestamp)
	f.line("  Link:     " + rt.sess.Link(d.category, d.rec.Name))
	f.blank()
	renderList(f, d.list, ListHeight)
	f.blank()
	f.line(helpLine("↑↓", "select", "enter", "confirm", rt.keyFor(keybinds.ContextMenu, keybinds.ActionBack), "back"))
}

func (d *fileDetail) update(rt *Runtime, ev keys.Event, action keybinds.Action) {
	if moveList(d.list, action) {
		return
	}
	switch action {
	case keybinds.ActionBack:
		rt.pop()
	case keybinds.ActionSelect:
		item, _ := d.list.Current()
		switch item.Value {
		case detailDownload:
			rt.download(d.category, d.rec.Name)
		case detailCopyLink:
			rt.copyLink(d.category, d.rec.Name)
		case itemBack:
			rt.pop()
		}
	}
}

// confirmScreen asks a yes/no question. No is the default.
type confirmScreen struct {
	question string
	details  []string
	yes      bool
	onYes    func(rt *Runtime)
}

func (c *confirmScreen) context() keybinds.Context { return keybinds.ContextConfirm }

func (c *confirmScreen) view(rt *Runtime, f *frame) {
	f.line(styleWarning.Render(c.question))
	for _, d := range c.details {
		f.line("  - " + d)
	}
	f.blank()
	yes, no := "  Yes  ", "  No  "
	if c.yes {
		yes = styleSelected.Render(yes)
	} else {
		no = styleSelected.Render(no)
	}
	f.line("  " + yes + "   " + no)
	f.blank()
	f.line(helpLine("y", "yes", "n", "no", "←→", "switch", "enter", "confirm"))
}

func (c *confirmScreen) update(rt *Runtime, ev keys.Event, action keybinds.Action) {
	switch action {
	case keybinds.ActionToggleChoice:
		c.yes = !c.yes
	case keybinds.ActionConfirmYes:
		c.answer(rt, true)
	case keybinds.ActionConfirmNo, keybinds.ActionBack:
		c.answer(rt, false)
	case keybinds.ActionSelect:
		c.answer(rt, c.yes)
	}
}

func (c *confirmScreen) answer(rt *Runtime, yes bool) {
	rt.pop()
	if !yes {
		rt.succeed("Cancelled")
		return
	}
	c.onYes(rt)
}

// promptScreen frames a line prompt. It never sees keys: readLine
// consumes them.
type promptScreen struct {
	title string
	hint  string
}

func (p *promptScreen) context() keybinds.Context { return keybinds.ContextMenu }

func (p *promptScreen) view(rt *Runtime, f *frame) {
	f.line(styleTitle.Render(p.title))
	f.blank()
	f.line("  " + p.hint)
	f.line(styleSubtle.Render("  enter submits, esc cancels"))
}

func (p *promptScreen) update(rt *Runtime, ev keys.Event, action keybinds.Action) {}
