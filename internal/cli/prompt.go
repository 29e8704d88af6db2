package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mozhi-it/LAN-Transfer/internal/config"
	"github.com/mozhi-it/LAN-Transfer/internal/errors"
	"github.com/mozhi-it/LAN-Transfer/internal/types"
)

var (
	accent     = lipgloss.Color("39")
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(accent).Padding(0, 1)
	hintStyle  = lipgloss.NewStyle().Faint(true)
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
)

// ErrCancelled is returned when the user backs out of a prompt
var ErrCancelled = errors.New("cancelled")

// addressModel asks for the server address before a session starts
type addressModel struct {
	input     textinput.Model
	address   string
	err       error
	cancelled bool
}

func newAddressModel(initial string) addressModel {
	ti := textinput.New()
	ti.Placeholder = config.DefaultServerAddress
	ti.Prompt = "> "
	ti.CharLimit = 64
	ti.Width = 40
	ti.SetValue(initial)
	ti.Focus()
	return addressModel{input: ti}
}

func (m addressModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m addressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	switch {
	case ok && (key.Type == tea.KeyCtrlC || key.Type == tea.KeyEsc):
		m.cancelled = true
		return m, tea.Quit

	case ok && key.Type == tea.KeyEnter:
		raw := strings.TrimSpace(m.input.Value())
		if raw == "" {
			raw = config.DefaultServerAddress
		}
		if m.address, m.err = config.ParseAddress(raw); m.err == nil {
			return m, tea.Quit
		}
		return m, nil
	}

	if ok {
		m.err = nil
	}
	input, cmd := m.input.Update(msg)
	m.input = input
	return m, cmd
}

func (m addressModel) View() string {
	if m.address != "" || m.cancelled {
		return ""
	}

	lines := []string{titleStyle.Render("LAN Transfer server address"), "", m.input.View()}
	if m.err != nil {
		lines = append(lines, errorStyle.Render("Invalid address: "+m.err.Error()))
	}
	lines = append(lines, "", hintStyle.Render(fmt.Sprintf("IPv4[:port] (port %d if omitted)  enter connect  esc cancel", config.DefaultPort)))
	return lipgloss.JoinVertical(lipgloss.Left, lines...) + "\n"
}

// PromptAddress asks for the server address, prefilled with initial.
// An empty answer picks the default address.
func PromptAddress(initial string) (string, error) {
	final, err := tea.NewProgram(newAddressModel(initial)).Run()
	if err != nil {
		return "", fmt.Errorf("address prompt failed: %w", err)
	}
	if m := final.(addressModel); !m.cancelled && m.address != "" {
		return m.address, nil
	}
	return "", ErrCancelled
}

// Option is one entry of a Select list
type Option struct {
	Value string
	Label string
	Note  string
}

// option adapts an Option to the bubbles list
type option struct{ Option }

func (o option) Title() string {
	if o.Label == "" {
		return o.Value
	}
	return o.Label
}

func (o option) Description() string { return o.Note }
func (o option) FilterValue() string { return o.Value + " " + o.Label }

// pickerModel is a filterable list that ends on the first choice
type pickerModel struct {
	list   list.Model
	picked *Option
	done   bool
}

func newPickerModel(title string, options []Option, initial int) pickerModel {
	items := make([]list.Item, len(options))
	showNotes := false
	for i, opt := range options {
		items[i] = option{opt}
		showNotes = showNotes || opt.Note != ""
	}

	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = showNotes
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.Foreground(accent).BorderForeground(accent)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.Foreground(accent).BorderForeground(accent)

	l := list.New(items, delegate, 60, 16)
	l.Title = title
	l.Styles.Title = titleStyle
	l.SetShowStatusBar(false)
	l.KeyMap.Quit.SetKeys("q", "esc")
	if initial > 0 && initial < len(items) {
		l.Select(initial)
	}
	return pickerModel{list: l}
}

func (m pickerModel) Init() tea.Cmd { return nil }

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetSize(msg.Width, min(msg.Height, 20))
		return m, nil

	case tea.KeyMsg:
		// typed keys go to the filter while it is open
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch {
		case msg.Type == tea.KeyCtrlC, msg.String() == "q", msg.Type == tea.KeyEsc:
			m.done = true
			return m, tea.Quit
		case msg.Type == tea.KeyEnter:
			if o, ok := m.list.SelectedItem().(option); ok {
				m.picked = &o.Option
			}
			m.done = true
			return m, tea.Quit
		}
	}

	updated, cmd := m.list.Update(msg)
	m.list = updated
	return m, cmd
}

func (m pickerModel) View() string {
	if m.done {
		return ""
	}
	return m.list.View()
}

// Select shows a filterable list and returns the Value of the chosen option
func Select(title string, options []Option, initial int) (string, error) {
	if len(options) == 0 {
		return "", errors.Validation("select", "nothing to choose from")
	}

	final, err := tea.NewProgram(newPickerModel(title, options, initial)).Run()
	if err != nil {
		return "", fmt.Errorf("selector failed: %w", err)
	}
	if picked := final.(pickerModel).picked; picked != nil {
		return picked.Value, nil
	}
	return "", ErrCancelled
}

// PickRemoteFile lets the user choose a category and then one of its
// files. An empty category is a NotFound error.
func (r *Runner) PickRemoteFile(ctx context.Context) (types.Category, string, error) {
	options := make([]Option, 0, len(types.Categories))
	for _, c := range types.Categories {
		options = append(options, Option{Value: string(c), Label: c.Label()})
	}
	chosen, err := Select("Choose a category", options, 0)
	if err != nil {
		return "", "", err
	}
	category := types.Category(chosen)

	files, err := r.sess.Files(ctx, category)
	if err != nil {
		return "", "", err
	}
	if len(files) == 0 {
		return "", "", errors.NotFound("pick", "no files in "+category.Label())
	}

	options = options[:0]
	for _, f := range files {
		options = append(options, Option{Value: f.Name, Note: f.Size})
	}
	name, err := Select(category.Label(), options, 0)
	if err != nil {
		return "", "", err
	}
	return category, name, nil
}
