package tui

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/x/ansi"
	"github.com/rs/zerolog"
	"golang.org/x/term"

	"github.com/mozhi-it/LAN-Transfer/internal/errors"
	"github.com/mozhi-it/LAN-Transfer/internal/keybinds"
	"github.com/mozhi-it/LAN-Transfer/internal/keys"
	"github.com/mozhi-it/LAN-Transfer/internal/session"
	"github.com/mozhi-it/LAN-Transfer/internal/types"
)

// screen is one level of the navigation stack
type screen interface {
	context() keybinds.Context
	view(rt *Runtime, f *frame)
	// update handles one key. action is empty when the key has no binding
	// in the screen's context.
	update(rt *Runtime, ev keys.Event, action keybinds.Action)
}

// messageObserver is implemented by screens that track the message count
type messageObserver interface {
	messagesArrived(total int)
}

// status is the one-line outcome of the last user action
type status struct {
	text   string
	failed bool
}

// Options configures a Runtime
type Options struct {
	Session *session.Session
	Keys    *keys.Reader
	Out     io.Writer
	// Bindings defaults to the built-in key map
	Bindings *keybinds.Registry
	// Clipboard copies text; nil uses the system clipboard
	Clipboard func(string) error
	// Width of the frame; 0 asks the terminal
	Width int
}

// Runtime is the cooperative terminal loop. It runs on one goroutine and
// is the only reader of the session's notification flag.
type Runtime struct {
	sess     *session.Session
	keys     *keys.Reader
	out      io.Writer
	bindings *keybinds.Registry
	copyText func(string) error
	width    int
	log      zerolog.Logger

	keyTimeout time.Duration

	ctx         context.Context
	stack       []screen
	status      status
	banner      []types.Message
	seenVersion uint64
	done        bool
}

// New creates a runtime for an established session
func New(opts Options) *Runtime {
	bindings := opts.Bindings
	if bindings == nil {
		bindings = keybinds.NewDefaultRegistry()
	}
	copyText := opts.Clipboard
	if copyText == nil {
		copyText = clipboard.WriteAll
	}
	width := opts.Width
	if width == 0 {
		width = detectWidth(opts.Out)
	}

	cfg := opts.Session.Config()
	return &Runtime{
		sess:       opts.Session,
		keys:       opts.Keys,
		out:        opts.Out,
		bindings:   bindings,
		copyText:   copyText,
		width:      max(width, MinWidth),
		log:        opts.Session.Logger(),
		keyTimeout: cfg.TUI.KeyTimeout(),
		ctx:        context.Background(),
	}
}

func detectWidth(w io.Writer) int {
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		if width, _, err := term.GetSize(int(f.Fd())); err == nil && width > 0 {
			return width
		}
	}
	return DefaultWidth
}

// Run starts the poller and drives the loop until the user leaves the main
// menu or ctx is cancelled. The poller is stopped and joined before Run
// returns.
func (rt *Runtime) Run(ctx context.Context) error {
	rt.ctx = ctx
	if err := rt.sess.StartPolling(ctx); err != nil {
		return fmt.Errorf("start polling: %w", err)
	}
	defer rt.sess.Close()

	rt.stack = []screen{newMainMenu()}
	rt.repaint()

	for !rt.done && ctx.Err() == nil {
		// pending messages always go before keystrokes
		if rt.sess.Notify.Take() {
			rt.showPending()
			rt.repaint()
			continue
		}

		ev, ok, err := rt.keys.PollKey(rt.keyTimeout)
		if err != nil {
			return fmt.Errorf("read key: %w", err)
		}
		if !ok {
			if rt.sess.Store.Version() != rt.seenVersion {
				rt.repaint()
			}
			continue
		}

		rt.dispatch(ev)
		if !rt.done {
			rt.repaint()
		}
	}

	io.WriteString(rt.out, "\r\n"+styleSuccess.Render("Goodbye!")+"\r\n")
	return nil
}

// showPending drains the pending queue into the banner
func (rt *Runtime) showPending() {
	fresh := rt.sess.Store.DrainPending()
	var others []types.Message
	for _, m := range fresh {
		if !rt.sess.IsMine(m) {
			others = append(others, m)
		}
	}
	if len(others) > 0 {
		rt.banner = others
	}

	total := len(rt.sess.Store.Full())
	for _, s := range rt.stack {
		if o, ok := s.(messageObserver); ok {
			o.messagesArrived(total)
		}
	}
}

func (rt *Runtime) dispatch(ev keys.Event) {
	rt.banner = nil
	rt.status = status{}

	top := rt.top()
	action, _ := rt.bindings.Match(top.context(), ev.String())
	top.update(rt, ev, action)
}

// repaint redraws the whole screen
func (rt *Runtime) repaint() {
	rt.seenVersion = rt.sess.Store.Version()

	f := newFrame(rt.width)
	f.line(styleTitle.Render("LAN Transfer") + styleSubtle.Render(fmt.Sprintf("  server %s  user %s", rt.sess.Address(), rt.sess.UserName())))
	f.blank()

	if len(rt.banner) > 0 {
		if _, inChat := rt.top().(*chatScreen); !inChat {
			renderBanner(f, rt.banner)
		}
	}

	rt.top().view(rt, f)

	f.blank()
	if line := renderStatus(rt.status); line != "" {
		f.line(line)
	}
	io.WriteString(rt.out, f.String())
}

func renderBanner(f *frame, msgs []types.Message) {
	title := " New message "
	if len(msgs) > 1 {
		title = fmt.Sprintf(" %d new messages ", len(msgs))
	}
	f.line(styleBanner.Render(title))

	shown := msgs
	if len(shown) > BannerLimit {
		shown = shown[len(shown)-BannerLimit:]
	}
	for _, m := range shown {
		f.line("  " + renderMessage(m, false))
	}
	if extra := len(msgs) - len(shown); extra > 0 {
		f.line(styleSubtle.Render(fmt.Sprintf("  and %d more in the chat", extra)))
	}
	f.blank()
}

func (rt *Runtime) top() screen {
	return rt.stack[len(rt.stack)-1]
}

func (rt *Runtime) push(s screen) {
	rt.stack = append(rt.stack, s)
}

// pop leaves the current screen; leaving the root ends the session
func (rt *Runtime) pop() {
	if len(rt.stack) == 1 {
		rt.quit()
		return
	}
	rt.stack = rt.stack[:len(rt.stack)-1]
}

func (rt *Runtime) quit() {
	rt.done = true
}

func (rt *Runtime) succeed(format string, args ...any) {
	rt.status = status{text: fmt.Sprintf(format, args...)}
}

func (rt *Runtime) fail(err error) {
	rt.status = status{text: errors.Describe(err), failed: true}
}

func (rt *Runtime) failf(format string, args ...any) {
	rt.status = status{text: fmt.Sprintf(format, args...), failed: true}
}

func (rt *Runtime) keyFor(ctx keybinds.Context, action keybinds.Action) string {
	return rt.bindings.Help(ctx, action)
}

// readLine shows label as a prompt under the current frame and collects
// one line. ok is false when the user cancelled.
func (rt *Runtime) readLine(label string) (string, bool) {
	rt.repaint()
	prompt := styleTitle.Render(label + " > ")
	io.WriteString(rt.out, prompt)

	line, ok := keys.ReadString(rt.keys.ReadLine(), func(s string) {
		io.WriteString(rt.out, "\r"+ansi.EraseEntireLine+prompt+s)
	})
	io.WriteString(rt.out, "\r\n")

	if err := rt.keys.Err(); err != nil {
		rt.log.Warn().Err(err).Msg("line input failed")
		return "", false
	}
	return strings.TrimSpace(line), ok
}

// prompt runs readLine on a dedicated screen
func (rt *Runtime) prompt(title, hint, label string) (string, bool) {
	rt.push(&promptScreen{title: title, hint: hint})
	defer rt.pop()
	return rt.readLine(label)
}

// busy repaints with a progress heading and returns the callback that
// redraws the progress line in place.
func (rt *Runtime) busy(heading string) func(done, total int64) {
	rt.status = status{}
	rt.repaint()
	io.WriteString(rt.out, styleWarning.Render(heading)+"\r\n")

	return func(done, total int64) {
		io.WriteString(rt.out, "\r"+ansi.EraseEntireLine+progressBar(done, total, ProgressBarWidth))
	}
}
