package tui

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/mozhi-it/LAN-Transfer/internal/errors"
	"github.com/mozhi-it/LAN-Transfer/internal/types"
)

// Business logic behind the screens. Every action ends by setting the
// status line; network calls run synchronously on the loop goroutine.

func (rt *Runtime) upload(path string) {
	path = expandPath(path)
	progress := rt.busy("Uploading " + filepath.Base(path) + "...")

	rec, err := rt.sess.Upload(rt.ctx, path, progress)
	if err != nil {
		rt.fail(err)
		return
	}
	rt.succeed("Uploaded %s to %s (%s)", rec.Name, rec.Category.Label(), rec.Size)
}

func (rt *Runtime) download(category types.Category, name string) {
	progress := rt.busy("Downloading " + name + "...")

	path, err := rt.sess.Download(rt.ctx, category, name, progress)
	if err != nil {
		rt.fail(err)
		return
	}
	rt.succeed("Saved to %s", path)
}

// deleteFiles removes names and reports how many went
func (rt *Runtime) deleteFiles(category types.Category, names []string) {
	n, err := rt.sess.Delete(rt.ctx, category, names...)
	if err != nil {
		if n > 0 {
			rt.failf("Deleted %d of %d, then: %s", n, len(names), errors.Describe(err))
			return
		}
		rt.fail(err)
		return
	}
	if n == 1 {
		rt.succeed("Deleted %s", names[0])
		return
	}
	rt.succeed("Deleted %d files", n)
}

func (rt *Runtime) copyLink(category types.Category, name string) {
	link := rt.sess.Link(category, name)
	if err := rt.copyText(link); err != nil {
		rt.log.Debug().Err(err).Msg("clipboard unavailable")
		rt.failf("Clipboard unavailable, link: %s", link)
		return
	}
	rt.succeed("Link copied: %s", link)
}

func (rt *Runtime) send(content string) {
	if _, err := rt.sess.Send(rt.ctx, content); err != nil {
		rt.fail(err)
		return
	}
	rt.succeed("Sent")
}

func (rt *Runtime) setUserName(name string) {
	if err := rt.sess.SetUserName(name); err != nil {
		rt.fail(err)
		return
	}
	rt.succeed("User name set to %s", rt.sess.UserName())
}

// refreshMessages fetches the message window outside the poller's cadence
func (rt *Runtime) refreshMessages() {
	msgs, err := rt.sess.Service.Messages(rt.ctx)
	if err != nil {
		rt.fail(err)
		return
	}
	rt.sess.Store.ReplaceFull(msgs)
}

func (rt *Runtime) loadFiles(category types.Category) ([]types.FileRecord, bool) {
	files, err := rt.sess.Files(rt.ctx, category)
	if err != nil {
		rt.fail(err)
		return nil, false
	}
	return files, true
}

// expandPath accepts what a shell or a file manager drop would paste:
// surrounding quotes and a leading ~.
func expandPath(path string) string {
	path = strings.TrimSpace(path)
	path = strings.Trim(path, `"'`)
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}
