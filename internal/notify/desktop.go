// Package notify dispatches OS-level notifications. The desktop channel is
// best-effort: when no notifier binary is available it goes quiet and the
// in-app notification feed remains the only surface.
package notify

import (
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"sync"
	"time"
)

type Notification struct {
	Title string
	Body  string
	Level string
	At    time.Time
}

type Notifier interface {
	Send(Notification) error
}

type Noop struct{}

func (Noop) Send(Notification) error { return nil }

// Desktop shells out to the platform notifier. Availability is probed once,
// lazily, on the first send; after that the decision is never revisited, so
// a user who removes notify-send mid-session simply stops getting desktop
// notifications without re-prompting or errors.
type Desktop struct {
	probeOnce sync.Once
	available bool
}

func NewDesktop() *Desktop {
	return &Desktop{}
}

func (d *Desktop) Send(n Notification) error {
	d.probeOnce.Do(func() {
		d.available = probe()
	})
	if !d.available {
		return nil
	}
	switch runtime.GOOS {
	case "linux":
		return exec.Command("notify-send", n.Title, n.Body).Run()
	case "darwin":
		script := fmt.Sprintf(`display notification "%s" with title "%s"`,
			escapeAppleScript(n.Body), escapeAppleScript(n.Title))
		return exec.Command("osascript", "-e", script).Run()
	default:
		return nil
	}
}

func probe() bool {
	switch runtime.GOOS {
	case "linux":
		_, err := exec.LookPath("notify-send")
		return err == nil
	case "darwin":
		_, err := exec.LookPath("osascript")
		return err == nil
	default:
		return false
	}
}

func escapeAppleScript(s string) string {
	return strings.ReplaceAll(s, `"`, `\"`)
}
