// Package browser hands dashboard links to the desktop's default browser.
package browser

import (
	"errors"
	"fmt"
	"net/url"
	"os/exec"
	"runtime"
)

// ErrUnsupported is returned on platforms without a known launcher.
var ErrUnsupported = errors.New("browser: unsupported OS")

// command builds the launcher for goos. Only absolute http(s) links are
// accepted, since the target comes from user configuration.
func command(goos, link string) (*exec.Cmd, error) {
	u, err := url.Parse(link)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("browser: refusing to open %q", link)
	}
	switch goos {
	case "darwin":
		return exec.Command("open", link), nil
	case "linux", "freebsd", "openbsd", "netbsd":
		return exec.Command("xdg-open", link), nil
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", link), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, goos)
	}
}

// Open opens link in the user's default browser without waiting for it.
func Open(link string) error {
	cmd, err := command(runtime.GOOS, link)
	if err != nil {
		return err
	}
	return cmd.Start()
}
