package session

import (
	"fmt"
	"io"
	"os/exec"
	"runtime"
)

// Navigator performs a full-page navigation.
type Navigator interface {
	Navigate(url string) error
}

// Browser opens URLs in the system browser and always prints them to Out,
// so the user can follow them when no browser is available.
type Browser struct {
	Out io.Writer
	// Open disables launching the browser when false.
	Open bool
}

func (b Browser) Navigate(url string) error {
	if url == "" {
		return nil
	}
	if b.Open && openBrowser(url) {
		fmt.Fprintln(b.Out, "Opening browser...")
		fmt.Fprintln(b.Out, "If the browser doesn't open, visit this URL:")
	} else {
		fmt.Fprintln(b.Out, "Open this URL in a browser:")
	}
	fmt.Fprintf(b.Out, "\n  %s\n\n", url)
	return nil
}

func openBrowser(url string) bool {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", url)
	default:
		return false
	}
	return cmd.Start() == nil
}
