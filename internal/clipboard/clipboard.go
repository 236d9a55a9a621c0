// Package clipboard copies text to the system clipboard via shell commands.
package clipboard

import (
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
)

// ErrClipboardUnavailable is returned when no clipboard command is found.
var ErrClipboardUnavailable = errors.New("clipboard unavailable")

// lookPath is swapped out in tests.
var lookPath = exec.LookPath

// IsAvailable reports whether a clipboard command exists on this system.
func IsAvailable() bool {
	_, err := clipboardCommand(runtime.GOOS)
	return err == nil
}

// Copy writes text to the system clipboard.
func Copy(text string) error {
	argv, err := clipboardCommand(runtime.GOOS)
	if err != nil {
		return err
	}
	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Stdin = strings.NewReader(text)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("running %s: %w", argv[0], err)
	}
	return nil
}

// clipboardCommand returns the argv that reads stdin into the clipboard.
func clipboardCommand(goos string) ([]string, error) {
	var candidates [][]string
	switch goos {
	case "darwin":
		candidates = [][]string{{"pbcopy"}}
	case "linux":
		candidates = [][]string{
			{"wl-copy"},
			{"xclip", "-selection", "clipboard"},
			{"xsel", "--clipboard", "--input"},
		}
	case "windows":
		candidates = [][]string{{"clip"}}
	}

	for _, argv := range candidates {
		if _, err := lookPath(argv[0]); err == nil {
			return argv, nil
		}
	}
	return nil, ErrClipboardUnavailable
}
