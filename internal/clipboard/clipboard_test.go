package clipboard

import (
	"errors"
	"os/exec"
	"reflect"
	"testing"
)

func withPaths(t *testing.T, available ...string) {
	t.Helper()
	orig := lookPath
	t.Cleanup(func() { lookPath = orig })

	lookPath = func(name string) (string, error) {
		for _, a := range available {
			if a == name {
				return "/usr/bin/" + name, nil
			}
		}
		return "", exec.ErrNotFound
	}
}

func TestClipboardCommand(t *testing.T) {
	tests := []struct {
		name      string
		goos      string
		available []string
		want      []string
	}{
		{"macOS", "darwin", []string{"pbcopy"}, []string{"pbcopy"}},
		{"wayland preferred", "linux", []string{"xclip", "wl-copy"}, []string{"wl-copy"}},
		{"xclip", "linux", []string{"xclip", "xsel"}, []string{"xclip", "-selection", "clipboard"}},
		{"xsel fallback", "linux", []string{"xsel"}, []string{"xsel", "--clipboard", "--input"}},
		{"windows", "windows", []string{"clip"}, []string{"clip"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withPaths(t, tt.available...)
			got, err := clipboardCommand(tt.goos)
			if err != nil {
				t.Fatalf("clipboardCommand(%q) error = %v", tt.goos, err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("clipboardCommand(%q) = %v, want %v", tt.goos, got, tt.want)
			}
		})
	}
}

func TestClipboardCommandUnavailable(t *testing.T) {
	withPaths(t)

	for _, goos := range []string{"darwin", "linux", "plan9"} {
		if _, err := clipboardCommand(goos); !errors.Is(err, ErrClipboardUnavailable) {
			t.Errorf("clipboardCommand(%q) error = %v, want ErrClipboardUnavailable", goos, err)
		}
	}
}

func TestCopyUnavailable(t *testing.T) {
	withPaths(t)

	if IsAvailable() {
		t.Error("IsAvailable() = true with no commands on PATH")
	}
	if err := Copy("@article{x}"); !errors.Is(err, ErrClipboardUnavailable) {
		t.Errorf("Copy() error = %v, want ErrClipboardUnavailable", err)
	}
}
