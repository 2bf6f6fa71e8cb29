package progress

import (
	"bytes"
	"strings"
	"testing"

	"github.com/Theomat/rusync/internal/ui"
)

func TestModeNever(t *testing.T) {
	var buf bytes.Buffer
	b := New(Options{Max: 3, Description: "Syncing", Writer: &buf, Mode: ModeNever})

	if b.Enabled() {
		t.Error("expected never mode to disable the bar")
	}
	if err := b.Add(1); err != nil {
		t.Errorf("Add on a disabled bar returned %v", err)
	}
	if err := b.Finish(); err != nil {
		t.Errorf("Finish on a disabled bar returned %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("disabled bar wrote %q", buf.String())
	}
}

func TestModeAlwaysRenders(t *testing.T) {
	var buf bytes.Buffer
	b := New(Options{Max: 2, Description: "Syncing", Writer: &buf, Mode: ModeAlways})

	if !b.Enabled() {
		t.Fatal("expected always mode to enable the bar")
	}
	if err := b.Add(1); err != nil {
		t.Fatalf("Add returned %v", err)
	}
	if err := b.Finish(); err != nil {
		t.Fatalf("Finish returned %v", err)
	}
	if !strings.Contains(buf.String(), "Syncing") {
		t.Errorf("bar output missing description: %q", buf.String())
	}
}

func TestAutoModeRespectsColorToggle(t *testing.T) {
	ui.DisableColors()
	defer ui.EnableColors()

	var buf bytes.Buffer
	b := New(Options{Max: 1, Writer: &buf, Mode: ModeAuto})

	if b.Enabled() {
		t.Error("expected auto mode to disable the bar when colors are off")
	}
}
