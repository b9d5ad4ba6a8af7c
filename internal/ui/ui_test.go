package ui

import "testing"

func TestSetTheme(t *testing.T) {
	defer SetCurrentTheme(GetCurrentTheme())

	tests := []struct {
		name string
		want string
	}{
		{"dark", "dark"},
		{"light", "light"},
		{"none", "none"},
		{"unknown", "dark"},
	}
	for _, tt := range tests {
		SetTheme(tt.name)
		if got := GetCurrentTheme().Name; got != tt.want {
			t.Errorf("SetTheme(%q) selected %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestInitThemeNoColor(t *testing.T) {
	defer SetCurrentTheme(GetCurrentTheme())

	InitTheme(true)
	if ColorBad() != "" || ColorReset() != "" {
		t.Error("no-color theme should emit no escape codes")
	}
	if got := Colorize(ColorGood(), "ok"); got != "ok" {
		t.Errorf("Colorize without colors = %q", got)
	}
	if _, ok := GetCurrentTUITheme().Text.(interface {
		RGBA() (uint32, uint32, uint32, uint32)
	}); !ok {
		t.Error("TUI theme colors should be terminal colors")
	}
}

func TestInitThemeRespectsNoColorEnv(t *testing.T) {
	defer SetCurrentTheme(GetCurrentTheme())
	t.Setenv("NO_COLOR", "1")

	InitTheme(false)
	if GetCurrentTheme().Name != "none" {
		t.Errorf("NO_COLOR should disable colors, got %q", GetCurrentTheme().Name)
	}
}

func TestColorize(t *testing.T) {
	defer SetCurrentTheme(GetCurrentTheme())
	SetCurrentTheme(DarkTheme)

	got := Colorize(ColorWarn(), "x")
	want := DarkTheme.Warn + "x" + DarkTheme.Reset
	if got != want {
		t.Errorf("Colorize = %q, want %q", got, want)
	}
}
