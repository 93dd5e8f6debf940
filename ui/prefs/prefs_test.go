package prefs

import (
	"testing"
)

func TestAccessorsAndFallbacks(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	p := Load()

	if got := p.Float("zoom", 1.5); got != 1.5 {
		t.Errorf("Float fallback = %v, want 1.5", got)
	}
	p.SetFloat("zoom", 2.0)
	if got := p.Float("zoom", 1.5); got != 2.0 {
		t.Errorf("Float = %v, want 2.0", got)
	}

	if got := p.String("lastDirectory"); got != "" {
		t.Errorf("String on unset key = %q", got)
	}
	p.SetString("lastDirectory", "/data/plates")
	if got := p.String("lastDirectory"); got != "/data/plates" {
		t.Errorf("String = %q", got)
	}

	if !p.Bool("showGrid", true) {
		t.Error("Bool fallback not honored")
	}
	p.SetBool("showGrid", false)
	if p.Bool("showGrid", true) {
		t.Error("Bool did not return stored value")
	}

	// Wrong-typed values fall back instead of panicking.
	p.SetString("mixed", "text")
	if got := p.Float("mixed", 7); got != 7 {
		t.Errorf("Float on string value = %v, want fallback 7", got)
	}
	if p.Bool("mixed", false) {
		t.Error("Bool on string value should fall back")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	p := Load()
	p.SetFloat("windowWidth", 1024)
	p.SetString("lastProject", "plate.gvproj")
	p.SetBool("showGrid", true)
	if err := p.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	reloaded := Load()
	if got := reloaded.Float("windowWidth", 0); got != 1024 {
		t.Errorf("windowWidth = %v, want 1024", got)
	}
	if got := reloaded.String("lastProject"); got != "plate.gvproj" {
		t.Errorf("lastProject = %q", got)
	}
	if !reloaded.Bool("showGrid", false) {
		t.Error("showGrid lost in round trip")
	}
}
