package main

import (
	"os"
	"path/filepath"
	"testing"
)

func writeSettings(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), settingsFile)
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("write settings: %v", err)
	}
	return path
}

func TestLoadSettingsMissingFile(t *testing.T) {
	gs = settings{}
	if loadSettings(filepath.Join(t.TempDir(), "nope.json")) {
		t.Fatalf("loadSettings reported success for a missing file")
	}
	if gs != gsdef || settingsLoaded {
		t.Fatalf("gs=%+v loaded=%v, want defaults", gs, settingsLoaded)
	}
}

func TestLoadSettingsOverridesAndClamps(t *testing.T) {
	path := writeSettings(t, `{"Version":1,"Host":"example.org","Port":7000,"Name":"zed","TickRate":0,"Scale":-2,"KeepAliveMS":250}`)
	if !loadSettings(path) {
		t.Fatalf("loadSettings failed")
	}
	defer func() { gs = gsdef }()

	if gs.Host != "example.org" || gs.Port != 7000 || gs.Name != "zed" || gs.KeepAliveMS != 250 {
		t.Fatalf("gs=%+v, want file values", gs)
	}
	if gs.TickRate != gsdef.TickRate || gs.Scale != gsdef.Scale {
		t.Fatalf("TickRate=%v Scale=%v, want defaults", gs.TickRate, gs.Scale)
	}
	if gs.CommandRate != gsdef.CommandRate || gs.WindowWidth != gsdef.WindowWidth {
		t.Fatalf("absent fields not defaulted: %+v", gs)
	}
	if got := gs.keepAlive().Milliseconds(); got != 250 {
		t.Fatalf("keepAlive=%vms, want 250", got)
	}
}

func TestLoadSettingsRejects(t *testing.T) {
	tests := map[string]string{
		"old version": `{"Version":0,"Host":"old.example"}`,
		"invalid":     `{"Version":1,`,
	}
	for label, body := range tests {
		gs = settings{}
		if loadSettings(writeSettings(t, body)) {
			t.Fatalf("%s: loadSettings succeeded", label)
		}
		if gs != gsdef {
			t.Fatalf("%s: gs=%+v, want defaults", label, gs)
		}
	}
}

func TestSaveSettings(t *testing.T) {
	path := filepath.Join(t.TempDir(), settingsFile)
	gs = gsdef
	gs.Name = "saved"
	saveSettings(path)
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("temporary file left behind: %v", err)
	}

	gs = gsdef
	if !loadSettings(path) || gs.Name != "saved" {
		t.Fatalf("reload: gs.Name=%q", gs.Name)
	}
	gs = gsdef
}
