package main

import (
	"encoding/json"
	"os"
	"time"

	"agarclient/internal/clog"
	"agarclient/view"
)

const SETTINGS_VERSION = 1

const settingsFile = "settings.json"

var gs settings = gsdef

// settingsLoaded reports whether settings were successfully loaded from disk.
var settingsLoaded bool

var gsdef settings = settings{
	Version: SETTINGS_VERSION,

	Host: "127.0.0.1",
	Port: 9999,
	Name: "Atti",

	KeepAliveMS:  500,
	TickRate:     60,
	CommandRate:  30,
	CommandBurst: 10,

	Scale:        1,
	GridSpacing:  view.DefaultGridSpacing,
	WindowWidth:  1280,
	WindowHeight: 720,
}

type settings struct {
	Version int

	Host string
	Port int
	Name string

	// KeepAliveMS is the ping period in milliseconds.
	KeepAliveMS int
	// TickRate is the render tick frequency in Hz.
	TickRate int
	// CommandRate and CommandBurst limit speed commands per second.
	CommandRate  float64
	CommandBurst int

	// Scale converts world units to pixels.
	Scale       float64
	GridSpacing float64

	WindowWidth  int
	WindowHeight int
}

func (s settings) keepAlive() time.Duration {
	return time.Duration(s.KeepAliveMS) * time.Millisecond
}

// loadSettings reads path into gs. Missing, unreadable or outdated files
// leave the defaults in place.
func loadSettings(path string) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		gs = gsdef
		settingsLoaded = false
		return false
	}

	tmp := gsdef
	if err := json.Unmarshal(data, &tmp); err != nil {
		clog.Warnf("load settings: %v", err)
		gs = gsdef
		settingsLoaded = false
		return false
	}
	if tmp.Version != SETTINGS_VERSION {
		gs = gsdef
		settingsLoaded = false
		return false
	}

	gs = tmp.clamped()
	settingsLoaded = true
	return true
}

// clamped replaces out of range values with their defaults.
func (s settings) clamped() settings {
	if s.Host == "" {
		s.Host = gsdef.Host
	}
	if s.Port <= 0 || s.Port > 65535 {
		s.Port = gsdef.Port
	}
	if s.KeepAliveMS < 50 {
		s.KeepAliveMS = gsdef.KeepAliveMS
	}
	if s.TickRate < 1 || s.TickRate > 240 {
		s.TickRate = gsdef.TickRate
	}
	if s.CommandRate <= 0 {
		s.CommandRate = gsdef.CommandRate
	}
	if s.CommandBurst < 1 {
		s.CommandBurst = gsdef.CommandBurst
	}
	if s.Scale <= 0 {
		s.Scale = gsdef.Scale
	}
	if s.GridSpacing < 10 {
		s.GridSpacing = gsdef.GridSpacing
	}
	if s.WindowWidth < 100 {
		s.WindowWidth = gsdef.WindowWidth
	}
	if s.WindowHeight < 100 {
		s.WindowHeight = gsdef.WindowHeight
	}
	return s
}

func saveSettings(path string) {
	data, err := json.MarshalIndent(gs, "", "  ")
	if err != nil {
		clog.Errorf("save settings: %v", err)
		return
	}
	if err := os.WriteFile(path+".tmp", data, 0644); err != nil {
		clog.Errorf("save settings: %v", err)
		return
	}
	if err := os.Rename(path+".tmp", path); err != nil {
		clog.Errorf("save settings: %v", err)
	}
}
