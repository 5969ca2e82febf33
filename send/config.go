package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"hexupload/binfile"
	"hexupload/serialcomm"
	"hexupload/upload"
)

// Settings read from the command line and, optionally, a JSON file.
type Settings struct {
	Port      string `json:"port"`
	Baud      int    `json:"baud"`
	Driver    string `json:"driver"`
	Limited   bool   `json:"limited"`
	Pacing    string `json:"pacing"`
	Wake      string `json:"wake"`
	ReadLimit int    `json:"readLimit"`
	Quiet     bool   `json:"quiet"`

	Files []string `json:"files"`

	pacing time.Duration
	wake   time.Duration
}

func defaultSettings() Settings {
	return Settings{
		Port:      "COM1",
		Baud:      serialcomm.DefaultBaudRate,
		Driver:    serialcomm.DriverTarm,
		Pacing:    upload.DefaultPacing.String(),
		Wake:      "3s",
		ReadLimit: binfile.DefaultReadLimit,
	}
}

// parseSettings builds the settings for one run. Values given on the command
// line win over the settings file, which wins over the defaults.
func parseSettings(args []string) (*Settings, error) {
	s := defaultSettings()
	fs := flag.NewFlagSet("send", flag.ContinueOnError)

	var configPath string
	fs.StringVar(&configPath, "config", "", "JSON settings file")
	fs.StringVar(&s.Port, "port", s.Port, "serial port name")
	fs.IntVar(&s.Baud, "baud", s.Baud, "baud rate")
	fs.StringVar(&s.Driver, "driver", s.Driver, "serial driver: tarm, bugst or term")
	fs.BoolVar(&s.Limited, "limited", s.Limited, "limited target: send at most 1024 bytes")
	fs.BoolVar(&s.Limited, "studio2", s.Limited, "alias for -limited (RCA Studio II)")
	fs.StringVar(&s.Pacing, "pacing", s.Pacing, "pause after every character")
	fs.StringVar(&s.Wake, "wake", s.Wake, "wait after opening the port for the board to reset")
	fs.IntVar(&s.ReadLimit, "read-limit", s.ReadLimit, "max bytes read from a raw file, 0 for no limit")
	fs.BoolVar(&s.Quiet, "quiet", s.Quiet, "do not show per-byte messages")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if configPath != "" {
		set := make(map[string]bool)
		fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

		fromFile, err := loadSettingsFile(configPath)
		if err != nil {
			return nil, err
		}
		s.merge(fromFile, set)
	}

	if fs.NArg() > 0 {
		s.Files = fs.Args()
	}

	if err := s.validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// fileSettings is the settings file layout. ReadLimit is a pointer so an
// explicit 0 (no limit) is told apart from a missing key.
type fileSettings struct {
	Settings
	ReadLimit *int `json:"readLimit"`
}

func loadSettingsFile(path string) (*fileSettings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}
	var s fileSettings
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse settings %s: %w", path, err)
	}
	return &s, nil
}

// merge copies non-zero values from f for every flag not set explicitly.
// readLimit is copied whenever the file names it, 0 included.
func (s *Settings) merge(f *fileSettings, set map[string]bool) {
	if f.Port != "" && !set["port"] {
		s.Port = f.Port
	}
	if f.Baud != 0 && !set["baud"] {
		s.Baud = f.Baud
	}
	if f.Driver != "" && !set["driver"] {
		s.Driver = f.Driver
	}
	if f.Limited && !set["limited"] && !set["studio2"] {
		s.Limited = true
	}
	if f.Pacing != "" && !set["pacing"] {
		s.Pacing = f.Pacing
	}
	if f.Wake != "" && !set["wake"] {
		s.Wake = f.Wake
	}
	if f.ReadLimit != nil && !set["read-limit"] {
		s.ReadLimit = *f.ReadLimit
	}
	if f.Quiet && !set["quiet"] {
		s.Quiet = true
	}
	s.Files = f.Files
}

func (s *Settings) validate() error {
	var err error
	if s.pacing, err = time.ParseDuration(s.Pacing); err != nil || s.pacing < 0 {
		return fmt.Errorf("invalid pacing %q", s.Pacing)
	}
	if s.wake, err = time.ParseDuration(s.Wake); err != nil || s.wake < 0 {
		return fmt.Errorf("invalid wake delay %q", s.Wake)
	}
	if s.ReadLimit < 0 {
		return fmt.Errorf("invalid read limit %d", s.ReadLimit)
	}
	if len(s.Files) == 0 {
		return fmt.Errorf("no files to send")
	}
	return serialcomm.ValidateConfig(s.serialConfig())
}

func (s *Settings) serialConfig() *serialcomm.SerialConfig {
	return &serialcomm.SerialConfig{
		PortName: s.Port,
		BaudRate: s.Baud,
		Driver:   s.Driver,
	}
}
