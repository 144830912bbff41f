// Package config handles loading, defaulting, and validation of the fsgrowth
// TOML configuration file. SMTP parameters live here rather than in the
// binary so a deployment only edits the file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"text/template"

	"github.com/pelletier/go-toml/v2"
)

// DefaultPath is where fsgrowth looks for its config when --config is not given.
const DefaultPath = "/etc/fsgrowth/fsgrowth.toml"

// Config is the top-level configuration, mirroring the TOML sections.
type Config struct {
	Sampler SamplerConfig `toml:"sampler" json:"sampler"`
	History HistoryConfig `toml:"history" json:"history"`
	Report  ReportConfig  `toml:"report"  json:"report"`
	SMTP    SMTPConfig    `toml:"smtp"    json:"smtp"`
	Logging LoggingConfig `toml:"logging" json:"logging"`
}

type SamplerConfig struct {
	Source            string `toml:"source"             json:"source"`
	Filesystem        string `toml:"filesystem"         json:"filesystem"`
	RequireMountpoint bool   `toml:"require_mountpoint" json:"require_mountpoint"`
}

type HistoryConfig struct {
	File string `toml:"file" json:"file"`
}

type ReportConfig struct {
	Environment string `toml:"environment"  json:"environment"`
	Rows        int    `toml:"rows"         json:"rows"`
	ChartWidth  int    `toml:"chart_width"  json:"chart_width"`
	ChartHeight int    `toml:"chart_height" json:"chart_height"`
}

type SMTPConfig struct {
	Host            string   `toml:"host"             json:"host"`
	Port            int      `toml:"port"             json:"port"`
	Username        string   `toml:"username"         json:"username"`
	Password        string   `toml:"password"         json:"-"`
	Sender          string   `toml:"sender"           json:"sender"`
	Recipient       []string `toml:"recipient"        json:"recipient"`
	SubjectTemplate string   `toml:"subject_template" json:"subject_template"`
	InsecureTLS     bool     `toml:"insecure_tls"     json:"insecure_tls"`
}

type LoggingConfig struct {
	Level      string `toml:"level"        json:"level"`
	File       string `toml:"file"         json:"file"`
	MaxSizeMB  int    `toml:"max_size_mb"  json:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"  json:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days" json:"max_age_days"`
	Compress   bool   `toml:"compress"     json:"compress"`
}

// Default returns a Config populated with sane defaults. Values here are
// used whenever the TOML file omits a field.
func Default() Config {
	return Config{
		Sampler: SamplerConfig{
			Source:     "statfs",
			Filesystem: "/",
		},
		History: HistoryConfig{
			File: "/var/lib/fsgrowth/history.csv",
		},
		Report: ReportConfig{
			Rows:        14,
			ChartWidth:  720,
			ChartHeight: 240,
		},
		SMTP: SMTPConfig{
			Host:            "localhost",
			Port:            25,
			Sender:          "fsgrowth@localhost",
			Recipient:       []string{"root@localhost"},
			SubjectTemplate: "{{if .Environment}}{{.Environment}} {{end}}file system growth report for {{.Hostname}}",
		},
		Logging: LoggingConfig{
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
	}
}

// Load reads the TOML file at path, layers it on top of the defaults, and
// validates the result. An error is returned if the file can't be read,
// parsed, or if any constraint is violated.
func Load(path string) (Config, error) {
	cfg := Default()

	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	if err := toml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}

	if err := Validate(cfg); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// LoadOptional behaves like Load but falls back to defaults when path does
// not exist and required is false.
func LoadOptional(path string, required bool) (Config, error) {
	cfg, err := Load(path)
	if err != nil && !required && errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// Validate checks the constraints every command relies on.
func Validate(cfg Config) error {
	switch cfg.Sampler.Source {
	case "statfs", "gopsutil":
	default:
		return fmt.Errorf("sampler.source must be statfs or gopsutil, got %q", cfg.Sampler.Source)
	}
	if cfg.History.File == "" {
		return errors.New("history.file must not be empty")
	}
	if cfg.Report.Rows < 1 {
		return errors.New("report.rows must be >= 1")
	}
	if cfg.Report.ChartWidth < 200 || cfg.Report.ChartHeight < 120 {
		return errors.New("report.chart_width must be >= 200 and report.chart_height >= 120")
	}
	if cfg.SMTP.Host == "" {
		return errors.New("smtp.host must not be empty")
	}
	if cfg.SMTP.Port < 1 || cfg.SMTP.Port > 65535 {
		return errors.New("smtp.port must be between 1 and 65535")
	}
	if cfg.SMTP.Sender == "" {
		return errors.New("smtp.sender must not be empty")
	}
	if len(cfg.SMTP.Recipient) == 0 {
		return errors.New("smtp.recipient must list at least one address")
	}
	for _, r := range cfg.SMTP.Recipient {
		if strings.TrimSpace(r) == "" {
			return errors.New("smtp.recipient must not contain empty addresses")
		}
	}
	if _, err := template.New("subject").Parse(cfg.SMTP.SubjectTemplate); err != nil {
		return fmt.Errorf("smtp.subject_template: %w", err)
	}
	if cfg.Logging.MaxSizeMB < 0 || cfg.Logging.MaxBackups < 0 || cfg.Logging.MaxAgeDays < 0 {
		return errors.New("logging rotation limits must be >= 0")
	}
	return nil
}
