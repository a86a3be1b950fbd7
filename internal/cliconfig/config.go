package cliconfig

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bft-labs/frameship/pkg/frameship"
)

// Frame sources selectable with --source.
const (
	SourceSpool  = "spool"
	SourceFFmpeg = "ffmpeg"
)

// Uploaders selectable with --uploader.
const (
	UploaderHTTP = "http"
	UploaderDir  = "dir"
)

// DefaultPrefix is prepended to artifact names to form object keys.
const DefaultPrefix = "live/"

// Config holds CLI configuration for frameship.
type Config struct {
	Source        string
	SpoolDir      string
	CaptureInput  string
	CaptureFormat string
	CaptureFPS    int
	FFmpegBinary  string

	Bitrate       string
	GOP           int
	Profile       string
	EncodeTimeout time.Duration

	Uploader    string
	ServiceURL  string
	AuthKey     string
	Prefix      string
	DestDir     string
	DeviceID    string
	HTTPTimeout time.Duration

	TempDir           string
	StatusDir         string
	BatchSize         int
	MaxQueueSize      int
	UploadThreads     int
	Retention         string
	MaxMemoryMB       int64
	FrameTimeout      time.Duration
	CaptureInterval   time.Duration
	IdleInterval      time.Duration
	ShutdownTimeout   time.Duration
	KeepFailedUploads bool

	MetricsAddr string
	RunFor      time.Duration
	LogLevel    string
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	lib := frameship.DefaultConfig()
	enc := frameship.DefaultEncoderConfig()
	return Config{
		Source:        SourceSpool,
		SpoolDir:      "./spool",
		CaptureFPS:    10,
		FFmpegBinary:  enc.Binary,
		Bitrate:       enc.Bitrate,
		GOP:           enc.GOP,
		Profile:       enc.Profile,
		EncodeTimeout: enc.Timeout,

		Uploader:    UploaderHTTP,
		Prefix:      DefaultPrefix,
		HTTPTimeout: 60 * time.Second,

		TempDir:         lib.TempDir,
		StatusDir:       "", // Derived from TempDir during Validate
		BatchSize:       lib.BatchSize,
		MaxQueueSize:    lib.MaxQueueSize,
		UploadThreads:   lib.UploadThreads,
		Retention:       lib.RetentionPolicy.String(),
		MaxMemoryMB:     lib.MaxMemoryMB,
		FrameTimeout:    lib.FrameTimeout,
		CaptureInterval: lib.CaptureInterval,
		IdleInterval:    lib.IdleInterval,
		ShutdownTimeout: lib.ShutdownTimeout,

		LogLevel: "info",
	}
}

// Validate checks the configuration for errors and sets derived defaults.
func (c *Config) Validate() error {
	switch c.Source {
	case SourceSpool:
		if c.SpoolDir == "" {
			return fmt.Errorf("spool-dir is required for the spool source")
		}
	case SourceFFmpeg:
		if c.CaptureInput == "" {
			return fmt.Errorf("capture-input is required for the ffmpeg source")
		}
	default:
		return fmt.Errorf("unknown source %q (want %s or %s)", c.Source, SourceSpool, SourceFFmpeg)
	}

	switch c.Uploader {
	case UploaderHTTP:
		if c.ServiceURL == "" {
			return fmt.Errorf("service-url is required for the http uploader")
		}
		c.ServiceURL = strings.TrimRight(c.ServiceURL, "/")
	case UploaderDir:
		if c.DestDir == "" {
			return fmt.Errorf("dest-dir is required for the dir uploader")
		}
	default:
		return fmt.Errorf("unknown uploader %q (want %s or %s)", c.Uploader, UploaderHTTP, UploaderDir)
	}

	if c.TempDir == "" {
		return fmt.Errorf("temp-dir is required")
	}
	if c.StatusDir == "" {
		c.StatusDir = c.TempDir
	}

	if _, err := frameship.ParseRetentionPolicy(c.Retention); err != nil {
		return err
	}

	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.RunFor < 0 {
		return fmt.Errorf("run-for must not be negative")
	}

	return nil
}

// Pipeline converts c into the library configuration.
func (c Config) Pipeline() (frameship.Config, error) {
	policy, err := frameship.ParseRetentionPolicy(c.Retention)
	if err != nil {
		return frameship.Config{}, err
	}
	lib := frameship.Config{
		TempDir:           c.TempDir,
		StatusDir:         c.StatusDir,
		BatchSize:         c.BatchSize,
		MaxQueueSize:      c.MaxQueueSize,
		UploadThreads:     c.UploadThreads,
		RetentionPolicy:   policy,
		MaxMemoryMB:       c.MaxMemoryMB,
		FrameTimeout:      c.FrameTimeout,
		CaptureInterval:   c.CaptureInterval,
		IdleInterval:      c.IdleInterval,
		ShutdownTimeout:   c.ShutdownTimeout,
		KeepFailedUploads: c.KeepFailedUploads,
	}
	lib.SetDefaults()
	return lib, lib.Validate()
}

// Encoder converts c into the ffmpeg encode settings.
func (c Config) Encoder() frameship.EncoderConfig {
	enc := frameship.DefaultEncoderConfig()
	if c.FFmpegBinary != "" {
		enc.Binary = c.FFmpegBinary
	}
	if c.Bitrate != "" {
		enc.Bitrate = c.Bitrate
	}
	if c.GOP > 0 {
		enc.GOP = c.GOP
	}
	if c.Profile != "" {
		enc.Profile = c.Profile
	}
	if c.EncodeTimeout > 0 {
		enc.Timeout = c.EncodeTimeout
	}
	return enc
}

// Masked returns a copy safe to log.
func (c Config) Masked() Config {
	if c.AuthKey != "" {
		c.AuthKey = "*****"
	}
	return c
}

// configSetter helps apply configuration values while respecting flag precedence.
// It only applies values if the corresponding flag hasn't been explicitly set.
type configSetter struct {
	changed map[string]bool
}

func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setInt sets an int value if positive and flag not changed.
func (s *configSetter) setInt(flag string, value int, dst *int) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

// setInt64 sets an int64 from a pointer if not nil and flag not changed.
// Zero is kept so a zero budget can be configured.
func (s *configSetter) setInt64(flag string, value *int64, dst *int64) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setDuration parses and sets a duration from string if valid and flag not changed.
func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

// setBool sets a bool value from a pointer if not nil and flag not changed.
func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setIntFromString parses a string to int and sets the destination if valid.
// Used for environment variables that come as strings.
func (s *configSetter) setIntFromString(flag, value string, dst *int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	if i <= 0 {
		return nil
	}
	*dst = i
	return nil
}

// setInt64FromString parses a string to int64 and sets the destination.
// Unlike setIntFromString it keeps zero; negatives are left to validation.
func (s *configSetter) setInt64FromString(flag, value string, dst *int64) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = i
	return nil
}

// setBoolFromString parses a string to bool and sets the destination.
// Accepts "true", "1" as true, anything else as false.
func (s *configSetter) setBoolFromString(flag, value string, dst *bool) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value == "true" || value == "1"
}
