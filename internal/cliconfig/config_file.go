package cliconfig

import (
	"os"
	"path/filepath"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// FileConfig mirrors Config but uses strings for durations to make TOML friendly.
type FileConfig struct {
	Source        string `toml:"source"`
	SpoolDir      string `toml:"spool_dir"`
	CaptureInput  string `toml:"capture_input"`
	CaptureFormat string `toml:"capture_format"`
	CaptureFPS    int    `toml:"capture_fps"`
	FFmpegBinary  string `toml:"ffmpeg"`

	Bitrate       string `toml:"bitrate"`
	GOP           int    `toml:"gop"`
	Profile       string `toml:"profile"`
	EncodeTimeout string `toml:"encode_timeout"`

	Uploader    string `toml:"uploader"`
	ServiceURL  string `toml:"service_url"`
	AuthKey     string `toml:"auth_key"`
	Prefix      string `toml:"prefix"`
	DestDir     string `toml:"dest_dir"`
	DeviceID    string `toml:"device_id"`
	HTTPTimeout string `toml:"http_timeout"`

	TempDir           string `toml:"temp_dir"`
	StatusDir         string `toml:"status_dir"`
	BatchSize         int    `toml:"batch_size"`
	MaxQueueSize      int    `toml:"max_queue_size"`
	UploadThreads     int    `toml:"upload_threads"`
	Retention         string `toml:"retention"`
	MaxMemoryMB       *int64 `toml:"max_memory_mb"`
	FrameTimeout      string `toml:"frame_timeout"`
	CaptureInterval   string `toml:"capture_interval"`
	IdleInterval      string `toml:"idle_interval"`
	ShutdownTimeout   string `toml:"shutdown_timeout"`
	KeepFailedUploads *bool  `toml:"keep_failed_uploads"`

	MetricsAddr string `toml:"metrics_addr"`
	LogLevel    string `toml:"log_level"`
}

// LoadFileConfig reads and parses a TOML config file from the given path.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns the default configuration file path.
// Returns ~/.frameship/config.toml if user home directory is accessible.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".frameship", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("source", fc.Source, &cfg.Source)
	s.setString("spool-dir", fc.SpoolDir, &cfg.SpoolDir)
	s.setString("capture-input", fc.CaptureInput, &cfg.CaptureInput)
	s.setString("capture-format", fc.CaptureFormat, &cfg.CaptureFormat)
	s.setString("ffmpeg", fc.FFmpegBinary, &cfg.FFmpegBinary)
	s.setString("bitrate", fc.Bitrate, &cfg.Bitrate)
	s.setString("profile", fc.Profile, &cfg.Profile)
	s.setString("uploader", fc.Uploader, &cfg.Uploader)
	s.setString("service-url", fc.ServiceURL, &cfg.ServiceURL)
	s.setString("auth-key", fc.AuthKey, &cfg.AuthKey)
	s.setString("prefix", fc.Prefix, &cfg.Prefix)
	s.setString("dest-dir", fc.DestDir, &cfg.DestDir)
	s.setString("device-id", fc.DeviceID, &cfg.DeviceID)
	s.setString("temp-dir", fc.TempDir, &cfg.TempDir)
	s.setString("status-dir", fc.StatusDir, &cfg.StatusDir)
	s.setString("retention", fc.Retention, &cfg.Retention)
	s.setString("metrics-addr", fc.MetricsAddr, &cfg.MetricsAddr)
	s.setString("log-level", fc.LogLevel, &cfg.LogLevel)

	durations := []struct {
		flag  string
		value string
		dst   *time.Duration
	}{
		{"encode-timeout", fc.EncodeTimeout, &cfg.EncodeTimeout},
		{"timeout", fc.HTTPTimeout, &cfg.HTTPTimeout},
		{"frame-timeout", fc.FrameTimeout, &cfg.FrameTimeout},
		{"capture-interval", fc.CaptureInterval, &cfg.CaptureInterval},
		{"idle-interval", fc.IdleInterval, &cfg.IdleInterval},
		{"shutdown-timeout", fc.ShutdownTimeout, &cfg.ShutdownTimeout},
	}
	for _, d := range durations {
		if err := s.setDuration(d.flag, d.value, d.dst); err != nil {
			return err
		}
	}

	s.setInt("capture-fps", fc.CaptureFPS, &cfg.CaptureFPS)
	s.setInt("gop", fc.GOP, &cfg.GOP)
	s.setInt("batch-size", fc.BatchSize, &cfg.BatchSize)
	s.setInt("max-queue-size", fc.MaxQueueSize, &cfg.MaxQueueSize)
	s.setInt("upload-threads", fc.UploadThreads, &cfg.UploadThreads)
	s.setInt64("max-memory-mb", fc.MaxMemoryMB, &cfg.MaxMemoryMB)

	s.setBool("keep-failed-uploads", fc.KeepFailedUploads, &cfg.KeepFailedUploads)

	return nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
