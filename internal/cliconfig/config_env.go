package cliconfig

import "os"

// ApplyEnvConfig applies configuration from environment variables (FRAMESHIP_*).
// It respects flags that have been explicitly set (changed map).
// Returns error if any environment variable has an invalid format.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("source", os.Getenv("FRAMESHIP_SOURCE"), &cfg.Source)
	s.setString("spool-dir", os.Getenv("FRAMESHIP_SPOOL_DIR"), &cfg.SpoolDir)
	s.setString("capture-input", os.Getenv("FRAMESHIP_CAPTURE_INPUT"), &cfg.CaptureInput)
	s.setString("capture-format", os.Getenv("FRAMESHIP_CAPTURE_FORMAT"), &cfg.CaptureFormat)
	s.setString("ffmpeg", os.Getenv("FRAMESHIP_FFMPEG"), &cfg.FFmpegBinary)
	s.setString("bitrate", os.Getenv("FRAMESHIP_BITRATE"), &cfg.Bitrate)
	s.setString("profile", os.Getenv("FRAMESHIP_PROFILE"), &cfg.Profile)
	s.setString("uploader", os.Getenv("FRAMESHIP_UPLOADER"), &cfg.Uploader)
	s.setString("service-url", os.Getenv("FRAMESHIP_SERVICE_URL"), &cfg.ServiceURL)
	s.setString("auth-key", os.Getenv("FRAMESHIP_AUTH_KEY"), &cfg.AuthKey)
	s.setString("prefix", os.Getenv("FRAMESHIP_PREFIX"), &cfg.Prefix)
	s.setString("dest-dir", os.Getenv("FRAMESHIP_DEST_DIR"), &cfg.DestDir)
	s.setString("device-id", os.Getenv("FRAMESHIP_DEVICE_ID"), &cfg.DeviceID)
	s.setString("temp-dir", os.Getenv("FRAMESHIP_TEMP_DIR"), &cfg.TempDir)
	s.setString("status-dir", os.Getenv("FRAMESHIP_STATUS_DIR"), &cfg.StatusDir)
	s.setString("retention", os.Getenv("FRAMESHIP_RETENTION"), &cfg.Retention)
	s.setString("metrics-addr", os.Getenv("FRAMESHIP_METRICS_ADDR"), &cfg.MetricsAddr)
	s.setString("log-level", os.Getenv("FRAMESHIP_LOG_LEVEL"), &cfg.LogLevel)

	if err := s.setDuration("encode-timeout", os.Getenv("FRAMESHIP_ENCODE_TIMEOUT"), &cfg.EncodeTimeout); err != nil {
		return err
	}
	if err := s.setDuration("timeout", os.Getenv("FRAMESHIP_HTTP_TIMEOUT"), &cfg.HTTPTimeout); err != nil {
		return err
	}
	if err := s.setDuration("frame-timeout", os.Getenv("FRAMESHIP_FRAME_TIMEOUT"), &cfg.FrameTimeout); err != nil {
		return err
	}
	if err := s.setDuration("capture-interval", os.Getenv("FRAMESHIP_CAPTURE_INTERVAL"), &cfg.CaptureInterval); err != nil {
		return err
	}
	if err := s.setDuration("idle-interval", os.Getenv("FRAMESHIP_IDLE_INTERVAL"), &cfg.IdleInterval); err != nil {
		return err
	}
	if err := s.setDuration("shutdown-timeout", os.Getenv("FRAMESHIP_SHUTDOWN_TIMEOUT"), &cfg.ShutdownTimeout); err != nil {
		return err
	}
	if err := s.setDuration("run-for", os.Getenv("FRAMESHIP_RUN_FOR"), &cfg.RunFor); err != nil {
		return err
	}

	if err := s.setIntFromString("capture-fps", os.Getenv("FRAMESHIP_CAPTURE_FPS"), &cfg.CaptureFPS); err != nil {
		return err
	}
	if err := s.setIntFromString("gop", os.Getenv("FRAMESHIP_GOP"), &cfg.GOP); err != nil {
		return err
	}
	if err := s.setIntFromString("batch-size", os.Getenv("FRAMESHIP_BATCH_SIZE"), &cfg.BatchSize); err != nil {
		return err
	}
	if err := s.setIntFromString("max-queue-size", os.Getenv("FRAMESHIP_MAX_QUEUE_SIZE"), &cfg.MaxQueueSize); err != nil {
		return err
	}
	if err := s.setIntFromString("upload-threads", os.Getenv("FRAMESHIP_UPLOAD_THREADS"), &cfg.UploadThreads); err != nil {
		return err
	}
	if err := s.setInt64FromString("max-memory-mb", os.Getenv("FRAMESHIP_MAX_MEMORY_MB"), &cfg.MaxMemoryMB); err != nil {
		return err
	}

	s.setBoolFromString("keep-failed-uploads", os.Getenv("FRAMESHIP_KEEP_FAILED_UPLOADS"), &cfg.KeepFailedUploads)

	return nil
}
