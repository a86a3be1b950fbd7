package cliconfig

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// DefaultDeviceIDName is the file holding the generated device id.
const DefaultDeviceIDName = "device_id"

// LoadDeviceInfo fills DeviceID when it is not configured. The id is read
// from StatusDir/device_id, or generated and persisted there on first run
// so uploads from one device stay attributable across restarts.
func LoadDeviceInfo(cfg *Config) error {
	if cfg.DeviceID != "" {
		return nil
	}
	dir := cfg.StatusDir
	if dir == "" {
		dir = cfg.TempDir
	}
	if dir == "" {
		return fmt.Errorf("device-id is required (or status-dir)")
	}

	path := filepath.Join(dir, DefaultDeviceIDName)
	id, err := readDeviceID(path)
	if err == nil {
		cfg.DeviceID = id
		return nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("read device id: %w", err)
	}

	id = uuid.NewString()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create status dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(id+"\n"), 0o644); err != nil {
		return fmt.Errorf("write device id: %w", err)
	}
	cfg.DeviceID = id
	return nil
}

func readDeviceID(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	id := strings.TrimSpace(string(b))
	if id == "" {
		return "", fmt.Errorf("%s is empty", path)
	}
	return id, nil
}
