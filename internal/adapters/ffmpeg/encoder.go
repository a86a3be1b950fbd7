package ffmpeg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/bft-labs/frameship/internal/domain"
	"github.com/bft-labs/frameship/pkg/log"
)

// EncoderConfig holds ffmpeg encode settings.
type EncoderConfig struct {
	// Binary is the ffmpeg executable. Default: "ffmpeg"
	Binary string

	// VideoCodec is passed to -c:v. Default: "libx264"
	VideoCodec string

	// Bitrate is passed to -b:v. Default: "3M"
	Bitrate string

	// GOP is the keyframe interval passed to -g. Default: 15
	GOP int

	// Profile is passed to -profile:v. Default: "high422"
	Profile string

	// Format is the output container passed to -f. Default: "h264"
	Format string

	// Timeout bounds one encode. Zero disables the bound.
	Timeout time.Duration
}

// DefaultEncoderConfig returns the settings used for live H.264 output.
func DefaultEncoderConfig() EncoderConfig {
	return EncoderConfig{
		Binary:     "ffmpeg",
		VideoCodec: "libx264",
		Bitrate:    "3M",
		GOP:        15,
		Profile:    "high422",
		Format:     "h264",
		Timeout:    2 * time.Minute,
	}
}

func (c *EncoderConfig) setDefaults() {
	d := DefaultEncoderConfig()
	if c.Binary == "" {
		c.Binary = d.Binary
	}
	if c.VideoCodec == "" {
		c.VideoCodec = d.VideoCodec
	}
	if c.Bitrate == "" {
		c.Bitrate = d.Bitrate
	}
	if c.GOP <= 0 {
		c.GOP = d.GOP
	}
	if c.Format == "" {
		c.Format = d.Format
	}
}

// Encoder implements ports.BatchEncoder by running ffmpeg with the concat
// demuxer over a generated list file.
type Encoder struct {
	config EncoderConfig
	logger log.Logger
}

// NewEncoder creates an encoder.
func NewEncoder(config EncoderConfig, logger log.Logger) *Encoder {
	config.setDefaults()
	if logger == nil {
		logger = log.NoopLogger{}
	}
	return &Encoder{config: config, logger: logger}
}

// Encode writes frames, in order, into output. On failure any partial
// output is removed. The list file is always removed.
func (e *Encoder) Encode(ctx context.Context, frames []domain.FrameHandle, output domain.ArtifactHandle) error {
	if len(frames) == 0 {
		return errors.New("no frames to encode")
	}

	listPath, err := writeListFile(frames, output)
	if err != nil {
		return err
	}
	defer func() {
		if err := os.Remove(listPath); err != nil && !os.IsNotExist(err) {
			e.logger.Warn("failed to remove concat list", log.String("file", listPath), log.Err(err))
		}
	}()

	if e.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.config.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, e.config.Binary, e.args(listPath, output.Path())...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	start := time.Now()
	if err := cmd.Run(); err != nil {
		_ = os.Remove(output.Path())
		return fmt.Errorf("ffmpeg error: %w - %s", err, tail(stderr.String(), 512))
	}

	// ffmpeg can exit 0 without producing anything on odd inputs.
	fi, err := os.Stat(output.Path())
	if err != nil || fi.Size() == 0 {
		_ = os.Remove(output.Path())
		return fmt.Errorf("ffmpeg produced no output for %s", output.Name())
	}

	e.logger.Debug("ffmpeg encode finished",
		log.Int("frames", len(frames)),
		log.String("artifact", output.Name()),
		log.Int64("bytes", fi.Size()),
		log.Duration("duration", time.Since(start)),
	)
	return nil
}

func (e *Encoder) args(listPath, outPath string) []string {
	args := []string{
		"-y",
		"-f", "concat",
		"-safe", "0",
		"-i", listPath,
		"-c:v", e.config.VideoCodec,
		"-b:v", e.config.Bitrate,
		"-g", strconv.Itoa(e.config.GOP),
	}
	if e.config.Profile != "" {
		args = append(args, "-profile:v", e.config.Profile)
	}
	return append(args, "-f", e.config.Format, outPath)
}

// writeListFile writes the concat demuxer input next to the output as
// list_<output name>.txt.
func writeListFile(frames []domain.FrameHandle, output domain.ArtifactHandle) (string, error) {
	name := strings.TrimSuffix(output.Name(), filepath.Ext(output.Name()))
	listPath := filepath.Join(filepath.Dir(output.Path()), "list_"+name+".txt")

	var b strings.Builder
	for _, f := range frames {
		p, err := filepath.Abs(f.Path())
		if err != nil {
			p = f.Path()
		}
		b.WriteString("file '")
		b.WriteString(strings.ReplaceAll(p, "'", `'\''`))
		b.WriteString("'\n")
	}

	if err := os.WriteFile(listPath, []byte(b.String()), 0o644); err != nil {
		return "", fmt.Errorf("write concat list: %w", err)
	}
	return listPath, nil
}

func tail(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return "..." + s[len(s)-n:]
}
