package main

import (
	"io"
	"net/http"
	"os"

	"github.com/bft-labs/frameship/internal/adapters/ffmpeg"
	"github.com/bft-labs/frameship/internal/adapters/fs"
	httpadapter "github.com/bft-labs/frameship/internal/adapters/http"
	"github.com/bft-labs/frameship/internal/adapters/spool"
	"github.com/bft-labs/frameship/internal/cliconfig"
	"github.com/bft-labs/frameship/pkg/frameship"
	"github.com/bft-labs/frameship/pkg/log"
)

func newSource(cfg cliconfig.Config, logger log.Logger) (frameship.FrameSource, error) {
	switch cfg.Source {
	case cliconfig.SourceFFmpeg:
		return ffmpeg.NewCaptureSource(ffmpeg.CaptureConfig{
			Binary:      cfg.FFmpegBinary,
			InputFormat: cfg.CaptureFormat,
			Input:       cfg.CaptureInput,
			FrameRate:   cfg.CaptureFPS,
		}, log.Named(logger, "capture")), nil
	default:
		return spool.Open(cfg.SpoolDir, spool.Config{}, log.Named(logger, "spool"))
	}
}

func newUploader(cfg cliconfig.Config, logger log.Logger) frameship.Uploader {
	if cfg.Uploader == cliconfig.UploaderDir {
		return fs.NewDirUploader(cfg.DestDir, cfg.Prefix)
	}
	hostname, _ := os.Hostname()
	return httpadapter.NewUploader(
		&http.Client{Timeout: cfg.HTTPTimeout},
		httpadapter.UploadMetadata{
			ServiceURL: cfg.ServiceURL,
			AuthKey:    cfg.AuthKey,
			Prefix:     cfg.Prefix,
			DeviceID:   cfg.DeviceID,
			Hostname:   hostname,
		},
		log.Named(logger, "uploader"),
	)
}

func closeSource(source frameship.FrameSource) {
	if c, ok := source.(io.Closer); ok {
		_ = c.Close()
	}
}
