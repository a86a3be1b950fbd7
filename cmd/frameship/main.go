package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/bft-labs/frameship/internal/adapters/fs"
	"github.com/bft-labs/frameship/internal/cliconfig"
	"github.com/bft-labs/frameship/internal/metrics"
	"github.com/bft-labs/frameship/pkg/frameship"
	"github.com/bft-labs/frameship/pkg/log"
)

const helpDescription = `
Capture frames from a camera or spool directory, encode them into H.264
segments and ship the segments to remote storage.

Highlights:
  - Bounded frame queue: under overload the oldest frames are dropped.
  - Batches are encoded with ffmpeg and uploaded by a pool of workers.
  - Retention policies for captured frames: keep-all, delete-on-success,
    delete-when-exceed (with a memory budget).
  - Configure via file, env (FRAMESHIP_*), or flags.
`

var exampleUsage = strings.TrimSpace(`
  frameship --source ffmpeg --capture-input /dev/video0 --service-url https://ingest.example.com --auth-key <key>
  frameship --source spool --spool-dir /var/spool/frames --uploader dir --dest-dir /mnt/nfs/live
  frameship status --status-dir ./tmp
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	cfg := cliconfig.DefaultConfig()
	var cfgPath string

	root := &cobra.Command{
		Use:           "frameship",
		Short:         "Capture, batch, encode and upload video frames",
		Long:          strings.TrimSpace(helpDescription),
		Example:       exampleUsage,
		Version:       fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := loadConfig(cmd, cfgPath, &cfg); err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			if err := cliconfig.LoadDeviceInfo(&cfg); err != nil {
				return err
			}
			return run(cmd.Context(), cfg)
		},
	}

	root.PersistentFlags().StringVar(&cfgPath, "config", "", "path to config file (default: $HOME/.frameship/config.toml)")
	bindFlags(root.Flags(), &cfg)
	root.AddCommand(newStatusCmd(&cfg, &cfgPath))

	if err := root.Execute(); err != nil {
		logger := cliconfig.NewLogger(cfg.LogLevel)
		logger.Error().Err(err).Msg("frameship")
		os.Exit(1)
	}
}

func bindFlags(f *pflag.FlagSet, cfg *cliconfig.Config) {
	f.StringVar(&cfg.Source, "source", cfg.Source, "frame source: spool or ffmpeg")
	f.StringVar(&cfg.SpoolDir, "spool-dir", cfg.SpoolDir, "directory watched for incoming frame files (spool source)")
	f.StringVar(&cfg.CaptureInput, "capture-input", cfg.CaptureInput, "ffmpeg input device or URL (ffmpeg source)")
	f.StringVar(&cfg.CaptureFormat, "capture-format", cfg.CaptureFormat, "ffmpeg input format, e.g. v4l2 (ffmpeg source)")
	f.IntVar(&cfg.CaptureFPS, "capture-fps", cfg.CaptureFPS, "frames per second requested from ffmpeg (ffmpeg source)")
	f.StringVar(&cfg.FFmpegBinary, "ffmpeg", cfg.FFmpegBinary, "ffmpeg executable")

	f.StringVar(&cfg.Bitrate, "bitrate", cfg.Bitrate, "H.264 bitrate")
	f.IntVar(&cfg.GOP, "gop", cfg.GOP, "H.264 keyframe interval")
	f.StringVar(&cfg.Profile, "profile", cfg.Profile, "H.264 profile")
	f.DurationVar(&cfg.EncodeTimeout, "encode-timeout", cfg.EncodeTimeout, "upper bound for one batch encode")

	f.StringVar(&cfg.Uploader, "uploader", cfg.Uploader, "artifact uploader: http or dir")
	f.StringVar(&cfg.ServiceURL, "service-url", cfg.ServiceURL, "ingestion service base URL (http uploader)")
	f.StringVar(&cfg.AuthKey, "auth-key", cfg.AuthKey, "API key for authentication (http uploader)")
	f.StringVar(&cfg.Prefix, "prefix", cfg.Prefix, "object key prefix for uploaded artifacts")
	f.StringVar(&cfg.DestDir, "dest-dir", cfg.DestDir, "destination directory (dir uploader)")
	f.StringVar(&cfg.DeviceID, "device-id", cfg.DeviceID, "device identifier (generated when empty)")
	f.DurationVar(&cfg.HTTPTimeout, "timeout", cfg.HTTPTimeout, "HTTP timeout per upload")

	f.StringVar(&cfg.TempDir, "temp-dir", cfg.TempDir, "directory for frames and encoded artifacts")
	f.StringVar(&cfg.StatusDir, "status-dir", cfg.StatusDir, "directory for status.json (defaults to temp-dir)")
	f.IntVar(&cfg.BatchSize, "batch-size", cfg.BatchSize, "frames per encode trigger")
	f.IntVar(&cfg.MaxQueueSize, "max-queue-size", cfg.MaxQueueSize, "maximum frames waiting for encode")
	f.IntVar(&cfg.UploadThreads, "upload-threads", cfg.UploadThreads, "number of upload workers")
	f.StringVar(&cfg.Retention, "retention", cfg.Retention, "frame retention: keep-all, delete-on-success, delete-when-exceed")
	f.Int64Var(&cfg.MaxMemoryMB, "max-memory-mb", cfg.MaxMemoryMB, "retained frame budget in MB (delete-when-exceed)")
	f.DurationVar(&cfg.FrameTimeout, "frame-timeout", cfg.FrameTimeout, "wait for one frame from the source")
	f.DurationVar(&cfg.CaptureInterval, "capture-interval", cfg.CaptureInterval, "pause between capture iterations")
	f.DurationVar(&cfg.IdleInterval, "idle-interval", cfg.IdleInterval, "upload worker poll interval when idle")
	f.DurationVar(&cfg.ShutdownTimeout, "shutdown-timeout", cfg.ShutdownTimeout, "maximum wait for in-flight work on stop")
	f.BoolVar(&cfg.KeepFailedUploads, "keep-failed-uploads", cfg.KeepFailedUploads, "keep local artifacts whose upload failed")

	f.StringVar(&cfg.MetricsAddr, "metrics-addr", cfg.MetricsAddr, "address for the Prometheus /metrics endpoint (disabled when empty)")
	f.DurationVar(&cfg.RunFor, "run-for", cfg.RunFor, "stop after this long (0 runs until signalled)")
	f.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level: debug, info, warn, error")
}

// loadConfig applies the config file and FRAMESHIP_* variables under any
// flags set on the command line.
func loadConfig(cmd *cobra.Command, cfgPath string, cfg *cliconfig.Config) error {
	cfgFile := cfgPath
	if cfgFile == "" {
		cfgFile = cliconfig.DefaultConfigPath()
	}

	changed := map[string]bool{}
	cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

	if cfgFile != "" && cliconfig.FileExists(cfgFile) {
		fc, err := cliconfig.LoadFileConfig(cfgFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if err := cliconfig.ApplyFileConfig(cfg, fc, changed); err != nil {
			return err
		}
	} else if cfgPath != "" {
		return fmt.Errorf("config file %s not found", cfgPath)
	}

	return cliconfig.ApplyEnvConfig(cfg, changed)
}

func run(ctx context.Context, cfg cliconfig.Config) error {
	logger := cliconfig.NewLogger(cfg.LogLevel)
	logger.Info().Interface("config", cfg.Masked()).Msg("configuration")
	adapter := log.NewZerologAdapterWithLogger(logger)

	libCfg, err := cfg.Pipeline()
	if err != nil {
		return err
	}

	source, err := newSource(cfg, adapter)
	if err != nil {
		return fmt.Errorf("create source: %w", err)
	}

	p, err := frameship.New(libCfg,
		frameship.WithLogger(adapter),
		frameship.WithSource(source),
		frameship.WithUploader(newUploader(cfg, adapter)),
		frameship.WithEncoderConfig(cfg.Encoder()),
	)
	if err != nil {
		closeSource(source)
		return fmt.Errorf("create frameship: %w", err)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	if cfg.RunFor > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.RunFor)
		defer cancel()
	}

	var srv *http.Server
	if cfg.MetricsAddr != "" {
		srv = startMetricsServer(cfg.MetricsAddr, logger)
	}

	runErr := p.Run(ctx)
	if errors.Is(runErr, frameship.ErrShutdownTimeout) {
		logger.Warn().Dur("timeout", libCfg.ShutdownTimeout).Msg("in-flight work did not finish before shutdown timeout")
	}

	stats := p.Stats()
	logger.Info().
		Uint64("frames_captured", stats.FramesCaptured).
		Uint64("frames_evicted", stats.FramesEvicted).
		Uint64("batches_encoded", stats.BatchesEncoded).
		Uint64("uploads_succeeded", stats.UploadsSucceeded).
		Uint64("upload_failures", stats.UploadFailures).
		Msg("stopped")

	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn().Err(err).Msg("metrics server shutdown error")
		}
	}

	if runErr != nil {
		return fmt.Errorf("run frameship: %w", runErr)
	}
	return nil
}

func startMetricsServer(addr string, logger zerolog.Logger) *http.Server {
	metrics.InitializeMetrics()

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", addr).Msg("serving metrics")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("metrics server")
		}
	}()
	return srv
}

func newStatusCmd(cfg *cliconfig.Config, cfgPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Print the counters saved by the last run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := loadConfig(cmd, *cfgPath, cfg); err != nil {
				return err
			}
			return printStatus(cmd.Context(), cmd.OutOrStdout(), statusDir(*cfg))
		},
	}
	cmd.Flags().StringVar(&cfg.StatusDir, "status-dir", cfg.StatusDir, "directory holding status.json (defaults to temp-dir)")
	cmd.Flags().StringVar(&cfg.TempDir, "temp-dir", cfg.TempDir, "temp directory of the pipeline")
	return cmd
}

func statusDir(cfg cliconfig.Config) string {
	if cfg.StatusDir != "" {
		return cfg.StatusDir
	}
	return cfg.TempDir
}

func printStatus(ctx context.Context, w io.Writer, dir string) error {
	repo := fs.NewStatusFile(dir)
	if !cliconfig.FileExists(repo.Path()) {
		return fmt.Errorf("no status file at %s", repo.Path())
	}
	stats, err := repo.Load(ctx)
	if err != nil {
		return fmt.Errorf("load status: %w", err)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(stats)
}
