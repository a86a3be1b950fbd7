// Package frameship provides an embeddable frame capture and delivery
// pipeline.
//
// A Pipeline pulls frames from a [FrameSource], persists each one to a
// temp directory, groups them into batches, encodes every batch into a
// single artifact (H.264 via ffmpeg by default) and hands artifacts to a
// pool of workers that upload them through an [Uploader]. The number of
// unconsumed frames is bounded; under overload the oldest are discarded.
//
// # Basic Usage
//
//	cfg := frameship.DefaultConfig()
//	cfg.TempDir = "/var/lib/frameship/tmp"
//
//	p, err := frameship.New(cfg,
//	    frameship.WithSource(source),
//	    frameship.WithUploader(uploader),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	if err := p.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
//	// ... run until shutdown signal ...
//
//	if err := p.Stop(); err != nil {
//	    log.Printf("shutdown error: %v", err)
//	}
//
// # Retention
//
// After a batch is encoded its input frames are handled per
// [Config.RetentionPolicy]: kept ([KeepAll]), deleted ([DeleteOnSuccess],
// applied whether or not the encode succeeded), or kept until their total
// size exceeds MaxMemoryMB and then evicted oldest first
// ([DeleteWhenExceed]).
//
// # Lifecycle States
//
// A Pipeline moves through Idle -> Running -> Stopping -> Stopped exactly
// once. Stop waits for the current encode and uploads to finish (bounded by
// ShutdownTimeout), deletes every frame and artifact still queued, and
// writes status.json into StatusDir.
//
// # Event Handling
//
// Implement [EventHandler] (embedding [BaseEventHandler] for defaults) and
// pass it via [WithEventHandler]. Events are called synchronously from the
// pipeline goroutines.
package frameship
