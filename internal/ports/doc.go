// Package ports defines the interfaces (ports) that connect the application
// layer to infrastructure adapters.
//
// Ports are the boundaries between the pipeline core and the outside world.
// They define what the pipeline needs from external systems without
// specifying how those needs are fulfilled.
//
// # Port Interfaces
//
//   - [FrameSource]: Produces raw frames (camera, capture subprocess, spool dir)
//   - [BatchEncoder]: Combines an ordered list of frames into one artifact
//   - [Uploader]: Delivers an artifact to the remote store
//   - [ArtifactStore]: Local persistence for frames and encoded artifacts
//   - [StatusRepository]: Persists the final pipeline snapshot
//   - [HTTPClient]: HTTP request abstraction for dependency injection
//
// # Usage
//
// The application layer (internal/app) depends only on these interfaces.
// Infrastructure adapters (internal/adapters) implement them with concrete
// implementations (filesystem, ffmpeg, HTTP, fsnotify).
package ports
