// Package domain contains the core entities and value objects for frameship.
//
// This package has no dependencies on infrastructure concerns (filesystem,
// subprocesses, HTTP, logging) and holds only the pipeline's vocabulary.
//
// # Entities
//
//   - [FrameHandle]: one persisted raw frame, consumed exactly once
//   - [ArtifactHandle]: one encoded batch output, uploaded at most once
//   - [Batch]: an ordered group of frame handles built per trigger
//   - [RetainedFile]: a consumed frame still on disk under retention
//   - [RetentionPolicy]: what happens to frame files after a batch
//   - [Stats]: pipeline counters snapshot
package domain
