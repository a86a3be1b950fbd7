// Package ffmpeg drives ffmpeg subprocesses for the pipeline.
//
// [Encoder] concatenates persisted frames into one H.264 elementary stream
// with the concat demuxer. [CaptureSource] reads an MJPEG stream from a
// long-running capture process and splits it into individual JPEG frames.
package ffmpeg
