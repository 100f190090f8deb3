// Package ffmpeg wraps the two ffmpeg-suite tools the pipeline uses: ffmpeg
// to sample the color stream into numbered PNG frames, and ffprobe to
// describe a stream before processing.
package ffmpeg
