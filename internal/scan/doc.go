// Package scan describes a raw device capture and the output workspace
// derived from it.
//
// A capture directory <dir>/<base> holds <base>.mp4 (color), <base>.depth.zlib,
// the optional <base>.confidence.zlib, the <base>.jsonl camera trajectory and
// <base>.json metadata. Only the color stream is required for the directory to
// count as a scan.
package scan
