// Package filtergraph models the per-clip composition as a small typed graph
// (scale, pad, concat, subtitle burn, audio trim nodes joined by stream
// labels) and renders it to ffmpeg filter_complex syntax at the invocation
// boundary. Business logic never concatenates filter strings directly.
package filtergraph
