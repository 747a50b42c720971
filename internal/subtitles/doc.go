// Package subtitles segments narration text into timed cues and renders them
// as SRT for burn-in. Packing is greedy by whitespace-delimited words under a
// per-cue character cap; cue-count overflow is reduced by a single pairwise
// merge pass; timing is a uniform split of the fixed clip duration.
package subtitles
