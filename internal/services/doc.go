// Package services holds shared helpers for external integrations: sentinel
// error markers and context-preserving wrapping used by the TTS provider
// clients and the ffmpeg invocation layer. Provider subpackages (elevenlabs,
// googletts, yandex) each wrap one HTTP speech API.
package services
