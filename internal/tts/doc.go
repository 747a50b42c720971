// Package tts synthesizes narration audio through an ordered provider
// cascade. Providers are tried strictly in priority order; the first success
// short-circuits the rest, and exhausting the list yields a tagged zero-byte
// placeholder instead of an error so the caller can decide to degrade to a
// silent clip.
package tts
