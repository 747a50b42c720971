package tts

import "os"

// ProviderNone tags the placeholder artifact written when every provider in
// the cascade failed.
const ProviderNone = "none"

// Artifact is a synthesized narration audio file. The caller owns its deletion.
type Artifact struct {
	Path     string
	Provider string
}

// Usable reports whether the artifact carries real narration. A placeholder
// (tagged none, or an empty file on disk) must route callers to the silent
// assembly path instead of being encoded as narration.
func (a Artifact) Usable() bool {
	if a.Provider == ProviderNone || a.Path == "" {
		return false
	}
	info, err := os.Stat(a.Path)
	if err != nil {
		return false
	}
	return info.Size() > 0
}
