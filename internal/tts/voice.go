package tts

import (
	"fmt"
	"strings"
)

// Voice is the abstract narration voice selector. Each provider maps it to its
// own speaker identifier.
type Voice string

const (
	VoiceMale   Voice = "male"
	VoiceFemale Voice = "female"
)

// ParseVoice normalizes a user-supplied voice name.
func ParseVoice(value string) (Voice, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "male":
		return VoiceMale, nil
	case "female", "":
		return VoiceFemale, nil
	default:
		return "", fmt.Errorf("unknown voice %q (expected male or female)", value)
	}
}
