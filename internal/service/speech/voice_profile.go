package speech

import "strings"

// VoiceProfile pairs an application language code with the synthesis
// collaborator's voice id.
type VoiceProfile struct {
	LanguageCode string
	VoiceID      string
}

var defaultVoiceProfiles = map[string]string{
	"zh": "bhJUNIXWQQ94l8eI2VUf",
	"ja": "Mv8AjrYZCBkdsmDHNwcB",
	"my": "NpVSXJvYSdIbjOaMbShj",
}

const genericVoiceID = "NpVSXJvYSdIbjOaMbShj"

// ResolveVoice maps a language code onto a voice id, falling back to the
// generic profile for unmapped codes.
func ResolveVoice(languageCode string) string {
	if voice, ok := defaultVoiceProfiles[strings.ToLower(strings.TrimSpace(languageCode))]; ok {
		return voice
	}
	return genericVoiceID
}

// resolveVoiceCandidates orders the voices to try for one request: an
// explicit voice first, then the configured default, then the language
// profile. Duplicates are dropped, first occurrence wins.
func resolveVoiceCandidates(requested, configured, languageCode string) []string {
	candidates := make([]string, 0, 3)
	seen := make(map[string]struct{}, 3)

	add := func(voice string) {
		voice = strings.TrimSpace(voice)
		if voice == "" {
			return
		}
		key := strings.ToLower(voice)
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		candidates = append(candidates, voice)
	}

	add(requested)
	add(configured)
	add(ResolveVoice(languageCode))
	return candidates
}
