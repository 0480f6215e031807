// Package language holds the fixed language tables the conversation views
// are built around: the supported set, the per-language welcome lines, the
// canonical translation codes and the free-form partner model selection.
package language

import "fmt"

// BaseCode is the user's native language; sessions in it skip both the
// welcome message and the translation pass.
const BaseCode = "en"

// Language is one selectable conversation language.
type Language struct {
	Code string `json:"code"`
	Name string `json:"name"`
	Flag string `json:"flag"`
}

// Supported lists the languages offered by the free-form view.
func Supported() []Language {
	return []Language{
		{Code: "ja", Name: "Japanese", Flag: "🇯🇵"},
		{Code: "zh", Name: "Chinese", Flag: "🇨🇳"},
		{Code: "my", Name: "Malay", Flag: "🇲🇾"},
	}
}

// FindByCode returns the supported language with the given code.
func FindByCode(code string) (Language, bool) {
	for _, l := range Supported() {
		if l.Code == code {
			return l, true
		}
	}
	return Language{}, false
}

const genericWelcome = "Hello! I'm your conversation partner. This mode is ready for external API integration."

var welcomeMessages = map[string]string{
	"ja": "こんにちは！会話パートナーです。このモードは外部API統合の準備ができています。",
	"zh": "你好！我是你的对话伙伴。此模式已准备好进行外部API集成。",
	"my": "Hai! Saya ialah rakan perbualan anda. Mod ini telah bersedia untuk integrasi API luaran.",
}

// WelcomeMessage returns the partner's opening line for a language code.
// Codes without a configured line fall back to the generic English welcome.
func WelcomeMessage(code string) string {
	if msg, ok := welcomeMessages[code]; ok {
		return msg
	}
	return genericWelcome
}

// CanonicalCode maps an application language code onto the translation
// collaborator's code set. Unknown codes collapse to the base language.
func CanonicalCode(code string) string {
	switch code {
	case "es", "fr", "de", "it", "pt", "ja", "ko", "zh", "ru", "ar", "en":
		return code
	}
	return BaseCode
}

// ModelForCode selects the free-form partner model for a language code.
func ModelForCode(code string) string {
	switch code {
	case "zh":
		return "chinese_waiter"
	case "ja":
		return "japanese_barista"
	case "my":
		return "malay_teacher"
	}
	return "english_librarian"
}

// ValidateWelcomeTable checks at startup that every supported language has
// a configured welcome line, so a new table entry cannot be forgotten.
func ValidateWelcomeTable() error {
	for _, l := range Supported() {
		if _, ok := welcomeMessages[l.Code]; !ok {
			return fmt.Errorf("no welcome message configured for language %q", l.Code)
		}
	}
	return nil
}
