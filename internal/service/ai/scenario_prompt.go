package ai

import (
	"fmt"
	"strings"

	"github.com/lingualife/backend/internal/model/scenario"
)

// Partner personas for the free-form models that have no scenario record.
var freeFormPersonas = map[string]string{
	"chinese_waiter":    "a friendly waiter in a Chinese restaurant, speaking Mandarin Chinese",
	"japanese_barista":  "a cheerful barista in a Japanese coffee shop, speaking Japanese",
	"malay_teacher":     "a patient school teacher in Malaysia, speaking Malay",
	"english_librarian": "a helpful librarian, speaking simple English",
}

// BuildSystemPrompt frames the model as a language-practice partner. A
// scenario record pins the setting; otherwise the model name selects a
// free-form persona.
func BuildSystemPrompt(scen *scenario.Scenario, modelName, languageHint string) string {
	var b strings.Builder

	if scen != nil {
		fmt.Fprintf(&b, "You are a conversation partner helping a learner practice %s.\n", scen.Language)
		fmt.Fprintf(&b, "Setting: %s. %s\n", scen.Title, scen.Description)
		fmt.Fprintf(&b, "Learner level: %s.\n", scen.Difficulty)
		fmt.Fprintf(&b, "Stay in the scene, reply only in %s, and keep replies short enough for a %s learner.",
			scen.Language, strings.ToLower(string(scen.Difficulty)))
		return b.String()
	}

	persona, ok := freeFormPersonas[modelName]
	if !ok {
		persona = freeFormPersonas["english_librarian"]
	}

	fmt.Fprintf(&b, "You are %s, having a casual conversation with a language learner.\n", persona)
	if languageHint != "" {
		fmt.Fprintf(&b, "The learner selected the language code %q.\n", languageHint)
	}
	b.WriteString("Keep each reply to two or three short sentences and gently correct the learner's mistakes.")
	return b.String()
}
