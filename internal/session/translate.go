package session

import (
	"context"
	"log"
	"sync"

	"github.com/lingualife/backend/internal/model/language"
)

const fallbackTranslation = "Translation failed"

// ToggleTranslations flips the translations-visible flag. Turning it on
// runs one batch pass: every message still lacking a translation gets one
// concurrent request, and the call returns only after all of them settled.
// Turning it off is a pure visibility flip; cached translations survive.
// A second toggle-on never re-requests a message that already carries a
// translation. At most one pass runs at a time; a caller hitting an
// in-flight pass gets ErrTranslationBusy and the current visibility.
func (c *Controller) ToggleTranslations(ctx context.Context) (bool, error) {
	c.mu.Lock()
	if c.translating {
		visible := c.session.ShowTranslations
		c.mu.Unlock()
		return visible, ErrTranslationBusy
	}

	c.session.ShowTranslations = !c.session.ShowTranslations
	visible := c.session.ShowTranslations
	if !visible {
		c.mu.Unlock()
		c.emit(Event{Type: EventTranslations, SessionID: c.session.ID})
		return false, nil
	}

	c.translating = true
	epoch := c.epoch
	canonical := language.CanonicalCode(c.session.LanguageCode)

	type job struct {
		id   string
		text string
	}
	var jobs []job
	for i := range c.messages {
		if c.messages[i].Translation != "" {
			continue
		}
		if canonical == language.BaseCode {
			// Already in the base language; reuse the original text
			// without a network call.
			c.messages[i].Translation = c.messages[i].Text
			continue
		}
		c.messages[i].IsTranslating = true
		jobs = append(jobs, job{id: c.messages[i].ID, text: c.messages[i].Text})
	}
	c.mu.Unlock()

	if len(jobs) == 0 {
		c.finishPass(epoch)
		return true, nil
	}

	log.Printf("[translate] starting batch pass for %d messages", len(jobs))

	results := make([]string, len(jobs))
	var wg sync.WaitGroup
	for i, j := range jobs {
		wg.Add(1)
		go func(i int, text string) {
			defer wg.Done()
			if c.translator == nil {
				results[i] = "Translation error: no translator configured"
				return
			}
			translated, err := c.translator.Translate(ctx, text)
			if err != nil {
				// One failing message never cancels the others.
				results[i] = "Translation error: " + err.Error()
				return
			}
			results[i] = translated
		}(i, j.text)
	}
	wg.Wait()

	c.mu.Lock()
	if c.epoch == epoch {
		for i, j := range jobs {
			c.setTranslationLocked(j.id, results[i])
		}
	}
	c.mu.Unlock()

	c.finishPass(epoch)
	log.Printf("[translate] batch pass complete")
	return true, nil
}

// finishPass clears the in-flight flag and force-settles any message still
// marked translating, so no message stays stuck in the transient state.
func (c *Controller) finishPass(epoch uint64) {
	c.mu.Lock()
	if c.epoch == epoch {
		for i := range c.messages {
			if c.messages[i].IsTranslating {
				c.messages[i].IsTranslating = false
				if c.messages[i].Translation == "" {
					c.messages[i].Translation = fallbackTranslation
				}
			}
		}
	}
	c.translating = false
	c.mu.Unlock()
	c.emit(Event{Type: EventTranslations, SessionID: c.session.ID})
}

func (c *Controller) setTranslationLocked(id, translation string) {
	for i := range c.messages {
		if c.messages[i].ID != id {
			continue
		}
		c.messages[i].IsTranslating = false
		// Translations transition once; never overwrite a non-empty one.
		if c.messages[i].Translation == "" {
			c.messages[i].Translation = translation
		}
		return
	}
}

// TranslationsVisible reports the current toggle state.
func (c *Controller) TranslationsVisible() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session.ShowTranslations
}

// Translating reports whether a batch pass is in flight, so the toggle
// control can be disabled while one runs.
func (c *Controller) Translating() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.translating
}
