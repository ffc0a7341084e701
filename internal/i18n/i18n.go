// Package i18n translates display strings for the TUI and CLI.
//
// Messages live in embedded TOML files under locales/, one per language (active.{lang}.toml).
// Lookups fall back per key to English, then to the key itself, so a partially translated
// locale is always usable.
package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/desertthunder/postx/internal/models"
	goi18n "github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed locales/*.toml
var locales embed.FS

// Translator resolves message ids for a current language. It is safe for concurrent use.
type Translator struct {
	bundle *goi18n.Bundle

	mu        sync.RWMutex
	tag       language.Tag
	localizer *goi18n.Localizer
}

// New loads every embedded locale and selects lang. lang may be a language id ("french"),
// a BCP 47 tag ("fr-FR") or a short code ("fr"); anything else selects English.
func New(lang string) (*Translator, error) {
	bundle := goi18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	files, err := fs.Glob(locales, "locales/*.toml")
	if err != nil {
		return nil, err
	}
	for _, f := range files {
		if _, err := bundle.LoadMessageFileFS(locales, f); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", path.Base(f), err)
		}
	}

	t := &Translator{bundle: bundle}
	t.SetLanguage(lang)
	return t, nil
}

// ParseTag maps a language id, tag or short code onto a [language.Tag].
func ParseTag(lang string) language.Tag {
	lang = strings.TrimSpace(lang)
	if l, ok := models.LanguageByID(lang); ok {
		lang = l.Code
	}
	tag, err := language.Parse(lang)
	if err != nil {
		return language.English
	}
	return tag
}

// SetLanguage switches the current language.
func (t *Translator) SetLanguage(lang string) {
	tag := ParseTag(lang)

	t.mu.Lock()
	defer t.mu.Unlock()
	t.tag = tag
	t.localizer = goi18n.NewLocalizer(t.bundle, tag.String())
}

// Language is the base language of the current tag ("fr").
func (t *Translator) Language() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	base, _ := t.tag.Base()
	return base.String()
}

// Supported lists the languages with a message file.
func (t *Translator) Supported() []language.Tag {
	return t.bundle.LanguageTags()
}

// T translates id, filling {{.Name}} placeholders from data.
func (t *Translator) T(id string, data map[string]any) string {
	return t.translate(&goi18n.LocalizeConfig{MessageID: id, TemplateData: data})
}

// N translates a plural message selected by count; data.Count is set to count.
func (t *Translator) N(id string, count int, data map[string]any) string {
	td := map[string]any{"Count": count}
	for k, v := range data {
		td[k] = v
	}
	return t.translate(&goi18n.LocalizeConfig{MessageID: id, PluralCount: count, TemplateData: td})
}

func (t *Translator) translate(cfg *goi18n.LocalizeConfig) string {
	t.mu.RLock()
	l := t.localizer
	t.mu.RUnlock()

	s, err := l.Localize(cfg)
	if err != nil && s == "" {
		return cfg.MessageID
	}
	return s
}

var (
	std     *Translator
	stdOnce sync.Once
)

// Default is the process-wide translator, English until [SetLanguage] is called.
func Default() *Translator {
	stdOnce.Do(func() {
		t, err := New("en")
		if err != nil {
			panic(fmt.Sprintf("i18n: embedded locales are invalid: %v", err))
		}
		std = t
	})
	return std
}

// SetLanguage switches the process-wide language.
func SetLanguage(lang string) { Default().SetLanguage(lang) }

// T translates id with the process-wide translator.
func T(id string, data map[string]any) string { return Default().T(id, data) }

// N translates a plural message with the process-wide translator.
func N(id string, count int, data map[string]any) string { return Default().N(id, count, data) }
