package models

import "strings"

const (
	MinSlideCount    = 1
	MaxSlideCount    = 10
	MinWordsPerPoint = 10
	MaxWordsPerPoint = 30
)

// Language is one of the fixed set of output languages.
type Language struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Code string `json:"code"`
}

var languages = []Language{
	{ID: "english", Name: "English", Code: "en-US"},
	{ID: "spanish", Name: "Español", Code: "es-ES"},
	{ID: "french", Name: "Français", Code: "fr-FR"},
	{ID: "german", Name: "Deutsch", Code: "de-DE"},
	{ID: "italian", Name: "Italiano", Code: "it-IT"},
	{ID: "portuguese", Name: "Português", Code: "pt-PT"},
}

// Languages returns the supported languages in display order.
func Languages() []Language {
	out := make([]Language, len(languages))
	copy(out, languages)
	return out
}

// LanguageByID finds a language by id ("french"), code ("fr-FR") or short code ("fr").
func LanguageByID(s string) (Language, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, l := range languages {
		if l.ID == s || strings.ToLower(l.Code) == s || l.Short() == s {
			return l, true
		}
	}
	return Language{}, false
}

// Short returns the two letter language subtag ("fr" for "fr-FR").
func (l Language) Short() string {
	code, _, _ := strings.Cut(strings.ToLower(l.Code), "-")
	return code
}

// DefaultLanguage is French.
func DefaultLanguage() Language {
	return languages[2]
}

// ProjectSettings holds the user's generation preferences.
type ProjectSettings struct {
	Language          Language `json:"language"`
	SlideCount        int      `json:"slideCount"`
	WordsPerPoint     int      `json:"wordsPerPoint"`
	BackgroundMusic   bool     `json:"backgroundMusic"`
	Voiceover         bool     `json:"voiceover"`
	AutomaticDuration bool     `json:"automaticDuration"`
}

// DefaultSettings returns the settings of a fresh project.
func DefaultSettings() ProjectSettings {
	return ProjectSettings{
		Language:          DefaultLanguage(),
		SlideCount:        1,
		WordsPerPoint:     20,
		BackgroundMusic:   true,
		Voiceover:         false,
		AutomaticDuration: true,
	}
}

// ClampSlideCount forces n into [MinSlideCount, MaxSlideCount].
func ClampSlideCount(n int) int {
	return clamp(n, MinSlideCount, MaxSlideCount)
}

// ClampWordsPerPoint forces n into [MinWordsPerPoint, MaxWordsPerPoint].
func ClampWordsPerPoint(n int) int {
	return clamp(n, MinWordsPerPoint, MaxWordsPerPoint)
}

func clamp(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}
