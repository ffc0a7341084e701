package models

// MusicItem is a background track selected for the video.
type MusicItem struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Src      string `json:"src"`
	Duration int    `json:"duration"`
	Artist   string `json:"artist,omitempty"`
}

// VoiceOption is a voiceover voice.
type VoiceOption struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Gender   string `json:"gender"`
	Language string `json:"language"`
	Sample   string `json:"sample,omitempty"`
}

// CustomizationSettings records local paths of uploaded branding assets.
type CustomizationSettings struct {
	Logo  string `json:"logo,omitempty"`
	Outro string `json:"outro,omitempty"`
	Frame string `json:"frame,omitempty"`
}
