package ui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/desertthunder/postx/internal/i18n"
)

// keyMap defines the [key.Binding] mapping for the TUI.
//
// Single letter bindings are ignored while a step is capturing text.
type keyMap struct {
	up         key.Binding
	down       key.Binding
	enter      key.Binding
	cancel     key.Binding
	next       key.Binding
	prev       key.Binding
	edit       key.Binding
	save       key.Binding
	regenerate key.Binding
	regenAll   key.Binding
	generate   key.Binding
	toggle     key.Binding
	copy       key.Binding
	download   key.Binding
	apply      key.Binding
	upload     key.Binding
	remove     key.Binding
	position   key.Binding
	original   key.Binding
	mode       key.Binding
	language   key.Binding
	more       key.Binding
	less       key.Binding
	theme      key.Binding
	newProject key.Binding
	help       key.Binding
	quit       key.Binding
}

func newKeyMap(tr *i18n.Translator) keyMap {
	t := func(id string) string { return tr.T(id, nil) }
	return keyMap{
		up:         key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:       key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		enter:      key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", t("key_select"))),
		cancel:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", t("key_cancel"))),
		next:       key.NewBinding(key.WithKeys("]", "ctrl+right"), key.WithHelp("]", t("key_next"))),
		prev:       key.NewBinding(key.WithKeys("[", "ctrl+left"), key.WithHelp("[", t("key_back"))),
		edit:       key.NewBinding(key.WithKeys("e"), key.WithHelp("e", t("key_edit"))),
		save:       key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", t("key_save"))),
		regenerate: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", t("key_regenerate"))),
		regenAll:   key.NewBinding(key.WithKeys("R"), key.WithHelp("R", t("key_regenerate")+" *")),
		generate:   key.NewBinding(key.WithKeys("g"), key.WithHelp("g", t("key_generate"))),
		toggle:     key.NewBinding(key.WithKeys(" ", "space"), key.WithHelp("space", t("key_toggle"))),
		copy:       key.NewBinding(key.WithKeys("c"), key.WithHelp("c", t("key_copy"))),
		download:   key.NewBinding(key.WithKeys("d"), key.WithHelp("d", t("key_download"))),
		apply:      key.NewBinding(key.WithKeys("a"), key.WithHelp("a", t("key_apply"))),
		upload:     key.NewBinding(key.WithKeys("u"), key.WithHelp("u", t("key_upload"))),
		remove:     key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "remove")),
		position:   key.NewBinding(key.WithKeys("p"), key.WithHelp("p", t("key_position"))),
		original:   key.NewBinding(key.WithKeys("o"), key.WithHelp("o", t("asset_original_size"))),
		mode:       key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", t("key_mode"))),
		language:   key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "language")),
		more:       key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+/-", "more/less")),
		less:       key.NewBinding(key.WithKeys("-", "_")),
		theme:      key.NewBinding(key.WithKeys("t"), key.WithHelp("t", t("key_theme"))),
		newProject: key.NewBinding(key.WithKeys("N"), key.WithHelp("N", t("key_new"))),
		help:       key.NewBinding(key.WithKeys("?"), key.WithHelp("?", t("key_help"))),
		quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", t("key_quit"))),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.next, k.prev, k.help, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.enter, k.cancel},
		{k.next, k.prev, k.theme, k.newProject},
		{k.help, k.quit},
	}
}
