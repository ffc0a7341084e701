package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/postx/internal/models"
	"github.com/desertthunder/postx/internal/shared"
)

var (
	_ list.Item = bulletItem{}
	_ list.Item = slideItem{}
)

// bulletItem wraps [models.BulletPoint] to implement [list.Item].
type bulletItem struct {
	index int
	bp    models.BulletPoint
}

func (i bulletItem) FilterValue() string { return i.bp.Text }
func (i bulletItem) Title() string       { return fmt.Sprintf("%d. %s", i.index+1, i.bp.Text) }
func (i bulletItem) Description() string {
	var parts []string
	if len(i.bp.Keywords) > 0 {
		parts = append(parts, strings.Join(i.bp.Keywords, ", "))
	}
	if i.bp.ImagePath != "" {
		parts = append(parts, shared.LastSegment(i.bp.ImagePath))
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, " • ")
}

// slideItem wraps [models.SlideItem] to implement [list.Item].
type slideItem struct {
	index int
	slide models.SlideItem
}

func (i slideItem) FilterValue() string { return i.slide.Text }
func (i slideItem) Title() string {
	return fmt.Sprintf("%d. %s [%ds]", i.index+1, i.slide.Text, i.slide.Duration)
}
func (i slideItem) Description() string { return i.slide.Image }

func bulletItems(bps []models.BulletPoint) []list.Item {
	items := make([]list.Item, len(bps))
	for i, bp := range bps {
		items[i] = bulletItem{index: i, bp: bp}
	}
	return items
}

func slideItems(slides []models.SlideItem) []list.Item {
	items := make([]list.Item, len(slides))
	for i, s := range slides {
		items[i] = slideItem{index: i, slide: s}
	}
	return items
}

// newList returns a list without its own quit, filter and help handling; the shell owns those keys.
func newList(items []list.Item, title string) list.Model {
	l := list.New(items, list.NewDefaultDelegate(), 80, 14)
	l.Title = title
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.DisableQuitKeybindings()
	return l
}
