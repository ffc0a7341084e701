package formatter

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/desertthunder/postx/internal/models"
	"github.com/desertthunder/postx/internal/shared"
	"github.com/jung-kurt/gofpdf"
	"gopkg.in/yaml.v3"
)

// Deck is the exportable view of a project's slides.
type Deck struct {
	Title    string      `json:"title" yaml:"title"`
	Summary  string      `json:"summary,omitempty" yaml:"summary,omitempty"`
	Source   string      `json:"source,omitempty" yaml:"source,omitempty"`
	Language string      `json:"language" yaml:"language"`
	Music    string      `json:"music,omitempty" yaml:"music,omitempty"`
	Slides   []DeckSlide `json:"slides" yaml:"slides"`
}

// DeckSlide is one slide of a [Deck].
type DeckSlide struct {
	Index    int      `json:"index" yaml:"index"`
	Text     string   `json:"text" yaml:"text"`
	Image    string   `json:"image" yaml:"image"`
	Duration int      `json:"duration" yaml:"duration"`
	Keywords []string `json:"keywords,omitempty" yaml:"keywords,omitempty"`
}

// TotalDuration is the sum of slide durations in seconds.
func (d Deck) TotalDuration() int {
	total := 0
	for _, s := range d.Slides {
		total += s.Duration
	}
	return total
}

// DeckFromState builds a deck from the current slides, or from the bullet points when no
// slides were generated yet.
func DeckFromState(s models.ProjectState) Deck {
	d := Deck{
		Title:    s.ArticleData.Title,
		Summary:  s.ArticleData.Summary,
		Source:   s.ArticleData.URL,
		Language: s.Settings.Language.Name,
	}
	if d.Title == "" {
		d.Title = "Untitled project"
	}
	if s.SelectedMusic != nil {
		d.Music = s.SelectedMusic.Name
	}

	if len(s.Slides) > 0 {
		for i, sl := range s.Slides {
			bp, _ := s.BulletPoint(sl.BulletPointID)
			d.Slides = append(d.Slides, DeckSlide{Index: i + 1, Text: sl.Text, Image: sl.Image, Duration: sl.Duration, Keywords: bp.Keywords})
		}
		return d
	}
	for i, bp := range s.BulletPoints {
		d.Slides = append(d.Slides, DeckSlide{Index: i + 1, Text: bp.Text, Duration: models.DefaultSlideDuration, Keywords: bp.Keywords})
	}
	return d
}

// DeckToMarkdown renders a heading per slide. imageNames maps slide index to a local file that
// replaces the remote image URL.
func DeckToMarkdown(d Deck, imageNames map[int]string) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# %s\n\n", d.Title))
	if d.Summary != "" {
		buf.WriteString(d.Summary + "\n\n")
	}
	if d.Source != "" {
		buf.WriteString(fmt.Sprintf("**Source**: %s\n", d.Source))
	}
	buf.WriteString(fmt.Sprintf("**Language**: %s\n", d.Language))
	if d.Music != "" {
		buf.WriteString(fmt.Sprintf("**Music**: %s\n", d.Music))
	}
	buf.WriteString(fmt.Sprintf("**Slides**: %d (%s)\n\n", len(d.Slides), formatSeconds(d.TotalDuration())))

	for _, s := range d.Slides {
		buf.WriteString(fmt.Sprintf("## Slide %d [%ds]\n\n", s.Index, s.Duration))
		image := s.Image
		if name, ok := imageNames[s.Index]; ok {
			image = name
		}
		if image != "" {
			buf.WriteString(fmt.Sprintf("![Slide %d](%s)\n\n", s.Index, image))
		}
		buf.WriteString(s.Text + "\n\n")
		if len(s.Keywords) > 0 {
			buf.WriteString(fmt.Sprintf("_Keywords: %s_\n\n", strings.Join(s.Keywords, ", ")))
		}
	}
	return buf.Bytes(), nil
}

// DeckToYAML renders the deck as a YAML document.
func DeckToYAML(d Deck) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(d); err != nil {
		return nil, fmt.Errorf("failed to encode YAML: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode YAML: %w", err)
	}
	return buf.Bytes(), nil
}

// DeckToPDF renders one landscape page per slide. Images are fetched with fetch when it is
// non-nil; a slide whose image cannot be fetched is rendered as text only.
func DeckToPDF(ctx context.Context, d Deck, fetch ImageFetcher) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(d.Title, true)
	pdf.SetAuthor("postx", false)
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(false, 15)

	pageW, pageH := pdf.GetPageSize()
	contentW := pageW - 30

	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 28)
	pdf.SetY(pageH / 3)
	pdf.MultiCell(contentW, 12, tr(d.Title), "", "C", false)
	if d.Summary != "" {
		pdf.Ln(6)
		pdf.SetFont("Helvetica", "", 13)
		pdf.MultiCell(contentW, 7, tr(d.Summary), "", "C", false)
	}
	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 10)
	pdf.CellFormat(contentW, 6, tr(fmt.Sprintf("%d slides, %s", len(d.Slides), formatSeconds(d.TotalDuration()))), "", 1, "C", false, 0, "")

	for _, s := range d.Slides {
		pdf.AddPage()
		imageH := 0.0

		if fetch != nil && s.Image != "" {
			if data, err := fetch(ctx, s.Image); err == nil {
				if kind := imageType(data); kind != "" {
					name := fmt.Sprintf("slide-%d", s.Index)
					opts := gofpdf.ImageOptions{ImageType: kind}
					info := pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(data))
					if info != nil && pdf.Ok() {
						imageH = pageH * 0.6
						w := imageH * info.Width() / info.Height()
						if w > contentW {
							w = contentW
							imageH = w * info.Height() / info.Width()
						}
						pdf.ImageOptions(name, (pageW-w)/2, 15, w, imageH, false, opts, 0, "")
					}
				}
			}
			if !pdf.Ok() {
				return nil, fmt.Errorf("failed to embed slide %d image: %w", s.Index, pdf.Error())
			}
		}

		pdf.SetY(20 + imageH)
		pdf.SetFont("Helvetica", "", 16)
		pdf.MultiCell(contentW, 8, tr(s.Text), "", "C", false)

		pdf.SetY(pageH - 12)
		pdf.SetFont("Helvetica", "I", 9)
		pdf.CellFormat(contentW, 5, fmt.Sprintf("%d / %d  -  %ds", s.Index, len(d.Slides), s.Duration), "", 0, "R", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render PDF: %w", err)
	}
	return buf.Bytes(), nil
}

// DeckExportResult contains information about files created by WriteDeckExport
type DeckExportResult struct {
	File   string
	Images []string
}

// WriteDeckExport exports d to path in format.
//
// Markdown exports download slide images next to the file (slide_{n}.jpg) when fetch is set;
// failures keep the remote URL. Defaults to deck{ext} as the filename.
func WriteDeckExport(ctx context.Context, d Deck, format Format, path string, fetch ImageFetcher) (*DeckExportResult, error) {
	if path == "" {
		path = "deck" + format.Ext()
	}
	result := &DeckExportResult{File: path}

	var (
		data []byte
		err  error
	)
	switch format {
	case FormatMarkdown:
		names := map[int]string{}
		if fetch != nil {
			dir := filepath.Dir(path)
			for _, s := range d.Slides {
				if s.Image == "" {
					continue
				}
				img, ferr := fetch(ctx, s.Image)
				if ferr != nil {
					fmt.Fprintf(os.Stderr, "Warning: failed to download slide %d image: %v\n", s.Index, ferr)
					continue
				}
				name := fmt.Sprintf("slide_%d.jpg", s.Index)
				if werr := writeFile(filepath.Join(dir, name), img); werr != nil {
					fmt.Fprintf(os.Stderr, "Warning: failed to save slide %d image: %v\n", s.Index, werr)
					continue
				}
				names[s.Index] = name
				result.Images = append(result.Images, filepath.Join(dir, name))
			}
		}
		data, err = DeckToMarkdown(d, names)
	case FormatYAML:
		data, err = DeckToYAML(d)
	case FormatPDF:
		data, err = DeckToPDF(ctx, d, fetch)
	case FormatJSON:
		data, err = shared.MarshalJSON(d, true)
	default:
		return nil, fmt.Errorf("%w: %s is not available for slide decks", shared.ErrInvalidFlag, format)
	}
	if err != nil {
		return nil, err
	}
	if err := writeFile(path, data); err != nil {
		return nil, err
	}
	return result, nil
}

func formatSeconds(total int) string {
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}
