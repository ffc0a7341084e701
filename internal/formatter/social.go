package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/postx/internal/models"
	"github.com/desertthunder/postx/internal/shared"
)

// PostSet is a batch of generated posts for one article.
type PostSet struct {
	ArticleTitle string              `json:"article_title,omitempty"`
	JobID        int                 `json:"job_id,omitempty"`
	GeneratedAt  time.Time           `json:"generated_at"`
	Posts        []models.SocialPost `json:"posts"`
}

// NewPostSet orders posts by platform display order.
func NewPostSet(title string, jobID int, posts map[models.Platform]models.SocialPost) PostSet {
	set := PostSet{ArticleTitle: title, JobID: jobID, GeneratedAt: time.Now()}
	state := models.ProjectState{SocialPosts: posts}
	for _, p := range state.SortedPlatforms() {
		post := posts[p]
		post.Platform = p
		set.Posts = append(set.Posts, post)
	}
	return set
}

// PostsToCSV writes one row per post with columns: Platform, Caption, Hashtags, CallToAction, Characters, OverLimit
func PostsToCSV(set PostSet) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Platform", "Caption", "Hashtags", "CallToAction", "Characters", "OverLimit"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, post := range set.Posts {
		record := []string{
			string(post.Platform),
			post.Caption,
			strings.Join(post.Hashtags, " "),
			post.CallToAction,
			strconv.Itoa(len([]rune(post.FullText()))),
			strconv.FormatBool(post.OverLimit()),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}
	return buf.Bytes(), nil
}

// PostsToMarkdown renders a section per platform with the caption, call to action and hashtags.
func PostsToMarkdown(set PostSet) ([]byte, error) {
	var buf bytes.Buffer

	title := set.ArticleTitle
	if title == "" {
		title = "Social posts"
	}
	buf.WriteString(fmt.Sprintf("# %s\n\n", title))
	if set.JobID > 0 {
		buf.WriteString(fmt.Sprintf("**Job**: %d\n", set.JobID))
	}
	buf.WriteString(fmt.Sprintf("**Posts**: %d\n\n", len(set.Posts)))

	for _, post := range set.Posts {
		info := post.Platform.Info()
		name := info.Name
		if name == "" {
			name = string(post.Platform)
		}
		buf.WriteString(fmt.Sprintf("## %s\n\n", name))
		buf.WriteString(post.Caption + "\n\n")
		if post.CallToAction != "" {
			buf.WriteString(fmt.Sprintf("> %s\n\n", post.CallToAction))
		}
		if len(post.Hashtags) > 0 {
			buf.WriteString(strings.Join(post.Hashtags, " ") + "\n\n")
		}
		n := len([]rune(post.FullText()))
		if info.MaxLength > 0 {
			buf.WriteString(fmt.Sprintf("_%d / %d characters_\n\n", n, info.MaxLength))
		}
	}
	return buf.Bytes(), nil
}

// PostsToText renders each post as the text that would be pasted into the platform.
func PostsToText(set PostSet) ([]byte, error) {
	var buf bytes.Buffer
	for i, post := range set.Posts {
		if i > 0 {
			buf.WriteString("\n----------------------------------------\n\n")
		}
		buf.WriteString(fmt.Sprintf("[%s]\n", post.Platform.Info().Name))
		buf.WriteString(post.FullText() + "\n")
	}
	return buf.Bytes(), nil
}

// ExportPosts renders set in format. PDF and YAML are not supported for posts.
func ExportPosts(set PostSet, format Format) ([]byte, error) {
	switch format {
	case FormatCSV:
		return PostsToCSV(set)
	case FormatMarkdown:
		return PostsToMarkdown(set)
	case FormatText:
		return PostsToText(set)
	case FormatJSON:
		return shared.MarshalJSON(set, true)
	}
	return nil, fmt.Errorf("%w: %s is not available for social posts", shared.ErrInvalidFlag, format)
}

// WritePostsExport exports set to path.
//
// Defaults to social_posts_{job}{ext} as the filename.
func WritePostsExport(set PostSet, format Format, path string) (string, error) {
	if path == "" {
		path = fmt.Sprintf("social_posts_%d%s", set.JobID, format.Ext())
	}
	data, err := ExportPosts(set, format)
	if err != nil {
		return "", err
	}
	if err := writeFile(path, data); err != nil {
		return "", err
	}
	return path, nil
}
