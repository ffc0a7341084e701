package store

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"

	"github.com/desertthunder/postx/internal/models"
	"github.com/desertthunder/postx/internal/shared"
)

// StorageKey names the persisted project blob.
const StorageKey = "article-to-video-storage"

const schemaVersion = 1

//go:embed schema.json
var schemaJSON string

var (
	schemaOnce sync.Once
	schema     *gojsonschema.Schema
	schemaErr  error
)

func loadSchema() (*gojsonschema.Schema, error) {
	schemaOnce.Do(func() {
		schema, schemaErr = gojsonschema.NewSchema(gojsonschema.NewStringLoader(schemaJSON))
	})
	return schema, schemaErr
}

type envelope struct {
	Version int                 `json:"version"`
	State   models.ProjectState `json:"state"`
}

// Encode serializes the persistent part of s. Social fields are never written.
func Encode(s models.ProjectState) ([]byte, error) {
	return json.Marshal(envelope{Version: schemaVersion, State: s})
}

// Decode validates data against the embedded schema and returns the project it holds.
func Decode(data []byte) (models.ProjectState, error) {
	sch, err := loadSchema()
	if err != nil {
		return models.ProjectState{}, fmt.Errorf("load schema: %w", err)
	}

	result, err := sch.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return models.ProjectState{}, fmt.Errorf("%w: %v", shared.ErrInvalidState, err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return models.ProjectState{}, fmt.Errorf("%w: %s", shared.ErrInvalidState, strings.Join(msgs, "; "))
	}

	env := envelope{State: models.NewProjectState()}
	if err := json.Unmarshal(data, &env); err != nil {
		return models.ProjectState{}, fmt.Errorf("%w: %v", shared.ErrInvalidState, err)
	}

	s := env.State
	s.CurrentStep = models.ClampStep(int(s.CurrentStep))
	s.Settings.SlideCount = models.ClampSlideCount(s.Settings.SlideCount)
	s.Settings.WordsPerPoint = models.ClampWordsPerPoint(s.Settings.WordsPerPoint)
	if s.BulletPoints == nil {
		s.BulletPoints = []models.BulletPoint{}
	}
	if s.Slides == nil {
		s.Slides = []models.SlideItem{}
	}
	return s, nil
}
