// Package mapboxglstyle converts Mapbox GL / MapLibre style documents into styles. Each layer becomes a feature
// type style; zoom-dependent property values are split into one rule per zoom interval.
package mapboxglstyle

import (
	"encoding/json"
	"errors"
	"io"

	"github.com/jamesrr39/goutil/errorsx"
)

var (
	ErrInvalidStyle = errors.New("MapboxGLInvalidStyleError")
	ErrUnsupported  = errors.New("MapboxGLUnsupportedError")
)

const supportedVersion = 8

type Style struct {
	Version    int                    `json:"version"`
	Name       string                 `json:"name"`
	Metadata   map[string]interface{} `json:"metadata"`
	Center     []float64              `json:"center"`
	Zoom       *float64               `json:"zoom"`
	Sources    Sources                `json:"sources"`
	Sprite     string                 `json:"sprite"`
	Glyphs     string                 `json:"glyphs"`
	Light      *Light                 `json:"light"`
	Transition *Transition            `json:"transition"`
	Layers     []*Layer               `json:"layers"`
}

type Light struct {
	Anchor    string    `json:"anchor"`
	Color     string    `json:"color"`
	Intensity float64   `json:"intensity"`
	Position  []float64 `json:"position"`
}

type Source struct {
	Type string `json:"type"`
	URL  string `json:"url"`
}

type Sources map[string]Source

type Transition struct {
	Delay    int `json:"delay"`    // milliseconds
	Duration int `json:"duration"` // milliseconds
}

// Parse reads a style document
func Parse(reader io.Reader) (*Style, errorsx.Error) {
	style := new(Style)
	err := json.NewDecoder(reader).Decode(style)
	if err != nil {
		return nil, errorsx.Wrap(ErrInvalidStyle, "reason", err.Error())
	}

	if style.Version != supportedVersion {
		return nil, errorsx.Wrap(ErrInvalidStyle, "reason", "unsupported version", "version", style.Version)
	}

	layerIDs := make(map[string]bool)
	for _, layer := range style.Layers {
		err := layer.Validate()
		if err != nil {
			return nil, err
		}
		if layerIDs[layer.ID] {
			return nil, errorsx.Wrap(ErrInvalidStyle, "reason", "duplicate layer id", "layer", layer.ID)
		}
		layerIDs[layer.ID] = true
	}

	return style, nil
}
