package styleexpr

import (
	"github.com/paulmach/osm"
)

// Feature is the thing an expression is evaluated against
type Feature interface {
	Attribute(name string) (interface{}, bool)
}

type MapFeature map[string]interface{}

func (f MapFeature) Attribute(name string) (interface{}, bool) {
	val, ok := f[name]
	return val, ok
}

type osmFeature struct {
	tags osm.Tags
}

// NewOSMFeature exposes the tags of an OSM node, way or relation as feature attributes
func NewOSMFeature(tags osm.Tags) Feature {
	return &osmFeature{tags}
}

func (f *osmFeature) Attribute(name string) (interface{}, bool) {
	for _, tag := range f.tags {
		if tag.Key == name {
			return tag.Value, true
		}
	}
	return nil, false
}
