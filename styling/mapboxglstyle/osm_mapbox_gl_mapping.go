package mapboxglstyle

import (
	"github.com/paulmach/osm"
)

// anyValue matches a tag key with any value
const anyValue = "*"

// osmTagsForClass gives the OpenStreetMap tags an OpenMapTiles class stands for. ok is false for classes with no
// known equivalent.
// https://openmaptiles.org/schema/
// https://docs.mapbox.com/vector-tiles/reference/mapbox-streets-v8/
func osmTagsForClass(className, sourceLayer string) (tags osm.Tags, ok bool) {
	switch sourceLayer {
	case "landuse", "landcover":
		// according to the docs, "landuse" should be used. However some styles use "landcover"
		switch className {
		case "agriculture", "farmland":
			return osm.Tags{
				{Key: "landuse", Value: "farmland"},
				{Key: "landuse", Value: "meadow"},
				{Key: "landuse", Value: "orchard"},
				{Key: "landuse", Value: "agriculture"}, // deprecated by OSM, still may be usages of it though.
			}, true
		case "grass":
			return osm.Tags{
				{Key: "landuse", Value: "grass"},
				{Key: "natural", Value: "grassland"},
			}, true
		case "wood":
			return osm.Tags{
				{Key: "natural", Value: "wood"},
				{Key: "landuse", Value: "forest"},
				{Key: "landcover", Value: "trees"},
			}, true
		case "sand":
			return osm.Tags{
				{Key: "natural", Value: "sand"},
			}, true
		case "wetland":
			return osm.Tags{
				{Key: "natural", Value: "wetland"},
			}, true
		case "ice":
			return osm.Tags{
				{Key: "natural", Value: "glacier"},
			}, true
		case "residential", "suburb", "neighbourhood":
			return osm.Tags{
				{Key: "landuse", Value: "residential"},
				{Key: "place", Value: className},
			}, true
		case "national_park":
			return osm.Tags{
				{Key: "boundary", Value: "national_park"},
			}, true
		}
	case "transportation", "transportation_name":
		switch className {
		case "pier":
			return osm.Tags{
				{Key: "man_made", Value: "pier"},
			}, true
		case "path":
			return osm.Tags{
				{Key: "highway", Value: "path"},
				{Key: "highway", Value: "footway"},
				{Key: "highway", Value: "cycleway"},
				{Key: "highway", Value: "bridleway"},
				{Key: "highway", Value: "steps"},
			}, true
		case "track":
			return osm.Tags{
				{Key: "highway", Value: "track"},
				{Key: "leisure", Value: "track"},
				{Key: "cycleway", Value: "track"},
			}, true
		case "minor", "minor_road":
			return osm.Tags{
				{Key: "highway", Value: "unclassified"},
				{Key: "highway", Value: "residential"},
				{Key: "highway", Value: "living_street"},
			}, true
		case "aeroway":
			return osm.Tags{
				{Key: "aeroway", Value: anyValue},
			}, true
		case "trunk", "primary", "service", "secondary", "tertiary", "motorway":
			return osm.Tags{
				{Key: "highway", Value: className},
				{Key: "highway", Value: className + "_link"},
			}, true
		case "rail":
			return osm.Tags{
				{Key: "railway", Value: "rail"},
			}, true
		case "transit":
			return osm.Tags{
				{Key: "railway", Value: anyValue},
				{Key: "landuse", Value: "railway"},
			}, true
		}
	case "water", "waterway":
		switch className {
		case "river", "stream", "canal", "ditch", "drain":
			return osm.Tags{
				{Key: "waterway", Value: className},
			}, true
		case "lake", "pond", "reservoir":
			return osm.Tags{
				{Key: "water", Value: className},
				{Key: "landuse", Value: "reservoir"},
			}, true
		case "ocean":
			return osm.Tags{
				{Key: "natural", Value: "coastline"},
			}, true
		}
	case "aeroway", "airport_label", "housenum_label", "place", "building":
		// OpenStreetMap replication
		return osm.Tags{
			{Key: sourceLayer, Value: className},
		}, true
	}
	return nil, false
}

func osmTagsForSubclass(subclassName string) (osm.Tags, bool) {
	switch subclassName {
	case "ice_shelf":
		return osm.Tags{
			{Key: "glacier:type", Value: "shelf"},
		}, true
	case "glacier":
		return osm.Tags{
			{Key: "natural", Value: "glacier"},
		}, true
	}
	return nil, false
}

// sourceLayerKeys are the OSM tag keys of which at least one must be present for a feature to be in a source layer
func sourceLayerKeys(sourceLayer string) []string {
	switch sourceLayer {
	case "":
		return nil
	case "transportation", "transportation_name":
		return []string{"highway", "railway"}
	case "landcover", "landuse":
		return []string{"landcover", "landuse", "natural"}
	case "water":
		return []string{"natural", "water", "waterway"}
	default:
		return []string{sourceLayer}
	}
}
