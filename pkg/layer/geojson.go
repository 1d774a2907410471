package layer

import (
	"encoding/json"
	"os"
	"sort"

	orbwkt "github.com/paulmach/orb/encoding/wkt"
	"github.com/paulmach/orb/geojson"
	"github.com/pkg/errors"

	"layer2kml/pkg/types"
)

// RENDERER_MEMBER is the FeatureCollection foreign member that carries
// the layer symbology.
const RENDERER_MEMBER = "renderer"

type GeoJSONReader struct {
	name string
}

func NewGeoJSONReader(fn string) *GeoJSONReader {
	return &GeoJSONReader{name: fn}
}

func (g *GeoJSONReader) Read() (*types.Layer, error) {
	data, err := os.ReadFile(g.name)
	if err != nil {
		return nil, errors.Wrap(err, "geojson")
	}
	return ParseGeoJSON(layerName(g.name), data)
}

// ParseGeoJSON reads a FeatureCollection. Fields are the union of the
// feature property names, sorted; geometries are carried as WKT.
func ParseGeoJSON(name string, data []byte) (*types.Layer, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, errors.Wrap(err, "geojson")
	}
	l := &types.Layer{Name: name, Transparency: 0xff}

	keys := make(map[string]bool)
	for _, f := range fc.Features {
		for k := range f.Properties {
			keys[k] = true
		}
	}
	var names []string
	for k := range keys {
		names = append(names, k)
	}
	sort.Strings(names)
	index := make(map[string]int, len(names))
	for j, n := range names {
		l.Fields = append(l.Fields, types.Field{Index: j, Name: n})
		index[n] = j
	}

	for j, f := range fc.Features {
		ft := types.Feature{ID: featureID(f.ID, j), Attributes: make(map[int]string)}
		if f.Geometry != nil {
			ft.Geometry = orbwkt.MarshalString(f.Geometry)
		}
		for k, v := range f.Properties {
			ft.Attributes[index[k]] = valueString(v)
		}
		l.Features = append(l.Features, ft)
	}

	if v, ok := fc.ExtraMembers[RENDERER_MEMBER]; ok {
		var rs rendererSpec
		b, err := json.Marshal(v)
		if err == nil {
			err = json.Unmarshal(b, &rs)
		}
		if err != nil {
			return nil, errors.Wrap(err, "geojson renderer")
		}
		if l.Renderer, err = rs.renderer(l); err != nil {
			return nil, err
		}
	}
	return l, nil
}

// featureID uses a numeric GeoJSON id when present, else the position.
func featureID(id interface{}, j int) int64 {
	switch t := id.(type) {
	case float64:
		return int64(t)
	case int64:
		return t
	case int:
		return int64(t)
	}
	return int64(j)
}
