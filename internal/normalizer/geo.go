package normalizer

import (
	"fmt"

	"doimeta/internal/models"
	"doimeta/pkg/literal"
)

var geometryTypes = map[string]string{
	"point": "Point",
	"area":  "Polygon",
}

// parseGeoLocations reads the GeoJSON feature collection in location_data.
// Only features whose geometry matches location_choice are kept. An unknown
// choice leaves the field unset.
func parseGeoLocations(src models.Record) ([]models.GeoLocation, error) {
	choice, _ := src.String("location_choice")

	want, ok := geometryTypes[choice]
	if !ok {
		return nil, nil
	}

	features, err := featuresOf(src.Value("location_data"))
	if err != nil {
		return nil, err
	}

	locations := []models.GeoLocation{}

	for i, feature := range features {
		loc, ok, err := geoLocation(feature, want)
		if err != nil {
			return nil, fmt.Errorf("feature %d: %w", i, err)
		}

		if ok {
			locations = append(locations, loc)
		}
	}

	return locations, nil
}

func featuresOf(raw any) ([]any, error) {
	data := raw

	if s, ok := raw.(string); ok {
		parsed, err := literal.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("location_data: %w", err)
		}

		data = parsed
	}

	collection, ok := data.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("location_data: %w %T", ErrUnexpectedType, data)
	}

	features, err := listAt(collection, "features")
	if err != nil {
		return nil, fmt.Errorf("location_data: %w", err)
	}

	return features, nil
}

func geoLocation(feature any, want string) (models.GeoLocation, bool, error) {
	f, ok := feature.(map[string]any)
	if !ok {
		return models.GeoLocation{}, false, fmt.Errorf("%w %T", ErrUnexpectedType, feature)
	}

	geometry, ok := f["geometry"].(map[string]any)
	if !ok {
		return models.GeoLocation{}, false, fmt.Errorf("%w %q", ErrMissingKey, "geometry")
	}

	kind, ok := geometry["type"]
	if !ok {
		return models.GeoLocation{}, false, fmt.Errorf("%w %q", ErrMissingKey, "type")
	}

	if kind != want {
		return models.GeoLocation{}, false, nil
	}

	coords, err := listAt(geometry, "coordinates")
	if err != nil {
		return models.GeoLocation{}, false, err
	}

	if want == "Point" {
		p, err := point(coords)
		if err != nil {
			return models.GeoLocation{}, false, err
		}

		return models.GeoLocation{Point: p}, true, nil
	}

	b, err := box(coords)
	if err != nil {
		return models.GeoLocation{}, false, err
	}

	return models.GeoLocation{Box: b}, true, nil
}

func point(coords []any) (*models.GeoLocationPoint, error) {
	xy, err := position(coords, 2)
	if err != nil {
		return nil, err
	}

	return &models.GeoLocationPoint{PointLongitude: xy[0], PointLatitude: xy[1]}, nil
}

// box takes the bounds from the first ring of a polygon: the west and south
// edges from its first vertex, north from the second and east from the third.
func box(coords []any) (*models.GeoLocationBox, error) {
	if len(coords) == 0 {
		return nil, fmt.Errorf("polygon has no rings")
	}

	ring, ok := coords[0].([]any)
	if !ok || len(ring) < 3 {
		return nil, fmt.Errorf("polygon ring needs at least 3 vertices")
	}

	var vertices [3][]string

	for i := range vertices {
		v, ok := ring[i].([]any)
		if !ok {
			return nil, fmt.Errorf("vertex %d: %w %T", i, ErrUnexpectedType, ring[i])
		}

		xy, err := position(v, 2)
		if err != nil {
			return nil, fmt.Errorf("vertex %d: %w", i, err)
		}

		vertices[i] = xy
	}

	return &models.GeoLocationBox{
		WestBoundLongitude: vertices[0][0],
		EastBoundLongitude: vertices[2][0],
		SouthBoundLatitude: vertices[0][1],
		NorthBoundLatitude: vertices[1][1],
	}, nil
}

func position(coords []any, n int) ([]string, error) {
	if len(coords) < n {
		return nil, fmt.Errorf("position needs %d coordinates, got %d", n, len(coords))
	}

	out := make([]string, n)

	for i := 0; i < n; i++ {
		f, err := number(coords[i])
		if err != nil {
			return nil, err
		}

		if out[i], err = coordinate(f); err != nil {
			return nil, err
		}
	}

	return out, nil
}

func listAt(m map[string]any, key string) ([]any, error) {
	v, ok := m[key]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrMissingKey, key)
	}

	list, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("%s: %w %T", key, ErrUnexpectedType, v)
	}

	return list, nil
}
