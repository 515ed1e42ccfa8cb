// Package license resolves catalogue license identifiers to their canonical
// URL and identifier.
package license

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrUnknownFormat is returned for license files that are neither JSON nor YAML.
var ErrUnknownFormat = errors.New("license file must be .json, .yaml or .yml")

// License is a single registry entry.
type License struct {
	ID    string `json:"id" yaml:"id"`
	Title string `json:"title" yaml:"title"`
	URL   string `json:"url" yaml:"url"`
}

// Registry looks licenses up by identifier. Lookup reports found=false for
// unknown identifiers; an error means the registry itself could not be read.
type Registry interface {
	Lookup(ctx context.Context, id string) (License, bool, error)
	List(ctx context.Context) ([]License, error)
}

// StaticRegistry is an immutable in-memory registry.
type StaticRegistry struct {
	byID map[string]License
}

// NewStaticRegistry builds a registry from licenses. Later entries win on
// duplicate identifiers.
func NewStaticRegistry(licenses ...License) *StaticRegistry {
	byID := make(map[string]License, len(licenses))
	for _, l := range licenses {
		if l.ID == "" {
			continue
		}

		byID[l.ID] = l
	}

	return &StaticRegistry{byID: byID}
}

// Builtin returns a registry with the catalogue's default license list.
func Builtin() *StaticRegistry {
	return NewStaticRegistry(DefaultLicenses()...)
}

// LoadFile reads a license list from a JSON or YAML file.
func LoadFile(path string) (*StaticRegistry, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".json" && ext != ".yaml" && ext != ".yml" {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read license file: %w", err)
	}

	var licenses []License

	if ext == ".json" {
		licenses, err = Decode(data)
	} else {
		err = yaml.Unmarshal(data, &licenses)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to parse license file %s: %w", path, err)
	}

	return NewStaticRegistry(licenses...), nil
}

// Decode parses a JSON license list. Both the list form
// ([{"id": ..., "url": ...}]) and the legacy object form keyed by id are accepted.
func Decode(data []byte) ([]License, error) {
	var list []License
	if err := json.Unmarshal(data, &list); err == nil {
		return list, nil
	}

	var keyed map[string]License
	if err := json.Unmarshal(data, &keyed); err != nil {
		return nil, fmt.Errorf("license list is neither a JSON array nor object: %w", err)
	}

	list = make([]License, 0, len(keyed))
	for id, l := range keyed {
		if l.ID == "" {
			l.ID = id
		}

		list = append(list, l)
	}

	sortByID(list)

	return list, nil
}

// Lookup implements Registry.
func (r *StaticRegistry) Lookup(_ context.Context, id string) (License, bool, error) {
	l, ok := r.byID[id]

	return l, ok, nil
}

// List implements Registry. Entries are sorted by identifier.
func (r *StaticRegistry) List(_ context.Context) ([]License, error) {
	list := make([]License, 0, len(r.byID))
	for _, l := range r.byID {
		list = append(list, l)
	}

	sortByID(list)

	return list, nil
}

// Len returns the number of licenses.
func (r *StaticRegistry) Len() int {
	return len(r.byID)
}

func sortByID(list []License) {
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
}

// DefaultLicenses is the license list a stock catalogue ships with.
func DefaultLicenses() []License {
	return []License{
		{ID: "notspecified", Title: "License not specified"},
		{ID: "odc-pddl", Title: "Open Data Commons Public Domain Dedication and License (PDDL)", URL: "http://www.opendefinition.org/licenses/odc-pddl"},
		{ID: "odc-odbl", Title: "Open Data Commons Open Database License (ODbL)", URL: "http://www.opendefinition.org/licenses/odc-odbl"},
		{ID: "odc-by", Title: "Open Data Commons Attribution License", URL: "http://www.opendefinition.org/licenses/odc-by"},
		{ID: "cc-zero", Title: "Creative Commons CCZero", URL: "http://www.opendefinition.org/licenses/cc-zero"},
		{ID: "cc-by", Title: "Creative Commons Attribution", URL: "http://www.opendefinition.org/licenses/cc-by"},
		{ID: "cc-by-sa", Title: "Creative Commons Attribution Share-Alike", URL: "http://www.opendefinition.org/licenses/cc-by-sa"},
		{ID: "gfdl", Title: "GNU Free Documentation License", URL: "http://www.opendefinition.org/licenses/gfdl"},
		{ID: "other-open", Title: "Other (Open)"},
		{ID: "other-pd", Title: "Other (Public Domain)"},
		{ID: "other-at", Title: "Other (Attribution)"},
		{ID: "uk-ogl", Title: "UK Open Government Licence (OGL)", URL: "http://reference.data.gov.uk/id/open-government-licence"},
		{ID: "cc-nc", Title: "Creative Commons Non-Commercial (Any)", URL: "http://creativecommons.org/licenses/by-nc/2.0/"},
		{ID: "other-nc", Title: "Other (Non-Commercial)"},
		{ID: "other-closed", Title: "Other (Not Open)"},
	}
}
