package integration

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"sync/atomic"
	"testing"
	"time"

	"doimeta/internal/config"
	"doimeta/internal/extensions"
	"doimeta/internal/license"
	"doimeta/internal/locale"
	"doimeta/internal/models"
	"doimeta/internal/normalizer"
	"doimeta/internal/validator"
)

func loadRecord(t *testing.T) models.Record {
	t.Helper()

	content, err := os.ReadFile(filepath.Join("..", "fixtures", "package_show.json"))
	if err != nil {
		t.Fatalf("Failed to read fixture: %v", err)
	}

	var envelope struct {
		Result models.Record `json:"result"`
	}

	if err := json.Unmarshal(content, &envelope); err != nil {
		t.Fatalf("Failed to decode fixture: %v", err)
	}

	return envelope.Result
}

func newProcessor(t *testing.T, cfg *config.Config, reg license.Registry) *normalizer.Processor {
	t.Helper()

	lang, err := locale.NewStaticResolver(cfg.Site.Locale)
	if err != nil {
		t.Fatalf("NewStaticResolver failed: %v", err)
	}

	sv, err := validator.NewSchemaValidator()
	if err != nil {
		t.Fatalf("NewSchemaValidator failed: %v", err)
	}

	return normalizer.NewProcessor(normalizer.Collaborators{
		Settings:   cfg,
		Licenses:   reg,
		Locale:     locale.NewContextResolver(lang),
		Extensions: extensions.FromConfig(cfg.Extensions),
		Now:        func() time.Time { return time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC) },
	}, sv)
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.DOI.Publisher = "Natural History Museum"
	cfg.DOI.Prefix = "10.5072"
	cfg.Site.URL = "https://data.example.org/"

	return cfg
}

// asJSON renders v the way it goes over the wire.
func asJSON(t *testing.T, v any) map[string]any {
	t.Helper()

	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	return out
}

func TestPipeline_PackageShowRecord(t *testing.T) {
	rec := loadRecord(t)
	processor := newProcessor(t, testConfig(), license.Builtin())

	doc, err := processor.Process(context.Background(), rec)
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}

	doc.SetIdentifier(extensions.DOIFor(rec, "10.5072"))
	got := asJSON(t, doc)

	checks := map[string]any{
		"publisher":       "Natural History Museum",
		"publicationYear": "2021",
		"schemaVersion":   normalizer.SchemaVersion,
		"version":         "1.2",
		"language":        "en",
		"sizes":           []any{"6 kb"},
		"formats":         []any{"CSV", "GeoJSON"},
		"types":           map[string]any{"resourceType": "dataset", "resourceTypeGeneral": "Dataset"},
		"identifier":      map[string]any{"identifier": "10.5072/coleoptera-survey-2020", "identifierType": "DOI"},
		"subjects": []any{
			map[string]any{"subject": "beetles"},
			map[string]any{"subject": "coleoptera"},
			map[string]any{"subject": "pitfall"},
		},
		"dates": []any{
			map[string]any{"dateType": "Created", "date": "2020-11-02T09:15:00Z"},
			map[string]any{"dateType": "Updated", "date": "2021-01-15T16:40:12Z"},
			map[string]any{"dateType": "Issued", "date": "2021-05-10"},
		},
		"alternateIdentifiers": []any{map[string]any{
			"alternateIdentifier":     "https://data.example.org/dataset/6f1c2e3a-8b6d-4c1e-9a57-1d2f3c4b5a60",
			"alternateIdentifierType": "URL",
		}},
		"rightsList": []any{map[string]any{
			"rightsUri":              "https://spdx.org/licenses/CC-BY-4.0.html",
			"rightsIdentifier":       "CC-BY-4.0",
			"rightsIdentifierScheme": "SPDX",
		}},
		"geoLocations": []any{map[string]any{"geoLocationBox": map[string]any{
			"westBoundLongitude": "0.27",
			"eastBoundLongitude": "0.31",
			"southBoundLatitude": "52.3",
			"northBoundLatitude": "52.32",
		}}},
	}

	for key, want := range checks {
		if !reflect.DeepEqual(got[key], want) {
			t.Errorf("%s: expected %v, got %v", key, want, got[key])
		}
	}

	creators, ok := got["creators"].([]any)
	if !ok || len(creators) != 2 {
		t.Fatalf("Expected 2 creators, got %v", got["creators"])
	}

	if name := creators[0].(map[string]any)["name"]; name != "Lovelace, Ada" {
		t.Errorf("Expected first creator 'Lovelace, Ada', got '%v'", name)
	}

	contributors, ok := got["contributors"].([]any)
	if !ok || len(contributors) != len(creators) {
		t.Fatalf("Expected one contributor per creator, got %v", got["contributors"])
	}

	if role := contributors[1].(map[string]any)["contributorType"]; role != "ContactPerson" {
		t.Errorf("Expected contributorType 'ContactPerson', got '%v'", role)
	}

	funders, ok := got["fundingReferences"].([]any)
	if !ok || len(funders) != 1 {
		t.Fatalf("Expected 1 funding reference, got %v", got["fundingReferences"])
	}

	if typ := funders[0].(map[string]any)["funderIdentifierType"]; typ != "ROR" {
		t.Errorf("Expected funderIdentifierType 'ROR', got '%v'", typ)
	}
}

func TestPipeline_RemoteLicenseRegistry(t *testing.T) {
	list, err := os.ReadFile(filepath.Join("..", "fixtures", "licenses.json"))
	if err != nil {
		t.Fatalf("Failed to read fixture: %v", err)
	}

	var hits atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(list)
	}))
	defer srv.Close()

	cfg := testConfig()
	cfg.Licenses.URL = srv.URL

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}

	reg := license.NewRemoteRegistry(srv.URL, license.NewFetcher(cfg.Licenses.Retry), cfg.Licenses.CacheTTL(), nil)
	processor := newProcessor(t, cfg, reg)

	rec := loadRecord(t)
	rec["license_id"] = "odc-by"

	for i := 0; i < 3; i++ {
		doc, err := processor.Process(context.Background(), rec)
		if err != nil {
			t.Fatalf("Process failed: %v", err)
		}

		want := []any{map[string]any{
			"rightsUri":        "https://opendatacommons.org/licenses/by/",
			"rightsIdentifier": "odc-by",
		}}

		if got := asJSON(t, doc)["rightsList"]; !reflect.DeepEqual(got, want) {
			t.Fatalf("Expected rightsList %v, got %v", want, got)
		}
	}

	if n := hits.Load(); n != 1 {
		t.Errorf("Expected the license list to be fetched once, got %d fetches", n)
	}
}

func TestPipeline_MissingRequiredMetadata(t *testing.T) {
	rec := loadRecord(t)
	delete(rec, "author")
	delete(rec, "title")

	processor := newProcessor(t, testConfig(), license.Builtin())

	_, err := processor.Process(context.Background(), rec)
	if err == nil {
		t.Fatal("Expected Process to fail")
	}

	var merr *normalizer.MetadataError
	if !errors.As(err, &merr) {
		t.Fatalf("Expected *normalizer.MetadataError, got %T: %v", err, err)
	}

	want := []models.Field{models.FieldCreators, models.FieldTitles}
	if got := merr.Keys(); !reflect.DeepEqual(got, want) {
		t.Errorf("Expected failed keys %v, got %v", want, got)
	}
}

func TestPipeline_DefaultsExtensionRepairsRecord(t *testing.T) {
	rec := loadRecord(t)
	delete(rec, "title")
	delete(rec, "type")

	cfg := testConfig()
	cfg.Extensions.Defaults = config.DefaultsConfig{ResourceType: "dataset", TitleFromName: true}

	doc, err := newProcessor(t, cfg, license.Builtin()).Process(context.Background(), rec)
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}

	got := asJSON(t, doc)

	wantTitles := []any{map[string]any{"title": "coleoptera-survey-2020"}}
	if !reflect.DeepEqual(got["titles"], wantTitles) {
		t.Errorf("Expected titles %v, got %v", wantTitles, got["titles"])
	}

	if rt := got["types"].(map[string]any)["resourceType"]; rt != "dataset" {
		t.Errorf("Expected resourceType 'dataset', got '%v'", rt)
	}
}
