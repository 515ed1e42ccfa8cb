package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"doimeta/internal/config"
	"doimeta/internal/extensions"
	"doimeta/internal/license"
	"doimeta/internal/locale"
	"doimeta/internal/logger"
	"doimeta/internal/models"
	"doimeta/internal/normalizer"
	"doimeta/internal/validator"
)

var errNoRecords = errors.New("input holds no dataset records")

// Settings that may be overridden by flag or DOIMETA_* environment variable.
var overrides = []struct {
	key   string
	flag  string
	usage string
}{
	{"doi.publisher", "publisher", "publisher recorded on every DOI"},
	{"doi.prefix", "prefix", "DOI prefix used when a record has no doi"},
	{"site.url", "site-url", "public base URL of the catalogue"},
	{"site.locale", "locale", "language tag recorded in the metadata"},
	{"licenses.file", "licenses-file", "JSON or YAML license list"},
	{"licenses.url", "licenses-url", "URL of a JSON license list"},
	{"logging.level", "log-level", "debug, info, warn or error"},
	{"logging.format", "log-format", "text or json"},
}

type app struct {
	v       *viper.Viper
	cfgFile string
	cfg     *config.Config
	log     *logger.Logger
	runID   string
}

func newRootCmd(version string) *cobra.Command {
	a := &app{v: viper.New()}

	root := &cobra.Command{
		Use:   "doimeta",
		Short: "Build DataCite DOI metadata from catalogue dataset records",
		Long: `Build DataCite kernel-4 registration metadata from CKAN dataset records.

Records are read as JSON from the given file, or stdin when none is given.
Either a bare record, a list of records or a package_show API response is
accepted.

Settings come from the config file, then DOIMETA_* environment variables
(e.g. DOIMETA_DOI_PUBLISHER), then flags.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
	}

	a.v.SetEnvPrefix("DOIMETA")
	a.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	flags := root.PersistentFlags()
	flags.StringVarP(&a.cfgFile, "config", "c", "", "config file (YAML)")

	for _, o := range overrides {
		flags.String(o.flag, "", o.usage)
		_ = a.v.BindPFlag(o.key, flags.Lookup(o.flag))
		_ = a.v.BindEnv(o.key)
	}

	flags.Bool("validate", false, "validate documents against the DataCite schema")
	_ = a.v.BindPFlag("doi.validate_schema", flags.Lookup("validate"))
	_ = a.v.BindEnv("doi.validate_schema")

	root.AddCommand(newBuildCmd(a), newExtractCmd(a), newLicensesCmd(a))

	return root
}

func (a *app) init(cmd *cobra.Command) error {
	cfg := config.Default()

	if a.cfgFile != "" {
		loaded, err := config.LoadConfig(a.cfgFile)
		if err != nil {
			return err
		}

		cfg = loaded
	}

	a.applyOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	a.cfg = cfg
	a.runID = uuid.NewString()
	a.log = logger.New(logger.Options{
		Output: cmd.ErrOrStderr(),
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	}).With("run_id", a.runID)

	return nil
}

func (a *app) applyOverrides(cfg *config.Config) {
	targets := map[string]*string{
		"doi.publisher":  &cfg.DOI.Publisher,
		"doi.prefix":     &cfg.DOI.Prefix,
		"site.url":       &cfg.Site.URL,
		"site.locale":    &cfg.Site.Locale,
		"licenses.file":  &cfg.Licenses.File,
		"licenses.url":   &cfg.Licenses.URL,
		"logging.level":  &cfg.Logging.Level,
		"logging.format": &cfg.Logging.Format,
	}

	for key, dst := range targets {
		if a.v.IsSet(key) {
			*dst = a.v.GetString(key)
		}
	}

	if a.v.IsSet("doi.validate_schema") {
		cfg.DOI.ValidateSchema = a.v.GetBool("doi.validate_schema")
	}
}

func (a *app) registry() (license.Registry, error) {
	switch lc := a.cfg.Licenses; {
	case lc.File != "":
		return license.LoadFile(lc.File)
	case lc.URL != "":
		return license.NewRemoteRegistry(lc.URL, license.NewFetcher(lc.Retry), lc.CacheTTL(), a.log), nil
	default:
		return license.Builtin(), nil
	}
}

func (a *app) processor() (*normalizer.Processor, error) {
	reg, err := a.registry()
	if err != nil {
		return nil, err
	}

	lang, err := locale.NewStaticResolver(a.cfg.Site.Locale)
	if err != nil {
		return nil, fmt.Errorf("site.locale: %w", err)
	}

	var docValidator normalizer.DocumentValidator

	if a.cfg.DOI.ValidateSchema {
		sv, err := validator.NewSchemaValidator()
		if err != nil {
			return nil, err
		}

		docValidator = sv
	}

	return normalizer.NewProcessor(normalizer.Collaborators{
		Settings:   a.cfg,
		Licenses:   reg,
		Locale:     locale.NewContextResolver(lang),
		Extensions: extensions.FromConfig(a.cfg.Extensions),
		Logger:     a.log,
	}, docValidator), nil
}

// readRecords decodes the records held in path, or in stdin when path is
// empty or "-".
func readRecords(path string, stdin io.Reader) ([]models.Record, error) {
	var (
		data []byte
		err  error
	)

	if path == "" || path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}

	if err != nil {
		return nil, fmt.Errorf("error reading input: %w", err)
	}

	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("error parsing input: %w", err)
	}

	return recordsFrom(raw)
}

func recordsFrom(raw any) ([]models.Record, error) {
	switch t := raw.(type) {
	case map[string]any:
		// package_show response envelope
		if result, ok := t["result"].(map[string]any); ok {
			if _, ok := t["success"]; ok {
				return []models.Record{result}, nil
			}
		}

		return []models.Record{t}, nil
	case []any:
		records := make([]models.Record, 0, len(t))

		for i, item := range t {
			m, ok := item.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("record %d is not a JSON object", i)
			}

			records = append(records, m)
		}

		if len(records) == 0 {
			return nil, errNoRecords
		}

		return records, nil
	}

	return nil, fmt.Errorf("%w: got %T", errNoRecords, raw)
}

// writeJSON writes v as indented JSON to path, or to w when path is empty.
func writeJSON(w io.Writer, path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("error marshaling JSON: %w", err)
	}

	data = append(data, '\n')

	if path == "" {
		_, err = w.Write(data)
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("error creating directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("error writing file: %w", err)
	}

	return nil
}
