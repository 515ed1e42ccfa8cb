package normalizer

import (
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"

	"doimeta/internal/models"
)

// Timestamps are stored without a zone by the catalogue; those parse as UTC.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999-0700",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	time.DateOnly,
}

var lifecycleDates = []struct {
	dateType string
	key      string
}{
	{"Created", "metadata_created"},
	{"Updated", "metadata_modified"},
	{"Issued", "doi_date_published"},
}

// parseDates returns every date that could be derived along with the joined
// failures of the rest. Issued is only considered when its key is present.
func parseDates(src models.Record) ([]models.Date, error) {
	var merr *multierror.Error

	dates := []models.Date{}

	for _, d := range lifecycleDates {
		if d.dateType == "Issued" && !src.Has(d.key) {
			continue
		}

		t, ok, err := parseDate(src.Value(d.key))
		if err != nil {
			merr = multierror.Append(merr, fmt.Errorf("%s: %w", d.key, err))
			continue
		}

		if ok {
			dates = append(dates, models.Date{DateType: d.dateType, Date: t})
		}
	}

	return dates, merr.ErrorOrNil()
}

// parseDate reports false for a value that is not set.
func parseDate(v any) (time.Time, bool, error) {
	switch t := v.(type) {
	case nil:
		return time.Time{}, false, nil
	case time.Time:
		return t, true, nil
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return time.Time{}, false, nil
		}

		for _, layout := range dateLayouts {
			if parsed, err := time.Parse(layout, s); err == nil {
				return parsed, true, nil
			}
		}

		return time.Time{}, false, fmt.Errorf("unrecognised date %q", t)
	}

	return time.Time{}, false, fmt.Errorf("%w %T", ErrUnexpectedType, v)
}
