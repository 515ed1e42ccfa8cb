package normalizer

import (
	"context"
	"fmt"

	"doimeta/internal/models"
)

// Datasets published under this id are described by its SPDX entry rather
// than the registry's.
const ccBy4International = "cc-by-4.0-international"

var ccBy4 = models.Rights{
	RightsURI:              "https://spdx.org/licenses/CC-BY-4.0.html",
	RightsIdentifier:       "CC-BY-4.0",
	RightsIdentifierScheme: "SPDX",
}

func licenseID(src models.Record) (string, error) {
	v := src.Value("license_id")
	if v == nil {
		v = src.Value("license")
	}

	id, err := scalarString(v)
	if err != nil {
		return "", fmt.Errorf("license_id: %w", err)
	}

	return id, nil
}

// rights resolves the record's licence. A known id is described by its URL;
// an id the registry does not know yields nothing. Without an id the raw
// value is kept as free text.
func (e *Extractor) rights(ctx context.Context, src models.Record) ([]models.Rights, error) {
	id, err := licenseID(src)
	if err != nil {
		return nil, err
	}

	switch {
	case id == ccBy4International:
		return []models.Rights{ccBy4}, nil
	case id != "":
		if e.licenses == nil {
			return nil, errNoRegistry
		}

		l, found, err := e.licenses.Lookup(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("license %q: %w", id, err)
		}

		if !found {
			return []models.Rights{}, nil
		}

		return []models.Rights{{RightsURI: l.URL, RightsIdentifier: l.ID}}, nil
	default:
		return []models.Rights{{Rights: models.StringPtr(id)}}, nil
	}
}
