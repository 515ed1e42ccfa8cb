package normalizer

import (
	"fmt"

	"doimeta/internal/models"
	"doimeta/pkg/literal"
)

const contactPerson = "ContactPerson"

// parseCreators parses the author literal. One malformed entry fails the
// whole list.
func parseCreators(raw any) ([]models.Creator, error) {
	entries, err := literal.Mappings(raw)
	if err != nil {
		return nil, fmt.Errorf("author: %w", err)
	}

	creators := make([]models.Creator, 0, len(entries))

	for i, entry := range entries {
		r := entryReader{entry: entry}

		c := models.Creator{
			Name:     r.text("author_name"),
			NameType: r.text("author_name_type"),
			Affiliation: []models.Affiliation{{
				Name:                        r.text("author_affiliation"),
				AffiliationIdentifier:       r.text("author_affiliation_identifier"),
				AffiliationIdentifierScheme: r.text("author_affiliation_identifier_type"),
			}},
			NameIdentifiers: []models.NameIdentifier{{
				NameIdentifier:       r.text("author_identifier"),
				NameIdentifierScheme: r.text("author_identifier_type"),
			}},
		}

		if r.err != nil {
			return nil, fmt.Errorf("author %d: %w", i, r.err)
		}

		creators = append(creators, c)
	}

	return creators, nil
}

func parseContributors(raw any) ([]models.Contributor, error) {
	creators, err := parseCreators(raw)
	if err != nil {
		return nil, err
	}

	contributors := make([]models.Contributor, len(creators))
	for i, c := range creators {
		contributors[i] = models.Contributor{ContributorType: contactPerson, Creator: c}
	}

	return contributors, nil
}

func parseRelatedIdentifiers(raw any) ([]models.RelatedIdentifier, error) {
	entries, err := literal.Mappings(raw)
	if err != nil {
		return nil, fmt.Errorf("related_resource: %w", err)
	}

	related := make([]models.RelatedIdentifier, 0, len(entries))

	for i, entry := range entries {
		r := entryReader{entry: entry}

		ri := models.RelatedIdentifier{
			RelatedIdentifier:     r.text("related_resource_url"),
			RelatedIdentifierType: "URL",
			RelationType:          r.text("relation_type"),
		}

		if r.err != nil {
			return nil, fmt.Errorf("related_resource %d: %w", i, r.err)
		}

		related = append(related, ri)
	}

	return related, nil
}

func parseFundingReferences(raw any) ([]models.FundingReference, error) {
	entries, err := literal.Mappings(raw)
	if err != nil {
		return nil, fmt.Errorf("funder: %w", err)
	}

	funders := make([]models.FundingReference, 0, len(entries))

	for i, entry := range entries {
		r := entryReader{entry: entry}

		f := models.FundingReference{
			FunderName:           r.text("funder_name"),
			FunderIdentifier:     r.text("funder_identifier"),
			FunderIdentifierType: normalizeFunderIdentifierType(r.text("funder_identifier_type")),
		}

		if r.err != nil {
			return nil, fmt.Errorf("funder %d: %w", i, r.err)
		}

		funders = append(funders, f)
	}

	return funders, nil
}

// normalizeFunderIdentifierType maps identifier types the registry does not
// accept onto "Other".
func normalizeFunderIdentifierType(t string) string {
	switch t {
	case "", "Wikidata":
		return "Other"
	}

	return t
}
