package profile

import (
	"slices"
	"strings"
)

// Enrichment is metadata attached upstream of scoring. Nothing in the scoring
// pipeline reads it; it is carried for organizer-facing views only.
type Enrichment struct {
	InferredTags     []string `json:"inferred_tags"`
	SourceConfidence float64  `json:"source_confidence"`
	Sources          []string `json:"sources"`
}

var keywordEnrichment = map[string][]string{
	"custody":    {"institutional custody", "regulated operations", "asset security"},
	"defi":       {"institutional DeFi", "on-chain yield", "smart contract risk"},
	"cbdc":       {"public infrastructure", "monetary policy", "regulatory sandbox"},
	"compliance": {"KYC/AML", "governance controls", "auditability"},
	"tokenized":  {"tokenized securities", "RWA rails", "settlement modernization"},
}

var enrichmentSources = []string{
	"registration_form",
	"company_website_mock",
	"market_data_mock",
}

// Enrich returns a copy of p with keyword-inferred tags attached.
func Enrich(p Profile) Profile {
	blob := strings.ToLower(strings.Join([]string{
		p.Mandate,
		p.Product,
		p.Thesis,
		strings.Join(p.Focus, " "),
		strings.Join(p.LookingFor, " "),
	}, " "))

	var tags []string
	for keyword, inferred := range keywordEnrichment {
		if strings.Contains(blob, keyword) {
			tags = append(tags, inferred...)
		}
	}
	slices.Sort(tags)
	tags = slices.Compact(tags)

	confidence := 0.52
	if len(tags) > 0 {
		confidence = 0.68
	}
	if tags == nil {
		tags = []string{}
	}

	out := p
	out.Enrichment = &Enrichment{
		InferredTags:     tags,
		SourceConfidence: confidence,
		Sources:          slices.Clone(enrichmentSources),
	}
	return out
}

// EnrichAll applies Enrich to every profile, preserving order.
func EnrichAll(profiles []Profile) []Profile {
	out := make([]Profile, len(profiles))
	for i, p := range profiles {
		out[i] = Enrich(p)
	}
	return out
}
