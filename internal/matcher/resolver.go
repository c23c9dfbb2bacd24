package matcher

import (
	"fmt"
	"strings"

	"github.com/tomomini0815/ainance-v2-sub004/pkg/models"
)

// Resolver picks the best known store identity for raw OCR text.
// It holds only read-only state and is safe for concurrent use.
type Resolver struct {
	variations *VariationDictionary
	options    Options
}

// NewResolver creates a resolver over the given variation dictionary
func NewResolver(variations *VariationDictionary, options Options) (*Resolver, error) {
	if variations == nil {
		return nil, fmt.Errorf("variation dictionary is required")
	}
	if err := options.Validate(); err != nil {
		return nil, fmt.Errorf("invalid matcher options: %w", err)
	}
	return &Resolver{variations: variations, options: options}, nil
}

type knownStore struct {
	name       string
	normalized string
}

// Resolve runs the exact, variation and fuzzy tiers over every candidate
// line and returns the single best match. No match is a MatchTypeNone result,
// never an error. Among equal confidences the first evaluated candidate wins.
func (r *Resolver) Resolve(text string, knownStores []string) models.MatchResult {
	known := normalizeKnown(knownStores)
	if len(known) == 0 {
		return models.NoMatch()
	}

	best := models.NoMatch()
	for _, candidate := range ExtractCandidates(text, r.options) {
		readings := Readings(candidate.Text)
		if len(readings) == 0 {
			continue
		}
		normalized := readings[0]

		// Tier 1: exact
		for _, store := range known {
			if store.normalized == normalized {
				return models.MatchResult{
					StoreName:  store.name,
					Confidence: 100,
					MatchType:  models.MatchTypeExact,
					Candidate:  candidate.Text,
				}
			}
		}

		// Tier 2: variation
		if match, ok := r.matchVariation(candidate.Text, readings); ok && match.Confidence > best.Confidence {
			best = match
		}

		// Tier 3: fuzzy
		if best.Confidence >= r.options.FuzzyFloor {
			continue
		}
		for _, store := range known {
			score := Similarity(normalized, store.normalized)
			if score >= r.options.FuzzyFloor && score > best.Confidence {
				best = models.MatchResult{
					StoreName:  store.name,
					Confidence: score,
					MatchType:  models.MatchTypeFuzzy,
					Candidate:  candidate.Text,
				}
			}
		}
	}
	return best
}

// matchVariation returns the best variant containment match for one candidate
func (r *Resolver) matchVariation(text string, readings []string) (models.MatchResult, bool) {
	var best models.MatchResult
	found := false
	for _, entry := range r.variations.entries {
		for _, variant := range entry.Variants {
			v := Normalize(variant)
			if v == "" {
				continue
			}
			for _, reading := range readings {
				if !strings.Contains(reading, v) && !strings.Contains(v, reading) {
					continue
				}
				score := min(Similarity(reading, v)+r.options.VariationBonus, 100)
				if !found || score > best.Confidence {
					best = models.MatchResult{
						StoreName:  entry.Canonical,
						Confidence: score,
						MatchType:  models.MatchTypeVariation,
						Candidate:  text,
					}
					found = true
				}
			}
		}
	}
	return best, found
}

func normalizeKnown(stores []string) []knownStore {
	known := make([]knownStore, 0, len(stores))
	for _, name := range stores {
		normalized := Normalize(name)
		if normalized == "" {
			continue
		}
		known = append(known, knownStore{name: strings.TrimSpace(name), normalized: normalized})
	}
	return known
}
