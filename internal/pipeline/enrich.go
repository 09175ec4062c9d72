package pipeline

import (
	"strings"

	"github.com/gonzacha/qsd/internal/rss"
)

const (
	FlagTitleEchoDesc    = "title_echo_desc"
	FlagPowerBranchDrift = "power_branch_drift"

	maxEffectiveSources = 5
	titleEchoPenalty    = 10
	powerBranchPenalty  = 15
)

// EnrichedItem is a feed item annotated with its cluster size and quality
// signals. SourcesCount is fixed at enrichment: dedup may later hide
// cluster mates but never lowers it.
type EnrichedItem struct {
	rss.Item
	PublishedAt       *string  `json:"publishedAt"`
	SourcesCount      int      `json:"sources_count"`
	SourcesEffective  int      `json:"sources_effective"`
	AgreementRatio    float64  `json:"agreement_ratio"`
	ContradictionFlag bool     `json:"contradiction_flag"`
	QualityFlags      []string `json:"quality_flags"`
	QualityPenalty    int      `json:"quality_penalty"`
}

// Enrich clusters items and derives the per-item quality signals.
func (d *Dictionaries) Enrich(items []rss.Item) []EnrichedItem {
	sizes := d.ClusterSizes(items)
	out := make([]EnrichedItem, len(items))
	for i, item := range items {
		out[i] = d.enrichOne(item, sizes[i])
	}
	return out
}

func (d *Dictionaries) enrichOne(item rss.Item, sourcesCount int) EnrichedItem {
	effective := min(sourcesCount, maxEffectiveSources)
	enriched := EnrichedItem{
		Item:              item,
		PublishedAt:       item.PubDate,
		SourcesCount:      sourcesCount,
		SourcesEffective:  effective,
		AgreementRatio:    min(float64(effective)/maxEffectiveSources, 1),
		ContradictionFlag: d.hasContradiction(item.Title),
		QualityFlags:      []string{},
	}

	normTitle := normalizeText(item.Title)
	normDesc := normalizeText(item.Description)
	if normTitle != "" && normDesc != "" && strings.Contains(normDesc, normTitle) {
		enriched.QualityFlags = appendFlag(enriched.QualityFlags, FlagTitleEchoDesc)
		enriched.QualityPenalty += titleEchoPenalty
	}

	if item.Edition == EditionCorrientesCapital {
		drift := normalizeText(item.Title + " " + item.Description)
		if countHits(drift, d.provinceTerms) >= editionHitThreshold {
			enriched.QualityFlags = appendFlag(enriched.QualityFlags, FlagPowerBranchDrift)
			enriched.QualityPenalty += powerBranchPenalty
		}
	}
	return enriched
}

func (d *Dictionaries) hasContradiction(title string) bool {
	lowered := strings.ToLower(title)
	for _, word := range d.contradictionWords {
		if strings.Contains(lowered, word) {
			return true
		}
	}
	return false
}

func appendFlag(flags []string, flag string) []string {
	for _, existing := range flags {
		if existing == flag {
			return flags
		}
	}
	return append(flags, flag)
}
