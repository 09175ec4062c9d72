package pipeline

import "strings"

const (
	EditionCorrientes          = "corrientes"
	EditionCorrientesCapital   = "corrientes_capital"
	EditionCorrientesProvincia = "corrientes_provincia"

	editionHitThreshold = 2
)

// DetectEdition splits Corrientes coverage into capital (municipal) and
// provincial stories by counting dictionary hits in text. Ambiguous or
// weak text stays on the generic edition.
func (d *Dictionaries) DetectEdition(text string) string {
	normalized := normalizeText(text)
	capital := countHits(normalized, d.capitalTerms)
	province := countHits(normalized, d.provinceTerms)

	switch {
	case capital >= editionHitThreshold && province < editionHitThreshold:
		return EditionCorrientesCapital
	case province >= editionHitThreshold && capital < editionHitThreshold:
		return EditionCorrientesProvincia
	default:
		return EditionCorrientes
	}
}

// EditionFor returns the edition of an item in category. Only the
// corrientes category is split; every other category is its own edition.
func (d *Dictionaries) EditionFor(category, title, description string) string {
	if category != EditionCorrientes {
		return category
	}
	return d.DetectEdition(strings.TrimSpace(title + " " + description))
}
