package pipeline

import "testing"

func TestNormalizeText(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"Gustavo Valdés, ¡gobernador!":  "gustavo valdes gobernador",
		"  Cámara   de\tDiputados ":      "camara de diputados",
		"Año nuevo en la Municipalidad": "ano nuevo en la municipalidad",
		"":                              "",
	}
	for input, want := range cases {
		if got := normalizeText(input); got != want {
			t.Fatalf("normalizeText(%q): got %q want %q", input, got, want)
		}
	}
}

func TestDetectEdition(t *testing.T) {
	t.Parallel()

	dict := testDictionaries()
	cases := []struct {
		text string
		want string
	}{
		{"El intendente Polich recorrió obras de la Municipalidad", EditionCorrientesCapital},
		{"El gobernador Valdés envió el proyecto de ley a la Legislatura", EditionCorrientesProvincia},
		{"El intendente y el gobernador firmaron un convenio", EditionCorrientes},
		{"Lluvias intensas en toda la región", EditionCorrientes},
	}
	for _, tc := range cases {
		if got := dict.DetectEdition(tc.text); got != tc.want {
			t.Fatalf("DetectEdition(%q): got %q want %q", tc.text, got, tc.want)
		}
	}
}

func TestEditionFor_OnlySplitsCorrientes(t *testing.T) {
	t.Parallel()

	dict := testDictionaries()
	if got := dict.EditionFor("deportes", "El intendente Polich en la Municipalidad", ""); got != "deportes" {
		t.Fatalf("unexpected edition for deportes: %q", got)
	}
	got := dict.EditionFor("corrientes", "El intendente Polich", "habló en la Municipalidad")
	if got != EditionCorrientesCapital {
		t.Fatalf("expected description to count toward detection, got %q", got)
	}
}
