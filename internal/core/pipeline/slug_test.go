package pipeline_test

import (
	"testing"

	"marketplace-service/internal/core/pipeline"
)

func TestGenerateSlug(t *testing.T) {
	cases := map[string]string{
		"Villa Moderna en Los Cabos":  "villa-moderna-en-los-cabos",
		"Mansión en Reserva Forestal": "mansion-en-reserva-forestal",
		"  Loft -- de   Diseño!! ":    "loft-de-diseno",
		"Año 2024: Casa Ñandú":        "ano-2024-casa-nandu",
		"¡¿?!":                        "",
		"":                            "",
	}
	for title, want := range cases {
		if got := pipeline.GenerateSlug(title); got != want {
			t.Fatalf("GenerateSlug(%q) = %q, want %q", title, got, want)
		}
	}
}

func TestPropertyURLPath(t *testing.T) {
	if got := pipeline.PropertyURLPath("a b/c", "casa"); got != "/propiedad/a%20b%2Fc/casa" {
		t.Fatalf("unexpected path %q", got)
	}
	if got := pipeline.PropertyURLPath("42", ""); got != "/propiedad/42" {
		t.Fatalf("unexpected path %q", got)
	}
}
