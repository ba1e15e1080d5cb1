package grocery

import "testing"

func TestCategorizeExactMatch(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"lait", Epicerie},
		{"poulet", ViandePoisson},
		{"pain", Epicerie},
		{"glace", Surgeles},
		{"café", Boissons},
		{"essuie-tout", Entretien},
		{"dentifrice", Hygiene},
		{"pommes", FruitsLegumes},
		{"Tomates", FruitsLegumes},
		{"  Beurre  ", Epicerie},
	}
	for _, tt := range tests {
		got := Categorize(tt.input)
		if got != tt.want {
			t.Errorf("Categorize(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestCategorizeSubstringMatch(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"blanc de poulet fermier", ViandePoisson},
		{"épinards surgelés", Surgeles},
		{"jus de pomme", Boissons},
		{"yaourts nature", Epicerie},
		{"tomates cerises", FruitsLegumes},
		{"gel douche amande", Hygiene},
		{"pastilles lave-vaisselle", Entretien},
	}
	for _, tt := range tests {
		got := Categorize(tt.input)
		if got != tt.want {
			t.Errorf("Categorize(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestCategorizeFallback(t *testing.T) {
	for _, input := range []string{"", "   ", "cadre photo", "xyz"} {
		if got := Categorize(input); got != Other {
			t.Errorf("Categorize(%q) = %q, want %q", input, got, Other)
		}
	}
}

func TestCategorizeIn(t *testing.T) {
	cats := []string{"Frais", "Autres"}

	if got := CategorizeIn("lait", cats, "Autres"); got != "Autres" {
		t.Errorf("guess outside set = %q, want Autres", got)
	}
	if got := CategorizeIn("lait", []string{Epicerie, "Autres"}, "Autres"); got != Epicerie {
		t.Errorf("guess inside set = %q, want %q", got, Epicerie)
	}
}
