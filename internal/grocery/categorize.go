package grocery

import "strings"

// Category names produced by Categorize. They match the default catalog.
const (
	Boissons      = "Boissons"
	Entretien     = "Entretien"
	Epicerie      = "Épicerie"
	FruitsLegumes = "Fruits et Légumes"
	Hygiene       = "Hygiène"
	Surgeles      = "Surgelés"
	ViandePoisson = "Viande et Poisson"
	Other         = "Autres"
)

// Categorize returns the category for the given item label.
// It performs case-insensitive matching: exact match first, then substring match.
// Falls back to Other if no match is found.
func Categorize(label string) string {
	name := strings.ToLower(strings.TrimSpace(label))
	if name == "" {
		return Other
	}

	// Phase 1: exact match
	if cat, ok := exactMatch[name]; ok {
		return cat
	}

	// Phase 2: substring match (ordered longer/more-specific first)
	for _, entry := range substringMatches {
		if strings.Contains(name, entry.keyword) {
			return entry.category
		}
	}

	return Other
}

// CategorizeIn is Categorize restricted to a configured category set. A
// guess outside the set yields fallback.
func CategorizeIn(label string, categories []string, fallback string) string {
	cat := Categorize(label)
	for _, c := range categories {
		if c == cat {
			return cat
		}
	}
	return fallback
}

var exactMatch = map[string]string{
	// Fruits et Légumes
	"pommes":          FruitsLegumes,
	"pomme":           FruitsLegumes,
	"bananes":         FruitsLegumes,
	"banane":          FruitsLegumes,
	"oranges":         FruitsLegumes,
	"citrons":         FruitsLegumes,
	"citron":          FruitsLegumes,
	"avocats":         FruitsLegumes,
	"avocat":          FruitsLegumes,
	"tomates":         FruitsLegumes,
	"pommes de terre": FruitsLegumes,
	"oignons":         FruitsLegumes,
	"ail":             FruitsLegumes,
	"salade":          FruitsLegumes,
	"épinards":        FruitsLegumes,
	"brocolis":        FruitsLegumes,
	"carottes":        FruitsLegumes,
	"courgettes":      FruitsLegumes,
	"concombre":       FruitsLegumes,
	"poivrons":        FruitsLegumes,
	"champignons":     FruitsLegumes,
	"raisin":          FruitsLegumes,
	"fraises":         FruitsLegumes,
	"poires":          FruitsLegumes,
	"persil":          FruitsLegumes,
	"basilic":         FruitsLegumes,
	"poireaux":        FruitsLegumes,

	// Viande et Poisson
	"poulet":        ViandePoisson,
	"boeuf":         ViandePoisson,
	"bœuf":          ViandePoisson,
	"porc":          ViandePoisson,
	"dinde":         ViandePoisson,
	"lardons":       ViandePoisson,
	"jambon":        ViandePoisson,
	"saucisses":     ViandePoisson,
	"steak haché":   ViandePoisson,
	"steaks hachés": ViandePoisson,
	"saumon":        ViandePoisson,
	"crevettes":     ViandePoisson,
	"thon":          ViandePoisson,
	"cabillaud":     ViandePoisson,
	"agneau":        ViandePoisson,

	// Épicerie
	"lait":          Epicerie,
	"oeufs":         Epicerie,
	"œufs":          Epicerie,
	"beurre":        Epicerie,
	"fromage":       Epicerie,
	"yaourts":       Epicerie,
	"crème fraîche": Epicerie,
	"pain":          Epicerie,
	"riz":           Epicerie,
	"pâtes":         Epicerie,
	"farine":        Epicerie,
	"sucre":         Epicerie,
	"sel":           Epicerie,
	"poivre":        Epicerie,
	"huile":         Epicerie,
	"huile d'olive": Epicerie,
	"vinaigre":      Epicerie,
	"moutarde":      Epicerie,
	"mayonnaise":    Epicerie,
	"ketchup":       Epicerie,
	"miel":          Epicerie,
	"confiture":     Epicerie,
	"céréales":      Epicerie,
	"lentilles":     Epicerie,
	"chocolat":      Epicerie,
	"biscuits":      Epicerie,
	"chips":         Epicerie,

	// Surgelés
	"glace":                Surgeles,
	"glaces":               Surgeles,
	"pizza surgelée":       Surgeles,
	"frites":               Surgeles,
	"petits pois surgelés": Surgeles,

	// Boissons
	"eau":          Boissons,
	"jus d'orange": Boissons,
	"café":         Boissons,
	"thé":          Boissons,
	"bière":        Boissons,
	"vin":          Boissons,
	"soda":         Boissons,
	"limonade":     Boissons,
	"eau gazeuse":  Boissons,

	// Entretien
	"essuie-tout":       Entretien,
	"sacs poubelle":     Entretien,
	"liquide vaisselle": Entretien,
	"lessive":           Entretien,
	"éponges":           Entretien,
	"papier alu":        Entretien,
	"film alimentaire":  Entretien,
	"javel":             Entretien,
	"piles":             Entretien,
	"ampoules":          Entretien,

	// Hygiène
	"shampoing":       Hygiene,
	"shampooing":      Hygiene,
	"après-shampoing": Hygiene,
	"savon":           Hygiene,
	"gel douche":      Hygiene,
	"dentifrice":      Hygiene,
	"brosse à dents":  Hygiene,
	"déodorant":       Hygiene,
	"crème solaire":   Hygiene,
	"rasoirs":         Hygiene,
	"mouchoirs":       Hygiene,
	"papier toilette": Hygiene,
	"coton":           Hygiene,
}

type substringEntry struct {
	keyword  string
	category string
}

// Ordered with longer/more-specific keywords first for deterministic priority.
var substringMatches = []substringEntry{
	// Surgelés first: "surgelé" wins over the product it qualifies
	{"surgel", Surgeles},
	{"glace", Surgeles},

	// Boissons
	{"jus de", Boissons},
	{"eau ", Boissons},
	{"sirop", Boissons},
	{"café", Boissons},
	{"bière", Boissons},
	{"vin ", Boissons},
	{"soda", Boissons},

	// Viande et Poisson
	{"blanc de poulet", ViandePoisson},
	{"steak", ViandePoisson},
	{"poulet", ViandePoisson},
	{"boeuf", ViandePoisson},
	{"bœuf", ViandePoisson},
	{"jambon", ViandePoisson},
	{"saucisse", ViandePoisson},
	{"saumon", ViandePoisson},
	{"poisson", ViandePoisson},
	{"viande", ViandePoisson},

	// Hygiène
	{"papier toilette", Hygiene},
	{"brosse à dent", Hygiene},
	{"gel douche", Hygiene},
	{"shamp", Hygiene},
	{"dentifrice", Hygiene},
	{"déodorant", Hygiene},
	{"savon", Hygiene},
	{"crème solaire", Hygiene},

	// Entretien
	{"liquide vaisselle", Entretien},
	{"sac poubelle", Entretien},
	{"sacs poubelle", Entretien},
	{"essuie", Entretien},
	{"lessive", Entretien},
	{"nettoyant", Entretien},
	{"éponge", Entretien},
	{"vaisselle", Entretien},

	// Fruits et Légumes
	{"pomme de terre", FruitsLegumes},
	{"pommes de terre", FruitsLegumes},
	{"salade", FruitsLegumes},
	{"tomate", FruitsLegumes},
	{"carotte", FruitsLegumes},
	{"courgette", FruitsLegumes},
	{"pomme", FruitsLegumes},
	{"banane", FruitsLegumes},
	{"fruit", FruitsLegumes},
	{"légume", FruitsLegumes},

	// Épicerie
	{"yaourt", Epicerie},
	{"fromage", Epicerie},
	{"lait", Epicerie},
	{"beurre", Epicerie},
	{"oeuf", Epicerie},
	{"œuf", Epicerie},
	{"pain", Epicerie},
	{"pâtes", Epicerie},
	{"sauce", Epicerie},
	{"conserve", Epicerie},
	{"biscuit", Epicerie},
	{"chocolat", Epicerie},
	{"farine", Epicerie},
	{"riz", Epicerie},
}
