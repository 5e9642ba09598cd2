package catalog

import (
	"regexp"

	"github.com/reforma-dev/reforma/internal/model"
)

var (
	laborWords   = regexp.MustCompile(`pedreiro|eletri|encanad|pintor|mestre|servente|mao.?de.?obra|diaria|mason|plumber|painter|labou?r`)
	freightWords = regexp.MustCompile(`frete|entrega|transporte|freight|delivery|shipping`)
	toolWords    = regexp.MustCompile(`ferramenta|furadeira|serra|martelo|trena|nivel|tool|drill|hammer`)

	bbqWords     = regexp.MustCompile(`churras|area.?gourmet|bbq|externo|outdoor|grill`)
	bathWords    = regexp.MustCompile(`banheir|wc|lavabo|box|vaso|chuveiro|bath|toilet|shower`)
	bedroomWords = regexp.MustCompile(`quarto|dormit|suite|bedroom`)
)

// DetectCategory guesses an expense category from free text.
func DetectCategory(text string) string {
	t := Fold(text)
	switch {
	case laborWords.MatchString(t):
		return model.CategoryLabor
	case freightWords.MatchString(t):
		return model.CategoryFreight
	case toolWords.MatchString(t):
		return model.CategoryTools
	}
	return model.CategoryMaterial
}

// DetectRoom guesses a room from free text.
func DetectRoom(text string) string {
	t := Fold(text)
	switch {
	case bbqWords.MatchString(t):
		return "bbq"
	case bathWords.MatchString(t):
		return "bath"
	case bedroomWords.MatchString(t):
		return "bedroom"
	}
	return "general"
}
