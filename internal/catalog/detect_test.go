package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectCategory(t *testing.T) {
	tests := map[string]string{
		"Diária pedreiro":     "labor",
		"Mão de obra pintura": "labor",
		"Frete areia":         "freight",
		"Furadeira Bosch":     "tools",
		"Cimento CP-II":       "material",
		"":                    "material",
	}
	for text, want := range tests {
		assert.Equal(t, want, DetectCategory(text), text)
	}
}

func TestDetectRoom(t *testing.T) {
	tests := map[string]string{
		"Tijolo churrasqueira": "bbq",
		"Área gourmet":         "bbq",
		"Box do banheiro":      "bath",
		"Chuveiro":             "bath",
		"Piso suíte":           "bedroom",
		"Tinta dormitório":     "bedroom",
		"Cimento":              "general",
	}
	for text, want := range tests {
		assert.Equal(t, want, DetectRoom(text), text)
	}
}
