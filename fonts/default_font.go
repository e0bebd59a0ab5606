package fonts

import (
	"strings"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"github.com/jamesrr39/goutil/errorsx"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
)

const DefaultFamily = "Go"

var fontsByFamily map[string]*truetype.Font

func init() {
	families := map[string][]byte{
		DefaultFamily: goregular.TTF,
		"Go Bold":     gobold.TTF,
		"Go Mono":     gomono.TTF,
	}

	fontsByFamily = make(map[string]*truetype.Font)
	for family, fontBytes := range families {
		font, err := loadFont(fontBytes)
		if err != nil {
			panic(err)
		}

		fontsByFamily[strings.ToLower(family)] = font
	}
}

func loadFont(fontBytes []byte) (*truetype.Font, errorsx.Error) {
	font, err := freetype.ParseFont(fontBytes)
	if err != nil {
		return nil, errorsx.Wrap(err)
	}

	return font, nil
}

func DefaultFont() *truetype.Font {
	return fontsByFamily[strings.ToLower(DefaultFamily)]
}

// ByFamily returns the font for a family name (case insensitive), falling back to the default font.
func ByFamily(family string) *truetype.Font {
	font, ok := fontsByFamily[strings.ToLower(family)]
	if !ok {
		return DefaultFont()
	}

	return font
}
