package mapboxglstyle

import (
	"encoding/json"
	"io"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/ownmap-snapshot/styling"
)

// DefaultReferenceZoom is the zoom level that zoom functions and layer zoom ranges are evaluated at.
const DefaultReferenceZoom = 14

// Style is a Mapbox GL style sheet. Features are matched against its layers by their tags;
// when several layers match, later layers win, as they are drawn on top.
type Style struct {
	Version int      `json:"version"`
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Layers  []*Layer `json:"layers"`

	ReferenceZoom float64 `json:"-"`
}

func Parse(reader io.Reader) (*Style, errorsx.Error) {
	style := &Style{ReferenceZoom: DefaultReferenceZoom}

	err := json.NewDecoder(reader).Decode(style)
	if err != nil {
		return nil, errorsx.Wrap(err)
	}

	if style.GetStyleID() == "" {
		return nil, errorsx.Errorf("style has neither an id nor a name")
	}

	for i, layer := range style.Layers {
		compileErr := layer.compile()
		if compileErr != nil {
			return nil, errorsx.Wrap(compileErr, "layerIndex", i, "layerID", layer.ID)
		}
	}

	return style, nil
}

func (s *Style) GetStyleID() string {
	if s.ID != "" {
		return s.ID
	}
	return s.Name
}

func (s *Style) GetAmbientStyles() styling.Styles {
	return styling.Styles{}
}

func (s *Style) GetTaggedStyles(tags map[string]string) styling.Styles {
	var styles styling.Styles
	for _, layer := range s.Layers {
		layerStyles, ok := layer.GetLayerStyles(tags, s.ReferenceZoom)
		if !ok {
			continue
		}

		styles = styles.Merge(layerStyles)
	}

	return styles
}
