package styling

import (
	"sort"

	"github.com/jamesrr39/goutil/errorsx"
)

const (
	BUILTIN_STYLEID           = "__ownmap_builtin"
	NUMBERED_VERTICES_STYLEID = "__ownmap_numbered_vertices"
)

// Style is a named preset. Its ambient styles apply to every geometry in a snapshot,
// and tagged styles are looked up per feature from its tags (e.g. OSM tags or GeoJSON properties).
type Style interface {
	GetStyleID() string
	GetAmbientStyles() Styles
	GetTaggedStyles(tags map[string]string) Styles
}

type StyleSet struct {
	stylesMap      map[string]Style // map[Style ID]Style
	defaultStyleID string
}

func NewStyleSet(styles []Style, defaultStyleID string) (*StyleSet, errorsx.Error) {
	styleSet := &StyleSet{
		stylesMap:      make(map[string]Style),
		defaultStyleID: defaultStyleID,
	}

	defaultIDFound := false

	for _, style := range styles {
		styleID := style.GetStyleID()
		_, ok := styleSet.stylesMap[styleID]
		if ok {
			return nil, errorsx.Errorf("duplicate style ID found: %q", styleID)
		}

		styleSet.stylesMap[styleID] = style

		if defaultStyleID == styleID {
			defaultIDFound = true
		}
	}

	if !defaultIDFound {
		return nil, errorsx.Errorf("default ID %q not found in any supplied styles", defaultStyleID)
	}

	return styleSet, nil
}

// NewBuiltinStyleSet returns the presets that ship with the application.
func NewBuiltinStyleSet() *StyleSet {
	styleSet, err := NewStyleSet([]Style{&CustomBasicStyle{}, &NumberedVerticesStyle{}}, BUILTIN_STYLEID)
	if err != nil {
		panic(err)
	}

	return styleSet
}

// GetStyleByID returns the style with the given ID, or nil if there is none.
func (s *StyleSet) GetStyleByID(id string) Style {
	return s.stylesMap[id]
}

func (s *StyleSet) GetDefaultStyle() Style {
	return s.stylesMap[s.defaultStyleID]
}

func (s *StyleSet) GetAllStyleIDs() []string {
	var styleIDs []string

	for id := range s.stylesMap {
		styleIDs = append(styleIDs, id)
	}

	sort.Strings(styleIDs)

	return styleIDs
}
