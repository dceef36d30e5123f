package rules

import (
	"sort"
	"strings"

	"github.com/AnnemeHolzh/DnD-CharacterCreator-sub000/internal/entities"
	"github.com/AnnemeHolzh/DnD-CharacterCreator-sub000/internal/errors"
)

// Tables is the immutable rule data. Build it with Load or LoadFS and
// share it freely; nothing mutates it after loading.
type Tables struct {
	races       map[string]*RaceDefinition
	classes     map[string]*ClassDefinition
	backgrounds map[string]*BackgroundDefinition
	feats       map[string]*FeatDefinition

	skills    []string
	tools     []string
	languages []string

	known map[entities.ProficiencyKind]map[string]bool
}

// Race looks up a race by id
func (t *Tables) Race(id string) (*RaceDefinition, error) {
	if r, ok := t.races[id]; ok {
		return r, nil
	}
	return nil, errors.NotFoundf("unknown race %q", id).WithField("race_id")
}

// Subrace looks up a subrace of the given race
func (t *Tables) Subrace(raceID, subraceID string) (*SubraceDefinition, error) {
	race, err := t.Race(raceID)
	if err != nil {
		return nil, err
	}
	if s, ok := race.Subrace(subraceID); ok {
		return s, nil
	}
	return nil, errors.NotFoundf("race %q has no subrace %q", raceID, subraceID).WithField("subrace_id")
}

// Class looks up a class by id
func (t *Tables) Class(id string) (*ClassDefinition, error) {
	if c, ok := t.classes[id]; ok {
		return c, nil
	}
	return nil, errors.NotFoundf("unknown class %q", id).WithField("classes")
}

// Background looks up a background by id
func (t *Tables) Background(id string) (*BackgroundDefinition, error) {
	if b, ok := t.backgrounds[id]; ok {
		return b, nil
	}
	return nil, errors.NotFoundf("unknown background %q", id).WithField("background_id")
}

// Feat looks up a feat by name
func (t *Tables) Feat(name string) (*FeatDefinition, error) {
	if f, ok := t.feats[name]; ok {
		return f, nil
	}
	return nil, errors.NotFoundf("unknown feat %q", name).WithField("feats")
}

// RaceIDs returns every race id, sorted
func (t *Tables) RaceIDs() []string { return sortedKeys(t.races) }

// ClassIDs returns every class id, sorted
func (t *Tables) ClassIDs() []string { return sortedKeys(t.classes) }

// BackgroundIDs returns every background id, sorted
func (t *Tables) BackgroundIDs() []string { return sortedKeys(t.backgrounds) }

// FeatNames returns every feat name, sorted
func (t *Tables) FeatNames() []string { return sortedKeys(t.feats) }

// Known returns the known ids of a proficiency pool, sorted
func (t *Tables) Known(kind entities.ProficiencyKind) []string {
	switch kind {
	case entities.KindSkills:
		return t.skills
	case entities.KindTools:
		return t.tools
	case entities.KindLanguages:
		return t.languages
	}
	return nil
}

// IsKnown reports whether id is a known entry of the pool
func (t *Tables) IsKnown(kind entities.ProficiencyKind, id string) bool {
	return t.known[kind][id]
}

// WithCatalogTools returns a copy whose tool list also contains the given
// catalog tool ids. The receiver is left untouched.
func (t *Tables) WithCatalogTools(ids []string) *Tables {
	out := *t
	out.tools = entities.NormalizeSet(append(append([]string(nil), t.tools...), ids...))
	out.known = map[entities.ProficiencyKind]map[string]bool{
		entities.KindSkills:    t.known[entities.KindSkills],
		entities.KindTools:     toSet(out.tools),
		entities.KindLanguages: t.known[entities.KindLanguages],
	}
	return &out
}

// IsArtisansTool applies the name rule for artisan's tools: the id or
// display name mentions "tools" or "supplies".
func IsArtisansTool(idOrName string) bool {
	s := strings.ToLower(idOrName)
	return strings.Contains(s, "tools") || strings.Contains(s, "supplies")
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func toSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
