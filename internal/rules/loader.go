package rules

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/AnnemeHolzh/DnD-CharacterCreator-sub000/internal/entities"
	"github.com/AnnemeHolzh/DnD-CharacterCreator-sub000/internal/errors"
)

//go:embed data/*.yaml
var dataFS embed.FS

var (
	defaultOnce   sync.Once
	defaultTables *Tables
	defaultErr    error
)

type racesFile struct {
	Races []*RaceDefinition `yaml:"races"`
}

type classesFile struct {
	Classes []*ClassDefinition `yaml:"classes"`
}

type backgroundsFile struct {
	Backgrounds []*BackgroundDefinition `yaml:"backgrounds"`
}

type featSpec struct {
	Name             string             `yaml:"name"`
	Description      string             `yaml:"description"`
	Prerequisites    []prerequisiteSpec `yaml:"prerequisites"`
	AbilityIncreases []entities.Ability `yaml:"ability_increases"`
	GrantsArmor      []ArmorTier        `yaml:"grants_armor"`
}

type featsFile struct {
	Feats []featSpec `yaml:"feats"`
}

type proficienciesFile struct {
	Skills    []string `yaml:"skills"`
	Tools     []string `yaml:"tools"`
	Languages []string `yaml:"languages"`
}

// Default returns the tables built from the embedded data, loading them once
func Default() (*Tables, error) {
	defaultOnce.Do(func() {
		defaultTables, defaultErr = Load()
	})
	return defaultTables, defaultErr
}

// MustDefault is Default for callers that treat broken embedded data as a bug
func MustDefault() *Tables {
	t, err := Default()
	if err != nil {
		panic(fmt.Sprintf("rules: embedded tables are invalid: %v", err))
	}
	return t
}

// Load builds fresh tables from the embedded data
func Load() (*Tables, error) {
	return LoadFS(dataFS, "data")
}

// LoadFS reads races.yaml, classes.yaml, backgrounds.yaml, feats.yaml and
// proficiencies.yaml from dir and validates the result.
func LoadFS(fsys fs.FS, dir string) (*Tables, error) {
	var (
		profs       proficienciesFile
		races       racesFile
		classes     classesFile
		backgrounds backgroundsFile
		feats       featsFile
	)
	files := []struct {
		name string
		into interface{}
	}{
		{"proficiencies.yaml", &profs},
		{"races.yaml", &races},
		{"classes.yaml", &classes},
		{"backgrounds.yaml", &backgrounds},
		{"feats.yaml", &feats},
	}
	for _, f := range files {
		data, err := fs.ReadFile(fsys, path.Join(dir, f.name))
		if err != nil {
			return nil, errors.Wrapf(err, "reading %s", f.name)
		}
		if err := yaml.Unmarshal(data, f.into); err != nil {
			return nil, errors.WrapWithCode(err, errors.CodeInvalidArgument, fmt.Sprintf("parsing %s", f.name))
		}
	}

	t := &Tables{
		races:       make(map[string]*RaceDefinition, len(races.Races)),
		classes:     make(map[string]*ClassDefinition, len(classes.Classes)),
		backgrounds: make(map[string]*BackgroundDefinition, len(backgrounds.Backgrounds)),
		feats:       make(map[string]*FeatDefinition, len(feats.Feats)),
		skills:      entities.NormalizeSet(profs.Skills),
		tools:       entities.NormalizeSet(profs.Tools),
		languages:   entities.NormalizeSet(profs.Languages),
	}
	t.known = map[entities.ProficiencyKind]map[string]bool{
		entities.KindSkills:    toSet(t.skills),
		entities.KindTools:     toSet(t.tools),
		entities.KindLanguages: toSet(t.languages),
	}

	vb := errors.NewValidationBuilder()
	for _, r := range races.Races {
		t.validateRace(r, vb)
		if _, dup := t.races[r.ID]; dup {
			vb.Fieldf("races", "duplicate id %q", r.ID)
		}
		t.races[r.ID] = r
	}
	for _, c := range classes.Classes {
		t.validateClass(c, vb)
		if _, dup := t.classes[c.ID]; dup {
			vb.Fieldf("classes", "duplicate id %q", c.ID)
		}
		t.classes[c.ID] = c
	}
	for _, b := range backgrounds.Backgrounds {
		t.validateBackground(b, vb)
		if _, dup := t.backgrounds[b.ID]; dup {
			vb.Fieldf("backgrounds", "duplicate id %q", b.ID)
		}
		t.backgrounds[b.ID] = b
	}
	for _, spec := range feats.Feats {
		feat, err := buildFeat(spec)
		if err != nil {
			vb.Field("feats."+spec.Name, errors.GetMessage(err))
			continue
		}
		if _, dup := t.feats[feat.Name]; dup {
			vb.Fieldf("feats", "duplicate name %q", feat.Name)
		}
		t.feats[feat.Name] = feat
	}
	if err := vb.Build(); err != nil {
		return nil, err
	}
	return t, nil
}

func buildFeat(spec featSpec) (*FeatDefinition, error) {
	if spec.Name == "" {
		return nil, errors.InvalidArgument("feat name is required")
	}
	feat := &FeatDefinition{
		Name:             spec.Name,
		Description:      spec.Description,
		AbilityIncreases: spec.AbilityIncreases,
		GrantsArmor:      spec.GrantsArmor,
	}
	for _, p := range spec.Prerequisites {
		built, err := p.build()
		if err != nil {
			return nil, err
		}
		feat.Prerequisites = append(feat.Prerequisites, built)
	}
	for _, a := range spec.AbilityIncreases {
		if !a.Valid() {
			return nil, errors.InvalidArgumentf("unknown ability %q", a)
		}
	}
	for _, tier := range spec.GrantsArmor {
		if !validTier(tier) {
			return nil, errors.InvalidArgumentf("unknown armor tier %q", tier)
		}
	}
	return feat, nil
}

func (t *Tables) validateRace(r *RaceDefinition, vb *errors.ValidationBuilder) {
	field := "races." + r.ID
	errors.ValidateRequired(field+".id", r.ID, vb)
	validateBonuses(field, r.AbilityBonuses, vb)
	for _, a := range r.FlexibleExcluded {
		if !a.Valid() {
			vb.Fieldf(field+".flexible_excluded", "unknown ability %q", a)
		}
	}
	if r.FlexibleBonusCount < 0 || r.LanguageChoices < 0 || r.SkillChoices < 0 {
		vb.Field(field, "counts must not be negative")
	}
	t.validateGrants(field, r.Skills, r.Tools, r.Languages, r.Armor, vb)
	for _, s := range r.Subraces {
		sf := field + ".subraces." + s.ID
		errors.ValidateRequired(sf+".id", s.ID, vb)
		validateBonuses(sf, s.AbilityBonuses, vb)
		t.validateGrants(sf, s.Skills, s.Tools, s.Languages, s.Armor, vb)
	}
}

func (t *Tables) validateClass(c *ClassDefinition, vb *errors.ValidationBuilder) {
	field := "classes." + c.ID
	errors.ValidateRequired(field+".id", c.ID, vb)
	if !c.PrimaryAbility.Valid() {
		vb.Fieldf(field+".primary_ability", "unknown ability %q", c.PrimaryAbility)
	}
	if len(c.SavingThrows) != 2 || c.SavingThrows[0] == c.SavingThrows[1] {
		vb.Field(field+".saving_throws", "must name exactly two distinct abilities")
	}
	for _, a := range c.SavingThrows {
		if !a.Valid() {
			vb.Fieldf(field+".saving_throws", "unknown ability %q", a)
		}
	}
	switch c.HitDie {
	case 6, 8, 10, 12:
	default:
		vb.Fieldf(field+".hit_die", "d%d is not a class hit die", c.HitDie)
	}
	if c.SkillChoiceCount < 0 || c.SkillChoiceCount > len(c.SkillList) {
		vb.Field(field+".skill_choice_count", "must be between 0 and the size of the skill list")
	}
	for _, s := range c.SkillList {
		if !t.IsKnown(entities.KindSkills, s) {
			vb.Fieldf(field+".skill_list", "unknown skill %q", s)
		}
	}
	prev := 0
	for _, l := range c.FeatLevels {
		if l <= prev || l > 20 {
			vb.Field(field+".feat_levels", "must be strictly ascending levels between 1 and 20")
			break
		}
		prev = l
	}
	for _, s := range c.Subclasses {
		errors.ValidateRange(field+".subclasses."+s.ID+".unlock_level", s.UnlockLevel, 1, 20, vb)
	}
	t.validateGrants(field, nil, c.Tools, nil, c.Armor, vb)
}

func (t *Tables) validateBackground(b *BackgroundDefinition, vb *errors.ValidationBuilder) {
	field := "backgrounds." + b.ID
	errors.ValidateRequired(field+".id", b.ID, vb)
	if len(b.Skills) != 2 {
		vb.Field(field+".skills", "must grant exactly two skills")
	}
	errors.ValidateRange(field+".language_choices", b.LanguageChoices, 0, 2, vb)
	t.validateGrants(field, b.Skills, b.Tools, nil, nil, vb)
}

func (t *Tables) validateGrants(field string, skills, tools, languages []string, armor []ArmorTier, vb *errors.ValidationBuilder) {
	for _, s := range skills {
		if !t.IsKnown(entities.KindSkills, s) {
			vb.Fieldf(field+".skills", "unknown skill %q", s)
		}
	}
	for _, tool := range tools {
		if tool != ArtisansToolsTag && !t.IsKnown(entities.KindTools, tool) {
			vb.Fieldf(field+".tools", "unknown tool %q", tool)
		}
	}
	for _, l := range languages {
		if !t.IsKnown(entities.KindLanguages, l) {
			vb.Fieldf(field+".languages", "unknown language %q", l)
		}
	}
	for _, tier := range armor {
		if !validTier(tier) {
			vb.Fieldf(field+".armor", "unknown armor tier %q", tier)
		}
	}
}

func validateBonuses(field string, bonuses entities.AbilityMap, vb *errors.ValidationBuilder) {
	for a := range bonuses {
		if !a.Valid() {
			vb.Fieldf(field+".ability_bonuses", "unknown ability %q", a)
		}
	}
}
