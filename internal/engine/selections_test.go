package engine_test

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/AnnemeHolzh/DnD-CharacterCreator-sub000/internal/engine"
	"github.com/AnnemeHolzh/DnD-CharacterCreator-sub000/internal/entities"
	"github.com/AnnemeHolzh/DnD-CharacterCreator-sub000/internal/errors"
	"github.com/AnnemeHolzh/DnD-CharacterCreator-sub000/internal/rules"
	"github.com/AnnemeHolzh/DnD-CharacterCreator-sub000/internal/testutils"
	"github.com/AnnemeHolzh/DnD-CharacterCreator-sub000/internal/testutils/builders"
)

type SelectionsTestSuite struct {
	suite.Suite
	tables *rules.Tables
}

func (s *SelectionsTestSuite) SetupSuite() {
	s.tables = rules.MustDefault()
}

func (s *SelectionsTestSuite) TestSetRace_ClearsForeignSubrace() {
	c := builders.NewCharacterBuilder().WithRace("elf", "high-elf").Build()

	out, err := engine.SetRace(c, s.tables, "dwarf")
	s.Require().NoError(err)
	s.Equal("dwarf", out.RaceID)
	s.Empty(out.SubraceID)

	_, err = engine.SetRace(c, s.tables, "kobold")
	s.True(errors.IsNotFound(err))
	s.Equal("high-elf", c.SubraceID)
}

func (s *SelectionsTestSuite) TestSetSubrace() {
	c := builders.NewCharacterBuilder().WithRace("dwarf").Build()

	out, err := engine.SetSubrace(c, s.tables, "hill-dwarf")
	s.Require().NoError(err)
	s.Equal("hill-dwarf", out.SubraceID)

	_, err = engine.SetSubrace(c, s.tables, "high-elf")
	s.True(errors.IsNotFound(err))

	out, err = engine.SetSubrace(out, s.tables, "")
	s.Require().NoError(err)
	s.Empty(out.SubraceID)
}

func (s *SelectionsTestSuite) TestSelectWeapon() {
	c := builders.NewCharacterBuilder().Build()
	var err error
	for _, id := range []string{"club", "dagger", "handaxe", "javelin", "mace"} {
		c, err = engine.SelectWeapon(c, entities.EquipmentSelection{ID: id, Name: id})
		s.Require().NoError(err)
	}

	_, err = engine.SelectWeapon(c, entities.EquipmentSelection{ID: "spear", Name: "Spear"})
	s.True(errors.IsFailedPrecondition(err), "sixth weapon")
	s.Equal("weapons", errors.GetField(err))

	_, err = engine.SelectWeapon(c, entities.EquipmentSelection{ID: "club", Name: "Club"})
	s.True(errors.IsFailedPrecondition(err), "repeat")

	_, err = engine.SelectWeapon(c, entities.EquipmentSelection{})
	s.True(errors.IsInvalidArgument(err))

	out, err := engine.RemoveWeapon(c, "dagger")
	s.Require().NoError(err)
	s.Len(out.Weapons, 4)
	s.Len(c.Weapons, 5, "input must not change")

	_, err = engine.RemoveWeapon(out, "dagger")
	s.True(errors.IsNotFound(err))
}

func (s *SelectionsTestSuite) TestArmorAndShieldAreCopied() {
	shield := &entities.EquipmentSelection{ID: "shield", Name: "Shield", Category: "armor"}
	c := builders.NewCharacterBuilder().Build()

	out, err := engine.SetShield(c, shield)
	s.Require().NoError(err)
	shield.Name = "changed"
	s.Equal("Shield", out.Shield.Name)

	out, err = engine.SetArmor(out, &entities.EquipmentSelection{ID: "chain-mail", Name: "Chain Mail"})
	s.Require().NoError(err)
	s.Equal("chain-mail", out.Armor.ID)

	out, err = engine.SetShield(out, nil)
	s.Require().NoError(err)
	s.Nil(out.Shield)
}

func (s *SelectionsTestSuite) TestItemsAndSpellsAreSets() {
	c := builders.NewCharacterBuilder().Build()

	c, _ = engine.AddItem(c, "rope-hempen-50-feet")
	c, _ = engine.AddItem(c, "rope-hempen-50-feet")
	s.Equal([]string{"rope-hempen-50-feet"}, c.Items)
	c, _ = engine.RemoveItem(c, "rope-hempen-50-feet")
	s.Empty(c.Items)

	c, _ = engine.SelectSpell(c, "shield")
	c, _ = engine.SelectSpell(c, "fire-bolt")
	s.Equal([]string{"fire-bolt", "shield"}, c.Spells)
	c, _ = engine.RemoveSpell(c, "shield")
	s.Equal([]string{"fire-bolt"}, c.Spells)

	_, err := engine.SelectSpell(c, "")
	s.True(errors.IsInvalidArgument(err))
}

func (s *SelectionsTestSuite) TestSetNarrative() {
	c := builders.NewCharacterBuilder().Build()

	out, err := engine.SetNarrative(c, engine.FieldBonds, "My sword arm")
	s.Require().NoError(err)
	s.Equal("My sword arm", engine.NarrativeText(out, engine.FieldBonds))
	s.Equal(3, engine.WordCount(out.Bonds))

	_, err = engine.SetNarrative(c, engine.NarrativeField("diary"), "text")
	s.True(errors.IsInvalidArgument(err))
	s.Equal("Bonds", engine.FieldBonds.Label())
}

func (s *SelectionsTestSuite) TestEvaluate_HumanFighterSoldier() {
	ev := engine.Evaluate(testutils.CreateTestCharacter("player-1"), s.tables)

	s.Empty(ev.Report.Errors)
	s.Len(ev.Pools, len(entities.ProficiencyKinds))
	s.Equal([]string{"athletics", "intimidation"}, ev.Pools[entities.KindSkills].Fixed)
	s.Equal(0, ev.Feats.Available)
}

func TestSelectionsTestSuite(t *testing.T) {
	suite.Run(t, new(SelectionsTestSuite))
}
