package engine_test

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/AnnemeHolzh/DnD-CharacterCreator-sub000/internal/engine"
	"github.com/AnnemeHolzh/DnD-CharacterCreator-sub000/internal/errors"
	"github.com/AnnemeHolzh/DnD-CharacterCreator-sub000/internal/rules"
	"github.com/AnnemeHolzh/DnD-CharacterCreator-sub000/internal/testutils/builders"
)

type LevelsTestSuite struct {
	suite.Suite
	tables *rules.Tables
}

func (s *LevelsTestSuite) SetupSuite() {
	s.tables = rules.MustDefault()
}

func (s *LevelsTestSuite) TestSetClassLevel_Ceiling() {
	c := builders.NewCharacterBuilder().WithClass("fighter", 12).WithClass("wizard", 5).Build()
	s.Equal(15, engine.MaxLevelFor(c, 0))
	s.Equal(8, engine.MaxLevelFor(c, 1))

	s.Run("above the ceiling leaves the level unchanged", func() {
		out, err := engine.SetClassLevel(c, 1, 9)
		s.True(errors.IsFailedPrecondition(err))
		s.Same(c, out)
		s.Equal(5, out.Classes[1].Level)
	})

	s.Run("at the ceiling", func() {
		out, err := engine.SetClassLevel(c, 1, 8)
		s.Require().NoError(err)
		s.Equal(20, out.TotalLevel())
	})

	s.Run("below one", func() {
		_, err := engine.SetClassLevel(c, 0, 0)
		s.True(errors.IsInvalidArgument(err))
	})

	s.Run("missing entry", func() {
		_, err := engine.SetClassLevel(c, 4, 1)
		s.Equal(errors.CodeOutOfRange, errors.GetCode(err))
	})
}

func (s *LevelsTestSuite) TestAddClassEntry() {
	c := builders.NewCharacterBuilder().WithClass("fighter", 19).Build()

	out, err := engine.AddClassEntry(c, s.tables, "rogue")
	s.Require().NoError(err)
	s.Equal(20, out.TotalLevel())
	s.Equal("fighter", out.PrimaryClass().ClassID)

	_, err = engine.AddClassEntry(out, s.tables, "wizard")
	s.True(errors.IsFailedPrecondition(err), "no room left")

	_, err = engine.AddClassEntry(c, s.tables, "fighter")
	s.True(errors.IsFailedPrecondition(err), "duplicate class")

	_, err = engine.AddClassEntry(c, s.tables, "gunslinger")
	s.True(errors.IsNotFound(err))
}

func (s *LevelsTestSuite) TestRemoveClassEntry_PromotesNextPrimary() {
	c := builders.NewCharacterBuilder().WithClass("fighter", 2).WithClass("rogue", 1).Build()

	out, err := engine.RemoveClassEntry(c, 0)

	s.Require().NoError(err)
	s.Equal("rogue", out.PrimaryClass().ClassID)
	s.Len(c.Classes, 2, "input must not change")
}

func (s *LevelsTestSuite) TestSetSubclass() {
	c := builders.NewCharacterBuilder().WithClass("fighter", 2).WithClass("cleric", 1).Build()

	_, err := engine.SetSubclass(c, s.tables, 0, "champion")
	s.True(errors.IsFailedPrecondition(err), "champion unlocks at 3")

	_, err = engine.SetSubclass(c, s.tables, 0, "life")
	s.True(errors.IsInvalidArgument(err), "life is a cleric subclass")

	out, err := engine.SetSubclass(c, s.tables, 1, "life")
	s.Require().NoError(err)
	s.Equal("life", out.Classes[1].SubclassID)

	s.Empty(engine.AvailableSubclasses(c, s.tables, 0))
	s.NotEmpty(engine.AvailableSubclasses(c, s.tables, 1))
}

func (s *LevelsTestSuite) TestValidate_TotalAboveCapIsFlagged() {
	c := builders.NewCharacterBuilder().WithClass("fighter", 15).WithClass("wizard", 6).Build()

	report := engine.Validate(c, s.tables)

	var found bool
	for _, e := range report.BySection(engine.SectionClass) {
		if e.Message == "Total level 21 exceeds 20" {
			found = true
			s.Equal(engine.PriorityHigh, e.Priority)
			s.Equal(engine.KindCombinatorial, e.Kind)
		}
	}
	s.True(found)
	s.Equal(21, c.TotalLevel(), "validation never clamps")
}

func TestLevelsTestSuite(t *testing.T) {
	suite.Run(t, new(LevelsTestSuite))
}
