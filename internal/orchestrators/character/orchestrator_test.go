package character_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/AnnemeHolzh/DnD-CharacterCreator-sub000/internal/engine"
	"github.com/AnnemeHolzh/DnD-CharacterCreator-sub000/internal/entities"
	"github.com/AnnemeHolzh/DnD-CharacterCreator-sub000/internal/errors"
	"github.com/AnnemeHolzh/DnD-CharacterCreator-sub000/internal/orchestrators/character"
	characterrepo "github.com/AnnemeHolzh/DnD-CharacterCreator-sub000/internal/repositories/character"
	charactermock "github.com/AnnemeHolzh/DnD-CharacterCreator-sub000/internal/repositories/character/mock"
	"github.com/AnnemeHolzh/DnD-CharacterCreator-sub000/internal/rules"
	"github.com/AnnemeHolzh/DnD-CharacterCreator-sub000/internal/testutils"
	"github.com/AnnemeHolzh/DnD-CharacterCreator-sub000/internal/testutils/mocks"
)

const (
	testPlayerID    = "player-123"
	testCharacterID = "char-456"
)

type OrchestratorTestSuite struct {
	suite.Suite
	ctrl     *gomock.Controller
	mockRepo *charactermock.MockRepository
	orch     *character.Orchestrator
	ctx      context.Context
}

func (s *OrchestratorTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.mockRepo = charactermock.NewMockRepository(s.ctrl)
	s.ctx = context.Background()

	orch, err := character.New(&character.Config{
		CharacterRepo: s.mockRepo,
		Tables:        rules.MustDefault(),
	})
	s.Require().NoError(err)
	s.orch = orch
}

func (s *OrchestratorTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *OrchestratorTestSuite) storedCharacter() *entities.Character {
	c := testutils.CreateTestCharacter(testPlayerID)
	c.ID = testCharacterID
	return c
}

func (s *OrchestratorTestSuite) TestNew_RequiresDependencies() {
	_, err := character.New(&character.Config{})
	s.Require().Error(err)
	s.True(errors.IsInvalidArgument(err))
}

func (s *OrchestratorTestSuite) TestCreateDraft() {
	s.Run("stores an empty build", func() {
		mocks.ExpectCharacterCreate(s.ctx, s.mockRepo)

		out, err := s.orch.CreateDraft(s.ctx, &character.CreateDraftInput{PlayerID: testPlayerID, Name: "Merry"})

		s.Require().NoError(err)
		s.Equal(mocks.GeneratedCharacterID, out.Character.ID)
		s.Equal(testPlayerID, out.Character.PlayerID)
		s.Equal("Merry", out.Character.Name)
		s.Equal(entities.MethodStandardArray, out.Character.AbilityScores.Method)
	})

	s.Run("requires a player", func() {
		_, err := s.orch.CreateDraft(s.ctx, &character.CreateDraftInput{})
		s.True(errors.IsInvalidArgument(err))
	})
}

func (s *OrchestratorTestSuite) TestGet_Evaluates() {
	mocks.ExpectCharacterGet(s.ctx, s.mockRepo, testCharacterID, s.storedCharacter(), nil)

	out, err := s.orch.Get(s.ctx, &character.GetInput{CharacterID: testCharacterID})

	s.Require().NoError(err)
	s.Empty(out.Evaluation.Report.Errors)
	s.Equal(16, out.Evaluation.Abilities.Total[entities.Strength])
}

func (s *OrchestratorTestSuite) TestGet_NotFound() {
	mocks.ExpectCharacterGet(s.ctx, s.mockRepo, testCharacterID, nil, errors.NotFound("character not found"))

	_, err := s.orch.Get(s.ctx, &character.GetInput{CharacterID: testCharacterID})

	s.True(errors.IsNotFound(err))
}

func (s *OrchestratorTestSuite) TestEdit_ReconcilesAndSaves() {
	mocks.ExpectCharacterGet(s.ctx, s.mockRepo, testCharacterID, s.storedCharacter(), nil)
	s.mockRepo.EXPECT().
		Update(s.ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, input characterrepo.UpdateInput) (*characterrepo.UpdateOutput, error) {
			s.Equal("sage", input.Character.BackgroundID)
			s.Contains(input.Character.Skills, "arcana")
			s.NotContains(input.Character.Skills, "athletics")
			return &characterrepo.UpdateOutput{Character: input.Character}, nil
		})

	out, err := s.orch.Edit(s.ctx, &character.EditInput{
		CharacterID: testCharacterID,
		Op: func(c *entities.Character) (*entities.Character, error) {
			return engine.SetBackground(c, rules.MustDefault(), "sage")
		},
	})

	s.Require().NoError(err)
	s.NotEmpty(out.Corrections)
	s.NotNil(out.Report)
}

func (s *OrchestratorTestSuite) TestEdit_RejectedOpSavesNothing() {
	mocks.ExpectCharacterGet(s.ctx, s.mockRepo, testCharacterID, s.storedCharacter(), nil)

	_, err := s.orch.Edit(s.ctx, &character.EditInput{
		CharacterID: testCharacterID,
		Op: func(c *entities.Character) (*entities.Character, error) {
			return engine.SetClassLevel(c, 0, 21)
		},
	})

	s.True(errors.IsFailedPrecondition(err))
}

func (s *OrchestratorTestSuite) TestEdit_RequiresOp() {
	_, err := s.orch.Edit(s.ctx, &character.EditInput{CharacterID: testCharacterID})
	s.True(errors.IsInvalidArgument(err))
}

func (s *OrchestratorTestSuite) TestValidate_TouchesNoStore() {
	c := testutils.CreateTestCharacter(testPlayerID)
	c.FeatAbilityChoices = map[string]entities.Ability{"Resilient": entities.Wisdom}

	out, err := s.orch.Validate(s.ctx, &character.ValidateInput{Character: c})

	s.Require().NoError(err)
	s.Len(out.Corrections, 1)
	s.Empty(out.Character.FeatAbilityChoices)
	s.Len(c.FeatAbilityChoices, 1, "the caller's character is not modified")
	s.False(out.Report.Blocking())

	_, err = s.orch.Validate(s.ctx, &character.ValidateInput{})
	s.True(errors.IsInvalidArgument(err))
}

func (s *OrchestratorTestSuite) TestSubmit_Blocked() {
	c := testutils.CreateTestCharacter(testPlayerID)
	c.Name = ""
	c.Backstory = "too short"

	out, err := s.orch.Submit(s.ctx, &character.SubmitInput{Character: c})

	s.Nil(out)
	s.True(errors.IsFailedPrecondition(err))
	blocking, ok := errors.GetMeta(err)[character.MetaValidationErrors].([]engine.ValidationError)
	s.Require().True(ok)
	s.Len(blocking, 2)
	for _, e := range blocking {
		s.Equal(engine.PriorityHigh, e.Priority)
	}
}

func (s *OrchestratorTestSuite) TestSubmit_CreatesNewCharacter() {
	c := testutils.CreateTestCharacter(testPlayerID)
	c.Tools = nil // reconciliation restores the soldier's fixed tools
	c.Spells = []string{"fire-bolt"}

	s.mockRepo.EXPECT().
		Create(s.ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, input characterrepo.CreateInput) (*characterrepo.CreateOutput, error) {
			s.Equal([]string{"dice-set", "vehicles-land"}, input.Character.Tools)
			saved := input.Character.Clone()
			saved.ID = testCharacterID
			return &characterrepo.CreateOutput{Character: saved}, nil
		})

	out, err := s.orch.Submit(s.ctx, &character.SubmitInput{Character: c})

	s.Require().NoError(err)
	s.Equal(testCharacterID, out.Character.ID)
	s.Len(out.Report.Errors, 1, "the spell warning does not block")
	s.Nil(c.Tools, "the caller's character is not modified")
	s.Empty(c.ID)
}

func (s *OrchestratorTestSuite) TestSubmit_UpdatesExistingCharacter() {
	mocks.ExpectCharacterUpdate(s.ctx, s.mockRepo)

	out, err := s.orch.Submit(s.ctx, &character.SubmitInput{Character: s.storedCharacter()})

	s.Require().NoError(err)
	s.Equal(testCharacterID, out.Character.ID)
	s.Equal(mocks.Now, out.Character.UpdatedAt)
}

func (s *OrchestratorTestSuite) TestSubmit_StoreFailureKeepsCode() {
	s.mockRepo.EXPECT().
		Create(s.ctx, gomock.Any()).
		Return(nil, errors.Unavailable("redis is down"))

	_, err := s.orch.Submit(s.ctx, &character.SubmitInput{Character: testutils.CreateTestCharacter(testPlayerID)})

	s.True(errors.IsUnavailable(err))
}

func (s *OrchestratorTestSuite) TestSubmit_RequiresCharacter() {
	_, err := s.orch.Submit(s.ctx, &character.SubmitInput{})
	s.True(errors.IsInvalidArgument(err))
}

func (s *OrchestratorTestSuite) TestList() {
	s.Run("all", func() {
		s.mockRepo.EXPECT().
			List(s.ctx, characterrepo.ListInput{}).
			Return(&characterrepo.ListOutput{Characters: []*entities.Character{s.storedCharacter()}}, nil)

		out, err := s.orch.List(s.ctx, &character.ListInput{})
		s.Require().NoError(err)
		s.Len(out.Characters, 1)
	})

	s.Run("by field", func() {
		s.mockRepo.EXPECT().
			ListByField(s.ctx, characterrepo.ListByFieldInput{Field: characterrepo.FieldPlayerID, Value: testPlayerID}).
			Return(&characterrepo.ListOutput{}, nil)

		out, err := s.orch.List(s.ctx, &character.ListInput{Field: characterrepo.FieldPlayerID, Value: testPlayerID})
		s.Require().NoError(err)
		s.Empty(out.Characters)
	})
}

func (s *OrchestratorTestSuite) TestDelete() {
	mocks.ExpectCharacterDelete(s.ctx, s.mockRepo, testCharacterID, nil)

	_, err := s.orch.Delete(s.ctx, &character.DeleteInput{CharacterID: testCharacterID})

	s.Require().NoError(err)
}

func TestOrchestratorTestSuite(t *testing.T) {
	suite.Run(t, new(OrchestratorTestSuite))
}
