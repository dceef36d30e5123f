package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/AnnemeHolzh/DnD-CharacterCreator-sub000/internal/entities"
	"github.com/AnnemeHolzh/DnD-CharacterCreator-sub000/internal/errors"
	"github.com/AnnemeHolzh/DnD-CharacterCreator-sub000/internal/testutils"
)

type CLITestSuite struct {
	suite.Suite
	dir string
}

func (s *CLITestSuite) SetupTest() {
	s.dir = s.T().TempDir()
	s.T().Setenv("CHARBUILDER_STORE_BACKEND", "sqlite")
	s.T().Setenv("CHARBUILDER_STORE_SQLITE_PATH", filepath.Join(s.dir, "charbuilder.db"))
	s.T().Setenv("CHARBUILDER_LOGGING_LEVEL", "error")
}

func (s *CLITestSuite) run(args ...string) (string, error) {
	var stdout, stderr bytes.Buffer
	err := run(context.Background(), args, &stdout, &stderr)
	return stdout.String(), err
}

func (s *CLITestSuite) writeCharacter(name string, c *entities.Character) string {
	data, err := json.Marshal(c)
	s.Require().NoError(err)
	path := filepath.Join(s.dir, name)
	s.Require().NoError(os.WriteFile(path, data, 0o600))
	return path
}

func (s *CLITestSuite) save(c *entities.Character) string {
	out, err := s.run("characters", "save", s.writeCharacter("save.json", c))
	s.Require().NoError(err)
	_, id, ok := strings.Cut(out, "✅ Saved ")
	s.Require().True(ok, out)
	return strings.TrimSpace(id)
}

func (s *CLITestSuite) TestValidate_Clean() {
	path := s.writeCharacter("valid.json", testutils.CreateTestCharacter("player-1"))

	out, err := s.run("validate", path)

	s.Require().NoError(err)
	s.Contains(out, "No validation errors")
}

func (s *CLITestSuite) TestValidate_BlockingExitsOne() {
	c := testutils.CreateTestCharacter("player-1")
	c.Name = ""
	path := s.writeCharacter("blocking.json", c)

	out, err := s.run("validate", path)

	s.Require().Error(err)
	s.Equal(1, exitCode(err))
	s.Contains(out, "Name is required")
	s.Contains(out, "blocking")
}

func (s *CLITestSuite) TestValidate_PrintsCorrections() {
	c := testutils.CreateTestCharacter("player-1")
	c.FeatAbilityChoices = map[string]entities.Ability{"Resilient": entities.Wisdom}
	path := s.writeCharacter("stale.json", c)

	out, err := s.run("validate", "--json", path)

	s.Require().NoError(err)
	var result struct {
		Corrections []struct {
			Kind string `json:"kind"`
		} `json:"corrections"`
	}
	s.Require().NoError(json.Unmarshal([]byte(out), &result))
	s.Require().Len(result.Corrections, 1)
	s.Equal("feat-choice-dropped", result.Corrections[0].Kind)
}

func (s *CLITestSuite) TestValidate_MissingFile() {
	_, err := s.run("validate", filepath.Join(s.dir, "absent.json"))

	s.Require().Error(err)
	s.Equal(4, exitCode(err))
}

func (s *CLITestSuite) TestCharacters_Lifecycle() {
	id := s.save(testutils.CreateTestCharacter("player-1"))

	out, err := s.run("characters", "list", "--where", "player_id=player-1")
	s.Require().NoError(err)
	s.Contains(out, id)
	s.Contains(out, testutils.TestCharacterName)

	out, err = s.run("characters", "edit", id, "name", "Dain", "Ironfoot")
	s.Require().NoError(err)
	s.Contains(out, "Dain Ironfoot")

	out, err = s.run("characters", "get", id)
	s.Require().NoError(err)
	s.Contains(out, "Dain Ironfoot")
	s.Contains(out, "STR 16")

	_, err = s.run("characters", "delete", id)
	s.Require().NoError(err)

	_, err = s.run("characters", "get", id)
	s.Require().Error(err)
	s.True(errors.IsNotFound(err))
	s.Equal(4, exitCode(err))
}

func (s *CLITestSuite) TestCharacters_SaveRejectsBlockingBuild() {
	c := testutils.CreateTestCharacter("player-1")
	c.RaceID = ""

	out, err := s.run("characters", "save", s.writeCharacter("norace.json", c))

	s.Require().Error(err)
	s.True(errors.IsFailedPrecondition(err))
	s.Equal(3, exitCode(err))
	s.Contains(out, "Choose a race")

	out, err = s.run("characters", "list")
	s.Require().NoError(err)
	s.Contains(out, "No characters found")
}

func (s *CLITestSuite) TestCharacters_RejectedEditKeepsStoredBuild() {
	id := s.save(testutils.CreateTestCharacter("player-1"))

	_, err := s.run("characters", "edit", id, "level", "0", "21")
	s.Require().Error(err)
	s.True(errors.IsFailedPrecondition(err))

	out, err := s.run("characters", "get", id, "--json")
	s.Require().NoError(err)
	s.Contains(out, `"level": 1`)
}

func (s *CLITestSuite) TestCharacters_NewAndRollPool() {
	out, err := s.run("characters", "new", "--player", "player-2", "--name", "Rolled")
	s.Require().NoError(err)
	_, id, ok := strings.Cut(out, "Draft created: ")
	s.Require().True(ok)
	id = strings.TrimSpace(id)

	_, err = s.run("characters", "edit", id, "method", "roll")
	s.Require().NoError(err)
	_, err = s.run("characters", "edit", id, "roll-pool")
	s.Require().NoError(err)

	out, err = s.run("characters", "get", id, "--json")
	s.Require().NoError(err)
	var ev struct {
		Character entities.Character `json:"character"`
	}
	s.Require().NoError(json.Unmarshal([]byte(out), &ev))
	s.Len(ev.Character.AbilityScores.Rolls, 6)
}

func (s *CLITestSuite) TestCharacters_ListRejectsBadFilter() {
	_, err := s.run("characters", "list", "--where", "name=Thorin")
	s.Require().Error(err)
	s.True(errors.IsInvalidArgument(err))

	_, err = s.run("characters", "list", "--where", "player_id")
	s.Require().Error(err)
	s.Equal(2, exitCode(err))
}

func (s *CLITestSuite) TestFeedback_SubmitListUpvote() {
	out, err := s.run("feedback", "submit", "Add more subclasses", "--category", "feature")
	s.Require().NoError(err)
	fields := strings.Fields(out)
	s.Require().GreaterOrEqual(len(fields), 3)
	id := fields[2]

	_, err = s.run("feedback", "upvote", id, "--voter", "voter_a")
	s.Require().NoError(err)

	_, err = s.run("feedback", "upvote", id, "--voter", "voter_a")
	s.Require().Error(err)
	s.True(errors.IsAlreadyExists(err))

	out, err = s.run("feedback", "list", "--category", "feature")
	s.Require().NoError(err)
	s.Contains(out, "▲1")
	s.Contains(out, "Add more subclasses")
}

func (s *CLITestSuite) TestRoll() {
	out, err := s.run("roll", "2d6")
	s.Require().NoError(err)
	s.Contains(out, "2d6")

	out, err = s.run("roll", "--method", "3d6")
	s.Require().NoError(err)
	s.Equal(7, strings.Count(out, "\n"), out)

	_, err = s.run("roll", "d6")
	s.True(errors.IsInvalidArgument(err))
}

func (s *CLITestSuite) TestCatalog_LanguagesNeedNoNetwork() {
	out, err := s.run("catalog", "list", "languages")
	s.Require().NoError(err)
	s.Contains(out, "Deep Speech")

	out, err = s.run("catalog", "show", "elvish")
	s.Require().NoError(err)
	s.Contains(out, "Elvish (languages)")

	_, err = s.run("catalog", "list", "potions")
	s.True(errors.IsInvalidArgument(err))
}

func (s *CLITestSuite) TestConfigErrors() {
	_, err := s.run("--store", "postgres", "roll")
	s.Require().Error(err)
	s.True(errors.IsInvalidArgument(err))

	_, err = s.run("--config", filepath.Join(s.dir, "absent.yaml"), "roll")
	s.Require().Error(err)
	s.Equal(2, exitCode(err))
}

func (s *CLITestSuite) TestStoreCheck_Clean() {
	s.save(testutils.CreateTestCharacter("player-1"))
	_, err := s.run("feedback", "submit", "More subclasses please")
	s.Require().NoError(err)

	out, err := s.run("store", "check")

	s.Require().NoError(err)
	s.Contains(out, "characters: 1 checked, 0 corrupt")
	s.Contains(out, "feedback: 1 checked, 0 corrupt")
	s.Contains(out, "Store is clean")
}

func (s *CLITestSuite) TestCharacters_ASIAndFeatEdits() {
	id := s.save(testutils.CreateTestCharacter("player-1"))

	_, err := s.run("characters", "edit", id, "level", "0", "4")
	s.Require().NoError(err)
	_, err = s.run("characters", "edit", id, "asi", "double", "str", "con")
	s.Require().NoError(err)

	out, err := s.run("characters", "get", id)
	s.Require().NoError(err)
	s.Contains(out, "STR 18")

	_, err = s.run("characters", "edit", id, "asi", "single", "dex")
	s.Require().Error(err)
	s.True(errors.IsFailedPrecondition(err), "no slot left")

	_, err = s.run("characters", "edit", id, "remove-asi", "0")
	s.Require().NoError(err)
	out, err = s.run("characters", "get", id)
	s.Require().NoError(err)
	s.Contains(out, "STR 16")

	_, err = s.run("characters", "edit", id, "remove-feat", "Durable")
	s.Require().Error(err)
	s.True(errors.IsNotFound(err))

	_, err = s.run("characters", "edit", id, "flexible", "str", "dex")
	s.Require().Error(err)
	s.True(errors.IsFailedPrecondition(err), "humans have no flexible bonuses")
}

func (s *CLITestSuite) TestCharacters_GearEditsWithoutCatalog() {
	id := s.save(testutils.CreateTestCharacter("player-1"))

	for _, args := range [][]string{
		{"shield", "none"},
		{"armor", "none"},
		{"item", "rope-hempen-50-feet"},
		{"remove-item", "rope-hempen-50-feet"},
	} {
		_, err := s.run(append([]string{"characters", "edit", id}, args...)...)
		s.Require().NoError(err, args)
	}

	_, err := s.run("characters", "edit", id, "remove-weapon", "club")
	s.Require().Error(err)
	s.True(errors.IsNotFound(err))
}

func (s *CLITestSuite) TestUnknownEdit() {
	id := s.save(testutils.CreateTestCharacter("player-1"))

	_, err := s.run("characters", "edit", id, "teleport")

	s.Require().Error(err)
	s.True(errors.IsInvalidArgument(err))
}

func TestCLITestSuite(t *testing.T) {
	suite.Run(t, new(CLITestSuite))
}
