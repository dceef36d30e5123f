package feedback_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/AnnemeHolzh/DnD-CharacterCreator-sub000/internal/entities"
	"github.com/AnnemeHolzh/DnD-CharacterCreator-sub000/internal/errors"
	"github.com/AnnemeHolzh/DnD-CharacterCreator-sub000/internal/pkg/clock"
	"github.com/AnnemeHolzh/DnD-CharacterCreator-sub000/internal/pkg/idgen"
	"github.com/AnnemeHolzh/DnD-CharacterCreator-sub000/internal/repositories/feedback"
	"github.com/AnnemeHolzh/DnD-CharacterCreator-sub000/internal/repositories/records"
)

type RepositoryTestSuite struct {
	suite.Suite
	store *records.SQLiteStore
	clock *clock.Fixed
	repo  feedback.Repository
	ctx   context.Context
}

func (s *RepositoryTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.clock = clock.NewFixed(time.Date(2024, 5, 4, 0, 0, 0, 0, time.UTC))

	store, err := records.OpenSQLite(s.ctx, &records.SQLiteConfig{
		Path:  ":memory:",
		Clock: s.clock,
		IDGen: idgen.NewSequential("fb"),
	})
	s.Require().NoError(err)
	s.store = store

	s.repo, err = feedback.New(&feedback.Config{Store: store})
	s.Require().NoError(err)
}

func (s *RepositoryTestSuite) TearDownTest() {
	s.Require().NoError(s.store.Close())
}

func (s *RepositoryTestSuite) submit(message string, category entities.FeedbackCategory) *entities.Feedback {
	out, err := s.repo.Create(s.ctx, feedback.CreateInput{
		Feedback: &entities.Feedback{Message: message, Category: category},
	})
	s.Require().NoError(err)
	s.clock.Advance(time.Second)
	return out.Feedback
}

func (s *RepositoryTestSuite) TestCreateAndGet() {
	created := s.submit("the point-buy counter is confusing", entities.FeedbackGeneral)
	s.Equal("fb_1", created.ID)

	got, err := s.repo.Get(s.ctx, feedback.GetInput{ID: created.ID})

	s.Require().NoError(err)
	s.Equal("the point-buy counter is confusing", got.Feedback.Message)
	s.Equal(entities.FeedbackGeneral, got.Feedback.Category)
	s.True(got.Feedback.CreatedAt.Equal(created.CreatedAt))
}

func (s *RepositoryTestSuite) TestUpdateKeepsUpvotes() {
	created := s.submit("add warforged", entities.FeedbackFeature)
	created.Upvotes = append(created.Upvotes, "voter-1")

	_, err := s.repo.Update(s.ctx, feedback.UpdateInput{Feedback: created})
	s.Require().NoError(err)

	got, err := s.repo.Get(s.ctx, feedback.GetInput{ID: created.ID})
	s.Require().NoError(err)
	s.Equal([]string{"voter-1"}, got.Feedback.Upvotes)
}

func (s *RepositoryTestSuite) TestListByCategory() {
	s.submit("crash on save", entities.FeedbackBug)
	s.submit("dark mode", entities.FeedbackFeature)
	s.submit("tooltip typo", entities.FeedbackBug)

	bugs, err := s.repo.ListByCategory(s.ctx, feedback.ListByCategoryInput{Category: entities.FeedbackBug})
	s.Require().NoError(err)
	s.Require().Len(bugs.Feedback, 2)
	s.Equal("crash on save", bugs.Feedback[0].Message)
	s.Equal("tooltip typo", bugs.Feedback[1].Message)

	all, err := s.repo.List(s.ctx, feedback.ListInput{})
	s.Require().NoError(err)
	s.Len(all.Feedback, 3)

	_, err = s.repo.ListByCategory(s.ctx, feedback.ListByCategoryInput{Category: "praise"})
	s.True(errors.IsInvalidArgument(err))
}

func (s *RepositoryTestSuite) TestGetMissing() {
	_, err := s.repo.Get(s.ctx, feedback.GetInput{ID: "fb_404"})
	s.True(errors.IsNotFound(err))

	_, err = s.repo.Get(s.ctx, feedback.GetInput{})
	s.True(errors.IsInvalidArgument(err))
}

func TestRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(RepositoryTestSuite))
}
