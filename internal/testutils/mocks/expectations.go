// Package mocks provides mock expectation helpers for common testing patterns
package mocks

import (
	"context"
	"time"

	"go.uber.org/mock/gomock"

	"github.com/AnnemeHolzh/DnD-CharacterCreator-sub000/internal/entities"
	characterrepo "github.com/AnnemeHolzh/DnD-CharacterCreator-sub000/internal/repositories/character"
	charactermock "github.com/AnnemeHolzh/DnD-CharacterCreator-sub000/internal/repositories/character/mock"
	feedbackrepo "github.com/AnnemeHolzh/DnD-CharacterCreator-sub000/internal/repositories/feedback"
	feedbackmock "github.com/AnnemeHolzh/DnD-CharacterCreator-sub000/internal/repositories/feedback/mock"
)

// GeneratedCharacterID is the ID ExpectCharacterCreate assigns
const GeneratedCharacterID = "generated-character-id"

// Now is the instant the create and update helpers stamp records with
var Now = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

// ExpectCharacterGet sets up a mock expectation for getting a character from repository
func ExpectCharacterGet(
	ctx context.Context, mockRepo *charactermock.MockRepository,
	characterID string, character *entities.Character, err error,
) *gomock.Call {
	if err != nil {
		return mockRepo.EXPECT().
			Get(ctx, characterrepo.GetInput{ID: characterID}).
			Return(nil, err)
	}
	return mockRepo.EXPECT().
		Get(ctx, characterrepo.GetInput{ID: characterID}).
		Return(&characterrepo.GetOutput{Character: character}, nil)
}

// ExpectCharacterCreate simulates the store assigning an ID and timestamps
func ExpectCharacterCreate(ctx context.Context, mockRepo *charactermock.MockRepository) *gomock.Call {
	return mockRepo.EXPECT().
		Create(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, input characterrepo.CreateInput) (*characterrepo.CreateOutput, error) {
			stored := input.Character.Clone()
			stored.ID = GeneratedCharacterID
			stored.CreatedAt = Now
			stored.UpdatedAt = Now
			return &characterrepo.CreateOutput{Character: stored}, nil
		})
}

// ExpectCharacterUpdate echoes the update back with a fresh UpdatedAt
func ExpectCharacterUpdate(ctx context.Context, mockRepo *charactermock.MockRepository) *gomock.Call {
	return mockRepo.EXPECT().
		Update(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, input characterrepo.UpdateInput) (*characterrepo.UpdateOutput, error) {
			stored := input.Character.Clone()
			stored.UpdatedAt = Now
			return &characterrepo.UpdateOutput{Character: stored}, nil
		})
}

// ExpectCharacterDelete sets up a mock expectation for deleting a character
func ExpectCharacterDelete(ctx context.Context, mockRepo *charactermock.MockRepository, characterID string, err error) {
	mockRepo.EXPECT().
		Delete(ctx, characterrepo.DeleteInput{ID: characterID}).
		Return(&characterrepo.DeleteOutput{}, err)
}

// ExpectFeedbackGet sets up a mock expectation for getting feedback from repository
func ExpectFeedbackGet(
	ctx context.Context, mockRepo *feedbackmock.MockRepository,
	feedbackID string, feedback *entities.Feedback, err error,
) *gomock.Call {
	if err != nil {
		return mockRepo.EXPECT().
			Get(ctx, feedbackrepo.GetInput{ID: feedbackID}).
			Return(nil, err)
	}
	return mockRepo.EXPECT().
		Get(ctx, feedbackrepo.GetInput{ID: feedbackID}).
		Return(&feedbackrepo.GetOutput{Feedback: feedback}, nil)
}
