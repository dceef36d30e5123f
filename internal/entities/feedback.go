package entities

import "time"

// FeedbackCategory groups feedback for listing
type FeedbackCategory string

// Feedback categories
const (
	FeedbackBug     FeedbackCategory = "bug"
	FeedbackFeature FeedbackCategory = "feature"
	FeedbackGeneral FeedbackCategory = "general"
)

// Valid reports whether c is a known category
func (c FeedbackCategory) Valid() bool {
	switch c {
	case FeedbackBug, FeedbackFeature, FeedbackGeneral:
		return true
	}
	return false
}

// Feedback is a user-submitted note about the builder.
// Upvotes holds the anonymous voter ids that upvoted it.
type Feedback struct {
	ID        string           `json:"id,omitempty"`
	Message   string           `json:"message"`
	Category  FeedbackCategory `json:"category"`
	Upvotes   []string         `json:"upvotes,omitempty"`
	CreatedAt time.Time        `json:"created_at,omitempty"`
	UpdatedAt time.Time        `json:"updated_at,omitempty"`
}

// HasUpvoteFrom reports whether voterID already upvoted
func (f *Feedback) HasUpvoteFrom(voterID string) bool {
	for _, v := range f.Upvotes {
		if v == voterID {
			return true
		}
	}
	return false
}
