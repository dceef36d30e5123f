package errors_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/AnnemeHolzh/DnD-CharacterCreator-sub000/internal/errors"
)

type ErrorsTestSuite struct {
	suite.Suite
}

func TestErrorsSuite(t *testing.T) {
	suite.Run(t, new(ErrorsTestSuite))
}

func (s *ErrorsTestSuite) TestNewError() {
	testCases := []struct {
		name     string
		code     errors.Code
		message  string
		expected string
	}{
		{
			name:     "not found error",
			code:     errors.CodeNotFound,
			message:  "character not found",
			expected: "NOT_FOUND: character not found",
		},
		{
			name:     "failed precondition error",
			code:     errors.CodeFailedPrecondition,
			message:  "no feat slots remaining",
			expected: "FAILED_PRECONDITION: no feat slots remaining",
		},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			err := errors.New(tc.code, tc.message)
			s.Assert().Equal(tc.expected, err.Error())
			s.Assert().Equal(tc.code, err.Code)
			s.Assert().Equal(tc.message, err.Message)
		})
	}
}

func (s *ErrorsTestSuite) TestRejectionsCarryField() {
	rejected := errors.Rejected("skills", "class skill budget of %d already spent", 2)
	s.Assert().Equal(errors.CodeFailedPrecondition, rejected.Code)
	s.Assert().Equal("skills", rejected.Field())
	s.Assert().Equal("class skill budget of 2 already spent", rejected.Message)
	s.Assert().True(errors.IsRejection(rejected))

	invalid := errors.Invalid("abilities.str", "value %d is not part of the standard array", 11)
	s.Assert().Equal(errors.CodeInvalidArgument, invalid.Code)
	s.Assert().Equal("abilities.str", errors.GetField(invalid))
	s.Assert().True(errors.IsRejection(invalid))

	s.Assert().False(errors.IsRejection(errors.NotFound("race not found")))
	s.Assert().Equal("", errors.GetField(fmt.Errorf("plain")))
}

func (s *ErrorsTestSuite) TestWrap() {
	baseErr := fmt.Errorf("connection refused")
	wrapped := errors.Wrap(baseErr, "failed to save character")

	s.Assert().Equal(errors.CodeInternal, wrapped.Code)
	s.Assert().Equal("failed to save character", wrapped.Message)
	s.Assert().Equal(baseErr, wrapped.Unwrap())
}

func (s *ErrorsTestSuite) TestWrapPreservesCode() {
	original := errors.Unavailable("record store unreachable").WithMeta(errors.MetaCollection, "characters")
	wrapped := errors.Wrapf(original, "failed to save %s", "character")

	s.Assert().Equal(errors.CodeUnavailable, wrapped.Code)
	s.Assert().Equal("characters", wrapped.Meta[errors.MetaCollection])
	s.Assert().True(errors.IsUnavailable(wrapped))
}

func (s *ErrorsTestSuite) TestWrapWithCode() {
	original := errors.NotFound("record missing").WithMeta("id", "c1")
	wrapped := errors.WrapWithCode(original, errors.CodeFailedPrecondition, "cannot update")

	s.Assert().Equal(errors.CodeFailedPrecondition, wrapped.Code)
	s.Assert().Equal("c1", wrapped.Meta["id"])
	s.Assert().Equal(original, wrapped.Unwrap())
}

func (s *ErrorsTestSuite) TestWrapNil() {
	s.Assert().Nil(errors.Wrap(nil, "nothing"))
	s.Assert().Nil(errors.WrapWithCode(nil, errors.CodeInternal, "nothing"))
}

func (s *ErrorsTestSuite) TestErrorIs() {
	err1 := errors.NotFound("character a")
	err2 := errors.NotFound("character b")
	err3 := errors.InvalidArgument("bad id")

	s.Assert().True(errors.Is(err1, err2))
	s.Assert().False(errors.Is(err1, err3))
}

func (s *ErrorsTestSuite) TestGetters() {
	s.Assert().Equal(errors.CodeOK, errors.GetCode(nil))
	s.Assert().Equal(errors.CodeInternal, errors.GetCode(fmt.Errorf("plain")))
	s.Assert().Nil(errors.GetMeta(fmt.Errorf("plain")))
	s.Assert().Equal("", errors.GetMessage(nil))
	s.Assert().Equal("plain", errors.GetMessage(fmt.Errorf("plain")))
	s.Assert().Equal("shown", errors.GetMessage(errors.Internal("shown")))
}

func (s *ErrorsTestSuite) TestExitCode() {
	testCases := []struct {
		code     errors.Code
		expected int
	}{
		{errors.CodeOK, 0},
		{errors.CodeInvalidArgument, 2},
		{errors.CodeOutOfRange, 2},
		{errors.CodeFailedPrecondition, 3},
		{errors.CodeAlreadyExists, 3},
		{errors.CodeNotFound, 4},
		{errors.CodeUnavailable, 5},
		{errors.CodeInternal, 1},
	}

	for _, tc := range testCases {
		s.Run(tc.code.String(), func() {
			s.Assert().Equal(tc.expected, tc.code.ExitCode())
		})
	}
}
