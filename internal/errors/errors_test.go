package errors_test

import (
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/suite"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/KirkDiggler/dice-bridge/internal/errors"
)

type ErrorsTestSuite struct {
	suite.Suite
}

func TestErrorsSuite(t *testing.T) {
	suite.Run(t, new(ErrorsTestSuite))
}

func (s *ErrorsTestSuite) TestNewError() {
	err := errors.New(errors.CodeNotFound, "room not found")
	s.Assert().Equal(errors.CodeNotFound, err.Code)
	s.Assert().Equal("room not found", err.Message)
	s.Assert().Equal("NOT_FOUND: room not found", err.Error())
}

func (s *ErrorsTestSuite) TestErrorWithMeta() {
	err := errors.NotFound("room not found").WithMeta("room", "abc")
	s.Assert().Equal("abc", errors.GetMeta(err)["room"])
}

func (s *ErrorsTestSuite) TestWrapPreservesCode() {
	base := errors.Unavailable("engine offline")
	wrapped := errors.Wrap(base, "failed to roll")

	s.Assert().Equal(errors.CodeUnavailable, wrapped.Code)
	s.Assert().True(stderrors.Is(wrapped, base))
	s.Assert().Equal("UNAVAILABLE: failed to roll: UNAVAILABLE: engine offline", wrapped.Error())
}

func (s *ErrorsTestSuite) TestWrapPlainError() {
	wrapped := errors.Wrap(io.EOF, "read failed")
	s.Assert().Equal(errors.CodeInternal, wrapped.Code)
	s.Assert().True(stderrors.Is(wrapped, io.EOF))
}

func (s *ErrorsTestSuite) TestWrapWithCode() {
	wrapped := errors.WrapWithCode(errors.NotFound("x").WithMeta("k", "v"), errors.CodeFailedPrecondition, "no room")
	s.Assert().Equal(errors.CodeFailedPrecondition, wrapped.Code)
	s.Assert().Equal("v", wrapped.Meta["k"])
}

func (s *ErrorsTestSuite) TestWrapNil() {
	s.Assert().Nil(errors.Wrap(nil, "nothing"))
	s.Assert().Nil(errors.WrapWithCode(nil, errors.CodeInternal, "nothing"))
}

func (s *ErrorsTestSuite) TestConstructors() {
	testCases := []struct {
		name string
		err  *errors.Error
		code errors.Code
	}{
		{"NotFound", errors.NotFoundf("room %s", "a"), errors.CodeNotFound},
		{"InvalidArgument", errors.InvalidArgumentf("bad %d", 1), errors.CodeInvalidArgument},
		{"Internal", errors.Internal("boom"), errors.CodeInternal},
		{"Unavailable", errors.Unavailablef("down %d", 2), errors.CodeUnavailable},
		{"Unauthenticated", errors.Unauthenticated("no key"), errors.CodeUnauthenticated},
		{"FailedPrecondition", errors.FailedPreconditionf("no %s", "room"), errors.CodeFailedPrecondition},
		{"DeadlineExceeded", errors.DeadlineExceededf("after %d", 40), errors.CodeDeadlineExceeded},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			s.Assert().Equal(tc.code, tc.err.Code)
		})
	}
}

func (s *ErrorsTestSuite) TestErrorIsMatchesCode() {
	s.Assert().True(stderrors.Is(errors.NotFound("a"), errors.NotFound("b")))
	s.Assert().False(stderrors.Is(errors.NotFound("a"), errors.Internal("a")))
}

func (s *ErrorsTestSuite) TestUserMessage() {
	s.Run("prefers remote message through wrapping", func() {
		remote := errors.Remote(errors.CodeInvalidArgument, "Invalid dice type")
		err := errors.Wrap(errors.Wrap(remote, "failed to create roll"), "dispatch failed")
		s.Assert().Equal("Invalid dice type", errors.UserMessage(err))
	})

	s.Run("falls back to top message", func() {
		err := errors.Wrap(errors.Internal("inner"), "outer")
		s.Assert().Equal("outer", errors.UserMessage(err))
	})

	s.Run("plain error", func() {
		s.Assert().Equal("boom", errors.UserMessage(fmt.Errorf("boom")))
	})

	s.Run("nil", func() {
		s.Assert().Equal("", errors.UserMessage(nil))
	})
}

func (s *ErrorsTestSuite) TestIsConnectionError() {
	testCases := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil", nil, false},
		{"unavailable code", errors.Unavailable("engine"), true},
		{"deadline code", errors.DeadlineExceeded("ready"), true},
		{"wrapped unavailable", errors.Wrap(errors.Unavailable("x"), "y"), true},
		{"network message", fmt.Errorf("Network request failed"), true},
		{"socket message", fmt.Errorf("socket hang up"), true},
		{"eof", io.EOF, true},
		{"validation", errors.InvalidArgument("Invalid dice type"), false},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			s.Assert().Equal(tc.expected, errors.IsConnectionError(tc.err))
		})
	}
}

func (s *ErrorsTestSuite) TestHTTPStatusRoundTrip() {
	testCases := []struct {
		status int
		code   errors.Code
	}{
		{http.StatusBadRequest, errors.CodeInvalidArgument},
		{http.StatusUnauthorized, errors.CodeUnauthenticated},
		{http.StatusNotFound, errors.CodeNotFound},
		{http.StatusServiceUnavailable, errors.CodeUnavailable},
		{http.StatusGatewayTimeout, errors.CodeDeadlineExceeded},
	}

	for _, tc := range testCases {
		s.Run(tc.code.String(), func() {
			s.Assert().Equal(tc.code, errors.CodeFromHTTPStatus(tc.status))
			s.Assert().Equal(tc.status, tc.code.HTTPStatus())
		})
	}

	s.Assert().Equal(errors.CodeInvalidArgument, errors.CodeFromHTTPStatus(http.StatusUnprocessableEntity))
	s.Assert().Equal(errors.CodeInternal, errors.CodeFromHTTPStatus(http.StatusTeapot))
}

func (s *ErrorsTestSuite) TestGRPCConversion() {
	err := errors.Wrap(errors.Remote(errors.CodeNotFound, "Room not found"), "lookup failed")
	grpcErr := errors.ToGRPCError(err)

	st, ok := status.FromError(grpcErr)
	s.Require().True(ok)
	s.Assert().Equal(codes.NotFound, st.Code())
	s.Assert().Equal("Room not found", st.Message())

	back := errors.FromGRPCError(grpcErr)
	s.Assert().True(errors.IsNotFound(back))
	s.Assert().Nil(errors.ToGRPCError(nil))
	s.Assert().Equal(codes.Internal, status.Code(errors.ToGRPCError(fmt.Errorf("plain"))))
}
