package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"regexp"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	idmodels "ishemalink/internal/identity/models"
	"ishemalink/internal/otp/service/mocks"
	"ishemalink/internal/otp/store"
	id "ishemalink/pkg/domain"
	dErrors "ishemalink/pkg/domain-errors"
	"ishemalink/pkg/platform/audit"
)

var sixDigits = regexp.MustCompile(`^\d{6}$`)

type OTPServiceSuite struct {
	suite.Suite
	ctrl     *gomock.Controller
	users    *mocks.MockUserLookup
	notifier *mocks.MockNotifier
	auditor  *mocks.MockAuditPublisher
	store    *store.InMemory
	user     *idmodels.User
	ctx      context.Context
}

func TestOTPServiceSuite(t *testing.T) {
	suite.Run(t, new(OTPServiceSuite))
}

func (s *OTPServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.users = mocks.NewMockUserLookup(s.ctrl)
	s.notifier = mocks.NewMockNotifier(s.ctrl)
	s.auditor = mocks.NewMockAuditPublisher(s.ctrl)
	s.store = store.NewInMemory()
	s.user = &idmodels.User{ID: id.UserID(uuid.New()), Phone: "+250788123456"}
	s.ctx = context.Background()
	s.users.EXPECT().Get(gomock.Any(), s.user.ID).Return(s.user, nil).AnyTimes()
}

func (s *OTPServiceSuite) newService(opts ...Option) *Service {
	opts = append([]Option{WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))}, opts...)
	return New(s.store, s.users, s.notifier, s.auditor, opts...)
}

func (s *OTPServiceSuite) TestRequestThenVerify() {
	svc := s.newService()
	var sent string
	s.notifier.EXPECT().Send(gomock.Any(), "+250788123456", gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, msg string) error {
			sent = msg
			return nil
		})
	s.auditor.EXPECT().Record(gomock.Any(), &s.user.ID, audit.ActionOTPRequested, "").Return(nil)

	code, err := svc.RequestChallenge(s.ctx, s.user.ID)
	s.Require().NoError(err)
	s.Regexp(sixDigits, code)
	s.Contains(sent, code)

	ok, err := svc.VerifyChallenge(s.ctx, s.user.ID, "not-it")
	s.Require().NoError(err)
	s.False(ok)

	s.auditor.EXPECT().Record(gomock.Any(), &s.user.ID, audit.ActionOTPVerified, "").Return(nil)
	ok, err = svc.VerifyChallenge(s.ctx, s.user.ID, code)
	s.Require().NoError(err)
	s.True(ok)

	ok, err = svc.VerifyChallenge(s.ctx, s.user.ID, code)
	s.Require().NoError(err)
	s.False(ok, "a code verifies once")
}

func (s *OTPServiceSuite) TestNotifierFailureStillIssuesChallenge() {
	svc := s.newService()
	s.notifier.EXPECT().Send(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("gateway down"))
	s.auditor.EXPECT().Record(gomock.Any(), gomock.Any(), audit.ActionOTPRequested, gomock.Any()).Return(nil)

	code, err := svc.RequestChallenge(s.ctx, s.user.ID)
	s.Require().NoError(err)

	s.auditor.EXPECT().Record(gomock.Any(), gomock.Any(), audit.ActionOTPVerified, gomock.Any()).Return(nil)
	ok, err := svc.VerifyChallenge(s.ctx, s.user.ID, code)
	s.Require().NoError(err)
	s.True(ok)
}

func (s *OTPServiceSuite) TestNewRequestReplacesOldCode() {
	svc := s.newService()
	s.notifier.EXPECT().Send(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).Times(2)
	s.auditor.EXPECT().Record(gomock.Any(), gomock.Any(), audit.ActionOTPRequested, gomock.Any()).Return(nil).Times(2)

	first, err := svc.RequestChallenge(s.ctx, s.user.ID)
	s.Require().NoError(err)
	second, err := svc.RequestChallenge(s.ctx, s.user.ID)
	s.Require().NoError(err)

	if first != second {
		ok, err := svc.VerifyChallenge(s.ctx, s.user.ID, first)
		s.Require().NoError(err)
		s.False(ok)
	}
	s.auditor.EXPECT().Record(gomock.Any(), gomock.Any(), audit.ActionOTPVerified, gomock.Any()).Return(nil)
	ok, err := svc.VerifyChallenge(s.ctx, s.user.ID, second)
	s.Require().NoError(err)
	s.True(ok)
}

func (s *OTPServiceSuite) TestAttemptCap() {
	svc := s.newService(WithMaxAttempts(2))
	s.notifier.EXPECT().Send(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
	s.auditor.EXPECT().Record(gomock.Any(), gomock.Any(), audit.ActionOTPRequested, gomock.Any()).Return(nil)
	code, err := svc.RequestChallenge(s.ctx, s.user.ID)
	s.Require().NoError(err)

	wrong := "000000"
	if code == wrong {
		wrong = "111111"
	}
	for i := 0; i < 2; i++ {
		ok, err := svc.VerifyChallenge(s.ctx, s.user.ID, wrong)
		s.Require().NoError(err)
		s.False(ok)
	}
	_, err = svc.VerifyChallenge(s.ctx, s.user.ID, code)
	s.True(dErrors.HasCode(err, dErrors.CodeRateLimited))
}

func (s *OTPServiceSuite) TestUnknownUser() {
	lookup := mocks.NewMockUserLookup(s.ctrl)
	lookup.EXPECT().Get(gomock.Any(), gomock.Any()).Return(nil, dErrors.New(dErrors.CodeNotFound, "user not found"))
	svc := New(s.store, lookup, s.notifier, s.auditor)

	_, err := svc.RequestChallenge(s.ctx, id.UserID(uuid.New()))
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func TestGenerateCodeFormat(t *testing.T) {
	for i := 0; i < 200; i++ {
		code, err := generateCode()
		if err != nil {
			t.Fatal(err)
		}
		if !sixDigits.MatchString(code) {
			t.Fatalf("code %q is not six digits", code)
		}
	}
}
