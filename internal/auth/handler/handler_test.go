package handler

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"ishemalink/internal/auth/handler/mocks"
	"ishemalink/internal/auth/models"
	idmodels "ishemalink/internal/identity/models"
	"ishemalink/internal/platform/middleware"
	id "ishemalink/pkg/domain"
	dErrors "ishemalink/pkg/domain-errors"
	"ishemalink/pkg/requestcontext"
	"ishemalink/pkg/testutil"
)

type AuthHandlerSuite struct {
	suite.Suite
	service *mocks.MockService
	auth    *testutil.StaticAuthenticator
	router  chi.Router
	caller  requestcontext.Caller
}

func TestAuthHandlerSuite(t *testing.T) {
	suite.Run(t, new(AuthHandlerSuite))
}

func (s *AuthHandlerSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	s.service = mocks.NewMockService(ctrl)
	s.caller = testutil.NewCaller(id.RoleCustomer)
	s.auth = testutil.NewStaticAuthenticator(map[string]requestcontext.Caller{"good": s.caller})
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.router = chi.NewRouter()
	New(s.service, s.auth, logger, WithSecureCookie(true)).Register(s.router)
}

func (s *AuthHandlerSuite) sessionCookie(rr *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rr.Result().Cookies() {
		if c.Name == middleware.SessionCookieName {
			return c
		}
	}
	return nil
}

func (s *AuthHandlerSuite) TestLoginSession() {
	s.Run("sets an http-only session cookie", func() {
		user := &idmodels.User{ID: id.UserID(uuid.New()), Role: id.RoleDriver}
		s.service.EXPECT().LoginSession(gomock.Any(), &models.LoginRequest{Username: "+250788123456", Password: "pw-123456"}).
			Return(&models.Session{Key: "opaque-key", DeviceLabel: "Chrome on Linux", ExpiresAt: time.Now().Add(time.Hour)}, user, nil)

		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/api/auth/login/session", map[string]string{
			"username": " +250788123456 ", "password": "pw-123456",
		})
		rr := testutil.DoRequest(s.router, req)

		testutil.AssertStatus(s.T(), rr, http.StatusOK)
		cookie := s.sessionCookie(rr)
		s.Require().NotNil(cookie)
		s.Equal("opaque-key", cookie.Value)
		s.True(cookie.HttpOnly)
		s.True(cookie.Secure)
		body := testutil.UnmarshalResponse[map[string]any](s.T(), rr)
		s.Equal("DRIVER", (*body)["role"])
		s.NotContains(*body, "key")
	})

	s.Run("missing fields are a validation error", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/api/auth/login/session", map[string]string{})
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatus(s.T(), rr, http.StatusBadRequest)
		body := testutil.UnmarshalErrorResponse(s.T(), rr)
		s.Contains(body.Fields, "username")
		s.Contains(body.Fields, "password")
	})

	s.Run("bad credentials are 401 with a generic message", func() {
		s.service.EXPECT().LoginSession(gomock.Any(), gomock.Any()).
			Return(nil, nil, dErrors.New(dErrors.CodeUnauthorized, "invalid credentials"))
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/api/auth/login/session", map[string]string{
			"username": "+250788000000", "password": "whatever1",
		})
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatus(s.T(), rr, http.StatusUnauthorized)
		s.Nil(s.sessionCookie(rr))
	})
}

func (s *AuthHandlerSuite) TestTokenEndpoints() {
	s.Run("obtain returns the pair", func() {
		s.service.EXPECT().ObtainTokens(gomock.Any(), gomock.Any()).
			Return(&models.TokenPair{Access: "a", Refresh: "r"}, nil)
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/api/auth/token/obtain", map[string]string{
			"username": "+250788123456", "password": "pw-123456",
		})
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatus(s.T(), rr, http.StatusOK)
		body := testutil.UnmarshalResponse[map[string]any](s.T(), rr)
		s.Equal("a", (*body)["access"])
		s.Equal("r", (*body)["refresh"])
	})

	s.Run("refresh requires the token", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/api/auth/token/refresh", map[string]string{})
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatus(s.T(), rr, http.StatusBadRequest)
	})

	s.Run("revoked refresh is 401", func() {
		s.service.EXPECT().Refresh(gomock.Any(), &models.RefreshRequest{Refresh: "old"}).
			Return(nil, dErrors.New(dErrors.CodeUnauthorized, "token has been revoked"))
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/api/auth/token/refresh", map[string]string{"refresh": "old"})
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatus(s.T(), rr, http.StatusUnauthorized)
	})
}

func (s *AuthHandlerSuite) TestThrottleWrapsCredentialRoutes() {
	blocked := func(http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		})
	}
	router := chi.NewRouter()
	New(s.service, s.auth, slog.New(slog.NewTextHandler(io.Discard, nil)), WithThrottle(blocked)).Register(router)

	for _, path := range []string{"/api/auth/login/session", "/api/auth/token/obtain"} {
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, path, map[string]string{"username": "u", "password": "p"})
		rr := testutil.DoRequest(router, req)
		s.Equal(http.StatusTooManyRequests, rr.Code, path)
	}
}

func (s *AuthHandlerSuite) TestLogout() {
	s.Run("requires authentication", func() {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatus(s.T(), rr, http.StatusUnauthorized)
	})

	s.Run("jwt logout revokes the body refresh token", func() {
		s.service.EXPECT().Logout(gomock.Any(), s.caller, "", "refresh-token").Return(nil)
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/api/auth/logout", map[string]string{"refresh": "refresh-token"})
		rr := testutil.DoRequest(s.router, testutil.Bearer(req, "good"))
		testutil.AssertStatus(s.T(), rr, http.StatusOK)
	})

	s.Run("session logout deletes the session and clears the cookie", func() {
		sessCaller := s.caller
		sessCaller.AuthMethod = requestcontext.AuthMethodSession
		s.auth.Sessions["cookie-key"] = sessCaller
		s.service.EXPECT().Logout(gomock.Any(), sessCaller, "cookie-key", "").Return(nil)

		req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
		req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: "cookie-key"})
		rr := testutil.DoRequest(s.router, req)

		testutil.AssertStatus(s.T(), rr, http.StatusOK)
		cookie := s.sessionCookie(rr)
		s.Require().NotNil(cookie)
		s.Empty(cookie.Value)
		s.Negative(cookie.MaxAge)
	})
}

func (s *AuthHandlerSuite) TestLogoutWithBearerEndsPresentedSession() {
	s.service.EXPECT().Logout(gomock.Any(), s.caller, "cookie-key", "").Return(nil)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: "cookie-key"})
	rr := testutil.DoRequest(s.router, testutil.Bearer(req, "good"))

	testutil.AssertStatus(s.T(), rr, http.StatusOK)
	cookie := s.sessionCookie(rr)
	s.Require().NotNil(cookie)
	s.Negative(cookie.MaxAge)
}

func (s *AuthHandlerSuite) TestWhoAmI() {
	s.service.EXPECT().WhoAmI(gomock.Any(), s.caller).Return(&models.WhoAmI{
		ID: s.caller.UserID.String(), Role: id.RoleCustomer, AuthMethod: "JWT",
	}, nil)
	req := httptest.NewRequest(http.MethodGet, "/api/auth/whoami", nil)
	rr := testutil.DoRequest(s.router, testutil.Bearer(req, "good"))
	testutil.AssertStatus(s.T(), rr, http.StatusOK)
	body := testutil.UnmarshalResponse[map[string]any](s.T(), rr)
	s.Equal("JWT", (*body)["auth_method"])
	s.Equal("CUSTOMER", (*body)["role"])
}
