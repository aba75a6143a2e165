package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"ishemalink/internal/auth/device"
	"ishemalink/internal/auth/models"
	"ishemalink/internal/auth/store/revocation"
	"ishemalink/internal/auth/store/session"
	"ishemalink/internal/auth/token"
	idmodels "ishemalink/internal/identity/models"
	id "ishemalink/pkg/domain"
	dErrors "ishemalink/pkg/domain-errors"
	"ishemalink/pkg/platform/audit"
	"ishemalink/pkg/platform/sentinel"
	"ishemalink/pkg/requestcontext"
)

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks UserService,SessionStore,RevocationList,AuditPublisher
type UserService interface {
	CheckCredentials(ctx context.Context, username, password string) (*idmodels.User, error)
	Get(ctx context.Context, userID id.UserID) (*idmodels.User, error)
}

type SessionStore interface {
	Create(ctx context.Context, session *models.Session) error
	FindByKey(ctx context.Context, key string, now time.Time) (*models.Session, error)
	Touch(ctx context.Context, key string, seenAt time.Time) error
	Delete(ctx context.Context, key string) error
}

// RevocationList holds the jti of every logged-out token until it would have expired anyway.
type RevocationList interface {
	RevokeToken(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

type AuditPublisher interface {
	Record(ctx context.Context, actor *id.UserID, action audit.Action, detail string) error
}

// Service authenticates callers by JWT or session cookie and manages the
// login, token and logout flows.
type Service struct {
	users      UserService
	sessions   SessionStore
	trl        RevocationList
	tokens     *token.Service
	auditor    AuditPublisher
	device     *device.Service
	sessionTTL time.Duration
	logger     *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithSessionTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.sessionTTL = ttl
		}
	}
}

// WithDeviceBinding stores a User-Agent fingerprint on new sessions and logs
// when a later request presents a different one.
func WithDeviceBinding(enabled bool) Option {
	return func(s *Service) {
		s.device = device.NewService(enabled)
	}
}

func New(users UserService, sessions SessionStore, trl RevocationList, tokens *token.Service, auditor AuditPublisher, opts ...Option) *Service {
	s := &Service{
		users:      users,
		sessions:   sessions,
		trl:        trl,
		tokens:     tokens,
		auditor:    auditor,
		device:     device.NewService(false),
		sessionTTL: 14 * 24 * time.Hour,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AuthenticateBearer resolves an access token to the caller. The caller's
// role is always read from the user record, never from the token.
func (s *Service) AuthenticateBearer(ctx context.Context, raw string) (requestcontext.Caller, error) {
	claims, err := s.tokens.Validate(raw, token.TypeAccess)
	if err != nil {
		return requestcontext.Caller{}, err
	}
	revoked, err := s.trl.IsRevoked(ctx, claims.ID)
	if err != nil {
		return requestcontext.Caller{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check token revocation")
	}
	if revoked {
		return requestcontext.Caller{}, dErrors.New(dErrors.CodeUnauthorized, "token has been revoked")
	}
	userID, err := claims.ParsedUserID()
	if err != nil {
		return requestcontext.Caller{}, dErrors.New(dErrors.CodeUnauthorized, "invalid token subject")
	}
	user, err := s.loadCaller(ctx, userID)
	if err != nil {
		return requestcontext.Caller{}, err
	}
	return requestcontext.Caller{
		UserID:         user.ID,
		Role:           user.Role,
		AssignedSector: user.AssignedSector,
		AuthMethod:     requestcontext.AuthMethodJWT,
		TokenID:        claims.ID,
		TokenExpiresAt: claims.ExpiresAtTime(),
	}, nil
}

// AuthenticateSession resolves a session cookie to the caller and refreshes
// the session's last-seen time.
func (s *Service) AuthenticateSession(ctx context.Context, key string) (requestcontext.Caller, error) {
	now := requestcontext.Now(ctx)
	sess, err := s.sessions.FindByKey(ctx, key, now)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) || errors.Is(err, session.ErrSessionExpired) {
			return requestcontext.Caller{}, dErrors.New(dErrors.CodeUnauthorized, "session not found or expired")
		}
		return requestcontext.Caller{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load session")
	}

	if _, drift := s.device.CompareFingerprints(sess.DeviceFingerprint, s.device.ComputeFingerprint(requestcontext.UserAgent(ctx))); drift {
		s.logger.WarnContext(ctx, "session device fingerprint changed",
			"request_id", requestcontext.RequestID(ctx),
			"session_id", sess.ID.String(),
		)
	}

	if err := s.sessions.Touch(ctx, key, now); err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		s.logger.WarnContext(ctx, "failed to touch session",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
	}

	user, err := s.loadCaller(ctx, sess.UserID)
	if err != nil {
		return requestcontext.Caller{}, err
	}
	return requestcontext.Caller{
		UserID:         user.ID,
		Role:           user.Role,
		AssignedSector: user.AssignedSector,
		AuthMethod:     requestcontext.AuthMethodSession,
		SessionID:      sess.ID,
	}, nil
}

func (s *Service) loadCaller(ctx context.Context, userID id.UserID) (*idmodels.User, error) {
	user, err := s.users.Get(ctx, userID)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "user no longer exists")
		}
		return nil, err
	}
	return user, nil
}

// LoginSession checks credentials and opens a server-side session. The
// returned session's Key goes into the cookie.
func (s *Service) LoginSession(ctx context.Context, req *models.LoginRequest) (*models.Session, *idmodels.User, error) {
	user, err := s.checkCredentials(ctx, req)
	if err != nil {
		return nil, nil, err
	}

	key, err := newSessionKey()
	if err != nil {
		return nil, nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to generate session key")
	}
	now := requestcontext.Now(ctx)
	ua := requestcontext.UserAgent(ctx)
	sess := &models.Session{
		ID:                id.SessionID(uuid.New()),
		Key:               key,
		UserID:            user.ID,
		DeviceLabel:       device.ParseUserAgent(ua),
		DeviceFingerprint: s.device.ComputeFingerprint(ua),
		ClientIP:          requestcontext.ClientIP(ctx),
		CreatedAt:         now,
		ExpiresAt:         now.Add(s.sessionTTL),
		LastSeenAt:        now,
	}
	if err := s.sessions.Create(ctx, sess); err != nil {
		return nil, nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create session")
	}

	s.logger.InfoContext(ctx, "session login",
		"request_id", requestcontext.RequestID(ctx),
		"user_id", user.ID.String(),
		"device", sess.DeviceLabel,
	)
	return sess, user, nil
}

// ObtainTokens checks credentials and issues an access and refresh token pair.
func (s *Service) ObtainTokens(ctx context.Context, req *models.LoginRequest) (*models.TokenPair, error) {
	user, err := s.checkCredentials(ctx, req)
	if err != nil {
		return nil, err
	}
	now := requestcontext.Now(ctx)
	access, err := s.tokens.IssueAccess(user.ID, now)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue access token")
	}
	refresh, err := s.tokens.IssueRefresh(user.ID, now)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue refresh token")
	}
	s.logger.InfoContext(ctx, "tokens issued",
		"request_id", requestcontext.RequestID(ctx),
		"user_id", user.ID.String(),
	)
	return &models.TokenPair{
		Access:           access.Token,
		Refresh:          refresh.Token,
		AccessExpiresAt:  access.ExpiresAt,
		RefreshExpiresAt: refresh.ExpiresAt,
	}, nil
}

// Refresh exchanges a live refresh token for a new access token.
func (s *Service) Refresh(ctx context.Context, req *models.RefreshRequest) (*models.AccessToken, error) {
	claims, err := s.tokens.Validate(req.Refresh, token.TypeRefresh)
	if err != nil {
		return nil, err
	}
	revoked, err := s.trl.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check token revocation")
	}
	if revoked {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "token has been revoked")
	}
	userID, err := claims.ParsedUserID()
	if err != nil {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token subject")
	}
	if _, err := s.loadCaller(ctx, userID); err != nil {
		return nil, err
	}
	access, err := s.tokens.IssueAccess(userID, requestcontext.Now(ctx))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue access token")
	}
	return &models.AccessToken{Access: access.Token, AccessExpiresAt: access.ExpiresAt}, nil
}

// Logout ends every credential the caller presented: the session named by
// sessionKey, the access token in use, and refreshToken when given. An
// unparseable refresh token is ignored.
func (s *Service) Logout(ctx context.Context, caller requestcontext.Caller, sessionKey, refreshToken string) error {
	now := requestcontext.Now(ctx)

	if sessionKey != "" {
		if err := s.endSession(ctx, caller.UserID, sessionKey, now); err != nil {
			return err
		}
	}
	if caller.TokenID != "" {
		if err := s.trl.RevokeToken(ctx, caller.TokenID, revocation.RemainingTTL(caller.TokenExpiresAt, now)); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to revoke access token")
		}
	}
	if refreshToken != "" {
		if claims, err := s.tokens.Validate(refreshToken, token.TypeRefresh); err == nil && claims.UserID == caller.UserID.String() {
			if err := s.trl.RevokeToken(ctx, claims.ID, revocation.RemainingTTL(claims.ExpiresAtTime(), now)); err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to revoke refresh token")
			}
		}
	}

	userID := caller.UserID
	if err := s.auditor.Record(ctx, &userID, audit.ActionLogout, "auth method "+string(caller.AuthMethod)); err != nil {
		s.logger.ErrorContext(ctx, "failed to record audit entry",
			"request_id", requestcontext.RequestID(ctx),
			"action", string(audit.ActionLogout),
			"error", err,
		)
	}
	s.logger.InfoContext(ctx, "logout",
		"request_id", requestcontext.RequestID(ctx),
		"user_id", caller.UserID.String(),
		"auth_method", string(caller.AuthMethod),
	)
	return nil
}

// endSession deletes the session behind key when it belongs to userID.
// Unknown and expired keys are ignored.
func (s *Service) endSession(ctx context.Context, userID id.UserID, key string, now time.Time) error {
	sess, err := s.sessions.FindByKey(ctx, key, now)
	if errors.Is(err, sentinel.ErrNotFound) || errors.Is(err, session.ErrSessionExpired) {
		return nil
	}
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load session")
	}
	if sess.UserID != userID {
		s.logger.WarnContext(ctx, "logout presented another user's session",
			"request_id", requestcontext.RequestID(ctx),
			"user_id", userID.String(),
		)
		return nil
	}
	if err := s.sessions.Delete(ctx, key); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete session")
	}
	return nil
}

func (s *Service) WhoAmI(ctx context.Context, caller requestcontext.Caller) (*models.WhoAmI, error) {
	user, err := s.users.Get(ctx, caller.UserID)
	if err != nil {
		return nil, err
	}
	return &models.WhoAmI{
		ID:         user.ID.String(),
		Username:   user.Username,
		Role:       user.Role,
		IsVerified: user.IsVerified,
		AuthMethod: string(caller.AuthMethod),
	}, nil
}

// checkCredentials records a LOGIN_FAILED entry on any credential mismatch.
// The entry carries no username so it cannot confirm an account exists.
func (s *Service) checkCredentials(ctx context.Context, req *models.LoginRequest) (*idmodels.User, error) {
	user, err := s.users.CheckCredentials(ctx, req.Username, req.Password)
	if err == nil {
		return user, nil
	}
	if dErrors.HasCode(err, dErrors.CodeUnauthorized) {
		if aerr := s.auditor.Record(ctx, nil, audit.ActionLoginFailed, "invalid credentials"); aerr != nil {
			s.logger.ErrorContext(ctx, "failed to record audit entry",
				"request_id", requestcontext.RequestID(ctx),
				"action", string(audit.ActionLoginFailed),
				"error", aerr,
			)
		}
		s.logger.WarnContext(ctx, "login failed",
			"request_id", requestcontext.RequestID(ctx),
			"client_ip", requestcontext.ClientIP(ctx),
		)
	}
	return nil, err
}

func newSessionKey() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
