package auth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fastygo/crm-reports/domain"
	"github.com/fastygo/crm-reports/repository"
)

// Defaults for representatives provisioned on first login.
const (
	DefaultTitle      = "Customer Representative"
	DefaultDepartment = "General"

	defaultTTL = time.Hour
)

// Grant is a freshly opened or refreshed session with its bearer token.
type Grant struct {
	Session        *domain.Session        `json:"session"`
	Token          string                 `json:"token"`
	ExpiresIn      int                    `json:"expires_in"`
	Representative *domain.Representative `json:"representative,omitempty"`
}

type UseCase struct {
	representatives repository.RepresentativeRepository
	sessions        repository.SessionRepository
	signer          *Signer
	identities      *IdentityVerifier
	clock           func() time.Time
	logger          *zap.Logger
}

func New(representatives repository.RepresentativeRepository, sessions repository.SessionRepository, signer *Signer, identities *IdentityVerifier, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		representatives: representatives,
		sessions:        sessions,
		signer:          signer,
		identities:      identities,
		clock:           time.Now,
		logger:          logger,
	}
}

// Login opens a session for a user vouched for by the identity provider.
// The assertion must carry RepresentativeRole. Users without a representative
// profile get an active one; inactive representatives are refused.
func (uc *UseCase) Login(ctx context.Context, assertion string, ttl time.Duration) (*Grant, error) {
	identity, err := uc.identities.Verify(assertion)
	if err != nil {
		uc.logger.Debug("identity assertion rejected", zap.Error(err))
		return nil, err
	}
	if !identity.HasRole(RepresentativeRole) {
		uc.logger.Info("login refused without representative role", zap.Int64("user_id", identity.UserID))
		return nil, domain.ErrNotRepresentative
	}
	if ttl <= 0 {
		ttl = defaultTTL
	}

	rep, err := uc.representatives.GetByUserID(ctx, identity.UserID)
	switch {
	case errors.Is(err, domain.ErrRepresentativeNotFound):
		rep, err = uc.provision(ctx, identity)
		if err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	}
	if !rep.IsActive() {
		uc.logger.Info("login refused for inactive representative",
			zap.Int64("user_id", identity.UserID),
			zap.Int64("representative_id", rep.ID),
		)
		return nil, domain.ErrRepresentativeInactive
	}

	now := uc.clock()
	session := &domain.Session{
		ID:               uuid.NewString(),
		UserID:           identity.UserID,
		RepresentativeID: rep.ID,
		RoleLevel:        rep.RoleLevel,
		CreatedAt:        now,
		ExpiresAt:        now.Add(ttl),
	}
	if err := uc.sessions.Save(ctx, session); err != nil {
		return nil, err
	}

	grant, err := uc.grant(session, now)
	if err != nil {
		return nil, err
	}
	grant.Representative = rep
	return grant, nil
}

func (uc *UseCase) provision(ctx context.Context, identity *Identity) (*domain.Representative, error) {
	userID := identity.UserID
	rep := &domain.Representative{
		UserID:      userID,
		DisplayName: identity.Name,
		Title:       DefaultTitle,
		Department:  DefaultDepartment,
		RoleLevel:   domain.DefaultRoleLevel,
		Status:      domain.RepresentativeActive,
		CreatedAt:   uc.clock(),
	}
	if err := uc.representatives.Create(ctx, rep); err != nil {
		return nil, err
	}
	uc.logger.Info("representative provisioned",
		zap.Int64("user_id", userID),
		zap.Int64("representative_id", rep.ID),
	)
	return rep, nil
}

// Authenticate verifies a bearer token and returns its live session.
func (uc *UseCase) Authenticate(ctx context.Context, token string) (*domain.Session, error) {
	claims, err := uc.signer.Parse(token)
	if err != nil {
		return nil, err
	}
	session, err := uc.GetSession(ctx, claims.SessionID)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return nil, domain.WrapError(domain.ErrCodeUnauthorized, "session revoked or expired", err)
		}
		return nil, err
	}
	return session, nil
}

func (uc *UseCase) GetSession(ctx context.Context, sessionID string) (*domain.Session, error) {
	session, err := uc.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.IsExpired(uc.clock()) {
		_ = uc.sessions.Delete(ctx, sessionID)
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}

// RefreshSession extends a session and issues a token with the new expiry.
func (uc *UseCase) RefreshSession(ctx context.Context, sessionID string, ttl time.Duration) (*Grant, error) {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	session, err := uc.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := uc.sessions.Extend(ctx, sessionID, int(ttl.Seconds())); err != nil {
		return nil, err
	}
	now := uc.clock()
	session.ExpiresAt = now.Add(ttl)
	return uc.grant(session, now)
}

func (uc *UseCase) RevokeSession(ctx context.Context, sessionID string) error {
	return uc.sessions.Delete(ctx, sessionID)
}

func (uc *UseCase) grant(session *domain.Session, now time.Time) (*Grant, error) {
	token, err := uc.signer.Sign(session)
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeInternal, "failed to sign token", err)
	}
	return &Grant{
		Session:   session,
		Token:     token,
		ExpiresIn: int(session.ExpiresAt.Sub(now).Seconds()),
	}, nil
}
