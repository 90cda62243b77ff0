package identity

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"letterdesk-admin-svc/src/internal/config"
	"letterdesk-admin-svc/src/internal/models"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/pbkdf2"
)

const pbkdf2Iterations = 100_000

// dummyHash keeps the unknown-username path doing the same PBKDF2 work
// as a real password check.
var dummyHash = HashPassword("unused-dummy-password", make([]byte, 16))

// Service verifies an admin's username/password/portal-key triple against
// the identity store before a session may be issued, and resolves roles
// for the auth guard.
type Service interface {
	Verify(ctx context.Context, username, password, portalKey string) (*Verified, error)
	ResolveRole(ctx context.Context, userID string) (*AdminUser, error)
}

type userService struct {
	repository Repository
	portalKey  string
}

func NewUserService(repository Repository, cfg *config.Configuration) Service {
	return &userService{
		repository: repository,
		portalKey:  cfg.Security.PortalKey,
	}
}

func (s *userService) Verify(ctx context.Context, username, password, portalKey string) (*Verified, error) {
	if s.portalKey == "" {
		logrus.Error("Admin portal key is not configured")
		return nil, models.ErrInvalidPortalKey
	}
	if subtle.ConstantTimeCompare([]byte(portalKey), []byte(s.portalKey)) != 1 {
		logrus.WithField("username", username).Warn("Login attempt with wrong portal key")
		return nil, models.ErrInvalidPortalKey
	}

	user, err := s.repository.GetByUsername(ctx, username)
	if err != nil {
		if err == models.ErrUserNotFound {
			// Burn a hash check anyway so unknown and known usernames
			// take comparable time.
			checkPassword(password, dummyHash)
			return nil, models.ErrInvalidCredentials
		}
		return nil, err
	}

	if !checkPassword(password, user.PasswordHash) {
		logrus.WithField("username", username).Warn("Login attempt with wrong password")
		return nil, models.ErrInvalidCredentials
	}

	if !user.IsActive() {
		logrus.WithField("username", username).Warn("Login attempt on inactive account")
		return nil, models.ErrUserInactive
	}

	if !user.IsAdmin() {
		logrus.WithFields(logrus.Fields{
			"username": username,
			"role":     user.Role,
		}).Warn("Login attempt by non-admin user")
		return nil, models.ErrNotAdmin
	}

	if err := s.repository.RecordLogin(ctx, user.ID.Hex()); err != nil {
		// Advisory timestamp only.
		logrus.WithError(err).Warn("Failed to record login timestamp")
	}

	return &Verified{
		UserID:  user.ID.Hex(),
		Email:   user.Email,
		Role:    user.Role,
		SubRole: user.SubRole,
	}, nil
}

func (s *userService) ResolveRole(ctx context.Context, userID string) (*AdminUser, error) {
	user, err := s.repository.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.IsActive() {
		return nil, models.ErrUserInactive
	}
	return user, nil
}

// HashPassword derives a PBKDF2-SHA256 hash, returned as "salt$hash".
func HashPassword(password string, salt []byte) string {
	hash := pbkdf2.Key([]byte(password), salt, pbkdf2Iterations, 32, sha256.New)
	return base64.RawStdEncoding.EncodeToString(salt) + "$" + base64.RawStdEncoding.EncodeToString(hash)
}

// checkPassword verifies a plaintext password against a stored "salt$hash"
// value in constant time.
func checkPassword(password, stored string) bool {
	saltStr, hashStr, ok := strings.Cut(stored, "$")
	if !ok {
		return false
	}

	salt, err := base64.RawStdEncoding.DecodeString(saltStr)
	if err != nil {
		return false
	}
	expected, err := base64.RawStdEncoding.DecodeString(hashStr)
	if err != nil || len(expected) == 0 {
		return false
	}

	hash := pbkdf2.Key([]byte(password), salt, pbkdf2Iterations, len(expected), sha256.New)
	return subtle.ConstantTimeCompare(hash, expected) == 1
}
