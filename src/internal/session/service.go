package session

import (
	"context"
	"letterdesk-admin-svc/src/internal/audit"
	"letterdesk-admin-svc/src/internal/config"
	"letterdesk-admin-svc/src/internal/crypto"
	"letterdesk-admin-svc/src/internal/models"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Service drives the session lifecycle: issuance, per-request validation
// and termination. Every outcome other than a successful Validate is
// reported to callers as a bare "unauthenticated" error; the audit trail
// carries the distinguishing reason.
type Service interface {
	// Issue creates a session for a verified admin and returns the signed
	// cookie value to hand to the client.
	Issue(ctx context.Context, userID, email string, meta models.RequestMeta) (string, *models.AdminSession, error)

	// Validate checks a signed cookie value against the store. On success
	// it returns the session and a refreshed cookie value to re-set. On
	// failure the returned error says why and the caller must clear the
	// client cookie (except ErrMissingSecret, where there is nothing to
	// clear server-side).
	Validate(ctx context.Context, signedCookie string, meta models.RequestMeta) (*models.AdminSession, string, error)

	// Terminate revokes the session referenced by the cookie if one exists.
	// It never fails from the caller's perspective; the cookie is cleared
	// unconditionally by the transport layer.
	Terminate(ctx context.Context, signedCookie string, meta models.RequestMeta)
}

type service struct {
	repository Repository
	crypto     *crypto.TokenCrypto
	recorder   audit.Recorder
	tokenSize  int
	idle       time.Duration
	absolute   time.Duration
	now        func() time.Time
}

func NewSessionService(repository Repository, tokenCrypto *crypto.TokenCrypto, recorder audit.Recorder, cfg *config.SessionSettings) Service {
	return &service{
		repository: repository,
		crypto:     tokenCrypto,
		recorder:   recorder,
		tokenSize:  cfg.TokenSize,
		idle:       time.Duration(cfg.IdleTimeoutSeconds) * time.Second,
		absolute:   time.Duration(cfg.AbsoluteTimeoutSeconds) * time.Second,
		now:        time.Now,
	}
}

func (s *service) Issue(ctx context.Context, userID, email string, meta models.RequestMeta) (string, *models.AdminSession, error) {
	if !s.crypto.Configured() {
		return "", nil, models.ErrMissingSecret
	}

	rawToken, err := s.crypto.GenerateToken(s.tokenSize)
	if err != nil {
		return "", nil, err
	}

	signature, err := s.crypto.Sign(rawToken)
	if err != nil {
		return "", nil, err
	}

	now := s.now()
	session := &models.AdminSession{
		SessionID:    uuid.NewString(),
		UserID:       userID,
		Email:        email,
		TokenHash:    s.crypto.Hash(rawToken),
		CreatedAt:    now,
		LastActivity: now,
		ExpiresAt:    now.Add(s.absolute),
		IPAddress:    meta.IPAddress,
		UserAgent:    meta.UserAgent,
	}

	if _, err := s.repository.Insert(ctx, session); err != nil {
		logrus.WithError(err).WithField("user_id", userID).Error("Failed to persist new session")
		return "", nil, err
	}

	s.record(ctx, models.EventLogin, session.SessionID, userID, email, meta, nil)

	logrus.WithFields(logrus.Fields{
		"session_id": session.SessionID,
		"user_id":    userID,
	}).Info("Admin session issued")

	return rawToken + "." + signature, session, nil
}

func (s *service) Validate(ctx context.Context, signedCookie string, meta models.RequestMeta) (*models.AdminSession, string, error) {
	if !s.crypto.Configured() {
		return nil, "", models.ErrMissingSecret
	}
	if signedCookie == "" {
		return nil, "", models.ErrMalformedToken
	}

	rawToken, signature, ok := strings.Cut(signedCookie, ".")
	if !ok || rawToken == "" || signature == "" {
		// Nothing to attribute in the audit trail.
		return nil, "", models.ErrMalformedToken
	}

	valid, err := s.crypto.Verify(rawToken, signature)
	if err != nil {
		return nil, "", err
	}
	if !valid {
		s.record(ctx, models.EventInvalidated, "", "", "", meta, map[string]string{"reason": models.ReasonInvalidSignature})
		return nil, "", models.ErrInvalidSignature
	}

	session, err := s.repository.FindByHash(ctx, s.crypto.Hash(rawToken))
	if err != nil {
		if err == models.ErrSessionNotFound {
			s.record(ctx, models.EventInvalidated, "", "", "", meta, map[string]string{"reason": models.ReasonSessionNotFound})
		}
		return nil, "", err
	}

	if session.IsRevoked() {
		s.record(ctx, models.EventInvalidated, session.SessionID, session.UserID, session.Email, meta, map[string]string{"reason": models.ReasonRevoked})
		return nil, "", models.ErrSessionRevoked
	}

	now := s.now()
	if reason, expired := s.expiryReason(session, now); expired {
		// Best-effort: mark it gone so later lookups short-circuit.
		if err := s.repository.Revoke(ctx, session.SessionID); err != nil {
			logrus.WithError(err).WithField("session_id", session.SessionID).Warn("Failed to revoke expired session")
		}
		s.record(ctx, models.EventExpired, session.SessionID, session.UserID, session.Email, meta, map[string]string{"reason": reason})
		return nil, "", models.ErrSessionExpired
	}

	// A Touch failure only tightens the idle window on the next check.
	if err := s.repository.Touch(ctx, session.SessionID, meta); err != nil {
		logrus.WithError(err).WithField("session_id", session.SessionID).Warn("Failed to update session activity")
	} else {
		session.LastActivity = now
	}

	// Same raw token, same signature; re-signing only refreshes the
	// client-side Max-Age hint.
	refreshed, err := s.crypto.Sign(rawToken)
	if err != nil {
		return nil, "", err
	}

	return session, rawToken + "." + refreshed, nil
}

func (s *service) Terminate(ctx context.Context, signedCookie string, meta models.RequestMeta) {
	if !s.crypto.Configured() || signedCookie == "" {
		return
	}

	rawToken, signature, ok := strings.Cut(signedCookie, ".")
	if !ok || rawToken == "" || signature == "" {
		return
	}

	if valid, err := s.crypto.Verify(rawToken, signature); err != nil || !valid {
		return
	}

	session, err := s.repository.FindByHash(ctx, s.crypto.Hash(rawToken))
	if err != nil {
		return
	}
	if session.IsRevoked() {
		return
	}

	if err := s.repository.Revoke(ctx, session.SessionID); err != nil {
		logrus.WithError(err).WithField("session_id", session.SessionID).Error("Failed to revoke session on logout")
		return
	}

	s.record(ctx, models.EventLogout, session.SessionID, session.UserID, session.Email, meta, nil)

	logrus.WithFields(logrus.Fields{
		"session_id": session.SessionID,
		"user_id":    session.UserID,
	}).Info("Admin session terminated")
}

// expiryReason evaluates both the absolute and idle windows; both apply
// on every validation, independent of each other. A session is usable
// while now < expiresAt and now - lastActivity < idle.
func (s *service) expiryReason(session *models.AdminSession, now time.Time) (string, bool) {
	if !now.Before(session.ExpiresAt) {
		return models.ReasonAbsoluteTimeout, true
	}
	if now.Sub(session.LastActivity) >= s.idle {
		return models.ReasonIdleTimeout, true
	}
	return "", false
}

func (s *service) record(ctx context.Context, event, sessionID, userID, email string, meta models.RequestMeta, metadata map[string]string) {
	s.recorder.Record(ctx, &models.AuditEntry{
		SessionID: sessionID,
		UserID:    userID,
		Email:     email,
		Event:     event,
		IPAddress: meta.IPAddress,
		UserAgent: meta.UserAgent,
		Metadata:  metadata,
		CreatedAt: s.now(),
	})
}
