package account

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/mymed-inc/mymed-api/external/identity"
	"github.com/mymed-inc/mymed-api/schema"
	"github.com/mymed-inc/mymed-api/store"
)

const logPrefix = "account"

// SessionCloser ends the per account state kept in memory
type SessionCloser interface {
	Remove(accountID string)
}

type Service struct {
	provider identity.Provider
	accounts store.AccountCore
	sessions store.SessionStore
	closer   SessionCloser
}

func NewService(provider identity.Provider, accounts store.AccountCore, sessions store.SessionStore, closer SessionCloser) *Service {
	return &Service{
		provider: provider,
		accounts: accounts,
		sessions: sessions,
		closer:   closer,
	}
}

// SignUp registers a new user at the identity provider
func (s *Service) SignUp(ctx context.Context, email, password string) (*schema.Account, error) {
	email, password, err := validateCredentials(email, password)
	if err != nil {
		return nil, err
	}

	user, err := s.provider.SignUp(ctx, email, password)
	if err != nil {
		log.WithField("prefix", logPrefix).WithError(err).Info("sign up rejected")
		return nil, err
	}

	return s.mirror(user)
}

// SignIn authenticates an existing user
func (s *Service) SignIn(ctx context.Context, email, password string) (*schema.Account, error) {
	email, password, err := validateCredentials(email, password)
	if err != nil {
		return nil, err
	}

	user, err := s.provider.SignIn(ctx, email, password)
	if err != nil {
		log.WithField("prefix", logPrefix).WithError(err).Info("sign in rejected")
		return nil, err
	}

	return s.mirror(user)
}

// SignOut closes the nearby session of accountID and denies tokenID until
// it expires
func (s *Service) SignOut(ctx context.Context, accountID, tokenID string, expiresAt time.Time) error {
	s.closer.Remove(accountID)

	if err := s.sessions.Revoke(ctx, tokenID, time.Until(expiresAt)); err != nil {
		log.WithFields(log.Fields{
			"prefix":     logPrefix,
			"account_id": accountID,
		}).WithError(err).Error("revoke session token")
		return err
	}

	return nil
}

// ResetPassword asks the identity provider to email a reset link
func (s *Service) ResetPassword(ctx context.Context, email string) error {
	email, err := ValidateEmail(email)
	if err != nil {
		return err
	}

	return s.provider.SendPasswordReset(ctx, email)
}

func (s *Service) mirror(user *identity.User) (*schema.Account, error) {
	a, err := s.accounts.UpsertAccount(user.LocalID, user.Email)
	if err != nil {
		log.WithFields(log.Fields{
			"prefix":  logPrefix,
			"user_id": user.LocalID,
		}).WithError(err).Error("upsert account")
		return nil, err
	}

	return a, nil
}

func validateCredentials(email, password string) (string, string, error) {
	email, err := ValidateEmail(email)
	if err != nil {
		return "", "", err
	}

	password, err = ValidatePassword(password)
	if err != nil {
		return "", "", err
	}

	return email, password, nil
}
