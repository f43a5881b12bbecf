package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lborres/evently/core"
	"github.com/lborres/evently/pkg/crypto"
	"github.com/lborres/evently/pkg/logging"
)

const recoveryBodyPrefix = "Your OTP for password recovery is: "

// RecoveryService runs the passcode based password reset. Each email is
// either idle or has exactly one pending passcode in the store.
type RecoveryService struct {
	store          core.RecoveryStore
	accounts       core.AccountStore
	passwordHasher core.PasswordHandler
	mailer         core.Mailer
	config         core.RecoveryConfig
	logger         logging.Logger
	now            func() time.Time
	newPasscode    func() (string, error)
}

func NewRecoveryService(
	store core.RecoveryStore,
	accounts core.AccountStore,
	passwordHasher core.PasswordHandler,
	mailer core.Mailer,
	config core.RecoveryConfig,
	logger logging.Logger,
) *RecoveryService {
	if logger == nil {
		logger = logging.Discard()
	}
	if config.Subject == "" {
		config.Subject = core.DefaultRecoveryConfig().Subject
	}
	return &RecoveryService{
		store:          store,
		accounts:       accounts,
		passwordHasher: passwordHasher,
		mailer:         mailer,
		config:         config,
		logger:         logger,
		now:            time.Now,
		newPasscode:    crypto.GeneratePasscode,
	}
}

// RequestRecovery stores a fresh passcode for the email, replacing any
// pending one, and mails it. The account is not looked up so the response
// does not reveal whether the email is registered.
func (s *RecoveryService) RequestRecovery(ctx context.Context, input core.RecoveryRequestInput) error {
	email := core.NormalizeEmail(input.Email)
	if err := core.ValidateEmail(email); err != nil {
		return err
	}

	passcode, err := s.newPasscode()
	if err != nil {
		return err
	}

	now := s.now()
	entry := &core.RecoveryEntry{Passcode: passcode, CreatedAt: now}
	if s.config.TTL > 0 {
		entry.ExpiresAt = now.Add(s.config.TTL)
	}
	if err := s.store.Put(ctx, email, entry); err != nil {
		return storeError("store recovery entry", err)
	}

	// The entry stays in place when delivery fails; a retry overwrites it.
	if err := s.mailer.Send(ctx, email, s.config.Subject, recoveryBodyPrefix+passcode); err != nil {
		s.logger.Error(ctx, "failed to send recovery passcode", "email", email, "error", err)
		return fmt.Errorf("%w: %w", core.ErrDeliveryFailed, err)
	}

	s.logger.Info(ctx, "recovery requested", "email", email)
	return nil
}

// ConfirmRecovery checks the passcode and replaces the account password.
// The new password is not held to the registration policy.
func (s *RecoveryService) ConfirmRecovery(ctx context.Context, input core.RecoveryConfirmInput) error {
	email := core.NormalizeEmail(input.Email)
	if email == "" || input.OTP == "" || input.NewPassword == "" {
		return core.ErrRecoveryFieldsRequired
	}

	// Step 1: Load the pending entry
	entry, err := s.store.Get(ctx, email)
	if err != nil {
		if errors.Is(err, core.ErrEntryNotFound) {
			return core.ErrNoOutstandingRequest
		}
		return storeError("load recovery entry", err)
	}

	// Step 2: Check the passcode
	if !crypto.VerifyPasscode(input.OTP, entry.Passcode) {
		return s.rejectPasscode(ctx, email, entry)
	}

	// Step 3: Replace the password
	account, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		return storeError("find account", err)
	}

	hash, err := s.passwordHasher.Hash(input.NewPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	account.PasswordHash = hash
	account.UpdatedAt = s.now().UTC()

	if err := s.accounts.Save(ctx, account); err != nil {
		return storeError("save account", err)
	}

	// Step 4: Clear the entry. The password is already changed, so a failure
	// here only leaves a passcode behind until it expires or is overwritten.
	if err := s.store.Remove(ctx, email); err != nil {
		s.logger.Warn(ctx, "failed to remove recovery entry", "email", email, "error", err)
	}

	s.logger.Info(ctx, "password recovered", "account_id", account.ID)
	return nil
}

// rejectPasscode counts a wrong guess against the entry that was checked. The
// store only counts it while that passcode is still current, so a request
// that replaced the entry meanwhile is never undone.
func (s *RecoveryService) rejectPasscode(ctx context.Context, email string, entry *core.RecoveryEntry) error {
	if s.config.MaxAttempts <= 0 {
		return core.ErrInvalidPasscode
	}

	attempts, err := s.store.RecordFailedAttempt(ctx, email, entry.Passcode, s.config.MaxAttempts)
	if err != nil {
		if !errors.Is(err, core.ErrEntryNotFound) {
			s.logger.Warn(ctx, "failed to record recovery attempt", "email", email, "error", err)
		}
		return core.ErrInvalidPasscode
	}

	if attempts >= s.config.MaxAttempts {
		s.logger.Warn(ctx, "recovery attempts exhausted", "email", email)
		return core.ErrTooManyAttempts
	}
	return core.ErrInvalidPasscode
}
