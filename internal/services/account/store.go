package account

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/voxnote/voxnote/internal/dependencies/clock"
	"github.com/voxnote/voxnote/internal/model"
	"github.com/voxnote/voxnote/internal/services/history"
	"github.com/voxnote/voxnote/internal/storage"
)

// UsageLog is the read-only view of the conversion history
// collaborator. The account store counts records; it never writes
// them.
type UsageLog interface {
	CountByKind(ctx context.Context, emailKey string) (map[model.ConversionKind]int, error)
}

// Config holds configuration for the account store
type Config struct {
	// IdleTimeout is how long a session may go without activity
	// before it is expired.
	IdleTimeout time.Duration

	// ActivityInterval is how often the janitor refreshes the active
	// session's activity timestamp.
	ActivityInterval time.Duration

	// ExpiryCheckInterval is how often the janitor checks the session
	// against IdleTimeout.
	ExpiryCheckInterval time.Duration

	// OnLogout, when set, is invoked after every logout so the caller
	// can switch to an unauthenticated view.
	OnLogout func()
}

// DefaultConfig returns default account store configuration
func DefaultConfig() Config {
	return Config{
		IdleTimeout:         24 * time.Hour,
		ActivityInterval:    5 * time.Minute,
		ExpiryCheckInterval: time.Minute,
	}
}

// Store owns the registered accounts and the single active session.
// Every operation runs under one mutex: each mutation persists the
// collection and then mirrors into the session projection, and that
// two-step sequence must not interleave with another mutation or with
// the janitor goroutine.
type Store struct {
	kv     storage.KV
	usage  UsageLog
	clock  clock.Clock
	cfg    Config
	logger *slog.Logger

	mu       sync.Mutex
	accounts []*model.Account
	session  *model.Session
}

// New creates an account store and loads its persisted state. A
// missing or corrupt stored value loads as empty: failing startup on
// bad local data would strand the user, so it is logged and dropped
// instead.
func New(ctx context.Context, kv storage.KV, usage UsageLog, clk clock.Clock, cfg Config, logger *slog.Logger) (*Store, error) {
	if kv == nil {
		return nil, errors.New("account: storage is required")
	}
	if clk == nil {
		clk = clock.New()
	}
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	defaults := DefaultConfig()
	if cfg.IdleTimeout == 0 {
		cfg.IdleTimeout = defaults.IdleTimeout
	}
	if cfg.ActivityInterval == 0 {
		cfg.ActivityInterval = defaults.ActivityInterval
	}
	if cfg.ExpiryCheckInterval == 0 {
		cfg.ExpiryCheckInterval = defaults.ExpiryCheckInterval
	}

	s := &Store{
		kv:     kv,
		usage:  usage,
		clock:  clk,
		cfg:    cfg,
		logger: logger,
	}

	s.loadAccounts(ctx)
	s.loadSession(ctx)

	return s, nil
}

func (s *Store) loadAccounts(ctx context.Context) {
	s.accounts = make([]*model.Account, 0)

	data, err := s.kv.Get(ctx, usersKey)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.logger.Warn("could not read stored accounts, starting empty",
				slog.String("error", err.Error()))
		}
		return
	}

	var accounts []*model.Account
	if err := json.Unmarshal(data, &accounts); err != nil {
		s.logger.Warn("stored accounts are corrupt, starting empty",
			slog.String("error", err.Error()))
		return
	}
	s.accounts = accounts
}

func (s *Store) loadSession(ctx context.Context) {
	data, err := s.kv.Get(ctx, sessionKey)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.logger.Warn("could not read stored session",
				slog.String("error", err.Error()))
		}
		return
	}

	var session model.Session
	if err := json.Unmarshal(data, &session); err != nil {
		s.logger.Warn("stored session is corrupt, discarding",
			slog.String("error", err.Error()))
		_ = s.kv.Delete(ctx, sessionKey)
		return
	}

	// The underlying account may have been removed out-of-band.
	if s.findByID(session.AccountID) == nil {
		s.logger.Warn("stored session has no matching account, discarding",
			slog.String("email", session.EmailKey))
		_ = s.kv.Delete(ctx, sessionKey)
		return
	}

	if session.IdleFor(s.clock.Now()) > s.cfg.IdleTimeout {
		s.logger.Info("stored session exceeded idle timeout, discarding",
			slog.String("email", session.EmailKey))
		_ = s.kv.Delete(ctx, sessionKey)
		return
	}

	s.session = &session
}

// Register creates a new account and establishes it as the active
// session.
func (s *Store) Register(ctx context.Context, name, email, password string) (*model.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	displayName, err := validateName(name)
	if err != nil {
		return nil, err
	}
	emailKey, err := validateEmail(email)
	if err != nil {
		return nil, err
	}
	if err := validatePassword("password", password); err != nil {
		return nil, err
	}

	if s.findByEmail(emailKey) != nil {
		return nil, &model.ConflictError{Email: emailKey}
	}

	digest, err := hashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.clock.Now()
	acct := &model.Account{
		ID:               uuid.NewString(),
		DisplayName:      displayName,
		EmailKey:         emailKey,
		CredentialDigest: digest,
		CreatedAt:        now,
		Preferences:      model.DefaultPreferences(),
	}

	s.accounts = append(s.accounts, acct)
	if err := s.persistAccounts(ctx); err != nil {
		s.accounts = s.accounts[:len(s.accounts)-1]
		return nil, err
	}

	session := model.NewSession(acct, now)
	if err := s.persistSessionValue(ctx, session); err != nil {
		return nil, err
	}
	s.session = session

	s.logger.Info("account registered", slog.String("email", emailKey))
	return session, nil
}

// Login authenticates an account and establishes it as the active
// session, replacing any existing one.
func (s *Store) Login(ctx context.Context, email, password string) (*model.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	emailKey, err := validateEmail(email)
	if err != nil {
		return nil, err
	}
	if err := validateLoginPassword(password); err != nil {
		return nil, err
	}

	acct := s.findByEmail(emailKey)
	if acct == nil {
		return nil, &model.NotFoundError{Email: emailKey}
	}

	if !checkPassword(password, acct.CredentialDigest) {
		return nil, &model.AuthenticationError{Reason: "incorrect password"}
	}

	now := s.clock.Now()
	acct.LastLoginAt = &now
	if err := s.persistAccounts(ctx); err != nil {
		return nil, err
	}

	session := model.NewSession(acct, now)
	if err := s.persistSessionValue(ctx, session); err != nil {
		return nil, err
	}
	s.session = session

	s.logger.Info("login", slog.String("email", emailKey))
	return session, nil
}

// Logout clears the active session, removes its persisted projection,
// and sweeps all transient "temp_" keys. The OnLogout hook runs after
// the state is cleared.
func (s *Store) Logout(ctx context.Context) error {
	s.mu.Lock()
	err := s.logoutLocked(ctx)
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.notifyLogout()
	return nil
}

func (s *Store) logoutLocked(ctx context.Context) error {
	s.session = nil

	if err := s.kv.Delete(ctx, sessionKey); err != nil {
		return &model.PersistenceError{Op: "remove session", Err: err}
	}

	// Sweep transient data. Leftovers are harmless, so failures here
	// are logged rather than surfaced.
	keys, err := s.kv.Keys(ctx, tempPrefix)
	if err != nil {
		s.logger.Warn("could not enumerate temp keys on logout",
			slog.String("error", err.Error()))
		return nil
	}
	for _, key := range keys {
		if err := s.kv.Delete(ctx, key); err != nil {
			s.logger.Warn("could not remove temp key",
				slog.String("key", key), slog.String("error", err.Error()))
		}
	}
	return nil
}

func (s *Store) notifyLogout() {
	if s.cfg.OnLogout != nil {
		s.cfg.OnLogout()
	}
}

// CurrentUser returns the active session, or nil when no one is
// signed in.
func (s *Store) CurrentUser() *model.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session
}

// IsAuthenticated reports whether a session is active.
func (s *Store) IsAuthenticated() bool {
	return s.CurrentUser() != nil
}

// RequireSession is the guard protected callers use before acting: it
// returns the active session or an AuthenticationError.
func (s *Store) RequireSession() (*model.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requireSessionLocked()
}

func (s *Store) requireSessionLocked() (*model.Session, error) {
	if s.session == nil {
		return nil, &model.AuthenticationError{Reason: "no active session"}
	}
	return s.session, nil
}

// UpdateProfile changes the active account's display name and email.
func (s *Store) UpdateProfile(ctx context.Context, name, email string) (*model.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.requireSessionLocked()
	if err != nil {
		return nil, err
	}

	displayName, err := validateName(name)
	if err != nil {
		return nil, err
	}
	emailKey, err := validateEmail(email)
	if err != nil {
		return nil, err
	}

	if other := s.findByEmail(emailKey); other != nil && other.ID != session.AccountID {
		return nil, &model.ConflictError{Email: emailKey}
	}

	acct := s.findByID(session.AccountID)
	if acct == nil {
		return nil, &model.NotFoundError{Email: session.EmailKey}
	}

	acct.DisplayName = displayName
	acct.EmailKey = emailKey
	if err := s.persistAccounts(ctx); err != nil {
		return nil, err
	}

	session.DisplayName = displayName
	session.EmailKey = emailKey
	if err := s.persistSessionValue(ctx, session); err != nil {
		return nil, err
	}

	return session, nil
}

// UpdatePreferences shallow-merges partial into the active account's
// preferences and returns the merged result.
func (s *Store) UpdatePreferences(ctx context.Context, partial model.Preferences) (model.Preferences, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.requireSessionLocked()
	if err != nil {
		return nil, err
	}

	acct := s.findByID(session.AccountID)
	if acct == nil {
		return nil, &model.NotFoundError{Email: session.EmailKey}
	}

	merged := acct.Preferences.Merge(partial)
	acct.Preferences = merged
	if err := s.persistAccounts(ctx); err != nil {
		return nil, err
	}

	session.Preferences = merged.Clone()
	if err := s.persistSessionValue(ctx, session); err != nil {
		return nil, err
	}

	return merged.Clone(), nil
}

// ChangePassword replaces the active account's credential digest
// after verifying the current password.
func (s *Store) ChangePassword(ctx context.Context, currentPassword, newPassword string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.requireSessionLocked()
	if err != nil {
		return err
	}

	if err := validatePassword("newPassword", newPassword); err != nil {
		return err
	}

	acct := s.findByID(session.AccountID)
	if acct == nil {
		return &model.NotFoundError{Email: session.EmailKey}
	}

	if !checkPassword(currentPassword, acct.CredentialDigest) {
		return &model.AuthenticationError{Reason: "current password is incorrect"}
	}

	digest, err := hashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	acct.CredentialDigest = digest
	if err := s.persistAccounts(ctx); err != nil {
		return err
	}

	s.logger.Info("password changed", slog.String("email", acct.EmailKey))
	return nil
}

// DeleteAccount removes the active account, its conversion history,
// and the session.
func (s *Store) DeleteAccount(ctx context.Context) error {
	s.mu.Lock()
	err := s.deleteAccountLocked(ctx)
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.notifyLogout()
	return nil
}

func (s *Store) deleteAccountLocked(ctx context.Context) error {
	session, err := s.requireSessionLocked()
	if err != nil {
		return err
	}

	kept := make([]*model.Account, 0, len(s.accounts))
	for _, acct := range s.accounts {
		if acct.ID != session.AccountID {
			kept = append(kept, acct)
		}
	}
	s.accounts = kept

	if err := s.persistAccounts(ctx); err != nil {
		return err
	}

	if err := s.kv.Delete(ctx, history.Key(session.EmailKey)); err != nil {
		return &model.PersistenceError{Op: "remove conversion history", Err: err}
	}

	s.logger.Info("account deleted", slog.String("email", session.EmailKey))
	return s.logoutLocked(ctx)
}

// Stats summarises the active account's usage history. It returns
// (nil, nil) when no session is active; absence is not an error here.
func (s *Store) Stats(ctx context.Context) (*model.UserStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil {
		return nil, nil
	}
	if s.usage == nil {
		return nil, errors.New("account: no usage log configured")
	}

	counts, err := s.usage.CountByKind(ctx, s.session.EmailKey)
	if err != nil {
		return nil, fmt.Errorf("read usage history: %w", err)
	}

	total := 0
	for _, n := range counts {
		total += n
	}

	lastLogin := "Never"
	if s.session.LastLoginAt != nil {
		lastLogin = s.session.LastLoginAt.Format("January 2, 2006")
	}

	return &model.UserStats{
		TotalConversions: total,
		SpeechToText:     counts[model.KindSpeechToText],
		TextToSpeech:     counts[model.KindTextToSpeech],
		MemberSince:      s.session.CreatedAt.Format("January 2, 2006"),
		LastLogin:        lastLogin,
	}, nil
}

// RefreshActivity bumps the active session's activity timestamp and
// re-persists the projection. A no-op without a session.
func (s *Store) RefreshActivity(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil {
		return nil
	}
	s.session.LastActivityAt = s.clock.Now()
	return s.persistSessionValue(ctx, s.session)
}

// ExpireIfIdle logs the session out when it has exceeded the idle
// timeout. It reports whether an expiry happened.
func (s *Store) ExpireIfIdle(ctx context.Context) (bool, error) {
	s.mu.Lock()
	if s.session == nil || s.clock.Since(s.session.LastActivityAt) <= s.cfg.IdleTimeout {
		s.mu.Unlock()
		return false, nil
	}
	email := s.session.EmailKey
	err := s.logoutLocked(ctx)
	s.mu.Unlock()
	if err != nil {
		return false, err
	}

	s.logger.Info("session expired after idle timeout", slog.String("email", email))
	s.notifyLogout()
	return true, nil
}

// lookups; callers hold the mutex

func (s *Store) findByEmail(emailKey string) *model.Account {
	for _, acct := range s.accounts {
		if acct.EmailKey == emailKey {
			return acct
		}
	}
	return nil
}

func (s *Store) findByID(id string) *model.Account {
	for _, acct := range s.accounts {
		if acct.ID == id {
			return acct
		}
	}
	return nil
}

// persistence; callers hold the mutex

func (s *Store) persistAccounts(ctx context.Context) error {
	data, err := json.Marshal(s.accounts)
	if err != nil {
		return &model.PersistenceError{Op: "encode accounts", Err: err}
	}
	if err := s.kv.Set(ctx, usersKey, data); err != nil {
		return &model.PersistenceError{Op: "save accounts", Err: err}
	}
	return nil
}

func (s *Store) persistSessionValue(ctx context.Context, session *model.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return &model.PersistenceError{Op: "encode session", Err: err}
	}
	if err := s.kv.Set(ctx, sessionKey, data); err != nil {
		return &model.PersistenceError{Op: "save session", Err: err}
	}
	return nil
}

// credential digest

func hashPassword(password string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

func checkPassword(password, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(password)) == nil
}
