package account

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/voxnote/voxnote/internal/dependencies/mocks"
	"github.com/voxnote/voxnote/internal/model"
	"github.com/voxnote/voxnote/internal/services/history"
	"github.com/voxnote/voxnote/internal/storage"
	"github.com/voxnote/voxnote/internal/storage/memory"
	"github.com/voxnote/voxnote/internal/testutil"
)

const (
	testName     = "Ada L"
	testEmail    = "Ada@Example.com"
	testEmailKey = "ada@example.com"
	testPassword = "secret1"
)

type StoreSuite struct {
	suite.Suite
	kv      *memory.Storage
	clock   *mocks.MockClock
	usage   *history.Log
	store   *Store
	ctx     context.Context
	logouts int
}

func TestStoreSuite(t *testing.T) {
	suite.Run(t, new(StoreSuite))
}

func (s *StoreSuite) SetupTest() {
	s.kv = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.usage = history.New(s.kv, s.clock, testutil.NopLogger())
	s.logouts = 0
	s.store = s.newStore(s.kv)
	s.ctx = context.Background()
}

func (s *StoreSuite) newStore(kv storage.KV) *Store {
	cfg := DefaultConfig()
	cfg.OnLogout = func() { s.logouts++ }

	store, err := New(context.Background(), kv, s.usage, s.clock, cfg, testutil.NopLogger())
	s.Require().NoError(err)
	return store
}

// storedAccounts decodes the persisted collection.
func (s *StoreSuite) storedAccounts() []*model.Account {
	data, err := s.kv.Get(s.ctx, "users")
	s.Require().NoError(err)

	var accounts []*model.Account
	s.Require().NoError(json.Unmarshal(data, &accounts))
	return accounts
}

// Register tests

func (s *StoreSuite) TestRegisterSucceeds() {
	session, err := s.store.Register(s.ctx, testName, testEmail, testPassword)
	s.Require().NoError(err)

	s.Equal(testEmailKey, session.EmailKey)
	s.Equal(testName, session.DisplayName)
	s.NotEmpty(session.AccountID)
	s.True(s.store.IsAuthenticated())
}

func (s *StoreSuite) TestRegisterNormalizesEmail() {
	session, err := s.store.Register(s.ctx, testName, "  ADA@Example.COM  ", testPassword)
	s.Require().NoError(err)
	s.Equal(testEmailKey, session.EmailKey)
}

func (s *StoreSuite) TestRegisterAssignsDefaultPreferences() {
	session, _ := s.store.Register(s.ctx, testName, testEmail, testPassword)

	s.Equal("dark", session.Preferences["theme"])
	s.Equal("en-US", session.Preferences["defaultLanguage"])
	s.Equal(true, session.Preferences["autoSave"])
}

func (s *StoreSuite) TestRegisterPersistsDigestButSessionOmitsIt() {
	_, err := s.store.Register(s.ctx, testName, testEmail, testPassword)
	s.Require().NoError(err)

	accounts := s.storedAccounts()
	s.Require().Len(accounts, 1)
	s.NotEmpty(accounts[0].CredentialDigest)
	s.NotEqual(testPassword, accounts[0].CredentialDigest)

	sessionData, err := s.kv.Get(s.ctx, "currentUser")
	s.Require().NoError(err)
	s.NotContains(string(sessionData), "credentialDigest")
	s.NotContains(string(sessionData), accounts[0].CredentialDigest)
}

func (s *StoreSuite) TestRegisterThenLoginRoundTrip() {
	registered, err := s.store.Register(s.ctx, testName, testEmail, testPassword)
	s.Require().NoError(err)

	loggedIn, err := s.store.Login(s.ctx, testEmail, testPassword)
	s.Require().NoError(err)

	s.Equal(registered.AccountID, loggedIn.AccountID)
	s.Equal(registered.EmailKey, loggedIn.EmailKey)
}

func (s *StoreSuite) TestRegisterDuplicateEmailFails() {
	_, err := s.store.Register(s.ctx, testName, testEmail, testPassword)
	s.Require().NoError(err)

	var conflict *model.ConflictError
	_, err = s.store.Register(s.ctx, "Other Name", "ADA@EXAMPLE.COM", "different1")
	s.Require().ErrorAs(err, &conflict)

	s.Len(s.storedAccounts(), 1)
}

func (s *StoreSuite) TestRegisterValidation() {
	cases := []struct {
		testName string
		name     string
		email    string
		password string
		field    string
	}{
		{"short name", "A", testEmail, testPassword, "name"},
		{"whitespace name", "  ", testEmail, testPassword, "name"},
		{"bad email", testName, "not-an-email", testPassword, "email"},
		{"email without tld", testName, "ada@example", testPassword, "email"},
		{"short password", testName, testEmail, "12345", "password"},
	}

	for _, tc := range cases {
		s.Run(tc.testName, func() {
			var ve *model.ValidationError
			_, err := s.store.Register(s.ctx, tc.name, tc.email, tc.password)
			s.Require().ErrorAs(err, &ve)
			s.Equal(tc.field, ve.Field)
		})
	}
}

// Login tests

func (s *StoreSuite) TestLoginUnknownEmailFails() {
	var notFound *model.NotFoundError
	_, err := s.store.Login(s.ctx, "nobody@example.com", testPassword)
	s.ErrorAs(err, &notFound)
}

func (s *StoreSuite) TestLoginWrongPasswordFails() {
	_, _ = s.store.Register(s.ctx, testName, testEmail, testPassword)
	_ = s.store.Logout(s.ctx)

	var authErr *model.AuthenticationError
	_, err := s.store.Login(s.ctx, testEmail, "wrongpass")
	s.Require().ErrorAs(err, &authErr)

	s.Len(s.storedAccounts(), 1)
	s.False(s.store.IsAuthenticated())
}

func (s *StoreSuite) TestLoginEmptyPasswordFails() {
	var ve *model.ValidationError
	_, err := s.store.Login(s.ctx, testEmail, "")
	s.Require().ErrorAs(err, &ve)
	s.Equal("password", ve.Field)
}

func (s *StoreSuite) TestLoginSetsLastLogin() {
	_, _ = s.store.Register(s.ctx, testName, testEmail, testPassword)
	s.clock.Advance(2 * time.Hour)

	session, err := s.store.Login(s.ctx, testEmail, testPassword)
	s.Require().NoError(err)

	s.Require().NotNil(session.LastLoginAt)
	s.Equal(s.clock.Now(), *session.LastLoginAt)
}

func (s *StoreSuite) TestLoginOverwritesExistingSession() {
	_, _ = s.store.Register(s.ctx, testName, testEmail, testPassword)
	_, _ = s.store.Register(s.ctx, "Bob M", "bob@example.com", "hunter22")

	session, err := s.store.Login(s.ctx, testEmail, testPassword)
	s.Require().NoError(err)
	s.Equal(testEmailKey, session.EmailKey)
	s.Equal(testEmailKey, s.store.CurrentUser().EmailKey)
}

// Logout tests

func (s *StoreSuite) TestLogoutClearsSessionAndSweepsTempKeys() {
	_, _ = s.store.Register(s.ctx, testName, testEmail, testPassword)
	_ = s.kv.Set(s.ctx, "temp_lastConversion", []byte("{}"))
	_ = s.kv.Set(s.ctx, "temp_clipboard", []byte("x"))

	err := s.store.Logout(s.ctx)
	s.Require().NoError(err)

	s.False(s.store.IsAuthenticated())
	s.Equal(1, s.logouts)

	_, err = s.kv.Get(s.ctx, "currentUser")
	s.ErrorIs(err, storage.ErrNotFound)
	_, err = s.kv.Get(s.ctx, "temp_lastConversion")
	s.ErrorIs(err, storage.ErrNotFound)
	_, err = s.kv.Get(s.ctx, "temp_clipboard")
	s.ErrorIs(err, storage.ErrNotFound)
}

func (s *StoreSuite) TestLogoutKeepsNonTempKeys() {
	_, _ = s.store.Register(s.ctx, testName, testEmail, testPassword)
	_, _ = s.usage.Append(s.ctx, testEmailKey, model.KindTextToSpeech, "hello", "en-US")

	_ = s.store.Logout(s.ctx)

	_, err := s.kv.Get(s.ctx, history.Key(testEmailKey))
	s.NoError(err)
}

// Guard tests

func (s *StoreSuite) TestRequireSessionWithoutSession() {
	var authErr *model.AuthenticationError
	_, err := s.store.RequireSession()
	s.Require().ErrorAs(err, &authErr)
	s.Equal("no active session", authErr.Reason)
}

func (s *StoreSuite) TestRequireSessionWithSession() {
	_, _ = s.store.Register(s.ctx, testName, testEmail, testPassword)

	session, err := s.store.RequireSession()
	s.Require().NoError(err)
	s.Equal(testEmailKey, session.EmailKey)
}

// UpdateProfile tests

func (s *StoreSuite) TestUpdateProfileWithoutSessionFails() {
	var authErr *model.AuthenticationError
	_, err := s.store.UpdateProfile(s.ctx, "New Name", "new@example.com")
	s.ErrorAs(err, &authErr)
}

func (s *StoreSuite) TestUpdateProfileSucceeds() {
	_, _ = s.store.Register(s.ctx, testName, testEmail, testPassword)

	session, err := s.store.UpdateProfile(s.ctx, "Ada Lovelace", "Countess@Example.com")
	s.Require().NoError(err)

	s.Equal("Ada Lovelace", session.DisplayName)
	s.Equal("countess@example.com", session.EmailKey)

	accounts := s.storedAccounts()
	s.Equal("countess@example.com", accounts[0].EmailKey)
}

func (s *StoreSuite) TestUpdateProfileKeepingOwnEmailSucceeds() {
	_, _ = s.store.Register(s.ctx, testName, testEmail, testPassword)

	_, err := s.store.UpdateProfile(s.ctx, "Ada Lovelace", testEmail)
	s.NoError(err)
}

func (s *StoreSuite) TestUpdateProfileToTakenEmailFails() {
	_, _ = s.store.Register(s.ctx, "Bob M", "bob@example.com", "hunter22")
	_, _ = s.store.Register(s.ctx, testName, testEmail, testPassword)

	var conflict *model.ConflictError
	_, err := s.store.UpdateProfile(s.ctx, testName, "Bob@Example.com")
	s.ErrorAs(err, &conflict)
}

// UpdatePreferences tests

func (s *StoreSuite) TestUpdatePreferencesMerges() {
	_, _ = s.store.Register(s.ctx, testName, testEmail, testPassword)

	merged, err := s.store.UpdatePreferences(s.ctx, model.Preferences{"theme": "light"})
	s.Require().NoError(err)

	s.Equal("light", merged["theme"])
	s.Equal("en-US", merged["defaultLanguage"])
	s.Equal(true, merged["autoSave"])

	s.Equal("light", s.store.CurrentUser().Preferences["theme"])
}

func (s *StoreSuite) TestUpdatePreferencesWithoutSessionFails() {
	var authErr *model.AuthenticationError
	_, err := s.store.UpdatePreferences(s.ctx, model.Preferences{"theme": "light"})
	s.ErrorAs(err, &authErr)
}

// ChangePassword tests

func (s *StoreSuite) TestChangePasswordRotatesCredential() {
	_, _ = s.store.Register(s.ctx, testName, testEmail, testPassword)

	err := s.store.ChangePassword(s.ctx, testPassword, "newsecret")
	s.Require().NoError(err)

	var authErr *model.AuthenticationError
	_, err = s.store.Login(s.ctx, testEmail, testPassword)
	s.ErrorAs(err, &authErr)

	_, err = s.store.Login(s.ctx, testEmail, "newsecret")
	s.NoError(err)
}

func (s *StoreSuite) TestChangePasswordWrongCurrentFails() {
	_, _ = s.store.Register(s.ctx, testName, testEmail, testPassword)

	var authErr *model.AuthenticationError
	err := s.store.ChangePassword(s.ctx, "wrongpass", "newsecret")
	s.ErrorAs(err, &authErr)
}

func (s *StoreSuite) TestChangePasswordShortNewPasswordFails() {
	_, _ = s.store.Register(s.ctx, testName, testEmail, testPassword)

	var ve *model.ValidationError
	err := s.store.ChangePassword(s.ctx, testPassword, "12345")
	s.Require().ErrorAs(err, &ve)
	s.Equal("newPassword", ve.Field)
}

// DeleteAccount tests

func (s *StoreSuite) TestDeleteAccountRemovesEverything() {
	_, _ = s.store.Register(s.ctx, testName, testEmail, testPassword)
	_, _ = s.usage.Append(s.ctx, testEmailKey, model.KindSpeechToText, "note", "en-US")

	err := s.store.DeleteAccount(s.ctx)
	s.Require().NoError(err)

	s.False(s.store.IsAuthenticated())
	s.Equal(1, s.logouts)
	s.Empty(s.storedAccounts())

	_, err = s.kv.Get(s.ctx, history.Key(testEmailKey))
	s.ErrorIs(err, storage.ErrNotFound)

	var notFound *model.NotFoundError
	_, err = s.store.Login(s.ctx, testEmail, testPassword)
	s.ErrorAs(err, &notFound)
}

func (s *StoreSuite) TestDeleteAccountWithoutSessionFails() {
	var authErr *model.AuthenticationError
	err := s.store.DeleteAccount(s.ctx)
	s.ErrorAs(err, &authErr)
}

// Stats tests

func (s *StoreSuite) TestStatsWithoutSessionReturnsAbsence() {
	stats, err := s.store.Stats(s.ctx)
	s.NoError(err)
	s.Nil(stats)
}

func (s *StoreSuite) TestStatsCountsByKind() {
	_, _ = s.store.Register(s.ctx, testName, testEmail, testPassword)
	_, _ = s.usage.Append(s.ctx, testEmailKey, model.KindSpeechToText, "one", "en-US")
	_, _ = s.usage.Append(s.ctx, testEmailKey, model.KindSpeechToText, "two", "en-US")
	_, _ = s.usage.Append(s.ctx, testEmailKey, model.KindTextToSpeech, "three", "en-US")

	stats, err := s.store.Stats(s.ctx)
	s.Require().NoError(err)

	s.Equal(3, stats.TotalConversions)
	s.Equal(2, stats.SpeechToText)
	s.Equal(1, stats.TextToSpeech)
	s.Equal("January 1, 2024", stats.MemberSince)
}

func (s *StoreSuite) TestStatsLastLoginNeverBeforeFirstLogin() {
	_, _ = s.store.Register(s.ctx, testName, testEmail, testPassword)

	stats, err := s.store.Stats(s.ctx)
	s.Require().NoError(err)
	s.Equal("Never", stats.LastLogin)
}

func (s *StoreSuite) TestStatsLastLoginFormattedAfterLogin() {
	_, _ = s.store.Register(s.ctx, testName, testEmail, testPassword)
	s.clock.Set(time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC))
	_, _ = s.store.Login(s.ctx, testEmail, testPassword)

	stats, err := s.store.Stats(s.ctx)
	s.Require().NoError(err)
	s.Equal("March 15, 2024", stats.LastLogin)
}

// Restart / persistence tests

func (s *StoreSuite) TestRestartPreservesAccountsAndSession() {
	registered, _ := s.store.Register(s.ctx, testName, testEmail, testPassword)

	reloaded := s.newStore(s.kv)

	s.True(reloaded.IsAuthenticated())
	s.Equal(registered.AccountID, reloaded.CurrentUser().AccountID)
	s.Equal(registered.EmailKey, reloaded.CurrentUser().EmailKey)

	// Credentials survive the round trip.
	_, err := reloaded.Login(s.ctx, testEmail, testPassword)
	s.NoError(err)
}

func (s *StoreSuite) TestRestartDiscardsStaleSession() {
	_, _ = s.store.Register(s.ctx, testName, testEmail, testPassword)
	s.clock.Advance(25 * time.Hour)

	reloaded := s.newStore(s.kv)

	s.False(reloaded.IsAuthenticated())
}

func (s *StoreSuite) TestRestartWithCorruptAccountsStartsEmpty() {
	_ = s.kv.Set(s.ctx, "users", []byte("{not json"))

	reloaded := s.newStore(s.kv)

	s.False(reloaded.IsAuthenticated())
	_, err := reloaded.Register(s.ctx, testName, testEmail, testPassword)
	s.NoError(err)
}

func (s *StoreSuite) TestRestartWithCorruptSessionStartsSignedOut() {
	_, _ = s.store.Register(s.ctx, testName, testEmail, testPassword)
	_ = s.kv.Set(s.ctx, "currentUser", []byte("{not json"))

	reloaded := s.newStore(s.kv)

	s.False(reloaded.IsAuthenticated())
	s.Len(s.storedAccounts(), 1)
}

func (s *StoreSuite) TestRestartDiscardsSessionForDeletedAccount() {
	_, _ = s.store.Register(s.ctx, testName, testEmail, testPassword)
	_ = s.kv.Set(s.ctx, "users", []byte("[]"))

	reloaded := s.newStore(s.kv)

	s.False(reloaded.IsAuthenticated())
}

// Persistence failure tests

type failingKV struct {
	storage.KV
	setErr error
}

func (f *failingKV) Set(ctx context.Context, key string, value []byte) error {
	if f.setErr != nil {
		return f.setErr
	}
	return f.KV.Set(ctx, key, value)
}

func (s *StoreSuite) TestRegisterSurfacesFailedWrite() {
	kv := &failingKV{KV: s.kv}
	store := s.newStore(kv)
	kv.setErr = errors.New("disk full")

	var persistErr *model.PersistenceError
	_, err := store.Register(s.ctx, testName, testEmail, testPassword)
	s.Require().ErrorAs(err, &persistErr)

	// The in-memory collection must not keep the phantom account.
	kv.setErr = nil
	_, err = store.Register(s.ctx, testName, testEmail, testPassword)
	s.NoError(err)
}
