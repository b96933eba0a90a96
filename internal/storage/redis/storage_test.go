package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/voxnote/voxnote/internal/storage"
)

type StorageSuite struct {
	suite.Suite
	mini    *miniredis.Miniredis
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.mini = miniredis.RunT(s.T())

	client := redis.NewClient(&redis.Options{
		Addr: s.mini.Addr(),
	})

	s.storage = NewWithClient(client, DefaultConfig())
	s.ctx = context.Background()
}

func (s *StorageSuite) TearDownTest() {
	if s.storage != nil {
		_ = s.storage.Close()
	}
	if s.mini != nil {
		s.mini.Close()
	}
}

func (s *StorageSuite) TestSetAndGet() {
	err := s.storage.Set(s.ctx, "users", []byte(`[{"id":"1"}]`))
	s.Require().NoError(err)

	value, err := s.storage.Get(s.ctx, "users")
	s.Require().NoError(err)
	s.Equal([]byte(`[{"id":"1"}]`), value)
}

func (s *StorageSuite) TestGetMissingKey() {
	_, err := s.storage.Get(s.ctx, "nonexistent")
	s.ErrorIs(err, storage.ErrNotFound)
}

func (s *StorageSuite) TestKeysAreNamespaced() {
	_ = s.storage.Set(s.ctx, "currentUser", []byte("{}"))

	s.True(s.mini.Exists("voxnote:currentUser"))
}

func (s *StorageSuite) TestDelete() {
	_ = s.storage.Set(s.ctx, "k", []byte("v"))

	err := s.storage.Delete(s.ctx, "k")
	s.Require().NoError(err)

	_, err = s.storage.Get(s.ctx, "k")
	s.ErrorIs(err, storage.ErrNotFound)
}

func (s *StorageSuite) TestDeleteMissingKeyIsNoop() {
	s.NoError(s.storage.Delete(s.ctx, "nonexistent"))
}

func (s *StorageSuite) TestKeysWithPrefix() {
	_ = s.storage.Set(s.ctx, "temp_clipboard", []byte("1"))
	_ = s.storage.Set(s.ctx, "temp_lastConversion", []byte("2"))
	_ = s.storage.Set(s.ctx, "users", []byte("3"))

	keys, err := s.storage.Keys(s.ctx, "temp_")
	s.Require().NoError(err)
	s.ElementsMatch([]string{"temp_clipboard", "temp_lastConversion"}, keys)
}

func (s *StorageSuite) TestKeysStripNamespace() {
	_ = s.storage.Set(s.ctx, "users", []byte("1"))

	keys, err := s.storage.Keys(s.ctx, "users")
	s.Require().NoError(err)
	s.Equal([]string{"users"}, keys)
}
