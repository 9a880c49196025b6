package filerepo

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsdevblog/smm-panel/internal/domain"
	"github.com/stretchr/testify/suite"
)

type StateStoreTestSuite struct {
	suite.Suite
	dir   string
	store *StateStore
}

func TestStateStoreSuite(t *testing.T) {
	suite.Run(t, new(StateStoreTestSuite))
}

func (s *StateStoreTestSuite) SetupTest() {
	s.dir = s.T().TempDir()
	store, err := New(filepath.Join(s.dir, "data", "db.json"))
	s.Require().NoError(err)
	s.store = store
}

func (s *StateStoreTestSuite) TestLoadMissingFile() {
	_, err := s.store.Load(s.T().Context())
	s.Require().ErrorIs(err, domain.ErrRecordNotFound)
}

func (s *StateStoreTestSuite) TestSaveAndLoad() {
	snap := domain.DefaultSnapshot("demo", 15000)
	snap.Orders = []domain.Order{{
		ID:          "o-1",
		ServiceID:   1,
		ServiceName: "YouTube Subscribers",
		Qty:         1000,
		Target:      "user123",
		Total:       15000,
		Status:      domain.OrderStatusPending,
		CreatedAt:   time.Now().UTC().Truncate(time.Second),
	}}

	s.Require().NoError(s.store.Save(s.T().Context(), snap))

	loaded, err := s.store.Load(s.T().Context())
	s.Require().NoError(err)
	s.Equal(snap.Account, loaded.Account)
	s.Equal(snap.Services, loaded.Services)
	s.Equal(snap.Orders, loaded.Orders)

	// временные файлы не остаются в каталоге.
	entries, readErr := os.ReadDir(filepath.Join(s.dir, "data"))
	s.Require().NoError(readErr)
	s.Len(entries, 1)
}

func (s *StateStoreTestSuite) TestLoadCorruptedFile() {
	s.Require().NoError(os.WriteFile(s.store.path, []byte("{broken"), filePerm))

	_, err := s.store.Load(s.T().Context())
	s.Require().ErrorIs(err, domain.ErrStorageUnavailable)
}

func (s *StateStoreTestSuite) TestEmptyPath() {
	_, err := New("")
	s.Require().ErrorIs(err, domain.ErrInvalidInput)
}
