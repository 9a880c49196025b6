package service

import (
	"context"
	"io"
	"sync"

	"github.com/fsdevblog/smm-panel/internal/domain"
	"github.com/fsdevblog/smm-panel/internal/repository/memrepo"
	"github.com/sirupsen/logrus"
)

// recordingPersister запоминает версии сохраненных снимков.
type recordingPersister struct {
	mu       sync.Mutex
	versions []uint64
	last     domain.Snapshot
	err      error
}

func (p *recordingPersister) Save(_ context.Context, snapshot domain.Snapshot) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.versions = append(p.versions, snapshot.Version)
	p.last = snapshot
	return nil
}

func (p *recordingPersister) saved() []uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]uint64(nil), p.versions...)
}

func discardLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func memStores(balance int64) Stores {
	mem := memrepo.NewStores(domain.DefaultSnapshot("demo", balance))
	return Stores{
		Catalog:  mem.Catalog,
		Accounts: mem.Accounts,
		Orders:   mem.Orders,
	}
}
