package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"eldercare/internal/emulated"
	"eldercare/internal/kv"
	"eldercare/internal/security"
	"eldercare/internal/session"
	"eldercare/internal/storage"
	"eldercare/internal/storage/storagetest"
)

// backends lists the storage substrates the service tests run against.
// engine_sqlite_test.go adds the SQLite engine when cgo is available.
var backends = map[string]storagetest.Factory{
	"emulated": func(t *testing.T) storage.Backend {
		return emulated.New(kv.NewMemory())
	},
}

var testNow = time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)

type services struct {
	store *storage.Dispatcher
	auth  *AuthService
	elder *ElderService
	link  *LinkService
	mail  *fakeMailer
}

func newServices(t *testing.T, factory storagetest.Factory) *services {
	t.Helper()
	store := storagetest.Open(t, factory)
	sessions := session.NewTokenStore(kv.NewMemory(), "test-secret", time.Hour)
	mail := &fakeMailer{}

	auth := NewAuthService(store, security.NewBcryptHasher(bcrypt.MinCost), sessions, zap.NewNop())
	auth.now = func() time.Time { return testNow }
	link := NewLinkService(store, mail, zap.NewNop())
	link.now = func() time.Time { return testNow }

	return &services{
		store: store,
		auth:  auth,
		elder: NewElderService(store, zap.NewNop()),
		link:  link,
		mail:  mail,
	}
}

func forEachBackend(t *testing.T, fn func(t *testing.T, s *services)) {
	for name, factory := range backends {
		t.Run(name, func(t *testing.T) {
			fn(t, newServices(t, factory))
		})
	}
}

type sentCode struct {
	To, ElderName, Code string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentCode
	err  error
}

func (m *fakeMailer) SendLinkCode(_ context.Context, toEmail, elderName, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentCode{To: toEmail, ElderName: elderName, Code: code})
	return nil
}

func ptr[T any](v T) *T { return &v }
