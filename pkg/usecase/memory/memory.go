// Package memory implements the dual-backend memory store: durable JSON
// log first, similarity index second. Writes always land in the log;
// indexing and similarity search degrade to a substring scan over the log
// whenever the vector backend is unavailable.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/kevin-biot/mcp-memory/pkg/adapter"
	"github.com/kevin-biot/mcp-memory/pkg/repository"
	"github.com/kevin-biot/mcp-memory/pkg/utils/logging"
)

// sessionContextCap bounds how many records feed one session summary.
const sessionContextCap = 50

// UseCase is the memory manager. It exclusively owns both collections and
// the log directory; backend handles are established in Initialize and
// read-mostly afterwards.
type UseCase struct {
	repo   repository.Repository
	index  adapter.Index
	domain string

	mu            sync.Mutex
	initialized   bool
	degraded      bool
	retryInterval time.Duration
	nextProbe     time.Time
}

// Option is a functional option for UseCase
type Option func(*UseCase)

// WithIndex attaches a similarity index. Without one the manager runs in
// fallback-only mode.
func WithIndex(index adapter.Index) Option {
	return func(uc *UseCase) {
		uc.index = index
	}
}

// WithRetryInterval makes backend degradation non-sticky: after d the
// manager re-probes the index instead of staying in fallback mode for the
// rest of its lifetime. Zero keeps the permanent downgrade.
func WithRetryInterval(d time.Duration) Option {
	return func(uc *UseCase) {
		uc.retryInterval = d
	}
}

// New creates a memory manager stamping every stored record with domain.
func New(repo repository.Repository, domain string, opts ...Option) *UseCase {
	uc := &UseCase{
		repo:   repo,
		domain: domain,
	}

	for _, opt := range opts {
		opt(uc)
	}

	return uc
}

// Initialize provisions both similarity collections. Idempotent. A
// provisioning failure is not an error: the manager downgrades to
// fallback-only search and keeps accepting writes.
func (u *UseCase) Initialize(ctx context.Context) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.initialized {
		return nil
	}
	u.initialized = true

	if u.index == nil {
		logging.From(ctx).Info("no similarity index configured, fallback-only mode")
		u.degraded = true
		return nil
	}

	if err := u.index.Init(ctx); err != nil {
		logging.From(ctx).Warn("similarity backend unavailable, entering fallback mode",
			"error", err, "retry_interval", u.retryInterval)
		u.enterFallbackLocked()
	}

	return nil
}

// backendReady reports whether the index path is usable, re-probing a
// degraded backend when the configured retry interval has elapsed.
func (u *UseCase) backendReady(ctx context.Context) bool {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.index == nil {
		return false
	}
	if !u.degraded {
		return true
	}
	if u.retryInterval <= 0 || time.Now().Before(u.nextProbe) {
		return false
	}

	if err := u.index.Init(ctx); err != nil {
		logging.From(ctx).Warn("similarity backend still unavailable", "error", err)
		u.nextProbe = time.Now().Add(u.retryInterval)
		return false
	}

	logging.From(ctx).Info("similarity backend recovered")
	u.degraded = false
	return true
}

// degrade records a backend failure. With no retry interval the downgrade
// is permanent for this manager instance.
func (u *UseCase) degrade(ctx context.Context, err error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	if !u.degraded {
		logging.From(ctx).Warn("similarity backend failed, degrading to fallback search", "error", err)
	}
	u.enterFallbackLocked()
}

func (u *UseCase) enterFallbackLocked() {
	u.degraded = true
	if u.retryInterval > 0 {
		u.nextProbe = time.Now().Add(u.retryInterval)
	}
}
