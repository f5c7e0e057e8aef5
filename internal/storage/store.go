package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"moneymanager/internal/cache"
	"moneymanager/internal/log"
)

// AllKeys is the Change.Key sent after Reset.
const AllKeys = "*"

// ErrUnchanged may be returned from an Update function to skip the write.
var ErrUnchanged = errors.New("value unchanged")

// Change describes a committed write.
type Change struct {
	Key string
	At  time.Time
}

// Key names a stored value of type T and supplies its default.
type Key[T any] struct {
	name string
	def  func() T
}

// NewKey returns a key whose absent or unreadable value is replaced by def().
func NewKey[T any](name string, def func() T) Key[T] {
	return Key[T]{name: name, def: def}
}

func (k Key[T]) Name() string { return k.name }

// Store is the session view of a Backend. Reads are served from an
// in-process cache after first access; writes go to the backend first.
type Store struct {
	mu      sync.Mutex
	backend Backend
	cache   cache.Cache[any]
	logger  *log.Logger
	now     func() time.Time

	subMu   sync.Mutex
	subs    map[int]func(Change)
	nextSub int
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithClock overrides the clock used to stamp changes.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) { s.now = now }
}

// NewStore wraps backend. A nil logger falls back to the default logger.
func NewStore(backend Backend, logger *log.Logger, opts ...StoreOption) *Store {
	if logger == nil {
		logger = log.Default()
	}
	s := &Store{
		backend: backend,
		cache:   cache.NewLRUCache[any](64, 0),
		logger:  logger.WithComponent(log.ComponentStorage),
		now:     time.Now,
		subs:    make(map[int]func(Change)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Subscribe registers fn for every committed change and returns a function
// that removes it. fn runs synchronously on the writer's goroutine after the
// store lock has been released.
func (s *Store) Subscribe(fn func(Change)) (unsubscribe func()) {
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subs, id)
			s.subMu.Unlock()
		})
	}
}

func (s *Store) notify(key string) {
	change := Change{Key: key, At: s.now()}

	s.subMu.Lock()
	fns := make([]func(Change), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(change)
	}
}

// Reset removes every persisted value and empties the cache. The next Get
// of any key yields its default.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	if err := s.backend.Clear(ctx); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("reset store: %w", err)
	}
	s.cache.Clear()
	s.mu.Unlock()

	s.logger.Info("Store reset", log.FieldOperation, log.OpReset)
	s.notify(AllKeys)
	return nil
}

// Invalidate drops the cached value for key, or every cached value for
// AllKeys, so the next Get reads the backend again. It is used when another
// process has written to the same backend.
func (s *Store) Invalidate(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if key == AllKeys {
		s.cache.Clear()
		return
	}
	s.cache.Delete(key)
}

// Close closes the backend.
func (s *Store) Close() error {
	return s.backend.Close()
}

// Get returns the current value for key. The returned value is shared with
// the cache and must not be mutated in place.
func Get[T any](ctx context.Context, s *Store, key Key[T]) (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return load(ctx, s, key)
}

// load must be called with s.mu held.
func load[T any](ctx context.Context, s *Store, key Key[T]) (T, error) {
	if v, ok := s.cache.Get(key.name); ok {
		if typed, ok := v.(T); ok {
			return typed, nil
		}
	}

	raw, err := s.backend.Load(ctx, key.name)
	switch {
	case errors.Is(err, ErrNotFound):
		return seed(ctx, s, key), nil
	case err != nil:
		var zero T
		return zero, fmt.Errorf("load %s: %w", key.name, err)
	}

	var value T
	if err := json.Unmarshal(raw, &value); err != nil {
		s.logger.Warn("Stored value unreadable, replacing with default",
			log.FieldKey, key.name,
			log.FieldError, err.Error(),
			log.FieldErrorType, log.ErrorTypeDatabase)
		return seed(ctx, s, key), nil
	}

	s.cache.Set(key.name, value)
	return value, nil
}

// seed writes the default for key back to the backend. A failed write is
// logged and leaves the cache empty so the next read tries again.
func seed[T any](ctx context.Context, s *Store, key Key[T]) T {
	value := key.def()
	if err := persist(ctx, s, key.name, value); err != nil {
		s.logger.Warn("Failed to persist default value",
			log.FieldKey, key.name,
			log.FieldError, err.Error())
		return value
	}
	s.cache.Set(key.name, value)
	return value
}

func persist(ctx context.Context, s *Store, name string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	if err := s.backend.Save(ctx, name, raw); err != nil {
		return fmt.Errorf("save %s: %w", name, err)
	}
	return nil
}

// Set replaces the value for key. The backend write happens before the
// cache is touched, so a failed write leaves the previous value visible.
func Set[T any](ctx context.Context, s *Store, key Key[T], value T) error {
	s.mu.Lock()
	if err := persist(ctx, s, key.name, value); err != nil {
		s.mu.Unlock()
		return err
	}
	s.cache.Set(key.name, value)
	s.mu.Unlock()

	s.logger.Debug("Value stored", log.FieldKey, key.name)
	s.notify(key.name)
	return nil
}

// Update applies fn to the current value and stores the result as one step.
// If fn returns ErrUnchanged nothing is written and Update returns nil; any
// other error is returned as is.
func Update[T any](ctx context.Context, s *Store, key Key[T], fn func(prev T) (T, error)) error {
	s.mu.Lock()
	prev, err := load(ctx, s, key)
	if err != nil {
		s.mu.Unlock()
		return err
	}

	next, err := fn(prev)
	if err != nil {
		s.mu.Unlock()
		if errors.Is(err, ErrUnchanged) {
			return nil
		}
		return err
	}

	if err := persist(ctx, s, key.name, next); err != nil {
		s.mu.Unlock()
		return err
	}
	s.cache.Set(key.name, next)
	s.mu.Unlock()

	s.logger.Debug("Value updated", log.FieldKey, key.name)
	s.notify(key.name)
	return nil
}
