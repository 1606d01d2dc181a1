package service

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/kursadbilgin/dispatch-console/internal/domain"
	"github.com/kursadbilgin/dispatch-console/internal/repository"
)

type fakeNotificationRepo struct {
	listRecordsFn func(ctx context.Context, filter repository.RecordFilter) ([]domain.NotificationRecord, error)
	listFn        func(ctx context.Context, params repository.ListParams) ([]domain.NotificationRecord, int64, error)
	fingerprintFn func(ctx context.Context, filter repository.RecordFilter) (repository.Fingerprint, error)

	mu               sync.Mutex
	listRecordsCalls int
}

func (f *fakeNotificationRepo) ListRecords(ctx context.Context, filter repository.RecordFilter) ([]domain.NotificationRecord, error) {
	f.mu.Lock()
	f.listRecordsCalls++
	f.mu.Unlock()

	if f.listRecordsFn != nil {
		return f.listRecordsFn(ctx, filter)
	}
	return nil, nil
}

func (f *fakeNotificationRepo) List(ctx context.Context, params repository.ListParams) ([]domain.NotificationRecord, int64, error) {
	if f.listFn != nil {
		return f.listFn(ctx, params)
	}
	return nil, 0, nil
}

func (f *fakeNotificationRepo) Fingerprint(ctx context.Context, filter repository.RecordFilter) (repository.Fingerprint, error) {
	if f.fingerprintFn != nil {
		return f.fingerprintFn(ctx, filter)
	}
	return repository.Fingerprint{}, nil
}

func (f *fakeNotificationRepo) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listRecordsCalls
}

type fakeApplicationRepo struct {
	createFn            func(ctx context.Context, app *domain.Application) error
	listFn              func(ctx context.Context) ([]domain.Application, error)
	getByNameFn         func(ctx context.Context, name string) (*domain.Application, error)
	updateCredentialsFn func(ctx context.Context, name string, creds domain.Credentials) error
	deleteByNameFn      func(ctx context.Context, name string) error
}

func (f *fakeApplicationRepo) Create(ctx context.Context, app *domain.Application) error {
	if f.createFn != nil {
		return f.createFn(ctx, app)
	}
	return nil
}

func (f *fakeApplicationRepo) List(ctx context.Context) ([]domain.Application, error) {
	if f.listFn != nil {
		return f.listFn(ctx)
	}
	return nil, nil
}

func (f *fakeApplicationRepo) GetByName(ctx context.Context, name string) (*domain.Application, error) {
	if f.getByNameFn != nil {
		return f.getByNameFn(ctx, name)
	}
	return nil, domain.ErrNotFound
}

func (f *fakeApplicationRepo) UpdateCredentials(ctx context.Context, name string, creds domain.Credentials) error {
	if f.updateCredentialsFn != nil {
		return f.updateCredentialsFn(ctx, name, creds)
	}
	return nil
}

func (f *fakeApplicationRepo) DeleteByName(ctx context.Context, name string) error {
	if f.deleteByNameFn != nil {
		return f.deleteByNameFn(ctx, name)
	}
	return nil
}

// memoryCache is an in-process StatsCache that round-trips values through
// JSON like the redis one.
type memoryCache struct {
	getErr error
	setErr error

	mu      sync.Mutex
	entries map[string][]byte
	sets    int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string][]byte)}
}

func (c *memoryCache) Get(_ context.Context, key string, dest any) (bool, error) {
	if c.getErr != nil {
		return false, c.getErr
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	raw, ok := c.entries[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (c *memoryCache) Set(_ context.Context, key string, value any) error {
	if c.setErr != nil {
		return c.setErr
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = raw
	c.sets++
	return nil
}

func (c *memoryCache) keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys := make([]string, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	return keys
}

type fakeLimiter struct {
	allowFn func(ctx context.Context, key string) (bool, error)
	keys    []string
}

func (f *fakeLimiter) Allow(ctx context.Context, key string) (bool, error) {
	f.keys = append(f.keys, key)
	if f.allowFn != nil {
		return f.allowFn(ctx, key)
	}
	return true, nil
}
