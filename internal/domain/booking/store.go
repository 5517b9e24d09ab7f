package booking

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	sessionKeyPrefix    = "booking:session:"
	submitLockKeyPrefix = "booking:submit:"
	submitLockTTL       = 2 * time.Minute
)

// Deletes the lock only while it still holds our token.
var releaseLockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// SessionStore persists booking sessions between requests.
type SessionStore interface {
	Load(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Delete(ctx context.Context, id string) error
	// LockSubmission guards a session against concurrent submissions. It
	// returns ErrSubmissionInProgress when the lock is already held.
	LockSubmission(ctx context.Context, id string) (release func(), err error)
}

// RedisSessionStore keeps session snapshots in Redis with a sliding TTL.
type RedisSessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisSessionStore creates a Redis-backed session store.
func NewRedisSessionStore(client *redis.Client, ttl time.Duration) *RedisSessionStore {
	return &RedisSessionStore{client: client, ttl: ttl}
}

func (st *RedisSessionStore) Load(ctx context.Context, id string) (*Session, error) {
	data, err := st.client.Get(ctx, sessionKeyPrefix+id).Bytes()
	if err == redis.Nil {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load booking session: %w", err)
	}
	return RestoreSession(data)
}

func (st *RedisSessionStore) Save(ctx context.Context, s *Session) error {
	data, err := s.Snapshot()
	if err != nil {
		return err
	}
	if err := st.client.Set(ctx, sessionKeyPrefix+s.ID, data, st.ttl).Err(); err != nil {
		return fmt.Errorf("save booking session: %w", err)
	}
	return nil
}

func (st *RedisSessionStore) Delete(ctx context.Context, id string) error {
	return st.client.Del(ctx, sessionKeyPrefix+id).Err()
}

func (st *RedisSessionStore) LockSubmission(ctx context.Context, id string) (func(), error) {
	key := submitLockKeyPrefix + id
	token := uuid.New().String()
	ok, err := st.client.SetNX(ctx, key, token, submitLockTTL).Result()
	if err != nil {
		return nil, fmt.Errorf("lock booking submission: %w", err)
	}
	if !ok {
		return nil, ErrSubmissionInProgress
	}
	return func() {
		// the request context may already be gone
		releaseLockScript.Run(context.Background(), st.client, []string{key}, token)
	}, nil
}

// MemorySessionStore keeps snapshots in process memory. Used when Redis is
// not configured and in tests.
type MemorySessionStore struct {
	mu      sync.Mutex
	data    map[string][]byte
	locks   map[string]struct{}
	expires map[string]time.Time
	ttl     time.Duration
	now     func() time.Time
}

// NewMemorySessionStore creates an in-memory session store. A ttl of zero
// keeps sessions forever.
func NewMemorySessionStore(ttl time.Duration) *MemorySessionStore {
	return &MemorySessionStore{
		data:    make(map[string][]byte),
		locks:   make(map[string]struct{}),
		expires: make(map[string]time.Time),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (st *MemorySessionStore) Load(ctx context.Context, id string) (*Session, error) {
	st.mu.Lock()
	data, ok := st.data[id]
	if ok && st.ttl > 0 && st.now().After(st.expires[id]) {
		delete(st.data, id)
		delete(st.expires, id)
		ok = false
	}
	st.mu.Unlock()

	if !ok {
		return nil, ErrSessionNotFound
	}
	return RestoreSession(data)
}

func (st *MemorySessionStore) Save(ctx context.Context, s *Session) error {
	data, err := s.Snapshot()
	if err != nil {
		return err
	}
	st.mu.Lock()
	st.data[s.ID] = data
	if st.ttl > 0 {
		st.expires[s.ID] = st.now().Add(st.ttl)
	}
	st.mu.Unlock()
	return nil
}

func (st *MemorySessionStore) Delete(ctx context.Context, id string) error {
	st.mu.Lock()
	delete(st.data, id)
	delete(st.expires, id)
	st.mu.Unlock()
	return nil
}

func (st *MemorySessionStore) LockSubmission(ctx context.Context, id string) (func(), error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if _, held := st.locks[id]; held {
		return nil, ErrSubmissionInProgress
	}
	st.locks[id] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			st.mu.Lock()
			delete(st.locks, id)
			st.mu.Unlock()
		})
	}, nil
}

// IsNotFound reports whether err means the session does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrSessionNotFound)
}
