package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// CookieName is the session cookie issued to browsers.
const CookieName = "bloggy_session"

// Flash kinds, matching the two message slots the views render.
const (
	KindSuccess = "success"
	KindError   = "error"
)

// Flash is a one-shot notification consumed by the next rendered view.
type Flash struct {
	Kind string `json:"kind"`
	Text string `json:"text"`
}

// Store persists sessions and their flash queues in Redis.
// A session is a hash session:<sid> whose user_id field is empty for
// anonymous visitors; flashes live in the list flash:<sid>.
type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewStore(rdb *redis.Client, ttl time.Duration) *Store {
	return &Store{rdb: rdb, ttl: ttl}
}

func sessionKey(sid string) string { return "session:" + sid }
func flashKey(sid string) string   { return "flash:" + sid }

// Create allocates a new session id. userID may be empty for an
// anonymous session.
func (s *Store) Create(ctx context.Context, userID string) (string, error) {
	sid := uuid.NewString()
	key := sessionKey(sid)
	pipe := s.rdb.Pipeline()
	pipe.HSet(ctx, key, map[string]any{
		"user_id":    userID,
		"created_at": time.Now().UTC().Format(time.RFC3339Nano),
	})
	pipe.Expire(ctx, key, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return "", err
	}
	return sid, nil
}

// Token returns the session's CSRF token, minting one on first use.
// HSetNX keeps concurrent requests on the same session from racing to
// different tokens.
func (s *Store) Token(ctx context.Context, sid string) (string, error) {
	key := sessionKey(sid)
	tok, err := s.rdb.HGet(ctx, key, "csrf_token").Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return "", err
	}
	if tok != "" {
		return tok, nil
	}
	minted := uuid.NewString()
	set, err := s.rdb.HSetNX(ctx, key, "csrf_token", minted).Result()
	if err != nil {
		return "", err
	}
	if !set {
		return s.rdb.HGet(ctx, key, "csrf_token").Result()
	}
	return minted, nil
}

// Resolve returns the user id bound to sid. found is false when the
// session does not exist or has expired.
func (s *Store) Resolve(ctx context.Context, sid string) (userID string, found bool, err error) {
	data, err := s.rdb.HGetAll(ctx, sessionKey(sid)).Result()
	if err != nil {
		return "", false, err
	}
	if len(data) == 0 {
		return "", false, nil
	}
	return data["user_id"], true, nil
}

// Destroy removes the session and any pending flashes.
func (s *Store) Destroy(ctx context.Context, sid string) error {
	return s.rdb.Del(ctx, sessionKey(sid), flashKey(sid)).Err()
}

// PushFlash appends a flash to the session's queue.
func (s *Store) PushFlash(ctx context.Context, sid string, f Flash) error {
	b, err := json.Marshal(f)
	if err != nil {
		return err
	}
	key := flashKey(sid)
	pipe := s.rdb.Pipeline()
	pipe.RPush(ctx, key, b)
	pipe.Expire(ctx, key, s.ttl)
	_, err = pipe.Exec(ctx)
	return err
}

// PopFlashes drains the session's flash queue.
func (s *Store) PopFlashes(ctx context.Context, sid string) ([]Flash, error) {
	key := flashKey(sid)
	pipe := s.rdb.Pipeline()
	lrange := pipe.LRange(ctx, key, 0, -1)
	pipe.Del(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, err
	}
	raw := lrange.Val()
	flashes := make([]Flash, 0, len(raw))
	for _, item := range raw {
		var f Flash
		if err := json.Unmarshal([]byte(item), &f); err != nil {
			continue
		}
		flashes = append(flashes, f)
	}
	return flashes, nil
}
