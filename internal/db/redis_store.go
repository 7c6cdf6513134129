package db

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/wikismart/wikismart/internal/models"
)

const redisOpTimeout = 5 * time.Second

// ConnectRedis opens a client and verifies it with PING.
func ConnectRedis(addr, password string, database int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       database,
	})
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return rdb, nil
}

// RedisSessionStore keeps one session as a hash under key. The Telegram
// front end uses one key per chat.
type RedisSessionStore struct {
	rdb *redis.Client
	key string
}

func NewRedisSessionStore(rdb *redis.Client, key string) *RedisSessionStore {
	return &RedisSessionStore{rdb: rdb, key: key}
}

// ChatSessionKey is the hash key holding the session of a Telegram chat.
func ChatSessionKey(chatID int64) string {
	return "wikismart:session:chat:" + strconv.FormatInt(chatID, 10)
}

func (s *RedisSessionStore) Load() (*models.Session, error) {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()
	val, err := s.rdb.HGetAll(ctx, s.key).Result()
	if err != nil {
		return nil, err
	}
	if len(val) == 0 || val["token"] == "" {
		return nil, nil
	}
	id, _ := strconv.Atoi(val["user_id"])
	return &models.Session{
		Token: val["token"],
		User: models.User{
			ID:       id,
			Username: val["username"],
			Email:    val["email"],
			IsAdmin:  val["is_admin"] == "1",
		},
	}, nil
}

func (s *RedisSessionStore) Save(sess *models.Session) error {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()
	return s.rdb.HSet(ctx, s.key, map[string]interface{}{
		"user_id":  sess.User.ID,
		"username": sess.User.Username,
		"email":    sess.User.Email,
		"is_admin": boolToInt64(sess.User.IsAdmin),
		"token":    sess.Token,
	}).Err()
}

func (s *RedisSessionStore) Clear() error {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()
	return s.rdb.Del(ctx, s.key).Err()
}
