package redis

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"BankingChatbot/internal/entity"

	jsoniter "github.com/json-iterator/go"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const sessionKeyPrefix = "chat:session:"

var ErrSessionNotFound = errors.New("session not found")

type IRedis interface {
	SetSession(ctx context.Context, session entity.ConversationSession, expiration time.Duration) error
	GetSession(ctx context.Context, sessionID string) (entity.ConversationSession, error)
	DeleteSession(ctx context.Context, sessionID string) error
}

type redisClient struct {
	client *redis.Client
}

func New() IRedis {
	db, _ := strconv.Atoi(os.Getenv("REDIS_DB"))
	redisAddr := os.Getenv("REDIS_ADDRESS")
	redisPassword := os.Getenv("REDIS_PASSWORD")

	logrus.Info(fmt.Sprintf("Connecting to Redis at %s...", redisAddr))

	client := redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		Password: redisPassword,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		logrus.Error(fmt.Sprintf("Failed to connect to Redis: %v", err))
	} else {
		logrus.Info("Successfully connected to Redis")
	}

	return &redisClient{client: client}
}

// NewWithClient wraps an existing connection, mainly so tests can point
// the store at a fake server.
func NewWithClient(client *redis.Client) IRedis {
	return &redisClient{client: client}
}

func (r *redisClient) SetSession(ctx context.Context, session entity.ConversationSession, expiration time.Duration) error {
	payload, err := jsoniter.Marshal(session)
	if err != nil {
		logrus.Error(fmt.Sprintf("Error encoding session %s: %v", session.SessionID, err))
		return err
	}

	if err := r.client.Set(ctx, sessionKeyPrefix+session.SessionID, payload, expiration).Err(); err != nil {
		logrus.Error(fmt.Sprintf("Error storing session %s: %v", session.SessionID, err))
		return err
	}

	return nil
}

func (r *redisClient) GetSession(ctx context.Context, sessionID string) (entity.ConversationSession, error) {
	val, err := r.client.Get(ctx, sessionKeyPrefix+sessionID).Result()
	if errors.Is(err, redis.Nil) {
		return entity.ConversationSession{}, ErrSessionNotFound
	} else if err != nil {
		logrus.Error(fmt.Sprintf("Error getting session %s: %v", sessionID, err))
		return entity.ConversationSession{}, err
	}

	var session entity.ConversationSession
	if err := jsoniter.Unmarshal([]byte(val), &session); err != nil {
		logrus.Error(fmt.Sprintf("Error decoding session %s: %v", sessionID, err))
		return entity.ConversationSession{}, err
	}

	return session, nil
}

func (r *redisClient) DeleteSession(ctx context.Context, sessionID string) error {
	if err := r.client.Del(ctx, sessionKeyPrefix+sessionID).Err(); err != nil {
		logrus.Error(fmt.Sprintf("Error deleting session %s: %v", sessionID, err))
		return err
	}
	return nil
}
