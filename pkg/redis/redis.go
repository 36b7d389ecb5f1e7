package redis

import (
	"context"
	"errors"
	"fmt"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"os"
	"strconv"
	"time"
)

type IRedis interface {
	SetSessionState(ctx context.Context, key string, state string, expiration time.Duration) error
	GetSessionState(ctx context.Context, key string) (string, error)
	DeleteSessionState(ctx context.Context, key string) error
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

func (r *redisClient) SetSessionState(ctx context.Context, key string, state string, expiration time.Duration) error {
	logrus.Debug(fmt.Sprintf("Setting session state for key %s with expiration %v", key, expiration))
	err := r.client.Set(ctx, key, state, expiration).Err()
	if err != nil {
		logrus.Error(fmt.Sprintf("Error setting session state for key %s: %v", key, err))
		return err
	}
	return nil
}

func (r *redisClient) GetSessionState(ctx context.Context, key string) (string, error) {
	val, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		logrus.Debug(fmt.Sprintf("Session state not found for key %s", key))
		return "", err
	} else if err != nil {
		logrus.Error(fmt.Sprintf("Error getting session state for key %s: %v", key, err))
		return "", err
	}
	return val, nil
}

func (r *redisClient) DeleteSessionState(ctx context.Context, key string) error {
	result, err := r.client.Del(ctx, key).Result()
	if err != nil {
		logrus.Error(fmt.Sprintf("Error deleting session state for key %s: %v", key, err))
		return err
	}

	if result == 0 {
		logrus.Debug(fmt.Sprintf("Session state key %s not found for deletion", key))
		return nil
	}

	return nil
}
