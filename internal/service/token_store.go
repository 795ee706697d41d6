package service

import (
	"context"
	"fmt"
	"time"

	"medique-api/pkg/jwt"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// TokenStore records issued tokens in Redis so they can be revoked before
// they expire. Keys are `<type>_token:<subject>:<token id>`.
type TokenStore interface {
	Store(ctx context.Context, tokenType jwt.TokenType, subject, tokenID string, ttl time.Duration) error
	Exists(ctx context.Context, tokenType jwt.TokenType, subject, tokenID string) (bool, error)
	Revoke(ctx context.Context, tokenType jwt.TokenType, subject, tokenID string) error
	RevokeAll(ctx context.Context, subject string) error
}

type redisTokenStore struct {
	redisClient *redis.Client
	log         *logrus.Logger
}

func NewTokenStore(redisClient *redis.Client, log *logrus.Logger) TokenStore {
	return &redisTokenStore{
		redisClient: redisClient,
		log:         log,
	}
}

func tokenKey(tokenType jwt.TokenType, subject, tokenID string) string {
	return fmt.Sprintf("%s_token:%s:%s", tokenType, subject, tokenID)
}

func (s *redisTokenStore) Store(ctx context.Context, tokenType jwt.TokenType, subject, tokenID string, ttl time.Duration) error {
	if err := s.redisClient.Set(ctx, tokenKey(tokenType, subject, tokenID), "valid", ttl).Err(); err != nil {
		s.log.Warnf("Failed to store %s token in Redis: %+v", tokenType, err)
		return err
	}
	return nil
}

func (s *redisTokenStore) Exists(ctx context.Context, tokenType jwt.TokenType, subject, tokenID string) (bool, error) {
	exists, err := s.redisClient.Exists(ctx, tokenKey(tokenType, subject, tokenID)).Result()
	if err != nil {
		s.log.Warnf("Failed to check token validity: %+v", err)
		return false, err
	}
	return exists > 0, nil
}

func (s *redisTokenStore) Revoke(ctx context.Context, tokenType jwt.TokenType, subject, tokenID string) error {
	if err := s.redisClient.Del(ctx, tokenKey(tokenType, subject, tokenID)).Err(); err != nil {
		s.log.Warnf("Failed to delete %s token: %+v", tokenType, err)
		return err
	}
	return nil
}

// RevokeAll deletes every access and refresh token of a subject. It walks
// keys with SCAN rather than KEYS to avoid blocking Redis.
func (s *redisTokenStore) RevokeAll(ctx context.Context, subject string) error {
	for _, tokenType := range []jwt.TokenType{jwt.AccessToken, jwt.RefreshToken} {
		pattern := tokenKey(tokenType, subject, "*")
		iter := s.redisClient.Scan(ctx, 0, pattern, 100).Iterator()

		var keys []string
		for iter.Next(ctx) {
			keys = append(keys, iter.Val())
		}
		if err := iter.Err(); err != nil {
			s.log.Warnf("Failed to scan %s token keys: %+v", tokenType, err)
			return err
		}

		if len(keys) > 0 {
			if err := s.redisClient.Del(ctx, keys...).Err(); err != nil {
				s.log.Warnf("Failed to delete %s tokens: %+v", tokenType, err)
				return err
			}
		}
	}
	return nil
}
