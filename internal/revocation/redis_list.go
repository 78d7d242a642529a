package revocation

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "petpos:revoked:"

// RedisList stores revocations in Redis so every instance sees them.
type RedisList struct {
	client *redis.Client
}

// NewRedisList wraps a connected client.
func NewRedisList(client *redis.Client) *RedisList {
	return &RedisList{client: client}
}

func tokenKey(tokenID string) string { return keyPrefix + "jti:" + tokenID }
func subjectKey(subject string) string { return keyPrefix + "sub:" + subject }

func (l *RedisList) RevokeToken(ctx context.Context, tokenID string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	if err := l.client.Set(ctx, tokenKey(tokenID), 1, ttl).Err(); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

func (l *RedisList) RevokeSubject(ctx context.Context, subject string, at time.Time, ttl time.Duration) error {
	value := strconv.FormatInt(at.UnixNano(), 10)
	if err := l.client.Set(ctx, subjectKey(subject), value, ttl).Err(); err != nil {
		return fmt.Errorf("revoke subject: %w", err)
	}
	return nil
}

func (l *RedisList) IsRevoked(ctx context.Context, tokenID, subject string, issuedAt time.Time) (bool, error) {
	pipe := l.client.Pipeline()
	tokenCmd := pipe.Exists(ctx, tokenKey(tokenID))
	subjectCmd := pipe.Get(ctx, subjectKey(subject))
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return false, fmt.Errorf("check revocation: %w", err)
	}

	if tokenCmd.Val() > 0 {
		return true, nil
	}
	raw, err := subjectCmd.Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check revocation: %w", err)
	}
	nanos, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return false, fmt.Errorf("parse revocation entry: %w", err)
	}
	return revokedBy(issuedAt, time.Unix(0, nanos)), nil
}
