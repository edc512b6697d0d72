package repository

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

// RefreshTokenRepository maps opaque token ids to member ids in redis. Both
// directions are kept so login can revoke a member's previous token before
// issuing a new one.
type RefreshTokenRepository struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRefreshTokenRepository(rdb *redis.Client, ttl time.Duration) *RefreshTokenRepository {
	return &RefreshTokenRepository{rdb: rdb, ttl: ttl}
}

func tokenKey(tokenID string) string {
	return "refresh_token:" + tokenID
}

func memberKey(memberID uint) string {
	return fmt.Sprintf("refresh_member:%d", memberID)
}

func (r *RefreshTokenRepository) Save(tokenID string, memberID uint) error {
	ctx := context.Background()
	pipe := r.rdb.TxPipeline()
	pipe.Set(ctx, tokenKey(tokenID), strconv.FormatUint(uint64(memberID), 10), r.ttl)
	pipe.Set(ctx, memberKey(memberID), tokenID, r.ttl)
	_, err := pipe.Exec(ctx)
	return err
}

// Find returns the owning member id, or (0, nil) when the token is unknown or
// expired.
func (r *RefreshTokenRepository) Find(tokenID string) (uint, error) {
	ctx := context.Background()
	val, err := r.rdb.Get(ctx, tokenKey(tokenID)).Result()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	memberID, err := strconv.ParseUint(val, 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(memberID), nil
}

func (r *RefreshTokenRepository) Delete(tokenID string) error {
	ctx := context.Background()
	memberID, err := r.Find(tokenID)
	if err != nil {
		return err
	}

	pipe := r.rdb.TxPipeline()
	pipe.Del(ctx, tokenKey(tokenID))
	if memberID != 0 {
		pipe.Del(ctx, memberKey(memberID))
	}
	_, err = pipe.Exec(ctx)
	return err
}

// DeleteByMember drops whatever token the member currently holds. Used as the
// reuse check on login and on account deletion.
func (r *RefreshTokenRepository) DeleteByMember(memberID uint) error {
	ctx := context.Background()
	tokenID, err := r.rdb.Get(ctx, memberKey(memberID)).Result()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		return err
	}

	pipe := r.rdb.TxPipeline()
	pipe.Del(ctx, tokenKey(tokenID))
	pipe.Del(ctx, memberKey(memberID))
	_, err = pipe.Exec(ctx)
	return err
}
