package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"github.com/labstack/gommon/log"
	"github.com/redis/go-redis/v9"
)

// CachedNotificationRepository は未読件数だけRedisに載せるデコレータ。
// キャッシュ側の失敗は握りつぶしてDBへフォールバックする。
type CachedNotificationRepository struct {
	realRepo repo.NotificationRepository
	redis    *redis.Client
	ttl      time.Duration
}

func NewCachedNotificationRepository(realRepo repo.NotificationRepository, rdb *redis.Client) *CachedNotificationRepository {
	return &CachedNotificationRepository{
		realRepo: realRepo,
		redis:    rdb,
		ttl:      5 * time.Minute,
	}
}

func unreadKey(email string) string {
	return fmt.Sprintf("notif:unread:%s", email)
}

func (c *CachedNotificationRepository) Create(ctx context.Context, msg model.NotificationMessage) error {
	if err := c.realRepo.Create(ctx, msg); err != nil {
		return err
	}
	c.invalidate(ctx, msg.RecipientEmail)
	return nil
}

func (c *CachedNotificationRepository) ListByRecipient(ctx context.Context, email string) ([]model.NotificationMessage, error) {
	return c.realRepo.ListByRecipient(ctx, email)
}

func (c *CachedNotificationRepository) MarkAllRead(ctx context.Context, email string) error {
	if err := c.realRepo.MarkAllRead(ctx, email); err != nil {
		return err
	}
	c.invalidate(ctx, email)
	return nil
}

func (c *CachedNotificationRepository) CountUnread(ctx context.Context, email string) (int64, error) {
	key := unreadKey(email)

	val, err := c.redis.Get(ctx, key).Result()
	switch {
	case err == nil:
		n, perr := strconv.ParseInt(val, 10, 64)
		if perr == nil {
			return n, nil
		}
		//壊れた値はDBへ
		log.Warnf("notification cache: broken value for %s: %v", key, perr)

	case err == redis.Nil:
		//未キャッシュ

	default:
		log.Warnf("notification cache: redis get failed (continuing with DB): %v", err)
	}

	count, err := c.realRepo.CountUnread(ctx, email)
	if err != nil {
		return 0, err
	}

	if serr := c.redis.Set(ctx, key, strconv.FormatInt(count, 10), c.ttl).Err(); serr != nil {
		log.Warnf("notification cache: redis set failed: %v", serr)
	}

	return count, nil
}

func (c *CachedNotificationRepository) invalidate(ctx context.Context, email string) {
	if err := c.redis.Del(ctx, unreadKey(email)).Err(); err != nil {
		log.Warnf("notification cache: invalidate failed for %s: %v", email, err)
	}
}

var _ repo.NotificationRepository = (*CachedNotificationRepository)(nil)
