package assignment

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

const (
	assignmentsCacheKey = "assignments:all"
	assignmentsCacheTTL = 5 * time.Minute
)

type Repository interface {
	ListAll(ctx context.Context) ([]AssignmentRecord, error)
}

type repository struct {
	db     *gorm.DB
	rdb    *redis.Client
	sf     *singleflight.Group
	logger *zap.Logger
}

func NewRepository(db *gorm.DB, rdb *redis.Client, logger ...*zap.Logger) Repository {
	l := zap.L().Named("assignment.repo")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("assignment.repo")
	}
	return &repository{db: db, rdb: rdb, sf: &singleflight.Group{}, logger: l}
}

// ListAll returns the assignment table, served from the Redis cache when
// warm. Concurrent cold reads are coalesced through singleflight so the
// table is loaded once.
func (r *repository) ListAll(ctx context.Context) ([]AssignmentRecord, error) {
	if r.rdb != nil {
		if val, err := r.rdb.Get(ctx, assignmentsCacheKey).Result(); err == nil {
			var records []AssignmentRecord
			if err := json.Unmarshal([]byte(val), &records); err == nil {
				return records, nil
			}
			r.logger.Warn("assignment cache entry corrupt, reloading")
		}
	}

	v, err, _ := r.sf.Do(assignmentsCacheKey, func() (any, error) {
		var records []AssignmentRecord
		if err := r.db.WithContext(ctx).
			Order("team_member_name ASC").
			Find(&records).Error; err != nil {
			return nil, err
		}

		if r.rdb != nil {
			if payload, err := json.Marshal(records); err == nil {
				if err := r.rdb.Set(ctx, assignmentsCacheKey, payload, assignmentsCacheTTL).Err(); err != nil {
					r.logger.Warn("assignment cache write failed", zap.Error(err))
				}
			}
		}

		return records, nil
	})
	if err != nil {
		return nil, err
	}

	return v.([]AssignmentRecord), nil
}
