package caching

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"clinicpulse/internal/scoring"
)

// CacheService holds computed scorecard reports so dashboard reads skip the
// recompute. Misses return (nil, nil); cache errors are for the caller to log,
// never to fail a request over.
type CacheService interface {
	GetReport(ctx context.Context, clinicID uuid.UUID, month time.Time) (*scoring.Report, error)
	SetReport(ctx context.Context, clinicID uuid.UUID, month time.Time, report *scoring.Report, ttl time.Duration) error
	DeleteReport(ctx context.Context, clinicID uuid.UUID, month time.Time) error
	InvalidateClinic(ctx context.Context, clinicID uuid.UUID) error
	Ping(ctx context.Context) error
}

type redisCacheService struct {
	client *redis.Client
}

func NewRedisCacheService(addr, password string, db int) CacheService {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &redisCacheService{client: client}
}

func reportKey(clinicID uuid.UUID, month time.Time) string {
	return fmt.Sprintf("clinicpulse:scorecard:%s:%s", clinicID.String(), month.Format("2006-01"))
}

func (r *redisCacheService) GetReport(ctx context.Context, clinicID uuid.UUID, month time.Time) (*scoring.Report, error) {
	data, err := r.client.Get(ctx, reportKey(clinicID, month)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // cache miss
		}
		return nil, err
	}

	var report scoring.Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

func (r *redisCacheService) SetReport(ctx context.Context, clinicID uuid.UUID, month time.Time, report *scoring.Report, ttl time.Duration) error {
	data, err := json.Marshal(report)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, reportKey(clinicID, month), data, ttl).Err()
}

func (r *redisCacheService) DeleteReport(ctx context.Context, clinicID uuid.UUID, month time.Time) error {
	return r.client.Del(ctx, reportKey(clinicID, month)).Err()
}

// InvalidateClinic drops every cached report for the clinic; used when goals
// change and every month's score moves.
func (r *redisCacheService) InvalidateClinic(ctx context.Context, clinicID uuid.UUID) error {
	pattern := fmt.Sprintf("clinicpulse:scorecard:%s:*", clinicID.String())
	iter := r.client.Scan(ctx, 0, pattern, 0).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) > 0 {
		return r.client.Del(ctx, keys...).Err()
	}
	return nil
}

func (r *redisCacheService) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
