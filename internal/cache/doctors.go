package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/geocoder89/medihub/internal/domain/profile"
	"github.com/redis/go-redis/v9"
)

const doctorListKey = "doctors:available:v1"

// DoctorList caches the verified-doctors listing. The listing is the one
// read-heavy query in the system; everything else goes straight to the DB.
type DoctorList interface {
	Get(ctx context.Context) ([]profile.DoctorSummary, bool)
	Set(ctx context.Context, items []profile.DoctorSummary)
	Invalidate(ctx context.Context)
}

// MemoryDoctorList is the single-process default.
type MemoryDoctorList struct {
	c *Store
}

func NewMemoryDoctorList(ttl time.Duration) *MemoryDoctorList {
	return &MemoryDoctorList{c: NewStore(ttl)}
}

func (m *MemoryDoctorList) Get(_ context.Context) ([]profile.DoctorSummary, bool) {
	v, ok := m.c.Get(doctorListKey)

	if !ok {
		return nil, false
	}

	items, ok := v.([]profile.DoctorSummary)

	return items, ok
}

func (m *MemoryDoctorList) Set(_ context.Context, items []profile.DoctorSummary) {
	m.c.Set(doctorListKey, items)
}

func (m *MemoryDoctorList) Invalidate(_ context.Context) {
	m.c.Delete(doctorListKey)
}

// RedisDoctorList shares the listing across replicas. Cache errors are
// swallowed: a miss just falls through to the database.
type RedisDoctorList struct {
	rdb *redis.Client
	ttl time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

func NewRedisDoctorList(cfg RedisConfig, ttl time.Duration) *RedisDoctorList {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})

	if ttl <= 0 {
		ttl = 30 * time.Second
	}

	return &RedisDoctorList{rdb: rdb, ttl: ttl}
}

func (r *RedisDoctorList) Ping(ctx context.Context) error {
	return r.rdb.Ping(ctx).Err()
}

func (r *RedisDoctorList) Close() error {
	return r.rdb.Close()
}

func (r *RedisDoctorList) Get(ctx context.Context) ([]profile.DoctorSummary, bool) {
	raw, err := r.rdb.Get(ctx, doctorListKey).Bytes()

	if err != nil {
		return nil, false
	}

	var items []profile.DoctorSummary

	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, false
	}

	return items, true
}

func (r *RedisDoctorList) Set(ctx context.Context, items []profile.DoctorSummary) {
	raw, err := json.Marshal(items)

	if err != nil {
		return
	}

	_ = r.rdb.Set(ctx, doctorListKey, raw, r.ttl).Err()
}

func (r *RedisDoctorList) Invalidate(ctx context.Context) {
	_ = r.rdb.Del(ctx, doctorListKey).Err()
}
