package usecase

import (
	"context"
	"time"
)

// HealthStatus is "ok" when every required dependency answers, "degraded"
// when only optional ones fail, and "unavailable" otherwise.
type HealthStatus struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

type HealthUsecase interface {
	Check(ctx context.Context) HealthStatus
}

// Pinger is anything that can report liveness.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

type healthUsecase struct {
	storage Pinger
	cache   Pinger // nil when Redis is not configured
	timeout time.Duration
}

func NewHealthUsecase(storage Pinger, cache Pinger) HealthUsecase {
	return &healthUsecase{
		storage: storage,
		cache:   cache,
		timeout: 2 * time.Second,
	}
}

func (u *healthUsecase) Check(ctx context.Context) HealthStatus {
	ctx, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()

	result := HealthStatus{Status: "ok", Checks: map[string]string{}}

	if err := u.storage.Ping(ctx); err != nil {
		result.Status = "unavailable"
		result.Checks["storage"] = "down"
	} else {
		result.Checks["storage"] = "up"
	}

	switch {
	case u.cache == nil:
		result.Checks["redis"] = "disabled"
	case u.cache.Ping(ctx) != nil:
		result.Checks["redis"] = "down"
		if result.Status == "ok" {
			result.Status = "degraded"
		}
	default:
		result.Checks["redis"] = "up"
	}
	return result
}
