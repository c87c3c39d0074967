package config

import (
	"strconv"
	"time"
)

// ThrottleConfig exposes the login attempt-throttle parameters and the
// key-value store binding backing it. An empty redis address disables
// throttling entirely.
type ThrottleConfig interface {
	GetMaxLoginAttempts() int
	GetLoginAttemptWindow() time.Duration
	GetLoginBlockDuration() time.Duration
	GetRedisAddr() string
	GetRedisPassword() string
	GetRedisDB() int
}

type Throttle struct{}

var _ ThrottleConfig = Throttle{}

func (Throttle) GetMaxLoginAttempts() int {
	v, err := strconv.Atoi(GetEnv("LOGIN_MAX_ATTEMPTS", "5"))
	if err != nil || v <= 0 {
		return 5
	}
	return v
}

func (Throttle) GetLoginAttemptWindow() time.Duration {
	return getDurationSeconds("LOGIN_ATTEMPT_WINDOW_SECONDS", 15*time.Minute)
}

func (Throttle) GetLoginBlockDuration() time.Duration {
	return getDurationSeconds("LOGIN_BLOCK_SECONDS", time.Hour)
}

func (Throttle) GetRedisAddr() string {
	return GetEnv("REDIS_ADDR", "")
}

func (Throttle) GetRedisPassword() string {
	return GetEnv("REDIS_PASSWORD", "")
}

func (Throttle) GetRedisDB() int {
	v, err := strconv.Atoi(GetEnv("REDIS_DB", "0"))
	if err != nil {
		return 0
	}
	return v
}

func getDurationSeconds(envVar string, defaultValue time.Duration) time.Duration {
	v, err := strconv.Atoi(GetEnv(envVar, ""))
	if err != nil || v <= 0 {
		return defaultValue
	}
	return time.Duration(v) * time.Second
}
