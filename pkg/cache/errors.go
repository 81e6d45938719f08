package cache

import "errors"

var (
	ErrFailedToParseConnString = errors.New("cache: failed to parse redis connection string")
	ErrRedisNotReady           = errors.New("cache: redis did not become ready within the given time period")
	ErrCacheMiss               = errors.New("cache: key not found")
	ErrEncoding                = errors.New("cache: failed to encode value")
	ErrDecoding                = errors.New("cache: failed to decode value")
	ErrHealthcheckFailed       = errors.New("cache: healthcheck failed")
)
