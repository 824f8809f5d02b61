package redis

import (
	"kofi-alerts/config"
	pkgRedis "kofi-alerts/pkg/redis"
)

var client pkgRedis.IRedis

// Connect initializes the Redis sink. It returns nil when Redis is disabled.
func Connect(cfg config.RedisConfig) (pkgRedis.IRedis, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	var err error
	client, err = pkgRedis.New(pkgRedis.RedisConfig{
		Host:     cfg.Host,
		Port:     cfg.Port,
		Password: cfg.Password,
		DB:       cfg.DB,
		UseTLS:   cfg.UseTLS,
		PoolSize: cfg.PoolSize,
	})
	if err != nil {
		return nil, err
	}

	return client, nil
}

// Disconnect closes the Redis connection
func Disconnect() error {
	if client != nil {
		return client.Close()
	}
	return nil
}
