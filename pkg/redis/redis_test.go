package redis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name string
		cfg  RedisConfig
		want error
	}{
		{"missing host", RedisConfig{Port: 6379}, ErrHostRequired},
		{"zero port", RedisConfig{Host: "localhost"}, ErrInvalidPort},
		{"port out of range", RedisConfig{Host: "localhost", Port: 70000}, ErrInvalidPort},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := New(tt.cfg)
			assert.Nil(t, r)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestNew_UnreachableServer(t *testing.T) {
	r, err := New(RedisConfig{Host: "127.0.0.1", Port: 1})
	assert.Nil(t, r)
	assert.ErrorContains(t, err, "failed to connect to Redis")
}
