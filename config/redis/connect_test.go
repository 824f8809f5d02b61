package redis

import (
	"testing"

	"kofi-alerts/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnect_Disabled(t *testing.T) {
	c, err := Connect(config.RedisConfig{Enabled: false, Host: "localhost", Port: 6379})
	require.NoError(t, err)
	assert.Nil(t, c)
	assert.NoError(t, Disconnect())
}

func TestConnect_InvalidPort(t *testing.T) {
	_, err := Connect(config.RedisConfig{Enabled: true, Host: "localhost", Port: 0})
	assert.Error(t, err)
}
