package usecase

import (
	"sync"
	"time"

	"kofi-alerts/internal/alert"
	"kofi-alerts/pkg/discord"
	"kofi-alerts/pkg/log"
	"kofi-alerts/pkg/redis"

	"github.com/google/uuid"
)

// Options wires the optional sinks. A nil Redis or Discord disables that sink.
type Options struct {
	PageID       string
	LastAlertTTL time.Duration
	Redis        redis.IRedis
	Discord      discord.IDiscord
}

type implUseCase struct {
	l            log.Logger
	pageID       string
	lastAlertTTL time.Duration
	redis        redis.IRedis
	discord      discord.IDiscord
	now          func() time.Time
	newID        func() uuid.UUID
	inflight     sync.WaitGroup
}

func New(l log.Logger, opts Options) alert.UseCase {
	ttl := opts.LastAlertTTL
	if ttl <= 0 {
		ttl = DefaultLastAlertTTL
	}
	return &implUseCase{
		l:            l,
		pageID:       opts.PageID,
		lastAlertTTL: ttl,
		redis:        opts.Redis,
		discord:      opts.Discord,
		now:          time.Now,
		newID:        uuid.New,
	}
}
