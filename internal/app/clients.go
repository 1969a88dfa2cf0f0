package app

import (
	"context"
	"fmt"
	"strings"

	goredis "github.com/redis/go-redis/v9"

	"github.com/itsuki0625/react-ai-chatapp-sub000/internal/clients/anthropic"
	"github.com/itsuki0625/react-ai-chatapp-sub000/internal/clients/openai"
	"github.com/itsuki0625/react-ai-chatapp-sub000/internal/clients/redis"
	"github.com/itsuki0625/react-ai-chatapp-sub000/internal/modules/selfanalysis"
	"github.com/itsuki0625/react-ai-chatapp-sub000/internal/pkg/logger"
)

type Clients struct {
	LLM    selfanalysis.JSONGenerator
	Redis  *goredis.Client
	Bus    *redis.Bus
	Locker *redis.Locker
}

func wireClients(ctx context.Context, log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")

	llm, err := newLLM(log, cfg)
	if err != nil {
		return Clients{}, err
	}

	// Redis is optional; without it locks are in-process and events are dropped.
	if strings.TrimSpace(cfg.Redis.Addr) == "" {
		log.Info("REDIS_ADDR not set, using in-process session locks")
		return Clients{LLM: llm}, nil
	}
	rdb, err := redis.NewClient(ctx, cfg.Redis)
	if err != nil {
		return Clients{}, fmt.Errorf("init redis: %w", err)
	}
	bus, err := redis.NewBus(log, rdb, cfg.RedisChannel)
	if err != nil {
		_ = rdb.Close()
		return Clients{}, fmt.Errorf("init redis event bus: %w", err)
	}
	locker, err := redis.NewLocker(log, rdb, "", cfg.SessionLockTTL)
	if err != nil {
		_ = rdb.Close()
		return Clients{}, fmt.Errorf("init redis locker: %w", err)
	}
	return Clients{LLM: llm, Redis: rdb, Bus: bus, Locker: locker}, nil
}

func newLLM(log *logger.Logger, cfg Config) (selfanalysis.JSONGenerator, error) {
	switch cfg.LLMProvider {
	case "", ProviderOpenAI:
		c, err := openai.NewClient(log, cfg.OpenAI)
		if err != nil {
			return nil, fmt.Errorf("init openai client: %w", err)
		}
		return c, nil
	case ProviderAnthropic:
		c, err := anthropic.NewClient(log, cfg.Anthropic)
		if err != nil {
			return nil, fmt.Errorf("init anthropic client: %w", err)
		}
		return c, nil
	}
	return nil, fmt.Errorf("unsupported LLM_PROVIDER %q", cfg.LLMProvider)
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
}
