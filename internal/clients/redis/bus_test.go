package redis

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/itsuki0625/react-ai-chatapp-sub000/internal/pkg/logger"
)

func TestBusDeliversPublishedEvents(t *testing.T) {
	rdb, _ := testRedis(t)
	bus, err := NewBus(logger.Nop(), rdb, "test:events:"+uuid.NewString())
	if err != nil {
		t.Fatalf("NewBus: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	got := make(chan []byte, 1)
	if err := bus.Subscribe(ctx, func(p []byte) { got <- p }); err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	if err := bus.Publish(ctx, map[string]string{"type": "step_advanced", "to": "MOTIVATION"}); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	select {
	case raw := <-got:
		var ev map[string]string
		if err := json.Unmarshal(raw, &ev); err != nil || ev["to"] != "MOTIVATION" {
			t.Fatalf("unexpected payload %s (%v)", raw, err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("event not delivered")
	}
}

func TestNewBusRequiresClient(t *testing.T) {
	if _, err := NewBus(logger.Nop(), nil, ""); err == nil {
		t.Fatalf("expected error without a redis client")
	}
	if _, err := NewClient(context.Background(), Config{}); err == nil {
		t.Fatalf("expected error without an address")
	}
}
