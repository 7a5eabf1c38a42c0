package matchbuilder

import (
	"context"
	"fmt"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"

	"github.com/park285/cheese-match/internal/config"
	"github.com/park285/cheese-match/internal/match"
)

func TestNewMinimal(t *testing.T) {
	cfg := &config.AppConfig{Mode: match.ModePvP, Budget: 3 * time.Minute, TickInterval: time.Second, BotDelay: time.Second}
	d, err := New(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer d.Close()
	if d.Bridge != nil {
		t.Fatalf("bridge should be off without BRIDGE_ADDR")
	}
	if d.Archive.Len() != 1 {
		t.Fatalf("sinks = %d, want memory only", d.Archive.Len())
	}
	if v := d.Controller.View(); v.Mode != "pvp" || v.Budget != "3:00" {
		t.Fatalf("view = %+v", v)
	}
}

func TestNewWithRedisAndBridge(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	defer mr.Close()
	cfg := &config.AppConfig{
		Mode:       match.ModeBot,
		Budget:     time.Minute,
		RedisURL:   fmt.Sprintf("redis://%s/0", mr.Addr()),
		ResultTTL:  time.Hour,
		BridgeAddr: "127.0.0.1:0",
		WebhookURL: "http://127.0.0.1:1/results",
	}
	d, err := New(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer d.Close()
	if d.Archive.Len() != 3 || d.Bridge == nil {
		t.Fatalf("sinks=%d bridge=%v", d.Archive.Len(), d.Bridge != nil)
	}
}

func TestNewFailsOnBadRedis(t *testing.T) {
	cfg := &config.AppConfig{Mode: match.ModeBot, Budget: time.Minute, RedisURL: "http://nope"}
	if _, err := New(context.Background(), cfg, nil); err == nil {
		t.Fatalf("expected redis url error")
	}
}
