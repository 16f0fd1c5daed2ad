package testcontainer

import (
	"context"
	"testing"
)

// Dockerが無い環境ではパニックせずにスキップされる
func TestStartRedis(t *testing.T) {
	ctx := context.Background()
	rc, err := StartRedis(ctx, t)
	if err != nil {
		t.Skipf("Skipping test: %v", err)
	}
	t.Cleanup(func() { _ = rc.Close(ctx) })

	cfg := rc.RedisConfig()
	if !cfg.Enabled {
		t.Error("Expected Enabled to be true")
	}
	if cfg.Host == "" || cfg.Port == 0 {
		t.Errorf("RedisConfig() = %+v, want host and port", cfg)
	}
}

func TestStartMySQL(t *testing.T) {
	ctx := context.Background()
	mc, err := StartMySQL(ctx, t)
	if err != nil {
		t.Skipf("Skipping test: %v", err)
	}
	t.Cleanup(func() { _ = mc.Close(ctx) })

	cfg := mc.MySQLConfig()
	if cfg.Database != "testdb" || cfg.User != "testuser" {
		t.Errorf("MySQLConfig() = %+v", cfg)
	}
}

func TestClose_NilContainer(t *testing.T) {
	ctx := context.Background()
	if err := (&RedisContainer{}).Close(ctx); err != nil {
		t.Errorf("RedisContainer.Close() error = %v", err)
	}
	if err := (&MySQLContainer{}).Close(ctx); err != nil {
		t.Errorf("MySQLContainer.Close() error = %v", err)
	}
}
