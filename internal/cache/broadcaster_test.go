// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cache

import (
	"context"
	"os"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

// testValkeyClient returns a Redis client for tests.
// Skips if Valkey is unavailable.
func testValkeyClient(t *testing.T) *redis.Client {
	t.Helper()

	host := envOr("VALKEY_HOST", "localhost")
	port := envOr("VALKEY_PORT", "6379")
	password := os.Getenv("VALKEY_PASSWORD")

	client := redis.NewClient(&redis.Options{
		Addr:     host + ":" + port,
		Password: password,
		DB:       15, // Use DB 15 for tests.
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("skipping integration test: Valkey not reachable: %v", err)
	}

	t.Cleanup(func() { client.Close() })
	return client
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func TestConnectValkey(t *testing.T) {
	host := envOr("VALKEY_HOST", "localhost")
	port := envOr("VALKEY_PORT", "6379")
	db, _ := strconv.Atoi(envOr("VALKEY_DB", "15"))

	client, err := ConnectValkey(context.Background(), host, port, os.Getenv("VALKEY_PASSWORD"), db)
	if err != nil {
		t.Skipf("skipping: Valkey not reachable: %v", err)
	}
	defer client.Close()

	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Errorf("ping after connect: %v", err)
	}
}

type recordingApplier struct {
	mu  sync.Mutex
	ops []Operation
	ids []string
}

func (a *recordingApplier) Apply(op Operation, id string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.ops = append(a.ops, op)
	a.ids = append(a.ids, id)
}

func (a *recordingApplier) count() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.ops)
}

func TestBroadcasterDeliversForeignEvents(t *testing.T) {
	client := testValkeyClient(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	local := NewBroadcaster(client)
	remote := NewBroadcaster(client)
	if local.Origin() == remote.Origin() {
		t.Fatal("broadcasters must have distinct origins")
	}

	localSeen := &recordingApplier{}
	remoteSeen := &recordingApplier{}
	done := make(chan struct{}, 2)
	go func() { _ = local.Listen(ctx, localSeen); done <- struct{}{} }()
	go func() { _ = remote.Listen(ctx, remoteSeen); done <- struct{}{} }()

	// Subscriptions are asynchronous; republish until the remote sees one.
	deadline := time.Now().Add(3 * time.Second)
	for remoteSeen.count() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("remote broadcaster never received the invalidation")
		}
		if err := local.Publish(ctx, OpUpdate, "cardio"); err != nil {
			t.Fatalf("Publish: %v", err)
		}
		time.Sleep(50 * time.Millisecond)
	}

	remoteSeen.mu.Lock()
	if remoteSeen.ops[0] != OpUpdate || remoteSeen.ids[0] != "cardio" {
		t.Errorf("got %s %s, want update cardio", remoteSeen.ops[0], remoteSeen.ids[0])
	}
	remoteSeen.mu.Unlock()

	if n := localSeen.count(); n != 0 {
		t.Errorf("local broadcaster applied %d of its own events", n)
	}

	cancel()
	for i := 0; i < 2; i++ {
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("Listen did not return after cancel")
		}
	}
}

func TestBroadcasterWithManager(t *testing.T) {
	client := testValkeyClient(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pub := NewBroadcaster(client)
	writer := NewManager(newCountingLoader(), testConfig(), WithPublisher(pub))

	sub := NewBroadcaster(client)
	reader := NewManager(newCountingLoader(), testConfig())
	go func() { _ = sub.Listen(ctx, reader) }()

	deadline := time.Now().Add(3 * time.Second)
	for {
		fill(t, reader)
		writer.Invalidate(ctx, OpDelete, "cardio")
		time.Sleep(50 * time.Millisecond)
		if sizes(reader)[NameSingle] == 0 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("reader cache was never invalidated")
		}
	}
}
