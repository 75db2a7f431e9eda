package main

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/Jagadesh-1811/vyomarr-sub002/internal/api"
	"github.com/Jagadesh-1811/vyomarr-sub002/internal/daemon"
	"github.com/Jagadesh-1811/vyomarr-sub002/internal/logging"
	"github.com/Jagadesh-1811/vyomarr-sub002/internal/testsupport"
)

func createItemJSON(t *testing.T, env *cliTestEnv, args ...string) api.ContentItem {
	t.Helper()
	out, _, err := runCLI(t, append([]string{"items", "create", "--json"}, args...), env.configPath)
	if err != nil {
		t.Fatalf("items create: %v", err)
	}
	var resp api.ItemResponse
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		t.Fatalf("decode create output: %v\n%s", err, out)
	}
	return resp.Item
}

func TestItemsCreateListAndToggleDirect(t *testing.T) {
	env := setupCLITestEnv(t)

	now := createItemJSON(t, env, "Hello", "world")
	if now.Title != "Hello world" || now.Status != "published" {
		t.Fatalf("unexpected item %+v", now)
	}
	later := createItemJSON(t, env, "--in", "1h", "Later")
	if later.Status != "scheduled" || later.ScheduledFor == "" {
		t.Fatalf("expected scheduled item, got %+v", later)
	}

	out, _, err := runCLI(t, []string{"items", "list"}, env.configPath)
	if err != nil {
		t.Fatalf("items list: %v", err)
	}
	requireContains(t, out, "Hello world")
	requireContains(t, out, "Scheduled")
	requireContains(t, out, "Published")

	out, _, err = runCLI(t, []string{"items", "toggle", now.ID}, env.configPath)
	if err != nil {
		t.Fatalf("items toggle: %v", err)
	}
	requireContains(t, out, "draft")

	out, _, err = runCLI(t, []string{"items", "publish", later.ID}, env.configPath)
	if err != nil {
		t.Fatalf("items publish: %v", err)
	}
	requireContains(t, out, "published at")

	out, _, err = runCLI(t, []string{"items", "publish", later.ID}, env.configPath)
	if err != nil {
		t.Fatalf("items publish again: %v", err)
	}
	requireContains(t, out, "nothing to publish")
}

func TestItemsRescheduleRejectsPastTimes(t *testing.T) {
	env := setupCLITestEnv(t)
	item := createItemJSON(t, env, "Draft")

	if _, _, err := runCLI(t, []string{"items", "reschedule", item.ID, "--at", "2001-01-01T00:00:00Z"}, env.configPath); err == nil {
		t.Fatal("expected error for past schedule")
	}
	if _, _, err := runCLI(t, []string{"items", "reschedule", item.ID}, env.configPath); err == nil {
		t.Fatal("expected error when no time is given")
	}

	out, _, err := runCLI(t, []string{"items", "show", item.ID, "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("items show: %v", err)
	}
	var resp api.ItemResponse
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Item.Status != "published" || resp.Item.Version != item.Version {
		t.Fatalf("rejected reschedule must not change the item: %+v", resp.Item)
	}
}

func TestItemsShowUnknownID(t *testing.T) {
	env := setupCLITestEnv(t)
	if _, _, err := runCLI(t, []string{"items", "show", "missing"}, env.configPath); err == nil {
		t.Fatal("expected not found error")
	}
}

func TestSweepCommandDirect(t *testing.T) {
	env := setupCLITestEnv(t)
	createItemJSON(t, env, "--at", time.Now().Add(time.Hour).UTC().Format(time.RFC3339), "Future")

	out, _, err := runCLI(t, []string{"sweep"}, env.configPath)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	requireContains(t, out, "Sweep (direct): 0 due, 0 promoted")
}

func TestStatusWithoutDaemon(t *testing.T) {
	env := setupCLITestEnv(t)
	createItemJSON(t, env, "One")

	out, _, err := runCLI(t, []string{"status"}, env.configPath)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	requireContains(t, out, "not reachable")
	requireContains(t, out, "Published:")
	requireContains(t, out, "Data directory")
}

func TestItemsUseRunningDaemon(t *testing.T) {
	env := setupCLITestEnv(t)

	daemonCfg := *env.cfg
	daemonCfg.Paths.APIBind = "127.0.0.1:0"
	daemonCfg.Scheduler.Enabled = false
	store := testsupport.MustOpenStore(t, &daemonCfg)
	d, err := daemon.New(&daemonCfg, store, logging.NewNop())
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("daemon Start: %v", err)
	}
	t.Cleanup(d.Stop)

	env.cfg.Paths.APIBind = d.APIAddr()
	env.writeConfig(t)

	item := createItemJSON(t, env, "Via API")
	out, _, err := runCLI(t, []string{"sweep"}, env.configPath)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	requireContains(t, out, "Sweep (daemon)")

	out, _, err = runCLI(t, []string{"status", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	var status api.DaemonStatus
	if err := json.Unmarshal([]byte(out), &status); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if !status.Running || status.ItemCounts["published"] != 1 {
		t.Fatalf("unexpected status %+v (item %s)", status, item.ID)
	}
}

func TestItemsHealthReportsSchema(t *testing.T) {
	env := setupCLITestEnv(t)
	createItemJSON(t, env, "One")

	out, _, err := runCLI(t, []string{"items", "health"}, env.configPath)
	if err != nil {
		t.Fatalf("items health: %v\n%s", err, out)
	}
	requireContains(t, out, "001_init")
	requireContains(t, out, "Integrity:")
	requireContains(t, out, "[OK] yes")
}
