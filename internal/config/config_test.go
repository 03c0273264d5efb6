package config

import (
	"testing"

	"github.com/trueflow-dev/trueflow/internal/reviewlog"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Sync.Remote != "origin" {
		t.Fatalf("expected default remote origin, got %q", cfg.Sync.Remote)
	}
}

func TestLoadWithNoFilesReturnsDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Sync.Remote != "origin" {
		t.Fatalf("expected default remote origin, got %q", cfg.Sync.Remote)
	}
	if cfg.Review.OnlyDirty {
		t.Fatalf("expected OnlyDirty false by default")
	}
}

func TestSaveAndReloadRepoConfig(t *testing.T) {
	dir := t.TempDir()
	cfg := Default()
	cfg.Review.OnlyDirty = true
	cfg.Review.ExcludeKinds = []string{"comment", "gap"}
	cfg.Sync.Remote = "upstream"

	if err := SaveRepoConfig(dir, cfg); err != nil {
		t.Fatalf("SaveRepoConfig: %v", err)
	}

	reloaded, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reloaded.Review.OnlyDirty {
		t.Fatalf("expected OnlyDirty true after reload")
	}
	if reloaded.Sync.Remote != "upstream" {
		t.Fatalf("expected remote upstream, got %q", reloaded.Sync.Remote)
	}
	if len(reloaded.Review.ExcludeKinds) != 2 {
		t.Fatalf("expected 2 exclude kinds, got %v", reloaded.Review.ExcludeKinds)
	}
}

func TestResolveIdentityPrecedence(t *testing.T) {
	cfg := Default()

	id := ResolveIdentity(cfg, "", "")
	if id.Email != "unknown@localhost" {
		t.Fatalf("expected anonymous fallback, got %q", id.Email)
	}
	if id.Signature != nil {
		t.Fatalf("expected no signature when none configured")
	}

	id = ResolveIdentity(cfg, "git@example.com", "ABCD1234")
	if id.Email != "git@example.com" {
		t.Fatalf("expected git email fallback, got %q", id.Email)
	}
	if id.Signature == nil || *id.Signature != "ABCD1234" {
		t.Fatalf("expected git signing key fallback, got %+v", id.Signature)
	}

	cfg.Identity.Email = "override@example.com"
	cfg.Identity.SigningKey = "OVERRIDE"
	id = ResolveIdentity(cfg, "git@example.com", "ABCD1234")
	if id.Email != "override@example.com" {
		t.Fatalf("expected config override to win, got %q", id.Email)
	}
	if id.Signature == nil || *id.Signature != "OVERRIDE" {
		t.Fatalf("expected config signing key override to win, got %+v", id.Signature)
	}

	var _ reviewlog.Identity = id
}
