package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/kazoe/internal/catalog"
	"github.com/verte-zerg/kazoe/internal/config"
	"github.com/verte-zerg/kazoe/internal/model"
	"github.com/verte-zerg/kazoe/internal/settings"
)

const cliDataset = `{"counters": [
  {"counter": "個", "reading": "こ", "items": [{"id": "apple"}]},
  {"counter": "本", "reading": "ほん", "items": [{"id": "pen"}]},
  {"counter": "枚", "reading": "まい", "items": [{"id": "paper"}]}
]}`

func mustCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.Parse([]byte(cliDataset))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return cat
}

func TestChangeEnabledDisableFromAll(t *testing.T) {
	cat := mustCatalog(t)
	next, err := changeEnabled(cat, model.AllEnabled(), []string{"本"}, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if next.All {
		t.Fatalf("expected explicit set, got all")
	}
	if strings.Join(next.Keys, ",") != "個,枚" {
		t.Fatalf("unexpected keys: %v", next.Keys)
	}
}

func TestChangeEnabledCollapsesToAll(t *testing.T) {
	cat := mustCatalog(t)
	next, err := changeEnabled(cat, model.EnabledSet{Keys: []string{"個", "本"}}, []string{"枚"}, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !next.All {
		t.Fatalf("expected all sentinel, got %v", next.Keys)
	}
}

func TestChangeEnabledRejectsUnknownAndEmpty(t *testing.T) {
	cat := mustCatalog(t)
	if _, err := changeEnabled(cat, model.AllEnabled(), []string{"匹"}, true); err == nil {
		t.Fatalf("expected unknown counter error")
	}
	_, err := changeEnabled(cat, model.EnabledSet{Keys: []string{"個"}}, []string{"個"}, false)
	if !errors.Is(err, settings.ErrLastCounter) {
		t.Fatalf("expected ErrLastCounter, got %v", err)
	}
}

func TestValidateConfig(t *testing.T) {
	ok := model.Config{
		AdvanceDelay:    800 * time.Millisecond,
		SummaryDelay:    500 * time.Millisecond,
		ChallengeRounds: 10,
		MaxQuantity:     5,
		WeakFactor:      2,
	}
	if err := validateConfig(ok); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	bad := ok
	bad.ChallengeRounds = 0
	if err := validateConfig(bad); err == nil {
		t.Fatalf("expected error for zero rounds")
	}
	bad = ok
	bad.AdvanceDelay = 0
	if err := validateConfig(bad); err == nil {
		t.Fatalf("expected error for zero advance delay")
	}
	bad = ok
	bad.SummaryDelay = 0
	if err := validateConfig(bad); err == nil {
		t.Fatalf("expected error for zero summary delay")
	}
	bad = ok
	bad.MaxQuantity = -1
	if err := validateConfig(bad); err == nil {
		t.Fatalf("expected error for negative quantity")
	}
}

func TestDefaultConfigTemplateMentionsSections(t *testing.T) {
	tmpl := defaultConfigTemplate()
	for _, section := range []string{"[practice]", "[voice]", "[log]"} {
		if !strings.Contains(tmpl, section) {
			t.Fatalf("template missing %s", section)
		}
	}
}

func TestOpenAppUsesGivenConfig(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(dir, "state"))

	onDisk := filepath.Join(dir, "disk.json")
	if err := os.WriteFile(onDisk, []byte(`{"counters":[{"counter":"匹","reading":"ひき","items":[{"id":"cat"}]}]}`), 0o644); err != nil {
		t.Fatalf("write dataset: %v", err)
	}
	given := filepath.Join(dir, "given.json")
	if err := os.WriteFile(given, []byte(cliDataset), 0o644); err != nil {
		t.Fatalf("write dataset: %v", err)
	}
	cfgPath := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(cfgPath), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(cfgPath, []byte("[practice]\ndataset = \""+onDisk+"\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	a, err := openApp(context.Background(), config.FileConfig{Practice: config.PracticeConfig{Dataset: &given}}, "")
	if err != nil {
		t.Fatalf("openApp: %v", err)
	}
	if a.loadErr != nil {
		t.Fatalf("unexpected load error: %v", a.loadErr)
	}
	if a.catalog.Len() != 3 {
		t.Fatalf("expected the given dataset, got %v", a.catalog.Keys())
	}
	a.Close()

	b, err := loadApp(context.Background(), "")
	if err != nil {
		t.Fatalf("loadApp: %v", err)
	}
	defer b.Close()
	if keys := b.catalog.Keys(); len(keys) != 1 || keys[0] != "匹" {
		t.Fatalf("expected the config file dataset, got %v", keys)
	}
}
