package storage

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
)

type testDoc struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestMemoryKV_LoadMissingKey(t *testing.T) {
	kv := NewMemoryKV()

	_, err := kv.Load(context.Background(), "nope")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryKV_SaveLoadRoundTrip(t *testing.T) {
	kv := NewMemoryKV()
	ctx := context.Background()

	if err := kv.Save(ctx, "k", []byte(`{"a":1}`)); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	raw, err := kv.Load(ctx, "k")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if string(raw) != `{"a":1}` {
		t.Errorf("expected stored bytes back, got %q", raw)
	}
}

func TestMemoryKV_Remove(t *testing.T) {
	kv := NewMemoryKV()
	ctx := context.Background()

	kv.Save(ctx, "k", []byte("x"))
	if err := kv.Remove(ctx, "k"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}

	if _, err := kv.Load(ctx, "k"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after Remove, got %v", err)
	}
}

func TestMemoryKV_CopiesOnWrite(t *testing.T) {
	kv := NewMemoryKV()
	ctx := context.Background()

	buf := []byte("abc")
	kv.Save(ctx, "k", buf)
	buf[0] = 'z'

	raw, err := kv.Load(ctx, "k")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if string(raw) != "abc" {
		t.Errorf("stored value aliased the caller's buffer: got %q", raw)
	}
}

func TestLoadJSON_RoundTrip(t *testing.T) {
	kv := NewMemoryKV()
	ctx := context.Background()
	logger := slog.Default()

	want := testDoc{Name: "evergreen", Count: 3}
	SaveJSON(ctx, kv, logger, "doc", want)

	got := LoadJSON(ctx, kv, logger, "doc", testDoc{}, nil)
	if got != want {
		t.Errorf("expected %+v, got %+v", want, got)
	}
}

func TestLoadJSON_MissingKeySeedsDefault(t *testing.T) {
	kv := NewMemoryKV()
	ctx := context.Background()

	def := testDoc{Name: "default", Count: 1}
	got := LoadJSON(ctx, kv, slog.Default(), "fresh", def, nil)
	if got != def {
		t.Errorf("expected default %+v, got %+v", def, got)
	}

	// first load seeds storage with the default
	raw, err := kv.Load(ctx, "fresh")
	if err != nil {
		t.Fatalf("expected seeded value in storage, got %v", err)
	}

	var stored testDoc
	if err := json.Unmarshal(raw, &stored); err != nil {
		t.Fatalf("seeded value is not valid JSON: %v", err)
	}
	if stored != def {
		t.Errorf("expected seeded default %+v, got %+v", def, stored)
	}
}

func TestLoadJSON_CorruptValueSelfHeals(t *testing.T) {
	kv := NewMemoryKV()
	ctx := context.Background()

	kv.Save(ctx, "broken", []byte("{definitely not json"))

	def := testDoc{Name: "fallback", Count: 7}
	got := LoadJSON(ctx, kv, slog.Default(), "broken", def, nil)
	if got != def {
		t.Errorf("expected default after corruption, got %+v", got)
	}

	raw, err := kv.Load(ctx, "broken")
	if err != nil {
		t.Fatalf("expected rewritten value, got %v", err)
	}

	var healed testDoc
	if err := json.Unmarshal(raw, &healed); err != nil {
		t.Fatalf("storage not healed, still invalid: %v", err)
	}
	if healed != def {
		t.Errorf("expected storage rewritten to default, got %+v", healed)
	}
}

func TestLoadJSON_InvalidShapeSelfHeals(t *testing.T) {
	kv := NewMemoryKV()
	ctx := context.Background()

	// valid JSON, wrong shape: validation must reject it
	kv.Save(ctx, "shaped", []byte(`{"name":"","count":0}`))

	def := testDoc{Name: "seed", Count: 2}
	valid := func(d testDoc) bool { return d.Name != "" }

	got := LoadJSON(ctx, kv, slog.Default(), "shaped", def, valid)
	if got != def {
		t.Errorf("expected default for invalid shape, got %+v", got)
	}

	raw, _ := kv.Load(ctx, "shaped")
	var healed testDoc
	if err := json.Unmarshal(raw, &healed); err != nil || healed != def {
		t.Errorf("expected storage rewritten to default, got %q (err %v)", raw, err)
	}
}

func TestMigrateLegacyKeys(t *testing.T) {
	kv := NewMemoryKV()
	ctx := context.Background()
	logger := slog.Default()

	kv.Save(ctx, "saaram_coffee_menu", []byte(`[{"id":"legacy"}]`))
	// canonical cart already exists and must win
	kv.Save(ctx, "saaram_coffee_cart", []byte(`[{"itemId":"old"}]`))
	kv.Save(ctx, KeyCart, []byte(`[{"itemId":"new"}]`))

	MigrateLegacyKeys(ctx, kv, logger)

	raw, err := kv.Load(ctx, KeyMenu)
	if err != nil {
		t.Fatalf("expected migrated menu, got %v", err)
	}
	if string(raw) != `[{"id":"legacy"}]` {
		t.Errorf("unexpected migrated menu value: %q", raw)
	}

	raw, err = kv.Load(ctx, KeyCart)
	if err != nil || string(raw) != `[{"itemId":"new"}]` {
		t.Errorf("canonical cart should survive migration, got %q (err %v)", raw, err)
	}

	if _, err := kv.Load(ctx, "saaram_coffee_menu"); !errors.Is(err, ErrNotFound) {
		t.Errorf("legacy menu key should be removed, got %v", err)
	}
	if _, err := kv.Load(ctx, "saaram_coffee_cart"); !errors.Is(err, ErrNotFound) {
		t.Errorf("legacy cart key should be removed, got %v", err)
	}
}
