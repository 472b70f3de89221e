package model

import (
	"errors"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/craiggwilson/augment-opencode/internal/storage"
)

func setupModelStoreTestDB(t *testing.T) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&Model{}, &UsageLog{}, &ErrorLog{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	storage.DB = db
}

func TestGetModel_RoundTrip(t *testing.T) {
	setupModelStoreTestDB(t)

	m := &Model{
		ID:               "augment:claude-sonnet-4",
		Name:             "Claude Sonnet 4 (Augment)",
		Interface:        "augment",
		UpstreamID:       "claude-sonnet-4",
		Enabled:          true,
		ForwardReasoning: true,
	}
	if err := CreateModel(m); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := GetModel("augment:claude-sonnet-4")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.UpstreamID != "claude-sonnet-4" {
		t.Fatalf("upstream id expect claude-sonnet-4, got %q", got.UpstreamID)
	}
	if !got.ForwardReasoning {
		t.Fatal("expect forward_reasoning true")
	}
}

func TestGetModel_NotFound(t *testing.T) {
	setupModelStoreTestDB(t)

	if _, err := GetModel("missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expect ErrNotFound, got %v", err)
	}
	if _, err := GetModel("  "); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expect ErrNotFound for blank id, got %v", err)
	}
}

func TestRecordUsage_CostByPrice(t *testing.T) {
	setupModelStoreTestDB(t)

	m := &Model{ID: "m1", Enabled: true, InputPrice: 0.01, OutputPrice: 0.02}
	if err := CreateModel(m); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := RecordUsage(m, 1000, 500); err != nil {
		t.Fatalf("record usage: %v", err)
	}

	var logs []UsageLog
	if err := storage.DB.Find(&logs).Error; err != nil {
		t.Fatalf("find logs: %v", err)
	}
	if len(logs) != 1 {
		t.Fatalf("expect 1 usage log, got %d", len(logs))
	}
	if logs[0].InputTokens != 1000 || logs[0].OutputTokens != 500 {
		t.Fatalf("tokens mismatch: %+v", logs[0])
	}
	want := 0.01 + 0.01 // 1000*0.01/1000 + 500*0.02/1000
	if diff := logs[0].TotalCost - want; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("cost expect %v, got %v", want, logs[0].TotalCost)
	}
}

func TestRecordErrorLog_TruncatesMessage(t *testing.T) {
	setupModelStoreTestDB(t)

	long := make([]byte, 1000)
	for i := range long {
		long[i] = 'x'
	}
	if err := RecordErrorLog("m1", 502, string(long)); err != nil {
		t.Fatalf("record error log: %v", err)
	}

	var logs []ErrorLog
	if err := storage.DB.Find(&logs).Error; err != nil {
		t.Fatalf("find logs: %v", err)
	}
	if len(logs) != 1 || len(logs[0].Message) != 500 {
		t.Fatalf("expect truncated message of 500, got %d", len(logs[0].Message))
	}
}
