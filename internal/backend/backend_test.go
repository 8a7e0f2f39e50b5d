package backend

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"finsight/internal/config"
)

func TestTypeIsValid(t *testing.T) {
	for _, valid := range []Type{SQLiteBackend, SheetsBackend, MemoryBackend} {
		if !valid.IsValid() {
			t.Errorf("%s should be valid", valid)
		}
	}
	if Type("postgres").IsValid() {
		t.Error("postgres should not be valid")
	}
}

func TestFromAppConfig(t *testing.T) {
	appCfg := &config.Config{
		DataBackend:  "sqlite",
		SQLiteDBPath: "/tmp/finsight.db",
		AMQPURL:      "amqp://localhost:5672/",
		AMQPExchange: "finsight",
		AMQPQueue:    "digest_requests",
	}

	cfg, err := FromAppConfig(appCfg)
	if err != nil {
		t.Fatalf("FromAppConfig() error = %v", err)
	}
	if cfg.Type != SQLiteBackend || cfg.SQLiteDBPath != "/tmp/finsight.db" {
		t.Errorf("cfg = %+v", cfg)
	}

	if _, err := FromAppConfig(nil); err == nil {
		t.Error("nil config should fail")
	}

	appCfg.DataBackend = "postgres"
	if _, err := FromAppConfig(appCfg); err == nil {
		t.Error("unknown backend should fail")
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{"sqlite ok", Config{Type: SQLiteBackend, SQLiteDBPath: "x.db"}, ""},
		{"sqlite missing path", Config{Type: SQLiteBackend}, "database path"},
		{"sheets missing id", Config{Type: SheetsBackend, GoogleServiceAccountJSON: "{}"}, "spreadsheet ID"},
		{"sheets missing credentials", Config{Type: SheetsBackend, GoogleSpreadsheetID: "sheet-1"}, "credentials"},
		{"sheets ok", Config{Type: SheetsBackend, GoogleSpreadsheetID: "sheet-1", GoogleServiceAccountJSON: "{}"}, ""},
		{"memory ok", Config{Type: MemoryBackend}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestCreateMemoryBackend(t *testing.T) {
	factory := NewFactory(nil)

	res, err := factory.CreateBackend(context.Background(), Config{
		Type:           MemoryBackend,
		MemorySeedFile: filepath.Join(t.TempDir(), "missing.csv"),
	})
	if err != nil {
		t.Fatalf("CreateBackend() error = %v", err)
	}
	if res.Backend == nil {
		t.Fatal("Backend should not be nil")
	}
	if res.Transactions != nil || res.Budgets != nil {
		t.Error("memory backend should not expose local persistence")
	}

	records, err := Snapshotter(res.Backend).Snapshot(context.Background())
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	if len(records) != 0 {
		t.Errorf("len(records) = %d, want 0 for a missing seed file", len(records))
	}
}

func TestCreateSQLiteBackend(t *testing.T) {
	factory := NewFactory(nil)

	res, err := factory.CreateBackend(context.Background(), Config{
		Type:         SQLiteBackend,
		SQLiteDBPath: filepath.Join(t.TempDir(), "finsight.db"),
	})
	if err != nil {
		t.Fatalf("CreateBackend() error = %v", err)
	}
	defer func() { _ = res.Cleanup() }()

	if res.Transactions == nil || res.Budgets == nil {
		t.Fatal("sqlite backend should expose transaction service and budgets")
	}
	if _, err := res.Backend.ListCategories(context.Background()); err != nil {
		t.Errorf("ListCategories() error = %v", err)
	}
}

func TestCreateBackendInvalidType(t *testing.T) {
	factory := NewFactory(nil)
	if _, err := factory.CreateBackend(context.Background(), Config{Type: "postgres"}); err == nil {
		t.Error("invalid type should fail")
	}
}
