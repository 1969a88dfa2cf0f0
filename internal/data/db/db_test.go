package db

import (
	"context"
	"testing"

	"github.com/itsuki0625/react-ai-chatapp-sub000/internal/pkg/logger"
)

func TestSQLiteServiceMigrates(t *testing.T) {
	svc, err := NewDatabaseService(logger.Nop(), Config{Driver: "SQLite", SQLitePath: ":memory:"})
	if err != nil {
		t.Fatalf("NewDatabaseService: %v", err)
	}
	defer svc.Close()

	if svc.Driver() != DriverSQLite {
		t.Fatalf("unexpected driver %q", svc.Driver())
	}
	if err := AutoMigrateAll(svc.DB()); err != nil {
		t.Fatalf("AutoMigrateAll: %v", err)
	}
	for _, table := range []string{"self_analysis_session", "self_analysis_note", "self_analysis_message"} {
		if !svc.DB().Migrator().HasTable(table) {
			t.Fatalf("expected table %s", table)
		}
	}
	sqlDB, _ := svc.DB().DB()
	if err := sqlDB.PingContext(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}
}

func TestUnsupportedDriver(t *testing.T) {
	if _, err := NewDatabaseService(logger.Nop(), Config{Driver: "mysql"}); err == nil {
		t.Fatalf("expected unsupported driver error")
	}
}

func TestPostgresDSN(t *testing.T) {
	cfg := Config{PostgresUser: "u", PostgresPassword: "p", PostgresHost: "h", PostgresPort: "5432", PostgresName: "n"}
	if got := cfg.postgresDSN(); got != "postgres://u:p@h:5432/n?sslmode=disable" {
		t.Fatalf("unexpected dsn %q", got)
	}
}
