package selfanalysis

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/itsuki0625/react-ai-chatapp-sub000/internal/data/repos/testutil"
	"github.com/itsuki0625/react-ai-chatapp-sub000/internal/pkg/dbctx"
)

func TestSessionRepoGetOrCreate(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	repo := NewSessionRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}

	id := uuid.New()
	missing, err := repo.GetByID(dbc, id)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if missing != nil {
		t.Fatalf("GetByID: expected nil for unseen session, got %+v", missing)
	}

	created, err := repo.GetOrCreate(dbc, id, "FUTURE")
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	if created.CurrentStep != "FUTURE" {
		t.Fatalf("GetOrCreate: expected FUTURE, got %q", created.CurrentStep)
	}

	again, err := repo.GetOrCreate(dbc, id, "HISTORY")
	if err != nil {
		t.Fatalf("GetOrCreate (existing): %v", err)
	}
	if again.CurrentStep != "FUTURE" {
		t.Fatalf("GetOrCreate (existing): initial step must not overwrite, got %q", again.CurrentStep)
	}
}

func TestSessionRepoCompareAndSetStep(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	repo := NewSessionRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}

	id := uuid.New()
	if _, err := repo.GetOrCreate(dbc, id, "FUTURE"); err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}

	ok, err := repo.CompareAndSetStep(dbc, id, "FUTURE", "MOTIVATION", false)
	if err != nil || !ok {
		t.Fatalf("CompareAndSetStep: ok=%v err=%v", ok, err)
	}
	// Stale "from" must not apply.
	ok, err = repo.CompareAndSetStep(dbc, id, "FUTURE", "MOTIVATION", false)
	if err != nil {
		t.Fatalf("CompareAndSetStep (stale): %v", err)
	}
	if ok {
		t.Fatalf("CompareAndSetStep (stale): expected no row change")
	}

	ok, err = repo.CompareAndSetStep(dbc, id, "MOTIVATION", "FIN", true)
	if err != nil || !ok {
		t.Fatalf("CompareAndSetStep (fin): ok=%v err=%v", ok, err)
	}
	got, err := repo.GetByID(dbc, id)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.CurrentStep != "FIN" || got.CompletedAt == nil {
		t.Fatalf("expected FIN with completed_at, got %+v", got)
	}
}
