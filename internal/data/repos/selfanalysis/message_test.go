package selfanalysis

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/itsuki0625/react-ai-chatapp-sub000/internal/data/repos/testutil"
	types "github.com/itsuki0625/react-ai-chatapp-sub000/internal/domain"
	"github.com/itsuki0625/react-ai-chatapp-sub000/internal/pkg/dbctx"
)

func TestMessageRepoAppendAssignsSequence(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	repo := NewMessageRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}

	sessionID := uuid.New()
	first, err := repo.Append(dbc, sessionID, []*types.SelfAnalysisMessage{
		{Step: "FUTURE", Role: types.RoleUser, Content: "hello"},
		{Step: "FUTURE", Role: types.RoleAssistant, Content: "why?"},
		{Step: "FUTURE", Role: types.RoleUser, Content: "   "},
	})
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if len(first) != 2 || first[0].Seq != 1 || first[1].Seq != 2 {
		t.Fatalf("Append: unexpected rows %+v", first)
	}

	if _, err := repo.Append(dbc, sessionID, []*types.SelfAnalysisMessage{
		{Step: "MOTIVATION", Role: types.RoleUser, Content: "next"},
	}); err != nil {
		t.Fatalf("Append (second): %v", err)
	}

	recent, err := repo.ListRecent(dbc, sessionID, "FUTURE", 10)
	if err != nil {
		t.Fatalf("ListRecent: %v", err)
	}
	if len(recent) != 2 || recent[0].Content != "hello" || recent[1].Content != "why?" {
		t.Fatalf("ListRecent: unexpected order %+v", recent)
	}

	all, err := repo.ListRecent(dbc, sessionID, "", 2)
	if err != nil {
		t.Fatalf("ListRecent (all): %v", err)
	}
	if len(all) != 2 || all[1].Seq != 3 {
		t.Fatalf("ListRecent (all): expected newest two oldest-first, got %+v", all)
	}
}
