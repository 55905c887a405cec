package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/louisbranch/gamenight/internal/signup/storage"
	"github.com/louisbranch/gamenight/internal/signup/storage/storetest"
)

var _ storage.Store = (*Store)(nil)

func TestOpenRequiresPath(t *testing.T) {
	t.Parallel()

	if _, err := Open(""); err == nil {
		t.Fatal("expected empty path error")
	}
}

func TestSQLiteConformance(t *testing.T) {
	storetest.Run(t, func(t *testing.T) storage.Store {
		return openTempStore(t)
	})
}

// TestReopenResolvesRelations persists a table, reopens the store against
// the same file, and checks that the re-fetched record's relations resolve
// to the values written before the restart.
func TestReopenResolvesRelations(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "signups.sqlite")

	store, err := Open(path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}

	guild, err := store.AddGuild(ctx, 100, 555)
	if err != nil {
		t.Fatalf("add guild: %v", err)
	}
	event, err := store.AddEvent(ctx, guild)
	if err != nil {
		t.Fatalf("add event: %v", err)
	}
	owner := &storage.Player{ID: 1, DisplayName: "alice", Mention: "<@1>"}
	game := &storage.Game{ID: 13, Name: "Catan", Year: 1995, MinPlayers: 3, MaxPlayers: 4, RecommendedPlayers: 4}
	table, err := store.AddTable(ctx, event, owner, game, "teaching game")
	if err != nil {
		t.Fatalf("add table: %v", err)
	}
	if _, err := store.JoinTable(ctx, &storage.Player{ID: 2, DisplayName: "bob", Mention: "<@2>"}, table); err != nil {
		t.Fatalf("join table: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close store: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen store: %v", err)
	}
	t.Cleanup(func() { _ = reopened.Close() })

	fetched, err := reopened.GetTable(ctx, table.ID)
	if err != nil {
		t.Fatalf("get table after reopen: %v", err)
	}
	if fetched.Note != "teaching game" {
		t.Fatalf("note = %q, want %q", fetched.Note, "teaching game")
	}

	gotOwner, err := fetched.Owner(ctx)
	if err != nil {
		t.Fatalf("resolve owner: %v", err)
	}
	if gotOwner.DisplayName != "alice" {
		t.Fatalf("owner = %q, want alice", gotOwner.DisplayName)
	}
	gotGame, err := fetched.Game(ctx)
	if err != nil {
		t.Fatalf("resolve game: %v", err)
	}
	if gotGame.Name != "Catan" || gotGame.MaxPlayers != 4 {
		t.Fatalf("game = %q/%d, want Catan/4", gotGame.Name, gotGame.MaxPlayers)
	}
	players, err := fetched.Players(ctx)
	if err != nil {
		t.Fatalf("resolve players: %v", err)
	}
	if len(players) != 2 {
		t.Fatalf("players len = %d, want 2", len(players))
	}
	gotEvent, err := fetched.Event(ctx)
	if err != nil {
		t.Fatalf("resolve event: %v", err)
	}
	if gotEvent.ID != event.ID {
		t.Fatalf("event = %q, want %q", gotEvent.ID, event.ID)
	}
}

// TestRelationsLoadOnceAndStick checks the lazy-loading contract: a fetched
// record hydrates a relation on first access and never silently invalidates
// it, even when the underlying rows change.
func TestRelationsLoadOnceAndStick(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := openTempStore(t)

	guild, err := store.AddGuild(ctx, 100, 555)
	if err != nil {
		t.Fatalf("add guild: %v", err)
	}
	event, err := store.AddEvent(ctx, guild)
	if err != nil {
		t.Fatalf("add event: %v", err)
	}
	owner := &storage.Player{ID: 1, DisplayName: "alice", Mention: "<@1>"}
	game := &storage.Game{ID: 13, Name: "Catan", MaxPlayers: 4}
	table, err := store.AddTable(ctx, event, owner, game, "")
	if err != nil {
		t.Fatalf("add table: %v", err)
	}

	fetched, err := store.GetTable(ctx, table.ID)
	if err != nil {
		t.Fatalf("get table: %v", err)
	}
	players, err := fetched.Players(ctx)
	if err != nil {
		t.Fatalf("resolve players: %v", err)
	}
	if len(players) != 1 {
		t.Fatalf("players len = %d, want 1", len(players))
	}

	if _, err := store.JoinTable(ctx, &storage.Player{ID: 2, DisplayName: "bob"}, fetched); err != nil {
		t.Fatalf("join table: %v", err)
	}

	// The object fetched before the join keeps its loaded snapshot.
	players, err = fetched.Players(ctx)
	if err != nil {
		t.Fatalf("re-resolve players: %v", err)
	}
	if len(players) != 1 {
		t.Fatalf("cached players len = %d, want 1", len(players))
	}

	// A fresh fetch sees the write.
	fresh, err := store.GetTable(ctx, table.ID)
	if err != nil {
		t.Fatalf("get fresh table: %v", err)
	}
	players, err = fresh.Players(ctx)
	if err != nil {
		t.Fatalf("resolve fresh players: %v", err)
	}
	if len(players) != 2 {
		t.Fatalf("fresh players len = %d, want 2", len(players))
	}
}

// Write operations hand back a re-fetched record, never the mutated input.
func TestWritesReturnFreshRecords(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := openTempStore(t)

	guild, err := store.AddGuild(ctx, 100, 555)
	if err != nil {
		t.Fatalf("add guild: %v", err)
	}
	event, err := store.AddEvent(ctx, guild)
	if err != nil {
		t.Fatalf("add event: %v", err)
	}
	owner := &storage.Player{ID: 1, DisplayName: "alice", Mention: "<@1>"}
	table, err := store.AddTable(ctx, event, owner, &storage.Game{ID: 13, Name: "Catan", MaxPlayers: 4}, "")
	if err != nil {
		t.Fatalf("add table: %v", err)
	}

	joined, err := store.JoinTable(ctx, &storage.Player{ID: 2, DisplayName: "bob"}, table)
	if err != nil {
		t.Fatalf("join table: %v", err)
	}
	if joined == table {
		t.Fatal("expected a re-fetched record, got the input pointer")
	}
	players, err := joined.Players(ctx)
	if err != nil {
		t.Fatalf("resolve players: %v", err)
	}
	if len(players) != 2 {
		t.Fatalf("players len = %d, want 2", len(players))
	}
}

func TestResetSurvivesReopen(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "signups.sqlite")

	store, err := Open(path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	if _, err := store.AddGuild(ctx, 100, 555); err != nil {
		t.Fatalf("add guild: %v", err)
	}
	if err := store.Reset(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen after reset: %v", err)
	}
	t.Cleanup(func() { _ = reopened.Close() })

	if _, err := reopened.GetGuild(ctx, 100); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("guild after reset error = %v, want %v", err, storage.ErrNotFound)
	}
	if _, err := reopened.AddGuild(ctx, 100, 555); err != nil {
		t.Fatalf("add guild after reset: %v", err)
	}
}

func openTempStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "signups.sqlite"))
	if err != nil {
		t.Fatalf("open temp store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}
