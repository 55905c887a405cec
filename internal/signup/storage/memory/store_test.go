package memory

import (
	"context"
	"testing"

	"github.com/louisbranch/gamenight/internal/signup/storage"
	"github.com/louisbranch/gamenight/internal/signup/storage/storetest"
)

var _ storage.Store = (*Memory)(nil)

func TestMemoryConformance(t *testing.T) {
	storetest.Run(t, func(t *testing.T) storage.Store {
		return NewMemory()
	})
}

// The memory backend keeps relationships eagerly consistent: records already
// in hand observe mutations without a re-fetch.
func TestMemoryEagerConsistency(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()

	guild, err := store.AddGuild(ctx, 100, 555)
	if err != nil {
		t.Fatalf("add guild: %v", err)
	}
	event, err := store.AddEvent(ctx, guild)
	if err != nil {
		t.Fatalf("add event: %v", err)
	}

	tables, err := event.Tables(ctx)
	if err != nil {
		t.Fatalf("resolve tables: %v", err)
	}
	if len(tables) != 0 {
		t.Fatalf("tables len = %d, want 0", len(tables))
	}

	owner := &storage.Player{ID: 1, DisplayName: "alice", Mention: "<@alice>"}
	game := &storage.Game{ID: 13, Name: "Catan", MaxPlayers: 4}
	table, err := store.AddTable(ctx, event, owner, game, "")
	if err != nil {
		t.Fatalf("add table: %v", err)
	}

	// The map resolved before the mutation reflects it.
	if len(tables) != 1 {
		t.Fatalf("tables len after add = %d, want 1", len(tables))
	}

	players, err := table.Players(ctx)
	if err != nil {
		t.Fatalf("resolve players: %v", err)
	}
	if _, err := store.JoinTable(ctx, &storage.Player{ID: 2, DisplayName: "bob"}, table); err != nil {
		t.Fatalf("join table: %v", err)
	}
	if len(players) != 2 {
		t.Fatalf("players len after join = %d, want 2", len(players))
	}

	current, err := owner.Table(ctx)
	if err != nil {
		t.Fatalf("resolve owner table: %v", err)
	}
	if current == nil || current.ID != table.ID {
		t.Fatalf("owner table = %v, want %q", current, table.ID)
	}

	if err := store.RemoveTable(ctx, table); err != nil {
		t.Fatalf("remove table: %v", err)
	}
	current, err = owner.Table(ctx)
	if err != nil {
		t.Fatalf("resolve owner table after removal: %v", err)
	}
	if current != nil {
		t.Fatalf("owner still seated at %q after removal", current.ID)
	}
	if len(tables) != 0 {
		t.Fatalf("event tables len after removal = %d, want 0", len(tables))
	}
}

func TestMemoryResetDropsEverything(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()

	guild, err := store.AddGuild(ctx, 100, 555)
	if err != nil {
		t.Fatalf("add guild: %v", err)
	}
	if _, err := store.AddRole(ctx, guild, 9001); err != nil {
		t.Fatalf("add role: %v", err)
	}
	if _, err := store.AddPlayer(ctx, &storage.Player{ID: 1, DisplayName: "alice"}); err != nil {
		t.Fatalf("add player: %v", err)
	}

	if err := store.Reset(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}

	if _, err := store.GetPlayer(ctx, 1); err != storage.ErrNotFound {
		t.Fatalf("player after reset error = %v, want %v", err, storage.ErrNotFound)
	}
	roles, err := store.RolesForGuild(ctx, guild.ID)
	if err != nil {
		t.Fatalf("roles after reset: %v", err)
	}
	if len(roles) != 0 {
		t.Fatalf("roles after reset = %v, want none", roles)
	}
}

func TestMemoryRejectsCanceledContext(t *testing.T) {
	store := NewMemory()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := store.AddGuild(ctx, 100, 555); err == nil {
		t.Fatal("expected context error")
	}
	if _, err := store.GetGuild(ctx, 100); err == nil {
		t.Fatal("expected context error")
	}
}
