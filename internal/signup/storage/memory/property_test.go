package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/louisbranch/gamenight/internal/signup/storage"
	"pgregory.net/rapid"
)

// TestProperty_CapacityNeverExceeded checks that no sequence of join and
// leave calls can push a table's roster past the game's maximum player
// count, and that every rejected join leaves the roster unchanged.
func TestProperty_CapacityNeverExceeded(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		ctx := context.Background()
		store := NewMemory()

		guild, err := store.AddGuild(ctx, 1, 10)
		if err != nil {
			rt.Fatalf("add guild: %v", err)
		}
		event, err := store.AddEvent(ctx, guild)
		if err != nil {
			rt.Fatalf("add event: %v", err)
		}

		maxPlayers := rapid.IntRange(1, 6).Draw(rt, "maxPlayers")
		game := &storage.Game{ID: 1, Name: "game", MaxPlayers: maxPlayers}
		owner := &storage.Player{ID: 1000, DisplayName: "owner", Mention: "<@owner>"}
		table, err := store.AddTable(ctx, event, owner, game, "")
		if err != nil {
			rt.Fatalf("add table: %v", err)
		}

		steps := rapid.IntRange(1, 50).Draw(rt, "steps")
		for i := 0; i < steps; i++ {
			playerID := int64(rapid.IntRange(1, 10).Draw(rt, "player"))
			player := &storage.Player{ID: playerID, DisplayName: "p", Mention: "<@p>"}

			players, err := table.Players(ctx)
			if err != nil {
				rt.Fatalf("resolve players: %v", err)
			}
			before := len(players)

			rejected := false
			if rapid.Bool().Draw(rt, "join") {
				_, err := store.JoinTable(ctx, player, table)
				switch {
				case err == nil:
				case errors.Is(err, storage.ErrTableFull):
					rejected = true
				default:
					rt.Fatalf("join table: %v", err)
				}
			} else {
				if _, err := store.LeaveTable(ctx, player, table); err != nil {
					rt.Fatalf("leave table: %v", err)
				}
			}

			players, err = table.Players(ctx)
			if err != nil {
				rt.Fatalf("resolve players: %v", err)
			}
			if rejected && len(players) != before {
				rt.Fatalf("rejected join changed roster: %d -> %d", before, len(players))
			}
			if len(players) > maxPlayers {
				rt.Fatalf("roster %d exceeds max %d", len(players), maxPlayers)
			}
		}
	})
}
