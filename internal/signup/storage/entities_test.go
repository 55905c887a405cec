package storage

import (
	"context"
	"errors"
	"testing"
)

// fakeLoader counts relation queries so tests can observe load-once caching.
type fakeLoader struct {
	calls int

	event   *Event
	table   *Table
	players map[int64]*Player
	err     error
}

func (f *fakeLoader) GetGuild(ctx context.Context, guildID int64) (*Guild, error) {
	f.calls++
	return &Guild{ID: guildID}, f.err
}

func (f *fakeLoader) GetEvent(ctx context.Context, eventID string) (*Event, error) {
	f.calls++
	if f.event == nil {
		return nil, ErrNotFound
	}
	return f.event, f.err
}

func (f *fakeLoader) GetGame(ctx context.Context, gameID int64) (*Game, error) {
	f.calls++
	return &Game{ID: gameID}, f.err
}

func (f *fakeLoader) GetPlayer(ctx context.Context, playerID int64) (*Player, error) {
	f.calls++
	return &Player{ID: playerID}, f.err
}

func (f *fakeLoader) EventForGuild(ctx context.Context, guildID int64) (*Event, error) {
	f.calls++
	if f.event == nil {
		return nil, ErrNotFound
	}
	return f.event, f.err
}

func (f *fakeLoader) TablesForEvent(ctx context.Context, eventID string) (map[string]*Table, error) {
	f.calls++
	return map[string]*Table{}, f.err
}

func (f *fakeLoader) PlayersForTable(ctx context.Context, tableID string) (map[int64]*Player, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.players, nil
}

func (f *fakeLoader) MessagesForTable(ctx context.Context, tableID string) ([]*Message, error) {
	f.calls++
	return nil, f.err
}

func (f *fakeLoader) TableForPlayer(ctx context.Context, playerID int64) (*Table, error) {
	f.calls++
	if f.table == nil {
		return nil, ErrNotFound
	}
	return f.table, f.err
}

func (f *fakeLoader) RolesForGuild(ctx context.Context, guildID int64) ([]int64, error) {
	f.calls++
	return nil, f.err
}

func TestTablePlayersLoadOnce(t *testing.T) {
	t.Parallel()

	loader := &fakeLoader{players: map[int64]*Player{1: {ID: 1}}}
	table := (&Table{ID: "t1"}).Bind(loader)

	for i := 0; i < 3; i++ {
		players, err := table.Players(context.Background())
		if err != nil {
			t.Fatalf("resolve players: %v", err)
		}
		if len(players) != 1 {
			t.Fatalf("players len = %d, want 1", len(players))
		}
	}
	if loader.calls != 1 {
		t.Fatalf("loader calls = %d, want 1", loader.calls)
	}
}

func TestFailedLoadRetries(t *testing.T) {
	t.Parallel()

	loader := &fakeLoader{err: errors.New("db gone")}
	table := (&Table{ID: "t1"}).Bind(loader)

	if _, err := table.Players(context.Background()); err == nil {
		t.Fatal("expected load failure")
	}

	loader.err = nil
	loader.players = map[int64]*Player{1: {ID: 1}}
	players, err := table.Players(context.Background())
	if err != nil {
		t.Fatalf("resolve players after recovery: %v", err)
	}
	if len(players) != 1 {
		t.Fatalf("players len = %d, want 1", len(players))
	}
	if loader.calls != 2 {
		t.Fatalf("loader calls = %d, want 2", loader.calls)
	}
}

func TestSeededRelationsSkipLoader(t *testing.T) {
	t.Parallel()

	loader := &fakeLoader{}
	table := (&Table{ID: "t1"}).Bind(loader)
	table.SetPlayers(map[int64]*Player{1: {ID: 1}, 2: {ID: 2}})

	players, err := table.Players(context.Background())
	if err != nil {
		t.Fatalf("resolve players: %v", err)
	}
	if len(players) != 2 {
		t.Fatalf("players len = %d, want 2", len(players))
	}
	if loader.calls != 0 {
		t.Fatalf("loader calls = %d, want 0", loader.calls)
	}
}

func TestUnboundRelationFails(t *testing.T) {
	t.Parallel()

	table := &Table{ID: "t1"}
	if _, err := table.Players(context.Background()); err == nil {
		t.Fatal("expected unbound relation error")
	}
}

func TestGuildEventAbsenceResolvesNil(t *testing.T) {
	t.Parallel()

	loader := &fakeLoader{}
	guild := (&Guild{ID: 100}).Bind(loader)

	event, err := guild.Event(context.Background())
	if err != nil {
		t.Fatalf("resolve event: %v", err)
	}
	if event != nil {
		t.Fatalf("event = %v, want nil", event)
	}

	// Absence is cached like any other resolved value.
	if _, err := guild.Event(context.Background()); err != nil {
		t.Fatalf("re-resolve event: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("loader calls = %d, want 1", loader.calls)
	}
}

func TestPlayerTableAbsenceResolvesNil(t *testing.T) {
	t.Parallel()

	loader := &fakeLoader{}
	player := (&Player{ID: 1}).Bind(loader)

	table, err := player.Table(context.Background())
	if err != nil {
		t.Fatalf("resolve table: %v", err)
	}
	if table != nil {
		t.Fatalf("table = %v, want nil", table)
	}
}

func TestGameLink(t *testing.T) {
	t.Parallel()

	game := &Game{ID: 13}
	want := "https://boardgamegeek.com/boardgame/13"
	if got := game.Link(); got != want {
		t.Fatalf("link = %q, want %q", got, want)
	}
}
