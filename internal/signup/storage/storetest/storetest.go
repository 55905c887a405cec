// Package storetest runs the signup storage conformance suite against any
// Store implementation. Both backends must pass the same suite so callers
// can swap persistence strategy without behavior drift.
package storetest

import (
	"context"
	"errors"
	"testing"

	"github.com/louisbranch/gamenight/internal/signup/storage"
)

// Factory returns a fresh, empty store for one test.
type Factory func(t *testing.T) storage.Store

// Run exercises the full storage contract against stores built by factory.
func Run(t *testing.T, factory Factory) {
	t.Run("GuildLifecycle", func(t *testing.T) { testGuildLifecycle(t, factory) })
	t.Run("GuildRoles", func(t *testing.T) { testGuildRoles(t, factory) })
	t.Run("EventPerGuild", func(t *testing.T) { testEventPerGuild(t, factory) })
	t.Run("TableOwnership", func(t *testing.T) { testTableOwnership(t, factory) })
	t.Run("JoinLeave", func(t *testing.T) { testJoinLeave(t, factory) })
	t.Run("RemoveTableCascade", func(t *testing.T) { testRemoveTableCascade(t, factory) })
	t.Run("RemoveEventCascade", func(t *testing.T) { testRemoveEventCascade(t, factory) })
	t.Run("GameIdempotence", func(t *testing.T) { testGameIdempotence(t, factory) })
	t.Run("Players", func(t *testing.T) { testPlayers(t, factory) })
	t.Run("Messages", func(t *testing.T) { testMessages(t, factory) })
	t.Run("Reset", func(t *testing.T) { testReset(t, factory) })
	t.Run("SignupScenario", func(t *testing.T) { testSignupScenario(t, factory) })
}

func chess() *storage.Game {
	return &storage.Game{
		ID:                 171,
		Name:               "Chess",
		Year:               1475,
		Rank:               412,
		Description:        "The classic abstract",
		Thumbnail:          "https://example.test/chess.jpg",
		MinPlayers:         2,
		MaxPlayers:         2,
		RecommendedPlayers: 2,
	}
}

func catan() *storage.Game {
	return &storage.Game{
		ID:                 13,
		Name:               "Catan",
		Year:               1995,
		Rank:               429,
		MinPlayers:         3,
		MaxPlayers:         4,
		RecommendedPlayers: 4,
	}
}

func player(id int64, name string) *storage.Player {
	return &storage.Player{ID: id, DisplayName: name, Mention: "<@" + name + ">"}
}

func mustGuildWithEvent(t *testing.T, store storage.Store, guildID int64) (*storage.Guild, *storage.Event) {
	t.Helper()
	ctx := context.Background()
	guild, err := store.AddGuild(ctx, guildID, guildID*10)
	if err != nil {
		t.Fatalf("add guild: %v", err)
	}
	event, err := store.AddEvent(ctx, guild)
	if err != nil {
		t.Fatalf("add event: %v", err)
	}
	return guild, event
}

func testGuildLifecycle(t *testing.T, factory Factory) {
	store := factory(t)
	ctx := context.Background()

	guild, err := store.AddGuild(ctx, 100, 555)
	if err != nil {
		t.Fatalf("add guild: %v", err)
	}
	if guild.ID != 100 || guild.ChannelID != 555 {
		t.Fatalf("guild = %d/%d, want 100/555", guild.ID, guild.ChannelID)
	}

	if _, err := store.AddGuild(ctx, 100, 556); !errors.Is(err, storage.ErrAlreadyExists) {
		t.Fatalf("duplicate guild error = %v, want %v", err, storage.ErrAlreadyExists)
	}

	updated, err := store.UpdateGuild(ctx, guild, 777)
	if err != nil {
		t.Fatalf("update guild: %v", err)
	}
	if updated.ChannelID != 777 {
		t.Fatalf("channel = %d, want 777", updated.ChannelID)
	}

	if _, err := store.GetGuild(ctx, 404); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("missing guild error = %v, want %v", err, storage.ErrNotFound)
	}
	if _, err := store.UpdateGuild(ctx, &storage.Guild{ID: 404}, 1); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("update missing guild error = %v, want %v", err, storage.ErrNotFound)
	}

	fetched, err := store.GetGuild(ctx, 100)
	if err != nil {
		t.Fatalf("get guild: %v", err)
	}
	event, err := fetched.Event(ctx)
	if err != nil {
		t.Fatalf("resolve guild event: %v", err)
	}
	if event != nil {
		t.Fatalf("expected no event, got %q", event.ID)
	}
}

func testGuildRoles(t *testing.T, factory Factory) {
	store := factory(t)
	ctx := context.Background()

	guild, err := store.AddGuild(ctx, 100, 555)
	if err != nil {
		t.Fatalf("add guild: %v", err)
	}

	if _, err := store.AddRole(ctx, guild, 9001); err != nil {
		t.Fatalf("add role: %v", err)
	}
	if _, err := store.AddRole(ctx, guild, 9002); err != nil {
		t.Fatalf("add second role: %v", err)
	}
	// Re-granting is harmless.
	if _, err := store.AddRole(ctx, guild, 9001); err != nil {
		t.Fatalf("re-add role: %v", err)
	}

	roles, err := store.RolesForGuild(ctx, guild.ID)
	if err != nil {
		t.Fatalf("roles for guild: %v", err)
	}
	if len(roles) != 2 {
		t.Fatalf("roles len = %d, want 2", len(roles))
	}

	if _, err := store.RemoveRole(ctx, guild, 9001); err != nil {
		t.Fatalf("remove role: %v", err)
	}
	if _, err := store.RemoveRole(ctx, guild, 404); err != nil {
		t.Fatalf("remove absent role should be a no-op: %v", err)
	}

	fetched, err := store.GetGuild(ctx, guild.ID)
	if err != nil {
		t.Fatalf("get guild: %v", err)
	}
	roles, err = fetched.Roles(ctx)
	if err != nil {
		t.Fatalf("resolve roles: %v", err)
	}
	if len(roles) != 1 || roles[0] != 9002 {
		t.Fatalf("roles = %v, want [9002]", roles)
	}
}

func testEventPerGuild(t *testing.T, factory Factory) {
	store := factory(t)
	ctx := context.Background()

	guild, event := mustGuildWithEvent(t, store, 100)

	again, err := store.AddEvent(ctx, guild)
	if err != nil {
		t.Fatalf("re-add event: %v", err)
	}
	if again.ID != event.ID {
		t.Fatalf("second AddEvent id = %q, want existing %q", again.ID, event.ID)
	}

	forGuild, err := store.EventForGuild(ctx, guild.ID)
	if err != nil {
		t.Fatalf("event for guild: %v", err)
	}
	if forGuild.ID != event.ID {
		t.Fatalf("event for guild = %q, want %q", forGuild.ID, event.ID)
	}

	fetched, err := store.GetEvent(ctx, event.ID)
	if err != nil {
		t.Fatalf("get event: %v", err)
	}
	owner, err := fetched.Guild(ctx)
	if err != nil {
		t.Fatalf("resolve event guild: %v", err)
	}
	if owner.ID != guild.ID {
		t.Fatalf("event guild = %d, want %d", owner.ID, guild.ID)
	}

	mustGuildWithEvent(t, store, 200)
	events, err := store.GetAllEvents(ctx)
	if err != nil {
		t.Fatalf("get all events: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("events len = %d, want 2", len(events))
	}

	if _, err := store.GetEvent(ctx, "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("missing event error = %v, want %v", err, storage.ErrNotFound)
	}
	if _, err := store.AddEvent(ctx, &storage.Guild{ID: 404}); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("event for unknown guild error = %v, want %v", err, storage.ErrNotFound)
	}
}

func testTableOwnership(t *testing.T, factory Factory) {
	store := factory(t)
	ctx := context.Background()

	_, event := mustGuildWithEvent(t, store, 100)
	owner := player(1, "alice")

	table, err := store.AddTable(ctx, event, owner, catan(), "bringing the seafarers expansion")
	if err != nil {
		t.Fatalf("add table: %v", err)
	}
	if table.EventID != event.ID || table.OwnerID != owner.ID || table.GameID != catan().ID {
		t.Fatalf("table scalars = %q/%d/%d, want %q/%d/%d",
			table.EventID, table.OwnerID, table.GameID, event.ID, owner.ID, catan().ID)
	}
	if table.Note != "bringing the seafarers expansion" {
		t.Fatalf("note = %q", table.Note)
	}

	players, err := table.Players(ctx)
	if err != nil {
		t.Fatalf("resolve players: %v", err)
	}
	if len(players) != 1 {
		t.Fatalf("players len = %d, want owner only", len(players))
	}
	if _, ok := players[owner.ID]; !ok {
		t.Fatal("owner missing from roster")
	}

	if _, err := store.AddTable(ctx, event, owner, chess(), ""); !errors.Is(err, storage.ErrDuplicateOwner) {
		t.Fatalf("second table error = %v, want %v", err, storage.ErrDuplicateOwner)
	}

	other := player(2, "bob")
	if _, err := store.AddTable(ctx, event, other, catan(), ""); err != nil {
		t.Fatalf("second owner table: %v", err)
	}

	tables, err := store.TablesForEvent(ctx, event.ID)
	if err != nil {
		t.Fatalf("tables for event: %v", err)
	}
	if len(tables) != 2 {
		t.Fatalf("tables len = %d, want 2", len(tables))
	}

	if _, err := store.AddTable(ctx, &storage.Event{ID: "missing"}, player(3, "eve"), chess(), ""); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("table on missing event error = %v, want %v", err, storage.ErrNotFound)
	}
}

func testJoinLeave(t *testing.T, factory Factory) {
	store := factory(t)
	ctx := context.Background()

	_, event := mustGuildWithEvent(t, store, 100)
	owner := player(1, "alice")
	table, err := store.AddTable(ctx, event, owner, catan(), "")
	if err != nil {
		t.Fatalf("add table: %v", err)
	}

	bob := player(2, "bob")
	table, err = store.JoinTable(ctx, bob, table)
	if err != nil {
		t.Fatalf("join table: %v", err)
	}
	players, err := table.Players(ctx)
	if err != nil {
		t.Fatalf("resolve players: %v", err)
	}
	if len(players) != 2 {
		t.Fatalf("players len = %d, want 2", len(players))
	}

	// Joining again is a no-op, not a constraint failure.
	table, err = store.JoinTable(ctx, bob, table)
	if err != nil {
		t.Fatalf("repeat join: %v", err)
	}
	players, err = table.Players(ctx)
	if err != nil {
		t.Fatalf("resolve players: %v", err)
	}
	if len(players) != 2 {
		t.Fatalf("players len after repeat join = %d, want 2", len(players))
	}

	// Leaving without having joined is a no-op.
	table, err = store.LeaveTable(ctx, player(99, "mallory"), table)
	if err != nil {
		t.Fatalf("leave by non-member: %v", err)
	}
	players, err = table.Players(ctx)
	if err != nil {
		t.Fatalf("resolve players: %v", err)
	}
	if len(players) != 2 {
		t.Fatalf("players len after non-member leave = %d, want 2", len(players))
	}

	table, err = store.LeaveTable(ctx, bob, table)
	if err != nil {
		t.Fatalf("leave table: %v", err)
	}
	players, err = table.Players(ctx)
	if err != nil {
		t.Fatalf("resolve players: %v", err)
	}
	if len(players) != 1 {
		t.Fatalf("players len after leave = %d, want 1", len(players))
	}

	left, err := store.GetPlayer(ctx, bob.ID)
	if err != nil {
		t.Fatalf("get player: %v", err)
	}
	current, err := left.Table(ctx)
	if err != nil {
		t.Fatalf("resolve player table: %v", err)
	}
	if current != nil {
		t.Fatalf("expected no table after leaving, got %q", current.ID)
	}

	if _, err := store.JoinTable(ctx, bob, &storage.Table{ID: "missing"}); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("join missing table error = %v, want %v", err, storage.ErrNotFound)
	}
}

func testRemoveTableCascade(t *testing.T, factory Factory) {
	store := factory(t)
	ctx := context.Background()

	guild, event := mustGuildWithEvent(t, store, 100)
	owner := player(1, "alice")
	table, err := store.AddTable(ctx, event, owner, catan(), "")
	if err != nil {
		t.Fatalf("add table: %v", err)
	}
	if _, err := store.JoinTable(ctx, player(2, "bob"), table); err != nil {
		t.Fatalf("join table: %v", err)
	}
	message := &storage.Message{ID: 9000, GuildID: guild.ID, ChannelID: guild.ChannelID, Type: storage.MessageTypeJoin}
	if _, err := store.AddTableMessage(ctx, table, message); err != nil {
		t.Fatalf("add table message: %v", err)
	}

	if err := store.RemoveTable(ctx, table); err != nil {
		t.Fatalf("remove table: %v", err)
	}

	if _, err := store.GetTable(ctx, table.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("removed table error = %v, want %v", err, storage.ErrNotFound)
	}
	if _, err := store.GetMessage(ctx, message.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("cascaded message error = %v, want %v", err, storage.ErrNotFound)
	}
	if _, err := store.TableForMessage(ctx, message.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("table for cascaded message error = %v, want %v", err, storage.ErrNotFound)
	}

	for _, playerID := range []int64{1, 2} {
		stored, err := store.GetPlayer(ctx, playerID)
		if err != nil {
			t.Fatalf("get player %d: %v", playerID, err)
		}
		current, err := stored.Table(ctx)
		if err != nil {
			t.Fatalf("resolve player %d table: %v", playerID, err)
		}
		if current != nil {
			t.Fatalf("player %d still references table %q", playerID, current.ID)
		}
	}
}

func testRemoveEventCascade(t *testing.T, factory Factory) {
	store := factory(t)
	ctx := context.Background()

	guild, event := mustGuildWithEvent(t, store, 100)
	first, err := store.AddTable(ctx, event, player(1, "alice"), catan(), "")
	if err != nil {
		t.Fatalf("add first table: %v", err)
	}
	second, err := store.AddTable(ctx, event, player(2, "bob"), chess(), "")
	if err != nil {
		t.Fatalf("add second table: %v", err)
	}
	message := &storage.Message{ID: 9000, GuildID: guild.ID, ChannelID: guild.ChannelID, Type: storage.MessageTypeAdd}
	if _, err := store.AddTableMessage(ctx, first, message); err != nil {
		t.Fatalf("add table message: %v", err)
	}

	if err := store.RemoveEvent(ctx, event); err != nil {
		t.Fatalf("remove event: %v", err)
	}

	if _, err := store.GetEvent(ctx, event.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("removed event error = %v, want %v", err, storage.ErrNotFound)
	}
	for _, table := range []*storage.Table{first, second} {
		if _, err := store.GetTable(ctx, table.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Fatalf("cascaded table %q error = %v, want %v", table.ID, err, storage.ErrNotFound)
		}
	}
	if _, err := store.GetMessage(ctx, message.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("cascaded message error = %v, want %v", err, storage.ErrNotFound)
	}

	// The guild can schedule a fresh event afterwards.
	fresh, err := store.AddEvent(ctx, guild)
	if err != nil {
		t.Fatalf("reschedule event: %v", err)
	}
	if fresh.ID == event.ID {
		t.Fatal("expected a new event id after removal")
	}
}

func testGameIdempotence(t *testing.T, factory Factory) {
	store := factory(t)
	ctx := context.Background()

	first, err := store.AddGame(ctx, chess())
	if err != nil {
		t.Fatalf("add game: %v", err)
	}
	again := chess()
	again.Name = "Chess (second insert, ignored)"
	second, err := store.AddGame(ctx, again)
	if err != nil {
		t.Fatalf("re-add game: %v", err)
	}
	if second.Name != first.Name {
		t.Fatalf("re-add mutated game name to %q", second.Name)
	}

	fetched, err := store.GetGame(ctx, chess().ID)
	if err != nil {
		t.Fatalf("get game: %v", err)
	}
	if fetched.MaxPlayers != 2 || fetched.RecommendedPlayers != 2 {
		t.Fatalf("game players = %d/%d, want 2/2", fetched.MaxPlayers, fetched.RecommendedPlayers)
	}

	if _, err := store.GetGame(ctx, 404); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("missing game error = %v, want %v", err, storage.ErrNotFound)
	}

	if err := store.RemoveGame(ctx, first); err != nil {
		t.Fatalf("remove game: %v", err)
	}
	if _, err := store.GetGame(ctx, first.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("removed game error = %v, want %v", err, storage.ErrNotFound)
	}
}

func testPlayers(t *testing.T, factory Factory) {
	store := factory(t)
	ctx := context.Background()

	added, err := store.AddPlayer(ctx, player(7, "alice"))
	if err != nil {
		t.Fatalf("add player: %v", err)
	}
	if added.DisplayName != "alice" {
		t.Fatalf("display name = %q", added.DisplayName)
	}

	// Re-adding refreshes the display name and mention token.
	renamed, err := store.AddPlayer(ctx, player(7, "alice2"))
	if err != nil {
		t.Fatalf("re-add player: %v", err)
	}
	if renamed.DisplayName != "alice2" {
		t.Fatalf("display name after refresh = %q, want alice2", renamed.DisplayName)
	}

	if _, err := store.GetPlayer(ctx, 404); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("missing player error = %v, want %v", err, storage.ErrNotFound)
	}

	_, event := mustGuildWithEvent(t, store, 100)
	table, err := store.AddTable(ctx, event, player(7, "alice2"), catan(), "")
	if err != nil {
		t.Fatalf("add table: %v", err)
	}
	if _, err := store.JoinTable(ctx, player(8, "bob"), table); err != nil {
		t.Fatalf("join table: %v", err)
	}

	if err := store.RemovePlayer(ctx, 7); err != nil {
		t.Fatalf("remove player: %v", err)
	}
	if _, err := store.GetPlayer(ctx, 7); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("removed player error = %v, want %v", err, storage.ErrNotFound)
	}
	// The owner's table goes with them.
	if _, err := store.GetTable(ctx, table.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("owned table error = %v, want %v", err, storage.ErrNotFound)
	}
	if _, err := store.TableForPlayer(ctx, 8); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("joiner table error = %v, want %v", err, storage.ErrNotFound)
	}
}

func testMessages(t *testing.T, factory Factory) {
	store := factory(t)
	ctx := context.Background()

	guild, event := mustGuildWithEvent(t, store, 100)
	table, err := store.AddTable(ctx, event, player(1, "alice"), catan(), "")
	if err != nil {
		t.Fatalf("add table: %v", err)
	}

	join := &storage.Message{ID: 9000, GuildID: guild.ID, ChannelID: guild.ChannelID, Type: storage.MessageTypeJoin}
	add := &storage.Message{ID: 9001, GuildID: guild.ID, ChannelID: guild.ChannelID, Type: storage.MessageTypeAdd}
	if _, err := store.AddTableMessage(ctx, table, join); err != nil {
		t.Fatalf("add join message: %v", err)
	}
	if _, err := store.AddTableMessage(ctx, table, add); err != nil {
		t.Fatalf("add add message: %v", err)
	}

	fetched, err := store.GetTable(ctx, table.ID)
	if err != nil {
		t.Fatalf("get table: %v", err)
	}
	messages, err := fetched.Messages(ctx)
	if err != nil {
		t.Fatalf("resolve messages: %v", err)
	}
	if len(messages) != 2 {
		t.Fatalf("messages len = %d, want 2", len(messages))
	}

	mirror, err := store.TableForMessage(ctx, join.ID)
	if err != nil {
		t.Fatalf("table for message: %v", err)
	}
	if mirror.ID != table.ID {
		t.Fatalf("table for message = %q, want %q", mirror.ID, table.ID)
	}

	stored, err := store.GetMessage(ctx, join.ID)
	if err != nil {
		t.Fatalf("get message: %v", err)
	}
	if stored.Type != storage.MessageTypeJoin {
		t.Fatalf("message type = %d, want %d", stored.Type, storage.MessageTypeJoin)
	}

	if _, err := store.AddMessage(ctx, &storage.Message{ID: join.ID}); !errors.Is(err, storage.ErrAlreadyExists) {
		t.Fatalf("duplicate message error = %v, want %v", err, storage.ErrAlreadyExists)
	}

	if err := store.DeleteMessage(ctx, join); err != nil {
		t.Fatalf("delete message: %v", err)
	}
	if _, err := store.GetMessage(ctx, join.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("deleted message error = %v, want %v", err, storage.ErrNotFound)
	}
	if _, err := store.TableForMessage(ctx, join.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("table for deleted message error = %v, want %v", err, storage.ErrNotFound)
	}
	// The sibling link survives.
	if _, err := store.TableForMessage(ctx, add.ID); err != nil {
		t.Fatalf("table for remaining message: %v", err)
	}
}

func testReset(t *testing.T, factory Factory) {
	store := factory(t)
	ctx := context.Background()

	guild, event := mustGuildWithEvent(t, store, 100)
	if _, err := store.AddTable(ctx, event, player(1, "alice"), catan(), ""); err != nil {
		t.Fatalf("add table: %v", err)
	}

	if err := store.Reset(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}

	if _, err := store.GetGuild(ctx, guild.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("guild after reset error = %v, want %v", err, storage.ErrNotFound)
	}
	events, err := store.GetAllEvents(ctx)
	if err != nil {
		t.Fatalf("events after reset: %v", err)
	}
	if len(events) != 0 {
		t.Fatalf("events after reset = %d, want 0", len(events))
	}

	// Storage is usable again immediately.
	if _, err := store.AddGuild(ctx, guild.ID, 555); err != nil {
		t.Fatalf("add guild after reset: %v", err)
	}
}

// testSignupScenario walks the canonical flow: schedule an event, offer a
// two-seat game, fill it, reject the overflow, then tear the table down.
func testSignupScenario(t *testing.T, factory Factory) {
	store := factory(t)
	ctx := context.Background()

	guild, err := store.AddGuild(ctx, 100, 555)
	if err != nil {
		t.Fatalf("add guild: %v", err)
	}
	event, err := store.AddEvent(ctx, guild)
	if err != nil {
		t.Fatalf("add event: %v", err)
	}

	p1 := player(1, "alice")
	table, err := store.AddTable(ctx, event, p1, chess(), "")
	if err != nil {
		t.Fatalf("add table: %v", err)
	}
	players, err := table.Players(ctx)
	if err != nil {
		t.Fatalf("resolve players: %v", err)
	}
	if len(players) != 1 {
		t.Fatalf("players = %d, want {alice}", len(players))
	}

	p2 := player(2, "bob")
	table, err = store.JoinTable(ctx, p2, table)
	if err != nil {
		t.Fatalf("join table: %v", err)
	}
	players, err = table.Players(ctx)
	if err != nil {
		t.Fatalf("resolve players: %v", err)
	}
	if len(players) != 2 {
		t.Fatalf("players = %d, want {alice, bob}", len(players))
	}

	p3 := player(3, "carol")
	if _, err := store.JoinTable(ctx, p3, table); !errors.Is(err, storage.ErrTableFull) {
		t.Fatalf("overflow join error = %v, want %v", err, storage.ErrTableFull)
	}
	fetched, err := store.GetTable(ctx, table.ID)
	if err != nil {
		t.Fatalf("get table: %v", err)
	}
	players, err = fetched.Players(ctx)
	if err != nil {
		t.Fatalf("resolve players: %v", err)
	}
	if len(players) != 2 {
		t.Fatalf("players after rejected join = %d, want 2", len(players))
	}

	if err := store.RemoveTable(ctx, fetched); err != nil {
		t.Fatalf("remove table: %v", err)
	}
	if _, err := store.GetTable(ctx, table.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("removed table error = %v, want %v", err, storage.ErrNotFound)
	}
	for _, playerID := range []int64{p1.ID, p2.ID} {
		stored, err := store.GetPlayer(ctx, playerID)
		if err != nil {
			t.Fatalf("get player %d: %v", playerID, err)
		}
		current, err := stored.Table(ctx)
		if err != nil {
			t.Fatalf("resolve player %d table: %v", playerID, err)
		}
		if current != nil {
			t.Fatalf("player %d still seated at %q", playerID, current.ID)
		}
	}
}
