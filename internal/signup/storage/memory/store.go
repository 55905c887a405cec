// Package memory provides an in-memory signup storage implementation.
//
// State lives for the process lifetime only. Every relationship is kept
// eagerly consistent at mutation time, so record accessors never trigger a
// load. A single mutex serializes operations; concurrent interaction
// handlers racing to join the same table observe the capacity check and the
// membership insert as one step.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/louisbranch/gamenight/internal/platform/id"
	"github.com/louisbranch/gamenight/internal/signup/storage"
)

// Memory stores signup state in memory.
type Memory struct {
	mu            sync.Mutex
	guilds        map[int64]*storage.Guild
	events        map[string]*storage.Event
	guildEvents   map[int64]*storage.Event
	tables        map[string]*storage.Table
	games         map[int64]*storage.Game
	players       map[int64]*storage.Player
	messages      map[int64]*storage.Message
	messageTables map[int64]string
	roles         map[int64][]int64
}

// NewMemory creates a new in-memory signup store.
func NewMemory() *Memory {
	m := &Memory{}
	m.initLocked()
	return m
}

func (m *Memory) initLocked() {
	m.guilds = make(map[int64]*storage.Guild)
	m.events = make(map[string]*storage.Event)
	m.guildEvents = make(map[int64]*storage.Event)
	m.tables = make(map[string]*storage.Table)
	m.games = make(map[int64]*storage.Game)
	m.players = make(map[int64]*storage.Player)
	m.messages = make(map[int64]*storage.Message)
	m.messageTables = make(map[int64]string)
	m.roles = make(map[int64][]int64)
}

func (m *Memory) guard(ctx context.Context) error {
	if m == nil {
		return errors.New("signup store is required")
	}
	if ctx != nil {
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	return nil
}

// AddGuild registers a guild with its signup channel.
func (m *Memory) AddGuild(ctx context.Context, guildID, channelID int64) (*storage.Guild, error) {
	if err := m.guard(ctx); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.guilds[guildID]; ok {
		return nil, storage.ErrAlreadyExists
	}

	guild := &storage.Guild{ID: guildID, ChannelID: channelID}
	guild.SetEvent(nil)
	guild.SetRoles(nil)
	m.guilds[guildID] = guild
	return guild, nil
}

// UpdateGuild changes the guild's signup channel.
func (m *Memory) UpdateGuild(ctx context.Context, guild *storage.Guild, channelID int64) (*storage.Guild, error) {
	if err := m.guard(ctx); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.guilds[guild.ID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	stored.ChannelID = channelID
	return stored, nil
}

// GetGuild returns one guild by id.
func (m *Memory) GetGuild(ctx context.Context, guildID int64) (*storage.Guild, error) {
	if err := m.guard(ctx); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	guild, ok := m.guilds[guildID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return guild, nil
}

// AddRole allows a role to run signup commands in the guild.
func (m *Memory) AddRole(ctx context.Context, guild *storage.Guild, roleID int64) (*storage.Guild, error) {
	if err := m.guard(ctx); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.guilds[guild.ID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	for _, existing := range m.roles[guild.ID] {
		if existing == roleID {
			return stored, nil
		}
	}
	m.roles[guild.ID] = append(m.roles[guild.ID], roleID)
	stored.SetRoles(m.roles[guild.ID])
	return stored, nil
}

// RemoveRole revokes a role; removing an absent role is a no-op.
func (m *Memory) RemoveRole(ctx context.Context, guild *storage.Guild, roleID int64) (*storage.Guild, error) {
	if err := m.guard(ctx); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.guilds[guild.ID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	roles := m.roles[guild.ID]
	for i, existing := range roles {
		if existing == roleID {
			m.roles[guild.ID] = append(roles[:i], roles[i+1:]...)
			break
		}
	}
	stored.SetRoles(m.roles[guild.ID])
	return stored, nil
}

// RolesForGuild returns the guild's allowed role ids.
func (m *Memory) RolesForGuild(ctx context.Context, guildID int64) ([]int64, error) {
	if err := m.guard(ctx); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	return m.roles[guildID], nil
}

// AddEvent schedules the guild's next meetup, or returns the one already
// scheduled.
func (m *Memory) AddEvent(ctx context.Context, guild *storage.Guild) (*storage.Event, error) {
	if err := m.guard(ctx); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.guilds[guild.ID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	if existing, ok := m.guildEvents[guild.ID]; ok {
		return existing, nil
	}

	eventID, err := id.NewID()
	if err != nil {
		return nil, fmt.Errorf("generate event id: %w", err)
	}
	event := &storage.Event{ID: eventID, GuildID: stored.ID, ChannelID: stored.ChannelID}
	event.SetGuild(stored)
	event.SetTables(make(map[string]*storage.Table))
	stored.SetEvent(event)

	m.events[eventID] = event
	m.guildEvents[stored.ID] = event
	return event, nil
}

// GetEvent returns one event by id.
func (m *Memory) GetEvent(ctx context.Context, eventID string) (*storage.Event, error) {
	if err := m.guard(ctx); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	event, ok := m.events[eventID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return event, nil
}

// EventForGuild returns the guild's scheduled event.
func (m *Memory) EventForGuild(ctx context.Context, guildID int64) (*storage.Event, error) {
	if err := m.guard(ctx); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	event, ok := m.guildEvents[guildID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return event, nil
}

// GetAllEvents returns every scheduled event.
func (m *Memory) GetAllEvents(ctx context.Context) ([]*storage.Event, error) {
	if err := m.guard(ctx); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	events := make([]*storage.Event, 0, len(m.events))
	for _, event := range m.events {
		events = append(events, event)
	}
	return events, nil
}

// RemoveEvent destroys an event and cascades to its tables, memberships, and
// tracked messages. Removing an unknown event is a no-op.
func (m *Memory) RemoveEvent(ctx context.Context, event *storage.Event) error {
	if err := m.guard(ctx); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.events[event.ID]
	if !ok {
		return nil
	}

	tables, _ := stored.Tables(ctx)
	for tableID := range tables {
		m.removeTableLocked(ctx, tableID)
	}

	delete(m.events, stored.ID)
	delete(m.guildEvents, stored.GuildID)
	if guild, ok := m.guilds[stored.GuildID]; ok {
		guild.SetEvent(nil)
	}
	return nil
}

// TablesForEvent returns an event's tables keyed by table id.
func (m *Memory) TablesForEvent(ctx context.Context, eventID string) (map[string]*storage.Table, error) {
	if err := m.guard(ctx); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	event, ok := m.events[eventID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	tables, _ := event.Tables(ctx)
	return tables, nil
}

// AddTable registers one player's offer to bring a game to an event. The
// owner is signed up immediately and counts toward capacity.
func (m *Memory) AddTable(ctx context.Context, event *storage.Event, owner *storage.Player, game *storage.Game, note string) (*storage.Table, error) {
	if err := m.guard(ctx); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.events[event.ID]
	if !ok {
		return nil, storage.ErrNotFound
	}

	tables, _ := stored.Tables(ctx)
	for _, existing := range tables {
		if existing.OwnerID == owner.ID {
			return nil, storage.ErrDuplicateOwner
		}
	}

	storedGame := m.internGameLocked(game)
	storedOwner := m.internPlayerLocked(owner)

	tableID, err := id.NewID()
	if err != nil {
		return nil, fmt.Errorf("generate table id: %w", err)
	}
	table := &storage.Table{
		ID:      tableID,
		EventID: stored.ID,
		OwnerID: storedOwner.ID,
		GameID:  storedGame.ID,
		Note:    note,
	}
	table.SetEvent(stored)
	table.SetOwner(storedOwner)
	table.SetGame(storedGame)
	table.SetPlayers(map[int64]*storage.Player{storedOwner.ID: storedOwner})
	table.SetMessages(nil)

	tables[tableID] = table
	m.tables[tableID] = table
	storedOwner.SetTable(table)
	return table, nil
}

// GetTable returns one table by id.
func (m *Memory) GetTable(ctx context.Context, tableID string) (*storage.Table, error) {
	if err := m.guard(ctx); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	table, ok := m.tables[tableID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return table, nil
}

// RemoveTable destroys a table, its memberships, and its tracked messages.
// Removing an unknown table is a no-op.
func (m *Memory) RemoveTable(ctx context.Context, table *storage.Table) error {
	if err := m.guard(ctx); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.removeTableLocked(ctx, table.ID)
	return nil
}

func (m *Memory) removeTableLocked(ctx context.Context, tableID string) {
	table, ok := m.tables[tableID]
	if !ok {
		return
	}

	players, _ := table.Players(ctx)
	for _, player := range players {
		player.SetTable(nil)
	}
	messages, _ := table.Messages(ctx)
	for _, message := range messages {
		delete(m.messages, message.ID)
		delete(m.messageTables, message.ID)
	}
	if event, ok := m.events[table.EventID]; ok {
		tables, _ := event.Tables(ctx)
		delete(tables, tableID)
	}
	delete(m.tables, tableID)
}

// JoinTable signs a player up for a table. Joining a table the player
// already sits at is a no-op; joining a full table returns ErrTableFull.
func (m *Memory) JoinTable(ctx context.Context, player *storage.Player, table *storage.Table) (*storage.Table, error) {
	if err := m.guard(ctx); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.tables[table.ID]
	if !ok {
		return nil, storage.ErrNotFound
	}

	players, _ := stored.Players(ctx)
	if _, joined := players[player.ID]; joined {
		return stored, nil
	}

	game, _ := stored.Game(ctx)
	if len(players) >= game.MaxPlayers {
		return nil, storage.ErrTableFull
	}

	storedPlayer := m.internPlayerLocked(player)
	players[storedPlayer.ID] = storedPlayer
	storedPlayer.SetTable(stored)
	return stored, nil
}

// LeaveTable removes a player from a table's roster. Leaving a table the
// player never joined is a no-op returning the unchanged table.
func (m *Memory) LeaveTable(ctx context.Context, player *storage.Player, table *storage.Table) (*storage.Table, error) {
	if err := m.guard(ctx); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.tables[table.ID]
	if !ok {
		return nil, storage.ErrNotFound
	}

	players, _ := stored.Players(ctx)
	storedPlayer, joined := players[player.ID]
	if !joined {
		return stored, nil
	}
	delete(players, player.ID)
	storedPlayer.SetTable(nil)
	return stored, nil
}

// PlayersForTable returns a table's roster keyed by player id.
func (m *Memory) PlayersForTable(ctx context.Context, tableID string) (map[int64]*storage.Player, error) {
	if err := m.guard(ctx); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	table, ok := m.tables[tableID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	players, _ := table.Players(ctx)
	return players, nil
}

// TableForPlayer returns the table a player sits at.
func (m *Memory) TableForPlayer(ctx context.Context, playerID int64) (*storage.Table, error) {
	if err := m.guard(ctx); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, table := range m.tables {
		players, _ := table.Players(ctx)
		if _, ok := players[playerID]; ok {
			return table, nil
		}
	}
	return nil, storage.ErrNotFound
}

// AddGame persists catalog metadata once per external id. Re-adding a known
// game returns the stored record untouched.
func (m *Memory) AddGame(ctx context.Context, game *storage.Game) (*storage.Game, error) {
	if err := m.guard(ctx); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	return m.internGameLocked(game), nil
}

// GetGame returns one game by external id.
func (m *Memory) GetGame(ctx context.Context, gameID int64) (*storage.Game, error) {
	if err := m.guard(ctx); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	game, ok := m.games[gameID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return game, nil
}

// RemoveGame forgets a catalog record. Removing an unknown game is a no-op.
func (m *Memory) RemoveGame(ctx context.Context, game *storage.Game) error {
	if err := m.guard(ctx); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.games, game.ID)
	return nil
}

// AddPlayer registers a chat member, refreshing their display name and
// mention token when they are already known.
func (m *Memory) AddPlayer(ctx context.Context, player *storage.Player) (*storage.Player, error) {
	if err := m.guard(ctx); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	return m.internPlayerLocked(player), nil
}

// GetPlayer returns one player by platform id.
func (m *Memory) GetPlayer(ctx context.Context, playerID int64) (*storage.Player, error) {
	if err := m.guard(ctx); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	player, ok := m.players[playerID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return player, nil
}

// RemovePlayer clears the player's memberships, removes any table they own,
// and deletes the player record. Removing an unknown player is a no-op.
func (m *Memory) RemovePlayer(ctx context.Context, playerID int64) error {
	if err := m.guard(ctx); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, table := range m.tables {
		if table.OwnerID == playerID {
			m.removeTableLocked(ctx, table.ID)
			continue
		}
		players, _ := table.Players(ctx)
		delete(players, playerID)
	}
	delete(m.players, playerID)
	return nil
}

// AddTableMessage tracks a chat message that mirrors a table.
func (m *Memory) AddTableMessage(ctx context.Context, table *storage.Table, message *storage.Message) (*storage.Table, error) {
	if err := m.guard(ctx); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.tables[table.ID]
	if !ok {
		return nil, storage.ErrNotFound
	}

	m.messages[message.ID] = message
	m.messageTables[message.ID] = stored.ID
	messages, _ := stored.Messages(ctx)
	stored.SetMessages(append(messages, message))
	return stored, nil
}

// TableForMessage returns the table a tracked message mirrors.
func (m *Memory) TableForMessage(ctx context.Context, messageID int64) (*storage.Table, error) {
	if err := m.guard(ctx); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	tableID, ok := m.messageTables[messageID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	table, ok := m.tables[tableID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return table, nil
}

// MessagesForTable returns the messages tracked for a table.
func (m *Memory) MessagesForTable(ctx context.Context, tableID string) ([]*storage.Message, error) {
	if err := m.guard(ctx); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	table, ok := m.tables[tableID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	messages, _ := table.Messages(ctx)
	return messages, nil
}

// AddMessage records a chat message without linking it to a table.
func (m *Memory) AddMessage(ctx context.Context, message *storage.Message) (*storage.Message, error) {
	if err := m.guard(ctx); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.messages[message.ID]; ok {
		return nil, storage.ErrAlreadyExists
	}
	m.messages[message.ID] = message
	return message, nil
}

// GetMessage returns one tracked message by platform id.
func (m *Memory) GetMessage(ctx context.Context, messageID int64) (*storage.Message, error) {
	if err := m.guard(ctx); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	message, ok := m.messages[messageID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return message, nil
}

// DeleteMessage forgets a tracked message and its table link. Deleting an
// unknown message is a no-op.
func (m *Memory) DeleteMessage(ctx context.Context, message *storage.Message) error {
	if err := m.guard(ctx); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if tableID, ok := m.messageTables[message.ID]; ok {
		if table, ok := m.tables[tableID]; ok {
			messages, _ := table.Messages(ctx)
			for i, existing := range messages {
				if existing.ID == message.ID {
					table.SetMessages(append(messages[:i], messages[i+1:]...))
					break
				}
			}
		}
	}
	delete(m.messageTables, message.ID)
	delete(m.messages, message.ID)
	return nil
}

// Reset destroys all state and reinitializes empty storage.
func (m *Memory) Reset(ctx context.Context) error {
	if err := m.guard(ctx); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.initLocked()
	return nil
}

// Close is a no-op for the in-memory store.
func (m *Memory) Close() error {
	return nil
}

func (m *Memory) internGameLocked(game *storage.Game) *storage.Game {
	if stored, ok := m.games[game.ID]; ok {
		return stored
	}
	m.games[game.ID] = game
	return game
}

func (m *Memory) internPlayerLocked(player *storage.Player) *storage.Player {
	if stored, ok := m.players[player.ID]; ok {
		stored.DisplayName = player.DisplayName
		stored.Mention = player.Mention
		return stored
	}
	player.SetTable(nil)
	m.players[player.ID] = player
	return player
}
