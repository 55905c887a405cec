package storage

import (
	"context"
	"errors"
)

var (
	// ErrNotFound indicates a requested signup record is missing.
	ErrNotFound = errors.New("record not found")
	// ErrAlreadyExists indicates a uniqueness-constrained record already exists.
	ErrAlreadyExists = errors.New("record already exists")
	// ErrTableFull indicates a join would exceed the game's maximum player count.
	ErrTableFull = errors.New("table is full")
	// ErrDuplicateOwner indicates the player already hosts a table at this event.
	ErrDuplicateOwner = errors.New("player already owns a table for this event")
)

// Loader resolves record relationships on first access. Backends implement it
// alongside Store; records hold the Loader they were materialized with.
type Loader interface {
	GetGuild(ctx context.Context, guildID int64) (*Guild, error)
	GetEvent(ctx context.Context, eventID string) (*Event, error)
	GetGame(ctx context.Context, gameID int64) (*Game, error)
	GetPlayer(ctx context.Context, playerID int64) (*Player, error)

	// EventForGuild returns ErrNotFound when the guild has no scheduled event.
	EventForGuild(ctx context.Context, guildID int64) (*Event, error)
	TablesForEvent(ctx context.Context, eventID string) (map[string]*Table, error)
	PlayersForTable(ctx context.Context, tableID string) (map[int64]*Player, error)
	MessagesForTable(ctx context.Context, tableID string) ([]*Message, error)
	// TableForPlayer returns ErrNotFound when the player neither owns nor
	// joined a table.
	TableForPlayer(ctx context.Context, playerID int64) (*Table, error)
	RolesForGuild(ctx context.Context, guildID int64) ([]int64, error)
}

// Store persists game-night signup state.
type Store interface {
	Loader

	AddGuild(ctx context.Context, guildID, channelID int64) (*Guild, error)
	UpdateGuild(ctx context.Context, guild *Guild, channelID int64) (*Guild, error)
	AddRole(ctx context.Context, guild *Guild, roleID int64) (*Guild, error)
	RemoveRole(ctx context.Context, guild *Guild, roleID int64) (*Guild, error)

	// AddEvent returns the guild's existing event when one is already
	// scheduled; a guild has at most one event at a time.
	AddEvent(ctx context.Context, guild *Guild) (*Event, error)
	GetAllEvents(ctx context.Context) ([]*Event, error)
	// RemoveEvent cascades to the event's tables, their memberships, and
	// their tracked messages.
	RemoveEvent(ctx context.Context, event *Event) error

	// AddTable registers owner as the table's first signed-up player. It
	// returns ErrDuplicateOwner when the owner already hosts a table at the
	// event.
	AddTable(ctx context.Context, event *Event, owner *Player, game *Game, note string) (*Table, error)
	GetTable(ctx context.Context, tableID string) (*Table, error)
	// RemoveTable cascades to the table's memberships and tracked messages.
	RemoveTable(ctx context.Context, table *Table) error

	// JoinTable returns ErrTableFull when the signed-up count, owner
	// included, has reached the game's maximum. Joining a table the player
	// already sits at is a no-op returning the unchanged table.
	JoinTable(ctx context.Context, player *Player, table *Table) (*Table, error)
	// LeaveTable by a player who never joined is a no-op returning the
	// unchanged table.
	LeaveTable(ctx context.Context, player *Player, table *Table) (*Table, error)

	// AddGame is idempotent by the game's external catalog id.
	AddGame(ctx context.Context, game *Game) (*Game, error)
	RemoveGame(ctx context.Context, game *Game) error

	AddPlayer(ctx context.Context, player *Player) (*Player, error)
	// RemovePlayer clears the player's memberships and removes any table
	// they own before deleting the player record.
	RemovePlayer(ctx context.Context, playerID int64) error

	AddTableMessage(ctx context.Context, table *Table, message *Message) (*Table, error)
	TableForMessage(ctx context.Context, messageID int64) (*Table, error)
	AddMessage(ctx context.Context, message *Message) (*Message, error)
	GetMessage(ctx context.Context, messageID int64) (*Message, error)
	DeleteMessage(ctx context.Context, message *Message) error

	// Reset destroys all persisted state and reinitializes empty storage.
	Reset(ctx context.Context) error
	Close() error
}
