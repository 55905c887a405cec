package storage

import (
	"context"
	"errors"
	"fmt"
)

// MessageType tags what a tracked chat message displays for a table.
type MessageType int

const (
	// MessageTypeJoin marks the interactive join post.
	MessageTypeJoin MessageType = 1
	// MessageTypeAdd marks the confirmation post for an added game.
	MessageTypeAdd MessageType = 2
)

// Game stores immutable catalog metadata for a board game. Games are
// persisted once per external catalog id and never mutated afterwards.
type Game struct {
	ID                 int64
	Name               string
	Year               int
	Rank               int
	Description        string
	Thumbnail          string
	MinPlayers         int
	MaxPlayers         int
	RecommendedPlayers int
}

// Link returns the game's catalog page URL.
func (g *Game) Link() string {
	return fmt.Sprintf("https://boardgamegeek.com/boardgame/%d", g.ID)
}

// Message records a chat message that mirrors a table's state so it can be
// edited or deleted later.
type Message struct {
	ID        int64
	GuildID   int64
	ChannelID int64
	Type      MessageType
}

// Guild stores one chat community's signup configuration.
type Guild struct {
	ID        int64
	ChannelID int64

	loader Loader
	event  Rel[*Event]
	roles  Rel[[]int64]
}

// Bind injects the loader used to resolve the guild's relationships.
func (g *Guild) Bind(loader Loader) *Guild {
	g.loader = loader
	return g
}

// Event returns the guild's scheduled event, or nil when none is scheduled.
func (g *Guild) Event(ctx context.Context) (*Event, error) {
	return g.event.Resolve(func() (*Event, error) {
		if g.loader == nil {
			return nil, errNoLoader("guild event")
		}
		event, err := g.loader.EventForGuild(ctx, g.ID)
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return event, err
	})
}

// SetEvent seeds the guild's event relation.
func (g *Guild) SetEvent(event *Event) {
	g.event.Set(event)
}

// Roles returns the role ids allowed to run signup commands.
func (g *Guild) Roles(ctx context.Context) ([]int64, error) {
	return g.roles.Resolve(func() ([]int64, error) {
		if g.loader == nil {
			return nil, errNoLoader("guild roles")
		}
		return g.loader.RolesForGuild(ctx, g.ID)
	})
}

// SetRoles seeds the guild's role relation.
func (g *Guild) SetRoles(roles []int64) {
	g.roles.Set(roles)
}

// Event stores the next scheduled meetup for a guild.
type Event struct {
	ID        string
	GuildID   int64
	ChannelID int64

	loader Loader
	guild  Rel[*Guild]
	tables Rel[map[string]*Table]
}

// Bind injects the loader used to resolve the event's relationships.
func (e *Event) Bind(loader Loader) *Event {
	e.loader = loader
	return e
}

// Guild returns the guild this event belongs to.
func (e *Event) Guild(ctx context.Context) (*Guild, error) {
	return e.guild.Resolve(func() (*Guild, error) {
		if e.loader == nil {
			return nil, errNoLoader("event guild")
		}
		return e.loader.GetGuild(ctx, e.GuildID)
	})
}

// SetGuild seeds the event's guild relation.
func (e *Event) SetGuild(guild *Guild) {
	e.guild.Set(guild)
}

// Tables returns the event's tables keyed by table id.
func (e *Event) Tables(ctx context.Context) (map[string]*Table, error) {
	return e.tables.Resolve(func() (map[string]*Table, error) {
		if e.loader == nil {
			return nil, errNoLoader("event tables")
		}
		return e.loader.TablesForEvent(ctx, e.ID)
	})
}

// SetTables seeds the event's table relation.
func (e *Event) SetTables(tables map[string]*Table) {
	e.tables.Set(tables)
}

// Player stores a chat member who has hosted or joined at least one table.
// Player records are created lazily on first interaction and never expire.
type Player struct {
	ID          int64
	DisplayName string
	Mention     string

	loader Loader
	table  Rel[*Table]
}

// Bind injects the loader used to resolve the player's relationships.
func (p *Player) Bind(loader Loader) *Player {
	p.loader = loader
	return p
}

// Table returns the table the player currently sits at, or nil when the
// player neither owns nor joined one. The back-reference is advisory: the
// table owns its roster, not the player.
func (p *Player) Table(ctx context.Context) (*Table, error) {
	return p.table.Resolve(func() (*Table, error) {
		if p.loader == nil {
			return nil, errNoLoader("player table")
		}
		table, err := p.loader.TableForPlayer(ctx, p.ID)
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return table, err
	})
}

// SetTable seeds the player's table relation.
func (p *Player) SetTable(table *Table) {
	p.table.Set(table)
}

// Table stores one player's offer to bring a game to an event. The owner
// counts toward the game's maximum player count.
type Table struct {
	ID      string
	EventID string
	OwnerID int64
	GameID  int64
	Note    string

	loader   Loader
	event    Rel[*Event]
	owner    Rel[*Player]
	game     Rel[*Game]
	players  Rel[map[int64]*Player]
	messages Rel[[]*Message]
}

// Bind injects the loader used to resolve the table's relationships.
func (t *Table) Bind(loader Loader) *Table {
	t.loader = loader
	return t
}

// Event returns the event this table belongs to.
func (t *Table) Event(ctx context.Context) (*Event, error) {
	return t.event.Resolve(func() (*Event, error) {
		if t.loader == nil {
			return nil, errNoLoader("table event")
		}
		return t.loader.GetEvent(ctx, t.EventID)
	})
}

// SetEvent seeds the table's event relation.
func (t *Table) SetEvent(event *Event) {
	t.event.Set(event)
}

// Owner returns the player hosting this table.
func (t *Table) Owner(ctx context.Context) (*Player, error) {
	return t.owner.Resolve(func() (*Player, error) {
		if t.loader == nil {
			return nil, errNoLoader("table owner")
		}
		return t.loader.GetPlayer(ctx, t.OwnerID)
	})
}

// SetOwner seeds the table's owner relation.
func (t *Table) SetOwner(owner *Player) {
	t.owner.Set(owner)
}

// Game returns the game offered at this table.
func (t *Table) Game(ctx context.Context) (*Game, error) {
	return t.game.Resolve(func() (*Game, error) {
		if t.loader == nil {
			return nil, errNoLoader("table game")
		}
		return t.loader.GetGame(ctx, t.GameID)
	})
}

// SetGame seeds the table's game relation.
func (t *Table) SetGame(game *Game) {
	t.game.Set(game)
}

// Players returns the signed-up players keyed by player id, owner included.
func (t *Table) Players(ctx context.Context) (map[int64]*Player, error) {
	return t.players.Resolve(func() (map[int64]*Player, error) {
		if t.loader == nil {
			return nil, errNoLoader("table players")
		}
		return t.loader.PlayersForTable(ctx, t.ID)
	})
}

// SetPlayers seeds the table's roster relation.
func (t *Table) SetPlayers(players map[int64]*Player) {
	t.players.Set(players)
}

// Messages returns the chat messages tracked for this table.
func (t *Table) Messages(ctx context.Context) ([]*Message, error) {
	return t.messages.Resolve(func() ([]*Message, error) {
		if t.loader == nil {
			return nil, errNoLoader("table messages")
		}
		return t.loader.MessagesForTable(ctx, t.ID)
	})
}

// SetMessages seeds the table's message relation.
func (t *Table) SetMessages(messages []*Message) {
	t.messages.Set(messages)
}

func errNoLoader(relation string) error {
	return fmt.Errorf("%s: no relation loader bound", relation)
}
