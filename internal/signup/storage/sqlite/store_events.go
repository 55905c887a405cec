package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/louisbranch/gamenight/internal/platform/id"
	"github.com/louisbranch/gamenight/internal/signup/storage"
)

// AddEvent schedules the guild's next meetup. When the guild already has an
// event the existing one is returned; the unique index on event.guild_id
// keeps the one-event-per-guild rule intact even under racing handlers.
func (s *Store) AddEvent(ctx context.Context, guild *storage.Guild) (*storage.Event, error) {
	if err := s.guard(ctx); err != nil {
		return nil, err
	}

	existing, err := s.EventForGuild(ctx, guild.ID)
	if err == nil {
		return existing, nil
	}
	if err != storage.ErrNotFound {
		return nil, err
	}

	stored, err := s.GetGuild(ctx, guild.ID)
	if err != nil {
		return nil, err
	}

	eventID, err := id.NewID()
	if err != nil {
		return nil, fmt.Errorf("generate event id: %w", err)
	}
	_, err = s.sqlDB.ExecContext(
		ctx,
		"INSERT INTO event (id, guild_id, channel_id) VALUES (?, ?, ?)",
		eventID,
		stored.ID,
		stored.ChannelID,
	)
	if err != nil {
		// A concurrent handler scheduled the event between the lookup and
		// the insert; the constraint makes the race harmless.
		if isUniqueViolation(err) {
			return s.EventForGuild(ctx, guild.ID)
		}
		return nil, fmt.Errorf("add event: %w", err)
	}
	return s.GetEvent(ctx, eventID)
}

// GetEvent returns one event by id.
func (s *Store) GetEvent(ctx context.Context, eventID string) (*storage.Event, error) {
	if err := s.guard(ctx); err != nil {
		return nil, err
	}
	return s.scanEvent(s.sqlDB.QueryRowContext(
		ctx,
		"SELECT id, guild_id, channel_id FROM event WHERE id = ?",
		eventID,
	))
}

// EventForGuild returns the guild's scheduled event.
func (s *Store) EventForGuild(ctx context.Context, guildID int64) (*storage.Event, error) {
	if err := s.guard(ctx); err != nil {
		return nil, err
	}
	return s.scanEvent(s.sqlDB.QueryRowContext(
		ctx,
		"SELECT id, guild_id, channel_id FROM event WHERE guild_id = ?",
		guildID,
	))
}

// GetAllEvents returns every scheduled event.
func (s *Store) GetAllEvents(ctx context.Context) ([]*storage.Event, error) {
	if err := s.guard(ctx); err != nil {
		return nil, err
	}

	rows, err := s.sqlDB.QueryContext(ctx, "SELECT id, guild_id, channel_id FROM event ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("get all events: %w", err)
	}
	defer rows.Close()

	var events []*storage.Event
	for rows.Next() {
		event := &storage.Event{}
		if err := rows.Scan(&event.ID, &event.GuildID, &event.ChannelID); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, event.Bind(s))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get all events: %w", err)
	}
	return events, nil
}

// RemoveEvent destroys an event and cascades to its tables, memberships, and
// tracked messages in one transaction.
func (s *Store) RemoveEvent(ctx context.Context, event *storage.Event) error {
	if err := s.guard(ctx); err != nil {
		return err
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin remove event: %w", err)
	}
	cascade := []string{
		`DELETE FROM message WHERE id IN (
		   SELECT message_id FROM table_message
		   WHERE table_id IN (SELECT id FROM game_table WHERE event_id = ?))`,
		`DELETE FROM table_message
		 WHERE table_id IN (SELECT id FROM game_table WHERE event_id = ?)`,
		`DELETE FROM table_player
		 WHERE table_id IN (SELECT id FROM game_table WHERE event_id = ?)`,
		`DELETE FROM game_table WHERE event_id = ?`,
	}
	for _, stmt := range cascade {
		if _, err := tx.ExecContext(ctx, stmt, event.ID); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("remove event cascade: %w", err)
		}
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM event WHERE id = ?", event.ID); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("remove event: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit remove event: %w", err)
	}
	return nil
}

func (s *Store) scanEvent(row *sql.Row) (*storage.Event, error) {
	event := &storage.Event{}
	if err := row.Scan(&event.ID, &event.GuildID, &event.ChannelID); err != nil {
		if err == sql.ErrNoRows {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return event.Bind(s), nil
}
