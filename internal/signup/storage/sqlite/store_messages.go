package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/louisbranch/gamenight/internal/signup/storage"
)

// AddTableMessage tracks a chat message that mirrors a table. The message
// record is persisted alongside the link in one transaction.
func (s *Store) AddTableMessage(ctx context.Context, table *storage.Table, message *storage.Message) (*storage.Table, error) {
	if err := s.guard(ctx); err != nil {
		return nil, err
	}

	if _, err := s.GetTable(ctx, table.ID); err != nil {
		return nil, err
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin add table message: %w", err)
	}
	_, err = tx.ExecContext(
		ctx,
		`INSERT OR IGNORE INTO message (id, guild_id, channel_id, type) VALUES (?, ?, ?, ?)`,
		message.ID,
		message.GuildID,
		message.ChannelID,
		int(message.Type),
	)
	if err != nil {
		_ = tx.Rollback()
		return nil, fmt.Errorf("add message: %w", err)
	}
	_, err = tx.ExecContext(
		ctx,
		"INSERT OR IGNORE INTO table_message (table_id, message_id) VALUES (?, ?)",
		table.ID,
		message.ID,
	)
	if err != nil {
		_ = tx.Rollback()
		return nil, fmt.Errorf("link table message: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit add table message: %w", err)
	}
	return s.GetTable(ctx, table.ID)
}

// TableForMessage returns the table a tracked message mirrors.
func (s *Store) TableForMessage(ctx context.Context, messageID int64) (*storage.Table, error) {
	if err := s.guard(ctx); err != nil {
		return nil, err
	}
	return s.scanTable(s.sqlDB.QueryRowContext(
		ctx,
		`SELECT t.id, t.event_id, t.owner_id, t.game_id, t.note
		 FROM game_table t JOIN table_message tm ON tm.table_id = t.id
		 WHERE tm.message_id = ?`,
		messageID,
	))
}

// MessagesForTable returns the messages tracked for a table.
func (s *Store) MessagesForTable(ctx context.Context, tableID string) ([]*storage.Message, error) {
	if err := s.guard(ctx); err != nil {
		return nil, err
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT m.id, m.guild_id, m.channel_id, m.type
		 FROM message m JOIN table_message tm ON tm.message_id = m.id
		 WHERE tm.table_id = ? ORDER BY m.id`,
		tableID,
	)
	if err != nil {
		return nil, fmt.Errorf("messages for table: %w", err)
	}
	defer rows.Close()

	var messages []*storage.Message
	for rows.Next() {
		message, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		messages = append(messages, message)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("messages for table: %w", err)
	}
	return messages, nil
}

// AddMessage records a chat message without linking it to a table.
func (s *Store) AddMessage(ctx context.Context, message *storage.Message) (*storage.Message, error) {
	if err := s.guard(ctx); err != nil {
		return nil, err
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		"INSERT INTO message (id, guild_id, channel_id, type) VALUES (?, ?, ?, ?)",
		message.ID,
		message.GuildID,
		message.ChannelID,
		int(message.Type),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, storage.ErrAlreadyExists
		}
		return nil, fmt.Errorf("add message: %w", err)
	}
	return s.GetMessage(ctx, message.ID)
}

// GetMessage returns one tracked message by platform id.
func (s *Store) GetMessage(ctx context.Context, messageID int64) (*storage.Message, error) {
	if err := s.guard(ctx); err != nil {
		return nil, err
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		"SELECT id, guild_id, channel_id, type FROM message WHERE id = ?",
		messageID,
	)
	message := &storage.Message{}
	var messageType int
	if err := row.Scan(&message.ID, &message.GuildID, &message.ChannelID, &messageType); err != nil {
		if err == sql.ErrNoRows {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get message: %w", err)
	}
	message.Type = storage.MessageType(messageType)
	return message, nil
}

// DeleteMessage forgets a tracked message and its table link. Deleting an
// unknown message is a no-op.
func (s *Store) DeleteMessage(ctx context.Context, message *storage.Message) error {
	if err := s.guard(ctx); err != nil {
		return err
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete message: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM table_message WHERE message_id = ?", message.ID); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("unlink message: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM message WHERE id = ?", message.ID); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("delete message: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete message: %w", err)
	}
	return nil
}

func scanMessage(rows *sql.Rows) (*storage.Message, error) {
	message := &storage.Message{}
	var messageType int
	if err := rows.Scan(&message.ID, &message.GuildID, &message.ChannelID, &messageType); err != nil {
		return nil, fmt.Errorf("scan message: %w", err)
	}
	message.Type = storage.MessageType(messageType)
	return message, nil
}
