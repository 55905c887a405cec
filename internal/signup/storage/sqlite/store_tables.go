package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/louisbranch/gamenight/internal/platform/id"
	"github.com/louisbranch/gamenight/internal/signup/storage"
)

const tableColumns = "id, event_id, owner_id, game_id, note"

// AddTable registers one player's offer to bring a game to an event. The
// owner is signed up immediately and counts toward capacity. The game and
// owner records are persisted as a side effect so callers do not have to
// sequence AddGame/AddPlayer first.
func (s *Store) AddTable(ctx context.Context, event *storage.Event, owner *storage.Player, game *storage.Game, note string) (*storage.Table, error) {
	if err := s.guard(ctx); err != nil {
		return nil, err
	}

	if _, err := s.GetEvent(ctx, event.ID); err != nil {
		return nil, err
	}

	tableID, err := id.NewID()
	if err != nil {
		return nil, fmt.Errorf("generate table id: %w", err)
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin add table: %w", err)
	}
	if err := upsertGame(ctx, tx, game); err != nil {
		_ = tx.Rollback()
		return nil, err
	}
	if err := upsertPlayer(ctx, tx, owner); err != nil {
		_ = tx.Rollback()
		return nil, err
	}
	_, err = tx.ExecContext(
		ctx,
		"INSERT INTO game_table (id, event_id, owner_id, game_id, note) VALUES (?, ?, ?, ?, ?)",
		tableID,
		event.ID,
		owner.ID,
		game.ID,
		note,
	)
	if err != nil {
		_ = tx.Rollback()
		// The unique (event_id, owner_id) index is what actually enforces
		// one table per owner per event.
		if isUniqueViolation(err) {
			return nil, storage.ErrDuplicateOwner
		}
		return nil, fmt.Errorf("add table: %w", err)
	}
	_, err = tx.ExecContext(
		ctx,
		"INSERT INTO table_player (table_id, player_id) VALUES (?, ?)",
		tableID,
		owner.ID,
	)
	if err != nil {
		_ = tx.Rollback()
		return nil, fmt.Errorf("sign up owner: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit add table: %w", err)
	}
	return s.GetTable(ctx, tableID)
}

// GetTable returns one table by id.
func (s *Store) GetTable(ctx context.Context, tableID string) (*storage.Table, error) {
	if err := s.guard(ctx); err != nil {
		return nil, err
	}
	return s.scanTable(s.sqlDB.QueryRowContext(
		ctx,
		"SELECT "+tableColumns+" FROM game_table WHERE id = ?",
		tableID,
	))
}

// RemoveTable destroys a table, its memberships, and its tracked messages in
// one transaction.
func (s *Store) RemoveTable(ctx context.Context, table *storage.Table) error {
	if err := s.guard(ctx); err != nil {
		return err
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin remove table: %w", err)
	}
	cascade := []string{
		"DELETE FROM message WHERE id IN (SELECT message_id FROM table_message WHERE table_id = ?)",
		"DELETE FROM table_message WHERE table_id = ?",
		"DELETE FROM table_player WHERE table_id = ?",
		"DELETE FROM game_table WHERE id = ?",
	}
	for _, stmt := range cascade {
		if _, err := tx.ExecContext(ctx, stmt, table.ID); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("remove table: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit remove table: %w", err)
	}
	return nil
}

// JoinTable signs a player up for a table. The capacity check and the
// membership insert share one transaction, so two handlers racing for the
// last seat cannot both win; the unique (table_id, player_id) pair makes a
// repeated join a no-op.
func (s *Store) JoinTable(ctx context.Context, player *storage.Player, table *storage.Table) (*storage.Table, error) {
	if err := s.guard(ctx); err != nil {
		return nil, err
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin join table: %w", err)
	}

	var maxPlayers int
	row := tx.QueryRowContext(
		ctx,
		`SELECT g.max_players FROM game_table t JOIN game g ON g.id = t.game_id WHERE t.id = ?`,
		table.ID,
	)
	if err := row.Scan(&maxPlayers); err != nil {
		_ = tx.Rollback()
		if err == sql.ErrNoRows {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("join table: %w", err)
	}

	var joined int
	row = tx.QueryRowContext(
		ctx,
		"SELECT EXISTS(SELECT 1 FROM table_player WHERE table_id = ? AND player_id = ?)",
		table.ID,
		player.ID,
	)
	if err := row.Scan(&joined); err != nil {
		_ = tx.Rollback()
		return nil, fmt.Errorf("join table: %w", err)
	}
	if joined == 0 {
		var seated int
		row = tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM table_player WHERE table_id = ?", table.ID)
		if err := row.Scan(&seated); err != nil {
			_ = tx.Rollback()
			return nil, fmt.Errorf("join table: %w", err)
		}
		if seated >= maxPlayers {
			_ = tx.Rollback()
			return nil, storage.ErrTableFull
		}
		if err := upsertPlayer(ctx, tx, player); err != nil {
			_ = tx.Rollback()
			return nil, err
		}
		_, err = tx.ExecContext(
			ctx,
			"INSERT OR IGNORE INTO table_player (table_id, player_id) VALUES (?, ?)",
			table.ID,
			player.ID,
		)
		if err != nil {
			_ = tx.Rollback()
			return nil, fmt.Errorf("join table: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit join table: %w", err)
	}
	return s.GetTable(ctx, table.ID)
}

// LeaveTable removes a player from a table's roster. Leaving a table the
// player never joined is a no-op returning the unchanged table.
func (s *Store) LeaveTable(ctx context.Context, player *storage.Player, table *storage.Table) (*storage.Table, error) {
	if err := s.guard(ctx); err != nil {
		return nil, err
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		"DELETE FROM table_player WHERE table_id = ? AND player_id = ?",
		table.ID,
		player.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("leave table: %w", err)
	}
	return s.GetTable(ctx, table.ID)
}

// TablesForEvent returns an event's tables keyed by table id.
func (s *Store) TablesForEvent(ctx context.Context, eventID string) (map[string]*storage.Table, error) {
	if err := s.guard(ctx); err != nil {
		return nil, err
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		"SELECT "+tableColumns+" FROM game_table WHERE event_id = ?",
		eventID,
	)
	if err != nil {
		return nil, fmt.Errorf("tables for event: %w", err)
	}
	defer rows.Close()

	tables := make(map[string]*storage.Table)
	for rows.Next() {
		table := &storage.Table{}
		if err := rows.Scan(&table.ID, &table.EventID, &table.OwnerID, &table.GameID, &table.Note); err != nil {
			return nil, fmt.Errorf("scan table: %w", err)
		}
		tables[table.ID] = table.Bind(s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("tables for event: %w", err)
	}
	return tables, nil
}

// TableForPlayer returns the table a player sits at, as owner or joiner.
func (s *Store) TableForPlayer(ctx context.Context, playerID int64) (*storage.Table, error) {
	if err := s.guard(ctx); err != nil {
		return nil, err
	}
	return s.scanTable(s.sqlDB.QueryRowContext(
		ctx,
		`SELECT t.id, t.event_id, t.owner_id, t.game_id, t.note
		 FROM game_table t JOIN table_player tp ON tp.table_id = t.id
		 WHERE tp.player_id = ? LIMIT 1`,
		playerID,
	))
}

func (s *Store) scanTable(row *sql.Row) (*storage.Table, error) {
	table := &storage.Table{}
	if err := row.Scan(&table.ID, &table.EventID, &table.OwnerID, &table.GameID, &table.Note); err != nil {
		if err == sql.ErrNoRows {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get table: %w", err)
	}
	return table.Bind(s), nil
}
