package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/louisbranch/gamenight/internal/signup/storage"
)

// AddGame persists catalog metadata once per external id. Games are
// immutable after creation, so re-adding a known id is a harmless no-op.
func (s *Store) AddGame(ctx context.Context, game *storage.Game) (*storage.Game, error) {
	if err := s.guard(ctx); err != nil {
		return nil, err
	}

	if err := upsertGame(ctx, s.sqlDB, game); err != nil {
		return nil, err
	}
	return s.GetGame(ctx, game.ID)
}

// GetGame returns one game by external catalog id.
func (s *Store) GetGame(ctx context.Context, gameID int64) (*storage.Game, error) {
	if err := s.guard(ctx); err != nil {
		return nil, err
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT id, name, year, rank, description, thumbnail,
		        min_players, max_players, recommended_players
		 FROM game WHERE id = ?`,
		gameID,
	)
	game := &storage.Game{}
	err := row.Scan(
		&game.ID,
		&game.Name,
		&game.Year,
		&game.Rank,
		&game.Description,
		&game.Thumbnail,
		&game.MinPlayers,
		&game.MaxPlayers,
		&game.RecommendedPlayers,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get game: %w", err)
	}
	return game, nil
}

// RemoveGame forgets a catalog record. Removing an unknown game is a no-op.
func (s *Store) RemoveGame(ctx context.Context, game *storage.Game) error {
	if err := s.guard(ctx); err != nil {
		return err
	}

	if _, err := s.sqlDB.ExecContext(ctx, "DELETE FROM game WHERE id = ?", game.ID); err != nil {
		return fmt.Errorf("remove game: %w", err)
	}
	return nil
}

// AddPlayer registers a chat member, refreshing their display name and
// mention token when they are already known.
func (s *Store) AddPlayer(ctx context.Context, player *storage.Player) (*storage.Player, error) {
	if err := s.guard(ctx); err != nil {
		return nil, err
	}

	if err := upsertPlayer(ctx, s.sqlDB, player); err != nil {
		return nil, err
	}
	return s.GetPlayer(ctx, player.ID)
}

// GetPlayer returns one player by platform id.
func (s *Store) GetPlayer(ctx context.Context, playerID int64) (*storage.Player, error) {
	if err := s.guard(ctx); err != nil {
		return nil, err
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		"SELECT id, display_name, mention FROM player WHERE id = ?",
		playerID,
	)
	player := &storage.Player{}
	if err := row.Scan(&player.ID, &player.DisplayName, &player.Mention); err != nil {
		if err == sql.ErrNoRows {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get player: %w", err)
	}
	return player.Bind(s), nil
}

// RemovePlayer clears the player's memberships, removes any table they own,
// and deletes the player record, all in one transaction.
func (s *Store) RemovePlayer(ctx context.Context, playerID int64) error {
	if err := s.guard(ctx); err != nil {
		return err
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin remove player: %w", err)
	}
	cascade := []string{
		`DELETE FROM message WHERE id IN (
		   SELECT message_id FROM table_message
		   WHERE table_id IN (SELECT id FROM game_table WHERE owner_id = ?))`,
		`DELETE FROM table_message
		 WHERE table_id IN (SELECT id FROM game_table WHERE owner_id = ?)`,
		`DELETE FROM table_player
		 WHERE table_id IN (SELECT id FROM game_table WHERE owner_id = ?)`,
		`DELETE FROM game_table WHERE owner_id = ?`,
		`DELETE FROM table_player WHERE player_id = ?`,
		`DELETE FROM player WHERE id = ?`,
	}
	for _, stmt := range cascade {
		if _, err := tx.ExecContext(ctx, stmt, playerID); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("remove player: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit remove player: %w", err)
	}
	return nil
}

// PlayersForTable returns a table's roster keyed by player id.
func (s *Store) PlayersForTable(ctx context.Context, tableID string) (map[int64]*storage.Player, error) {
	if err := s.guard(ctx); err != nil {
		return nil, err
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT p.id, p.display_name, p.mention
		 FROM player p JOIN table_player tp ON tp.player_id = p.id
		 WHERE tp.table_id = ?`,
		tableID,
	)
	if err != nil {
		return nil, fmt.Errorf("players for table: %w", err)
	}
	defer rows.Close()

	players := make(map[int64]*storage.Player)
	for rows.Next() {
		player := &storage.Player{}
		if err := rows.Scan(&player.ID, &player.DisplayName, &player.Mention); err != nil {
			return nil, fmt.Errorf("scan player: %w", err)
		}
		players[player.ID] = player.Bind(s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("players for table: %w", err)
	}
	return players, nil
}

func upsertGame(ctx context.Context, q querier, game *storage.Game) error {
	_, err := q.ExecContext(
		ctx,
		`INSERT INTO game (id, name, year, rank, description, thumbnail,
		                   min_players, max_players, recommended_players)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO NOTHING`,
		game.ID,
		game.Name,
		game.Year,
		game.Rank,
		game.Description,
		game.Thumbnail,
		game.MinPlayers,
		game.MaxPlayers,
		game.RecommendedPlayers,
	)
	if err != nil {
		return fmt.Errorf("add game: %w", err)
	}
	return nil
}

func upsertPlayer(ctx context.Context, q querier, player *storage.Player) error {
	_, err := q.ExecContext(
		ctx,
		`INSERT INTO player (id, display_name, mention) VALUES (?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET
		   display_name = excluded.display_name,
		   mention = excluded.mention`,
		player.ID,
		player.DisplayName,
		player.Mention,
	)
	if err != nil {
		return fmt.Errorf("add player: %w", err)
	}
	return nil
}
