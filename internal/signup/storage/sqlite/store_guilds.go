package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/louisbranch/gamenight/internal/signup/storage"
)

// AddGuild registers a guild with its signup channel.
func (s *Store) AddGuild(ctx context.Context, guildID, channelID int64) (*storage.Guild, error) {
	if err := s.guard(ctx); err != nil {
		return nil, err
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		"INSERT INTO guild (id, channel_id) VALUES (?, ?)",
		guildID,
		channelID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, storage.ErrAlreadyExists
		}
		return nil, fmt.Errorf("add guild: %w", err)
	}
	return s.GetGuild(ctx, guildID)
}

// UpdateGuild changes the guild's signup channel.
func (s *Store) UpdateGuild(ctx context.Context, guild *storage.Guild, channelID int64) (*storage.Guild, error) {
	if err := s.guard(ctx); err != nil {
		return nil, err
	}

	result, err := s.sqlDB.ExecContext(
		ctx,
		"UPDATE guild SET channel_id = ? WHERE id = ?",
		channelID,
		guild.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("update guild: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("update guild: %w", err)
	}
	if affected == 0 {
		return nil, storage.ErrNotFound
	}
	return s.GetGuild(ctx, guild.ID)
}

// GetGuild returns one guild by id.
func (s *Store) GetGuild(ctx context.Context, guildID int64) (*storage.Guild, error) {
	if err := s.guard(ctx); err != nil {
		return nil, err
	}
	return s.getGuild(ctx, s.sqlDB, guildID)
}

func (s *Store) getGuild(ctx context.Context, q querier, guildID int64) (*storage.Guild, error) {
	row := q.QueryRowContext(ctx, "SELECT id, channel_id FROM guild WHERE id = ?", guildID)
	guild := &storage.Guild{}
	if err := row.Scan(&guild.ID, &guild.ChannelID); err != nil {
		if err == sql.ErrNoRows {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get guild: %w", err)
	}
	return guild.Bind(s), nil
}

// AddRole allows a role to run signup commands in the guild.
func (s *Store) AddRole(ctx context.Context, guild *storage.Guild, roleID int64) (*storage.Guild, error) {
	if err := s.guard(ctx); err != nil {
		return nil, err
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		"INSERT INTO guild_role (guild_id, role_id) VALUES (?, ?)",
		guild.ID,
		roleID,
	)
	if err != nil {
		return nil, fmt.Errorf("add role: %w", err)
	}
	return s.GetGuild(ctx, guild.ID)
}

// RemoveRole revokes a role; removing an absent role is a no-op.
func (s *Store) RemoveRole(ctx context.Context, guild *storage.Guild, roleID int64) (*storage.Guild, error) {
	if err := s.guard(ctx); err != nil {
		return nil, err
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		"DELETE FROM guild_role WHERE guild_id = ? AND role_id = ?",
		guild.ID,
		roleID,
	)
	if err != nil {
		return nil, fmt.Errorf("remove role: %w", err)
	}
	return s.GetGuild(ctx, guild.ID)
}

// RolesForGuild returns the guild's allowed role ids.
func (s *Store) RolesForGuild(ctx context.Context, guildID int64) ([]int64, error) {
	if err := s.guard(ctx); err != nil {
		return nil, err
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		"SELECT role_id FROM guild_role WHERE guild_id = ? ORDER BY role_id",
		guildID,
	)
	if err != nil {
		return nil, fmt.Errorf("roles for guild: %w", err)
	}
	defer rows.Close()

	var roles []int64
	for rows.Next() {
		var roleID int64
		if err := rows.Scan(&roleID); err != nil {
			return nil, fmt.Errorf("scan role: %w", err)
		}
		roles = append(roles, roleID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("roles for guild: %w", err)
	}
	return roles, nil
}
