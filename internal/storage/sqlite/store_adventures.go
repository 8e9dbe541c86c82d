package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/ebonmoor/questhall/internal/storage"
)

// CreateAdventure inserts an adventure and its NPC and location rows in one
// transaction so a failed child insert leaves no orphaned adventure behind.
func (s *Store) CreateAdventure(ctx context.Context, adventure storage.Adventure, npcs []storage.NPC, locations []storage.Location) error {
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	adventure.ID = strings.TrimSpace(adventure.ID)
	if adventure.ID == "" {
		return fmt.Errorf("adventure id is required")
	}
	adventure.AuthorID = strings.TrimSpace(adventure.AuthorID)
	if adventure.AuthorID == "" {
		return fmt.Errorf("adventure author id is required")
	}

	return s.inTransaction(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(
			ctx,
			`INSERT INTO adventures (id, author_id, name, story, created_at)
			 VALUES (?, ?, ?, ?, ?)`,
			adventure.ID,
			adventure.AuthorID,
			adventure.Name,
			adventure.Story,
			timeToUnixMillis(adventure.CreatedAt),
		)
		if err != nil {
			return fmt.Errorf("insert adventure: %w", err)
		}

		for _, npc := range npcs {
			if _, err := tx.ExecContext(
				ctx,
				`INSERT INTO npcs (adventure_id, name, description) VALUES (?, ?, ?)`,
				adventure.ID,
				npc.Name,
				npc.Description,
			); err != nil {
				return fmt.Errorf("insert npc: %w", err)
			}
		}

		for _, location := range locations {
			if _, err := tx.ExecContext(
				ctx,
				`INSERT INTO locations (adventure_id, name, description) VALUES (?, ?, ?)`,
				adventure.ID,
				location.Name,
				location.Description,
			); err != nil {
				return fmt.Errorf("insert location: %w", err)
			}
		}
		return nil
	})
}

// GetAdventure loads an adventure record by id.
func (s *Store) GetAdventure(ctx context.Context, id string) (storage.Adventure, error) {
	if s == nil || s.sqlDB == nil {
		return storage.Adventure{}, fmt.Errorf("storage is not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return storage.Adventure{}, fmt.Errorf("adventure id is required")
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT id, author_id, name, story, created_at FROM adventures WHERE id = ?`,
		id,
	)
	var adventure storage.Adventure
	var createdAt int64
	if err := row.Scan(&adventure.ID, &adventure.AuthorID, &adventure.Name, &adventure.Story, &createdAt); err != nil {
		if err == sql.ErrNoRows {
			return storage.Adventure{}, storage.ErrNotFound
		}
		return storage.Adventure{}, fmt.Errorf("scan adventure: %w", err)
	}
	adventure.CreatedAt = unixMillisToTime(createdAt)
	return adventure, nil
}

// ListAdventures returns adventure summaries joined with author logins.
// Name and author filters are case-sensitive substring matches, AND-composed.
func (s *Store) ListAdventures(ctx context.Context, filter storage.AdventureFilter) ([]storage.AdventureSummary, error) {
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	query := `SELECT a.id, a.name, u.login
	 FROM adventures a
	 JOIN users u ON u.id = a.author_id`
	var clauses []string
	var args []any
	if name := strings.TrimSpace(filter.Name); name != "" {
		clauses = append(clauses, "a.name LIKE '%' || ? || '%'")
		args = append(args, name)
	}
	if author := strings.TrimSpace(filter.AuthorLogin); author != "" {
		clauses = append(clauses, "u.login LIKE '%' || ? || '%'")
		args = append(args, author)
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY a.rowid"

	rows, err := s.sqlDB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list adventures: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	summaries := make([]storage.AdventureSummary, 0)
	for rows.Next() {
		var summary storage.AdventureSummary
		if err := rows.Scan(&summary.ID, &summary.Name, &summary.AuthorLogin); err != nil {
			return nil, fmt.Errorf("scan adventure summary: %w", err)
		}
		summaries = append(summaries, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate adventures: %w", err)
	}
	return summaries, nil
}

// UpdateAdventure replaces the adventure's name and story.
func (s *Store) UpdateAdventure(ctx context.Context, id, name, story string) error {
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("adventure id is required")
	}

	result, err := s.sqlDB.ExecContext(
		ctx,
		`UPDATE adventures SET name = ?, story = ? WHERE id = ?`,
		name,
		story,
		id,
	)
	if err != nil {
		return fmt.Errorf("update adventure: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update adventure rows affected: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// DeleteAdventureTree removes the adventure and everything built on it in one
// transaction: memberships and characters first, then campaigns, then the
// adventure's NPCs and locations, then the adventure itself.
func (s *Store) DeleteAdventureTree(ctx context.Context, id string) error {
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("adventure id is required")
	}

	return s.inTransaction(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(
			ctx,
			`DELETE FROM users_campaigns
			 WHERE campaign_id IN (SELECT id FROM campaigns WHERE adventure_id = ?)`,
			id,
		); err != nil {
			return fmt.Errorf("delete campaign memberships: %w", err)
		}
		if _, err := tx.ExecContext(
			ctx,
			`DELETE FROM player_characters
			 WHERE campaign_id IN (SELECT id FROM campaigns WHERE adventure_id = ?)`,
			id,
		); err != nil {
			return fmt.Errorf("delete campaign characters: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM campaigns WHERE adventure_id = ?`, id); err != nil {
			return fmt.Errorf("delete campaigns: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM npcs WHERE adventure_id = ?`, id); err != nil {
			return fmt.Errorf("delete npcs: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM locations WHERE adventure_id = ?`, id); err != nil {
			return fmt.Errorf("delete locations: %w", err)
		}
		result, err := tx.ExecContext(ctx, `DELETE FROM adventures WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("delete adventure: %w", err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("delete adventure rows affected: %w", err)
		}
		if affected == 0 {
			return storage.ErrNotFound
		}
		return nil
	})
}

// CreateNPC inserts one NPC row for an adventure.
func (s *Store) CreateNPC(ctx context.Context, npc storage.NPC) error {
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	npc.AdventureID = strings.TrimSpace(npc.AdventureID)
	if npc.AdventureID == "" {
		return fmt.Errorf("adventure id is required")
	}
	if _, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO npcs (adventure_id, name, description) VALUES (?, ?, ?)`,
		npc.AdventureID,
		npc.Name,
		npc.Description,
	); err != nil {
		return fmt.Errorf("create npc: %w", err)
	}
	return nil
}

// ListNPCs returns the adventure's NPCs in insertion order.
func (s *Store) ListNPCs(ctx context.Context, adventureID string) ([]storage.NPC, error) {
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	adventureID = strings.TrimSpace(adventureID)
	if adventureID == "" {
		return nil, fmt.Errorf("adventure id is required")
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT adventure_id, name, description FROM npcs WHERE adventure_id = ? ORDER BY rowid`,
		adventureID,
	)
	if err != nil {
		return nil, fmt.Errorf("list npcs: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	npcs := make([]storage.NPC, 0)
	for rows.Next() {
		var npc storage.NPC
		if err := rows.Scan(&npc.AdventureID, &npc.Name, &npc.Description); err != nil {
			return nil, fmt.Errorf("scan npc: %w", err)
		}
		npcs = append(npcs, npc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate npcs: %w", err)
	}
	return npcs, nil
}

// DeleteNPCsByName removes every NPC of the adventure with the given name.
// NPC names are not unique, so more than one row may match.
func (s *Store) DeleteNPCsByName(ctx context.Context, adventureID, name string) (int64, error) {
	if s == nil || s.sqlDB == nil {
		return 0, fmt.Errorf("storage is not configured")
	}
	adventureID = strings.TrimSpace(adventureID)
	if adventureID == "" {
		return 0, fmt.Errorf("adventure id is required")
	}

	result, err := s.sqlDB.ExecContext(
		ctx,
		`DELETE FROM npcs WHERE adventure_id = ? AND name = ?`,
		adventureID,
		name,
	)
	if err != nil {
		return 0, fmt.Errorf("delete npcs: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete npcs rows affected: %w", err)
	}
	return affected, nil
}

// CreateLocation inserts one location row for an adventure.
func (s *Store) CreateLocation(ctx context.Context, location storage.Location) error {
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	location.AdventureID = strings.TrimSpace(location.AdventureID)
	if location.AdventureID == "" {
		return fmt.Errorf("adventure id is required")
	}
	if _, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO locations (adventure_id, name, description) VALUES (?, ?, ?)`,
		location.AdventureID,
		location.Name,
		location.Description,
	); err != nil {
		return fmt.Errorf("create location: %w", err)
	}
	return nil
}

// ListLocations returns the adventure's locations in insertion order.
func (s *Store) ListLocations(ctx context.Context, adventureID string) ([]storage.Location, error) {
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	adventureID = strings.TrimSpace(adventureID)
	if adventureID == "" {
		return nil, fmt.Errorf("adventure id is required")
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT adventure_id, name, description FROM locations WHERE adventure_id = ? ORDER BY rowid`,
		adventureID,
	)
	if err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	locations := make([]storage.Location, 0)
	for rows.Next() {
		var location storage.Location
		if err := rows.Scan(&location.AdventureID, &location.Name, &location.Description); err != nil {
			return nil, fmt.Errorf("scan location: %w", err)
		}
		locations = append(locations, location)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate locations: %w", err)
	}
	return locations, nil
}

// DeleteLocations removes every location of the adventure matching both name
// and description.
func (s *Store) DeleteLocations(ctx context.Context, adventureID, name, description string) (int64, error) {
	if s == nil || s.sqlDB == nil {
		return 0, fmt.Errorf("storage is not configured")
	}
	adventureID = strings.TrimSpace(adventureID)
	if adventureID == "" {
		return 0, fmt.Errorf("adventure id is required")
	}

	result, err := s.sqlDB.ExecContext(
		ctx,
		`DELETE FROM locations WHERE adventure_id = ? AND name = ? AND description = ?`,
		adventureID,
		name,
		description,
	)
	if err != nil {
		return 0, fmt.Errorf("delete locations: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete locations rows affected: %w", err)
	}
	return affected, nil
}
