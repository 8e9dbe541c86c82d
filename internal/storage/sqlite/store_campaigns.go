package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/ebonmoor/questhall/internal/storage"
)

// CreateCampaign inserts the campaign and its author membership in one
// transaction so no campaign exists without an author.
func (s *Store) CreateCampaign(ctx context.Context, campaign storage.Campaign, author storage.Membership) error {
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	campaign.ID = strings.TrimSpace(campaign.ID)
	if campaign.ID == "" {
		return fmt.Errorf("campaign id is required")
	}
	campaign.AdventureID = strings.TrimSpace(campaign.AdventureID)
	if campaign.AdventureID == "" {
		return fmt.Errorf("adventure id is required")
	}
	author.UserID = strings.TrimSpace(author.UserID)
	if author.UserID == "" {
		return fmt.Errorf("author user id is required")
	}

	return s.inTransaction(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(
			ctx,
			`INSERT INTO campaigns (id, adventure_id, created_at) VALUES (?, ?, ?)`,
			campaign.ID,
			campaign.AdventureID,
			timeToUnixMillis(campaign.CreatedAt),
		); err != nil {
			return fmt.Errorf("insert campaign: %w", err)
		}
		if _, err := tx.ExecContext(
			ctx,
			`INSERT INTO users_campaigns (user_id, campaign_id, is_author) VALUES (?, ?, ?)`,
			author.UserID,
			campaign.ID,
			boolToInt(true),
		); err != nil {
			return fmt.Errorf("insert author membership: %w", err)
		}
		return nil
	})
}

// GetCampaign loads a campaign record by id.
func (s *Store) GetCampaign(ctx context.Context, id string) (storage.Campaign, error) {
	if s == nil || s.sqlDB == nil {
		return storage.Campaign{}, fmt.Errorf("storage is not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return storage.Campaign{}, fmt.Errorf("campaign id is required")
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT id, adventure_id, created_at FROM campaigns WHERE id = ?`,
		id,
	)
	var campaign storage.Campaign
	var createdAt int64
	if err := row.Scan(&campaign.ID, &campaign.AdventureID, &createdAt); err != nil {
		if err == sql.ErrNoRows {
			return storage.Campaign{}, storage.ErrNotFound
		}
		return storage.Campaign{}, fmt.Errorf("scan campaign: %w", err)
	}
	campaign.CreatedAt = unixMillisToTime(createdAt)
	return campaign, nil
}

// ListCampaignsForUser returns summaries for every campaign the user belongs
// to, joined with the adventure name.
func (s *Store) ListCampaignsForUser(ctx context.Context, userID string) ([]storage.CampaignSummary, error) {
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("user id is required")
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT c.id, a.name
		 FROM campaigns c
		 JOIN adventures a ON a.id = c.adventure_id
		 JOIN users_campaigns uc ON uc.campaign_id = c.id
		 WHERE uc.user_id = ?
		 ORDER BY c.rowid`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list campaigns for user: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	summaries := make([]storage.CampaignSummary, 0)
	for rows.Next() {
		var summary storage.CampaignSummary
		if err := rows.Scan(&summary.CampaignID, &summary.AdventureName); err != nil {
			return nil, fmt.Errorf("scan campaign summary: %w", err)
		}
		summaries = append(summaries, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate campaigns: %w", err)
	}
	return summaries, nil
}

// ListCampaignsForAdventure returns ids of campaigns built on the adventure.
func (s *Store) ListCampaignsForAdventure(ctx context.Context, adventureID string) ([]string, error) {
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	adventureID = strings.TrimSpace(adventureID)
	if adventureID == "" {
		return nil, fmt.Errorf("adventure id is required")
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT id FROM campaigns WHERE adventure_id = ? ORDER BY rowid`,
		adventureID,
	)
	if err != nil {
		return nil, fmt.Errorf("list campaigns for adventure: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan campaign id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate campaign ids: %w", err)
	}
	return ids, nil
}

// GetMembership loads one user/campaign membership row.
func (s *Store) GetMembership(ctx context.Context, userID, campaignID string) (storage.Membership, error) {
	if s == nil || s.sqlDB == nil {
		return storage.Membership{}, fmt.Errorf("storage is not configured")
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return storage.Membership{}, fmt.Errorf("user id is required")
	}
	campaignID = strings.TrimSpace(campaignID)
	if campaignID == "" {
		return storage.Membership{}, fmt.Errorf("campaign id is required")
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT user_id, campaign_id, is_author
		 FROM users_campaigns
		 WHERE user_id = ? AND campaign_id = ?`,
		userID,
		campaignID,
	)
	var membership storage.Membership
	var isAuthor int64
	if err := row.Scan(&membership.UserID, &membership.CampaignID, &isAuthor); err != nil {
		if err == sql.ErrNoRows {
			return storage.Membership{}, storage.ErrNotFound
		}
		return storage.Membership{}, fmt.Errorf("scan membership: %w", err)
	}
	membership.IsAuthor = isAuthor != 0
	return membership, nil
}

// AddMembership inserts a membership row. The unique (user_id, campaign_id)
// constraint keeps duplicate joins out.
func (s *Store) AddMembership(ctx context.Context, membership storage.Membership) error {
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	membership.UserID = strings.TrimSpace(membership.UserID)
	if membership.UserID == "" {
		return fmt.Errorf("user id is required")
	}
	membership.CampaignID = strings.TrimSpace(membership.CampaignID)
	if membership.CampaignID == "" {
		return fmt.Errorf("campaign id is required")
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO users_campaigns (user_id, campaign_id, is_author) VALUES (?, ?, ?)`,
		membership.UserID,
		membership.CampaignID,
		boolToInt(membership.IsAuthor),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("add membership: %w", err)
	}
	return nil
}

// ListMembers returns the campaign's members joined with their logins.
func (s *Store) ListMembers(ctx context.Context, campaignID string) ([]storage.Member, error) {
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	campaignID = strings.TrimSpace(campaignID)
	if campaignID == "" {
		return nil, fmt.Errorf("campaign id is required")
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT u.login, uc.is_author
		 FROM users_campaigns uc
		 JOIN users u ON u.id = uc.user_id
		 WHERE uc.campaign_id = ?
		 ORDER BY uc.rowid`,
		campaignID,
	)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	members := make([]storage.Member, 0)
	for rows.Next() {
		var member storage.Member
		var isAuthor int64
		if err := rows.Scan(&member.Login, &isAuthor); err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		member.IsAuthor = isAuthor != 0
		members = append(members, member)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate members: %w", err)
	}
	return members, nil
}

// CreatePlayerCharacter inserts one character sheet row.
func (s *Store) CreatePlayerCharacter(ctx context.Context, character storage.PlayerCharacter) error {
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	character.CampaignID = strings.TrimSpace(character.CampaignID)
	if character.CampaignID == "" {
		return fmt.Errorf("campaign id is required")
	}

	if _, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO player_characters (campaign_id, name, description, level, class, skills, armor, hp)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		character.CampaignID,
		character.Name,
		character.Description,
		character.Level,
		character.Class,
		character.Skills,
		character.Armor,
		character.HP,
	); err != nil {
		return fmt.Errorf("create player character: %w", err)
	}
	return nil
}

// ListPlayerCharacters returns the campaign's characters in insertion order.
func (s *Store) ListPlayerCharacters(ctx context.Context, campaignID string) ([]storage.PlayerCharacter, error) {
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	campaignID = strings.TrimSpace(campaignID)
	if campaignID == "" {
		return nil, fmt.Errorf("campaign id is required")
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT campaign_id, name, description, level, class, skills, armor, hp
		 FROM player_characters
		 WHERE campaign_id = ?
		 ORDER BY rowid`,
		campaignID,
	)
	if err != nil {
		return nil, fmt.Errorf("list player characters: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	characters := make([]storage.PlayerCharacter, 0)
	for rows.Next() {
		var character storage.PlayerCharacter
		if err := rows.Scan(
			&character.CampaignID,
			&character.Name,
			&character.Description,
			&character.Level,
			&character.Class,
			&character.Skills,
			&character.Armor,
			&character.HP,
		); err != nil {
			return nil, fmt.Errorf("scan player character: %w", err)
		}
		characters = append(characters, character)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate player characters: %w", err)
	}
	return characters, nil
}

// DeleteCampaignTree removes memberships, characters, and the campaign row in
// one transaction.
func (s *Store) DeleteCampaignTree(ctx context.Context, campaignID string) error {
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	campaignID = strings.TrimSpace(campaignID)
	if campaignID == "" {
		return fmt.Errorf("campaign id is required")
	}

	return s.inTransaction(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM users_campaigns WHERE campaign_id = ?`, campaignID); err != nil {
			return fmt.Errorf("delete memberships: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM player_characters WHERE campaign_id = ?`, campaignID); err != nil {
			return fmt.Errorf("delete player characters: %w", err)
		}
		result, err := tx.ExecContext(ctx, `DELETE FROM campaigns WHERE id = ?`, campaignID)
		if err != nil {
			return fmt.Errorf("delete campaign: %w", err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("delete campaign rows affected: %w", err)
		}
		if affected == 0 {
			return storage.ErrNotFound
		}
		return nil
	})
}
