// Package campaign implements campaign runs of adventures: creation,
// membership, character sheets, and the aggregated campaign view.
package campaign

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ebonmoor/questhall/internal/platform/id"
	"github.com/ebonmoor/questhall/internal/storage"
)

// ErrForbidden indicates the actor lacks the membership the operation needs.
var ErrForbidden = errors.New("actor is not allowed on this campaign")

// ErrAlreadyMember indicates the user already belongs to the campaign.
var ErrAlreadyMember = errors.New("user is already a campaign member")

// ErrEmptyCharacterName indicates a character sheet without a name.
var ErrEmptyCharacterName = errors.New("character name is required")

// ErrInvalidCharacterStat indicates a negative level, armor, or hp value.
var ErrInvalidCharacterStat = errors.New("character stats must be non-negative")

// Entry is one NPC or location of the campaign's adventure.
type Entry struct {
	Name        string
	Description string
}

// CharacterInput carries a new player character sheet. Integer fields are
// already typed; the transport layer converts and rejects raw form input.
type CharacterInput struct {
	Name        string
	Description string
	Level       int
	Class       string
	Skills      string
	Armor       int
	HP          int
}

// Detail is the aggregated campaign view for one member.
type Detail struct {
	CampaignID    string
	AdventureName string
	Story         string
	AuthorLogin   string
	NPCs          []Entry
	Locations     []Entry
	Members       []storage.Member
	Characters    []storage.PlayerCharacter
	IsAuthor      bool
}

// Service implements the campaign repository over injected stores.
type Service struct {
	campaigns  storage.CampaignStore
	adventures storage.AdventureStore
	users      storage.UserStore
	clock      func() time.Time
	newID      func() (string, error)
}

// NewService creates a campaign service backed by the given stores.
func NewService(campaigns storage.CampaignStore, adventures storage.AdventureStore, users storage.UserStore) *Service {
	return &Service{
		campaigns:  campaigns,
		adventures: adventures,
		users:      users,
		clock:      time.Now,
		newID:      id.NewID,
	}
}

// Create starts a campaign on an existing adventure and enrolls the actor as
// its author. The campaign row and membership row are written atomically.
func (s *Service) Create(ctx context.Context, actorID, adventureID string) (string, error) {
	if s == nil || s.campaigns == nil || s.adventures == nil {
		return "", fmt.Errorf("stores are not configured")
	}
	actorID = strings.TrimSpace(actorID)
	if actorID == "" {
		return "", fmt.Errorf("actor id is required")
	}

	if _, err := s.adventures.GetAdventure(ctx, adventureID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return "", storage.ErrNotFound
		}
		return "", fmt.Errorf("load adventure: %w", err)
	}

	campaignID, err := s.newID()
	if err != nil {
		return "", fmt.Errorf("generate campaign id: %w", err)
	}
	err = s.campaigns.CreateCampaign(ctx, storage.Campaign{
		ID:          campaignID,
		AdventureID: adventureID,
		CreatedAt:   s.clock().UTC(),
	}, storage.Membership{
		UserID:     actorID,
		CampaignID: campaignID,
		IsAuthor:   true,
	})
	if err != nil {
		return "", fmt.Errorf("create campaign: %w", err)
	}
	return campaignID, nil
}

// ListForUser returns (campaign id, adventure name) pairs for every campaign
// the user is a member of, author or not.
func (s *Service) ListForUser(ctx context.Context, userID string) ([]storage.CampaignSummary, error) {
	if s == nil || s.campaigns == nil {
		return nil, fmt.Errorf("campaign store is not configured")
	}
	summaries, err := s.campaigns.ListCampaignsForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list campaigns: %w", err)
	}
	return summaries, nil
}

// Detail assembles the full campaign view for a member.
//
// Membership is checked first; the remaining five reads (campaign, adventure,
// author, NPCs, locations, members, characters) have no cross-dependency once
// the adventure id is known.
func (s *Service) Detail(ctx context.Context, actorID, campaignID string) (Detail, error) {
	if s == nil || s.campaigns == nil || s.adventures == nil || s.users == nil {
		return Detail{}, fmt.Errorf("stores are not configured")
	}

	membership, err := s.campaigns.GetMembership(ctx, actorID, campaignID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return Detail{}, ErrForbidden
		}
		return Detail{}, fmt.Errorf("load membership: %w", err)
	}

	campaign, err := s.campaigns.GetCampaign(ctx, campaignID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return Detail{}, storage.ErrNotFound
		}
		return Detail{}, fmt.Errorf("load campaign: %w", err)
	}
	adventure, err := s.adventures.GetAdventure(ctx, campaign.AdventureID)
	if err != nil {
		return Detail{}, fmt.Errorf("load adventure: %w", err)
	}
	author, err := s.users.GetUser(ctx, adventure.AuthorID)
	if err != nil {
		return Detail{}, fmt.Errorf("load adventure author: %w", err)
	}
	npcs, err := s.adventures.ListNPCs(ctx, campaign.AdventureID)
	if err != nil {
		return Detail{}, fmt.Errorf("list npcs: %w", err)
	}
	locations, err := s.adventures.ListLocations(ctx, campaign.AdventureID)
	if err != nil {
		return Detail{}, fmt.Errorf("list locations: %w", err)
	}
	members, err := s.campaigns.ListMembers(ctx, campaignID)
	if err != nil {
		return Detail{}, fmt.Errorf("list members: %w", err)
	}
	characters, err := s.campaigns.ListPlayerCharacters(ctx, campaignID)
	if err != nil {
		return Detail{}, fmt.Errorf("list characters: %w", err)
	}

	detail := Detail{
		CampaignID:    campaign.ID,
		AdventureName: adventure.Name,
		Story:         adventure.Story,
		AuthorLogin:   author.Login,
		NPCs:          make([]Entry, 0, len(npcs)),
		Locations:     make([]Entry, 0, len(locations)),
		Members:       members,
		Characters:    characters,
		IsAuthor:      membership.IsAuthor,
	}
	for _, npc := range npcs {
		detail.NPCs = append(detail.NPCs, Entry{Name: npc.Name, Description: npc.Description})
	}
	for _, location := range locations {
		detail.Locations = append(detail.Locations, Entry{Name: location.Name, Description: location.Description})
	}
	return detail, nil
}

// AddMember enrolls the user with the given login as a plain participant.
// Only the campaign author may enroll members.
func (s *Service) AddMember(ctx context.Context, actorID, campaignID, login string) error {
	if s == nil || s.campaigns == nil || s.users == nil {
		return fmt.Errorf("stores are not configured")
	}

	if err := s.requireAuthorMembership(ctx, actorID, campaignID); err != nil {
		return err
	}

	user, err := s.users.GetUserByLogin(ctx, strings.TrimSpace(login))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return storage.ErrNotFound
		}
		return fmt.Errorf("load user: %w", err)
	}

	err = s.campaigns.AddMembership(ctx, storage.Membership{
		UserID:     user.ID,
		CampaignID: campaignID,
		IsAuthor:   false,
	})
	if err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return ErrAlreadyMember
		}
		return fmt.Errorf("add membership: %w", err)
	}
	return nil
}

// AddCharacter records a player character sheet for a campaign member.
func (s *Service) AddCharacter(ctx context.Context, actorID, campaignID string, input CharacterInput) error {
	if s == nil || s.campaigns == nil {
		return fmt.Errorf("campaign store is not configured")
	}

	if _, err := s.campaigns.GetMembership(ctx, actorID, campaignID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrForbidden
		}
		return fmt.Errorf("load membership: %w", err)
	}

	if strings.TrimSpace(input.Name) == "" {
		return ErrEmptyCharacterName
	}
	if input.Level < 0 || input.Armor < 0 || input.HP < 0 {
		return ErrInvalidCharacterStat
	}

	err := s.campaigns.CreatePlayerCharacter(ctx, storage.PlayerCharacter{
		CampaignID:  campaignID,
		Name:        input.Name,
		Description: input.Description,
		Level:       input.Level,
		Class:       input.Class,
		Skills:      input.Skills,
		Armor:       input.Armor,
		HP:          input.HP,
	})
	if err != nil {
		return fmt.Errorf("create player character: %w", err)
	}
	return nil
}

// Delete tears down a campaign: memberships, characters, then the campaign
// row, in one transaction. Only the campaign author may delete.
func (s *Service) Delete(ctx context.Context, actorID, campaignID string) error {
	if s == nil || s.campaigns == nil {
		return fmt.Errorf("campaign store is not configured")
	}
	if err := s.requireAuthorMembership(ctx, actorID, campaignID); err != nil {
		return err
	}
	if err := s.campaigns.DeleteCampaignTree(ctx, campaignID); err != nil {
		return fmt.Errorf("delete campaign tree: %w", err)
	}
	return nil
}

// requireAuthorMembership checks that the actor holds an author membership.
func (s *Service) requireAuthorMembership(ctx context.Context, actorID, campaignID string) error {
	membership, err := s.campaigns.GetMembership(ctx, actorID, campaignID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrForbidden
		}
		return fmt.Errorf("load membership: %w", err)
	}
	if !membership.IsAuthor {
		return ErrForbidden
	}
	return nil
}
