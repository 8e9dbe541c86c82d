// Package adventure implements authoring and lookup of adventures with their
// NPC and location records.
package adventure

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ebonmoor/questhall/internal/platform/id"
	"github.com/ebonmoor/questhall/internal/storage"
)

// ErrEmptyName indicates an adventure create or update without a name.
var ErrEmptyName = errors.New("adventure name is required")

// ErrEmptyStory indicates an adventure create or update without a story.
var ErrEmptyStory = errors.New("adventure story is required")

// ErrEmptyEntryName indicates an NPC or location mutation without a name.
var ErrEmptyEntryName = errors.New("entry name is required")

// ErrForbidden indicates the actor is not the adventure's author.
var ErrForbidden = errors.New("actor is not the adventure author")

// Entry is one NPC or location record as supplied by or returned to callers.
type Entry struct {
	Name        string
	Description string
}

// Detail aggregates an adventure with its author login, NPCs, and locations.
type Detail struct {
	ID          string
	Name        string
	Story       string
	AuthorLogin string
	NPCs        []Entry
	Locations   []Entry
}

// Service implements the adventure repository over injected stores.
type Service struct {
	adventures storage.AdventureStore
	users      storage.UserStore
	clock      func() time.Time
	newID      func() (string, error)
}

// NewService creates an adventure service backed by the given stores.
func NewService(adventures storage.AdventureStore, users storage.UserStore) *Service {
	return &Service{
		adventures: adventures,
		users:      users,
		clock:      time.Now,
		newID:      id.NewID,
	}
}

// List returns adventure summaries, optionally narrowed by case-sensitive
// substring filters on name and author login. Both filters AND together.
func (s *Service) List(ctx context.Context, filter storage.AdventureFilter) ([]storage.AdventureSummary, error) {
	if s == nil || s.adventures == nil {
		return nil, fmt.Errorf("adventure store is not configured")
	}
	summaries, err := s.adventures.ListAdventures(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list adventures: %w", err)
	}
	return summaries, nil
}

// Detail returns the adventure with its NPC and location lists.
//
// The three reads are independent queries, so each NPC and location appears
// exactly once regardless of how many of each exist.
func (s *Service) Detail(ctx context.Context, adventureID string) (Detail, error) {
	if s == nil || s.adventures == nil || s.users == nil {
		return Detail{}, fmt.Errorf("stores are not configured")
	}

	adventure, err := s.adventures.GetAdventure(ctx, adventureID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return Detail{}, storage.ErrNotFound
		}
		return Detail{}, fmt.Errorf("load adventure: %w", err)
	}
	author, err := s.users.GetUser(ctx, adventure.AuthorID)
	if err != nil {
		return Detail{}, fmt.Errorf("load author: %w", err)
	}
	npcs, err := s.adventures.ListNPCs(ctx, adventureID)
	if err != nil {
		return Detail{}, fmt.Errorf("list npcs: %w", err)
	}
	locations, err := s.adventures.ListLocations(ctx, adventureID)
	if err != nil {
		return Detail{}, fmt.Errorf("list locations: %w", err)
	}

	detail := Detail{
		ID:          adventure.ID,
		Name:        adventure.Name,
		Story:       adventure.Story,
		AuthorLogin: author.Login,
		NPCs:        make([]Entry, 0, len(npcs)),
		Locations:   make([]Entry, 0, len(locations)),
	}
	for _, npc := range npcs {
		detail.NPCs = append(detail.NPCs, Entry{Name: npc.Name, Description: npc.Description})
	}
	for _, location := range locations {
		detail.Locations = append(detail.Locations, Entry{Name: location.Name, Description: location.Description})
	}
	return detail, nil
}

// Create inserts an adventure authored by actorID and returns its id.
//
// Child entries with blank names are skipped: registration forms carry
// optional extra rows and an unnamed row means "not filled in".
func (s *Service) Create(ctx context.Context, actorID, name, story string, npcs, locations []Entry) (string, error) {
	if s == nil || s.adventures == nil {
		return "", fmt.Errorf("adventure store is not configured")
	}
	actorID = strings.TrimSpace(actorID)
	if actorID == "" {
		return "", fmt.Errorf("actor id is required")
	}
	if strings.TrimSpace(name) == "" {
		return "", ErrEmptyName
	}
	if strings.TrimSpace(story) == "" {
		return "", ErrEmptyStory
	}

	adventureID, err := s.newID()
	if err != nil {
		return "", fmt.Errorf("generate adventure id: %w", err)
	}

	var npcRows []storage.NPC
	for _, entry := range npcs {
		if strings.TrimSpace(entry.Name) == "" {
			continue
		}
		npcRows = append(npcRows, storage.NPC{
			AdventureID: adventureID,
			Name:        entry.Name,
			Description: entry.Description,
		})
	}
	var locationRows []storage.Location
	for _, entry := range locations {
		if strings.TrimSpace(entry.Name) == "" {
			continue
		}
		locationRows = append(locationRows, storage.Location{
			AdventureID: adventureID,
			Name:        entry.Name,
			Description: entry.Description,
		})
	}

	err = s.adventures.CreateAdventure(ctx, storage.Adventure{
		ID:        adventureID,
		AuthorID:  actorID,
		Name:      name,
		Story:     story,
		CreatedAt: s.clock().UTC(),
	}, npcRows, locationRows)
	if err != nil {
		return "", fmt.Errorf("create adventure: %w", err)
	}
	return adventureID, nil
}

// Update replaces the adventure's name and story when both are supplied.
//
// Partial updates are not supported: a blank name or story makes the call a
// no-op, reported as (false, nil) so callers treat it as "nothing changed".
func (s *Service) Update(ctx context.Context, actorID, adventureID, name, story string) (bool, error) {
	if s == nil || s.adventures == nil {
		return false, fmt.Errorf("adventure store is not configured")
	}
	if strings.TrimSpace(name) == "" || strings.TrimSpace(story) == "" {
		return false, nil
	}
	if err := s.requireAuthor(ctx, adventureID, actorID); err != nil {
		return false, err
	}
	if err := s.adventures.UpdateAdventure(ctx, adventureID, name, story); err != nil {
		return false, fmt.Errorf("update adventure: %w", err)
	}
	return true, nil
}

// Delete removes the adventure and everything built on it.
//
// Only the author may delete; the cascade (memberships and characters, then
// campaigns, then NPCs and locations, then the adventure) is one transaction.
func (s *Service) Delete(ctx context.Context, actorID, adventureID string) error {
	if s == nil || s.adventures == nil {
		return fmt.Errorf("adventure store is not configured")
	}
	if err := s.requireAuthor(ctx, adventureID, actorID); err != nil {
		return err
	}
	if err := s.adventures.DeleteAdventureTree(ctx, adventureID); err != nil {
		return fmt.Errorf("delete adventure tree: %w", err)
	}
	return nil
}

// AddNPC inserts one NPC row for the actor's adventure.
func (s *Service) AddNPC(ctx context.Context, actorID, adventureID string, entry Entry) error {
	if s == nil || s.adventures == nil {
		return fmt.Errorf("adventure store is not configured")
	}
	if strings.TrimSpace(entry.Name) == "" {
		return ErrEmptyEntryName
	}
	if err := s.requireAuthor(ctx, adventureID, actorID); err != nil {
		return err
	}
	err := s.adventures.CreateNPC(ctx, storage.NPC{
		AdventureID: adventureID,
		Name:        entry.Name,
		Description: entry.Description,
	})
	if err != nil {
		return fmt.Errorf("create npc: %w", err)
	}
	return nil
}

// RemoveNPCs deletes every NPC of the actor's adventure with the given name
// and reports how many rows were removed. NPC names are not unique, so a
// shared name removes all of its records.
func (s *Service) RemoveNPCs(ctx context.Context, actorID, adventureID, name string) (int64, error) {
	if s == nil || s.adventures == nil {
		return 0, fmt.Errorf("adventure store is not configured")
	}
	if strings.TrimSpace(name) == "" {
		return 0, ErrEmptyEntryName
	}
	if err := s.requireAuthor(ctx, adventureID, actorID); err != nil {
		return 0, err
	}
	removed, err := s.adventures.DeleteNPCsByName(ctx, adventureID, name)
	if err != nil {
		return 0, fmt.Errorf("delete npcs: %w", err)
	}
	return removed, nil
}

// AddLocation inserts one location row for the actor's adventure.
func (s *Service) AddLocation(ctx context.Context, actorID, adventureID string, entry Entry) error {
	if s == nil || s.adventures == nil {
		return fmt.Errorf("adventure store is not configured")
	}
	if strings.TrimSpace(entry.Name) == "" {
		return ErrEmptyEntryName
	}
	if err := s.requireAuthor(ctx, adventureID, actorID); err != nil {
		return err
	}
	err := s.adventures.CreateLocation(ctx, storage.Location{
		AdventureID: adventureID,
		Name:        entry.Name,
		Description: entry.Description,
	})
	if err != nil {
		return fmt.Errorf("create location: %w", err)
	}
	return nil
}

// RemoveLocations deletes every location of the actor's adventure matching
// name and description and reports how many rows were removed.
func (s *Service) RemoveLocations(ctx context.Context, actorID, adventureID, name, description string) (int64, error) {
	if s == nil || s.adventures == nil {
		return 0, fmt.Errorf("adventure store is not configured")
	}
	if strings.TrimSpace(name) == "" {
		return 0, ErrEmptyEntryName
	}
	if err := s.requireAuthor(ctx, adventureID, actorID); err != nil {
		return 0, err
	}
	removed, err := s.adventures.DeleteLocations(ctx, adventureID, name, description)
	if err != nil {
		return 0, fmt.Errorf("delete locations: %w", err)
	}
	return removed, nil
}

// requireAuthor resolves the adventure and checks field-level authorship.
func (s *Service) requireAuthor(ctx context.Context, adventureID, actorID string) error {
	adventure, err := s.adventures.GetAdventure(ctx, adventureID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return storage.ErrNotFound
		}
		return fmt.Errorf("load adventure: %w", err)
	}
	if adventure.AuthorID != strings.TrimSpace(actorID) {
		return ErrForbidden
	}
	return nil
}
