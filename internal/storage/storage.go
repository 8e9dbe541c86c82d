// Package storage defines persistence contracts for questhall state.
//
// Services depend on these interfaces rather than a concrete database so
// tests can substitute stores and the SQLite implementation stays swappable.
package storage

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound indicates a requested record is missing.
	ErrNotFound = errors.New("record not found")
	// ErrAlreadyExists indicates a uniqueness-constrained record already exists.
	ErrAlreadyExists = errors.New("record already exists")
)

// User stores one registered account.
type User struct {
	ID           string
	Login        string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
}

// Adventure stores one authored game scenario.
type Adventure struct {
	ID        string
	AuthorID  string
	Name      string
	Story     string
	CreatedAt time.Time
}

// AdventureSummary is one row of the adventure listing, joined with its author.
type AdventureSummary struct {
	ID          string
	Name        string
	AuthorLogin string
}

// AdventureFilter narrows the adventure listing. Empty fields match everything;
// both fields set means both must match.
type AdventureFilter struct {
	Name        string
	AuthorLogin string
}

// NPC stores one cast member of an adventure.
type NPC struct {
	AdventureID string
	Name        string
	Description string
}

// Location stores one setting of an adventure.
type Location struct {
	AdventureID string
	Name        string
	Description string
}

// Campaign stores one playthrough of an adventure.
type Campaign struct {
	ID          string
	AdventureID string
	CreatedAt   time.Time
}

// CampaignSummary is one row of a user's campaign listing.
type CampaignSummary struct {
	CampaignID    string
	AdventureName string
}

// Membership links a user to a campaign.
type Membership struct {
	UserID     string
	CampaignID string
	IsAuthor   bool
}

// Member is one campaign participant joined with their login.
type Member struct {
	Login    string
	IsAuthor bool
}

// PlayerCharacter stores one character sheet belonging to a campaign.
type PlayerCharacter struct {
	CampaignID  string
	Name        string
	Description string
	Level       int
	Class       string
	Skills      string
	Armor       int
	HP          int
}

// UserStore persists registered accounts.
type UserStore interface {
	// CreateUser inserts a user. Returns ErrAlreadyExists on a login collision.
	CreateUser(ctx context.Context, user User) error
	// GetUser loads a user by id. Returns ErrNotFound when absent.
	GetUser(ctx context.Context, id string) (User, error)
	// GetUserByLogin loads a user by login. Returns ErrNotFound when absent.
	GetUserByLogin(ctx context.Context, login string) (User, error)
}

// AdventureStore persists adventures and their owned NPC and location records.
type AdventureStore interface {
	// CreateAdventure inserts an adventure and its child rows in one transaction.
	CreateAdventure(ctx context.Context, adventure Adventure, npcs []NPC, locations []Location) error
	// GetAdventure loads an adventure by id. Returns ErrNotFound when absent.
	GetAdventure(ctx context.Context, id string) (Adventure, error)
	// ListAdventures returns summaries joined with author logins, ordered by
	// insertion, optionally narrowed by filter.
	ListAdventures(ctx context.Context, filter AdventureFilter) ([]AdventureSummary, error)
	// UpdateAdventure replaces name and story. Returns ErrNotFound when absent.
	UpdateAdventure(ctx context.Context, id, name, story string) error
	// DeleteAdventureTree removes the adventure, its NPCs and locations, and
	// every dependent campaign with its memberships and characters, in one
	// transaction ordered to respect referential constraints.
	DeleteAdventureTree(ctx context.Context, id string) error

	// CreateNPC inserts one NPC row.
	CreateNPC(ctx context.Context, npc NPC) error
	// ListNPCs returns the adventure's NPCs in insertion order.
	ListNPCs(ctx context.Context, adventureID string) ([]NPC, error)
	// DeleteNPCsByName removes every NPC of the adventure with the given name
	// and reports how many rows were removed. Names are not unique.
	DeleteNPCsByName(ctx context.Context, adventureID, name string) (int64, error)
	// CreateLocation inserts one location row.
	CreateLocation(ctx context.Context, location Location) error
	// ListLocations returns the adventure's locations in insertion order.
	ListLocations(ctx context.Context, adventureID string) ([]Location, error)
	// DeleteLocations removes every location of the adventure matching name and
	// description and reports how many rows were removed.
	DeleteLocations(ctx context.Context, adventureID, name, description string) (int64, error)
}

// CampaignStore persists campaigns, memberships, and player characters.
type CampaignStore interface {
	// CreateCampaign inserts the campaign and its author membership atomically.
	CreateCampaign(ctx context.Context, campaign Campaign, author Membership) error
	// GetCampaign loads a campaign by id. Returns ErrNotFound when absent.
	GetCampaign(ctx context.Context, id string) (Campaign, error)
	// ListCampaignsForUser returns summaries for every campaign the user is a
	// member of, author or not.
	ListCampaignsForUser(ctx context.Context, userID string) ([]CampaignSummary, error)
	// ListCampaignsForAdventure returns ids of campaigns built on the adventure.
	ListCampaignsForAdventure(ctx context.Context, adventureID string) ([]string, error)
	// GetMembership loads one membership row. Returns ErrNotFound when absent.
	GetMembership(ctx context.Context, userID, campaignID string) (Membership, error)
	// AddMembership inserts a membership. Returns ErrAlreadyExists when the
	// user already belongs to the campaign.
	AddMembership(ctx context.Context, membership Membership) error
	// ListMembers returns the campaign's members joined with their logins.
	ListMembers(ctx context.Context, campaignID string) ([]Member, error)
	// CreatePlayerCharacter inserts one character sheet.
	CreatePlayerCharacter(ctx context.Context, character PlayerCharacter) error
	// ListPlayerCharacters returns the campaign's characters in insertion order.
	ListPlayerCharacters(ctx context.Context, campaignID string) ([]PlayerCharacter, error)
	// DeleteCampaignTree removes memberships, characters, and the campaign row
	// in one transaction.
	DeleteCampaignTree(ctx context.Context, campaignID string) error
}
