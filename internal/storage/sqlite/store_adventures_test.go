package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ebonmoor/questhall/internal/storage"
)

func TestCreateAdventureWithChildren(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()

	author := seedUser(t, store, "user-alice", "alice")
	adv := storage.Adventure{
		ID:        "adv-crypt",
		AuthorID:  author.ID,
		Name:      "Crypt of Ash",
		Story:     "A buried shrine stirs.",
		CreatedAt: time.Date(2026, time.March, 2, 10, 0, 0, 0, time.UTC),
	}
	npcs := []storage.NPC{
		{AdventureID: adv.ID, Name: "Skeleton", Description: "rattles"},
		{AdventureID: adv.ID, Name: "Warden", Description: "watches"},
	}
	locations := []storage.Location{
		{AdventureID: adv.ID, Name: "Vault", Description: "sealed"},
	}
	if err := store.CreateAdventure(ctx, adv, npcs, locations); err != nil {
		t.Fatalf("create adventure: %v", err)
	}

	got, err := store.GetAdventure(ctx, adv.ID)
	if err != nil {
		t.Fatalf("get adventure: %v", err)
	}
	if got != adv {
		t.Fatalf("got adventure %+v, want %+v", got, adv)
	}

	gotNPCs, err := store.ListNPCs(ctx, adv.ID)
	if err != nil {
		t.Fatalf("list npcs: %v", err)
	}
	if len(gotNPCs) != 2 || gotNPCs[0].Name != "Skeleton" || gotNPCs[1].Name != "Warden" {
		t.Fatalf("unexpected npcs: %+v", gotNPCs)
	}

	gotLocations, err := store.ListLocations(ctx, adv.ID)
	if err != nil {
		t.Fatalf("list locations: %v", err)
	}
	if len(gotLocations) != 1 || gotLocations[0].Name != "Vault" {
		t.Fatalf("unexpected locations: %+v", gotLocations)
	}
}

func TestListAdventuresFilters(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()

	alice := seedUser(t, store, "user-alice", "alice")
	bob := seedUser(t, store, "user-bob", "bob")
	seedAdventure(t, store, "adv-1", alice.ID, "Crypt of Ash")
	seedAdventure(t, store, "adv-2", alice.ID, "Sunken Keep")
	seedAdventure(t, store, "adv-3", bob.ID, "Crypt of Salt")

	all, err := store.ListAdventures(ctx, storage.AdventureFilter{})
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("got %d adventures, want 3", len(all))
	}
	if all[0].ID != "adv-1" || all[2].ID != "adv-3" {
		t.Fatalf("unexpected ordering: %+v", all)
	}
	if all[0].AuthorLogin != "alice" {
		t.Fatalf("got author %q, want alice", all[0].AuthorLogin)
	}

	byName, err := store.ListAdventures(ctx, storage.AdventureFilter{Name: "Crypt"})
	if err != nil {
		t.Fatalf("list by name: %v", err)
	}
	if len(byName) != 2 {
		t.Fatalf("got %d crypt adventures, want 2", len(byName))
	}

	both, err := store.ListAdventures(ctx, storage.AdventureFilter{Name: "Crypt", AuthorLogin: "bob"})
	if err != nil {
		t.Fatalf("list by name and author: %v", err)
	}
	if len(both) != 1 || both[0].ID != "adv-3" {
		t.Fatalf("unexpected filtered result: %+v", both)
	}

	none, err := store.ListAdventures(ctx, storage.AdventureFilter{Name: "crypt"})
	if err != nil {
		t.Fatalf("list case-sensitive: %v", err)
	}
	if len(none) != 0 {
		t.Fatalf("lowercase filter matched %d adventures, want 0", len(none))
	}
}

func TestUpdateAdventure(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()

	author := seedUser(t, store, "user-alice", "alice")
	adv := seedAdventure(t, store, "adv-1", author.ID, "Crypt of Ash")

	if err := store.UpdateAdventure(ctx, adv.ID, "Crypt of Embers", "A rekindled shrine."); err != nil {
		t.Fatalf("update adventure: %v", err)
	}
	got, err := store.GetAdventure(ctx, adv.ID)
	if err != nil {
		t.Fatalf("get adventure: %v", err)
	}
	if got.Name != "Crypt of Embers" || got.Story != "A rekindled shrine." {
		t.Fatalf("unexpected adventure after update: %+v", got)
	}

	if err := store.UpdateAdventure(ctx, "missing", "x", "y"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestDeleteNPCsByNameRemovesAllMatches(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()

	author := seedUser(t, store, "user-alice", "alice")
	adv := seedAdventure(t, store, "adv-1", author.ID, "Crypt of Ash")

	for _, desc := range []string{"rattles", "creaks"} {
		if err := store.CreateNPC(ctx, storage.NPC{AdventureID: adv.ID, Name: "Skeleton", Description: desc}); err != nil {
			t.Fatalf("create npc: %v", err)
		}
	}
	if err := store.CreateNPC(ctx, storage.NPC{AdventureID: adv.ID, Name: "Warden", Description: "watches"}); err != nil {
		t.Fatalf("create npc: %v", err)
	}

	removed, err := store.DeleteNPCsByName(ctx, adv.ID, "Skeleton")
	if err != nil {
		t.Fatalf("delete npcs: %v", err)
	}
	if removed != 2 {
		t.Fatalf("removed %d npcs, want 2", removed)
	}

	remaining, err := store.ListNPCs(ctx, adv.ID)
	if err != nil {
		t.Fatalf("list npcs: %v", err)
	}
	if len(remaining) != 1 || remaining[0].Name != "Warden" {
		t.Fatalf("unexpected remaining npcs: %+v", remaining)
	}
}

func TestDeleteLocationsMatchesNameAndDescription(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()

	author := seedUser(t, store, "user-alice", "alice")
	adv := seedAdventure(t, store, "adv-1", author.ID, "Crypt of Ash")

	entries := []storage.Location{
		{AdventureID: adv.ID, Name: "Vault", Description: "sealed"},
		{AdventureID: adv.ID, Name: "Vault", Description: "open"},
	}
	for _, entry := range entries {
		if err := store.CreateLocation(ctx, entry); err != nil {
			t.Fatalf("create location: %v", err)
		}
	}

	removed, err := store.DeleteLocations(ctx, adv.ID, "Vault", "sealed")
	if err != nil {
		t.Fatalf("delete locations: %v", err)
	}
	if removed != 1 {
		t.Fatalf("removed %d locations, want 1", removed)
	}

	remaining, err := store.ListLocations(ctx, adv.ID)
	if err != nil {
		t.Fatalf("list locations: %v", err)
	}
	if len(remaining) != 1 || remaining[0].Description != "open" {
		t.Fatalf("unexpected remaining locations: %+v", remaining)
	}
}

func TestDeleteAdventureTreeCascades(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()

	alice := seedUser(t, store, "user-alice", "alice")
	bob := seedUser(t, store, "user-bob", "bob")
	adv := storage.Adventure{
		ID:        "adv-crypt",
		AuthorID:  alice.ID,
		Name:      "Crypt of Ash",
		Story:     "A buried shrine stirs.",
		CreatedAt: time.Now(),
	}
	npcs := []storage.NPC{{AdventureID: adv.ID, Name: "Skeleton", Description: "rattles"}}
	locations := []storage.Location{{AdventureID: adv.ID, Name: "Vault", Description: "sealed"}}
	if err := store.CreateAdventure(ctx, adv, npcs, locations); err != nil {
		t.Fatalf("create adventure: %v", err)
	}

	camp := storage.Campaign{ID: "camp-1", AdventureID: adv.ID, CreatedAt: time.Now()}
	if err := store.CreateCampaign(ctx, camp, storage.Membership{UserID: alice.ID, CampaignID: camp.ID, IsAuthor: true}); err != nil {
		t.Fatalf("create campaign: %v", err)
	}
	if err := store.AddMembership(ctx, storage.Membership{UserID: bob.ID, CampaignID: camp.ID}); err != nil {
		t.Fatalf("add membership: %v", err)
	}
	if err := store.CreatePlayerCharacter(ctx, storage.PlayerCharacter{CampaignID: camp.ID, Name: "Thorn", Level: 3}); err != nil {
		t.Fatalf("create character: %v", err)
	}

	if err := store.DeleteAdventureTree(ctx, adv.ID); err != nil {
		t.Fatalf("delete adventure tree: %v", err)
	}

	if _, err := store.GetAdventure(ctx, adv.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("adventure survived delete: %v", err)
	}
	if _, err := store.GetCampaign(ctx, camp.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("campaign survived delete: %v", err)
	}
	if _, err := store.GetMembership(ctx, bob.ID, camp.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("membership survived delete: %v", err)
	}
	remainingNPCs, err := store.ListNPCs(ctx, adv.ID)
	if err != nil {
		t.Fatalf("list npcs: %v", err)
	}
	if len(remainingNPCs) != 0 {
		t.Fatalf("npcs survived delete: %+v", remainingNPCs)
	}
	characters, err := store.ListPlayerCharacters(ctx, camp.ID)
	if err != nil {
		t.Fatalf("list characters: %v", err)
	}
	if len(characters) != 0 {
		t.Fatalf("characters survived delete: %+v", characters)
	}
}

func TestDeleteAdventureTreeMissing(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)

	if err := store.DeleteAdventureTree(context.Background(), "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}
