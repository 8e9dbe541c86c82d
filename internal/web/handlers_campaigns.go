package web

import (
	"net/http"
	"strconv"

	"github.com/ebonmoor/questhall/internal/campaign"
)

type campaignSummaryPayload struct {
	ID            string `json:"id"`
	AdventureName string `json:"adventure_name"`
}

type memberPayload struct {
	Login    string `json:"login"`
	IsAuthor bool   `json:"is_author"`
}

type characterPayload struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Level       int    `json:"level"`
	Class       string `json:"class"`
	Skills      string `json:"skills"`
	Armor       int    `json:"armor"`
	HP          int    `json:"hp"`
}

type campaignDetailPayload struct {
	ID            string             `json:"id"`
	AdventureName string             `json:"adventure_name"`
	Story         string             `json:"story"`
	Author        string             `json:"author"`
	NPCs          []entryPayload     `json:"npcs"`
	Locations     []entryPayload     `json:"locations"`
	Members       []memberPayload    `json:"members"`
	Characters    []characterPayload `json:"characters"`
	IsAuthor      bool               `json:"is_author"`
}

// listCampaigns renders the actor's campaign listing.
func (h *handler) listCampaigns(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.requireActor(w, r)
	if !ok {
		return
	}

	summaries, err := h.campaigns.ListForUser(r.Context(), actor.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	payload := make([]campaignSummaryPayload, 0, len(summaries))
	for _, summary := range summaries {
		payload = append(payload, campaignSummaryPayload{
			ID:            summary.CampaignID,
			AdventureName: summary.AdventureName,
		})
	}
	writeJSON(w, http.StatusOK, payload)
}

// createCampaign starts a campaign on the submitted adventure.
func (h *handler) createCampaign(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.requireActor(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "malformed form")
		return
	}

	adventureID := r.PostFormValue("adventureid")
	if adventureID == "" {
		writeErrorMessage(w, http.StatusBadRequest, "adventure id is required")
		return
	}

	campaignID, err := h.campaigns.Create(r.Context(), actor.ID, adventureID)
	if err != nil {
		writeError(w, err)
		return
	}
	http.Redirect(w, r, "/campaigns/"+campaignID, http.StatusSeeOther)
}

// campaignDetail renders the aggregated campaign view for a member.
func (h *handler) campaignDetail(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.requireActor(w, r)
	if !ok {
		return
	}

	detail, err := h.campaigns.Detail(r.Context(), actor.ID, r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	payload := campaignDetailPayload{
		ID:            detail.CampaignID,
		AdventureName: detail.AdventureName,
		Story:         detail.Story,
		Author:        detail.AuthorLogin,
		NPCs:          make([]entryPayload, 0, len(detail.NPCs)),
		Locations:     make([]entryPayload, 0, len(detail.Locations)),
		Members:       make([]memberPayload, 0, len(detail.Members)),
		Characters:    make([]characterPayload, 0, len(detail.Characters)),
		IsAuthor:      detail.IsAuthor,
	}
	for _, npc := range detail.NPCs {
		payload.NPCs = append(payload.NPCs, entryPayload(npc))
	}
	for _, location := range detail.Locations {
		payload.Locations = append(payload.Locations, entryPayload(location))
	}
	for _, member := range detail.Members {
		payload.Members = append(payload.Members, memberPayload{
			Login:    member.Login,
			IsAuthor: member.IsAuthor,
		})
	}
	for _, character := range detail.Characters {
		payload.Characters = append(payload.Characters, characterPayload{
			Name:        character.Name,
			Description: character.Description,
			Level:       character.Level,
			Class:       character.Class,
			Skills:      character.Skills,
			Armor:       character.Armor,
			HP:          character.HP,
		})
	}
	writeJSON(w, http.StatusOK, payload)
}

// addPlayer enrolls a user by login as a plain campaign participant.
func (h *handler) addPlayer(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.requireActor(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "malformed form")
		return
	}

	campaignID := r.PathValue("id")
	if err := h.campaigns.AddMember(r.Context(), actor.ID, campaignID, r.PostFormValue("username")); err != nil {
		writeError(w, err)
		return
	}
	http.Redirect(w, r, "/campaigns/"+campaignID, http.StatusSeeOther)
}

// addCharacter records a player character sheet. Integer stats are converted
// here so the services only ever see typed values.
func (h *handler) addCharacter(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.requireActor(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "malformed form")
		return
	}

	level, ok := formInt(w, r, "level")
	if !ok {
		return
	}
	armor, ok := formInt(w, r, "armor")
	if !ok {
		return
	}
	hp, ok := formInt(w, r, "hp")
	if !ok {
		return
	}

	campaignID := r.PathValue("id")
	input := campaign.CharacterInput{
		Name:        r.PostFormValue("name"),
		Description: r.PostFormValue("description"),
		Level:       level,
		Class:       r.PostFormValue("class"),
		Skills:      r.PostFormValue("skills"),
		Armor:       armor,
		HP:          hp,
	}
	if err := h.campaigns.AddCharacter(r.Context(), actor.ID, campaignID, input); err != nil {
		writeError(w, err)
		return
	}
	http.Redirect(w, r, "/campaigns/"+campaignID, http.StatusSeeOther)
}

// deleteCampaign tears down a campaign for its author.
func (h *handler) deleteCampaign(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.requireActor(w, r)
	if !ok {
		return
	}
	if err := h.campaigns.Delete(r.Context(), actor.ID, r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	http.Redirect(w, r, "/campaigns", http.StatusSeeOther)
}

// formInt converts a form field to an int, writing a 400 response on
// non-numeric input instead of letting a parse failure propagate.
func formInt(w http.ResponseWriter, r *http.Request, field string) (int, bool) {
	value, err := strconv.Atoi(r.PostFormValue(field))
	if err != nil {
		writeErrorMessage(w, http.StatusBadRequest, field+" must be a number")
		return 0, false
	}
	return value, true
}
