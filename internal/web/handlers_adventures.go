package web

import (
	"net/http"

	"github.com/ebonmoor/questhall/internal/adventure"
	"github.com/ebonmoor/questhall/internal/auth"
	"github.com/ebonmoor/questhall/internal/storage"
)

type entryPayload struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type adventureSummaryPayload struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Author string `json:"author"`
}

type adventureDetailPayload struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Story     string         `json:"story"`
	Author    string         `json:"author"`
	NPCs      []entryPayload `json:"npcs"`
	Locations []entryPayload `json:"locations"`
}

// listAdventures renders the adventure listing. The name and author query
// parameters narrow it with case-sensitive substring matches.
func (h *handler) listAdventures(w http.ResponseWriter, r *http.Request) {
	filter := storage.AdventureFilter{
		Name:        r.URL.Query().Get("name"),
		AuthorLogin: r.URL.Query().Get("author"),
	}
	summaries, err := h.adventures.List(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}

	payload := make([]adventureSummaryPayload, 0, len(summaries))
	for _, summary := range summaries {
		payload = append(payload, adventureSummaryPayload{
			ID:     summary.ID,
			Name:   summary.Name,
			Author: summary.AuthorLogin,
		})
	}
	writeJSON(w, http.StatusOK, payload)
}

// createAdventure handles the authoring form. Only masters author adventures.
// Repeated npc[]/npc_description[] and location[]/location_description[]
// fields become child rows, paired by position.
func (h *handler) createAdventure(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.requireActor(w, r)
	if !ok {
		return
	}
	if actor.Role != auth.RoleMaster {
		writeErrorMessage(w, http.StatusForbidden, "only masters create adventures")
		return
	}
	if err := r.ParseForm(); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "malformed form")
		return
	}

	npcs := zipEntries(r.PostForm["npc[]"], r.PostForm["npc_description[]"])
	locations := zipEntries(r.PostForm["location[]"], r.PostForm["location_description[]"])

	adventureID, err := h.adventures.Create(
		r.Context(),
		actor.ID,
		r.PostFormValue("name"),
		r.PostFormValue("story"),
		npcs,
		locations,
	)
	if err != nil {
		writeError(w, err)
		return
	}
	http.Redirect(w, r, "/adventures/"+adventureID, http.StatusSeeOther)
}

// adventureDetail renders one adventure with its NPCs and locations.
func (h *handler) adventureDetail(w http.ResponseWriter, r *http.Request) {
	detail, err := h.adventures.Detail(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	payload := adventureDetailPayload{
		ID:        detail.ID,
		Name:      detail.Name,
		Story:     detail.Story,
		Author:    detail.AuthorLogin,
		NPCs:      make([]entryPayload, 0, len(detail.NPCs)),
		Locations: make([]entryPayload, 0, len(detail.Locations)),
	}
	for _, npc := range detail.NPCs {
		payload.NPCs = append(payload.NPCs, entryPayload(npc))
	}
	for _, location := range detail.Locations {
		payload.Locations = append(payload.Locations, entryPayload(location))
	}
	writeJSON(w, http.StatusOK, payload)
}

// updateAdventure replaces name and story. A blank field makes it a no-op.
func (h *handler) updateAdventure(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.requireActor(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "malformed form")
		return
	}

	adventureID := r.PathValue("id")
	_, err := h.adventures.Update(r.Context(), actor.ID, adventureID, r.PostFormValue("name"), r.PostFormValue("story"))
	if err != nil {
		writeError(w, err)
		return
	}
	http.Redirect(w, r, "/adventures/"+adventureID, http.StatusSeeOther)
}

// deleteAdventure removes the adventure tree for its author.
func (h *handler) deleteAdventure(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.requireActor(w, r)
	if !ok {
		return
	}
	if err := h.adventures.Delete(r.Context(), actor.ID, r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	http.Redirect(w, r, "/adventures", http.StatusSeeOther)
}

// addNPC appends one NPC row to the actor's adventure.
func (h *handler) addNPC(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.requireActor(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "malformed form")
		return
	}

	adventureID := r.PathValue("id")
	entry := adventure.Entry{
		Name:        r.PostFormValue("name"),
		Description: r.PostFormValue("description"),
	}
	if err := h.adventures.AddNPC(r.Context(), actor.ID, adventureID, entry); err != nil {
		writeError(w, err)
		return
	}
	http.Redirect(w, r, "/adventures/"+adventureID, http.StatusSeeOther)
}

// deleteNPCs removes every NPC with the submitted name.
func (h *handler) deleteNPCs(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.requireActor(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "malformed form")
		return
	}

	adventureID := r.PathValue("id")
	if _, err := h.adventures.RemoveNPCs(r.Context(), actor.ID, adventureID, r.PostFormValue("name")); err != nil {
		writeError(w, err)
		return
	}
	http.Redirect(w, r, "/adventures/"+adventureID, http.StatusSeeOther)
}

// addLocation appends one location row to the actor's adventure.
func (h *handler) addLocation(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.requireActor(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "malformed form")
		return
	}

	adventureID := r.PathValue("id")
	entry := adventure.Entry{
		Name:        r.PostFormValue("name"),
		Description: r.PostFormValue("description"),
	}
	if err := h.adventures.AddLocation(r.Context(), actor.ID, adventureID, entry); err != nil {
		writeError(w, err)
		return
	}
	http.Redirect(w, r, "/adventures/"+adventureID, http.StatusSeeOther)
}

// deleteLocations removes every location matching the submitted name and
// description.
func (h *handler) deleteLocations(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.requireActor(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "malformed form")
		return
	}

	adventureID := r.PathValue("id")
	_, err := h.adventures.RemoveLocations(
		r.Context(),
		actor.ID,
		adventureID,
		r.PostFormValue("name"),
		r.PostFormValue("description"),
	)
	if err != nil {
		writeError(w, err)
		return
	}
	http.Redirect(w, r, "/adventures/"+adventureID, http.StatusSeeOther)
}

// zipEntries pairs repeated name and description form fields by position.
// Forms may carry more names than descriptions; missing descriptions are
// treated as empty.
func zipEntries(names, descriptions []string) []adventure.Entry {
	entries := make([]adventure.Entry, 0, len(names))
	for i, name := range names {
		entry := adventure.Entry{Name: name}
		if i < len(descriptions) {
			entry.Description = descriptions[i]
		}
		entries = append(entries, entry)
	}
	return entries
}
