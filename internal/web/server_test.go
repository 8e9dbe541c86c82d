package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ebonmoor/questhall/internal/adventure"
	"github.com/ebonmoor/questhall/internal/auth"
	"github.com/ebonmoor/questhall/internal/campaign"
	"github.com/ebonmoor/questhall/internal/storage/sqlite"
)

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()
	store, err := sqlite.Open(filepath.Join(t.TempDir(), "questhall.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})

	handler, err := NewHandler(Config{SessionKey: []byte("test-key")},
		auth.NewService(store, store),
		adventure.NewService(store, store),
		campaign.NewService(store, store, store),
	)
	if err != nil {
		t.Fatalf("build handler: %v", err)
	}
	return handler
}

func postForm(t *testing.T, handler http.Handler, cookie *http.Cookie, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, req)
	return recorder
}

func get(t *testing.T, handler http.Handler, cookie *http.Cookie, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, req)
	return recorder
}

// registerAndLogin creates an account and returns its session cookie.
func registerAndLogin(t *testing.T, handler http.Handler, login, role string) *http.Cookie {
	t.Helper()
	resp := postForm(t, handler, nil, "/register", url.Values{
		"login":    {login},
		"password": {"s3cret"},
		"role":     {role},
	})
	if resp.Code != http.StatusSeeOther {
		t.Fatalf("register %s: got status %d, body %s", login, resp.Code, resp.Body.String())
	}

	resp = postForm(t, handler, nil, "/login", url.Values{
		"login":    {login},
		"password": {"s3cret"},
	})
	if resp.Code != http.StatusSeeOther {
		t.Fatalf("login %s: got status %d, body %s", login, resp.Code, resp.Body.String())
	}
	for _, cookie := range resp.Result().Cookies() {
		if cookie.Name == sessionCookieName && cookie.Value != "" {
			return cookie
		}
	}
	t.Fatalf("login %s: no session cookie in response", login)
	return nil
}

func decodeJSON(t *testing.T, resp *httptest.ResponseRecorder, target any) {
	t.Helper()
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func TestLoginRejectsBadPassword(t *testing.T) {
	t.Parallel()

	handler := newTestHandler(t)
	registerAndLogin(t, handler, "alice", "master")

	resp := postForm(t, handler, nil, "/login", url.Values{
		"login":    {"alice"},
		"password": {"wrong"},
	})
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("got status %d, want 401", resp.Code)
	}
}

func TestRegisterValidationStatus(t *testing.T) {
	t.Parallel()

	handler := newTestHandler(t)

	resp := postForm(t, handler, nil, "/register", url.Values{
		"login":    {"alice"},
		"password": {"pw"},
		"role":     {"wizard"},
	})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("bad role: got status %d, want 400", resp.Code)
	}

	registerAndLogin(t, handler, "alice", "master")
	resp = postForm(t, handler, nil, "/register", url.Values{
		"login":    {"alice"},
		"password": {"pw"},
		"role":     {"player"},
	})
	if resp.Code != http.StatusConflict {
		t.Fatalf("duplicate login: got status %d, want 409", resp.Code)
	}
}

func TestAdventureListingIsPublic(t *testing.T) {
	t.Parallel()

	handler := newTestHandler(t)

	resp := get(t, handler, nil, "/adventures")
	if resp.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200", resp.Code)
	}
	var listing []adventureSummaryPayload
	decodeJSON(t, resp, &listing)
	if len(listing) != 0 {
		t.Fatalf("expected empty listing, got %+v", listing)
	}
}

func TestCreateAdventureRequiresSessionAndMasterRole(t *testing.T) {
	t.Parallel()

	handler := newTestHandler(t)
	form := url.Values{"name": {"Crypt of Ash"}, "story": {"A buried shrine stirs."}}

	resp := postForm(t, handler, nil, "/adventures", form)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("no session: got status %d, want 401", resp.Code)
	}

	player := registerAndLogin(t, handler, "pat", "player")
	resp = postForm(t, handler, player, "/adventures", form)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("player role: got status %d, want 403", resp.Code)
	}
}

func TestAdventureLifecycle(t *testing.T) {
	t.Parallel()

	handler := newTestHandler(t)
	alice := registerAndLogin(t, handler, "alice", "master")
	bob := registerAndLogin(t, handler, "bob", "master")

	resp := postForm(t, handler, alice, "/adventures", url.Values{
		"name":                   {"Crypt of Ash"},
		"story":                  {"A buried shrine stirs."},
		"npc[]":                  {"Skeleton", ""},
		"npc_description[]":      {"rattles", "ignored"},
		"location[]":             {"Vault"},
		"location_description[]": {"sealed"},
	})
	if resp.Code != http.StatusSeeOther {
		t.Fatalf("create: got status %d, body %s", resp.Code, resp.Body.String())
	}
	location := resp.Result().Header.Get("Location")
	if !strings.HasPrefix(location, "/adventures/") {
		t.Fatalf("unexpected redirect target %q", location)
	}

	resp = get(t, handler, nil, location)
	if resp.Code != http.StatusOK {
		t.Fatalf("detail: got status %d", resp.Code)
	}
	var detail adventureDetailPayload
	decodeJSON(t, resp, &detail)
	if detail.Name != "Crypt of Ash" || detail.Author != "alice" {
		t.Fatalf("unexpected detail: %+v", detail)
	}
	if len(detail.NPCs) != 1 || detail.NPCs[0].Name != "Skeleton" {
		t.Fatalf("blank npc row not skipped: %+v", detail.NPCs)
	}
	if len(detail.Locations) != 1 || detail.Locations[0].Name != "Vault" {
		t.Fatalf("unexpected locations: %+v", detail.Locations)
	}

	resp = postForm(t, handler, bob, location+"/update", url.Values{
		"name":  {"Stolen"},
		"story": {"story"},
	})
	if resp.Code != http.StatusForbidden {
		t.Fatalf("non-author update: got status %d, want 403", resp.Code)
	}

	resp = postForm(t, handler, alice, location+"/update", url.Values{
		"name":  {"Crypt of Embers"},
		"story": {"A rekindled shrine."},
	})
	if resp.Code != http.StatusSeeOther {
		t.Fatalf("update: got status %d, body %s", resp.Code, resp.Body.String())
	}

	resp = postForm(t, handler, bob, location+"/delete", nil)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("non-author delete: got status %d, want 403", resp.Code)
	}
	resp = postForm(t, handler, alice, location+"/delete", nil)
	if resp.Code != http.StatusSeeOther {
		t.Fatalf("delete: got status %d, body %s", resp.Code, resp.Body.String())
	}
	resp = get(t, handler, nil, location)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("detail after delete: got status %d, want 404", resp.Code)
	}
}

func TestCampaignLifecycle(t *testing.T) {
	t.Parallel()

	handler := newTestHandler(t)
	alice := registerAndLogin(t, handler, "alice", "master")
	bob := registerAndLogin(t, handler, "bob", "player")

	resp := postForm(t, handler, alice, "/adventures", url.Values{
		"name":  {"Crypt of Ash"},
		"story": {"A buried shrine stirs."},
	})
	if resp.Code != http.StatusSeeOther {
		t.Fatalf("create adventure: got status %d", resp.Code)
	}
	adventureID := strings.TrimPrefix(resp.Result().Header.Get("Location"), "/adventures/")

	resp = postForm(t, handler, alice, "/campaigns", url.Values{"adventureid": {adventureID}})
	if resp.Code != http.StatusSeeOther {
		t.Fatalf("create campaign: got status %d, body %s", resp.Code, resp.Body.String())
	}
	campaignPath := resp.Result().Header.Get("Location")
	if !strings.HasPrefix(campaignPath, "/campaigns/") {
		t.Fatalf("unexpected redirect target %q", campaignPath)
	}

	resp = get(t, handler, bob, campaignPath)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("non-member detail: got status %d, want 403", resp.Code)
	}

	resp = postForm(t, handler, alice, campaignPath+"/add_player", url.Values{"username": {"bob"}})
	if resp.Code != http.StatusSeeOther {
		t.Fatalf("add player: got status %d, body %s", resp.Code, resp.Body.String())
	}
	resp = postForm(t, handler, alice, campaignPath+"/add_player", url.Values{"username": {"bob"}})
	if resp.Code != http.StatusConflict {
		t.Fatalf("duplicate player: got status %d, want 409", resp.Code)
	}

	resp = postForm(t, handler, bob, campaignPath+"/add_character", url.Values{
		"name":        {"Thorn"},
		"description": {"a wary scout"},
		"level":       {"three"},
		"class":       {"rogue"},
		"skills":      {"stealth"},
		"armor":       {"12"},
		"hp":          {"21"},
	})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("non-numeric level: got status %d, want 400", resp.Code)
	}

	resp = postForm(t, handler, bob, campaignPath+"/add_character", url.Values{
		"name":        {"Thorn"},
		"description": {"a wary scout"},
		"level":       {"3"},
		"class":       {"rogue"},
		"skills":      {"stealth"},
		"armor":       {"12"},
		"hp":          {"21"},
	})
	if resp.Code != http.StatusSeeOther {
		t.Fatalf("add character: got status %d, body %s", resp.Code, resp.Body.String())
	}

	resp = get(t, handler, bob, campaignPath)
	if resp.Code != http.StatusOK {
		t.Fatalf("member detail: got status %d", resp.Code)
	}
	var detail campaignDetailPayload
	decodeJSON(t, resp, &detail)
	if detail.AdventureName != "Crypt of Ash" || detail.Author != "alice" {
		t.Fatalf("unexpected detail: %+v", detail)
	}
	if detail.IsAuthor {
		t.Fatal("bob should not be the campaign author")
	}
	if len(detail.Members) != 2 {
		t.Fatalf("got %d members, want 2", len(detail.Members))
	}
	if len(detail.Characters) != 1 || detail.Characters[0].Name != "Thorn" || detail.Characters[0].Level != 3 {
		t.Fatalf("unexpected characters: %+v", detail.Characters)
	}

	resp = get(t, handler, bob, "/campaigns")
	if resp.Code != http.StatusOK {
		t.Fatalf("listing: got status %d", resp.Code)
	}
	var listing []campaignSummaryPayload
	decodeJSON(t, resp, &listing)
	if len(listing) != 1 || listing[0].AdventureName != "Crypt of Ash" {
		t.Fatalf("unexpected listing: %+v", listing)
	}

	resp = postForm(t, handler, bob, campaignPath+"/delete", nil)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("member delete: got status %d, want 403", resp.Code)
	}
	resp = postForm(t, handler, alice, campaignPath+"/delete", nil)
	if resp.Code != http.StatusSeeOther {
		t.Fatalf("author delete: got status %d, body %s", resp.Code, resp.Body.String())
	}
	resp = get(t, handler, alice, campaignPath)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("detail after delete: got status %d, want 403", resp.Code)
	}
}

func TestLogoutClearsCookie(t *testing.T) {
	t.Parallel()

	handler := newTestHandler(t)
	alice := registerAndLogin(t, handler, "alice", "master")

	resp := postForm(t, handler, alice, "/logout", nil)
	if resp.Code != http.StatusSeeOther {
		t.Fatalf("logout: got status %d", resp.Code)
	}
	cleared := false
	for _, cookie := range resp.Result().Cookies() {
		if cookie.Name == sessionCookieName && cookie.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Fatal("logout did not expire the session cookie")
	}
}

func TestNewHandlerRequiresSessionKey(t *testing.T) {
	t.Parallel()

	if _, err := NewHandler(Config{}, nil, nil, nil); err == nil {
		t.Fatal("expected missing session key error")
	}
}
