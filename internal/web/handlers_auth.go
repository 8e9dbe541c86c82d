package web

import (
	"net/http"
)

// register creates an account from the registration form and sends the new
// user to the login flow.
func (h *handler) register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "malformed form")
		return
	}
	login := r.PostFormValue("login")
	password := r.PostFormValue("password")
	role := r.PostFormValue("role")

	if err := h.auth.Register(r.Context(), login, password, role); err != nil {
		writeError(w, err)
		return
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// login validates credentials and issues the signed session cookie.
func (h *handler) login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "malformed form")
		return
	}
	login := r.PostFormValue("login")
	password := r.PostFormValue("password")

	user, err := h.auth.Authenticate(r.Context(), login, password)
	if err != nil {
		writeError(w, err)
		return
	}

	token, err := h.sessions.issue(user)
	if err != nil {
		writeError(w, err)
		return
	}
	setSessionCookie(w, token, h.sessionTTL)
	http.Redirect(w, r, "/adventures", http.StatusSeeOther)
}

// logout clears the session cookie.
func (h *handler) logout(w http.ResponseWriter, r *http.Request) {
	clearSessionCookie(w)
	http.Redirect(w, r, "/adventures", http.StatusSeeOther)
}
