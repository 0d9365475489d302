package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/oauth2"

	"vitrina.shop/internal/audit"
	"vitrina.shop/internal/ids"
)

const oauthStateCookie = "oauth_state"

// handleOAuthLogin starts the authorization-code flow: a random state value is
// pinned in a short-lived cookie and the browser is sent to the provider.
func (a *API) handleOAuthLogin(w http.ResponseWriter, r *http.Request) {
	if a.oauth == nil {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}

	state := ids.New()
	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/oauth2/",
		MaxAge:   int((10 * time.Minute).Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, a.oauth.AuthCodeURL(state, oauth2.AccessTypeOnline), http.StatusFound)
}

// handleOAuthCallback finishes the flow: state check, code exchange, profile
// fetch, local account resolution, then a redirect to the frontend carrying
// the issued token.
func (a *API) handleOAuthCallback(w http.ResponseWriter, r *http.Request) {
	if a.oauth == nil {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}

	state := r.URL.Query().Get("state")
	cookie, err := r.Cookie(oauthStateCookie)
	if err != nil || state == "" || cookie.Value != state {
		writeError(w, r, http.StatusBadRequest, "state mismatch")
		return
	}
	// One shot per state value.
	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Path:     "/oauth2/",
		MaxAge:   -1,
		HttpOnly: true,
	})

	code := r.URL.Query().Get("code")
	if code == "" {
		writeError(w, r, http.StatusBadRequest, "authorization code is missing")
		return
	}

	exchanged, err := a.oauth.Exchange(r.Context(), code)
	if err != nil {
		writeError(w, r, http.StatusBadGateway, "code exchange failed")
		return
	}

	email, err := a.fetchEmail(r, exchanged)
	if err != nil {
		writeError(w, r, http.StatusBadGateway, "profile fetch failed")
		return
	}

	user, token, expiresAt, err := a.auth.FederatedLogin(r.Context(), email)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "federated login failed")
		return
	}

	_ = audit.LogEvent(r.Context(), "auth.federated.login", map[string]any{
		"username":   user.Username,
		"expires_at": expiresAt.Format(time.RFC3339),
	})

	redirect := a.frontendURL + "?jwt=" + url.QueryEscape(token)
	http.Redirect(w, r, redirect, http.StatusFound)
}

// fetchEmail retrieves the provider profile and pulls the email out of it.
func (a *API) fetchEmail(r *http.Request, token *oauth2.Token) (string, error) {
	client := a.oauth.Client(r.Context(), token)
	resp, err := client.Get(a.oauthUserInfoURL)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var profile struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return "", err
	}
	if profile.Email == "" {
		return "", errors.New("provider profile has no email")
	}
	return profile.Email, nil
}
