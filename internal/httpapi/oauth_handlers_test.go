package httpapi

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"golang.org/x/oauth2"

	"vitrina.shop/internal/auth"
	"vitrina.shop/internal/catalog"
	"vitrina.shop/internal/payment"
)

const testFrontendURL = "http://localhost:3000/login/success"

type oauthTestEnv struct {
	baseURL string
	client  *http.Client
	codec   *auth.Codec
}

func newOAuthTestAPI(t *testing.T) *oauthTestEnv {
	t.Helper()

	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/token":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"access_token":"at_1","token_type":"bearer","expires_in":3600}`))
		case "/userinfo":
			if got := r.Header.Get("Authorization"); !strings.Contains(got, "at_1") {
				t.Errorf("userinfo called without provider token: %q", got)
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"email":"Shopper@Example.com"}`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(provider.Close)

	codec, err := auth.NewCodec("test-secret")
	if err != nil {
		t.Fatalf("new codec: %v", err)
	}
	authSvc, err := auth.NewService(auth.NewMemoryStore(), codec)
	if err != nil {
		t.Fatalf("new auth service: %v", err)
	}
	catalogSvc, err := catalog.NewService(catalog.NewMemoryStore())
	if err != nil {
		t.Fatalf("new catalog service: %v", err)
	}
	payClient, err := payment.NewClient(provider.URL, "sk_test_123")
	if err != nil {
		t.Fatalf("new payment client: %v", err)
	}
	paymentSvc, err := payment.NewService(payClient, payment.NewMemoryOrderStore())
	if err != nil {
		t.Fatalf("new payment service: %v", err)
	}

	cfg := &oauth2.Config{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		Scopes:       []string{"openid", "email"},
		Endpoint: oauth2.Endpoint{
			AuthURL:  provider.URL + "/auth",
			TokenURL: provider.URL + "/token",
		},
	}

	api := New(ReadyProbe{}, "test", authSvc, catalogSvc, paymentSvc,
		WithOAuth(cfg, provider.URL+"/userinfo", testFrontendURL),
		WithRateLimit(100, 100),
	)

	srv := httptest.NewServer(api.Handler())
	t.Cleanup(srv.Close)

	client := &http.Client{
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	return &oauthTestEnv{baseURL: srv.URL, client: client, codec: codec}
}

func TestOAuthLoginRedirectsToProvider(t *testing.T) {
	env := newOAuthTestAPI(t)

	resp, err := env.client.Get(env.baseURL + "/oauth2/login")
	if err != nil {
		t.Fatalf("login request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusFound {
		t.Fatalf("expected 302, got %d", resp.StatusCode)
	}
	loc, err := url.Parse(resp.Header.Get("Location"))
	if err != nil {
		t.Fatalf("parse location: %v", err)
	}
	if loc.Path != "/auth" {
		t.Fatalf("unexpected redirect target: %s", loc)
	}
	state := loc.Query().Get("state")
	if state == "" {
		t.Fatalf("expected state in redirect URL")
	}

	var stateCookie *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == oauthStateCookie {
			stateCookie = c
		}
	}
	if stateCookie == nil || stateCookie.Value != state {
		t.Fatalf("expected state cookie matching redirect state")
	}
	if !stateCookie.HttpOnly {
		t.Fatalf("expected HttpOnly state cookie")
	}
}

func TestOAuthCallbackIssuesToken(t *testing.T) {
	env := newOAuthTestAPI(t)

	// Start the flow to obtain a state cookie.
	resp, err := env.client.Get(env.baseURL + "/oauth2/login")
	if err != nil {
		t.Fatalf("login request: %v", err)
	}
	resp.Body.Close()
	loc, _ := url.Parse(resp.Header.Get("Location"))
	state := loc.Query().Get("state")
	cookies := resp.Cookies()

	req, err := http.NewRequest(http.MethodGet, env.baseURL+"/oauth2/callback?code=auth-code&state="+url.QueryEscape(state), nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	resp, err = env.client.Do(req)
	if err != nil {
		t.Fatalf("callback request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusFound {
		t.Fatalf("expected 302, got %d", resp.StatusCode)
	}
	redirect, err := url.Parse(resp.Header.Get("Location"))
	if err != nil {
		t.Fatalf("parse redirect: %v", err)
	}
	if !strings.HasPrefix(redirect.String(), testFrontendURL) {
		t.Fatalf("unexpected redirect target: %s", redirect)
	}
	token := redirect.Query().Get("jwt")
	if token == "" {
		t.Fatalf("expected jwt in redirect query")
	}

	claims, err := env.codec.Decode(token)
	if err != nil {
		t.Fatalf("decode issued token: %v", err)
	}
	if claims.Subject != "shopper@example.com" {
		t.Fatalf("expected lowercased email subject, got %q", claims.Subject)
	}
	if claims.Role != auth.RoleUser {
		t.Fatalf("expected USER role, got %q", claims.Role)
	}
}

func TestOAuthCallbackRejectsStateMismatch(t *testing.T) {
	env := newOAuthTestAPI(t)

	resp, err := env.client.Get(env.baseURL + "/oauth2/login")
	if err != nil {
		t.Fatalf("login request: %v", err)
	}
	resp.Body.Close()
	cookies := resp.Cookies()

	req, err := http.NewRequest(http.MethodGet, env.baseURL+"/oauth2/callback?code=auth-code&state=forged", nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	resp, err = env.client.Do(req)
	if err != nil {
		t.Fatalf("callback request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for forged state, got %d", resp.StatusCode)
	}
}

func TestOAuthEndpointsAbsentWhenUnconfigured(t *testing.T) {
	api := newTestAPI(t)

	resp := api.get("/oauth2/login", nil, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 when oauth is not configured, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}
