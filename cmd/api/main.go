package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"golang.org/x/oauth2"

	"vitrina.shop/internal/auth"
	"vitrina.shop/internal/catalog"
	"vitrina.shop/internal/httpapi"
	"vitrina.shop/internal/obs"
	"vitrina.shop/internal/payment"
)

var (
	version = "0.3.1"
	commit  = "dev"
)

func main() {
	obs.Init()
	obs.InitBuildInfo(version, commit)

	secret := os.Getenv("VITRINA_AUTH_SECRET")
	if secret == "" {
		log.Fatal("VITRINA_AUTH_SECRET is required")
	}

	var codecOpts []auth.CodecOption
	if raw := os.Getenv("VITRINA_TOKEN_TTL"); raw != "" {
		ttl, err := time.ParseDuration(raw)
		if err != nil {
			log.Fatalf("parse VITRINA_TOKEN_TTL: %v", err)
		}
		codecOpts = append(codecOpts, auth.WithTTL(ttl))
	}
	codec, err := auth.NewCodec(secret, codecOpts...)
	if err != nil {
		log.Fatalf("token codec: %v", err)
	}

	// Postgres when a DSN is set, in-memory stores otherwise.
	var db *sql.DB
	var (
		userStore  auth.Store         = auth.NewMemoryStore()
		prodStore  catalog.Store      = catalog.NewMemoryStore()
		orderStore payment.OrderStore = payment.NewMemoryOrderStore()
	)
	if dsn := os.Getenv("VITRINA_PG_DSN"); dsn != "" {
		db, err = sql.Open("pgx", dsn)
		if err != nil {
			log.Fatalf("open db: %v", err)
		}
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(10)
		db.SetConnMaxLifetime(30 * time.Minute)
		userStore = auth.NewPGStore(db)
		prodStore = catalog.NewPGStore(db)
		orderStore = payment.NewPGOrderStore(db)
	}

	authSvc, err := auth.NewService(userStore, codec)
	if err != nil {
		log.Fatalf("auth service: %v", err)
	}
	catalogSvc, err := catalog.NewService(prodStore)
	if err != nil {
		log.Fatalf("catalog service: %v", err)
	}

	var paymentSvc *payment.Service
	if apiKey := os.Getenv("VITRINA_PAYMENT_API_KEY"); apiKey != "" {
		baseURL := os.Getenv("VITRINA_PAYMENT_API_URL")
		if baseURL == "" {
			baseURL = "https://api.stripe.com"
		}
		client, err := payment.NewClient(baseURL, apiKey)
		if err != nil {
			log.Fatalf("payment client: %v", err)
		}
		paymentSvc, err = payment.NewService(client, orderStore)
		if err != nil {
			log.Fatalf("payment service: %v", err)
		}
	} else {
		log.Print("VITRINA_PAYMENT_API_KEY not set, checkout endpoints disabled")
	}

	opts := []httpapi.Option{}
	if ws := os.Getenv("VITRINA_PAYMENT_WEBHOOK_SECRET"); ws != "" {
		opts = append(opts, httpapi.WithWebhookSecret([]byte(ws)))
	}
	if cfg := oauthConfigFromEnv(); cfg != nil {
		frontend := os.Getenv("VITRINA_FRONTEND_URL")
		if frontend == "" {
			frontend = "http://localhost:3000/login/success"
		}
		userInfoURL := os.Getenv("VITRINA_OAUTH_USERINFO_URL")
		if userInfoURL == "" {
			userInfoURL = "https://openidconnect.googleapis.com/v1/userinfo"
		}
		opts = append(opts, httpapi.WithOAuth(cfg, userInfoURL, frontend))
	}

	api := httpapi.New(httpapi.ReadyProbe{DB: db}, version, authSvc, catalogSvc, paymentSvc, opts...)

	addr := os.Getenv("VITRINA_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           api.Handler(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Printf("Starting vitrina-api %s on %s", version, srv.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	log.Println("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = srv.Shutdown(ctx)
	if db != nil {
		_ = db.Close()
	}
	log.Println("Stopped")
}

// oauthConfigFromEnv builds the federated-login config. Endpoint URLs default
// to Google; returns nil when no client credentials are configured.
func oauthConfigFromEnv() *oauth2.Config {
	clientID := os.Getenv("VITRINA_OAUTH_CLIENT_ID")
	clientSecret := os.Getenv("VITRINA_OAUTH_CLIENT_SECRET")
	if clientID == "" || clientSecret == "" {
		return nil
	}
	// Google's endpoints unless overridden.
	endpoint := oauth2.Endpoint{
		AuthURL:  "https://accounts.google.com/o/oauth2/auth",
		TokenURL: "https://oauth2.googleapis.com/token",
	}
	if authURL, tokenURL := os.Getenv("VITRINA_OAUTH_AUTH_URL"), os.Getenv("VITRINA_OAUTH_TOKEN_URL"); authURL != "" && tokenURL != "" {
		endpoint = oauth2.Endpoint{AuthURL: authURL, TokenURL: tokenURL}
	}
	redirectURL := os.Getenv("VITRINA_OAUTH_REDIRECT_URL")
	if redirectURL == "" {
		redirectURL = "http://localhost:8080/oauth2/callback"
	}
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Scopes:       []string{"openid", "email", "profile"},
		Endpoint:     endpoint,
	}
}
