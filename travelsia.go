// Package travelsia is the composition root for the travelsia client SDK:
// one gateway client, three state stores, and the coordinator that demotes
// the session when any call reports an invalid token.
package travelsia

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/DevLuiggi/travelsia-go/pkg/config"
	"github.com/DevLuiggi/travelsia-go/pkg/credentials"
	"github.com/DevLuiggi/travelsia-go/pkg/flights"
	"github.com/DevLuiggi/travelsia-go/pkg/gateway"
	"github.com/DevLuiggi/travelsia-go/pkg/itinerary"
	"github.com/DevLuiggi/travelsia-go/pkg/session"
)

// Version information (set via ldflags).
var Version = "dev"

// App wires the gateway and the three stores. Construct one per process (or
// per test) and pass it by reference; nothing here is a package global.
type App struct {
	Gateway   *gateway.Client
	API       gateway.API
	Session   *session.Store
	Flights   *flights.Store
	Itinerary *itinerary.Store

	log   *zap.Logger
	creds credentials.Store
}

// Options tune App construction beyond what config carries.
type Options struct {
	// Logger defaults to a no-op logger.
	Logger *zap.Logger
	// Instrument wraps the gateway with tracing and metrics.
	Instrument bool
	// CredentialStore overrides the store selected by config.
	CredentialStore credentials.Store
}

// New builds an App from configuration.
func New(cfg *config.Config, opts Options) (*App, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	creds := opts.CredentialStore
	if creds == nil {
		var err error
		creds, err = newCredentialStore(cfg)
		if err != nil {
			return nil, fmt.Errorf("credential store: %w", err)
		}
	}

	client, err := gateway.New(cfg.APIBaseURL,
		gateway.WithTimeout(cfg.Timeout()),
		gateway.WithCredentialStore(creds),
		gateway.WithLogger(log.Named("gateway")),
	)
	if err != nil {
		_ = creds.Close()
		return nil, fmt.Errorf("gateway: %w", err)
	}

	var api gateway.API = client
	if opts.Instrument {
		api = gateway.WrapAPI(client)
	}

	app := &App{
		Gateway:   client,
		API:       api,
		Session:   session.New(api, session.WithLogger(log.Named("session"))),
		Flights:   flights.New(api, flights.WithLogger(log.Named("flights"))),
		Itinerary: itinerary.New(api, itinerary.WithLogger(log.Named("itinerary"))),
		log:       log,
		creds:     creds,
	}

	// Session-invalidation coordinator: a 401 from any store's call demotes
	// the session. The gateway has already cleared the token by the time
	// this fires.
	client.OnSessionInvalidated(func() {
		log.Info("session invalidated, demoting to anonymous")
		app.Session.ForceAnonymous()
	})

	return app, nil
}

func newCredentialStore(cfg *config.Config) (credentials.Store, error) {
	switch cfg.Credentials.Backend {
	case config.CredentialsFile:
		return credentials.NewFileStore(cfg.Credentials.Dir)
	case config.CredentialsRedis:
		return credentials.NewRedisStore(credentials.RedisConfig{
			Addr:     cfg.Credentials.Redis.Addr,
			Password: cfg.Credentials.Redis.Password,
			DB:       cfg.Credentials.Redis.DB,
			Prefix:   cfg.Credentials.Redis.Prefix,
			TokenTTL: time.Duration(cfg.Credentials.Redis.TokenTTLSeconds) * time.Second,
		})
	case config.CredentialsMemory:
		return credentials.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown credentials backend: %s", cfg.Credentials.Backend)
	}
}

// Close releases the credential store.
func (a *App) Close() error {
	return a.creds.Close()
}
