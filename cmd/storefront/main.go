// Command storefront is a terminal front end over the GreenThumb client
// layer: browsing, cart operations, login/onboarding, and the admin CRUD
// screens.
package main

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"greenthumb/internal/api"
	"greenthumb/internal/auth"
	"greenthumb/internal/cart"
	"greenthumb/internal/catalog"
	"greenthumb/internal/config"
	"greenthumb/internal/identity"
	"greenthumb/internal/localstore"
)

type app struct {
	cfg      *config.Config
	log      *zap.SugaredLogger
	store    *localstore.Store
	client   *api.Client
	provider identity.Provider
	session  *auth.SessionManager
	cart     *cart.Store
	validate *validator.Validate

	categories catalog.CategoryService
	products   catalog.ProductService
	lookups    catalog.LookupService
	dashboard  catalog.DashboardService
}

func newApp() (*app, error) {
	cfg := config.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		return nil, fmt.Errorf("logger init: %w", err)
	}
	log := logger.Sugar()

	store := localstore.Open(cfg.StatePath)
	client := api.NewClient(cfg.APIBaseURL)
	provider := identity.NewAuth0Client(identity.Auth0Config{
		Domain:      cfg.Auth0Domain,
		ClientID:    cfg.Auth0ClientID,
		Audience:    cfg.Auth0Audience,
		RedirectURI: cfg.Auth0RedirectURI,
		ReturnTo:    cfg.Auth0ReturnTo,
	}, store)
	session := auth.NewSessionManager(provider, client, store, log)

	return &app{
		cfg:        cfg,
		log:        log,
		store:      store,
		client:     client,
		provider:   provider,
		session:    session,
		cart:       cart.NewStore(client, session, log),
		validate:   validator.New(),
		categories: catalog.NewCategoryService(client, session),
		products:   catalog.NewProductService(client, session),
		lookups:    catalog.NewLookupService(client),
		dashboard:  catalog.NewDashboardService(client, session),
	}, nil
}

func main() {
	a, err := newApp()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() { _ = a.log.Sync() }()

	if err := newRootCmd(a).Execute(); err != nil {
		os.Exit(1)
	}
}
