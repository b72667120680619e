package app

import (
	"net/http"

	"rep-ledger-go/internal/config"
	"rep-ledger-go/internal/db"
	householddomain "rep-ledger-go/internal/domain/household"
	ledgerdomain "rep-ledger-go/internal/domain/ledger"
	householdrepo "rep-ledger-go/internal/repository/postgres/household"
	ledgerrepo "rep-ledger-go/internal/repository/postgres/ledger"
	"rep-ledger-go/internal/transport/httpserver"
	"rep-ledger-go/internal/transport/httpserver/handler"
	"rep-ledger-go/pkg/logger"
	"gorm.io/gorm"
)

type App struct {
	cfg        config.Config
	httpServer *http.Server
	db         *gorm.DB
}

func New(log logger.Logger) (*App, error) {
	log.Info("app: loading config")
	cfg := config.Load(log)

	log.Info("app: initializing database")
	dbConn, err := db.NewPostgres(cfg.DB, log)
	if err != nil {
		return nil, err
	}

	log.Info("app: running migrations")
	if err := db.Migrate(dbConn); err != nil {
		return nil, err
	}

	members := householdrepo.NewPostgres(dbConn)
	households := householddomain.NewService(members)
	households.Subscribe(func(event householddomain.Event) {
		log.Info("household: membership changed",
			"kind", string(event.Kind),
			"household_id", event.HouseholdID,
			"member_id", event.MemberID,
			"role", string(event.Role),
		)
	})

	ledger := ledgerdomain.NewService(ledgerrepo.NewPostgres(dbConn), members)

	handlers := handler.New(households, ledger, log)

	log.Info("app: initializing router")
	router := httpserver.NewRouter(cfg, handlers, households, log)

	log.Info("app: initializing http server")
	srv := httpserver.New(cfg, router)

	return &App{
		cfg:        cfg,
		httpServer: srv,
		db:         dbConn,
	}, nil
}

func (a *App) HTTPServer() *http.Server {
	return a.httpServer
}

func (a *App) Close() error {
	if a.db == nil {
		return nil
	}
	sqlDB, err := a.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
