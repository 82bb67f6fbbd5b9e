package app

import (
  "fmt"
  "os"

  "github.com/gin-gonic/gin"
  "gorm.io/gorm"

  "github.com/yungbote/tripflow-backend/internal/db"
  "github.com/yungbote/tripflow-backend/internal/logger"
  "github.com/yungbote/tripflow-backend/internal/sse"
)

type App struct {
  Log      *logger.Logger
  DB       *gorm.DB
  Router   *gin.Engine
  Cfg      Config
  Repos    Repos
  Services Services
  SSEHub   *sse.SSEHub
}

func New() (*App, error) {
  logMode := os.Getenv("LOG_MODE")
  if logMode == "" {
    logMode = "development"
  }
  log, err := logger.New(logMode)
  if err != nil {
    return nil, fmt.Errorf("init logger: %w", err)
  }

  cfg := LoadConfig(log)

  pg, err := db.NewPostgresService(log)
  if err != nil {
    log.Sync()
    return nil, fmt.Errorf("init database: %w", err)
  }
  if err := pg.AutoMigrateAll(); err != nil {
    log.Sync()
    return nil, fmt.Errorf("automigrate: %w", err)
  }
  theDB := pg.DB()

  hub := sse.NewSSEHub(log)
  reposet := wireRepos(theDB, log)

  serviceset, err := wireServices(theDB, log, cfg, reposet, hub)
  if err != nil {
    log.Sync()
    return nil, err
  }

  handlerset := wireHandlers(log, serviceset, reposet, hub)
  mw := wireMiddleware(log, serviceset)
  router := wireRouter(cfg, handlerset, mw)

  return &App{
    Log:      log,
    DB:       theDB,
    Router:   router,
    Cfg:      cfg,
    Repos:    reposet,
    Services: serviceset,
    SSEHub:   hub,
  }, nil
}

func (a *App) Run(addr string) error {
  if a == nil || a.Router == nil {
    return fmt.Errorf("app not initialized")
  }
  return a.Router.Run(addr)
}

func (a *App) Close() {
  if a == nil {
    return
  }
  if a.Services.Bus != nil {
    _ = a.Services.Bus.Close()
  }
  if a.Log != nil {
    a.Log.Sync()
  }
}
