package container

import (
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/mejova/bloggy/config"
	"github.com/mejova/bloggy/internal/session"
)

// Container carries the application's shared dependencies. It is built once
// in main and passed explicitly into the router wiring; nothing reaches for
// ambient process state.
type Container struct {
	Cfg      *config.Config
	Logger   *logrus.Logger
	PG       *pgxpool.Pool
	Redis    *redis.Client
	ES       *elasticsearch.Client // nil when Elasticsearch is not configured
	Sessions *session.Manager
}

func New(cfg *config.Config, logger *logrus.Logger, pg *pgxpool.Pool, rdb *redis.Client, es *elasticsearch.Client, sessions *session.Manager) *Container {
	return &Container{
		Cfg:      cfg,
		Logger:   logger,
		PG:       pg,
		Redis:    rdb,
		ES:       es,
		Sessions: sessions,
	}
}
