// Package databasetest starts a throwaway PostgreSQL container for
// integration tests and applies the ledger migrations to it.
package databasetest

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/rs/zerolog/log"

	"github.com/polsommer/PanelHosting/pkg/database"
)

// Tables lists every ledger table in truncation order.
var Tables = []string{
	"referral_uses",
	"referral_codes",
	"purchases",
	"account_resources",
	"coupon_redemptions",
	"coupons",
	"accounts",
}

// Postgres is a running container plus a migrated pool connected to it.
type Postgres struct {
	Pool     *pgxpool.Pool
	docker   *dockertest.Pool
	resource *dockertest.Resource
}

// Start runs postgres:15-alpine, waits for it to accept connections and
// migrates it. The container is killed after two minutes even if Close is
// never called.
func Start() (*Postgres, error) {
	dp, err := dockertest.NewPool("")
	if err != nil {
		return nil, fmt.Errorf("construct docker pool: %w", err)
	}
	if err := dp.Client.Ping(); err != nil {
		return nil, fmt.Errorf("connect to docker: %w", err)
	}

	resource, err := dp.RunWithOptions(&dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "15-alpine",
		Env: []string{
			"POSTGRES_PASSWORD=testpass",
			"POSTGRES_USER=testuser",
			"POSTGRES_DB=testdb",
			"listen_addresses='*'",
		},
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		return nil, fmt.Errorf("start postgres: %w", err)
	}
	_ = resource.Expire(120)

	databaseURL := fmt.Sprintf("postgres://testuser:testpass@%s/testdb?sslmode=disable&pool_max_conns=50",
		resource.GetHostPort("5432/tcp"))
	log.Info().Str("url", databaseURL).Msg("connecting to test database")

	pg := &Postgres{docker: dp, resource: resource}
	dp.MaxWait = 120 * time.Second
	if err := dp.Retry(func() error {
		pool, err := pgxpool.New(context.Background(), databaseURL)
		if err != nil {
			return err
		}
		if err := pool.Ping(context.Background()); err != nil {
			pool.Close()
			return err
		}
		pg.Pool = pool
		return nil
	}); err != nil {
		_ = dp.Purge(resource)
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	if err := database.Migrate(context.Background(), pg.Pool); err != nil {
		pg.Close()
		return nil, err
	}
	return pg, nil
}

// Truncate empties every ledger table.
func (p *Postgres) Truncate(ctx context.Context) error {
	_, err := p.Pool.Exec(ctx, "TRUNCATE TABLE "+strings.Join(Tables, ", ")+" CASCADE")
	return err
}

// Close releases the pool and removes the container.
func (p *Postgres) Close() {
	if p.Pool != nil {
		p.Pool.Close()
	}
	if err := p.docker.Purge(p.resource); err != nil {
		log.Error().Err(err).Msg("could not purge postgres container")
	}
}
