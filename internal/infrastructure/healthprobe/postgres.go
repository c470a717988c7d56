package healthprobe

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	// Registers the "postgres" driver with database/sql.
	_ "github.com/lib/pq"

	"github.com/kodflow/daemon/internal/domain/health"
	"github.com/kodflow/daemon/internal/domain/localport"
)

// PostgresProber performs the Postgres startup handshake against the
// forwarded server and succeeds once the server reaches ready-for-query.
type PostgresProber struct{}

// NewPostgresProber creates a Postgres prober.
//
// Returns:
//   - *PostgresProber: a ready-to-use prober.
func NewPostgresProber() *PostgresProber {
	return &PostgresProber{}
}

// Kind returns localport.ProbeKindPostgres.
//
// Returns:
//   - localport.ProbeKind: the kind this prober serves.
func (p *PostgresProber) Kind() localport.ProbeKind {
	return localport.ProbeKindPostgres
}

// Probe opens a short-lived connection and pings it, which drives the
// Postgres wire protocol through its startup handshake.
//
// Params:
//   - ctx: deadline-bearing context for the handshake.
//   - target: carries the local port used when spec.Postgres.Host is empty.
//   - spec: must carry Postgres config (database/user/password).
//
// Returns:
//   - health.CheckResult: success once the server acknowledges the ping.
func (p *PostgresProber) Probe(ctx context.Context, target localport.Target, spec localport.HealthCheckSpec) health.CheckResult {
	start := time.Now()
	cfg := spec.Postgres
	if cfg == nil {
		cfg = &localport.PostgresProbeConfig{}
	}
	host := cfg.Host
	if host == "" {
		host = "localhost"
	}
	port := cfg.Port
	if port == 0 {
		port = target.LocalPort
	}

	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable connect_timeout=5",
		host, port, cfg.User, cfg.Password, cfg.Database)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return health.NewFailureCheckResult(time.Since(start), "", fmt.Errorf("postgres open: %w", err))
	}
	defer func() { _ = db.Close() }()

	err = db.PingContext(ctx)
	latency := time.Since(start)
	if err != nil {
		return health.NewFailureCheckResult(latency, "", fmt.Errorf("postgres ping: %w", err))
	}
	return health.NewSuccessCheckResult(latency, "ready for query")
}

var _ localport.Prober = (*PostgresProber)(nil)
