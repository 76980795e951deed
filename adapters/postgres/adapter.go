// Copyright 2025 PortMesh
// SPDX-License-Identifier: Apache-2.0
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package postgres provides the PostgreSQL-backed document store adapter. It
// is registered under the reference "store/postgres" and satisfies both the
// lifecycle contract and the Store capability. Documents live in a single
// table keyed by (collection, id) with an upsert on conflict.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver

	"portmesh/platform/ports/base"
)

// Ref is the adapter reference manifests use to select this implementation.
const Ref = "store/postgres"

// ErrNotFound is returned by Fetch when no document matches.
var ErrNotFound = errors.New("document not found")

const defaultTable = "portmesh_documents"

// Adapter backs a store port with a PostgreSQL table.
type Adapter struct {
	config *base.AdapterConfig
	db     *sql.DB
	table  string
	logger *log.Logger
}

// New is the factory registered with the resolver.
func New(cfg *base.AdapterConfig) (interface{}, error) {
	return &Adapter{
		logger: log.New(os.Stdout, "[STORE_POSTGRES] ", log.LstdFlags),
	}, nil
}

// Init opens the connection pool, verifies it with a ping and ensures the
// document table exists.
func (a *Adapter) Init(ctx context.Context, cfg *base.AdapterConfig) error {
	a.config = cfg
	a.table = cfg.Setting("table", defaultTable)

	dsn := cfg.Setting("dsn", "")
	if dsn == "" {
		return base.NewAdapterError(cfg.PortName, "Init", "dsn setting required", nil)
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return base.NewAdapterError(cfg.PortName, "Init", "failed to open connection", err)
	}

	maxOpenConns := cfg.SettingInt("max_open_conns", 25)
	maxIdleConns := cfg.SettingInt("max_idle_conns", 5)
	connMaxLifetime := 5 * time.Minute
	if val := cfg.Setting("conn_max_lifetime", ""); val != "" {
		if duration, err := time.ParseDuration(val); err == nil {
			connMaxLifetime = duration
		}
	}

	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
	db.SetConnMaxLifetime(connMaxLifetime)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return base.NewAdapterError(cfg.PortName, "Init", "failed to ping database", err)
	}

	a.db = db

	if err := a.ensureTable(ctx); err != nil {
		_ = db.Close()
		a.db = nil
		return err
	}

	a.logger.Printf("Connected to PostgreSQL for port '%s' (table=%s, max_conns=%d)",
		cfg.PortName, a.table, maxOpenConns)
	return nil
}

// Close shuts the pool down.
func (a *Adapter) Close(ctx context.Context) error {
	if a.db == nil {
		return nil
	}
	if err := a.db.Close(); err != nil {
		return base.NewAdapterError(a.portName(), "Close", "failed to close connection", err)
	}
	a.logger.Printf("Disconnected from PostgreSQL for port '%s'", a.portName())
	return nil
}

// HealthCheck pings the database and reports pool statistics.
func (a *Adapter) HealthCheck(ctx context.Context) (*base.HealthStatus, error) {
	if a.db == nil {
		return &base.HealthStatus{
			Healthy:   false,
			Timestamp: time.Now(),
			Error:     "database not connected",
		}, nil
	}

	start := time.Now()
	err := a.db.PingContext(ctx)
	latency := time.Since(start)

	if err != nil {
		return &base.HealthStatus{
			Healthy:   false,
			Latency:   latency,
			Timestamp: time.Now(),
			Error:     err.Error(),
		}, nil
	}

	stats := a.db.Stats()
	return &base.HealthStatus{
		Healthy:   true,
		Latency:   latency,
		Timestamp: time.Now(),
		Details: map[string]string{
			"open_connections": fmt.Sprintf("%d", stats.OpenConnections),
			"in_use":           fmt.Sprintf("%d", stats.InUse),
			"idle":             fmt.Sprintf("%d", stats.Idle),
		},
	}, nil
}

// Name returns the port this adapter instance backs.
func (a *Adapter) Name() string {
	return a.portName()
}

// Kind returns the adapter reference.
func (a *Adapter) Kind() string {
	return Ref
}

// Capabilities returns the capability tags of this adapter.
func (a *Adapter) Capabilities() []string {
	return []string{"store", "documents"}
}

// Put stores a document, replacing any existing payload for the same
// (collection, id).
func (a *Adapter) Put(ctx context.Context, collection, id string, payload []byte) error {
	if a.db == nil {
		return base.NewAdapterError(a.portName(), "Put", "database not connected", nil)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (collection, id, payload, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (collection, id)
		DO UPDATE SET payload = EXCLUDED.payload, updated_at = NOW()`, a.table)

	if _, err := a.db.ExecContext(ctx, query, collection, id, payload); err != nil {
		return base.NewAdapterError(a.portName(), "Put", "upsert failed", err)
	}
	return nil
}

// Fetch retrieves a document payload. Returns ErrNotFound when absent.
func (a *Adapter) Fetch(ctx context.Context, collection, id string) ([]byte, error) {
	if a.db == nil {
		return nil, base.NewAdapterError(a.portName(), "Fetch", "database not connected", nil)
	}

	query := fmt.Sprintf("SELECT payload FROM %s WHERE collection = $1 AND id = $2", a.table)

	var payload []byte
	err := a.db.QueryRowContext(ctx, query, collection, id).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, base.NewAdapterError(a.portName(), "Fetch", "select failed", err)
	}
	return payload, nil
}

// Remove deletes a document. Removing an absent document is not an error.
func (a *Adapter) Remove(ctx context.Context, collection, id string) error {
	if a.db == nil {
		return base.NewAdapterError(a.portName(), "Remove", "database not connected", nil)
	}

	query := fmt.Sprintf("DELETE FROM %s WHERE collection = $1 AND id = $2", a.table)

	if _, err := a.db.ExecContext(ctx, query, collection, id); err != nil {
		return base.NewAdapterError(a.portName(), "Remove", "delete failed", err)
	}
	return nil
}

func (a *Adapter) ensureTable(ctx context.Context) error {
	ddl := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			collection TEXT NOT NULL,
			id TEXT NOT NULL,
			payload BYTEA NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (collection, id)
		)`, a.table)

	if _, err := a.db.ExecContext(ctx, ddl); err != nil {
		return base.NewAdapterError(a.portName(), "Init", "failed to ensure document table", err)
	}
	return nil
}

func (a *Adapter) portName() string {
	if a.config != nil {
		return a.config.PortName
	}
	return "store"
}
