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

// Package redis provides the Redis-backed cache adapter. It is registered
// under the reference "cache/redis" and satisfies both the lifecycle contract
// and the Cache capability.
package redis

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	goredis "github.com/go-redis/redis/v8"

	"portmesh/platform/ports/base"
)

// Ref is the adapter reference manifests use to select this implementation.
const Ref = "cache/redis"

// Adapter backs a cache port with a Redis server.
type Adapter struct {
	config *base.AdapterConfig
	client *goredis.Client
	logger *log.Logger
}

// New is the factory registered with the resolver.
func New(cfg *base.AdapterConfig) (interface{}, error) {
	return &Adapter{
		logger: log.New(os.Stdout, "[CACHE_REDIS] ", log.LstdFlags),
	}, nil
}

// Init establishes the Redis connection and verifies it with a ping.
func (a *Adapter) Init(ctx context.Context, cfg *base.AdapterConfig) error {
	a.config = cfg

	host := cfg.Setting("host", "localhost")
	port := cfg.SettingInt("port", 6379)
	password := cfg.Setting("password", "")
	db := cfg.SettingInt("db", 0)
	poolSize := cfg.SettingInt("pool_size", 100)

	a.client = goredis.NewClient(&goredis.Options{
		Addr:         fmt.Sprintf("%s:%d", host, port),
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     poolSize,
		MinIdleConns: 10,
	})

	if err := a.client.Ping(ctx).Err(); err != nil {
		return base.NewAdapterError(cfg.PortName, "Init", "failed to ping Redis", err)
	}

	a.logger.Printf("Connected to Redis for port '%s' (db=%d, pool_size=%d)", cfg.PortName, db, poolSize)
	return nil
}

// Close shuts the connection pool down.
func (a *Adapter) Close(ctx context.Context) error {
	if a.client == nil {
		return nil
	}
	if err := a.client.Close(); err != nil {
		return base.NewAdapterError(a.portName(), "Close", "failed to close connection", err)
	}
	a.logger.Printf("Disconnected from Redis for port '%s'", a.portName())
	return nil
}

// HealthCheck pings the server and reports pool statistics.
func (a *Adapter) HealthCheck(ctx context.Context) (*base.HealthStatus, error) {
	if a.client == nil {
		return &base.HealthStatus{
			Healthy:   false,
			Timestamp: time.Now(),
			Error:     "client not connected",
		}, nil
	}

	start := time.Now()
	err := a.client.Ping(ctx).Err()
	latency := time.Since(start)

	if err != nil {
		return &base.HealthStatus{
			Healthy:   false,
			Latency:   latency,
			Timestamp: time.Now(),
			Error:     err.Error(),
		}, nil
	}

	dbSize := a.client.DBSize(ctx).Val()
	return &base.HealthStatus{
		Healthy:   true,
		Latency:   latency,
		Timestamp: time.Now(),
		Details: map[string]string{
			"db_size":    fmt.Sprintf("%d", dbSize),
			"pool_stats": fmt.Sprintf("%+v", a.client.PoolStats()),
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
	return []string{"cache", "kv-store"}
}

// Get retrieves a value. The boolean is false when the key is absent.
func (a *Adapter) Get(ctx context.Context, key string) (string, bool, error) {
	if a.client == nil {
		return "", false, base.NewAdapterError(a.portName(), "Get", "client not connected", nil)
	}

	val, err := a.client.Get(ctx, key).Result()
	if err == goredis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, base.NewAdapterError(a.portName(), "Get", "get failed", err)
	}
	return val, true, nil
}

// Set stores a value. A zero ttl means no expiry.
func (a *Adapter) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if a.client == nil {
		return base.NewAdapterError(a.portName(), "Set", "client not connected", nil)
	}
	if err := a.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return base.NewAdapterError(a.portName(), "Set", "set failed", err)
	}
	return nil
}

// Delete removes a key. Deleting an absent key is not an error.
func (a *Adapter) Delete(ctx context.Context, key string) error {
	if a.client == nil {
		return base.NewAdapterError(a.portName(), "Delete", "client not connected", nil)
	}
	if err := a.client.Del(ctx, key).Err(); err != nil {
		return base.NewAdapterError(a.portName(), "Delete", "delete failed", err)
	}
	return nil
}

func (a *Adapter) portName() string {
	if a.config != nil {
		return a.config.PortName
	}
	return "cache"
}
