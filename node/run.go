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

// Package node boots a complete PortMesh node: registry, resolver, manifest
// engine, health loop and HTTP gateway.
package node

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	pgadapter "portmesh/platform/adapters/postgres"
	redisadapter "portmesh/platform/adapters/redis"
	"portmesh/platform/gateway"
	"portmesh/platform/manifest"
	"portmesh/platform/ports/registry"
	"portmesh/platform/shared/logger"
	"portmesh/platform/telemetry"
)

// NewResolver returns a resolver with every built-in adapter factory
// registered.
func NewResolver() *manifest.Resolver {
	r := manifest.NewResolver()
	r.RegisterFactory(redisadapter.Ref, redisadapter.New)
	r.RegisterFactory(pgadapter.Ref, pgadapter.New)
	return r
}

// Run is the exported entry point for the PortMesh node. It blocks serving
// HTTP until SIGINT or SIGTERM, then drains in-flight requests and closes
// every wired adapter via the health loop context.
//
// Environment Variables:
//
//	PORT - HTTP server port (default: 8080)
//	PORTMESH_MANIFEST - manifest path (default: portmesh.yaml)
//	PORTMESH_JWT_SECRET - enables bearer-token auth on the API when set
//	PORTMESH_HEALTH_INTERVAL - adapter health probe interval (default: 30s)
func Run() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	manifestPath := os.Getenv("PORTMESH_MANIFEST")
	if manifestPath == "" {
		manifestPath = "portmesh.yaml"
	}

	healthInterval := 30 * time.Second
	if raw := os.Getenv("PORTMESH_HEALTH_INTERVAL"); raw != "" {
		if parsed, err := time.ParseDuration(raw); err == nil {
			healthInterval = parsed
		} else {
			log.Printf("Invalid PORTMESH_HEALTH_INTERVAL %q, using %v", raw, healthInterval)
		}
	}

	engineLog := logger.New("manifest-engine")
	emitter := telemetry.New(engineLog, prometheus.DefaultRegisterer)

	reg := registry.NewWithMetrics(prometheus.DefaultRegisterer)
	resolver := NewResolver()

	engine, err := manifest.Start(manifest.Options{
		Source:    manifestPath,
		Registry:  reg,
		Resolver:  resolver,
		Telemetry: emitter,
	})
	if err != nil {
		log.Fatalf("Failed to start manifest engine: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	engine.StartHealthLoop(ctx, healthInterval)

	server := gateway.New(gateway.Options{
		Engine:    engine,
		Registry:  reg,
		JWTSecret: os.Getenv("PORTMESH_JWT_SECRET"),
		Logger:    logger.New("gateway"),
	})

	httpServer := &http.Server{
		Addr:    ":" + port,
		Handler: server.Handler(),
	}

	go func() {
		log.Printf("PortMesh node starting on port %s (manifest=%s, ports=%d)",
			port, manifestPath, reg.Count())
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutdown signal received, draining requests")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}
