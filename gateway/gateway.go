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

// Package gateway exposes the manifest engine and adapter registry over HTTP.
package gateway

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"portmesh/platform/manifest"
	"portmesh/platform/ports/registry"
	"portmesh/platform/shared/logger"
)

// Options configures a gateway Server.
type Options struct {
	Engine   *manifest.Engine
	Registry *registry.Registry

	// JWTSecret enables bearer-token authentication on the API routes when
	// non-empty. /health and /metrics are always open.
	JWTSecret string

	Logger *logger.Logger

	// Registerer receives the gateway's own collectors. Defaults to the
	// prometheus default registerer.
	Registerer prometheus.Registerer
}

// Server is the HTTP surface of a PortMesh node.
type Server struct {
	engine    *manifest.Engine
	registry  *registry.Registry
	jwtSecret []byte
	logger    *logger.Logger
	metrics   *gatewayMetrics
	handler   http.Handler
}

// New builds a Server with all routes wired.
func New(opts Options) *Server {
	log := opts.Logger
	if log == nil {
		log = logger.New("gateway")
	}
	registerer := opts.Registerer
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	s := &Server{
		engine:   opts.Engine,
		registry: opts.Registry,
		logger:   log,
		metrics:  newGatewayMetrics(registerer),
	}
	if opts.JWTSecret != "" {
		s.jwtSecret = []byte(opts.JWTSecret)
	}

	s.handler = s.buildRouter()
	return s
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) buildRouter() http.Handler {
	r := mux.NewRouter()

	// CORS middleware
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"}, // Configure for production
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	// Health check and prometheus metrics stay unauthenticated
	r.HandleFunc("/health", s.healthHandler).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// Port registry endpoints
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(s.authMiddleware)

	api.HandleFunc("/ports", s.listPortsHandler).Methods("GET")
	api.HandleFunc("/ports/{port}", s.getPortHandler).Methods("GET")
	api.HandleFunc("/ports/{port}/health", s.portHealthHandler).Methods("GET")
	api.HandleFunc("/ports/{port}/metrics", s.portMetricsHandler).Methods("GET")

	// Manifest endpoints
	api.HandleFunc("/manifest", s.getManifestHandler).Methods("GET")
	api.HandleFunc("/manifest/reload", s.reloadManifestHandler).Methods("POST")

	return c.Handler(s.requestMiddleware(r))
}
