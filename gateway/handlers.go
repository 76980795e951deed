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

package gateway

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"portmesh/platform/manifest"
	"portmesh/platform/ports/registry"
)

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("", "", "Error encoding response", map[string]interface{}{"error": err.Error()})
	}
}

func (s *Server) writeError(w http.ResponseWriter, message string, status int) {
	s.writeJSON(w, status, map[string]interface{}{
		"error":  message,
		"status": status,
	})
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	ports := s.registry.ListPorts()
	components := make(map[string]bool, len(ports))
	healthy := true
	for _, port := range ports {
		ok := s.registry.HealthStatus(port) == registry.Healthy
		components[port] = ok
		if !ok {
			healthy = false
		}
	}

	status := "healthy"
	code := http.StatusOK
	if !healthy {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	s.writeJSON(w, code, map[string]interface{}{
		"status":     status,
		"service":    "portmesh-gateway",
		"timestamp":  time.Now().UTC(),
		"components": components,
	})
}

func (s *Server) listPortsHandler(w http.ResponseWriter, r *http.Request) {
	// Optional capability filter
	if capability := r.URL.Query().Get("capability"); capability != "" {
		matches := s.registry.FindByCapability(capability)
		s.writeJSON(w, http.StatusOK, map[string]interface{}{
			"capability": capability,
			"matches":    matches,
			"count":      len(matches),
		})
		return
	}

	ports := s.registry.ListPorts()
	entries := make([]registry.Entry, 0, len(ports))
	for _, port := range ports {
		if entry, err := s.registry.Get(port); err == nil {
			entries = append(entries, entry)
		}
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"ports": entries,
		"count": len(entries),
	})
}

func (s *Server) getPortHandler(w http.ResponseWriter, r *http.Request) {
	port := mux.Vars(r)["port"]

	entry, err := s.registry.Get(port)
	if err != nil {
		if errors.Is(err, registry.ErrPortNotFound) {
			s.writeError(w, "port not found: "+port, http.StatusNotFound)
			return
		}
		s.writeError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	s.writeJSON(w, http.StatusOK, entry)
}

func (s *Server) portHealthHandler(w http.ResponseWriter, r *http.Request) {
	port := mux.Vars(r)["port"]

	health := s.registry.HealthStatus(port)
	if health == registry.Unknown {
		s.writeError(w, "port not found: "+port, http.StatusNotFound)
		return
	}

	code := http.StatusOK
	if health == registry.Unhealthy {
		code = http.StatusServiceUnavailable
	}

	s.writeJSON(w, code, map[string]interface{}{
		"port":   port,
		"health": health,
	})
}

func (s *Server) portMetricsHandler(w http.ResponseWriter, r *http.Request) {
	port := mux.Vars(r)["port"]

	metrics, err := s.registry.Metrics(port)
	if err != nil {
		if errors.Is(err, registry.ErrPortNotFound) {
			s.writeError(w, "port not found: "+port, http.StatusNotFound)
			return
		}
		s.writeError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"port":    port,
		"metrics": metrics,
	})
}

func (s *Server) getManifestHandler(w http.ResponseWriter, r *http.Request) {
	m := s.engine.GetManifest()
	if m == nil {
		s.writeError(w, "no manifest loaded", http.StatusNotFound)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"source":   s.engine.Source(),
		"manifest": m,
	})
}

func (s *Server) reloadManifestHandler(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	if err := s.engine.Reload(); err != nil {
		code := http.StatusUnprocessableEntity
		if errors.Is(err, manifest.ErrNoSource) {
			code = http.StatusConflict
		}
		s.metrics.reloads.WithLabelValues("error").Inc()
		s.logger.ErrorWithCode("", w.Header().Get(requestIDHeader), "Manifest reload failed",
			code, err, nil)
		s.writeError(w, "reload failed: "+err.Error(), code)
		return
	}

	s.metrics.reloads.WithLabelValues("success").Inc()

	m := s.engine.GetManifest()
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":      "reloaded",
		"version":     m.Version,
		"ports":       s.engine.Ports(),
		"duration_ms": time.Since(start).Milliseconds(),
	})
}
