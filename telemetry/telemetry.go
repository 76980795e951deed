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

// Package telemetry forwards manifest engine events to prometheus and the
// structured logger.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"

	"portmesh/platform/shared/logger"
)

// Emitter implements the manifest engine's Telemetry interface. Every event
// becomes one prometheus counter increment and one structured log line; load
// and reload events additionally record their duration.
type Emitter struct {
	logger *logger.Logger

	events       *prometheus.CounterVec
	loadDuration prometheus.Histogram
}

// New creates an Emitter and registers its collectors on reg. Passing
// prometheus.DefaultRegisterer wires it into the default /metrics endpoint.
func New(log *logger.Logger, reg prometheus.Registerer) *Emitter {
	e := &Emitter{
		logger: log,
		events: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portmesh_manifest_events_total",
				Help: "Total number of manifest engine events by type",
			},
			[]string{"event"},
		),
		loadDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "portmesh_manifest_load_duration_milliseconds",
				Help:    "Manifest load duration in milliseconds",
				Buckets: []float64{1, 2, 5, 10, 20, 50, 100, 200, 500, 1000, 5000},
			},
		),
	}

	if reg != nil {
		reg.MustRegister(e.events, e.loadDuration)
	}
	return e
}

// Emit records an event. Measurements land in the log fields; a duration_ms
// measurement also feeds the load duration histogram.
func (e *Emitter) Emit(event string, measurements map[string]float64, metadata map[string]string) {
	e.events.WithLabelValues(event).Inc()

	if ms, ok := measurements["duration_ms"]; ok {
		e.loadDuration.Observe(ms)
	}

	if e.logger == nil {
		return
	}

	fields := make(map[string]interface{}, len(measurements)+len(metadata))
	for k, v := range measurements {
		fields[k] = v
	}
	for k, v := range metadata {
		fields[k] = v
	}

	port := metadata["port"]
	requestID := metadata["load_id"]

	if metadata["error"] != "" {
		e.logger.Error(port, requestID, event, fields)
		return
	}
	e.logger.Info(port, requestID, event, fields)
}
