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
	"github.com/prometheus/client_golang/prometheus"
)

type gatewayMetrics struct {
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	reloads         *prometheus.CounterVec
}

func newGatewayMetrics(reg prometheus.Registerer) *gatewayMetrics {
	m := &gatewayMetrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portmesh_gateway_requests_total",
				Help: "Total number of HTTP requests handled by the gateway",
			},
			[]string{"method", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "portmesh_gateway_request_duration_milliseconds",
				Help:    "Request duration in milliseconds",
				Buckets: []float64{1, 2, 5, 10, 20, 50, 100, 200, 500},
			},
			[]string{"method"},
		),
		reloads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portmesh_gateway_reloads_total",
				Help: "Total number of manifest reloads triggered over HTTP",
			},
			[]string{"status"},
		),
	}

	reg.MustRegister(m.requests, m.requestDuration, m.reloads)
	return m
}
