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

package manifest

import (
	"context"
	"time"

	"portmesh/platform/ports/base"
)

// healthCheckTimeout bounds a single adapter health probe.
const healthCheckTimeout = 10 * time.Second

// StartHealthLoop starts a background goroutine that periodically probes
// every wired handle implementing base.Adapter and flips the registry health
// flag accordingly. Handles without a HealthCheck are left alone. The loop
// stops when ctx is cancelled.
func (e *Engine) StartHealthLoop(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 30 * time.Second
	}

	e.logger.Printf("Starting adapter health loop (every %v)", interval)

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				e.logger.Println("Stopping adapter health loop")
				return
			case <-ticker.C:
				e.checkAll(ctx)
			}
		}
	}()
}

// checkAll probes every wired adapter once. Exposed to the loop and to tests.
func (e *Engine) checkAll(ctx context.Context) {
	e.mu.RLock()
	snapshot := make(map[string]interface{}, len(e.wiring))
	for port, w := range e.wiring {
		snapshot[port] = w.handle
	}
	e.mu.RUnlock()

	for port, handle := range snapshot {
		adapter, ok := handle.(base.Adapter)
		if !ok {
			continue
		}

		probeCtx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
		status, err := adapter.HealthCheck(probeCtx)
		cancel()

		healthy := err == nil && status != nil && status.Healthy
		if healthy {
			_ = e.registry.MarkHealthy(port)
		} else {
			if err != nil {
				e.logger.Printf("Health check failed for port '%s': %v", port, err)
			} else if status != nil && status.Error != "" {
				e.logger.Printf("Port '%s' unhealthy: %s", port, status.Error)
			}
			_ = e.registry.MarkUnhealthy(port)
		}
	}
}
