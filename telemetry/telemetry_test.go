// Copyright 2025 PortMesh
// SPDX-License-Identifier: Apache-2.0

package telemetry

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"portmesh/platform/shared/logger"
)

func TestEmitter_CountsEvents(t *testing.T) {
	reg := prometheus.NewRegistry()
	emitter := New(nil, reg)

	emitter.Emit("manifest.loaded", map[string]float64{"duration_ms": 12}, nil)
	emitter.Emit("manifest.loaded", nil, nil)
	emitter.Emit("manifest.error", nil, map[string]string{"error": "boom"})

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}

	found := map[string]bool{}
	for _, fam := range families {
		found[fam.GetName()] = true
		if fam.GetName() == "portmesh_manifest_events_total" {
			total := 0.0
			for _, m := range fam.GetMetric() {
				total += m.GetCounter().GetValue()
			}
			if total != 3 {
				t.Errorf("events total = %v, want 3", total)
			}
		}
	}

	for _, name := range []string{
		"portmesh_manifest_events_total",
		"portmesh_manifest_load_duration_milliseconds",
	} {
		if !found[name] {
			t.Errorf("metric %s not registered", name)
		}
	}
}

func TestEmitter_LogsEvents(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter("manifest-engine", &buf)
	emitter := New(log, prometheus.NewRegistry())

	emitter.Emit("registry.register", nil, map[string]string{
		"load_id": "load-1",
		"port":    "cache",
		"adapter": "cache/redis",
	})

	var entry logger.LogEntry
	if err := json.Unmarshal([]byte(strings.TrimSpace(buf.String())), &entry); err != nil {
		t.Fatalf("parse log line: %v", err)
	}

	if entry.Level != logger.INFO {
		t.Errorf("level = %s, want INFO", entry.Level)
	}
	if entry.Message != "registry.register" {
		t.Errorf("message = %q", entry.Message)
	}
	if entry.Port != "cache" || entry.RequestID != "load-1" {
		t.Errorf("port=%q request_id=%q", entry.Port, entry.RequestID)
	}
	if entry.Fields["adapter"] != "cache/redis" {
		t.Errorf("adapter field = %v", entry.Fields["adapter"])
	}
}

func TestEmitter_ErrorEventsLogAtErrorLevel(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter("manifest-engine", &buf)
	emitter := New(log, prometheus.NewRegistry())

	emitter.Emit("manifest.error", nil, map[string]string{
		"load_id": "load-2",
		"error":   "unresolvable adapter",
	})

	var entry logger.LogEntry
	if err := json.Unmarshal([]byte(strings.TrimSpace(buf.String())), &entry); err != nil {
		t.Fatalf("parse log line: %v", err)
	}

	if entry.Level != logger.ERROR {
		t.Errorf("level = %s, want ERROR", entry.Level)
	}
	if entry.Fields["error"] != "unresolvable adapter" {
		t.Errorf("error field = %v", entry.Fields["error"])
	}
}

func TestEmitter_NilLogger(t *testing.T) {
	emitter := New(nil, prometheus.NewRegistry())
	// Must not panic without a logger.
	emitter.Emit("manifest.reload", map[string]float64{"adapters": 2}, nil)
}
