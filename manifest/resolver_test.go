// Copyright 2025 PortMesh
// SPDX-License-Identifier: Apache-2.0

package manifest

import (
	"errors"
	"testing"

	"portmesh/platform/ports/base"
)

func TestResolver_RegisterAndResolve(t *testing.T) {
	r := NewResolver()

	r.RegisterFactory("cache/redis", func(cfg *base.AdapterConfig) (interface{}, error) {
		return "redis-handle", nil
	})

	if !r.Has("cache/redis") {
		t.Error("expected factory to be registered")
	}

	factory, err := r.Resolve("cache/redis")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	handle, err := factory(nil)
	if err != nil || handle != "redis-handle" {
		t.Errorf("factory returned (%v, %v)", handle, err)
	}
}

func TestResolver_UnknownRef(t *testing.T) {
	r := NewResolver()

	_, err := r.Resolve("store/unknown")
	var unresolvable *UnresolvableAdapterError
	if !errors.As(err, &unresolvable) {
		t.Fatalf("expected UnresolvableAdapterError, got %v", err)
	}
	if unresolvable.Ref != "store/unknown" {
		t.Errorf("ref = %q, want store/unknown", unresolvable.Ref)
	}
}

func TestResolver_Overwrite(t *testing.T) {
	r := NewResolver()

	r.RegisterFactory("x", func(*base.AdapterConfig) (interface{}, error) { return 1, nil })
	r.RegisterFactory("x", func(*base.AdapterConfig) (interface{}, error) { return 2, nil })

	factory, err := r.Resolve("x")
	if err != nil {
		t.Fatal(err)
	}
	handle, _ := factory(nil)
	if handle != 2 {
		t.Errorf("handle = %v, want the later factory", handle)
	}
}

func TestResolver_List(t *testing.T) {
	r := NewResolver()
	r.RegisterFactory("b", func(*base.AdapterConfig) (interface{}, error) { return nil, nil })
	r.RegisterFactory("a", func(*base.AdapterConfig) (interface{}, error) { return nil, nil })

	refs := r.List()
	if len(refs) != 2 || refs[0] != "a" || refs[1] != "b" {
		t.Errorf("refs = %v, want [a b]", refs)
	}
}
