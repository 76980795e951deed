// Copyright 2025 PortMesh
// SPDX-License-Identifier: Apache-2.0

package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"portmesh/platform/ports/base"
)

// mockAdapter builds an Adapter around a sqlmock connection.
func mockAdapter(t *testing.T) (*Adapter, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	handle, err := New(nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	adapter := handle.(*Adapter)
	adapter.db = db
	adapter.table = defaultTable
	adapter.config = &base.AdapterConfig{PortName: "documents", AdapterRef: Ref}

	return adapter, mock
}

func TestAdapter_Metadata(t *testing.T) {
	handle, err := New(nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	adapter := handle.(*Adapter)

	if got := adapter.Kind(); got != "store/postgres" {
		t.Errorf("Kind() = %q, want %q", got, "store/postgres")
	}
	if got := adapter.Name(); got != "store" {
		t.Errorf("Name() before Init = %q, want %q", got, "store")
	}

	caps := adapter.Capabilities()
	expected := []string{"store", "documents"}
	if len(caps) != len(expected) {
		t.Fatalf("expected %d capabilities, got %d", len(expected), len(caps))
	}
	for i, c := range caps {
		if c != expected[i] {
			t.Errorf("capability %d: got %q, want %q", i, c, expected[i])
		}
	}
}

func TestAdapter_InitRequiresDSN(t *testing.T) {
	handle, _ := New(nil)
	adapter := handle.(*Adapter)

	err := adapter.Init(context.Background(), &base.AdapterConfig{PortName: "documents"})
	if err == nil {
		t.Fatal("expected error without dsn")
	}
	var adapterErr *base.AdapterError
	if !errors.As(err, &adapterErr) {
		t.Fatalf("expected AdapterError, got %T", err)
	}
	if adapterErr.Op != "Init" {
		t.Errorf("op = %q, want Init", adapterErr.Op)
	}
}

func TestAdapter_Put(t *testing.T) {
	adapter, mock := mockAdapter(t)

	mock.ExpectExec("INSERT INTO portmesh_documents").
		WithArgs("orders", "42", []byte(`{"total": 9}`)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := adapter.Put(context.Background(), "orders", "42", []byte(`{"total": 9}`))
	if err != nil {
		t.Fatalf("Put: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestAdapter_PutError(t *testing.T) {
	adapter, mock := mockAdapter(t)

	mock.ExpectExec("INSERT INTO portmesh_documents").
		WillReturnError(errors.New("deadlock detected"))

	err := adapter.Put(context.Background(), "orders", "42", []byte("x"))
	if err == nil {
		t.Fatal("expected error")
	}
	var adapterErr *base.AdapterError
	if !errors.As(err, &adapterErr) {
		t.Fatalf("expected AdapterError, got %T", err)
	}
	if adapterErr.Port != "documents" || adapterErr.Op != "Put" {
		t.Errorf("error = %+v, want port=documents op=Put", adapterErr)
	}
}

func TestAdapter_Fetch(t *testing.T) {
	adapter, mock := mockAdapter(t)

	rows := sqlmock.NewRows([]string{"payload"}).AddRow([]byte(`{"total": 9}`))
	mock.ExpectQuery("SELECT payload FROM portmesh_documents").
		WithArgs("orders", "42").
		WillReturnRows(rows)

	payload, err := adapter.Fetch(context.Background(), "orders", "42")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if string(payload) != `{"total": 9}` {
		t.Errorf("payload = %s", payload)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestAdapter_FetchNotFound(t *testing.T) {
	adapter, mock := mockAdapter(t)

	mock.ExpectQuery("SELECT payload FROM portmesh_documents").
		WithArgs("orders", "missing").
		WillReturnRows(sqlmock.NewRows([]string{"payload"}))

	_, err := adapter.Fetch(context.Background(), "orders", "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAdapter_Remove(t *testing.T) {
	adapter, mock := mockAdapter(t)

	mock.ExpectExec("DELETE FROM portmesh_documents").
		WithArgs("orders", "42").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := adapter.Remove(context.Background(), "orders", "42"); err != nil {
		t.Fatalf("Remove: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestAdapter_RemoveAbsent(t *testing.T) {
	adapter, mock := mockAdapter(t)

	mock.ExpectExec("DELETE FROM portmesh_documents").
		WithArgs("orders", "missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := adapter.Remove(context.Background(), "orders", "missing"); err != nil {
		t.Errorf("Remove of absent document should not error: %v", err)
	}
}

func TestAdapter_HealthCheck(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatalf("failed to create mock: %v", err)
	}
	defer db.Close()

	handle, _ := New(nil)
	adapter := handle.(*Adapter)
	adapter.db = db
	adapter.config = &base.AdapterConfig{PortName: "documents"}

	mock.ExpectPing()

	status, err := adapter.HealthCheck(context.Background())
	if err != nil {
		t.Fatalf("HealthCheck: %v", err)
	}
	if !status.Healthy {
		t.Errorf("expected healthy status, got %+v", status)
	}
	if status.Details["open_connections"] == "" {
		t.Error("expected open_connections detail")
	}
}

func TestAdapter_HealthCheckNilDB(t *testing.T) {
	handle, _ := New(nil)
	adapter := handle.(*Adapter)

	status, err := adapter.HealthCheck(context.Background())
	if err != nil {
		t.Fatalf("HealthCheck: %v", err)
	}
	if status.Healthy {
		t.Error("expected unhealthy status with nil db")
	}
	if status.Error != "database not connected" {
		t.Errorf("error = %q, want 'database not connected'", status.Error)
	}
}

func TestAdapter_CloseNilDB(t *testing.T) {
	handle, _ := New(nil)
	adapter := handle.(*Adapter)

	if err := adapter.Close(context.Background()); err != nil {
		t.Errorf("Close with nil db should not error: %v", err)
	}
}

func TestAdapter_OpsNilDB(t *testing.T) {
	handle, _ := New(nil)
	adapter := handle.(*Adapter)
	ctx := context.Background()

	if err := adapter.Put(ctx, "c", "1", nil); err == nil {
		t.Error("expected Put error with nil db")
	}
	if _, err := adapter.Fetch(ctx, "c", "1"); err == nil {
		t.Error("expected Fetch error with nil db")
	}
	if err := adapter.Remove(ctx, "c", "1"); err == nil {
		t.Error("expected Remove error with nil db")
	}
}
