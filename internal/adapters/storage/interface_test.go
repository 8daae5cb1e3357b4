package storage

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

// testTableClient runs the behaviour every TableClient implementation must share
func testTableClient(t *testing.T, newClient func(t *testing.T) TableClient) {
	ctx := context.Background()

	t.Run("OperationsBeforeCreateTable", func(t *testing.T) {
		client := newClient(t)

		_, err := client.GetEntity(ctx, "contact", "missing")
		if !errors.Is(err, ErrTableNotFound) {
			t.Errorf("GetEntity() error = %v, want ErrTableNotFound", err)
		}

		for _, err := range client.ListEntities(ctx) {
			if !errors.Is(err, ErrTableNotFound) {
				t.Errorf("ListEntities() error = %v, want ErrTableNotFound", err)
			}
		}
	})

	t.Run("CreateTableIsIdempotent", func(t *testing.T) {
		client := newClient(t)

		for i := 0; i < 2; i++ {
			if err := client.CreateTable(ctx); err != nil {
				t.Fatalf("CreateTable() call %d failed: %v", i+1, err)
			}
		}
	})

	t.Run("CreateAndGet", func(t *testing.T) {
		client := newClient(t)
		mustCreateTable(t, client)

		entity := &Entity{
			PartitionKey: "contact",
			RowKey:       "row-1",
			Properties:   map[string]any{"firstName": "Ada", "email": "ada@example.com"},
		}
		if err := client.CreateEntity(ctx, entity); err != nil {
			t.Fatalf("CreateEntity() failed: %v", err)
		}

		got, err := client.GetEntity(ctx, "contact", "row-1")
		if err != nil {
			t.Fatalf("GetEntity() failed: %v", err)
		}
		if got.PartitionKey != "contact" || got.RowKey != "row-1" {
			t.Errorf("GetEntity() keys = (%s, %s), want (contact, row-1)", got.PartitionKey, got.RowKey)
		}
		if got.StringProperty("firstName") != "Ada" {
			t.Errorf("firstName = %q, want %q", got.StringProperty("firstName"), "Ada")
		}
		if got.StringProperty("email") != "ada@example.com" {
			t.Errorf("email = %q, want %q", got.StringProperty("email"), "ada@example.com")
		}
		if got.ETag == "" {
			t.Error("ETag was not set")
		}
	})

	t.Run("CreateDuplicate", func(t *testing.T) {
		client := newClient(t)
		mustCreateTable(t, client)

		entity := &Entity{PartitionKey: "contact", RowKey: "dup"}
		if err := client.CreateEntity(ctx, entity); err != nil {
			t.Fatalf("CreateEntity() failed: %v", err)
		}

		err := client.CreateEntity(ctx, entity)
		if !IsAlreadyExists(err) {
			t.Errorf("second CreateEntity() error = %v, want already exists", err)
		}
	})

	t.Run("InvalidKeys", func(t *testing.T) {
		client := newClient(t)
		mustCreateTable(t, client)

		tests := []struct {
			name         string
			partitionKey string
			rowKey       string
		}{
			{name: "empty partition key", partitionKey: "", rowKey: "row"},
			{name: "empty row key", partitionKey: "contact", rowKey: ""},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				err := client.CreateEntity(ctx, &Entity{PartitionKey: tt.partitionKey, RowKey: tt.rowKey})
				if !errors.Is(err, ErrInvalidKey) {
					t.Errorf("CreateEntity() error = %v, want ErrInvalidKey", err)
				}
			})
		}
	})

	t.Run("UpdateReplacesProperties", func(t *testing.T) {
		client := newClient(t)
		mustCreateTable(t, client)

		original := &Entity{
			PartitionKey: "contact",
			RowKey:       "row-1",
			Properties:   map[string]any{"firstName": "Ada", "lastName": "Lovelace"},
		}
		if err := client.CreateEntity(ctx, original); err != nil {
			t.Fatalf("CreateEntity() failed: %v", err)
		}

		replacement := &Entity{
			PartitionKey: "contact",
			RowKey:       "row-1",
			Properties:   map[string]any{"firstName": "Grace"},
		}
		if err := client.UpdateEntity(ctx, replacement); err != nil {
			t.Fatalf("UpdateEntity() failed: %v", err)
		}

		got, err := client.GetEntity(ctx, "contact", "row-1")
		if err != nil {
			t.Fatalf("GetEntity() failed: %v", err)
		}
		if got.StringProperty("firstName") != "Grace" {
			t.Errorf("firstName = %q, want %q", got.StringProperty("firstName"), "Grace")
		}
		if _, ok := got.Properties["lastName"]; ok {
			t.Error("lastName survived a replace update")
		}
	})

	t.Run("UpdateMissing", func(t *testing.T) {
		client := newClient(t)
		mustCreateTable(t, client)

		err := client.UpdateEntity(ctx, &Entity{PartitionKey: "contact", RowKey: "missing"})
		if !IsNotFound(err) {
			t.Errorf("UpdateEntity() error = %v, want not found", err)
		}
	})

	t.Run("DeleteAndDeleteMissing", func(t *testing.T) {
		client := newClient(t)
		mustCreateTable(t, client)

		if err := client.CreateEntity(ctx, &Entity{PartitionKey: "contact", RowKey: "row-1"}); err != nil {
			t.Fatalf("CreateEntity() failed: %v", err)
		}
		if err := client.DeleteEntity(ctx, "contact", "row-1"); err != nil {
			t.Fatalf("DeleteEntity() failed: %v", err)
		}

		if _, err := client.GetEntity(ctx, "contact", "row-1"); !IsNotFound(err) {
			t.Errorf("GetEntity() after delete error = %v, want not found", err)
		}
		if err := client.DeleteEntity(ctx, "contact", "row-1"); !IsNotFound(err) {
			t.Errorf("second DeleteEntity() error = %v, want not found", err)
		}
	})

	t.Run("ListWhileDeleting", func(t *testing.T) {
		client := newClient(t)
		mustCreateTable(t, client)

		const total = 250
		for i := 0; i < total; i++ {
			entity := &Entity{PartitionKey: "contact", RowKey: fmt.Sprintf("row-%03d", i)}
			if err := client.CreateEntity(ctx, entity); err != nil {
				t.Fatalf("CreateEntity(%d) failed: %v", i, err)
			}
		}

		seen := 0
		for entity, err := range client.ListEntities(ctx) {
			if err != nil {
				t.Fatalf("ListEntities() failed: %v", err)
			}
			if err := client.DeleteEntity(ctx, entity.PartitionKey, entity.RowKey); err != nil {
				t.Fatalf("DeleteEntity(%s) failed: %v", entity.RowKey, err)
			}
			seen++
		}

		if seen != total {
			t.Errorf("ListEntities() yielded %d rows, want %d", seen, total)
		}

		for _, err := range client.ListEntities(ctx) {
			if err != nil {
				t.Fatalf("ListEntities() failed: %v", err)
			}
			t.Fatal("table is not empty after deleting every listed row")
		}
	})

	t.Run("ListStopsEarly", func(t *testing.T) {
		client := newClient(t)
		mustCreateTable(t, client)

		for i := 0; i < 5; i++ {
			entity := &Entity{PartitionKey: "contact", RowKey: fmt.Sprintf("row-%d", i)}
			if err := client.CreateEntity(ctx, entity); err != nil {
				t.Fatalf("CreateEntity(%d) failed: %v", i, err)
			}
		}

		seen := 0
		for _, err := range client.ListEntities(ctx) {
			if err != nil {
				t.Fatalf("ListEntities() failed: %v", err)
			}
			seen++
			if seen == 2 {
				break
			}
		}

		if seen != 2 {
			t.Errorf("consumed %d rows, want 2", seen)
		}
	})
}

func mustCreateTable(t *testing.T, client TableClient) {
	t.Helper()
	if err := client.CreateTable(context.Background()); err != nil {
		t.Fatalf("CreateTable() failed: %v", err)
	}
}
