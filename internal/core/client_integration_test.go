package core_test

import (
	"context"
	"errors"
	"testing"

	"publimar/internal/core"
)

func TestClientService_Lifecycle(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	clients := core.NewClientService(pool)
	ctx := context.Background()

	c, err := clients.CreateClient(ctx, "Panadería La Espiga", "info@laespiga.ar", "+54-11-4000-0002", "Calle Falsa 123", "30-22222222-2")
	if err != nil {
		t.Fatalf("CreateClient failed: %v", err)
	}
	if !c.IsActive {
		t.Error("New client must be active")
	}

	// Name is mandatory.
	if _, err = clients.CreateClient(ctx, "   ", "", "", "", ""); !errors.Is(err, core.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for blank name, got %v", err)
	}

	updated, err := clients.UpdateClient(ctx, c.ID, "Panadería La Espiga SRL", c.Email, c.Phone, "Av. Corrientes 500", c.TaxID)
	if err != nil {
		t.Fatalf("UpdateClient failed: %v", err)
	}
	if updated.Name != "Panadería La Espiga SRL" || updated.Address != "Av. Corrientes 500" {
		t.Errorf("Update not applied: %+v", updated)
	}

	if err := clients.DeactivateClient(ctx, c.ID); err != nil {
		t.Fatalf("DeactivateClient failed: %v", err)
	}
	list, err := clients.GetClients(ctx)
	if err != nil {
		t.Fatalf("GetClients failed: %v", err)
	}
	for _, got := range list {
		if got.ID == c.ID {
			t.Error("Deactivated client must not appear in the listing")
		}
	}

	// Direct lookup still works: old quotes reference the client by ID.
	if _, err := clients.GetClient(ctx, c.ID); err != nil {
		t.Errorf("GetClient on deactivated client failed: %v", err)
	}

	if _, err := clients.GetClient(ctx, 99999); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}
