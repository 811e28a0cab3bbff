package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ClientService manages the client registry that supplies the snapshots
// embedded in quotes and orders.
type ClientService interface {
	CreateClient(ctx context.Context, name, email, phone, address, taxID string) (*Client, error)
	GetClients(ctx context.Context) ([]Client, error)
	GetClient(ctx context.Context, clientID int) (*Client, error)
	UpdateClient(ctx context.Context, clientID int, name, email, phone, address, taxID string) (*Client, error)
	DeactivateClient(ctx context.Context, clientID int) error
}

type clientService struct {
	pool *pgxpool.Pool
}

func NewClientService(pool *pgxpool.Pool) ClientService {
	return &clientService{pool: pool}
}

const clientColumns = "id, name, email, phone, address, tax_id, is_active, created_at"

func scanClient(row pgx.Row) (*Client, error) {
	var c Client
	err := row.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Address, &c.TaxID, &c.IsActive, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *clientService) CreateClient(ctx context.Context, name, email, phone, address, taxID string) (*Client, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: client name is required", ErrInvalidInput)
	}

	c, err := scanClient(s.pool.QueryRow(ctx, `
		INSERT INTO clients (name, email, phone, address, tax_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+clientColumns,
		name, email, phone, address, taxID))
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	return c, nil
}

func (s *clientService) GetClients(ctx context.Context) ([]Client, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+clientColumns+`
		FROM clients
		WHERE is_active = true
		ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query clients: %w", err)
	}
	defer rows.Close()

	var clients []Client
	for rows.Next() {
		var c Client
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Address, &c.TaxID, &c.IsActive, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan client: %w", err)
		}
		clients = append(clients, c)
	}
	return clients, nil
}

func (s *clientService) GetClient(ctx context.Context, clientID int) (*Client, error) {
	c, err := scanClient(s.pool.QueryRow(ctx,
		"SELECT "+clientColumns+" FROM clients WHERE id = $1", clientID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: client %d", ErrNotFound, clientID)
		}
		return nil, fmt.Errorf("failed to fetch client %d: %w", clientID, err)
	}
	return c, nil
}

func (s *clientService) UpdateClient(ctx context.Context, clientID int, name, email, phone, address, taxID string) (*Client, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: client name is required", ErrInvalidInput)
	}

	c, err := scanClient(s.pool.QueryRow(ctx, `
		UPDATE clients
		SET name = $1, email = $2, phone = $3, address = $4, tax_id = $5
		WHERE id = $6
		RETURNING `+clientColumns,
		name, email, phone, address, taxID, clientID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: client %d", ErrNotFound, clientID)
		}
		return nil, fmt.Errorf("failed to update client %d: %w", clientID, err)
	}
	return c, nil
}

func (s *clientService) DeactivateClient(ctx context.Context, clientID int) error {
	tag, err := s.pool.Exec(ctx, "UPDATE clients SET is_active = false WHERE id = $1", clientID)
	if err != nil {
		return fmt.Errorf("failed to deactivate client %d: %w", clientID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: client %d", ErrNotFound, clientID)
	}
	return nil
}
