package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/freshmart/storefront/internal/models"
	"github.com/freshmart/storefront/internal/utils"
)

type AddressRepository interface {
	CreateAddress(ctx context.Context, address *models.Address) error
	GetAddressByID(ctx context.Context, id int64) (*models.Address, error)
	// LatestAddressForUser returns the most recently created address, or
	// sql.ErrNoRows when the account has none.
	LatestAddressForUser(ctx context.Context, userID int64) (*models.Address, error)
}

type addressRepository struct {
	DB *sql.DB
}

func NewAddressRepo(db *sql.DB) AddressRepository {
	return &addressRepository{DB: db}
}

func (r *addressRepository) CreateAddress(ctx context.Context, address *models.Address) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		INSERT INTO addresses (user_id, receiver, province, city, district, detail, phone, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		RETURNING id, created_at
	`

	return r.DB.QueryRowContext(dbCtx, query, address.UserID, address.Receiver, address.Province, address.City, address.District, address.Detail, address.Phone).Scan(&address.ID, &address.CreatedAt)
}

func (r *addressRepository) GetAddressByID(ctx context.Context, id int64) (*models.Address, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	address := &models.Address{}

	query := `
		SELECT id, user_id, receiver, province, city, district, detail, phone, created_at
		FROM addresses
		WHERE id = $1
	`

	err := r.DB.QueryRowContext(dbCtx, query, id).Scan(&address.ID, &address.UserID, &address.Receiver, &address.Province, &address.City, &address.District, &address.Detail, &address.Phone, &address.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("querying database: %w", err)
	}

	return address, nil
}

func (r *addressRepository) LatestAddressForUser(ctx context.Context, userID int64) (*models.Address, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	address := &models.Address{}

	query := `
		SELECT id, user_id, receiver, province, city, district, detail, phone, created_at
		FROM addresses
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`

	err := r.DB.QueryRowContext(dbCtx, query, userID).Scan(&address.ID, &address.UserID, &address.Receiver, &address.Province, &address.City, &address.District, &address.Detail, &address.Phone, &address.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("querying database: %w", err)
	}

	return address, nil
}
