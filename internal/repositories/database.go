package repository

import (
	"database/sql"
	"fmt"

	"github.com/onlinestore/catalog-admin/internal/config"
	_ "github.com/lib/pq"
)

type Repositories struct {
	DB       *sql.DB
	Category CategoryRepository
	Product  ProductRepository
}

func New(cfg *config.Config) (*Repositories, error) {

	db, err := sql.Open("postgres", cfg.Database.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Repositories{
		DB:       db,
		Category: NewCategoryRepo(db),
		Product:  NewProductRepo(db),
	}, nil
}

func (r *Repositories) Close() error {
	return r.DB.Close()
}
