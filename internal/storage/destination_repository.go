package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/trip-board/backend/internal/storage/models"
)

// DestinationRepository handles database operations for destinations.
type DestinationRepository struct {
	BaseRepository
}

// NewDestinationRepository creates a new destination repository.
func NewDestinationRepository(db *DB) *DestinationRepository {
	return &DestinationRepository{BaseRepository: NewBaseRepository(db)}
}

// List retrieves all destinations with their pictures, ordered by name.
func (r *DestinationRepository) List(ctx context.Context) ([]models.Destination, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, description FROM destinations ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	destinations := []models.Destination{}
	index := make(map[string]int)
	for rows.Next() {
		var d models.Destination
		if err := rows.Scan(&d.ID, &d.Name, &d.Description); err != nil {
			return nil, err
		}
		d.Pictures = []models.Picture{}
		index[d.ID] = len(destinations)
		destinations = append(destinations, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	pics, err := r.db.QueryContext(ctx, `
		SELECT destination_id, src, description FROM destination_pictures
		ORDER BY destination_id, position
	`)
	if err != nil {
		return nil, err
	}
	defer pics.Close()

	for pics.Next() {
		var id string
		var p models.Picture
		if err := pics.Scan(&id, &p.Src, &p.Description); err != nil {
			return nil, err
		}
		if i, ok := index[id]; ok {
			destinations[i].Pictures = append(destinations[i].Pictures, p)
		}
	}

	return destinations, pics.Err()
}

// Upsert inserts or replaces a destination and its pictures.
func (r *DestinationRepository) Upsert(ctx context.Context, q Queryable, d models.Destination) error {
	if d.ID == "" {
		d.ID = GenerateID()
	}
	_, err := q.ExecContext(ctx, `
		INSERT INTO destinations (id, name, description) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name, description = excluded.description
	`, d.ID, d.Name, d.Description)
	if err != nil {
		return fmt.Errorf("upserting destination %s: %w", d.ID, err)
	}

	if _, err := q.ExecContext(ctx, `DELETE FROM destination_pictures WHERE destination_id = ?`, d.ID); err != nil {
		return err
	}
	for i, p := range d.Pictures {
		if _, err := q.ExecContext(ctx, `
			INSERT INTO destination_pictures (destination_id, position, src, description)
			VALUES (?, ?, ?, ?)
		`, d.ID, i, p.Src, p.Description); err != nil {
			return fmt.Errorf("inserting picture of %s: %w", d.ID, err)
		}
	}
	return nil
}

// Exists reports whether a destination with id exists.
func (r *DestinationRepository) Exists(ctx context.Context, id string) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx, `SELECT 1 FROM destinations WHERE id = ?`, id).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	return err == nil, err
}
