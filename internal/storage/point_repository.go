package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/trip-board/backend/internal/storage/models"
)

// PointRepository handles database operations for waypoints.
type PointRepository struct {
	BaseRepository
}

// NewPointRepository creates a new point repository.
func NewPointRepository(db *DB) *PointRepository {
	return &PointRepository{BaseRepository: NewBaseRepository(db)}
}

const pointColumns = `id, type, destination, base_price, date_from, date_to, is_favorite`

// List retrieves all waypoints in insertion order, newest first.
func (r *PointRepository) List(ctx context.Context) ([]models.Waypoint, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+pointColumns+` FROM points ORDER BY created_at DESC, rowid DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	points := []models.Waypoint{}
	index := make(map[string]int)
	for rows.Next() {
		w, err := scanPoint(rows)
		if err != nil {
			return nil, err
		}
		index[w.ID] = len(points)
		points = append(points, w)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	offers, err := r.db.QueryContext(ctx, `
		SELECT point_id, offer_id FROM point_offers ORDER BY point_id, position
	`)
	if err != nil {
		return nil, err
	}
	defer offers.Close()

	for offers.Next() {
		var pointID, offerID string
		if err := offers.Scan(&pointID, &offerID); err != nil {
			return nil, err
		}
		if i, ok := index[pointID]; ok {
			points[i].Offers = append(points[i].Offers, offerID)
		}
	}
	return points, offers.Err()
}

// GetByID retrieves one waypoint. It returns ErrNotFound if it does not exist.
func (r *PointRepository) GetByID(ctx context.Context, id string) (*models.Waypoint, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+pointColumns+` FROM points WHERE id = ?`, id)
	w, err := scanPoint(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("point %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	offers, err := r.offersOf(ctx, r.db, id)
	if err != nil {
		return nil, err
	}
	w.Offers = offers
	return &w, nil
}

// Create inserts a waypoint and assigns its id.
func (r *PointRepository) Create(ctx context.Context, w *models.Waypoint) error {
	return r.Transaction(ctx, func(tx *sql.Tx) error {
		return r.insert(ctx, tx, w)
	})
}

func (r *PointRepository) insert(ctx context.Context, q Queryable, w *models.Waypoint) error {
	w.ID = GenerateID()
	now := r.Now()

	_, err := q.ExecContext(ctx, `
		INSERT INTO points (`+pointColumns+`, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, w.ID, w.Type, w.Destination, w.BasePrice, w.DateFrom.UTC(), w.DateTo.UTC(), w.IsFavorite, now, now)
	if err != nil {
		return fmt.Errorf("inserting point: %w", err)
	}
	return r.replaceOffers(ctx, q, w)
}

// Update replaces a waypoint. It returns ErrNotFound if it does not exist.
func (r *PointRepository) Update(ctx context.Context, w *models.Waypoint) error {
	return r.Transaction(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE points SET type = ?, destination = ?, base_price = ?, date_from = ?, date_to = ?,
				is_favorite = ?, updated_at = ?
			WHERE id = ?
		`, w.Type, w.Destination, w.BasePrice, w.DateFrom.UTC(), w.DateTo.UTC(), w.IsFavorite, r.Now(), w.ID)
		if err != nil {
			return fmt.Errorf("updating point: %w", err)
		}
		if err := mustAffect(res, "point", w.ID); err != nil {
			return err
		}
		return r.replaceOffers(ctx, tx, w)
	})
}

// Delete removes a waypoint. It returns ErrNotFound if it does not exist.
func (r *PointRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM points WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return mustAffect(res, "point", id)
}

func (r *PointRepository) replaceOffers(ctx context.Context, q Queryable, w *models.Waypoint) error {
	if _, err := q.ExecContext(ctx, `DELETE FROM point_offers WHERE point_id = ?`, w.ID); err != nil {
		return err
	}
	for i, offerID := range w.Offers {
		if _, err := q.ExecContext(ctx, `
			INSERT INTO point_offers (point_id, type, offer_id, position) VALUES (?, ?, ?, ?)
		`, w.ID, w.Type, offerID, i); err != nil {
			return fmt.Errorf("attaching offer %s: %w", offerID, err)
		}
	}
	return nil
}

func (r *PointRepository) offersOf(ctx context.Context, q Queryable, id string) ([]string, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT offer_id FROM point_offers WHERE point_id = ? ORDER BY position
	`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	offers := []string{}
	for rows.Next() {
		var offerID string
		if err := rows.Scan(&offerID); err != nil {
			return nil, err
		}
		offers = append(offers, offerID)
	}
	return offers, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPoint(s scanner) (models.Waypoint, error) {
	var w models.Waypoint
	err := s.Scan(&w.ID, &w.Type, &w.Destination, &w.BasePrice, &w.DateFrom, &w.DateTo, &w.IsFavorite)
	w.Offers = []string{}
	return w, err
}
