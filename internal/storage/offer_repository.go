package storage

import (
	"context"
	"fmt"

	"github.com/trip-board/backend/internal/storage/models"
)

// OfferRepository handles database operations for the offer catalog.
type OfferRepository struct {
	BaseRepository
}

// NewOfferRepository creates a new offer repository.
func NewOfferRepository(db *DB) *OfferRepository {
	return &OfferRepository{BaseRepository: NewBaseRepository(db)}
}

// ListGroups retrieves the offers grouped by waypoint type. Every known
// type gets a group, possibly empty, in the canonical type order.
func (r *OfferRepository) ListGroups(ctx context.Context) ([]models.OfferGroup, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT type, id, title, price FROM offers ORDER BY type, position, id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byType := make(map[models.WaypointType][]models.Offer)
	for rows.Next() {
		var t models.WaypointType
		var o models.Offer
		if err := rows.Scan(&t, &o.ID, &o.Title, &o.Price); err != nil {
			return nil, err
		}
		byType[t] = append(byType[t], o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	groups := make([]models.OfferGroup, 0, len(models.WaypointTypes))
	for _, t := range models.WaypointTypes {
		offers := byType[t]
		if offers == nil {
			offers = []models.Offer{}
		}
		groups = append(groups, models.OfferGroup{Type: t, Offers: offers})
	}
	return groups, nil
}

// UpsertGroup inserts or replaces the offers of one type.
func (r *OfferRepository) UpsertGroup(ctx context.Context, q Queryable, g models.OfferGroup) error {
	if !g.Type.Valid() {
		return fmt.Errorf("%w: %q", models.ErrUnknownType, g.Type)
	}
	for i, o := range g.Offers {
		_, err := q.ExecContext(ctx, `
			INSERT INTO offers (type, id, title, price, position) VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(type, id) DO UPDATE SET
				title = excluded.title, price = excluded.price, position = excluded.position
		`, g.Type, o.ID, o.Title, o.Price, i)
		if err != nil {
			return fmt.Errorf("upserting offer %s/%s: %w", g.Type, o.ID, err)
		}
	}
	return nil
}
