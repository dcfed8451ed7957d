package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/trip-board/backend/internal/api/middleware"
	"github.com/trip-board/backend/internal/remote"
	"github.com/trip-board/backend/internal/storage"
	"github.com/trip-board/backend/internal/storage/models"
	"github.com/trip-board/backend/internal/trip"
)

// TripRepos bundles the repositories behind the trip API.
type TripRepos struct {
	Points       *storage.PointRepository
	Destinations *storage.DestinationRepository
	Offers       *storage.OfferRepository
}

// NewTripRepos creates the trip API repositories over db.
func NewTripRepos(db *storage.DB) TripRepos {
	return TripRepos{
		Points:       storage.NewPointRepository(db),
		Destinations: storage.NewDestinationRepository(db),
		Offers:       storage.NewOfferRepository(db),
	}
}

func (t TripRepos) catalog(ctx context.Context) (*models.Catalog, error) {
	destinations, err := t.Destinations.List(ctx)
	if err != nil {
		return nil, err
	}
	groups, err := t.Offers.ListGroups(ctx)
	if err != nil {
		return nil, err
	}
	return models.NewCatalog(destinations, groups), nil
}

// ListPoints returns a handler that lists all points, newest first.
func ListPoints(repos TripRepos, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		waypoints, err := repos.Points.List(r.Context())
		if err != nil {
			logger.Error("Listing points failed", zap.Error(err))
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to list points")
			return
		}

		points := make([]remote.Point, 0, len(waypoints))
		for _, wp := range waypoints {
			points = append(points, trip.AdaptToServer(wp))
		}
		middleware.WriteJSON(w, http.StatusOK, points)
	}
}

// CreatePoint returns a handler that creates a point and answers with the
// stored copy.
func CreatePoint(repos TripRepos, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		wp, ok := decodePoint(w, r, repos)
		if !ok {
			return
		}

		if err := repos.Points.Create(r.Context(), &wp); err != nil {
			logger.Error("Creating point failed", zap.Error(err))
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to create point")
			return
		}

		middleware.WriteJSON(w, http.StatusCreated, trip.AdaptToServer(wp))
	}
}

// UpdatePoint returns a handler that replaces a point. The path id wins over
// any id in the body.
func UpdatePoint(repos TripRepos, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]

		wp, ok := decodePoint(w, r, repos)
		if !ok {
			return
		}
		wp.ID = id

		if err := repos.Points.Update(r.Context(), &wp); err != nil {
			writeRepoError(w, logger, err, "Point not found", "Failed to update point")
			return
		}

		middleware.WriteJSON(w, http.StatusOK, trip.AdaptToServer(wp))
	}
}

// DeletePoint returns a handler that deletes a point.
func DeletePoint(repos TripRepos, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]

		if err := repos.Points.Delete(r.Context(), id); err != nil {
			writeRepoError(w, logger, err, "Point not found", "Failed to delete point")
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// ListDestinations returns a handler that lists the destination table.
func ListDestinations(repos TripRepos, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		destinations, err := repos.Destinations.List(r.Context())
		if err != nil {
			logger.Error("Listing destinations failed", zap.Error(err))
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to list destinations")
			return
		}
		if destinations == nil {
			destinations = []models.Destination{}
		}
		middleware.WriteJSON(w, http.StatusOK, destinations)
	}
}

// ListOffers returns a handler that lists offers grouped by waypoint type.
func ListOffers(repos TripRepos, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		groups, err := repos.Offers.ListGroups(r.Context())
		if err != nil {
			logger.Error("Listing offers failed", zap.Error(err))
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to list offers")
			return
		}
		middleware.WriteJSON(w, http.StatusOK, groups)
	}
}

// decodePoint reads a wire point from the body and validates it against
// the reference tables. It writes the error response itself.
func decodePoint(w http.ResponseWriter, r *http.Request, repos TripRepos) (models.Waypoint, bool) {
	var p remote.Point
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Invalid request body")
		return models.Waypoint{}, false
	}

	wp, err := trip.AdaptToClient(p)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, err.Error())
		return models.Waypoint{}, false
	}

	catalog, err := repos.catalog(r.Context())
	if err != nil {
		middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to load reference data")
		return models.Waypoint{}, false
	}
	if err := wp.Validate(catalog); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, err.Error())
		return models.Waypoint{}, false
	}
	return wp, true
}

func writeRepoError(w http.ResponseWriter, logger *zap.Logger, err error, notFound, failed string) {
	if errors.Is(err, storage.ErrNotFound) {
		middleware.WriteError(w, http.StatusNotFound, middleware.ErrNotFound, notFound)
		return
	}
	logger.Error(failed, zap.Error(err))
	middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, failed)
}
