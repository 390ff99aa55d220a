// README: Searching-pool store backed by PostgreSQL.
package matching

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"wheels/internal/types"
)

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

// Searching returns users of the given role whose status is "searching", in
// the order they joined the pool.
func (s *Store) Searching(ctx context.Context, role Role) ([]TripRequest, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id::text, user_id::text, tipo_de_usuario,
		       COALESCE(pickup_address, ''), COALESCE(dropoff_address, ''),
		       pickup_lat, pickup_lng, dropoff_lat, dropoff_lng,
		       max_detour_km, available_seats, price_per_seat
		FROM searching_pool
		WHERE tipo_de_usuario = $1 AND status = 'searching'
		ORDER BY created_at, id`, string(role),
	)
	if err != nil {
		return nil, fmt.Errorf("query searching pool: %w", err)
	}
	defer rows.Close()

	var out []TripRequest
	for rows.Next() {
		var t TripRequest
		var id, userID, userType string
		if err := rows.Scan(
			&id, &userID, &userType,
			&t.PickupAddress, &t.DropoffAddress,
			&t.PickupLat, &t.PickupLng, &t.DropoffLat, &t.DropoffLng,
			&t.MaxDetourKm, &t.AvailableSeats, &t.PricePerSeat,
		); err != nil {
			return nil, fmt.Errorf("scan searching pool row: %w", err)
		}
		t.ID = types.ID(id)
		t.UserID = types.ID(userID)
		t.Role = Role(userType)
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate searching pool: %w", err)
	}
	return out, nil
}
