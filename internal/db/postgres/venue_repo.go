package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"Regatta/internal/core/venues"
)

type postgresVenueRepo struct {
	db *sql.DB
}

// NewVenueRepository creates a new PostgreSQL venue repository
func NewVenueRepository(db *sql.DB) venues.Repository {
	return &postgresVenueRepo{db: db}
}

const venueColumns = `id, name, country, COALESCE(region, ''), latitude, longitude, entry_fee::float8, created_at`

func (r *postgresVenueRepo) GetByID(ctx context.Context, id string) (*venues.Venue, error) {
	v, err := scanVenue(r.db.QueryRowContext(ctx,
		`SELECT `+venueColumns+` FROM sailing_venues WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, venues.ErrVenueNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get venue: %w", err)
	}
	return v, nil
}

// GetByIDs returns the venues that exist among ids, in no particular order
func (r *postgresVenueRepo) GetByIDs(ctx context.Context, ids []string) ([]*venues.Venue, error) {
	if len(ids) == 0 {
		return []*venues.Venue{}, nil
	}
	return r.query(ctx,
		`SELECT `+venueColumns+` FROM sailing_venues WHERE id = ANY($1::uuid[])`,
		pq.Array(ids))
}

// List returns venues inside the filter's box and country. Distance ordering is the service's job.
func (r *postgresVenueRepo) List(ctx context.Context, filter venues.VenueFilter) ([]*venues.Venue, error) {
	args := &queryArgs{}
	var where []string

	if filter.Country != "" {
		where = append(where, "country = "+args.add(strings.ToUpper(filter.Country)))
	}
	if b := filter.Box; b != nil {
		where = append(where, fmt.Sprintf("latitude BETWEEN %s AND %s", args.add(b.MinLat), args.add(b.MaxLat)))
		if b.MinLon <= b.MaxLon {
			where = append(where, fmt.Sprintf("longitude BETWEEN %s AND %s", args.add(b.MinLon), args.add(b.MaxLon)))
		} else {
			// Box crosses the antimeridian
			where = append(where, fmt.Sprintf("(longitude >= %s OR longitude <= %s)", args.add(b.MinLon), args.add(b.MaxLon)))
		}
	}

	query := `SELECT ` + venueColumns + ` FROM sailing_venues`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY name ASC, id ASC`

	return r.query(ctx, query, args.values...)
}

func (r *postgresVenueRepo) query(ctx context.Context, query string, args ...interface{}) ([]*venues.Venue, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query venues: %w", err)
	}
	defer closeRows(rows)

	result := []*venues.Venue{}
	for rows.Next() {
		v, err := scanVenue(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan venue: %w", err)
		}
		result = append(result, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating venues: %w", err)
	}
	return result, nil
}

func scanVenue(row rowScanner) (*venues.Venue, error) {
	var v venues.Venue
	if err := row.Scan(&v.ID, &v.Name, &v.Country, &v.Region, &v.Latitude, &v.Longitude, &v.EntryFee, &v.CreatedAt); err != nil {
		return nil, err
	}
	return &v, nil
}
