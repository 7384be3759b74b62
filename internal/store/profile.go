package store

import (
	"context"

	"github.com/georgysavva/scany/v2/pgxscan"

	"team-scheduler/internal/model"
)

const profileCols = `id, full_name, avatar, role, sector_id, observations, phone`

// Profiles are read-only to the scheduling core; InsertProfile exists only
// for registration.

func (s *Store) ProfileByID(ctx context.Context, id string) (*model.Profile, error) {
	p := &model.Profile{}
	err := pgxscan.Get(ctx, s.pool, p,
		`SELECT `+profileCols+` FROM profiles WHERE id = $1`, id)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Store) Profiles(ctx context.Context) ([]model.Profile, error) {
	var out []model.Profile
	err := pgxscan.Select(ctx, s.pool, &out,
		`SELECT `+profileCols+` FROM profiles ORDER BY full_name, id`)
	return out, err
}

func (s *Store) InsertProfile(ctx context.Context, p *model.Profile) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO profiles (id, full_name, avatar, role, sector_id, observations, phone)
		 VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		p.ID, p.FullName, p.Avatar, p.Role, p.SectorID, p.Observations, p.Phone,
	)
	return err
}
