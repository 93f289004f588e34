package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/musterhq/muster/internal/domain"
)

type unitsRepo struct {
	q querier
}

const unitColumns = `id, army_id, name, points, weapons, perks, created_at, updated_at`

func scanUnit(row interface{ Scan(...any) error }) (domain.Unit, error) {
	var u domain.Unit
	var weapons, perks string
	err := row.Scan(&u.ID, &u.ArmyID, &u.Name, &u.Points, &weapons, &perks,
		&u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return domain.Unit{}, mapNotFound(err)
	}
	u.Weapons = splitLabels(weapons)
	u.Perks = splitLabels(perks)
	return u, nil
}

func (r *unitsRepo) CreateUnit(ctx context.Context, u domain.Unit) error {
	now := time.Now().UTC()
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO units (id, army_id, name, points, weapons, perks, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.ArmyID, u.Name, u.Points, joinLabels(u.Weapons), joinLabels(u.Perks), now, now)
	return mapConstraint(err)
}

func (r *unitsRepo) GetUnitByID(ctx context.Context, id string) (domain.Unit, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+unitColumns+` FROM units WHERE id = ?`, id)
	return scanUnit(row)
}

func (r *unitsRepo) ListUnitsByArmy(ctx context.Context, armyID string) ([]domain.Unit, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+unitColumns+` FROM units WHERE army_id = ? ORDER BY created_at ASC`, armyID)
	if err != nil {
		return nil, err
	}
	return collectUnits(rows)
}

func collectUnits(rows *sql.Rows) ([]domain.Unit, error) {
	defer rows.Close()

	var units []domain.Unit
	for rows.Next() {
		u, err := scanUnit(rows)
		if err != nil {
			return nil, err
		}
		units = append(units, u)
	}
	return units, rows.Err()
}

func (r *unitsRepo) UpdateUnit(ctx context.Context, u domain.Unit) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE units SET name = ?, points = ?, weapons = ?, perks = ?, updated_at = ?
		 WHERE id = ?`,
		u.Name, u.Points, joinLabels(u.Weapons), joinLabels(u.Perks), time.Now().UTC(), u.ID)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}

func (r *unitsRepo) DeleteUnit(ctx context.Context, id string) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM units WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}
