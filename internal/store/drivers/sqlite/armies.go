package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/musterhq/muster/internal/domain"
)

type armiesRepo struct {
	q querier
}

const armyColumns = `id, owner_id, name, faction, points_limit, goal, created_at, updated_at`

func scanArmy(row interface{ Scan(...any) error }) (domain.Army, error) {
	var a domain.Army
	err := row.Scan(&a.ID, &a.OwnerID, &a.Name, &a.Faction, &a.PointsLimit, &a.Goal,
		&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return domain.Army{}, mapNotFound(err)
	}
	return a, nil
}

func collectArmies(rows *sql.Rows) ([]domain.Army, error) {
	defer rows.Close()

	var armies []domain.Army
	for rows.Next() {
		a, err := scanArmy(rows)
		if err != nil {
			return nil, err
		}
		armies = append(armies, a)
	}
	return armies, rows.Err()
}

func (r *armiesRepo) CreateArmy(ctx context.Context, a domain.Army) error {
	now := time.Now().UTC()
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO armies (id, owner_id, name, faction, points_limit, goal, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.OwnerID, a.Name, a.Faction, a.PointsLimit, a.Goal, now, now)
	return mapConstraint(err)
}

func (r *armiesRepo) GetArmyByID(ctx context.Context, id string) (domain.Army, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+armyColumns+` FROM armies WHERE id = ?`, id)
	return scanArmy(row)
}

func (r *armiesRepo) ListArmiesByOwner(ctx context.Context, ownerID string) ([]domain.Army, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+armyColumns+` FROM armies WHERE owner_id = ? ORDER BY created_at DESC`, ownerID)
	if err != nil {
		return nil, err
	}
	return collectArmies(rows)
}

func (r *armiesRepo) ListArmies(ctx context.Context) ([]domain.Army, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+armyColumns+` FROM armies ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	return collectArmies(rows)
}

func (r *armiesRepo) UpdateArmy(ctx context.Context, a domain.Army) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE armies SET name = ?, faction = ?, points_limit = ?, goal = ?, updated_at = ?
		 WHERE id = ?`,
		a.Name, a.Faction, a.PointsLimit, a.Goal, time.Now().UTC(), a.ID)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}

func (r *armiesRepo) DeleteArmy(ctx context.Context, id string) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM armies WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}
