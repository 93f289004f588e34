package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/musterhq/muster/internal/domain"
	"github.com/musterhq/muster/internal/store"
	"github.com/musterhq/muster/pkg/idx"
	"github.com/musterhq/muster/pkg/tokenx"
)

var (
	// ErrRosterNotFound covers both a missing roster and a roster the actor
	// may not see, so non-owners cannot probe for ids.
	ErrRosterNotFound = errors.New("roster not found")

	ErrInvalidRoster = errors.New("invalid roster")
	ErrInvalidUnit   = errors.New("invalid unit")
)

// ArmyService manages rosters and their units. Every operation takes the
// acting identity: players see only their own rosters, admins see all.
type ArmyService struct {
	Store store.Store
}

// ArmyInput carries the caller-settable roster fields.
type ArmyInput struct {
	Name        string
	Faction     string
	PointsLimit int
	Goal        string
}

// UnitInput carries the caller-settable unit fields.
type UnitInput struct {
	Name    string
	Points  int
	Weapons []string
	Perks   []string
}

func (in ArmyInput) validate() error {
	if in.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidRoster)
	}
	if in.PointsLimit < 0 {
		return fmt.Errorf("%w: points limit cannot be negative", ErrInvalidRoster)
	}
	return nil
}

func (in UnitInput) validate() error {
	if in.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidUnit)
	}
	if in.Points < 0 {
		return fmt.Errorf("%w: points cannot be negative", ErrInvalidUnit)
	}
	return nil
}

// CreateArmy creates a roster owned by the actor.
func (s *ArmyService) CreateArmy(ctx context.Context, actor tokenx.Identity, in ArmyInput) (domain.Army, error) {
	if err := in.validate(); err != nil {
		return domain.Army{}, err
	}

	a := domain.Army{
		ID:          idx.New().String(),
		OwnerID:     actor.ID,
		Name:        in.Name,
		Faction:     in.Faction,
		PointsLimit: in.PointsLimit,
		Goal:        in.Goal,
	}
	if err := s.Store.Armies().CreateArmy(ctx, a); err != nil {
		return domain.Army{}, err
	}
	return s.Store.Armies().GetArmyByID(ctx, a.ID)
}

// GetArmy returns a roster visible to the actor.
func (s *ArmyService) GetArmy(ctx context.Context, actor tokenx.Identity, armyID string) (domain.Army, error) {
	return s.visibleArmy(ctx, s.Store, actor, armyID)
}

// ListArmies returns the actor's rosters, or every roster for admins.
func (s *ArmyService) ListArmies(ctx context.Context, actor tokenx.Identity) ([]domain.Army, error) {
	if actor.Role == tokenx.RoleAdmin {
		return s.Store.Armies().ListArmies(ctx)
	}
	return s.Store.Armies().ListArmiesByOwner(ctx, actor.ID)
}

// UpdateArmy replaces the caller-settable fields of a visible roster.
func (s *ArmyService) UpdateArmy(ctx context.Context, actor tokenx.Identity, armyID string, in ArmyInput) (domain.Army, error) {
	if err := in.validate(); err != nil {
		return domain.Army{}, err
	}

	a, err := s.visibleArmy(ctx, s.Store, actor, armyID)
	if err != nil {
		return domain.Army{}, err
	}

	a.Name = in.Name
	a.Faction = in.Faction
	a.PointsLimit = in.PointsLimit
	a.Goal = in.Goal

	if err := s.Store.Armies().UpdateArmy(ctx, a); err != nil {
		return domain.Army{}, err
	}
	return s.Store.Armies().GetArmyByID(ctx, armyID)
}

// DeleteArmy removes a visible roster; units cascade in the schema.
func (s *ArmyService) DeleteArmy(ctx context.Context, actor tokenx.Identity, armyID string) error {
	if _, err := s.visibleArmy(ctx, s.Store, actor, armyID); err != nil {
		return err
	}
	return s.Store.Armies().DeleteArmy(ctx, armyID)
}

// AddUnit appends a unit to a visible roster. The ownership check and the
// insert run in one transaction so the roster cannot vanish in between.
func (s *ArmyService) AddUnit(ctx context.Context, actor tokenx.Identity, armyID string, in UnitInput) (domain.Unit, error) {
	if err := in.validate(); err != nil {
		return domain.Unit{}, err
	}

	u := domain.Unit{
		ID:      idx.New().String(),
		ArmyID:  armyID,
		Name:    in.Name,
		Points:  in.Points,
		Weapons: in.Weapons,
		Perks:   in.Perks,
	}

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if _, err := s.visibleArmy(ctx, tx, actor, armyID); err != nil {
			return err
		}
		return tx.Units().CreateUnit(ctx, u)
	})
	if err != nil {
		return domain.Unit{}, err
	}

	return s.Store.Units().GetUnitByID(ctx, u.ID)
}

// ListUnits returns the units of a visible roster.
func (s *ArmyService) ListUnits(ctx context.Context, actor tokenx.Identity, armyID string) ([]domain.Unit, error) {
	if _, err := s.visibleArmy(ctx, s.Store, actor, armyID); err != nil {
		return nil, err
	}
	return s.Store.Units().ListUnitsByArmy(ctx, armyID)
}

// UpdateUnit replaces the caller-settable fields of a unit in a visible
// roster.
func (s *ArmyService) UpdateUnit(ctx context.Context, actor tokenx.Identity, armyID, unitID string, in UnitInput) (domain.Unit, error) {
	if err := in.validate(); err != nil {
		return domain.Unit{}, err
	}

	u, err := s.visibleUnit(ctx, actor, armyID, unitID)
	if err != nil {
		return domain.Unit{}, err
	}

	u.Name = in.Name
	u.Points = in.Points
	u.Weapons = in.Weapons
	u.Perks = in.Perks

	if err := s.Store.Units().UpdateUnit(ctx, u); err != nil {
		return domain.Unit{}, err
	}
	return s.Store.Units().GetUnitByID(ctx, unitID)
}

// RemoveUnit deletes a unit from a visible roster.
func (s *ArmyService) RemoveUnit(ctx context.Context, actor tokenx.Identity, armyID, unitID string) error {
	if _, err := s.visibleUnit(ctx, actor, armyID, unitID); err != nil {
		return err
	}
	return s.Store.Units().DeleteUnit(ctx, unitID)
}

// visibleArmy loads a roster and applies the visibility rule: owners and
// admins only. Everything else reads as not found.
func (s *ArmyService) visibleArmy(ctx context.Context, st store.Store, actor tokenx.Identity, armyID string) (domain.Army, error) {
	a, err := st.Armies().GetArmyByID(ctx, armyID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Army{}, ErrRosterNotFound
		}
		return domain.Army{}, err
	}
	if actor.Role != tokenx.RoleAdmin && a.OwnerID != actor.ID {
		return domain.Army{}, ErrRosterNotFound
	}
	return a, nil
}

// visibleUnit loads a unit after checking the enclosing roster is visible,
// and rejects unit ids that belong to a different roster.
func (s *ArmyService) visibleUnit(ctx context.Context, actor tokenx.Identity, armyID, unitID string) (domain.Unit, error) {
	if _, err := s.visibleArmy(ctx, s.Store, actor, armyID); err != nil {
		return domain.Unit{}, err
	}

	u, err := s.Store.Units().GetUnitByID(ctx, unitID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Unit{}, ErrRosterNotFound
		}
		return domain.Unit{}, err
	}
	if u.ArmyID != armyID {
		return domain.Unit{}, ErrRosterNotFound
	}
	return u, nil
}
