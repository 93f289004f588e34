package domain

import "time"

// Army is a player-owned roster: a faction, a points budget and a campaign
// goal, with units hanging off it.
type Army struct {
	ID          string
	OwnerID     string
	Name        string
	Faction     string
	PointsLimit int
	Goal        string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Unit is a single entry in an army roster. Weapons and perks are free-form
// labels, stored space-delimited.
type Unit struct {
	ID        string
	ArmyID    string
	Name      string
	Points    int
	Weapons   []string
	Perks     []string
	CreatedAt time.Time
	UpdatedAt time.Time
}
