package domain

import "github.com/google/uuid"

// ScopeLevel names a jurisdiction tier.
type ScopeLevel string

const (
	ScopeAll           ScopeLevel = "all"
	ScopeRange         ScopeLevel = "range"
	ScopeDistrict      ScopeLevel = "district"
	ScopeSubDivision   ScopeLevel = "sub_division"
	ScopePoliceStation ScopeLevel = "police_station"
	ScopeBeat          ScopeLevel = "beat"
)

// Scope is an explicit tagged union replacing ad hoc per-caller jurisdiction
// filters. ID is ignored when Level is ScopeAll.
type Scope struct {
	Level ScopeLevel
	ID    uuid.UUID
}

// Jurisdiction is the set of identifiers a scope is applied against.
// Unset tiers (nil) never match a scope narrower than ScopeAll.
type Jurisdiction struct {
	RangeID         *uuid.UUID
	DistrictID      *uuid.UUID
	SubDivisionID   *uuid.UUID
	PoliceStationID *uuid.UUID
	BeatID          *uuid.UUID
}

// Allows is the single scope-application predicate.
func (s Scope) Allows(j Jurisdiction) bool {
	switch s.Level {
	case ScopeAll:
		return true
	case ScopeRange:
		return j.RangeID != nil && *j.RangeID == s.ID
	case ScopeDistrict:
		return j.DistrictID != nil && *j.DistrictID == s.ID
	case ScopeSubDivision:
		return j.SubDivisionID != nil && *j.SubDivisionID == s.ID
	case ScopePoliceStation:
		return j.PoliceStationID != nil && *j.PoliceStationID == s.ID
	case ScopeBeat:
		return j.BeatID != nil && *j.BeatID == s.ID
	default:
		return false
	}
}
