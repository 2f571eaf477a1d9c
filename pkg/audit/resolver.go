package audit

import (
	"github.com/arnavshah/shift-audit-go/pkg/database"
	"github.com/arnavshah/shift-audit-go/pkg/models"
	"gorm.io/gorm"
)

type shiftDay struct {
	shiftID string
	day     int
}

// AvailabilityFilter reports whether a person must be removed from the
// eligible pool of a shift on a day. A person survives resolution only if
// no filter fires.
type AvailabilityFilter func(personID, shiftID string, day int) bool

// Resolver computes per-(shift, day) capacity: the required minimum
// coverage and the people actually free to work it. It is read-only over
// the loaded rows, so resolving the same pair twice yields the same result.
type Resolver struct {
	need     map[shiftDay]int
	eligible map[shiftDay][]string
	filters  []AvailabilityFilter
}

// NewResolver indexes coverage, preallocation and exclusion rows for
// resolution. Coverage minimums for the same (shift, day) are summed and
// their people unioned without duplication.
func NewResolver(
	coverages []database.Coverage,
	links []database.CoveragePerson,
	preallocations []database.Preallocation,
	exclusions []database.Exclusion,
) *Resolver {
	r := &Resolver{
		need:     make(map[shiftDay]int),
		eligible: make(map[shiftDay][]string),
	}

	coverageKeys := make(map[uint]shiftDay, len(coverages))
	for _, c := range coverages {
		key := shiftDay{c.ShiftID, c.Day}
		coverageKeys[c.ID] = key
		r.need[key] += c.MinValue
	}

	seen := make(map[shiftDay]map[string]bool)
	for _, link := range links {
		key, ok := coverageKeys[link.CoverageID]
		if !ok {
			continue
		}
		if seen[key] == nil {
			seen[key] = make(map[string]bool)
		}
		if seen[key][link.PersonID] {
			continue
		}
		seen[key][link.PersonID] = true
		r.eligible[key] = append(r.eligible[key], link.PersonID)
	}

	r.filters = []AvailabilityFilter{
		preallocationFilter(preallocations),
		exclusionFilter(exclusions),
	}
	return r
}

// NewResolverFromStore loads the coverage, preallocation and exclusion
// tables and builds a resolver over them
func NewResolverFromStore(db *gorm.DB) (*Resolver, error) {
	var coverages []database.Coverage
	if err := db.Find(&coverages).Error; err != nil {
		return nil, err
	}
	var links []database.CoveragePerson
	if err := db.Find(&links).Error; err != nil {
		return nil, err
	}
	var preallocations []database.Preallocation
	if err := db.Find(&preallocations).Error; err != nil {
		return nil, err
	}
	var exclusions []database.Exclusion
	if err := db.Find(&exclusions).Error; err != nil {
		return nil, err
	}
	return NewResolver(coverages, links, preallocations, exclusions), nil
}

// AddFilter registers an extra availability filter applied on every
// subsequent Resolve call
func (r *Resolver) AddFilter(f AvailabilityFilter) {
	r.filters = append(r.filters, f)
}

// Resolve returns the summed minimum coverage for (shiftID, day), the
// number of people free to work it and who they are. A pair with no
// coverage rows resolves to need 0 with an empty pool.
func (r *Resolver) Resolve(shiftID string, day int) (need, available int, people []string) {
	key := shiftDay{shiftID, day}
	need = r.need[key]

	people = make([]string, 0, len(r.eligible[key]))
	for _, personID := range r.eligible[key] {
		if r.removed(personID, shiftID, day) {
			continue
		}
		people = append(people, personID)
	}
	return need, len(people), people
}

func (r *Resolver) removed(personID, shiftID string, day int) bool {
	for _, filter := range r.filters {
		if filter(personID, shiftID, day) {
			return true
		}
	}
	return false
}

// ResolveAll resolves every (shift, day) pair of the span and returns the
// per-pair capacities together with per-day totals, where a person free
// for several shifts on the same day counts once in the day total.
func (r *Resolver) ResolveAll(shiftIDs []string, numDays int) ([]models.ShiftCapacity, []int) {
	capacities := make([]models.ShiftCapacity, 0, len(shiftIDs)*numDays)
	totals := make([]int, numDays)

	for day := 0; day < numDays; day++ {
		distinct := make(map[string]bool)
		for _, shiftID := range shiftIDs {
			need, available, people := r.Resolve(shiftID, day)
			capacities = append(capacities, models.ShiftCapacity{
				Shift:     shiftID,
				Day:       day,
				Need:      need,
				Available: available,
				People:    people,
			})
			for _, personID := range people {
				distinct[personID] = true
			}
		}
		totals[day] = len(distinct)
	}
	return capacities, totals
}

// preallocationFilter removes a person whose preallocation on the day is
// anything other than a locked assignment onto the very shift under
// evaluation. A locked assignment elsewhere still removes the person: they
// are definitionally working the other shift.
func preallocationFilter(preallocations []database.Preallocation) AvailabilityFilter {
	type personDay struct {
		personID string
		day      int
	}
	byPersonDay := make(map[personDay][]database.Preallocation)
	for _, p := range preallocations {
		key := personDay{p.PersonID, p.Day}
		byPersonDay[key] = append(byPersonDay[key], p)
	}

	return func(personID, shiftID string, day int) bool {
		for _, p := range byPersonDay[personDay{personID, day}] {
			if p.Type != models.TypeAssigned || p.ShiftID != shiftID {
				return true
			}
		}
		return false
	}
}

// exclusionFilter removes a person with an exclusion row matching the
// exact (shift, person, day) triple
func exclusionFilter(exclusions []database.Exclusion) AvailabilityFilter {
	type exclusionKey struct {
		shiftID  string
		personID string
		day      int
	}
	set := make(map[exclusionKey]bool, len(exclusions))
	for _, e := range exclusions {
		set[exclusionKey{e.ShiftID, e.PersonID, e.Day}] = true
	}

	return func(personID, shiftID string, day int) bool {
		return set[exclusionKey{shiftID, personID, day}]
	}
}
