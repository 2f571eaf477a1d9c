package audit

import (
	"fmt"

	"github.com/arnavshah/shift-audit-go/pkg/database"
	"github.com/arnavshah/shift-audit-go/pkg/models"
	"gorm.io/gorm"
)

// Run performs one full audit over an ingested store: the aggregation pass,
// coverage resolution for every (shift, day) pair and the score
// computations, both raw and with the two extreme entries removed.
func Run(db *gorm.DB) (*models.AuditResponse, error) {
	if err := Aggregate(db); err != nil {
		return nil, fmt.Errorf("aggregation pass: %w", err)
	}

	var schedule database.Schedule
	if err := db.First(&schedule).Error; err != nil {
		return nil, fmt.Errorf("load schedule: %w", err)
	}

	var people []database.Person
	if err := db.Order("id").Find(&people).Error; err != nil {
		return nil, fmt.Errorf("load people: %w", err)
	}

	var shifts []database.Shift
	if err := db.Order("id").Find(&shifts).Error; err != nil {
		return nil, fmt.Errorf("load shifts: %w", err)
	}
	shiftIDs := make([]string, 0, len(shifts))
	for _, s := range shifts {
		shiftIDs = append(shiftIDs, s.ID)
	}

	resolver, err := NewResolverFromStore(db)
	if err != nil {
		return nil, fmt.Errorf("build resolver: %w", err)
	}
	capacities, dayTotals := resolver.ResolveAll(shiftIDs, schedule.NumOfDays)

	personStats := make(map[string]models.PersonStats, len(people))
	for _, p := range people {
		personStats[p.ID] = models.PersonStats{
			ActivityRate:   p.ActivityRate,
			EffectiveHours: p.EffectiveHours,
			TargetHours:    p.TargetHours,
			HolidayHours:   p.HolidayHours,
			DebtHours:      p.DebtHours,
			NightCount:     p.NightCount,
			WeekendCount:   p.WeekendCount,
		}
	}

	pairs := PersonHoursPairs(people)
	nights := PersonNightValues(people)
	weekends := PersonWeekendValues(people)

	resp := &models.AuditResponse{
		Schedule: models.ScheduleHeader{
			StartDay:  schedule.StartDay,
			NumOfDays: schedule.NumOfDays,
		},
		People:     personStats,
		Capacities: capacities,
		DayTotals:  dayTotals,
	}
	resp.HoursScore = hoursResult(pairs)
	resp.HoursScoreTrim = hoursResult(HoursPairsWithoutExtremes(pairs))
	resp.NightsScore = fairnessResult(nights)
	resp.NightsScoreTrim = fairnessResult(WithoutExtremes(nights))
	resp.WeekendScore = fairnessResult(weekends)
	resp.WeekendScoreTrim = fairnessResult(WithoutExtremes(weekends))

	return resp, nil
}

func hoursResult(pairs []HoursPair) models.ScoreResult {
	delta, target, score := HoursScore(pairs)
	return models.ScoreResult{TotalDelta: delta, TotalTarget: target, Score: score}
}

func fairnessResult(values []float64) models.ScoreResult {
	deviation, score := FairnessScore(values)
	return models.ScoreResult{TotalDelta: deviation, Score: score}
}
