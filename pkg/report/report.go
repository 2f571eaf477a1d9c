// Package report renders an audit as fixed-width text tables, the way the
// schedule is reviewed on a terminal.
package report

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/arnavshah/shift-audit-go/pkg/database"
	"github.com/arnavshah/shift-audit-go/pkg/models"
	"gorm.io/gorm"
)

const minutesPerHour = 60

// Renderer prints the audit report. It consumes only the computed audit
// result and the store's display data; a failure while drawing never
// invalidates the audit itself.
type Renderer struct {
	DB         *gorm.DB
	Out        io.Writer
	BlockWidth int
	DayWidth   int
}

// NewRenderer returns a renderer with the standard column widths
func NewRenderer(db *gorm.DB, out io.Writer) *Renderer {
	return &Renderer{DB: db, Out: out, BlockWidth: 40, DayWidth: 3}
}

// Draw prints the full report: schedule header, shift table, people table,
// the per-person day grid, the capacity section and the metrics section
func (r *Renderer) Draw(result *models.AuditResponse) error {
	r.drawSep(104)
	r.drawSchedule(result)
	r.drawSep(104)
	if err := r.drawShifts(); err != nil {
		return err
	}
	r.drawSep(104)
	if err := r.drawPeople(); err != nil {
		return err
	}
	r.drawSep(104)
	if err := r.drawTasks(result); err != nil {
		return err
	}
	r.drawSep(104)
	r.drawCapacity(result)
	r.drawSep(104)
	r.drawMetrics(result)
	return nil
}

func (r *Renderer) drawSep(size int) {
	fmt.Fprintln(r.Out, strings.Repeat("-", size))
}

// drawList prints labels at fixed block positions
func (r *Renderer) drawList(labels ...string) {
	var line strings.Builder
	for _, label := range labels {
		fmt.Fprintf(&line, "%-*s", r.BlockWidth, label)
	}
	fmt.Fprintln(r.Out, strings.TrimRight(line.String(), " "))
}

// drawIndentedList prints the first label at block width and the rest at
// the given cell width
func (r *Renderer) drawIndentedList(cellWidth int, labels ...string) {
	var line strings.Builder
	fmt.Fprintf(&line, "%-*s", r.BlockWidth, labels[0])
	for _, label := range labels[1:] {
		fmt.Fprintf(&line, "%-*s", cellWidth, label)
	}
	fmt.Fprintln(r.Out, strings.TrimRight(line.String(), " "))
}

func (r *Renderer) drawSchedule(result *models.AuditResponse) {
	r.drawList("start day", "num of days")
	r.drawList(result.Schedule.StartDay, fmt.Sprintf("%d", result.Schedule.NumOfDays))
}

// drawShifts assigns display glyphs, writes them back onto the shift rows
// and prints the shift table
func (r *Renderer) drawShifts() error {
	var shifts []database.Shift
	if err := r.DB.Order("id").Find(&shifts).Error; err != nil {
		return fmt.Errorf("load shifts: %w", err)
	}

	pseudo, err := r.pseudoGlyphs(shifts)
	if err != nil {
		return err
	}

	shiftIDs := make([]string, 0, len(shifts))
	for _, s := range shifts {
		shiftIDs = append(shiftIDs, s.ID)
	}
	glyphs, _ := AssignGlyphs(shiftIDs, pseudo, NewGlyphPool())

	r.drawList("shift id", "effective dur (h)", "display")
	for _, s := range shifts {
		glyph := glyphs[s.ID]
		if err := r.DB.Model(&database.Shift{}).Where("id = ?", s.ID).
			Update("ascii_display", glyph).Error; err != nil {
			return fmt.Errorf("store glyph for %s: %w", s.ID, err)
		}
		r.drawList(s.ID, fmt.Sprintf("%.1f", s.Duration/minutesPerHour), glyph)
	}
	return nil
}

// pseudoGlyphs maps off/holiday pseudo-shifts to their fixed glyphs, by
// label first and by the conventional OFF/HOL ids as a fallback
func (r *Renderer) pseudoGlyphs(shifts []database.Shift) (map[string]string, error) {
	var labels []database.ShiftLabel
	if err := r.DB.Find(&labels).Error; err != nil {
		return nil, fmt.Errorf("load shift labels: %w", err)
	}

	pseudo := make(map[string]string)
	for _, l := range labels {
		switch l.Label {
		case "holiday":
			pseudo[l.ShiftID] = HolidayGlyph
		case "off":
			pseudo[l.ShiftID] = OffGlyph
		}
	}
	for _, s := range shifts {
		if _, ok := pseudo[s.ID]; ok {
			continue
		}
		switch s.ID {
		case "HOL":
			pseudo[s.ID] = HolidayGlyph
		case "OFF":
			pseudo[s.ID] = OffGlyph
		}
	}
	return pseudo, nil
}

func (r *Renderer) drawPeople() error {
	var people []database.Person
	if err := r.DB.Order("id").Find(&people).Error; err != nil {
		return fmt.Errorf("load people: %w", err)
	}

	r.drawList("person id", "act rate", "target (h)", "effective (h)", "debt (h)", "nights", "weekends")
	for _, p := range people {
		r.drawList(
			p.ID,
			fmt.Sprintf("%.0f", p.ActivityRate*100),
			fmt.Sprintf("%.1f", p.TargetHours),
			fmt.Sprintf("%.1f", p.EffectiveHours),
			fmt.Sprintf("%.1f", p.DebtHours),
			fmt.Sprintf("%d", p.NightCount),
			fmt.Sprintf("%d", p.WeekendCount),
		)
	}
	return nil
}

// drawTasks prints the day header with weekend markers and one glyph row
// per person, prefixed with their hour counters
func (r *Renderer) drawTasks(result *models.AuditResponse) error {
	var schedule database.Schedule
	if err := r.DB.First(&schedule).Error; err != nil {
		return fmt.Errorf("load schedule: %w", err)
	}

	dayHeader := []string{""}
	weekendRow := []string{""}
	for day := 0; day < schedule.NumOfDays; day++ {
		dayHeader = append(dayHeader, fmt.Sprintf("%d", day))
		if isWeekend(schedule.StartDay, day) {
			weekendRow = append(weekendRow, "X")
		} else {
			weekendRow = append(weekendRow, "")
		}
	}
	r.drawIndentedList(r.DayWidth, dayHeader...)
	r.drawIndentedList(r.DayWidth, weekendRow...)
	r.drawSep(schedule.NumOfDays*r.DayWidth + r.BlockWidth)

	for _, personID := range sortedPersonIDs(result.People) {
		stats := result.People[personID]
		tasks, err := database.PersonTasks(r.DB, personID)
		if err != nil {
			return fmt.Errorf("load tasks for %s: %w", personID, err)
		}
		perDay := make([][]string, schedule.NumOfDays)
		for _, t := range tasks {
			if t.Day < 0 || t.Day >= schedule.NumOfDays {
				continue
			}
			perDay[t.Day] = append(perDay[t.Day], t.AsciiDisplay)
		}

		count := int(stats.EffectiveHours + 0.5)
		target := int(stats.TargetHours + 0.5)
		delta := count - target
		deltaLabel := fmt.Sprintf("%d", delta)
		if delta > 0 {
			deltaLabel = fmt.Sprintf("+%d", delta)
		}
		labels := []string{fmt.Sprintf("%s %d/%d (%sh)", personID, count, target, deltaLabel)}
		for _, glyphs := range perDay {
			labels = append(labels, strings.Join(glyphs, ""))
		}
		r.drawIndentedList(r.DayWidth, labels...)
	}
	r.drawSep(schedule.NumOfDays*r.DayWidth + r.BlockWidth)
	return nil
}

// drawCapacity prints one available/need row per shift plus a day total
// row counting each available person once across shifts
func (r *Renderer) drawCapacity(result *models.AuditResponse) {
	cellWidth := r.DayWidth + 1

	byShift := make(map[string][]models.ShiftCapacity)
	var shiftOrder []string
	for _, c := range result.Capacities {
		if _, seen := byShift[c.Shift]; !seen {
			shiftOrder = append(shiftOrder, c.Shift)
		}
		byShift[c.Shift] = append(byShift[c.Shift], c)
	}
	sort.Strings(shiftOrder)

	header := []string{"capacity (available/need)"}
	for day := 0; day < result.Schedule.NumOfDays; day++ {
		header = append(header, fmt.Sprintf("%d", day))
	}
	r.drawIndentedList(cellWidth, header...)

	for _, shiftID := range shiftOrder {
		labels := []string{shiftID}
		cells := make([]string, result.Schedule.NumOfDays)
		for _, c := range byShift[shiftID] {
			if c.Day < 0 || c.Day >= result.Schedule.NumOfDays {
				continue
			}
			cells[c.Day] = fmt.Sprintf("%d/%d", c.Available, c.Need)
		}
		r.drawIndentedList(cellWidth, append(labels, cells...)...)
	}

	totals := []string{"total"}
	for _, t := range result.DayTotals {
		totals = append(totals, fmt.Sprintf("%d", t))
	}
	r.drawIndentedList(cellWidth, totals...)
}

func (r *Renderer) drawMetrics(result *models.AuditResponse) {
	r.drawList("metric", "delta", "target", "score")
	drawScore := func(name string, s models.ScoreResult, withTarget bool) {
		target := ""
		if withTarget {
			target = fmt.Sprintf("%.1f", s.TotalTarget)
		}
		r.drawList(name, fmt.Sprintf("%.1f", s.TotalDelta), target, fmt.Sprintf("%.1f", s.Score))
	}
	drawScore("hours", result.HoursScore, true)
	drawScore("hours (no extremes)", result.HoursScoreTrim, true)
	drawScore("nights fairness", result.NightsScore, false)
	drawScore("nights fairness (no extremes)", result.NightsScoreTrim, false)
	drawScore("weekends fairness", result.WeekendScore, false)
	drawScore("weekends fairness (no extremes)", result.WeekendScoreTrim, false)
}

func sortedPersonIDs(people map[string]models.PersonStats) []string {
	ids := make([]string, 0, len(people))
	for id := range people {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func isWeekend(startDay string, day int) bool {
	t, err := time.Parse("2006-01-02", startDay)
	if err != nil {
		return false
	}
	weekday := t.AddDate(0, 0, day).Weekday()
	return weekday == time.Saturday || weekday == time.Sunday
}
