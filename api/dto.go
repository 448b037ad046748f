/*
dto.go - JSON request/response structures

PURPOSE:
  Wire-level shapes for the REST API and their conversions to and from the
  engine types. The engine speaks typed DateKeys, time.Weekday maps, and
  decimals; the wire speaks "YYYY-MM-DD" strings, weekday names, and JSON
  numbers. All translation lives here so handlers stay thin.

CONVENTIONS:
  - Dates are "YYYY-MM-DD" in the canonical timezone.
  - Weekdays are lowercase English names ("monday".."sunday").
  - Entry durations are ISO-8601 ("PT8H30M"); start/end are RFC 3339.

SEE ALSO:
  - handlers.go: The consumers of these structures
*/
package api

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/attribution-engine/engine"
)

// =============================================================================
// REQUEST SHAPES
// =============================================================================

type TimeIntervalDTO struct {
	Start    *time.Time `json:"start,omitempty"`
	End      *time.Time `json:"end,omitempty"`
	Duration string     `json:"duration,omitempty"`
}

type EntryAmountDTO struct {
	Type  string          `json:"type"`
	Value decimal.Decimal `json:"value"`
}

type TimeEntryDTO struct {
	ID           string           `json:"id"`
	UserID       string           `json:"userId"`
	UserName     string           `json:"userName,omitempty"`
	Type         string           `json:"type,omitempty"`
	TimeInterval TimeIntervalDTO  `json:"timeInterval"`
	Billable     bool             `json:"billable"`
	HourlyRate   decimal.Decimal  `json:"hourlyRate"`
	EarnedRate   decimal.Decimal  `json:"earnedRate"`
	CostRate     decimal.Decimal  `json:"costRate"`
	Amounts      []EntryAmountDTO `json:"amounts,omitempty"`
}

type ConfigDTO struct {
	OvertimeBasis         string          `json:"overtimeBasis"`
	DailyThresholdHours   decimal.Decimal `json:"dailyThresholdHours"`
	WeeklyThresholdHours  decimal.Decimal `json:"weeklyThresholdHours"`
	OvertimeMultiplier    decimal.Decimal `json:"overtimeMultiplier"`
	Tier2ThresholdHours   decimal.Decimal `json:"tier2ThresholdHours"`
	Tier2Multiplier       decimal.Decimal `json:"tier2Multiplier"`
	UseProfileCapacity    bool            `json:"useProfileCapacity"`
	UseProfileWorkingDays bool            `json:"useProfileWorkingDays"`
	ApplyHolidays         bool            `json:"applyHolidays"`
	ApplyTimeOff          bool            `json:"applyTimeOff"`
}

type OverrideValuesDTO struct {
	Capacity        *decimal.Decimal `json:"capacity,omitempty"`
	Multiplier      *decimal.Decimal `json:"multiplier,omitempty"`
	Tier2Threshold  *decimal.Decimal `json:"tier2Threshold,omitempty"`
	Tier2Multiplier *decimal.Decimal `json:"tier2Multiplier,omitempty"`
}

type OverrideDTO struct {
	Mode            string                       `json:"mode"`
	Capacity        *decimal.Decimal             `json:"capacity,omitempty"`
	Multiplier      *decimal.Decimal             `json:"multiplier,omitempty"`
	Tier2Threshold  *decimal.Decimal             `json:"tier2Threshold,omitempty"`
	Tier2Multiplier *decimal.Decimal             `json:"tier2Multiplier,omitempty"`
	WeeklyOverrides map[string]OverrideValuesDTO `json:"weeklyOverrides,omitempty"`
	PerDayOverrides map[string]OverrideValuesDTO `json:"perDayOverrides,omitempty"`
}

type ProfileDTO struct {
	UserID            string           `json:"userId"`
	Name              string           `json:"name,omitempty"`
	WorkCapacityHours *decimal.Decimal `json:"workCapacityHours,omitempty"`
	WorkingDays       []string         `json:"workingDays,omitempty"`
}

type HolidayDTO struct {
	UserID string `json:"userId"`
	Date   string `json:"date"`
	Name   string `json:"name"`
}

type TimeOffDTO struct {
	UserID    string          `json:"userId"`
	Date      string          `json:"date"`
	Hours     decimal.Decimal `json:"hours"`
	IsFullDay bool            `json:"isFullDay"`
}

type DateRangeDTO struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// AnalysisRequest is the stateless run: everything in the body.
type AnalysisRequest struct {
	Entries   []TimeEntryDTO         `json:"entries"`
	Config    *ConfigDTO             `json:"config,omitempty"`
	DateRange DateRangeDTO           `json:"dateRange"`
	TimeZone  string                 `json:"timeZone,omitempty"`
	Profiles  []ProfileDTO           `json:"profiles,omitempty"`
	Overrides map[string]OverrideDTO `json:"overrides,omitempty"`
	Holidays  []HolidayDTO           `json:"holidays,omitempty"`
	TimeOff   []TimeOffDTO           `json:"timeOff,omitempty"`
}

// RunRequest is the store-backed run: entries only, schedule data loaded
// from the workspace store.
type RunRequest struct {
	Entries   []TimeEntryDTO `json:"entries"`
	DateRange DateRangeDTO   `json:"dateRange"`
	TimeZone  string         `json:"timeZone,omitempty"`
}

// =============================================================================
// RESPONSE SHAPES
// =============================================================================

type MoneyDTO struct {
	Earned decimal.Decimal `json:"earned"`
	Cost   decimal.Decimal `json:"cost"`
	Profit decimal.Decimal `json:"profit"`
}

type DayContextDTO struct {
	Date                string          `json:"date"`
	CapacityHours       decimal.Decimal `json:"capacityHours"`
	Multiplier          decimal.Decimal `json:"multiplier"`
	Tier2ThresholdHours decimal.Decimal `json:"tier2ThresholdHours"`
	Tier2Multiplier     decimal.Decimal `json:"tier2Multiplier"`
	IsHoliday           bool            `json:"isHoliday"`
	HolidayName         string          `json:"holidayName,omitempty"`
	IsNonWorkingDay     bool            `json:"isNonWorkingDay"`
	IsTimeOffDay        bool            `json:"isTimeOffDay"`
	TimeOffHours        decimal.Decimal `json:"timeOffHours"`
}

type AttributedEntryDTO struct {
	ID             string          `json:"id"`
	Type           string          `json:"type"`
	Billable       bool            `json:"billable"`
	Hours          decimal.Decimal `json:"hours"`
	Regular        decimal.Decimal `json:"regular"`
	Overtime       decimal.Decimal `json:"overtime"`
	DailyOvertime  decimal.Decimal `json:"dailyOvertime"`
	WeeklyOvertime decimal.Decimal `json:"weeklyOvertime"`
}

type DayResultDTO struct {
	Context            DayContextDTO        `json:"context"`
	Entries            []AttributedEntryDTO `json:"entries,omitempty"`
	Total              decimal.Decimal      `json:"total"`
	Worked             decimal.Decimal      `json:"worked"`
	Regular            decimal.Decimal      `json:"regular"`
	Overtime           decimal.Decimal      `json:"overtime"`
	DailyOvertime      decimal.Decimal      `json:"dailyOvertime"`
	WeeklyOvertime     decimal.Decimal      `json:"weeklyOvertime"`
	VacationEntryHours decimal.Decimal      `json:"vacationEntryHours"`
	Breaks             decimal.Decimal      `json:"breaks"`
	BillableHours      decimal.Decimal      `json:"billableHours"`
	NonBillableHours   decimal.Decimal      `json:"nonBillableHours"`
	Money              MoneyDTO             `json:"money"`
}

type TotalsDTO struct {
	Total              decimal.Decimal `json:"total"`
	Worked             decimal.Decimal `json:"worked"`
	Regular            decimal.Decimal `json:"regular"`
	Overtime           decimal.Decimal `json:"overtime"`
	DailyOvertime      decimal.Decimal `json:"dailyOvertime"`
	WeeklyOvertime     decimal.Decimal `json:"weeklyOvertime"`
	OverlapOvertime    decimal.Decimal `json:"overlapOvertime"`
	CombinedOvertime   decimal.Decimal `json:"combinedOvertime"`
	VacationEntryHours decimal.Decimal `json:"vacationEntryHours"`
	Breaks             decimal.Decimal `json:"breaks"`
	BillableHours      decimal.Decimal `json:"billableHours"`
	NonBillableHours   decimal.Decimal `json:"nonBillableHours"`
	Money              MoneyDTO        `json:"money"`
}

type UserAnalysisDTO struct {
	UserID   string                  `json:"userId"`
	UserName string                  `json:"userName"`
	Days     map[string]DayResultDTO `json:"days"`
	Totals   TotalsDTO               `json:"totals"`
}

type AnalysisResponse struct {
	Users []UserAnalysisDTO `json:"users"`
}

// =============================================================================
// REQUEST -> ENGINE CONVERSIONS
// =============================================================================

var weekdayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

func parseWeekday(name string) (time.Weekday, error) {
	if wd, ok := weekdayNames[strings.ToLower(name)]; ok {
		return wd, nil
	}
	return 0, fmt.Errorf("unknown weekday %q", name)
}

func loadLocation(name string) (*time.Location, error) {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("unknown time zone %q", name)
	}
	return loc, nil
}

func (d TimeEntryDTO) toEngine() engine.TimeEntry {
	e := engine.TimeEntry{
		ID:         d.ID,
		UserID:     engine.UserID(d.UserID),
		UserName:   d.UserName,
		Type:       engine.EntryType(d.Type),
		Billable:   d.Billable,
		HourlyRate: d.HourlyRate,
		EarnedRate: d.EarnedRate,
		CostRate:   d.CostRate,
	}
	if d.TimeInterval.Start != nil {
		e.Interval.Start = *d.TimeInterval.Start
	}
	if d.TimeInterval.End != nil {
		e.Interval.End = *d.TimeInterval.End
	}
	e.Interval.Duration = d.TimeInterval.Duration
	for _, a := range d.Amounts {
		e.Amounts = append(e.Amounts, engine.EntryAmount{
			Type:  engine.AmountType(a.Type),
			Value: a.Value,
		})
	}
	return e
}

func entriesToEngine(dtos []TimeEntryDTO) []engine.TimeEntry {
	entries := make([]engine.TimeEntry, 0, len(dtos))
	for _, d := range dtos {
		entries = append(entries, d.toEngine())
	}
	return entries
}

func (d ConfigDTO) toEngine() engine.Config {
	return engine.Config{
		OvertimeBasis:         engine.OvertimeBasis(d.OvertimeBasis),
		DailyThresholdHours:   d.DailyThresholdHours,
		WeeklyThresholdHours:  d.WeeklyThresholdHours,
		OvertimeMultiplier:    d.OvertimeMultiplier,
		Tier2ThresholdHours:   d.Tier2ThresholdHours,
		Tier2Multiplier:       d.Tier2Multiplier,
		UseProfileCapacity:    d.UseProfileCapacity,
		UseProfileWorkingDays: d.UseProfileWorkingDays,
		ApplyHolidays:         d.ApplyHolidays,
		ApplyTimeOff:          d.ApplyTimeOff,
	}
}

func configToDTO(cfg engine.Config) ConfigDTO {
	return ConfigDTO{
		OvertimeBasis:         string(cfg.OvertimeBasis),
		DailyThresholdHours:   cfg.DailyThresholdHours,
		WeeklyThresholdHours:  cfg.WeeklyThresholdHours,
		OvertimeMultiplier:    cfg.OvertimeMultiplier,
		Tier2ThresholdHours:   cfg.Tier2ThresholdHours,
		Tier2Multiplier:       cfg.Tier2Multiplier,
		UseProfileCapacity:    cfg.UseProfileCapacity,
		UseProfileWorkingDays: cfg.UseProfileWorkingDays,
		ApplyHolidays:         cfg.ApplyHolidays,
		ApplyTimeOff:          cfg.ApplyTimeOff,
	}
}

func (d OverrideValuesDTO) toEngine() engine.OverrideValues {
	return engine.OverrideValues{
		Capacity:        d.Capacity,
		Multiplier:      d.Multiplier,
		Tier2Threshold:  d.Tier2Threshold,
		Tier2Multiplier: d.Tier2Multiplier,
	}
}

func (d OverrideDTO) toEngine() (engine.Override, error) {
	ov := engine.Override{
		Mode: engine.OverrideMode(d.Mode),
		Global: engine.OverrideValues{
			Capacity:        d.Capacity,
			Multiplier:      d.Multiplier,
			Tier2Threshold:  d.Tier2Threshold,
			Tier2Multiplier: d.Tier2Multiplier,
		},
	}
	if len(d.WeeklyOverrides) > 0 {
		ov.Weekly = make(map[time.Weekday]engine.OverrideValues, len(d.WeeklyOverrides))
		for name, values := range d.WeeklyOverrides {
			wd, err := parseWeekday(name)
			if err != nil {
				return engine.Override{}, err
			}
			ov.Weekly[wd] = values.toEngine()
		}
	}
	if len(d.PerDayOverrides) > 0 {
		ov.PerDay = make(map[engine.DateKey]engine.OverrideValues, len(d.PerDayOverrides))
		for date, values := range d.PerDayOverrides {
			key, err := engine.ParseDateKey(date)
			if err != nil {
				return engine.Override{}, err
			}
			ov.PerDay[key] = values.toEngine()
		}
	}
	return ov, nil
}

func (d ProfileDTO) toEngine() (engine.Profile, error) {
	p := engine.Profile{
		UserID:            engine.UserID(d.UserID),
		Name:              d.Name,
		WorkCapacityHours: d.WorkCapacityHours,
	}
	if len(d.WorkingDays) > 0 {
		p.WorkingDays = make(map[time.Weekday]bool, len(d.WorkingDays))
		for _, name := range d.WorkingDays {
			wd, err := parseWeekday(name)
			if err != nil {
				return engine.Profile{}, err
			}
			p.WorkingDays[wd] = true
		}
	}
	return p, nil
}

func profileToDTO(p engine.Profile) ProfileDTO {
	d := ProfileDTO{
		UserID:            string(p.UserID),
		Name:              p.Name,
		WorkCapacityHours: p.WorkCapacityHours,
	}
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		if p.WorkingDays[wd] {
			d.WorkingDays = append(d.WorkingDays, strings.ToLower(wd.String()))
		}
	}
	return d
}

func (d DateRangeDTO) toEngine() (engine.DateRange, error) {
	start, err := engine.ParseDateKey(d.Start)
	if err != nil {
		return engine.DateRange{}, err
	}
	end, err := engine.ParseDateKey(d.End)
	if err != nil {
		return engine.DateRange{}, err
	}
	return engine.DateRange{Start: start, End: end}, nil
}

// toInput assembles the full engine input from a stateless request.
func (r AnalysisRequest) toInput() (engine.Input, error) {
	rng, err := r.DateRange.toEngine()
	if err != nil {
		return engine.Input{}, err
	}

	in := engine.Input{
		Entries: entriesToEngine(r.Entries),
		Config:  engine.DefaultConfig(),
		Range:   rng,
	}
	if r.Config != nil {
		in.Config = r.Config.toEngine()
	}
	if r.TimeZone != "" {
		loc, err := loadLocation(r.TimeZone)
		if err != nil {
			return engine.Input{}, err
		}
		in.TimeZone = loc
	}

	if len(r.Profiles) > 0 {
		in.Profiles = make(engine.Profiles, len(r.Profiles))
		for _, d := range r.Profiles {
			p, err := d.toEngine()
			if err != nil {
				return engine.Input{}, err
			}
			in.Profiles[p.UserID] = p
		}
	}
	if len(r.Overrides) > 0 {
		in.Overrides = make(engine.Overrides, len(r.Overrides))
		for userID, d := range r.Overrides {
			ov, err := d.toEngine()
			if err != nil {
				return engine.Input{}, err
			}
			in.Overrides[engine.UserID(userID)] = ov
		}
	}
	if len(r.Holidays) > 0 {
		in.Holidays = make(engine.HolidayCalendar)
		for _, d := range r.Holidays {
			key, err := engine.ParseDateKey(d.Date)
			if err != nil {
				return engine.Input{}, err
			}
			uid := engine.UserID(d.UserID)
			if in.Holidays[uid] == nil {
				in.Holidays[uid] = make(map[engine.DateKey]engine.Holiday)
			}
			in.Holidays[uid][key] = engine.Holiday{Name: d.Name}
		}
	}
	if len(r.TimeOff) > 0 {
		in.TimeOff = make(engine.TimeOffCalendar)
		for _, d := range r.TimeOff {
			key, err := engine.ParseDateKey(d.Date)
			if err != nil {
				return engine.Input{}, err
			}
			uid := engine.UserID(d.UserID)
			if in.TimeOff[uid] == nil {
				in.TimeOff[uid] = make(map[engine.DateKey]engine.TimeOffDay)
			}
			in.TimeOff[uid][key] = engine.TimeOffDay{Hours: d.Hours, IsFullDay: d.IsFullDay}
		}
	}

	return in, nil
}

// =============================================================================
// ENGINE -> RESPONSE CONVERSIONS
// =============================================================================

func moneyToDTO(m engine.MoneyBreakdown) MoneyDTO {
	return MoneyDTO{Earned: m.Earned, Cost: m.Cost, Profit: m.Profit}
}

func contextToDTO(ctx engine.DayContext) DayContextDTO {
	return DayContextDTO{
		Date:                ctx.Date.String(),
		CapacityHours:       ctx.CapacityHours,
		Multiplier:          ctx.Multiplier,
		Tier2ThresholdHours: ctx.Tier2ThresholdHours,
		Tier2Multiplier:     ctx.Tier2Multiplier,
		IsHoliday:           ctx.IsHoliday,
		HolidayName:         ctx.HolidayName,
		IsNonWorkingDay:     ctx.IsNonWorkingDay,
		IsTimeOffDay:        ctx.IsTimeOffDay,
		TimeOffHours:        ctx.TimeOffHours,
	}
}

func dayToDTO(day *engine.DayResult) DayResultDTO {
	d := DayResultDTO{
		Context:            contextToDTO(day.Context),
		Total:              day.Total,
		Worked:             day.Worked,
		Regular:            day.Regular,
		Overtime:           day.Overtime,
		DailyOvertime:      day.DailyOvertime,
		WeeklyOvertime:     day.WeeklyOvertime,
		VacationEntryHours: day.VacationEntryHours,
		Breaks:             day.Breaks,
		BillableHours:      day.BillableHours,
		NonBillableHours:   day.NonBillableHours,
		Money:              moneyToDTO(day.Money),
	}
	for _, e := range day.Entries {
		d.Entries = append(d.Entries, AttributedEntryDTO{
			ID:             e.Entry.ID,
			Type:           string(e.Entry.Kind()),
			Billable:       e.Entry.Billable,
			Hours:          e.Hours,
			Regular:        e.Regular,
			Overtime:       e.Overtime,
			DailyOvertime:  e.DailyOvertime,
			WeeklyOvertime: e.WeeklyOvertime,
		})
	}
	return d
}

func analysisToResponse(results []engine.UserAnalysis) AnalysisResponse {
	resp := AnalysisResponse{Users: make([]UserAnalysisDTO, 0, len(results))}
	for i := range results {
		ua := &results[i]
		dto := UserAnalysisDTO{
			UserID:   string(ua.UserID),
			UserName: ua.UserName,
			Days:     make(map[string]DayResultDTO, len(ua.Days)),
			Totals: TotalsDTO{
				Total:              ua.Totals.Total,
				Worked:             ua.Totals.Worked,
				Regular:            ua.Totals.Regular,
				Overtime:           ua.Totals.Overtime,
				DailyOvertime:      ua.Totals.DailyOvertime,
				WeeklyOvertime:     ua.Totals.WeeklyOvertime,
				OverlapOvertime:    ua.Totals.OverlapOvertime,
				CombinedOvertime:   ua.Totals.CombinedOvertime,
				VacationEntryHours: ua.Totals.VacationEntryHours,
				Breaks:             ua.Totals.Breaks,
				BillableHours:      ua.Totals.BillableHours,
				NonBillableHours:   ua.Totals.NonBillableHours,
				Money:              moneyToDTO(ua.Totals.Money),
			},
		}
		for date, day := range ua.Days {
			dto.Days[date.String()] = dayToDTO(day)
		}
		resp.Users = append(resp.Users, dto)
	}
	return resp
}

// overrideToDTO converts back for GET endpoints.
func overrideToDTO(ov engine.Override) OverrideDTO {
	d := OverrideDTO{
		Mode:            string(ov.Mode),
		Capacity:        ov.Global.Capacity,
		Multiplier:      ov.Global.Multiplier,
		Tier2Threshold:  ov.Global.Tier2Threshold,
		Tier2Multiplier: ov.Global.Tier2Multiplier,
	}
	if len(ov.Weekly) > 0 {
		d.WeeklyOverrides = make(map[string]OverrideValuesDTO, len(ov.Weekly))
		for wd, values := range ov.Weekly {
			d.WeeklyOverrides[strings.ToLower(wd.String())] = OverrideValuesDTO{
				Capacity:        values.Capacity,
				Multiplier:      values.Multiplier,
				Tier2Threshold:  values.Tier2Threshold,
				Tier2Multiplier: values.Tier2Multiplier,
			}
		}
	}
	if len(ov.PerDay) > 0 {
		d.PerDayOverrides = make(map[string]OverrideValuesDTO, len(ov.PerDay))
		for date, values := range ov.PerDay {
			d.PerDayOverrides[date.String()] = OverrideValuesDTO{
				Capacity:        values.Capacity,
				Multiplier:      values.Multiplier,
				Tier2Threshold:  values.Tier2Threshold,
				Tier2Multiplier: values.Tier2Multiplier,
			}
		}
	}
	return d
}
