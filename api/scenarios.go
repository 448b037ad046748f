/*
scenarios.go - Canned demo scenarios

PURPOSE:
  Self-contained datasets that exercise the attribution engine end to end
  without any client-side setup. Each scenario is a complete stateless
  analysis request; running one never touches the workspace store.

SCENARIOS:
  ten-hour-day      A single 10h day against an 8h capacity
  public-holiday    Work on a holiday, everything becomes overtime
  tiered-premium    Deep overtime crossing the second premium tier
  weekly-basis      A 45h Mon-Fri week under the both basis

SEE ALSO:
  - handlers.go: ListScenarios and RunScenario endpoints
*/
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/warp/attribution-engine/engine"
)

// Scenario bundles a canned analysis request with display metadata.
type Scenario struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`

	request AnalysisRequest
}

// ScenarioSummary is the list view, without the request payload.
type ScenarioSummary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

func scenarioEntry(id string, day time.Time, hours float64, billable bool) TimeEntryDTO {
	start := day
	end := day.Add(time.Duration(hours * float64(time.Hour)))
	return TimeEntryDTO{
		ID:           id,
		UserID:       "demo-user",
		UserName:     "Demo User",
		TimeInterval: TimeIntervalDTO{Start: &start, End: &end},
		Billable:     billable,
		HourlyRate:   decimal.NewFromInt(50),
		CostRate:     decimal.NewFromInt(30),
	}
}

func demoScenarios() []Scenario {
	day := func(d int) time.Time {
		return time.Date(2025, time.January, d, 9, 0, 0, 0, time.UTC)
	}
	week := DateRangeDTO{Start: "2025-01-06", End: "2025-01-12"}

	tieredConfig := func() *ConfigDTO {
		cfg := configToDTO(engine.DefaultConfig())
		cfg.Tier2ThresholdHours = decimal.NewFromInt(2)
		return &cfg
	}
	weeklyBothConfig := func() *ConfigDTO {
		cfg := configToDTO(engine.DefaultConfig())
		cfg.OvertimeBasis = string(engine.BasisBoth)
		return &cfg
	}

	return []Scenario{
		{
			ID:          "ten-hour-day",
			Name:        "Ten Hour Day",
			Description: "A single 10h billable day against the default 8h daily capacity. The last 2h are overtime at 1.5x.",
			request: AnalysisRequest{
				Entries:   []TimeEntryDTO{scenarioEntry("e1", day(6), 10, true)},
				DateRange: DateRangeDTO{Start: "2025-01-06", End: "2025-01-06"},
			},
		},
		{
			ID:          "public-holiday",
			Name:        "Work On A Public Holiday",
			Description: "An 8h day that lands on a holiday. Capacity drops to zero and every worked hour attributes as overtime.",
			request: AnalysisRequest{
				Entries:   []TimeEntryDTO{scenarioEntry("e1", day(6), 8, true)},
				DateRange: DateRangeDTO{Start: "2025-01-06", End: "2025-01-06"},
				Holidays: []HolidayDTO{
					{UserID: "demo-user", Date: "2025-01-06", Name: "Epiphany"},
				},
			},
		},
		{
			ID:          "tiered-premium",
			Name:        "Tiered Overtime Premium",
			Description: "A 13h day with a 2h second-tier threshold. Overtime hours beyond the first 2h earn the tier-two multiplier.",
			request: AnalysisRequest{
				Entries:   []TimeEntryDTO{scenarioEntry("e1", day(6), 13, true)},
				Config:    tieredConfig(),
				DateRange: DateRangeDTO{Start: "2025-01-06", End: "2025-01-06"},
			},
		},
		{
			ID:          "weekly-basis",
			Name:        "45 Hour Week, Both Bases",
			Description: "Five 9h days. Daily and weekly attribution each find 5h of overtime over the same tail, so combined overtime stays at 5h.",
			request: AnalysisRequest{
				Entries: []TimeEntryDTO{
					scenarioEntry("e1", day(6), 9, true),
					scenarioEntry("e2", day(7), 9, true),
					scenarioEntry("e3", day(8), 9, true),
					scenarioEntry("e4", day(9), 9, true),
					scenarioEntry("e5", day(10), 9, true),
				},
				Config:    weeklyBothConfig(),
				DateRange: week,
			},
		},
	}
}

// =============================================================================
// HANDLERS
// =============================================================================

// ListScenarios handles GET /api/scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	scenarios := demoScenarios()
	summaries := make([]ScenarioSummary, 0, len(scenarios))
	for _, s := range scenarios {
		summaries = append(summaries, ScenarioSummary{
			ID:          s.ID,
			Name:        s.Name,
			Description: s.Description,
		})
	}
	respondJSON(w, http.StatusOK, summaries)
}

// RunScenario handles POST /api/scenarios/{id}/run.
func (h *Handler) RunScenario(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	for _, s := range demoScenarios() {
		if s.ID != id {
			continue
		}
		in, err := s.request.toInput()
		if err != nil {
			respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		respondJSON(w, http.StatusOK, analysisToResponse(engine.ComputeAnalysis(in)))
		return
	}
	respondError(w, http.StatusNotFound, "unknown scenario")
}
