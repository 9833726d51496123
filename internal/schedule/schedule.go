package schedule

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/riskradar/backend-go/internal/domain"
)

// DayType classifies the calendar side of a timestamp
type DayType string

const (
	DayWeekday DayType = "weekday"
	DayWeekend DayType = "weekend"
	DayHoliday DayType = "holiday"
)

// Window classifies the clock side of a timestamp
type Window string

const (
	WindowMaintenance Window = "maintenance_window"
	WindowLowTraffic  Window = "low_traffic"
	WindowPeak        Window = "peak_hours"
	WindowBusiness    Window = "business_hours"
	WindowOffHours    Window = "off_hours"
)

// windowPrecedence resolves overlapping windows: the first match wins.
var windowPrecedence = []Window{
	WindowMaintenance,
	WindowLowTraffic,
	WindowPeak,
	WindowBusiness,
}

// HourRange is an inclusive range of clock hours.
type HourRange struct {
	Start int
	End   int
}

func (r HourRange) contains(hour int) bool {
	if r.Start <= r.End {
		return hour >= r.Start && hour <= r.End
	}
	// wraps midnight
	return hour >= r.Start || hour <= r.End
}

// Config holds the multiplier tables and calendar definitions.
type Config struct {
	// WindowHours maps each window to its clock-hour ranges.
	WindowHours map[Window][]HourRange

	// WindowMultipliers is the base change-risk multiplier per window.
	WindowMultipliers map[Window]float64

	// DayDiscounts are applied multiplicatively on top of the window
	// multiplier.
	DayDiscounts map[DayType]float64

	// Holidays is keyed by date in 2006-01-02 form.
	Holidays map[string]bool

	MinMultiplier float64
	MaxMultiplier float64

	DefaultHorizonDays int
	DefaultTopN        int
}

// DefaultConfig returns the stock schedule tables.
func DefaultConfig() Config {
	return Config{
		WindowHours: map[Window][]HourRange{
			WindowMaintenance: {{Start: 2, End: 4}},
			WindowLowTraffic:  {{Start: 22, End: 1}, {Start: 5, End: 6}},
			WindowPeak:        {{Start: 9, End: 10}, {Start: 14, End: 15}},
			WindowBusiness:    {{Start: 8, End: 17}},
		},
		WindowMultipliers: map[Window]float64{
			WindowMaintenance: 0.3,
			WindowLowTraffic:  0.5,
			WindowPeak:        1.8,
			WindowBusiness:    1.2,
			WindowOffHours:    0.8,
		},
		DayDiscounts: map[DayType]float64{
			DayWeekday: 1.0,
			DayWeekend: 0.6,
			DayHoliday: 0.5,
		},
		Holidays:           map[string]bool{},
		MinMultiplier:      0.2,
		MaxMultiplier:      2.0,
		DefaultHorizonDays: 7,
		DefaultTopN:        5,
	}
}

// Classify resolves a timestamp into its day type and time window.
// Holiday beats weekend; window overlap resolves by precedence.
func Classify(ts time.Time, cfg Config) (DayType, Window) {
	day := DayWeekday
	if cfg.Holidays[ts.Format("2006-01-02")] {
		day = DayHoliday
	} else if wd := ts.Weekday(); wd == time.Saturday || wd == time.Sunday {
		day = DayWeekend
	}

	hour := ts.Hour()
	for _, w := range windowPrecedence {
		for _, r := range cfg.WindowHours[w] {
			if r.contains(hour) {
				return day, w
			}
		}
	}
	return day, WindowOffHours
}

// Multiplier computes the clamped change-risk multiplier for a timestamp.
func Multiplier(ts time.Time, cfg Config) (float64, DayType, Window) {
	day, window := Classify(ts, cfg)

	m := cfg.WindowMultipliers[window]
	if m == 0 {
		m = 1.0
	}
	if d, ok := cfg.DayDiscounts[day]; ok && d != 0 {
		m *= d
	}
	return clamp(m, cfg.MinMultiplier, cfg.MaxMultiplier), day, window
}

// Adjustment is the time-adjusted view of a base risk score.
type Adjustment struct {
	BaseScore     float64  `json:"base_score"`
	AdjustedScore float64  `json:"adjusted_score"`
	Multiplier    float64  `json:"multiplier"`
	Factors       []string `json:"factors"`
}

// Adjust rescales a base score by the calendar/clock context of ts.
func Adjust(baseScore float64, ts time.Time, cfg Config) Adjustment {
	m, day, window := Multiplier(ts, cfg)

	factors := []string{fmt.Sprintf("%s x%.2f", window, cfg.WindowMultipliers[window])}
	if d := cfg.DayDiscounts[day]; d != 0 && d != 1 {
		factors = append(factors, fmt.Sprintf("%s x%.2f", day, d))
	}

	return Adjustment{
		BaseScore:     baseScore,
		AdjustedScore: round2(clamp(baseScore*m, 0, 100)),
		Multiplier:    round2(m),
		Factors:       factors,
	}
}

// Candidate is one (time, multiplier) entry of an optimal-window scan.
type Candidate struct {
	Time       time.Time `json:"time"`
	Multiplier float64   `json:"multiplier"`
	DayType    DayType   `json:"day_type"`
	Window     Window    `json:"window"`
}

// OptimalWindows scans hourly candidates from the next full hour over the
// horizon and returns the topN lowest-multiplier slots, ties broken by
// time. Zero horizon or topN pick the configured defaults.
func OptimalWindows(now time.Time, horizonDays, topN int, cfg Config) ([]Candidate, error) {
	if horizonDays < 0 || topN < 0 {
		return nil, fmt.Errorf("%w: horizon_days and top_n must be >= 0", domain.ErrInvalidParameter)
	}
	if horizonDays == 0 {
		horizonDays = cfg.DefaultHorizonDays
	}
	if topN == 0 {
		topN = cfg.DefaultTopN
	}

	start := now.Truncate(time.Hour).Add(time.Hour)
	end := now.AddDate(0, 0, horizonDays)

	var candidates []Candidate
	for ts := start; !ts.After(end); ts = ts.Add(time.Hour) {
		m, day, window := Multiplier(ts, cfg)
		candidates = append(candidates, Candidate{
			Time:       ts,
			Multiplier: round2(m),
			DayType:    day,
			Window:     window,
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Multiplier != candidates[j].Multiplier {
			return candidates[i].Multiplier < candidates[j].Multiplier
		}
		return candidates[i].Time.Before(candidates[j].Time)
	})

	if len(candidates) > topN {
		candidates = candidates[:topN]
	}
	return candidates, nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
