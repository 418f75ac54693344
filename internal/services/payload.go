package services

import (
	"strconv"
	"strings"
	"time"

	"github.com/mbenhaddou/optimisation-service/internal/domain"
)

// BuildOptimizeRequest compiles a scenario into the optimization request
// wire format. The transform is pure: identical input always yields an
// identical request, and no storage or network access happens here.
//
// Defaulting rules:
//   - blank per-entity time fields fall back to the scenario's global
//     window; when both are blank the window list is omitted entirely
//   - blank or unparsable start coordinates become 0; blank end coordinates
//     inherit the start coordinate
//   - numeric optionals that are blank or parse to zero are omitted, since
//     zero is indistinguishable from "not provided"
func BuildOptimizeRequest(data domain.ScenarioData) domain.OptimizeRequest {
	defaultStart := formatTimestamp(data.WindowStart)
	defaultEnd := formatTimestamp(data.WindowEnd)

	vehicles := make([]domain.RequestVehicle, 0, len(data.Vehicles))
	for _, v := range data.Vehicles {
		start := domain.LatLng{Lat: parseNumber(v.StartLat), Lng: parseNumber(v.StartLng)}
		end := domain.LatLng{
			Lat: parseNumber(firstNonBlank(v.EndLat, v.StartLat)),
			Lng: parseNumber(firstNonBlank(v.EndLng, v.StartLng)),
		}

		windowStart := fallback(formatTimestamp(v.WindowStart), defaultStart)
		windowEnd := fallback(formatTimestamp(v.WindowEnd), defaultEnd)

		breakStart := formatTimestamp(v.BreakStart)
		breakEnd := formatTimestamp(v.BreakEnd)
		if breakEnd == "" && breakStart != "" && strings.TrimSpace(v.BreakDuration) != "" {
			breakEnd = shiftTimestamp(breakStart, parseNumber(v.BreakDuration))
		}

		var breaks []domain.VehicleBreak
		if breakStart != "" && breakEnd != "" {
			duration := parseNumber(v.BreakDuration)
			if strings.TrimSpace(v.BreakDuration) == "" {
				duration = 30
			}
			breaks = []domain.VehicleBreak{{
				DurationMinutes: duration,
				TimeWindow:      domain.BreakWindow{Earliest: breakStart, Latest: breakEnd},
			}}
		}

		vehicles = append(vehicles, domain.RequestVehicle{
			ID:                   v.ID,
			StartLocation:        start,
			EndLocation:          end,
			Capacity:             domain.Capacity{Weight: 1000},
			AvailableTimeWindows: singleWindow(windowStart, windowEnd),
			Breaks:               breaks,
			MaxTasks:             optionalNumber(v.MaxTasks),
			Skills:               ParseCSV(v.Skills),
			DepotID:              v.DepotID,
			TeamID:               v.TeamID,
		})
	}

	tasks := make([]domain.RequestTask, 0, len(data.Tasks))
	for _, t := range data.Tasks {
		taskStart := fallback(formatTimestamp(t.WindowStart), defaultStart)
		taskEnd := fallback(formatTimestamp(t.WindowEnd), defaultEnd)
		preferredStart := formatTimestamp(t.PreferredWindowStart)
		preferredEnd := formatTimestamp(t.PreferredWindowEnd)

		serviceDuration := parseNumber(t.ServiceDuration)
		if strings.TrimSpace(t.ServiceDuration) == "" {
			serviceDuration = 10
		}
		priority := parseNumber(t.Priority)
		if strings.TrimSpace(t.Priority) == "" {
			priority = 3
		}

		var softPenalty *float64
		if strings.TrimSpace(t.SoftPenalty) != "" {
			p := parseNumber(t.SoftPenalty)
			softPenalty = &p
		}

		tasks = append(tasks, domain.RequestTask{
			ID:                     t.ID,
			Type:                   t.Type,
			Location:               domain.LatLng{Lat: parseNumber(t.Lat), Lng: parseNumber(t.Lng)},
			ServiceDurationMinutes: serviceDuration,
			TimeWindows:            singleWindow(taskStart, taskEnd),
			PreferredTimeWindows:   singleWindow(preferredStart, preferredEnd),
			SoftTimeWindowPenalty:  softPenalty,
			Demand:                 domain.Capacity{Weight: 1},
			Priority:               priority,
			RequiredSkills:         ParseCSV(t.RequiredSkills),
		})
	}

	depots := make([]domain.RequestDepot, 0, len(data.Depots))
	for _, d := range data.Depots {
		depotStart := fallback(formatTimestamp(d.WindowStart), defaultStart)
		depotEnd := fallback(formatTimestamp(d.WindowEnd), defaultEnd)

		depots = append(depots, domain.RequestDepot{
			ID:   d.ID,
			Name: d.Name,
			Location: domain.DepotLocation{
				Lat:     parseNumber(d.Lat),
				Lng:     parseNumber(d.Lng),
				Address: d.Address,
			},
			TimeWindows: singleWindow(depotStart, depotEnd),
		})
	}

	return domain.OptimizeRequest{
		ProblemType: data.ProblemType,
		Objectives: domain.Objectives{
			Primary:   data.PrimaryObjective,
			Secondary: data.SecondaryObjective,
			Weights:   domain.ObjectiveWeights{Duration: 0.7, Distance: 0.3},
		},
		Vehicles: vehicles,
		Tasks:    tasks,
		Depots:   depots,
		Constraints: domain.Constraints{
			MaxRouteDurationMinutes: optionalNumber(data.MaxRouteDuration),
			MaxRouteDistanceKm:      optionalNumber(data.MaxRouteDistance),
			BalanceRoutes:           data.BalanceRoutes,
			AllowOvertime:           data.AllowOvertime,
		},
		Optimization: domain.Optimization{
			MaxComputationTimeSeconds:  optionalNumber(data.MaxCompute),
			SolutionQuality:            data.SolutionQuality,
			ReturnAlternativeSolutions: optionalNumber(data.ReturnAlternatives),
		},
		Options: domain.Options{
			ReturnDetailedMetrics:    true,
			IncludeRouteGeometry:     false,
			CalculateCarbonFootprint: data.CalculateCarbon,
		},
	}
}

// ParseCSV splits a comma-separated field into trimmed tokens, dropping
// empty ones. Order is preserved and duplicates are kept: the compiled
// request echoes the user's input faithfully.
func ParseCSV(value string) []string {
	out := make([]string, 0, 4)
	for _, entry := range strings.Split(value, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		out = append(out, entry)
	}
	return out
}

// Accepted layouts for user-entered local timestamps, most common first.
var timestampLayouts = []string{
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
	time.RFC3339,
}

// formatTimestamp normalizes a user-entered local timestamp to RFC 3339 UTC.
// Blank or unparsable values yield "".
func formatTimestamp(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return t.UTC().Format(time.RFC3339)
		}
	}
	return ""
}

// shiftTimestamp moves an already-normalized timestamp forward by minutes.
func shiftTimestamp(value string, minutes float64) string {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return ""
	}
	return t.Add(time.Duration(minutes * float64(time.Minute))).UTC().Format(time.RFC3339)
}

func parseNumber(value string) float64 {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}
	n, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0
	}
	return n
}

// optionalNumber treats blank and zero as "unset".
func optionalNumber(value string) *float64 {
	n := parseNumber(value)
	if n == 0 {
		return nil
	}
	return &n
}

func singleWindow(start, end string) []domain.TimeWindow {
	if start == "" || end == "" {
		return nil
	}
	return []domain.TimeWindow{{Start: start, End: end}}
}

func fallback(value, def string) string {
	if value != "" {
		return value
	}
	return def
}

func firstNonBlank(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
