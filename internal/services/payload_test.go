package services

import (
	"encoding/json"
	"reflect"
	"testing"
	"time"

	"github.com/mbenhaddou/optimisation-service/internal/domain"
)

func TestBuildOptimizeRequestSampleScenario(t *testing.T) {
	req := BuildOptimizeRequest(domain.SampleScenario())

	if len(req.Vehicles) != 2 || len(req.Tasks) != 5 || len(req.Depots) != 1 {
		t.Fatalf("compiled %d vehicles, %d tasks, %d depots", len(req.Vehicles), len(req.Tasks), len(req.Depots))
	}

	van1 := req.Vehicles[0]
	if van1.ID != "van_1" {
		t.Fatalf("vehicle id = %q", van1.ID)
	}
	if !reflect.DeepEqual(van1.Skills, []string{"delivery", "pickup"}) {
		t.Fatalf("van_1 skills = %v", van1.Skills)
	}
	if !reflect.DeepEqual(req.Vehicles[1].Skills, []string{"delivery"}) {
		t.Fatalf("van_2 skills = %v", req.Vehicles[1].Skills)
	}

	if van1.EndLocation != van1.StartLocation {
		t.Fatalf("end = %+v, start = %+v", van1.EndLocation, van1.StartLocation)
	}
	if van1.MaxTasks == nil || *van1.MaxTasks != 4 {
		t.Fatalf("max tasks = %v", van1.MaxTasks)
	}
	// Break duration without a break start yields no break entry.
	if len(van1.Breaks) != 0 {
		t.Fatalf("breaks = %+v", van1.Breaks)
	}
	// Global window flows down to vehicles without one of their own.
	if len(van1.AvailableTimeWindows) != 1 {
		t.Fatalf("vehicle windows = %+v", van1.AvailableTimeWindows)
	}

	task1 := req.Tasks[0]
	if task1.ServiceDurationMinutes != 15 {
		t.Fatalf("task_1 service duration = %v", task1.ServiceDurationMinutes)
	}
	if task1.Priority != 2 {
		t.Fatalf("task_1 priority = %v", task1.Priority)
	}
	if task1.SoftTimeWindowPenalty != nil {
		t.Fatalf("soft penalty = %v", *task1.SoftTimeWindowPenalty)
	}
	if task1.Demand.Weight != 1 {
		t.Fatalf("demand weight = %v", task1.Demand.Weight)
	}

	if req.Constraints.MaxRouteDurationMinutes == nil || *req.Constraints.MaxRouteDurationMinutes != 480 {
		t.Fatalf("max route duration = %v", req.Constraints.MaxRouteDurationMinutes)
	}
	if req.Constraints.MaxRouteDistanceKm == nil || *req.Constraints.MaxRouteDistanceKm != 120 {
		t.Fatalf("max route distance = %v", req.Constraints.MaxRouteDistanceKm)
	}
	if req.Optimization.MaxComputationTimeSeconds == nil || *req.Optimization.MaxComputationTimeSeconds != 20 {
		t.Fatalf("max compute = %v", req.Optimization.MaxComputationTimeSeconds)
	}
	// "0" alternatives means none requested, so the field is omitted.
	if req.Optimization.ReturnAlternativeSolutions != nil {
		t.Fatalf("alternatives = %v", *req.Optimization.ReturnAlternativeSolutions)
	}

	if req.Objectives.Weights.Duration != 0.7 || req.Objectives.Weights.Distance != 0.3 {
		t.Fatalf("weights = %+v", req.Objectives.Weights)
	}
	if !req.Options.ReturnDetailedMetrics || req.Options.IncludeRouteGeometry {
		t.Fatalf("options = %+v", req.Options)
	}
}

func TestBuildOptimizeRequestIdempotent(t *testing.T) {
	scenario := domain.SampleScenario()

	first, err := json.Marshal(BuildOptimizeRequest(scenario))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := json.Marshal(BuildOptimizeRequest(scenario))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if string(first) != string(second) {
		t.Fatal("identical scenario compiled to different requests")
	}
}

func TestBuildOptimizeRequestWindowFallback(t *testing.T) {
	scenario := domain.NewScenario()
	scenario.WindowStart = "2026-03-01T08:00"
	scenario.WindowEnd = "2026-03-01T17:00"
	scenario.Tasks[0].Lat = "50.85"
	scenario.Tasks[0].Lng = "4.35"

	req := BuildOptimizeRequest(scenario)

	if len(req.Tasks[0].TimeWindows) != 1 {
		t.Fatalf("task windows = %+v", req.Tasks[0].TimeWindows)
	}
	want := localToUTC(t, "2026-03-01T08:00")
	if req.Tasks[0].TimeWindows[0].Start != want {
		t.Fatalf("window start = %q, want %q", req.Tasks[0].TimeWindows[0].Start, want)
	}

	// With no global window and no per-task window, windows are omitted.
	scenario.WindowStart = ""
	scenario.WindowEnd = ""
	req = BuildOptimizeRequest(scenario)
	if req.Tasks[0].TimeWindows != nil {
		t.Fatalf("task windows = %+v, want omitted", req.Tasks[0].TimeWindows)
	}
	if req.Vehicles[0].AvailableTimeWindows != nil {
		t.Fatalf("vehicle windows = %+v, want omitted", req.Vehicles[0].AvailableTimeWindows)
	}
}

func TestBuildOptimizeRequestBreakEndComputed(t *testing.T) {
	scenario := domain.NewScenario()
	scenario.Vehicles[0].BreakStart = "2026-03-01T12:00"
	scenario.Vehicles[0].BreakEnd = ""
	scenario.Vehicles[0].BreakDuration = "45"

	req := BuildOptimizeRequest(scenario)

	breaks := req.Vehicles[0].Breaks
	if len(breaks) != 1 {
		t.Fatalf("breaks = %+v", breaks)
	}
	if breaks[0].DurationMinutes != 45 {
		t.Fatalf("break duration = %v", breaks[0].DurationMinutes)
	}

	start, err := time.Parse(time.RFC3339, breaks[0].TimeWindow.Earliest)
	if err != nil {
		t.Fatalf("earliest %q: %v", breaks[0].TimeWindow.Earliest, err)
	}
	end, err := time.Parse(time.RFC3339, breaks[0].TimeWindow.Latest)
	if err != nil {
		t.Fatalf("latest %q: %v", breaks[0].TimeWindow.Latest, err)
	}
	if end.Sub(start) != 45*time.Minute {
		t.Fatalf("break span = %v, want 45m", end.Sub(start))
	}
}

func TestBuildOptimizeRequestBlankBreakDurationDefaults(t *testing.T) {
	scenario := domain.NewScenario()
	scenario.Vehicles[0].BreakStart = "2026-03-01T12:00"
	scenario.Vehicles[0].BreakEnd = "2026-03-01T13:00"
	scenario.Vehicles[0].BreakDuration = ""

	req := BuildOptimizeRequest(scenario)

	breaks := req.Vehicles[0].Breaks
	if len(breaks) != 1 {
		t.Fatalf("breaks = %+v", breaks)
	}
	if breaks[0].DurationMinutes != 30 {
		t.Fatalf("break duration = %v, want default 30", breaks[0].DurationMinutes)
	}
}

func TestBuildOptimizeRequestEndInheritsStart(t *testing.T) {
	scenario := domain.NewScenario()
	scenario.Vehicles[0].StartLat = "50.85"
	scenario.Vehicles[0].StartLng = "4.35"
	scenario.Vehicles[0].EndLat = ""
	scenario.Vehicles[0].EndLng = ""

	req := BuildOptimizeRequest(scenario)

	v := req.Vehicles[0]
	if v.EndLocation.Lat != 50.85 || v.EndLocation.Lng != 4.35 {
		t.Fatalf("end location = %+v", v.EndLocation)
	}
}

func TestParseCSV(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{" , , ", nil},
		{"delivery, pickup", []string{"delivery", "pickup"}},
		{" a , ,b ,a ", []string{"a", "b", "a"}},
	}

	for _, tc := range cases {
		got := ParseCSV(tc.in)
		if len(got) == 0 && len(tc.want) == 0 {
			continue
		}
		if !reflect.DeepEqual(got, tc.want) {
			t.Errorf("ParseCSV(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestFormatTimestamp(t *testing.T) {
	if got := formatTimestamp(""); got != "" {
		t.Fatalf("blank = %q", got)
	}
	if got := formatTimestamp("yesterday-ish"); got != "" {
		t.Fatalf("garbage = %q", got)
	}

	got := formatTimestamp("2026-03-01T08:00")
	want := localToUTC(t, "2026-03-01T08:00")
	if got != want {
		t.Fatalf("formatTimestamp = %q, want %q", got, want)
	}

	// Already-normalized RFC 3339 input stays a valid instant.
	got = formatTimestamp("2026-03-01T08:00:00Z")
	parsed, err := time.Parse(time.RFC3339, got)
	if err != nil {
		t.Fatalf("parse %q: %v", got, err)
	}
	if !parsed.Equal(time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)) {
		t.Fatalf("instant = %v", parsed)
	}
}

func TestOptionalNumberOmitsZero(t *testing.T) {
	if optionalNumber("") != nil {
		t.Fatal("blank should be omitted")
	}
	if optionalNumber("0") != nil {
		t.Fatal("zero should be omitted")
	}
	if optionalNumber("abc") != nil {
		t.Fatal("unparsable should be omitted")
	}
	if n := optionalNumber("42.5"); n == nil || *n != 42.5 {
		t.Fatalf("optionalNumber(42.5) = %v", n)
	}
}

func localToUTC(t *testing.T, value string) string {
	t.Helper()
	parsed, err := time.ParseInLocation("2006-01-02T15:04", value, time.Local)
	if err != nil {
		t.Fatalf("parse %q: %v", value, err)
	}
	return parsed.UTC().Format(time.RFC3339)
}
