package domain

import (
	"strconv"
	"time"
)

// Form-level planning entities. Fields hold the raw user-entered strings;
// parsing, defaulting and omission policy live in the payload builder so a
// scenario always round-trips exactly as the user typed it.

// A vehicle available for routing within one scenario.
type Vehicle struct {
	ID            string `json:"id"`
	StartLat      string `json:"startLat"`
	StartLng      string `json:"startLng"`
	EndLat        string `json:"endLat"`
	EndLng        string `json:"endLng"`
	WindowStart   string `json:"windowStart"`
	WindowEnd     string `json:"windowEnd"`
	BreakStart    string `json:"breakStart"`
	BreakEnd      string `json:"breakEnd"`
	BreakDuration string `json:"breakDuration"`
	MaxTasks      string `json:"maxTasks"`
	Skills        string `json:"skills"`
	DepotID       string `json:"depotId"`
	TeamID        string `json:"teamId"`
}

// A unit of work (delivery, pickup, ...) to be scheduled onto a vehicle.
type Task struct {
	ID                   string `json:"id"`
	Type                 string `json:"type"`
	Lat                  string `json:"lat"`
	Lng                  string `json:"lng"`
	ServiceDuration      string `json:"serviceDuration"`
	WindowStart          string `json:"windowStart"`
	WindowEnd            string `json:"windowEnd"`
	PreferredWindowStart string `json:"preferredWindowStart"`
	PreferredWindowEnd   string `json:"preferredWindowEnd"`
	SoftPenalty          string `json:"softPenalty"`
	Priority             string `json:"priority"`
	RequiredSkills       string `json:"requiredSkills"`
}

// A depot vehicles can be affiliated with.
type Depot struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Lat         string `json:"lat"`
	Lng         string `json:"lng"`
	Address     string `json:"address"`
	WindowStart string `json:"windowStart"`
	WindowEnd   string `json:"windowEnd"`
}

// The complete, user-editable description of a routing problem prior to
// compilation into the optimization request format.
type ScenarioData struct {
	ProblemType        string    `json:"problemType"`
	PrimaryObjective   string    `json:"primaryObjective"`
	SecondaryObjective string    `json:"secondaryObjective"`
	WindowStart        string    `json:"windowStart"`
	WindowEnd          string    `json:"windowEnd"`
	Vehicles           []Vehicle `json:"vehicles"`
	Tasks              []Task    `json:"tasks"`
	Depots             []Depot   `json:"depots"`
	MaxRouteDuration   string    `json:"maxRouteDuration"`
	MaxRouteDistance   string    `json:"maxRouteDistance"`
	BalanceRoutes      bool      `json:"balanceRoutes"`
	AllowOvertime      bool      `json:"allowOvertime"`
	MaxCompute         string    `json:"maxCompute"`
	SolutionQuality    string    `json:"solutionQuality"`
	ReturnAlternatives string    `json:"returnAlternatives"`
	CalculateCarbon    bool      `json:"calculateCarbon"`
}

// A named, timestamped snapshot of ScenarioData. Immutable once saved.
type SavedScenario struct {
	ID      string       `json:"id"`
	Name    string       `json:"name"`
	SavedAt time.Time    `json:"savedAt"`
	Data    ScenarioData `json:"data"`
}

// NewVehicle returns a vehicle with a deterministic id and safe defaults.
func NewVehicle(n int) Vehicle {
	return Vehicle{
		ID:            "vehicle_" + strconv.Itoa(n),
		BreakDuration: "30",
		MaxTasks:      "50",
	}
}

// NewTask returns a task with a deterministic id and safe defaults.
func NewTask(n int) Task {
	return Task{
		ID:              "task_" + strconv.Itoa(n),
		Type:            "delivery",
		ServiceDuration: "10",
		Priority:        "3",
	}
}

// NewDepot returns a depot with a deterministic id.
func NewDepot(n int) Depot {
	return Depot{ID: "depot_" + strconv.Itoa(n)}
}

// NewScenario returns the blank one-vehicle, one-task, one-depot scenario a
// planning session starts from.
func NewScenario() ScenarioData {
	return ScenarioData{
		ProblemType:        "vrptw",
		PrimaryObjective:   "minimize_total_duration",
		SecondaryObjective: "minimize_total_distance",
		Vehicles:           []Vehicle{NewVehicle(1)},
		Tasks:              []Task{NewTask(1)},
		Depots:             []Depot{NewDepot(1)},
		MaxRouteDuration:   "480",
		MaxRouteDistance:   "200",
		BalanceRoutes:      true,
		MaxCompute:         "30",
		SolutionQuality:    "balanced",
		ReturnAlternatives: "0",
	}
}

// WithDefaults fills blank top-level fields and empty collections so that a
// scenario loaded from storage is always editable. User-entered values are
// never touched.
func (s ScenarioData) WithDefaults() ScenarioData {
	if s.ProblemType == "" {
		s.ProblemType = "vrptw"
	}
	if s.PrimaryObjective == "" {
		s.PrimaryObjective = "minimize_total_duration"
	}
	if s.SecondaryObjective == "" {
		s.SecondaryObjective = "minimize_total_distance"
	}
	if len(s.Vehicles) == 0 {
		s.Vehicles = []Vehicle{NewVehicle(1)}
	}
	if len(s.Tasks) == 0 {
		s.Tasks = []Task{NewTask(1)}
	}
	if len(s.Depots) == 0 {
		s.Depots = []Depot{NewDepot(1)}
	}
	if s.MaxRouteDuration == "" {
		s.MaxRouteDuration = "480"
	}
	if s.MaxRouteDistance == "" {
		s.MaxRouteDistance = "200"
	}
	if s.MaxCompute == "" {
		s.MaxCompute = "30"
	}
	if s.SolutionQuality == "" {
		s.SolutionQuality = "balanced"
	}
	if s.ReturnAlternatives == "" {
		s.ReturnAlternatives = "0"
	}
	return s
}
