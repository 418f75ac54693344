package domain

// Wire format of a compiled optimization request, as accepted by
// POST {api_base}/v1/optimize. Field order is fixed so that marshaling a
// compiled request is byte-stable across runs.

type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type TimeWindow struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Break windows use earliest/latest instead of start/end on the wire.
type BreakWindow struct {
	Earliest string `json:"earliest"`
	Latest   string `json:"latest"`
}

type VehicleBreak struct {
	DurationMinutes float64     `json:"duration_minutes"`
	TimeWindow      BreakWindow `json:"time_window"`
}

type Capacity struct {
	Weight float64 `json:"weight"`
}

type RequestVehicle struct {
	ID                   string         `json:"id"`
	StartLocation        LatLng         `json:"start_location"`
	EndLocation          LatLng         `json:"end_location"`
	Capacity             Capacity       `json:"capacity"`
	AvailableTimeWindows []TimeWindow   `json:"available_time_windows,omitempty"`
	Breaks               []VehicleBreak `json:"breaks,omitempty"`
	MaxTasks             *float64       `json:"max_tasks,omitempty"`
	Skills               []string       `json:"skills"`
	DepotID              string         `json:"depot_id,omitempty"`
	TeamID               string         `json:"team_id,omitempty"`
}

type RequestTask struct {
	ID                     string       `json:"id"`
	Type                   string       `json:"type"`
	Location               LatLng       `json:"location"`
	ServiceDurationMinutes float64      `json:"service_duration_minutes"`
	TimeWindows            []TimeWindow `json:"time_windows,omitempty"`
	PreferredTimeWindows   []TimeWindow `json:"preferred_time_windows,omitempty"`
	SoftTimeWindowPenalty  *float64     `json:"soft_time_window_penalty,omitempty"`
	Demand                 Capacity     `json:"demand"`
	Priority               float64      `json:"priority"`
	RequiredSkills         []string     `json:"required_skills"`
}

type DepotLocation struct {
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
	Address string  `json:"address,omitempty"`
}

type RequestDepot struct {
	ID          string        `json:"id"`
	Name        string        `json:"name,omitempty"`
	Location    DepotLocation `json:"location"`
	TimeWindows []TimeWindow  `json:"time_windows,omitempty"`
}

type ObjectiveWeights struct {
	Duration float64 `json:"duration"`
	Distance float64 `json:"distance"`
}

type Objectives struct {
	Primary   string           `json:"primary"`
	Secondary string           `json:"secondary"`
	Weights   ObjectiveWeights `json:"weights"`
}

type Constraints struct {
	MaxRouteDurationMinutes *float64 `json:"max_route_duration_minutes,omitempty"`
	MaxRouteDistanceKm      *float64 `json:"max_route_distance_km,omitempty"`
	BalanceRoutes           bool     `json:"balance_routes"`
	AllowOvertime           bool     `json:"allow_overtime"`
}

type Optimization struct {
	MaxComputationTimeSeconds  *float64 `json:"max_computation_time_seconds,omitempty"`
	SolutionQuality            string   `json:"solution_quality"`
	ReturnAlternativeSolutions *float64 `json:"return_alternative_solutions,omitempty"`
}

type Options struct {
	ReturnDetailedMetrics    bool `json:"return_detailed_metrics"`
	IncludeRouteGeometry     bool `json:"include_route_geometry"`
	CalculateCarbonFootprint bool `json:"calculate_carbon_footprint"`
}

type OptimizeRequest struct {
	ProblemType  string           `json:"problem_type"`
	Objectives   Objectives       `json:"objectives"`
	Vehicles     []RequestVehicle `json:"vehicles"`
	Tasks        []RequestTask    `json:"tasks"`
	Depots       []RequestDepot   `json:"depots"`
	Constraints  Constraints      `json:"constraints"`
	Optimization Optimization     `json:"optimization"`
	Options      Options          `json:"options"`
}
