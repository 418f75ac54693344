package domain

// Wire format of an optimization solution as returned by the optimization
// service. The solution is consumed read-only; unknown fields are ignored so
// newer server versions stay inspectable through the raw response text.

type Solution struct {
	Status               string                `json:"status,omitempty"`
	Routes               []SolutionRoute       `json:"routes,omitempty"`
	Metrics              *SolutionMetrics      `json:"metrics,omitempty"`
	UnassignedTasks      []UnassignedTask      `json:"unassigned_tasks,omitempty"`
	AlternativeSolutions []AlternativeSolution `json:"alternative_solutions,omitempty"`
}

type SolutionRoute struct {
	VehicleID            string         `json:"vehicle_id"`
	Stops                []SolutionStop `json:"stops"`
	TotalDistanceKm      float64        `json:"total_distance_km"`
	TotalDurationMinutes float64        `json:"total_duration_minutes"`
}

// A single visit on a vehicle's route. Location may be absent in malformed
// responses; renderers must skip such stops rather than fail.
type SolutionStop struct {
	Location *LatLng `json:"location"`
	Type     string  `json:"type,omitempty"`
}

type SolutionMetrics struct {
	TotalDistanceKm      float64  `json:"total_distance_km"`
	TotalDurationMinutes float64  `json:"total_duration_minutes"`
	TasksAssigned        int      `json:"tasks_assigned"`
	TasksUnassigned      int      `json:"tasks_unassigned"`
	CarbonKg             *float64 `json:"carbon_kg,omitempty"`
}

type UnassignedTask struct {
	TaskID string `json:"task_id"`
	Reason string `json:"reason,omitempty"`
}

type AlternativeSolution struct {
	QualityScore float64          `json:"quality_score"`
	Routes       []SolutionRoute  `json:"routes,omitempty"`
	Metrics      *SolutionMetrics `json:"metrics,omitempty"`
}
