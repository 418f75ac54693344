package domain

import "time"

// Coordinates of the sample depot in central Brussels. The sample stays
// inside Belgium so a Belgium-only routing backend can resolve road paths.
const (
	sampleDepotLat = "50.8476"
	sampleDepotLng = "4.3561"
)

// SampleScenario builds the onboarding example: two vans, five tasks and one
// depot anchored at fixed Brussels coordinates, with a global working window
// of 08:00-17:00 today.
func SampleScenario() ScenarioData {
	now := time.Now()
	start := time.Date(now.Year(), now.Month(), now.Day(), 8, 0, 0, 0, now.Location())
	end := time.Date(now.Year(), now.Month(), now.Day(), 17, 0, 0, 0, now.Location())

	return ScenarioData{
		ProblemType:        "vrptw",
		PrimaryObjective:   "minimize_total_duration",
		SecondaryObjective: "minimize_total_distance",
		WindowStart:        start.Format("2006-01-02T15:04"),
		WindowEnd:          end.Format("2006-01-02T15:04"),
		Vehicles: []Vehicle{
			{
				ID:            "van_1",
				StartLat:      sampleDepotLat,
				StartLng:      sampleDepotLng,
				EndLat:        sampleDepotLat,
				EndLng:        sampleDepotLng,
				BreakDuration: "30",
				MaxTasks:      "4",
				Skills:        "delivery, pickup",
				DepotID:       "brussels_depot",
				TeamID:        "brussels_team",
			},
			{
				ID:            "van_2",
				StartLat:      sampleDepotLat,
				StartLng:      sampleDepotLng,
				EndLat:        sampleDepotLat,
				EndLng:        sampleDepotLng,
				BreakDuration: "30",
				MaxTasks:      "4",
				Skills:        "delivery",
				DepotID:       "brussels_depot",
				TeamID:        "brussels_team",
			},
		},
		Tasks: []Task{
			{ID: "task_1", Type: "delivery", Lat: "50.8466", Lng: "4.3528", ServiceDuration: "15", Priority: "2", RequiredSkills: "delivery"},
			{ID: "task_2", Type: "delivery", Lat: "50.8503", Lng: "4.3517", ServiceDuration: "20", Priority: "3", RequiredSkills: "delivery"},
			{ID: "task_3", Type: "pickup", Lat: "50.8429", Lng: "4.3572", ServiceDuration: "10", Priority: "4", RequiredSkills: "pickup"},
			{ID: "task_4", Type: "delivery", Lat: "50.8520", Lng: "4.3696", ServiceDuration: "15", Priority: "3", RequiredSkills: "delivery"},
			{ID: "task_5", Type: "delivery", Lat: "50.8553", Lng: "4.3488", ServiceDuration: "12", Priority: "2", RequiredSkills: "delivery"},
		},
		Depots: []Depot{
			{
				ID:      "brussels_depot",
				Name:    "Brussels Depot",
				Lat:     sampleDepotLat,
				Lng:     sampleDepotLng,
				Address: "Rue Ravenstein 2, 1000 Brussels",
			},
		},
		MaxRouteDuration:   "480",
		MaxRouteDistance:   "120",
		BalanceRoutes:      true,
		AllowOvertime:      false,
		MaxCompute:         "20",
		SolutionQuality:    "balanced",
		ReturnAlternatives: "0",
		CalculateCarbon:    false,
	}
}
