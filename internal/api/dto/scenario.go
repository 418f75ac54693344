package dto

import "github.com/mbenhaddou/optimisation-service/internal/domain"

type SaveScenarioRequest struct {
	Name string              `json:"name"`
	Data domain.ScenarioData `json:"data"`
}

type ListScenariosResponse struct {
	Scenarios []domain.SavedScenario `json:"scenarios"`
}
