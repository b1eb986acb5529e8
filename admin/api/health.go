package api

import (
	"net/http"
)

type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func (api *API) Health(w http.ResponseWriter, r *http.Request) {
	response := HealthResponse{
		Status: "ok",
		Checks: map[string]string{},
	}

	if err := api.db.Ping(); err != nil {
		response.Status = "down"
		response.Checks["database"] = err.Error()
	} else {
		response.Checks["database"] = "ok"
	}

	code := 200
	if response.Status != "ok" {
		code = 503
	}
	api.json(code, w, response)
}
