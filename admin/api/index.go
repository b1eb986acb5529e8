package api

import (
	"net/http"

	"github.com/keymint-io/keymint"
	"github.com/keymint-io/keymint/config"
)

type IndexResponse struct {
	Version       string         `json:"version"`
	Message       string         `json:"message"`
	Configuration *config.Config `json:"configuration"`
}

func (api *API) Index(w http.ResponseWriter, r *http.Request) {
	var response IndexResponse

	response.Version = keymint.VERSION
	response.Message = "Welcome to KeyMint"
	response.Configuration = api.cfg

	api.json(200, w, response)
}
