package api

import (
	"encoding/json"
	"net/http"

	"github.com/keymint-io/keymint/services/activation"
	"github.com/keymint-io/keymint/utils"
)

type ActivateRequest struct {
	Key        string `json:"key" validate:"required"`
	AppVersion string `json:"app_version" validate:"required"`
	DeviceID   string `json:"device_id"`
}

// statusOf maps policy outcomes to HTTP statuses. The response body always
// carries the machine-readable code; the status is a transport courtesy.
func statusOf(result *activation.Result) int {
	if result.Activated {
		if result.Created {
			return 201
		}
		return 200
	}
	switch result.Code {
	case activation.CodeLicenseNotFound:
		return 404
	case activation.CodeInvalidKey:
		return 400
	case activation.CodeVersionNotSupported:
		return 422
	case activation.CodeDeviceLimitExceeded:
		return 409
	default:
		return 403
	}
}

func (api *API) Activate(w http.ResponseWriter, r *http.Request) {
	var request ActivateRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		api.error(400, w, err)
		return
	}
	if err := utils.Validate(&request); err != nil {
		api.error(400, w, err)
		return
	}

	result, err := api.activator.Activate(r.Context(), request.Key, request.AppVersion, request.DeviceID)
	api.assert(err)

	api.json(statusOf(result), w, result)
}
