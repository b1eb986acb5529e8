package api

import (
	"encoding/json"
	"net/http"

	"github.com/keymint-io/keymint/utils"
)

type RefundRequest struct {
	OrderRef string `json:"order_ref" validate:"required"`
}

// Refund marks the order's active licenses refunded. Idempotent; a second
// refund of the same order is a no-op.
func (api *API) Refund(w http.ResponseWriter, r *http.Request) {
	var request RefundRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		api.error(400, w, err)
		return
	}
	if err := utils.Validate(&request); err != nil {
		api.error(400, w, err)
		return
	}

	err := api.registry.Refund(r.Context(), request.OrderRef)
	api.assert(err)

	api.json(200, w, map[string]string{"message": "OK"})
}
