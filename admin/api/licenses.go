package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/keymint-io/keymint/db/query"
	"github.com/keymint-io/keymint/pkg/types"
	"github.com/keymint-io/keymint/services/registry"
	"github.com/keymint-io/keymint/utils"
)

type IssueLicenseRequest struct {
	OrderRef        string `json:"order_ref" validate:"required"`
	MaxMajorVersion uint16 `json:"max_major_version" validate:"required"`
}

type IssueLicenseResponse struct {
	ID              string `json:"id"`
	Key             string `json:"key"`
	KeyHash         string `json:"key_hash"`
	Status          string `json:"status"`
	MaxMajorVersion uint16 `json:"max_major_version"`
	OrderRef        string `json:"order_ref"`
}

// IssueLicense mints a new key. The plaintext key appears in this response
// and nowhere else on the read side.
func (api *API) IssueLicense(w http.ResponseWriter, r *http.Request) {
	var request IssueLicenseRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		api.error(400, w, err)
		return
	}
	if err := utils.Validate(&request); err != nil {
		api.error(400, w, err)
		return
	}

	entity, err := api.registry.Issue(r.Context(), request.OrderRef, request.MaxMajorVersion)
	if err != nil {
		if errors.Is(err, registry.ErrInvalidOrderRef) {
			api.error(400, w, err)
			return
		}
		api.assert(err)
	}

	api.json(201, w, IssueLicenseResponse{
		ID:              entity.ID,
		Key:             entity.Key,
		KeyHash:         entity.KeyHash,
		Status:          entity.Status.String(),
		MaxMajorVersion: entity.MaxMajorVersion,
		OrderRef:        entity.OrderRef,
	})
}

func (api *API) PageLicense(w http.ResponseWriter, r *http.Request) {
	var q query.LicenseQuery
	q.Order("created_at", query.DESC)
	api.bindQuery(r, &q.Query)
	if status := r.URL.Query().Get("status"); status != "" {
		q.Status = &status
	}
	if orderRef := r.URL.Query().Get("order_ref"); orderRef != "" {
		q.OrderRef = &orderRef
	}
	list, total, err := api.db.Licenses.Page(r.Context(), &q)
	api.assert(err)

	api.json(200, w, NewPagination(total, list))
}

func (api *API) GetLicense(w http.ResponseWriter, r *http.Request) {
	id := api.param(r, "id")
	entity, err := api.db.Licenses.Get(r.Context(), id)
	api.assert(err)

	if entity == nil {
		api.json(404, w, types.ErrorResponse{Message: MsgNotFound})
		return
	}

	api.json(200, w, entity)
}

// GetLicenseKey returns the plaintext key for manual redelivery. Kept off
// the regular read model on purpose.
func (api *API) GetLicenseKey(w http.ResponseWriter, r *http.Request) {
	id := api.param(r, "id")
	entity, err := api.db.Licenses.Get(r.Context(), id)
	api.assert(err)

	if entity == nil {
		api.json(404, w, types.ErrorResponse{Message: MsgNotFound})
		return
	}

	api.json(200, w, map[string]string{"key": entity.Key})
}

func (api *API) RevokeLicense(w http.ResponseWriter, r *http.Request) {
	id := api.param(r, "id")
	entity, err := api.db.Licenses.Get(r.Context(), id)
	api.assert(err)

	if entity == nil {
		api.json(404, w, types.ErrorResponse{Message: MsgNotFound})
		return
	}

	err = api.registry.Revoke(r.Context(), entity)
	api.assert(err)

	api.json(200, w, entity)
}

func (api *API) ListActivations(w http.ResponseWriter, r *http.Request) {
	id := api.param(r, "id")
	entity, err := api.db.Licenses.Get(r.Context(), id)
	api.assert(err)

	if entity == nil {
		api.json(404, w, types.ErrorResponse{Message: MsgNotFound})
		return
	}

	var q query.ActivationQuery
	q.Order("last_seen_at", query.DESC)
	api.bindQuery(r, &q.Query)
	q.LicenseId = &entity.ID
	list, total, err := api.db.Activations.Page(r.Context(), &q)
	api.assert(err)

	api.json(200, w, NewPagination(total, list))
}

type ValidateKeyRequest struct {
	Key string `json:"key" validate:"required"`
}

type ValidateKeyResponse struct {
	Valid bool `json:"valid"`
}

// ValidateKey answers the cached validity question. Status changes are
// visible after at most the cache TTL, or immediately after an explicit
// revoke or refund.
func (api *API) ValidateKey(w http.ResponseWriter, r *http.Request) {
	var request ValidateKeyRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		api.error(400, w, err)
		return
	}
	if err := utils.Validate(&request); err != nil {
		api.error(400, w, err)
		return
	}

	valid, err := api.registry.IsValid(r.Context(), request.Key)
	api.assert(err)

	api.json(200, w, ValidateKeyResponse{Valid: valid})
}
