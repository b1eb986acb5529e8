package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keymint-io/keymint/config"
	"github.com/keymint-io/keymint/db/entities"
	"github.com/keymint-io/keymint/services/activation"
	"github.com/keymint-io/keymint/services/registry"
	"github.com/keymint-io/keymint/utils"
)

type fakeRegistry struct {
	issued   *entities.License
	issueErr error
	valid    bool
	refunded []string
}

func (r *fakeRegistry) Issue(ctx context.Context, orderRef string, maxMajorVersion uint16) (*entities.License, error) {
	if r.issueErr != nil {
		return nil, r.issueErr
	}
	return r.issued, nil
}

func (r *fakeRegistry) Verify(key string) bool { return r.valid }

func (r *fakeRegistry) IsValid(ctx context.Context, key string) (bool, error) {
	return r.valid, nil
}

func (r *fakeRegistry) Revoke(ctx context.Context, entity *entities.License) error { return nil }

func (r *fakeRegistry) Refund(ctx context.Context, orderRef string) error {
	r.refunded = append(r.refunded, orderRef)
	return nil
}

type fakeActivator struct {
	result *activation.Result
}

func (a *fakeActivator) Activate(ctx context.Context, key, appVersion, deviceID string) (*activation.Result, error) {
	return a.result, nil
}

func newTestAPI(reg *fakeRegistry, act *fakeActivator) http.Handler {
	cfg := config.New()
	return NewAPI(Options{
		Config:    cfg,
		Registry:  reg,
		Activator: act,
	}).Handler()
}

func request(t *testing.T, handler http.Handler, method, path, body string) *httptest.ResponseRecorder {
	r := httptest.NewRequest(method, path, strings.NewReader(body))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)
	return w
}

func TestIndex(t *testing.T) {
	handler := newTestAPI(&fakeRegistry{}, &fakeActivator{})
	w := request(t, handler, "GET", "/", "")
	assert.Equal(t, 200, w.Code)
	assert.NotContains(t, w.Body.String(), "private_key")
}

func TestIssueLicenseEndpoint(t *testing.T) {
	reg := &fakeRegistry{
		issued: &entities.License{
			ID:              utils.UUID(),
			Key:             "AAAAA-BBBBB",
			KeyHash:         "hash",
			Status:          entities.LicenseStatusActive,
			MaxMajorVersion: 2,
			OrderRef:        "order",
		},
	}
	handler := newTestAPI(reg, &fakeActivator{})

	w := request(t, handler, "POST", "/licenses", `{"order_ref":"order","max_major_version":2}`)
	assert.Equal(t, 201, w.Code)

	var body IssueLicenseResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "AAAAA-BBBBB", body.Key)

	// missing fields fail validation
	w = request(t, handler, "POST", "/licenses", `{}`)
	assert.Equal(t, 400, w.Code)

	reg.issueErr = registry.ErrInvalidOrderRef
	w = request(t, handler, "POST", "/licenses", `{"order_ref":"x","max_major_version":1}`)
	assert.Equal(t, 400, w.Code)
}

func TestValidateKeyEndpoint(t *testing.T) {
	handler := newTestAPI(&fakeRegistry{valid: true}, &fakeActivator{})

	w := request(t, handler, "POST", "/licenses/validate", `{"key":"whatever"}`)
	assert.Equal(t, 200, w.Code)
	assert.JSONEq(t, `{"valid":true}`, w.Body.String())

	w = request(t, handler, "POST", "/licenses/validate", `{}`)
	assert.Equal(t, 400, w.Code)
}

func TestRefundEndpoint(t *testing.T) {
	reg := &fakeRegistry{}
	handler := newTestAPI(reg, &fakeActivator{})

	w := request(t, handler, "POST", "/refunds", `{"order_ref":"order-1"}`)
	assert.Equal(t, 200, w.Code)
	assert.Equal(t, []string{"order-1"}, reg.refunded)
}

func TestActivateEndpointStatuses(t *testing.T) {
	tests := []struct {
		result *activation.Result
		code   int
	}{
		{&activation.Result{Activated: true, Created: true}, 201},
		{&activation.Result{Activated: true, Code: activation.CodeLicenseAlreadyActivated}, 200},
		{&activation.Result{Code: activation.CodeInvalidKey}, 400},
		{&activation.Result{Code: activation.CodeLicenseNotFound}, 404},
		{&activation.Result{Code: activation.CodeLicenseRevoked}, 403},
		{&activation.Result{Code: activation.CodeLicenseRefunded}, 403},
		{&activation.Result{Code: activation.CodeLicenseExpired}, 403},
		{&activation.Result{Code: activation.CodeVersionNotSupported}, 422},
		{&activation.Result{Code: activation.CodeDeviceLimitExceeded}, 409},
	}
	for _, test := range tests {
		handler := newTestAPI(&fakeRegistry{}, &fakeActivator{result: test.result})
		w := request(t, handler, "POST", "/activations", `{"key":"k","app_version":"1.0.0","device_id":"d"}`)
		assert.Equal(t, test.code, w.Code, "code %s", test.result.Code)
	}
}

func TestNotFoundRoute(t *testing.T) {
	handler := newTestAPI(&fakeRegistry{}, &fakeActivator{})
	w := request(t, handler, "GET", "/nope", "")
	assert.Equal(t, 404, w.Code)
}
