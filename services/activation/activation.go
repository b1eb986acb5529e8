// Package activation enforces per-device activation policy on top of the
// license registry: device counting, version gating, idempotent
// re-activation.
package activation

import (
	"context"
	"time"

	"github.com/Masterminds/semver/v3"
	"go.uber.org/zap"

	"github.com/keymint-io/keymint/db/dao"
	"github.com/keymint-io/keymint/db/entities"
	"github.com/keymint-io/keymint/pkg/types"
	"github.com/keymint-io/keymint/utils"
)

// TxRunner runs fn atomically; the transaction travels in the context.
type TxRunner interface {
	TX(ctx context.Context, fn func(ctx context.Context) error) error
}

// KeyResolver is the slice of the registry the engine needs. Status is
// always resolved from storage here, never from the validity cache.
type KeyResolver interface {
	FindByKey(ctx context.Context, key string) (*entities.License, error)
	Verify(key string) bool
}

// LicenseInfo is the public view of a license returned to activating
// clients. It never includes internal identifiers or audit metadata.
type LicenseInfo struct {
	Key             string                 `json:"key"`
	Status          entities.LicenseStatus `json:"status"`
	MaxMajorVersion uint16                 `json:"max_major_version"`
}

// Result is the tagged outcome of an activation attempt. Exactly one of
// the two shapes holds: Activated with License set, or Code set from the
// closed enumeration. A repeat activation by the same device is a success
// tagged CodeLicenseAlreadyActivated.
type Result struct {
	Activated bool         `json:"activated"`
	Created   bool         `json:"-"`
	Code      ErrorCode    `json:"code,omitempty"`
	Message   string       `json:"message,omitempty"`
	License   *LicenseInfo `json:"license,omitempty"`
}

type Engine struct {
	log         *zap.SugaredLogger
	tx          TxRunner
	registry    KeyResolver
	licenses    dao.LicenseDAO
	activations dao.ActivationDAO
	deviceLimit int64
}

type Options struct {
	TX          TxRunner
	Registry    KeyResolver
	Licenses    dao.LicenseDAO
	Activations dao.ActivationDAO
	DeviceLimit uint32
}

func NewEngine(opts Options) *Engine {
	return &Engine{
		log:         zap.S(),
		tx:          opts.TX,
		registry:    opts.Registry,
		licenses:    opts.Licenses,
		activations: opts.Activations,
		deviceLimit: int64(opts.DeviceLimit),
	}
}

func failure(code ErrorCode, message string) *Result {
	return &Result{Code: code, Message: message}
}

func statusCode(status entities.LicenseStatus) (ErrorCode, string) {
	switch status {
	case entities.LicenseStatusRevoked:
		return CodeLicenseRevoked, "license has been revoked"
	case entities.LicenseStatusRefunded:
		return CodeLicenseRefunded, "license has been refunded"
	default:
		return CodeLicenseExpired, "license has expired"
	}
}

func info(entity *entities.License) *LicenseInfo {
	return &LicenseInfo{
		Key:             entity.Key,
		Status:          entity.Status,
		MaxMajorVersion: entity.MaxMajorVersion,
	}
}

// Activate applies the full activation policy for a presented key. All
// policy outcomes are ordinary Results; a non-nil error means storage
// failed and carries no license semantics.
func (e *Engine) Activate(ctx context.Context, key, appVersion, deviceID string) (*Result, error) {
	if !e.registry.Verify(key) {
		return failure(CodeInvalidKey, "license key is malformed or has an invalid signature"), nil
	}

	entity, err := e.registry.FindByKey(ctx, key)
	if err != nil {
		return nil, err
	}
	if entity == nil {
		return failure(CodeLicenseNotFound, "license not found"), nil
	}

	if entity.Status != entities.LicenseStatusActive {
		code, message := statusCode(entity.Status)
		return failure(code, message), nil
	}

	version, err := semver.NewVersion(appVersion)
	if err != nil {
		return failure(CodeVersionNotSupported, "unparseable application version: "+appVersion), nil
	}
	if version.Major() > uint64(entity.MaxMajorVersion) {
		return failure(CodeVersionNotSupported, "license does not cover this major version"), nil
	}

	// No device identifier: a policy check only, nothing recorded.
	if deviceID == "" {
		return &Result{Activated: true, License: info(entity)}, nil
	}

	deviceHash := utils.Sha256(deviceID)
	result := &Result{Activated: true, License: info(entity)}

	// Count-then-insert must be atomic per license: the row lock
	// serializes concurrent activations, the unique constraint on
	// (license_id, device_hash) backstops it.
	err = e.tx.TX(ctx, func(ctx context.Context) error {
		locked, err := e.licenses.GetForUpdate(ctx, entity.ID)
		if err != nil {
			return err
		}
		if locked == nil || locked.Status != entities.LicenseStatusActive {
			status := entities.LicenseStatusRevoked
			if locked != nil {
				status = locked.Status
			}
			code, message := statusCode(status)
			*result = *failure(code, message)
			return nil
		}

		existing, err := e.activations.GetByDeviceHash(ctx, entity.ID, deviceHash)
		if err != nil {
			return err
		}
		if existing != nil {
			if err := e.activations.Touch(ctx, existing.ID, appVersion); err != nil {
				return err
			}
			result.Code = CodeLicenseAlreadyActivated
			return nil
		}

		count, err := e.activations.CountByLicense(ctx, entity.ID)
		if err != nil {
			return err
		}
		if count >= e.deviceLimit {
			*result = *failure(CodeDeviceLimitExceeded, "device limit reached for this license")
			return nil
		}

		err = e.activations.Insert(ctx, &entities.Activation{
			ID:         utils.UUID(),
			LicenseId:  entity.ID,
			DeviceHash: deviceHash,
			AppVersion: appVersion,
			LastSeenAt: types.NewUnixTime(time.Now()),
		})
		if err == dao.ErrConstraintViolation {
			// lost a race against the same device; treat as repeat
			result.Code = CodeLicenseAlreadyActivated
			return nil
		}
		if err != nil {
			return err
		}
		result.Created = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.Created {
		e.log.Infof("activated license %s for device %s", entity.ID, deviceHash[:12])
	}
	return result, nil
}
