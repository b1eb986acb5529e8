// Package registry issues license keys and answers questions about them.
// The registry is the authority on license status; the validity cache in
// front of IsValid is an optimization only.
package registry

import (
	"context"
	"encoding/hex"
	"errors"
	"time"

	uuid "github.com/satori/go.uuid"
	"go.uber.org/zap"

	"github.com/keymint-io/keymint/constants"
	"github.com/keymint-io/keymint/db/dao"
	"github.com/keymint-io/keymint/db/entities"
	"github.com/keymint-io/keymint/eventbus"
	"github.com/keymint-io/keymint/mcache"
	"github.com/keymint-io/keymint/pkg/keycodec"
	"github.com/keymint-io/keymint/pkg/license"
	"github.com/keymint-io/keymint/utils"
)

var ErrInvalidOrderRef = errors.New("order reference must be a UUID")

type Registry struct {
	log      *zap.SugaredLogger
	licenses dao.LicenseDAO
	signer   *license.Signer
	verifier *license.Verifier
	bus      eventbus.Bus
}

type Options struct {
	Licenses dao.LicenseDAO
	Signer   *license.Signer
	Verifier *license.Verifier
	EventBus eventbus.Bus
}

func NewRegistry(opts Options) *Registry {
	return &Registry{
		log:      zap.S(),
		licenses: opts.Licenses,
		signer:   opts.Signer,
		verifier: opts.Verifier,
		bus:      opts.EventBus,
	}
}

// Issue mints a license for an order: payload → signature → bundle → key
// string, persisted under the key's lookup hash with status active. The
// returned record carries the one-time plaintext key for delivery; a
// license.issued event is broadcast for the mailing collaborator.
func (r *Registry) Issue(ctx context.Context, orderRef string, maxMajorVersion uint16) (*entities.License, error) {
	order, err := uuid.FromString(orderRef)
	if err != nil {
		return nil, ErrInvalidOrderRef
	}

	payload := license.Payload{
		FormatVersion:   license.FormatVersion,
		MaxMajorVersion: maxMajorVersion,
		IssuedAt:        uint64(time.Now().Unix()),
	}
	copy(payload.OrderRef[:], order.Bytes())

	payloadBytes := payload.Encode()
	signature := r.signer.Sign(payloadBytes)
	bundle := license.PackBundle(payloadBytes, signature)
	key, err := keycodec.Encode(bundle)
	if err != nil {
		return nil, err
	}

	entity := &entities.License{
		ID:              utils.UUID(),
		KeyHash:         utils.Sha256(key),
		Key:             key,
		Status:          entities.LicenseStatusActive,
		MaxMajorVersion: maxMajorVersion,
		OrderRef:        orderRef,
		Metadata: entities.Metadata{
			"payload":   hex.EncodeToString(payloadBytes),
			"signature": hex.EncodeToString(signature),
		},
	}
	if err := r.licenses.Insert(ctx, entity); err != nil {
		return nil, err
	}

	r.log.Infof("issued license %s for order %s", entity.ID, orderRef)

	if r.bus != nil {
		_ = r.bus.ClusteringBroadcast(eventbus.EventLicenseIssued, &eventbus.IssuedData{
			LicenseId: entity.ID,
			OrderRef:  orderRef,
			Key:       key,
		})
	}

	return entity, nil
}

// Verify checks the key's structure and signature. Pure; no storage, no
// cache. Activation uses this directly so status is never answered from a
// cache.
func (r *Registry) Verify(key string) bool {
	if !keycodec.IsWellFormed(key) {
		return false
	}
	bundle, err := keycodec.Decode(key)
	if err != nil {
		return false
	}
	payloadBytes, signature, err := license.UnpackBundle(bundle)
	if err != nil {
		return false
	}
	if _, err := license.DecodePayload(payloadBytes); err != nil {
		return false
	}
	return r.verifier.Verify(payloadBytes, signature)
}

// IsValid reports whether the key is cryptographically sound and backed by
// an active license. Malformed input is an ordinary false, never an error.
// Results are cached for constants.ValidityCacheTTL keyed by the lookup
// hash; revoke and refund invalidate eagerly.
func (r *Registry) IsValid(ctx context.Context, key string) (bool, error) {
	if !keycodec.IsWellFormed(key) {
		return false, nil
	}

	cacheKey := constants.ValidityCacheKey.Build(utils.Sha256(key))
	opts := &mcache.LoadOptions{L2TTL: constants.ValidityCacheTTL}
	valid, err := mcache.Load(ctx, cacheKey, opts, func(ctx context.Context, _ string) (*bool, error) {
		ok, err := r.isValid(ctx, key)
		if err != nil {
			return nil, err
		}
		return &ok, nil
	}, "")
	if err != nil {
		return false, err
	}
	return valid != nil && *valid, nil
}

func (r *Registry) isValid(ctx context.Context, key string) (bool, error) {
	if !r.Verify(key) {
		return false, nil
	}
	entity, err := r.licenses.GetByKeyHash(ctx, utils.Sha256(key))
	if err != nil {
		return false, err
	}
	return entity != nil && entity.Status == entities.LicenseStatusActive, nil
}

// FindByKey resolves a license by its lookup hash. The plaintext key is
// never used as a query predicate.
func (r *Registry) FindByKey(ctx context.Context, key string) (*entities.License, error) {
	return r.licenses.GetByKeyHash(ctx, utils.Sha256(key))
}

// Revoke transitions a license to revoked regardless of its current status.
// Idempotent; manual operator action always wins.
func (r *Registry) Revoke(ctx context.Context, entity *entities.License) error {
	if err := r.licenses.UpdateStatus(ctx, entity.ID, entities.LicenseStatusRevoked); err != nil {
		return err
	}
	entity.Status = entities.LicenseStatusRevoked
	r.log.Infof("revoked license %s", entity.ID)
	r.invalidate(ctx, entity.KeyHash)
	return nil
}

// Refund transitions the order's licenses from active to refunded. Licenses
// already revoked or expired are left untouched.
func (r *Registry) Refund(ctx context.Context, orderRef string) error {
	list, err := r.licenses.ListByOrderRef(ctx, orderRef)
	if err != nil {
		return err
	}
	for _, entity := range list {
		transitioned, err := r.licenses.TransitionStatus(ctx, entity.ID,
			entities.LicenseStatusActive, entities.LicenseStatusRefunded)
		if err != nil {
			return err
		}
		if transitioned {
			r.log.Infof("refunded license %s for order %s", entity.ID, orderRef)
			r.invalidate(ctx, entity.KeyHash)
		}
	}
	return nil
}

func (r *Registry) invalidate(ctx context.Context, keyHash string) {
	cacheKey := constants.ValidityCacheKey.Build(keyHash)
	if err := mcache.Invalidate(ctx, cacheKey); err != nil {
		r.log.Warnf("failed to invalidate cache %s: %v", cacheKey, err)
	}
	if r.bus != nil {
		_ = r.bus.ClusteringBroadcast(eventbus.EventInvalidation, &eventbus.InvalidationData{
			CacheKeys: []string{cacheKey},
		})
	}
}
