package eventbus

import "encoding/json"

const (
	// EventLicenseIssued carries IssuedData; consumed by the mailing
	// collaborator to deliver the one-time plaintext key.
	EventLicenseIssued = "license.issued"
	// EventInvalidation carries InvalidationData; peers drop the named
	// cache entries.
	EventInvalidation = "invalidation"
)

type Bus interface {
	ClusteringBroadcast(event string, data interface{}) error
	ClusteringSubscribe(channel string, fn func(data []byte))
	Broadcast(channel string, data interface{})
	Subscribe(channel string, cb Callback)
}

// Message clustering message
type Message struct {
	Event string          `json:"event"`
	Time  int64           `json:"time"`
	Node  string          `json:"node"`
	Data  json.RawMessage `json:"data"`
}

// IssuedData announces a newly issued license. Key is the one-time
// plaintext; it crosses the bus exactly once, at issuance.
type IssuedData struct {
	LicenseId string `json:"license_id"`
	OrderRef  string `json:"order_ref"`
	Key       string `json:"key"`
}

// InvalidationData names cache entries made stale by a status transition.
type InvalidationData struct {
	CacheKeys []string `json:"cache_keys"`
}

type Callback func(data interface{})
