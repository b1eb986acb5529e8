package query

type LicenseQuery struct {
	Query

	Status   *string
	OrderRef *string
}

func (q *LicenseQuery) WhereMap() map[string]interface{} {
	maps := make(map[string]interface{})
	if q.Status != nil {
		maps["status"] = *q.Status
	}
	if q.OrderRef != nil {
		maps["order_ref"] = *q.OrderRef
	}
	return maps
}

type ActivationQuery struct {
	Query

	LicenseId *string
}

func (q *ActivationQuery) WhereMap() map[string]interface{} {
	maps := make(map[string]interface{})
	if q.LicenseId != nil {
		maps["license_id"] = *q.LicenseId
	}
	return maps
}
