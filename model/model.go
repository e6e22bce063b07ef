package model

// Table and collection names shared by both backends.
const (
	TablePatients         = "Patients"
	TableHealthConditions = "Health_Conditions"
	TableLifestyleFactors = "Lifestyle_Factors"
	TableHealthMetrics    = "Health_Metrics"
	TableHealthcareAccess = "Healthcare_Access"
	TablePredictions      = "Predictions"
	TableValidationLog    = "ValidationLog"
)

// RelationalModels lists every gorm model in migration order (parents first).
func RelationalModels() []interface{} {
	return []interface{}{
		&Patient{},
		&HealthCondition{},
		&LifestyleFactor{},
		&HealthMetric{},
		&HealthcareAccess{},
		&Prediction{},
		&ValidationLog{},
	}
}

// ChildPayload is implemented by request bodies of the four per-patient entities.
type ChildPayload interface {
	OwnerID() *int64
	Fields() map[string]interface{}
}

func putIfSet[T any](fields map[string]interface{}, column string, v *T) {
	if v != nil {
		fields[column] = *v
	}
}

func deref[T any](v *T) T {
	var zero T
	if v == nil {
		return zero
	}
	return *v
}
