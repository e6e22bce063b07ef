package model

// HealthMetric holds screening results. GenHlth is a 1-5 scale, MentHlth and
// PhysHlth count poor health days over the last 30 days.
type HealthMetric struct {
	MetricsID int64    `gorm:"column:MetricsID;primaryKey;autoIncrement" json:"MetricsID" example:"1"`
	PatientID int64    `gorm:"column:PatientID;not null;index" json:"PatientID" example:"1"`
	CholCheck *bool    `gorm:"column:CholCheck" json:"CholCheck" example:"true"`
	GenHlth   *int     `gorm:"column:GenHlth" json:"GenHlth" example:"3"`
	MentHlth  *int     `gorm:"column:MentHlth" json:"MentHlth" example:"5"`
	PhysHlth  *int     `gorm:"column:PhysHlth" json:"PhysHlth" example:"2"`
	Patient   *Patient `gorm:"foreignKey:PatientID;references:PatientID;constraint:OnDelete:CASCADE" json:"-"`
}

func (HealthMetric) TableName() string { return TableHealthMetrics }

type HealthMetricPayload struct {
	PatientID *int64 `json:"PatientID,omitempty" example:"1"`
	CholCheck *bool  `json:"CholCheck,omitempty" example:"true"`
	GenHlth   *int   `json:"GenHlth,omitempty" example:"3"`
	MentHlth  *int   `json:"MentHlth,omitempty" example:"5"`
	PhysHlth  *int   `json:"PhysHlth,omitempty" example:"2"`
}

func (p HealthMetricPayload) OwnerID() *int64 { return p.PatientID }

func (p HealthMetricPayload) HealthMetric() HealthMetric {
	return HealthMetric{
		PatientID: deref(p.PatientID),
		CholCheck: p.CholCheck,
		GenHlth:   p.GenHlth,
		MentHlth:  p.MentHlth,
		PhysHlth:  p.PhysHlth,
	}
}

func (p HealthMetricPayload) Fields() map[string]interface{} {
	fields := map[string]interface{}{}
	putIfSet(fields, "PatientID", p.PatientID)
	putIfSet(fields, "CholCheck", p.CholCheck)
	putIfSet(fields, "GenHlth", p.GenHlth)
	putIfSet(fields, "MentHlth", p.MentHlth)
	putIfSet(fields, "PhysHlth", p.PhysHlth)
	return fields
}
