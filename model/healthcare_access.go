package model

type HealthcareAccess struct {
	AccessID      int64    `gorm:"column:AccessID;primaryKey;autoIncrement" json:"AccessID" example:"1"`
	PatientID     int64    `gorm:"column:PatientID;not null;index" json:"PatientID" example:"1"`
	AnyHealthcare *bool    `gorm:"column:AnyHealthcare" json:"AnyHealthcare" example:"true"`
	NoDocbcCost   *bool    `gorm:"column:NoDocbcCost" json:"NoDocbcCost" example:"false"`
	Patient       *Patient `gorm:"foreignKey:PatientID;references:PatientID;constraint:OnDelete:CASCADE" json:"-"`
}

func (HealthcareAccess) TableName() string { return TableHealthcareAccess }

type HealthcareAccessPayload struct {
	PatientID     *int64 `json:"PatientID,omitempty" example:"1"`
	AnyHealthcare *bool  `json:"AnyHealthcare,omitempty" example:"true"`
	NoDocbcCost   *bool  `json:"NoDocbcCost,omitempty" example:"false"`
}

func (p HealthcareAccessPayload) OwnerID() *int64 { return p.PatientID }

func (p HealthcareAccessPayload) HealthcareAccess() HealthcareAccess {
	return HealthcareAccess{
		PatientID:     deref(p.PatientID),
		AnyHealthcare: p.AnyHealthcare,
		NoDocbcCost:   p.NoDocbcCost,
	}
}

func (p HealthcareAccessPayload) Fields() map[string]interface{} {
	fields := map[string]interface{}{}
	putIfSet(fields, "PatientID", p.PatientID)
	putIfSet(fields, "AnyHealthcare", p.AnyHealthcare)
	putIfSet(fields, "NoDocbcCost", p.NoDocbcCost)
	return fields
}
