package model

// HealthCondition stores the diagnosed conditions of a patient.
// Diabetes_012 is the target label: 0 no diabetes, 1 prediabetes, 2 diabetes.
type HealthCondition struct {
	ConditionID          int64    `gorm:"column:ConditionID;primaryKey;autoIncrement" json:"ConditionID" example:"1"`
	PatientID            int64    `gorm:"column:PatientID;not null;index" json:"PatientID" example:"1"`
	Diabetes012          *int     `gorm:"column:Diabetes_012" json:"Diabetes_012" example:"0"`
	HighBP               *bool    `gorm:"column:HighBP" json:"HighBP" example:"true"`
	HighChol             *bool    `gorm:"column:HighChol" json:"HighChol" example:"false"`
	Stroke               *bool    `gorm:"column:Stroke" json:"Stroke" example:"false"`
	HeartDiseaseorAttack *bool    `gorm:"column:HeartDiseaseorAttack" json:"HeartDiseaseorAttack" example:"false"`
	DiffWalk             *bool    `gorm:"column:DiffWalk" json:"DiffWalk" example:"false"`
	Patient              *Patient `gorm:"foreignKey:PatientID;references:PatientID;constraint:OnDelete:CASCADE" json:"-"`
}

func (HealthCondition) TableName() string { return TableHealthConditions }

type HealthConditionPayload struct {
	PatientID            *int64 `json:"PatientID,omitempty" example:"1"`
	Diabetes012          *int   `json:"Diabetes_012,omitempty" binding:"omitempty,min=0,max=2" example:"0"`
	HighBP               *bool  `json:"HighBP,omitempty" example:"true"`
	HighChol             *bool  `json:"HighChol,omitempty" example:"false"`
	Stroke               *bool  `json:"Stroke,omitempty" example:"false"`
	HeartDiseaseorAttack *bool  `json:"HeartDiseaseorAttack,omitempty" example:"false"`
	DiffWalk             *bool  `json:"DiffWalk,omitempty" example:"false"`
}

func (p HealthConditionPayload) OwnerID() *int64 { return p.PatientID }

func (p HealthConditionPayload) HealthCondition() HealthCondition {
	return HealthCondition{
		PatientID:            deref(p.PatientID),
		Diabetes012:          p.Diabetes012,
		HighBP:               p.HighBP,
		HighChol:             p.HighChol,
		Stroke:               p.Stroke,
		HeartDiseaseorAttack: p.HeartDiseaseorAttack,
		DiffWalk:             p.DiffWalk,
	}
}

func (p HealthConditionPayload) Fields() map[string]interface{} {
	fields := map[string]interface{}{}
	putIfSet(fields, "PatientID", p.PatientID)
	putIfSet(fields, "Diabetes_012", p.Diabetes012)
	putIfSet(fields, "HighBP", p.HighBP)
	putIfSet(fields, "HighChol", p.HighChol)
	putIfSet(fields, "Stroke", p.Stroke)
	putIfSet(fields, "HeartDiseaseorAttack", p.HeartDiseaseorAttack)
	putIfSet(fields, "DiffWalk", p.DiffWalk)
	return fields
}
