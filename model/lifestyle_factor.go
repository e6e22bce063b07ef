package model

type LifestyleFactor struct {
	LifestyleID       int64    `gorm:"column:LifestyleID;primaryKey;autoIncrement" json:"LifestyleID" example:"1"`
	PatientID         int64    `gorm:"column:PatientID;not null;index" json:"PatientID" example:"1"`
	BMI               *float64 `gorm:"column:BMI" json:"BMI" example:"27.5"`
	Smoker            *bool    `gorm:"column:Smoker" json:"Smoker" example:"false"`
	PhysActivity      *bool    `gorm:"column:PhysActivity" json:"PhysActivity" example:"true"`
	Fruits            *bool    `gorm:"column:Fruits" json:"Fruits" example:"true"`
	Veggies           *bool    `gorm:"column:Veggies" json:"Veggies" example:"true"`
	HvyAlcoholConsump *bool    `gorm:"column:HvyAlcoholConsump" json:"HvyAlcoholConsump" example:"false"`
	Patient           *Patient `gorm:"foreignKey:PatientID;references:PatientID;constraint:OnDelete:CASCADE" json:"-"`
}

func (LifestyleFactor) TableName() string { return TableLifestyleFactors }

type LifestyleFactorPayload struct {
	PatientID         *int64   `json:"PatientID,omitempty" example:"1"`
	BMI               *float64 `json:"BMI,omitempty" example:"27.5"`
	Smoker            *bool    `json:"Smoker,omitempty" example:"false"`
	PhysActivity      *bool    `json:"PhysActivity,omitempty" example:"true"`
	Fruits            *bool    `json:"Fruits,omitempty" example:"true"`
	Veggies           *bool    `json:"Veggies,omitempty" example:"true"`
	HvyAlcoholConsump *bool    `json:"HvyAlcoholConsump,omitempty" example:"false"`
}

func (p LifestyleFactorPayload) OwnerID() *int64 { return p.PatientID }

func (p LifestyleFactorPayload) LifestyleFactor() LifestyleFactor {
	return LifestyleFactor{
		PatientID:         deref(p.PatientID),
		BMI:               p.BMI,
		Smoker:            p.Smoker,
		PhysActivity:      p.PhysActivity,
		Fruits:            p.Fruits,
		Veggies:           p.Veggies,
		HvyAlcoholConsump: p.HvyAlcoholConsump,
	}
}

func (p LifestyleFactorPayload) Fields() map[string]interface{} {
	fields := map[string]interface{}{}
	putIfSet(fields, "PatientID", p.PatientID)
	putIfSet(fields, "BMI", p.BMI)
	putIfSet(fields, "Smoker", p.Smoker)
	putIfSet(fields, "PhysActivity", p.PhysActivity)
	putIfSet(fields, "Fruits", p.Fruits)
	putIfSet(fields, "Veggies", p.Veggies)
	putIfSet(fields, "HvyAlcoholConsump", p.HvyAlcoholConsump)
	return fields
}
