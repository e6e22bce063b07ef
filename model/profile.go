package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PatientProfile is the flattened join of a patient with one row of each
// related entity. Fields of a missing relation stay nil.
// Column tags match the result columns of the profile database functions.
type PatientProfile struct {
	PatientID int64 `gorm:"column:PatientID" json:"PatientID"`
	Sex       *bool `gorm:"column:Sex" json:"Sex"`
	Age       *int  `gorm:"column:Age" json:"Age"`
	Education *int  `gorm:"column:Education" json:"Education"`
	Income    *int  `gorm:"column:Income" json:"Income"`

	Diabetes012          *int  `gorm:"column:Diabetes_012" json:"Diabetes_012"`
	HighBP               *bool `gorm:"column:HighBP" json:"HighBP"`
	HighChol             *bool `gorm:"column:HighChol" json:"HighChol"`
	Stroke               *bool `gorm:"column:Stroke" json:"Stroke"`
	HeartDiseaseorAttack *bool `gorm:"column:HeartDiseaseorAttack" json:"HeartDiseaseorAttack"`
	DiffWalk             *bool `gorm:"column:DiffWalk" json:"DiffWalk"`

	BMI               *float64 `gorm:"column:BMI" json:"BMI"`
	Smoker            *bool    `gorm:"column:Smoker" json:"Smoker"`
	PhysActivity      *bool    `gorm:"column:PhysActivity" json:"PhysActivity"`
	Fruits            *bool    `gorm:"column:Fruits" json:"Fruits"`
	Veggies           *bool    `gorm:"column:Veggies" json:"Veggies"`
	HvyAlcoholConsump *bool    `gorm:"column:HvyAlcoholConsump" json:"HvyAlcoholConsump"`

	CholCheck *bool `gorm:"column:CholCheck" json:"CholCheck"`
	GenHlth   *int  `gorm:"column:GenHlth" json:"GenHlth"`
	MentHlth  *int  `gorm:"column:MentHlth" json:"MentHlth"`
	PhysHlth  *int  `gorm:"column:PhysHlth" json:"PhysHlth"`

	AnyHealthcare *bool `gorm:"column:AnyHealthcare" json:"AnyHealthcare"`
	NoDocbcCost   *bool `gorm:"column:NoDocbcCost" json:"NoDocbcCost"`
}

// NewPatientProfile flattens relational rows. Any of the children may be nil.
func NewPatientProfile(p Patient, hc *HealthCondition, lf *LifestyleFactor, hm *HealthMetric, ha *HealthcareAccess) PatientProfile {
	profile := PatientProfile{
		PatientID: p.PatientID,
		Sex:       p.Sex,
		Age:       p.Age,
		Education: p.Education,
		Income:    p.Income,
	}
	if hc != nil {
		profile.Diabetes012 = hc.Diabetes012
		profile.HighBP = hc.HighBP
		profile.HighChol = hc.HighChol
		profile.Stroke = hc.Stroke
		profile.HeartDiseaseorAttack = hc.HeartDiseaseorAttack
		profile.DiffWalk = hc.DiffWalk
	}
	if lf != nil {
		profile.BMI = lf.BMI
		profile.Smoker = lf.Smoker
		profile.PhysActivity = lf.PhysActivity
		profile.Fruits = lf.Fruits
		profile.Veggies = lf.Veggies
		profile.HvyAlcoholConsump = lf.HvyAlcoholConsump
	}
	if hm != nil {
		profile.CholCheck = hm.CholCheck
		profile.GenHlth = hm.GenHlth
		profile.MentHlth = hm.MentHlth
		profile.PhysHlth = hm.PhysHlth
	}
	if ha != nil {
		profile.AnyHealthcare = ha.AnyHealthcare
		profile.NoDocbcCost = ha.NoDocbcCost
	}
	return profile
}

// DocumentTrainingRecord is a document store profile with the patient document metadata.
type DocumentTrainingRecord struct {
	ID primitive.ObjectID `json:"_id" swaggertype:"string"`
	PatientProfile
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewDocumentTrainingRecord flattens documents the same way NewPatientProfile flattens rows.
func NewDocumentTrainingRecord(p PatientDocument, hc *HealthConditionDocument, lf *LifestyleFactorDocument, hm *HealthMetricDocument, ha *HealthcareAccessDocument) DocumentTrainingRecord {
	return DocumentTrainingRecord{
		ID:             p.ID,
		PatientProfile: NewPatientProfile(p.Row(), hc.Row(), lf.Row(), hm.Row(), ha.Row()),
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}
