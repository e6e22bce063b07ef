package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Documents mirror the relational entities in the document store. The
// logical PatientID links them; the store does not enforce the reference.

type PatientDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id" swaggertype:"string"`
	PatientID int64              `bson:"PatientID" json:"PatientID"`
	Sex       *bool              `bson:"Sex,omitempty" json:"Sex"`
	Age       *int               `bson:"Age,omitempty" json:"Age"`
	Education *int               `bson:"Education,omitempty" json:"Education"`
	Income    *int               `bson:"Income,omitempty" json:"Income"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}

type HealthConditionDocument struct {
	ID                   primitive.ObjectID `bson:"_id,omitempty" json:"_id" swaggertype:"string"`
	PatientID            int64              `bson:"PatientID" json:"PatientID"`
	Diabetes012          *int               `bson:"Diabetes_012,omitempty" json:"Diabetes_012"`
	HighBP               *bool              `bson:"HighBP,omitempty" json:"HighBP"`
	HighChol             *bool              `bson:"HighChol,omitempty" json:"HighChol"`
	Stroke               *bool              `bson:"Stroke,omitempty" json:"Stroke"`
	HeartDiseaseorAttack *bool              `bson:"HeartDiseaseorAttack,omitempty" json:"HeartDiseaseorAttack"`
	DiffWalk             *bool              `bson:"DiffWalk,omitempty" json:"DiffWalk"`
	CreatedAt            time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt            time.Time          `bson:"updated_at" json:"updated_at"`
}

type LifestyleFactorDocument struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"_id" swaggertype:"string"`
	PatientID         int64              `bson:"PatientID" json:"PatientID"`
	BMI               *float64           `bson:"BMI,omitempty" json:"BMI"`
	Smoker            *bool              `bson:"Smoker,omitempty" json:"Smoker"`
	PhysActivity      *bool              `bson:"PhysActivity,omitempty" json:"PhysActivity"`
	Fruits            *bool              `bson:"Fruits,omitempty" json:"Fruits"`
	Veggies           *bool              `bson:"Veggies,omitempty" json:"Veggies"`
	HvyAlcoholConsump *bool              `bson:"HvyAlcoholConsump,omitempty" json:"HvyAlcoholConsump"`
	CreatedAt         time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt         time.Time          `bson:"updated_at" json:"updated_at"`
}

type HealthMetricDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id" swaggertype:"string"`
	PatientID int64              `bson:"PatientID" json:"PatientID"`
	CholCheck *bool              `bson:"CholCheck,omitempty" json:"CholCheck"`
	GenHlth   *int               `bson:"GenHlth,omitempty" json:"GenHlth"`
	MentHlth  *int               `bson:"MentHlth,omitempty" json:"MentHlth"`
	PhysHlth  *int               `bson:"PhysHlth,omitempty" json:"PhysHlth"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}

type HealthcareAccessDocument struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"_id" swaggertype:"string"`
	PatientID     int64              `bson:"PatientID" json:"PatientID"`
	AnyHealthcare *bool              `bson:"AnyHealthcare,omitempty" json:"AnyHealthcare"`
	NoDocbcCost   *bool              `bson:"NoDocbcCost,omitempty" json:"NoDocbcCost"`
	CreatedAt     time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time          `bson:"updated_at" json:"updated_at"`
}

// Row conversions let both backends share the relational flattening code.
// The child conversions accept a nil receiver and return nil.

func (d PatientDocument) Row() Patient {
	return Patient{PatientID: d.PatientID, Sex: d.Sex, Age: d.Age, Education: d.Education, Income: d.Income}
}

func (d *HealthConditionDocument) Row() *HealthCondition {
	if d == nil {
		return nil
	}
	return &HealthCondition{
		PatientID:            d.PatientID,
		Diabetes012:          d.Diabetes012,
		HighBP:               d.HighBP,
		HighChol:             d.HighChol,
		Stroke:               d.Stroke,
		HeartDiseaseorAttack: d.HeartDiseaseorAttack,
		DiffWalk:             d.DiffWalk,
	}
}

func (d *LifestyleFactorDocument) Row() *LifestyleFactor {
	if d == nil {
		return nil
	}
	return &LifestyleFactor{
		PatientID:         d.PatientID,
		BMI:               d.BMI,
		Smoker:            d.Smoker,
		PhysActivity:      d.PhysActivity,
		Fruits:            d.Fruits,
		Veggies:           d.Veggies,
		HvyAlcoholConsump: d.HvyAlcoholConsump,
	}
}

func (d *HealthMetricDocument) Row() *HealthMetric {
	if d == nil {
		return nil
	}
	return &HealthMetric{
		PatientID: d.PatientID,
		CholCheck: d.CholCheck,
		GenHlth:   d.GenHlth,
		MentHlth:  d.MentHlth,
		PhysHlth:  d.PhysHlth,
	}
}

func (d *HealthcareAccessDocument) Row() *HealthcareAccess {
	if d == nil {
		return nil
	}
	return &HealthcareAccess{
		PatientID:     d.PatientID,
		AnyHealthcare: d.AnyHealthcare,
		NoDocbcCost:   d.NoDocbcCost,
	}
}
