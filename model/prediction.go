package model

import (
	"time"

	"gorm.io/datatypes"
)

// Prediction is the audit row written for every model inference.
// It has no foreign key so the history survives patient deletion.
type Prediction struct {
	PredictionID    int64          `gorm:"column:PredictionID;primaryKey;autoIncrement" json:"PredictionID" example:"1"`
	PatientID       int64          `gorm:"column:PatientID;not null;index" json:"PatientID" example:"1"`
	RawOutput       float64        `gorm:"column:RawOutput" json:"RawOutput" example:"0.8731"`
	PredictedClass  int            `gorm:"column:PredictedClass" json:"PredictedClass" example:"1"`
	PredictedLabel  string         `gorm:"column:PredictedLabel;size:50" json:"PredictedLabel" example:"Prediabetes"`
	ModelVersion    string         `gorm:"column:ModelVersion;size:50" json:"ModelVersion" example:"model_exp5"`
	PredictedAt     time.Time      `gorm:"column:PredictedAt;index" json:"PredictedAt"`
	FeatureSnapshot datatypes.JSON `gorm:"column:FeatureSnapshot" json:"FeatureSnapshot,omitempty" swaggertype:"object"`
}

func (Prediction) TableName() string { return TablePredictions }
