package model

import "time"

// ValidationLog records a value rejected by the upstream ETL validation step.
type ValidationLog struct {
	ValidationID   int64     `gorm:"column:ValidationID;primaryKey;autoIncrement" json:"ValidationID" example:"1"`
	SourceTable    string    `gorm:"column:TableName;size:100" json:"TableName" example:"Lifestyle_Factors"`
	PatientID      *int64    `gorm:"column:PatientID;index" json:"PatientID" example:"1"`
	ColumnName     string    `gorm:"column:ColumnName;size:100" json:"ColumnName" example:"BMI"`
	Value          string    `gorm:"column:Value" json:"Value" example:"312.4"`
	ValidationRule string    `gorm:"column:ValidationRule" json:"ValidationRule" example:"BMI BETWEEN 10 AND 100"`
	ErrorMessage   string    `gorm:"column:ErrorMessage" json:"ErrorMessage" example:"BMI out of range"`
	ValidatedAt    time.Time `gorm:"column:ValidatedAt;index" json:"ValidatedAt"`
	ValidatedBy    string    `gorm:"column:ValidatedBy;size:100" json:"ValidatedBy" example:"etl"`
}

func (ValidationLog) TableName() string { return TableValidationLog }

// CountBy is one row of a grouped validation log count.
type CountBy struct {
	Name  string `gorm:"column:name"`
	Count int64  `gorm:"column:total"`
}
