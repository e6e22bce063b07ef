package model

// Patient holds the demographic part of a patient record.
// @Description Patient demographic information
type Patient struct {
	PatientID int64 `gorm:"column:PatientID;primaryKey;autoIncrement" json:"PatientID" example:"1"`
	Sex       *bool `gorm:"column:Sex" json:"Sex" example:"true"`
	Age       *int  `gorm:"column:Age" json:"Age" example:"45"`
	Education *int  `gorm:"column:Education" json:"Education" example:"4"`
	Income    *int  `gorm:"column:Income" json:"Income" example:"75000"`
}

func (Patient) TableName() string { return TablePatients }

// PatientPayload is the body accepted by patient create and update requests.
// PatientID is only honoured by the document store, which has no auto increment.
type PatientPayload struct {
	PatientID *int64 `json:"PatientID,omitempty" example:"1"`
	Sex       *bool  `json:"Sex,omitempty" example:"true"`
	Age       *int   `json:"Age,omitempty" example:"45"`
	Education *int   `json:"Education,omitempty" example:"4"`
	Income    *int   `json:"Income,omitempty" example:"75000"`
}

func (p PatientPayload) Patient() Patient {
	return Patient{
		Sex:       p.Sex,
		Age:       p.Age,
		Education: p.Education,
		Income:    p.Income,
	}
}

// Fields returns the attributes present in the payload keyed by column name.
func (p PatientPayload) Fields() map[string]interface{} {
	fields := map[string]interface{}{}
	putIfSet(fields, "Sex", p.Sex)
	putIfSet(fields, "Age", p.Age)
	putIfSet(fields, "Education", p.Education)
	putIfSet(fields, "Income", p.Income)
	return fields
}
