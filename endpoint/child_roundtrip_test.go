package endpoint_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// childCase is one related entity with a full body and a partial update.
type childCase struct {
	path   string
	idKey  string
	body   map[string]interface{}
	update map[string]interface{}
}

var childCases = []childCase{
	{
		path:  "health-conditions",
		idKey: "ConditionID",
		body: map[string]interface{}{
			"Diabetes_012": 0, "HighBP": false, "HighChol": true,
			"Stroke": false, "HeartDiseaseorAttack": false, "DiffWalk": true,
		},
		update: map[string]interface{}{"Diabetes_012": 2},
	},
	{
		path:  "lifestyle-factors",
		idKey: "LifestyleID",
		body: map[string]interface{}{
			"BMI": 31.25, "Smoker": false, "PhysActivity": true,
			"Fruits": false, "Veggies": true, "HvyAlcoholConsump": false,
		},
		update: map[string]interface{}{"Smoker": true},
	},
	{
		path:  "health-metrics",
		idKey: "MetricsID",
		body: map[string]interface{}{
			"CholCheck": false, "GenHlth": 1, "MentHlth": 0, "PhysHlth": 30,
		},
		update: map[string]interface{}{"MentHlth": 4},
	},
	{
		path:  "healthcare-access",
		idKey: "AccessID",
		body: map[string]interface{}{
			"AnyHealthcare": false, "NoDocbcCost": true,
		},
		update: map[string]interface{}{"AnyHealthcare": true},
	},
}

// asJSON converts a request value to the type it decodes to from a response.
func asJSON(v interface{}) interface{} {
	if n, ok := v.(int); ok {
		return float64(n)
	}
	return v
}

func withPatient(body map[string]interface{}, patientID float64) map[string]interface{} {
	out := map[string]interface{}{"PatientID": patientID}
	for k, v := range body {
		out[k] = v
	}
	return out
}

func assertFields(t *testing.T, want, got map[string]interface{}) {
	t.Helper()
	for k, v := range want {
		assert.Equal(t, asJSON(v), got[k], "field %s", k)
	}
}

func TestChildRows_RoundTrip(t *testing.T) {
	for _, tc := range childCases {
		t.Run(tc.path, func(t *testing.T) {
			s := setupServer(t, false)
			patient := dataOf(s.do(t, 201, "POST", "/api/v1/postgres/patients", map[string]interface{}{"Age": 7}))
			patientID := patient["PatientID"].(float64)
			base := "/api/v1/postgres/" + tc.path

			body := withPatient(tc.body, patientID)
			created := dataOf(s.do(t, 201, "POST", base, body))
			id := created[tc.idKey].(float64)
			assertFields(t, body, created)

			got := dataOf(s.do(t, 200, "GET", fmt.Sprintf("%s/%d", base, int64(id)), nil))
			assertFields(t, body, got)

			updated := dataOf(s.do(t, 200, "PUT", fmt.Sprintf("%s/%d", base, int64(id)), tc.update))
			want := withPatient(tc.body, patientID)
			for k, v := range tc.update {
				want[k] = v
			}
			assertFields(t, want, updated)
			assertFields(t, want, dataOf(s.do(t, 200, "GET", fmt.Sprintf("%s/%d", base, int64(id)), nil)))
		})
	}
}

func TestDocumentChildren_RoundTrip(t *testing.T) {
	for _, tc := range childCases {
		t.Run(tc.path, func(t *testing.T) {
			s := setupServer(t, false)
			patient := dataOf(s.do(t, 201, "POST", "/api/v1/mongodb/patients", map[string]interface{}{"Age": 7}))
			patientID := patient["PatientID"].(float64)
			base := "/api/v1/mongodb/" + tc.path

			body := withPatient(tc.body, patientID)
			created := dataOf(s.do(t, 201, "POST", base, body))
			id, _ := created["_id"].(string)
			require.Len(t, id, 24)
			assertFields(t, body, created)
			createdAt := parseTime(t, created["created_at"])
			assert.False(t, parseTime(t, created["updated_at"]).Before(createdAt))

			got := dataOf(s.do(t, 200, "GET", base+"/"+id, nil))
			assertFields(t, body, got)

			time.Sleep(2 * time.Millisecond)
			updated := dataOf(s.do(t, 200, "PUT", base+"/"+id, tc.update))
			want := withPatient(tc.body, patientID)
			for k, v := range tc.update {
				want[k] = v
			}
			assertFields(t, want, updated)
			assert.Equal(t, createdAt, parseTime(t, updated["created_at"]))
			assert.True(t, parseTime(t, updated["updated_at"]).After(createdAt))

			assertFields(t, want, dataOf(s.do(t, 200, "GET", base+"/"+id, nil)))
		})
	}
}

func TestChildRows_UpdateMissingRowIsNotFound(t *testing.T) {
	s := setupServer(t, false)
	for _, tc := range childCases {
		// The row check runs before the PatientID check.
		s.do(t, 404, "PUT", fmt.Sprintf("/api/v1/postgres/%s/9999", tc.path), map[string]interface{}{"PatientID": 5555})
	}

	patientID := s.createPatientWithChildren(t, 50)
	s.do(t, 422, "PUT", "/api/v1/postgres/health-conditions/1", map[string]interface{}{"PatientID": patientID + 100})
}
