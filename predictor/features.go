// Package predictor scores patient profiles with the diabetes risk network.
package predictor

import (
	"github.com/ariebrainware/ml-pipeline-api/model"
)

// FeatureOrder is the positional input layout of the network.
var FeatureOrder = []string{
	"HighBP", "HighChol", "CholCheck", "BMI", "Smoker",
	"Stroke", "HeartDiseaseorAttack", "PhysActivity", "Fruits", "Veggies",
	"HvyAlcoholConsump", "AnyHealthcare", "NoDocbcCost", "GenHlth", "MentHlth",
	"PhysHlth", "DiffWalk", "Sex", "Age", "Education", "Income",
}

// FeatureCount is the input width every artifact must match.
var FeatureCount = len(FeatureOrder)

func boolFeature(v *bool) float64 {
	if v != nil && *v {
		return 1
	}
	return 0
}

func intFeature(v *int) float64 {
	if v == nil {
		return 0
	}
	return float64(*v)
}

func floatFeature(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

// FeatureVector maps a profile onto FeatureOrder. Missing values become 0.
func FeatureVector(p model.PatientProfile) []float64 {
	return []float64{
		boolFeature(p.HighBP),
		boolFeature(p.HighChol),
		boolFeature(p.CholCheck),
		floatFeature(p.BMI),
		boolFeature(p.Smoker),
		boolFeature(p.Stroke),
		boolFeature(p.HeartDiseaseorAttack),
		boolFeature(p.PhysActivity),
		boolFeature(p.Fruits),
		boolFeature(p.Veggies),
		boolFeature(p.HvyAlcoholConsump),
		boolFeature(p.AnyHealthcare),
		boolFeature(p.NoDocbcCost),
		intFeature(p.GenHlth),
		intFeature(p.MentHlth),
		intFeature(p.PhysHlth),
		boolFeature(p.DiffWalk),
		boolFeature(p.Sex),
		intFeature(p.Age),
		intFeature(p.Education),
		intFeature(p.Income),
	}
}

// Snapshot names each value of an unscaled feature vector.
func Snapshot(features []float64) map[string]float64 {
	out := make(map[string]float64, len(features))
	for i, v := range features {
		if i < len(FeatureOrder) {
			out[FeatureOrder[i]] = v
		}
	}
	return out
}
