package predictor

import (
	"fmt"
	"math"
)

// Labels names the ordinal diabetes classes.
var Labels = map[int]string{
	0: "No Diabetes",
	1: "Prediabetes",
	2: "Diabetes",
}

// Interpret turns the scalar network output into a class, its label and the
// distance between output and class.
func Interpret(raw float64) (class int, label string, confidence float64) {
	class = int(math.RoundToEven(raw))
	if class < 0 {
		class = 0
	}
	if class > 2 {
		class = 2
	}
	label, ok := Labels[class]
	if !ok {
		label = fmt.Sprintf("Class %d", class)
	}
	return class, label, round4(math.Abs(raw - float64(class)))
}

func round4(v float64) float64 {
	return math.Round(v*1e4) / 1e4
}
