package predictor

import (
	"encoding/json"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// LayerArtifact is one dense layer: weights are indexed [input][output].
type LayerArtifact struct {
	Activation string      `json:"activation"`
	Weights    [][]float64 `json:"weights"`
	Bias       []float64   `json:"bias"`
}

// ModelArtifact is the serialized network.
type ModelArtifact struct {
	Version  string          `json:"version"`
	InputDim int             `json:"input_dim"`
	Layers   []LayerArtifact `json:"layers"`
}

var activations = map[string]func(float64) float64{
	"linear":  func(v float64) float64 { return v },
	"relu":    func(v float64) float64 { return math.Max(0, v) },
	"sigmoid": func(v float64) float64 { return 1 / (1 + math.Exp(-v)) },
	"tanh":    math.Tanh,
}

type denseLayer struct {
	weights    *mat.Dense
	bias       []float64
	activation func(float64) float64
}

// Network is a feed-forward stack of dense layers with a single output.
type Network struct {
	inputDim int
	layers   []denseLayer
}

// ParseModel decodes and validates a model artifact.
func ParseModel(data []byte) (*Network, string, error) {
	var artifact ModelArtifact
	if err := json.Unmarshal(data, &artifact); err != nil {
		return nil, "", fmt.Errorf("decode model: %w", err)
	}
	network, err := NewNetwork(artifact)
	if err != nil {
		return nil, "", err
	}
	return network, artifact.Version, nil
}

func NewNetwork(artifact ModelArtifact) (*Network, error) {
	if artifact.InputDim != FeatureCount {
		return nil, fmt.Errorf("model expects %d inputs, feature vector has %d", artifact.InputDim, FeatureCount)
	}
	if len(artifact.Layers) == 0 {
		return nil, fmt.Errorf("model has no layers")
	}

	n := &Network{inputDim: artifact.InputDim}
	width := artifact.InputDim
	for i, layer := range artifact.Layers {
		act, ok := activations[layer.Activation]
		if !ok {
			return nil, fmt.Errorf("layer %d: unknown activation %q", i, layer.Activation)
		}
		if len(layer.Weights) != width {
			return nil, fmt.Errorf("layer %d: %d weight rows, want %d", i, len(layer.Weights), width)
		}
		out := len(layer.Bias)
		if out == 0 {
			return nil, fmt.Errorf("layer %d: empty bias", i)
		}
		data := make([]float64, 0, width*out)
		for r, row := range layer.Weights {
			if len(row) != out {
				return nil, fmt.Errorf("layer %d: weight row %d has %d columns, want %d", i, r, len(row), out)
			}
			data = append(data, row...)
		}
		n.layers = append(n.layers, denseLayer{
			weights:    mat.NewDense(width, out, data),
			bias:       layer.Bias,
			activation: act,
		})
		width = out
	}
	if width != 1 {
		return nil, fmt.Errorf("model output has %d units, want 1", width)
	}
	return n, nil
}

// Forward runs one sample through the network and returns the scalar output.
func (n *Network) Forward(x []float64) (float64, error) {
	if len(x) != n.inputDim {
		return 0, fmt.Errorf("input has %d values, want %d", len(x), n.inputDim)
	}
	in := make([]float64, len(x))
	copy(in, x)
	var act mat.Matrix = mat.NewDense(1, len(in), in)

	for _, layer := range n.layers {
		var next mat.Dense
		next.Mul(act, layer.weights)
		next.Apply(func(_, j int, v float64) float64 {
			return layer.activation(v + layer.bias[j])
		}, &next)
		act = &next
	}

	out := act.At(0, 0)
	if math.IsNaN(out) || math.IsInf(out, 0) {
		return 0, fmt.Errorf("model produced non-finite output")
	}
	return out, nil
}
