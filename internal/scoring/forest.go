package scoring

import (
	"context"
	"fmt"

	"github.com/polkiloo/returnearn/internal/domain/model"
)

// Forest is a local random-forest regressor loaded from an artifact.
type Forest struct {
	artifact *Artifact
}

// NewForest validates a and wraps it for inference.
func NewForest(a *Artifact) (*Forest, error) {
	if a == nil {
		return nil, fmt.Errorf("%w: nil artifact", ErrInvalidArtifact)
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return &Forest{artifact: a}, nil
}

// Version returns the artifact version.
func (f *Forest) Version() string {
	return f.artifact.Version
}

// Encoder returns the condition encoder of the model.
func (f *Forest) Encoder() Encoder {
	return f.artifact.Encoder
}

// Score averages the leaf reached in every tree and clamps the result.
func (f *Forest) Score(_ context.Context, condition model.Condition, daysUsed int) (model.Score, error) {
	code, ok := f.artifact.Encoder.Encode(condition)
	if !ok {
		return model.Score{}, fmt.Errorf("%w: %q", ErrUnknownCondition, condition)
	}

	x := [2]float64{float64(code), float64(daysUsed)}
	var sum float64
	for _, t := range f.artifact.Trees {
		sum += t.predict(x)
	}
	value := Clamp(sum / float64(len(f.artifact.Trees)))

	return model.Score{Value: value, ModelVersion: f.artifact.Version}, nil
}

func (t Tree) predict(x [2]float64) float64 {
	node := 0
	for t.Feature[node] != LeafFeature {
		if x[t.Feature[node]] <= t.Threshold[node] {
			node = t.Left[node]
		} else {
			node = t.Right[node]
		}
	}
	return t.Value[node]
}
