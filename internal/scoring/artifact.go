package scoring

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/polkiloo/returnearn/internal/domain/model"
)

// LeafFeature marks a tree node without a split.
const LeafFeature = -1

// Feature indices of the model input vector.
const (
	FeatureCondition = 0
	FeatureDaysUsed  = 1
)

// Artifact is the serialized regression forest together with its condition encoder.
type Artifact struct {
	Version string  `toml:"version" yaml:"version"`
	Encoder Encoder `toml:"encoder" yaml:"encoder"`
	Trees   []Tree  `toml:"trees" yaml:"trees"`
}

// Encoder maps condition labels to integer codes by their position in Classes.
type Encoder struct {
	Classes []string `toml:"classes" yaml:"classes"`
}

// Tree is a regression tree in flat array form. Node i splits on Feature[i]
// at Threshold[i] and continues at Left[i] or Right[i]; leaves carry Value[i].
type Tree struct {
	Feature   []int     `toml:"feature" yaml:"feature"`
	Threshold []float64 `toml:"threshold" yaml:"threshold"`
	Left      []int     `toml:"left" yaml:"left"`
	Right     []int     `toml:"right" yaml:"right"`
	Value     []float64 `toml:"value" yaml:"value"`
}

// LoadArtifact reads and validates an artifact, choosing the decoder by extension.
func LoadArtifact(path string) (*Artifact, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrArtifactNotFound, path)
		}
		return nil, fmt.Errorf("read artifact: %w", err)
	}

	var a Artifact
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		if err := toml.Unmarshal(raw, &a); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidArtifact, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(raw, &a); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidArtifact, err)
		}
	default:
		return nil, fmt.Errorf("%w: unsupported extension %q", ErrInvalidArtifact, ext)
	}

	if err := a.Validate(); err != nil {
		return nil, err
	}
	return &a, nil
}

// Validate checks the encoder vocabulary and the structure of every tree.
func (a *Artifact) Validate() error {
	if len(a.Encoder.Classes) == 0 {
		return fmt.Errorf("%w: empty encoder vocabulary", ErrInvalidArtifact)
	}
	for i := 1; i < len(a.Encoder.Classes); i++ {
		if a.Encoder.Classes[i-1] >= a.Encoder.Classes[i] {
			return fmt.Errorf("%w: encoder classes must be sorted and unique", ErrInvalidArtifact)
		}
	}
	if len(a.Trees) == 0 {
		return fmt.Errorf("%w: no trees", ErrInvalidArtifact)
	}
	for i, t := range a.Trees {
		if err := t.validate(); err != nil {
			return fmt.Errorf("%w: tree %d: %w", ErrInvalidArtifact, i, err)
		}
	}
	return nil
}

func (t Tree) validate() error {
	n := len(t.Feature)
	if n == 0 {
		return errors.New("no nodes")
	}
	if len(t.Threshold) != n || len(t.Left) != n || len(t.Right) != n || len(t.Value) != n {
		return errors.New("node arrays differ in length")
	}
	for i := 0; i < n; i++ {
		switch t.Feature[i] {
		case LeafFeature:
			if math.IsNaN(t.Value[i]) || math.IsInf(t.Value[i], 0) {
				return fmt.Errorf("node %d: leaf value is not finite", i)
			}
		case FeatureCondition, FeatureDaysUsed:
			if math.IsNaN(t.Threshold[i]) || math.IsInf(t.Threshold[i], 0) {
				return fmt.Errorf("node %d: threshold is not finite", i)
			}
			// Children must come after their parent.
			for _, child := range []int{t.Left[i], t.Right[i]} {
				if child <= i || child >= n {
					return fmt.Errorf("node %d: child %d out of range", i, child)
				}
			}
		default:
			return fmt.Errorf("node %d: unknown feature %d", i, t.Feature[i])
		}
	}
	return nil
}

// Encode returns the code of condition in the vocabulary.
func (e Encoder) Encode(condition model.Condition) (int, bool) {
	for i, c := range e.Classes {
		if c == string(condition) {
			return i, true
		}
	}
	return 0, false
}

// Missing lists conditions the vocabulary does not cover.
func (e Encoder) Missing() []model.Condition {
	var missing []model.Condition
	for _, c := range model.Conditions {
		if _, ok := e.Encode(c); !ok {
			missing = append(missing, c)
		}
	}
	return missing
}
