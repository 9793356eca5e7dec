package checkpoint

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ScoreKind describes what the network's final layer emits.
type ScoreKind int

const (
	// LogProbabilities means the last layer is a log-softmax, so exp(score)
	// already sums to one.
	LogProbabilities ScoreKind = iota
	// Logits are unnormalized and need a softmax.
	Logits
)

func (k ScoreKind) String() string {
	if k == Logits {
		return "logits"
	}
	return "log_softmax"
}

func parseScoreKind(s string) (ScoreKind, error) {
	switch s {
	case "", "log_softmax", "logsoftmax", "log_probabilities":
		return LogProbabilities, nil
	case "logits":
		return Logits, nil
	}
	return 0, fmt.Errorf("unknown output kind %q", s)
}

// ClassifierHead describes the head reattached to the base network.
type ClassifierHead struct {
	InFeatures  int     `json:"in_features"`
	Hidden      []int   `json:"hidden,omitempty"`
	Dropout     float64 `json:"dropout,omitempty"`
	OutFeatures int     `json:"out_features"`
}

// manifest is the on-disk checkpoint record.
type manifest struct {
	Arch       string          `json:"arch"`
	Model      string          `json:"model"`
	ClassToIdx map[string]int  `json:"class_to_idx"`
	Output     string          `json:"output"`
	InputName  string          `json:"input_name"`
	OutputName string          `json:"output_name"`
	Classifier *ClassifierHead `json:"classifier"`
}

// Checkpoint is a validated, read-only trained model artifact.
type Checkpoint struct {
	Arch       Arch
	ModelPath  string
	Classes    ClassIndex
	Output     ScoreKind
	InputName  string
	OutputName string
	Classifier *ClassifierHead
}

// Load reads a checkpoint manifest and validates it against the supported
// architectures. The ONNX model path is resolved relative to the manifest.
func Load(path string) (*Checkpoint, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}

	var m manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, &LoadError{Path: path, Err: fmt.Errorf("failed to parse manifest: %w", err)}
	}

	ckpt, err := m.validate(filepath.Dir(path))
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	return ckpt, nil
}

func (m manifest) validate(dir string) (*Checkpoint, error) {
	if m.Arch == "" {
		return nil, errors.New("missing arch")
	}
	arch, err := ParseArch(m.Arch)
	if err != nil {
		return nil, err
	}

	if m.Model == "" {
		return nil, errors.New("missing model file")
	}
	modelPath := m.Model
	if !filepath.IsAbs(modelPath) {
		modelPath = filepath.Join(dir, modelPath)
	}
	if _, err := os.Stat(modelPath); err != nil {
		return nil, fmt.Errorf("model file: %w", err)
	}

	classes, err := NewClassIndex(m.ClassToIdx)
	if err != nil {
		return nil, err
	}

	kind, err := parseScoreKind(m.Output)
	if err != nil {
		return nil, err
	}

	if h := m.Classifier; h != nil {
		if h.InFeatures != arch.FeatureWidth() {
			return nil, fmt.Errorf("classifier expects %d input features, %s provides %d",
				h.InFeatures, arch, arch.FeatureWidth())
		}
		if h.OutFeatures != classes.Len() {
			return nil, fmt.Errorf("classifier has %d outputs for %d classes",
				h.OutFeatures, classes.Len())
		}
	}

	return &Checkpoint{
		Arch:       arch,
		ModelPath:  modelPath,
		Classes:    classes,
		Output:     kind,
		InputName:  m.InputName,
		OutputName: m.OutputName,
		Classifier: m.Classifier,
	}, nil
}
