package checkpoint

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCheckpoint(t *testing.T, manifest string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "model.onnx"), []byte("onnx"), 0o644))
	path := filepath.Join(dir, "checkpoint.json")
	require.NoError(t, os.WriteFile(path, []byte(manifest), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeCheckpoint(t, `{
		"arch": "densenet121",
		"model": "model.onnx",
		"class_to_idx": {"a": 0, "b": 1, "c": 2},
		"classifier": {"in_features": 1024, "hidden": [256], "out_features": 3}
	}`)

	ckpt, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, DenseNet121, ckpt.Arch)
	assert.Equal(t, filepath.Join(filepath.Dir(path), "model.onnx"), ckpt.ModelPath)
	assert.Equal(t, LogProbabilities, ckpt.Output)
	assert.Equal(t, 3, ckpt.Classes.Len())

	id, ok := ckpt.Classes.ClassID(1)
	assert.True(t, ok)
	assert.Equal(t, "b", id)
}

func TestLoadUnsupportedArchitecture(t *testing.T) {
	path := writeCheckpoint(t, `{"arch": "alexnet", "model": "model.onnx", "class_to_idx": {"a": 0}}`)

	_, err := Load(path)
	require.Error(t, err)

	var loadErr *LoadError
	require.True(t, errors.As(err, &loadErr))
	assert.Equal(t, path, loadErr.Path)
	assert.True(t, errors.Is(err, ErrUnsupportedArchitecture))
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name     string
		manifest string
		target   error
	}{
		{"malformed json", `{"arch": `, nil},
		{"missing arch", `{"model": "model.onnx", "class_to_idx": {"a": 0}}`, nil},
		{"missing model", `{"arch": "vgg16", "class_to_idx": {"a": 0}}`, nil},
		{"model not found", `{"arch": "vgg16", "model": "nope.onnx", "class_to_idx": {"a": 0}}`, fs.ErrNotExist},
		{"no classes", `{"arch": "vgg16", "model": "model.onnx"}`, ErrInvalidClassIndex},
		{"index gap", `{"arch": "vgg16", "model": "model.onnx", "class_to_idx": {"a": 0, "b": 2}}`, ErrInvalidClassIndex},
		{"duplicate index", `{"arch": "vgg16", "model": "model.onnx", "class_to_idx": {"a": 1, "b": 1}}`, ErrInvalidClassIndex},
		{"unknown output", `{"arch": "vgg16", "model": "model.onnx", "class_to_idx": {"a": 0}, "output": "sigmoid"}`, nil},
		{"head width", `{"arch": "resnet50", "model": "model.onnx", "class_to_idx": {"a": 0},
			"classifier": {"in_features": 1024, "out_features": 1}}`, nil},
		{"head outputs", `{"arch": "vgg16", "model": "model.onnx", "class_to_idx": {"a": 0},
			"classifier": {"in_features": 25088, "out_features": 102}}`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeCheckpoint(t, tt.manifest))
			require.Error(t, err)

			var loadErr *LoadError
			assert.True(t, errors.As(err, &loadErr))
			if tt.target != nil {
				assert.ErrorIs(t, err, tt.target)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))

	var loadErr *LoadError
	require.True(t, errors.As(err, &loadErr))
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestLoadLogits(t *testing.T) {
	path := writeCheckpoint(t, `{"arch": "VGG16", "model": "model.onnx", "class_to_idx": {"x": 0}, "output": "logits"}`)

	ckpt, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, VGG16, ckpt.Arch)
	assert.Equal(t, Logits, ckpt.Output)
}

func TestParseArch(t *testing.T) {
	for tag, want := range map[string]Arch{"resnet50": ResNet50, "vgg16": VGG16, "densenet121": DenseNet121} {
		got, err := ParseArch(tag)
		require.NoError(t, err)
		assert.Equal(t, want, got)
		assert.Equal(t, tag, got.String())
		assert.Positive(t, got.FeatureWidth())
	}

	_, err := ParseArch("resnet18")
	assert.ErrorIs(t, err, ErrUnsupportedArchitecture)
}

func TestClassIDOutOfRange(t *testing.T) {
	idx, err := NewClassIndex(map[string]int{"a": 0})
	require.NoError(t, err)

	_, ok := idx.ClassID(1)
	assert.False(t, ok)
	_, ok = idx.ClassID(-1)
	assert.False(t, ok)
}
