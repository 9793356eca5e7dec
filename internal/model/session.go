// Package model runs a checkpoint's ONNX network with onnxruntime.
package model

import (
	"fmt"

	"github.com/sirupsen/logrus"
	ort "github.com/yalue/onnxruntime_go"

	"github.com/Brownie44l1/flower-predict/internal/checkpoint"
	"github.com/Brownie44l1/flower-predict/internal/imageproc"
)

// Environment owns the process-wide onnxruntime state.
type Environment struct{}

// NewEnvironment loads the onnxruntime shared library. An empty libPath
// keeps the library's default lookup.
func NewEnvironment(libPath string) (*Environment, error) {
	if libPath != "" {
		ort.SetSharedLibraryPath(libPath)
	}
	if err := ort.InitializeEnvironment(); err != nil {
		return nil, fmt.Errorf("failed to initialize ONNX environment: %w", err)
	}
	return &Environment{}, nil
}

func (e *Environment) Close() {
	if err := ort.DestroyEnvironment(); err != nil {
		logrus.WithError(err).Warn("failed to destroy ONNX environment")
	}
}

// Session scores normalized image tensors with one loaded network. The
// network's output layer must match the checkpoint's declared score kind.
type Session struct {
	session      *ort.AdvancedSession
	inputTensor  *ort.Tensor[float32]
	outputTensor *ort.Tensor[float32]
	device       Device
	classes      int
}

// Open creates a session for ckpt. With preferGPU the CUDA provider is tried
// first and CPU is used if it cannot be set up.
func Open(env *Environment, ckpt *checkpoint.Checkpoint, preferGPU bool) (*Session, error) {
	if env == nil {
		return nil, fmt.Errorf("onnx environment not initialized")
	}

	inputName, outputName, err := ioNames(ckpt)
	if err != nil {
		return nil, &checkpoint.LoadError{Path: ckpt.ModelPath, Err: err}
	}

	classes := ckpt.Classes.Len()
	inputShape := ort.NewShape(1, imageproc.Channels, imageproc.CropSize, imageproc.CropSize)
	outputShape := ort.NewShape(1, int64(classes))

	inputTensor, err := ort.NewEmptyTensor[float32](inputShape)
	if err != nil {
		return nil, fmt.Errorf("failed to create input tensor: %w", err)
	}

	outputTensor, err := ort.NewEmptyTensor[float32](outputShape)
	if err != nil {
		inputTensor.Destroy()
		return nil, fmt.Errorf("failed to create output tensor: %w", err)
	}

	s := &Session{
		inputTensor:  inputTensor,
		outputTensor: outputTensor,
		classes:      classes,
	}

	if preferGPU {
		err = s.start(ckpt.ModelPath, inputName, outputName, CUDA)
		if err != nil {
			logrus.WithError(err).Warn("CUDA unavailable, falling back to CPU")
		}
	}
	if s.session == nil {
		if err = s.start(ckpt.ModelPath, inputName, outputName, CPU); err != nil {
			s.Close()
			return nil, &checkpoint.LoadError{Path: ckpt.ModelPath, Err: err}
		}
	}

	logrus.WithFields(logrus.Fields{
		"arch":    ckpt.Arch,
		"model":   ckpt.ModelPath,
		"classes": classes,
		"device":  s.device,
	}).Debug("model session ready")

	return s, nil
}

func (s *Session) start(modelPath, inputName, outputName string, d Device) error {
	opts, err := sessionOptions(d)
	if err != nil {
		return err
	}
	if opts != nil {
		defer opts.Destroy()
	}

	session, err := ort.NewAdvancedSession(modelPath,
		[]string{inputName}, []string{outputName},
		[]ort.Value{s.inputTensor}, []ort.Value{s.outputTensor},
		opts)
	if err != nil {
		return fmt.Errorf("failed to create ONNX session on %s: %w", d, err)
	}

	s.session = session
	s.device = d
	return nil
}

// Device reports where the session runs.
func (s *Session) Device() Device { return s.device }

// Score runs the network on one tensor and returns one raw score per class,
// in the model's internal index order.
func (s *Session) Score(t imageproc.Tensor) ([]float32, error) {
	input := s.inputTensor.GetData()
	if len(t.Data) != len(input) {
		return nil, fmt.Errorf("expected %d input values, got %d", len(input), len(t.Data))
	}
	copy(input, t.Data)

	if err := s.session.Run(); err != nil {
		return nil, fmt.Errorf("inference failed: %w", err)
	}

	out := s.outputTensor.GetData()
	scores := make([]float32, len(out))
	copy(scores, out)
	return scores, nil
}

func (s *Session) Close() {
	if s.session != nil {
		s.session.Destroy()
	}
	if s.inputTensor != nil {
		s.inputTensor.Destroy()
	}
	if s.outputTensor != nil {
		s.outputTensor.Destroy()
	}
}
