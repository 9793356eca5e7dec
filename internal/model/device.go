package model

import (
	"fmt"

	ort "github.com/yalue/onnxruntime_go"
)

// Device is the execution provider a session runs on.
type Device int

const (
	CPU Device = iota
	CUDA
)

func (d Device) String() string {
	if d == CUDA {
		return "cuda"
	}
	return "cpu"
}

// sessionOptions builds options for d. For CPU no options are needed and nil
// is returned.
func sessionOptions(d Device) (*ort.SessionOptions, error) {
	if d != CUDA {
		return nil, nil
	}

	opts, err := ort.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("failed to create session options: %w", err)
	}

	cudaOpts, err := ort.NewCUDAProviderOptions()
	if err != nil {
		opts.Destroy()
		return nil, fmt.Errorf("failed to create CUDA provider options: %w", err)
	}
	defer cudaOpts.Destroy()

	if err := cudaOpts.Update(map[string]string{"device_id": "0"}); err != nil {
		opts.Destroy()
		return nil, fmt.Errorf("failed to configure CUDA provider: %w", err)
	}

	if err := opts.AppendExecutionProviderCUDA(cudaOpts); err != nil {
		opts.Destroy()
		return nil, fmt.Errorf("failed to attach CUDA provider: %w", err)
	}
	return opts, nil
}
