package model

import (
	"fmt"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/Brownie44l1/flower-predict/internal/checkpoint"
)

// ioNames picks the graph input and output to bind, preferring names from
// the checkpoint, and checks the output width against the class count.
func ioNames(ckpt *checkpoint.Checkpoint) (string, string, error) {
	inputs, outputs, err := ort.GetInputOutputInfo(ckpt.ModelPath)
	if err != nil {
		return "", "", fmt.Errorf("failed to inspect model: %w", err)
	}
	return selectIO(inputs, outputs, ckpt.InputName, ckpt.OutputName, ckpt.Classes.Len())
}

func selectIO(inputs, outputs []ort.InputOutputInfo, inputName, outputName string, classes int) (string, string, error) {
	in, err := find(inputs, inputName, "input")
	if err != nil {
		return "", "", err
	}
	out, err := find(outputs, outputName, "output")
	if err != nil {
		return "", "", err
	}

	if dims := out.Dimensions; len(dims) > 0 {
		if width := dims[len(dims)-1]; width > 0 && int(width) != classes {
			return "", "", fmt.Errorf("model output %q has %d classes, checkpoint maps %d",
				out.Name, width, classes)
		}
	}
	return in.Name, out.Name, nil
}

func find(infos []ort.InputOutputInfo, name, kind string) (ort.InputOutputInfo, error) {
	if len(infos) == 0 {
		return ort.InputOutputInfo{}, fmt.Errorf("model has no %s", kind)
	}
	if name == "" {
		return infos[0], nil
	}
	for _, info := range infos {
		if info.Name == name {
			return info, nil
		}
	}
	return ort.InputOutputInfo{}, fmt.Errorf("model has no %s named %q", kind, name)
}
