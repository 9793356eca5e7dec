package checkpoint

import (
	"fmt"
	"strings"
)

// Arch is the base network a checkpoint's classifier head was trained on.
type Arch int

const (
	ResNet50 Arch = iota + 1
	VGG16
	DenseNet121
)

var archTags = map[string]Arch{
	"resnet50":    ResNet50,
	"vgg16":       VGG16,
	"densenet121": DenseNet121,
}

// ParseArch maps a checkpoint architecture tag onto the closed set of
// supported networks.
func ParseArch(tag string) (Arch, error) {
	a, ok := archTags[strings.ToLower(strings.TrimSpace(tag))]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedArchitecture, tag)
	}
	return a, nil
}

func (a Arch) String() string {
	switch a {
	case ResNet50:
		return "resnet50"
	case VGG16:
		return "vgg16"
	case DenseNet121:
		return "densenet121"
	}
	return fmt.Sprintf("Arch(%d)", int(a))
}

// FeatureWidth is the number of features the base network feeds into the
// classifier head.
func (a Arch) FeatureWidth() int {
	switch a {
	case ResNet50:
		return 2048
	case VGG16:
		return 25088
	case DenseNet121:
		return 1024
	}
	return 0
}
