// Package predict runs one image through preprocessing, the network and the
// label resolver, and renders the ranked result.
package predict

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/Brownie44l1/flower-predict/internal/checkpoint"
	"github.com/Brownie44l1/flower-predict/internal/imageproc"
	"github.com/Brownie44l1/flower-predict/internal/labels"
)

// Scorer is a loaded network. Score returns one raw score per class in the
// checkpoint's internal index order.
type Scorer interface {
	Score(t imageproc.Tensor) ([]float32, error)
}

// Predictor holds everything fixed for the lifetime of a run.
type Predictor struct {
	Model   Scorer
	Output  checkpoint.ScoreKind
	Classes checkpoint.ClassIndex
	Names   labels.CategoryNames
}

// New builds a predictor for a loaded checkpoint. names may be nil.
func New(model Scorer, ckpt *checkpoint.Checkpoint, names labels.CategoryNames) *Predictor {
	return &Predictor{
		Model:   model,
		Output:  ckpt.Output,
		Classes: ckpt.Classes,
		Names:   names,
	}
}

// Predict classifies the image at imagePath and returns the topK classes.
func (p *Predictor) Predict(imagePath string, topK int) ([]labels.Prediction, error) {
	tensor, err := imageproc.Preprocess(imagePath)
	if err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{
		"image": imagePath,
		"shape": tensor.Shape(),
	}).Debug("preprocessed image")

	scores, err := p.Model.Score(tensor)
	if err != nil {
		return nil, err
	}
	if len(scores) != p.Classes.Len() {
		return nil, fmt.Errorf("model returned %d scores for %d classes", len(scores), p.Classes.Len())
	}

	return labels.Resolve(scores, p.Output, p.Classes, topK, p.Names)
}

// Write prints predictions one per line, ranked from 1.
func Write(w io.Writer, preds []labels.Prediction) error {
	if _, err := fmt.Fprintln(w, "\nPrediction Results:"); err != nil {
		return err
	}
	for i, p := range preds {
		if _, err := fmt.Fprintf(w, "%d. %s: %.2f%%\n", i+1, p.Label, p.Probability*100); err != nil {
			return err
		}
	}
	return nil
}
