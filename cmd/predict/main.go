package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/Brownie44l1/flower-predict/internal/checkpoint"
	"github.com/Brownie44l1/flower-predict/internal/config"
	"github.com/Brownie44l1/flower-predict/internal/labels"
	"github.com/Brownie44l1/flower-predict/internal/model"
	"github.com/Brownie44l1/flower-predict/internal/predict"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	logrus.SetOutput(stderr)
	logrus.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})

	cfg, err := config.Parse(args, stderr, nil)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		logrus.Error(err)
		return 2
	}
	logrus.SetLevel(cfg.LogLevel)

	if err := predictImage(cfg, stdout); err != nil {
		logrus.Error(err)
		return 1
	}
	return 0
}

func predictImage(cfg config.Config, stdout io.Writer) error {
	ckpt, err := checkpoint.Load(cfg.Checkpoint)
	if err != nil {
		return err
	}
	logrus.WithFields(logrus.Fields{
		"arch":    ckpt.Arch,
		"classes": ckpt.Classes.Len(),
		"output":  ckpt.Output,
	}).Info("checkpoint loaded")

	var names labels.CategoryNames
	if cfg.CategoryNames != "" {
		if names, err = labels.LoadCategoryNames(cfg.CategoryNames); err != nil {
			return err
		}
	}

	env, err := model.NewEnvironment(cfg.LibraryPath)
	if err != nil {
		return err
	}
	defer env.Close()

	session, err := model.Open(env, ckpt, cfg.GPU)
	if err != nil {
		return err
	}
	defer session.Close()

	fmt.Fprintf(stdout, "\nUsing device: %s\n", session.Device())

	preds, err := predict.New(session, ckpt, names).Predict(cfg.ImagePath, cfg.TopK)
	if err != nil {
		return err
	}
	return predict.Write(stdout, preds)
}
