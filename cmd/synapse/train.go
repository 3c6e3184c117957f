package main

import (
	"flag"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/born-ml/synapse/internal/config"
	"github.com/born-ml/synapse/internal/errs"
	"github.com/born-ml/synapse/internal/feedforward"
	"github.com/born-ml/synapse/internal/lstm"
	"github.com/born-ml/synapse/internal/serialization"
	"github.com/born-ml/synapse/internal/train"
)

func trainCmd(args []string, stdout io.Writer, log *logrus.Logger) error {
	fs := flag.NewFlagSet("train", flag.ContinueOnError)
	fs.SetOutput(stdout)
	path := fs.String("config", "", "training job file (YAML)")
	verbose := fs.Bool("v", false, "debug logging and a progress line every epoch")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *path == "" {
		return errors.New("train: -config is required")
	}

	job, err := config.Load(*path)
	if err != nil {
		return err
	}

	opts := job.Train
	opts.Logger = log
	if *verbose {
		log.SetLevel(logrus.DebugLevel)
		opts.LogPeriod = 1
	}

	entry := log.WithFields(logrus.Fields{"type": job.Type, "output": job.Output})
	entry.Info("training started")

	var stats train.Stats
	switch job.Type {
	case serialization.TypeNeuralNetwork:
		stats, err = trainFeedforward(job, opts)
	case serialization.TypeLSTM:
		stats, err = trainLSTM(job, opts)
	}
	if err != nil {
		return err
	}

	entry.WithFields(logrus.Fields{
		"iterations": stats.Iterations,
		"error":      stats.Error,
	}).Info("model saved")
	return nil
}

func trainFeedforward(job *config.Job, opts train.Options) (train.Stats, error) {
	samples, err := config.ReadSamples(job.Data)
	if err != nil {
		return train.Stats{}, err
	}
	net, err := feedforward.New(job.Feedforward)
	if err != nil {
		return train.Stats{}, err
	}
	stats, err := net.Train(samples, opts)
	if err != nil {
		return stats, err
	}
	if err := prepareOutput(job.Output); err != nil {
		return stats, err
	}
	return stats, net.Save(job.Output)
}

func trainLSTM(job *config.Job, opts train.Options) (train.Stats, error) {
	net, err := lstm.New(job.LSTM)
	if err != nil {
		return train.Stats{}, err
	}

	var sequences []lstm.Sequence
	if job.Text != nil {
		vocab, seqs, err := config.TextSequences(job.Text)
		if err != nil {
			return train.Stats{}, err
		}
		if err := net.SetVocabulary(vocab); err != nil {
			return train.Stats{}, err
		}
		sequences = seqs
	} else {
		if sequences, err = config.ReadSequences(job.Data); err != nil {
			return train.Stats{}, err
		}
	}

	stats, err := net.Train(sequences, opts)
	if err != nil {
		return stats, err
	}
	if err := prepareOutput(job.Output); err != nil {
		return stats, err
	}
	return stats, net.Save(job.Output)
}

func prepareOutput(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return errs.IO("write", path, err)
	}
	return nil
}
