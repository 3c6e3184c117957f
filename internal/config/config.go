// Package config reads training job files.
//
// A job file is YAML:
//
//	type: NeuralNetwork          # or LSTM
//	data: xor.json               # training data, JSON
//	output: xor.snp              # snapshot written after training
//	feedforward:
//	  hiddenLayers: [3]
//	  activation: tanh
//	train:
//	  iterations: 5000
//	  errorThresh: 0.01
//	  timeout: 30s
//
// LSTM jobs use an lstm: section and either data (sequences or a raw time
// series) or text (a corpus file split into token windows). Relative paths
// are resolved against the job file's directory.
package config

import (
	"bytes"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/born-ml/synapse/internal/errs"
	"github.com/born-ml/synapse/internal/feedforward"
	"github.com/born-ml/synapse/internal/lstm"
	"github.com/born-ml/synapse/internal/serialization"
	"github.com/born-ml/synapse/internal/train"
)

// DefaultTextWindow is the number of tokens per training sequence cut from
// a text corpus.
const DefaultTextWindow = 32

// Job describes one training run.
type Job struct {
	Type        string              `yaml:"type"`
	Data        string              `yaml:"data"`
	Text        *Text               `yaml:"text"`
	Output      string              `yaml:"output"`
	Feedforward feedforward.Options `yaml:"feedforward"`
	LSTM        lstm.Options        `yaml:"lstm"`
	Train       train.Options       `yaml:"train"`
}

// Text configures training an LSTM on a text corpus.
type Text struct {
	Corpus    string `yaml:"corpus"`    // Path of the corpus file
	Tokenizer string `yaml:"tokenizer"` // "char" (default) or a tiktoken encoding/model name
	Window    int    `yaml:"window"`    // Tokens per sequence
	Stride    int    `yaml:"stride"`    // Tokens between sequence starts; defaults to Window
}

// Default returns a job with each engine's default options.
func Default() Job {
	return Job{
		Feedforward: feedforward.DefaultOptions(),
		LSTM:        lstm.DefaultOptions(),
	}
}

// Load reads and validates the job file at path.
func Load(path string) (*Job, error) {
	//nolint:gosec // G304: job files are named by the user
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.IO("read", path, err)
	}
	job, err := Parse(b, filepath.Dir(path))
	if err != nil {
		return nil, errors.Wrapf(err, "job %s", path)
	}
	return job, nil
}

// Parse decodes a job over the defaults, resolves relative paths against
// dir and validates the result. Unknown keys are rejected.
func Parse(b []byte, dir string) (*Job, error) {
	job := Default()
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&job); err != nil && !errors.Is(err, io.EOF) {
		return nil, errs.Configuration("job", "%v", err)
	}

	job.Data = resolve(dir, job.Data)
	job.Output = resolve(dir, job.Output)
	if job.Text != nil {
		job.Text.Corpus = resolve(dir, job.Text.Corpus)
		if job.Text.Window == 0 {
			job.Text.Window = DefaultTextWindow
		}
		if job.Text.Stride == 0 {
			job.Text.Stride = job.Text.Window
		}
	}

	if err := job.Validate(); err != nil {
		return nil, err
	}
	return &job, nil
}

func resolve(dir, path string) string {
	if path == "" || dir == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}

// Validate checks that the job names one engine, its inputs and valid
// options.
func (j *Job) Validate() error {
	if j.Output == "" {
		return errs.Configuration("output", "no snapshot path")
	}

	switch j.Type {
	case serialization.TypeNeuralNetwork:
		if j.Data == "" {
			return errs.Configuration("data", "no training data")
		}
		if j.Text != nil {
			return errs.Configuration("text", "text corpora need an %s job", serialization.TypeLSTM)
		}
		if err := j.Feedforward.Validate(); err != nil {
			return err
		}
	case serialization.TypeLSTM:
		if (j.Data == "") == (j.Text == nil) {
			return errs.Configuration("data", "exactly one of data and text is required")
		}
		if j.Text != nil {
			if err := j.Text.validate(); err != nil {
				return err
			}
		}
		if err := j.LSTM.Validate(); err != nil {
			return err
		}
	default:
		return errs.Configuration("type", "unknown model type %q", j.Type)
	}

	return j.Train.WithDefaults().Validate()
}

func (t *Text) validate() error {
	switch {
	case t.Corpus == "":
		return errs.Configuration("text.corpus", "no corpus file")
	case t.Window < 1:
		return errs.Configuration("text.window", "must be > 0, got %d", t.Window)
	case t.Stride < 1:
		return errs.Configuration("text.stride", "must be > 0, got %d", t.Stride)
	}
	return nil
}
