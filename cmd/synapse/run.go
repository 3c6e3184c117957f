package main

import (
	"encoding/json"
	"flag"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/born-ml/synapse/internal/errs"
	"github.com/born-ml/synapse/internal/feedforward"
	"github.com/born-ml/synapse/internal/lstm"
	"github.com/born-ml/synapse/internal/serialization"
)

// model is a snapshot loaded into whichever engine wrote it.
type model struct {
	feedforward *feedforward.Network
	lstm        *lstm.Network
}

func loadModel(path string) (*model, error) {
	f, err := serialization.ReadFile(path)
	if err != nil {
		return nil, err
	}
	typ, err := f.Type()
	if err != nil {
		return nil, errs.IO("read", path, err)
	}

	switch typ {
	case serialization.TypeNeuralNetwork:
		var s feedforward.Snapshot
		if err := f.Decode(&s); err != nil {
			return nil, errs.IO("read", path, err)
		}
		net, err := feedforward.FromSnapshot(&s)
		return &model{feedforward: net}, err
	case serialization.TypeLSTM:
		var s lstm.Snapshot
		if err := f.Decode(&s); err != nil {
			return nil, errs.IO("read", path, err)
		}
		net, err := lstm.FromSnapshot(&s)
		return &model{lstm: net}, err
	}
	return nil, errs.Configuration("type", "unknown model type %q", typ)
}

func runCmd(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.SetOutput(stdout)
	path := fs.String("model", "", "snapshot file")
	input := fs.String("input", "", "comma-separated input vector; LSTM steps separated by ';'")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *path == "" || *input == "" {
		return errors.New("run: -model and -input are required")
	}

	m, err := loadModel(*path)
	if err != nil {
		return err
	}

	var out []float64
	if m.feedforward != nil {
		x, err := parseVector(*input)
		if err != nil {
			return err
		}
		out, err = m.feedforward.Run(x)
		if err != nil {
			return err
		}
	} else {
		seq, err := parseSequence(*input)
		if err != nil {
			return err
		}
		out, err = m.lstm.Run(seq)
		if err != nil {
			return err
		}
	}
	return json.NewEncoder(stdout).Encode(out)
}

func parseVector(s string) ([]float64, error) {
	fields := strings.Split(s, ",")
	out := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return nil, errs.Configuration("input", "element %d: %v", i, err)
		}
		out[i] = v
	}
	return out, nil
}

func parseSequence(s string) ([][]float64, error) {
	var out [][]float64
	for _, step := range strings.Split(s, ";") {
		x, err := parseVector(step)
		if err != nil {
			return nil, err
		}
		out = append(out, x)
	}
	return out, nil
}
