package config

import (
	"bytes"
	"encoding/json"
	"os"

	"github.com/pkg/errors"

	"github.com/born-ml/synapse/internal/data"
	"github.com/born-ml/synapse/internal/errs"
	"github.com/born-ml/synapse/internal/feedforward"
	"github.com/born-ml/synapse/internal/lstm"
	"github.com/born-ml/synapse/internal/tokenizer"
)

// ReadSamples reads feedforward training data: a JSON array of
// {"input": [...], "output": [...]} objects.
func ReadSamples(path string) ([]feedforward.Sample, error) {
	var samples []feedforward.Sample
	if err := readJSON(path, &samples); err != nil {
		return nil, err
	}
	return samples, nil
}

// ReadSequences reads LSTM training data. The file holds either a JSON
// array of {"input": [[...]], "output": [[...]]} sequences or a single time
// series ([[...], ...]) framed for next-step prediction.
func ReadSequences(path string) ([]lstm.Sequence, error) {
	var raw []json.RawMessage
	if err := readJSON(path, &raw); err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, errs.Configuration("data", "%s holds no sequences", path)
	}

	if trimmed := bytes.TrimSpace(raw[0]); len(trimmed) > 0 && trimmed[0] == '[' {
		var series [][]float64
		if err := readJSON(path, &series); err != nil {
			return nil, err
		}
		s, err := lstm.NextStepSequence(series)
		if err != nil {
			return nil, err
		}
		return []lstm.Sequence{s}, nil
	}

	var sequences []lstm.Sequence
	if err := readJSON(path, &sequences); err != nil {
		return nil, err
	}
	return sequences, nil
}

// TextSequences builds a vocabulary over the corpus and cuts it into
// next-token sequences of t.Window steps.
func TextSequences(t *Text) (*data.Vocabulary, []lstm.Sequence, error) {
	//nolint:gosec // G304: corpus files are named by the user
	corpus, err := os.ReadFile(t.Corpus)
	if err != nil {
		return nil, nil, errs.IO("read", t.Corpus, err)
	}

	tok, err := tokenizer.New(t.Tokenizer)
	if err != nil {
		return nil, nil, err
	}
	vocab, err := data.NewVocabulary(tok, string(corpus))
	if err != nil {
		return nil, nil, err
	}

	indices, err := vocab.Encode(string(corpus))
	if err != nil {
		return nil, nil, err
	}
	series := make([][]float64, len(indices))
	for i, idx := range indices {
		series[i] = vocab.OneHot(idx)
	}

	inputs, targets, err := data.Windows(series, t.Window, t.Stride)
	if err != nil {
		return nil, nil, err
	}
	sequences := make([]lstm.Sequence, len(inputs))
	for i := range inputs {
		sequences[i] = lstm.Sequence{Inputs: inputs[i], Targets: targets[i]}
	}
	return vocab, sequences, nil
}

func readJSON(path string, v any) error {
	//nolint:gosec // G304: data files are named by the user
	b, err := os.ReadFile(path)
	if err != nil {
		return errs.IO("read", path, err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return errs.IO("decode", path, errors.WithStack(err))
	}
	return nil
}
