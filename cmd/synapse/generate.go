package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"

	"github.com/pkg/errors"

	"github.com/born-ml/synapse/internal/errs"
	"github.com/born-ml/synapse/internal/generate"
)

func generateCmd(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("generate", flag.ContinueOnError)
	fs.SetOutput(stdout)
	path := fs.String("model", "", "LSTM snapshot file")
	prompt := fs.String("prompt", "", "prompt text (text models)")
	input := fs.String("input", "", "seed sequence, steps separated by ';' (numeric models)")
	length := fs.Int("length", 50, "number of tokens or steps to generate")
	window := fs.Int("window", 0, "most recent steps fed to the model; 0 = all")
	temperature := fs.Float64("temperature", 1, "sampling temperature; 0 = greedy")
	topK := fs.Int("topk", 0, "sample from the K most likely tokens; 0 = all")
	topP := fs.Float64("topp", 1, "nucleus sampling threshold; 1 = disabled")
	seed := fs.Int64("seed", -1, "sampling seed; -1 = random")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *path == "" {
		return errors.New("generate: -model is required")
	}

	m, err := loadModel(*path)
	if err != nil {
		return err
	}
	if m.lstm == nil {
		return errs.Configuration("model", "generation needs an LSTM snapshot")
	}

	if vocab := m.lstm.Vocabulary(); vocab != nil {
		if *prompt == "" {
			return errors.New("generate: -prompt is required for text models")
		}
		g, err := generate.NewTextGenerator(m.lstm, vocab, generate.SamplingConfig{
			Temperature: *temperature,
			TopK:        *topK,
			TopP:        *topP,
			Seed:        *seed,
		})
		if err != nil {
			return err
		}
		text, err := g.Generate(*prompt, generate.Config{MaxTokens: *length, Window: *window, EchoPrompt: true})
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(stdout, text)
		return err
	}

	if *input == "" {
		return errors.New("generate: -input is required for numeric models")
	}
	seq, err := parseSequence(*input)
	if err != nil {
		return err
	}
	out, err := m.lstm.Generate(seq, *length, *window)
	if err != nil {
		return err
	}
	return json.NewEncoder(stdout).Encode(out)
}
