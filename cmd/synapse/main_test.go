package main

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/synapse/internal/errs"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestVersion(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run([]string{"version"}, &out, quietLogger()))
	assert.Equal(t, "Synapse "+version+"\n", out.String())
}

func TestUsageAndUnknownCommand(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run(nil, &out, quietLogger()))
	assert.Contains(t, out.String(), "train")

	assert.Error(t, run([]string{"serve"}, &out, quietLogger()))
}

func TestTrainAndRun_Feedforward(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "xor.json", `[
		{"input": [0, 0], "output": [0]},
		{"input": [0, 1], "output": [1]},
		{"input": [1, 0], "output": [1]},
		{"input": [1, 1], "output": [0]}
	]`)
	job := writeFile(t, dir, "xor.yaml", `
type: NeuralNetwork
data: xor.json
output: models/xor.snp
feedforward:
  hiddenLayers: [3]
  seed: 42
train:
  iterations: 20
  patience: -1
`)

	var out bytes.Buffer
	require.NoError(t, run([]string{"train", "-config", job}, &out, quietLogger()))
	model := filepath.Join(dir, "models", "xor.snp")
	require.FileExists(t, model)

	out.Reset()
	require.NoError(t, run([]string{"run", "-model", model, "-input", "1, 0"}, &out, quietLogger()))
	var result []float64
	require.NoError(t, json.Unmarshal(out.Bytes(), &result))
	require.Len(t, result, 1)
	assert.Greater(t, result[0], 0.0)
	assert.Less(t, result[0], 1.0)

	err := run([]string{"run", "-model", model, "-input", "1,x"}, &out, quietLogger())
	assert.True(t, errs.IsConfiguration(err))

	err = run([]string{"generate", "-model", model}, &out, quietLogger())
	assert.True(t, errs.IsConfiguration(err))
}

func TestTrainAndGenerate_LSTMText(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "corpus.txt", strings.Repeat("abcd", 5))
	job := writeFile(t, dir, "text.yaml", `
type: LSTM
output: text.snp
text:
  corpus: corpus.txt
  window: 4
lstm:
  hiddenLayers: [6]
  activation: softmax
  seed: 3
train:
  iterations: 3
  patience: -1
`)

	var out bytes.Buffer
	require.NoError(t, run([]string{"train", "-config", job}, &out, quietLogger()))

	out.Reset()
	model := filepath.Join(dir, "text.snp")
	require.NoError(t, run([]string{"generate", "-model", model, "-prompt", "ab", "-length", "5", "-seed", "1"}, &out, quietLogger()))
	text := strings.TrimSuffix(out.String(), "\n")
	assert.True(t, strings.HasPrefix(text, "ab"))
	assert.Len(t, text, 7)

	out.Reset()
	require.NoError(t, run([]string{"run", "-model", model, "-input", "1,0,0,0;0,1,0,0"}, &out, quietLogger()))
	var probs []float64
	require.NoError(t, json.Unmarshal(out.Bytes(), &probs))
	assert.Len(t, probs, 4)
}

func TestTrainAndGenerate_LSTMSeries(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "series.json", `[[0.1], [0.2], [0.3], [0.4], [0.5]]`)
	job := writeFile(t, dir, "series.yaml", `
type: LSTM
data: series.json
output: series.snp
lstm:
  hiddenLayers: [4]
train:
  iterations: 3
`)

	var out bytes.Buffer
	require.NoError(t, run([]string{"train", "-config", job, "-v"}, &out, quietLogger()))

	out.Reset()
	model := filepath.Join(dir, "series.snp")
	require.NoError(t, run([]string{"generate", "-model", model, "-input", "0.1;0.2", "-length", "3", "-window", "2"}, &out, quietLogger()))
	var steps [][]float64
	require.NoError(t, json.Unmarshal(out.Bytes(), &steps))
	assert.Len(t, steps, 3)
}

func TestCommandErrors(t *testing.T) {
	var out bytes.Buffer
	log := quietLogger()

	assert.Error(t, run([]string{"train"}, &out, log))
	assert.True(t, errs.IsIO(run([]string{"train", "-config", filepath.Join(t.TempDir(), "none.yaml")}, &out, log)))
	assert.Error(t, run([]string{"run", "-model", "m.snp"}, &out, log))
	assert.True(t, errs.IsIO(run([]string{"run", "-model", filepath.Join(t.TempDir(), "m.snp"), "-input", "1"}, &out, log)))
	assert.Error(t, run([]string{"generate"}, &out, log))
}
