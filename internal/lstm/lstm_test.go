package lstm

import (
	"encoding/json"
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/diff/fd"

	"github.com/born-ml/synapse/internal/data"
	"github.com/born-ml/synapse/internal/errs"
	"github.com/born-ml/synapse/internal/nn"
	"github.com/born-ml/synapse/internal/optim"
	"github.com/born-ml/synapse/internal/serialization"
	"github.com/born-ml/synapse/internal/tokenizer"
	"github.com/born-ml/synapse/internal/train"
)

func newNetwork(t *testing.T, mutate func(*Options)) *Network {
	t.Helper()
	opts := DefaultOptions()
	opts.Seed = 7
	if mutate != nil {
		mutate(&opts)
	}
	n, err := New(opts)
	require.NoError(t, err)
	return n
}

// echo asks the network to reproduce its input at every step.
func echo() []Sequence {
	raw := [][]float64{
		{0.1, 0.9, 0.5, 0.3},
		{0.8, 0.2, 0.6, 0.4},
		{0.5, 0.5, 0.1, 0.9},
		{0.3, 0.7, 0.9, 0.2},
	}
	seqs := make([]Sequence, len(raw))
	for i, r := range raw {
		for _, v := range r {
			seqs[i].Inputs = append(seqs[i].Inputs, []float64{v})
			seqs[i].Targets = append(seqs[i].Targets, []float64{v})
		}
	}
	return seqs
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Options)
	}{
		{"negative input size", func(o *Options) { o.InputSize = -1 }},
		{"zero hidden layer", func(o *Options) { o.HiddenLayers = []int{4, 0} }},
		{"negative learning rate", func(o *Options) { o.LearningRate = -0.1 }},
		{"momentum above one", func(o *Options) { o.Momentum = 1.5 }},
		{"negative clip", func(o *Options) { o.ClipGradient = -1 }},
		{"unknown praxis", func(o *Options) { o.Praxis = "lbfgs" }},
		{"negative workers", func(o *Options) { o.Workers = -2 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			tt.mutate(&opts)
			_, err := New(opts)
			assert.True(t, errs.IsConfiguration(err), "got %v", err)
		})
	}
}

func TestDefaults(t *testing.T) {
	n, err := New(Options{InputSize: 3, OutputSize: 2})
	require.NoError(t, err)

	o := n.Options()
	assert.Equal(t, []int{DefaultHiddenSize}, o.HiddenLayers)
	assert.Equal(t, DefaultLearningRate, o.LearningRate)
	assert.Equal(t, optim.Adam, o.Praxis)
	assert.Equal(t, DefaultClipGradient, o.ClipGradient)
	assert.Equal(t, optim.Adam, n.Optimizer().Praxis())
}

func TestModelInitialization(t *testing.T) {
	n := newNetwork(t, func(o *Options) { o.InputSize, o.OutputSize, o.HiddenLayers = 3, 2, []int{5, 4} })
	m := n.Model()
	require.NoError(t, m.Check(3, []int{5, 4}, 2))

	for l, layer := range m.Layers {
		for g := range NumGates {
			p := layer.Gates[g]
			for _, w := range append(append([]float64(nil), p.Wx.Data()...), p.Wh.Data()...) {
				assert.LessOrEqual(t, math.Abs(w), InitRange, "layer %d gate %s", l, g)
			}
			want := 0.0
			if g == ForgetGate {
				want = ForgetBias
			}
			for _, b := range p.B.Data() {
				assert.Equal(t, want, b)
			}
		}
	}
	assert.Len(t, n.Parameters(), 2*int(NumGates)*3+2)
	assert.Equal(t, "layers.1.forget.wh", n.Parameters()[gradIndex(1, ForgetGate)+1].Name())
	assert.Equal(t, "why", n.Parameters()[len(n.Parameters())-2].Name())
}

// sequenceLoss is the loss whose gradient Backward computes.
func sequenceLoss(t *testing.T, n *Network, inputs, targets [][]float64) float64 {
	tr, err := n.Forward(inputs)
	require.NoError(t, err)
	var sum float64
	for step, target := range targets {
		if target == nil {
			continue
		}
		for i, y := range tr.Outputs[step] {
			if n.opts.Activation.Kind == nn.Softmax {
				sum -= target[i] * math.Log(y)
				continue
			}
			d := target[i] - y
			sum += d * d / 2
		}
	}
	return sum
}

func TestGradientFiniteDifference(t *testing.T) {
	activations := []nn.ActivationKind{nn.Sigmoid, nn.Tanh, nn.Linear, nn.Softmax}

	inputs := [][]float64{{0.3, -0.8}, {0.5, 0.1}, {-0.4, 0.9}, {0.7, -0.2}}
	targets := [][]float64{{0.2, 0.8}, nil, {0.6, 0.4}, {0.9, 0.1}}

	for _, kind := range activations {
		t.Run(kind.String(), func(t *testing.T) {
			n := newNetwork(t, func(o *Options) {
				o.InputSize, o.OutputSize, o.HiddenLayers = 2, 2, []int{3, 2}
				o.Activation = nn.Activation{Kind: kind}
			})
			// Larger weights than the default range exercise the nonlinearities.
			for _, p := range n.Parameters() {
				p.Tensor().Scale(5)
			}

			grads := nn.ZerosLike(n.Parameters())
			tr, err := n.Forward(inputs)
			require.NoError(t, err)
			_, err = n.Backward(tr, targets, grads)
			require.NoError(t, err)

			var analytic, x []float64
			for i, p := range n.Parameters() {
				analytic = append(analytic, grads[i].Data()...)
				x = append(x, p.Tensor().Data()...)
			}
			original := append([]float64(nil), x...)

			set := func(x []float64) {
				off := 0
				for _, p := range n.Parameters() {
					off += copy(p.Tensor().Data(), x[off:])
				}
			}
			numeric := fd.Gradient(nil, func(x []float64) float64 {
				set(x)
				return sequenceLoss(t, n, inputs, targets)
			}, x, &fd.Settings{Formula: fd.Central})
			set(original)

			for i := range numeric {
				tol := 1e-4 * math.Max(1, math.Abs(numeric[i]))
				assert.InDelta(t, numeric[i], analytic[i], tol, "parameter %d", i)
			}
		})
	}
}

func TestBackward_Errors(t *testing.T) {
	n := newNetwork(t, func(o *Options) { o.InputSize, o.OutputSize = 1, 1 })
	tr, err := n.Forward([][]float64{{1}, {0}})
	require.NoError(t, err)

	_, err = n.Backward(tr, [][]float64{{1}}, nn.ZerosLike(n.Parameters()))
	assert.True(t, errs.IsShapeMismatch(err))

	_, err = n.Backward(tr, [][]float64{{1}, {1, 2}}, nn.ZerosLike(n.Parameters()))
	assert.True(t, errs.IsShapeMismatch(err))

	_, err = n.Backward(tr, [][]float64{{1}, {1}}, nn.ZerosLike(n.Parameters()[:3]))
	assert.True(t, errs.IsShapeMismatch(err))
}

func TestForward_Errors(t *testing.T) {
	n, err := New(DefaultOptions())
	require.NoError(t, err)
	_, err = n.Run([][]float64{{1}})
	assert.True(t, errs.IsUninitialized(err))
	_, err = n.Generate([][]float64{{1}}, 2, 0)
	assert.True(t, errs.IsUninitialized(err))

	n = newNetwork(t, func(o *Options) { o.InputSize, o.OutputSize = 2, 1 })
	_, err = n.Run(nil)
	assert.True(t, errs.IsConfiguration(err))
	_, err = n.Run([][]float64{{1, 2}, {3}})
	assert.True(t, errs.IsShapeMismatch(err))
}

func TestClipGradient(t *testing.T) {
	n := newNetwork(t, func(o *Options) {
		o.InputSize, o.OutputSize, o.HiddenLayers = 1, 1, []int{4}
		o.ClipGradient = 0.5
	})
	huge := []Sequence{{
		Inputs:  [][]float64{{1}, {-1}, {1}},
		Targets: [][]float64{{1e6}, {-1e6}, {1e6}},
	}}
	require.NoError(t, n.prepare(huge))
	defer n.release()

	err := n.Step([]int{0})
	require.NoError(t, err)

	var peak float64
	for _, g := range n.workers[0].grads {
		for _, v := range g.Data() {
			assert.LessOrEqual(t, math.Abs(v), 0.5)
			peak = math.Max(peak, math.Abs(v))
		}
	}
	assert.Equal(t, 0.5, peak, "the output bias gradient saturates")
}

func TestClipGradient_AfterBatchAverage(t *testing.T) {
	n := newNetwork(t, func(o *Options) {
		o.InputSize, o.OutputSize, o.HiddenLayers = 1, 1, []int{4}
		o.ClipGradient = 0.5
		o.Workers = 1
	})
	inputs := [][]float64{{1}, {-1}, {1}}
	opposed := []Sequence{
		{Inputs: inputs, Targets: [][]float64{{1e6}, {1e6}, {1e6}}},
		{Inputs: inputs, Targets: [][]float64{{-1e6}, {-1e6}, {-1e6}}},
	}
	require.NoError(t, n.prepare(opposed))
	defer n.release()

	averaged := nn.ZerosLike(n.Parameters())
	perSample := nn.ZerosLike(n.Parameters())
	for _, s := range opposed {
		tr, err := n.Forward(s.Inputs)
		require.NoError(t, err)
		_, err = n.Backward(tr, s.Targets, averaged)
		require.NoError(t, err)

		single := nn.ZerosLike(n.Parameters())
		_, err = n.Backward(tr, s.Targets, single)
		require.NoError(t, err)
		single.Clip(0.5)
		require.NoError(t, perSample.Add(single))
	}
	averaged.Scale(0.5)
	averaged.Clip(0.5)
	perSample.Scale(0.5)

	require.NoError(t, n.Step([]int{0, 1}))

	var differs bool
	for i, g := range n.workers[0].grads {
		for j, v := range g.Data() {
			assert.InDelta(t, averaged[i].Data()[j], v, 1e-12)
			if math.Abs(v-perSample[i].Data()[j]) > 1e-6 {
				differs = true
			}
		}
	}
	assert.True(t, differs, "opposed targets cancel before the clip")
}

func TestParallelStepMatchesSequential(t *testing.T) {
	seqs := echo()
	batch := []int{0, 1, 2, 3}

	params := func(workers int) []float64 {
		n := newNetwork(t, func(o *Options) {
			o.InputSize, o.OutputSize, o.HiddenLayers = 1, 1, []int{6}
			o.Praxis = optim.SGD
			o.Workers = workers
		})
		require.NoError(t, n.prepare(seqs))
		defer n.release()
		err := n.Step(batch)
		require.NoError(t, err)

		var out []float64
		for _, p := range n.Parameters() {
			out = append(out, p.Tensor().Data()...)
		}
		return out
	}

	assert.InDeltaSlice(t, params(1), params(3), 1e-12)
}

func TestEvaluate(t *testing.T) {
	seqs := echo()
	seqs[0].Targets[1] = nil
	n := newNetwork(t, func(o *Options) {
		o.InputSize, o.OutputSize, o.HiddenLayers = 1, 1, []int{4}
		o.Workers = 3
	})

	_, err := n.Evaluate()
	assert.True(t, errs.IsUninitialized(err))

	require.NoError(t, n.prepare(seqs))
	defer n.release()

	var want float64
	for _, s := range seqs {
		tr, err := n.Forward(s.Inputs)
		require.NoError(t, err)
		e, err := n.Backward(tr, s.Targets, nn.ZerosLike(n.Parameters()))
		require.NoError(t, err)
		want += e
	}
	got, err := n.Evaluate()
	require.NoError(t, err)
	assert.InDelta(t, want/float64(len(seqs)), got, 1e-12)
}

func TestTrain_Echo(t *testing.T) {
	n := newNetwork(t, func(o *Options) {
		o.HiddenLayers = []int{8}
		o.LearningRate = 0.05
	})
	stats, err := n.Train(echo(), train.Options{Iterations: 300, ErrorThresh: 1e-4, Patience: -1})
	require.NoError(t, err)

	assert.Equal(t, 1, n.Options().InputSize)
	assert.Equal(t, 1, n.Options().OutputSize)
	require.NotEmpty(t, stats.ErrorLog)
	assert.Less(t, stats.Error, stats.ErrorLog[0]/2)
	assert.Equal(t, stats, n.Stats())

	out, err := n.Run([][]float64{{0.2}, {0.8}})
	require.NoError(t, err)
	assert.Len(t, out, 1)
}

func TestTrain_Errors(t *testing.T) {
	n := newNetwork(t, nil)
	_, err := n.Train(nil, train.Options{})
	assert.True(t, errs.IsConfiguration(err))

	_, err = n.Train([]Sequence{{Inputs: [][]float64{{1}, {2}}, Targets: [][]float64{{1}}}}, train.Options{})
	assert.True(t, errs.IsShapeMismatch(err))

	n = newNetwork(t, func(o *Options) { o.InputSize, o.OutputSize = 1, 1 })
	_, err = n.Train([]Sequence{{Inputs: [][]float64{{1}}, Targets: [][]float64{{1, 2}}}}, train.Options{})
	assert.True(t, errs.IsShapeMismatch(err))
}

func TestNextStepSequence(t *testing.T) {
	s, err := NextStepSequence([][]float64{{1}, {2}, {3}})
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{1}, {2}}, s.Inputs)
	assert.Equal(t, [][]float64{{2}, {3}}, s.Targets)

	_, err = NextStepSequence([][]float64{{1}})
	assert.Error(t, err)
}

func TestGenerate(t *testing.T) {
	n := newNetwork(t, func(o *Options) { o.InputSize, o.OutputSize, o.HiddenLayers = 2, 2, []int{4} })
	seed := [][]float64{{0.1, 0.2}, {0.3, 0.4}}

	out, err := n.Generate(seed, 3, 2)
	require.NoError(t, err)
	require.Len(t, out, 3)

	first, err := n.Run(seed)
	require.NoError(t, err)
	assert.Equal(t, first, out[0])

	second, err := n.Run([][]float64{seed[1], out[0]})
	require.NoError(t, err)
	assert.Equal(t, second, out[1], "window keeps the two most recent inputs")
	assert.Equal(t, [][]float64{{0.1, 0.2}, {0.3, 0.4}}, seed, "seed is not modified")

	n = newNetwork(t, func(o *Options) { o.InputSize, o.OutputSize = 2, 1 })
	_, err = n.Generate(seed, 3, 0)
	assert.True(t, errs.IsConfiguration(err))
}

func TestVocabulary(t *testing.T) {
	v, err := data.NewVocabulary(tokenizer.Char{}, "hello world")
	require.NoError(t, err)

	n := newNetwork(t, func(o *Options) { o.Activation = nn.Activation{Kind: nn.Softmax} })
	require.NoError(t, n.SetVocabulary(v))
	assert.Equal(t, v.Size(), n.Options().InputSize)
	assert.Equal(t, v.Size(), n.Options().OutputSize)

	inputs, targets, err := v.Sequence("hello world")
	require.NoError(t, err)
	_, err = n.Train([]Sequence{{Inputs: inputs, Targets: targets}}, train.Options{Iterations: 5, Patience: -1})
	require.NoError(t, err)

	out, err := n.Run(inputs[:3])
	require.NoError(t, err)
	var sum float64
	for _, p := range out {
		sum += p
	}
	assert.InDelta(t, 1, sum, 1e-9)

	other := newNetwork(t, func(o *Options) { o.InputSize, o.OutputSize = 2, 2 })
	assert.True(t, errs.IsShapeMismatch(other.SetVocabulary(v)))
}

func TestSerializationRoundTrip(t *testing.T) {
	v, err := data.NewVocabulary(tokenizer.Char{}, "abcab")
	require.NoError(t, err)
	n := newNetwork(t, func(o *Options) {
		o.HiddenLayers = []int{5, 3}
		o.Activation = nn.Activation{Kind: nn.Softmax}
	})
	require.NoError(t, n.SetVocabulary(v))
	inputs, targets, err := v.Sequence("abcab")
	require.NoError(t, err)
	_, err = n.Train([]Sequence{{Inputs: inputs, Targets: targets}}, train.Options{Iterations: 20, Patience: -1})
	require.NoError(t, err)

	snap, err := n.Snapshot()
	require.NoError(t, err)
	raw, err := serialization.Marshal(snap)
	require.NoError(t, err)

	var decoded Snapshot
	require.NoError(t, serialization.Unmarshal(raw, &decoded))
	loaded, err := FromSnapshot(&decoded)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "abc.snp")
	require.NoError(t, n.Save(path))
	fromFile, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, n.Options(), loaded.Options())
	assert.Equal(t, n.Stats(), loaded.Stats())
	require.NotNil(t, fromFile.Vocabulary())
	assert.Equal(t, v.Tokens(), fromFile.Vocabulary().Tokens())

	want, err := n.Run(inputs)
	require.NoError(t, err)
	for _, m := range []*Network{loaded, fromFile} {
		got, err := m.Run(inputs)
		require.NoError(t, err)
		assert.InDeltaSlice(t, want, got, 1e-9)
	}
}

func TestSnapshotJSONShape(t *testing.T) {
	n := newNetwork(t, func(o *Options) { o.InputSize, o.OutputSize, o.HiddenLayers = 2, 1, []int{3} })
	snap, err := n.Snapshot()
	require.NoError(t, err)

	b, err := json.Marshal(snap)
	require.NoError(t, err)

	var raw struct {
		Type  string `json:"type"`
		Model struct {
			Layers []map[string]struct {
				Wx [][]float64 `json:"wx"`
				Wh [][]float64 `json:"wh"`
				B  []float64   `json:"b"`
			} `json:"layers"`
			Why [][]float64 `json:"why"`
		} `json:"model"`
	}
	require.NoError(t, json.Unmarshal(b, &raw))

	assert.Equal(t, serialization.TypeLSTM, raw.Type)
	require.Len(t, raw.Model.Layers, 1)
	for _, gate := range []string{"input", "forget", "output", "cellWrite"} {
		p, ok := raw.Model.Layers[0][gate]
		require.True(t, ok, gate)
		assert.Len(t, p.Wx, 3)
		assert.Len(t, p.Wx[0], 2)
		assert.Len(t, p.Wh, 3)
		assert.Len(t, p.B, 3)
	}
	assert.Len(t, raw.Model.Why, 1)
	assert.NotContains(t, string(b), `"vocabulary"`)
}

func TestFromSnapshot_Errors(t *testing.T) {
	n := newNetwork(t, func(o *Options) { o.InputSize, o.OutputSize, o.HiddenLayers = 2, 1, []int{3} })

	snap, err := n.Snapshot()
	require.NoError(t, err)
	snap.Options.HiddenLayers = []int{4}
	_, err = FromSnapshot(snap)
	assert.True(t, errs.IsShapeMismatch(err))

	snap, err = n.Snapshot()
	require.NoError(t, err)
	snap.Model.Layers = append(snap.Model.Layers, snap.Model.Layers[0])
	_, err = FromSnapshot(snap)
	assert.True(t, errs.IsShapeMismatch(err))

	snap, err = n.Snapshot()
	require.NoError(t, err)
	snap.Type = serialization.TypeNeuralNetwork
	_, err = FromSnapshot(snap)
	assert.True(t, errs.IsConfiguration(err))

	var layer Layer
	err = json.Unmarshal([]byte(`{"input":{"wx":[[1]],"wh":[[1]],"b":[0]}}`), &layer)
	assert.True(t, errs.IsConfiguration(err))
}
