package lstm

import (
	"encoding/json"
	"math/rand"
	"strconv"

	"github.com/pkg/errors"

	"github.com/born-ml/synapse/internal/errs"
	"github.com/born-ml/synapse/internal/nn"
	"github.com/born-ml/synapse/internal/tensor"
)

// Gate identifies one of the four learned gates of an LSTM cell.
type Gate int

// Gates, in parameter order.
const (
	InputGate Gate = iota
	ForgetGate
	OutputGate
	CellWrite
	NumGates
)

var gateNames = [NumGates]string{
	InputGate:  "input",
	ForgetGate: "forget",
	OutputGate: "output",
	CellWrite:  "cellWrite",
}

// String returns the gate's name in snapshots.
func (g Gate) String() string {
	if g < 0 || g >= NumGates {
		return "gate(" + strconv.Itoa(int(g)) + ")"
	}
	return gateNames[g]
}

// Initialization constants.
const (
	InitRange  = 0.1 // Weights are uniform in [-InitRange, InitRange]
	ForgetBias = 1.0
)

// GateParams are the parameters of one gate:
//
//	gate = σ(Wx·x + Wh·h_prev + B)
//
// with tanh in place of σ for CellWrite.
type GateParams struct {
	Wx *tensor.Dense `json:"wx"` // [hidden x input]
	Wh *tensor.Dense `json:"wh"` // [hidden x hidden]
	B  *tensor.Dense `json:"b"`  // [hidden]
}

// Layer is one LSTM layer.
type Layer struct {
	Gates [NumGates]GateParams
}

// Size returns the number of hidden units.
func (l *Layer) Size() int {
	return l.Gates[InputGate].B.Len()
}

// MarshalJSON encodes the gates keyed by name.
func (l Layer) MarshalJSON() ([]byte, error) {
	byName := make(map[string]GateParams, NumGates)
	for g := range NumGates {
		byName[g.String()] = l.Gates[g]
	}
	return json.Marshal(byName)
}

// UnmarshalJSON decodes gates keyed by name; all four must be present.
func (l *Layer) UnmarshalJSON(b []byte) error {
	var byName map[string]GateParams
	if err := json.Unmarshal(b, &byName); err != nil {
		return errors.Wrap(err, "decode lstm layer")
	}
	for g := range NumGates {
		p, ok := byName[g.String()]
		if !ok || p.Wx == nil || p.Wh == nil || p.B == nil {
			return errs.Configuration("model", "layer is missing gate %q", g.String())
		}
		l.Gates[g] = p
	}
	return nil
}

// Model holds every trainable tensor of an LSTM network: the recurrent
// layers and the dense output projection reading the top layer.
type Model struct {
	Layers []Layer       `json:"layers"`
	Why    *tensor.Dense `json:"why"` // [output x hidden]
	By     *tensor.Dense `json:"by"`  // [output]
}

// NewModel allocates and initializes a model. Weights are uniform in
// [-InitRange, InitRange], forget-gate biases start at ForgetBias and all
// other biases at 0.
func NewModel(r *rand.Rand, inputSize int, hidden []int, outputSize int) *Model {
	m := &Model{Layers: make([]Layer, len(hidden))}
	in := inputSize
	for l, h := range hidden {
		for g := range NumGates {
			p := GateParams{
				Wx: nn.Uniform(r, -InitRange, InitRange, tensor.Shape{h, in}),
				Wh: nn.Uniform(r, -InitRange, InitRange, tensor.Shape{h, h}),
				B:  tensor.NewVector(h),
			}
			if g == ForgetGate {
				p.B.Fill(ForgetBias)
			}
			m.Layers[l].Gates[g] = p
		}
		in = h
	}
	m.Why = nn.Uniform(r, -InitRange, InitRange, tensor.Shape{outputSize, in})
	m.By = tensor.NewVector(outputSize)
	return m
}

// Check verifies every tensor shape against the given topology.
func (m *Model) Check(inputSize int, hidden []int, outputSize int) error {
	if len(m.Layers) != len(hidden) {
		return errs.ShapeMismatch("layers", []int{len(hidden)}, []int{len(m.Layers)})
	}
	in := inputSize
	for l, h := range hidden {
		for g := range NumGates {
			p := m.Layers[l].Gates[g]
			prefix := paramPrefix(l, g)
			if err := checkShape(prefix+".wx", p.Wx, tensor.Shape{h, in}); err != nil {
				return err
			}
			if err := checkShape(prefix+".wh", p.Wh, tensor.Shape{h, h}); err != nil {
				return err
			}
			if err := checkShape(prefix+".b", p.B, tensor.Shape{h}); err != nil {
				return err
			}
		}
		in = h
	}
	if err := checkShape("why", m.Why, tensor.Shape{outputSize, in}); err != nil {
		return err
	}
	return checkShape("by", m.By, tensor.Shape{outputSize})
}

func checkShape(name string, d *tensor.Dense, want tensor.Shape) error {
	if d == nil {
		return errs.ShapeMismatch(name, want, nil)
	}
	if !d.Shape().Equal(want) {
		return errs.ShapeMismatch(name, want, d.Shape())
	}
	return nil
}

// Clone returns a deep copy.
func (m *Model) Clone() *Model {
	c := &Model{Layers: make([]Layer, len(m.Layers)), Why: m.Why.Clone(), By: m.By.Clone()}
	for l := range m.Layers {
		for g := range NumGates {
			p := m.Layers[l].Gates[g]
			c.Layers[l].Gates[g] = GateParams{Wx: p.Wx.Clone(), Wh: p.Wh.Clone(), B: p.B.Clone()}
		}
	}
	return c
}

// Parameters lists every tensor as a named parameter: for each layer the
// Wx, Wh, B triple of each gate in Gate order, then Why and By.
func (m *Model) Parameters() []*nn.Parameter {
	params := make([]*nn.Parameter, 0, len(m.Layers)*int(NumGates)*3+2)
	for l := range m.Layers {
		for g := range NumGates {
			p := m.Layers[l].Gates[g]
			prefix := paramPrefix(l, g)
			params = append(params,
				nn.NewParameter(prefix+".wx", p.Wx),
				nn.NewParameter(prefix+".wh", p.Wh),
				nn.NewParameter(prefix+".b", p.B),
			)
		}
	}
	return append(params, nn.NewParameter("why", m.Why), nn.NewParameter("by", m.By))
}

// gradIndex returns the index of gate g's Wx gradient of layer l in a
// Gradients list aligned with Parameters; Wh and B follow it.
func gradIndex(l int, g Gate) int {
	return (l*int(NumGates) + int(g)) * 3
}

func paramPrefix(l int, g Gate) string {
	return "layers." + strconv.Itoa(l) + "." + g.String()
}
