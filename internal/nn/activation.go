package nn

import (
	"math"
	"strings"

	"github.com/born-ml/synapse/internal/errs"
)

// ActivationKind enumerates the supported activation functions.
type ActivationKind int

// Supported activations.
const (
	Sigmoid ActivationKind = iota
	Tanh
	ReLU
	LeakyReLU
	Linear
	Softmax
)

// DefaultLeakyReLUAlpha is the negative slope used when none is configured.
const DefaultLeakyReLUAlpha = 0.01

var activationNames = [...]string{
	Sigmoid:   "sigmoid",
	Tanh:      "tanh",
	ReLU:      "relu",
	LeakyReLU: "leaky-relu",
	Linear:    "linear",
	Softmax:   "softmax",
}

// String returns the configuration name of the kind.
func (k ActivationKind) String() string {
	if k < 0 || int(k) >= len(activationNames) {
		return "unknown"
	}
	return activationNames[k]
}

// Activation is a tagged activation function.
//
// Derivative takes the already-activated value y = f(x), not the pre-activation
// x: sigmoid'(y) = y(1-y), tanh'(y) = 1-y², and so on. Every caller passes a
// layer's output.
type Activation struct {
	Kind  ActivationKind
	Alpha float64 // Negative slope, LeakyReLU only
}

// ParseActivation returns the activation registered under name.
//
// Accepted names: sigmoid, tanh, relu, leaky-relu, linear, softmax.
func ParseActivation(name string) (Activation, error) {
	switch strings.ToLower(name) {
	case "sigmoid":
		return Activation{Kind: Sigmoid}, nil
	case "tanh":
		return Activation{Kind: Tanh}, nil
	case "relu":
		return Activation{Kind: ReLU}, nil
	case "leaky-relu", "leakyrelu", "leaky_relu":
		return Activation{Kind: LeakyReLU, Alpha: DefaultLeakyReLUAlpha}, nil
	case "linear", "identity":
		return Activation{Kind: Linear}, nil
	case "softmax":
		return Activation{Kind: Softmax}, nil
	default:
		return Activation{}, errs.Configuration("activation", "unknown activation %q", name)
	}
}

// String returns the configuration name.
func (a Activation) String() string {
	return a.Kind.String()
}

// MarshalText encodes the activation by name.
func (a Activation) MarshalText() ([]byte, error) {
	if a.Kind < 0 || int(a.Kind) >= len(activationNames) {
		return nil, errs.Configuration("activation", "unknown activation kind %d", int(a.Kind))
	}
	return []byte(a.Kind.String()), nil
}

// UnmarshalText decodes an activation name. The LeakyReLU slope keeps its
// current value when already set.
func (a *Activation) UnmarshalText(text []byte) error {
	parsed, err := ParseActivation(string(text))
	if err != nil {
		return err
	}
	if parsed.Kind == LeakyReLU && a.Alpha != 0 {
		parsed.Alpha = a.Alpha
	}
	*a = parsed
	return nil
}

// Apply evaluates the scalar function. Softmax is vector-valued; use Forward.
func (a Activation) Apply(x float64) float64 {
	switch a.Kind {
	case Sigmoid:
		return 1 / (1 + math.Exp(-x))
	case Tanh:
		return math.Tanh(x)
	case ReLU:
		if x > 0 {
			return x
		}
		return 0
	case LeakyReLU:
		if x > 0 {
			return x
		}
		return a.Alpha * x
	case Softmax:
		panic("nn: softmax is vector-valued, use Forward")
	default:
		return x
	}
}

// Derivative evaluates f' at the activated value y.
//
// For Softmax this is the diagonal term y(1-y); it is only used when softmax
// sits on a hidden layer. At the output layer use OutputDelta, which applies
// the cross-entropy coupling.
func (a Activation) Derivative(y float64) float64 {
	switch a.Kind {
	case Sigmoid, Softmax:
		return y * (1 - y)
	case Tanh:
		return 1 - y*y
	case ReLU:
		if y > 0 {
			return 1
		}
		return 0
	case LeakyReLU:
		if y > 0 {
			return 1
		}
		return a.Alpha
	default:
		return 1
	}
}

// Forward writes f(pre) into dst. dst and pre may alias.
func (a Activation) Forward(dst, pre []float64) {
	if a.Kind == Softmax {
		SoftmaxForward(dst, pre)
		return
	}
	for i, x := range pre {
		dst[i] = a.Apply(x)
	}
}

// OutputDelta writes the output-layer error signal into dst:
//
//	δ = (target - output) * f'(output)
//
// Softmax is paired with cross-entropy loss, for which the product collapses
// to target - output. This is the only place where the activation and the
// loss are coupled.
func (a Activation) OutputDelta(dst, output, target []float64) {
	if a.Kind == Softmax {
		SoftmaxDerivative(dst, output, target)
		for i := range dst {
			dst[i] = -dst[i]
		}
		return
	}
	for i, y := range output {
		dst[i] = (target[i] - y) * a.Derivative(y)
	}
}

// SoftmaxForward writes softmax(xs) into dst using max subtraction for
// numerical stability. dst and xs may alias.
func SoftmaxForward(dst, xs []float64) {
	if len(xs) == 0 {
		return
	}
	maxVal := xs[0]
	for _, x := range xs[1:] {
		if x > maxVal {
			maxVal = x
		}
	}
	var sum float64
	for i, x := range xs {
		e := math.Exp(x - maxVal)
		dst[i] = e
		sum += e
	}
	for i := range dst[:len(xs)] {
		dst[i] /= sum
	}
}

// SoftmaxDerivative writes softmax(x) - target into dst, the gradient of
// cross-entropy loss with respect to the pre-softmax logits. output must
// already be softmax(x).
func SoftmaxDerivative(dst, output, target []float64) {
	for i, y := range output {
		dst[i] = y - target[i]
	}
}
