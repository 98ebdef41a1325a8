package integrators

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Trawczynski/double-pendulum/internal/dynamo"
)

var ErrUnknownMethod = errors.New("unknown integrator")

// Method selects one of the stepping schemes.
type Method int

const (
	MethodForwardEuler Method = iota
	MethodSemiImplicitEuler
	MethodRK4
)

var methodNames = [...]string{
	MethodForwardEuler:      "forward-euler",
	MethodSemiImplicitEuler: "semi-implicit-euler",
	MethodRK4:               "rk4",
}

var aliases = map[string]Method{
	"euler":               MethodForwardEuler,
	"forward-euler":       MethodForwardEuler,
	"semi-implicit-euler": MethodSemiImplicitEuler,
	"symplectic-euler":    MethodSemiImplicitEuler,
	"backward-euler":      MethodSemiImplicitEuler,
	"rk4":                 MethodRK4,
}

func (m Method) String() string {
	if m < 0 || int(m) >= len(methodNames) {
		return fmt.Sprintf("method(%d)", int(m))
	}
	return methodNames[m]
}

// ParseMethod resolves a method name or one of its aliases.
func ParseMethod(name string) (Method, error) {
	m, ok := aliases[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return 0, fmt.Errorf("%w: %s (available: %s)", ErrUnknownMethod, name, strings.Join(Names(), ", "))
	}
	return m, nil
}

func Methods() []Method {
	return []Method{MethodForwardEuler, MethodSemiImplicitEuler, MethodRK4}
}

func Names() []string {
	names := make([]string, 0, len(methodNames))
	for _, m := range Methods() {
		names = append(names, m.String())
	}
	return names
}

// New returns a fresh integrator for m. RK4 carries scratch buffers, so each
// caller should hold its own instance.
func New(m Method) dynamo.Integrator {
	switch m {
	case MethodForwardEuler:
		return NewForwardEuler()
	case MethodSemiImplicitEuler:
		return NewSemiImplicitEuler()
	default:
		return NewRK4()
	}
}
