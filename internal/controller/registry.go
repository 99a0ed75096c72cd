package controller

import (
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/lox/arenaforbots/internal/match"
)

var (
	// ErrUnknownKind is returned when a spec names a kind nobody registered.
	ErrUnknownKind = errors.New("unknown controller kind")

	// ErrMissingArgument is returned when a spec lacks an argument its kind
	// requires.
	ErrMissingArgument = errors.New("missing controller argument")
)

// Built-in kinds.
const (
	KindRandom   = "random"
	KindConstant = "constant"
	KindSequence = "sequence"
)

// Spec declares a controller to build. Which fields matter depends on Kind.
type Spec struct {
	Name    string
	Kind    string
	Value   *int
	Values  []int
	URL     string
	Timeout time.Duration
}

func (s Spec) String() string {
	return fmt.Sprintf("%s:%s", s.Kind, s.Name)
}

// Factory builds a controller from a spec. rng is the controller's private
// randomness; factories that need none ignore it.
type Factory func(spec Spec, rng *rand.Rand) (match.Controller, error)

// Registry maps kind names to factories.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry returns a registry with the built-in kinds registered.
func NewRegistry() *Registry {
	r := &Registry{factories: make(map[string]Factory)}
	r.mustRegister(KindRandom, buildRandom)
	r.mustRegister(KindConstant, buildConstant)
	r.mustRegister(KindSequence, buildSequence)
	return r
}

// Register adds a factory for kind.
func (r *Registry) Register(kind string, factory Factory) error {
	if kind == "" {
		return errors.New("controller kind must not be empty")
	}
	if factory == nil {
		return fmt.Errorf("controller kind %s: nil factory", kind)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.factories[kind]; exists {
		return fmt.Errorf("controller kind %s already registered", kind)
	}
	r.factories[kind] = factory
	return nil
}

func (r *Registry) mustRegister(kind string, factory Factory) {
	if err := r.Register(kind, factory); err != nil {
		panic(err)
	}
}

// Has reports whether kind is registered.
func (r *Registry) Has(kind string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.factories[kind]
	return ok
}

// Kinds returns the registered kinds in sorted order.
func (r *Registry) Kinds() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	kinds := make([]string, 0, len(r.factories))
	for k := range r.factories {
		kinds = append(kinds, k)
	}
	slices.Sort(kinds)
	return kinds
}

// Build creates the controller described by spec.
func (r *Registry) Build(spec Spec, rng *rand.Rand) (match.Controller, error) {
	r.mu.RLock()
	factory, ok := r.factories[spec.Kind]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, spec.Kind)
	}

	c, err := factory(spec, rng)
	if err != nil {
		return nil, fmt.Errorf("build %s: %w", spec, err)
	}
	return c, nil
}

// BuildAll creates one controller per spec. rngFor supplies each
// controller's randomness by position. If any build fails, controllers
// already built are closed.
func (r *Registry) BuildAll(specs []Spec, rngFor func(i int) *rand.Rand) ([]match.Controller, error) {
	out := make([]match.Controller, 0, len(specs))
	for i, spec := range specs {
		c, err := r.Build(spec, rngFor(i))
		if err != nil {
			for _, built := range out {
				if closer, ok := built.(io.Closer); ok {
					_ = closer.Close()
				}
			}
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func buildRandom(spec Spec, rng *rand.Rand) (match.Controller, error) {
	if rng == nil {
		return nil, errors.New("random controller needs a random source")
	}
	return NewRandom(spec.Name, rng), nil
}

func buildConstant(spec Spec, _ *rand.Rand) (match.Controller, error) {
	if spec.Value == nil {
		return nil, fmt.Errorf("%w: value", ErrMissingArgument)
	}
	return NewConstant(spec.Name, *spec.Value), nil
}

func buildSequence(spec Spec, _ *rand.Rand) (match.Controller, error) {
	if len(spec.Values) == 0 {
		return nil, fmt.Errorf("%w: values", ErrMissingArgument)
	}
	return NewSequence(spec.Name, spec.Values)
}

// ParseSpec parses the command line form kind:name[:arg]. The argument is a
// value for constant, comma separated values for sequence and a URL for
// anything else.
func ParseSpec(s string) (Spec, error) {
	kind, rest, ok := strings.Cut(s, ":")
	if !ok || kind == "" || rest == "" {
		return Spec{}, fmt.Errorf("invalid controller spec %q: want kind:name[:arg]", s)
	}
	name, arg, hasArg := strings.Cut(rest, ":")
	if name == "" {
		return Spec{}, fmt.Errorf("invalid controller spec %q: empty name", s)
	}

	spec := Spec{Kind: kind, Name: name}
	if !hasArg {
		return spec, nil
	}

	switch kind {
	case KindConstant:
		v, err := strconv.Atoi(arg)
		if err != nil {
			return Spec{}, fmt.Errorf("invalid constant value in %q: %w", s, err)
		}
		spec.Value = &v
	case KindSequence:
		for _, part := range strings.Split(arg, ",") {
			v, err := strconv.Atoi(strings.TrimSpace(part))
			if err != nil {
				return Spec{}, fmt.Errorf("invalid sequence value in %q: %w", s, err)
			}
			spec.Values = append(spec.Values, v)
		}
	default:
		spec.URL = arg
	}
	return spec, nil
}
