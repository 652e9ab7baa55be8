// Package builder provides the candidate builder variants a Producer can be
// configured with, looked up by name.
package builder

import (
	"errors"
	"fmt"

	"github.com/randalmurphal/taureco/pkg/taureco"
	"github.com/randalmurphal/taureco/pkg/taureco/config"
	"github.com/randalmurphal/taureco/pkg/taureco/registry"
)

// Variant names.
const (
	Calo  = "calo"
	Basic = "basic"
)

// Factory constructs a builder from its parameters and the setup services.
type Factory func(params config.Config, deps taureco.Dependencies) (taureco.Builder, error)

var factories = registry.New[string, Factory]()

func init() {
	factories.MustRegister(Calo, newCalo)
	factories.MustRegister(Basic, newBasic)
}

// Register adds a builder variant. Names must be unique.
func Register(name string, f Factory) error {
	if f == nil {
		return fmt.Errorf("builder %q: nil factory", name)
	}
	return factories.Register(name, f)
}

// Names returns the registered variant names in ascending order.
func Names() []string {
	return factories.Keys()
}

// New constructs the named variant. An unknown name wraps
// taureco.ErrUnknownBuilder; unset services are a
// taureco.MissingDependencyError.
func New(name string, params config.Config, deps taureco.Dependencies) (taureco.Builder, error) {
	f, err := factories.Lookup(name)
	if err != nil {
		if errors.Is(err, registry.ErrNotFound) {
			return nil, fmt.Errorf("%w %q (have %v)", taureco.ErrUnknownBuilder, name, Names())
		}
		return nil, err
	}
	if err := deps.Validate(); err != nil {
		return nil, err
	}
	b, err := f(params, deps)
	if err != nil {
		return nil, fmt.Errorf("builder %s: %w", name, err)
	}
	return b, nil
}
