package shapes

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/lumavm/stack-trace/errors"
)

// Profile captures the heap-shape conventions of one runtime library
// version.
type Profile struct {
	// SuspendStateSlot is the context slot holding the yield index of a
	// suspended function. A value greater than zero means the function
	// has suspended at least once.
	SuspendStateSlot int `yaml:"suspend_state_slot"`

	// CompleterSlot is the context slot holding the suspended function's
	// completer (async) or stream controller (async-generator).
	CompleterSlot int `yaml:"completer_slot"`

	// WrappedCallbackSlot is the context slot where synthetic await
	// wrappers capture the closure they stand in for.
	WrappedCallbackSlot int `yaml:"wrapped_callback_slot"`

	// WrapperFunctions names the synthetic closures installed by
	// combinators such as "wait for all" and "apply a timeout".
	WrapperFunctions []string `yaml:"wrapper_functions"`

	// CatchErrorMask selects the listener state bit set when the
	// listener was registered to catch or transform errors.
	CatchErrorMask int `yaml:"catch_error_mask"`

	// Walk bounds. Exceeding a bound terminates the walk as "no caller
	// found"; the heap carries no acyclicity guarantee.
	MaxChainSteps   int `yaml:"max_chain_steps"`
	MaxFlattenSteps int `yaml:"max_flatten_steps"`
	MaxUnwrapDepth  int `yaml:"max_unwrap_depth"`
}

// Default returns the profile matching the current runtime library.
func Default() Profile {
	return Profile{
		SuspendStateSlot:    0,
		CompleterSlot:       1,
		WrappedCallbackSlot: 0,
		WrapperFunctions: []string{
			"_asyncThenWrapperHelper.<anonymous>",
			"_asyncErrorWrapperHelper.<anonymous>",
			"Future.timeout.<anonymous>",
			"Future.wait.<anonymous>",
		},
		CatchErrorMask:  1 << 1,
		MaxChainSteps:   1024,
		MaxFlattenSteps: 64,
		MaxUnwrapDepth:  8,
	}
}

// Validate checks the profile for values the walkers cannot work with.
func (p Profile) Validate() error {
	if p.SuspendStateSlot < 0 || p.CompleterSlot < 0 || p.WrappedCallbackSlot < 0 {
		return errors.InvalidData(errors.PhaseProfile, nil, "slot indices must be non-negative")
	}
	if p.SuspendStateSlot == p.CompleterSlot {
		return errors.InvalidData(errors.PhaseProfile, nil, "suspend state and completer slots must differ")
	}
	if p.MaxChainSteps <= 0 || p.MaxFlattenSteps <= 0 || p.MaxUnwrapDepth <= 0 {
		return errors.InvalidData(errors.PhaseProfile, nil, "walk bounds must be positive")
	}
	return nil
}

// Compiled is a profile with lookup structures ready for the walkers.
type Compiled struct {
	Profile
	wrappers map[string]struct{}
}

// Compile validates the profile and builds its lookup structures.
func (p Profile) Compile() (*Compiled, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	c := &Compiled{
		Profile:  p,
		wrappers: make(map[string]struct{}, len(p.WrapperFunctions)),
	}
	for _, name := range p.WrapperFunctions {
		c.wrappers[name] = struct{}{}
	}
	return c, nil
}

// IsWrapper reports whether the function name is a recognized synthetic
// await wrapper.
func (c *Compiled) IsWrapper(name string) bool {
	_, ok := c.wrappers[name]
	return ok
}

// Parse decodes a profile from YAML. Fields left unset fall back to the
// default profile, so a file only needs to name what differs.
func Parse(data []byte) (Profile, error) {
	p := Default()
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Profile{}, errors.Wrap(errors.PhaseProfile, errors.KindInvalidData, err, "decode profile yaml")
	}
	return p, nil
}

// LoadFile reads and decodes a profile from a YAML file.
func LoadFile(path string) (Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Profile{}, errors.Wrap(errors.PhaseProfile, errors.KindNotFound, err, "read profile file")
	}
	return Parse(data)
}
