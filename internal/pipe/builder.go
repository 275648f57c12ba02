package pipe

import (
	"fmt"
	"maps"
)

// Builder configures a Pipe step by step. Builders are not safe for
// concurrent use and should not be reused after Build.
type Builder[In, Out any] struct {
	meta      Metadata
	executor  Executor[In, Out]
	validator Validator[In]
}

// NewBuilder starts a new pipe definition.
func NewBuilder[In, Out any]() *Builder[In, Out] {
	return &Builder[In, Out]{}
}

func (b *Builder[In, Out]) WithName(name string) *Builder[In, Out] {
	b.meta.Name = name
	return b
}

func (b *Builder[In, Out]) WithVersion(version string) *Builder[In, Out] {
	b.meta.Version = version
	return b
}

func (b *Builder[In, Out]) WithDescription(description string) *Builder[In, Out] {
	b.meta.Description = description
	return b
}

func (b *Builder[In, Out]) WithLayer(layer string) *Builder[In, Out] {
	b.meta.Layer = layer
	return b
}

func (b *Builder[In, Out]) WithValidator(v Validator[In]) *Builder[In, Out] {
	b.validator = v
	return b
}

func (b *Builder[In, Out]) WithExecutor(e Executor[In, Out]) *Builder[In, Out] {
	b.executor = e
	return b
}

// WithDependency appends the name of a pipe this one depends on.
func (b *Builder[In, Out]) WithDependency(name string) *Builder[In, Out] {
	b.meta.Dependencies = append(b.meta.Dependencies, name)
	return b
}

func (b *Builder[In, Out]) WithInputSchema(schema map[string]any) *Builder[In, Out] {
	b.meta.InputSchema = maps.Clone(schema)
	return b
}

func (b *Builder[In, Out]) WithOutputSchema(schema map[string]any) *Builder[In, Out] {
	b.meta.OutputSchema = maps.Clone(schema)
	return b
}

// Build checks the required fields in the order name, version, layer,
// executor and returns the first one missing as an error wrapping
// ErrInvalidPipe.
func (b *Builder[In, Out]) Build() (*Pipe[In, Out], error) {
	switch {
	case b.meta.Name == "":
		return nil, fmt.Errorf("%w: Pipe name is required", ErrInvalidPipe)
	case b.meta.Version == "":
		return nil, fmt.Errorf("%w: Pipe version is required", ErrInvalidPipe)
	case b.meta.Layer == "":
		return nil, fmt.Errorf("%w: Pipe layer is required", ErrInvalidPipe)
	case b.executor == nil:
		return nil, fmt.Errorf("%w: Pipe executor is required", ErrInvalidPipe)
	}

	return &Pipe[In, Out]{
		meta:      b.meta.clone(),
		executor:  b.executor,
		validator: b.validator,
	}, nil
}

// MustBuild is like Build but panics on a missing field. It is meant for
// start-up wiring where a missing field is a programming error.
func (b *Builder[In, Out]) MustBuild() *Pipe[In, Out] {
	p, err := b.Build()
	if err != nil {
		panic(err)
	}
	return p
}
