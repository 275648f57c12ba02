// Package pipe composes named units of work ("pipes") with optional input
// validation, and keeps them in a registry that checks their declared
// dependencies.
//
// A pipe is built with the fluent Builder:
//
//	p, err := pipe.NewBuilder[Input, Output]().
//		WithName("user-create").
//		WithVersion("1.0.0").
//		WithLayer("themes").
//		WithValidator(validateInput).
//		WithExecutor(createUser).
//		WithDependency("database").
//		Build()
//
// Execute always runs the validator before the executor and returns a
// *ValidationError without calling the executor when the input is rejected.
//
// Registries are plain values. Applications construct one, register their
// pipes explicitly at start-up and pass it to whatever needs it.
package pipe

import (
	"context"
	"maps"
	"slices"
)

// Metadata describes a pipe.
type Metadata struct {
	Name         string         `json:"name"`
	Version      string         `json:"version"`
	Layer        string         `json:"layer"`
	Description  string         `json:"description,omitempty"`
	InputSchema  map[string]any `json:"inputSchema,omitempty"`
	OutputSchema map[string]any `json:"outputSchema,omitempty"`
	Dependencies []string       `json:"dependencies"`
}

func (m Metadata) clone() Metadata {
	m.InputSchema = maps.Clone(m.InputSchema)
	m.OutputSchema = maps.Clone(m.OutputSchema)
	m.Dependencies = append([]string{}, m.Dependencies...)
	return m
}

// Executor performs a pipe's work.
type Executor[In, Out any] func(ctx context.Context, in In) (Out, error)

// Validator checks a pipe's input before execution.
type Validator[In any] func(in In) ValidationResult

// Handle is the type-independent view of a pipe held by a Registry.
type Handle interface {
	Metadata() Metadata
}

// Pipe is a named unit of work. Create one with a Builder.
type Pipe[In, Out any] struct {
	meta      Metadata
	executor  Executor[In, Out]
	validator Validator[In]
}

// Execute validates in, when a validator is configured, and then runs the
// executor. A rejected input yields a *ValidationError and the executor is
// not called.
func (p *Pipe[In, Out]) Execute(ctx context.Context, in In) (Out, error) {
	if p.validator != nil {
		if res := p.validator(in); !res.Valid {
			var zero Out
			return zero, &ValidationError{Pipe: p.meta.Name, Errors: slices.Clone(res.Errors)}
		}
	}
	return p.executor(ctx, in)
}

// Validate runs the validator alone. Pipes without a validator accept
// every input.
func (p *Pipe[In, Out]) Validate(in In) ValidationResult {
	if p.validator == nil {
		return Valid()
	}
	return p.validator(in)
}

// Metadata returns a copy of the pipe's metadata.
func (p *Pipe[In, Out]) Metadata() Metadata {
	return p.meta.clone()
}
