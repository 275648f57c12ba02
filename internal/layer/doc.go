// Package layer encodes the layering rules of a Hierarchical Encapsulation
// Architecture (HEA) code base.
//
// # Hierarchy
//
// Every layer has one of four types, each mapped to a hierarchy level:
//
//	core            0
//	shared          1
//	themes          2
//	infrastructure  2
//
// Themes and infrastructure are peers and may not depend on each other.
// A layer may never depend on a layer with a higher level. Core may only
// depend on core, shared only on core and shared.
//
// # Validator
//
// The Validator applies those rules to a single directed dependency
// (ValidateDependencies), to an import specifier (ValidateImport), to the
// declared type-level dependencies of a set of layers (CheckCircularDependencies)
// and to the on-disk layout of a layer directory (ValidateStructure).
//
// Rule violations are returned as values so callers can keep accumulating
// results. Only ValidateStructure returns an error, and only for filesystem
// failures other than a missing entry.
package layer
