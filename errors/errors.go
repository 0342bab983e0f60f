// Package errors provides error handling for wrapgen.
//
// It re-exports github.com/cockroachdb/errors and declares the sentinel errors
// used by the generator's error taxonomy:
//
//	// lookup miss, recovered by treating the type as opaque
//	errors.Wrapf(errors.ErrTypeNotFound, "argument %d of %s", i, sig)
//
//	// check the category of a reported problem
//	if errors.Is(err, errors.ErrUnresolvedPlaceholder) { ... }
package errors

import (
	crdb "github.com/cockroachdb/errors"
)

// Core error creation and wrapping
var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	WithStack    = crdb.WithStack
	WithMessage  = crdb.WithMessage
	WithMessagef = crdb.WithMessagef
	Mark         = crdb.Mark
)

// User-facing messages and details
var (
	WithHint    = crdb.WithHint
	WithHintf   = crdb.WithHintf
	WithDetail  = crdb.WithDetail
	WithDetailf = crdb.WithDetailf
)

// Error inspection
var (
	Is             = crdb.Is
	IsAny          = crdb.IsAny
	As             = crdb.As
	Unwrap         = crdb.Unwrap
	UnwrapAll      = crdb.UnwrapAll
	GetAllHints    = crdb.GetAllHints
	FlattenHints   = crdb.FlattenHints
	FlattenDetails = crdb.FlattenDetails
)

// Sentinel errors. Wrap them to add context; test them with Is.
var (
	// ErrTypeNotFound marks a reference to a type that has no type entry.
	// Callers treat the type as opaque and skip generation for that reference.
	ErrTypeNotFound = New("type entry not found")

	// ErrRuleInconsistency marks a modification rule that references a
	// signature or argument index that does not exist.
	ErrRuleInconsistency = New("rule inconsistency")

	// ErrUnresolvedPlaceholder marks a template expansion that left a
	// ${placeholder} without a replacement.
	ErrUnresolvedPlaceholder = New("unresolved template placeholder")

	// ErrTemplateNotFound marks a template instance naming an unknown template.
	ErrTemplateNotFound = New("template not found")

	// ErrKindMismatch marks a type entry whose payload does not belong to its kind.
	ErrKindMismatch = New("type entry kind mismatch")

	// ErrInvalidRejection marks a rejection rule that cannot be compiled.
	ErrInvalidRejection = New("invalid rejection rule")

	// ErrArtifactWrite marks a failure writing one generated artifact.
	ErrArtifactWrite = New("artifact write failed")
)

// IsDiagnostic reports whether err belongs to a category that is recovered
// locally with a diagnostic instead of aborting the run.
func IsDiagnostic(err error) bool {
	return IsAny(err, ErrTypeNotFound, ErrRuleInconsistency, ErrUnresolvedPlaceholder, ErrTemplateNotFound)
}
