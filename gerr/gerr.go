// Copyright 2022 Gustavo C. Viegas. All rights reserved.

// Package gerr defines the backend-agnostic error taxonomy used
// throughout GBAL, together with a severity-routed logger that
// keeps a bounded history of error records.
//
// Every concrete backend translates its native errors into a Kind
// from this package before handing them to the shared Logger, so
// that upper layers never need to know which API produced a fault.
package gerr

import (
	"fmt"
	"time"
)

// Kind identifies a class of error in the backend-agnostic taxonomy.
type Kind int

// Error kinds.
const (
	InitializationFailed Kind = iota
	DeviceCreationFailed
	DeviceLost
	BackendNotAvailable
	BackendNotSupported
	FeatureNotSupported

	SwapChainCreationFailed
	SwapChainOutOfDate

	ResourceCreationFailed
	InvalidResource
	ResourceBusy
	ResourceNotBound

	InvalidOperation
	InvalidCommandBuffer
	CommandSubmissionFailed
	CommandBufferFull

	TimeoutExpired
	WaitFailed

	InvalidPipelineState
	ShaderCompilationFailed
	IncompatiblePipelineLayout

	UnsupportedFormat
	IncompatibleFormat

	OutOfMemory
	AllocationFailed
	InvalidAlignment
	InvalidMemoryAccess

	ValidationError
	RenderPassInProgress
	RenderPassNotInProgress
)

var kindNames = [...]string{
	"InitializationFailed",
	"DeviceCreationFailed",
	"DeviceLost",
	"BackendNotAvailable",
	"BackendNotSupported",
	"FeatureNotSupported",
	"SwapChainCreationFailed",
	"SwapChainOutOfDate",
	"ResourceCreationFailed",
	"InvalidResource",
	"ResourceBusy",
	"ResourceNotBound",
	"InvalidOperation",
	"InvalidCommandBuffer",
	"CommandSubmissionFailed",
	"CommandBufferFull",
	"TimeoutExpired",
	"WaitFailed",
	"InvalidPipelineState",
	"ShaderCompilationFailed",
	"IncompatiblePipelineLayout",
	"UnsupportedFormat",
	"IncompatibleFormat",
	"OutOfMemory",
	"AllocationFailed",
	"InvalidAlignment",
	"InvalidMemoryAccess",
	"ValidationError",
	"RenderPassInProgress",
	"RenderPassNotInProgress",
}

// String returns the taxonomy name of k.
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "UnknownKind"
	}
	return kindNames[k]
}

// Severity classifies how an error should be surfaced.
type Severity int

// Severities, in increasing order of urgency.
const (
	Info Severity = iota
	Warning
	Error
	Critical
)

func (s Severity) String() string {
	switch s {
	case Info:
		return "info"
	case Warning:
		return "warning"
	case Error:
		return "error"
	case Critical:
		return "critical"
	default:
		return "unknown"
	}
}

// Record is a single entry in an error log: a typed, contextualized
// description of a fault observed by a backend or by the core itself.
type Record struct {
	Severity     Severity
	Kind         Kind
	Message      string
	Backend      string
	Source       string // source_location: "file:line" or a symbolic name
	Time         time.Time
	AdditionalInfo map[string]any
}

func (r *Record) Error() string {
	return fmt.Sprintf("[%s] %s: %s (%s)", r.Severity, r.Kind, r.Message, r.Backend)
}

// recoverable reports whether kind is one of the kinds the
// propagation policy (spec §7) handles locally with a retry.
func (k Kind) recoverable() bool {
	switch k {
	case SwapChainOutOfDate, DeviceLost, BackendNotAvailable:
		return true
	default:
		return false
	}
}

// Recoverable reports whether r's Kind is locally retryable by the
// Manager or Adaptive Renderer per the propagation policy.
func (r *Record) Recoverable() bool { return r.Kind.recoverable() }

// New builds a Record with the current time, a convenience
// constructor used by backends when logging a fault.
func New(sev Severity, kind Kind, backend, source, msg string, args ...any) *Record {
	if len(args) > 0 {
		msg = fmt.Sprintf(msg, args...)
	}
	return &Record{
		Severity: sev,
		Kind:     kind,
		Message:  msg,
		Backend:  backend,
		Source:   source,
		Time:     now(),
	}
}

// now is overridable in tests to produce deterministic timestamps.
var now = time.Now
