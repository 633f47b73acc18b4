// Package command terminates the authorization and sanity-checking
// pipeline for external parameter requests before any state mutation.
//
// Each request passes, in order: flag check, group handle resolution,
// hierarchy check, authorization, parameter-id and value validation, and
// only then the registry call. Every step fails fast and a failed request
// leaves no visible side effect.
package command

import (
	"fmt"

	"github.com/nerrad567/devparam-core/internal/auth"
	"github.com/nerrad567/devparam-core/internal/group"
	"github.com/nerrad567/devparam-core/internal/param"
)

// Logger defines the logging interface used by the Validator.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// ParamValidator is the driver-side value check the pipeline runs before
// any record exists, so illegal requests never allocate.
type ParamValidator interface {
	ValidateParam(paramID uint64, value int64) error
}

// SetRequest is an incoming set-parameter command.
type SetRequest struct {
	Handle int    // caller-supplied group handle
	Param  uint64 // parameter id
	Value  int64
	Flags  uint32 // must be zero; no flags are defined yet
}

// GetRequest is an incoming get-parameter command.
type GetRequest struct {
	Handle int
	Param  uint64
	Flags  uint32
}

// Validator validates and dispatches parameter commands.
//
// A nil registry models a device without group integration: every command
// is rejected as unsupported while the rest of the driver keeps running.
type Validator struct {
	groups   *group.Service
	policy   auth.Policy
	registry *param.Registry
	driver   ParamValidator
	logger   Logger
}

// New creates a validator over the given collaborators.
func New(groups *group.Service, policy auth.Policy, registry *param.Registry, driver ParamValidator) *Validator {
	return &Validator{
		groups:   groups,
		policy:   policy,
		registry: registry,
		driver:   driver,
		logger:   noopLogger{},
	}
}

// SetLogger sets the logger for the validator.
func (v *Validator) SetLogger(logger Logger) {
	v.logger = logger
}

// resolve runs the steps shared by set and get: flag check, handle
// resolution, hierarchy check and authorization.
func (v *Validator) resolve(caller *auth.Caller, handle int, flags uint32) (*group.Group, error) {
	if flags != 0 {
		return nil, fmt.Errorf("%w: unsupported flags %#x", param.ErrInvalidArgument, flags)
	}

	if v.registry == nil {
		return nil, fmt.Errorf("%w: group integration disabled", param.ErrNotSupported)
	}

	g, err := v.groups.ResolveHandle(handle)
	if err != nil {
		return nil, fmt.Errorf("%w: handle %d", param.ErrInvalidReference, handle)
	}

	if g.Hierarchy() != group.HierarchyUnified {
		return nil, fmt.Errorf("%w: hierarchy %q", param.ErrWrongHierarchy, g.Hierarchy())
	}

	if !v.policy.Allow(caller, g) {
		v.logger.Debug("parameter request denied",
			"group", g.ID(), "policy", v.policy.Name())
		return nil, param.ErrPermissionDenied
	}

	return g, nil
}

// SetParam validates and applies a set-parameter command for caller.
// On success it returns the group the handle resolved to, so callers can
// attribute the mutation without re-resolving a handle that may since
// have been closed.
func (v *Validator) SetParam(caller *auth.Caller, req SetRequest) (*group.Group, error) {
	g, err := v.resolve(caller, req.Handle, req.Flags)
	if err != nil {
		return nil, err
	}

	if req.Param > param.MaxDriverParam {
		return nil, fmt.Errorf("%w: parameter %#x outside driver range", param.ErrInvalidArgument, req.Param)
	}

	// Value validation happens before the registry call so a rejected
	// request cannot leave a freshly created record behind.
	if err := v.driver.ValidateParam(req.Param, req.Value); err != nil {
		return nil, err
	}

	if err := v.registry.SetParam(g, req.Param, req.Value); err != nil {
		return nil, err
	}

	v.logger.Info("group parameter set",
		"device", v.registry.Device(), "group", g.ID(),
		"param", fmt.Sprintf("%#x", req.Param), "value", req.Value)
	return g, nil
}

// GetParam validates a get-parameter command and returns the stored value.
// Groups that never had a parameter set report param.ErrParamNotSet; the
// read never creates a record.
func (v *Validator) GetParam(caller *auth.Caller, req GetRequest) (int64, error) {
	g, err := v.resolve(caller, req.Handle, req.Flags)
	if err != nil {
		return 0, err
	}

	if req.Param > param.MaxDriverParam {
		return 0, fmt.Errorf("%w: parameter %#x outside driver range", param.ErrInvalidArgument, req.Param)
	}

	return v.registry.GetParam(g, req.Param)
}
