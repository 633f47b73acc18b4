// Package gpu is the concrete driver for the parameter registry.
//
// It tracks two per-group parameters:
//
//   - ParamPriorityOffset: shifts the scheduling priority of every context
//     created by processes in the group. The offset is only legal if the
//     user priority range shifted by it still fits inside the device's
//     global priority window, so a base priority plus the offset can never
//     escape the window.
//   - ParamDisplayBoost: display bandwidth boost for the group, capped by
//     the hardware-advertised maximum. Hardware that advertises a maximum
//     of zero does not support the feature at all.
//
// The Accessor is the runtime read side: scheduling and display code asks
// for the current group's values and gets documented defaults when nothing
// has been configured, with no allocation and no error paths.
package gpu
