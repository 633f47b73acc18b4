// Package param provides the per-group parameter registry for devparam.
//
// The registry stores driver-owned records keyed by resource-control group,
// one registry per device. Drivers extend the record schema through the
// Driver callbacks without the registry knowing their semantics; the
// registry only guarantees the storage and lifecycle discipline.
//
// # Architecture
//
//	┌─────────────────────────────────────────────────────────────────┐
//	│                       Parameter Registry                        │
//	│                                                                 │
//	│  ┌───────────────┐     ┌───────────────┐    ┌────────────────┐  │
//	│  │   Registry    │     │    Driver     │    │    Accessor    │  │
//	│  │ (registry.go) │────▶│  (driver.go)  │    │ (accessor.go)  │  │
//	│  │               │     │               │    │                │  │
//	│  │ • bucket table│     │ • AllocParams │    │ • hot-path read│  │
//	│  │ • single mutex│     │ • UpdateParam │    │ • never creates│  │
//	│  │ • lifecycle   │     │ • ReadParam   │    │ • safe defaults│  │
//	│  └───────┬───────┘     └───────────────┘    └────────────────┘  │
//	└──────────│──────────────────────────────────────────────────────┘
//	           │ subscribes to destruction broadcast
//	           ▼
//	┌─────────────────────┐
//	│    group.Service    │
//	└─────────────────────┘
//
// # Concurrency
//
// One mutex per registry linearizes every structural mutation and every
// driver callback. The mutex is held across the whole find-or-insert
// sequence, so two concurrent first-time creates for the same group yield
// exactly one record. Records are owned by the registry from creation to
// removal; callers never mutate a record's payload directly.
//
// # Lifecycle
//
// A record is freed exactly once: either when its group's destruction is
// broadcast, or when the registry shuts down, whichever comes first.
// Shutdown unsubscribes from the broadcast before draining, and removal
// is presence-checked under the same mutex used by lookups, so the two
// paths cannot double-free.
package param
