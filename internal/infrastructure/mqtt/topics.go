package mqtt

import "fmt"

// Topic prefixes for the devparam event bus.
//
// All topics follow the scheme: devparam/{device}/{category}/... so
// consumers can subscribe per device or across the fleet with wildcards.
const (
	// TopicPrefix is the base for all devparam topics.
	TopicPrefix = "devparam"

	// TopicPrefixSystem is the base for daemon status topics.
	TopicPrefixSystem = "devparam/system"
)

// Topics provides builders for devparam MQTT topics. Using these helpers
// keeps topic naming consistent across publishers and subscribers.
type Topics struct{}

// ParamSet returns the topic for parameter change events on a device.
//
// Example: devparam/card0/param/set
func (Topics) ParamSet(device string) string {
	return fmt.Sprintf("%s/%s/param/set", TopicPrefix, device)
}

// GroupDestroyed returns the topic for group destruction events on a
// device.
//
// Example: devparam/card0/group/destroyed
func (Topics) GroupDestroyed(device string) string {
	return fmt.Sprintf("%s/%s/group/destroyed", TopicPrefix, device)
}

// SystemStatus returns the daemon status topic.
//
// Example: devparam/system/status
func (Topics) SystemStatus() string {
	return fmt.Sprintf("%s/status", TopicPrefixSystem)
}

// StatusRequest returns the topic fleet tooling publishes on to ask
// every daemon to re-announce its retained online status.
//
// Pattern: devparam/system/status/request
func (Topics) StatusRequest() string {
	return fmt.Sprintf("%s/status/request", TopicPrefixSystem)
}

// AllParamSets returns a pattern matching parameter change events from
// every device.
//
// Pattern: devparam/+/param/set
func (Topics) AllParamSets() string {
	return fmt.Sprintf("%s/+/param/set", TopicPrefix)
}

// AllGroupDestroys returns a pattern matching group destruction events
// from every device.
//
// Pattern: devparam/+/group/destroyed
func (Topics) AllGroupDestroys() string {
	return fmt.Sprintf("%s/+/group/destroyed", TopicPrefix)
}

// AllTopics returns a pattern matching every devparam topic. Use with
// caution, this receives all traffic.
//
// Pattern: devparam/#
func (Topics) AllTopics() string {
	return "devparam/#"
}
