// Package events fans successful parameter operations out to the audit
// trail, the MQTT event bus, and the time-series store.
//
// Recording is strictly best-effort: a full disk, a dead broker or a
// slow InfluxDB never fails the parameter request that triggered the
// event. Failures are logged and dropped.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nerrad567/devparam-core/internal/audit"
	"github.com/nerrad567/devparam-core/internal/infrastructure/mqtt"
)

// recordTimeout bounds how long an audit insert may hold up the
// recording goroutine.
const recordTimeout = 5 * time.Second

// AuditStore is the slice of audit.Repository the recorder needs.
type AuditStore interface {
	Create(ctx context.Context, entry *audit.Entry) error
}

// Publisher is the slice of the MQTT client the recorder needs.
type Publisher interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
}

// SeriesWriter is the slice of the tsdb client the recorder needs.
type SeriesWriter interface {
	WriteParamChange(device string, groupID uint64, paramID uint64, value int64)
	WriteGroupDestroyed(device string, groupID uint64, recordsFreed int)
}

// Logger defines the logging interface used by the Recorder.
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Warn(string, ...any)  {}

// ParamSetEvent is the JSON payload published on the param/set topic.
type ParamSetEvent struct {
	Device    string    `json:"device"`
	GroupID   uint64    `json:"group_id"`
	GroupName string    `json:"group_name,omitempty"`
	Param     uint64    `json:"param"`
	Value     int64     `json:"value"`
	ActorUID  int64     `json:"actor_uid"`
	Timestamp time.Time `json:"timestamp"`
}

// GroupDestroyedEvent is the JSON payload published on the
// group/destroyed topic.
type GroupDestroyedEvent struct {
	Device       string    `json:"device"`
	GroupID      uint64    `json:"group_id"`
	GroupName    string    `json:"group_name,omitempty"`
	RecordsFreed int       `json:"records_freed"`
	Timestamp    time.Time `json:"timestamp"`
}

// Recorder distributes parameter events to the configured sinks. Any of
// the sinks may be nil; a nil sink is skipped.
type Recorder struct {
	device    string
	policy    string
	auditRepo AuditStore
	publisher Publisher
	series    SeriesWriter
	topics    mqtt.Topics
	qos       byte
	logger    Logger
}

// New creates a recorder for the given device. policy names the active
// authorization policy and is stamped into audit entries.
func New(device, policy string, auditRepo AuditStore, publisher Publisher, series SeriesWriter, qos byte) *Recorder {
	return &Recorder{
		device:    device,
		policy:    policy,
		auditRepo: auditRepo,
		publisher: publisher,
		series:    series,
		qos:       qos,
		logger:    noopLogger{},
	}
}

// SetLogger sets the logger for the recorder.
func (r *Recorder) SetLogger(logger Logger) {
	r.logger = logger
}

// ParamSet records a successful set-parameter request in every sink.
func (r *Recorder) ParamSet(groupID uint64, groupName string, paramID uint64, value int64, actorUID int64) {
	if r == nil {
		return
	}
	now := time.Now().UTC()

	if r.auditRepo != nil {
		ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
		err := r.auditRepo.Create(ctx, &audit.Entry{
			Device:    r.device,
			GroupID:   groupID,
			GroupName: groupName,
			Action:    audit.ActionSet,
			Param:     paramID,
			Value:     value,
			ActorUID:  actorUID,
			Policy:    r.policy,
			CreatedAt: now,
		})
		cancel()
		if err != nil {
			r.logger.Warn("audit insert failed", "group", groupID, "error", err)
		}
	}

	if r.publisher != nil {
		payload, err := json.Marshal(ParamSetEvent{
			Device:    r.device,
			GroupID:   groupID,
			GroupName: groupName,
			Param:     paramID,
			Value:     value,
			ActorUID:  actorUID,
			Timestamp: now,
		})
		if err == nil {
			if err := r.publisher.Publish(r.topics.ParamSet(r.device), payload, r.qos, false); err != nil {
				r.logger.Debug("param event publish failed", "group", groupID, "error", err)
			}
		}
	}

	if r.series != nil {
		r.series.WriteParamChange(r.device, groupID, paramID, value)
	}
}

// GroupDestroyed records a group destruction in every sink.
// recordsFreed is the number of parameter records released with it.
func (r *Recorder) GroupDestroyed(groupID uint64, groupName string, recordsFreed int) {
	if r == nil {
		return
	}
	now := time.Now().UTC()

	if r.auditRepo != nil {
		ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
		err := r.auditRepo.Create(ctx, &audit.Entry{
			Device:    r.device,
			GroupID:   groupID,
			GroupName: groupName,
			Action:    audit.ActionDestroyed,
			Policy:    r.policy,
			CreatedAt: now,
		})
		cancel()
		if err != nil {
			r.logger.Warn("audit insert failed", "group", groupID, "error", err)
		}
	}

	if r.publisher != nil {
		payload, err := json.Marshal(GroupDestroyedEvent{
			Device:       r.device,
			GroupID:      groupID,
			GroupName:    groupName,
			RecordsFreed: recordsFreed,
			Timestamp:    now,
		})
		if err == nil {
			if err := r.publisher.Publish(r.topics.GroupDestroyed(r.device), payload, r.qos, false); err != nil {
				r.logger.Debug("destroy event publish failed", "group", groupID, "error", err)
			}
		}
	}

	if r.series != nil {
		r.series.WriteGroupDestroyed(r.device, groupID, recordsFreed)
	}
}
