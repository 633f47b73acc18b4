package tsdb

import (
	"strconv"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// WriteParamChange records a successful set-parameter request.
//
// The point is tagged by device, group id and parameter id (hex, as
// shown in logs and the API) with the new value as the field. Writes are
// non-blocking; data is batched and sent asynchronously.
func (c *Client) WriteParamChange(device string, groupID uint64, paramID uint64, value int64) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"param_change",
		map[string]string{
			"device": device,
			"group":  strconv.FormatUint(groupID, 10),
			"param":  "0x" + strconv.FormatUint(paramID, 16),
		},
		map[string]interface{}{
			"value": value,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WriteGroupDestroyed records a group destruction with the number of
// parameter records released.
func (c *Client) WriteGroupDestroyed(device string, groupID uint64, recordsFreed int) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"group_destroyed",
		map[string]string{
			"device": device,
			"group":  strconv.FormatUint(groupID, 10),
		},
		map[string]interface{}{
			"records_freed": recordsFreed,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WritePoint writes a custom point with full control over tags and
// fields, for measurements the helpers do not cover.
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]interface{}) {
	if !c.IsConnected() {
		return
	}

	c.writeAPI.WritePoint(write.NewPoint(measurement, tags, fields, time.Now()))
}
