// Package tsdb records parameter changes as time-series points in
// InfluxDB.
//
// Each successful set-parameter request becomes a point tagged by
// device, group and parameter, so dashboards can answer "how has this
// group's priority offset moved over the day" without touching the
// relational audit trail.
//
// Writes are non-blocking: points are batched by the underlying client
// and flushed on size or interval. Errors surface through the optional
// SetOnError callback, never through the write methods, so a slow or
// dead InfluxDB cannot stall a parameter request.
package tsdb
