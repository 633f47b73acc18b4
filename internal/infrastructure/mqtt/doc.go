// Package mqtt provides MQTT client connectivity for devparam event
// publishing.
//
// This package manages:
//   - Connection to the broker with auto-reconnect
//   - Message publishing with QoS guarantees
//   - Topic subscriptions with wildcard support
//   - Last Will and Testament (LWT) for offline detection
//
// # Architecture
//
// devparamd publishes parameter change and group destruction events so
// external schedulers and monitoring agree on the current tuning without
// polling the control API:
//
//	devparamd --> MQTT Broker --> fleet tooling / dashboards
//
// Event publishing is fire-and-forget: a broker outage never fails a
// parameter request, events are simply dropped until the connection
// recovers.
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	topic := mqtt.Topics{}.ParamSet("card0")
//	client.Publish(topic, payload, 1, false)
package mqtt
