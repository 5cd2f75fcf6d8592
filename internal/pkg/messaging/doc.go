// Package messaging publishes and consumes broker messages behind one small API.
//
// Drivers: NATS (core subjects with queue groups), Kafka (consumer groups with
// explicit commits) and an in-process memory bus for development and tests.
// Handlers own their retries: a handler error is logged and the message is
// acknowledged, so one poison message never blocks a partition.
package messaging
