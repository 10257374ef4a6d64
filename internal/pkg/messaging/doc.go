// Package messaging provides a broker-agnostic API for publishing messages.
//
// Business code depends on Publisher; the concrete broker (Kafka, NATS, NSQ,
// Google Pub/Sub, or an in-memory recorder) is picked by driver name at
// startup.
package messaging
