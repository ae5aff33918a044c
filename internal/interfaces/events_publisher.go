package interfaces

// EventPublisher delivers boundary-layer notifications such as
// transfer-completed events. Publishing is best effort and never part
// of the engine's atomic scope.
type EventPublisher interface {
	Publish(topic string, event any) error
}
