package events

// Collector is embedded in aggregates to buffer events raised during a state change.
type Collector struct {
	events []DomainEvent
}

// Record appends an event.
func (c *Collector) Record(event DomainEvent) {
	c.events = append(c.events, event)
}

// Pending returns buffered events without clearing them.
func (c *Collector) Pending() []DomainEvent {
	return c.events
}

// Drain returns buffered events and clears the buffer.
func (c *Collector) Drain() []DomainEvent {
	drained := c.events
	c.events = nil
	return drained
}
