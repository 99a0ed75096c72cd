package controller

// Constant always decides the same value.
type Constant struct {
	name  string
	value int
}

// NewConstant creates a controller named name that always decides value.
func NewConstant(name string, value int) *Constant {
	return &Constant{name: name, value: value}
}

// Name implements match.Controller.
func (c *Constant) Name() string { return c.name }

// Reset implements match.Controller. A constant controller has no state.
func (c *Constant) Reset() error { return nil }

// Decide implements match.Controller.
func (c *Constant) Decide() (int, error) { return c.value, nil }
