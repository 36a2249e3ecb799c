package cpu

// Option configures a CPU.
type Option func(*CPU)

// WithTrace sets the handler for debug trace output.
// It is called for every decoded instruction.
func WithTrace(f TraceFunc) Option {
	return func(c *CPU) {
		if f != nil {
			c.trace = f
		}
	}
}

// WithMemoryLimit sets the maximum number of cells the tape may grow to.
// A limit <= 0 removes the bound.
func WithMemoryLimit(n int) Option {
	return func(c *CPU) { c.memory.limit = int64(n) }
}

// WithInput pre-seeds the input queue.
func WithInput(values ...int64) Option {
	return func(c *CPU) { c.PushInput(values...) }
}
