package tsmtest

// calls counts Check and Deliver invocations of a mock. Failed calls are
// counted too.
type calls struct {
	checks   int
	delivers int
}

func (c *calls) CheckCallCount() int { return c.checks }
func (c *calls) DeliverCallCount() int { return c.delivers }
func (c *calls) CallCount() int { return c.checks + c.delivers }
