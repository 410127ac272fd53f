package catalog

// Cycler is a bounded, 1-based wrapping index over an item's alternate images.
type Cycler struct {
	n     int
	index int
}

// NewCycler returns a cycler over n variants positioned at 1. n < 1 is treated as 1.
func NewCycler(n int) Cycler {
	if n < 1 {
		n = 1
	}
	return Cycler{n: n, index: 1}
}

func (c Cycler) Index() int { return c.index }

func (c Cycler) Len() int { return c.n }

// Next advances 1 -> 2 -> ... -> N -> 1 and returns the new index.
func (c *Cycler) Next() int {
	if c.n < 1 {
		c.n = 1
	}
	c.index = (c.index % c.n) + 1
	return c.index
}

func (c *Cycler) Reset() { c.index = 1 }
