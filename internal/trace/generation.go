package trace

// generation tracks the live/dead lifecycle of one raw address, handing
// out a monotonically increasing version on every construction so that
// an address reused after destruction is disambiguated from its
// predecessor.
type generation struct {
	version int64
	live    bool
}

// create bumps the version and marks the address live. Calling create on
// an already-live generation is a trace-integrity error: the caller
// must not have seen a matching destroy.
func (g *generation) create() (int64, error) {
	if g.live {
		return g.version, ErrConstructLive
	}
	g.live = true
	g.version++
	return g.version, nil
}

// destroy marks the address dead and returns the version it held.
func (g *generation) destroy() (int64, error) {
	if !g.live {
		return 0, ErrDestroyUnknown
	}
	g.live = false
	return g.version, nil
}

// Identity is the true identity of a raw address: the pair
// (address, generation) that disambiguates address reuse.
type Identity struct {
	Address    int64
	Generation int64
}

// GenerationCounter assigns and tracks Identity values for raw addresses
// seen during one normalization run. Zero value is not usable; use
// newGenerationCounter.
type GenerationCounter struct {
	generations map[int64]*generation
}

func newGenerationCounter() *GenerationCounter {
	return &GenerationCounter{generations: make(map[int64]*generation)}
}

// AddVertex constructs a new Identity at address, advancing its
// generation. The first construction at a never-before-seen address
// succeeds at generation 1; generation 0 is what GetVertex reports for
// an address referenced before it was ever constructed.
func (c *GenerationCounter) AddVertex(address int64) (Identity, error) {
	g, ok := c.generations[address]
	if !ok {
		g = &generation{}
		c.generations[address] = g
	}
	version, err := g.create()
	if err != nil {
		return Identity{}, err
	}
	return Identity{Address: address, Generation: version}, nil
}

// DelVertex destroys the live Identity at address.
func (c *GenerationCounter) DelVertex(address int64) (Identity, error) {
	g, ok := c.generations[address]
	if !ok {
		return Identity{}, ErrDestroyUnknown
	}
	version, err := g.destroy()
	if err != nil {
		return Identity{}, err
	}
	return Identity{Address: address, Generation: version}, nil
}

// GetVertex returns the current live Identity at address without
// changing its lifecycle. Used when an event references an address by
// side effect (e.g. an edge endpoint) rather than constructing it.
func (c *GenerationCounter) GetVertex(address int64) Identity {
	g, ok := c.generations[address]
	if !ok {
		g = &generation{}
		c.generations[address] = g
	}
	return Identity{Address: address, Generation: g.version}
}
