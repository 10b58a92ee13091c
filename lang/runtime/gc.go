package runtime

// collectGarbage runs one Cheney-style copying collection cycle (spec.md
// §4.4's numbered steps), ensuring at least reserveFor additional bytes
// of capacity are available afterward.
//
// Roots are StringRegister, NodeRegister, every live A-stack slot, and the
// self-closure of every currently active update frame (ConstrUpdateRegister,
// when set, is also rooted — it names the thunk currently being updated).
// Each root is evacuated via its info table's Evac function, which returns a freshly
// allocated copy in to-space (or, for a static closure, the same pointer
// unchanged) while recording a forwarding pointer on the old object so
// that a second reference to the same object resolves to the same new
// one, preserving sharing.
func (m *Machine) collectGarbage(reserveFor int) {
	newCap := m.Heap.capacity * GrowthFactor
	if used := m.Heap.used + reserveFor; used > newCap {
		newCap = used
	}

	used := 0
	var worklist []*Closure

	evac := func(c *Closure) *Closure {
		if c == nil {
			return nil
		}
		if c.forwarded != nil {
			return c.forwarded
		}
		n := c.Info.Evac(m, c)
		c.forwarded = n
		if n != c { // a real copy was made (not an identity/static evac)
			used += n.sizeWords() * WordSize
			if n.Str != "" {
				used += len(n.Str) + 1
			}
			worklist = append(worklist, n)
		}
		return n
	}

	m.StringRegister = evac(m.StringRegister)
	m.NodeRegister = evac(m.NodeRegister)
	m.ConstrUpdateRegister = evac(m.ConstrUpdateRegister)

	for i := 0; i < m.A.top; i++ {
		m.A.data[i] = evac(m.A.data[i])
	}

	for _, f := range m.updateFrames {
		f.self = evac(f.self)
	}

	// Scavenge: evacuated closures still reference old-space pointers in
	// their Ptrs fields (genericEvac copies the slice verbatim); walk the
	// worklist, evacuating each child and rewriting it in place, exactly
	// as spec.md §4.4 step 6 describes ("copy the closure bytes,
	// overwrite source, then evacuate each pointer field").
	for i := 0; i < len(worklist); i++ {
		c := worklist[i]
		for j, p := range c.Ptrs {
			c.Ptrs[j] = evac(p)
		}
	}

	m.Heap.used = used
	m.Heap.capacity = newCap
	if GrowthFactor*used < newCap {
		m.Heap.capacity = GrowthFactor * used
		if m.Heap.capacity < reserveFor {
			m.Heap.capacity = reserveFor
		}
	}
}
