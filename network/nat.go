package network

// NAT watches packets sent to a fixed address outside a network. Whenever
// the network goes idle, it re-sends the most recent of those packets to
// node 0.
type NAT struct {
	Addr     int64 // Monitored address.
	pending  *Packet
	last     *Packet
	repeated bool
}

// NewNAT creates a NAT monitoring the given address.
func NewNAT(addr int64) *NAT {
	return &NAT{Addr: addr}
}

// Observe keeps the latest packet addressed to the NAT and returns the
// remaining packets in their original order.
func (n *NAT) Observe(packets []Packet) []Packet {
	out := packets[:0]
	for i := range packets {
		if packets[i].Dst == n.Addr {
			p := packets[i]
			n.pending = &p
			continue
		}
		out = append(out, packets[i])
	}
	return out
}

// Wake delivers the pending packet to node 0 if the network is idle.
// It returns false if nothing was delivered.
func (n *NAT) Wake(nw *Network) (Packet, bool, error) {
	if n.pending == nil || !nw.Idle() {
		return Packet{}, false, nil
	}

	p := *n.pending
	if err := nw.Inject(0, p.Words...); err != nil {
		return Packet{}, false, err
	}

	n.repeated = n.last != nil && lastWord(n.last.Words) == lastWord(p.Words)
	n.last = &p
	n.pending = nil
	return p, true, nil
}

// Repeated returns true if the last two packets delivered by Wake ended in
// the same word.
func (n *NAT) Repeated() bool {
	return n.repeated
}

func lastWord(words []int64) int64 {
	if len(words) == 0 {
		return 0
	}
	return words[len(words)-1]
}
