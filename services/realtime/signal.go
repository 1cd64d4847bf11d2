package realtime

// Media negotiation bookkeeping. The relay forwards offer/answer/ICE
// payloads untouched; this state machine exists so that glare (both
// sides offering at once) is an explicit, observable transition rather
// than something inferred from message arrival order.
//
// Role assignment: the mentee's side initiates after joining, the
// mentor's side only responds. Glare resolution is last-offer-wins:
// a side that receives an offer while its own offer is outstanding
// abandons its offer and answers the incoming one.

// Role is a connection's designated negotiation role in a room.
type Role int

const (
	RoleResponder Role = iota
	RoleInitiator
)

func (r Role) String() string {
	if r == RoleInitiator {
		return "initiator"
	}
	return "responder"
}

// NegState is a connection's negotiation state within one room.
type NegState int

const (
	// NegIdle: no negotiation in flight.
	NegIdle NegState = iota
	// NegOffering: this side has sent an offer and awaits an answer.
	NegOffering
	// NegAnswering: a remote offer has arrived and an answer is owed.
	NegAnswering
	// NegStable: offer/answer exchange completed.
	NegStable
)

func (s NegState) String() string {
	switch s {
	case NegOffering:
		return "offering"
	case NegAnswering:
		return "answering"
	case NegStable:
		return "stable"
	default:
		return "idle"
	}
}

// Negotiation tracks one connection's signaling state for one room.
type Negotiation struct {
	Role  Role
	State NegState
}

// LocalOffer records that this side sent an offer.
func (n *Negotiation) LocalOffer() {
	n.State = NegOffering
}

// RemoteOffer records an incoming offer and reports whether it
// supersedes an outstanding local offer (glare).
func (n *Negotiation) RemoteOffer() (superseded bool) {
	superseded = n.State == NegOffering
	n.State = NegAnswering
	return superseded
}

// LocalAnswer records that this side answered the remote offer.
func (n *Negotiation) LocalAnswer() {
	if n.State == NegAnswering {
		n.State = NegStable
	}
}

// RemoteAnswer records the answer to this side's offer. An answer
// arriving when no offer is outstanding (for example after this side's
// offer was superseded by glare) is ignored.
func (n *Negotiation) RemoteAnswer() {
	if n.State == NegOffering {
		n.State = NegStable
	}
}
