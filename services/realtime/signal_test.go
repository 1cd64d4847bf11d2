package realtime

import (
	"context"
	"encoding/json"
	"testing"
)

func TestNegotiationHappyPath(t *testing.T) {
	offerer := &Negotiation{Role: RoleInitiator}
	answerer := &Negotiation{Role: RoleResponder}

	offerer.LocalOffer()
	if offerer.State != NegOffering {
		t.Fatalf("offerer state = %s, want offering", offerer.State)
	}
	if superseded := answerer.RemoteOffer(); superseded {
		t.Error("fresh offer must not report glare")
	}
	if answerer.State != NegAnswering {
		t.Fatalf("answerer state = %s, want answering", answerer.State)
	}

	answerer.LocalAnswer()
	offerer.RemoteAnswer()
	if offerer.State != NegStable || answerer.State != NegStable {
		t.Errorf("states = %s/%s, want stable/stable", offerer.State, answerer.State)
	}
}

func TestNegotiationGlareLastOfferWins(t *testing.T) {
	a := &Negotiation{Role: RoleInitiator}
	b := &Negotiation{Role: RoleResponder}

	// Both sides offer at once.
	a.LocalOffer()
	b.LocalOffer()

	// B's offer reaches A: A abandons its own offer and answers.
	if superseded := a.RemoteOffer(); !superseded {
		t.Error("offer arriving mid-offer must report glare")
	}
	if a.State != NegAnswering {
		t.Fatalf("a state = %s, want answering", a.State)
	}

	a.LocalAnswer()
	b.RemoteAnswer()
	if a.State != NegStable || b.State != NegStable {
		t.Errorf("states = %s/%s, want stable/stable", a.State, b.State)
	}
}

func TestNegotiationStaleAnswerIgnored(t *testing.T) {
	n := &Negotiation{Role: RoleInitiator}
	n.LocalOffer()
	n.RemoteOffer() // superseded; now answering
	n.RemoteAnswer()
	if n.State != NegAnswering {
		t.Errorf("stale answer moved state to %s", n.State)
	}
}

func TestRelayOfferStampsSender(t *testing.T) {
	f := newFixture(t)
	f.join(t, f.mentee)
	f.join(t, f.mentor)
	drain(f.mentee)
	drain(f.mentor)

	f.hub.HandleEvent(context.Background(), f.mentee, Envelope{
		Event: EvOffer,
		Data: mustJSON(t, map[string]interface{}{
			"roomId": "room-1",
			"offer":  map[string]string{"type": "offer", "sdp": "v=0"},
		}),
	})

	if countEvents(drain(f.mentee), EvOffer) != 0 {
		t.Error("offer echoed back to its sender")
	}
	evs := drain(f.mentor)
	if countEvents(evs, EvOffer) != 1 {
		t.Fatalf("offer not relayed, events: %+v", evs)
	}
	var payload struct {
		SenderID string          `json:"senderId"`
		Offer    json.RawMessage `json:"offer"`
	}
	for _, ev := range evs {
		if ev.Event != EvOffer {
			continue
		}
		if err := json.Unmarshal(ev.Data, &payload); err != nil {
			t.Fatal(err)
		}
	}
	if payload.SenderID != "mentee-1" {
		t.Errorf("senderId = %q, want mentee-1", payload.SenderID)
	}
	if len(payload.Offer) == 0 {
		t.Error("offer body dropped in relay")
	}
}

func TestRelayRequiresMembership(t *testing.T) {
	f := newFixture(t)
	f.join(t, f.mentor)
	drain(f.mentor)

	// Mentee never joined on this connection.
	f.hub.HandleEvent(context.Background(), f.mentee, Envelope{
		Event: EvICECandidate,
		Data: mustJSON(t, map[string]interface{}{
			"roomId":    "room-1",
			"candidate": map[string]string{"candidate": "candidate:0"},
		}),
	})

	if countEvents(drain(f.mentee), EvError) != 1 {
		t.Error("non-member signaling must be rejected")
	}
	if countEvents(drain(f.mentor), EvICECandidate) != 0 {
		t.Error("signal from non-member must not be relayed")
	}
}

func TestRelayGlareThroughHub(t *testing.T) {
	f := newFixture(t)
	f.join(t, f.mentee)
	f.join(t, f.mentor)
	drain(f.mentee)
	drain(f.mentor)

	offer := func(c *Client) Envelope {
		return Envelope{
			Event: EvOffer,
			Data: mustJSON(t, map[string]interface{}{
				"roomId": "room-1",
				"offer":  map[string]string{"sdp": "from-" + c.UserID},
			}),
		}
	}

	// Both sides offer before either sees the other's.
	f.hub.HandleEvent(context.Background(), f.mentee, offer(f.mentee))
	f.hub.HandleEvent(context.Background(), f.mentor, offer(f.mentor))

	f.hub.mu.Lock()
	menteeState := f.hub.negs[f.mentee]["room-1"].State
	mentorState := f.hub.negs[f.mentor]["room-1"].State
	f.hub.mu.Unlock()

	// The second offer supersedes the mentee's outstanding one: the
	// mentee now owes an answer, the mentor awaits it.
	if menteeState != NegAnswering {
		t.Errorf("mentee state = %s, want answering", menteeState)
	}
	if mentorState != NegOffering {
		t.Errorf("mentor state = %s, want offering", mentorState)
	}

	// The mentee answers; both sides settle.
	f.hub.HandleEvent(context.Background(), f.mentee, Envelope{
		Event: EvAnswer,
		Data: mustJSON(t, map[string]interface{}{
			"roomId": "room-1",
			"answer": map[string]string{"sdp": "answer"},
		}),
	})

	f.hub.mu.Lock()
	menteeState = f.hub.negs[f.mentee]["room-1"].State
	mentorState = f.hub.negs[f.mentor]["room-1"].State
	f.hub.mu.Unlock()
	if menteeState != NegStable || mentorState != NegStable {
		t.Errorf("states = %s/%s, want stable/stable", menteeState, mentorState)
	}
}
