package signal

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/skyfall/planning/internal/app"
	"github.com/skyfall/planning/internal/config"
	"github.com/skyfall/planning/internal/core"
	"github.com/skyfall/planning/internal/domain"
)

type fakeSig struct {
	mu     sync.Mutex
	frames []core.Frame
	fail   bool
}

func (f *fakeSig) TrySend(fr core.Frame) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("send buffer full")
	}
	f.frames = append(f.frames, fr)
	return nil
}

func (f *fakeSig) Close() {}

func (f *fakeSig) drain() []map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]map[string]any, 0, len(f.frames))
	for _, fr := range f.frames {
		var m map[string]any
		if err := json.Unmarshal(fr, &m); err != nil {
			panic(err)
		}
		out = append(out, m)
	}
	f.frames = nil
	return out
}

func newTestController() *Controller {
	orch := app.NewOrchestrator(app.NewRoomStore(), app.NewRegistry())
	return NewController(orch, &config.Config{
		SendBuffer:   8,
		ReadLimit:    4096,
		PingPeriod:   time.Second,
		JoinLimit:    100,
		JoinInterval: time.Minute,
	})
}

// joins through the full event path, with the connection bound so
// broadcasts reach it.
func join(ctl *Controller, cid domain.ConnID, sig *fakeSig, roomID, name string) {
	ctl.Orch.Registry.Bind(cid, sig)
	payload := []byte(`{"type":"joinRoom","roomId":"` + roomID + `","name":"` + name + `","deck":"fib"}`)
	ctl.handleEvent(cid, "token-"+string(cid), sig, payload)
}

func TestDispatchMalformedJSON(t *testing.T) {
	ctl := newTestController()
	sig := &fakeSig{}

	ctl.handleEvent("c1", "t1", sig, []byte(`{not json`))

	if frames := sig.drain(); len(frames) != 0 {
		t.Errorf("malformed json should be dropped, got %v", frames)
	}
}

func TestDispatchUnknownType(t *testing.T) {
	ctl := newTestController()
	sig := &fakeSig{}

	ctl.handleEvent("c1", "t1", sig, []byte(`{"type":"selfDestruct"}`))

	if frames := sig.drain(); len(frames) != 0 {
		t.Errorf("unknown event should be ignored, got %v", frames)
	}
}

func TestJoinRoomInvalidIDRepliesErrorToSenderOnly(t *testing.T) {
	ctl := newTestController()
	sig := &fakeSig{}
	ctl.Orch.Registry.Bind("c1", sig)

	ctl.handleEvent("c1", "t1", sig, []byte(`{"type":"joinRoom","roomId":"ab","name":"Alice","deck":"fib"}`))

	frames := sig.drain()
	if len(frames) != 1 {
		t.Fatalf("want 1 error frame, got %d", len(frames))
	}
	if frames[0]["type"] != "error" || frames[0]["error"] != "Invalid room id" {
		t.Errorf("unexpected reply: %v", frames[0])
	}
	if ctl.Orch.Store.Exists("ab") {
		t.Error("rejected join must not create a room")
	}
}

func TestJoinRoomBroadcastsUpdate(t *testing.T) {
	ctl := newTestController()
	sig := &fakeSig{}

	join(ctl, "c1", sig, "ABCD", "Alice")

	frames := sig.drain()
	if len(frames) != 1 {
		t.Fatalf("want 1 frame, got %d", len(frames))
	}
	if frames[0]["type"] != "updateRoom" {
		t.Errorf("type = %v, want updateRoom", frames[0]["type"])
	}
	if frames[0]["deck"] != "fib" {
		t.Errorf("deck = %v, want fib", frames[0]["deck"])
	}
}

func TestCheckRoomRepliesWithAck(t *testing.T) {
	ctl := newTestController()
	member, asker := &fakeSig{}, &fakeSig{}
	join(ctl, "c1", member, "ABCD", "Alice")

	ctl.handleEvent("c2", "t2", asker, []byte(`{"type":"checkRoom","roomId":"ABCD","checkName":false,"ack":7}`))

	frames := asker.drain()
	if len(frames) != 1 {
		t.Fatalf("want 1 reply, got %d", len(frames))
	}
	f := frames[0]
	if f["type"] != "checkRoom" || f["result"] != true || f["ack"] != float64(7) {
		t.Errorf("unexpected reply: %v", f)
	}

	ctl.handleEvent("c2", "t2", asker, []byte(`{"type":"checkRoom","roomId":"ABCD","checkName":true,"ack":8}`))
	if f := asker.drain()[0]; f["result"] != false {
		t.Errorf("non-member membership check = %v, want false", f["result"])
	}
}

func TestVoteEventReachesRoom(t *testing.T) {
	ctl := newTestController()
	alice, bob := &fakeSig{}, &fakeSig{}
	join(ctl, "c1", alice, "ABCD", "Alice")
	join(ctl, "c2", bob, "ABCD", "Bob")
	alice.drain()
	bob.drain()

	ctl.handleEvent("c1", "t1", alice, []byte(`{"type":"vote","roomId":"ABCD","vote":5}`))

	frames := bob.drain()
	if len(frames) != 1 {
		t.Fatalf("want 1 broadcast, got %d", len(frames))
	}
	room := frames[0]["room"].(map[string]any)
	member := room["c1"].(map[string]any)
	if member["vote"] != "*" {
		t.Errorf("hidden vote = %v, want mask", member["vote"])
	}
}

func TestToggleAndDeleteVotesEvents(t *testing.T) {
	ctl := newTestController()
	sig := &fakeSig{}
	join(ctl, "c1", sig, "ABCD", "Alice")
	ctl.handleEvent("c1", "t1", sig, []byte(`{"type":"vote","roomId":"ABCD","vote":"XL"}`))
	sig.drain()

	ctl.handleEvent("c1", "t1", sig, []byte(`{"type":"toggleVisibility","roomId":"ABCD"}`))
	f := sig.drain()[0]
	if f["type"] != "toggleVisibility" || f["isVisible"] != true {
		t.Fatalf("unexpected toggle frame: %v", f)
	}
	member := f["room"].(map[string]any)["c1"].(map[string]any)
	if member["vote"] != "XL" {
		t.Errorf("reveal vote = %v, want XL", member["vote"])
	}

	ctl.handleEvent("c1", "t1", sig, []byte(`{"type":"deleteVotes","roomId":"ABCD"}`))
	f = sig.drain()[0]
	if f["type"] != "deleteVotes" {
		t.Fatalf("unexpected frame: %v", f)
	}
	member = f["room"].(map[string]any)["c1"].(map[string]any)
	if _, hasVote := member["vote"]; hasVote {
		t.Errorf("cleared member still has vote: %v", member)
	}
}

func TestPingRepliesPong(t *testing.T) {
	ctl := newTestController()
	sig := &fakeSig{}

	ctl.handleEvent("c1", "t1", sig, []byte(`{"type":"ping"}`))

	frames := sig.drain()
	if len(frames) != 1 || frames[0]["type"] != "pong" {
		t.Errorf("want pong, got %v", frames)
	}
}

func TestJoinRateLimit(t *testing.T) {
	orch := app.NewOrchestrator(app.NewRoomStore(), app.NewRegistry())
	ctl := NewController(orch, &config.Config{
		SendBuffer:   8,
		ReadLimit:    4096,
		PingPeriod:   time.Second,
		JoinLimit:    1,
		JoinInterval: time.Minute,
	})
	sig := &fakeSig{}
	ctl.Orch.Registry.Bind("c1", sig)

	ctl.handleEvent("c1", "shared-token", sig, []byte(`{"type":"joinRoom","roomId":"ABCD","name":"Alice","deck":"fib"}`))
	sig.drain()

	ctl.handleEvent("c1", "shared-token", sig, []byte(`{"type":"joinRoom","roomId":"WXYZ","name":"Alice","deck":"fib"}`))

	frames := sig.drain()
	if len(frames) != 1 || frames[0]["type"] != "error" {
		t.Fatalf("want rate-limit error, got %v", frames)
	}
	if ctl.Orch.Store.Exists("WXYZ") {
		t.Error("rate-limited join must not mutate state")
	}
}

func TestNullVoteIsNotMasked(t *testing.T) {
	ctl := newTestController()
	alice, bob := &fakeSig{}, &fakeSig{}
	join(ctl, "c1", alice, "ABCD", "Alice")
	join(ctl, "c2", bob, "ABCD", "Bob")
	ctl.handleEvent("c1", "t1", alice, []byte(`{"type":"vote","roomId":"ABCD","vote":5}`))
	alice.drain()
	bob.drain()

	ctl.handleEvent("c1", "t1", alice, []byte(`{"type":"vote","roomId":"ABCD","vote":null}`))

	frames := bob.drain()
	if len(frames) != 1 {
		t.Fatalf("want 1 broadcast, got %d", len(frames))
	}
	member := frames[0]["room"].(map[string]any)["c1"].(map[string]any)
	if v, ok := member["vote"]; ok {
		t.Errorf("null vote broadcast as %v, want no vote at all", v)
	}
}

func TestInvalidJoinDoesNotChargeLimiter(t *testing.T) {
	orch := app.NewOrchestrator(app.NewRoomStore(), app.NewRegistry())
	ctl := NewController(orch, &config.Config{
		SendBuffer:   8,
		ReadLimit:    4096,
		PingPeriod:   time.Second,
		JoinLimit:    1,
		JoinInterval: time.Minute,
	})
	sig := &fakeSig{}
	ctl.Orch.Registry.Bind("c1", sig)

	ctl.handleEvent("c1", "shared-token", sig, []byte(`{"type":"joinRoom","roomId":"ab","name":"Alice","deck":"fib"}`))
	frames := sig.drain()
	if len(frames) != 1 || frames[0]["error"] != "Invalid room id" {
		t.Fatalf("want validation error, got %v", frames)
	}

	ctl.handleEvent("c1", "shared-token", sig, []byte(`{"type":"joinRoom","roomId":"ABCD","name":"Alice","deck":"fib"}`))
	frames = sig.drain()
	if len(frames) != 1 || frames[0]["type"] != "updateRoom" {
		t.Fatalf("valid join after rejected one should pass, got %v", frames)
	}
}
