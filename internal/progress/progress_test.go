package progress

import (
	"testing"
	"time"
)

func TestHub_AttachSendsConnectedAck(t *testing.T) {
	hub := NewHub()
	ch, detach := hub.Attach("s1")
	defer detach()

	ev := <-ch
	if ev.Type != TypeConnected || ev.SessionID != "s1" {
		t.Errorf("First event = %+v, want connected ack for s1", ev)
	}
}

func TestHub_SendRoutesToSession(t *testing.T) {
	hub := NewHub()
	ch, detach := hub.Attach("s1")
	defer detach()
	<-ch // ack

	hub.Send("s1", Event{Type: TypeInit, TotalLines: 10})
	hub.Send("other", Event{Type: TypeError}) // nobody listening, dropped

	ev := <-ch
	if ev.Type != TypeInit || ev.TotalLines != 10 {
		t.Errorf("Event = %+v, want init with 10 lines", ev)
	}

	select {
	case ev := <-ch:
		t.Errorf("Unexpected event %+v", ev)
	default:
	}
}

func TestHub_SendToAbsentSessionDoesNotBlock(t *testing.T) {
	hub := NewHub()
	done := make(chan struct{})
	go func() {
		for i := 0; i < 1000; i++ {
			hub.Send("ghost", Event{Type: TypeProgress, Done: i})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Send blocked on absent session")
	}
}

func TestHub_DetachClosesChannel(t *testing.T) {
	hub := NewHub()
	ch, detach := hub.Attach("s1")
	<-ch // ack
	detach()

	if _, ok := <-ch; ok {
		t.Error("Channel still open after detach")
	}
	hub.Send("s1", Event{Type: TypeProgress}) // must not panic
}

func TestHub_ReattachReplacesListener(t *testing.T) {
	hub := NewHub()
	old, _ := hub.Attach("s1")
	<-old // ack

	ch, detach := hub.Attach("s1")
	defer detach()
	<-ch // ack

	if _, ok := <-old; ok {
		t.Error("Old channel still open after reattach")
	}

	hub.Send("s1", Event{Type: TypeInit})
	if ev := <-ch; ev.Type != TypeInit {
		t.Errorf("Event = %+v, want init on new channel", ev)
	}
}

func TestReporter_ThrottlesProgress(t *testing.T) {
	now := time.Now()
	var sent []Event
	r := NewReporter(func(ev Event) { sent = append(sent, ev) })
	r.now = func() time.Time { return now }

	r.Progress(1, 100)
	r.Progress(2, 100) // inside the window, dropped
	r.Progress(3, 100) // inside the window, dropped

	now = now.Add(DefaultThrottle)
	r.Progress(4, 100)

	if len(sent) != 2 {
		t.Fatalf("Sent %d events, want 2", len(sent))
	}
	if sent[0].Done != 1 || sent[1].Done != 4 {
		t.Errorf("Sent counts = %d, %d; want 1, 4", sent[0].Done, sent[1].Done)
	}
	if sent[1].Percent != 4 {
		t.Errorf("Percent = %f, want 4", sent[1].Percent)
	}
}

func TestReporter_FinalBypassesThrottle(t *testing.T) {
	now := time.Now()
	var sent []Event
	r := NewReporter(func(ev Event) { sent = append(sent, ev) })
	r.now = func() time.Time { return now }

	r.Progress(99, 100)
	r.Final(100, 100) // inside the window, still sent

	if len(sent) != 2 {
		t.Fatalf("Sent %d events, want 2", len(sent))
	}
	last := sent[1]
	if last.Done != 100 || last.Percent != 100 {
		t.Errorf("Final tick = %+v, want 100/100", last)
	}
}

func TestReporter_EmitPassesThrough(t *testing.T) {
	var sent []Event
	r := NewReporter(func(ev Event) { sent = append(sent, ev) })

	r.Emit(Event{Type: TypeFileStart, File: "products.csv"})
	r.Emit(Event{Type: TypeFileComplete, File: "products.csv"})

	if len(sent) != 2 {
		t.Fatalf("Sent %d events, want 2", len(sent))
	}
	if sent[0].Type != TypeFileStart || sent[1].Type != TypeFileComplete {
		t.Errorf("Events = %v, %v", sent[0].Type, sent[1].Type)
	}
}

func TestProgressEvent_ZeroTotal(t *testing.T) {
	ev := progressEvent(0, 0)
	if ev.Percent != 0 {
		t.Errorf("Percent = %f, want 0", ev.Percent)
	}
}
