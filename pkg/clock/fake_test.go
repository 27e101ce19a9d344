package clock

import (
	"testing"
	"time"
)

var epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func TestFakeAfterFunc(t *testing.T) {
	c := Fake(epoch)
	fired := 0
	c.AfterFunc(10*time.Second, func() { fired++ })

	c.Advance(9 * time.Second)
	if fired != 0 {
		t.Fatalf("fired early: %d", fired)
	}
	c.Advance(time.Second)
	if fired != 1 {
		t.Fatalf("expected 1 fire, got %d", fired)
	}
	c.Advance(time.Minute)
	if fired != 1 {
		t.Fatalf("one-shot timer fired again: %d", fired)
	}
	if got := c.Now(); !got.Equal(epoch.Add(70 * time.Second)) {
		t.Errorf("Now = %v", got)
	}
}

func TestFakeStop(t *testing.T) {
	c := Fake(epoch)
	fired := false
	timer := c.AfterFunc(time.Second, func() { fired = true })

	if !timer.Stop() {
		t.Fatal("Stop on pending timer returned false")
	}
	if timer.Stop() {
		t.Fatal("second Stop returned true")
	}
	c.Advance(time.Hour)
	if fired {
		t.Fatal("stopped timer fired")
	}
	if n := c.PendingCount(); n != 0 {
		t.Errorf("PendingCount = %d, want 0", n)
	}
}

func TestFakeChainedTimers(t *testing.T) {
	c := Fake(epoch)
	ticks := 0
	var schedule func()
	schedule = func() {
		c.AfterFunc(time.Second, func() {
			ticks++
			schedule()
		})
	}
	schedule()

	for i := 0; i < 3; i++ {
		c.Advance(time.Second)
	}
	if ticks != 3 {
		t.Fatalf("ticks = %d, want 3", ticks)
	}
	if n := c.PendingCount(); n != 1 {
		t.Errorf("PendingCount = %d, want 1", n)
	}
}
