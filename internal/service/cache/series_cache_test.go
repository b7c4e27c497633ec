package cache

import (
	"testing"
	"time"
)

func TestKeyDeterministic(t *testing.T) {
	a := Key("kline", "BTCUSDT", 240)
	b := Key("kline", "BTCUSDT", 240)
	if a != b {
		t.Fatalf("identical calls produced different keys: %s vs %s", a, b)
	}
	if c := Key("kline", "ETHUSDT", 240); c == a {
		t.Fatalf("distinct symbols collided on key %s", a)
	}
	if c := Key("price", "BTCUSDT", 240); c == a {
		t.Fatalf("distinct operations collided on key %s", a)
	}
}

func TestGetSetRoundTrip(t *testing.T) {
	c := NewSeriesCache()
	c.Set("k", 42, time.Minute)

	v, ok := c.Get("k")
	if !ok {
		t.Fatal("expected hit")
	}
	if v.(int) != 42 {
		t.Fatalf("got %v, want 42", v)
	}
	if _, ok := c.Get("missing"); ok {
		t.Fatal("expected miss for unknown key")
	}
}

func TestGetDropsExpired(t *testing.T) {
	c := NewSeriesCache()
	c.Set("k", "v", -time.Second)

	if _, ok := c.Get("k"); ok {
		t.Fatal("expired entry reported present")
	}
	if st := c.Stats(); st.TotalEntries != 0 {
		t.Fatalf("expired entry survived Get: %+v", st)
	}
}

func TestClearExpired(t *testing.T) {
	c := NewSeriesCache()
	c.Set("live", 1, time.Minute)
	c.Set("dead1", 2, -time.Second)
	c.Set("dead2", 3, -time.Second)

	if n := c.ClearExpired(); n != 2 {
		t.Fatalf("removed %d entries, want 2", n)
	}
	st := c.Stats()
	if st.TotalEntries != 1 || st.ExpiredEntries != 0 {
		t.Fatalf("unexpected stats after sweep: %+v", st)
	}
}

func TestClear(t *testing.T) {
	c := NewSeriesCache()
	c.Set("a", 1, time.Minute)
	c.Set("b", 2, time.Minute)
	c.Clear()

	if st := c.Stats(); st.TotalEntries != 0 {
		t.Fatalf("clear left %d entries", st.TotalEntries)
	}
}

func TestStatsCountsExpired(t *testing.T) {
	c := NewSeriesCache()
	c.Set("live", "payload", time.Minute)
	c.Set("dead", "payload", -time.Second)

	st := c.Stats()
	if st.TotalEntries != 2 {
		t.Fatalf("total = %d, want 2", st.TotalEntries)
	}
	if st.ExpiredEntries != 1 {
		t.Fatalf("expired = %d, want 1", st.ExpiredEntries)
	}
	if st.ApproxMemory == 0 {
		t.Fatal("memory estimate should be non-zero")
	}
}
