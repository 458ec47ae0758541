package redis

import (
	"context"
	"testing"
	"time"
)

func TestSetJSONRejectsUnmarshalable(t *testing.T) {
	// go-redis connects lazily, so a marshal failure must surface
	// before any network I/O happens.
	c := New("localhost:0", "", 0, time.Minute)
	defer c.Close()

	err := c.SetJSON(context.Background(), "k", func() {}, 0)
	if err == nil {
		t.Fatal("expected a marshal error for a func value")
	}
}
