package cache

import (
	"testing"
	"time"
)

func TestMemoryCache_Expiration(t *testing.T) {
	c := NewMemoryCache()
	defer c.Close()

	c.Set("short", 1, 10*time.Millisecond)
	c.Set("long", 2, time.Minute)

	time.Sleep(20 * time.Millisecond)

	if _, ok := c.Get("short"); ok {
		t.Error("expected expired item to be gone")
	}
	if v, ok := c.Get("long"); !ok || v != 2 {
		t.Errorf("expected live item, got %v %v", v, ok)
	}
}

func TestMemoryCache_Cleanup(t *testing.T) {
	c := NewMemoryCacheWithCleanup(10 * time.Millisecond)
	defer c.Close()

	c.Set("a", 1, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)

	if n := c.Len(); n != 0 {
		t.Errorf("expected cleanup to remove expired items, %d left", n)
	}
}

func TestMatchPattern(t *testing.T) {
	tests := []struct {
		text, pattern string
		want          bool
	}{
		{"tasks:a:stats", "*", true},
		{"tasks:a:stats", "tasks:a:*", true},
		{"tasks:ab:stats", "tasks:a:*", false},
		{"tasks:a:stats", "tasks:a:stats", true},
		{"tasks:a:stats", "tasks:a:stat", false},
	}
	for _, tt := range tests {
		if got := matchPattern(tt.text, tt.pattern); got != tt.want {
			t.Errorf("matchPattern(%q, %q) = %v, want %v", tt.text, tt.pattern, got, tt.want)
		}
	}
}
