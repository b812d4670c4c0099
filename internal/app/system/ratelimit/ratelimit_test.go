package ratelimit

import (
	"net/http/httptest"
	"testing"
	"time"
)

func TestLimiter_BurstThenBlock(t *testing.T) {
	l := New(3, time.Minute)
	for i := 0; i < 3; i++ {
		if !l.Allow("k") {
			t.Fatalf("attempt %d should be allowed", i+1)
		}
	}
	if l.Allow("k") {
		t.Error("fourth attempt should be blocked")
	}
	if !l.Allow("other") {
		t.Error("keys must be independent")
	}
}

func TestLimiter_Reset(t *testing.T) {
	l := New(1, time.Minute)
	l.Allow("k")
	if l.Allow("k") {
		t.Fatal("second attempt should be blocked")
	}
	l.Reset("k")
	if !l.Allow("k") {
		t.Error("attempt after Reset should be allowed")
	}
}

func TestLimiter_SweepsIdle(t *testing.T) {
	now := time.Now()
	l := New(1, time.Second)
	l.now = func() time.Time { return now }
	l.Allow("old")

	now = now.Add(time.Minute)
	l.Allow("new")
	if l.Len() != 1 {
		t.Errorf("Len = %d, want 1 after idle sweep", l.Len())
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name   string
		xff    string
		xri    string
		remote string
		want   string
	}{
		{"forwarded", "203.0.113.5, 10.0.0.1", "", "10.0.0.2:1234", "203.0.113.5"},
		{"real ip", "", "198.51.100.7", "10.0.0.2:1234", "198.51.100.7"},
		{"remote addr", "", "", "192.0.2.9:5555", "192.0.2.9"},
		{"remote no port", "", "", "192.0.2.9", "192.0.2.9"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("POST", "/auth/login", nil)
			r.RemoteAddr = tt.remote
			if tt.xff != "" {
				r.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.xri != "" {
				r.Header.Set("X-Real-IP", tt.xri)
			}
			if got := ClientIP(r); got != tt.want {
				t.Errorf("ClientIP = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLoginLimiter_EmailBucket(t *testing.T) {
	ll := NewLoginLimiter(100, 2)
	r := httptest.NewRequest("POST", "/auth/login", nil)

	for i := 0; i < 2; i++ {
		if ok, _ := ll.Check(r, "Ana@Example.com"); !ok {
			t.Fatalf("attempt %d should be allowed", i+1)
		}
	}
	ok, msg := ll.Check(r, "ana@example.com")
	if ok || msg == "" {
		t.Error("third attempt for the same email should be blocked with a message")
	}

	ll.ResetEmail("ANA@example.com")
	if ok, _ := ll.Check(r, "ana@example.com"); !ok {
		t.Error("attempt after ResetEmail should be allowed")
	}
}
