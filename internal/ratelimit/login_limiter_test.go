package ratelimit

import "testing"

func TestLoginLimiter_PerMinuteCap(t *testing.T) {
	l := NewLoginLimiter(3, 100, true)

	for i := 0; i < 3; i++ {
		if !l.Allow("10.0.0.1") {
			t.Fatalf("attempt %d should be allowed", i+1)
		}
	}
	if l.Allow("10.0.0.1") {
		t.Error("4th attempt within a minute should be blocked")
	}
}

func TestLoginLimiter_AddressesIndependent(t *testing.T) {
	l := NewLoginLimiter(1, 100, true)

	if !l.Allow("10.0.0.1") {
		t.Fatal("first attempt should be allowed")
	}
	if l.Allow("10.0.0.1") {
		t.Error("second attempt from same address should be blocked")
	}
	if !l.Allow("10.0.0.2") {
		t.Error("other addresses must not be affected")
	}
}

func TestLoginLimiter_Disabled(t *testing.T) {
	l := NewLoginLimiter(1, 1, false)

	for i := 0; i < 10; i++ {
		if !l.Allow("10.0.0.1") {
			t.Fatal("disabled limiter must allow everything")
		}
	}
}

func TestLoginLimiter_HourlyCap(t *testing.T) {
	l := NewLoginLimiter(0, 2, true)

	l.Allow("10.0.0.1")
	l.Allow("10.0.0.1")
	if l.Allow("10.0.0.1") {
		t.Error("3rd attempt should hit the hourly cap")
	}
}

func TestLoginLimiter_Cleanup(t *testing.T) {
	l := NewLoginLimiter(5, 100, true)
	l.Allow("10.0.0.1")

	l.Cleanup()

	l.mu.Lock()
	_, stillTracked := l.windows["10.0.0.1"]
	l.mu.Unlock()
	if !stillTracked {
		t.Error("recent attempts must survive cleanup")
	}
}
