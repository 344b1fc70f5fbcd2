package httpmiddleware

import "testing"

func TestTokenBucketExhausts(t *testing.T) {
	l := NewSimpleTokenBucket(3, 3)
	for i := 0; i < 3; i++ {
		if !l.allow("1.2.3.4") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if l.allow("1.2.3.4") {
		t.Fatal("expected fourth request to be rejected")
	}
}

func TestTokenBucketPerKey(t *testing.T) {
	l := NewSimpleTokenBucket(1, 1)
	if !l.allow("a") {
		t.Fatal("first key should be allowed")
	}
	if !l.allow("b") {
		t.Fatal("second key has its own bucket")
	}
	if l.allow("a") {
		t.Fatal("first key should be exhausted")
	}
}
