package upstream

import (
	"net/http"
	"testing"
	"time"
)

func TestSignature(t *testing.T) {
	// Fixed vector: HMAC-SHA256("secret", "1700000000").
	got := Signature("secret", "1700000000")
	want := "4b227f8831b3763d066901751ad4c583ed08832bf1924a4ec50c2e871b1e8586"

	if got != want {
		t.Errorf("Signature() = %s, want %s", got, want)
	}
}

func TestSignatureDeterministic(t *testing.T) {
	a := Signature("shared-secret", "1725000000")
	b := Signature("shared-secret", "1725000000")

	if a != b {
		t.Errorf("same inputs must sign identically: %s != %s", a, b)
	}

	if Signature("other-secret", "1725000000") == a {
		t.Error("different secrets must not collide")
	}
	if Signature("shared-secret", "1725000001") == a {
		t.Error("different timestamps must not collide")
	}
}

func TestSignRequest(t *testing.T) {
	req, err := http.NewRequest(http.MethodPost, "https://otp.example/send", nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}

	now := time.Unix(1700000000, 0)
	SignRequest(req, "secret", now)

	if got := req.Header.Get(HeaderAPITimestamp); got != "1700000000" {
		t.Errorf("timestamp header = %q, want 1700000000", got)
	}

	wantHash := Signature("secret", "1700000000")
	if got := req.Header.Get(HeaderAPIHash); got != wantHash {
		t.Errorf("hash header = %q, want %q", got, wantHash)
	}
}
