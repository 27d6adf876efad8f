package security

import (
	"testing"
	"time"

	"github.com/allahbobax/boolean-api/internal/core/domain"
)

func newTestStateSigner(t *testing.T, now time.Time) *StateSigner {
	t.Helper()

	signer, err := NewStateSigner("state-secret")
	if err != nil {
		t.Fatalf("NewStateSigner returned error: %v", err)
	}
	return signer.WithClock(func() time.Time { return now })
}

func TestStateSignerRoundTrip(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	signer := newTestStateSigner(t, now)

	token, err := signer.Encode(domain.StatePayload{Source: "launcher", HWID: "HW-123"})
	if err != nil {
		t.Fatalf("Encode returned error: %v", err)
	}

	payload := signer.Decode(token)
	if payload.Source != "launcher" {
		t.Errorf("expected source launcher, got %q", payload.Source)
	}
	if payload.HWID != "HW-123" {
		t.Errorf("expected hwid HW-123, got %q", payload.HWID)
	}
}

func TestStateSignerRejectsTampering(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	signer := newTestStateSigner(t, now)

	token, err := signer.Encode(domain.StatePayload{Source: "web"})
	if err != nil {
		t.Fatalf("Encode returned error: %v", err)
	}

	tampered := "A" + token[1:]
	if payload := signer.Decode(tampered); !payload.Empty() {
		t.Fatalf("expected empty payload for tampered token, got %+v", payload)
	}
}

func TestStateSignerRejectsForeignSecret(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	signer := newTestStateSigner(t, now)

	other, err := NewStateSigner("other-secret")
	if err != nil {
		t.Fatalf("NewStateSigner returned error: %v", err)
	}
	token, err := other.WithClock(func() time.Time { return now }).Encode(domain.StatePayload{Source: "web"})
	if err != nil {
		t.Fatalf("Encode returned error: %v", err)
	}

	if payload := signer.Decode(token); !payload.Empty() {
		t.Fatalf("expected empty payload for token signed with foreign secret, got %+v", payload)
	}
}

func TestStateSignerRejectsStaleToken(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	signer := newTestStateSigner(t, now)

	token, err := signer.Encode(domain.StatePayload{Source: "web"})
	if err != nil {
		t.Fatalf("Encode returned error: %v", err)
	}

	signer.WithClock(func() time.Time { return now.Add(11 * time.Minute) })
	if payload := signer.Decode(token); !payload.Empty() {
		t.Fatalf("expected empty payload for stale token, got %+v", payload)
	}
}

func TestStateSignerLegacyLiterals(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	signer := newTestStateSigner(t, now)

	if payload := signer.Decode("launcher"); payload.Source != "launcher" || payload.HWID != "" {
		t.Errorf("launcher literal: got %+v", payload)
	}
	if payload := signer.Decode("web"); payload.Source != "web" || payload.HWID != "" {
		t.Errorf("web literal: got %+v", payload)
	}
	if payload := signer.Decode(""); !payload.Empty() {
		t.Errorf("empty token: expected empty payload, got %+v", payload)
	}
}
