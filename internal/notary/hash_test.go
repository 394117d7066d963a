package notary

import "testing"

func TestHashContent_Deterministic(t *testing.T) {
	payload := map[string]string{
		"bookingId": "b1",
		"action":    "confirm",
		"status":    "CONFIRMED",
	}

	first, err := HashContent(payload)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	second, err := HashContent(payload)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if first != second {
		t.Fatalf("hash not stable: %s vs %s", first, second)
	}
	if len(first) != 64 {
		t.Fatalf("hash length = %d, want 64 hex chars", len(first))
	}
}

func TestHashContent_KeyOrderIrrelevant(t *testing.T) {
	type a struct {
		BookingID string `json:"bookingId"`
		Action    string `json:"action"`
	}
	type b struct {
		Action    string `json:"action"`
		BookingID string `json:"bookingId"`
	}

	ha, err := HashContent(a{BookingID: "b1", Action: "confirm"})
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	hb, err := HashContent(b{Action: "confirm", BookingID: "b1"})
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if ha != hb {
		t.Fatalf("field order changed the hash: %s vs %s", ha, hb)
	}
}

func TestHashContent_SensitiveToValues(t *testing.T) {
	ha, err := HashContent(map[string]string{"action": "confirm"})
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	hb, err := HashContent(map[string]string{"action": "reject"})
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if ha == hb {
		t.Fatal("different decisions produced the same hash")
	}
}
