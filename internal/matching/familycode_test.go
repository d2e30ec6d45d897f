package matching

import "testing"

func TestFamilyCodeKnownValues(t *testing.T) {
	cases := map[int]string{0: "A", 1: "B", 25: "Z", 26: "AA", 27: "AB", 51: "AZ", 52: "BA", 701: "ZZ", 702: "AAA"}
	for rank, want := range cases {
		got, err := EncodeFamilyCode(rank)
		if err != nil {
			t.Fatalf("encode %d: %v", rank, err)
		}
		if got != want {
			t.Fatalf("encode %d: expected %s, got %s", rank, want, got)
		}
	}
}

func TestFamilyCodeRoundTripAndOrder(t *testing.T) {
	prev := ""
	for n := 0; n <= 100000; n++ {
		code, err := EncodeFamilyCode(n)
		if err != nil {
			t.Fatalf("encode %d: %v", n, err)
		}
		back, err := DecodeFamilyCode(code)
		if err != nil {
			t.Fatalf("decode %s: %v", code, err)
		}
		if back != n {
			t.Fatalf("round trip %d -> %s -> %d", n, code, back)
		}
		if prev != "" && CompareFamilyCodes(prev, code) >= 0 {
			t.Fatalf("expected %s < %s", prev, code)
		}
		prev = code
	}
}

func TestFamilyCodeInvalidInput(t *testing.T) {
	if _, err := EncodeFamilyCode(-1); err == nil {
		t.Fatalf("expected error for negative rank")
	}
	for _, code := range []string{"", "a", "A1", "Ñ", "AAAAAAAAAAAAAA", "ZZZZZZZZZZZZZZZZZZZZ"} {
		if _, err := DecodeFamilyCode(code); err == nil {
			t.Fatalf("expected error for %q", code)
		}
	}
}

func TestDecodeFamilyCodeLongestAccepted(t *testing.T) {
	code := "ZZZZZZZZZZZZZ"
	rank, err := DecodeFamilyCode(code)
	if err != nil {
		t.Fatalf("expected %q to decode: %v", code, err)
	}
	back, err := EncodeFamilyCode(rank)
	if err != nil || back != code {
		t.Fatalf("expected round trip to %q, got %q (%v)", code, back, err)
	}
}
