package rdapclient

import "testing"

func sampleVCardArray() []any {
	return []any{
		"vcard",
		[]any{
			[]any{"version", map[string]any{}, "text", "4.0"},
			[]any{"fn", map[string]any{}, "text", "Joe Registrant"},
			[]any{"org", map[string]any{}, "text", []any{"Example Org", "Registry Ops"}},
			[]any{"email", map[string]any{"type": "work"}, "text", "abuse@example.com"},
			[]any{"tel", map[string]any{"type": []any{"work", "voice"}}, "uri", "tel:+1-555-0100"},
			[]any{"role", map[string]any{}, "text", "Abuse Contact"},
			[]any{"adr", map[string]any{}, "text", []any{"", "", "123 Main St", "Anytown", "CA", "90210", "US"}},
		},
	}
}

func TestParseVCard_Accessors(t *testing.T) {
	vc, err := ParseVCard(sampleVCardArray())
	if err != nil {
		t.Fatalf("ParseVCard err: %v", err)
	}
	if got := vc.FN(); got != "Joe Registrant" {
		t.Fatalf("FN: got %q", got)
	}
	if got := vc.Org(); got != "Example Org" {
		t.Fatalf("Org: got %q", got)
	}
	if got := vc.Email(); got != "abuse@example.com" {
		t.Fatalf("Email: got %q", got)
	}
	if got := vc.Tel(); got != "tel:+1-555-0100" {
		t.Fatalf("Tel: got %q", got)
	}
	if got := vc.Role(); got != "Abuse Contact" {
		t.Fatalf("Role: got %q", got)
	}
	adr := vc.Adr()
	if adr.Street != "123 Main St" || adr.Locality != "Anytown" || adr.Country != "US" {
		t.Fatalf("Adr mismatch: %+v", adr)
	}
	if adr.POBox != "" || adr.Extended != "" {
		t.Fatalf("expected empty POBox/Extended, got %+v", adr)
	}
}

func TestParseVCard_RoleFallsBackToTitle(t *testing.T) {
	raw := []any{
		"vcard",
		[]any{
			[]any{"title", map[string]any{}, "text", "Registrar"},
		},
	}
	vc, err := ParseVCard(raw)
	if err != nil {
		t.Fatalf("ParseVCard err: %v", err)
	}
	if got := vc.Role(); got != "Registrar" {
		t.Fatalf("expected role to fall back to title, got %q", got)
	}
}

func TestParseVCard_AdrAbsentReturnsZeroValueNotNil(t *testing.T) {
	vc, err := ParseVCard([]any{"vcard", []any{}})
	if err != nil {
		t.Fatalf("ParseVCard err: %v", err)
	}
	adr := vc.Adr()
	if adr != (VCardAddress{}) {
		t.Fatalf("expected zero-value VCardAddress, got %+v", adr)
	}
}

func TestParseVCard_MalformedShapes(t *testing.T) {
	if _, err := ParseVCard("not-an-array"); err == nil {
		t.Fatalf("expected error for non-array input")
	}
	if _, err := ParseVCard([]any{"vcard"}); err == nil {
		t.Fatalf("expected error for wrong-length array")
	}
	if _, err := ParseVCard([]any{"vcal", []any{}}); err == nil {
		t.Fatalf("expected error for missing vcard header")
	}
}

func TestParseVCard_SkipsMalformedPropertyTuples(t *testing.T) {
	raw := []any{
		"vcard",
		[]any{
			[]any{"fn"}, // too short, should be skipped
			[]any{"email", map[string]any{}, "text", "ok@example.com"},
		},
	}
	vc, err := ParseVCard(raw)
	if err != nil {
		t.Fatalf("ParseVCard err: %v", err)
	}
	if len(vc.Properties) != 1 {
		t.Fatalf("expected malformed tuple to be skipped, got %d properties", len(vc.Properties))
	}
	if vc.Email() != "ok@example.com" {
		t.Fatalf("expected surviving property to parse, got %q", vc.Email())
	}
}
