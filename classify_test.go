package rdapclient

import "testing"

func TestClassify_Autnum(t *testing.T) {
	tlds := BuiltinTLDSet()
	cases := []struct{ in, want string }{
		{"AS64512", "64512"},
		{"as64512", "64512"},
		{"64512", "64512"},
	}
	for _, tc := range cases {
		qt, normalized := Classify(tc.in, tlds)
		if qt != QueryAutnum {
			t.Fatalf("Classify(%q) type = %v, want QueryAutnum", tc.in, qt)
		}
		if normalized != tc.want {
			t.Fatalf("Classify(%q) normalized = %q, want %q", tc.in, normalized, tc.want)
		}
	}
}

func TestClassify_IPAndCIDR(t *testing.T) {
	tlds := BuiltinTLDSet()
	if qt, _ := Classify("192.0.2.1", tlds); qt != QueryIP {
		t.Fatalf("expected QueryIP, got %v", qt)
	}
	if qt, _ := Classify("2001:db8::1", tlds); qt != QueryIP {
		t.Fatalf("expected QueryIP, got %v", qt)
	}
	if qt, _ := Classify("192.0.2.0/24", tlds); qt != QueryCIDR {
		t.Fatalf("expected QueryCIDR, got %v", qt)
	}
}

func TestClassify_TldRequiresKnownLabel(t *testing.T) {
	tlds := NewTLDSet("example\ncom\n")
	if qt, normalized := Classify("COM", tlds); qt != QueryTld || normalized != "com" {
		t.Fatalf("Classify(COM) = (%v, %q), want (QueryTld, \"com\")", qt, normalized)
	}
	// "xyz" is LDH and dotless but not in the known set, so it falls
	// through to the entity default rather than being treated as a TLD.
	if qt, _ := Classify("xyz", tlds); qt != QueryEntity {
		t.Fatalf("expected unknown bare label to default to QueryEntity, got %v", qt)
	}
}

func TestClassify_Domain(t *testing.T) {
	tlds := BuiltinTLDSet()
	qt, normalized := Classify("Example.COM", tlds)
	if qt != QueryDomain {
		t.Fatalf("expected QueryDomain, got %v", qt)
	}
	if normalized != "example.com" {
		t.Fatalf("expected lower-cased domain, got %q", normalized)
	}
}

func TestClassify_DefaultsToEntity(t *testing.T) {
	tlds := BuiltinTLDSet()
	qt, normalized := Classify("ACME-123-REGISTRANT", tlds)
	if qt != QueryEntity {
		t.Fatalf("expected QueryEntity default, got %v", qt)
	}
	if normalized != "ACME-123-REGISTRANT" {
		t.Fatalf("expected entity handle to pass through unchanged, got %q", normalized)
	}
}

func TestClassify_AutnumTakesPrecedenceOverTldLikeLabel(t *testing.T) {
	// "AS64512" also happens to be dotless and LDH, but the autnum
	// rule must win per the classifier's stated precedence order.
	tlds := NewTLDSet("as64512\n")
	qt, _ := Classify("AS64512", tlds)
	if qt != QueryAutnum {
		t.Fatalf("expected autnum to take precedence over a TLD-shaped label, got %v", qt)
	}
}
