package access

import "testing"

func testGate() *Gate {
	return NewGate(map[string]string{
		"ALLIANCE":   "12345",
		"ARLINGTON":  "23456",
		"FORT WORTH": "34567",
		"IRVING":     "45678",
		"KENTUCKY":   "56789",
	})
}

func TestValidate(t *testing.T) {
	g := testGate()
	cases := []struct {
		region string
		code   string
		want   Decision
	}{
		{"IRVING", "45678", Granted},
		{"IRVING", " 45678 ", Granted}, // entered code is trimmed
		{"IRVING", "00000", Denied},
		{"IRVING", "", Denied},
		{"ATLANTA", "anything", Unconfigured},
		{"", "12345", Unconfigured},
	}
	for _, c := range cases {
		if got := g.Validate(c.region, c.code); got != c.want {
			t.Errorf("Validate(%q, %q) = %s, want %s", c.region, c.code, got, c.want)
		}
	}
}

func TestValidate_CaseSensitiveCode(t *testing.T) {
	g := NewGate(map[string]string{"IRVING": "AbCdE"})
	if got := g.Validate("IRVING", "abcde"); got != Denied {
		t.Errorf("lowercased code = %s, want denied", got)
	}
	if got := g.Validate("IRVING", "AbCdE"); got != Granted {
		t.Errorf("exact code = %s, want granted", got)
	}
}

func TestNewGate_CopiesTable(t *testing.T) {
	codes := map[string]string{"IRVING": "45678"}
	g := NewGate(codes)
	codes["IRVING"] = "hacked"
	if got := g.Validate("IRVING", "45678"); got != Granted {
		t.Errorf("gate affected by caller mutation: %s", got)
	}
}
