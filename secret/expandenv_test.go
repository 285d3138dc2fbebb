package secret

import (
	"strings"
	"testing"
)

func TestExpandEnvStrict(t *testing.T) {
	t.Setenv("TEST_ISSUER", "https://issuer.example.com")
	t.Setenv("TEST_HEADER", "X-API-Key")

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "braced variable", input: "${TEST_ISSUER}/jwks", want: "https://issuer.example.com/jwks"},
		{name: "bare variable", input: "$TEST_HEADER", want: "X-API-Key"},
		{name: "no variables", input: "tg_pat_", want: "tg_pat_"},
		{name: "escaped dollar", input: "$$${TEST_HEADER}", want: "$X-API-Key"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExpandEnvStrict(tt.input)
			if err != nil {
				t.Fatalf("ExpandEnvStrict: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExpandEnvStrictMissingVariable(t *testing.T) {
	t.Setenv("TEST_PRESENT", "ok")

	_, err := ExpandEnvStrict("a=${TEST_PRESENT} b=${TEST_ABSENT_ONE} c=${TEST_ABSENT_TWO}")
	if err == nil {
		t.Fatal("missing variables accepted")
	}
	// Every missing name is reported, sorted.
	if !strings.Contains(err.Error(), "TEST_ABSENT_ONE, TEST_ABSENT_TWO") {
		t.Errorf("error = %v", err)
	}
}
