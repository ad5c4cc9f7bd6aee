package prompt

import "testing"

func TestFromEnv(t *testing.T) {
	t.Setenv(UserPasswordEnv, "from-env")

	got := FromEnv(UserPasswordEnv)
	if string(got) != "from-env" {
		t.Errorf("FromEnv: got %q, want %q", got, "from-env")
	}

	// The copy must be independent of later reads.
	got[0] = 'X'
	if again := FromEnv(UserPasswordEnv); string(again) != "from-env" {
		t.Errorf("FromEnv must return a fresh copy, got %q", again)
	}
}

func TestFromEnvUnset(t *testing.T) {
	t.Setenv(AdminPasswordEnv, "")
	if got := FromEnv(AdminPasswordEnv); got != nil {
		t.Errorf("Unset variable should yield nil, got %q", got)
	}
}
