package geo

import "testing"

func TestUserErrorFormatsMessage(t *testing.T) {
	err := newUserError("bad value: %d", 42)
	if err.Error() != "bad value: 42" {
		t.Errorf("unexpected error message: %q", err.Error())
	}
	if _, ok := err.(*UserError); !ok {
		t.Errorf("expected newUserError to return a *UserError, got %T", err)
	}
}

func TestNewDocRefMintsDistinctRefs(t *testing.T) {
	a := NewDocRef()
	b := NewDocRef()
	if a.String() == b.String() {
		t.Errorf("expected two freshly minted doc refs to differ")
	}
}
