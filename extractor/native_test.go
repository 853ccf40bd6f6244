package extractor

import "testing"

func TestIsEncryptedErr(t *testing.T) {
	cases := []struct {
		msg  string
		want bool
	}{
		{"pdf: encrypted document", true},
		{"PDF IS ENCRYPTED", true},
		{"unexpected eof", false},
		{"malformed xref table", false},
	}
	for _, c := range cases {
		got := isEncryptedErr(errString(c.msg))
		if got != c.want {
			t.Errorf("isEncryptedErr(%q) = %v, want %v", c.msg, got, c.want)
		}
	}
}

type errString string

func (e errString) Error() string { return string(e) }

func TestDefaultMediaBoxIsLetter(t *testing.T) {
	if defaultMediaBox[2] != 612 || defaultMediaBox[3] != 792 {
		t.Fatalf("expected US Letter fallback, got %v", defaultMediaBox)
	}
}

func TestNoopRenderer(t *testing.T) {
	r := NoopRenderer{}
	png, w, h, err := r.RenderPage(nil, 1, 300)
	if png != nil || w != 0 || h != 0 || err != nil {
		t.Fatalf("NoopRenderer should be a pure no-op, got %v %v %v %v", png, w, h, err)
	}
}
