package registry

import "testing"

func TestRegisterFirstBecomesCurrent(t *testing.T) {
	r := New[int]()
	r.Register("a", 1)
	r.Register("b", 2)

	id, item, err := r.Current()
	if err != nil {
		t.Fatalf("Current() error = %v", err)
	}
	if id != "a" || item != 1 {
		t.Errorf("Current() = %q/%d, want a/1", id, item)
	}
}

func TestSetRejectsUnknown(t *testing.T) {
	r := New[int]()
	r.Register("a", 1)

	if err := r.Set("missing"); err == nil {
		t.Error("Set(missing) should fail")
	}
	if err := r.Set("a"); err != nil {
		t.Errorf("Set(a) error = %v", err)
	}
}

func TestNextCyclesAndWraps(t *testing.T) {
	r := New[string]()
	r.Register("tesseract", "t")
	r.Register("easyocr", "e")
	r.Register("gemini", "g")

	want := []string{"easyocr", "gemini", "tesseract", "easyocr"}
	for i, w := range want {
		got, err := r.Next()
		if err != nil {
			t.Fatalf("Next() error = %v", err)
		}
		if got != w {
			t.Errorf("Next() #%d = %q, want %q", i, got, w)
		}
	}
}

func TestEmptyRegistry(t *testing.T) {
	r := New[int]()

	if _, _, err := r.Current(); err == nil {
		t.Error("Current() on empty registry should fail")
	}
	if _, err := r.Next(); err == nil {
		t.Error("Next() on empty registry should fail")
	}
	if r.CurrentID() != "" {
		t.Errorf("CurrentID() = %q, want empty", r.CurrentID())
	}
}

func TestIDsPreserveOrder(t *testing.T) {
	r := New[int]()
	r.Register("c", 3)
	r.Register("a", 1)
	r.Register("b", 2)

	ids := r.IDs()
	if len(ids) != 3 || ids[0] != "c" || ids[1] != "a" || ids[2] != "b" {
		t.Errorf("IDs() = %v, want [c a b]", ids)
	}
}
