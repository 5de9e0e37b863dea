package typed

import "testing"

func Test_TypedMap_01(t *testing.T) {
	m := NewMap[string, int]()
	if _, ok := m.Get("x"); ok {
		t.Errorf("unexpected hit on empty map")
	}
}

func Test_TypedMap_02(t *testing.T) {
	m := NewMap[string, int]()
	m.Put("x", 1)

	if val, ok := m.Get("x"); !ok || val != 1 {
		t.Errorf("unexpected value: %v (%t)", val, ok)
	}
}

func Test_TypedMap_03(t *testing.T) {
	m := NewMap[string, int]()
	m.Put("x", 1)

	if !m.Has("x") {
		t.Errorf("expected key to be present")
	}

	if m.Has("y") {
		t.Errorf("unexpected key present")
	}
}

func Test_TypedMap_04(t *testing.T) {
	m := NewMap[string, int]()

	if m.Len() != 0 {
		t.Errorf("unexpected length: %d", m.Len())
	}

	m.Put("x", 1)
	m.Put("y", 2)

	if m.Len() != 2 {
		t.Errorf("unexpected length: %d", m.Len())
	}
}

func Test_TypedMap_05(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("expected panic on duplicate key")
		}
	}()

	m := NewMap[string, int]()
	m.Put("x", 1)
	m.Put("x", 2)
}
