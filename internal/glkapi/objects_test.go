package glkapi

import "testing"

// fakeRegistrable is a minimal registrable used to exercise Store[T] without
// pulling in the Window/Stream machinery.
type fakeRegistrable struct {
	registryEntry
	name string
}

func (f *fakeRegistrable) entry() *registryEntry { return &f.registryEntry }

func TestStoreRegisterAssignsMonotoneIDs(t *testing.T) {
	s := NewStore[*fakeRegistrable](ClassWindow)
	a := &fakeRegistrable{name: "a"}
	b := &fakeRegistrable{name: "b"}
	c := &fakeRegistrable{name: "c"}

	idA := s.Register(a, 0)
	idB := s.Register(b, 0)
	idC := s.Register(c, 0)

	if idA == idB || idB == idC || idA == idC {
		t.Fatalf("ids not distinct: %d %d %d", idA, idB, idC)
	}
	if idB <= idA || idC <= idB {
		t.Fatalf("ids not monotone increasing: %d %d %d", idA, idB, idC)
	}
	if s.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", s.Len())
	}
}

func TestStoreGetByID(t *testing.T) {
	s := NewStore[*fakeRegistrable](ClassStream)
	a := &fakeRegistrable{name: "a"}
	id := s.Register(a, 42)

	got, ok := s.GetByID(id)
	if !ok || got != a {
		t.Fatalf("GetByID(%d) = %v, %v; want %v, true", id, got, ok, a)
	}
	if got.Rock() != 42 {
		t.Fatalf("Rock() = %d, want 42", got.Rock())
	}

	if _, ok := s.GetByID(id + 1000); ok {
		t.Fatalf("GetByID of unregistered id unexpectedly found an object")
	}
}

// TestStoreIteratePrependOrder exercises Testable Property: glk_*_iterate's
// contract is "most recently registered first" because Register prepends.
func TestStoreIteratePrependOrder(t *testing.T) {
	s := NewStore[*fakeRegistrable](ClassFileref)
	a := &fakeRegistrable{name: "a"}
	b := &fakeRegistrable{name: "b"}
	c := &fakeRegistrable{name: "c"}
	s.Register(a, 0)
	s.Register(b, 0)
	s.Register(c, 0)

	first, ok := s.Iterate(nil, false)
	if !ok || first != c {
		t.Fatalf("first iterate = %v, %v; want c (most recently registered)", first, ok)
	}
	second, ok := s.Iterate(first, true)
	if !ok || second != b {
		t.Fatalf("second iterate = %v, %v; want b", second, ok)
	}
	third, ok := s.Iterate(second, true)
	if !ok || third != a {
		t.Fatalf("third iterate = %v, %v; want a", third, ok)
	}
	_, ok = s.Iterate(third, true)
	if ok {
		t.Fatalf("iterate past the last object unexpectedly returned ok=true")
	}
}

func TestStoreUnregisterSplicesList(t *testing.T) {
	s := NewStore[*fakeRegistrable](ClassSchannel)
	a := &fakeRegistrable{name: "a"}
	b := &fakeRegistrable{name: "b"}
	c := &fakeRegistrable{name: "c"}
	s.Register(a, 0)
	s.Register(b, 0)
	s.Register(c, 0)

	s.Unregister(b)
	if s.Len() != 2 {
		t.Fatalf("Len() after unregister = %d, want 2", s.Len())
	}
	if _, ok := s.GetByID(b.ID()); ok {
		t.Fatalf("GetByID found an unregistered object")
	}

	first, _ := s.Iterate(nil, false)
	second, ok := s.Iterate(first, true)
	if first != c || second != a || !ok {
		t.Fatalf("iteration after unregister skipped the spliced entry: got %v, %v", first, second)
	}
	if _, ok := s.Iterate(second, true); ok {
		t.Fatalf("iterate past the last object after unregister unexpectedly returned ok=true")
	}
}

func TestStoreSetCallbacksInvokesRegisterRetroactively(t *testing.T) {
	s := NewStore[*fakeRegistrable](ClassWindow)
	a := &fakeRegistrable{name: "a"}
	b := &fakeRegistrable{name: "b"}
	s.Register(a, 1)
	s.Register(b, 2)

	var registeredClasses []int
	var unregisteredRocks []DispatchRock
	s.SetCallbacks(
		func(obj any, class int) DispatchRock {
			registeredClasses = append(registeredClasses, class)
			return obj.(*fakeRegistrable).name
		},
		func(obj any, class int, disp DispatchRock) {
			unregisteredRocks = append(unregisteredRocks, disp)
		},
	)

	if len(registeredClasses) != 2 {
		t.Fatalf("SetCallbacks did not retroactively invoke register for existing objects: got %v", registeredClasses)
	}
	for _, c := range registeredClasses {
		if c != ClassWindow {
			t.Fatalf("register callback saw class %d, want %d", c, ClassWindow)
		}
	}

	s.Unregister(a)
	if len(unregisteredRocks) != 1 || unregisteredRocks[0] != "a" {
		t.Fatalf("Unregister did not invoke the unregister callback with a's dispatch rock: got %v", unregisteredRocks)
	}
}
