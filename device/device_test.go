package device

import (
	"errors"
	"testing"
)

func TestDispatchCoversEveryInvocation(t *testing.T) {
	for _, n := range []int{0, 1, 63, 64, 1000, 4097} {
		d := New(Options{Workers: 4})
		buf := NewBuffer[int](d, "out", n)
		out := buf.Storage()

		if err := d.Dispatch(n, func(i int) { out[i] = i + 1 }); err != nil {
			t.Fatalf("n=%d: dispatch: %v", n, err)
		}
		d.Barrier()

		m, err := buf.Map(MapRead)
		if err != nil {
			t.Fatalf("n=%d: map: %v", n, err)
		}
		for i, v := range m.Data() {
			if v != i+1 {
				t.Errorf("n=%d: invocation %d wrote %d", n, i, v)
				break
			}
		}
		m.Release()
		d.Close()
	}
}

func TestChunkSizeOption(t *testing.T) {
	d := New(Options{Workers: 3, ChunkSize: 7})
	defer d.Close()

	const n = 500
	c := NewCounters(d, "hits", 1)
	d.Dispatch(n, func(i int) { c.Add(0, 1) })
	d.Barrier()

	if got := c.Load(0); got != n {
		t.Errorf("expected %d hits, got %d", n, got)
	}
}

func TestCountersAddReturnsPreviousValue(t *testing.T) {
	d := New(Options{Workers: 8})
	defer d.Close()

	const n = 2048
	c := NewCounters(d, "cursor", 1)
	seen := NewBuffer[uint32](d, "seen", n)
	s := seen.Storage()

	d.Dispatch(n, func(i int) {
		s[i] = c.Add(0, 1)
	})
	d.Barrier()

	// Every ticket 0..n-1 must be handed out exactly once.
	hits := make([]int, n)
	for _, v := range s {
		if int(v) >= n {
			t.Fatalf("ticket %d out of range", v)
		}
		hits[v]++
	}
	for i, h := range hits {
		if h != 1 {
			t.Errorf("ticket %d handed out %d times", i, h)
		}
	}
}

func TestMapIsExclusiveAndReleaseIdempotent(t *testing.T) {
	d := New(Options{Workers: 1})
	defer d.Close()
	buf := NewBuffer[float64](d, "agents", 4)

	m, err := buf.Map(MapReadWrite)
	if err != nil {
		t.Fatalf("map: %v", err)
	}
	if _, err := buf.Map(MapRead); !errors.Is(err, ErrAlreadyMapped) {
		t.Errorf("expected ErrAlreadyMapped, got %v", err)
	}

	m.Data()[2] = 3.5
	if err := m.Release(); err != nil {
		t.Fatalf("release: %v", err)
	}
	if err := m.Release(); err != nil {
		t.Errorf("second release should be a no-op, got %v", err)
	}
	if m.Data() != nil {
		t.Error("expected nil data after release")
	}

	m2, err := buf.Map(MapRead)
	if err != nil {
		t.Fatalf("remap: %v", err)
	}
	defer m2.Release()
	if m2.Data()[2] != 3.5 {
		t.Errorf("expected host write to persist, got %v", m2.Data()[2])
	}
}

func TestFaultInjection(t *testing.T) {
	d := New(Options{Workers: 1, Faults: FailTimes(OpMap, "counts", 1)})
	defer d.Close()
	buf := NewBuffer[uint32](d, "counts", 4)

	if _, err := buf.Map(MapRead); !errors.Is(err, ErrMapFailed) {
		t.Fatalf("expected ErrMapFailed, got %v", err)
	}
	if buf.mapped {
		t.Error("failed map must not leave the buffer mapped")
	}

	m, err := buf.Map(MapRead)
	if err != nil {
		t.Fatalf("second map should succeed: %v", err)
	}
	m.Release()
}

func TestUnmapFaultStillReleases(t *testing.T) {
	d := New(Options{Workers: 1, Faults: FailOn(OpUnmap, "agents")})
	defer d.Close()
	buf := NewBuffer[int](d, "agents", 2)

	m, err := buf.Map(MapRead)
	if err != nil {
		t.Fatalf("map: %v", err)
	}
	if err := m.Release(); !errors.Is(err, ErrUnmapFailed) {
		t.Errorf("expected ErrUnmapFailed, got %v", err)
	}
	if buf.mapped {
		t.Error("buffer should be unmapped after a failed release")
	}
}

func TestWriteAndCopy(t *testing.T) {
	d := New(Options{Workers: 2})
	defer d.Close()

	src := NewBuffer[int](d, "scratch", 3)
	dst := NewBuffer[int](d, "agents", 3)

	if err := src.Write([]int{1, 2}); !errors.Is(err, ErrSizeMismatch) {
		t.Errorf("expected ErrSizeMismatch, got %v", err)
	}
	if err := src.Write([]int{4, 5, 6}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := dst.CopyFrom(src); err != nil {
		t.Fatalf("copy: %v", err)
	}
	for i, want := range []int{4, 5, 6} {
		if dst.Storage()[i] != want {
			t.Errorf("dst[%d] = %d, want %d", i, dst.Storage()[i], want)
		}
	}

	if err := dst.Fill(9); err != nil {
		t.Fatalf("fill: %v", err)
	}
	if dst.Storage()[1] != 9 {
		t.Errorf("expected fill to set 9, got %d", dst.Storage()[1])
	}
}

func TestDispatchAfterClose(t *testing.T) {
	d := New(Options{Workers: 2})
	d.Close()
	d.Close()

	if err := d.Dispatch(10, func(int) {}); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}
}

func TestStats(t *testing.T) {
	d := New(Options{Workers: 2})
	defer d.Close()

	d.Dispatch(100, func(int) {})
	d.Dispatch(10, func(int) {})
	d.Barrier()

	s := d.Stats()
	if s.Launches != 2 {
		t.Errorf("expected 2 launches, got %d", s.Launches)
	}
	if s.Invocations != 110 {
		t.Errorf("expected 110 invocations, got %d", s.Invocations)
	}
	if s.Barriers == 0 {
		t.Error("expected barrier to be counted")
	}
}
