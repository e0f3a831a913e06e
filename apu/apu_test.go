package apu

import "testing"

func TestInputAndOutputPortsAreIndependent(t *testing.T) {
	a := New()
	a.WritePort(0, 0xAB)

	// Input and output ports are independent mailboxes; a write to an
	// input port is not visible on the matching output port without a
	// coprocessor step driving it there.
	if got := a.ReadPort(0); got != 0 {
		t.Errorf("ReadPort(0) = %#02x before any coprocessor step, wanted 0", got)
	}

	a.outPorts[0] = 0xAB
	if got := a.ReadPort(0); got != 0xAB {
		t.Errorf("ReadPort(0) = %#02x, wanted 0xab", got)
	}
}

func TestReadPortWrapsAtFour(t *testing.T) {
	a := New()
	a.outPorts[1] = 0x55
	if got := a.ReadPort(5); got != 0x55 {
		t.Errorf("ReadPort(5) = %#02x, wanted port 1's value 0x55 (mirrored)", got)
	}
}

func TestRingReaderFillsSilenceWhenEmpty(t *testing.T) {
	a := New()
	buf := make([]byte, 8)
	r := &ringReader{a: a}

	n, err := r.Read(buf)
	if err != nil {
		t.Fatalf("Read returned error: %v", err)
	}
	if n != len(buf) {
		t.Fatalf("n = %d, wanted %d", n, len(buf))
	}
	for _, b := range buf {
		if b != 0 {
			t.Errorf("expected silence, got byte %#02x", b)
		}
	}
}

func TestRingReaderDrainsPushedSamples(t *testing.T) {
	a := New()
	a.PushSamples([]byte{1, 2, 3, 4})
	r := &ringReader{a: a}

	buf := make([]byte, 4)
	n, _ := r.Read(buf)
	if n != 4 {
		t.Fatalf("n = %d, wanted 4", n)
	}
	for i, want := range []byte{1, 2, 3, 4} {
		if buf[i] != want {
			t.Errorf("buf[%d] = %d, wanted %d", i, buf[i], want)
		}
	}
}
