// Package apu bridges the CPU-facing 4-byte mailbox port pair to an
// audio coprocessor. The coprocessor's own CPU/DSP emulation is out of
// scope; this package only implements the port-latching contract
// spec.md §4.7 requires of the bus, plus sample playback wiring so the
// bridge is end-to-end exercisable.
package apu

import (
	"sync"

	"github.com/ebitengine/oto/v3"
	"golang.org/x/sync/singleflight"
)

const (
	sampleRate = 32000
	numPorts   = 4
)

// APU is the CPU-side view of the audio coprocessor: four input ports
// it writes, four output ports it reads, and a catch-up hook the bus
// calls before either side touches a port.
type APU struct {
	mu sync.Mutex

	inPorts  [numPorts]uint8
	outPorts [numPorts]uint8

	lastCatchup uint64

	player   *oto.Player
	ctx      *oto.Context
	sampleSf singleflight.Group

	ring   []byte
	ringMu sync.Mutex
}

// New constructs an idle APU bridge. Playback wiring (AttachPlayback) is
// optional and only attached by the frontend once an oto.Context is
// available.
func New() *APU {
	return &APU{}
}

// AttachPlayback wires the bridge to a live oto context, started by
// cmd/gosnes once the platform audio device is open.
func (a *APU) AttachPlayback(ctx *oto.Context) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.ctx = ctx
	a.player = ctx.NewPlayer(&ringReader{a: a})
	a.player.Play()
}

// WritePort latches a CPU write to one of the four input mailbox
// ports (B-bus 0x40-0x43).
func (a *APU) WritePort(port uint8, v uint8) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if port < numPorts {
		a.inPorts[port] = v
	}
}

// ReadPort reads one of the four output mailbox ports (B-bus
// 0x40-0x43, mirrored through 0x7F).
func (a *APU) ReadPort(port uint8) uint8 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.outPorts[port%numPorts]
}

// CatchUp asks the coprocessor to simulate forward to masterCycle. The
// real SPC700+DSP core is out of scope; CatchUp is the seam a future
// implementation hangs off of, deduplicated with singleflight so
// concurrent B-bus accesses in the same instant only trigger one
// simulation step.
func (a *APU) CatchUp(masterCycle uint64) {
	a.sampleSf.Do("catchup", func() (interface{}, error) {
		a.mu.Lock()
		a.lastCatchup = masterCycle
		a.mu.Unlock()
		return nil, nil
	})
}

// PushSamples appends interleaved 16-bit stereo PCM to the playback
// ring, called by a future DSP mixer; present now so AttachPlayback
// has a real consumer to exercise.
func (a *APU) PushSamples(pcm []byte) {
	a.ringMu.Lock()
	defer a.ringMu.Unlock()
	a.ring = append(a.ring, pcm...)
}

// ringReader adapts the APU's sample ring buffer to io.Reader for
// oto.Player, returning silence when the ring is empty rather than
// blocking the audio callback.
type ringReader struct{ a *APU }

func (r *ringReader) Read(p []byte) (int, error) {
	r.a.ringMu.Lock()
	defer r.a.ringMu.Unlock()
	if len(r.a.ring) == 0 {
		for i := range p {
			p[i] = 0
		}
		return len(p), nil
	}
	n := copy(p, r.a.ring)
	r.a.ring = r.a.ring[n:]
	if n < len(p) {
		for i := n; i < len(p); i++ {
			p[i] = 0
		}
		return len(p), nil
	}
	return n, nil
}
