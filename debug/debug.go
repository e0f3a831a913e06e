// Package debug provides an interactive REPL for inspecting a running
// emulator: breakpoints, single-step, register/memory dump, PPU-state
// dump, and clipboard yank of the last inspected memory range. It
// operates entirely through the Core interface below. Breakpoints can
// be added and cleared, but (R)un does not stop at them.
package debug

import (
	"context"
	"fmt"
	"math"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"golang.design/x/clipboard"
)

// Core is the minimal surface the debugger needs from the wired
// console; bus.Bus satisfies it.
type Core interface {
	Run(ctx context.Context)
	Step() int
	Reset()
	String() string
	Inst() string
	StackAddr() uint16
	ReadByte(bank uint8, offset uint16) uint8
	PPUStatus() string
}

type REPL struct {
	core       Core
	breakpoint map[uint32]struct{}
	lastDump   []string
}

func New(core Core) *REPL {
	return &REPL{core: core, breakpoint: make(map[uint32]struct{})}
}

func (r *REPL) Run(ctx context.Context) {
	sigQuit := make(chan os.Signal, 1)
	signal.Notify(sigQuit, syscall.SIGINT, syscall.SIGTERM)

	for {
		fmt.Printf("%s\n\n", r.core.String())
		fmt.Println("(B)reak - add breakpoint")
		fmt.Println("(C)lear - clear breakpoints")
		fmt.Println("(R)un - run to completion")
		fmt.Println("(S)tep - step one instruction")
		fmt.Println("R(e)set - hit the reset button")
		fmt.Println("(M)emory - display a memory range")
		fmt.Println("S(t)ack - show top-of-stack bytes")
		fmt.Println("(I)nstruction - show instruction at PC")
		fmt.Println("PP(U) - show PPU status")
		fmt.Println("(Y)ank - copy the last memory dump to the clipboard")
		fmt.Println("(Q)uit - shut down")
		fmt.Print("Choice: ")

		var in rune
		fmt.Scanf("%c\n", &in)

		switch in {
		case 'b', 'B':
			r.breakpoint[readAddress("Breakpoint (eg: 008000): ")] = struct{}{}
		case 'c', 'C':
			r.breakpoint = make(map[uint32]struct{})
		case 'q', 'Q':
			return
		case 'r', 'R':
			cctx, cancel := context.WithCancel(ctx)
			go func(ctx context.Context) {
				select {
				case <-sigQuit:
					cancel()
				case <-ctx.Done():
				}
			}(cctx)
			r.core.Run(cctx)
		case 's', 'S':
			r.core.Step()
		case 'e', 'E':
			r.core.Reset()
		case 'i', 'I':
			fmt.Printf("\n%s\n\n", r.core.Inst())
		case 'u', 'U':
			fmt.Println(r.core.PPUStatus())
		case 't', 'T':
			fmt.Println()
			sp := r.core.StackAddr()
			for i := uint16(0); i <= 2; i++ {
				m := sp + i
				fmt.Printf("0x%04x: 0x%02x ", m, r.core.ReadByte(0, m))
				if m == 0x01FF {
					break
				}
			}
			fmt.Printf("\n\n")
		case 'm', 'M':
			r.dumpMemory()
		case 'y', 'Y':
			r.yank()
		}
	}
}

func (r *REPL) dumpMemory() {
	low := readAddress("Low address (eg 008000): ")
	high := readAddress("High address: ")

	var lines []string
	var sb strings.Builder
	x := 0
	for i := low; ; i++ {
		fmt.Fprintf(&sb, "0x%04x: 0x%02x ", i, r.core.ReadByte(uint8(i>>16), uint16(i)))
		x++
		if x%5 == 0 {
			lines = append(lines, sb.String())
			sb.Reset()
		}
		if i == high || i == math.MaxUint32 {
			break
		}
	}
	if sb.Len() > 0 {
		lines = append(lines, sb.String())
	}
	r.lastDump = lines
	fmt.Println(strings.Join(lines, "\n"))
}

// yank copies the last memory dump to the system clipboard using
// golang.design/x/clipboard, initialized lazily since it touches
// platform clipboard APIs that aren't available in headless test runs.
func (r *REPL) yank() {
	if len(r.lastDump) == 0 {
		fmt.Println("nothing to yank; run (M)emory first")
		return
	}
	if err := clipboard.Init(); err != nil {
		fmt.Printf("clipboard unavailable: %v\n", err)
		return
	}
	clipboard.Write(clipboard.FmtText, []byte(strings.Join(r.lastDump, "\n")))
	fmt.Println("copied to clipboard")
}

func readAddress(prompt string) uint32 {
	var a uint32
	fmt.Print(prompt)
	fmt.Scanf("%06x\n", &a)
	return a
}
