package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/bdwalton/gosnes/bus"
	"github.com/bdwalton/gosnes/debug"
	"github.com/bdwalton/gosnes/romformat"
	"github.com/ebitengine/oto/v3"
	"github.com/hajimehoshi/ebiten/v2"
)

var (
	romFile  = flag.String("rom", "", "Path to SNES ROM to run.")
	biosMode = flag.Bool("debug", false, "Drop into the debug REPL instead of the ebiten frontend.")
)

func main() {
	flag.Parse()

	data, err := os.ReadFile(*romFile)
	if err != nil {
		log.Fatalf("Couldn't read ROM: %v", err)
	}

	rom, err := romformat.New(data)
	if err != nil {
		log.Fatalf("Invalid ROM: %v", err)
	}

	console, err := bus.New(rom)
	if err != nil {
		log.Fatalf("Couldn't build console: %v", err)
	}

	if err := attachAudio(console); err != nil {
		log.Printf("audio disabled: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if *biosMode {
		debug.New(console).Run(ctx)
		return
	}

	go func(ctx context.Context) {
		console.Run(ctx)
	}(ctx)

	if err := ebiten.RunGame(console); err != nil {
		log.Fatal(err)
	}
}

// attachAudio opens the platform audio device and wires it to the
// APU bridge, following the oto.NewContext/Player lifecycle used by
// other ebiten-fronted emulators in the example corpus.
func attachAudio(c *bus.Bus) error {
	op := &oto.NewContextOptions{
		SampleRate:   32000,
		ChannelCount: 2,
		Format:       oto.FormatSignedInt16LE,
	}
	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return err
	}
	<-ready
	c.AttachAudio(ctx)
	return nil
}
