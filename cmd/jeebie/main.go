package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli"
	"github.com/valerio/go-jeebie-cgb/jeebie"
	"github.com/valerio/go-jeebie-cgb/jeebie/cartridge"
	"github.com/valerio/go-jeebie-cgb/jeebie/render"
	"github.com/valerio/go-jeebie-cgb/jeebie/timing"
)

func main() {
	app := cli.NewApp()
	app.Name = "Jeebie"
	app.Description = "A cycle stepped Game Boy and Game Boy Color emulator"
	app.Usage = "jeebie [options] <ROM file>"
	app.Version = "2.0.0"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "rom",
			Usage: "Path to the ROM file",
		},
		cli.StringFlag{
			Name:  "boot-rom",
			Usage: "Path to a boot ROM image (256 or 2304 bytes)",
		},
		cli.StringFlag{
			Name:  "mode",
			Usage: "Hardware mode: auto picks color for color cartridges, dmg forces monochrome",
			Value: "auto",
		},
		cli.IntFlag{
			Name:  "frames",
			Usage: "Number of frames to run in headless mode",
			Value: 60,
		},
		cli.StringFlag{
			Name:  "snapshot",
			Usage: "Write the last frame to this file (.png, or .txt for half-block text)",
		},
		cli.IntFlag{
			Name:  "scale",
			Usage: "Integer scale factor for PNG snapshots",
			Value: 1,
		},
		cli.BoolFlag{
			Name:  "terminal",
			Usage: "Show the emulator in the terminal instead of running headless",
		},
		cli.BoolFlag{
			Name:  "test-pattern",
			Usage: "Display a test pattern in the terminal instead of emulation",
		},
		cli.BoolFlag{
			Name:  "no-serial-log",
			Usage: "Do not log serial port output",
		},
		cli.BoolFlag{
			Name:  "debug",
			Usage: "Enable debug logging and the terminal debug panel",
		},
	}
	app.Action = runEmulator

	err := app.Run(os.Args)
	if err != nil {
		slog.Error("Error running emulator", "error", err)
		os.Exit(1)
	}
}

func setupLogging(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}

func runEmulator(c *cli.Context) error {
	setupLogging(c.Bool("debug"))

	var terminalOpts []render.TerminalOption
	if c.Bool("debug") {
		terminalOpts = append(terminalOpts, render.WithDebugPanel())
	}
	if path := c.String("snapshot"); path != "" {
		terminalOpts = append(terminalOpts, render.WithSnapshotDir(filepath.Dir(path)))
	}

	// Test pattern mode - no ROM needed
	if c.Bool("test-pattern") {
		slog.Info("Running in test pattern mode")
		renderer, err := render.NewTerminalRenderer(render.NewTestPattern(render.Checkerboard), terminalOpts...)
		if err != nil {
			return err
		}
		return renderer.Run()
	}

	romPath := c.String("rom")
	if romPath == "" {
		if c.NArg() == 0 {
			cli.ShowAppHelp(c)
			return errors.New("no ROM path provided")
		}
		romPath = c.Args().Get(0)
	}

	emu, err := newEmulator(c, romPath)
	if err != nil {
		return err
	}

	if c.Bool("terminal") {
		renderer, err := render.NewTerminalRenderer(emu, append(terminalOpts, render.WithLimiter(timing.NewAdaptiveLimiter()))...)
		if err != nil {
			return err
		}
		return renderer.Run()
	}

	return runHeadless(c, emu)
}

func newEmulator(c *cli.Context, romPath string) (*jeebie.Emulator, error) {
	mode, err := jeebie.ParseModeSelect(c.String("mode"))
	if err != nil {
		return nil, err
	}
	opts := []jeebie.Option{
		jeebie.WithMode(mode),
		jeebie.WithSerialLog(!c.Bool("no-serial-log")),
	}

	bootPath := c.String("boot-rom")
	if bootPath == "" {
		return jeebie.NewWithFile(romPath, opts...)
	}

	boot, err := os.ReadFile(bootPath)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(romPath)
	if err != nil {
		return nil, err
	}
	cart, err := cartridge.New(data)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", romPath, err)
	}

	emu := jeebie.New(opts...)
	if err := emu.LoadBootROM(boot); err != nil {
		return nil, err
	}
	emu.LoadCartridge(cart)
	return emu, nil
}

// runHeadless runs a fixed number of frames, then prints the frame digest
// and optionally writes a snapshot.
func runHeadless(c *cli.Context, emu *jeebie.Emulator) error {
	frames := c.Int("frames")
	if frames <= 0 {
		return errors.New("headless mode requires --frames with a positive value")
	}

	slog.Info("Running headless mode", "frames", frames, "mode", emu.Mode())
	if err := emu.RunFrames(frames); err != nil {
		return err
	}

	digest := render.Digest(emu.Frame())
	slog.Info("Headless execution completed", "frames", frames, "cycles", emu.Cycles(), "digest", digest)
	fmt.Println(digest)

	path := c.String("snapshot")
	if path == "" {
		return nil
	}
	if strings.EqualFold(filepath.Ext(path), ".txt") {
		return saveTextSnapshot(path, emu)
	}
	return render.SavePNG(path, emu.Frame(), c.Int("scale"))
}

// saveTextSnapshot saves the current frame as half-block text.
func saveTextSnapshot(path string, emu *jeebie.Emulator) error {
	var b strings.Builder
	fmt.Fprintf(&b, "# Frame: %d, Cycles: %d\n", emu.Frames(), emu.Cycles())
	fmt.Fprintf(&b, "# Resolution: 160x144 pixels, two rows per line\n")
	for _, line := range render.RenderFrameToHalfBlocks(emu.Frame()) {
		b.WriteString(line)
		b.WriteByte('\n')
	}

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return err
	}
	slog.Info("Saved frame snapshot", "path", path)
	return nil
}
