package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	keyvibes "github.com/yosxke/Keyvibes"
	"github.com/yosxke/Keyvibes/internal/config"
	"github.com/yosxke/Keyvibes/internal/input"
	"github.com/yosxke/Keyvibes/internal/pack"
)

var (
	soundsDir string
	packName  string
	volume    float64
	driver    string
	verbose   bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "keyvibes",
		Short:        "Keyboard sound engine",
		Long:         "Plays mechanical keyboard sounds for key presses, mixed in real time from WAV sample packs.",
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&soundsDir, "sounds-dir", "", "directory holding sound packs")
	rootCmd.PersistentFlags().StringVarP(&packName, "pack", "p", "", "sound pack to load")
	rootCmd.PersistentFlags().Float64VarP(&volume, "volume", "V", config.DefaultVolume, "master volume 0..1")
	rootCmd.PersistentFlags().StringVar(&driver, "driver", "", "audio driver: ebiten|portaudio")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(packsCmd())
	rootCmd.AddCommand(testCmd())
	rootCmd.AddCommand(renderCmd())
	rootCmd.AddCommand(listenCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger() zerolog.Logger {
	level := zerolog.InfoLevel
	if s := os.Getenv("KEYVIBES_LOG_LEVEL"); s != "" {
		if l, err := zerolog.ParseLevel(s); err == nil {
			level = l
		}
	}
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.Kitchen,
	}).Level(level).With().Timestamp().Logger()
}

// effective merges settings.json, the environment and any flags set on
// the command line. Flags win.
func effective(cmd *cobra.Command) (*config.Resolved, error) {
	r, err := config.Resolve()
	if err != nil {
		return nil, err
	}
	if f := cmd.Flag("sounds-dir"); f != nil && f.Changed {
		r.SoundsDir = soundsDir
	}
	if f := cmd.Flag("pack"); f != nil && f.Changed {
		r.Pack = packName
	}
	if f := cmd.Flag("volume"); f != nil && f.Changed {
		r.Volume = volume
	}
	if f := cmd.Flag("driver"); f != nil && f.Changed {
		r.Driver = driver
	}
	return r, nil
}

// buildEngine wires a mixer and engine from the effective configuration.
// With no pack configured, the first available one is loaded.
func buildEngine(r *config.Resolved, log zerolog.Logger) (*keyvibes.Engine, *keyvibes.Mixer, error) {
	drv, err := keyvibes.ParseDriver(r.Driver)
	if err != nil {
		return nil, nil, err
	}
	m := keyvibes.NewMixer(
		keyvibes.WithVolume(r.Volume),
		keyvibes.WithDriver(drv),
		keyvibes.WithMixerLogger(log),
	)
	store := pack.NewDirStore(r.SoundsDir)
	e := keyvibes.NewEngine(store, m, keyvibes.WithLogger(log))
	e.SetEnabled(r.Enabled)

	name := r.Pack
	if name == "" {
		names, err := store.Packs()
		if err != nil {
			return nil, nil, err
		}
		if len(names) == 0 {
			return nil, nil, fmt.Errorf("no sound packs under %s", r.SoundsDir)
		}
		name = names[0]
	}
	if err := e.LoadPack(name); err != nil {
		return nil, nil, err
	}
	return e, m, nil
}

func packsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "packs",
		Short: "List available sound packs",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := effective(cmd)
			if err != nil {
				return err
			}
			store := pack.NewDirStore(r.SoundsDir)
			names, err := store.Packs()
			if err != nil {
				return err
			}
			if len(names) == 0 {
				fmt.Printf("no packs under %s\n", r.SoundsDir)
				return nil
			}
			for _, name := range names {
				marker := ""
				if name == r.Pack {
					marker = " (active)"
				}
				fmt.Printf("  %s%s\n", name, marker)
			}
			return nil
		},
	}
}

func testCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "test [category]",
		Short: "Play test sounds through the audio device",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := newLogger()
			r, err := effective(cmd)
			if err != nil {
				return err
			}
			e, m, err := buildEngine(r, log)
			if err != nil {
				return err
			}

			cats := keyvibes.Categories()
			if len(args) == 1 {
				c, ok := keyvibes.ParseCategory(args[0])
				if !ok {
					return fmt.Errorf("unknown category %q", args[0])
				}
				cats = []keyvibes.Category{c}
			}

			if err := m.Start(); err != nil {
				return err
			}
			defer m.Stop()

			fmt.Printf("pack %s at volume %.2f\n", e.Pack(), m.Volume())
			for _, c := range cats {
				fmt.Printf("  %s\n", c)
				e.Trigger(c)
				time.Sleep(450 * time.Millisecond)
			}
			for m.Voices() > 0 {
				time.Sleep(50 * time.Millisecond)
			}
			time.Sleep(150 * time.Millisecond)
			return nil
		},
	}
}

func renderCmd() *cobra.Command {
	var (
		category string
		out      string
		count    int
	)
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render test presses to a WAV file without an audio device",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := newLogger()
			r, err := effective(cmd)
			if err != nil {
				return err
			}
			e, m, err := buildEngine(r, log)
			if err != nil {
				return err
			}

			c, ok := keyvibes.ParseCategory(category)
			if !ok {
				return fmt.Errorf("unknown category %q", category)
			}
			if count < 1 {
				count = 1
			}

			// Space the presses roughly 230ms apart, then drain the tail.
			const frameCount = 512
			const gapBlocks = 20
			block := make([]float32, frameCount*keyvibes.Channels)
			var samples []float32
			for i := 0; i < count; i++ {
				e.Trigger(c)
				for b := 0; b < gapBlocks; b++ {
					m.Process(block)
					samples = append(samples, block...)
				}
			}
			samples = append(samples, keyvibes.RenderBlocks(m, frameCount, 4096)...)

			f, err := os.Create(out)
			if err != nil {
				return err
			}
			if err := keyvibes.WriteWAV(f, samples); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}

			frames := len(samples) / keyvibes.Channels
			dur := time.Duration(frames) * time.Second / keyvibes.SampleRate
			fmt.Printf("wrote %s (%d frames, %s)\n", out, frames, dur.Round(time.Millisecond))
			return nil
		},
	}
	cmd.Flags().StringVarP(&category, "category", "c", "normal", "category to trigger")
	cmd.Flags().StringVarP(&out, "out", "o", "keyvibes.wav", "output WAV path")
	cmd.Flags().IntVarP(&count, "count", "n", 3, "number of presses to render")
	return cmd
}

func listenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "listen",
		Short: "Play sounds for live key presses until Ctrl-C",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := newLogger()
			r, err := effective(cmd)
			if err != nil {
				return err
			}
			e, m, err := buildEngine(r, log)
			if err != nil {
				return err
			}

			if err := m.Start(); err != nil {
				return err
			}
			defer m.Stop()

			reader := input.NewReader()
			if err := reader.Start(); err != nil {
				return err
			}
			defer reader.Stop()

			fmt.Printf("listening with pack %s, Ctrl-C to quit\r\n", e.Pack())
			for key := range reader.Keys() {
				e.TriggerKey(key)
			}
			fmt.Print("\r\n")

			vol := m.Volume()
			enabled := e.Enabled()
			return config.Save(&config.Settings{
				Pack:      e.Pack(),
				Volume:    &vol,
				Enabled:   &enabled,
				SoundsDir: r.SoundsDir,
				Driver:    r.Driver,
			})
		},
	}
}
