package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/alecthomas/kong"

	"github.com/RyanBlaney/sonido-pulido/config"
	"github.com/RyanBlaney/sonido-pulido/logging"
	"github.com/RyanBlaney/sonido-pulido/pcm"
	"github.com/RyanBlaney/sonido-pulido/pipeline"
	"github.com/RyanBlaney/sonido-pulido/synth"
	"github.com/RyanBlaney/sonido-pulido/transcode"
)

var (
	version = "0.1.0"
)

// CLI defines the command-line interface
type CLI struct {
	Version  bool    `short:"v" help:"Show version information"`
	Config   string  `short:"c" type:"existingfile" help:"Path to YAML pipeline config (optional)"`
	Input    string  `short:"i" type:"existingfile" help:"Polish an existing WAV instead of rendering the demo pattern"`
	Genre    string  `short:"g" help:"Genre used for mastering style and tempo"`
	Tempo    float64 `short:"t" help:"Tempo in BPM (default: pattern tempo)"`
	Seed     uint64  `short:"s" default:"1" help:"Seed for every random source"`
	Rate     int     `default:"44100" help:"Sample rate in Hz"`
	Mono     bool    `help:"Render a mono buffer"`
	Out      string  `short:"o" default:"sonido.wav" type:"path" help:"Output WAV file"`
	BitDepth int     `name:"bit-depth" default:"16" help:"Output WAV bit depth (16 or 24)"`
	JSON     bool    `help:"Print the final report as JSON"`
	LogLevel string  `name:"log-level" default:"warn" enum:"debug,info,warn,error" help:"Log level"`
}

func main() {
	cliArgs := &CLI{}
	kong.Parse(cliArgs,
		kong.Name("sonido-pulido"),
		kong.Description("Render a pattern and polish it through QA, repair, humanization and mastering"),
		kong.UsageOnError(),
		kong.Vars{
			"version": version,
		},
	)

	if cliArgs.Version {
		fmt.Printf("sonido-pulido %s\n", version)
		os.Exit(0)
	}

	logging.SetLevel(logging.ParseLevel(cliArgs.LogLevel))

	if err := run(cliArgs); err != nil {
		printError(err)
		os.Exit(1)
	}
}

func run(cliArgs *CLI) error {
	if !transcode.SupportedBitDepth(cliArgs.BitDepth) {
		return fmt.Errorf("unsupported bit depth %d", cliArgs.BitDepth)
	}

	cfg := config.Default()
	if cliArgs.Config != "" {
		loaded, err := config.Load(cliArgs.Config)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	source, name, err := newSource(cliArgs, cfg)
	if err != nil {
		return err
	}

	ctrl, err := pipeline.NewController(cfg, source)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	job := pipeline.Job{
		Name:  name,
		Genre: cliArgs.Genre,
		Tempo: cliArgs.Tempo,
		Seed:  cliArgs.Seed,
	}
	result, err := ctrl.Run(ctx, job)
	if err != nil {
		return err
	}

	if err := transcode.EncodeFile(cliArgs.Out, result.Buffer, cliArgs.BitDepth); err != nil {
		return err
	}

	if cliArgs.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result.Report)
	}

	fmt.Print(renderResult(result, cliArgs.Out))
	return nil
}

// newSource picks the synthesizer feeding the pipeline. A decoded file cannot
// be re-rendered, so regeneration is switched off for it.
func newSource(cliArgs *CLI, cfg *config.Config) (pipeline.Synthesizer, string, error) {
	channels := 2
	if cliArgs.Mono {
		channels = 1
	}

	if cliArgs.Input == "" {
		renderer, err := synth.New(synth.Demo(), cliArgs.Rate, channels)
		if err != nil {
			return nil, "", err
		}
		return renderer, synth.Demo().Name, nil
	}

	decoderConfig := transcode.DefaultDecoderConfig()
	if cliArgs.Mono {
		decoderConfig.TargetChannels = 1
	}
	decoded, err := transcode.NewDecoder(decoderConfig).DecodeFile(cliArgs.Input)
	if err != nil {
		return nil, "", err
	}
	cfg.MaxRegenerationAttempts = 0

	source := pipeline.SynthesizerFunc(func(ctx context.Context, _ pipeline.SynthParams) (*pcm.Buffer, error) {
		return decoded.Clone(), ctx.Err()
	})
	return source, filepath.Base(cliArgs.Input), nil
}
