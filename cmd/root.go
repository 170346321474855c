// Package cmd wires the command line to a monitoring session.
package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/esptools/espmon/internal/annotate"
	"github.com/esptools/espmon/internal/artifact"
	"github.com/esptools/espmon/internal/config"
	"github.com/esptools/espmon/internal/logging"
	"github.com/esptools/espmon/internal/monitor"
	"github.com/esptools/espmon/internal/symbols"
	"github.com/esptools/espmon/internal/target"
	"github.com/esptools/espmon/internal/transport"
)

// cfg holds the merged configuration, populated in PersistentPreRunE.
var cfg config.Config

var (
	flagChip      string
	flagFramework string
	flagTarget    string
	flagSpeed     int
	flagBin       string
	flagExample   string
	flagRelease   bool
	flagNoReset   bool
	flagResolver  string
	flagVerbose   bool
)

var warnStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))

var rootCmd = &cobra.Command{
	Use:   "espmon [flags] SERIAL_DEVICE",
	Short: "Monitor the serial output of an ESP development board",
	Long: `espmon opens a serial connection to an ESP development board, prints its
output line by line, and annotates backtrace addresses with function, file,
and line information from the flashed binary.

Hotkeys: Ctrl+R resets the board, Ctrl+C quits.`,
	Args:         cobra.MaximumNArgs(1),
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		global, err := config.LoadGlobal()
		if err != nil {
			return fmt.Errorf("loading global config: %w", err)
		}
		project, err := config.LoadProject()
		if err != nil {
			return fmt.Errorf("loading project config: %w", err)
		}
		cfg = config.Merge(global, project)
		return nil
	},
	RunE: runMonitor,
}

// Execute runs the root command. Exits with code 1 on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().StringVar(&flagChip, "chip", "", "chip on the board (esp32, esp32s2, esp32c3, esp8266)")
	rootCmd.Flags().StringVar(&flagFramework, "framework", "", "framework flashed on the board (baremetal, esp-idf)")
	rootCmd.Flags().StringVar(&flagTarget, "target", "", "target triple to infer chip and framework from")
	rootCmd.Flags().IntVarP(&flagSpeed, "speed", "s", 0, "baud rate of the serial device (default 115200)")
	rootCmd.Flags().StringVarP(&flagBin, "bin", "b", "", "path to the executable flashed on the device")
	rootCmd.Flags().StringVar(&flagExample, "example", "", "resolve --bin from the named example in the project's target directory")
	rootCmd.Flags().BoolVar(&flagRelease, "release", false, "resolve --bin from the release profile")
	rootCmd.Flags().BoolVar(&flagNoReset, "no-reset", false, "do not reset the board on start")
	rootCmd.Flags().StringVar(&flagResolver, "resolver", "", "symbolication strategy (addr2line, embedded)")
	rootCmd.Flags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")
}

func runMonitor(cmd *cobra.Command, args []string) error {
	level := slog.LevelInfo
	if flagVerbose {
		level = slog.LevelDebug
	}
	log := logging.New(level)

	device := cfg.Device
	if len(args) == 1 {
		device = args[0]
	}
	if device == "" {
		return fmt.Errorf("no serial device given (pass SERIAL_DEVICE or set one in .espmonrc)")
	}

	chip, fw, err := sessionTarget()
	if err != nil {
		return err
	}

	speed := flagSpeed
	if speed == 0 {
		speed = cfg.Baud
	}

	bin := binaryPath(chip, fw)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Opening %s with speed %d\n", device, speed)

	ann := buildAnnotator(cmd, chip, bin, log)

	conn, err := transport.Open(device, speed)
	if err != nil {
		return err
	}

	guard, err := monitor.EnterRaw(os.Stdin.Fd())
	if err != nil {
		conn.Close()
		return fmt.Errorf("entering raw terminal mode: %w", err)
	}
	defer guard.Restore()

	var keys monitor.KeySource
	if guard.Raw() {
		keys = monitor.StdinKeys(int(os.Stdin.Fd()))
	}

	session := monitor.New(monitor.Options{
		Conn:         conn,
		Annotator:    ann,
		Keys:         keys,
		Out:          out,
		Logger:       log,
		ResetOnStart: !flagNoReset,
		CRLF:         guard.Raw(),
	})
	defer session.Close()

	_, err = session.Run()
	return err
}

// sessionTarget works out the chip and framework from flags, the --target
// triple, and config defaults, in that order.
func sessionTarget() (target.Chip, target.Framework, error) {
	chipName := flagChip
	fwName := flagFramework

	if flagTarget != "" {
		if chipName == "" {
			c, err := target.ChipFromTarget(flagTarget)
			if err != nil {
				return "", "", err
			}
			chipName = string(c)
		}
		if fwName == "" {
			f, err := target.FrameworkFromTarget(flagTarget)
			if err != nil {
				return "", "", err
			}
			fwName = string(f)
		}
	}
	if chipName == "" {
		chipName = cfg.Chip
	}
	if fwName == "" {
		fwName = cfg.Framework
	}
	if fwName == "" {
		fwName = string(target.Baremetal)
	}

	chip, err := target.ParseChip(chipName)
	if err != nil {
		return "", "", err
	}
	fw, err := target.ParseFramework(fwName)
	if err != nil {
		return "", "", err
	}
	return chip, fw, nil
}

// binaryPath picks the binary to symbolicate with: --bin wins; otherwise
// --example/--release resolve a path in the project's cargo target
// directory.
func binaryPath(chip target.Chip, fw target.Framework) string {
	if flagBin != "" {
		return flagBin
	}
	if flagExample == "" && !flagRelease {
		return ""
	}
	root, err := os.Getwd()
	if err != nil {
		return ""
	}
	sel := artifact.Bin(filepath.Base(root))
	if flagExample != "" {
		sel = artifact.Example(flagExample)
	}
	return artifact.Resolve(root, sel, flagRelease, chip.Target(fw))
}

// buildAnnotator binds the configured resolver strategy to the binary. Any
// load problem is a one-line warning and the session continues without
// symbolication.
func buildAnnotator(cmd *cobra.Command, chip target.Chip, bin string, log *slog.Logger) *annotate.Annotator {
	if bin == "" {
		return nil
	}

	if _, err := os.Stat(bin); err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), warnStyle.Render(
			fmt.Sprintf("WARNING: flash image %s does not exist (you may need to build it)", bin)))
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Using %s as flash image\n", bin)

	strategyName := flagResolver
	if strategyName == "" {
		strategyName = cfg.Resolver
	}
	strategy, err := symbols.ParseStrategy(strategyName)
	if err != nil {
		log.Warn("invalid resolver, symbolication disabled", "err", err)
		return nil
	}

	switch strategy {
	case symbols.StrategyEmbedded:
		img, err := symbols.LoadImage(bin)
		if err != nil {
			log.Warn("cannot load binary, symbolication disabled", "err", err)
			return nil
		}
		return annotate.New(symbols.NewEmbedded(img))
	default:
		return annotate.New(symbols.NewAddr2Line(chip.ToolPrefix(), bin))
	}
}
