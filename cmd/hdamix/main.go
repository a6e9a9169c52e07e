package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/gen2brain/hda"
)

// config holds the defaults read from the YAML config file. Flags override it.
type config struct {
	Device      string `yaml:"device"`
	Sim         string `yaml:"sim"`
	Scale       string `yaml:"scale"`
	SubsystemID uint32 `yaml:"subsystem_id"`
	Log         struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
}

var (
	configPath string
	device     string
	simPath    string
	scaleName  string
	logLevel   string
	subsystem  uint32
	interval   time.Duration

	cfg config
	log zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "hdamix",
	Short: "Inspect and control HD Audio codec mixers",
	Long: `hdamix attaches to an HD Audio codec through the kernel hwdep interface
(/dev/snd/hwCxDy) or to a simulated codec described in YAML, builds the codec's
mixer and lets you read and change its controls.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadConfig(cmd); err != nil {
			return err
		}

		log = newLogger(os.Stderr, cfg.Log.Level, cfg.Log.Format)

		return nil
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the HD Audio codecs of this machine",
	RunE: func(cmd *cobra.Command, args []string) error {
		codecs, err := hda.EnumerateCodecs()
		if err != nil {
			return err
		}

		if len(codecs) == 0 {
			fmt.Println("no codecs found")

			return nil
		}

		for _, c := range codecs {
			fmt.Printf("%s: %s\n", c.Device(), c)
		}

		return nil
	},
}

var controlsCmd = &cobra.Command{
	Use:   "controls",
	Short: "List all mixer controls",
	RunE: func(cmd *cobra.Command, args []string) error {
		codec, err := openCodec()
		if err != nil {
			return err
		}
		defer codec.Close()

		verbose, _ := cmd.Flags().GetBool("verbose")

		fmt.Printf("%s (%08x, subsystem %08x): %d controls\n\n", codec.Name, codec.VendorID, codec.SubsystemID, codec.NumCtls())
		printControls(codec, verbose)

		return nil
	},
}

var getCmd = &cobra.Command{
	Use:   "get <control>",
	Short: "Get the value of a control",
	Long: `Get the value of a control. A control is named by its index, its label
or its class and label, e.g. "outputs.master".`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		codec, err := openCodec()
		if err != nil {
			return err
		}
		defer codec.Close()

		m, err := findControl(codec, args[0])
		if err != nil {
			return err
		}

		value, err := codec.FormatValue(m.Info.Index)
		if err != nil {
			return err
		}

		fmt.Printf("%s = %s\n", qualifiedName(codec, m), value)

		return nil
	},
}

var setCmd = &cobra.Command{
	Use:   "set <control> <value>",
	Short: "Set the value of a control",
	Long: `Set the value of a control. Enumerations take a member name or ordinal,
sets take "[a,b]" and values take "left,right" or a single level for all channels.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		codec, err := openCodec()
		if err != nil {
			return err
		}
		defer codec.Close()

		m, err := findControl(codec, args[0])
		if err != nil {
			return err
		}

		mc, err := codec.ParseValue(m.Info.Index, args[1])
		if err != nil {
			return err
		}

		if err := codec.SetPort(mc); err != nil {
			if errors.Is(err, hda.ErrBusy) {
				return fmt.Errorf("%s: converters are streaming: %w", m.Info.Label, err)
			}

			return err
		}

		value, _ := codec.FormatValue(m.Info.Index)
		fmt.Printf("%s = %s\n", qualifiedName(codec, m), value)

		return nil
	},
}

var widgetsCmd = &cobra.Command{
	Use:   "widgets",
	Short: "Show the widget graph",
	RunE: func(cmd *cobra.Command, args []string) error {
		codec, err := openCodec()
		if err != nil {
			return err
		}
		defer codec.Close()

		printWidgets(codec)

		return nil
	},
}

var groupsCmd = &cobra.Command{
	Use:   "groups",
	Short: "Show the converter groups and supported stream formats",
	RunE: func(cmd *cobra.Command, args []string) error {
		codec, err := openCodec()
		if err != nil {
			return err
		}
		defer codec.Close()

		printGroups(codec)

		return nil
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Poll the jacks and apply headphone switching",
	RunE: func(cmd *cobra.Command, args []string) error {
		codec, err := openCodec()
		if err != nil {
			return err
		}
		defer codec.Close()

		jacks := codec.Jacks()
		if len(jacks) == 0 {
			return fmt.Errorf("%s has no jack sensing", codec.Name)
		}

		fmt.Printf("watching %d jacks of %s\n", len(jacks), codec.Name)

		poller := codec.NewJackPoller(interval)

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

		errChan := make(chan error, 1)
		go func() {
			errChan <- poller.Watch(func(j hda.Jack, present bool) error {
				name := j.Nid.String()
				if w := codec.Widget(j.Nid); w != nil {
					name = w.Name
				}

				state := "unplugged"
				if present {
					state = "plugged"
				}

				fmt.Printf("%s %s\n", name, state)

				return nil
			})
		}()

		select {
		case <-sigChan:
			poller.Stop()
			fmt.Println("\nstopping...")

			return nil
		case err := <-errChan:
			return err
		}
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "hdamix.yaml", "Path to the configuration file")
	flags.StringVarP(&device, "device", "D", "", "hwdep device, e.g. hw:0,0 (default: first codec found)")
	flags.StringVar(&simPath, "sim", "", "Attach to a simulated codec described in a YAML file")
	flags.StringVar(&scaleName, "scale", "", "Level scaling: raw or max255")
	flags.StringVar(&logLevel, "log-level", "", "Log level: trace, debug, info, warn or error")
	flags.Uint32Var(&subsystem, "subsystem", 0, "Override the subsystem id used for quirk selection")

	controlsCmd.Flags().BoolP("verbose", "v", false, "Show control values and links")
	watchCmd.Flags().DurationVar(&interval, "interval", hda.DefaultPollInterval, "Pin sense polling interval")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(controlsCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(setCmd)
	rootCmd.AddCommand(widgetsCmd)
	rootCmd.AddCommand(groupsCmd)
	rootCmd.AddCommand(watchCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads the config file, if present, and applies the flags on top.
func loadConfig(cmd *cobra.Command) error {
	data, err := os.ReadFile(configPath)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return fmt.Errorf("failed to parse %s: %w", configPath, err)
		}
	case errors.Is(err, os.ErrNotExist) && !cmd.Flags().Changed("config"):
	default:
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("device") {
		cfg.Device = device
	}
	if flags.Changed("sim") {
		cfg.Sim = simPath
	}
	if flags.Changed("scale") {
		cfg.Scale = scaleName
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = logLevel
	}
	if flags.Changed("subsystem") {
		cfg.SubsystemID = subsystem
	}

	return nil
}

func newLogger(w io.Writer, level, format string) zerolog.Logger {
	if format != "json" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05.000", NoColor: format == "text"}
	}

	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.WarnLevel
	}

	return zerolog.New(w).With().Timestamp().Logger().Level(lvl)
}

func parseScale(name string) (hda.ScalePolicy, error) {
	switch strings.ToLower(name) {
	case "":
		return hda.ScaleDefault, nil
	case "raw":
		return hda.ScaleRaw, nil
	case "max255":
		return hda.ScaleMax255, nil
	default:
		return 0, fmt.Errorf("unknown scale %q", name)
	}
}

// openCodec attaches to the simulator or hwdep device selected by the configuration.
func openCodec() (*hda.Codec, error) {
	scale, err := parseScale(cfg.Scale)
	if err != nil {
		return nil, err
	}

	conf := &hda.Config{SubsystemID: cfg.SubsystemID, Scale: scale, Logger: &log}

	var t hda.Transport
	if cfg.Sim != "" {
		sim, err := hda.LoadSimulator(cfg.Sim)
		if err != nil {
			return nil, err
		}

		log.Debug().Str("file", cfg.Sim).Msg("using simulated codec")
		t = sim
	} else {
		name := cfg.Device
		if name == "" {
			codecs, err := hda.EnumerateCodecs()
			if err != nil {
				return nil, err
			}

			if len(codecs) == 0 {
				return nil, fmt.Errorf("no HD Audio codecs found, use --device or --sim")
			}

			name = codecs[0].Device()
		}

		h, err := hda.OpenHwdepByName(name)
		if err != nil {
			return nil, err
		}

		log.Debug().Stringer("device", h).Int32("version", h.Version()).Msg("opened hwdep")
		t = h
	}

	codec, err := hda.Attach(t, conf)
	if err != nil {
		if c, ok := t.(io.Closer); ok {
			_ = c.Close()
		}

		return nil, err
	}

	return codec, nil
}

// findControl resolves a control by index, "class.label" or label.
func findControl(codec *hda.Codec, name string) (hda.MixerItem, error) {
	if index, err := strconv.Atoi(name); err == nil {
		return codec.Ctl(index)
	}

	if class, label, ok := strings.Cut(name, "."); ok {
		for _, m := range codec.Ctls() {
			if m.Info.Type == hda.MixerClass && m.Info.Label == class {
				return codec.CtlByNameAndClass(label, m.Info.Class)
			}
		}
	}

	return codec.CtlByName(name)
}

// qualifiedName returns the "class.label" form of a control.
func qualifiedName(codec *hda.Codec, m hda.MixerItem) string {
	class, err := codec.Ctl(m.Info.Class)
	if err != nil || m.Info.Type == hda.MixerClass {
		return m.Info.Label
	}

	return class.Info.Label + "." + m.Info.Label
}
