package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/AJolly/rtl-433/internal/config"
	"github.com/AJolly/rtl-433/pkg/rtl433"
)

var (
	rootCmd = &cobra.Command{
		Use:   "rtl433-analyze [codes]",
		Short: "Decode Oria WA150KM temperature sensor frames",
		Long: "rtl433-analyze decodes demodulated OOK rows given in {bits}hex notation,\n" +
			"e.g. as printed by rtl_433 -A. Without arguments it reads rows interactively.",
		Args: cobra.MaximumNArgs(1),
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return loadConfig(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			dec := rtl433.NewDecoder(
				rtl433.WithTracker(rtl433.NewTracker(cfg.TrackerOptions()...)),
				rtl433.WithLogger(logrus.StandardLogger()),
			)
			ctx := cmd.Context()
			if len(args) == 0 {
				return runInteractive(ctx, dec)
			}
			return runAnalyze(ctx, dec, args[0])
		},
	}

	configPath string
	cfg        = config.Default()
)

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "path to a YAML config file")
	flags.String("log-level", cfg.LogLevel, "log level (trace, debug, info, warn, error)")
	flags.Int("tracker-capacity", cfg.Tracker.Capacity, "number of sensors the debounce tracker holds")
	flags.Float64("max-delta", cfg.Tracker.MaxDeltaC, "largest accepted change between two readings in °C")
	rootCmd.AddCommand(listenCmd, driversCmd)
}

// loadConfig reads the config file and lets explicitly set flags win.
func loadConfig(cmd *cobra.Command) error {
	loaded, err := config.Load(configPath)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("log-level") {
		loaded.LogLevel, _ = flags.GetString("log-level")
	}
	if flags.Changed("tracker-capacity") {
		loaded.Tracker.Capacity, _ = flags.GetInt("tracker-capacity")
	}
	if flags.Changed("max-delta") {
		loaded.Tracker.MaxDeltaC, _ = flags.GetFloat64("max-delta")
	}
	if flags.Lookup("format") != nil && flags.Changed("format") {
		loaded.Output.Format, _ = flags.GetString("format")
	}
	if flags.Lookup("mqtt-broker") != nil && flags.Changed("mqtt-broker") {
		loaded.MQTT.Broker, _ = flags.GetString("mqtt-broker")
	}
	if flags.Lookup("mqtt-topic") != nil && flags.Changed("mqtt-topic") {
		loaded.MQTT.Topic, _ = flags.GetString("mqtt-topic")
	}
	if flags.Lookup("metrics-listen") != nil && flags.Changed("metrics-listen") {
		loaded.Metrics.Listen, _ = flags.GetString("metrics-listen")
	}
	if err := loaded.Validate(); err != nil {
		return err
	}
	level, err := logrus.ParseLevel(loaded.LogLevel)
	if err != nil {
		return err
	}
	logrus.SetLevel(level)
	cfg = loaded
	return nil
}

func main() {
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	ctx := context.Background()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logrus.Fatal(err)
	}
}

func runInteractive(ctx context.Context, dec *rtl433.Decoder) error {
	scanner := bufio.NewScanner(os.Stdin)
	logrus.Info("rtl433 analyze mode. Paste {bits}hex rows and press Enter (Ctrl+D to exit).")
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if err := runAnalyze(ctx, dec, line); err != nil {
			logrus.WithError(err).Error("failed to decode rows")
		}
	}
	return scanner.Err()
}

func runAnalyze(ctx context.Context, dec *rtl433.Decoder, codes string) error {
	result, err := dec.DecodeCodes(ctx, codes)
	if err != nil {
		return err
	}
	fmt.Println(result.String())
	return nil
}
