package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/AJolly/rtl-433/internal/config"
	"github.com/AJolly/rtl-433/internal/metrics"
	"github.com/AJolly/rtl-433/internal/sink"
	"github.com/AJolly/rtl-433/pkg/rtl433"
)

var listenCmd = &cobra.Command{
	Use:   "listen",
	Short: "Decode a stream of rows from stdin until interrupted",
	Long: "listen reads one frame candidate per line from stdin, decodes it with a\n" +
		"shared debounce tracker and reports accepted readings to the configured sinks.",
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return runListen(ctx, cfg, os.Stdin, os.Stdout)
	},
}

func init() {
	flags := listenCmd.Flags()
	flags.String("format", config.FormatJSON, "output format for accepted readings (json, text)")
	flags.String("mqtt-broker", "", "publish readings to this MQTT broker, e.g. tcp://localhost:1883")
	flags.String("mqtt-topic", sink.DefaultTopic, "MQTT topic prefix")
	flags.String("metrics-listen", "", "serve Prometheus metrics on this address, e.g. :9433")
}

// textSink logs readings instead of printing JSON.
type textSink struct {
	log logrus.FieldLogger
}

func (textSink) Name() string { return "text" }

func (s textSink) Emit(_ context.Context, r sink.Reading) error {
	s.log.WithFields(logrus.Fields{
		"model":         r.Model,
		"id":            r.ID,
		"channel":       r.Channel,
		"temperature_C": r.TemperatureC,
	}).Info("reading")
	return nil
}

func runListen(ctx context.Context, cfg config.Config, in io.Reader, out io.Writer) error {
	log := logrus.StandardLogger()
	collector := metrics.New()
	opts := []rtl433.Option{
		rtl433.WithTracker(rtl433.NewTracker(cfg.TrackerOptions()...)),
		rtl433.WithLogger(log),
		rtl433.WithMetrics(collector),
	}

	switch cfg.Output.Format {
	case config.FormatText:
		opts = append(opts, rtl433.WithSink(textSink{log: log}))
	default:
		opts = append(opts, rtl433.WithSink(sink.NewJSONWriter(out)))
	}

	if cfg.MQTT.Broker != "" {
		mqttSink, err := sink.DialMQTT(sink.MQTTConfig{
			Broker:   cfg.MQTT.Broker,
			Topic:    cfg.MQTT.Topic,
			ClientID: cfg.MQTT.ClientID,
		})
		if err != nil {
			return err
		}
		defer mqttSink.Close()
		log.WithField("broker", cfg.MQTT.Broker).Info("publishing readings to mqtt")
		opts = append(opts, rtl433.WithSink(mqttSink))
	}

	serveErr := make(chan error, 1)
	if cfg.Metrics.Listen != "" {
		srv := metricsServer(cfg.Metrics.Listen, collector)
		go func() {
			log.WithField("addr", cfg.Metrics.Listen).Info("serving metrics")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				serveErr <- fmt.Errorf("metrics server: %w", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	dec := rtl433.NewDecoder(opts...)
	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		readErr <- scanner.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			log.Info("stopping")
			return nil
		case err := <-serveErr:
			return err
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-readErr:
					return err
				default:
					return nil
				}
			}
			decodeLine(ctx, dec, log, line)
		}
	}
}

func decodeLine(ctx context.Context, dec *rtl433.Decoder, log logrus.FieldLogger, line string) {
	line = strings.TrimSpace(line)
	if line == "" {
		return
	}
	result, err := dec.DecodeCodes(ctx, line)
	if err != nil {
		log.WithError(err).Warn("skipping malformed line")
		return
	}
	if result.Status == rtl433.StatusRejected {
		log.WithFields(logrus.Fields{
			"driver": result.Driver,
			"reason": result.Reason.String(),
		}).Debug("frame rejected")
	}
}

func metricsServer(addr string, c *metrics.Collector) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", c.Handler())
	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
