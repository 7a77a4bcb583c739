// Command feedtail prints the portfolio activity feed in the terminal,
// keeping the same rolling de-duplicated window as the web UI.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"portfolio/api/feed"
	"portfolio/api/logs"
	"portfolio/api/models"
)

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "API base URL")
	transport := flag.String("transport", feed.TransportWebSocket, "ws or sse")
	window := flag.Int("window", 20, "number of messages to keep")
	backoff := flag.Duration("backoff", feed.DefaultBackoff, "delay before reconnecting")
	echo := flag.Bool("echo", false, "send stdin lines to the server (ws only)")
	logLevel := flag.String("log-level", "warn", "debug, info, warn or error")
	flag.Parse()

	logger := logs.NewLogger(logs.Options{
		Level:          *logLevel,
		Writer:         os.Stderr,
		DisableJournal: true,
	})

	sub, err := feed.NewSubscriber(feed.Options{
		BaseURL:   *baseURL,
		Transport: *transport,
		Backoff:   *backoff,
		Window:    feed.NewWindow(*window),
		OnMessage: printMessage,
		OnState: func(connected bool, err error) {
			if connected {
				logger.Info("connected", "url", *baseURL, "transport", *transport)
				return
			}
			logger.Warn("disconnected", "error", err, "retry_in", *backoff)
		},
		Logger: logger,
	})
	if err != nil {
		logger.Error("invalid options", "error", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *echo {
		go forwardStdin(ctx, sub, logger.With("component", "stdin"))
	}

	_ = sub.Run(ctx)
}

func printMessage(msg models.RealtimeMessage) {
	ts := msg.Timestamp
	if t, err := time.Parse(time.RFC3339Nano, msg.Timestamp); err == nil {
		ts = t.Local().Format("15:04:05")
	}
	fmt.Printf("[%s] %-15s %s\n", ts, msg.Type, msg.Message)
}

func forwardStdin(ctx context.Context, sub *feed.Subscriber, logger *slog.Logger) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}
		if err := sub.Send(scanner.Text()); err != nil {
			logger.Warn("could not send line", "error", err)
		}
	}
}
