// Package main tails the audit topic and prints matching events, one JSON
// object per line. Useful for checking what a local stack emits.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/twmb/franz-go/pkg/kgo"

	"agriqcert/internal/audit"
	"agriqcert/internal/platform/logger"
)

type filter struct {
	action   string
	entityID string
}

// match reports whether the event passes the filter. An action ending in
// "." matches every action with that prefix ("credential." etc.).
func (f filter) match(ev audit.Event) bool {
	if f.entityID != "" && ev.EntityID != f.entityID {
		return false
	}
	switch {
	case f.action == "":
		return true
	case strings.HasSuffix(f.action, "."):
		return strings.HasPrefix(string(ev.Action), f.action)
	default:
		return string(ev.Action) == f.action
	}
}

func main() {
	brokers := flag.String("brokers", envOr("KAFKA_BROKERS", "localhost:9092"), "Comma-separated Kafka brokers")
	topic := flag.String("topic", envOr("AUDIT_TOPIC", "agriqcert.audit"), "Audit topic")
	fromStart := flag.Bool("from-start", false, "Replay the topic from the earliest offset")
	action := flag.String("action", "", "Only print this action, or an action prefix ending in '.'")
	entity := flag.String("entity", "", "Only print events for this batch or credential ID")
	flag.Parse()

	log := logger.New(envOr("LOG_LEVEL", "info"))

	offset := kgo.NewOffset().AtEnd()
	if *fromStart {
		offset = kgo.NewOffset().AtStart()
	}
	client, err := kgo.NewClient(
		kgo.SeedBrokers(strings.Split(*brokers, ",")...),
		kgo.ConsumeTopics(*topic),
		kgo.ConsumeResetOffset(offset),
	)
	if err != nil {
		log.Error("create kafka consumer", "error", err)
		os.Exit(1)
	}
	defer client.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("tailing audit topic", "topic", *topic, "brokers", *brokers)
	f := filter{action: *action, entityID: *entity}
	for {
		fetches := client.PollFetches(ctx)
		if ctx.Err() != nil {
			return
		}
		fetches.EachError(func(t string, p int32, err error) {
			log.Warn("fetch failed", "topic", t, "partition", p, "error", err)
		})
		fetches.EachRecord(func(r *kgo.Record) {
			if err := printRecord(os.Stdout, r.Value, f); err != nil {
				log.Warn("skipping undecodable record", "offset", r.Offset, "error", err)
			}
		})
	}
}

func printRecord(w io.Writer, value []byte, f filter) error {
	var ev audit.Event
	if err := json.Unmarshal(value, &ev); err != nil {
		return err
	}
	if !f.match(ev) {
		return nil
	}
	line, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(line))
	return err
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
