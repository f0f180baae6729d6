package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/igd-protocol/igd-go/pkg/log"
	"github.com/igd-protocol/igd-go/pkg/session"
)

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "igd-client: "+format+"\n", args...)
	os.Exit(1)
}

func runIP(args []string) {
	fs := flag.NewFlagSet("ip", flag.ExitOnError)
	cfg, err := loadConfig(fs, args)
	if err != nil {
		fail("%v", err)
	}

	ctx := context.Background()
	c, cleanup, err := connect(ctx, cfg)
	if err != nil {
		fail("%v", err)
	}
	defer cleanup()

	ip, err := c.ExternalIP(ctx)
	if err != nil {
		fail("%v", err)
	}
	fmt.Println(ip)
}

func runForward(args []string) {
	fs := flag.NewFlagSet("forward", flag.ExitOnError)
	port := fs.Int("port", 0, "External port to forward (required)")
	desc := fs.String("desc", "igd-client", "Mapping description")
	leaseDur := fs.Duration("lease", 0, "Lease duration (0: permanent)")
	cfg, err := loadConfig(fs, args)
	if err != nil {
		fail("%v", err)
	}
	if *port == 0 {
		fail("forward: -port is required")
	}

	ctx := context.Background()
	c, cleanup, err := connect(ctx, cfg)
	if err != nil {
		fail("%v", err)
	}
	defer cleanup()

	if err := c.ForwardFor(ctx, *port, *desc, *leaseDur); err != nil {
		fail("%v", err)
	}
	fmt.Printf("forwarded %d (TCP+UDP)\n", *port)
}

func runClear(args []string) {
	fs := flag.NewFlagSet("clear", flag.ExitOnError)
	port := fs.Int("port", 0, "External port to clear (required)")
	cfg, err := loadConfig(fs, args)
	if err != nil {
		fail("%v", err)
	}
	if *port == 0 {
		fail("clear: -port is required")
	}

	ctx := context.Background()
	c, cleanup, err := connect(ctx, cfg)
	if err != nil {
		fail("%v", err)
	}
	defer cleanup()

	if err := c.Clear(ctx, *port); err != nil {
		fail("%v", err)
	}
	fmt.Printf("cleared %d (TCP+UDP)\n", *port)
}

func runGet(args []string) {
	fs := flag.NewFlagSet("get", flag.ExitOnError)
	port := fs.Int("port", 0, "External port to look up (required)")
	proto := fs.String("proto", "TCP", "Protocol: TCP or UDP")
	cfg, err := loadConfig(fs, args)
	if err != nil {
		fail("%v", err)
	}
	if *port == 0 {
		fail("get: -port is required")
	}

	ctx := context.Background()
	c, cleanup, err := connect(ctx, cfg)
	if err != nil {
		fail("%v", err)
	}
	defer cleanup()

	m, err := c.Mapping(ctx, *port, session.Protocol(strings.ToUpper(*proto)))
	if err != nil {
		fail("%v", err)
	}
	if !m.Found() {
		fmt.Printf("no mapping for %d/%s\n", *port, strings.ToUpper(*proto))
		return
	}
	printMappings(os.Stdout, []session.Mapping{m})
}

func runList(args []string) {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	cfg, err := loadConfig(fs, args)
	if err != nil {
		fail("%v", err)
	}

	ctx := context.Background()
	c, cleanup, err := connect(ctx, cfg)
	if err != nil {
		fail("%v", err)
	}
	defer cleanup()

	mappings, err := c.Mappings(ctx)
	if err != nil {
		fail("%v", err)
	}
	if len(mappings) == 0 {
		fmt.Println("mapping table is empty")
		return
	}
	printMappings(os.Stdout, mappings)
}

func printMappings(w io.Writer, mappings []session.Mapping) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PROTO\tEXT PORT\tINTERNAL\tENABLED\tLEASE\tDESCRIPTION")
	for _, m := range mappings {
		lease := "permanent"
		if m.Lease > 0 {
			lease = m.Lease.String()
		}
		fmt.Fprintf(tw, "%s\t%d\t%s:%d\t%v\t%s\t%s\n",
			m.Protocol, m.ExternalPort, m.InternalHost, m.InternalPort, m.Enabled, lease, m.Description)
	}
	tw.Flush()
}

func runLog(args []string) {
	fs := flag.NewFlagSet("log", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `igd-client log - View a protocol capture file

Usage:
  igd-client log [flags] <file.iglog>

Flags:
`)
		fs.PrintDefaults()
	}
	action := fs.String("action", "", "Filter by SOAP action name")
	direction := fs.String("direction", "", "Filter by direction (in, out)")
	category := fs.String("category", "", "Filter by category (discovery, exchange, fault, error)")
	exchange := fs.String("exchange", "", "Filter by exchange ID")
	bodies := fs.Bool("bodies", false, "Print captured envelope bodies")
	if err := fs.Parse(args); err != nil {
		fail("%v", err)
	}
	if fs.NArg() != 1 {
		fs.Usage()
		os.Exit(1)
	}

	filter := log.Filter{ExchangeID: *exchange, Action: *action}
	if *direction != "" {
		d, err := parseDirection(*direction)
		if err != nil {
			fail("%v", err)
		}
		filter.Direction = &d
	}
	if *category != "" {
		c, err := parseCategory(*category)
		if err != nil {
			fail("%v", err)
		}
		filter.Category = &c
	}

	reader, err := log.NewFilteredReader(fs.Arg(0), filter)
	if err != nil {
		fail("%v", err)
	}
	defer reader.Close()

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			fail("read log: %v", err)
		}
		printEvent(event, *bodies)
	}
}

func printEvent(e log.Event, bodies bool) {
	line := fmt.Sprintf("%s %-3s %-9s", e.Timestamp.Format(time.RFC3339Nano), e.Direction, e.Category)
	if e.Action != "" {
		line += " " + e.Action
	}
	switch {
	case e.Discovery != nil:
		line += fmt.Sprintf(" location=%s control=%s", e.Discovery.Location, e.Discovery.ControlURL)
	case e.Exchange != nil:
		line += fmt.Sprintf(" endpoint=%s size=%d", e.Exchange.Endpoint, e.Exchange.Size)
	case e.Fault != nil:
		line += fmt.Sprintf(" code=%d desc=%q", e.Fault.Code, e.Fault.Description)
	case e.Error != nil:
		line += fmt.Sprintf(" err=%q context=%q", e.Error.Message, e.Error.Context)
	}
	fmt.Println(line)
	if bodies && e.Exchange != nil && len(e.Exchange.Body) > 0 {
		fmt.Println(strings.TrimSpace(string(e.Exchange.Body)))
	}
}

func parseDirection(s string) (log.Direction, error) {
	switch strings.ToLower(s) {
	case "in":
		return log.DirectionIn, nil
	case "out":
		return log.DirectionOut, nil
	}
	return 0, fmt.Errorf("unknown direction %q", s)
}

func parseCategory(s string) (log.Category, error) {
	switch strings.ToLower(s) {
	case "discovery":
		return log.CategoryDiscovery, nil
	case "exchange":
		return log.CategoryExchange, nil
	case "fault":
		return log.CategoryFault, nil
	case "error":
		return log.CategoryError, nil
	}
	return 0, fmt.Errorf("unknown category %q", s)
}
