package main

import (
	"context"
	"flag"
	"fmt"
	"strconv"
	"strings"

	"github.com/chzyer/readline"

	"github.com/igd-protocol/igd-go/pkg/client"
	"github.com/igd-protocol/igd-go/pkg/session"
)

// shell is the interactive command loop over one connected gateway.
type shell struct {
	c  *client.Client
	rl *readline.Instance
}

func runShell(args []string) {
	fs := flag.NewFlagSet("shell", flag.ExitOnError)
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

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "igd> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		fail("failed to create readline: %v", err)
	}

	s := &shell{c: c, rl: rl}
	s.run(ctx)
}

func (s *shell) run(ctx context.Context) {
	defer s.rl.Close()

	fmt.Fprintf(s.rl.Stdout(), "Connected to %s\n", s.c.Location())
	s.printHelp()

	for {
		line, err := s.rl.Readline()
		if err != nil {
			// EOF or interrupt
			if err == readline.ErrInterrupt {
				continue
			}
			fmt.Fprintln(s.rl.Stdout(), "Exiting...")
			return
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}

		parts := strings.Fields(input)
		cmd := strings.ToLower(parts[0])
		args := parts[1:]

		switch cmd {
		case "help", "?":
			s.printHelp()

		case "ip":
			s.cmdIP(ctx)

		case "list", "ls":
			s.cmdList(ctx)

		case "get":
			s.cmdGet(ctx, args)

		case "forward", "fwd":
			s.cmdForward(ctx, args)

		case "add":
			s.cmdAdd(ctx, args)

		case "del", "delete":
			s.cmdDelete(ctx, args)

		case "clear":
			s.cmdClear(ctx, args)

		case "owned":
			s.cmdOwned()

		case "quit", "exit", "q":
			return

		default:
			fmt.Fprintf(s.rl.Stdout(), "Unknown command: %s (try 'help')\n", cmd)
		}
	}
}

func (s *shell) printHelp() {
	fmt.Fprint(s.rl.Stdout(), `
Commands:
  ip                                      Show external IP address
  list                                    List the mapping table
  get <port> [tcp|udp]                    Look up one mapping
  forward <port> [description]            Map a port (TCP+UDP) to this host
  add <port> <proto> <host> <iport> [d]   Create one specific mapping
  del <port> <proto>                      Delete one mapping
  clear <port>                            Delete TCP and UDP mappings
  owned                                   Show mappings created by this client
  quit                                    Exit
`)
}

func (s *shell) cmdIP(ctx context.Context) {
	ip, err := s.c.ExternalIP(ctx)
	if err != nil {
		fmt.Fprintf(s.rl.Stdout(), "Error: %v\n", err)
		return
	}
	fmt.Fprintln(s.rl.Stdout(), ip)
}

func (s *shell) cmdList(ctx context.Context) {
	mappings, err := s.c.Mappings(ctx)
	if err != nil {
		fmt.Fprintf(s.rl.Stdout(), "Error: %v\n", err)
		return
	}
	if len(mappings) == 0 {
		fmt.Fprintln(s.rl.Stdout(), "mapping table is empty")
		return
	}
	printMappings(s.rl.Stdout(), mappings)
}

func (s *shell) cmdGet(ctx context.Context, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(s.rl.Stdout(), "Usage: get <port> [tcp|udp]")
		return
	}
	port, err := strconv.Atoi(args[0])
	if err != nil {
		fmt.Fprintf(s.rl.Stdout(), "Bad port: %v\n", err)
		return
	}
	proto := session.ProtocolTCP
	if len(args) > 1 {
		proto = session.Protocol(strings.ToUpper(args[1]))
	}

	m, err := s.c.Mapping(ctx, port, proto)
	if err != nil {
		fmt.Fprintf(s.rl.Stdout(), "Error: %v\n", err)
		return
	}
	if !m.Found() {
		fmt.Fprintf(s.rl.Stdout(), "no mapping for %d/%s\n", port, proto)
		return
	}
	printMappings(s.rl.Stdout(), []session.Mapping{m})
}

func (s *shell) cmdForward(ctx context.Context, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(s.rl.Stdout(), "Usage: forward <port> [description]")
		return
	}
	port, err := strconv.Atoi(args[0])
	if err != nil {
		fmt.Fprintf(s.rl.Stdout(), "Bad port: %v\n", err)
		return
	}
	desc := "igd-client"
	if len(args) > 1 {
		desc = strings.Join(args[1:], " ")
	}

	if err := s.c.Forward(ctx, port, desc); err != nil {
		fmt.Fprintf(s.rl.Stdout(), "Error: %v\n", err)
		return
	}
	fmt.Fprintf(s.rl.Stdout(), "forwarded %d (TCP+UDP)\n", port)
}

func (s *shell) cmdAdd(ctx context.Context, args []string) {
	if len(args) < 4 {
		fmt.Fprintln(s.rl.Stdout(), "Usage: add <port> <proto> <host> <internal-port> [description]")
		return
	}
	port, err := strconv.Atoi(args[0])
	if err != nil {
		fmt.Fprintf(s.rl.Stdout(), "Bad port: %v\n", err)
		return
	}
	iport, err := strconv.ParseUint(args[3], 10, 16)
	if err != nil {
		fmt.Fprintf(s.rl.Stdout(), "Bad internal port: %v\n", err)
		return
	}
	desc := "igd-client"
	if len(args) > 4 {
		desc = strings.Join(args[4:], " ")
	}

	m := session.Mapping{
		ExternalPort: port,
		Protocol:     session.Protocol(strings.ToUpper(args[1])),
		InternalPort: uint16(iport),
		InternalHost: args[2],
		Description:  desc,
	}
	if err := s.c.Session().AddMapping(ctx, m); err != nil {
		fmt.Fprintf(s.rl.Stdout(), "Error: %v\n", err)
		return
	}
	fmt.Fprintf(s.rl.Stdout(), "added %s\n", m)
}

func (s *shell) cmdDelete(ctx context.Context, args []string) {
	if len(args) < 2 {
		fmt.Fprintln(s.rl.Stdout(), "Usage: del <port> <proto>")
		return
	}
	port, err := strconv.Atoi(args[0])
	if err != nil {
		fmt.Fprintf(s.rl.Stdout(), "Bad port: %v\n", err)
		return
	}
	proto := session.Protocol(strings.ToUpper(args[1]))

	if err := s.c.Session().DeleteMapping(ctx, port, proto); err != nil {
		fmt.Fprintf(s.rl.Stdout(), "Error: %v\n", err)
		return
	}
	fmt.Fprintf(s.rl.Stdout(), "deleted %d/%s\n", port, proto)
}

func (s *shell) cmdClear(ctx context.Context, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(s.rl.Stdout(), "Usage: clear <port>")
		return
	}
	port, err := strconv.Atoi(args[0])
	if err != nil {
		fmt.Fprintf(s.rl.Stdout(), "Bad port: %v\n", err)
		return
	}

	if err := s.c.Clear(ctx, port); err != nil {
		fmt.Fprintf(s.rl.Stdout(), "Error: %v\n", err)
		return
	}
	fmt.Fprintf(s.rl.Stdout(), "cleared %d (TCP+UDP)\n", port)
}

func (s *shell) cmdOwned() {
	owned := s.c.OwnedMappings()
	if len(owned) == 0 {
		fmt.Fprintln(s.rl.Stdout(), "no owned mappings recorded")
		return
	}
	for _, m := range owned {
		fmt.Fprintf(s.rl.Stdout(), "%s %d -> %s:%d (%s) created %s\n",
			m.Protocol, m.ExternalPort, m.InternalHost, m.InternalPort, m.Description,
			m.CreatedAt.Format("2006-01-02 15:04:05"))
	}
}
