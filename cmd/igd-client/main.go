// Command igd-client manages port mappings on a UPnP internet gateway.
//
// The gateway is named by its description document URL, passed with
// -location or read from a YAML configuration file.
//
// Usage:
//
//	igd-client <command> [flags]
//
// Commands:
//
//	ip       Show the gateway's external IP address
//	forward  Map a port (TCP and UDP) to this host
//	clear    Remove the mappings for a port
//	get      Look up the mapping for a port and protocol
//	list     List the gateway's whole mapping table
//	shell    Interactive command shell
//	log      View a protocol capture file
//
// Examples:
//
//	# Show the external address
//	igd-client ip -location http://192.168.1.1:2869/desc.xml
//
//	# Forward port 8080 and remove it again
//	igd-client forward -location http://192.168.1.1:2869/desc.xml -port 8080 -desc "web"
//	igd-client clear -location http://192.168.1.1:2869/desc.xml -port 8080
//
//	# Everything configured in a file, with protocol capture
//	igd-client list -config ~/.config/igd/config.yaml
//
//	# Inspect a capture
//	igd-client log -action AddPortMapping traffic.iglog
package main

import (
	"fmt"
	"os"
)

const usage = `igd-client - UPnP gateway port mapping client

Usage:
  igd-client <command> [flags]

Commands:
  ip       Show the gateway's external IP address
  forward  Map a port (TCP and UDP) to this host
  clear    Remove the mappings for a port
  get      Look up the mapping for a port and protocol
  list     List the gateway's whole mapping table
  shell    Interactive command shell
  log      View a protocol capture file

Use "igd-client <command> -help" for more information about a command.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "ip":
		runIP(args)
	case "forward":
		runForward(args)
	case "clear":
		runClear(args)
	case "get":
		runGet(args)
	case "list":
		runList(args)
	case "shell":
		runShell(args)
	case "log":
		runLog(args)
	case "-h", "-help", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}
}
