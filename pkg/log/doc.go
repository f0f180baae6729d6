// Package log provides structured protocol logging for UPnP gateway
// exchanges.
//
// This package defines the Logger interface and Event types for capturing
// gateway traffic: discovery results, SOAP action exchanges, faults and
// transport errors. It is separate from operational logging (slog) -
// protocol capture provides a complete machine-readable trace of what was
// said to the gateway and what came back.
//
// # Basic Usage
//
// Applications configure logging by providing a Logger implementation:
//
//	// For development: log to console via slog
//	cfg.ProtocolLogger = log.NewSlogAdapter(slog.Default())
//
//	// For production: write to binary file
//	cfg.ProtocolLogger, _ = log.NewFileLogger("/var/log/igd/client.iglog")
//
//	// Both: use MultiLogger
//	cfg.ProtocolLogger = log.NewMultiLogger(
//	    log.NewSlogAdapter(slog.Default()),
//	    fileLogger,
//	)
//
// # Event Types
//
// Each event carries exactly one payload:
//   - Discovery: a gateway was located and resolved (DiscoveryEvent)
//   - Exchange: a SOAP action request or response (ExchangeEvent)
//   - Fault: a UPnP fault answered an action (FaultEvent)
//   - Error: a transport or decode failure (ErrorEvent)
//
// # File Format
//
// Log files use CBOR encoding with .iglog extension. The igd-client CLI's
// log command provides viewing and filtering.
package log
