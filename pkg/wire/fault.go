package wire

import "fmt"

// Fault is a protocol-level error payload decoded from a UPnPError detail.
// It is distinct from a transport failure: the HTTP exchange succeeded,
// the gateway just refused the action.
type Fault struct {
	// Code is the numeric UPnP error code (e.g. 718).
	Code int

	// Description is the human-readable text the gateway supplied.
	Description string
}

// String formats the fault for logs and error messages.
func (f *Fault) String() string {
	name := FaultName(f.Code)
	if f.Description != "" {
		return fmt.Sprintf("%d %s: %s", f.Code, name, f.Description)
	}
	return fmt.Sprintf("%d %s", f.Code, name)
}

// WANIPConnection:1 fault codes.
const (
	// FaultInvalidArgs - one or more arguments are missing or malformed.
	FaultInvalidArgs = 402

	// FaultActionFailed - the action failed for an unspecified reason.
	FaultActionFailed = 501

	// FaultActionNotAuthorized - the control point is not permitted to
	// invoke this action.
	FaultActionNotAuthorized = 606

	// FaultSpecifiedArrayIndexInvalid - the requested mapping index is
	// past the end of the table. During enumeration this means "no more
	// entries", not an error.
	FaultSpecifiedArrayIndexInvalid = 713

	// FaultNoSuchEntryInArray - no mapping matches the given external
	// port and protocol. During a specific lookup this means "not
	// found", not an error.
	FaultNoSuchEntryInArray = 714

	// FaultWildCardNotPermittedInSrcIP - the source IP must be specific.
	FaultWildCardNotPermittedInSrcIP = 715

	// FaultWildCardNotPermittedInExtPort - the external port must be specific.
	FaultWildCardNotPermittedInExtPort = 716

	// FaultConflictInMappingEntry - the mapping collides with an
	// existing entry.
	FaultConflictInMappingEntry = 718

	// FaultSamePortValuesRequired - internal and external port must match.
	FaultSamePortValuesRequired = 724

	// FaultOnlyPermanentLeasesSupported - the gateway rejects finite leases.
	FaultOnlyPermanentLeasesSupported = 725
)

// FaultName returns the standard name for a WANIPConnection fault code.
func FaultName(code int) string {
	switch code {
	case FaultInvalidArgs:
		return "InvalidArgs"
	case FaultActionFailed:
		return "ActionFailed"
	case FaultActionNotAuthorized:
		return "ActionNotAuthorized"
	case FaultSpecifiedArrayIndexInvalid:
		return "SpecifiedArrayIndexInvalid"
	case FaultNoSuchEntryInArray:
		return "NoSuchEntryInArray"
	case FaultWildCardNotPermittedInSrcIP:
		return "WildCardNotPermittedInSrcIP"
	case FaultWildCardNotPermittedInExtPort:
		return "WildCardNotPermittedInExtPort"
	case FaultConflictInMappingEntry:
		return "ConflictInMappingEntry"
	case FaultSamePortValuesRequired:
		return "SamePortValuesRequired"
	case FaultOnlyPermanentLeasesSupported:
		return "OnlyPermanentLeasesSupported"
	default:
		return "Unknown"
	}
}
