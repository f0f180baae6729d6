// Package version identifies this library on the wire.
package version

import (
	"fmt"
	"runtime"
)

// Current is the library version.
const Current = "0.1.0"

// UserAgent returns the User-Agent string sent on control and
// description requests, in the OS/version UPnP/version product/version
// form UPnP device stacks expect.
func UserAgent() string {
	return fmt.Sprintf("%s/1.0 UPnP/1.0 igd-go/%s", runtime.GOOS, Current)
}
