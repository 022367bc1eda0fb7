//go:build windows

package ping

import "golang.org/x/sys/windows"

// WSAEINVAL (10022) keeps coming back from raw sockets after they are torn
// down and would otherwise flood the log.
var spuriousReadErrors = []error{windows.WSAEINVAL}
