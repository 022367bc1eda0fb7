package ping

import "errors"

// isSpuriousReadError reports read errors the receiver skips without logging
func isSpuriousReadError(err error) bool {
	for _, target := range spuriousReadErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
