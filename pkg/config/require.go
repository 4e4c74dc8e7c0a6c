package config

import "log"

func MustNonEmpty(value, envName string) {
	if value == "" {
		log.Fatalf("missing required env %s", envName)
	}
}

// WarnIfEmptyBytes logs instead of exiting: a missing secret only breaks the
// token paths, which report it per request.
func WarnIfEmptyBytes(value []byte, envName string) {
	if len(value) == 0 {
		log.Printf("warning: env %s is empty", envName)
	}
}
