// Package gateway confirms card payments against payment intents.
package gateway

import (
	"errors"
	"strings"
)

var errMalformedSecret = errors.New("malformed payment intent client secret")

// intentIDFromSecret returns the payment intent id a client secret belongs
// to. Secrets have the form "<intent id>_secret_<token>".
func intentIDFromSecret(secret string) (string, error) {
	id, _, ok := strings.Cut(secret, "_secret_")
	if !ok || id == "" {
		return "", errMalformedSecret
	}
	return id, nil
}
