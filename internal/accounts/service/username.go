package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
)

// ErrUsernameExhausted is returned when no free username could be found
// within the probe limit. In practice this indicates a data problem rather
// than genuine exhaustion.
var ErrUsernameExhausted = errors.New("username space exhausted")

// maxUsernameProbes bounds the collision probing loop.
const maxUsernameProbes = 10000

// AllocateUsername derives a username from the local part of the email. If
// it is taken, ascending integer suffixes are probed (base1, base2, ...)
// until a free one is found.
func AllocateUsername(ctx context.Context, email string, exists ExistsFunc) (string, error) {
	base, _, _ := strings.Cut(email, "@")

	candidate := base
	for i := 1; i <= maxUsernameProbes; i++ {
		taken, err := exists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = base + strconv.Itoa(i)
	}

	return "", ErrUsernameExhausted
}
