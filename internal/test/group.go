// Package test holds fixtures shared by the tests of several packages.
package test

import (
	"context"
	"crypto/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/taurusgroup/ppda/internal/params"
	"github.com/taurusgroup/ppda/pkg/group"
	"github.com/taurusgroup/ppda/pkg/pool"
)

var (
	grp     *group.Parameters
	grpErr  error
	grpOnce sync.Once
)

// Group returns parameters of params.MinSecurityBits bits.
//
// Generation takes a few seconds, so it only happens once per test binary.
func Group(t testing.TB) *group.Parameters {
	grpOnce.Do(func() {
		pl := pool.NewPool(0)
		defer pl.TearDown()
		grp, grpErr = group.Generate(context.Background(), rand.Reader, params.MinSecurityBits, pl)
	})
	require.NoError(t, grpErr, "failed to generate test group")
	return grp
}
