package finance

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const fixtureDir = "../fimcp/testdata"

func loadFixture[T any](t *testing.T, phone, tool string) T {
	t.Helper()
	raw, err := os.ReadFile(filepath.Join(fixtureDir, phone, tool+".json"))
	require.NoError(t, err)
	v, err := Decode[T](raw)
	require.NoError(t, err)
	return v
}

func decodeString[T any](t *testing.T, s string) T {
	t.Helper()
	v, err := Decode[T]([]byte(s))
	require.NoError(t, err)
	return v
}
