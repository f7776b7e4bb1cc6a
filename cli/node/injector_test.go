package node

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.dedis.ch/courier/cli"
)

func TestReflectInjector_Resolve(t *testing.T) {
	inj := NewInjector()

	inj.Inject("abc")
	inj.Inject(FlagSet{"a": "b"})

	var dep string
	require.NoError(t, inj.Resolve(&dep))
	require.Equal(t, "abc", dep)

	var flags cli.Flags
	require.NoError(t, inj.Resolve(&flags))
	require.Equal(t, "b", flags.String("a"))

	var dep2 uint64
	err := inj.Resolve(&dep2)
	require.EqualError(t, err, "couldn't find dependency for 'uint64'")

	err = inj.Resolve((*interface{})(nil))
	require.EqualError(t, err, "reflect value '<nil>' is invalid")

	err = inj.Resolve(dep2)
	require.EqualError(t, err, "expect a pointer")
}
