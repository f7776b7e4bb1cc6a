package mem

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.dedis.ch/courier/core/store"
	"golang.org/x/xerrors"
)

func TestStore_Update(t *testing.T) {
	s := NewStore()

	err := s.Update(func(snap store.Snapshot) error {
		require.NoError(t, snap.Set([]byte("A"), []byte{1}))
		require.NoError(t, snap.Set([]byte("B"), []byte{2}))

		value, err := snap.Get([]byte("A"))
		require.NoError(t, err)
		require.Equal(t, []byte{1}, value)

		return nil
	})
	require.NoError(t, err)
	require.Equal(t, 2, s.Len())

	err = s.Update(func(snap store.Snapshot) error {
		require.NoError(t, snap.Delete([]byte("A")))

		value, err := snap.Get([]byte("A"))
		require.NoError(t, err)
		require.Nil(t, value)

		return nil
	})
	require.NoError(t, err)
	require.Equal(t, 1, s.Len())
}

func TestStore_Update_Abort(t *testing.T) {
	s := NewStore()

	err := s.Update(func(snap store.Snapshot) error {
		return snap.Set([]byte("A"), []byte{1})
	})
	require.NoError(t, err)

	err = s.Update(func(snap store.Snapshot) error {
		require.NoError(t, snap.Set([]byte("A"), []byte{2}))
		require.NoError(t, snap.Set([]byte("B"), []byte{3}))

		return xerrors.New("oops")
	})
	require.EqualError(t, err, "oops")

	err = s.View(func(r store.Readable) error {
		value, err := r.Get([]byte("A"))
		require.NoError(t, err)
		require.Equal(t, []byte{1}, value)

		value, err = r.Get([]byte("B"))
		require.NoError(t, err)
		require.Nil(t, value)

		return nil
	})
	require.NoError(t, err)
}

func TestStore_Update_Panic(t *testing.T) {
	s := NewStore()

	require.Panics(t, func() {
		s.Update(func(snap store.Snapshot) error {
			snap.Set([]byte("A"), []byte{1})
			panic("invariant")
		})
	})

	// The lock must have been released and nothing committed.
	require.Equal(t, 0, s.Len())
}

func TestStore_Scan(t *testing.T) {
	s := NewStore()

	err := s.Update(func(snap store.Snapshot) error {
		require.NoError(t, snap.Set([]byte("m2"), []byte{2}))
		require.NoError(t, snap.Set([]byte("m1"), []byte{1}))
		require.NoError(t, snap.Set([]byte("x"), []byte{9}))

		return nil
	})
	require.NoError(t, err)

	err = s.Update(func(snap store.Snapshot) error {
		require.NoError(t, snap.Delete([]byte("m1")))
		require.NoError(t, snap.Set([]byte("m3"), []byte{3}))

		require.Equal(t, []string{"m2", "m3"}, scanKeys(t, snap, "m"))

		return nil
	})
	require.NoError(t, err)

	err = s.View(func(r store.Readable) error {
		require.Equal(t, []string{"m2", "m3", "x"}, scanKeys(t, r, ""))

		return r.Scan(nil, func(k, v []byte) error {
			return xerrors.New("oops")
		})
	})
	require.EqualError(t, err, "oops")
}

func TestStore_View_Copy(t *testing.T) {
	s := NewStore()

	err := s.Update(func(snap store.Snapshot) error {
		return snap.Set([]byte("A"), []byte{1})
	})
	require.NoError(t, err)

	err = s.View(func(r store.Readable) error {
		value, err := r.Get([]byte("A"))
		require.NoError(t, err)

		value[0] = 9

		return nil
	})
	require.NoError(t, err)

	err = s.View(func(r store.Readable) error {
		value, _ := r.Get([]byte("A"))
		require.Equal(t, []byte{1}, value)

		return nil
	})
	require.NoError(t, err)
}

// -----------------------------------------------------------------------------
// Utility functions

func scanKeys(t *testing.T, r store.Readable, prefix string) []string {
	var keys []string

	err := r.Scan([]byte(prefix), func(k, v []byte) error {
		keys = append(keys, string(k))
		return nil
	})
	require.NoError(t, err)

	return keys
}
