package kv

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.dedis.ch/courier/core/store"
	"golang.org/x/xerrors"
)

func TestStore_View_EmptyBucket(t *testing.T) {
	s := NewStore(makeDB(t), []byte("ledger"))

	err := s.View(func(r store.Readable) error {
		value, err := r.Get([]byte("A"))
		require.NoError(t, err)
		require.Nil(t, value)

		return nil
	})
	require.NoError(t, err)
}

func TestStore_UpdateAndView(t *testing.T) {
	s := NewStore(makeDB(t), []byte("ledger"))

	err := s.Update(func(snap store.Snapshot) error {
		require.NoError(t, snap.Set([]byte("A"), []byte{1}))
		require.NoError(t, snap.Set([]byte("B"), []byte{2}))

		return snap.Delete([]byte("B"))
	})
	require.NoError(t, err)

	var value []byte
	err = s.View(func(r store.Readable) error {
		value, err = r.Get([]byte("A"))
		return err
	})
	require.NoError(t, err)
	require.Equal(t, []byte{1}, value)
}

func TestStore_Update_Rollback(t *testing.T) {
	s := NewStore(makeDB(t), []byte("ledger"))

	err := s.Update(func(snap store.Snapshot) error {
		return snap.Set([]byte("A"), []byte{1})
	})
	require.NoError(t, err)

	err = s.Update(func(snap store.Snapshot) error {
		require.NoError(t, snap.Set([]byte("A"), []byte{2}))
		return xerrors.New("oops")
	})
	require.EqualError(t, err, "oops")

	require.Panics(t, func() {
		s.Update(func(snap store.Snapshot) error {
			snap.Set([]byte("A"), []byte{3})
			panic("invariant")
		})
	})

	err = s.View(func(r store.Readable) error {
		value, err := r.Get([]byte("A"))
		require.NoError(t, err)
		require.Equal(t, []byte{1}, value)

		return nil
	})
	require.NoError(t, err)
}

func TestStore_Scan(t *testing.T) {
	s := NewStore(makeDB(t), []byte("ledger"))

	err := s.View(func(r store.Readable) error {
		return r.Scan(nil, func(k, v []byte) error {
			return xerrors.New("empty bucket must not be scanned")
		})
	})
	require.NoError(t, err)

	err = s.Update(func(snap store.Snapshot) error {
		require.NoError(t, snap.Set([]byte("b2"), []byte{2}))
		require.NoError(t, snap.Set([]byte("a1"), []byte{0}))
		require.NoError(t, snap.Set([]byte("b1"), []byte{1}))

		return nil
	})
	require.NoError(t, err)

	var keys []string
	var values []byte

	err = s.View(func(r store.Readable) error {
		return r.Scan([]byte("b"), func(k, v []byte) error {
			keys = append(keys, string(k))
			values = append(values, v...)
			return nil
		})
	})
	require.NoError(t, err)
	require.Equal(t, []string{"b1", "b2"}, keys)
	require.Equal(t, []byte{1, 2}, values)

	err = s.View(func(r store.Readable) error {
		return r.Scan(nil, func(k, v []byte) error {
			return xerrors.New("oops")
		})
	})
	require.EqualError(t, err, "callback failed: oops")
}

func TestBucketSnapshot_ReadOnly(t *testing.T) {
	snap := bucketSnapshot{}

	require.EqualError(t, snap.Set([]byte("A"), nil), "read-only snapshot")
	require.EqualError(t, snap.Delete([]byte("A")), "read-only snapshot")
}

// -----------------------------------------------------------------------------
// Utility functions

func makeDB(t *testing.T) DB {
	db, err := New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)

	t.Cleanup(func() { db.Close() })

	return db
}
