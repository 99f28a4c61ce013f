package cds

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/enclaved/discovery/e164"
)

func TestContactSetAddIsIdempotent(t *testing.T) {
	c := Contact{UserID: uuid.MustParse("11111111-2222-3333-4444-555555555555"), Number: "+15551230001"}

	set := NewContactSet()
	set.Add(c)
	set.Add(c)

	require.Equal(t, 1, set.Len())
	require.True(t, set.Contains(c))
}

func TestContactSetMerge(t *testing.T) {
	c1 := Contact{UserID: uuid.MustParse("11111111-2222-3333-4444-555555555555"), Number: "+15551230001"}
	c2 := Contact{UserID: uuid.MustParse("66666666-7777-8888-9999-aaaaaaaaaaaa"), Number: "+15551230002"}

	a := NewContactSet()
	a.Add(c1)
	b := NewContactSet()
	b.Add(c1)
	b.Add(c2)

	a.Merge(b)
	require.Equal(t, 2, a.Len())
	require.True(t, a.Contains(c1))
	require.True(t, a.Contains(c2))
}

func TestContactSetSlice(t *testing.T) {
	set := NewContactSet()
	require.Empty(t, set.Slice())

	c := Contact{UserID: uuid.MustParse("11111111-2222-3333-4444-555555555555"), Number: e164.Number("+15551230001")}
	set.Add(c)
	require.Equal(t, []Contact{c}, set.Slice())
}

func TestSameNumberDistinctIdentifiers(t *testing.T) {
	// A number reassigned between queries yields two contacts, not one.
	set := NewContactSet()
	set.Add(Contact{UserID: uuid.MustParse("11111111-2222-3333-4444-555555555555"), Number: "+15551230001"})
	set.Add(Contact{UserID: uuid.MustParse("66666666-7777-8888-9999-aaaaaaaaaaaa"), Number: "+15551230001"})
	require.Equal(t, 2, set.Len())
}
