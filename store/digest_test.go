package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDigestFrequencyIsSubscribed(t *testing.T) {
	for _, freq := range DigestFrequencies {
		require.True(t, freq.IsSubscribed(), "frequency %s", freq)
	}
	require.False(t, DigestOff.IsSubscribed())
	require.False(t, DigestFrequency("hourly").IsSubscribed())
	require.False(t, DigestFrequency("").IsSubscribed())
}

func TestMemoryDigestIndexUpdate(t *testing.T) {
	ctx := context.Background()
	index := NewMemoryDigestIndex()
	defer index.Close()

	now := time.Now()
	require.NoError(t, index.Update(ctx, 7, DigestWeek, now))

	freq, ok, err := index.Frequency(ctx, 7)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, DigestWeek, freq)

	// The user is in exactly the week set.
	for _, f := range DigestFrequencies {
		members, err := index.ListMembers(ctx, f)
		require.NoError(t, err)
		if f == DigestWeek {
			require.Equal(t, []int64{7}, members)
		} else {
			require.Empty(t, members)
		}
	}
}

func TestMemoryDigestIndexMove(t *testing.T) {
	ctx := context.Background()
	index := NewMemoryDigestIndex()
	defer index.Close()

	now := time.Now()
	require.NoError(t, index.Update(ctx, 7, DigestWeek, now))
	require.NoError(t, index.Update(ctx, 7, DigestMonth, now.Add(time.Second)))

	weekMembers, err := index.ListMembers(ctx, DigestWeek)
	require.NoError(t, err)
	require.Empty(t, weekMembers)

	monthMembers, err := index.ListMembers(ctx, DigestMonth)
	require.NoError(t, err)
	require.Equal(t, []int64{7}, monthMembers)
}

func TestMemoryDigestIndexOff(t *testing.T) {
	ctx := context.Background()
	index := NewMemoryDigestIndex()
	defer index.Close()

	now := time.Now()
	require.NoError(t, index.Update(ctx, 7, DigestDay, now))
	require.NoError(t, index.Update(ctx, 7, DigestOff, now))

	_, ok, err := index.Frequency(ctx, 7)
	require.NoError(t, err)
	require.False(t, ok)

	// Unrecognized values behave like off.
	require.NoError(t, index.Update(ctx, 8, DigestDay, now))
	require.NoError(t, index.Update(ctx, 8, DigestFrequency("sometimes"), now))
	_, ok, err = index.Frequency(ctx, 8)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestMemoryDigestIndexListOrder(t *testing.T) {
	ctx := context.Background()
	index := NewMemoryDigestIndex()
	defer index.Close()

	base := time.Now()
	require.NoError(t, index.Update(ctx, 3, DigestDay, base.Add(2*time.Second)))
	require.NoError(t, index.Update(ctx, 1, DigestDay, base))
	require.NoError(t, index.Update(ctx, 2, DigestDay, base.Add(time.Second)))

	members, err := index.ListMembers(ctx, DigestDay)
	require.NoError(t, err)
	require.Equal(t, []int64{1, 2, 3}, members)
}
