package throttle

import (
	"context"
	"errors"
	"testing"
	"testing/synctest"
	"time"

	"github.com/reactivex/rxgo/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserve(t *testing.T) {
	testCases := []struct {
		name string
		cfg  *Config
		exp  []interface{}
	}{
		{name: "Default edges", cfg: nil, exp: []interface{}{1}},
		{name: "Leading and trailing", cfg: bothEdges(), exp: []interface{}{1, 3}},
		{name: "Trailing only", cfg: &Config{Edges: []Edge{Trailing}}, exp: []interface{}{3}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			obs, err := Observe(context.Background(), rxgo.Just(1, 2, 3)(), time.Hour, tc.cfg)
			require.NoError(t, err)

			got, err := obs.ToSlice(0)
			require.NoError(t, err)
			assert.Equal(t, tc.exp, got)
		})
	}
}

func TestObserve_ForwardsErrors(t *testing.T) {
	boom := errors.New("boom")

	obs, err := Observe(context.Background(), rxgo.Just(1, boom, 2)(), time.Hour, nil)
	require.NoError(t, err)

	var items []rxgo.Item
	for item := range obs.Observe() {
		items = append(items, item)
	}

	require.Len(t, items, 2)
	assert.Equal(t, 1, items[0].V)
	assert.True(t, items[1].Error())
	assert.ErrorIs(t, items[1].E, boom)
}

func TestObserve_SourceCompletesDuringTrailingCall(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		const wait = 10 * time.Millisecond
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		src := make(chan rxgo.Item)
		obs, err := Observe(ctx, rxgo.FromChannel(src), wait, &Config{Edges: []Edge{Trailing}})
		require.NoError(t, err)

		src <- rxgo.Of(1)
		time.Sleep(wait)
		synctest.Wait() // trailing call is blocked emitting, nobody reads yet

		close(src)
		synctest.Wait()

		var got []interface{}
		for item := range obs.Observe() {
			got = append(got, item.V)
		}
		assert.Equal(t, []interface{}{1}, got)
	})
}

func TestObserve_ContextCancelReleasesBlockedConsumer(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())

		src := make(chan rxgo.Item)
		obs, err := Observe(ctx, rxgo.FromChannel(src), time.Hour, bothEdges())
		require.NoError(t, err)

		src <- rxgo.Of(1) // leading emission blocks, output is never read
		synctest.Wait()
		cancel()
		synctest.Wait()

		var got []rxgo.Item
		for item := range obs.Observe() {
			got = append(got, item)
		}
		assert.Empty(t, got, "cancelled output must complete without emitting")
	})
}

func TestObserve_InvalidConfig(t *testing.T) {
	_, err := Observe(context.Background(), rxgo.Just(1)(), -time.Second, nil)
	assert.ErrorIs(t, err, ErrNegativeWait)
}
