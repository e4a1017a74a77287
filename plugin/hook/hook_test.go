package hook

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestFireFilterUnregisteredPassthrough(t *testing.T) {
	r := NewRegistry()

	out, err := r.FireFilter(context.Background(), "filter:missing", "payload")
	require.NoError(t, err)
	require.Equal(t, "payload", out)
}

func TestFireFilterPriorityOrder(t *testing.T) {
	r := NewRegistry()
	r.RegisterFilter("filter:test", 20, func(_ context.Context, payload any) (any, error) {
		return payload.(string) + "-b", nil
	})
	r.RegisterFilter("filter:test", 10, func(_ context.Context, payload any) (any, error) {
		return payload.(string) + "-a", nil
	})

	out, err := r.FireFilter(context.Background(), "filter:test", "x")
	require.NoError(t, err)
	require.Equal(t, "x-a-b", out)
}

func TestFireFilterReplacesPayload(t *testing.T) {
	type payload struct{ n int }

	r := NewRegistry()
	r.RegisterFilter("filter:test", 0, func(_ context.Context, _ any) (any, error) {
		return &payload{n: 42}, nil
	})

	out, err := r.FireFilter(context.Background(), "filter:test", &payload{n: 1})
	require.NoError(t, err)
	require.Equal(t, 42, out.(*payload).n)
}

func TestFireFilterErrorAborts(t *testing.T) {
	r := NewRegistry()
	r.RegisterFilter("filter:test", 0, func(_ context.Context, _ any) (any, error) {
		return nil, errors.New("boom")
	})
	called := false
	r.RegisterFilter("filter:test", 10, func(_ context.Context, payload any) (any, error) {
		called = true
		return payload, nil
	})

	_, err := r.FireFilter(context.Background(), "filter:test", "x")
	require.Error(t, err)
	require.False(t, called)
}

func TestFireActionRunsAll(t *testing.T) {
	r := NewRegistry()
	var order []string
	r.RegisterAction("action:test", 5, func(_ context.Context, _ any) error {
		order = append(order, "second")
		return nil
	})
	r.RegisterAction("action:test", 1, func(_ context.Context, _ any) error {
		order = append(order, "first")
		return nil
	})

	require.NoError(t, r.FireAction(context.Background(), "action:test", nil))
	require.Equal(t, []string{"first", "second"}, order)
}

func TestFireActionErrorPropagates(t *testing.T) {
	r := NewRegistry()
	r.RegisterAction("action:test", 0, func(_ context.Context, _ any) error {
		return errors.New("boom")
	})

	require.Error(t, r.FireAction(context.Background(), "action:test", nil))
}
