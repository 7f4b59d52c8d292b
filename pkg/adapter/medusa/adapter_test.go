package medusa_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storeforge/storeforge/pkg/adapter"
	"github.com/storeforge/storeforge/pkg/adapter/medusa"
	v1alpha1 "github.com/storeforge/storeforge/pkg/apis/store/v1alpha1"
)

func TestAdapter_Engine(t *testing.T) {
	t.Parallel()

	a := medusa.New()

	assert.Equal(t, v1alpha1.EngineMedusa, a.Engine())
}

func TestAdapter_ConfigureNotImplemented(t *testing.T) {
	t.Parallel()

	a := medusa.New()

	err := a.Configure(context.Background(), "shop-one", "shop-one")

	require.Error(t, err)
	assert.ErrorIs(t, err, adapter.ErrNotImplemented)
}

func TestAdapter_AdminPasswordNotImplemented(t *testing.T) {
	t.Parallel()

	a := medusa.New()

	_, err := a.AdminPassword(context.Background(), "shop-one", "shop-one")

	require.Error(t, err)
	assert.ErrorIs(t, err, adapter.ErrNotImplemented)
}

func TestAdapter_NeverReady(t *testing.T) {
	t.Parallel()

	a := medusa.New()

	assert.False(t, a.IsReady(context.Background(), "shop-one", "shop-one"))
	assert.Nil(t, a.DefaultValues("shop-one", "shop-one.example.com"))
}
