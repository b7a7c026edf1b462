package settings

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"max.ks1230/fintrack/internal/entity/currency"
	"max.ks1230/fintrack/internal/entity/user"
	"max.ks1230/fintrack/internal/model/bus"
	"max.ks1230/fintrack/internal/model/storage"
)

func Test_OnGetWithoutSettings_ShouldReturnDefaults(t *testing.T) {
	ctx := context.Background()
	s := New(storage.NewInMemStorage(), bus.New())

	got, err := s.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, user.DefaultSettings(), got)
}

func Test_OnUpdate_ShouldApplyChangeAndPublish(t *testing.T) {
	ctx := context.Background()
	b := bus.New()
	s := New(storage.NewInMemStorage(), b)

	var events []bus.Event
	b.Subscribe(bus.SettingsChanged, func(ev bus.Event) { events = append(events, ev) })

	err := s.Update(ctx, "alice", func(st user.Settings) user.Settings {
		st.Theme = user.ThemeDark
		st.Currency = currency.USD
		return st
	})
	require.NoError(t, err)

	got, err := s.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, user.ThemeDark, got.Theme)
	assert.Equal(t, currency.USD, got.Currency)
	assert.Equal(t, []bus.Event{{Topic: bus.SettingsChanged, OwnerID: "alice"}}, events)
}

func Test_OnUpdateClearingFields_ShouldFallBackToDefaults(t *testing.T) {
	ctx := context.Background()
	s := New(storage.NewInMemStorage(), bus.New())

	err := s.Update(ctx, "alice", func(user.Settings) user.Settings {
		return user.Settings{}
	})
	require.NoError(t, err)

	got, err := s.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, user.DefaultSettings(), got)
}
