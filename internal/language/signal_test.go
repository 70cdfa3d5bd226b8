package language

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/lullabies/internal/entities"
)

type memoryStore struct {
	values map[string]string
	err    error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{values: map[string]string{}}
}

func (m *memoryStore) GetValue(_ context.Context, key string) (string, error) {
	return m.values[key], m.err
}

func (m *memoryStore) SetSetting(_ context.Context, key, value string) error {
	if m.err != nil {
		return m.err
	}
	m.values[key] = value
	return nil
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"en", "en"},
		{"FR", "fr"},
		{"fr-CA", "fr"},
		{"pt_BR", "pt"},
		{"deu", "de"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Normalize(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalize_Invalid(t *testing.T) {
	for _, in := range []string{"", "not a language", "und"} {
		_, err := Normalize(in)
		assert.ErrorIs(t, err, ErrInvalidLanguage, in)
	}
}

func TestNewSignal_UsesFallback(t *testing.T) {
	s, err := NewSignal(context.Background(), newMemoryStore(), "en")
	require.NoError(t, err)
	assert.Equal(t, "en", s.Current())
}

func TestNewSignal_RestoresStoredLanguage(t *testing.T) {
	store := newMemoryStore()
	store.values[entities.SettingKeyAppLanguage] = "de"

	s, err := NewSignal(context.Background(), store, "en")
	require.NoError(t, err)
	assert.Equal(t, "de", s.Current())
}

func TestNewSignal_StoreError(t *testing.T) {
	store := newMemoryStore()
	store.err = errors.New("disk gone")

	_, err := NewSignal(context.Background(), store, "en")
	assert.Error(t, err)
}

func TestSignal_SetPersistsAndBroadcasts(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := newMemoryStore()
	s, err := NewSignal(ctx, store, "en")
	require.NoError(t, err)

	ch := s.Subscribe(ctx)
	assert.Equal(t, "en", <-ch)

	code, err := s.Set(ctx, "fr-FR")
	require.NoError(t, err)
	assert.Equal(t, "fr", code)
	assert.Equal(t, "fr", store.values[entities.SettingKeyAppLanguage])

	select {
	case got := <-ch:
		assert.Equal(t, "fr", got)
	case <-time.After(2 * time.Second):
		t.Fatal("no broadcast after Set")
	}
}

func TestSignal_SetInvalidKeepsCurrent(t *testing.T) {
	s, err := NewSignal(context.Background(), nil, "en")
	require.NoError(t, err)

	_, err = s.Set(context.Background(), "???")
	assert.ErrorIs(t, err, ErrInvalidLanguage)
	assert.Equal(t, "en", s.Current())
}
