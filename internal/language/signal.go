// Package language owns the process-wide current-language signal.
//
// The signal is a single shared broadcast value: readers subscribe and get
// the active code immediately and again on every change. The chosen code is
// persisted in the settings table so it survives restarts.
package language

import (
	"context"
	"errors"
	"fmt"
	"log"

	"golang.org/x/text/language"

	"github.com/mrlokans/lullabies/internal/entities"
	"github.com/mrlokans/lullabies/internal/reactive"
)

var ErrInvalidLanguage = errors.New("invalid language code")

// SettingsStore persists the chosen language.
type SettingsStore interface {
	GetValue(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, key, value string) error
}

// Signal is the current-language broadcast.
type Signal struct {
	subject *reactive.Subject[string]
	store   SettingsStore
}

// Normalize reduces a language tag ("fr-CA", "pt_BR", "EN") to its base
// language code ("fr", "pt", "en").
func Normalize(code string) (string, error) {
	tag, err := language.Parse(code)
	if err != nil {
		return "", fmt.Errorf("%w %q: %v", ErrInvalidLanguage, code, err)
	}
	base, confidence := tag.Base()
	if confidence != language.Exact {
		return "", fmt.Errorf("%w %q", ErrInvalidLanguage, code)
	}
	return base.String(), nil
}

// NewSignal restores the persisted language, or uses fallback when none is
// stored. store may be nil, in which case changes are not persisted.
func NewSignal(ctx context.Context, store SettingsStore, fallback string) (*Signal, error) {
	initial, err := Normalize(fallback)
	if err != nil {
		return nil, err
	}

	if store != nil {
		saved, err := store.GetValue(ctx, entities.SettingKeyAppLanguage)
		if err != nil {
			return nil, fmt.Errorf("load language setting: %w", err)
		}
		if saved != "" {
			if code, err := Normalize(saved); err == nil {
				initial = code
			} else {
				log.Printf("[LANGUAGE] Ignoring stored language %q: %v", saved, err)
			}
		}
	}

	return &Signal{subject: reactive.NewSubject(initial), store: store}, nil
}

// Current returns the active language code.
func (s *Signal) Current() string {
	return s.subject.Value()
}

// Set normalizes code, persists it and broadcasts it if it differs from
// the active language. It returns the normalized code.
func (s *Signal) Set(ctx context.Context, code string) (string, error) {
	normalized, err := Normalize(code)
	if err != nil {
		return "", err
	}
	if s.store != nil {
		if err := s.store.SetSetting(ctx, entities.SettingKeyAppLanguage, normalized); err != nil {
			return "", fmt.Errorf("save language setting: %w", err)
		}
	}
	if s.subject.Set(normalized) {
		log.Printf("[LANGUAGE] Switched to %s", normalized)
	}
	return normalized, nil
}

// Subscribe streams the active code now and on every change until ctx is done.
func (s *Signal) Subscribe(ctx context.Context) <-chan string {
	return s.subject.Subscribe(ctx)
}
