// EditorsChoice - Curated Carousel Companion for Jellyfin
// Copyright 2026 EditorsChoice Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/editorschoice/editorschoice

package config

import (
	"errors"
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Validate checks the configuration for structural and cross-field
// errors. Error messages name the environment variable to fix rather
// than the internal field, since that is how operators set values.
func Validate(cfg *Config) error {
	if err := validatorInstance().Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			e := verrs[0]
			return fmt.Errorf("invalid configuration: %s failed %q validation", e.Namespace(), e.Tag())
		}
		return fmt.Errorf("invalid configuration: %w", err)
	}

	checks := []func(*Config) error{
		validateModeInputs,
		validateStrategyInputs,
		validateBackoffBounds,
	}
	for _, check := range checks {
		if err := check(cfg); err != nil {
			return err
		}
	}
	return nil
}

// validateModeInputs checks that the effective selection mode has the
// inputs it needs. Missing inputs degrade to the random fallback at
// request time, so these are warnings promoted to errors only where
// the configuration is outright contradictory.
func validateModeInputs(cfg *Config) error {
	if cfg.Carousel.UseFavourites && cfg.Carousel.UseCollections && cfg.Carousel.Mode == "" {
		return fmt.Errorf("CAROUSEL_USE_FAVOURITES and CAROUSEL_USE_COLLECTIONS are both set; set CAROUSEL_MODE to pick one")
	}
	return nil
}

func validateStrategyInputs(cfg *Config) error {
	if cfg.Integration.Strategy == StrategyInject && cfg.Jellyfin.WebClientPath == "" {
		return fmt.Errorf("JELLYFIN_WEB_CLIENT_PATH is required when INTEGRATION_STRATEGY=inject")
	}
	return nil
}

func validateBackoffBounds(cfg *Config) error {
	i := cfg.Integration
	if i.ProbeBackoffInitial <= 0 || i.ProbeBackoffMax < i.ProbeBackoffInitial {
		return fmt.Errorf("probe backoff bounds are invalid: initial %s, max %s", i.ProbeBackoffInitial, i.ProbeBackoffMax)
	}
	if i.RegisterBackoffInitial <= 0 || i.RegisterBackoffMax < i.RegisterBackoffInitial {
		return fmt.Errorf("register backoff bounds are invalid: initial %s, max %s", i.RegisterBackoffInitial, i.RegisterBackoffMax)
	}
	return nil
}
