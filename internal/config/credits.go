package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// CreditsConfig maps purchased price identifiers to the number of credits
// granted per checkout. Purchases whose price id is not listed receive
// DefaultGrant.
type CreditsConfig struct {
	DefaultGrant int            `mapstructure:"defaultGrant"`
	PriceGrants  map[string]int `mapstructure:"priceGrants"`
}

func DefaultCreditsConfig() CreditsConfig {
	return CreditsConfig{
		DefaultGrant: 100,
		PriceGrants:  map[string]int{},
	}
}

type CreditsConfigHolder struct {
	current atomic.Value // holds CreditsConfig
}

func NewCreditsConfigHolder(cfg Config) (*CreditsConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("credits")
	v.SetConfigType("yml")
	if path := strings.TrimSpace(cfg.CreditsConfigSearchPath); path != "" {
		v.AddConfigPath(path)
	}
	v.AddConfigPath("/etc/launchforge")
	v.AddConfigPath(".")

	v.SetEnvPrefix("LAUNCHFORGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		defaults := DefaultCreditsConfig()
		v.SetDefault("credits.defaultGrant", defaults.DefaultGrant)
		v.SetDefault("credits.priceGrants", defaults.PriceGrants)
	}

	var parsed CreditsConfig
	if err := v.UnmarshalKey("credits", &parsed); err != nil {
		return nil, err
	}
	if err := validateCreditsConfig(parsed); err != nil {
		return nil, err
	}
	if parsed.PriceGrants == nil {
		parsed.PriceGrants = map[string]int{}
	}

	holder := &CreditsConfigHolder{}
	holder.current.Store(parsed)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated CreditsConfig
		if err := v.UnmarshalKey("credits", &updated); err != nil {
			log.Printf("[credits-config] reload failed: %v", err)
			return
		}
		if err := validateCreditsConfig(updated); err != nil {
			log.Printf("[credits-config] invalid config ignored: %v", err)
			return
		}
		if updated.PriceGrants == nil {
			updated.PriceGrants = map[string]int{}
		}
		holder.current.Store(updated)
		log.Printf("[credits-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

func (h *CreditsConfigHolder) Get() CreditsConfig {
	return h.current.Load().(CreditsConfig)
}

// GrantFor returns the credits granted for a price id.
func (h *CreditsConfigHolder) GrantFor(priceID string) int {
	cfg := h.Get()
	priceID = strings.TrimSpace(priceID)
	if priceID != "" {
		if grant, ok := cfg.PriceGrants[priceID]; ok {
			return grant
		}
	}
	return cfg.DefaultGrant
}

func validateCreditsConfig(cfg CreditsConfig) error {
	if cfg.DefaultGrant < 0 {
		return errors.New("credits.defaultGrant cannot be negative")
	}
	for priceID, grant := range cfg.PriceGrants {
		if strings.TrimSpace(priceID) == "" {
			return errors.New("credits.priceGrants contains an empty price id")
		}
		if grant < 0 {
			return errors.New("credits.priceGrants cannot contain negative grants")
		}
	}
	return nil
}
