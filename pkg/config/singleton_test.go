package config

import (
	"testing"
)

func TestSingleton(t *testing.T) {
	// Reset global state around the test; the singleton survives across
	// test cases otherwise.
	original := GetConfig()
	defer SetConfig(original)

	t.Run("SetConfig and GetConfig round trip", func(t *testing.T) {
		cfg := validConfig()
		SetConfig(cfg)
		if got := GetConfig(); got != cfg {
			t.Error("GetConfig() did not return the set instance")
		}
	})

	t.Run("MustGetConfig panics when unset", func(t *testing.T) {
		SetConfig(nil)
		defer func() {
			if recover() == nil {
				t.Error("MustGetConfig() did not panic on nil config")
			}
		}()
		MustGetConfig()
	})
}
