package keybinds

import (
	"fmt"
	"slices"
	"strings"
)

// Config holds user overrides as context -> action -> keys, where keys is a
// comma separated list such as "up,k". It is read from the "keys" section
// of the configuration file:
//
//	keys:
//	  chat:
//	    compose: "enter,c"
//	  menu:
//	    back: "esc,q,h"
type Config map[string]map[string]string

// ApplyConfig applies user configuration to a registry.
// The keys listed for an action replace that action's default keys in the
// same context.
func ApplyConfig(registry *Registry, config Config) error {
	for contextName, actions := range config {
		context := Context(contextName)
		if !slices.Contains(AllContexts, context) {
			return fmt.Errorf("unknown keybinding context %q", contextName)
		}

		for actionName, keyList := range actions {
			action := Action(actionName)
			if err := ValidateAction(actionName); err != nil {
				return fmt.Errorf("context %s: %w", contextName, err)
			}

			keys := splitKeys(keyList)
			for _, key := range keys {
				if err := ValidateKey(key); err != nil {
					return fmt.Errorf("context %s, action %s: %w", contextName, actionName, err)
				}
			}

			registry.Rebind(context, action, keys...)
		}
	}

	return nil
}

// LoadOrDefault returns the default registry with config applied over it
func LoadOrDefault(config Config) (*Registry, error) {
	registry := NewDefaultRegistry()
	if len(config) == 0 {
		return registry, nil
	}

	if err := ApplyConfig(registry, config); err != nil {
		return nil, fmt.Errorf("failed to apply keybinding config: %w", err)
	}
	return registry, nil
}

// Export renders a registry in the Config layout
func Export(registry *Registry) Config {
	config := make(Config)
	for _, ctx := range AllContexts {
		bindings := registry.Bindings(ctx)
		if len(bindings) == 0 {
			continue
		}
		byAction := make(map[Action][]string)
		for _, b := range bindings {
			byAction[b.Action] = append(byAction[b.Action], b.Key)
		}
		section := make(map[string]string, len(byAction))
		for action, keys := range byAction {
			section[string(action)] = strings.Join(keys, ",")
		}
		config[string(ctx)] = section
	}
	return config
}

func splitKeys(list string) []string {
	var keys []string
	for _, k := range strings.Split(list, ",") {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		keys = append(keys, k)
	}
	return keys
}
