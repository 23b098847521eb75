package org

import (
	"strings"

	"github.com/aretw0/harp/pkg/outline"
)

// PropertyDrawerToMap flattens a drawer into upper-cased keys and trimmed
// values. A repeated key keeps its last value. A nil drawer gives an empty map.
func PropertyDrawerToMap(d *outline.PropertyDrawer) map[string]string {
	props := make(map[string]string)
	if d == nil {
		return props
	}
	for _, p := range d.Properties {
		props[strings.ToUpper(p.Key)] = strings.TrimSpace(p.Value)
	}
	return props
}

// requireProps returns an error naming the first absent key.
func requireProps(props map[string]string, keys ...string) error {
	for _, k := range keys {
		if _, ok := props[k]; !ok {
			return missingProperty(k)
		}
	}
	return nil
}
