package repository

import "strings"

const keyPrefix = "nomadx:list:"

// ListKey names the cached list of entity for one scope, e.g. "nomadx:list:bookings:agency:ag-1".
// An empty kind is the unscoped admin list.
func ListKey(entity, kind, id string) string {
	if kind == "" {
		return keyPrefix + entity + ":all"
	}
	return keyPrefix + strings.Join([]string{entity, kind, id}, ":")
}
