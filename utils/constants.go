// File: utils/constants.go
package utils

const (
	// SettingsCachePrefix prefixes cached availability settings, keyed by service category.
	SettingsCachePrefix = "catalog:settings:"
	// PriceCachePrefix prefixes cached base prices, keyed by service and location type.
	PriceCachePrefix = "catalog:price:"
)
