package cache

// namespaced joins prefix and key as "prefix:key". An empty prefix leaves the key untouched,
// so identifiers are stored verbatim by default.
func namespaced(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + ":" + key
}
