package api

const (
	// DefaultVersion is the current API surface.
	DefaultVersion = "2.0"
	// LegacyVersion is still served but deprecated.
	LegacyVersion = "0.9"
)

var deprecatedVersions = map[string]bool{
	LegacyVersion: true,
}

// KnownVersions lists the API versions the vendor documents, current first.
func KnownVersions() []string {
	return []string{DefaultVersion, LegacyVersion}
}

// IsKnownVersion reports whether v is a documented API version.
// Unknown versions are still sent as-is.
func IsKnownVersion(v string) bool {
	return v == DefaultVersion || deprecatedVersions[v]
}

// IsDeprecated reports whether v is a deprecated API version.
func IsDeprecated(v string) bool {
	return deprecatedVersions[v]
}
