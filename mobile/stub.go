//go:build !mobile

// The real binding lives in mobile.go and only compiles with -tags mobile.
// This placeholder keeps the package buildable in ordinary builds.
package mobile

// Dummy is an empty exported function so the package can be referenced in
// non-mobile builds.
func Dummy() {}
