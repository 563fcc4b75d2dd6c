// Package system wraps host facilities the bridge relies on: the platform's
// file-opening mechanism and basic host information for health reporting.
package system
