// Package dupefinder locates likely duplicate videos by comparing
// normalized artist and title fingerprints across the library.
package dupefinder
