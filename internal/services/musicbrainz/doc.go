// Package musicbrainz looks up artist metadata from the MusicBrainz web
// service, rate limited to stay inside the service's usage policy.
package musicbrainz
