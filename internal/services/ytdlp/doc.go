// Package ytdlp wraps yt-dlp CLI interactions for downloading music videos
// into MP4 containers and discovering URLs through YouTube search.
package ytdlp
