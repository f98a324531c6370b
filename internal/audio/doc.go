// Package audio plays the chime that marks a rise in the unread count. It
// uses the beep library to decode WAV, OGG and MP3 files.
package audio
