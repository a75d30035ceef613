// Package audio provides clip playback for the soundboard. It uses the
// beep library to decode and play WAV, OGG, and MP3 files, supports
// overlapping or interrupting playback, and routes clips through the
// compressor pipeline with memory and disk caching of processed audio.
package audio
