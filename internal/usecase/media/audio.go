package media

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	ffmpeg "github.com/u2takey/ffmpeg-go"
	"go.uber.org/zap"

	"github.com/videogen-team/videogen/errors"
	"github.com/videogen-team/videogen/internal/domain/entities"
)

const fallbackSampleRate = 44100

// SpeechProvider is the text-to-speech surface of the media provider client
type SpeechProvider interface {
	GenerateSpeech(ctx context.Context, text string, w io.Writer) error
}

// AudioSynthesizer renders one narration track per segment. The TTS provider
// is the primary strategy; when it fails the synthesizer writes a silent
// track sized to the estimated speaking time so assembly timing still works.
type AudioSynthesizer struct {
	provider SpeechProvider
	paths    *AssetPaths
	logger   *zap.Logger
}

// NewAudioSynthesizer constructs an audio synthesizer
func NewAudioSynthesizer(provider SpeechProvider, paths *AssetPaths, logger *zap.Logger) *AudioSynthesizer {
	return &AudioSynthesizer{
		provider: provider,
		paths:    paths,
		logger:   logger,
	}
}

// Synthesize writes the segment's narration mp3 to its canonical path and
// returns that path. Provider failure is not fatal; only failing to produce
// the silent fallback is.
func (s *AudioSynthesizer) Synthesize(ctx context.Context, generationID uuid.UUID, segment entities.ScriptSegment) (string, error) {
	audioPath := s.paths.AudioPath(generationID, segment.SegmentID)

	err := s.streamSpeech(ctx, segment.Content, audioPath)
	if err == nil {
		return audioPath, nil
	}

	s.logger.Warn("TTS provider failed, falling back to silent audio",
		zap.String("generation_id", generationID.String()),
		zap.Int("segment_id", segment.SegmentID),
		zap.Error(err))

	if err := s.writeSilentFallback(segment.Content, audioPath); err != nil {
		return "", errors.ErrAssetGenerationFailed("audio", segment.SegmentID, err)
	}
	return audioPath, nil
}

// streamSpeech writes the provider's mp3 stream straight to disk. A partial
// file from a mid-stream failure is removed so the fallback starts clean.
func (s *AudioSynthesizer) streamSpeech(ctx context.Context, text, audioPath string) error {
	f, err := os.Create(audioPath)
	if err != nil {
		return fmt.Errorf("failed to create audio file: %w", err)
	}

	if err := s.provider.GenerateSpeech(ctx, text, f); err != nil {
		f.Close()
		os.Remove(audioPath)
		return err
	}
	return f.Close()
}

// writeSilentFallback writes a silent WAV sized by the speaking-time estimate
// and transcodes it to mp3 so the assembler sees a uniform format
func (s *AudioSynthesizer) writeSilentFallback(text, audioPath string) error {
	duration := EstimateSpeechDuration(text)

	wavPath := strings.TrimSuffix(audioPath, ".mp3") + ".wav"
	f, err := os.Create(wavPath)
	if err != nil {
		return fmt.Errorf("failed to create fallback wav: %w", err)
	}
	if err := writeSilentWAV(f, duration, fallbackSampleRate); err != nil {
		f.Close()
		os.Remove(wavPath)
		return fmt.Errorf("failed to write fallback wav: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close fallback wav: %w", err)
	}
	defer os.Remove(wavPath)

	err = ffmpeg.Input(wavPath).
		Output(audioPath, ffmpeg.KwArgs{"acodec": "mp3"}).
		OverWriteOutput().
		Silent(true).
		Run()
	if err != nil {
		return fmt.Errorf("failed to transcode fallback wav to mp3: %w", err)
	}
	return nil
}

// EstimateSpeechDuration estimates speaking time in seconds at roughly 150
// words per minute, with a 3 second floor
func EstimateSpeechDuration(text string) float64 {
	words := len(strings.Fields(text))
	duration := float64(words) / 2.5
	if duration < 3 {
		return 3
	}
	return duration
}

// writeSilentWAV emits a 16-bit mono PCM WAV of silence
func writeSilentWAV(w io.Writer, durationSec float64, sampleRate int) error {
	samples := int(durationSec * float64(sampleRate))
	dataSize := samples * 2 // 16-bit mono

	var header [44]byte
	copy(header[0:4], "RIFF")
	binary.LittleEndian.PutUint32(header[4:8], uint32(36+dataSize))
	copy(header[8:12], "WAVE")
	copy(header[12:16], "fmt ")
	binary.LittleEndian.PutUint32(header[16:20], 16)                    // PCM chunk size
	binary.LittleEndian.PutUint16(header[20:22], 1)                     // PCM format
	binary.LittleEndian.PutUint16(header[22:24], 1)                     // mono
	binary.LittleEndian.PutUint32(header[24:28], uint32(sampleRate))
	binary.LittleEndian.PutUint32(header[28:32], uint32(sampleRate*2)) // byte rate
	binary.LittleEndian.PutUint16(header[32:34], 2)                    // block align
	binary.LittleEndian.PutUint16(header[34:36], 16)                   // bits per sample
	copy(header[36:40], "data")
	binary.LittleEndian.PutUint32(header[40:44], uint32(dataSize))

	if _, err := w.Write(header[:]); err != nil {
		return err
	}

	// Write silence in chunks to avoid one large allocation
	zeros := make([]byte, 32*1024)
	remaining := dataSize
	for remaining > 0 {
		n := len(zeros)
		if remaining < n {
			n = remaining
		}
		if _, err := w.Write(zeros[:n]); err != nil {
			return err
		}
		remaining -= n
	}
	return nil
}
