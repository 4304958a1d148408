package audio

import (
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"math"
	"time"
)

// Audio format of the speech backend output.
const (
	DefaultSampleRate = 24000
	DefaultChannels   = 1

	bytesPerSample = 2

	// paddingSeconds of silence appended after the samples. Playback
	// engines with a rounding-driven cutoff would otherwise clip the
	// last word.
	paddingSeconds = 0.5
)

// DecodeError reports a PCM payload that cannot be turned into samples.
type DecodeError struct {
	msg string
}

func (e *DecodeError) Error() string {
	return "audio: " + e.msg
}

// Buffer holds normalized float samples per channel, ready for playback.
type Buffer struct {
	// Data[c][i] is sample i of channel c, in [-1.0, 1.0].
	Data       [][]float64
	SampleRate int
}

// Frames returns the per-channel sample count, padding included.
func (b *Buffer) Frames() int {
	if len(b.Data) == 0 {
		return 0
	}
	return len(b.Data[0])
}

func (b *Buffer) Channels() int {
	return len(b.Data)
}

func (b *Buffer) Duration() time.Duration {
	if b.SampleRate <= 0 {
		return 0
	}
	return time.Duration(float64(b.Frames()) / float64(b.SampleRate) * float64(time.Second))
}

// Decode turns a base64 speech payload into raw bytes.
func Decode(payload string) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, &DecodeError{msg: fmt.Sprintf("invalid base64 payload: %v", err)}
	}
	return raw, nil
}

// DecodePCM converts raw little-endian 16-bit interleaved PCM into a
// normalized Buffer with half a second of trailing silence. Sample i of
// channel c is read from flat index i*channels+c and divided by 32768.
func DecodePCM(raw []byte, sampleRate, channels int) (*Buffer, error) {
	if sampleRate <= 0 || channels <= 0 {
		return nil, &DecodeError{msg: fmt.Sprintf("invalid format: %d Hz, %d channels", sampleRate, channels)}
	}
	if len(raw)%bytesPerSample != 0 {
		return nil, &DecodeError{msg: fmt.Sprintf("%d bytes do not align to 16-bit samples", len(raw))}
	}

	frameCount := len(raw) / bytesPerSample / channels
	padding := int(math.Ceil(float64(sampleRate) * paddingSeconds))
	total := frameCount + padding

	data := make([][]float64, channels)
	for c := range data {
		data[c] = make([]float64, total)
		for i := 0; i < frameCount; i++ {
			off := (i*channels + c) * bytesPerSample
			s := int16(binary.LittleEndian.Uint16(raw[off:]))
			data[c][i] = float64(s) / 32768.0
		}
		// the remaining padding frames stay zero
	}

	return &Buffer{Data: data, SampleRate: sampleRate}, nil
}
