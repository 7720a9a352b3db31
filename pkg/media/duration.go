package media

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/tcolgate/mp3"
)

// AudioDuration measures the playing time of an uploaded audio file in whole
// seconds, rounded to nearest. The format is chosen by content type.
func AudioDuration(data []byte, contentType string) (int, error) {
	switch normalizeMIME(contentType) {
	case "audio/wav", "audio/x-wav", "audio/wave":
		return wavDuration(data)
	case "audio/mpeg", "audio/mp3":
		return mp3Duration(data)
	default:
		// octet-stream uploads: sniff WAV first, fall back to MP3.
		if d, err := wavDuration(data); err == nil {
			return d, nil
		}
		return mp3Duration(data)
	}
}

// wavDuration walks the RIFF chunks for the byte rate and the audio payload
// size; duration is payload size over byte rate.
func wavDuration(data []byte) (int, error) {
	if len(data) < 12 || !bytes.Equal(data[0:4], []byte("RIFF")) || !bytes.Equal(data[8:12], []byte("WAVE")) {
		return 0, errors.New("not a RIFF/WAVE file")
	}

	var byteRate uint32
	var dataSize uint32
	offset := 12
	for offset+8 <= len(data) {
		chunkID := data[offset : offset+4]
		chunkSize := binary.LittleEndian.Uint32(data[offset+4 : offset+8])
		body := offset + 8

		switch {
		case bytes.Equal(chunkID, []byte("fmt ")):
			if body+16 > len(data) {
				return 0, errors.New("truncated fmt chunk")
			}
			byteRate = binary.LittleEndian.Uint32(data[body+8 : body+12])
		case bytes.Equal(chunkID, []byte("data")):
			dataSize = chunkSize
		}

		// Chunks are word-aligned.
		offset = body + int(chunkSize)
		if chunkSize%2 == 1 {
			offset++
		}
	}

	if byteRate == 0 {
		return 0, errors.New("wav file missing byte rate")
	}
	if dataSize == 0 {
		return 0, errors.New("wav file missing audio data")
	}
	return int(math.Round(float64(dataSize) / float64(byteRate))), nil
}

// mp3Duration sums frame durations across the file.
func mp3Duration(data []byte) (int, error) {
	decoder := mp3.NewDecoder(bytes.NewReader(data))

	var total time.Duration
	var frame mp3.Frame
	skipped := 0
	frames := 0
	for {
		err := decoder.Decode(&frame, &skipped)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if frames == 0 {
				return 0, fmt.Errorf("decoding mp3: %w", err)
			}
			// Trailing garbage after valid frames (ID3 tags, truncation)
			// doesn't invalidate the measured duration.
			break
		}
		total += frame.Duration()
		frames++
	}
	if frames == 0 {
		return 0, errors.New("no mp3 frames found")
	}
	return int(total.Round(time.Second) / time.Second), nil
}
