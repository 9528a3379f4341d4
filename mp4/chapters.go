package mp4

import (
	"bytes"
	"encoding/binary"
	"io"
	"strings"

	gomp4 "github.com/abema/go-mp4"
	"github.com/atelier-socle/audiomarker/exchange"
	"github.com/atelier-socle/audiomarker/model"
	"github.com/pkg/errors"
)

// RawChapter is a chapter as read from either chapter storage
// convention, before being mapped onto model.ChapterList.
type RawChapter struct {
	Title   string
	StartMs int64
	HasEnd  bool
	EndMs   int64
}

// readChapters reads chapters from an M4B/M4A file, preferring
// QuickTime text-track chapters (tref/chap) and falling back to the
// Nero-style chpl box when no chapter track is present.
func readChapters(r io.ReadSeeker) ([]RawChapter, error) {
	chapters, err := readQuickTimeChapters(r)
	if err == nil && len(chapters) > 0 {
		return chapters, nil
	}

	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, errors.WithStack(err)
	}
	return readNeroChapters(r)
}

// readNeroChapters reads the Nero-format chpl box at moov/udta/chpl.
func readNeroChapters(r io.ReadSeeker) ([]RawChapter, error) {
	var chplData []byte

	_, err := gomp4.ReadBoxStructure(r, func(h *gomp4.ReadHandle) (interface{}, error) {
		switch h.BoxInfo.Type {
		case BoxTypeMoov, BoxTypeUdta:
			return h.Expand()
		case BoxTypeChpl:
			var buf bytes.Buffer
			if _, err := h.ReadData(&buf); err != nil {
				return nil, err
			}
			chplData = buf.Bytes()
			return nil, nil
		default:
			return nil, nil
		}
	})
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return parseChpl(chplData), nil
}

// parseChpl parses a chpl box payload (this codec's read-only Nero
// compatibility path): [1 version][3 flags][4 or 1 reserved][4 or 1
// count], then per chapter [8 byte 100ns timestamp][1 byte title
// length][title].
func parseChpl(data []byte) []RawChapter {
	if len(data) < 8 {
		return nil
	}

	version := data[0]
	offset := 4

	var count int
	if version == 0 {
		offset += 4
		if len(data) < offset+4 {
			return nil
		}
		count = int(binary.BigEndian.Uint32(data[offset:]))
		offset += 4
	} else {
		offset++
		if len(data) < offset+1 {
			return nil
		}
		count = int(data[offset])
		offset++
	}

	var chapters []RawChapter
	for i := 0; i < count && offset < len(data)-9; i++ {
		raw100ns := binary.BigEndian.Uint64(data[offset : offset+8])
		titleLen := int(data[offset+8])
		offset += 9
		if offset+titleLen > len(data) {
			break
		}
		title := string(data[offset : offset+titleLen])
		offset += titleLen

		chapters = append(chapters, RawChapter{
			Title:   title,
			StartMs: int64(raw100ns / 10_000), // 100ns units -> ms
		})
	}

	for i := 0; i < len(chapters)-1; i++ {
		chapters[i].HasEnd = true
		chapters[i].EndMs = chapters[i+1].StartMs
	}

	return chapters
}

type chapterTrackInfo struct {
	timescale       uint32
	sampleDeltas    []uint32
	sampleSizes     []uint32
	chunkOffsets    []uint64
	samplesPerChunk []stscEntry
}

type stscEntry struct {
	firstChunk      uint32
	samplesPerChunk uint32
}

// readQuickTimeChapters reads chapters stored as a dedicated text
// track referenced from the audio track's tref/chap box.
func readQuickTimeChapters(r io.ReadSeeker) ([]RawChapter, error) {
	chapterTrackID, err := findTrefChapterTrackID(r)
	if err != nil || chapterTrackID == 0 {
		return nil, err
	}

	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, errors.WithStack(err)
	}

	trackInfo, movieTimescale, err := scanTrackSamples(r, chapterTrackID)
	if err != nil || trackInfo == nil || len(trackInfo.sampleSizes) == 0 {
		return nil, err
	}

	return readChapterSamples(r, trackInfo, movieTimescale), nil
}

// findTrefChapterTrackID walks moov/trak/tref looking for a chap
// reference, returning the referenced track's ID (0 if none found).
func findTrefChapterTrackID(r io.ReadSeeker) (uint32, error) {
	var chapterTrackID uint32

	_, err := gomp4.ReadBoxStructure(r, func(h *gomp4.ReadHandle) (interface{}, error) {
		switch h.BoxInfo.Type {
		case BoxTypeMoov, BoxTypeTrak:
			return h.Expand()
		case BoxTypeTref:
			var buf bytes.Buffer
			if _, err := h.ReadData(&buf); err != nil {
				return nil, err
			}
			for _, child := range readChildBoxes(buf.Bytes()) {
				if string(child.Type[:]) == "chap" && len(child.Data) >= 4 {
					chapterTrackID = binary.BigEndian.Uint32(child.Data)
				}
			}
			return nil, nil
		default:
			return nil, nil
		}
	})
	if err != nil {
		return 0, errors.WithStack(err)
	}
	return chapterTrackID, nil
}

// findLyricsTrackID walks moov/trak/mdia/hdlr looking for the
// subtitle-handler track this codec writes synchronized lyrics into,
// returning its track ID (0 if none found).
func findLyricsTrackID(r io.ReadSeeker) (uint32, error) {
	var lyricsTrackID, currentTrackID uint32

	_, err := gomp4.ReadBoxStructure(r, func(h *gomp4.ReadHandle) (interface{}, error) {
		switch h.BoxInfo.Type {
		case BoxTypeMoov, BoxTypeTrak, BoxTypeMdia:
			return h.Expand()
		case BoxTypeTkhd:
			payload, _, err := h.ReadPayload()
			if err != nil {
				return nil, err
			}
			if tkhd, ok := payload.(*gomp4.Tkhd); ok {
				currentTrackID = tkhd.TrackID
			}
			return nil, nil
		case BoxTypeHdlr:
			var buf bytes.Buffer
			if _, err := h.ReadData(&buf); err != nil {
				return nil, err
			}
			data := buf.Bytes()
			if len(data) >= 12 && string(data[8:12]) == lyricsHandlerType {
				lyricsTrackID = currentTrackID
			}
			return nil, nil
		default:
			return nil, nil
		}
	})
	if err != nil {
		return 0, errors.WithStack(err)
	}
	return lyricsTrackID, nil
}

// scanTrackSamples walks moov once, collecting the movie timescale
// from mvhd and the sample-table shape of the trak whose tkhd matches
// targetTrackID. Shared by the chapter and lyrics text-track readers.
func scanTrackSamples(r io.ReadSeeker, targetTrackID uint32) (*chapterTrackInfo, uint32, error) {
	var movieTimescale uint32
	var trackInfo *chapterTrackInfo
	var inTarget bool

	_, err := gomp4.ReadBoxStructure(r, func(h *gomp4.ReadHandle) (interface{}, error) {
		switch h.BoxInfo.Type {
		case BoxTypeMoov:
			return h.Expand()
		case BoxTypeMvhd:
			payload, _, err := h.ReadPayload()
			if err != nil {
				return nil, err
			}
			if mvhd, ok := payload.(*gomp4.Mvhd); ok {
				movieTimescale = mvhd.Timescale
			}
			return nil, nil
		case BoxTypeTrak:
			inTarget = false
			return h.Expand()
		case BoxTypeTkhd:
			payload, _, err := h.ReadPayload()
			if err != nil {
				return nil, err
			}
			if tkhd, ok := payload.(*gomp4.Tkhd); ok && tkhd.TrackID == targetTrackID {
				inTarget = true
				trackInfo = &chapterTrackInfo{}
			}
			return nil, nil
		case BoxTypeMdia, BoxTypeMinf, BoxTypeStbl:
			if inTarget {
				return h.Expand()
			}
			return nil, nil
		case BoxTypeMdhd:
			if inTarget && trackInfo != nil {
				payload, _, err := h.ReadPayload()
				if err != nil {
					return nil, err
				}
				if mdhd, ok := payload.(*gomp4.Mdhd); ok {
					trackInfo.timescale = mdhd.Timescale
				}
			}
			return nil, nil
		case BoxTypeStts:
			if inTarget && trackInfo != nil {
				payload, _, err := h.ReadPayload()
				if err != nil {
					return nil, err
				}
				if stts, ok := payload.(*gomp4.Stts); ok {
					for _, entry := range stts.Entries {
						for i := uint32(0); i < entry.SampleCount; i++ {
							trackInfo.sampleDeltas = append(trackInfo.sampleDeltas, entry.SampleDelta)
						}
					}
				}
			}
			return nil, nil
		case BoxTypeStsz:
			if inTarget && trackInfo != nil {
				payload, _, err := h.ReadPayload()
				if err != nil {
					return nil, err
				}
				if stsz, ok := payload.(*gomp4.Stsz); ok {
					if stsz.SampleSize > 0 {
						for i := uint32(0); i < stsz.SampleCount; i++ {
							trackInfo.sampleSizes = append(trackInfo.sampleSizes, stsz.SampleSize)
						}
					} else {
						trackInfo.sampleSizes = stsz.EntrySize
					}
				}
			}
			return nil, nil
		case BoxTypeStsc:
			if inTarget && trackInfo != nil {
				payload, _, err := h.ReadPayload()
				if err != nil {
					return nil, err
				}
				if stsc, ok := payload.(*gomp4.Stsc); ok {
					for _, entry := range stsc.Entries {
						trackInfo.samplesPerChunk = append(trackInfo.samplesPerChunk, stscEntry{
							firstChunk:      entry.FirstChunk,
							samplesPerChunk: entry.SamplesPerChunk,
						})
					}
				}
			}
			return nil, nil
		case BoxTypeStco:
			if inTarget && trackInfo != nil {
				payload, _, err := h.ReadPayload()
				if err != nil {
					return nil, err
				}
				if stco, ok := payload.(*gomp4.Stco); ok {
					for _, off := range stco.ChunkOffset {
						trackInfo.chunkOffsets = append(trackInfo.chunkOffsets, uint64(off))
					}
				}
			}
			return nil, nil
		case BoxTypeCo64:
			if inTarget && trackInfo != nil {
				payload, _, err := h.ReadPayload()
				if err != nil {
					return nil, err
				}
				if co64, ok := payload.(*gomp4.Co64); ok {
					trackInfo.chunkOffsets = co64.ChunkOffset
				}
			}
			return nil, nil
		default:
			return nil, nil
		}
	})
	if err != nil {
		return nil, 0, errors.WithStack(err)
	}
	return trackInfo, movieTimescale, nil
}

func readChapterSamples(r io.ReadSeeker, info *chapterTrackInfo, movieTimescale uint32) []RawChapter {
	if len(info.chunkOffsets) == 0 || len(info.sampleSizes) == 0 {
		return nil
	}

	timescale := info.timescale
	if timescale == 0 {
		timescale = movieTimescale
	}
	if timescale == 0 {
		timescale = 1000
	}

	sampleOffsets := calculateSampleOffsets(info)

	var chapters []RawChapter
	var currentTime uint64

	for i, size := range info.sampleSizes {
		if i >= len(sampleOffsets) {
			break
		}

		if _, err := r.Seek(int64(sampleOffsets[i]), io.SeekStart); err != nil {
			continue
		}
		sampleData := make([]byte, size)
		if _, err := io.ReadFull(r, sampleData); err != nil {
			continue
		}

		startMs := int64(float64(currentTime) / float64(timescale) * 1000)
		chapters = append(chapters, RawChapter{
			Title:   parseTextSample(sampleData),
			StartMs: startMs,
		})

		if i < len(info.sampleDeltas) {
			currentTime += uint64(info.sampleDeltas[i])
		}
	}

	for i := 0; i < len(chapters)-1; i++ {
		chapters[i].HasEnd = true
		chapters[i].EndMs = chapters[i+1].StartMs
	}

	return chapters
}

// readLyricsTrack reads the synchronized-lyrics text track (if any),
// sniffing its concatenated sample text as TTML or LRC the same way
// the write path's smart-storage rule chose between them.
func readLyricsTrack(r io.ReadSeeker) ([]model.SynchronizedLyrics, error) {
	trackID, err := findLyricsTrackID(r)
	if err != nil || trackID == 0 {
		return nil, err
	}

	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, errors.WithStack(err)
	}

	trackInfo, _, err := scanTrackSamples(r, trackID)
	if err != nil || trackInfo == nil || len(trackInfo.sampleSizes) == 0 {
		return nil, err
	}

	sampleOffsets := calculateSampleOffsets(trackInfo)

	var text strings.Builder
	for i, size := range trackInfo.sampleSizes {
		if i >= len(sampleOffsets) {
			break
		}
		if _, err := r.Seek(int64(sampleOffsets[i]), io.SeekStart); err != nil {
			continue
		}
		data := make([]byte, size)
		if _, err := io.ReadFull(r, data); err != nil {
			continue
		}
		text.WriteString(parseTextSample(data))
		text.WriteString("\n")
	}

	return parseLyricsTrackText(strings.TrimSpace(text.String()))
}

func parseLyricsTrackText(text string) ([]model.SynchronizedLyrics, error) {
	if text == "" {
		return nil, nil
	}
	if strings.HasPrefix(text, "<") {
		return exchange.ParseTTMLLyrics(text)
	}

	sl, err := exchange.ParseLRCLyrics(text, "")
	if err != nil {
		return nil, err
	}
	if sl == nil {
		return nil, nil
	}
	return []model.SynchronizedLyrics{*sl}, nil
}

func calculateSampleOffsets(info *chapterTrackInfo) []uint64 {
	if len(info.chunkOffsets) == 0 {
		return nil
	}

	offsets := make([]uint64, 0, len(info.sampleSizes))
	sampleIndex := 0
	chunkNum := uint32(0)

	for _, chunkOffset := range info.chunkOffsets {
		chunkNum++
		samplesInChunk := uint32(1)
		for _, entry := range info.samplesPerChunk {
			if chunkNum >= entry.firstChunk {
				samplesInChunk = entry.samplesPerChunk
			}
		}

		current := chunkOffset
		for s := uint32(0); s < samplesInChunk && sampleIndex < len(info.sampleSizes); s++ {
			offsets = append(offsets, current)
			current += uint64(info.sampleSizes[sampleIndex])
			sampleIndex++
		}
	}

	return offsets
}

// parseTextSample extracts a QuickTime/tx3g text sample's string: [2
// byte length][text][optional style atoms].
func parseTextSample(data []byte) string {
	if len(data) < 2 {
		return ""
	}
	n := int(binary.BigEndian.Uint16(data[0:2]))
	if n > len(data)-2 {
		n = len(data) - 2
	}
	if n <= 0 {
		return ""
	}
	return string(data[2 : 2+n])
}
