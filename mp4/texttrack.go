package mp4

import (
	"bytes"
	"encoding/binary"

	"github.com/atelier-socle/audiomarker/exchange"
	"github.com/atelier-socle/audiomarker/model"
)

// lyricsHandlerType is the mdia/hdlr handler_type this codec writes
// for its synchronized-lyrics text track, and the marker it looks for
// on read to tell that track apart from an ordinary subtitle track.
const lyricsHandlerType = "sbtl"

// chapterHandlerType is the mdia/hdlr handler_type used for the
// chapter text track, matching the QuickTime convention (as opposed
// to 3GPP's "text" subtype name collision risk, this is the same
// string tx3g-based chapter tracks use in practice).
const chapterHandlerType = "text"

// textSample is one timed sample in a text track: startMs is this
// sample's cumulative start time, text its UTF-8 payload.
type textSample struct {
	startMs int64
	text    string
}

// sampleBytes returns the tx3g sample payload: a 2-byte big-endian
// length followed by the UTF-8 text, matching what parseTextSample
// expects on read.
func (s textSample) sampleBytes() []byte {
	body := []byte(s.text)
	buf := make([]byte, 2+len(body))
	binary.BigEndian.PutUint16(buf, uint16(len(body)))
	copy(buf[2:], body)
	return buf
}

func concatTextSamples(samples []textSample) []byte {
	var buf bytes.Buffer
	for _, s := range samples {
		buf.Write(s.sampleBytes())
	}
	return buf.Bytes()
}

// chapterTextSamples converts a ChapterList into the text track
// sample form: one sample per chapter, in chapter order.
func chapterTextSamples(chapters *model.ChapterList) []textSample {
	all := chapters.All()
	samples := make([]textSample, 0, len(all))
	for _, ch := range all {
		samples = append(samples, textSample{startMs: ch.Start.Milliseconds(), text: ch.Title})
	}
	return samples
}

// renderLyricsTrackText applies the smart-storage rule: a single
// language track with no karaoke and no speaker labels renders as
// compact LRC; anything richer renders as full-fidelity TTML.
func renderLyricsTrackText(tracks []model.SynchronizedLyrics) string {
	if len(tracks) == 0 {
		return ""
	}
	if len(tracks) == 1 && !tracks[0].HasKaraoke() && !tracks[0].HasSpeakers() {
		return exchange.EmitLRCLyrics(tracks[0].Sorted())
	}

	sorted := make([]model.SynchronizedLyrics, len(tracks))
	for i, t := range tracks {
		sorted[i] = t.Sorted()
	}
	return exchange.EmitTTMLLyrics(sorted)
}

// sampleTiming holds the stts deltas (track-timescale units) derived
// from a set of samples' millisecond start times.
type sampleTiming struct {
	deltas     []uint32
	totalUnits uint32
}

func computeSampleTiming(samples []textSample, timescale uint32, fallbackTotalMs int64) sampleTiming {
	if len(samples) == 0 {
		return sampleTiming{}
	}

	deltas := make([]uint32, len(samples))
	for i := 0; i < len(samples)-1; i++ {
		deltaMs := samples[i+1].startMs - samples[i].startMs
		if deltaMs < 0 {
			deltaMs = 0
		}
		deltas[i] = msToUnits(deltaMs, timescale)
	}

	last := len(samples) - 1
	if len(samples) == 1 {
		deltas[last] = msToUnits(fallbackTotalMs, timescale)
	} else {
		deltas[last] = deltas[last-1]
	}
	if deltas[last] == 0 {
		deltas[last] = timescale // at least one second, never a zero-duration final sample
	}

	var total uint32
	for _, d := range deltas {
		total += d
	}
	return sampleTiming{deltas: deltas, totalUnits: total}
}

func msToUnits(ms int64, timescale uint32) uint32 {
	if ms <= 0 {
		return 0
	}
	return uint32((ms * int64(timescale)) / 1000)
}

// buildTextTrack builds a complete tx3g text track (tkhd/mdia/minf/
// stbl) holding samples, one sample per chunk. Chunk offsets are
// written as placeholderBase+trackPrefixOffset+<running total>, a
// deliberately fictitious co64 value: the write path's single
// adjustChunkOffsets delta pass (shared with every pre-existing track)
// turns it into the real absolute file offset once the final mdat
// position is known, so this function never needs to know where in
// the file it will end up.
func buildTextTrack(trackID uint32, timescale uint32, handlerType, handlerName string, samples []textSample, fallbackTotalMs int64, placeholderBase int64, trackPrefixOffset int64) []byte {
	sampleData := make([][]byte, len(samples))
	offsets := make([]int64, len(samples))
	cumulative := trackPrefixOffset
	for i, s := range samples {
		sampleData[i] = s.sampleBytes()
		offsets[i] = placeholderBase + cumulative
		cumulative += int64(len(sampleData[i]))
	}

	timing := computeSampleTiming(samples, timescale, fallbackTotalMs)

	var stblContent bytes.Buffer
	stblContent.Write(buildTx3gStsd())
	stblContent.Write(buildStts(timing.deltas))
	stblContent.Write(buildStsc())
	stblContent.Write(buildStsz(sampleData))
	stblContent.Write(buildCo64(offsets))
	stbl := buildBox("stbl", stblContent.Bytes())

	var minfContent bytes.Buffer
	minfContent.Write(buildBox("nmhd", []byte{0, 0, 0, 0}))
	minfContent.Write(buildDinf())
	minfContent.Write(stbl)
	minf := buildBox("minf", minfContent.Bytes())

	var mdiaContent bytes.Buffer
	mdiaContent.Write(buildMdhd(timescale, timing.totalUnits))
	mdiaContent.Write(buildHdlr(handlerType, handlerName))
	mdiaContent.Write(minf)
	mdia := buildBox("mdia", mdiaContent.Bytes())

	var trakContent bytes.Buffer
	trakContent.Write(buildTkhd(trackID, timing.totalUnits))
	trakContent.Write(mdia)
	return buildBox("trak", trakContent.Bytes())
}

// buildTkhd builds a version-0 track header: non-visual (zero width
// and height, as common muxers emit for chapter/subtitle tracks),
// identity transform matrix, enabled+in-movie+in-preview flags.
func buildTkhd(trackID uint32, durationUnits uint32) []byte {
	content := make([]byte, 84)
	content[3] = 0x07 // flags: enabled | in movie | in preview
	binary.BigEndian.PutUint32(content[12:16], trackID)
	binary.BigEndian.PutUint32(content[20:24], durationUnits)
	binary.BigEndian.PutUint32(content[40:44], 0x00010000) // matrix a = 1.0
	binary.BigEndian.PutUint32(content[56:60], 0x00010000) // matrix d = 1.0
	binary.BigEndian.PutUint32(content[72:76], 0x40000000) // matrix w = 1.0
	return buildBox("tkhd", content)
}

func buildMdhd(timescale uint32, durationUnits uint32) []byte {
	content := make([]byte, 24)
	binary.BigEndian.PutUint32(content[12:16], timescale)
	binary.BigEndian.PutUint32(content[16:20], durationUnits)
	binary.BigEndian.PutUint16(content[20:22], 0x55C4) // packed ISO-639-2 "und"
	return buildBox("mdhd", content)
}

func buildHdlr(handlerType, name string) []byte {
	nameBytes := append([]byte(name), 0)
	content := make([]byte, 4+4+4+12+len(nameBytes))
	copy(content[8:12], handlerType)
	copy(content[24:], nameBytes)
	return buildBox("hdlr", content)
}

// buildTx3gStsd builds a sample description table with a single
// minimal tx3g (3GPP Timed Text) entry: the same sample-entry type
// chapter/subtitle tracks produced by common encoders use for plain
// [u16 length][utf8] samples.
func buildTx3gStsd() []byte {
	tx3g := make([]byte, 38)
	binary.BigEndian.PutUint16(tx3g[6:8], 1) // data_reference_index
	binary.BigEndian.PutUint16(tx3g[30:32], 1) // style record font-ID
	tx3g[33] = 12                              // style record font size
	tx3g[34], tx3g[35], tx3g[36], tx3g[37] = 0xFF, 0xFF, 0xFF, 0xFF
	tx3gBox := buildBox("tx3g", tx3g)

	var content bytes.Buffer
	content.Write([]byte{0, 0, 0, 0})
	countBuf := make([]byte, 4)
	binary.BigEndian.PutUint32(countBuf, 1)
	content.Write(countBuf)
	content.Write(tx3gBox)
	return buildBox("stsd", content.Bytes())
}

func buildStts(deltas []uint32) []byte {
	var content bytes.Buffer
	content.Write([]byte{0, 0, 0, 0})
	countBuf := make([]byte, 4)
	binary.BigEndian.PutUint32(countBuf, uint32(len(deltas)))
	content.Write(countBuf)
	for _, d := range deltas {
		entry := make([]byte, 8)
		binary.BigEndian.PutUint32(entry[0:4], 1)
		binary.BigEndian.PutUint32(entry[4:8], d)
		content.Write(entry)
	}
	return buildBox("stts", content.Bytes())
}

// buildStsc always describes one sample per chunk: simplest layout
// that calculateSampleOffsets and the write-side co64 table agree on.
func buildStsc() []byte {
	var content bytes.Buffer
	content.Write([]byte{0, 0, 0, 0})
	countBuf := make([]byte, 4)
	binary.BigEndian.PutUint32(countBuf, 1)
	content.Write(countBuf)
	entry := make([]byte, 12)
	binary.BigEndian.PutUint32(entry[0:4], 1)
	binary.BigEndian.PutUint32(entry[4:8], 1)
	binary.BigEndian.PutUint32(entry[8:12], 1)
	content.Write(entry)
	return buildBox("stsc", content.Bytes())
}

func buildStsz(sampleData [][]byte) []byte {
	var content bytes.Buffer
	content.Write([]byte{0, 0, 0, 0})
	content.Write([]byte{0, 0, 0, 0}) // sample_size=0: per-sample table follows
	countBuf := make([]byte, 4)
	binary.BigEndian.PutUint32(countBuf, uint32(len(sampleData)))
	content.Write(countBuf)
	for _, s := range sampleData {
		entry := make([]byte, 4)
		binary.BigEndian.PutUint32(entry, uint32(len(s)))
		content.Write(entry)
	}
	return buildBox("stsz", content.Bytes())
}

func buildCo64(offsets []int64) []byte {
	var content bytes.Buffer
	content.Write([]byte{0, 0, 0, 0})
	countBuf := make([]byte, 4)
	binary.BigEndian.PutUint32(countBuf, uint32(len(offsets)))
	content.Write(countBuf)
	for _, off := range offsets {
		entry := make([]byte, 8)
		binary.BigEndian.PutUint64(entry, uint64(off))
		content.Write(entry)
	}
	return buildBox("co64", content.Bytes())
}

// buildDinf builds the minimal data-information box: one
// self-contained "url " data reference, as every muxer emits for
// tracks whose samples live in the same file.
func buildDinf() []byte {
	urlBox := buildBox("url ", []byte{0, 0, 0, 1}) // flags: self-contained
	var drefContent bytes.Buffer
	drefContent.Write([]byte{0, 0, 0, 0})
	countBuf := make([]byte, 4)
	binary.BigEndian.PutUint32(countBuf, 1)
	drefContent.Write(countBuf)
	drefContent.Write(urlBox)
	return buildBox("dinf", buildBox("dref", drefContent.Bytes()))
}

// buildTref builds a tref box with a single chap reference, or nil if
// chapterTrackID is zero (no chapter track to reference).
func buildTref(chapterTrackID uint32) []byte {
	if chapterTrackID == 0 {
		return nil
	}
	body := make([]byte, 4)
	binary.BigEndian.PutUint32(body, chapterTrackID)
	return buildBox("tref", buildBox("chap", body))
}

// patchSoundTrackRef rewrites (or removes) the tref/chap child of a
// sound track's raw box bytes, leaving every other child untouched.
func patchSoundTrackRef(trakRaw []byte, chapterTrackID uint32) []byte {
	content := boxContent(trakRaw)
	var out bytes.Buffer
	wroteTref := false

	for _, child := range readChildBoxes(content) {
		if string(child.Type[:]) == "tref" {
			if tref := buildTref(chapterTrackID); tref != nil {
				out.Write(tref)
			}
			wroteTref = true
			continue
		}
		out.Write(child.Raw)
	}
	if !wroteTref {
		if tref := buildTref(chapterTrackID); tref != nil {
			out.Write(tref)
		}
	}

	return buildBox("trak", out.Bytes())
}

// boxContent strips a single box's header (8 or 16 bytes for the
// 64-bit extended-size form), returning its payload.
func boxContent(raw []byte) []byte {
	if len(raw) < 8 {
		return nil
	}
	size := binary.BigEndian.Uint32(raw[:4])
	if size == 1 {
		if len(raw) < 16 {
			return nil
		}
		return raw[16:]
	}
	return raw[8:]
}

// trakTrackID reads a trak box's tkhd track_ID field.
func trakTrackID(trakContent []byte) uint32 {
	for _, child := range readChildBoxes(trakContent) {
		if string(child.Type[:]) != "tkhd" || len(child.Data) < 16 {
			continue
		}
		if child.Data[0] == 1 { // version 1: 8-byte creation/modification times
			if len(child.Data) >= 24 {
				return binary.BigEndian.Uint32(child.Data[20:24])
			}
			return 0
		}
		return binary.BigEndian.Uint32(child.Data[12:16])
	}
	return 0
}

// isSoundTrak reports whether a trak box's sample description
// contains an mp4a entry.
func isSoundTrak(trakContent []byte) bool {
	for _, mdia := range readChildBoxes(trakContent) {
		if string(mdia.Type[:]) != "mdia" {
			continue
		}
		for _, minf := range readChildBoxes(mdia.Data) {
			if string(minf.Type[:]) != "minf" {
				continue
			}
			for _, stbl := range readChildBoxes(minf.Data) {
				if string(stbl.Type[:]) != "stbl" {
					continue
				}
				for _, stsd := range readChildBoxes(stbl.Data) {
					if string(stsd.Type[:]) != "stsd" || len(stsd.Data) < 8 {
						continue
					}
					for _, entry := range readChildBoxes(stsd.Data[8:]) {
						if string(entry.Type[:]) == "mp4a" {
							return true
						}
					}
				}
			}
		}
	}
	return false
}

// isSubtitleTrak reports whether a trak box's handler type matches
// lyricsHandlerType, identifying a track this codec wrote.
func isSubtitleTrak(trakContent []byte) bool {
	for _, mdia := range readChildBoxes(trakContent) {
		if string(mdia.Type[:]) != "mdia" {
			continue
		}
		for _, hdlr := range readChildBoxes(mdia.Data) {
			if string(hdlr.Type[:]) == "hdlr" && len(hdlr.Data) >= 12 && string(hdlr.Data[8:12]) == lyricsHandlerType {
				return true
			}
		}
	}
	return false
}

// extractMovieTimescale reads moov/mvhd's timescale field, defaulting
// to 1000 (matching the fallback readChapterSamples uses on read) if
// absent or using an unsupported field width.
func extractMovieTimescale(moovContent []byte) uint32 {
	for _, child := range readChildBoxes(moovContent) {
		if string(child.Type[:]) != "mvhd" || len(child.Data) < 4 {
			continue
		}
		if child.Data[0] == 1 {
			if len(child.Data) >= 24 {
				return binary.BigEndian.Uint32(child.Data[20:24])
			}
			return 1000
		}
		if len(child.Data) >= 16 {
			return binary.BigEndian.Uint32(child.Data[12:16])
		}
	}
	return 1000
}

// extractMovieDurationMs reads moov/mvhd's duration, converted to
// milliseconds using its own timescale. Used as the fallback length
// for a single-sample text track (one chapter, or any lyrics track,
// which is always written as one sample spanning playback).
func extractMovieDurationMs(moovContent []byte) int64 {
	for _, child := range readChildBoxes(moovContent) {
		if string(child.Type[:]) != "mvhd" || len(child.Data) < 4 {
			continue
		}
		if child.Data[0] == 1 {
			if len(child.Data) < 32 {
				return 0
			}
			timescale := binary.BigEndian.Uint32(child.Data[20:24])
			duration := binary.BigEndian.Uint64(child.Data[24:32])
			if timescale == 0 {
				return 0
			}
			return int64(duration) * 1000 / int64(timescale)
		}
		if len(child.Data) < 20 {
			return 0
		}
		timescale := binary.BigEndian.Uint32(child.Data[12:16])
		duration := binary.BigEndian.Uint32(child.Data[16:20])
		if timescale == 0 {
			return 0
		}
		return int64(duration) * 1000 / int64(timescale)
	}
	return 0
}

// trakChapterRef reads a trak box's tref/chap child, returning the
// referenced track ID or 0 if no chapter reference exists.
func trakChapterRef(trakContent []byte) uint32 {
	for _, tref := range readChildBoxes(trakContent) {
		if string(tref.Type[:]) != "tref" {
			continue
		}
		for _, chap := range readChildBoxes(tref.Data) {
			if string(chap.Type[:]) == "chap" && len(chap.Data) >= 4 {
				return binary.BigEndian.Uint32(chap.Data[:4])
			}
		}
	}
	return 0
}
