package mp4

import (
	"bytes"
	"encoding/binary"
	"os"

	gomp4 "github.com/abema/go-mp4"
	"github.com/atelier-socle/audiomarker/fileio"
	"github.com/atelier-socle/audiomarker/model"
	"github.com/pkg/errors"
)

// WriteMetadata rewrites the moov/udta/meta/ilst metadata atom, the
// chapter text track and the lyrics text track of the MP4 file at
// path, preserving every other atom verbatim (including any legacy
// udta/chpl Nero chapter atom already present, which is never
// regenerated, only carried forward byte for byte). When the
// rewritten moov box has a different size than the original, and moov
// precedes mdat in the file (the common, non-faststart-safe layout
// produced by most encoders), every stco/co64 chunk-offset table is
// adjusted by the combined size delta so sample data addresses keep
// resolving into mdat; a 32-bit stco table is upgraded to 64-bit co64
// if an adjusted offset no longer fits in 32 bits. New chapter/lyrics
// sample bytes are prepended inside the mdat box and folded into the
// same delta, so one offset-fixup pass resolves both the pre-existing
// tracks' offsets and the freshly written tracks' offsets.
func WriteMetadata(path string, info model.AudioFileInfo) error {
	input, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "mp4: read %s", path)
	}

	output, err := rebuildFile(input, info)
	if err != nil {
		return err
	}

	tmpPath := path + ".audiomarker-mp4-tmp"
	if err := os.WriteFile(tmpPath, output, 0o644); err != nil {
		return errors.Wrap(err, "mp4: write temp file")
	}
	return fileio.AtomicReplace(tmpPath, path)
}

func rebuildFile(input []byte, info model.AudioFileInfo) ([]byte, error) {
	topLevel := readChildBoxes(input)

	var moovBox, mdatBox *rawChildBox
	var moovOffset, mdatOffset int64 = -1, -1
	offset := int64(0)
	for i := range topLevel {
		switch string(topLevel[i].Type[:]) {
		case "moov":
			moovBox = &topLevel[i]
			moovOffset = offset
		case "mdat":
			mdatBox = &topLevel[i]
			mdatOffset = offset
		}
		offset += int64(len(topLevel[i].Raw))
	}
	if moovBox == nil {
		return nil, errors.New("mp4: no moov box found")
	}

	var oldMdatDataStart int64
	canInsertTracks := mdatBox != nil && moovOffset < mdatOffset
	if canInsertTracks {
		oldMdatDataStart = mdatOffset + int64(mdatHeaderLen(mdatBox.Raw))
	}

	newMoovContent, prefix := rebuildMoovContent(moovBox.Data, info, oldMdatDataStart, canInsertTracks)

	oldMoovBox := moovBox.Raw
	newMoovBox := buildBox("moov", newMoovContent)
	delta := int64(len(newMoovBox)) - int64(len(oldMoovBox)) + int64(len(prefix))

	if delta != 0 && canInsertTracks {
		newMoovContent = adjustChunkOffsets(newMoovContent, delta)
		newMoovBox = buildBox("moov", newMoovContent)
	}

	var out bytes.Buffer
	for i := range topLevel {
		switch {
		case string(topLevel[i].Type[:]) == "moov":
			out.Write(newMoovBox)
		case string(topLevel[i].Type[:]) == "mdat" && len(prefix) > 0:
			headerLen := mdatHeaderLen(topLevel[i].Raw)
			var newData bytes.Buffer
			newData.Write(prefix)
			newData.Write(topLevel[i].Raw[headerLen:])
			out.Write(buildBox("mdat", newData.Bytes()))
		default:
			out.Write(topLevel[i].Raw)
		}
	}

	return out.Bytes(), nil
}

// mdatHeaderLen reports an mdat box's header length: 16 bytes for the
// 64-bit extended-size form (32-bit size field == 1), 8 otherwise.
func mdatHeaderLen(raw []byte) int {
	if len(raw) >= 8 && binary.BigEndian.Uint32(raw[:4]) == 1 {
		return 16
	}
	return 8
}

// rebuildMoovContent walks moov's direct children. udta is rebuilt in
// place (its meta/ilst holds the iTunes tag; any existing chpl is
// preserved verbatim). The chapter and lyrics text tracks are dropped
// and rebuilt from the current data model whenever canInsertTracks
// allows writing new sample bytes into mdat; every other trak and
// every other child box is copied through unchanged. Returns the new
// moov content and the sample-data prefix (chapter samples then
// lyrics samples) that must be prepended to mdat's data.
func rebuildMoovContent(content []byte, info model.AudioFileInfo, oldMdatDataStart int64, canInsertTracks bool) ([]byte, []byte) {
	children := readChildBoxes(content)
	movieTimescale := extractMovieTimescale(content)
	fallbackMs := extractMovieDurationMs(content)

	var maxTrackID uint32
	var existingChapterTrackID, existingLyricsTrackID uint32
	for _, child := range children {
		if string(child.Type[:]) != "trak" {
			continue
		}
		id := trakTrackID(child.Data)
		if id > maxTrackID {
			maxTrackID = id
		}
		if isSoundTrak(child.Data) {
			existingChapterTrackID = trakChapterRef(child.Data)
		}
		if isSubtitleTrak(child.Data) {
			existingLyricsTrackID = id
		}
	}

	wantChapters := canInsertTracks && info.Chapters != nil && info.Chapters.Len() > 0
	wantLyrics := canInsertTracks && len(info.Metadata.SynchronizedLyrics) > 0

	nextID := maxTrackID
	assignID := func(existing uint32) uint32 {
		if existing != 0 {
			return existing
		}
		nextID++
		return nextID
	}

	var chapterTrackID, lyricsTrackID uint32
	if wantChapters {
		chapterTrackID = assignID(existingChapterTrackID)
	}
	if wantLyrics {
		lyricsTrackID = assignID(existingLyricsTrackID)
	}

	var chapterSamples, lyricsSamples []textSample
	if wantChapters {
		chapterSamples = chapterTextSamples(info.Chapters)
	}
	if wantLyrics {
		if text := renderLyricsTrackText(info.Metadata.SynchronizedLyrics); text != "" {
			lyricsSamples = []textSample{{startMs: 0, text: text}}
		}
	}

	chapterBytes := concatTextSamples(chapterSamples)
	lyricsBytes := concatTextSamples(lyricsSamples)
	prefix := append(append([]byte{}, chapterBytes...), lyricsBytes...)
	placeholderBase := oldMdatDataStart - int64(len(prefix))

	var out bytes.Buffer
	foundUdta := false

	for _, child := range children {
		switch string(child.Type[:]) {
		case "udta":
			out.Write(rebuildUdta(child.Data, info))
			foundUdta = true

		case "trak":
			if !canInsertTracks {
				out.Write(child.Raw)
				continue
			}
			id := trakTrackID(child.Data)
			if existingChapterTrackID != 0 && id == existingChapterTrackID {
				continue // replaced below with a freshly built chapter track
			}
			if isSubtitleTrak(child.Data) {
				continue // replaced below with a freshly built lyrics track
			}
			if isSoundTrak(child.Data) {
				out.Write(patchSoundTrackRef(child.Raw, chapterTrackID))
				continue
			}
			out.Write(child.Raw)

		default:
			out.Write(child.Raw)
		}
	}

	if !foundUdta {
		out.Write(buildUdta(info))
	}

	if wantChapters && len(chapterSamples) > 0 {
		out.Write(buildTextTrack(chapterTrackID, movieTimescale, chapterHandlerType, "Chapters", chapterSamples, fallbackMs, placeholderBase, 0))
	}
	if wantLyrics && len(lyricsSamples) > 0 {
		out.Write(buildTextTrack(lyricsTrackID, movieTimescale, lyricsHandlerType, "Lyrics", lyricsSamples, fallbackMs, placeholderBase, int64(len(chapterBytes))))
	}

	return out.Bytes(), prefix
}

// rebuildUdta rebuilds meta/ilst and copies every other child
// (notably a legacy Nero chpl chapter atom, if present) verbatim: chpl
// is a read-compatibility fallback this codec never writes itself, so
// on write it is preserved exactly as found, never regenerated.
func rebuildUdta(content []byte, info model.AudioFileInfo) []byte {
	var out bytes.Buffer
	foundMeta := false

	for _, child := range readChildBoxes(content) {
		if string(child.Type[:]) == "meta" {
			out.Write(rebuildMeta(child.Data, info))
			foundMeta = true
		} else {
			out.Write(child.Raw)
		}
	}

	if !foundMeta {
		out.Write(buildMetaBox(info))
	}

	return buildBox("udta", out.Bytes())
}

func buildUdta(info model.AudioFileInfo) []byte {
	return buildBox("udta", buildMetaBox(info))
}

func rebuildMeta(content []byte, info model.AudioFileInfo) []byte {
	if len(content) < 4 {
		return buildMetaBox(info)
	}

	versionFlags := content[:4]
	var out bytes.Buffer
	out.Write(versionFlags)

	foundIlst := false
	for _, child := range readChildBoxes(content[4:]) {
		if string(child.Type[:]) == "ilst" {
			out.Write(buildIlst(info.Metadata))
			foundIlst = true
		} else {
			out.Write(child.Raw)
		}
	}
	if !foundIlst {
		out.Write(buildIlst(info.Metadata))
	}

	return buildBox("meta", out.Bytes())
}

func buildMetaBox(info model.AudioFileInfo) []byte {
	var out bytes.Buffer
	out.Write([]byte{0, 0, 0, 0}) // version/flags
	out.Write(buildIlst(info.Metadata))
	return buildBox("meta", out.Bytes())
}

func buildIlst(meta model.AudioMetadata) []byte {
	var content bytes.Buffer

	writeText := func(atom gomp4.BoxType, value string) {
		if value != "" {
			content.Write(buildItunesTextAtom(atom, value))
		}
	}

	writeText(AtomTitle, meta.Title)
	writeText(AtomArtist, meta.Artist)
	writeText(AtomAlbumArtist, meta.AlbumArtist)
	writeText(AtomAlbum, meta.Album)
	writeText(AtomComposer, meta.Composer)
	writeText(AtomGenre, meta.Genre)
	writeText(AtomComment, meta.Comment)
	writeText(AtomCopyright, meta.Copyright)
	writeText(AtomEncoder, meta.Encoder)
	writeText(AtomLyrics, meta.UnsynchronizedLyrics)

	if meta.Year != nil {
		writeText(AtomYear, itoa(*meta.Year))
	}

	if meta.BPM != nil {
		body := make([]byte, 2)
		binary.BigEndian.PutUint16(body, uint16(*meta.BPM))
		content.Write(buildItunesDataAtom(AtomBPM, DataTypeInteger, body))
	}

	if meta.TrackNumber != nil {
		content.Write(buildTrackPairAtom(AtomTrackNumber, *meta.TrackNumber))
	}
	if meta.DiscNumber != nil {
		content.Write(buildTrackPairAtom(AtomDiscNumber, *meta.DiscNumber))
	}

	if meta.Artwork != nil {
		dataType := DataTypeJPEG
		if meta.Artwork.Format == model.ArtworkFormatPNG {
			dataType = DataTypePNG
		}
		content.Write(buildItunesDataAtom(AtomCover, dataType, meta.Artwork.Data))
	}

	meta.CustomTextFields.Range(func(key, value string) {
		content.Write(buildFreeformAtom("com.apple.iTunes", key, value))
	})

	return buildBox("ilst", content.Bytes())
}

func buildTrackPairAtom(atomType gomp4.BoxType, pos model.TrackPosition) []byte {
	body := make([]byte, 8)
	binary.BigEndian.PutUint16(body[2:4], uint16(pos.Number))
	binary.BigEndian.PutUint16(body[4:6], uint16(pos.Total))
	return buildItunesDataAtom(atomType, 0, body)
}

func buildItunesTextAtom(atomType gomp4.BoxType, value string) []byte {
	return buildItunesDataAtom(atomType, DataTypeUTF8, []byte(value))
}

func buildFreeformAtom(namespace, name, value string) []byte {
	var content bytes.Buffer

	meanContent := make([]byte, 4+len(namespace))
	copy(meanContent[4:], namespace)
	content.Write(buildBox("mean", meanContent))

	nameContent := make([]byte, 4+len(name))
	copy(nameContent[4:], name)
	content.Write(buildBox("name", nameContent))

	var dataContent bytes.Buffer
	dataContent.Write([]byte{0, 0, 0, byte(DataTypeUTF8)})
	dataContent.Write([]byte{0, 0, 0, 0})
	dataContent.Write([]byte(value))
	content.Write(buildBox("data", dataContent.Bytes()))

	var at [4]byte = AtomFreeform
	return buildBoxBytes(at, content.Bytes())
}

func buildItunesDataAtom(atomType gomp4.BoxType, dataType int, value []byte) []byte {
	var dataContent bytes.Buffer
	dataContent.WriteByte(0)
	dataContent.WriteByte(byte((dataType >> 16) & 0xFF))
	dataContent.WriteByte(byte((dataType >> 8) & 0xFF))
	dataContent.WriteByte(byte(dataType & 0xFF))
	dataContent.Write([]byte{0, 0, 0, 0})
	dataContent.Write(value)

	dataBox := buildBox("data", dataContent.Bytes())

	var at [4]byte = atomType
	return buildBoxBytes(at, dataBox)
}

// adjustChunkOffsets recursively walks content, shifting every
// stco/co64 chunk offset by delta, upgrading stco to co64 if an
// adjusted value overflows 32 bits.
func adjustChunkOffsets(content []byte, delta int64) []byte {
	var out bytes.Buffer

	for _, child := range readChildBoxes(content) {
		switch string(child.Type[:]) {
		case "trak", "mdia", "minf", "stbl":
			out.Write(buildBox(string(child.Type[:]), adjustChunkOffsets(child.Data, delta)))
		case "stco":
			out.Write(adjustStco(child.Data, delta))
		case "co64":
			out.Write(adjustCo64(child.Data, delta))
		default:
			out.Write(child.Raw)
		}
	}

	return out.Bytes()
}

func adjustStco(data []byte, delta int64) []byte {
	if len(data) < 8 {
		return buildBox("stco", data)
	}
	count := int(binary.BigEndian.Uint32(data[4:8]))
	entries := data[8:]

	overflow := false
	offsets := make([]int64, 0, count)
	for i := 0; i < count && (i+1)*4 <= len(entries); i++ {
		v := int64(binary.BigEndian.Uint32(entries[i*4:])) + delta
		offsets = append(offsets, v)
		if v > 0xFFFFFFFF || v < 0 {
			overflow = true
		}
	}

	if overflow {
		var body bytes.Buffer
		body.Write(data[:4])
		countBuf := make([]byte, 4)
		binary.BigEndian.PutUint32(countBuf, uint32(len(offsets)))
		body.Write(countBuf)
		for _, v := range offsets {
			buf := make([]byte, 8)
			binary.BigEndian.PutUint64(buf, uint64(v))
			body.Write(buf)
		}
		return buildBox("co64", body.Bytes())
	}

	var body bytes.Buffer
	body.Write(data[:8])
	for _, v := range offsets {
		buf := make([]byte, 4)
		binary.BigEndian.PutUint32(buf, uint32(v))
		body.Write(buf)
	}
	return buildBox("stco", body.Bytes())
}

func adjustCo64(data []byte, delta int64) []byte {
	if len(data) < 8 {
		return buildBox("co64", data)
	}
	count := int(binary.BigEndian.Uint32(data[4:8]))
	entries := data[8:]

	var body bytes.Buffer
	body.Write(data[:8])
	for i := 0; i < count && (i+1)*8 <= len(entries); i++ {
		v := int64(binary.BigEndian.Uint64(entries[i*8:])) + delta
		buf := make([]byte, 8)
		binary.BigEndian.PutUint64(buf, uint64(v))
		body.Write(buf)
	}
	return buildBox("co64", body.Bytes())
}
