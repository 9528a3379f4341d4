package mp4

import (
	"bytes"
	"io"
	"os"
	"strconv"

	gomp4 "github.com/abema/go-mp4"
	"github.com/atelier-socle/audiomarker/model"
	"github.com/pkg/errors"
)

// rawMetadata is the intermediate form extracted by the box walk,
// before being mapped onto model.AudioMetadata.
type rawMetadata struct {
	title        string
	artist       string
	albumArtist  string
	album        string
	composer     string
	genre        string
	comment      string
	year         string
	copyright    string
	encoder      string
	coverData    []byte
	coverFormat  string
	trackNumber  *trackPair
	discNumber   *trackPair
	mediaType    int64
	bpm          *int64
	lyrics       string
	syncLyrics   []model.SynchronizedLyrics
	freeform     map[string]string
	unknownAtoms []rawAtom

	timescale uint32
	duration  uint64
}

type trackPair struct {
	Number int
	Total  int
}

type rawAtom struct {
	Type [4]byte
	Raw  []byte
}

// ReadMetadata reads iTunes-style metadata and chapter information
// from the MP4 file at path.
func ReadMetadata(path string) (*rawMetadata, []RawChapter, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, errors.WithStack(err)
	}
	defer f.Close()

	meta, err := readMetadataFromReader(f)
	if err != nil {
		return nil, nil, err
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, nil, errors.WithStack(err)
	}
	chapters, _ := readChapters(f)

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, nil, errors.WithStack(err)
	}
	syncLyrics, _ := readLyricsTrack(f)
	meta.syncLyrics = syncLyrics

	return meta, chapters, nil
}

func readMetadataFromReader(r io.ReadSeeker) (*rawMetadata, error) {
	meta := &rawMetadata{}

	_, err := gomp4.ReadBoxStructure(r, func(h *gomp4.ReadHandle) (interface{}, error) {
		switch h.BoxInfo.Type {
		case BoxTypeMoov, BoxTypeTrak, BoxTypeMdia, BoxTypeMinf, BoxTypeStbl, BoxTypeStsd, BoxTypeMp4a, BoxTypeUdta, BoxTypeMeta:
			return h.Expand()
		case BoxTypeMvhd:
			return processMvhd(h, meta)
		case BoxTypeEsds:
			return nil, nil
		case BoxTypeIlst:
			return h.Expand()
		default:
			if isPotentialMetadataAtom(h.BoxInfo.Type) {
				return processMetadataBox(h, meta)
			}
			return nil, nil
		}
	})
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return meta, nil
}

func processMvhd(h *gomp4.ReadHandle, meta *rawMetadata) (interface{}, error) {
	payload, _, err := h.ReadPayload()
	if err != nil {
		return nil, errors.WithStack(err)
	}
	mvhd, ok := payload.(*gomp4.Mvhd)
	if !ok {
		return nil, nil
	}
	meta.timescale = mvhd.Timescale
	if mvhd.Version == 0 {
		meta.duration = uint64(mvhd.DurationV0)
	} else {
		meta.duration = mvhd.DurationV1
	}
	return nil, nil
}

func isMetadataAtom(t gomp4.BoxType) bool {
	switch t {
	case AtomTitle, AtomArtist, AtomAlbumArtist, AtomAlbum, AtomGenre, AtomGenreID,
		AtomComposer, AtomComment, AtomYear, AtomCopyright, AtomEncoder,
		AtomTrackNumber, AtomDiscNumber, AtomCover, AtomMediaType, AtomFreeform,
		AtomBPM, AtomLyrics:
		return true
	}
	return false
}

// isPotentialMetadataAtom is more permissive than isMetadataAtom: it
// also matches the iTunes "\xa9xxx" convention and a few common atoms
// no constant is declared for, so unrecognised-but-valid atoms are
// preserved verbatim instead of silently dropped.
func isPotentialMetadataAtom(t gomp4.BoxType) bool {
	if isMetadataAtom(t) {
		return true
	}
	if t[0] == 0xA9 {
		return true
	}
	return false
}

func processMetadataBox(h *gomp4.ReadHandle, meta *rawMetadata) (interface{}, error) {
	var buf bytes.Buffer
	if _, err := h.ReadData(&buf); err != nil {
		return nil, errors.WithStack(err)
	}

	data := buf.Bytes()
	boxType := h.BoxInfo.Type

	if atomTypeEquals(boxType, AtomFreeform) {
		processFreeformAtom(data, meta)
		return nil, nil
	}

	if isMetadataAtom(boxType) {
		content := extractDataBoxContent(data)
		if content == nil {
			return nil, nil
		}
		processMetadataAtom(boxType, content, meta)
		return nil, nil
	}

	var raw [4]byte
	copy(raw[:], []byte{byte(boxType[0]), byte(boxType[1]), byte(boxType[2]), byte(boxType[3])})
	meta.unknownAtoms = append(meta.unknownAtoms, rawAtom{Type: raw, Raw: buildBoxBytes(raw, data)})
	return nil, nil
}

func processFreeformAtom(data []byte, meta *rawMetadata) {
	if meta.freeform == nil {
		meta.freeform = make(map[string]string)
	}

	var mean, name string
	var dataContent []byte

	for _, child := range readChildBoxes(data) {
		switch string(child.Type[:]) {
		case "mean":
			if len(child.Data) > 4 {
				mean = string(child.Data[4:])
			}
		case "name":
			if len(child.Data) > 4 {
				name = string(child.Data[4:])
			}
		case "data":
			dataContent = child.Data
		}
	}

	if mean != "" && name != "" && len(dataContent) > 0 {
		meta.freeform[mean+":"+name] = parseTextData(dataContent)
	}
}

func extractDataBoxContent(content []byte) []byte {
	if len(content) < 16 {
		return nil
	}
	if content[4] == 'd' && content[5] == 'a' && content[6] == 't' && content[7] == 'a' {
		return content[8:]
	}
	return nil
}

func processMetadataAtom(boxType gomp4.BoxType, data []byte, meta *rawMetadata) {
	if len(data) == 0 {
		return
	}

	switch {
	case atomTypeEquals(boxType, AtomTitle):
		meta.title = parseTextData(data)
	case atomTypeEquals(boxType, AtomArtist):
		meta.artist = parseTextData(data)
	case atomTypeEquals(boxType, AtomAlbumArtist):
		meta.albumArtist = parseTextData(data)
	case atomTypeEquals(boxType, AtomAlbum):
		meta.album = parseTextData(data)
	case atomTypeEquals(boxType, AtomComposer):
		meta.composer = parseTextData(data)
	case atomTypeEquals(boxType, AtomGenre):
		meta.genre = parseTextData(data)
	case atomTypeEquals(boxType, AtomGenreID):
		if id, ok := parseIntegerData(data); ok {
			meta.genre = genreIDToString(int(id))
		}
	case atomTypeEquals(boxType, AtomCover):
		if img, format, ok := parseImageData(data); ok {
			meta.coverData = img
			meta.coverFormat = format
		}
	case atomTypeEquals(boxType, AtomComment):
		meta.comment = parseTextData(data)
	case atomTypeEquals(boxType, AtomYear):
		meta.year = parseTextData(data)
	case atomTypeEquals(boxType, AtomCopyright):
		meta.copyright = parseTextData(data)
	case atomTypeEquals(boxType, AtomEncoder):
		meta.encoder = parseTextData(data)
	case atomTypeEquals(boxType, AtomLyrics):
		meta.lyrics = parseTextData(data)
	case atomTypeEquals(boxType, AtomBPM):
		if bpm, ok := parseIntegerData(data); ok {
			meta.bpm = &bpm
		}
	case atomTypeEquals(boxType, AtomMediaType):
		if id, ok := parseIntegerData(data); ok {
			meta.mediaType = id
		}
	case atomTypeEquals(boxType, AtomTrackNumber):
		meta.trackNumber = parseTrackPairData(data)
	case atomTypeEquals(boxType, AtomDiscNumber):
		meta.discNumber = parseTrackPairData(data)
	}
}

// parseTextData strips the "data" box's 8-byte version/type/locale
// header and returns the remaining bytes as a UTF-8 string.
func parseTextData(data []byte) string {
	if len(data) < 8 {
		return ""
	}
	return string(data[8:])
}

func parseIntegerData(data []byte) (int64, bool) {
	if len(data) < 8 {
		return 0, false
	}
	body := data[8:]
	var v int64
	for _, b := range body {
		v = v<<8 | int64(b)
	}
	return v, true
}

// parseTrackPairData parses the 8-byte trkn/disk payload:
// [2 bytes reserved][2 bytes number][2 bytes total][2 bytes reserved].
func parseTrackPairData(data []byte) *trackPair {
	if len(data) < 8+6 {
		return nil
	}
	body := data[8:]
	number := int(body[2])<<8 | int(body[3])
	total := int(body[4])<<8 | int(body[5])
	return &trackPair{Number: number, Total: total}
}

func parseImageData(data []byte) (img []byte, format string, ok bool) {
	if len(data) < 8 {
		return nil, "", false
	}
	typeCode := int(data[1])<<16 | int(data[2])<<8 | int(data[3])
	body := data[8:]
	switch typeCode {
	case DataTypeJPEG:
		return body, "jpeg", true
	case DataTypePNG:
		return body, "png", true
	default:
		return body, "", true
	}
}

// genreIDToString converts a 1-based ID3v1 genre index (gnre atom) to
// its name.
func genreIDToString(id int) string {
	idx := int(id) - 1
	if idx < 0 || idx >= len(id3v1Genres) {
		return ""
	}
	return id3v1Genres[idx]
}

var id3v1Genres = []string{
	"Blues", "Classic Rock", "Country", "Dance", "Disco", "Funk", "Grunge",
	"Hip-Hop", "Jazz", "Metal", "New Age", "Oldies", "Other", "Pop", "R&B",
	"Rap", "Reggae", "Rock", "Techno", "Industrial", "Alternative", "Ska",
	"Death Metal", "Pranks", "Soundtrack", "Euro-Techno", "Ambient",
	"Trip-Hop", "Vocal", "Jazz+Funk", "Fusion", "Trance", "Classical",
	"Instrumental", "Acid", "House", "Game", "Sound Clip", "Gospel",
	"Noise", "AlternRock", "Bass", "Soul", "Punk", "Space", "Meditative",
	"Instrumental Pop", "Instrumental Rock", "Ethnic", "Gothic", "Darkwave",
	"Techno-Industrial", "Electronic", "Pop-Folk", "Eurodance", "Dream",
	"Southern Rock", "Comedy", "Cult", "Gangsta", "Top 40", "Christian Rap",
	"Pop/Funk", "Jungle", "Native American", "Cabaret", "New Wave",
	"Psychadelic", "Rave", "Showtunes", "Trailer", "Lo-Fi", "Tribal",
	"Acid Punk", "Acid Jazz", "Polka", "Retro", "Musical", "Rock & Roll",
	"Hard Rock", "Folk", "Folk-Rock", "National Folk", "Swing", "Fast Fusion",
	"Bebob", "Latin", "Revival", "Celtic", "Bluegrass", "Avantgarde",
}

func itoa(n int) string { return strconv.Itoa(n) }
