package id3v2

import (
	"strconv"
	"strings"

	"github.com/atelier-socle/audiomarker/cursor"
	"github.com/atelier-socle/audiomarker/model"
	"github.com/pkg/errors"
)

// ToAudioFileInfo converts a parsed Tag into the codec-neutral data
// model, following the field mapping table in spec §4.4. Frames with
// no mapped field are left untouched in the Tag and are not visible in
// the returned info; Modify re-reads the original Tag to preserve
// them.
func ToAudioFileInfo(tag *Tag) (model.AudioFileInfo, error) {
	info := model.NewAudioFileInfo()
	meta := &info.Metadata

	for _, id := range textFrameFields {
		f := tag.Lookup(id)
		if f == nil {
			continue
		}
		s, err := f.Text()
		if err != nil {
			continue // best-effort: drop frames with unreadable encodings
		}
		assignTextField(meta, id, s)
	}

	if f := tag.Lookup(FrameTYER); f != nil {
		if s, err := f.Text(); err == nil {
			setYear(meta, s)
		}
	}
	if f := tag.Lookup(FrameTDRC); f != nil {
		if s, err := f.Text(); err == nil {
			setYear(meta, s)
		}
	}

	if f := tag.Lookup(FrameTRCK); f != nil {
		if s, err := f.Text(); err == nil {
			meta.TrackNumber = parseTrackPosition(s)
		}
	}
	if f := tag.Lookup(FrameTPOS); f != nil {
		if s, err := f.Text(); err == nil {
			meta.DiscNumber = parseTrackPosition(s)
		}
	}

	if f := tag.Lookup(FrameCOMM); f != nil {
		if s, err := parseLangDescText(f.Data); err == nil {
			meta.Comment = s
		}
	}
	if f := tag.Lookup(FrameUSLT); f != nil {
		if s, err := parseLangDescText(f.Data); err == nil {
			meta.UnsynchronizedLyrics = s
		}
	}

	for _, id := range urlFrameFields {
		f := tag.Lookup(id)
		if f == nil {
			continue
		}
		url := cursor.DecodeLatin1Terminated(f.Data)
		assignURLField(meta, id, url)
	}

	meta.CustomURLs = model.NewOrderedStringMap()
	for _, f := range tag.All(FrameWXXX) {
		desc, url, err := parseWXXX(f.Data)
		if err == nil {
			meta.CustomURLs.Set(desc, url)
		}
	}

	meta.CustomTextFields = model.NewOrderedStringMap()
	for _, f := range tag.All(FrameTXXX) {
		desc, val, err := parseTXXX(f.Data)
		if err == nil {
			meta.CustomTextFields.Set(desc, val)
		}
	}

	if f := tag.Lookup(FrameAPIC); f != nil {
		if art, err := parseAPIC(f.Data); err == nil {
			meta.Artwork = &art
		}
	}

	for _, f := range tag.All(FramePRIV) {
		owner, data := parseOwnedBody(f.Data)
		meta.PrivateData = append(meta.PrivateData, model.OwnedData{Owner: owner, Data: data})
	}
	for _, f := range tag.All(FrameUFID) {
		owner, data := parseOwnedBody(f.Data)
		meta.UniqueFileIdentifiers = append(meta.UniqueFileIdentifiers, model.OwnedData{Owner: owner, Data: data})
	}

	if f := tag.Lookup(FramePCNT); f != nil {
		v := parsePCNT(f.Data)
		meta.PlayCount = &v
	}
	if f := tag.Lookup(FramePOPM); f != nil {
		if rating, ok := parsePOPM(f.Data); ok {
			meta.Rating = &rating
		}
	}

	for _, f := range tag.All(FrameSYLT) {
		sl, err := parseSYLT(f.Data)
		if err == nil {
			meta.SynchronizedLyrics = append(meta.SynchronizedLyrics, sl)
		}
	}

	chapters, err := buildChapterListFromTag(tag)
	if err != nil {
		return info, err
	}
	info.Chapters = chapters

	return info, nil
}

func assignTextField(meta *model.AudioMetadata, id FrameID, s string) {
	switch id {
	case FrameTIT2:
		meta.Title = s
	case FrameTPE1:
		meta.Artist = s
	case FrameTALB:
		meta.Album = s
	case FrameTCON:
		meta.Genre = s
	case FrameTCOM:
		meta.Composer = s
	case FrameTPE2:
		meta.AlbumArtist = s
	case FrameTPUB:
		meta.Publisher = s
	case FrameTCOP:
		meta.Copyright = s
	case FrameTENC:
		meta.Encoder = s
	case FrameTBPM:
		if n, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			meta.BPM = &n
		}
	case FrameTKEY:
		meta.Key = s
	case FrameTLAN:
		meta.Language = s
	case FrameTSRC:
		meta.ISRC = s
	}
}

func assignURLField(meta *model.AudioMetadata, id FrameID, url string) {
	switch id {
	case FrameWOAR:
		meta.ArtistURL = url
	case FrameWOAS:
		meta.AudioSourceURL = url
	case FrameWOAF:
		meta.AudioFileURL = url
	case FrameWPUB:
		meta.PublisherURL = url
	case FrameWCOM:
		meta.CommercialURL = url
	}
}

// setYear parses the leading run of digits from s (TYER is exactly
// four digits; TDRC may be a full ISO 8601 timestamp whose leading
// four digits are the year) per spec §4.4.
func setYear(meta *model.AudioMetadata, s string) {
	i := 0
	for i < len(s) && i < 4 && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == 0 {
		return
	}
	if n, err := strconv.Atoi(s[:i]); err == nil {
		meta.Year = &n
	}
}

func parseTrackPosition(s string) *model.TrackPosition {
	parts := strings.SplitN(s, "/", 2)
	n, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return nil
	}
	pos := &model.TrackPosition{Number: n}
	if len(parts) == 2 {
		if total, err := strconv.Atoi(strings.TrimSpace(parts[1])); err == nil {
			pos.Total = total
		}
	}
	return pos
}

// parseLangDescText parses the COMM/USLT payload: encoding byte,
// three-byte language code, encoded+terminated descriptor, encoded
// (unterminated) text.
func parseLangDescText(data []byte) (string, error) {
	if len(data) < 4 {
		return "", errors.New("id3v2: comment/lyrics frame too short")
	}

	enc := TextEncoding(data[0])
	rest := data[4:] // skip encoding byte + 3-byte language code

	desc, text, err := splitEncodedDescAndRest(enc, rest)
	if err != nil {
		return "", err
	}
	_ = desc

	return decodeEncodedBody(enc, text)
}

// splitEncodedDescAndRest splits rest into the encoded,
// terminator-delimited descriptor and everything after the
// terminator.
func splitEncodedDescAndRest(enc TextEncoding, rest []byte) (descRaw, body []byte, err error) {
	term := terminatorFor(enc)
	idx := indexTerminator(rest, term)
	if idx < 0 {
		return nil, nil, errors.New("id3v2: missing descriptor terminator")
	}
	return rest[:idx], rest[idx+len(term):], nil
}

func terminatorFor(enc TextEncoding) []byte {
	if enc == EncodingUTF16BOM || enc == EncodingUTF16BE {
		return []byte{0x00, 0x00}
	}
	return []byte{0x00}
}

func indexTerminator(data, term []byte) int {
	for i := 0; i+len(term) <= len(data); i++ {
		if data[i] == term[0] && (len(term) == 1 || data[i+1] == term[1]) {
			if len(term) == 2 {
				// UTF-16 NUL terminator must fall on a 2-byte boundary.
				if i%2 != 0 {
					continue
				}
			}
			return i
		}
	}
	return -1
}

func decodeEncodedBody(enc TextEncoding, body []byte) (string, error) {
	withEncByte := append([]byte{byte(enc)}, body...)
	return decodeText(withEncByte, 0)
}

func parseWXXX(data []byte) (desc, url string, err error) {
	if len(data) < 1 {
		return "", "", errors.New("id3v2: WXXX frame too short")
	}
	enc := TextEncoding(data[0])
	descRaw, rest, err := splitEncodedDescAndRest(enc, data[1:])
	if err != nil {
		return "", "", err
	}
	desc, err = decodeEncodedBody(enc, descRaw)
	if err != nil {
		return "", "", err
	}
	return desc, cursor.DecodeLatin1Terminated(rest), nil
}

func parseTXXX(data []byte) (desc, value string, err error) {
	if len(data) < 1 {
		return "", "", errors.New("id3v2: TXXX frame too short")
	}
	enc := TextEncoding(data[0])
	descRaw, rest, err := splitEncodedDescAndRest(enc, data[1:])
	if err != nil {
		return "", "", err
	}
	desc, err = decodeEncodedBody(enc, descRaw)
	if err != nil {
		return "", "", err
	}
	value, err = decodeEncodedBody(enc, rest)
	if err != nil {
		return "", "", err
	}
	return desc, value, nil
}

func parseAPIC(data []byte) (model.Artwork, error) {
	if len(data) < 1 {
		return model.Artwork{}, errors.New("id3v2: APIC frame too short")
	}
	enc := TextEncoding(data[0])
	rest := data[1:]

	mimeEnd := indexTerminator(rest, []byte{0x00})
	if mimeEnd < 0 {
		return model.Artwork{}, errors.New("id3v2: APIC missing MIME terminator")
	}
	rest = rest[mimeEnd+1:]

	if len(rest) < 1 {
		return model.Artwork{}, errors.New("id3v2: APIC missing picture type")
	}
	rest = rest[1:] // picture type byte

	descRaw, imgData, err := splitEncodedDescAndRest(enc, rest)
	if err != nil {
		return model.Artwork{}, err
	}
	_ = descRaw

	return model.NewArtwork(imgData)
}

func parseOwnedBody(data []byte) (owner string, rest []byte) {
	idx := indexTerminator(data, []byte{0x00})
	if idx < 0 {
		return "", data
	}
	return cursor.DecodeLatin1(data[:idx]), data[idx+1:]
}

func parsePCNT(data []byte) uint32 {
	if len(data) == 0 {
		return 0
	}
	var v uint64
	for _, b := range data {
		v = v<<8 | uint64(b)
		if v > 0xFFFFFFFF {
			return 0xFFFFFFFF
		}
	}
	return uint32(v)
}

func parsePOPM(data []byte) (uint8, bool) {
	idx := indexTerminator(data, []byte{0x00})
	if idx < 0 || idx+1 >= len(data) {
		return 0, false
	}
	return data[idx+1], true
}

func parseSYLT(data []byte) (model.SynchronizedLyrics, error) {
	if len(data) < 6 {
		return model.SynchronizedLyrics{}, errors.New("id3v2: SYLT frame too short")
	}

	enc := TextEncoding(data[0])
	language := string(data[1:4])
	contentType := data[5]
	rest := data[6:]

	descRaw, eventData, err := splitEncodedDescAndRest(enc, rest)
	if err != nil {
		return model.SynchronizedLyrics{}, err
	}

	descriptor, err := decodeEncodedBody(enc, descRaw)
	if err != nil {
		return model.SynchronizedLyrics{}, err
	}

	sl := model.SynchronizedLyrics{
		Language:    language,
		ContentType: model.LyricContentType(contentType),
		Descriptor:  descriptor,
	}

	term := terminatorFor(enc)
	for len(eventData) > 0 {
		idx := indexTerminator(eventData, term)
		if idx < 0 {
			break
		}
		text, err := decodeEncodedBody(enc, eventData[:idx])
		if err != nil {
			break
		}
		eventData = eventData[idx+len(term):]
		if len(eventData) < 4 {
			break
		}
		r := cursor.NewReader(eventData[:4])
		ts, _ := r.ReadU32()
		eventData = eventData[4:]

		ms, tsErr := model.NewTimestampFromMillis(int64(ts))
		if tsErr != nil {
			continue
		}
		sl.Lines = append(sl.Lines, model.LyricLine{Time: ms, Text: text})
	}

	return sl, nil
}
