package id3v2

import (
	"github.com/atelier-socle/audiomarker/cursor"
	"github.com/atelier-socle/audiomarker/model"
	"github.com/pkg/errors"
)

// DefaultPaddingSize is the default amount of zero padding appended
// after the frame block on a full write (spec §4.4).
const DefaultPaddingSize = 2048

// WriteOptions configures FromAudioFileInfo / EmitTag.
type WriteOptions struct {
	Version     Version
	PaddingSize int
}

// FromAudioFileInfo builds a Tag from the data model, emitting frames
// in the stable order spec §4.4 prescribes: text frames, then TXXX,
// then URL frames, then APIC, then COMM/USLT/SYLT, then
// PRIV/UFID/PCNT/POPM, then CTOC, then CHAP frames.
func FromAudioFileInfo(info model.AudioFileInfo, version Version) (*Tag, error) {
	meta := info.Metadata
	enc := defaultEncodingFor(version)
	tag := &Tag{Version: version}

	addText := func(id FrameID, s string) error {
		if s == "" {
			return nil
		}
		payload, err := encodeText(enc, s)
		if err != nil {
			return err
		}
		tag.Frames = append(tag.Frames, Frame{ID: id, Data: payload})
		return nil
	}

	textPairs := []struct {
		id FrameID
		s  string
	}{
		{FrameTIT2, meta.Title},
		{FrameTPE1, meta.Artist},
		{FrameTALB, meta.Album},
		{FrameTCON, meta.Genre},
		{FrameTCOM, meta.Composer},
		{FrameTPE2, meta.AlbumArtist},
		{FrameTPUB, meta.Publisher},
		{FrameTCOP, meta.Copyright},
		{FrameTENC, meta.Encoder},
		{FrameTKEY, meta.Key},
		{FrameTLAN, meta.Language},
		{FrameTSRC, meta.ISRC},
	}
	for _, p := range textPairs {
		if err := addText(p.id, p.s); err != nil {
			return nil, err
		}
	}
	if meta.BPM != nil {
		if err := addText(FrameTBPM, itoa(*meta.BPM)); err != nil {
			return nil, err
		}
	}
	if meta.Year != nil {
		yearID := FrameTYER
		if version == Version24 {
			yearID = FrameTDRC
		}
		if err := addText(yearID, itoa(*meta.Year)); err != nil {
			return nil, err
		}
	}
	if meta.TrackNumber != nil {
		if err := addText(FrameTRCK, formatTrackPosition(*meta.TrackNumber)); err != nil {
			return nil, err
		}
	}
	if meta.DiscNumber != nil {
		if err := addText(FrameTPOS, formatTrackPosition(*meta.DiscNumber)); err != nil {
			return nil, err
		}
	}

	meta.CustomTextFields.Range(func(key, value string) {
		tag.Frames = append(tag.Frames, Frame{ID: FrameTXXX, Data: buildTXXX(version, key, value)})
	})

	urlPairs := []struct {
		id  FrameID
		url string
	}{
		{FrameWOAR, meta.ArtistURL},
		{FrameWOAS, meta.AudioSourceURL},
		{FrameWOAF, meta.AudioFileURL},
		{FrameWPUB, meta.PublisherURL},
		{FrameWCOM, meta.CommercialURL},
	}
	for _, p := range urlPairs {
		if p.url == "" {
			continue
		}
		tag.Frames = append(tag.Frames, Frame{ID: p.id, Data: []byte(p.url)})
	}

	meta.CustomURLs.Range(func(key, value string) {
		tag.Frames = append(tag.Frames, Frame{ID: FrameWXXX, Data: buildWXXX(version, key, value)})
	})

	if meta.Artwork != nil {
		tag.Frames = append(tag.Frames, Frame{ID: FrameAPIC, Data: buildAPIC(version, *meta.Artwork, "cover")})
	}

	if meta.Comment != "" {
		tag.Frames = append(tag.Frames, Frame{ID: FrameCOMM, Data: buildLangDescText(version, "eng", "", meta.Comment)})
	}
	if meta.UnsynchronizedLyrics != "" {
		tag.Frames = append(tag.Frames, Frame{ID: FrameUSLT, Data: buildLangDescText(version, "eng", "", meta.UnsynchronizedLyrics)})
	}
	for _, sl := range meta.SynchronizedLyrics {
		tag.Frames = append(tag.Frames, Frame{ID: FrameSYLT, Data: buildSYLT(version, sl)})
	}

	for _, pd := range meta.PrivateData {
		tag.Frames = append(tag.Frames, Frame{ID: FramePRIV, Data: buildOwnedBody(pd.Owner, pd.Data)})
	}
	for _, uf := range meta.UniqueFileIdentifiers {
		tag.Frames = append(tag.Frames, Frame{ID: FrameUFID, Data: buildOwnedBody(uf.Owner, uf.Data)})
	}
	if meta.PlayCount != nil {
		tag.Frames = append(tag.Frames, Frame{ID: FramePCNT, Data: buildPCNT(*meta.PlayCount)})
	}
	if meta.Rating != nil {
		tag.Frames = append(tag.Frames, Frame{ID: FramePOPM, Data: buildPOPM(*meta.Rating)})
	}

	tag.Frames = append(tag.Frames, buildChapterFrames(info.Chapters, version)...)

	return tag, nil
}

// EmitTag serialises tag into the full on-disk byte sequence: the
// 10-byte header followed by the frame block and zero padding.
// paddingSize of 0 uses DefaultPaddingSize.
func EmitTag(tag *Tag, paddingSize int) ([]byte, error) {
	if paddingSize == 0 {
		paddingSize = DefaultPaddingSize
	}

	body := cursor.NewWriter()
	for _, f := range tag.Frames {
		writeFrameHeader(body, f.ID, uint32(len(f.Data)), f.Flags, tag.Version)
		body.WriteBytes(f.Data)
	}

	totalSize := body.Len() + paddingSize
	if totalSize > cursor.MaxSyncsafe {
		return nil, errors.Errorf("id3v2: tag size %d exceeds maximum syncsafe value", totalSize)
	}

	out := cursor.NewWriter()
	out.WriteBytes([]byte{TagID3[0], TagID3[1], TagID3[2]})
	out.WriteU8(byte(tag.Version))
	out.WriteU8(0) // revision
	out.WriteU8(0) // flags: no unsynchronisation, no extended header, no footer
	if !out.WriteSyncsafeU32(uint32(totalSize)) {
		return nil, errors.New("id3v2: tag size overflows syncsafe encoding")
	}
	out.WriteBytes(body.Bytes())
	out.WriteBytes(make([]byte, paddingSize))

	return out.Bytes(), nil
}

func itoa(n int) string {
	neg := n < 0
	if neg {
		n = -n
	}
	if n == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

func formatTrackPosition(p model.TrackPosition) string {
	if p.Total > 0 {
		return itoa(p.Number) + "/" + itoa(p.Total)
	}
	return itoa(p.Number)
}

func buildTXXX(version Version, desc, value string) []byte {
	enc := defaultEncodingFor(version)
	w := cursor.NewWriter()
	w.WriteU8(byte(enc))
	writeEncodedTerminated(w, enc, desc)
	writeEncodedBody(w, enc, value)
	return w.Bytes()
}

func buildWXXX(version Version, desc, url string) []byte {
	enc := defaultEncodingFor(version)
	w := cursor.NewWriter()
	w.WriteU8(byte(enc))
	writeEncodedTerminated(w, enc, desc)
	w.WriteLatin1(url)
	return w.Bytes()
}

func buildLangDescText(version Version, language, desc, text string) []byte {
	enc := defaultEncodingFor(version)
	w := cursor.NewWriter()
	w.WriteU8(byte(enc))
	lang := (language + "   ")[:3]
	w.WriteBytes([]byte(lang))
	writeEncodedTerminated(w, enc, desc)
	writeEncodedBody(w, enc, text)
	return w.Bytes()
}

func buildAPIC(version Version, art model.Artwork, description string) []byte {
	enc := defaultEncodingFor(version)
	w := cursor.NewWriter()
	w.WriteU8(byte(enc))
	w.WriteLatin1(art.Format.MIMEType())
	w.WriteNUL()
	w.WriteU8(3) // picture type 3 = front cover
	writeEncodedTerminated(w, enc, description)
	w.WriteBytes(art.Data)
	return w.Bytes()
}

func buildOwnedBody(owner string, data []byte) []byte {
	w := cursor.NewWriter()
	w.WriteLatin1(owner)
	w.WriteNUL()
	w.WriteBytes(data)
	return w.Bytes()
}

func buildPCNT(count uint32) []byte {
	w := cursor.NewWriter()
	w.WriteU32(count)
	return w.Bytes()
}

func buildPOPM(rating uint8) []byte {
	w := cursor.NewWriter()
	w.WriteNUL() // empty email
	w.WriteU8(rating)
	w.WriteU32(0) // play count
	return w.Bytes()
}

func buildSYLT(version Version, sl model.SynchronizedLyrics) []byte {
	enc := defaultEncodingFor(version)
	w := cursor.NewWriter()
	w.WriteU8(byte(enc))
	lang := (sl.Language + "   ")[:3]
	w.WriteBytes([]byte(lang))
	w.WriteU8(2) // timestamp format: absolute milliseconds
	w.WriteU8(byte(sl.ContentType))
	writeEncodedTerminated(w, enc, sl.Descriptor)

	for _, line := range sl.Lines {
		writeEncodedTerminated(w, enc, line.Text)
		w.WriteU32(uint32(line.Time.Milliseconds()))
	}

	return w.Bytes()
}

func writeEncodedTerminated(w *cursor.Writer, enc TextEncoding, s string) {
	switch enc {
	case EncodingLatin1:
		w.WriteLatin1(s)
		w.WriteNUL()
	case EncodingUTF8:
		w.WriteUTF8(s)
		w.WriteNUL()
	case EncodingUTF16BOM:
		_ = w.WriteUTF16WithBOM(s)
		w.WriteU16(0)
	case EncodingUTF16BE:
		_ = w.WriteUTF16BE(s)
		w.WriteU16(0)
	}
}

func writeEncodedBody(w *cursor.Writer, enc TextEncoding, s string) {
	switch enc {
	case EncodingLatin1:
		w.WriteLatin1(s)
	case EncodingUTF8:
		w.WriteUTF8(s)
	case EncodingUTF16BOM:
		_ = w.WriteUTF16WithBOM(s)
	case EncodingUTF16BE:
		_ = w.WriteUTF16BE(s)
	}
}
