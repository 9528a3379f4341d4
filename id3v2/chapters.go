package id3v2

import (
	"strconv"

	"github.com/atelier-socle/audiomarker/cursor"
	"github.com/atelier-socle/audiomarker/model"
)

// noOffset is the CHAP sentinel value meaning "no byte offset known".
const noOffset = 0xFFFFFFFF

// chapFrame is the parsed payload of a CHAP frame (spec §4.4).
type chapFrame struct {
	ElementID   string
	StartMs     uint32
	EndMs       uint32
	StartOffset uint32
	EndOffset   uint32
	SubFrames   []Frame
}

// ctocFrame is the parsed payload of a CTOC frame (spec §4.4).
type ctocFrame struct {
	ElementID string
	TopLevel  bool
	Ordered   bool
	ChildIDs  []string
	SubFrames []Frame
}

func parseCHAP(data []byte, version Version) (chapFrame, error) {
	r := cursor.NewReader(data)

	elementID := r.ReadUntilNUL()
	start, err := r.ReadU32()
	if err != nil {
		return chapFrame{}, InvalidTagErrorf(0, "truncated CHAP frame")
	}
	end, err := r.ReadU32()
	if err != nil {
		return chapFrame{}, InvalidTagErrorf(0, "truncated CHAP frame")
	}
	startOffset, err := r.ReadU32()
	if err != nil {
		return chapFrame{}, InvalidTagErrorf(0, "truncated CHAP frame")
	}
	endOffset, err := r.ReadU32()
	if err != nil {
		return chapFrame{}, InvalidTagErrorf(0, "truncated CHAP frame")
	}

	sub, err := parseSubFrames(r.ReadBytesRemaining(), version)
	if err != nil {
		return chapFrame{}, err
	}

	return chapFrame{
		ElementID:   string(elementID),
		StartMs:     start,
		EndMs:       end,
		StartOffset: startOffset,
		EndOffset:   endOffset,
		SubFrames:   sub,
	}, nil
}

func buildCHAP(c chapFrame, version Version) []byte {
	w := cursor.NewWriter()
	w.WriteBytes([]byte(c.ElementID))
	w.WriteNUL()
	w.WriteU32(c.StartMs)
	w.WriteU32(c.EndMs)
	w.WriteU32(c.StartOffset)
	w.WriteU32(c.EndOffset)
	w.WriteBytes(buildSubFrames(c.SubFrames, version))
	return w.Bytes()
}

func parseCTOC(data []byte, version Version) (ctocFrame, error) {
	r := cursor.NewReader(data)

	elementID := r.ReadUntilNUL()
	flags, err := r.ReadU8()
	if err != nil {
		return ctocFrame{}, InvalidTagErrorf(0, "truncated CTOC frame")
	}
	count, err := r.ReadU8()
	if err != nil {
		return ctocFrame{}, InvalidTagErrorf(0, "truncated CTOC frame")
	}

	children := make([]string, 0, count)
	for i := 0; i < int(count); i++ {
		children = append(children, string(r.ReadUntilNUL()))
	}

	sub, err := parseSubFrames(r.ReadBytesRemaining(), version)
	if err != nil {
		return ctocFrame{}, err
	}

	return ctocFrame{
		ElementID: string(elementID),
		TopLevel:  flags&0x01 != 0,
		Ordered:   flags&0x02 != 0,
		ChildIDs:  children,
		SubFrames: sub,
	}, nil
}

func buildCTOC(c ctocFrame, version Version) []byte {
	w := cursor.NewWriter()
	w.WriteBytes([]byte(c.ElementID))
	w.WriteNUL()

	var flags byte
	if c.TopLevel {
		flags |= 0x01
	}
	if c.Ordered {
		flags |= 0x02
	}
	w.WriteU8(flags)
	w.WriteU8(byte(len(c.ChildIDs)))

	for _, id := range c.ChildIDs {
		w.WriteBytes([]byte(id))
		w.WriteNUL()
	}

	w.WriteBytes(buildSubFrames(c.SubFrames, version))
	return w.Bytes()
}

// parseSubFrames parses a sequence of nested frames embedded inside a
// CHAP or CTOC payload, stopping at the end of data (there is no
// padding inside a sub-frame tree).
func parseSubFrames(data []byte, version Version) ([]Frame, error) {
	var frames []Frame
	for len(data) >= HeaderSize {
		pf, ok, err := parseFrame(data, version, false)
		if !ok {
			break
		}
		if err != nil {
			return nil, err
		}
		frames = append(frames, pf.frame)
		data = data[pf.consumed:]
	}
	return frames, nil
}

func buildSubFrames(frames []Frame, version Version) []byte {
	w := cursor.NewWriter()
	for _, f := range frames {
		writeFrameHeader(w, f.ID, uint32(len(f.Data)), f.Flags, version)
		w.WriteBytes(f.Data)
	}
	return w.Bytes()
}

// buildChapterListFromTag reconstructs chapters from CHAP frames,
// using the CTOC child-element-id sequence to order them when a CTOC
// frame is present, and first-seen order otherwise (spec §4.4).
func buildChapterListFromTag(tag *Tag) (*model.ChapterList, error) {
	var chapElements []chapFrame
	index := make(map[string]int)

	for _, f := range tag.Frames {
		if f.ID != FrameCHAP {
			continue
		}
		cf, err := parseCHAP(f.Data, tag.Version)
		if err != nil {
			continue // best-effort: drop malformed chapters
		}
		index[cf.ElementID] = len(chapElements)
		chapElements = append(chapElements, cf)
	}

	order := make([]int, 0, len(chapElements))
	seen := make(map[int]bool)

	if ctocFrameVal := tag.Lookup(FrameCTOC); ctocFrameVal != nil {
		if ct, err := parseCTOC(ctocFrameVal.Data, tag.Version); err == nil {
			for _, id := range ct.ChildIDs {
				if i, ok := index[id]; ok && !seen[i] {
					order = append(order, i)
					seen[i] = true
				}
			}
		}
	}
	for i := range chapElements {
		if !seen[i] {
			order = append(order, i)
			seen[i] = true
		}
	}

	list := model.NewChapterList()
	for _, i := range order {
		cf := chapElements[i]

		title := cf.ElementID
		var url string
		var art *model.Artwork

		for _, sf := range cf.SubFrames {
			switch sf.ID {
			case FrameTIT2:
				if s, err := sf.Text(); err == nil {
					title = s
				}
			case FrameWXXX:
				if _, u, err := parseWXXX(sf.Data); err == nil {
					url = u
				}
			case FrameAPIC:
				if a, err := parseAPIC(sf.Data); err == nil {
					art = &a
				}
			}
		}

		start, err := model.NewTimestampFromMillis(int64(cf.StartMs))
		if err != nil {
			continue
		}

		ch, err := model.NewChapter(start, title)
		if err != nil {
			continue
		}
		ch.URL = url
		ch.Artwork = art

		if cf.EndMs != 0 {
			end, err := model.NewTimestampFromMillis(int64(cf.EndMs))
			if err == nil && start.Before(end) {
				ch.End = &end
			}
		}

		list.Append(ch)
	}

	return list, nil
}

// buildChapterFrames converts a ChapterList into a single top-level,
// ordered CTOC frame listing the chapters in order, followed by CHAP
// frames (one per chapter), the form spec §4.4's write algorithm expects.
func buildChapterFrames(chapters *model.ChapterList, version Version) []Frame {
	if chapters == nil || chapters.Len() == 0 {
		return nil
	}

	all := chapters.All()
	var frames []Frame
	childIDs := make([]string, 0, len(all))

	for i, ch := range all {
		elementID := chapterElementID(i)
		childIDs = append(childIDs, elementID)

		var sub []Frame
		titlePayload, err := encodeText(defaultEncodingFor(version), ch.Title)
		if err == nil {
			sub = append(sub, Frame{ID: FrameTIT2, Data: titlePayload})
		}
		if ch.URL != "" {
			sub = append(sub, Frame{ID: FrameWXXX, Data: buildWXXX(version, "chapter url", ch.URL)})
		}
		if ch.Artwork != nil {
			sub = append(sub, Frame{ID: FrameAPIC, Data: buildAPIC(version, *ch.Artwork, "")})
		}

		var endMs uint32
		if ch.End != nil {
			endMs = uint32(ch.End.Milliseconds())
		}

		cf := chapFrame{
			ElementID:   elementID,
			StartMs:     uint32(ch.Start.Milliseconds()),
			EndMs:       endMs,
			StartOffset: noOffset,
			EndOffset:   noOffset,
			SubFrames:   sub,
		}
		frames = append(frames, Frame{ID: FrameCHAP, Data: buildCHAP(cf, version)})
	}

	ct := ctocFrame{
		ElementID: "toc",
		TopLevel:  true,
		Ordered:   true,
		ChildIDs:  childIDs,
	}
	ctoc := Frame{ID: FrameCTOC, Data: buildCTOC(ct, version)}

	return append([]Frame{ctoc}, frames...)
}

func chapterElementID(i int) string {
	return "chp" + strconv.Itoa(i)
}
