// Package audiomarker is the top-level facade for reading, writing,
// validating and interchanging audio file metadata across the ID3v2
// (MP3) and ISOBMFF (M4A/M4B) codecs. It dispatches to the id3v2 and
// mp4 packages by sniffed container format and exposes a single error
// type (Error) and result model (model.AudioFileInfo) regardless of
// which codec served the call.
package audiomarker

import (
	"os"

	"github.com/atelier-socle/audiomarker/detect"
	"github.com/atelier-socle/audiomarker/exchange"
	"github.com/atelier-socle/audiomarker/id3v2"
	"github.com/atelier-socle/audiomarker/model"
	"github.com/atelier-socle/audiomarker/mp4"
	"github.com/atelier-socle/audiomarker/validate"
)

// Facade is the single library entry point described in spec §6. The
// zero value is not usable; construct one with New or NewFacade.
type Facade struct {
	Config Config
	Rules  []validate.Rule
}

// New returns a Facade configured with DefaultConfig and
// validate.DefaultRules.
func New() *Facade {
	return &Facade{Config: DefaultConfig(), Rules: validate.DefaultRules()}
}

// NewFacade returns a Facade built from the given Config, with
// validate.DefaultRules.
func NewFacade(cfg Config) *Facade {
	return &Facade{Config: cfg, Rules: validate.DefaultRules()}
}

// DetectFormat sniffs path's container format from its leading bytes
// and extension.
func (f *Facade) DetectFormat(path string) (detect.Format, error) {
	header, err := readSniffHeader(path)
	if err != nil {
		return detect.FormatUnknown, ReadFailedError("sniff "+path, err)
	}

	format, err := detect.Detect(header, path)
	if err != nil {
		return detect.FormatUnknown, UnknownFormatError(path)
	}
	return format, nil
}

// Read returns path's full metadata, chapters and (container
// permitting) duration.
func (f *Facade) Read(path string) (model.AudioFileInfo, error) {
	format, err := f.DetectFormat(path)
	if err != nil {
		return model.AudioFileInfo{}, err
	}

	switch format {
	case detect.FormatMP3:
		info, err := id3v2.ReadFile(path, id3v2.ReadOptions{})
		if err != nil {
			return model.AudioFileInfo{}, ReadFailedError("read "+path, err)
		}
		return info, nil
	case detect.FormatM4A, detect.FormatM4B:
		info, err := mp4.ReadInfo(path)
		if err != nil {
			return model.AudioFileInfo{}, ReadFailedError("read "+path, err)
		}
		return info, nil
	default:
		return model.AudioFileInfo{}, UnknownFormatError(path)
	}
}

// ReadChapters returns only path's chapter list.
func (f *Facade) ReadChapters(path string) (*model.ChapterList, error) {
	info, err := f.Read(path)
	if err != nil {
		return nil, err
	}
	if info.Chapters == nil {
		return model.NewChapterList(), nil
	}
	return info.Chapters, nil
}

// Write fully replaces path's metadata and chapters with info,
// discarding whatever the codec doesn't have a mapped field for.
// When Config.ValidateBeforeWriting is set, info is validated first
// and a validation-failed Error is returned without touching path.
func (f *Facade) Write(path string, info model.AudioFileInfo) error {
	if err := f.validateIfConfigured(info); err != nil {
		return err
	}

	format, err := f.DetectFormat(path)
	if err != nil {
		return err
	}

	switch format {
	case detect.FormatMP3:
		opts := id3v2.WriteOptions{Version: f.Config.ID3Version, PaddingSize: f.Config.ID3PaddingSize}
		if err := id3v2.WriteFile(path, info, opts); err != nil {
			return WriteFailedError("write "+path, err)
		}
		return nil
	case detect.FormatM4A, detect.FormatM4B:
		if err := mp4.WriteMetadata(path, info); err != nil {
			return WriteFailedError("write "+path, err)
		}
		return nil
	default:
		return UnknownFormatError(path)
	}
}

// Modify applies mutate to path's current metadata (preserving any
// frame/atom the codec doesn't map, when Config.PreserveUnknownData
// is set) and writes the result back.
func (f *Facade) Modify(path string, mutate func(info *model.AudioFileInfo) error) error {
	format, err := f.DetectFormat(path)
	if err != nil {
		return err
	}

	switch format {
	case detect.FormatMP3:
		return f.modifyID3(path, mutate)
	case detect.FormatM4A, detect.FormatM4B:
		return f.modifyMP4(path, mutate)
	default:
		return UnknownFormatError(path)
	}
}

func (f *Facade) modifyID3(path string, mutate func(info *model.AudioFileInfo) error) error {
	err := id3v2.Modify(path, id3v2.ReadOptions{}, func(tag *id3v2.Tag) error {
		info, err := id3v2.ToAudioFileInfo(tag)
		if err != nil {
			return err
		}
		if err := mutate(&info); err != nil {
			return err
		}
		if err := f.validateIfConfigured(info); err != nil {
			return err
		}

		built, err := id3v2.FromAudioFileInfo(info, f.Config.ID3Version)
		if err != nil {
			return err
		}

		if f.Config.PreserveUnknownData {
			preserved := unmappedFrames(tag)
			built.Frames = append(built.Frames, preserved...)
		}
		*tag = *built
		return nil
	})
	if err != nil {
		return WriteFailedError("modify "+path, err)
	}
	return nil
}

func (f *Facade) modifyMP4(path string, mutate func(info *model.AudioFileInfo) error) error {
	info, err := mp4.ReadInfo(path)
	if err != nil {
		return ReadFailedError("read "+path, err)
	}
	if err := mutate(&info); err != nil {
		return err
	}
	if err := f.validateIfConfigured(info); err != nil {
		return err
	}
	if err := mp4.WriteMetadata(path, info); err != nil {
		return WriteFailedError("modify "+path, err)
	}
	return nil
}

// Strip removes all metadata and chapters from path, leaving the
// audio stream untouched.
func (f *Facade) Strip(path string) error {
	format, err := f.DetectFormat(path)
	if err != nil {
		return err
	}

	switch format {
	case detect.FormatMP3:
		if err := id3v2.Strip(path); err != nil {
			return WriteFailedError("strip "+path, err)
		}
		return nil
	case detect.FormatM4A, detect.FormatM4B:
		if err := mp4.WriteMetadata(path, model.NewAudioFileInfo()); err != nil {
			return WriteFailedError("strip "+path, err)
		}
		return nil
	default:
		return UnknownFormatError(path)
	}
}

// WriteChapters replaces only path's chapter list, preserving every
// other metadata field.
func (f *Facade) WriteChapters(path string, chapters *model.ChapterList) error {
	return f.Modify(path, func(info *model.AudioFileInfo) error {
		info.Chapters = chapters
		return nil
	})
}

// ExportChapters reads path's chapters and serialises them in format.
func (f *Facade) ExportChapters(path string, format exchange.Format) (string, error) {
	chapters, err := f.ReadChapters(path)
	if err != nil {
		return "", err
	}

	text, err := exchange.Emit(format, exchange.FromChapterList(chapters))
	if err != nil {
		return "", ExportErrorFor("export chapters", err)
	}
	return text, nil
}

// ImportChapters parses text in format and writes the resulting
// chapter list to path, preserving every other metadata field.
func (f *Facade) ImportChapters(text string, format exchange.Format, path string) error {
	set, err := exchange.Parse(format, text)
	if err != nil {
		return ExportErrorFor("import chapters", err)
	}
	return f.WriteChapters(path, set.ToChapterList())
}

// Validate runs the facade's rule set over info and returns every
// issue found.
func (f *Facade) Validate(info model.AudioFileInfo) validate.ValidationResult {
	return validate.Run(info, f.Rules)
}

// ValidateOrThrow validates info and returns a validation-failed Error
// if any error-severity issue is present.
func (f *Facade) ValidateOrThrow(info model.AudioFileInfo) error {
	result := f.Validate(info)
	if !result.IsValid() {
		return ValidationFailedError(result.Errors())
	}
	return nil
}

func (f *Facade) validateIfConfigured(info model.AudioFileInfo) error {
	if !f.Config.ValidateBeforeWriting {
		return nil
	}
	return f.ValidateOrThrow(info)
}

// unmappedFrames returns every frame in tag whose ID has no field in
// model.AudioMetadata/ChapterList, so a full rebuild from the data
// model can re-append them (spec §4.4's "preserveUnknownData").
func unmappedFrames(tag *id3v2.Tag) []id3v2.Frame {
	mapped := mappedFrameSet()
	var out []id3v2.Frame
	for _, fr := range tag.Frames {
		if _, ok := mapped[fr.ID]; !ok {
			out = append(out, fr)
		}
	}
	return out
}

func mappedFrameSet() map[id3v2.FrameID]struct{} {
	ids := []id3v2.FrameID{
		id3v2.FrameTIT2, id3v2.FrameTPE1, id3v2.FrameTALB, id3v2.FrameTCON,
		id3v2.FrameTCOM, id3v2.FrameTPE2, id3v2.FrameTPUB, id3v2.FrameTCOP,
		id3v2.FrameTENC, id3v2.FrameTBPM, id3v2.FrameTKEY, id3v2.FrameTLAN,
		id3v2.FrameTSRC, id3v2.FrameTYER, id3v2.FrameTDRC, id3v2.FrameTRCK,
		id3v2.FrameTPOS, id3v2.FrameCOMM, id3v2.FrameUSLT, id3v2.FrameWOAR,
		id3v2.FrameWOAS, id3v2.FrameWOAF, id3v2.FrameWPUB, id3v2.FrameWCOM,
		id3v2.FrameWXXX, id3v2.FrameTXXX, id3v2.FrameAPIC, id3v2.FramePRIV,
		id3v2.FrameUFID, id3v2.FramePCNT, id3v2.FramePOPM, id3v2.FrameSYLT,
		id3v2.FrameCHAP, id3v2.FrameCTOC,
	}
	set := make(map[id3v2.FrameID]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

func readSniffHeader(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	buf := make([]byte, detect.SniffLen())
	n, err := f.Read(buf)
	if err != nil && n == 0 {
		return nil, err
	}
	return buf[:n], nil
}
