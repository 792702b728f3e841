package ffi

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/engramdb/engram/internal/archive"
	"github.com/engramdb/engram/internal/boundary"
	"github.com/engramdb/engram/internal/value"
)

// OpenArchive opens the archive at path and writes its handle through
// outHandle.
func OpenArchive(path string, outHandle *ArchiveHandle, slot *ErrorSlot) Status {
	return run(slot, func() error {
		if outHandle == nil {
			return errors.New("out handle pointer cannot be nil")
		}
		if !utf8.ValidString(path) {
			return errors.New("path is not valid UTF-8")
		}

		r, err := archive.Open(path)
		if err != nil {
			return fmt.Errorf("failed to open archive: %w", err)
		}

		st := &archiveState{
			res:  boundary.NewResource(r, func(r *archive.Reader) error { return r.Close() }),
			path: path,
		}
		*outHandle = insertArchive(st)
		Logger().Debug("archive opened", zap.String("path", path))
		return nil
	})
}

// CloseArchive destroys the handle and releases its share of the
// underlying reader. Closing the zero handle is a no-op; closing a
// handle twice is undefined.
func CloseArchive(h ArchiveHandle) {
	if h == 0 {
		return
	}
	st := removeArchive(h)
	if st == nil {
		return
	}
	if err := st.res.Release(); err != nil {
		Logger().Debug("archive close", zap.Error(err))
	}
}

// EntryCount writes the number of entries through outCount.
func EntryCount(h ArchiveHandle, outCount *uint32, slot *ErrorSlot) Status {
	return run(slot, func() error {
		if outCount == nil {
			return errors.New("out count pointer cannot be nil")
		}
		st, err := lookupArchive(h)
		if err != nil {
			return err
		}
		return st.res.With(func(r *archive.Reader) error {
			*outCount = uint32(r.EntryCount())
			return nil
		})
	})
}

// Contains writes whether the archive holds an entry at path through
// outResult.
func Contains(h ArchiveHandle, path string, outResult *bool, slot *ErrorSlot) Status {
	return run(slot, func() error {
		if outResult == nil {
			return errors.New("out result pointer cannot be nil")
		}
		if !utf8.ValidString(path) {
			return errors.New("path is not valid UTF-8")
		}
		st, err := lookupArchive(h)
		if err != nil {
			return err
		}
		return st.res.With(func(r *archive.Reader) error {
			*outResult = r.Contains(path)
			return nil
		})
	})
}

// ListFiles writes every entry path, in index order, through outList.
// The list transfers to the caller.
func ListFiles(h ArchiveHandle, outList **StringList, slot *ErrorSlot) Status {
	return run(slot, func() error {
		if outList == nil {
			return errors.New("out list pointer cannot be nil")
		}
		st, err := lookupArchive(h)
		if err != nil {
			return err
		}
		return st.res.With(func(r *archive.Reader) error {
			*outList = newStringList(r.ListFiles())
			return nil
		})
	})
}

// ListPrefix writes the entry paths starting with prefix, preserving
// their relative order, through outList. The list transfers to the
// caller.
func ListPrefix(h ArchiveHandle, prefix string, outList **StringList, slot *ErrorSlot) Status {
	return run(slot, func() error {
		if outList == nil {
			return errors.New("out list pointer cannot be nil")
		}
		if !utf8.ValidString(prefix) {
			return errors.New("prefix is not valid UTF-8")
		}
		st, err := lookupArchive(h)
		if err != nil {
			return err
		}
		return st.res.With(func(r *archive.Reader) error {
			*outList = newStringList(r.ListPrefix(prefix))
			return nil
		})
	})
}

// ReadFile writes the content at path through outBuffer. The buffer
// transfers to the caller.
func ReadFile(h ArchiveHandle, path string, outBuffer **Buffer, slot *ErrorSlot) Status {
	return run(slot, func() error {
		if outBuffer == nil {
			return errors.New("out buffer pointer cannot be nil")
		}
		if !utf8.ValidString(path) {
			return errors.New("path is not valid UTF-8")
		}
		st, err := lookupArchive(h)
		if err != nil {
			return err
		}
		return st.res.With(func(r *archive.Reader) error {
			data, err := r.ReadFile(path)
			if err != nil {
				return fmt.Errorf("failed to read file: %w", err)
			}
			*outBuffer = newBuffer(data)
			return nil
		})
	})
}

// ReadText writes the content at path as text through outText. The
// content must be valid UTF-8. The message transfers to the caller.
func ReadText(h ArchiveHandle, path string, outText **Message, slot *ErrorSlot) Status {
	return run(slot, func() error {
		if outText == nil {
			return errors.New("out text pointer cannot be nil")
		}
		if !utf8.ValidString(path) {
			return errors.New("path is not valid UTF-8")
		}
		st, err := lookupArchive(h)
		if err != nil {
			return err
		}
		return st.res.With(func(r *archive.Reader) error {
			data, err := r.ReadFile(path)
			if err != nil {
				return fmt.Errorf("failed to read file: %w", err)
			}
			if !utf8.Valid(data) {
				return fmt.Errorf("entry %s is not valid UTF-8 text", path)
			}
			*outText = newMessage(string(data))
			return nil
		})
	})
}

// ReadJSON parses the content at path as JSON and writes its
// re-serialization through outJSON. The message transfers to the
// caller.
func ReadJSON(h ArchiveHandle, path string, outJSON **Message, slot *ErrorSlot) Status {
	return run(slot, func() error {
		if outJSON == nil {
			return errors.New("out json pointer cannot be nil")
		}
		if !utf8.ValidString(path) {
			return errors.New("path is not valid UTF-8")
		}
		st, err := lookupArchive(h)
		if err != nil {
			return err
		}
		return st.res.With(func(r *archive.Reader) error {
			data, err := r.ReadFile(path)
			if err != nil {
				return fmt.Errorf("failed to read file: %w", err)
			}
			v, err := value.Parse(data)
			if err != nil {
				return fmt.Errorf("invalid JSON: %w", err)
			}
			text, err := value.Marshal(v)
			if err != nil {
				return fmt.Errorf("failed to serialize JSON: %w", err)
			}
			*outJSON = newMessage(string(text))
			return nil
		})
	})
}

// GetMetadata writes the entry's metadata as JSON text through
// outJSON: {path, uncompressedSize, compressedSize, compression,
// modifiedTime, crc32}. The message transfers to the caller.
func GetMetadata(h ArchiveHandle, path string, outJSON **Message, slot *ErrorSlot) Status {
	return run(slot, func() error {
		if outJSON == nil {
			return errors.New("out json pointer cannot be nil")
		}
		if !utf8.ValidString(path) {
			return errors.New("path is not valid UTF-8")
		}
		st, err := lookupArchive(h)
		if err != nil {
			return err
		}
		return st.res.With(func(r *archive.Reader) error {
			e, ok := r.Entry(path)
			if !ok {
				return fmt.Errorf("entry not found: %s", path)
			}
			meta := value.Object{
				"path":             value.String(e.Path),
				"uncompressedSize": value.Int(e.UncompressedSize),
				"compressedSize":   value.Int(e.CompressedSize),
				"compression":      value.String(e.Compression.String()),
				"modifiedTime":     value.Int(e.ModifiedTime),
				"crc32":            value.Int(int64(e.CRC32)),
			}
			text, err := value.Marshal(meta)
			if err != nil {
				return fmt.Errorf("failed to serialize metadata: %w", err)
			}
			*outJSON = newMessage(string(text))
			return nil
		})
	})
}

// ReadManifest parses the archive's manifest entry and writes its
// re-serialization through outJSON. Fails if no manifest entry exists.
// The message transfers to the caller.
func ReadManifest(h ArchiveHandle, outJSON **Message, slot *ErrorSlot) Status {
	return run(slot, func() error {
		if outJSON == nil {
			return errors.New("out json pointer cannot be nil")
		}
		st, err := lookupArchive(h)
		if err != nil {
			return err
		}
		return st.res.With(func(r *archive.Reader) error {
			data, err := r.ReadManifest()
			if err != nil {
				return fmt.Errorf("failed to read manifest: %w", err)
			}
			v, err := value.Parse(data)
			if err != nil {
				return fmt.Errorf("invalid manifest JSON: %w", err)
			}
			text, err := value.Marshal(v)
			if err != nil {
				return fmt.Errorf("failed to serialize manifest: %w", err)
			}
			*outJSON = newMessage(string(text))
			return nil
		})
	})
}
