package nds

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/ossyrian/nitroparse/internal/bin"
)

// Separator splits path segments passed to Resolve.
const Separator = "/"

const (
	entryDirFlag   = 0x80
	entryLenMask   = 0x7F
	subdirIDMarker = 0xF000
	subdirIDMask   = 0x0FFF
)

var dirDescriptorSpec = bin.Struct(
	bin.F("subTableOffset", bin.U32LE),
	bin.F("firstFileId", bin.U16LE),
	bin.F("totalNumberOrParentId", bin.U16LE),
)

// Entry is one record of a directory subtable: either a File or a Subdir.
type Entry interface {
	EntryName() string
	isEntry()
}

// File is a file entry. ID is assigned in subtable order among the file
// entries of a directory, starting at the directory's FirstFileID.
type File struct {
	Name string
	ID   uint16
}

func (f File) EntryName() string { return f.Name }
func (File) isEntry()            {}

func (f File) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type string `json:"type"`
		Name string `json:"name"`
		ID   uint16 `json:"file_id"`
	}{"file", f.Name, f.ID})
}

func (f File) MarshalYAML() (any, error) {
	return map[string]any{"type": "file", "name": f.Name, "file_id": f.ID}, nil
}

// Subdir is a subdirectory entry. DirID indexes FileNameTable.Dirs.
type Subdir struct {
	Name  string
	DirID uint16
}

func (s Subdir) EntryName() string { return s.Name }
func (Subdir) isEntry()            {}

func (s Subdir) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type  string `json:"type"`
		Name  string `json:"name"`
		DirID uint16 `json:"dir_id"`
	}{"dir", s.Name, s.DirID})
}

func (s Subdir) MarshalYAML() (any, error) {
	return map[string]any{"type": "dir", "name": s.Name, "dir_id": s.DirID}, nil
}

// Directory is one directory descriptor together with its decoded subtable.
//
// On disk the last descriptor field is shared: directory 0 (the root) stores
// the total number of directories there, every other directory stores its
// parent id. Only the matching one of TotalDirectories/ParentID is set.
type Directory struct {
	ID               uint16  `json:"id" yaml:"id"`
	SubtableOffset   uint32  `json:"subtable_offset" yaml:"subtable_offset"`
	FirstFileID      uint16  `json:"first_file_id" yaml:"first_file_id"`
	TotalDirectories uint16  `json:"total_directories,omitempty" yaml:"total_directories,omitempty"`
	ParentID         uint16  `json:"parent_id,omitempty" yaml:"parent_id,omitempty"`
	Entries          []Entry `json:"entries" yaml:"entries"`
}

// IsRoot reports whether this is directory 0.
func (d *Directory) IsRoot() bool { return d.ID == 0 }

// FileNameTable is the decoded directory tree. Dirs[0] is the root.
type FileNameTable struct {
	Dirs []Directory `json:"directories" yaml:"directories"`
}

// DecodeFNT reads a file name table whose descriptors start at base. Subtable
// offsets are relative to base.
func (d *Decoder) DecodeFNT(buf []byte, base uint32) (*FileNameTable, error) {
	root, err := dirDescriptorSpec.ReadRecord(buf, int(base))
	if err != nil {
		return nil, fmt.Errorf("failed to read root directory: %w", err)
	}
	count := int(root.Uint("totalNumberOrParentId"))

	recs, err := bin.Array(count, dirDescriptorSpec).ReadRecords(buf, int(base))
	if err != nil {
		return nil, fmt.Errorf("failed to read %d directory descriptors: %w", count, err)
	}

	fnt := &FileNameTable{Dirs: make([]Directory, count)}
	for i, rec := range recs {
		dir := &fnt.Dirs[i]
		dir.ID = uint16(i)
		dir.SubtableOffset = rec.Uint("subTableOffset")
		dir.FirstFileID = uint16(rec.Uint("firstFileId"))
		shared := uint16(rec.Uint("totalNumberOrParentId"))
		if dir.IsRoot() {
			dir.TotalDirectories = shared
		} else {
			dir.ParentID = shared
		}

		if err := d.readSubtable(buf, int(base)+int(dir.SubtableOffset), dir); err != nil {
			return nil, fmt.Errorf("failed to read subtable of directory %d: %w", i, err)
		}

		d.logger.Debug("read directory",
			"id", dir.ID,
			"subtable_offset", dir.SubtableOffset,
			"first_file_id", dir.FirstFileID,
			"entry_count", len(dir.Entries),
		)
	}

	return fnt, nil
}

// readSubtable appends entries to dir until the zero terminator byte.
func (d *Decoder) readSubtable(buf []byte, off int, dir *Directory) error {
	nextID := dir.FirstFileID
	for {
		v, err := bin.U8.Read(buf, off)
		if err != nil {
			return err
		}
		typeOrLength := v.(uint8)
		if typeOrLength == 0 {
			return nil
		}

		n := int(typeOrLength & entryLenMask)
		nv, err := bin.String(n, d.enc).Read(buf, off+1)
		if err != nil {
			return fmt.Errorf("entry name: %w", err)
		}
		name := nv.(string)
		off += 1 + n

		if typeOrLength&entryDirFlag == 0 {
			dir.Entries = append(dir.Entries, File{Name: name, ID: nextID})
			nextID++
			continue
		}

		iv, err := bin.U16LE.Read(buf, off)
		if err != nil {
			return fmt.Errorf("subdirectory id of %q: %w", name, err)
		}
		off += 2
		raw := iv.(uint16)
		if raw&^subdirIDMask != subdirIDMarker {
			d.logger.Warn("subdirectory id without 0xF marker",
				"directory", dir.ID,
				"name", name,
				"raw_id", fmt.Sprintf("0x%04X", raw),
			)
		}
		dir.Entries = append(dir.Entries, Subdir{Name: name, DirID: raw & subdirIDMask})
	}
}

// Resolve maps a slash-separated path to a file id, starting at the root.
//
// The id is FirstFileID plus the matched entry's position in its subtable;
// subdirectory entries ahead of the match count toward that position. A path
// that ends on a directory, continues past a file, or names anything missing
// resolves to ok == false.
func (t *FileNameTable) Resolve(path string) (id uint16, ok bool) {
	if len(t.Dirs) == 0 {
		return 0, false
	}

	parts := strings.Split(path, Separator)
	dir := &t.Dirs[0]
	for i, part := range parts {
		entry, idx, found := lo.FindIndexOf(dir.Entries, func(e Entry) bool {
			return e.EntryName() == part
		})
		if !found {
			return 0, false
		}

		last := i == len(parts)-1
		switch e := entry.(type) {
		case File:
			if !last {
				return 0, false
			}
			return dir.FirstFileID + uint16(idx), true
		case Subdir:
			if last || int(e.DirID) >= len(t.Dirs) {
				return 0, false
			}
			dir = &t.Dirs[e.DirID]
		}
	}
	return 0, false
}

// Walk calls fn for every file reachable from the root with its full path
// and the id Resolve would return for that path. Directories are visited
// depth first in subtable order; a subdirectory already on the current path
// is skipped so malformed tables cannot loop.
func (t *FileNameTable) Walk(fn func(path string, id uint16) error) error {
	if len(t.Dirs) == 0 {
		return nil
	}
	return t.walk(0, "", map[uint16]bool{0: true}, fn)
}

func (t *FileNameTable) walk(dirID uint16, prefix string, onPath map[uint16]bool, fn func(string, uint16) error) error {
	dir := &t.Dirs[dirID]
	for i, entry := range dir.Entries {
		path := prefix + entry.EntryName()
		switch e := entry.(type) {
		case File:
			if err := fn(path, dir.FirstFileID+uint16(i)); err != nil {
				return err
			}
		case Subdir:
			if int(e.DirID) >= len(t.Dirs) || onPath[e.DirID] {
				continue
			}
			onPath[e.DirID] = true
			if err := t.walk(e.DirID, path+Separator, onPath, fn); err != nil {
				return err
			}
			delete(onPath, e.DirID)
		}
	}
	return nil
}
