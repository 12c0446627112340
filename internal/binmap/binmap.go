// Package binmap implements the compact binary map format wikidex uses for
// lexicon.bin and article_lengths.bin: a magic header followed by a
// length-prefixed sequence of key/value pairs. spec.md leaves the exact byte
// layout as a private contract between writer and reader — this is that
// contract, modeled directly on the sift teacher's HNSW graph persistence
// (internal/hnsw/persist.go in the teacher repo): explicit encoding/binary
// calls through a small writer/reader helper that accumulates the first
// error instead of checking err at every call site.
package binmap

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// magic tags a wikidex binary map file so a reader never silently
// misinterprets an unrelated file as a lexicon or length table.
var magic = [4]byte{'W', 'K', 'D', 'X'}

const formatVersion = uint16(1)

// WriteInt32String writes m to path as a length-prefixed sequence of
// (int32 key, string value) pairs.
func WriteInt32String(path string, m map[int32]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	buffered := bufio.NewWriter(f)
	bw := &writer{w: buffered}
	bw.write(magic)
	bw.writeU16(formatVersion)
	bw.writeU32(uint32(len(m)))
	for k, v := range m {
		bw.writeI32(k)
		bw.writeString(v)
	}
	if bw.err != nil {
		return fmt.Errorf("write %s: %w", path, bw.err)
	}
	return buffered.Flush()
}

// ReadInt32String reads a map previously written by WriteInt32String.
func ReadInt32String(path string) (map[int32]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	br := &reader{r: bufio.NewReader(f)}
	if err := br.expectMagic(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	n := br.readU32()
	m := make(map[int32]string, n)
	for i := uint32(0); i < n; i++ {
		k := br.readI32()
		v := br.readString()
		if br.err != nil {
			return nil, fmt.Errorf("read %s: %w", path, br.err)
		}
		m[k] = v
	}
	return m, nil
}

// WriteIntInt writes m to path as a length-prefixed sequence of
// (int64 key, int64 value) pairs. Used for article_lengths.bin.
func WriteIntInt(path string, m map[int]int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	buffered := bufio.NewWriter(f)
	bw := &writer{w: buffered}
	bw.write(magic)
	bw.writeU16(formatVersion)
	bw.writeU32(uint32(len(m)))
	for k, v := range m {
		bw.writeI64(int64(k))
		bw.writeI64(int64(v))
	}
	if bw.err != nil {
		return fmt.Errorf("write %s: %w", path, bw.err)
	}
	return buffered.Flush()
}

// ReadIntInt reads a map previously written by WriteIntInt.
func ReadIntInt(path string) (map[int]int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	br := &reader{r: bufio.NewReader(f)}
	if err := br.expectMagic(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	n := br.readU32()
	m := make(map[int]int, n)
	for i := uint32(0); i < n; i++ {
		k := br.readI64()
		v := br.readI64()
		if br.err != nil {
			return nil, fmt.Errorf("read %s: %w", path, br.err)
		}
		m[int(k)] = int(v)
	}
	return m, nil
}

// writer wraps an io.Writer and accumulates the first error, mirroring the
// teacher's binaryWriter in internal/hnsw/persist.go.
type writer struct {
	w   io.Writer
	err error
}

func (bw *writer) write(v any) {
	if bw.err != nil {
		return
	}
	bw.err = binary.Write(bw.w, binary.LittleEndian, v)
}
func (bw *writer) writeU16(v uint16) { bw.write(v) }
func (bw *writer) writeU32(v uint32) { bw.write(v) }
func (bw *writer) writeI32(v int32)  { bw.write(v) }
func (bw *writer) writeI64(v int64)  { bw.write(v) }

func (bw *writer) writeString(s string) {
	bw.writeU32(uint32(len(s)))
	if bw.err != nil {
		return
	}
	_, bw.err = io.WriteString(bw.w, s)
}

// reader wraps an io.Reader and accumulates the first error.
type reader struct {
	r   io.Reader
	err error
}

func (br *reader) read(v any) {
	if br.err != nil {
		return
	}
	br.err = binary.Read(br.r, binary.LittleEndian, v)
}
func (br *reader) readU16() uint16 {
	var v uint16
	br.read(&v)
	return v
}
func (br *reader) readU32() uint32 {
	var v uint32
	br.read(&v)
	return v
}
func (br *reader) readI32() int32 {
	var v int32
	br.read(&v)
	return v
}
func (br *reader) readI64() int64 {
	var v int64
	br.read(&v)
	return v
}

func (br *reader) readString() string {
	n := br.readU32()
	if br.err != nil {
		return ""
	}
	buf := make([]byte, n)
	_, br.err = io.ReadFull(br.r, buf)
	return string(buf)
}

func (br *reader) expectMagic() error {
	var got [4]byte
	br.read(&got)
	if br.err != nil {
		return fmt.Errorf("read magic: %w", br.err)
	}
	if got != magic {
		return fmt.Errorf("invalid magic bytes — file may be corrupted or is not a wikidex binary map")
	}
	version := br.readU16()
	if br.err != nil {
		return fmt.Errorf("read version: %w", br.err)
	}
	if version != formatVersion {
		return fmt.Errorf("unsupported version %d (expected %d)", version, formatVersion)
	}
	return nil
}
