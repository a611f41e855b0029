// Package image validates executable images that have already been copied
// into memory and reports where they live and where they start executing.
package image

import (
	"bytes"
	"debug/elf"
	"errors"
	"fmt"

	"github.com/viant/procexec/service/memory"
)

// ErrNotExecutable is returned for buffers that are not a recognised image.
var ErrNotExecutable = errors.New("image: not an executable")

// Image describes a parsed executable. The zero Image is invalid.
type Image struct {
	// Base is the address of the header within the in-memory buffer.
	Base    memory.Addr
	Size    uint64
	Class   elf.Class
	Machine elf.Machine
	Type    elf.Type
	// Loads is the number of PT_LOAD program headers.
	Loads int
	entry uint64
}

// Valid reports whether the image was recognised.
func (i *Image) Valid() bool {
	return i != nil && i.Base != 0
}

// Entry returns the virtual entry address; it is zero for an invalid image.
func (i *Image) Entry() uint64 {
	if !i.Valid() {
		return 0
	}
	return i.entry
}

// Parse validates data, located at base, as an ELF executable.
// On failure the returned image is the zero Image.
func Parse(base memory.Addr, data []byte) (*Image, error) {
	if base == 0 {
		return &Image{}, fmt.Errorf("%w: no image data", ErrNotExecutable)
	}
	if len(data) < elf.EI_NIDENT {
		return &Image{}, fmt.Errorf("%w: %d bytes is shorter than the identification block", ErrNotExecutable, len(data))
	}
	if !bytes.Equal(data[:len(elf.ELFMAG)], []byte(elf.ELFMAG)) {
		return &Image{}, fmt.Errorf("%w: bad magic % x", ErrNotExecutable, data[:len(elf.ELFMAG)])
	}
	file, err := elf.NewFile(bytes.NewReader(data))
	if err != nil {
		return &Image{}, fmt.Errorf("%w: %v", ErrNotExecutable, err)
	}
	defer file.Close()
	if file.Type != elf.ET_EXEC {
		return &Image{}, fmt.Errorf("%w: unsupported type %v", ErrNotExecutable, file.Type)
	}
	ret := &Image{
		Base:    base,
		Size:    uint64(len(data)),
		Class:   file.Class,
		Machine: file.Machine,
		Type:    file.Type,
		entry:   file.Entry,
	}
	for _, prog := range file.Progs {
		if prog.Type == elf.PT_LOAD {
			ret.Loads++
		}
	}
	return ret, nil
}
