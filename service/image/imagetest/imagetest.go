// Package imagetest builds minimal executable images for tests.
package imagetest

import (
	"bytes"
	"debug/elf"
	"encoding/binary"
)

const (
	headerSize = 52
	progSize   = 32
)

// ELF32 returns a little-endian i386 ET_EXEC image of size bytes with a
// single PT_LOAD segment mapped at vaddr whose file data starts at offset
// 4096. Bytes after the headers are filled with fill.
func ELF32(size int, vaddr, entry uint32, fill byte) []byte {
	var ident [elf.EI_NIDENT]byte
	copy(ident[:], elf.ELFMAG)
	ident[elf.EI_CLASS] = byte(elf.ELFCLASS32)
	ident[elf.EI_DATA] = byte(elf.ELFDATA2LSB)
	ident[elf.EI_VERSION] = byte(elf.EV_CURRENT)

	payload := uint32(0)
	if size > 4096 {
		payload = uint32(size - 4096)
	}
	buf := &bytes.Buffer{}
	_ = binary.Write(buf, binary.LittleEndian, elf.Header32{
		Ident:     ident,
		Type:      uint16(elf.ET_EXEC),
		Machine:   uint16(elf.EM_386),
		Version:   uint32(elf.EV_CURRENT),
		Entry:     entry,
		Phoff:     headerSize,
		Ehsize:    headerSize,
		Phentsize: progSize,
		Phnum:     1,
	})
	_ = binary.Write(buf, binary.LittleEndian, elf.Prog32{
		Type:   uint32(elf.PT_LOAD),
		Off:    4096,
		Vaddr:  vaddr,
		Paddr:  vaddr,
		Filesz: payload,
		Memsz:  payload,
		Flags:  uint32(elf.PF_R | elf.PF_X),
		Align:  4096,
	})
	data := make([]byte, size)
	copy(data, buf.Bytes())
	for i := buf.Len(); i < size; i++ {
		data[i] = fill
	}
	return data
}
