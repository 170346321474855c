package symbols

import (
	"debug/dwarf"
	"debug/elf"
	"fmt"
	"sort"

	"github.com/ianlancetaylor/demangle"
)

// Image holds the parsed symbol and debug information of a target
// executable. Loaded once at session start and read-only afterwards.
type Image struct {
	dw   *dwarf.Data // nil when the binary carries no debug info
	syms []funcSym   // exported function symbols, sorted by address
}

type funcSym struct {
	name string
	addr uint64
	size uint64
}

// LoadImage parses the ELF file at path. A binary without DWARF data still
// loads; only the flat symbol table is available then. An unreadable or
// non-ELF file is an error the caller should treat as a warning, not a
// session failure.
func LoadImage(path string) (*Image, error) {
	f, err := elf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening binary %s: %w", path, err)
	}
	defer f.Close()

	img := &Image{}

	// Stripped binaries have no debug info; that is not an error.
	if dw, err := f.DWARF(); err == nil {
		img.dw = dw
	}

	elfSyms, err := f.Symbols()
	if err != nil && img.dw == nil {
		return nil, fmt.Errorf("binary %s has neither a symbol table nor debug info: %w", path, err)
	}
	for _, s := range elfSyms {
		if elf.ST_TYPE(s.Info) != elf.STT_FUNC || s.Value == 0 {
			continue
		}
		img.syms = append(img.syms, funcSym{name: s.Name, addr: s.Value, size: s.Size})
	}
	sort.Slice(img.syms, func(i, j int) bool { return img.syms[i].addr < img.syms[j].addr })

	return img, nil
}

// Embedded resolves addresses against a loaded Image without external tools.
type Embedded struct {
	img *Image
}

// NewEmbedded builds the in-process strategy over img.
func NewEmbedded(img *Image) *Embedded {
	return &Embedded{img: img}
}

// Resolve looks addr up in the DWARF debug info first, falling back to the
// flat symbol table, then to a fully-unknown frame.
func (r *Embedded) Resolve(addr uint64) Frame {
	if f, ok := r.img.dwarfFrame(addr); ok {
		return f
	}
	if f, ok := r.img.symtabFrame(addr); ok {
		return f
	}
	return Unknown(addr)
}

// dwarfFrame finds the innermost function containing addr along with its
// source position. Inlined subroutines nest inside their callers in the
// DWARF tree, so the last matching entry in document order is the innermost.
func (img *Image) dwarfFrame(addr uint64) (Frame, bool) {
	if img.dw == nil {
		return Frame{}, false
	}
	rd := img.dw.Reader()
	cu, err := rd.SeekPC(addr)
	if err != nil || cu == nil {
		return Frame{}, false
	}

	f := Frame{Addr: addr}

	if lr, err := img.dw.LineReader(cu); err == nil && lr != nil {
		var le dwarf.LineEntry
		if err := lr.SeekPC(addr, &le); err == nil && le.File != nil {
			f.File = le.File.Name
			f.Line = le.Line
		}
	}

	for {
		ent, err := rd.Next()
		if err != nil || ent == nil || ent.Tag == dwarf.TagCompileUnit {
			break
		}
		if ent.Tag != dwarf.TagSubprogram && ent.Tag != dwarf.TagInlinedSubroutine {
			continue
		}
		ranges, err := img.dw.Ranges(ent)
		if err != nil {
			continue
		}
		for _, rng := range ranges {
			if addr >= rng[0] && addr < rng[1] {
				if name := img.entryName(ent); name != "" {
					f.Func = demangle.Filter(name)
				}
				break
			}
		}
	}

	return f, f.Known()
}

// entryName extracts a subprogram's name, chasing the abstract origin and
// specification links inlined and declared-elsewhere functions use.
func (img *Image) entryName(ent *dwarf.Entry) string {
	for depth := 0; ent != nil && depth < 5; depth++ {
		if name, ok := ent.Val(dwarf.AttrName).(string); ok {
			return name
		}
		if name, ok := ent.Val(dwarf.AttrLinkageName).(string); ok {
			return name
		}
		ref, ok := ent.Val(dwarf.AttrAbstractOrigin).(dwarf.Offset)
		if !ok {
			ref, ok = ent.Val(dwarf.AttrSpecification).(dwarf.Offset)
			if !ok {
				return ""
			}
		}
		rd := img.dw.Reader()
		rd.Seek(ref)
		next, err := rd.Next()
		if err != nil {
			return ""
		}
		ent = next
	}
	return ""
}

// symtabFrame finds the function symbol covering addr. Function only — the
// symbol table carries no file or line information.
func (img *Image) symtabFrame(addr uint64) (Frame, bool) {
	i := sort.Search(len(img.syms), func(i int) bool { return img.syms[i].addr > addr })
	if i == 0 {
		return Frame{}, false
	}
	s := img.syms[i-1]
	end := s.addr + s.size
	if s.size == 0 && i < len(img.syms) {
		// Some toolchains emit zero-sized symbols; treat the next
		// symbol's start as the boundary.
		end = img.syms[i].addr
	}
	if s.size == 0 && i == len(img.syms) {
		return Frame{}, false
	}
	if addr >= end {
		return Frame{}, false
	}
	return Frame{Addr: addr, Func: demangle.Filter(s.name)}, true
}
