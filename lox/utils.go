package lox

import (
	"os"
	"path/filepath"
	"strings"
)

// ImageExt marks files holding a serialized chunk rather than assembly text.
const ImageExt = ".loxc"

// RunScript assembles code and runs it on vm.
func RunScript(vm *VM, fileName string, code string) (Value, error) {
	chunk, err := Assemble(fileName, code)
	if err != nil {
		return 0, err
	}
	result := vm.Interpret(chunk)
	if result.IsErr() {
		return 0, result.Err
	}
	return result.Value, nil
}

// LoadChunk reads a chunk image or assembles a text file depending on the
// file extension. The source text is returned for assembled files so errors
// can be shown against it.
func LoadChunk(path string) (*Chunk, string, error) {
	if strings.EqualFold(filepath.Ext(path), ImageExt) {
		c, err := ReadChunkFile(path)
		return c, "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", err
	}
	source := string(data)
	c, err := Assemble(path, source)
	return c, source, err
}

// ScanErrors returns every error token in source.
func ScanErrors(fileName, source string) []Token {
	var errs []Token
	for tok := range NewFileScanner(fileName, source).All() {
		if tok.Kind == TokenError {
			errs = append(errs, tok)
		}
	}
	return errs
}
