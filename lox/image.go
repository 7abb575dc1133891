package lox

import (
	"fmt"
	"os"

	"github.com/fxamacker/cbor/v2"
)

const (
	imageMagic   = "loxc"
	imageVersion = 1
)

// chunkImage is the on-disk form of a Chunk.
type chunkImage struct {
	Magic     string    `cbor:"1,keyasint"`
	Version   uint      `cbor:"2,keyasint"`
	Code      []byte    `cbor:"3,keyasint"`
	Lines     []lineRun `cbor:"4,keyasint"`
	Constants []float64 `cbor:"5,keyasint,omitempty"`
}

type lineRun struct {
	Line  int    `cbor:"1,keyasint"`
	Count uint32 `cbor:"2,keyasint"`
}

var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("lox: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// MarshalChunk serializes a Chunk to canonical CBOR bytes.
func MarshalChunk(c *Chunk) ([]byte, error) {
	img := chunkImage{
		Magic:   imageMagic,
		Version: imageVersion,
		Code:    c.Code(),
	}
	for _, r := range c.LineRuns() {
		img.Lines = append(img.Lines, lineRun{Line: r.Value, Count: r.Count})
	}
	for _, v := range c.constants {
		img.Constants = append(img.Constants, float64(v))
	}
	return cborEncMode.Marshal(&img)
}

// UnmarshalChunk deserializes a Chunk. The line table must cover the code
// exactly; constant indices inside the code are not checked here.
func UnmarshalChunk(data []byte) (*Chunk, error) {
	var img chunkImage
	if err := cbor.Unmarshal(data, &img); err != nil {
		return nil, NewImageError(err, "cannot decode chunk image")
	}
	if img.Magic != imageMagic {
		return nil, NewImageError(nil, "not a chunk image (magic %q)", img.Magic)
	}
	if img.Version != imageVersion {
		return nil, NewImageError(nil, "unsupported chunk image version %d", img.Version)
	}
	if len(img.Constants) > MaxConstants {
		return nil, NewImageError(nil, "image holds %d constants, limit is %d", len(img.Constants), MaxConstants)
	}

	runs := make([]Run[int], len(img.Lines))
	for i, r := range img.Lines {
		runs[i] = Run[int]{Value: r.Line, Count: r.Count}
	}
	lines, err := RunLengthEncoderFromRuns(runs)
	if err != nil {
		return nil, NewImageError(err, "invalid line table")
	}
	if lines.Len() != len(img.Code) {
		return nil, NewImageError(nil, "line table covers %d bytes, code has %d", lines.Len(), len(img.Code))
	}

	c := &Chunk{
		code:      append(make([]byte, 0, len(img.Code)), img.Code...),
		lines:     lines,
		constants: make([]Value, len(img.Constants)),
	}
	for i, v := range img.Constants {
		c.constants[i] = Value(v)
	}
	return c, nil
}

func WriteChunkFile(path string, c *Chunk) error {
	data, err := MarshalChunk(c)
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("cannot write %s: %w", path, err)
	}
	return nil
}

func ReadChunkFile(path string) (*Chunk, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}
	c, err := UnmarshalChunk(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}
