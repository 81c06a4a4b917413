package main

import (
	"encoding/binary"
	"errors"
	"fmt"
)

var SerializerError = errors.New("invalid serialized data")

// CellBinarySerializer packs a cell record as two little-endian
// uint16-length-prefixed fields (reference text, raw content) followed
// by the cached result.
type CellBinarySerializer struct {
}

func NewCellBinarySerializer() *CellBinarySerializer {
	return &CellBinarySerializer{}
}

func (s *CellBinarySerializer) Marshal(ref string, value string, result string) []byte {
	refBytes := []byte(ref)
	valueBytes := []byte(value)

	serializedData := make([]byte, 0, 4+len(refBytes)+len(valueBytes)+len(result))

	serializedData = binary.LittleEndian.AppendUint16(serializedData, uint16(len(refBytes)))
	serializedData = append(serializedData, refBytes...)
	serializedData = binary.LittleEndian.AppendUint16(serializedData, uint16(len(valueBytes)))
	serializedData = append(serializedData, valueBytes...)
	serializedData = append(serializedData, []byte(result)...)
	return serializedData
}

func (s *CellBinarySerializer) Unmarshal(data []byte) (ref string, value string, result string, err error) {
	if len(data) < 2 {
		return "", "", "", fmt.Errorf("%w: should be more than 2 bytes (data: %v)", SerializerError, string(data))
	}

	refLength := int(binary.LittleEndian.Uint16(data))
	if len(data) < refLength+4 {
		return "", "", "", fmt.Errorf("%w: ref size is less than bytes amount (refSize: %d; data: %v)", SerializerError, refLength, string(data))
	}
	ref = string(data[2 : refLength+2])

	rest := data[refLength+2:]
	valueLength := int(binary.LittleEndian.Uint16(rest))
	if len(rest) < valueLength+2 {
		return "", "", "", fmt.Errorf("%w: value size is less than bytes amount (valueSize: %d; data: %v)", SerializerError, valueLength, string(data))
	}
	value = string(rest[2 : valueLength+2])
	result = string(rest[valueLength+2:])
	return
}
