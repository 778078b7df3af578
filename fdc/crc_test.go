// Copyright 2013 Lawrence Kesteloot

package fdc

import (
	"testing"
)

func TestCRC16(t *testing.T) {
	tests := []struct {
		data     []byte
		expected uint16
	}{
		{[]byte("123456789"), 0x29B1},
		{[]byte{0xA1, 0xA1, 0xA1}, 0xCDB4},
		{[]byte{0xA1, 0xA1, 0xA1, 0xFE}, 0xB230},
		{[]byte{0xA1, 0xA1, 0xA1, 0xFE, 0, 0, 1, 2}, 0xCA6F},
		{nil, 0xFFFF},
	}

	for _, test := range tests {
		if crc := CRC16(test.data); crc != test.expected {
			t.Errorf("CRC of % X is %04X, expected %04X", test.data, crc, test.expected)
		}
	}
}

func TestCRCIncremental(t *testing.T) {
	data := []byte{0xA1, 0xA1, 0xA1, 0xFB, 1, 2, 3, 4, 5}

	crc := uint16(0xFFFF)
	for _, b := range data {
		crc = crcAdd(crc, b)
	}
	if crc != CRC16(data) {
		t.Errorf("Incremental CRC %04X doesn't match %04X", crc, CRC16(data))
	}
	if CRC16(data) != CRC16(data) {
		t.Errorf("CRC isn't repeatable")
	}
}
