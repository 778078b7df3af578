// Copyright 2013 Lawrence Kesteloot

package fdc

// CRC-CCITT as computed by the WD1772 over ID and data fields,
// x^16 + x^12 + x^5 + 1.
const crcPolynomial = 0x1021

// CRC16 returns the CRC of data, starting from the controller's preset
// value of 0xFFFF. The A1 sync bytes and the address mark are part of the
// data.
func CRC16(data []byte) uint16 {
	crc := uint16(0xFFFF)
	for _, b := range data {
		crc = crcAdd(crc, b)
	}

	return crc
}

// Add one byte to a running CRC, MSB first.
func crcAdd(crc uint16, b byte) uint16 {
	crc ^= uint16(b) << 8
	for i := 0; i < 8; i++ {
		if crc&0x8000 != 0 {
			crc = crc<<1 ^ crcPolynomial
		} else {
			crc <<= 1
		}
	}

	return crc
}
