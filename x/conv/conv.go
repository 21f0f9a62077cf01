// Package conv holds allocation-free number formatting for MCU builds,
// where strconv and fmt are too heavy for the boot path.
package conv

const hexDigits = "0123456789ABCDEF"

// AppendUint appends the base-10 form of n to dst.
func AppendUint(dst []byte, n uint64) []byte {
	var buf [20]byte
	i := len(buf)
	if n == 0 {
		i--
		buf[i] = '0'
	}
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return append(dst, buf[i:]...)
}

// AppendInt appends the base-10 form of n to dst. Negative numbers supported.
func AppendInt(dst []byte, n int64) []byte {
	if n < 0 {
		dst = append(dst, '-')
		return AppendUint(dst, uint64(-n))
	}
	return AppendUint(dst, uint64(n))
}

// AppendHex appends "0x" and n as uppercase hex, zero-padded to width digits.
func AppendHex(dst []byte, n uint32, width int) []byte {
	if width < 1 || width > 8 {
		width = 8
	}
	dst = append(dst, '0', 'x')
	for shift := (width - 1) * 4; shift >= 0; shift -= 4 {
		dst = append(dst, hexDigits[(n>>uint(shift))&0xF])
	}
	return dst
}
