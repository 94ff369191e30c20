package wordfreq

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
)

// decodeCBpack reads a cBpack stream: a msgpack array whose first element
// is a format header and whose element at index i holds the words binned
// at -i centibels. The header is skipped; the word buckets are returned
// in stream order, most frequent bucket first.
func decodeCBpack(r io.Reader) ([][]string, error) {
	dec := cbpackDecoder{r: bufio.NewReader(r)}
	n, err := dec.readArrayHeader()
	if err != nil {
		return nil, fmt.Errorf("cbpack root: %w", err)
	}
	if n < 2 {
		return nil, fmt.Errorf("cbpack stream has no word buckets")
	}
	if err := dec.skipValue(); err != nil {
		return nil, fmt.Errorf("cbpack header: %w", err)
	}
	buckets := make([][]string, 0, n-1)
	for i := 1; i < n; i++ {
		bucket, err := dec.readStringArray()
		if err != nil {
			return nil, fmt.Errorf("cbpack bucket %d: %w", i, err)
		}
		buckets = append(buckets, bucket)
	}
	return buckets, nil
}

type cbpackDecoder struct {
	r *bufio.Reader
}

func (d *cbpackDecoder) readArrayHeader() (int, error) {
	b, err := d.r.ReadByte()
	if err != nil {
		return 0, err
	}
	switch {
	case b >= 0x90 && b <= 0x9f:
		return int(b & 0x0f), nil
	case b == 0xdc:
		n, err := d.readUint(2)
		return int(n), err
	case b == 0xdd:
		n, err := d.readUint(4)
		return int(n), err
	default:
		return 0, fmt.Errorf("expected array, got prefix 0x%x", b)
	}
}

func (d *cbpackDecoder) readStringArray() ([]string, error) {
	n, err := d.readArrayHeader()
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		s, err := d.readString()
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func (d *cbpackDecoder) readString() (string, error) {
	b, err := d.r.ReadByte()
	if err != nil {
		return "", err
	}
	var length uint64
	switch {
	case b >= 0xa0 && b <= 0xbf:
		length = uint64(b & 0x1f)
	case b == 0xd9 || b == 0xc4:
		length, err = d.readUint(1)
	case b == 0xda || b == 0xc5:
		length, err = d.readUint(2)
	case b == 0xdb || b == 0xc6:
		length, err = d.readUint(4)
	default:
		return "", fmt.Errorf("expected string, got prefix 0x%x", b)
	}
	if err != nil {
		return "", err
	}
	buf := make([]byte, length)
	if _, err := io.ReadFull(d.r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

// skipValue discards one msgpack value. Only the shapes a cBpack header
// can contain are supported.
func (d *cbpackDecoder) skipValue() error {
	b, err := d.r.ReadByte()
	if err != nil {
		return err
	}
	switch {
	case b <= 0x7f || b >= 0xe0: // fixint
		return nil
	case b >= 0xa0 && b <= 0xbf:
		return d.discard(uint64(b & 0x1f))
	case b >= 0x90 && b <= 0x9f:
		return d.skipN(int(b & 0x0f))
	case b >= 0x80 && b <= 0x8f:
		return d.skipN(2 * int(b&0x0f))
	}
	switch b {
	case 0xc0, 0xc2, 0xc3:
		return nil
	case 0xcc, 0xd0:
		return d.discard(1)
	case 0xcd, 0xd1:
		return d.discard(2)
	case 0xce, 0xd2, 0xca:
		return d.discard(4)
	case 0xcf, 0xd3, 0xcb:
		return d.discard(8)
	case 0xd9, 0xc4:
		return d.discardPrefixed(1)
	case 0xda, 0xc5:
		return d.discardPrefixed(2)
	case 0xdb, 0xc6:
		return d.discardPrefixed(4)
	case 0xdc:
		n, err := d.readUint(2)
		if err != nil {
			return err
		}
		return d.skipN(int(n))
	case 0xdd:
		n, err := d.readUint(4)
		if err != nil {
			return err
		}
		return d.skipN(int(n))
	case 0xde:
		n, err := d.readUint(2)
		if err != nil {
			return err
		}
		return d.skipN(2 * int(n))
	case 0xdf:
		n, err := d.readUint(4)
		if err != nil {
			return err
		}
		return d.skipN(2 * int(n))
	default:
		return fmt.Errorf("unsupported msgpack prefix 0x%x", b)
	}
}

func (d *cbpackDecoder) skipN(n int) error {
	for i := 0; i < n; i++ {
		if err := d.skipValue(); err != nil {
			return err
		}
	}
	return nil
}

func (d *cbpackDecoder) discardPrefixed(sizeBytes int) error {
	n, err := d.readUint(sizeBytes)
	if err != nil {
		return err
	}
	return d.discard(n)
}

func (d *cbpackDecoder) discard(n uint64) error {
	_, err := d.r.Discard(int(n))
	return err
}

func (d *cbpackDecoder) readUint(size int) (uint64, error) {
	var buf [8]byte
	if _, err := io.ReadFull(d.r, buf[8-size:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(buf[:]), nil
}
