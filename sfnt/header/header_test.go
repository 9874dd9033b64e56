// sub-fonts - derive static font variants from OpenType fonts
// Copyright (C) 2025  The sub-fonts Authors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.


package header

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestWriteRead(t *testing.T) {
	tables := map[string][]byte{
		"head": make([]byte, 54),
		"abcd": {1, 2, 3},
		"wxyz": {},
		"skip": nil,
	}
	buf := &bytes.Buffer{}
	n, err := Write(buf, ScalerTypeTrueType, tables)
	if err != nil {
		t.Fatal(err)
	}
	if n != int64(buf.Len()) {
		t.Errorf("wrong length %d != %d", n, buf.Len())
	}
	if buf.Len()%4 != 0 {
		t.Errorf("file length %d is not a multiple of 4", buf.Len())
	}

	info, got, err := ReadTables(buf.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	if info.ScalerType != ScalerTypeTrueType {
		t.Errorf("wrong scaler type 0x%08x", info.ScalerType)
	}
	if info.Has("skip") || !info.Has("head", "abcd", "wxyz") {
		t.Errorf("wrong tables %v", info.TableNames())
	}
	if d := cmp.Diff([]byte{1, 2, 3}, got["abcd"]); d != "" {
		t.Error(d)
	}

	// the checksum adjustment makes the whole file sum to the magic value
	if sum := Checksum(buf.Bytes()); sum != 0xB1B0AFBA {
		t.Errorf("wrong file checksum 0x%08x", sum)
	}
}

func TestChecksum(t *testing.T) {
	cases := []struct {
		in  []byte
		out uint32
	}{
		{nil, 0},
		{[]byte{0, 0, 0, 1}, 1},
		{[]byte{0, 0, 0, 1, 2}, 0x02000001},
		{[]byte{0xFF, 0xFF, 0xFF, 0xFF, 0, 0, 0, 2}, 1},
	}
	for _, c := range cases {
		if got := Checksum(c.in); got != c.out {
			t.Errorf("Checksum(%v) = 0x%08x, want 0x%08x", c.in, got, c.out)
		}
	}
}

func TestReadMalformed(t *testing.T) {
	cases := [][]byte{
		nil,
		[]byte("abcd\x00\x00\x00\x00\x00\x00\x00\x00"),
		[]byte("\x00\x01\x00\x00\x00\x05\x00\x00\x00\x00\x00\x00"),
	}
	for _, data := range cases {
		if _, err := Read(data); err == nil {
			t.Errorf("%q: expected error", data)
		}
	}
}
