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


package gtab

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/chiron-fonts/sub-fonts/sfnt/parser"
)

func TestFeatureParams(t *testing.T) {
	info := FeatureList{
		{Tag: "kern", Lookups: []LookupIndex{0, 1}},
		{Tag: "ss01", Lookups: []LookupIndex{2}, Params: []byte{0, 0, 1, 0}},
		{Tag: "cv01", Lookups: []LookupIndex{3},
			Params: []byte{0, 0, 1, 1, 1, 2, 1, 3, 0, 0, 0, 0, 0, 1, 0, 0x30, 0x42}},
		{Tag: "size", Params: []byte{0, 100, 0, 0, 0, 0, 0, 0, 0, 0}},
	}
	data, err := info.encode()
	if err != nil {
		t.Fatal(err)
	}
	info2, err := readFeatureList(parser.New("test", data), 0)
	if err != nil {
		t.Fatal(err)
	}
	if d := cmp.Diff(info, info2, cmpopts.EquateEmpty()); d != "" {
		t.Error(d)
	}
}

func TestIsStylisticSet(t *testing.T) {
	cases := map[string]bool{
		"ss01": true,
		"ss20": true,
		"ss00": false,
		"ss21": false,
		"ss1a": false,
		"liga": false,
		"ss1":  false,
	}
	for tag, expected := range cases {
		if IsStylisticSet(tag) != expected {
			t.Errorf("IsStylisticSet(%q) != %t", tag, expected)
		}
	}
}

func FuzzFeatureList(f *testing.F) {
	info := FeatureList{{Tag: "test"}}
	data, _ := info.encode()
	f.Add(data)
	info = append(info, &Feature{Tag: "kern", Lookups: []LookupIndex{0, 1, 2, 3}})
	data, _ = info.encode()
	f.Add(data)

	f.Fuzz(func(t *testing.T, data []byte) {
		info, err := readFeatureList(parser.New("test", data), 0)
		if err != nil {
			return
		}

		data2, err := info.encode()
		if err != nil {
			t.Fatal(err)
		}

		info2, err := readFeatureList(parser.New("test", data2), 0)
		if err != nil {
			t.Fatal(err)
		}
		if d := cmp.Diff(info, info2, cmpopts.EquateEmpty()); d != "" {
			t.Error(d)
		}
	})
}
