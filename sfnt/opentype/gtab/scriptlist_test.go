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

func FuzzScriptList(f *testing.F) {
	info := ScriptList{
		{Script: "DFLT"}: {Required: NoRequiredFeature, Optional: []FeatureIndex{0}},
	}
	data, _ := info.encode()
	f.Add(data)
	info = ScriptList{
		{Script: "latn"}:              {Required: NoRequiredFeature, Optional: []FeatureIndex{1, 2, 3, 4}},
		{Script: "latn", Lang: "TRK "}: {Required: 7, Optional: []FeatureIndex{5, 6}},
	}
	data, _ = info.encode()
	f.Add(data)
	info = ScriptList{
		{Script: "arab", Lang: "ARA "}: {Required: NoRequiredFeature, Optional: []FeatureIndex{1, 3, 5}},
		{Script: "arab", Lang: "URD "}: {Required: NoRequiredFeature, Optional: []FeatureIndex{2, 4, 6}},
	}
	data, _ = info.encode()
	f.Add(data)

	f.Fuzz(func(t *testing.T, data []byte) {
		info, err := readScriptList(parser.New("test", data), 0)
		if err != nil {
			return
		}

		data2, err := info.encode()
		if err != nil {
			t.Fatal(err)
		}

		info2, err := readScriptList(parser.New("test", data2), 0)
		if err != nil {
			t.Fatal(err)
		}
		if d := cmp.Diff(info, info2, cmpopts.EquateEmpty()); d != "" {
			t.Error(d)
		}
	})
}

func TestScriptListKeys(t *testing.T) {
	info := ScriptList{
		{Script: "latn", Lang: "TRK "}: {},
		{Script: "cyrl"}:               {},
		{Script: "latn"}:               {},
		{Script: "latn", Lang: "DEU "}: {},
	}
	expected := []ScriptLang{
		{Script: "cyrl"},
		{Script: "latn"},
		{Script: "latn", Lang: "DEU "},
		{Script: "latn", Lang: "TRK "},
	}
	if d := cmp.Diff(expected, info.Keys()); d != "" {
		t.Error(d)
	}
}
