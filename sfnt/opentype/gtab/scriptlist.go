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
	"cmp"
	"maps"
	"slices"

	"github.com/chiron-fonts/sub-fonts/sfnt/parser"
)

// ScriptLang identifies a language system.  An empty Lang denotes the default
// language system of the script.
type ScriptLang struct {
	Script string
	Lang   string
}

// ScriptList contains the information of a ScriptList table.
// It maps OpenType script and language tags to the features used for this
// language system.
type ScriptList map[ScriptLang]*Features

// Features describes the mandatory and optional features for a script/language.
type Features struct {
	Required FeatureIndex // 0xFFFF, if no required feature
	Optional []FeatureIndex
}

// NoRequiredFeature is the value of Features.Required for language systems
// without a required feature.
const NoRequiredFeature FeatureIndex = 0xFFFF

// Keys returns the language systems in the list, sorted by script and
// language tag.
func (info ScriptList) Keys() []ScriptLang {
	return slices.SortedFunc(maps.Keys(info), func(a, b ScriptLang) int {
		if c := cmp.Compare(a.Script, b.Script); c != 0 {
			return c
		}
		return cmp.Compare(a.Lang, b.Lang)
	})
}

// https://docs.microsoft.com/en-us/typography/opentype/spec/chapter2#script-list-table-and-script-record
func readScriptList(p *parser.Parser, pos int64) (ScriptList, error) {
	err := p.SeekPos(pos)
	if err != nil {
		return nil, err
	}

	scriptCount, err := p.ReadUint16()
	if err != nil {
		return nil, err
	}
	if 6*int64(scriptCount) > p.Size() {
		return nil, p.Error("invalid scriptCount %d", scriptCount)
	}

	type scriptRecord struct {
		script string
		offset uint16
	}
	records := make([]scriptRecord, scriptCount)
	for i := range records {
		buf, err := p.ReadBytes(6)
		if err != nil {
			return nil, err
		}
		records[i] = scriptRecord{
			script: string(buf[:4]),
			offset: uint16(buf[4])<<8 | uint16(buf[5]),
		}
	}

	info := ScriptList{}
	for _, rec := range records {
		if int(rec.offset) < 2+6*len(records) {
			return nil, p.Error("invalid script table offset")
		}
		err = info.readScriptTable(rec.script, p, pos+int64(rec.offset))
		if err != nil {
			return nil, err
		}
	}
	return info, nil
}

// https://docs.microsoft.com/en-us/typography/opentype/spec/chapter2#script-table-and-language-system-record
func (info ScriptList) readScriptTable(script string, p *parser.Parser, pos int64) error {
	err := p.SeekPos(pos)
	if err != nil {
		return err
	}

	buf, err := p.ReadUint16s(2)
	if err != nil {
		return err
	}
	defaultLangSysOffset := buf[0]
	langSysCount := int(buf[1])

	if defaultLangSysOffset != 0 && int(defaultLangSysOffset) < 4+6*langSysCount {
		return p.Error("invalid defaultLangSysOffset")
	}

	type langSysRecord struct {
		lang   string
		offset uint16
	}
	var records []langSysRecord
	if defaultLangSysOffset != 0 {
		records = append(records, langSysRecord{offset: defaultLangSysOffset})
	}
	for i := 0; i < langSysCount; i++ {
		buf, err := p.ReadBytes(6)
		if err != nil {
			return err
		}
		records = append(records, langSysRecord{
			lang:   string(buf[:4]),
			offset: uint16(buf[4])<<8 | uint16(buf[5]),
		})
	}

	for _, rec := range records {
		ff, err := readLangSysTable(p, pos+int64(rec.offset))
		if err != nil {
			return err
		}
		info[ScriptLang{Script: script, Lang: rec.lang}] = ff
	}
	return nil
}

// https://docs.microsoft.com/en-us/typography/opentype/spec/chapter2#language-system-table
func readLangSysTable(p *parser.Parser, pos int64) (*Features, error) {
	err := p.SeekPos(pos)
	if err != nil {
		return nil, err
	}

	buf, err := p.ReadUint16s(3)
	if err != nil {
		return nil, err
	}
	// buf[0] is the reserved lookupOrderOffset
	requiredFeatureIndex := FeatureIndex(buf[1])
	featureIndices, err := p.ReadUint16s(int(buf[2]))
	if err != nil {
		return nil, err
	}

	res := &Features{Required: requiredFeatureIndex}
	for _, idx := range featureIndices {
		if idx == 0xFFFF {
			continue
		}
		res.Optional = append(res.Optional, FeatureIndex(idx))
	}
	return res, nil
}

func (ff *Features) encode() []byte {
	w := newWriter()
	w.u16(0, uint16(ff.Required))
	w.count(len(ff.Optional))
	for _, idx := range ff.Optional {
		w.u16(uint16(idx))
	}
	return w.buf
}

func (info ScriptList) encode() ([]byte, error) {
	keys := info.Keys()
	var scripts []string
	for _, key := range keys {
		if len(scripts) == 0 || scripts[len(scripts)-1] != key.Script {
			scripts = append(scripts, key.Script)
		}
	}

	w := newWriter()
	w.count(len(scripts))
	for _, script := range scripts {
		var defaultLangSys *Features
		var langs []string
		for _, key := range keys {
			if key.Script != script {
				continue
			}
			if key.Lang == "" {
				defaultLangSys = info[key]
			} else {
				langs = append(langs, key.Lang)
			}
		}

		sw := newWriter()
		if defaultLangSys != nil {
			sw.offsetTo(0, defaultLangSys.encode())
		} else {
			sw.offsetTo(0, nil)
		}
		sw.count(len(langs))
		for _, lang := range langs {
			sw.tag(lang)
			sw.offsetTo(0, info[ScriptLang{Script: script, Lang: lang}].encode())
		}
		data, err := sw.bytes()
		if err != nil {
			return nil, err
		}

		w.tag(script)
		w.offsetTo(0, data)
	}
	return w.bytes()
}
