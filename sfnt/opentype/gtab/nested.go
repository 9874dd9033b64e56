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
	"seehuhn.de/go/sfnt/glyph"

	"github.com/chiron-fonts/sub-fonts/sfnt/opentype/classdef"
	"github.com/chiron-fonts/sub-fonts/sfnt/opentype/coverage"
	"github.com/chiron-fonts/sub-fonts/sfnt/parser"
)

// SeqLookup describes the actions for contextual and chained contextual
// lookups.
type SeqLookup struct {
	SequenceIndex   uint16
	LookupListIndex LookupIndex
}

// SeqLookups describes the actions of nested lookups.
type SeqLookups []SeqLookup

func readNested(p *parser.Parser, seqLookupCount int) (SeqLookups, error) {
	raw, err := p.ReadUint16s(2 * seqLookupCount)
	if err != nil {
		return nil, err
	}
	res := make(SeqLookups, seqLookupCount)
	for i := range res {
		res[i].SequenceIndex = raw[2*i]
		res[i].LookupListIndex = LookupIndex(raw[2*i+1])
	}
	return res, nil
}

func (actions SeqLookups) write(w *writer) {
	w.count(len(actions))
	for _, a := range actions {
		w.u16(a.SequenceIndex, uint16(a.LookupListIndex))
	}
}

// SeqContext1 is used for GPOS type 7 format 1 subtables.
// https://docs.microsoft.com/en-us/typography/opentype/spec/chapter2#sequence-context-format-1-simple-glyph-contexts
type SeqContext1 struct {
	Cov   coverage.Table
	Rules [][]*SeqRule // indexed by coverage index
}

// SeqRule describes a rule in a SeqContext1 subtable.
type SeqRule struct {
	Input   []glyph.ID // excludes the first input glyph, since this is in Cov
	Actions SeqLookups
}

// SeqContext2 is used for GPOS type 7 format 2 subtables.
// https://docs.microsoft.com/en-us/typography/opentype/spec/chapter2#sequence-context-format-2-class-based-glyph-contexts
type SeqContext2 struct {
	Cov   coverage.Table
	Input classdef.Table
	Rules [][]*ClassSeqRule // indexed by class index of the first glyph
}

// ClassSeqRule describes a sequence of glyph classes and the actions to
// be performed.
type ClassSeqRule struct {
	Input   []uint16 // excludes the first input glyph
	Actions SeqLookups
}

// SeqContext3 is used for GPOS type 7 format 3 subtables.
// https://docs.microsoft.com/en-us/typography/opentype/spec/chapter2#sequence-context-format-3-coverage-based-glyph-contexts
type SeqContext3 struct {
	Input   []coverage.Table
	Actions SeqLookups
}

// ChainedSeqContext1 is used for GPOS type 8 format 1 subtables.
// https://docs.microsoft.com/en-us/typography/opentype/spec/chapter2#chained-sequence-context-format-1-simple-glyph-contexts
type ChainedSeqContext1 struct {
	Cov   coverage.Table
	Rules [][]*ChainedSeqRule // indexed by coverage index
}

// ChainedSeqRule describes the rules in a ChainedSeqContext1.
type ChainedSeqRule struct {
	Backtrack []glyph.ID
	Input     []glyph.ID // excludes the first input glyph, since this is in Cov
	Lookahead []glyph.ID
	Actions   SeqLookups
}

// ChainedSeqContext2 is used for GPOS type 8 format 2 subtables.
// https://docs.microsoft.com/en-us/typography/opentype/spec/chapter2#chained-sequence-context-format-2-class-based-glyph-contexts
type ChainedSeqContext2 struct {
	Cov       coverage.Table
	Backtrack classdef.Table
	Input     classdef.Table
	Lookahead classdef.Table
	Rules     [][]*ChainedClassSeqRule // indexed by input glyph class
}

// ChainedClassSeqRule is used to represent the rules in a ChainedSeqContext2.
// The Backtrack, Input and Lookahead sequences are given as lists of glyph
// classes, as defined by the corresponding class definition tables in the
// ChainedSeqContext2 structure.
type ChainedClassSeqRule struct {
	Backtrack []uint16
	Input     []uint16 // excludes the first input glyph, since this is in Cov
	Lookahead []uint16
	Actions   SeqLookups
}

// ChainedSeqContext3 is used for GPOS type 8 format 3 subtables.
// https://docs.microsoft.com/en-us/typography/opentype/spec/chapter2#chained-sequence-context-format-3-coverage-based-glyph-contexts
type ChainedSeqContext3 struct {
	Backtrack []coverage.Table
	Input     []coverage.Table
	Lookahead []coverage.Table
	Actions   SeqLookups
}

// rule is the common representation of the rules of all format 1 and 2
// subtables.  The sequences contain glyph IDs or glyph classes.
type rule struct {
	backtrack, input, lookahead []uint16
	actions                     SeqLookups
}

func readRule(p *parser.Parser, pos int64, chained bool) (*rule, error) {
	err := p.SeekPos(pos)
	if err != nil {
		return nil, err
	}
	res := &rule{}
	if chained {
		res.backtrack, err = p.ReadUint16Slice()
		if err != nil {
			return nil, err
		}
	}
	inputCount, err := p.ReadUint16()
	if err != nil {
		return nil, err
	}
	if inputCount == 0 {
		return nil, p.Error("empty input sequence in context rule")
	}
	var seqLookupCount uint16
	if !chained {
		seqLookupCount, err = p.ReadUint16()
		if err != nil {
			return nil, err
		}
	}
	res.input, err = p.ReadUint16s(int(inputCount) - 1)
	if err != nil {
		return nil, err
	}
	if chained {
		res.lookahead, err = p.ReadUint16Slice()
		if err != nil {
			return nil, err
		}
		seqLookupCount, err = p.ReadUint16()
		if err != nil {
			return nil, err
		}
	}
	res.actions, err = readNested(p, int(seqLookupCount))
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (r *rule) encode(chained bool) []byte {
	w := newWriter()
	if chained {
		w.count(len(r.backtrack))
		w.u16(r.backtrack...)
		w.count(len(r.input) + 1)
		w.u16(r.input...)
		w.count(len(r.lookahead))
		w.u16(r.lookahead...)
		r.actions.write(w)
		return w.buf
	}

	w.count(len(r.input) + 1)
	w.count(len(r.actions))
	w.u16(r.input...)
	for _, a := range r.actions {
		w.u16(a.SequenceIndex, uint16(a.LookupListIndex))
	}
	return w.buf
}

// readRuleSets reads the rule sets of a format 1 or format 2 subtable.
// A zero offset gives a nil rule set.
func readRuleSets(p *parser.Parser, subtablePos int64, offsets []uint16, chained bool) ([][]*rule, error) {
	res := make([][]*rule, len(offsets))
	for i, offs := range offsets {
		if offs == 0 {
			continue
		}
		base := subtablePos + int64(offs)
		err := p.SeekPos(base)
		if err != nil {
			return nil, err
		}
		ruleOffsets, err := p.ReadUint16Slice()
		if err != nil {
			return nil, err
		}
		rules := make([]*rule, len(ruleOffsets))
		for j, ruleOffs := range ruleOffsets {
			rules[j], err = readRule(p, base+int64(ruleOffs), chained)
			if err != nil {
				return nil, err
			}
		}
		res[i] = rules
	}
	return res, nil
}

// writeRuleSets writes the rule set count and offsets of a format 1 or
// format 2 subtable.
func writeRuleSets(w *writer, ruleSets [][]*rule, chained bool) error {
	w.count(len(ruleSets))
	for _, rules := range ruleSets {
		if rules == nil {
			w.offsetTo(0, nil)
			continue
		}
		rw := newWriter()
		rw.count(len(rules))
		for _, r := range rules {
			rw.offsetTo(0, r.encode(chained))
		}
		data, err := rw.bytes()
		if err != nil {
			return err
		}
		w.offsetTo(0, data)
	}
	return nil
}

func readCoverages(p *parser.Parser, subtablePos int64, offsets []uint16) ([]coverage.Table, error) {
	res := make([]coverage.Table, len(offsets))
	for i, offs := range offsets {
		var err error
		res[i], err = coverage.Read(p, subtablePos+int64(offs))
		if err != nil {
			return nil, err
		}
	}
	return res, nil
}

func writeCoverages(w *writer, cc []coverage.Table) {
	w.count(len(cc))
	for _, cov := range cc {
		w.offsetTo(0, cov.Encode())
	}
}

func toGIDs(vals []uint16) []glyph.ID {
	res := make([]glyph.ID, len(vals))
	for i, v := range vals {
		res[i] = glyph.ID(v)
	}
	return res
}

func fromGIDs(gids []glyph.ID) []uint16 {
	res := make([]uint16, len(gids))
	for i, gid := range gids {
		res[i] = uint16(gid)
	}
	return res
}

func readSeqContext1(p *parser.Parser, subtablePos int64) (Subtable, error) {
	coverageOffset, err := p.ReadUint16()
	if err != nil {
		return nil, err
	}
	ruleSetOffsets, err := p.ReadUint16Slice()
	if err != nil {
		return nil, err
	}

	cov, err := coverage.Read(p, subtablePos+int64(coverageOffset))
	if err != nil {
		return nil, err
	}
	if len(cov) > len(ruleSetOffsets) {
		cov.Prune(len(ruleSetOffsets))
	} else {
		ruleSetOffsets = ruleSetOffsets[:len(cov)]
	}

	ruleSets, err := readRuleSets(p, subtablePos, ruleSetOffsets, false)
	if err != nil {
		return nil, err
	}
	res := &SeqContext1{
		Cov:   cov,
		Rules: make([][]*SeqRule, len(ruleSets)),
	}
	for i, rules := range ruleSets {
		if rules == nil {
			continue
		}
		res.Rules[i] = make([]*SeqRule, len(rules))
		for j, r := range rules {
			res.Rules[i][j] = &SeqRule{Input: toGIDs(r.input), Actions: r.actions}
		}
	}
	return res, nil
}

// Encode implements the Subtable interface.
func (l *SeqContext1) Encode() ([]byte, error) {
	ruleSets := make([][]*rule, len(l.Rules))
	for i, rules := range l.Rules {
		if rules == nil {
			continue
		}
		ruleSets[i] = make([]*rule, len(rules))
		for j, r := range rules {
			ruleSets[i][j] = &rule{input: fromGIDs(r.Input), actions: r.Actions}
		}
	}

	w := newWriter()
	w.u16(1)
	w.offsetTo(0, l.Cov.Encode())
	err := writeRuleSets(w, ruleSets, false)
	if err != nil {
		return nil, err
	}
	return w.bytes()
}

func readSeqContext2(p *parser.Parser, subtablePos int64) (Subtable, error) {
	buf, err := p.ReadUint16s(2)
	if err != nil {
		return nil, err
	}
	ruleSetOffsets, err := p.ReadUint16Slice()
	if err != nil {
		return nil, err
	}

	cov, err := coverage.Read(p, subtablePos+int64(buf[0]))
	if err != nil {
		return nil, err
	}
	classDef, err := classdef.Read(p, subtablePos+int64(buf[1]))
	if err != nil {
		return nil, err
	}
	if numClasses := classDef.NumClasses(); len(ruleSetOffsets) > numClasses {
		ruleSetOffsets = ruleSetOffsets[:numClasses]
	}

	ruleSets, err := readRuleSets(p, subtablePos, ruleSetOffsets, false)
	if err != nil {
		return nil, err
	}
	res := &SeqContext2{
		Cov:   cov,
		Input: classDef,
		Rules: make([][]*ClassSeqRule, len(ruleSets)),
	}
	for i, rules := range ruleSets {
		if rules == nil {
			continue
		}
		res.Rules[i] = make([]*ClassSeqRule, len(rules))
		for j, r := range rules {
			res.Rules[i][j] = &ClassSeqRule{Input: r.input, Actions: r.actions}
		}
	}
	return res, nil
}

// Encode implements the Subtable interface.
func (l *SeqContext2) Encode() ([]byte, error) {
	ruleSets := make([][]*rule, len(l.Rules))
	for i, rules := range l.Rules {
		if rules == nil {
			continue
		}
		ruleSets[i] = make([]*rule, len(rules))
		for j, r := range rules {
			ruleSets[i][j] = &rule{input: r.Input, actions: r.Actions}
		}
	}

	w := newWriter()
	w.u16(2)
	w.offsetTo(0, l.Cov.Encode())
	w.offsetTo(0, l.Input.Append(nil))
	err := writeRuleSets(w, ruleSets, false)
	if err != nil {
		return nil, err
	}
	return w.bytes()
}

func readSeqContext3(p *parser.Parser, subtablePos int64) (Subtable, error) {
	buf, err := p.ReadUint16s(2)
	if err != nil {
		return nil, err
	}
	glyphCount := int(buf[0])
	if glyphCount < 1 {
		return nil, p.Error("invalid glyph count in SeqContext3")
	}
	coverageOffsets, err := p.ReadUint16s(glyphCount)
	if err != nil {
		return nil, err
	}
	actions, err := readNested(p, int(buf[1]))
	if err != nil {
		return nil, err
	}
	input, err := readCoverages(p, subtablePos, coverageOffsets)
	if err != nil {
		return nil, err
	}
	return &SeqContext3{
		Input:   input,
		Actions: actions,
	}, nil
}

// Encode implements the Subtable interface.
func (l *SeqContext3) Encode() ([]byte, error) {
	w := newWriter()
	w.u16(3)
	w.count(len(l.Input))
	w.count(len(l.Actions))
	for _, cov := range l.Input {
		w.offsetTo(0, cov.Encode())
	}
	for _, a := range l.Actions {
		w.u16(a.SequenceIndex, uint16(a.LookupListIndex))
	}
	return w.bytes()
}

func readChainedSeqContext1(p *parser.Parser, subtablePos int64) (Subtable, error) {
	coverageOffset, err := p.ReadUint16()
	if err != nil {
		return nil, err
	}
	ruleSetOffsets, err := p.ReadUint16Slice()
	if err != nil {
		return nil, err
	}

	cov, err := coverage.Read(p, subtablePos+int64(coverageOffset))
	if err != nil {
		return nil, err
	}
	if len(cov) > len(ruleSetOffsets) {
		cov.Prune(len(ruleSetOffsets))
	} else {
		ruleSetOffsets = ruleSetOffsets[:len(cov)]
	}

	ruleSets, err := readRuleSets(p, subtablePos, ruleSetOffsets, true)
	if err != nil {
		return nil, err
	}
	res := &ChainedSeqContext1{
		Cov:   cov,
		Rules: make([][]*ChainedSeqRule, len(ruleSets)),
	}
	for i, rules := range ruleSets {
		if rules == nil {
			continue
		}
		res.Rules[i] = make([]*ChainedSeqRule, len(rules))
		for j, r := range rules {
			res.Rules[i][j] = &ChainedSeqRule{
				Backtrack: toGIDs(r.backtrack),
				Input:     toGIDs(r.input),
				Lookahead: toGIDs(r.lookahead),
				Actions:   r.actions,
			}
		}
	}
	return res, nil
}

// Encode implements the Subtable interface.
func (l *ChainedSeqContext1) Encode() ([]byte, error) {
	ruleSets := make([][]*rule, len(l.Rules))
	for i, rules := range l.Rules {
		if rules == nil {
			continue
		}
		ruleSets[i] = make([]*rule, len(rules))
		for j, r := range rules {
			ruleSets[i][j] = &rule{
				backtrack: fromGIDs(r.Backtrack),
				input:     fromGIDs(r.Input),
				lookahead: fromGIDs(r.Lookahead),
				actions:   r.Actions,
			}
		}
	}

	w := newWriter()
	w.u16(1)
	w.offsetTo(0, l.Cov.Encode())
	err := writeRuleSets(w, ruleSets, true)
	if err != nil {
		return nil, err
	}
	return w.bytes()
}

func readChainedSeqContext2(p *parser.Parser, subtablePos int64) (Subtable, error) {
	buf, err := p.ReadUint16s(4)
	if err != nil {
		return nil, err
	}
	ruleSetOffsets, err := p.ReadUint16Slice()
	if err != nil {
		return nil, err
	}

	cov, err := coverage.Read(p, subtablePos+int64(buf[0]))
	if err != nil {
		return nil, err
	}
	var classDefs [3]classdef.Table
	for i := range classDefs {
		classDefs[i], err = classdef.Read(p, subtablePos+int64(buf[i+1]))
		if err != nil {
			return nil, err
		}
	}
	if numClasses := classDefs[1].NumClasses(); len(ruleSetOffsets) > numClasses {
		ruleSetOffsets = ruleSetOffsets[:numClasses]
	}

	ruleSets, err := readRuleSets(p, subtablePos, ruleSetOffsets, true)
	if err != nil {
		return nil, err
	}
	res := &ChainedSeqContext2{
		Cov:       cov,
		Backtrack: classDefs[0],
		Input:     classDefs[1],
		Lookahead: classDefs[2],
		Rules:     make([][]*ChainedClassSeqRule, len(ruleSets)),
	}
	for i, rules := range ruleSets {
		if rules == nil {
			continue
		}
		res.Rules[i] = make([]*ChainedClassSeqRule, len(rules))
		for j, r := range rules {
			res.Rules[i][j] = &ChainedClassSeqRule{
				Backtrack: r.backtrack,
				Input:     r.input,
				Lookahead: r.lookahead,
				Actions:   r.actions,
			}
		}
	}
	return res, nil
}

// Encode implements the Subtable interface.
func (l *ChainedSeqContext2) Encode() ([]byte, error) {
	ruleSets := make([][]*rule, len(l.Rules))
	for i, rules := range l.Rules {
		if rules == nil {
			continue
		}
		ruleSets[i] = make([]*rule, len(rules))
		for j, r := range rules {
			ruleSets[i][j] = &rule{
				backtrack: r.Backtrack,
				input:     r.Input,
				lookahead: r.Lookahead,
				actions:   r.Actions,
			}
		}
	}

	w := newWriter()
	w.u16(2)
	w.offsetTo(0, l.Cov.Encode())
	w.offsetTo(0, l.Backtrack.Append(nil))
	w.offsetTo(0, l.Input.Append(nil))
	w.offsetTo(0, l.Lookahead.Append(nil))
	err := writeRuleSets(w, ruleSets, true)
	if err != nil {
		return nil, err
	}
	return w.bytes()
}

func readChainedSeqContext3(p *parser.Parser, subtablePos int64) (Subtable, error) {
	var offsets [3][]uint16
	for i := range offsets {
		var err error
		offsets[i], err = p.ReadUint16Slice()
		if err != nil {
			return nil, err
		}
	}
	if len(offsets[1]) < 1 {
		return nil, p.Error("invalid glyph count in ChainedSeqContext3")
	}
	seqLookupCount, err := p.ReadUint16()
	if err != nil {
		return nil, err
	}
	actions, err := readNested(p, int(seqLookupCount))
	if err != nil {
		return nil, err
	}

	res := &ChainedSeqContext3{Actions: actions}
	for i, target := range []*[]coverage.Table{&res.Backtrack, &res.Input, &res.Lookahead} {
		*target, err = readCoverages(p, subtablePos, offsets[i])
		if err != nil {
			return nil, err
		}
	}
	return res, nil
}

// Encode implements the Subtable interface.
func (l *ChainedSeqContext3) Encode() ([]byte, error) {
	w := newWriter()
	w.u16(3)
	writeCoverages(w, l.Backtrack)
	writeCoverages(w, l.Input)
	writeCoverages(w, l.Lookahead)
	l.Actions.write(w)
	return w.bytes()
}
