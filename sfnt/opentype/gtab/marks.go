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
	"github.com/chiron-fonts/sub-fonts/sfnt/opentype/anchor"
	"github.com/chiron-fonts/sub-fonts/sfnt/opentype/coverage"
	"github.com/chiron-fonts/sub-fonts/sfnt/opentype/markarray"
	"github.com/chiron-fonts/sub-fonts/sfnt/parser"
)

// Gpos4_1 is a Mark-to-Base Attachment Positioning Subtable (format 1).
// https://docs.microsoft.com/en-us/typography/opentype/spec/gpos#mark-to-base-attachment-positioning-format-1-mark-to-base-attachment-point
type Gpos4_1 struct {
	MarkCov        coverage.Table
	BaseCov        coverage.Table
	MarkClassCount int
	MarkArray      markarray.Table   // indexed by mark coverage index
	BaseArray      [][]*anchor.Table // indexed by base coverage index, then by mark class
}

func readGpos4_1(p *parser.Parser, subtablePos int64) (Subtable, error) {
	markCov, baseCov, markClassCount, markArray, baseArrayPos, err := readMarkHeader(p, subtablePos)
	if err != nil {
		return nil, err
	}
	baseArray, err := readAnchorMatrix(p, baseArrayPos, len(baseCov), markClassCount)
	if err != nil {
		return nil, err
	}
	baseCov.Prune(len(baseArray))
	return &Gpos4_1{
		MarkCov:        markCov,
		BaseCov:        baseCov,
		MarkClassCount: markClassCount,
		MarkArray:      markArray,
		BaseArray:      baseArray,
	}, nil
}

// Encode implements the Subtable interface.
func (l *Gpos4_1) Encode() ([]byte, error) {
	baseArray, err := encodeAnchorMatrix(l.BaseArray, l.MarkClassCount)
	if err != nil {
		return nil, err
	}
	return encodeMarkSubtable(l.MarkCov, l.BaseCov, l.MarkClassCount, l.MarkArray, baseArray)
}

// Gpos5_1 is a Mark-to-Ligature Attachment Positioning Subtable (format 1).
// https://docs.microsoft.com/en-us/typography/opentype/spec/gpos#mark-to-ligature-attachment-positioning-format-1-mark-to-ligature-attachment
type Gpos5_1 struct {
	MarkCov        coverage.Table
	LigCov         coverage.Table
	MarkClassCount int
	MarkArray      markarray.Table     // indexed by mark coverage index
	LigArray       [][][]*anchor.Table // indexed by ligature coverage index, component, mark class
}

func readGpos5_1(p *parser.Parser, subtablePos int64) (Subtable, error) {
	markCov, ligCov, markClassCount, markArray, ligArrayPos, err := readMarkHeader(p, subtablePos)
	if err != nil {
		return nil, err
	}

	err = p.SeekPos(ligArrayPos)
	if err != nil {
		return nil, err
	}
	ligAttachOffsets, err := p.ReadUint16Slice()
	if err != nil {
		return nil, err
	}
	if len(ligAttachOffsets) > len(ligCov) {
		ligAttachOffsets = ligAttachOffsets[:len(ligCov)]
	} else {
		ligCov.Prune(len(ligAttachOffsets))
	}

	ligArray := make([][][]*anchor.Table, len(ligAttachOffsets))
	for i, offs := range ligAttachOffsets {
		ligArray[i], err = readAnchorMatrix(p, ligArrayPos+int64(offs), 0xFFFF, markClassCount)
		if err != nil {
			return nil, err
		}
	}

	return &Gpos5_1{
		MarkCov:        markCov,
		LigCov:         ligCov,
		MarkClassCount: markClassCount,
		MarkArray:      markArray,
		LigArray:       ligArray,
	}, nil
}

// Encode implements the Subtable interface.
func (l *Gpos5_1) Encode() ([]byte, error) {
	w := newWriter()
	w.count(len(l.LigArray))
	for _, lig := range l.LigArray {
		data, err := encodeAnchorMatrix(lig, l.MarkClassCount)
		if err != nil {
			return nil, err
		}
		w.offsetTo(0, data)
	}
	ligArray, err := w.bytes()
	if err != nil {
		return nil, err
	}
	return encodeMarkSubtable(l.MarkCov, l.LigCov, l.MarkClassCount, l.MarkArray, ligArray)
}

// Gpos6_1 is a Mark-to-Mark Attachment Positioning Subtable (format 1).
// https://docs.microsoft.com/en-us/typography/opentype/spec/gpos#mark-to-mark-attachment-positioning-format-1-mark-to-mark-attachment
type Gpos6_1 struct {
	Mark1Cov       coverage.Table
	Mark2Cov       coverage.Table
	MarkClassCount int
	Mark1Array     markarray.Table   // indexed by mark1 coverage index
	Mark2Array     [][]*anchor.Table // indexed by mark2 coverage index, then by mark class
}

func readGpos6_1(p *parser.Parser, subtablePos int64) (Subtable, error) {
	mark1Cov, mark2Cov, markClassCount, mark1Array, mark2ArrayPos, err := readMarkHeader(p, subtablePos)
	if err != nil {
		return nil, err
	}
	mark2Array, err := readAnchorMatrix(p, mark2ArrayPos, len(mark2Cov), markClassCount)
	if err != nil {
		return nil, err
	}
	mark2Cov.Prune(len(mark2Array))
	return &Gpos6_1{
		Mark1Cov:       mark1Cov,
		Mark2Cov:       mark2Cov,
		MarkClassCount: markClassCount,
		Mark1Array:     mark1Array,
		Mark2Array:     mark2Array,
	}, nil
}

// Encode implements the Subtable interface.
func (l *Gpos6_1) Encode() ([]byte, error) {
	mark2Array, err := encodeAnchorMatrix(l.Mark2Array, l.MarkClassCount)
	if err != nil {
		return nil, err
	}
	return encodeMarkSubtable(l.Mark1Cov, l.Mark2Cov, l.MarkClassCount, l.Mark1Array, mark2Array)
}

// readMarkHeader reads the part which is common to the lookup types 4, 5
// and 6.  The position of the base, ligature or mark2 array is returned
// without decoding it.
func readMarkHeader(p *parser.Parser, subtablePos int64) (markCov, otherCov coverage.Table, markClassCount int, marks markarray.Table, otherArrayPos int64, err error) {
	buf, err := p.ReadUint16s(5)
	if err != nil {
		return
	}
	markClassCount = int(buf[2])
	otherArrayPos = subtablePos + int64(buf[4])

	markCov, err = coverage.Read(p, subtablePos+int64(buf[0]))
	if err != nil {
		return
	}
	otherCov, err = coverage.Read(p, subtablePos+int64(buf[1]))
	if err != nil {
		return
	}
	marks, err = markarray.Read(p, subtablePos+int64(buf[3]), len(markCov))
	if err != nil {
		return
	}
	if len(markCov) > len(marks) {
		markCov.Prune(len(marks))
	}
	for _, rec := range marks {
		if int(rec.Class) >= markClassCount {
			err = p.Error("mark class %d out of range", rec.Class)
			return
		}
	}
	return
}

// readAnchorMatrix reads a table which consists of a row count, followed by
// rows of anchor offsets, one per mark class.  Offsets are relative to the
// start of the table.  At most maxRows rows are read.
func readAnchorMatrix(p *parser.Parser, pos int64, maxRows, markClassCount int) ([][]*anchor.Table, error) {
	err := p.SeekPos(pos)
	if err != nil {
		return nil, err
	}
	rowCount, err := p.ReadUint16()
	if err != nil {
		return nil, err
	}
	rows := min(int(rowCount), maxRows)
	offsets, err := p.ReadUint16s(rows * markClassCount)
	if err != nil {
		return nil, err
	}

	res := make([][]*anchor.Table, rows)
	for i := range res {
		row := make([]*anchor.Table, markClassCount)
		for j := range row {
			offs := offsets[i*markClassCount+j]
			if offs == 0 {
				continue
			}
			row[j], err = anchor.Read(p, pos+int64(offs))
			if err != nil {
				return nil, err
			}
		}
		res[i] = row
	}
	return res, nil
}

func encodeAnchorMatrix(rows [][]*anchor.Table, markClassCount int) ([]byte, error) {
	w := newWriter()
	w.count(len(rows))
	for _, row := range rows {
		for j := 0; j < markClassCount; j++ {
			var a *anchor.Table
			if j < len(row) {
				a = row[j]
			}
			w.offsetTo(0, appendAnchor(a))
		}
	}
	return w.bytes()
}

func encodeMarkSubtable(markCov, otherCov coverage.Table, markClassCount int, marks markarray.Table, otherArray []byte) ([]byte, error) {
	if marks.AppendLen() > 0xFFFF {
		w := &writer{}
		w.fail("mark array larger than 64 KiB")
		return nil, w.err
	}
	w := newWriter()
	w.u16(1)
	w.offsetTo(0, markCov.Encode())
	w.offsetTo(0, otherCov.Encode())
	w.count(markClassCount)
	w.offsetTo(0, marks.Append(nil))
	w.offsetTo(0, otherArray)
	return w.bytes()
}
