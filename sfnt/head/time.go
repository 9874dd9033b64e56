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

package head

import "time"

func decodeTime(t int64) time.Time {
	return time.Unix(t+zeroTime, 0).UTC()
}

func encodeTime(t time.Time) int64 {
	return t.Unix() - zeroTime
}

// zeroTime is the start of January 1904 in GMT/UTC.
var zeroTime int64 = -2082844800
