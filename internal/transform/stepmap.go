package transform

// Mappable maps positions through document changes.
type Mappable interface {
	Map(pos, assoc int) int
	MapResult(pos, assoc int) MapResult
}

const (
	delBefore = 1 << iota
	delAfter
	delAcross
	delSide
)

const (
	lower16  = 0xffff
	factor16 = 1 << 16
)

func makeRecover(index, offset int) int { return index + offset*factor16 }
func recoverIndex(value int) int        { return value & lower16 }
func recoverOffset(value int) int       { return (value - (value & lower16)) / factor16 }

// MapResult is a mapped position with information about deletions
// around it.
type MapResult struct {
	Pos int

	delInfo int
	recover int // -1 when there is nothing to recover
}

// Deleted reports whether the content on the side selected by assoc
// was deleted.
func (r MapResult) Deleted() bool { return r.delInfo&delSide > 0 }

// DeletedBefore reports whether the token before the position was deleted.
func (r MapResult) DeletedBefore() bool { return r.delInfo&(delBefore|delAcross) > 0 }

// DeletedAfter reports whether the token after the position was deleted.
func (r MapResult) DeletedAfter() bool { return r.delInfo&(delAfter|delAcross) > 0 }

// DeletedAcross reports whether a deletion spanned the position.
func (r MapResult) DeletedAcross() bool { return r.delInfo&delAcross > 0 }

// StepMap describes the position changes made by one step as a flat list
// of (start, oldSize, newSize) triples.
type StepMap struct {
	ranges   []int
	inverted bool
}

// EmptyStepMap changes nothing.
var EmptyStepMap = &StepMap{}

// NewStepMap creates a map from range triples.
func NewStepMap(ranges ...int) *StepMap {
	if len(ranges) == 0 {
		return EmptyStepMap
	}
	return &StepMap{ranges: ranges}
}

// OffsetMap shifts every position by n.
func OffsetMap(n int) *StepMap {
	switch {
	case n == 0:
		return EmptyStepMap
	case n < 0:
		return NewStepMap(0, -n, 0)
	default:
		return NewStepMap(0, 0, n)
	}
}

func (m *StepMap) recover(value int) int {
	diff := 0
	index := recoverIndex(value)
	if !m.inverted {
		for i := 0; i < index; i++ {
			diff += m.ranges[i*3+2] - m.ranges[i*3+1]
		}
	}
	return m.ranges[index*3] + diff + recoverOffset(value)
}

// Map maps pos. assoc decides which side a position at an insertion
// or deletion boundary sticks to: negative for before, positive for after.
func (m *StepMap) Map(pos, assoc int) int {
	return m.mapPos(pos, assoc).Pos
}

// MapResult maps pos and reports deletions.
func (m *StepMap) MapResult(pos, assoc int) MapResult {
	return m.mapPos(pos, assoc)
}

func (m *StepMap) mapPos(pos, assoc int) MapResult {
	diff := 0
	oldIndex, newIndex := 1, 2
	if m.inverted {
		oldIndex, newIndex = 2, 1
	}
	for i := 0; i < len(m.ranges); i += 3 {
		start := m.ranges[i]
		if m.inverted {
			start -= diff
		}
		if start > pos {
			break
		}
		oldSize, newSize := m.ranges[i+oldIndex], m.ranges[i+newIndex]
		end := start + oldSize
		if pos <= end {
			side := assoc
			if oldSize != 0 {
				switch pos {
				case start:
					side = -1
				case end:
					side = 1
				}
			}
			result := start + diff
			if side >= 0 {
				result += newSize
			}
			recover := makeRecover(i/3, pos-start)
			if (assoc < 0 && pos == start) || (assoc >= 0 && pos == end) {
				recover = -1
			}
			del := delAcross
			switch pos {
			case start:
				del = delAfter
			case end:
				del = delBefore
			}
			if (assoc < 0 && pos != start) || (assoc >= 0 && pos != end) {
				del |= delSide
			}
			return MapResult{Pos: result, delInfo: del, recover: recover}
		}
		diff += newSize - oldSize
	}
	return MapResult{Pos: pos + diff, recover: -1}
}

// ForEach calls fn for each changed range with its old and new extent.
func (m *StepMap) ForEach(fn func(oldStart, oldEnd, newStart, newEnd int)) {
	oldIndex, newIndex := 1, 2
	if m.inverted {
		oldIndex, newIndex = 2, 1
	}
	diff := 0
	for i := 0; i < len(m.ranges); i += 3 {
		start := m.ranges[i]
		oldStart, newStart := start, start+diff
		if m.inverted {
			oldStart, newStart = start-diff, start
		}
		oldSize, newSize := m.ranges[i+oldIndex], m.ranges[i+newIndex]
		fn(oldStart, oldStart+oldSize, newStart, newStart+newSize)
		diff += newSize - oldSize
	}
}

// Invert returns the map that undoes m.
func (m *StepMap) Invert() *StepMap {
	if len(m.ranges) == 0 {
		return m
	}
	return &StepMap{ranges: m.ranges, inverted: !m.inverted}
}

// Mapping composes step maps. Maps can be mirrored: a map and its
// inverse registered as mirrors let positions deleted by one be
// recovered by the other.
type Mapping struct {
	maps   []*StepMap
	mirror []int
	from   int
	to     int
}

// NewMapping creates a mapping over maps.
func NewMapping(maps ...*StepMap) *Mapping {
	return &Mapping{maps: maps, to: len(maps)}
}

// Maps returns the step maps in the active window.
func (m *Mapping) Maps() []*StepMap {
	return m.maps[m.from:m.to]
}

// Slice returns a mapping over maps [from, to).
func (m *Mapping) Slice(from, to int) *Mapping {
	return &Mapping{maps: m.maps, mirror: m.mirror, from: from, to: to}
}

// SliceFrom returns a mapping over maps from index from to the end.
func (m *Mapping) SliceFrom(from int) *Mapping {
	return m.Slice(from, len(m.maps))
}

// AppendMap adds a map. mirrors is the index of its mirror, or -1.
func (m *Mapping) AppendMap(sm *StepMap, mirrors int) {
	m.maps = append(m.maps, sm)
	m.to = len(m.maps)
	if mirrors >= 0 {
		m.setMirror(len(m.maps)-1, mirrors)
	}
}

// AppendMapping adds all maps of other.
func (m *Mapping) AppendMapping(other *Mapping) {
	startSize := len(m.maps)
	for i, sm := range other.maps {
		mirr := other.getMirror(i)
		if mirr >= 0 && mirr < i {
			m.AppendMap(sm, startSize+mirr)
		} else {
			m.AppendMap(sm, -1)
		}
	}
}

// AppendMappingInverted adds the inverses of other's maps in reverse.
func (m *Mapping) AppendMappingInverted(other *Mapping) {
	totalSize := len(m.maps) + len(other.maps)
	for i := len(other.maps) - 1; i >= 0; i-- {
		mirr := other.getMirror(i)
		if mirr >= 0 && mirr > i {
			m.AppendMap(other.maps[i].Invert(), totalSize-mirr-1)
		} else {
			m.AppendMap(other.maps[i].Invert(), -1)
		}
	}
}

// Invert returns the mapping that undoes m.
func (m *Mapping) Invert() *Mapping {
	inverse := &Mapping{}
	inverse.AppendMappingInverted(m)
	return inverse
}

func (m *Mapping) getMirror(n int) int {
	for i := 0; i < len(m.mirror); i++ {
		if m.mirror[i] == n {
			if i%2 == 1 {
				return m.mirror[i-1]
			}
			return m.mirror[i+1]
		}
	}
	return -1
}

func (m *Mapping) setMirror(n, mirror int) {
	m.mirror = append(m.mirror, n, mirror)
}

// Map maps pos through every map in the window.
func (m *Mapping) Map(pos, assoc int) int {
	if len(m.mirror) > 0 {
		return m.mapPos(pos, assoc).Pos
	}
	for i := m.from; i < m.to; i++ {
		pos = m.maps[i].Map(pos, assoc)
	}
	return pos
}

// MapResult maps pos and accumulates deletion information.
func (m *Mapping) MapResult(pos, assoc int) MapResult {
	return m.mapPos(pos, assoc)
}

func (m *Mapping) mapPos(pos, assoc int) MapResult {
	delInfo := 0
	for i := m.from; i < m.to; i++ {
		result := m.maps[i].MapResult(pos, assoc)
		if result.recover >= 0 {
			if corr := m.getMirror(i); corr >= 0 && corr > i && corr < m.to {
				i = corr
				pos = m.maps[corr].recover(result.recover)
				continue
			}
		}
		delInfo |= result.delInfo
		pos = result.Pos
	}
	return MapResult{Pos: pos, delInfo: delInfo, recover: -1}
}
