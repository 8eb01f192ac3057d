package domain

// PathItem is one position in a course's learning path. Next holds the index of the
// successor item in the owning path, or NoNext for the tail.
type PathItem struct {
	ID       uint
	Tutorial TutorialID
	Next     int
}

const NoNext = -1

func (i PathItem) HasNext() bool {
	return i.Next != NoNext
}

// LearningPath is the ordered chain of tutorials prescribed by a course. Items are kept
// in insertion order; the chain itself is expressed through the Next indexes.
type LearningPath struct {
	items []PathItem
}

// RestoreLearningPath rebuilds a path from stored items. Next indexes that point outside
// the slice are treated as NoNext.
func RestoreLearningPath(items []PathItem) LearningPath {
	restored := make([]PathItem, len(items))
	copy(restored, items)
	for i := range restored {
		if restored[i].Next < 0 || restored[i].Next >= len(restored) {
			restored[i].Next = NoNext
		}
	}
	return LearningPath{items: restored}
}

// Items returns a copy of the items in insertion order.
func (p *LearningPath) Items() []PathItem {
	out := make([]PathItem, len(p.items))
	copy(out, p.items)
	return out
}

func (p *LearningPath) Len() int {
	return len(p.items)
}

func (p *LearningPath) IsEmpty() bool {
	return len(p.items) == 0
}

// Append adds the tutorial at the end of the path. The current tail, if any, is linked
// to the new item. The same tutorial may be appended more than once.
func (p *LearningPath) Append(tutorial TutorialID) PathItem {
	tail := p.lastIndex()
	p.items = append(p.items, PathItem{Tutorial: tutorial, Next: NoNext})
	added := len(p.items) - 1
	if tail != NoNext {
		p.items[tail].Next = added
	}
	return p.items[added]
}

// InsertBefore adds the tutorial with the first item holding before as its successor.
// The predecessor of that item is left untouched, so the new item is not reachable by
// walking the chain from the first item. When before is not in the path the new item
// has no successor.
func (p *LearningPath) InsertBefore(tutorial, before TutorialID) PathItem {
	next := p.indexOf(before)
	p.items = append(p.items, PathItem{Tutorial: tutorial, Next: next})
	return p.items[len(p.items)-1]
}

// ItemFor returns the first item referencing the tutorial.
func (p *LearningPath) ItemFor(tutorial TutorialID) (PathItem, bool) {
	idx := p.indexOf(tutorial)
	if idx == NoNext {
		return PathItem{}, false
	}
	return p.items[idx], true
}

// Successor returns the tutorial following the given one, or NoTutorial when the
// tutorial is the tail or is not in the path.
func (p *LearningPath) Successor(tutorial TutorialID) TutorialID {
	idx := p.indexOf(tutorial)
	if idx == NoNext || !p.items[idx].HasNext() {
		return NoTutorial
	}
	return p.items[p.items[idx].Next].Tutorial
}

func (p *LearningPath) IsTail(tutorial TutorialID) bool {
	return p.Successor(tutorial) == NoTutorial
}

// First returns the tutorial of the first inserted item.
func (p *LearningPath) First() (TutorialID, error) {
	if p.IsEmpty() {
		return NoTutorial, ErrEmptyPath
	}
	return p.items[0].Tutorial, nil
}

// Last returns the first item without a successor.
func (p *LearningPath) Last() (PathItem, bool) {
	idx := p.lastIndex()
	if idx == NoNext {
		return PathItem{}, false
	}
	return p.items[idx], true
}

func (p *LearningPath) indexOf(tutorial TutorialID) int {
	for i, item := range p.items {
		if item.Tutorial == tutorial {
			return i
		}
	}
	return NoNext
}

func (p *LearningPath) lastIndex() int {
	for i, item := range p.items {
		if !item.HasNext() {
			return i
		}
	}
	return NoNext
}
