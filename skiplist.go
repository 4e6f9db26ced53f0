package blaze

import (
	"errors"
	"math"
	"math/rand"
)

// MaxHeight bounds tower height; log2 of the largest posting list this
// index is ever expected to hold.
const MaxHeight = 32

// EOF and BOF are sentinel positions used to bound a walk: every real
// position sorts strictly between them.
var (
	EOF = math.MaxInt
	BOF = math.MinInt
)

var (
	ErrKeyNotFound    = errors.New("key not found")
	ErrNoElementFound = errors.New("no element found")
)

// Position locates a single token occurrence: the internal document id
// it was found in, and its offset within that document. The BOF/EOF
// sentinels are the extreme int values, so they share the same type as
// real positions, letting callers compare ranges without a separate
// empty-list case.
type Position struct {
	DocumentID int
	Offset     int
}

var (
	BOFDocument = Position{DocumentID: BOF, Offset: BOF}
	EOFDocument = Position{DocumentID: EOF, Offset: EOF}
)

func (p *Position) GetDocumentID() int {
	return int(p.DocumentID)
}

func (p *Position) GetOffset() int {
	return int(p.Offset)
}

func (p *Position) IsBeginning() bool {
	return p.Offset == BOF
}

func (p *Position) IsEnd() bool {
	return p.Offset == EOF
}

// IsBefore orders positions by document id first, then offset.
func (p *Position) IsBefore(other Position) bool {
	if p.DocumentID < other.DocumentID {
		return true
	}
	return p.DocumentID == other.DocumentID && p.Offset < other.Offset
}

func (p *Position) IsAfter(other Position) bool {
	if p.DocumentID > other.DocumentID {
		return true
	}
	return p.DocumentID == other.DocumentID && p.Offset > other.Offset
}

func (p *Position) Equals(other Position) bool {
	return p.DocumentID == other.DocumentID && p.Offset == other.Offset
}

// Node is one element of a SkipList tower. Tower[level] points to the
// next node that is still present at that level; level 0 links every
// node in sorted order.
type Node struct {
	Key   Position
	Tower [MaxHeight]*Node
}

// SkipList holds the positions at which a single term occurs, across
// every document, in sorted (DocumentID, Offset) order. Search,
// Insert, and Delete are all O(log n) expected.
type SkipList struct {
	Head   *Node
	Height int
	rng    *rand.Rand
}

// NewSkipList returns an empty list with height 1.
func NewSkipList() *SkipList {
	return &SkipList{
		Head:   &Node{},
		Height: 1,
	}
}

// Search walks from the top level down, returning the node holding an
// exact match for key (nil if absent) and the journey: the
// predecessor of key at every level, needed by Insert and Delete to
// splice or unlink a node.
func (sl *SkipList) Search(key Position) (*Node, [MaxHeight]*Node) {
	var journey [MaxHeight]*Node
	current := sl.Head

	for level := sl.Height - 1; level >= 0; level-- {
		current = sl.traverseLevel(current, key, level)
		journey[level] = current
	}

	next := current.Tower[0]
	if next != nil && next.Key.Equals(key) {
		return next, journey
	}
	return nil, journey
}

// traverseLevel advances along a single level as far as possible
// without passing target.
func (sl *SkipList) traverseLevel(start *Node, target Position, level int) *Node {
	current := start
	next := current.Tower[level]
	for next != nil && sl.shouldAdvance(next.Key, target) {
		current = next
		next = current.Tower[level]
	}
	return current
}

func (sl *SkipList) shouldAdvance(nodeKey, targetKey Position) bool {
	if nodeKey.Equals(targetKey) {
		return false
	}
	return nodeKey.IsBefore(targetKey)
}

// Find returns key if present, else ErrKeyNotFound.
func (sl *SkipList) Find(key Position) (Position, error) {
	found, _ := sl.Search(key)
	if found == nil {
		return EOFDocument, ErrKeyNotFound
	}
	return found.Key, nil
}

// FindLessThan returns the largest stored key strictly less than key.
// Used to walk a term's occurrences backward from a given position.
func (sl *SkipList) FindLessThan(key Position) (Position, error) {
	_, journey := sl.Search(key)

	predecessor := journey[0]
	if predecessor == nil || predecessor == sl.Head {
		return BOFDocument, ErrNoElementFound
	}
	return predecessor.Key, nil
}

// FindGreaterThan returns the smallest stored key strictly greater
// than key, whether or not key itself is present. Used to walk a
// term's occurrences forward from a given position.
func (sl *SkipList) FindGreaterThan(key Position) (Position, error) {
	found, journey := sl.Search(key)

	if found != nil {
		if found.Tower[0] != nil {
			return found.Tower[0].Key, nil
		}
		return EOFDocument, ErrNoElementFound
	}

	predecessor := journey[0]
	if predecessor != nil && predecessor.Tower[0] != nil {
		return predecessor.Tower[0].Key, nil
	}
	return EOFDocument, ErrNoElementFound
}

// Insert adds key to the list, or updates it in place if already
// present.
func (sl *SkipList) Insert(key Position) {
	found, journey := sl.Search(key)
	if found != nil {
		found.Key = key
		return
	}

	height := sl.randomHeight()
	newNode := &Node{Key: key}
	sl.linkNode(newNode, journey, height)

	if height > sl.Height {
		sl.Height = height
	}
}

// linkNode splices node into the list at every level up to height,
// using the predecessors captured in journey.
func (sl *SkipList) linkNode(node *Node, journey [MaxHeight]*Node, height int) {
	for level := 0; level < height; level++ {
		predecessor := journey[level]
		if predecessor == nil {
			predecessor = sl.Head
		}
		node.Tower[level] = predecessor.Tower[level]
		predecessor.Tower[level] = node
	}
}

// Delete removes key, reporting whether it was present.
func (sl *SkipList) Delete(key Position) bool {
	found, journey := sl.Search(key)
	if found == nil {
		return false
	}

	for level := 0; level < sl.Height; level++ {
		if journey[level].Tower[level] != found {
			break
		}
		journey[level].Tower[level] = found.Tower[level]
	}

	sl.shrink()
	return true
}

// Last returns the largest stored position. On an empty list it returns
// the head sentinel's zero-valued key.
func (sl *SkipList) Last() Position {
	current := sl.Head
	for next := current.Tower[0]; next != nil; next = next.Tower[0] {
		current = next
	}
	return current.Key
}

// shrink drops top levels left empty by a deletion, so Search doesn't
// walk past the tallest surviving node.
func (sl *SkipList) shrink() {
	for level := sl.Height - 1; level >= 0; level-- {
		if sl.Head.Tower[level] == nil {
			sl.Height--
		} else {
			break
		}
	}
}

// randomHeight draws a geometric(0.5) tower height, capped at
// MaxHeight. The generator is lazily created per list and reused
// across inserts instead of reseeding from the clock on every call.
func (sl *SkipList) randomHeight() int {
	if sl.rng == nil {
		sl.rng = rand.New(rand.NewSource(rand.Int63()))
	}

	height := 1
	for sl.rng.Float64() < 0.5 && height < MaxHeight {
		height++
	}
	return height
}

// Iterator walks a SkipList's level-0 chain in sorted order.
type Iterator struct {
	current *Node
}

// Iterator returns an Iterator positioned at the first element;
// callers read it directly before calling HasNext/Next for the rest.
func (sl *SkipList) Iterator() *Iterator {
	return &Iterator{current: sl.Head.Tower[0]}
}

func (it *Iterator) HasNext() bool {
	return it.current != nil && it.current.Tower[0] != nil
}

// Next advances and returns the next position. Callers should check
// HasNext first; Next on an exhausted iterator returns EOFDocument.
func (it *Iterator) Next() Position {
	if it.current == nil {
		return EOFDocument
	}
	it.current = it.current.Tower[0]
	if it.current == nil {
		return EOFDocument
	}
	return it.current.Key
}
