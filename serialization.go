package blaze

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"os"

	"github.com/RoaringBitmap/roaring"
)

// Encode serializes the index to a custom binary format: a header with
// BM25 stats, document stats, the external<->internal id registry, the
// vocabulary set, every term's roaring bitmap, and finally the posting
// lists (skip list towers encoded as node indices rather than
// pointers, since pointers are meaningless after a round-trip).
func (idx *InvertedIndex) Encode() ([]byte, error) {
	buf := new(bytes.Buffer)

	if err := idx.encodeHeader(buf); err != nil {
		return nil, err
	}
	if err := idx.encodeDocStats(buf); err != nil {
		return nil, err
	}
	if err := idx.encodeRegistry(buf); err != nil {
		return nil, err
	}
	if err := idx.encodeVocabulary(buf); err != nil {
		return nil, err
	}
	if err := idx.encodeBitmaps(buf); err != nil {
		return nil, err
	}

	encoder := newIndexEncoder(buf)
	for term, skipList := range idx.PostingsList {
		if err := encoder.encodeTerm(term, skipList); err != nil {
			return nil, err
		}
	}

	return buf.Bytes(), nil
}

// encodeRegistry writes the external (string) <-> internal (int) doc id
// mapping and the next-id counter, so ids stay stable across a
// save/load round-trip.
func (idx *InvertedIndex) encodeRegistry(buf *bytes.Buffer) error {
	if err := binary.Write(buf, binary.LittleEndian, uint32(len(idx.externalToInternal))); err != nil {
		return err
	}
	for external, internal := range idx.externalToInternal {
		extBytes := []byte(external)
		if err := binary.Write(buf, binary.LittleEndian, uint32(len(extBytes))); err != nil {
			return err
		}
		if _, err := buf.Write(extBytes); err != nil {
			return err
		}
		if err := binary.Write(buf, binary.LittleEndian, uint32(internal)); err != nil {
			return err
		}
	}
	return binary.Write(buf, binary.LittleEndian, uint32(idx.nextDocID))
}

// encodeVocabulary writes the set of indexed terms.
func (idx *InvertedIndex) encodeVocabulary(buf *bytes.Buffer) error {
	if err := binary.Write(buf, binary.LittleEndian, uint32(len(idx.Vocabulary))); err != nil {
		return err
	}
	for term := range idx.Vocabulary {
		termBytes := []byte(term)
		if err := binary.Write(buf, binary.LittleEndian, uint32(len(termBytes))); err != nil {
			return err
		}
		if _, err := buf.Write(termBytes); err != nil {
			return err
		}
	}
	return nil
}

// encodeBitmaps writes every term's document bitmap using roaring's own
// serialization format, rather than rebuilding bitmaps from the posting
// lists on load: the original format never persisted DocBitmaps at all,
// which silently broke every bitmap-backed query (GetDocFrequency,
// GetDocsWithTerms) after a save/load round-trip.
func (idx *InvertedIndex) encodeBitmaps(buf *bytes.Buffer) error {
	if err := binary.Write(buf, binary.LittleEndian, uint32(len(idx.DocBitmaps))); err != nil {
		return err
	}
	for term, bitmap := range idx.DocBitmaps {
		termBytes := []byte(term)
		if err := binary.Write(buf, binary.LittleEndian, uint32(len(termBytes))); err != nil {
			return err
		}
		if _, err := buf.Write(termBytes); err != nil {
			return err
		}
		bitmapBytes, err := bitmap.ToBytes()
		if err != nil {
			return err
		}
		if err := binary.Write(buf, binary.LittleEndian, uint32(len(bitmapBytes))); err != nil {
			return err
		}
		if _, err := buf.Write(bitmapBytes); err != nil {
			return err
		}
	}
	return nil
}

// encodeHeader writes corpus-wide stats and the BM25 parameters.
func (idx *InvertedIndex) encodeHeader(buf *bytes.Buffer) error {
	if err := binary.Write(buf, binary.LittleEndian, uint32(idx.TotalDocs)); err != nil {
		return err
	}
	if err := binary.Write(buf, binary.LittleEndian, uint64(idx.TotalTerms)); err != nil {
		return err
	}
	if err := binary.Write(buf, binary.LittleEndian, idx.BM25Params.K1); err != nil {
		return err
	}
	if err := binary.Write(buf, binary.LittleEndian, idx.BM25Params.B); err != nil {
		return err
	}
	return binary.Write(buf, binary.LittleEndian, uint32(len(idx.DocStats)))
}

// encodeDocStats writes, for every document, its length and per-term
// frequencies (the inputs BM25 needs without rescanning posting lists).
func (idx *InvertedIndex) encodeDocStats(buf *bytes.Buffer) error {
	for _, docStats := range idx.DocStats {
		if err := binary.Write(buf, binary.LittleEndian, uint32(docStats.DocID)); err != nil {
			return err
		}
		if err := binary.Write(buf, binary.LittleEndian, uint32(docStats.Length)); err != nil {
			return err
		}
		if err := binary.Write(buf, binary.LittleEndian, uint32(len(docStats.TermFreqs))); err != nil {
			return err
		}
		for term, freq := range docStats.TermFreqs {
			termBytes := []byte(term)
			if err := binary.Write(buf, binary.LittleEndian, uint32(len(termBytes))); err != nil {
				return err
			}
			if _, err := buf.Write(termBytes); err != nil {
				return err
			}
			if err := binary.Write(buf, binary.LittleEndian, uint32(freq)); err != nil {
				return err
			}
		}
	}
	return nil
}

// indexEncoder accumulates posting-list bytes into a shared buffer.
type indexEncoder struct {
	buffer *bytes.Buffer
}

func newIndexEncoder(buffer *bytes.Buffer) *indexEncoder {
	return &indexEncoder{buffer: buffer}
}

// encodeTerm writes a term name followed by its skip list: first every
// node's (DocID, Offset) in level-0 order, then each node's tower
// re-expressed as indices into that same order (pointers don't survive
// a round-trip, indices do).
func (e *indexEncoder) encodeTerm(term string, skipList SkipList) error {
	if err := e.writeString(term); err != nil {
		return err
	}

	nodeMap := e.buildNodeIndexMap(skipList)

	nodeData := e.encodeNodePositions(skipList)
	if err := e.writeBytes(nodeData); err != nil {
		return err
	}

	return e.encodeTowerStructure(skipList, nodeMap)
}

func (e *indexEncoder) writeString(s string) error {
	data := []byte(s)
	if err := binary.Write(e.buffer, binary.LittleEndian, uint32(len(data))); err != nil {
		return err
	}
	_, err := e.buffer.Write(data)
	return err
}

func (e *indexEncoder) writeBytes(data []byte) error {
	if err := binary.Write(e.buffer, binary.LittleEndian, uint32(len(data))); err != nil {
		return err
	}
	_, err := e.buffer.Write(data)
	return err
}

// buildNodeIndexMap assigns every node in skipList a stable 1-based
// index in level-0 order, so towers can reference each other by index
// instead of by pointer.
func (e *indexEncoder) buildNodeIndexMap(skipList SkipList) map[nodePosition]int {
	nodeMap := make(map[nodePosition]int)
	current := skipList.Head
	index := 1

	for current != nil {
		pos := nodePosition{
			DocID:    int32(current.Key.DocumentID),
			Position: int32(current.Key.Offset),
		}
		nodeMap[pos] = index
		index++
		current = current.Tower[0]
	}

	return nodeMap
}

// encodeNodePositions writes every node's (DocID, Offset) pair, in
// level-0 order, as consecutive int32 values.
func (e *indexEncoder) encodeNodePositions(skipList SkipList) []byte {
	buf := new(bytes.Buffer)
	current := skipList.Head

	for current != nil {
		binary.Write(buf, binary.LittleEndian, int32(current.Key.DocumentID))
		binary.Write(buf, binary.LittleEndian, int32(current.Key.Offset))
		current = current.Tower[0]
	}

	return buf.Bytes()
}

// encodeTowerStructure writes, for every node in level-0 order, its
// tower re-expressed as a list of node indices.
func (e *indexEncoder) encodeTowerStructure(skipList SkipList, nodeMap map[nodePosition]int) error {
	current := skipList.Head

	for current != nil {
		towerData := e.encodeTowerForNode(current, nodeMap)
		if err := e.writeBytes(towerData); err != nil {
			return err
		}
		current = current.Tower[0]
	}

	return nil
}

// encodeTowerForNode writes node's tower pointers as uint16 indices; an
// empty tower is written as a single zero.
func (e *indexEncoder) encodeTowerForNode(node *Node, nodeMap map[nodePosition]int) []byte {
	buf := new(bytes.Buffer)

	towerIndices := e.collectTowerIndices(node, nodeMap)
	if len(towerIndices) == 0 {
		binary.Write(buf, binary.LittleEndian, uint16(0))
	} else {
		for _, index := range towerIndices {
			binary.Write(buf, binary.LittleEndian, uint16(index))
		}
	}

	return buf.Bytes()
}

// collectTowerIndices walks node's tower from level 0 up until the
// first nil pointer, converting each target node to its nodeMap index.
func (e *indexEncoder) collectTowerIndices(node *Node, nodeMap map[nodePosition]int) []int {
	var indices []int

	for level := 0; level < MaxHeight; level++ {
		if node.Tower[level] == nil {
			break
		}
		pos := nodePosition{
			DocID:    int32(node.Tower[level].Key.DocumentID),
			Position: int32(node.Tower[level].Key.Offset),
		}
		indices = append(indices, nodeMap[pos])
	}

	return indices
}

// nodePosition is a compact, hashable stand-in for a node's Position
// key, used only while building the encode-time index map.
type nodePosition struct {
	DocID    int32
	Position int32
}

// Decode reverses Encode, rebuilding the index's corpus stats, id
// registry, vocabulary, bitmaps, and posting lists from a byte slice
// previously produced by Encode.
func (idx *InvertedIndex) Decode(data []byte) error {
	offset := 0

	newOffset, err := idx.decodeHeader(data, offset)
	if err != nil {
		return err
	}
	offset = newOffset

	newOffset, err = idx.decodeDocStats(data, offset)
	if err != nil {
		return err
	}
	offset = newOffset

	newOffset, err = idx.decodeRegistry(data, offset)
	if err != nil {
		return err
	}
	offset = newOffset

	newOffset, err = idx.decodeVocabulary(data, offset)
	if err != nil {
		return err
	}
	offset = newOffset

	newOffset, err = idx.decodeBitmaps(data, offset)
	if err != nil {
		return err
	}
	offset = newOffset

	decoder := newIndexDecoder(data, offset)
	recoveredIndex := make(map[string]SkipList)

	for !decoder.isComplete() {
		term, skipList, err := decoder.decodeTerm()
		if err != nil {
			return err
		}
		recoveredIndex[term] = skipList
	}

	idx.PostingsList = recoveredIndex
	if idx.buf == nil {
		idx.buf = newWriteBuffer()
	}
	return nil
}

// decodeRegistry restores the external<->internal doc id mapping and
// the next-id counter.
func (idx *InvertedIndex) decodeRegistry(data []byte, offset int) (int, error) {
	count := int(binary.LittleEndian.Uint32(data[offset : offset+4]))
	offset += 4

	idx.externalToInternal = make(map[string]int, count)
	idx.internalToExternal = make(map[int]string, count)

	for i := 0; i < count; i++ {
		length := int(binary.LittleEndian.Uint32(data[offset : offset+4]))
		offset += 4
		external := string(data[offset : offset+length])
		offset += length
		internal := int(binary.LittleEndian.Uint32(data[offset : offset+4]))
		offset += 4

		idx.externalToInternal[external] = internal
		idx.internalToExternal[internal] = external
	}

	idx.nextDocID = int(binary.LittleEndian.Uint32(data[offset : offset+4]))
	offset += 4
	return offset, nil
}

// decodeVocabulary restores the indexed term set.
func (idx *InvertedIndex) decodeVocabulary(data []byte, offset int) (int, error) {
	count := int(binary.LittleEndian.Uint32(data[offset : offset+4]))
	offset += 4

	idx.Vocabulary = make(map[string]struct{}, count)
	for i := 0; i < count; i++ {
		length := int(binary.LittleEndian.Uint32(data[offset : offset+4]))
		offset += 4
		term := string(data[offset : offset+length])
		offset += length
		idx.Vocabulary[term] = struct{}{}
	}
	return offset, nil
}

// decodeBitmaps restores every term's document bitmap from roaring's
// native format.
func (idx *InvertedIndex) decodeBitmaps(data []byte, offset int) (int, error) {
	count := int(binary.LittleEndian.Uint32(data[offset : offset+4]))
	offset += 4

	idx.DocBitmaps = make(map[string]*roaring.Bitmap, count)
	for i := 0; i < count; i++ {
		termLen := int(binary.LittleEndian.Uint32(data[offset : offset+4]))
		offset += 4
		term := string(data[offset : offset+termLen])
		offset += termLen

		bitmapLen := int(binary.LittleEndian.Uint32(data[offset : offset+4]))
		offset += 4
		bitmap := roaring.NewBitmap()
		if _, err := bitmap.FromBuffer(data[offset : offset+bitmapLen]); err != nil {
			return offset, fmt.Errorf("decoding bitmap for %q: %w", term, ErrCorruptIndex)
		}
		offset += bitmapLen

		idx.DocBitmaps[term] = bitmap
	}
	return offset, nil
}

// Save encodes the index and writes it to path.
func (idx *InvertedIndex) Save(path string) error {
	idx.mu.Lock()
	idx.flushLocked()
	idx.mu.Unlock()

	data, err := idx.Encode()
	if err != nil {
		return fmt.Errorf("encoding index: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("%s: %w", path, ErrIoError)
	}
	return nil
}

// Load reads and decodes an index previously written with Save. The
// receiver's Config is preserved; every other field is overwritten.
func (idx *InvertedIndex) Load(path string) (err error) {
	data, readErr := os.ReadFile(path)
	if readErr != nil {
		return fmt.Errorf("%s: %w", path, ErrIoError)
	}
	// Decode indexes into data without bounds checks, so a truncated
	// file panics; report that as a corrupt index.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s: %w", path, ErrCorruptIndex)
		}
	}()
	if err := idx.Decode(data); err != nil {
		return fmt.Errorf("%s: %w", path, ErrCorruptIndex)
	}
	return nil
}

// decodeHeader reads corpus-wide stats and the BM25 parameters.
func (idx *InvertedIndex) decodeHeader(data []byte, offset int) (int, error) {
	idx.TotalDocs = int(binary.LittleEndian.Uint32(data[offset : offset+4]))
	offset += 4

	idx.TotalTerms = int64(binary.LittleEndian.Uint64(data[offset : offset+8]))
	offset += 8

	idx.BM25Params.K1 = math.Float64frombits(binary.LittleEndian.Uint64(data[offset : offset+8]))
	offset += 8

	idx.BM25Params.B = math.Float64frombits(binary.LittleEndian.Uint64(data[offset : offset+8]))
	offset += 8

	return offset, nil
}

// decodeDocStats reads per-document length and term-frequency stats.
func (idx *InvertedIndex) decodeDocStats(data []byte, offset int) (int, error) {
	numDocs := int(binary.LittleEndian.Uint32(data[offset : offset+4]))
	offset += 4

	idx.DocStats = make(map[int]DocumentStats, numDocs)

	for i := 0; i < numDocs; i++ {
		docID := int(binary.LittleEndian.Uint32(data[offset : offset+4]))
		offset += 4

		length := int(binary.LittleEndian.Uint32(data[offset : offset+4]))
		offset += 4

		numTerms := int(binary.LittleEndian.Uint32(data[offset : offset+4]))
		offset += 4

		docStats := DocumentStats{
			DocID:     docID,
			Length:    length,
			TermFreqs: make(map[string]int, numTerms),
		}

		for j := 0; j < numTerms; j++ {
			termLen := int(binary.LittleEndian.Uint32(data[offset : offset+4]))
			offset += 4

			term := string(data[offset : offset+termLen])
			offset += termLen

			freq := int(binary.LittleEndian.Uint32(data[offset : offset+4]))
			offset += 4

			docStats.TermFreqs[term] = freq
		}

		idx.DocStats[docID] = docStats
	}

	return offset, nil
}

// indexDecoder tracks position while reading posting lists back out of
// a byte slice.
type indexDecoder struct {
	data   []byte
	offset int
}

func newIndexDecoder(data []byte, offset int) *indexDecoder {
	return &indexDecoder{data: data, offset: offset}
}

func (d *indexDecoder) isComplete() bool {
	return d.offset >= len(d.data)
}

// decodeTerm reads one term's name, node positions, and tower
// structure, and returns the reconstructed SkipList.
func (d *indexDecoder) decodeTerm() (string, SkipList, error) {
	term, err := d.readString()
	if err != nil {
		return "", SkipList{}, err
	}

	nodeMap, err := d.decodeNodePositions()
	if err != nil {
		return "", SkipList{}, err
	}

	height, err := d.decodeTowerStructure(nodeMap)
	if err != nil {
		return "", SkipList{}, err
	}

	skipList := SkipList{
		Head:   nodeMap[1],
		Height: height,
	}

	return term, skipList, nil
}

func (d *indexDecoder) readString() (string, error) {
	length := int(binary.LittleEndian.Uint32(d.data[d.offset : d.offset+4]))
	d.offset += 4

	str := string(d.data[d.offset : d.offset+length])
	d.offset += length

	return str, nil
}

// decodeNodePositions reads the (DocID, Offset) pairs written by
// encodeNodePositions and builds the corresponding Node objects,
// indexed 1, 2, 3... in the same level-0 order they were encoded.
func (d *indexDecoder) decodeNodePositions() (map[int]*Node, error) {
	dataLength := int(binary.LittleEndian.Uint32(d.data[d.offset : d.offset+4]))
	d.offset += 4

	nodeMap := make(map[int]*Node)
	nodeIndex := 1

	numValues := dataLength / 4

	for i := 0; i < numValues; i += 2 {
		docID := int32(binary.LittleEndian.Uint32(d.data[d.offset : d.offset+4]))
		d.offset += 4

		offset := int32(binary.LittleEndian.Uint32(d.data[d.offset : d.offset+4]))
		d.offset += 4

		node := &Node{
			Key: Position{
				DocumentID: int(docID),
				Offset:     int(offset),
			},
		}

		nodeMap[nodeIndex] = node
		nodeIndex++
	}

	return nodeMap, nil
}

// decodeTowerStructure reads each node's tower (written as target node
// indices, 0 meaning nil) and reconnects the Tower pointers, returning
// the tallest tower height seen.
func (d *indexDecoder) decodeTowerStructure(nodeMap map[int]*Node) (int, error) {
	maxHeight := 1
	nodeCount := len(nodeMap)

	for nodeIndex := 1; nodeIndex <= nodeCount; nodeIndex++ {
		towerLength := int(binary.LittleEndian.Uint32(d.data[d.offset : d.offset+4]))
		d.offset += 4

		numIndices := towerLength / 2

		for level := 0; level < numIndices; level++ {
			targetIndex := int(binary.LittleEndian.Uint16(d.data[d.offset : d.offset+2]))
			d.offset += 2

			if targetIndex != 0 {
				nodeMap[nodeIndex].Tower[level] = nodeMap[targetIndex]
				if level+1 > maxHeight {
					maxHeight = level + 1
				}
			}
		}
	}

	return maxHeight, nil
}
