package spreadsheet

// ChunkKey represents the key for indexing chunks in a grid
type ChunkKey struct {
	ChunkRow int
	ChunkCol int
}

const (
	ChunkRows = 64                    // rows per chunk
	ChunkCols = 64                    // columns per chunk
	ChunkSize = ChunkRows * ChunkCols // 4096 cells per chunk
)

// Chunk represents a 64x64 region of cell slots. a nil slot means no cell
// has ever been written or referenced at that position.
type Chunk struct {
	Cells         [ChunkSize]*Cell
	OccupiedCount int // count of non-nil slots
}

// grid is sparse cell storage partitioned into chunks for spatial locality.
// it only grows: slots are filled when a position is written or referenced
// and are never emptied again, since other cells may hold edges to them.
//
// performance characteristics:
// - O(1) cell access
// - memory allocated only for regions that hold cells
type grid struct {
	chunks map[ChunkKey]*Chunk // sparse map of chunks indexed by ChunkKey
	count  int                 // stats tracking total number of cells
}

func newGrid() *grid {
	return &grid{
		chunks: make(map[ChunkKey]*Chunk),
	}
}

func chunkKeyOf(pos Position) (ChunkKey, int) {
	key := ChunkKey{ChunkRow: pos.Row / ChunkRows, ChunkCol: pos.Col / ChunkCols}
	local := (pos.Row%ChunkRows)*ChunkCols + pos.Col%ChunkCols
	return key, local
}

// get returns the cell stored at pos, or nil.
func (g *grid) get(pos Position) *Cell {
	if !pos.IsValid() {
		return nil
	}
	key, local := chunkKeyOf(pos)
	chunk, exists := g.chunks[key]
	if !exists {
		return nil
	}
	return chunk.Cells[local]
}

// put stores cell at its position. the slot must be empty.
func (g *grid) put(cell *Cell) {
	key, local := chunkKeyOf(cell.pos)
	chunk, exists := g.chunks[key]
	if !exists {
		chunk = &Chunk{}
		g.chunks[key] = chunk
	}
	chunk.Cells[local] = cell
	chunk.OccupiedCount++
	g.count++
}

// each calls fn for every stored cell, in no particular order.
func (g *grid) each(fn func(*Cell)) {
	for _, chunk := range g.chunks {
		for _, cell := range chunk.Cells {
			if cell != nil {
				fn(cell)
			}
		}
	}
}
