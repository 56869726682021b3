package spreadsheet

import (
	"fmt"
	"log/slog"
)

// setContent replaces the cell's content with text. the candidate is checked
// for cycles before anything is committed: on error the cell, its edges and
// every cached value are exactly as they were.
func (c *Cell) setContent(text string) error {
	candidate, err := newContent(text, c.sheet.parse)
	if err != nil {
		return err
	}

	if c.hasCircularDependency(candidate) {
		return fmt.Errorf("%w: %s would reference itself", ErrCircularDependency, c.pos)
	}

	c.content = candidate
	c.refreshReferences()
	c.invalidateDependents()
	return nil
}

// hasCircularDependency walks the graph as it would look with candidate
// committed at this cell. a content is marked only while it is on the
// current path, so diamonds (two branches reaching a common cell) are not
// mistaken for cycles.
func (c *Cell) hasCircularDependency(candidate content) bool {
	onPath := make(map[content]struct{})

	var visit func(current content) bool
	visit = func(current content) bool {
		refs := contentReferences(current)
		if len(refs) == 0 {
			return false
		}
		if _, visiting := onPath[current]; visiting {
			return true
		}
		onPath[current] = struct{}{}

		for _, pos := range refs {
			var next content
			if pos == c.pos {
				next = candidate
			} else if cell := c.sheet.grid.get(pos); cell != nil {
				next = cell.content
			} else {
				continue
			}
			if visit(next) {
				return true
			}
		}

		delete(onPath, current)
		return false
	}

	return visit(candidate)
}

// refreshReferences rebuilds the outgoing edges from the committed content,
// creating empty cells for referenced positions that have none yet.
func (c *Cell) refreshReferences() {
	for _, ref := range c.references {
		delete(ref.dependents, c.pos)
	}
	clear(c.references)

	for _, pos := range contentReferences(c.content) {
		ref := c.sheet.grid.get(pos)
		if ref == nil {
			ref = c.sheet.createCell(pos)
			c.sheet.metrics.autovivified()
			c.sheet.logger.Debug("created referenced cell",
				slog.String("cell", pos.String()),
				slog.String("referenced_by", c.pos.String()))
		}
		c.references[pos] = ref
		ref.dependents[c.pos] = c
	}
}

// invalidateDependents drops the memoized values of this cell and of every
// cell that transitively depends on it. nothing is recomputed here; values
// are recomputed lazily on the next read.
func (c *Cell) invalidateDependents() {
	visited := make(map[Position]struct{})
	dropped := 0

	var walk func(cell *Cell)
	walk = func(cell *Cell) {
		if _, seen := visited[cell.pos]; seen {
			return
		}
		visited[cell.pos] = struct{}{}

		if invalidate(cell.content) {
			dropped++
		}
		for _, dependent := range cell.dependents {
			walk(dependent)
		}
	}
	walk(c)

	c.sheet.metrics.invalidated(dropped)
	if len(visited) > 1 {
		c.sheet.logger.Debug("invalidated dependents",
			slog.String("cell", c.pos.String()),
			slog.Int("reached", len(visited)-1),
			slog.Int("dropped", dropped))
	}
}
