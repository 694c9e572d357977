package tictactoe

const (
	xValue     = 1
	oValue     = -1
	emptyValue = 0
)

// board is a 3x3 tic-tac-toe grid.
// Cells hold xValue, oValue, or emptyValue; state holds the winner's value.
type board struct {
	cells     [9]int
	state     int
	moveCount int
}

// addX places an x at the cell, reporting whether the placement was legal.
func (b *board) addX(i, j int) bool {
	return b.add(i, j, xValue)
}

// addO places an o at the cell, reporting whether the placement was legal.
func (b *board) addO(i, j int) bool {
	return b.add(i, j, oValue)
}

func (b *board) add(i, j, s int) bool {
	if i < 0 || i > 2 || j < 0 || j > 2 {
		return false
	}
	if b.value(i, j) != emptyValue {
		return false
	}
	b.move(i, j, s)
	return true
}

// done reports whether the board is full or won.
func (b *board) done() bool {
	return b.moveCount == 9 || b.state != 0
}

func (b *board) value(i, j int) int {
	return b.cells[i+3*j]
}

func (b *board) set(i, j, s int) {
	b.cells[i+3*j] = s
}

func (b *board) move(x, y, s int) {
	b.set(x, y, s)
	b.moveCount++
	switch {
	case b.value(x, 0) == s && b.value(x, 1) == s && b.value(x, 2) == s:
		b.state = s
	case b.value(0, y) == s && b.value(1, y) == s && b.value(2, y) == s:
		b.state = s
	case x == y && b.value(0, 0) == s && b.value(1, 1) == s && b.value(2, 2) == s:
		b.state = s
	case x+y == 2 && b.value(0, 2) == s && b.value(1, 1) == s && b.value(2, 0) == s:
		b.state = s
	}
}
