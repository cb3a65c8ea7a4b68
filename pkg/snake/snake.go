// Package snake is the fixed-tick snake game played inside the terminal.
package snake

import (
	"math/rand/v2"
	"strconv"
	"strings"
	"time"

	"github.com/flivyn/flivynterm/pkg/shared"
)

const (
	DefaultGridSize     = 20
	DefaultTickInterval = 150 * time.Millisecond
)

// Hint is printed under the board.
const Hint = "Arrow keys to move. 'q' to quit."

// Point is a grid cell; y grows downwards.
type Point struct {
	X, Y int
}

func (p Point) add(o Point) Point { return Point{p.X + o.X, p.Y + o.Y} }

// Directions.
var (
	Up    = Point{0, -1}
	Down  = Point{0, 1}
	Left  = Point{-1, 0}
	Right = Point{1, 0}
)

// Game holds one round. It is driven by Tick and is not safe for
// concurrent use.
type Game struct {
	size  int
	body  []Point // head first
	dir   Point
	food  Point
	score int
	over  bool
	rng   *rand.Rand
}

// New starts a round on a size×size grid. The start layout is scaled from
// the 20×20 board: body at the centre, food towards the lower right.
func New(size int, rng *rand.Rand) *Game {
	if size <= 0 {
		size = DefaultGridSize
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Game{
		size: size,
		body: []Point{{size / 2, size / 2}},
		dir:  Up,
		food: Point{size * 3 / 4, size * 3 / 4},
		rng:  rng,
	}
}

func (g *Game) Size() int        { return g.size }
func (g *Game) Score() int       { return g.score }
func (g *Game) Over() bool       { return g.over }
func (g *Game) Food() Point      { return g.food }
func (g *Game) Direction() Point { return g.dir }
func (g *Game) Head() Point      { return g.body[0] }

// Body returns a copy of the snake, head first.
func (g *Game) Body() []Point {
	out := make([]Point, len(g.body))
	copy(out, g.body)
	return out
}

// Turn changes direction unless dir is on the axis of the current one.
func (g *Game) Turn(dir Point) bool {
	if g.over {
		return false
	}
	if (dir.X == 0) == (g.dir.X == 0) {
		return false
	}
	g.dir = dir
	return true
}

// TurnKey maps an arrow key name to Turn.
func (g *Game) TurnKey(key string) bool {
	switch key {
	case "ArrowUp":
		return g.Turn(Up)
	case "ArrowDown":
		return g.Turn(Down)
	case "ArrowLeft":
		return g.Turn(Left)
	case "ArrowRight":
		return g.Turn(Right)
	}
	return false
}

func (g *Game) inside(p Point) bool {
	return p.X >= 0 && p.X < g.size && p.Y >= 0 && p.Y < g.size
}

func (g *Game) onBody(p Point) bool {
	for _, b := range g.body {
		if b == p {
			return true
		}
	}
	return false
}

// Tick advances one step and reports whether food was eaten. Hitting a wall
// or the body as it was before the move ends the game.
func (g *Game) Tick() bool {
	if g.over {
		return false
	}
	head := g.body[0].add(g.dir)
	if !g.inside(head) || g.onBody(head) {
		g.over = true
		return false
	}
	g.body = append([]Point{head}, g.body...)
	if head != g.food {
		g.body = g.body[:len(g.body)-1]
		return false
	}
	g.score++
	g.placeFood()
	return true
}

// placeFood picks a free cell uniformly. A full board ends the game.
func (g *Game) placeFood() {
	free := make([]Point, 0, g.size*g.size-len(g.body))
	for y := 0; y < g.size; y++ {
		for x := 0; x < g.size; x++ {
			if p := (Point{x, y}); !g.onBody(p) {
				free = append(free, p)
			}
		}
	}
	if len(free) == 0 {
		g.over = true
		return
	}
	g.food = free[g.rng.IntN(len(free))]
}

// Render draws the board: 'O' head, 'o' body, 'X' food.
func (g *Game) Render() []string {
	grid := make([][]byte, g.size)
	for y := range grid {
		grid[y] = []byte(strings.Repeat(" ", g.size))
	}
	for i, b := range g.body {
		if i == 0 {
			grid[b.Y][b.X] = 'O'
		} else {
			grid[b.Y][b.X] = 'o'
		}
	}
	grid[g.food.Y][g.food.X] = 'X'

	rows := make([]string, g.size)
	for y, row := range grid {
		rows[y] = string(row)
	}
	return rows
}

// StatusLines are the lines shown under the board.
func (g *Game) StatusLines() []string {
	lines := []string{"Score: " + strconv.Itoa(g.score)}
	if g.over {
		lines = append(lines, "GAME OVER")
	}
	return append(lines, Hint)
}

// Frame builds the message that paints the game on the client.
func (g *Game) Frame() shared.Message {
	return shared.Message{
		Type:     shared.MessageTypeGame,
		Grid:     g.Render(),
		Score:    g.score,
		GameOver: g.over,
		Content:  Hint,
	}
}
